// Package hcl provides the concrete HCL implementation of config.Loader. It
// parses build configuration files, evaluates attribute expressions against
// the environment snapshot, and flattens every value to a string keyed the
// way environment variables are.
package hcl
