// Package config defines the format-agnostic configuration model for the
// application, the Loader interface that fills it, and Settings, the layered
// view the dispatcher reads build options from.
//
// Concrete loaders, such as the HCL one, live in separate packages. The
// process environment is snapshotted once at startup and never mutated.
package config
