// Package schema declares the HCL block structure of build configuration
// files. It is decoded with gohcl and translated into config.Model by the
// hcl package.
package schema

import "github.com/hashicorp/hcl/v2"

// Section is an unlabeled block whose attributes become environment-style keys.
type Section struct {
	Body hcl.Body `hcl:",remain"`
}

// LabeledSection is a block labeled with a platform or package name.
type LabeledSection struct {
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}

// Notify is the `notify` block configuring build event notifications.
type Notify struct {
	URL                string `hcl:"url"`
	Namespace          string `hcl:"namespace,optional"`
	Event              string `hcl:"event,optional"`
	InsecureSkipVerify bool   `hcl:"insecure_skip_verify,optional"`
	Timeout            string `hcl:"timeout,optional"`
}

// File is the top-level structure of a build configuration file. Every
// block is optional so configuration can be split across files.
type File struct {
	CI        *Section          `hcl:"ci,block"`
	Platforms []*LabeledSection `hcl:"platform,block"`
	Bundle    *Section          `hcl:"bundle,block"`
	Packages  []*LabeledSection `hcl:"package,block"`
	Notify    *Notify           `hcl:"notify,block"`
}
