// Package app contains the core application logic. It wires configuration,
// the backend registry and the pipeline dispatcher together and runs the
// build of every requested package, decoupled from any specific entrypoint
// like a CLI.
package app
