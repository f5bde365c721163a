// Package registry is the glue between compiled-in backend modules and the
// dispatcher.
//
// Each module registers one backend per pipeline kind it implements. Before
// any build runs, ValidateRegistry checks that every kind the pipeline
// package declares has a backend, so a newly added kind without an
// implementation is caught at startup instead of surfacing mid-run.
package registry
