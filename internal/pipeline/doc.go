// Package pipeline selects one of the asset-bundle build pipelines, assembles
// the parameter set it needs, and normalizes what the backend reports.
//
// The flow is deliberately flat: a BuildRequest is resolved once from a
// Source, validated, handed to exactly one Backend, and the BuildResult is
// turned into either an Artifact or a typed error. Nothing is retained
// between runs.
package pipeline
