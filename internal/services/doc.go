// Package services defines the shared error taxonomy and context plumbing
// the pipeline stages use.
//
// Sentinel markers classify failures (configuration, fetch, missing data,
// external tool) so the CLI can map an error to an exit message without
// string matching, and Wrap attaches stage/operation detail while preserving
// errors.Is/As chains. Context helpers carry the run identifier, stage, and
// band so loggers pick them up uniformly.
package services
