// Package pipeline drives one sunweather run end to end.
//
// The run is a straight-line state machine: fetching (six concurrent band
// downloads joined before alignment), aligning, composing, encoding, then
// done or failed. The pipeline owns a scratch directory for the run's
// lifetime, guarded by a work-dir lock so concurrent invocations cannot
// share scratch space, and removes it at either terminal state unless keep
// flags ask for retention. A manifest inside the scratch directory records
// what was fetched and how the run ended.
package pipeline
