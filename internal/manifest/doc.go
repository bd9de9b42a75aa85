// Package manifest persists what one pipeline run fetched and produced.
//
// The SQLite database lives inside the run's scratch directory, so it is
// discarded with the scratch space unless the run is kept. It records every
// downloaded frame (band, observation time, file, size) and the run's
// terminal state, which `sunweather frames` reads back from kept runs.
//
// This is a record of a single run, not a historical archive; nothing
// outside the scratch directory depends on it.
package manifest
