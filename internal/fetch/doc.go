// Package fetch retrieves per-band SUVI imagery from the SWPC archive.
//
// The archive exposes one plain directory index per band; the client scrapes
// the index for PNG links, skips the latest.png alias, parses observation
// timestamps out of the filenames, and downloads each frame into the run's
// scratch directory with a bounded retry budget and exponential backoff.
// Downloads within one band run concurrently up to the configured limit.
//
// Failures surface tagged with services.ErrFetch; the pipeline decides
// whether an exhausted band is a gap or a fatal condition.
package fetch
