// Package align reconciles six independently-timestamped band sequences
// into one ordered timeline of synchronized frame sets.
//
// The algorithm picks a reference timeline (the best-covered band, or the
// union of all observation times when coverage is even), matches each band
// to each reference instant by nearest neighbor within a bounded tolerance,
// and fills gaps with the band's temporally nearest observation regardless
// of tolerance. Only a band with no observation anywhere in the window
// leaves cells missing; under strict mode that is a MissingDataError
// instead.
//
// Everything here is a pure function over explicit inputs so the matching
// behavior is testable without network or encoder dependencies.
package align
