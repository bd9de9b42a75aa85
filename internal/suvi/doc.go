// Package suvi models the fixed six-band SUVI imagery domain.
//
// It defines the canonical ordered band set with grid placement, the
// BandImage/Sequence types that flow from fetching through alignment, and
// the filename conventions NOAA's SWPC archive uses for observation
// timestamps.
//
// Band identity, ordering, and grid geometry are compile-time facts; nothing
// in this package is configurable at runtime.
package suvi
