package align

import (
	"time"

	"sunweather/internal/suvi"
)

// Cell is one band's slot in a frame set.
type Cell struct {
	// Image is the observation shown in this cell, nil when Missing.
	Image *suvi.BandImage
	// Filled marks a gap-filled substitute borrowed from another reference
	// instant rather than a direct nearest-neighbor match.
	Filled bool
	// Missing marks a cell with no usable observation anywhere in the
	// window; the composer renders the placeholder tile for it.
	Missing bool
}

// FrameSet is one synchronized instant: a representative timestamp plus one
// cell per band. Every band key is always present.
type FrameSet struct {
	Timestamp time.Time
	Cells     map[suvi.Band]Cell
}

// FullyObserved reports whether every cell holds a direct match (no fills,
// no missing cells).
func (fs FrameSet) FullyObserved() bool {
	for _, band := range suvi.Bands() {
		cell := fs.Cells[band]
		if cell.Missing || cell.Filled || cell.Image == nil {
			return false
		}
	}
	return true
}

// Timeline is the ordered frame-set sequence, ascending by timestamp with no
// duplicates.
type Timeline []FrameSet

// Timestamps returns the representative timestamps in order.
func (t Timeline) Timestamps() []time.Time {
	out := make([]time.Time, len(t))
	for i, fs := range t {
		out[i] = fs.Timestamp
	}
	return out
}

// Options controls alignment behavior.
type Options struct {
	// Tolerance bounds nearest-neighbor matching; observations further than
	// this from a reference instant count as gaps.
	Tolerance time.Duration
	// Frames keeps only the N most recent reference instants when positive.
	Frames int
	// Strict turns any missing cell into a MissingDataError.
	Strict bool
}
