package suvi

import (
	"fmt"
	"time"
)

// Band identifies one SUVI wavelength channel by its angstrom tag.
type Band string

// The six SUVI channels, in canonical grid order (row-major across the 2x3
// layout).
const (
	Band094 Band = "094"
	Band131 Band = "131"
	Band171 Band = "171"
	Band195 Band = "195"
	Band284 Band = "284"
	Band304 Band = "304"
)

// GridRows and GridCols describe the composite layout.
const (
	GridRows = 2
	GridCols = 3
)

var bandOrder = [...]Band{Band094, Band131, Band171, Band195, Band284, Band304}

// Bands returns the canonical ordered band set.
func Bands() []Band {
	out := make([]Band, len(bandOrder))
	copy(out, bandOrder[:])
	return out
}

// Count is the number of bands in the fixed set.
const Count = len(bandOrder)

// Valid reports whether b names one of the six channels.
func (b Band) Valid() bool {
	for _, known := range bandOrder {
		if b == known {
			return true
		}
	}
	return false
}

// GridCell returns the fixed (row, col) placement for the band in the 2x3
// composite.
func (b Band) GridCell() (row, col int) {
	for i, known := range bandOrder {
		if b == known {
			return i / GridCols, i % GridCols
		}
	}
	return 0, 0
}

// Angstroms returns the human-readable wavelength label.
func (b Band) Angstroms() string {
	return fmt.Sprintf("%s Å", string(b))
}

// BandImage is one downloaded observation for a band. Path points at the PNG
// inside the run's scratch directory; the struct is never mutated after the
// fetch stage produces it.
type BandImage struct {
	Band      Band
	Timestamp time.Time
	Path      string
}

// Sequence is a per-band, ascending-by-timestamp run of observations. It may
// be sparse or empty relative to other bands.
type Sequence struct {
	Band   Band
	Images []BandImage
}

// Timestamps returns the observation times in order.
func (s Sequence) Timestamps() []time.Time {
	out := make([]time.Time, len(s.Images))
	for i, img := range s.Images {
		out[i] = img.Timestamp
	}
	return out
}

// Empty reports whether the sequence carries no observations.
func (s Sequence) Empty() bool {
	return len(s.Images) == 0
}
