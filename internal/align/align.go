package align

import (
	"sort"
	"time"

	"sunweather/internal/suvi"
)

// Build aligns the per-band sequences onto a single timeline of frame sets.
// Sequences may arrive sparse, unsorted, or missing entirely; a band with no
// sequence is treated as empty. The returned timeline ascends strictly by
// timestamp.
func Build(sequences []suvi.Sequence, opts Options) (Timeline, error) {
	byBand := make(map[suvi.Band][]suvi.BandImage, suvi.Count)
	for _, seq := range sequences {
		if !seq.Band.Valid() {
			continue
		}
		images := append([]suvi.BandImage(nil), seq.Images...)
		sort.Slice(images, func(i, j int) bool {
			return images[i].Timestamp.Before(images[j].Timestamp)
		})
		byBand[seq.Band] = images
	}

	reference := Reference(byBand)
	if opts.Frames > 0 && len(reference) > opts.Frames {
		reference = reference[len(reference)-opts.Frames:]
	}

	if len(reference) == 0 {
		if opts.Strict {
			return nil, &MissingDataError{Band: suvi.Bands()[0]}
		}
		return Timeline{}, nil
	}

	// Per band: direct nearest-neighbor matches within tolerance, then
	// gap-fill from the band's nearest observation regardless of tolerance.
	// A cell stays missing only when the band has no observation anywhere in
	// the window.
	cells := make(map[suvi.Band][]Cell, suvi.Count)
	for _, band := range suvi.Bands() {
		images := byBand[band]
		times := timesOf(images)
		picks := make([]Cell, len(reference))
		for i, ref := range reference {
			if idx, ok := Nearest(times, ref, opts.Tolerance); ok {
				picks[i] = Cell{Image: &images[idx]}
			} else if idx, ok := Nearest(times, ref, maxDuration); ok {
				picks[i] = Cell{Image: &images[idx], Filled: true}
			} else {
				picks[i] = Cell{Missing: true}
			}
		}
		cells[band] = picks
	}

	timeline := make(Timeline, len(reference))
	for i, ref := range reference {
		timeline[i] = FrameSet{Timestamp: ref, Cells: make(map[suvi.Band]Cell, suvi.Count)}
		for _, band := range suvi.Bands() {
			timeline[i].Cells[band] = cells[band][i]
		}
	}

	if opts.Strict {
		if err := checkStrict(timeline); err != nil {
			return nil, err
		}
	}
	return timeline, nil
}

// maxDuration disables the tolerance bound for the gap-fill pass.
const maxDuration = time.Duration(1<<63 - 1)

func checkStrict(timeline Timeline) error {
	for _, fs := range timeline {
		for _, band := range suvi.Bands() {
			if fs.Cells[band].Missing {
				return &MissingDataError{Band: band, Timestamp: fs.Timestamp}
			}
		}
	}
	// At least one frame set must be fully populated with direct matches.
	for _, fs := range timeline {
		if fs.FullyObserved() {
			return nil
		}
	}
	for _, fs := range timeline {
		for _, band := range suvi.Bands() {
			cell := fs.Cells[band]
			if cell.Filled || cell.Image == nil {
				return &MissingDataError{Band: band, Timestamp: fs.Timestamp}
			}
		}
	}
	return nil
}

// Reference selects the canonical reference timeline: the timestamps of the
// band with the most coverage, or the deduplicated union of every band's
// timestamps when coverage is even. Ties between unequally covered bands go
// to the earlier band in canonical order.
func Reference(byBand map[suvi.Band][]suvi.BandImage) []time.Time {
	counts := make([]int, 0, suvi.Count)
	var best suvi.Band
	bestCount := -1
	allEqual := true
	for _, band := range suvi.Bands() {
		n := len(byBand[band])
		if len(counts) > 0 && n != counts[len(counts)-1] {
			allEqual = false
		}
		counts = append(counts, n)
		if n > bestCount {
			best, bestCount = band, n
		}
	}

	if allEqual {
		set := make(map[time.Time]struct{})
		for _, images := range byBand {
			for _, img := range images {
				set[img.Timestamp] = struct{}{}
			}
		}
		union := make([]time.Time, 0, len(set))
		for ts := range set {
			union = append(union, ts)
		}
		sort.Slice(union, func(i, j int) bool { return union[i].Before(union[j]) })
		return union
	}

	return dedupeSorted(timesOf(byBand[best]))
}

// Nearest returns the index of the time in times closest to target within
// tolerance. Equidistant candidates prefer the earlier one. times must be
// sorted ascending.
func Nearest(times []time.Time, target time.Time, tolerance time.Duration) (int, bool) {
	if len(times) == 0 {
		return 0, false
	}
	i := sort.Search(len(times), func(k int) bool { return !times[k].Before(target) })

	bestIdx := -1
	var bestDist time.Duration
	if i > 0 {
		bestIdx = i - 1
		bestDist = target.Sub(times[i-1])
	}
	if i < len(times) {
		dist := times[i].Sub(target)
		// Strict less-than keeps the earlier candidate on ties.
		if bestIdx < 0 || dist < bestDist {
			bestIdx, bestDist = i, dist
		}
	}
	if bestIdx < 0 || bestDist > tolerance {
		return 0, false
	}
	return bestIdx, true
}

func timesOf(images []suvi.BandImage) []time.Time {
	out := make([]time.Time, len(images))
	for i, img := range images {
		out[i] = img.Timestamp
	}
	return out
}

func dedupeSorted(times []time.Time) []time.Time {
	out := times[:0]
	for i, ts := range times {
		if i > 0 && ts.Equal(times[i-1]) {
			continue
		}
		out = append(out, ts)
	}
	return out
}
