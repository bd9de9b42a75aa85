package suvi

import (
	"regexp"
	"time"
)

// SUVI Level-2 composite filenames embed the observation start time, e.g.
// or_suvi-l2-ci195_g16_s20260830T154800Z_e20260830T155200Z_v1-0-2.png.
var observationRE = regexp.MustCompile(`_s(\d{8}T\d{6})Z_`)

const observationLayout = "20060102T150405"

// ParseObservationTime extracts the observation timestamp embedded in a SUVI
// archive filename. The second return value is false when the name does not
// follow the archive convention.
func ParseObservationTime(name string) (time.Time, bool) {
	m := observationRE.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, false
	}
	ts, err := time.Parse(observationLayout, m[1])
	if err != nil {
		return time.Time{}, false
	}
	return ts.UTC(), true
}
