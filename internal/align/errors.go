package align

import (
	"fmt"
	"time"

	"sunweather/internal/services"
	"sunweather/internal/suvi"
)

// MissingDataError reports a strict-mode alignment failure: the named band
// has no usable observation for the named reference instant.
type MissingDataError struct {
	Band      suvi.Band
	Timestamp time.Time
}

func (e *MissingDataError) Error() string {
	return fmt.Sprintf("missing data: band %s has no observation usable for %s",
		e.Band, e.Timestamp.UTC().Format(time.RFC3339))
}

// Is lets errors.Is match the services.ErrMissingData marker.
func (e *MissingDataError) Is(target error) bool {
	return target == services.ErrMissingData
}
