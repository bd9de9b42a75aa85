package pipeline

// State names the phase a run is in.
type State string

const (
	StateIdle      State = "idle"
	StateFetching  State = "fetching"
	StateAligning  State = "aligning"
	StateComposing State = "composing"
	StateEncoding  State = "encoding"
	StateDone      State = "done"
	StateFailed    State = "failed"
)
