package engine

// State is the phase of one iteration.
type State int

const (
	PostHalo State = iota
	ComputeInterior
	WaitReceives
	ComputeBoundary
	WaitSends
	Advance
)

var stateNames = map[State]string{
	PostHalo:        "POST_HALO",
	ComputeInterior: "COMPUTE_INTERIOR",
	WaitReceives:    "WAIT_RECEIVES",
	ComputeBoundary: "COMPUTE_BOUNDARY",
	WaitSends:       "WAIT_SENDS",
	Advance:         "ADVANCE",
}

func (s State) String() string {
	return stateNames[s]
}

// Observer is told about every state entered, on the goroutine running the engine.
type Observer func(rank, step int, s State)
