package service

// State is the service lifecycle state.
//
// A boolean readiness flag cannot distinguish "never loaded" from
// "load failed", which retry semantics need, so the lifecycle is a
// four-state machine.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
