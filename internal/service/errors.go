package service

import "errors"

// ErrNotReady is returned by encode and search operations invoked while
// the service is not in the Ready state.
var ErrNotReady = errors.New("embedding service not ready")

// LoadError reports a failed model load attempt. The service moves to
// the Failed state and the attempt may be retried with LoadModel.
type LoadError struct {
	Err error
}

func (e *LoadError) Error() string { return "model load failed: " + e.Err.Error() }
func (e *LoadError) Unwrap() error { return e.Err }

// ComputationError reports malformed input to a per-call computation,
// such as a zero-norm vector in similarity scoring. It never changes
// service state.
type ComputationError struct {
	Reason string
}

func (e *ComputationError) Error() string { return "computation failed: " + e.Reason }

// InfrastructureError reports an unexpected failure in the offload
// machinery itself, not in the model or the input.
type InfrastructureError struct {
	Reason string
	Err    error
}

func (e *InfrastructureError) Error() string {
	if e.Err != nil {
		return "infrastructure failure: " + e.Reason + ": " + e.Err.Error()
	}
	return "infrastructure failure: " + e.Reason
}

func (e *InfrastructureError) Unwrap() error { return e.Err }
