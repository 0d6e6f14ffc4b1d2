package upstream

import "errors"

// Sentinel kinds for upstream failures.
var (
	ErrTransport         = errors.New("upstream transport failed")
	ErrMalformedResponse = errors.New("upstream response malformed")
)

// Error is a failed upstream exchange. Its message is the underlying cause
// so it can be reported to callers unchanged.
type Error struct {
	Op       string
	Resource string
	Kind     error
	Err      error
}

func newError(op, resource string, kind, err error) *Error {
	return &Error{Op: op, Resource: resource, Kind: kind, Err: err}
}

func (e *Error) Error() string {
	return e.Err.Error()
}

// Unwrap exposes both the kind and the cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// KindLabel returns a short label for err suitable for metrics.
func KindLabel(err error) string {
	switch {
	case errors.Is(err, ErrMalformedResponse):
		return "malformed"
	case errors.Is(err, ErrTransport):
		return "transport"
	default:
		return "unknown"
	}
}
