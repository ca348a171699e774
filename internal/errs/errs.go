// Package errs defines the error kinds recognised by the co-moving
// pipeline's core (spec §7). Every package in internal/ wraps failures
// in a *Error carrying one of these kinds so callers can branch with
// errors.Is against the exported sentinels, the way
// internal/lidar/monitor's switchError lets HTTP handlers recover a
// status code from a wrapped cause.
package errs

import "fmt"

// Kind identifies the category of a pipeline error.
type Kind string

const (
	// ParameterMismatch: artifact parameters differ from the driver's configuration.
	ParameterMismatch Kind = "parameter_mismatch"
	// InvalidParameters: w <= 0, z < 0, T <= 0, window longer than data, etc.
	InvalidParameters Kind = "invalid_parameters"
	// RangeError: timestamp / device index / vector length out of bounds.
	RangeError Kind = "range_error"
	// EmptyInput: no devices, no APs, no measurements.
	EmptyInput Kind = "empty_input"
	// VersionMismatch: classifier serialised with an incompatible layout.
	VersionMismatch Kind = "version_mismatch"
	// MalformedInput: unexpected token / shape in a parsed file.
	MalformedInput Kind = "malformed_input"
	// GraphInvariant: serialised graph references a vertex id not in its own vertex list.
	GraphInvariant Kind = "graph_invariant"
)

// Error is the pipeline's typed error. It always carries a Kind so
// callers can discriminate with Is, and an underlying cause for
// context via Unwrap.
type Error struct {
	Kind Kind
	Op   string // the operation that failed, e.g. "tracing.Transform"
	err  error
}

func (e *Error) Error() string {
	if e.err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.err)
}

func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is an *Error with the same Kind, so
// errors.Is(err, errs.New(errs.RangeError, "", nil)) matches any error
// of that kind, whatever its Op or cause.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return other.Kind == e.Kind
}

// New builds a pipeline error of the given kind.
func New(kind Kind, op string, cause error) *Error {
	return &Error{Kind: kind, Op: op, err: cause}
}

// Newf builds a pipeline error of the given kind with a formatted cause.
func Newf(kind Kind, op, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, err: fmt.Errorf(format, args...)}
}

// Of reports the Kind of err if it is (or wraps) a *Error, and false otherwise.
func Of(err error) (Kind, bool) {
	var e *Error
	if ok := asError(err, &e); ok {
		return e.Kind, true
	}
	return "", false
}

func asError(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}
	return false
}
