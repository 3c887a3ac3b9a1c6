package geometry

import (
	"fmt"

	"github.com/pkg/errors"
)

// Projection failures, wrapped in a GeometryError with the offending
// sample index.
var (
	ErrParallelToPlane = errors.New("direction is parallel to the screen plane")
	ErrBehindPlane     = errors.New("direction points away from the screen plane")
)

// GeometryError reports a failed geometric computation. Sample is the
// index of the offending input sample, or -1 when the failure concerns
// the whole table.
type GeometryError struct {
	Stage  string
	Sample int
	Err    error
}

func (e *GeometryError) Error() string {
	if e.Sample >= 0 {
		return fmt.Sprintf("%s: sample %d: %v", e.Stage, e.Sample, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *GeometryError) Unwrap() error { return e.Err }

// geomErrf builds a table-level GeometryError for the given stage.
func geomErrf(stage string, format string, args ...interface{}) *GeometryError {
	return &GeometryError{Stage: stage, Sample: -1, Err: errors.Errorf(format, args...)}
}

// sampleErr wraps a per-sample failure with its index.
func sampleErr(stage string, sample int, err error) *GeometryError {
	return &GeometryError{Stage: stage, Sample: sample, Err: err}
}
