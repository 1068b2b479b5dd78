// Package classify is the boundary to the external emotion-labeling service.
// The service is opaque: it takes one frame and answers with a label.
package classify

import (
	"context"
	"errors"
	"fmt"

	"moodlift/internal/frames"
)

// Labels of the fixed taxonomy. LabelNoFace is a valid answer meaning the
// frame held no face; it is not an error.
const (
	LabelHappy   = "happy"
	LabelSad     = "sad"
	LabelAngry   = "angry"
	LabelNeutral = "neutral"
	LabelFear    = "fear"
	LabelNoFace  = "no_face"
)

// Taxonomy lists every label the service is expected to return.
var Taxonomy = []string{LabelHappy, LabelSad, LabelAngry, LabelNeutral, LabelFear, LabelNoFace}

// InTaxonomy reports whether label is one of the known labels. Responses are
// not filtered by it; unknown labels pass through to the caller verbatim.
func InTaxonomy(label string) bool {
	for _, l := range Taxonomy {
		if l == label {
			return true
		}
	}
	return false
}

// Classifier labels a single frame. Implementations do not retry.
type Classifier interface {
	Classify(ctx context.Context, frame frames.Frame) (string, error)
}

// Func adapts a function to Classifier.
type Func func(ctx context.Context, frame frames.Frame) (string, error)

// Classify calls f.
func (f Func) Classify(ctx context.Context, frame frames.Frame) (string, error) {
	return f(ctx, frame)
}

// ErrTransport matches every failure to obtain a label: network errors,
// timeouts, non-2xx statuses and malformed bodies.
var ErrTransport = errors.New("classification transport error")

// TransportError carries the cause of a failed classification request.
type TransportError struct {
	Status int // HTTP status when the service answered, else 0
	Op     string
	Cause  error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("classify: %s: status %d: %v", e.Op, e.Status, e.Cause)
	}
	return fmt.Sprintf("classify: %s: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// Is makes errors.Is(err, ErrTransport) hold for every TransportError.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

func transportErr(op string, status int, cause error) *TransportError {
	return &TransportError{Op: op, Status: status, Cause: cause}
}
