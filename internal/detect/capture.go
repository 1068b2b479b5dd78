package detect

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"moodlift/internal/classify"
	"moodlift/internal/frames"
)

// Messages and sentinels written into the Session.
const (
	MessageNoFace = "Please position your face properly in the frame."
	LabelFailed   = "Error detecting emotion"
	MessageFailed = "⚠️ Something went wrong while detecting emotion."
)

var (
	// ErrNoFrame means the video source is not ready; nothing changed.
	ErrNoFrame = errors.New("detect: no frame available")
	// ErrConcurrentCapture means a capture was already in flight; nothing changed.
	ErrConcurrentCapture = errors.New("detect: capture already in flight")
	// ErrClosed means the owning view was disposed.
	ErrClosed = errors.New("detect: view closed")
)

// Session is the outcome of the most recent capture.
type Session struct {
	EmotionLabel string
	ErrorMessage string
	Loading      bool
}

// CaptureController runs on-demand captures and is the only writer of its
// Session. At most one capture is in flight: Loading is set under the lock
// before the request goes out and cleared by a deferred cleanup on every exit
// path, so a second Capture during the first is rejected.
type CaptureController struct {
	source     frames.Source
	classifier classify.Classifier
	onChange   func(Session)

	mu      sync.Mutex
	session Session
	closed  bool

	requests atomic.Uint64
}

// NewCaptureController returns a controller with an empty session. onChange,
// if set, is called after every session change, outside the lock.
func NewCaptureController(source frames.Source, classifier classify.Classifier, onChange func(Session)) *CaptureController {
	return &CaptureController{
		source:     source,
		classifier: classifier,
		onChange:   onChange,
	}
}

// Capture classifies the current frame and records the outcome. It blocks
// until the request resolves and returns the resulting session.
//
// ErrConcurrentCapture and ErrNoFrame leave the session untouched. A
// transport failure is recorded in the session and also returned, wrapped.
// Nothing is retried.
func (c *CaptureController) Capture(ctx context.Context) (result Session, err error) {
	frame, err := c.begin()
	if err != nil {
		return c.Session(), err
	}

	var apply func(*Session)
	defer func() {
		result = c.finish(apply)
	}()

	c.requests.Add(1)
	label, err := c.classifier.Classify(ctx, frame)
	switch {
	case err != nil:
		apply = func(s *Session) {
			s.EmotionLabel = LabelFailed
			s.ErrorMessage = MessageFailed
		}
		return Session{}, fmt.Errorf("capture: %w", err)
	case label == classify.LabelNoFace:
		apply = func(s *Session) {
			s.EmotionLabel = ""
			s.ErrorMessage = MessageNoFace
		}
	default:
		apply = func(s *Session) {
			s.EmotionLabel = label
			s.ErrorMessage = ""
		}
	}
	return Session{}, nil
}

func (c *CaptureController) begin() (frames.Frame, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return frames.Frame{}, ErrClosed
	}
	if c.session.Loading {
		c.mu.Unlock()
		return frames.Frame{}, ErrConcurrentCapture
	}
	frame, ok := c.source.Snapshot()
	if !ok {
		c.mu.Unlock()
		return frames.Frame{}, ErrNoFrame
	}
	c.session.Loading = true
	c.session.ErrorMessage = ""
	snap := c.session
	c.mu.Unlock()

	c.notify(snap)
	return frame, nil
}

// finish applies the outcome (nil when the request panicked) and clears
// Loading. A disposed controller is left as it is.
func (c *CaptureController) finish(apply func(*Session)) Session {
	c.mu.Lock()
	if c.closed {
		snap := c.session
		c.mu.Unlock()
		return snap
	}
	if apply != nil {
		apply(&c.session)
	}
	c.session.Loading = false
	snap := c.session
	c.mu.Unlock()

	c.notify(snap)
	return snap
}

func (c *CaptureController) notify(s Session) {
	if c.onChange != nil {
		c.onChange(s)
	}
}

// Session returns a copy of the current session.
func (c *CaptureController) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Requests reports how many classification requests Capture has issued.
func (c *CaptureController) Requests() uint64 {
	return c.requests.Load()
}

// Close disposes the controller. A capture still in flight completes without
// touching the session.
func (c *CaptureController) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}
