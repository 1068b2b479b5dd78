package detect

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moodlift/internal/classify"
	"moodlift/internal/frames"
)

type staticSource struct {
	frame frames.Frame
	ok    bool
}

func (s staticSource) Snapshot() (frames.Frame, bool) { return s.frame, s.ok }

func ready() staticSource {
	return staticSource{frame: frames.Frame{Data: []byte{0xff, 0xd8}, MIME: "image/jpeg", Seq: 1}, ok: true}
}

func labelClassifier(label string) classify.Classifier {
	return classify.Func(func(context.Context, frames.Frame) (string, error) {
		return label, nil
	})
}

// gated blocks every request until release is closed.
type gated struct {
	label   string
	release chan struct{}
	calls   atomic.Int32
}

func newGated(label string) *gated {
	return &gated{label: label, release: make(chan struct{})}
}

func (g *gated) Classify(ctx context.Context, _ frames.Frame) (string, error) {
	g.calls.Add(1)
	select {
	case <-g.release:
		return g.label, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestCapture_Outcomes(t *testing.T) {
	tests := []struct {
		name      string
		label     string
		err       error
		wantLabel string
		wantMsg   string
	}{
		{name: "emotion", label: classify.LabelHappy, wantLabel: "happy"},
		{name: "unknown label passes through", label: "surprise", wantLabel: "surprise"},
		{name: "empty label passes through", label: ""},
		{name: "no face", label: classify.LabelNoFace, wantMsg: MessageNoFace},
		{name: "transport failure", err: &classify.TransportError{Op: "post", Status: 502}, wantLabel: LabelFailed, wantMsg: MessageFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCaptureController(ready(), classify.Func(func(context.Context, frames.Frame) (string, error) {
				return tt.label, tt.err
			}), nil)

			got, err := c.Capture(context.Background())
			if tt.err != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, classify.ErrTransport))
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, Session{EmotionLabel: tt.wantLabel, ErrorMessage: tt.wantMsg}, got)
			assert.Equal(t, got, c.Session())
		})
	}
}

func TestCapture_NoFaceClearsPreviousLabel(t *testing.T) {
	label := classify.LabelSad
	c := NewCaptureController(ready(), classify.Func(func(context.Context, frames.Frame) (string, error) {
		return label, nil
	}), nil)

	_, err := c.Capture(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sad", c.Session().EmotionLabel)

	label = classify.LabelNoFace
	_, err = c.Capture(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Session{ErrorMessage: MessageNoFace}, c.Session())
}

func TestCapture_NoFrameChangesNothing(t *testing.T) {
	var calls atomic.Int32
	c := NewCaptureController(staticSource{}, classify.Func(func(context.Context, frames.Frame) (string, error) {
		calls.Add(1)
		return classify.LabelHappy, nil
	}), nil)

	_, err := c.Capture(context.Background())
	assert.ErrorIs(t, err, ErrNoFrame)
	assert.Equal(t, Session{}, c.Session())
	assert.Zero(t, calls.Load())
	assert.Zero(t, c.Requests())
}

func TestCapture_SecondCaptureWhileLoadingIsRejected(t *testing.T) {
	g := newGated(classify.LabelAngry)
	var changes []Session
	var mu sync.Mutex
	c := NewCaptureController(ready(), g, func(s Session) {
		mu.Lock()
		changes = append(changes, s)
		mu.Unlock()
	})

	done := make(chan Session)
	go func() {
		s, _ := c.Capture(context.Background())
		done <- s
	}()
	require.Eventually(t, func() bool { return c.Session().Loading }, time.Second, time.Millisecond)

	_, err := c.Capture(context.Background())
	assert.ErrorIs(t, err, ErrConcurrentCapture)

	close(g.release)
	final := <-done
	assert.Equal(t, Session{EmotionLabel: "angry"}, final)
	assert.EqualValues(t, 1, g.calls.Load())
	assert.EqualValues(t, 1, c.Requests())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, changes, 2)
	assert.True(t, changes[0].Loading)
	assert.False(t, changes[1].Loading)
}

func TestCapture_BeginClearsErrorMessage(t *testing.T) {
	label := classify.LabelNoFace
	g := newGated("")
	c := NewCaptureController(ready(), classify.Func(func(ctx context.Context, f frames.Frame) (string, error) {
		if label == classify.LabelNoFace {
			return label, nil
		}
		return g.Classify(ctx, f)
	}), nil)

	_, err := c.Capture(context.Background())
	require.NoError(t, err)
	require.Equal(t, MessageNoFace, c.Session().ErrorMessage)

	label = classify.LabelHappy
	g.label = classify.LabelHappy
	go func() { _, _ = c.Capture(context.Background()) }()
	require.Eventually(t, func() bool { return c.Session().Loading }, time.Second, time.Millisecond)
	assert.Empty(t, c.Session().ErrorMessage)
	close(g.release)
	require.Eventually(t, func() bool { return !c.Session().Loading }, time.Second, time.Millisecond)
	assert.Equal(t, "happy", c.Session().EmotionLabel)
}

func TestCapture_NoMutationAfterClose(t *testing.T) {
	g := newGated(classify.LabelHappy)
	var changes atomic.Int32
	c := NewCaptureController(ready(), g, func(Session) { changes.Add(1) })

	done := make(chan struct{})
	go func() {
		_, _ = c.Capture(context.Background())
		close(done)
	}()
	require.Eventually(t, func() bool { return c.Session().Loading }, time.Second, time.Millisecond)

	c.Close()
	before := c.Session()
	close(g.release)
	<-done

	assert.Equal(t, before, c.Session())
	assert.EqualValues(t, 1, changes.Load())

	_, err := c.Capture(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestPresenceFor(t *testing.T) {
	assert.Equal(t, PresenceAbsent, PresenceFor(classify.LabelNoFace))
	for _, label := range []string{"happy", "sad", "angry", "neutral", "fear", "surprise", ""} {
		assert.Equal(t, PresencePresent, PresenceFor(label), label)
	}
	assert.Equal(t, "unknown", PresenceUnknown.String())
}

func TestPoller_TracksPresence(t *testing.T) {
	var label atomic.Value
	label.Store(classify.LabelNeutral)
	var changes []Presence
	var mu sync.Mutex
	p := NewPresencePoller(ready(), classify.Func(func(context.Context, frames.Frame) (string, error) {
		return label.Load().(string), nil
	}), 5*time.Millisecond, nil, func(next Presence) {
		mu.Lock()
		changes = append(changes, next)
		mu.Unlock()
	})
	defer p.Close()

	assert.Equal(t, PresenceUnknown, p.State())
	p.Start()
	require.Eventually(t, func() bool { return p.State() == PresencePresent }, time.Second, time.Millisecond)

	label.Store(classify.LabelNoFace)
	require.Eventually(t, func() bool { return p.State() == PresenceAbsent }, time.Second, time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []Presence{PresencePresent, PresenceAbsent}, changes)
}

func TestPoller_SkipsTicksWhilePollInFlight(t *testing.T) {
	g := newGated(classify.LabelHappy)
	p := NewPresencePoller(ready(), g, 2*time.Millisecond, nil, nil)
	defer p.Close()
	p.Start()

	require.Eventually(t, func() bool { return p.Stats().Skipped >= 3 }, time.Second, time.Millisecond)
	assert.EqualValues(t, 1, g.calls.Load())
	assert.EqualValues(t, 1, p.Stats().Polls)

	close(g.release)
	require.Eventually(t, func() bool { return p.State() == PresencePresent }, time.Second, time.Millisecond)
}

func TestPoller_NoFrameSkipsRequest(t *testing.T) {
	var calls atomic.Int32
	p := NewPresencePoller(staticSource{}, classify.Func(func(context.Context, frames.Frame) (string, error) {
		calls.Add(1)
		return classify.LabelHappy, nil
	}), 2*time.Millisecond, nil, nil)
	defer p.Close()
	p.Start()

	require.Eventually(t, func() bool { return p.Stats().NoFrame >= 2 }, time.Second, time.Millisecond)
	assert.Zero(t, calls.Load())
	assert.Equal(t, PresenceUnknown, p.State())
}

func TestPoller_FailureLeavesStateAndRetries(t *testing.T) {
	var fail atomic.Bool
	p := NewPresencePoller(ready(), classify.Func(func(context.Context, frames.Frame) (string, error) {
		if fail.Load() {
			return "", &classify.TransportError{Op: "post"}
		}
		return classify.LabelNoFace, nil
	}), 2*time.Millisecond, nil, nil)
	defer p.Close()
	p.Start()
	require.Eventually(t, func() bool { return p.State() == PresenceAbsent }, time.Second, time.Millisecond)

	fail.Store(true)
	require.Eventually(t, func() bool { return p.Stats().Failures >= 2 }, time.Second, time.Millisecond)
	assert.Equal(t, PresenceAbsent, p.State())
}

func TestPoller_CloseCancelsInFlightAndFreezes(t *testing.T) {
	g := newGated(classify.LabelHappy)
	var changes atomic.Int32
	p := NewPresencePoller(ready(), g, 2*time.Millisecond, nil, func(Presence) { changes.Add(1) })
	p.Start()
	require.Eventually(t, func() bool { return g.calls.Load() == 1 }, time.Second, time.Millisecond)

	p.Close()
	close(g.release)
	assert.Equal(t, PresenceUnknown, p.State())
	assert.Zero(t, changes.Load())

	p.Start()
	time.Sleep(10 * time.Millisecond)
	assert.EqualValues(t, 1, g.calls.Load())
}

func TestPollerAndCapture_WriteDisjointState(t *testing.T) {
	src := ready()
	var pollLabel atomic.Value
	pollLabel.Store(classify.LabelNoFace)
	p := NewPresencePoller(src, classify.Func(func(context.Context, frames.Frame) (string, error) {
		return pollLabel.Load().(string), nil
	}), 2*time.Millisecond, nil, nil)
	defer p.Close()
	c := NewCaptureController(src, labelClassifier(classify.LabelFear), nil)

	p.Start()
	require.Eventually(t, func() bool { return p.State() == PresenceAbsent }, time.Second, time.Millisecond)

	_, err := c.Capture(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PresenceAbsent, p.State())
	assert.Equal(t, Session{EmotionLabel: "fear"}, c.Session())

	pollLabel.Store(classify.LabelHappy)
	require.Eventually(t, func() bool { return p.State() == PresencePresent }, time.Second, time.Millisecond)
	assert.Equal(t, Session{EmotionLabel: "fear"}, c.Session())
}
