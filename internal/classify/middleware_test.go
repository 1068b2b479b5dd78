package classify

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moodlift/internal/frames"
)

func TestLimit_BoundsOutstandingRequests(t *testing.T) {
	var inFlight, peak atomic.Int32
	release := make(chan struct{})
	inner := Func(func(ctx context.Context, _ frames.Frame) (string, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		<-release
		inFlight.Add(-1)
		return LabelHappy, nil
	})
	c := Chain(inner, Limit(2))

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.Classify(context.Background(), frames.Frame{})
		}()
	}
	require.Eventually(t, func() bool { return inFlight.Load() == 2 }, time.Second, time.Millisecond)
	close(release)
	wg.Wait()
	assert.EqualValues(t, 2, peak.Load())
}

func TestLimit_QueuedContextCancelled(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	inner := Func(func(context.Context, frames.Frame) (string, error) {
		<-block
		return LabelHappy, nil
	})
	c := Chain(inner, Limit(1))
	go func() { _, _ = c.Classify(context.Background(), frames.Frame{}) }()
	time.Sleep(5 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := c.Classify(ctx, frames.Frame{})
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestChain_Order(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next Classifier) Classifier {
			return Func(func(ctx context.Context, f frames.Frame) (string, error) {
				order = append(order, name)
				return next.Classify(ctx, f)
			})
		}
	}
	c := Chain(Func(func(context.Context, frames.Frame) (string, error) {
		order = append(order, "inner")
		return LabelNeutral, nil
	}), mark("outer"), mark("middle"))

	_, err := c.Classify(context.Background(), frames.Frame{})
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "middle", "inner"}, order)
}

func TestTrace_PassesResultsThrough(t *testing.T) {
	c := Chain(Func(func(context.Context, frames.Frame) (string, error) {
		return LabelFear, nil
	}), Trace())
	label, err := c.Classify(context.Background(), frames.Frame{})
	require.NoError(t, err)
	assert.Equal(t, LabelFear, label)

	failing := Chain(Func(func(context.Context, frames.Frame) (string, error) {
		return "", transportErr("post", 500, errors.New("down"))
	}), Trace())
	_, err = failing.Classify(context.Background(), frames.Frame{})
	assert.ErrorIs(t, err, ErrTransport)
}

func TestLog_WritesCallerAndOutcome(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ok := Chain(Func(func(context.Context, frames.Frame) (string, error) {
		return LabelHappy, nil
	}), Log(log, "capture"))
	_, _ = ok.Classify(context.Background(), frames.Frame{Seq: 3})
	assert.Contains(t, buf.String(), "classification finished")
	assert.Contains(t, buf.String(), "caller=capture")
	assert.Contains(t, buf.String(), "label=happy")

	buf.Reset()
	bad := Chain(Func(func(context.Context, frames.Frame) (string, error) {
		return "", transportErr("post", 0, errors.New("refused"))
	}), Log(log, "capture"))
	_, _ = bad.Classify(context.Background(), frames.Frame{})
	assert.Contains(t, buf.String(), "classification failed")
	assert.Contains(t, buf.String(), "refused")
}
