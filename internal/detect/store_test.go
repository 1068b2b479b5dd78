package detect

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moodlift/internal/classify"
	"moodlift/internal/frames"
)

func testOptions(c classify.Classifier) Options {
	return Options{
		Classifier:   c,
		PollInterval: time.Hour,
		FrameMaxAge:  time.Minute,
		MaxInFlight:  2,
	}
}

func recv(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return ""
	}
}

func TestStore_CreateAndGetView(t *testing.T) {
	s := NewStore(testOptions(labelClassifier(classify.LabelHappy)))
	defer s.CloseAll()

	v := s.CreateView()
	require.NotEmpty(t, v.ID)
	got, ok := s.GetView(v.ID)
	require.True(t, ok)
	assert.Same(t, v, got)
	assert.Equal(t, 1, s.Len())

	_, ok = s.GetView("missing")
	assert.False(t, ok)
}

func TestView_CaptureRequiresFrame(t *testing.T) {
	s := NewStore(testOptions(labelClassifier(classify.LabelSad)))
	defer s.CloseAll()
	v := s.CreateView()

	_, err := v.Capture(context.Background())
	assert.ErrorIs(t, err, ErrNoFrame)

	v.PublishFrame(frames.Frame{Data: []byte("jpeg"), MIME: "image/jpeg"})
	got, err := v.Capture(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sad", got.EmotionLabel)

	snap := v.Snapshot()
	assert.Equal(t, v.ID, snap.ID)
	assert.True(t, snap.Eligible)
	assert.Equal(t, "😢", snap.Suggestions.Glyph)
	assert.NotEmpty(t, snap.Suggestions.Items)
}

func TestView_SnapshotWithoutLabel(t *testing.T) {
	s := NewStore(testOptions(labelClassifier(classify.LabelNoFace)))
	defer s.CloseAll()
	v := s.CreateView()
	v.PublishFrame(frames.Frame{Data: []byte("jpeg")})

	_, err := v.Capture(context.Background())
	require.NoError(t, err)
	snap := v.Snapshot()
	assert.Equal(t, MessageNoFace, snap.Session.ErrorMessage)
	assert.False(t, snap.Eligible)
	assert.Empty(t, snap.Suggestions.Items)
}

func TestView_PublishesSessionEvents(t *testing.T) {
	s := NewStore(testOptions(labelClassifier(classify.LabelHappy)))
	defer s.CloseAll()
	v := s.CreateView()
	b, ok := s.Broadcaster(v.ID)
	require.True(t, ok)
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	v.PublishFrame(frames.Frame{Data: []byte("jpeg")})
	_, err := v.Capture(context.Background())
	require.NoError(t, err)

	assert.Equal(t, EventSession, recv(t, ch))
	assert.Equal(t, EventSession, recv(t, ch))
}

func TestView_PublishesPresenceEvents(t *testing.T) {
	opts := testOptions(labelClassifier(classify.LabelNoFace))
	opts.PollInterval = 2 * time.Millisecond
	s := NewStore(opts)
	defer s.CloseAll()
	v := s.CreateView()
	b, _ := s.Broadcaster(v.ID)
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	v.PublishFrame(frames.Frame{Data: []byte("jpeg")})
	assert.Equal(t, EventPresence, recv(t, ch))
	assert.Equal(t, PresenceAbsent, v.Presence())
}

func TestStore_CloseViewEndsStreams(t *testing.T) {
	s := NewStore(testOptions(labelClassifier(classify.LabelHappy)))
	v := s.CreateView()
	b, _ := s.Broadcaster(v.ID)
	ch := b.Subscribe()

	require.True(t, s.CloseView(v.ID))
	_, open := <-ch
	assert.False(t, open)
	assert.False(t, s.CloseView(v.ID))
	assert.Zero(t, s.Len())

	v.PublishFrame(frames.Frame{Data: []byte("jpeg")})
	_, err := v.Capture(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestStore_ReapIdle(t *testing.T) {
	s := NewStore(testOptions(labelClassifier(classify.LabelHappy)))
	defer s.CloseAll()
	stale := s.CreateView()
	fresh := s.CreateView()

	now := time.Now()
	stale.Touch(now.Add(-10 * time.Minute))
	fresh.Touch(now)

	assert.Equal(t, 1, s.ReapIdle(now, 2*time.Minute))
	_, ok := s.GetView(stale.ID)
	assert.False(t, ok)
	_, ok = s.GetView(fresh.ID)
	assert.True(t, ok)
}
