// Package detect is the session orchestration core: per open page it runs a
// background presence poller and an on-demand capture controller against the
// same frame source and the same classification service.
//
// The two write disjoint state. The poller owns Presence and the controller
// owns Session, so a stale poll finishing after a fresh capture can only
// leave the presence indicator briefly out of date; it can never touch the
// capture result, and the reverse holds too.
package detect

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"moodlift/internal/classify"
	"moodlift/internal/frames"
	"moodlift/internal/suggest"
)

// Events published on a view's broadcaster.
const (
	EventPresence = "presence"
	EventSession  = "session"
)

// Options configures every view created by a Store.
type Options struct {
	Classifier   classify.Classifier
	PollInterval time.Duration
	FrameMaxAge  time.Duration
	// MaxInFlight bounds outbound requests per view, shared by the poller and
	// the capture controller.
	MaxInFlight int
	Logger      *slog.Logger
}

// View is one open detector page. It owns the frame inbox, the presence
// poller and the capture controller, and disposes all three on Close.
type View struct {
	ID        string
	CreatedAt time.Time

	inbox    *frames.Inbox
	poller   *PresencePoller
	capture  *CaptureController
	lastSeen atomic.Int64
	closed   sync.Once
}

func newView(id string, opts Options, now time.Time, publish func(event string)) *View {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With("view", id)

	shared := classify.Chain(opts.Classifier, classify.Limit(opts.MaxInFlight))
	inbox := frames.NewInbox(opts.FrameMaxAge)
	v := &View{
		ID:        id,
		CreatedAt: now,
		inbox:     inbox,
	}
	v.poller = NewPresencePoller(inbox, shared, opts.PollInterval, log, func(p Presence) {
		log.Debug("presence changed", "presence", p.String())
		publish(EventPresence)
	})
	v.capture = NewCaptureController(inbox, classify.Chain(shared, classify.Log(log, "capture")), func(Session) {
		publish(EventSession)
	})
	v.lastSeen.Store(now.UnixNano())
	return v
}

// PublishFrame makes f the view's current frame.
func (v *View) PublishFrame(f frames.Frame) uint64 {
	v.Touch(time.Now())
	return v.inbox.Publish(f)
}

// Capture runs one on-demand capture. See CaptureController.Capture.
func (v *View) Capture(ctx context.Context) (Session, error) {
	v.Touch(time.Now())
	return v.capture.Capture(ctx)
}

// Presence returns the current presence indicator.
func (v *View) Presence() Presence {
	return v.poller.State()
}

// Session returns the current capture session.
func (v *View) Session() Session {
	return v.capture.Session()
}

// Touch records client activity for idle reaping.
func (v *View) Touch(now time.Time) {
	v.lastSeen.Store(now.UnixNano())
}

// LastSeen returns the time of the last client activity.
func (v *View) LastSeen() time.Time {
	return time.Unix(0, v.lastSeen.Load())
}

// Snapshot is a consistent read of a view for rendering.
type Snapshot struct {
	ID          string
	Presence    Presence
	Session     Session
	Suggestions suggest.Suggestions
	// Eligible reports whether the uplift games are offered for the label.
	Eligible bool
}

// Snapshot returns the view state plus the suggestion content for the
// current label.
func (v *View) Snapshot() Snapshot {
	s := v.Session()
	snap := Snapshot{
		ID:       v.ID,
		Presence: v.Presence(),
		Session:  s,
	}
	if s.EmotionLabel != "" {
		snap.Suggestions = suggest.For(s.EmotionLabel)
		snap.Eligible = suggest.EligibleForUpliftGame(s.EmotionLabel)
	}
	return snap
}

func (v *View) start() {
	v.poller.Start()
}

// Close stops the poller, cancels in-flight requests and freezes the
// session. It is safe to call more than once.
func (v *View) Close() {
	v.closed.Do(func() {
		v.capture.Close()
		v.poller.Close()
		v.inbox.Clear()
	})
}
