package frames

import (
	"sync"
	"time"
)

// Source hands out the current frame of a live video source. ok is false
// while the source is not ready.
type Source interface {
	Snapshot() (Frame, bool)
}

// Inbox is a latest-frame mailbox: every Publish overwrites the previous
// frame, and readers always get the freshest one. Frames older than maxAge
// count as unavailable so a stalled camera reads as "not ready".
type Inbox struct {
	mu      sync.Mutex
	frame   Frame
	has     bool
	seq     uint64
	dropped uint64
	reads   uint64
	maxAge  time.Duration
	now     func() time.Time
}

var _ Source = (*Inbox)(nil)

// NewInbox returns an empty inbox. A non-positive maxAge disables the
// staleness check.
func NewInbox(maxAge time.Duration) *Inbox {
	return &Inbox{maxAge: maxAge, now: time.Now}
}

// Publish replaces the current frame and returns the sequence number it was
// assigned.
func (in *Inbox) Publish(f Frame) uint64 {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.has && in.frame.Seq > in.reads {
		in.dropped++
	}
	in.seq++
	f.Seq = in.seq
	if f.CapturedAt.IsZero() {
		f.CapturedAt = in.now()
	}
	in.frame = f
	in.has = true
	return f.Seq
}

// Snapshot returns the latest frame if one is present and fresh enough.
func (in *Inbox) Snapshot() (Frame, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if !in.has {
		return Frame{}, false
	}
	if in.maxAge > 0 && in.now().Sub(in.frame.CapturedAt) > in.maxAge {
		return Frame{}, false
	}
	in.reads = in.frame.Seq
	return in.frame, true
}

// Clear drops the current frame, e.g. when the camera stream ends.
func (in *Inbox) Clear() {
	in.mu.Lock()
	in.frame = Frame{}
	in.has = false
	in.mu.Unlock()
}

// Stats reports published and never-read frame counts.
func (in *Inbox) Stats() (published, dropped uint64) {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.seq, in.dropped
}
