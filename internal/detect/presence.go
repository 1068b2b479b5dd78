package detect

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"moodlift/internal/classify"
	"moodlift/internal/frames"
)

// Presence is the tri-state face indicator.
type Presence int

const (
	PresenceUnknown Presence = iota
	PresencePresent
	PresenceAbsent
)

// String returns the lower-case name used in templates and logs.
func (p Presence) String() string {
	switch p {
	case PresencePresent:
		return "present"
	case PresenceAbsent:
		return "absent"
	default:
		return "unknown"
	}
}

// PresenceFor maps a classification label onto presence.
func PresenceFor(label string) Presence {
	if label == classify.LabelNoFace {
		return PresenceAbsent
	}
	return PresencePresent
}

// PollerStats counts what the poller did.
type PollerStats struct {
	Polls    uint64 // requests issued
	Skipped  uint64 // ticks skipped because the previous poll had not resolved
	NoFrame  uint64 // ticks with no frame available
	Failures uint64 // requests that failed
}

// PresencePoller samples the frame source on a fixed cadence and keeps the
// presence indicator. It is the only writer of its Presence. At most one poll
// is outstanding: a tick arriving while the previous request is unresolved is
// skipped. Failures leave the state untouched and are retried on the next
// tick without backoff.
type PresencePoller struct {
	source     frames.Source
	classifier classify.Classifier
	interval   time.Duration
	log        *slog.Logger
	onChange   func(Presence)

	mu     sync.Mutex
	state  Presence
	closed bool

	inFlight atomic.Bool
	polls    atomic.Uint64
	skipped  atomic.Uint64
	noFrame  atomic.Uint64
	failures atomic.Uint64

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started atomic.Bool
}

// NewPresencePoller returns a stopped poller in the Unknown state. onChange,
// if set, is called after every state change, outside the poller's lock.
func NewPresencePoller(source frames.Source, classifier classify.Classifier, interval time.Duration, log *slog.Logger, onChange func(Presence)) *PresencePoller {
	if log == nil {
		log = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &PresencePoller{
		source:     source,
		classifier: classifier,
		interval:   interval,
		log:        log,
		onChange:   onChange,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start launches the polling loop. The first poll happens one interval after
// Start. Calling Start twice, or after Close, does nothing.
func (p *PresencePoller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || !p.started.CompareAndSwap(false, true) {
		return
	}
	p.wg.Add(1)
	go p.loop()
}

func (p *PresencePoller) loop() {
	defer p.wg.Done()
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.tick()
		}
	}
}

// tick runs one poll cycle. The request itself runs on its own goroutine so
// a slow service never delays the ticker.
func (p *PresencePoller) tick() {
	if p.ctx.Err() != nil {
		return
	}
	if !p.inFlight.CompareAndSwap(false, true) {
		p.skipped.Add(1)
		p.log.Debug("presence poll skipped, previous still in flight")
		return
	}
	frame, ok := p.source.Snapshot()
	if !ok {
		p.noFrame.Add(1)
		p.inFlight.Store(false)
		return
	}
	p.polls.Add(1)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.inFlight.Store(false)

		label, err := p.classifier.Classify(p.ctx, frame)
		if err != nil {
			p.failures.Add(1)
			p.log.Debug("presence poll failed", "seq", frame.Seq, "error", err)
			return
		}
		p.set(PresenceFor(label))
	}()
}

func (p *PresencePoller) set(next Presence) {
	p.mu.Lock()
	if p.closed || p.state == next {
		p.mu.Unlock()
		return
	}
	p.state = next
	p.mu.Unlock()
	if p.onChange != nil {
		p.onChange(next)
	}
}

// State returns the current presence.
func (p *PresencePoller) State() Presence {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Stats returns the poller's counters.
func (p *PresencePoller) Stats() PollerStats {
	return PollerStats{
		Polls:    p.polls.Load(),
		Skipped:  p.skipped.Load(),
		NoFrame:  p.noFrame.Load(),
		Failures: p.failures.Load(),
	}
}

// Close stops the loop, cancels an in-flight request and waits for every
// goroutine to exit. No state change happens after Close returns.
func (p *PresencePoller) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.cancel()
	p.wg.Wait()
}
