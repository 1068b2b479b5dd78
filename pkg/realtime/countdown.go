package realtime

import "time"

// Countdown holds the integer countdown of one timed step (a quiz question):
// it starts at Length and loses one unit per Tick until it reaches zero. It
// knows nothing about wall-clock time; a Cadence decides when Tick is due.
type Countdown struct {
	Length    int
	Remaining int
}

// NewCountdown returns a countdown already reset to length.
func NewCountdown(length int) Countdown {
	return Countdown{Length: length, Remaining: length}
}

// Reset restores the full length. Call on every step transition.
func (c *Countdown) Reset() {
	c.Remaining = c.Length
}

// Tick removes one unit and reports whether this tick reached zero. Ticks at
// zero are ignored and report false so expiry fires exactly once.
func (c *Countdown) Tick() (expired bool) {
	if c.Remaining <= 0 {
		return false
	}
	c.Remaining--
	return c.Remaining == 0
}

// Expired reports whether the countdown is at zero.
func (c *Countdown) Expired() bool {
	return c.Remaining <= 0
}

// Cadence schedules fixed-interval ticks against the now passed in by the
// caller. The zero value is stopped.
type Cadence struct {
	Interval time.Duration
	next     time.Time
}

// Start schedules the first tick one interval after now.
func (c *Cadence) Start(now time.Time) {
	c.next = now.Add(c.Interval)
}

// Stop unschedules all ticks.
func (c *Cadence) Stop() {
	c.next = time.Time{}
}

// Active reports whether a tick is scheduled.
func (c *Cadence) Active() bool {
	return !c.next.IsZero()
}

// Next returns the time of the next scheduled tick, and false when stopped.
func (c *Cadence) Next() (time.Time, bool) {
	if c.next.IsZero() {
		return time.Time{}, false
	}
	return c.next, true
}

// Due consumes and returns how many ticks have elapsed by now. A tick
// scheduled exactly at now is due.
func (c *Cadence) Due(now time.Time) int {
	if c.next.IsZero() || c.Interval <= 0 || now.Before(c.next) {
		return 0
	}
	n := int(now.Sub(c.next)/c.Interval) + 1
	c.next = c.next.Add(time.Duration(n) * c.Interval)
	return n
}
