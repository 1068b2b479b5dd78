package realtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCountdown_TickToZero(t *testing.T) {
	c := NewCountdown(3)
	assert.Equal(t, 3, c.Remaining)

	assert.False(t, c.Tick())
	assert.False(t, c.Tick())
	assert.True(t, c.Tick(), "third tick reaches zero")
	assert.True(t, c.Expired())

	assert.False(t, c.Tick(), "ticks at zero must not report expiry again")
	assert.Equal(t, 0, c.Remaining)

	c.Reset()
	assert.Equal(t, 3, c.Remaining)
	assert.False(t, c.Expired())
}

func TestCadence_NotStarted(t *testing.T) {
	var c Cadence
	c.Interval = time.Second
	_, ok := c.Next()
	assert.False(t, ok)
	assert.Equal(t, 0, c.Due(time.Now()))
	assert.False(t, c.Active())
}

func TestCadence_Due(t *testing.T) {
	now := time.Now().UTC()
	c := Cadence{Interval: 100 * time.Millisecond}
	c.Start(now)

	assert.Equal(t, 0, c.Due(now.Add(50*time.Millisecond)), "not due before the first interval")
	assert.Equal(t, 1, c.Due(now.Add(100*time.Millisecond)), "due exactly at the interval")
	assert.Equal(t, 0, c.Due(now.Add(150*time.Millisecond)))

	// A late caller catches up on every missed tick.
	assert.Equal(t, 3, c.Due(now.Add(420*time.Millisecond)))
	next, ok := c.Next()
	assert.True(t, ok)
	assert.Equal(t, now.Add(500*time.Millisecond), next)

	c.Stop()
	assert.Equal(t, 0, c.Due(now.Add(time.Hour)))
}
