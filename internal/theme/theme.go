// Package theme holds the process-wide light/dark presentation preference.
// It has no link to detection or games.
package theme

import "sync"

// Mode is a presentation mode.
type Mode string

const (
	Light Mode = "light"
	Dark  Mode = "dark"
)

// Preference is the current mode. The zero value is Light.
type Preference struct {
	mu   sync.RWMutex
	dark bool
}

// NewPreference returns a preference in the default mode.
func NewPreference() *Preference {
	return &Preference{}
}

// Mode returns the current mode.
func (p *Preference) Mode() Mode {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.dark {
		return Dark
	}
	return Light
}

// Toggle flips the mode and returns the new one.
func (p *Preference) Toggle() Mode {
	p.mu.Lock()
	p.dark = !p.dark
	p.mu.Unlock()
	return p.Mode()
}
