package fixture

import (
	"sync"

	"github.com/lucasb-eyer/go-colorful"
)

// Interface represents the set of methods required for a complete
// playback fixture.
type Interface interface {
	NeedsUpdate() bool

	// Reset is called to reset the state of the fixture.
	Reset() error
}

// Fixture is a renderable output driven by cue transitions.
type Fixture struct {
	// The fixture name used by show cues to address it
	Name string

	mu          sync.Mutex
	intensity   float64
	color       colorful.Color
	needsUpdate bool
}

// NewFixture creates a dark fixture with the given name.
func NewFixture(name string) *Fixture {
	return &Fixture{Name: name}
}

// SetIntensity sets the fixture intensity in [0, 1].
func (f *Fixture) SetIntensity(v float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.intensity = v
	f.needsUpdate = true
}

// GetIntensity returns the fixture intensity.
func (f *Fixture) GetIntensity() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.intensity
}

// SetColor sets the fixture color.
func (f *Fixture) SetColor(c colorful.Color) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.color = c
	f.needsUpdate = true
}

// GetColor returns the fixture color.
func (f *Fixture) GetColor() colorful.Color {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.color
}

// NeedsUpdate returns true when the fixture state changed since the
// last render.
func (f *Fixture) NeedsUpdate() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.needsUpdate
}

// HasUpdated marks the current state as rendered.
func (f *Fixture) HasUpdated() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.needsUpdate = false
}

// Reset turns the fixture off.
func (f *Fixture) Reset() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.intensity = 0
	f.color = colorful.Color{}
	f.needsUpdate = true
	return nil
}
