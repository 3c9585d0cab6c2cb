package effect

import (
	"github.com/fogleman/ease"
)

// Effect shapes the intensity of a cue while it fades in after entering.
type Effect struct {
	// The type of the effect
	Type string

	// Attack is the time in seconds to reach full intensity.
	Attack float64
}

// NewEffect creates a new Effect of type t with the specified attack time.
func NewEffect(t string, attack float64) *Effect {
	return &Effect{
		Type:   t,
		Attack: attack,
	}
}

// Level returns the intensity for elapsed seconds since the cue entered,
// in [0, 1].
func (e *Effect) Level(elapsed float64) float64 {
	if e.Attack <= 0 || elapsed >= e.Attack {
		return 1.0
	}
	if elapsed < 0 {
		return 0.0
	}

	u := elapsed / e.Attack
	switch e.Type {
	case "linear":
		return u
	case "out-cubic":
		return ease.OutCubic(u)
	default:
		// TODO - support switching to more easing functions. For now
		// anything unknown falls back to the InQuart function.
		return ease.InQuart(u)
	}
}
