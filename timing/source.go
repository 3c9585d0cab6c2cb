package timing

import (
	"math"

	"github.com/robmorgan/playhead/emitter"
	"github.com/robmorgan/playhead/motion"
)

// ChangeEvent accompanies every timing-source change notification.
// Init marks the initial snapshot that makes the source ready.
type ChangeEvent struct {
	Init bool
}

// Source is the timing source consumed by the sequencer: a motion
// vector that changes over time, the clock it is anchored to, and a
// readiness latch.
type Source interface {
	Vector() motion.Vector
	OldVector() motion.Vector
	Clock() Clock
	Range() (float64, float64)
	IsReady() bool
	Ready() <-chan struct{}
	AddCallback(fn func(ChangeEvent)) emitter.Handle
	RemoveCallback(h emitter.Handle)
}

// DefaultRange spans the whole axis.
func DefaultRange() (float64, float64) {
	return math.Inf(-1), math.Inf(1)
}
