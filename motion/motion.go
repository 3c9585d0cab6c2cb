package motion

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidVector is returned for vectors with non-finite components.
var ErrInvalidVector = errors.New("invalid motion vector")

// posEpsilon bounds the numeric noise tolerated when deciding whether
// two vectors describe the same position at a shared instant.
const posEpsilon = 1e-9

// Vector is the kinematic description of the playhead: position,
// velocity and acceleration anchored at a timestamp on the timing
// source's clock.
type Vector struct {
	Position     float64
	Velocity     float64
	Acceleration float64
	Timestamp    float64
}

// Validate rejects vectors with non-finite components.
func (v Vector) Validate() error {
	for _, f := range []float64{v.Position, v.Velocity, v.Acceleration, v.Timestamp} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: %+v", ErrInvalidVector, v)
		}
	}
	return nil
}

// IsMoving reports whether the vector describes any motion at all.
func (v Vector) IsMoving() bool {
	return v.Velocity != 0 || v.Acceleration != 0
}

// PositionAt evaluates the position at clock time t.
func (v Vector) PositionAt(t float64) float64 {
	d := t - v.Timestamp
	return v.Position + v.Velocity*d + 0.5*v.Acceleration*d*d
}

// VelocityAt evaluates the velocity at clock time t.
func (v Vector) VelocityAt(t float64) float64 {
	return v.Velocity + v.Acceleration*(t-v.Timestamp)
}

// DirectionAt returns the sign of motion at clock time t: +1 forward,
// -1 backward, 0 stationary. At a turning point the imminent direction
// is the sign of the acceleration.
func (v Vector) DirectionAt(t float64) int {
	vel := v.VelocityAt(t)
	switch {
	case vel > 0:
		return 1
	case vel < 0:
		return -1
	case v.Acceleration > 0:
		return 1
	case v.Acceleration < 0:
		return -1
	}
	return 0
}

// ComputeVector re-anchors v at clock time t, evaluating position and
// velocity forward.
func ComputeVector(v Vector, t float64) Vector {
	return Vector{
		Position:     v.PositionAt(t),
		Velocity:     v.VelocityAt(t),
		Acceleration: v.Acceleration,
		Timestamp:    t,
	}
}

// PosRange returns the minimum and maximum positions v reaches over the
// clock interval [t0, t1]. The extremum of the parabola is included
// when its time falls inside the span.
func PosRange(v Vector, t0, t1 float64) (float64, float64) {
	p0 := v.PositionAt(t0)
	p1 := v.PositionAt(t1)
	lo, hi := math.Min(p0, p1), math.Max(p0, p1)

	if v.Acceleration != 0 {
		// velocity zero at tv; position extremal there
		tv := v.Timestamp - v.Velocity/v.Acceleration
		if tv > t0 && tv < t1 {
			pv := v.PositionAt(tv)
			lo, hi = math.Min(lo, pv), math.Max(hi, pv)
		}
	}
	return lo, hi
}

// CalculateDelta returns the smallest positive time offset dt from
// v.Timestamp at which the trajectory reaches one of the target
// positions, together with the index of the crossed target. When the
// motion never reaches any target it returns (+Inf, -1). Ties break by
// lowest target index.
func CalculateDelta(v Vector, targets []float64) (float64, int) {
	best := math.Inf(1)
	bestIdx := -1
	for i, target := range targets {
		dt := crossingDelta(v, target)
		if dt < best {
			best = dt
			bestIdx = i
		}
	}
	return best, bestIdx
}

// crossingDelta solves p(dt) = target for the smallest dt > 0, or +Inf.
func crossingDelta(v Vector, target float64) float64 {
	const a2 = 0.5
	a := a2 * v.Acceleration
	b := v.Velocity
	c := v.Position - target

	if a == 0 {
		if b == 0 {
			return math.Inf(1)
		}
		if dt := -c / b; dt > 0 {
			return dt
		}
		return math.Inf(1)
	}

	disc := b*b - 4*a*c
	if disc < 0 {
		return math.Inf(1)
	}
	sq := math.Sqrt(disc)
	r1 := (-b - sq) / (2 * a)
	r2 := (-b + sq) / (2 * a)
	if r1 > r2 {
		r1, r2 = r2, r1
	}
	if r1 > 0 {
		return r1
	}
	if r2 > 0 {
		return r2
	}
	return math.Inf(1)
}
