package interval

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInterval is returned for intervals with low > high, empty
// intervals (low == high with an exclusive side) and non-finite bounds.
var ErrInvalidInterval = errors.New("invalid interval")

// Interval is a one-dimensional interval with per-side inclusivity.
// A singular interval has Low == High and both sides inclusive.
type Interval struct {
	Low         float64
	High        float64
	LowInclude  bool
	HighInclude bool
}

// New validates and returns an interval.
func New(low, high float64, lowInclude, highInclude bool) (Interval, error) {
	if math.IsNaN(low) || math.IsNaN(high) || math.IsInf(low, 0) || math.IsInf(high, 0) {
		return Interval{}, fmt.Errorf("%w: bounds must be finite, got [%v, %v]", ErrInvalidInterval, low, high)
	}
	if low > high {
		return Interval{}, fmt.Errorf("%w: low %v > high %v", ErrInvalidInterval, low, high)
	}
	if low == high && !(lowInclude && highInclude) {
		return Interval{}, fmt.Errorf("%w: empty interval at %v", ErrInvalidInterval, low)
	}
	return Interval{Low: low, High: high, LowInclude: lowInclude, HighInclude: highInclude}, nil
}

// NewClosed returns the closed interval [low, high].
func NewClosed(low, high float64) (Interval, error) {
	return New(low, high, true, true)
}

// NewSingular returns the point interval [p, p].
func NewSingular(p float64) (Interval, error) {
	return New(p, p, true, true)
}

// MustNew is New for statically-known intervals. It panics on invalid
// input.
func MustNew(low, high float64, lowInclude, highInclude bool) Interval {
	itv, err := New(low, high, lowInclude, highInclude)
	if err != nil {
		panic(err)
	}
	return itv
}

// Validate re-checks the interval invariants. Useful for intervals that
// arrived through struct literals rather than New.
func (i Interval) Validate() error {
	_, err := New(i.Low, i.High, i.LowInclude, i.HighInclude)
	return err
}

// IsSingular reports whether the interval is a single point.
func (i Interval) IsSingular() bool {
	return i.Low == i.High
}

// Length returns High - Low.
func (i Interval) Length() float64 {
	return i.High - i.Low
}

// Covers reports whether p lies inside the interval.
func (i Interval) Covers(p float64) bool {
	if p < i.Low || (p == i.Low && !i.LowInclude) {
		return false
	}
	if p > i.High || (p == i.High && !i.HighInclude) {
		return false
	}
	return true
}

// Endpoints returns the interval's low and high endpoints. A singular
// interval reports the same singular endpoint for both sides.
func (i Interval) Endpoints() (Endpoint, Endpoint) {
	if i.IsSingular() {
		e := Endpoint{Value: i.Low, Closed: true, Singular: true}
		return e, e
	}
	low := Endpoint{Value: i.Low, Closed: i.LowInclude}
	high := Endpoint{Value: i.High, Right: true, Closed: i.HighInclude}
	return low, high
}

func (i Interval) String() string {
	lb, rb := "(", ")"
	if i.LowInclude {
		lb = "["
	}
	if i.HighInclude {
		rb = "]"
	}
	return fmt.Sprintf("%s%v, %v%s", lb, i.Low, i.High, rb)
}
