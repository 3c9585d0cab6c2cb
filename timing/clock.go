package timing

import (
	"time"

	"k8s.io/utils/clock"
)

// Clock is the sequencer's view of a timing source's monotonic clock:
// seconds since an arbitrary origin, plus timers on the same timescale.
type Clock interface {
	// Now returns the current clock reading in seconds.
	Now() float64

	// NewTimer returns a timer that fires d seconds from now.
	NewTimer(d float64) Timer
}

// Timer is a cancellable timer on a Clock's timescale.
type Timer interface {
	C() <-chan time.Time
	Stop() bool
	Reset(d float64) bool
}

// NewClock adapts a clock.Clock into a Clock whose origin is the
// moment of the call. Pass clock.RealClock{} in production and a
// testing FakeClock in tests.
func NewClock(c clock.Clock) Clock {
	return &wrappedClock{inner: c, origin: c.Now()}
}

type wrappedClock struct {
	inner  clock.Clock
	origin time.Time
}

func (c *wrappedClock) Now() float64 {
	return c.inner.Since(c.origin).Seconds()
}

func (c *wrappedClock) NewTimer(d float64) Timer {
	return &wrappedTimer{inner: c.inner.NewTimer(secondsToDuration(d))}
}

type wrappedTimer struct {
	inner clock.Timer
}

func (t *wrappedTimer) C() <-chan time.Time {
	return t.inner.C()
}

func (t *wrappedTimer) Stop() bool {
	return t.inner.Stop()
}

func (t *wrappedTimer) Reset(d float64) bool {
	return t.inner.Reset(secondsToDuration(d))
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
