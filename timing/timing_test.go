package timing

import (
	"math"
	"testing"
	"time"

	"github.com/robmorgan/playhead/motion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clocktesting "k8s.io/utils/clock/testing"
)

func TestClockSecondsSinceOrigin(t *testing.T) {
	t.Parallel()

	fc := clocktesting.NewFakeClock(time.Unix(1000, 0))
	ck := NewClock(fc)
	assert.Equal(t, 0.0, ck.Now())

	fc.Step(2500 * time.Millisecond)
	assert.InDelta(t, 2.5, ck.Now(), 1e-9)
}

func TestClockTimer(t *testing.T) {
	t.Parallel()

	fc := clocktesting.NewFakeClock(time.Unix(1000, 0))
	ck := NewClock(fc)

	timer := ck.NewTimer(1.0)
	select {
	case <-timer.C():
		t.Fatal("timer fired early")
	default:
	}

	fc.Step(time.Second)
	select {
	case <-timer.C():
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
}

func TestLocalSourceReadiness(t *testing.T) {
	t.Parallel()

	fc := clocktesting.NewFakeClock(time.Unix(1000, 0))
	src := NewLocalSource(NewClock(fc))

	require.False(t, src.IsReady())
	select {
	case <-src.Ready():
		t.Fatal("ready before first update")
	default:
	}

	var events []ChangeEvent
	src.AddCallback(func(ev ChangeEvent) { events = append(events, ev) })

	require.NoError(t, src.Update(motion.Vector{Position: 3, Velocity: 1}))
	require.True(t, src.IsReady())
	select {
	case <-src.Ready():
	default:
		t.Fatal("ready channel not closed")
	}
	require.Len(t, events, 1)
	assert.True(t, events[0].Init)

	require.NoError(t, src.Update(motion.Vector{Position: 9, Timestamp: 2}))
	require.Len(t, events, 2)
	assert.False(t, events[1].Init)
	assert.Equal(t, 3.0, src.OldVector().Position)
	assert.Equal(t, 9.0, src.Vector().Position)
}

func TestLocalSourceStampsZeroTimestamp(t *testing.T) {
	t.Parallel()

	fc := clocktesting.NewFakeClock(time.Unix(1000, 0))
	ck := NewClock(fc)
	src := NewLocalSource(ck)

	fc.Step(4 * time.Second)
	require.NoError(t, src.Update(motion.Vector{Position: 1, Velocity: 1}))
	assert.InDelta(t, 4.0, src.Vector().Timestamp, 1e-9)
}

func TestLocalSourceRejectsInvalidVector(t *testing.T) {
	t.Parallel()

	fc := clocktesting.NewFakeClock(time.Unix(1000, 0))
	src := NewLocalSource(NewClock(fc))

	err := src.Update(motion.Vector{Position: math.NaN()})
	require.ErrorIs(t, err, motion.ErrInvalidVector)
	assert.False(t, src.IsReady())
}
