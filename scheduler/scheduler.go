package scheduler

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/robmorgan/playhead/axis"
	"github.com/robmorgan/playhead/emitter"
	"github.com/robmorgan/playhead/interval"
	"github.com/robmorgan/playhead/logger"
	"github.com/robmorgan/playhead/motion"
	"github.com/robmorgan/playhead/timing"
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

// DefaultLookahead is the horizon, in seconds, over which endpoint
// crossings are pre-fetched.
// TODO - scale the lookahead with velocity so very fast playheads keep
// a comparable position window.
const DefaultLookahead = 5.0

// timerSlack absorbs floating point noise when deciding whether a queue
// entry is due.
const timerSlack = 1e-6

// State is the scheduler's timer-cycle state.
type State int

const (
	Idle State = iota
	Armed
	Firing
)

func (s State) String() string {
	switch s {
	case Armed:
		return "ARMED"
	case Firing:
		return "FIRING"
	}
	return "IDLE"
}

// EndpointItem is one projected endpoint crossing: the endpoint, the
// cue it belongs to, the direction of motion at the crossing instant
// and the clock time the crossing is due. Due is carried in the event
// so late deliveries can be compensated by consumers.
type EndpointItem[K constraints.Ordered, D any] struct {
	Endpoint  interval.Endpoint
	Cue       axis.Cue[K, D]
	Direction int
	Due       float64
}

// Scheduler fires cue endpoint crossings at the real-time instants the
// playhead reaches them. It keeps a forward-looking position window of
// pre-fetched crossings and one timer armed at the head of the queue;
// when the window is consumed it slides forward, from the refill point
// if the timer fired after it and from the current instant otherwise.
type Scheduler[K constraints.Ordered, D any] struct {
	ax        *axis.Axis[K, D]
	ck        timing.Clock
	lookahead float64

	mu        sync.Mutex
	vector    motion.Vector
	hasVector bool
	queue     []EndpointItem[K, D]
	timer     timing.Timer
	state     State
	stopped   bool

	kick      chan struct{}
	stop      chan struct{}
	callbacks emitter.Emitter[[]EndpointItem[K, D]]
}

// New returns a scheduler over ax using ck for timers. A zero lookahead
// selects DefaultLookahead.
func New[K constraints.Ordered, D any](ax *axis.Axis[K, D], ck timing.Clock, lookahead float64) *Scheduler[K, D] {
	if lookahead <= 0 {
		lookahead = DefaultLookahead
	}
	return &Scheduler[K, D]{
		ax:        ax,
		ck:        ck,
		lookahead: lookahead,
		kick:      make(chan struct{}, 1),
		stop:      make(chan struct{}),
	}
}

// Lookahead returns the prefetch horizon in seconds.
func (s *Scheduler[K, D]) Lookahead() float64 {
	return s.lookahead
}

// State returns the current timer-cycle state.
func (s *Scheduler[K, D]) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// AddCallback registers a subscriber for due-event batches.
func (s *Scheduler[K, D]) AddCallback(fn func([]EndpointItem[K, D])) emitter.Handle {
	return s.callbacks.AddCallback(fn)
}

// RemoveCallback unregisters a due-event subscriber.
func (s *Scheduler[K, D]) RemoveCallback(h emitter.Handle) {
	s.callbacks.RemoveCallback(h)
}

// Start runs the dispatch loop until ctx is cancelled or Stop is
// called.
func (s *Scheduler[K, D]) Start(ctx context.Context) {
	go s.run(ctx)
}

// Stop terminates the dispatch loop and cancels any pending timer. It
// is idempotent; a stopped scheduler ignores further SetVector calls.
func (s *Scheduler[K, D]) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.state = Idle
	close(s.stop)
}

// SetVector replaces the scheduled trajectory: any pending timer is
// cancelled, the prefetch window is recomputed for v and the timer is
// re-armed.
func (s *Scheduler[K, D]) SetVector(v motion.Vector) {
	s.mu.Lock()
	s.setVectorLocked(v)
	s.mu.Unlock()
	s.wake()
}

func (s *Scheduler[K, D]) setVectorLocked(v motion.Vector) {
	if s.stopped {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.vector = v
	s.hasVector = true
	s.queue = s.buildQueue(v)
	if len(s.queue) > 0 || v.IsMoving() {
		s.armLocked()
	} else {
		s.state = Idle
	}
}

// armLocked sets the timer for the next queue head, or for the window
// refill point when the queue is empty.
func (s *Scheduler[K, D]) armLocked() {
	due := s.vector.Timestamp + s.lookahead
	if len(s.queue) > 0 {
		due = s.queue[0].Due
	}
	delay := due - s.ck.Now()
	if delay < 0 {
		delay = 0
	}
	s.timer = s.ck.NewTimer(delay)
	s.state = Armed
}

// buildQueue projects the endpoint crossings reachable within the
// lookahead horizon of v, ordered by due time then endpoint order.
func (s *Scheduler[K, D]) buildQueue(v motion.Vector) []EndpointItem[K, D] {
	if !v.IsMoving() {
		return nil
	}

	t0 := v.Timestamp
	lo, hi := motion.PosRange(v, t0, t0+s.lookahead)
	window := interval.Interval{Low: lo, High: hi, LowInclude: true, HighInclude: true}

	var queue []EndpointItem[K, D]
	for _, cue := range s.ax.Lookup(window) {
		lowEp, highEp := cue.Interval.Endpoints()
		endpoints := []interval.Endpoint{lowEp}
		if !cue.Interval.IsSingular() {
			endpoints = append(endpoints, highEp)
		}
		for _, ep := range endpoints {
			dt, _ := motion.CalculateDelta(v, []float64{ep.Value})
			if math.IsInf(dt, 1) || dt > s.lookahead {
				continue
			}
			due := t0 + dt
			dir := v.DirectionAt(due)
			if dir == 0 {
				continue
			}
			queue = append(queue, EndpointItem[K, D]{
				Endpoint:  ep,
				Cue:       cue,
				Direction: dir,
				Due:       due,
			})
		}
	}

	slices.SortStableFunc(queue, func(a, b EndpointItem[K, D]) bool {
		if a.Due != b.Due {
			return a.Due < b.Due
		}
		return interval.Cmp(a.Endpoint, b.Endpoint) < 0
	})
	return queue
}

func (s *Scheduler[K, D]) run(ctx context.Context) {
	for {
		s.mu.Lock()
		var timerC <-chan time.Time
		if s.timer != nil {
			timerC = s.timer.C()
		}
		s.mu.Unlock()

		select {
		case <-ctx.Done():
			s.Stop()
			return
		case <-s.stop:
			return
		case <-s.kick:
			// timer replaced; re-read it
		case <-timerC:
			s.onTimeout()
		}
	}
}

func (s *Scheduler[K, D]) onTimeout() {
	s.mu.Lock()
	if !s.hasVector || s.stopped {
		s.mu.Unlock()
		return
	}
	s.state = Firing
	now := s.ck.Now()
	batch := s.popDueLocked(now)
	// a late timer may have passed the refill point: slide the window
	// from there so crossings between the refill point and now still fire
	for len(s.queue) == 0 && s.vector.Timestamp+s.lookahead <= now+timerSlack {
		s.vector = motion.ComputeVector(s.vector, s.vector.Timestamp+s.lookahead)
		s.queue = s.buildQueue(s.vector)
		batch = append(batch, s.popDueLocked(now)...)
	}
	s.mu.Unlock()

	if len(batch) > 0 {
		logger.GetProjectLogger().WithField("batch_size", len(batch)).Debug("scheduler fired")
		s.callbacks.Emit(batch)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Firing {
		// a SetVector during dispatch already rebuilt the window
		return
	}
	if len(s.queue) == 0 {
		// window consumed: slide it forward from the current instant
		s.setVectorLocked(motion.ComputeVector(s.vector, now))
	} else {
		s.armLocked()
	}
}

func (s *Scheduler[K, D]) popDueLocked(now float64) []EndpointItem[K, D] {
	n := 0
	for n < len(s.queue) && s.queue[n].Due <= now+timerSlack {
		n++
	}
	if n == 0 {
		return nil
	}
	batch := make([]EndpointItem[K, D], n)
	copy(batch, s.queue)
	s.queue = s.queue[n:]
	return batch
}

func (s *Scheduler[K, D]) wake() {
	select {
	case s.kick <- struct{}{}:
	default:
	}
}
