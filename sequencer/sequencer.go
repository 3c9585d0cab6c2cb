package sequencer

import (
	"context"
	"sync"

	"github.com/robmorgan/playhead/axis"
	"github.com/robmorgan/playhead/emitter"
	"github.com/robmorgan/playhead/logger"
	"github.com/robmorgan/playhead/motion"
	"github.com/robmorgan/playhead/scheduler"
	"github.com/robmorgan/playhead/timing"
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Change is one cue transition. A nil New is an exit, a nil Old is an
// enter, and both present is a change.
type Change[K constraints.Ordered, D any] struct {
	Key K
	New *axis.Cue[K, D]
	Old *axis.Cue[K, D]
}

// Sequencer folds axis updates, timing changes and scheduled endpoint
// crossings into a stream of cue transitions, maintaining the set of
// cues whose intervals cover the playhead position.
type Sequencer[K constraints.Ordered, D any] struct {
	ax    *axis.Axis[K, D]
	src   timing.Source
	sched *scheduler.Scheduler[K, D]
	ck    timing.Clock

	mu      sync.Mutex
	active  map[K]axis.Cue[K, D]
	vector  motion.Vector
	isReady bool
	closed  bool

	ready chan struct{}

	axisCb  emitter.Handle
	srcCb   emitter.Handle
	schedCb emitter.Handle

	callbacks emitter.Emitter[[]Change[K, D]]
}

// New returns a sequencer over ax driven by src. Call Start before use.
func New[K constraints.Ordered, D any](ax *axis.Axis[K, D], src timing.Source) *Sequencer[K, D] {
	ck := src.Clock()
	return &Sequencer[K, D]{
		ax:     ax,
		src:    src,
		sched:  scheduler.New(ax, ck, 0),
		ck:     ck,
		active: make(map[K]axis.Cue[K, D]),
		ready:  make(chan struct{}),
	}
}

// Start subscribes to the axis, the timing source and the scheduler,
// and runs until ctx is cancelled.
func (s *Sequencer[K, D]) Start(ctx context.Context) {
	s.axisCb = s.ax.AddCallback(s.onAxisEvents)
	s.srcCb = s.src.AddCallback(s.onTimingChange)
	s.schedCb = s.sched.AddCallback(s.onSchedulerBatch)
	s.sched.Start(ctx)

	if s.src.IsReady() {
		s.onTimingChange(timing.ChangeEvent{Init: true})
	}

	go func() {
		<-ctx.Done()
		s.Close()
	}()
}

// Close detaches the sequencer from its event sources and stops the
// scheduler's dispatch loop and timer. It is idempotent and safe to
// call concurrently with event delivery.
func (s *Sequencer[K, D]) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.ax.RemoveCallback(s.axisCb)
	s.src.RemoveCallback(s.srcCb)
	s.sched.RemoveCallback(s.schedCb)
	s.sched.Stop()
}

// AddCallback registers a subscriber for cue transition batches.
func (s *Sequencer[K, D]) AddCallback(fn func([]Change[K, D])) emitter.Handle {
	return s.callbacks.AddCallback(fn)
}

// RemoveCallback unregisters a transition subscriber.
func (s *Sequencer[K, D]) RemoveCallback(h emitter.Handle) {
	s.callbacks.RemoveCallback(h)
}

// Ready returns a channel closed when the timing source becomes ready.
func (s *Sequencer[K, D]) Ready() <-chan struct{} {
	return s.ready
}

// IsReady reports whether the sequencer has latched readiness. The
// latch never reverts.
func (s *Sequencer[K, D]) IsReady() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isReady
}

// onTimingChange reconciles the active set against a new motion vector
// and re-arms the scheduler for the new trajectory.
func (s *Sequencer[K, D]) onTimingChange(ev timing.ChangeEvent) {
	now := s.ck.Now()
	v := s.src.Vector()
	if ev.Init {
		// initial snapshots are re-anchored to the local clock; later
		// updates carry an authoritative timestamp
		v = motion.ComputeVector(v, now)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	first := !s.isReady
	old := s.vector
	s.vector = v

	var changes []Change[K, D]
	d := motion.ClassifyDelta(old, v)
	if first || d.Pos == motion.PosChange || d.Move == motion.MoveStop {
		changes = s.recomputeActiveLocked(v.PositionAt(now))
	}
	if first {
		s.isReady = true
		close(s.ready)
	}
	s.mu.Unlock()

	if len(changes) > 0 {
		s.callbacks.Emit(changes)
	}
	s.sched.SetVector(v)
}

// recomputeActiveLocked diffs the active set against the cues covering
// p, returning exits then enters, each in key order.
func (s *Sequencer[K, D]) recomputeActiveLocked(p float64) []Change[K, D] {
	covering := s.ax.CoveringCues(p)
	shouldBe := make(map[K]struct{}, len(covering))
	for _, c := range covering {
		shouldBe[c.Key] = struct{}{}
	}

	var changes []Change[K, D]
	activeKeys := maps.Keys(s.active)
	slices.Sort(activeKeys)
	for _, k := range activeKeys {
		if _, ok := shouldBe[k]; !ok {
			cue := s.active[k]
			delete(s.active, k)
			changes = append(changes, Change[K, D]{Key: k, Old: &cue})
		}
	}
	for _, c := range covering {
		if _, ok := s.active[c.Key]; !ok {
			cue := c
			s.active[c.Key] = cue
			changes = append(changes, Change[K, D]{Key: c.Key, New: &cue})
		}
	}
	return changes
}

// onAxisEvents reconciles cue mutations against the current position.
func (s *Sequencer[K, D]) onAxisEvents(em axis.EventMap[K, D]) {
	s.mu.Lock()
	if s.closed || !s.isReady {
		s.mu.Unlock()
		return
	}
	now := s.ck.Now()
	v := s.vector
	p := v.PositionAt(now)

	var changes []Change[K, D]
	for _, key := range em.Keys() {
		item := em[key]
		if item.Delta.IsNoop() {
			continue
		}
		if item.Delta.Interval == axis.DeltaNoop {
			// data-only change: refresh the payload of active cues
			if _, wasActive := s.active[key]; wasActive && item.New != nil {
				s.active[key] = *item.New
				changes = append(changes, Change[K, D]{Key: key, New: item.New, Old: item.Old})
			}
			continue
		}

		_, wasActive := s.active[key]
		shouldBe := item.New != nil && item.New.Interval.Covers(p)
		switch {
		case wasActive && !shouldBe:
			delete(s.active, key)
			changes = append(changes, Change[K, D]{Key: key, Old: item.Old})
		case !wasActive && shouldBe:
			s.active[key] = *item.New
			changes = append(changes, Change[K, D]{Key: key, New: item.New})
		case wasActive && shouldBe:
			s.active[key] = *item.New
			changes = append(changes, Change[K, D]{Key: key, New: item.New, Old: item.Old})
		}
	}
	s.mu.Unlock()

	if len(changes) > 0 {
		s.callbacks.Emit(changes)
	}
	// the prefetch window must reflect any endpoint changes
	s.sched.SetVector(motion.ComputeVector(v, now))
}

// onSchedulerBatch applies due endpoint crossings to the active set.
func (s *Sequencer[K, D]) onSchedulerBatch(items []scheduler.EndpointItem[K, D]) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	var changes []Change[K, D]
	for _, it := range items {
		cue := it.Cue
		key := cue.Key
		_, wasActive := s.active[key]

		if it.Endpoint.Singular {
			// the playhead grazes a point cue: it never lingers
			c := cue
			if wasActive {
				delete(s.active, key)
				changes = append(changes, Change[K, D]{Key: key, Old: &c})
			} else {
				changes = append(changes,
					Change[K, D]{Key: key, New: &c},
					Change[K, D]{Key: key, Old: &c})
			}
			continue
		}

		enter := it.Direction > 0
		if it.Endpoint.Right {
			enter = it.Direction < 0
		}
		switch {
		case enter && !wasActive:
			c := cue
			s.active[key] = c
			changes = append(changes, Change[K, D]{Key: key, New: &c})
		case !enter && wasActive:
			c := cue
			delete(s.active, key)
			changes = append(changes, Change[K, D]{Key: key, Old: &c})
		default:
			// crossing in a direction that matches the current state
			logger.GetProjectLogger().WithField("cue_key", key).Debug("discarding degenerate crossing")
		}
	}
	s.mu.Unlock()

	if len(changes) > 0 {
		s.callbacks.Emit(changes)
	}
}

// Has reports whether the cue with key k is active.
func (s *Sequencer[K, D]) Has(k K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.active[k]
	return ok
}

// Get returns the active cue stored under k.
func (s *Sequencer[K, D]) Get(k K) (axis.Cue[K, D], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.active[k]
	return c, ok
}

// Keys returns the active cue keys in ascending order.
func (s *Sequencer[K, D]) Keys() []K {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := maps.Keys(s.active)
	slices.Sort(keys)
	return keys
}

// Values returns the active cues in key order.
func (s *Sequencer[K, D]) Values() []axis.Cue[K, D] {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := maps.Keys(s.active)
	slices.Sort(keys)
	out := make([]axis.Cue[K, D], 0, len(keys))
	for _, k := range keys {
		out = append(out, s.active[k])
	}
	return out
}

// Entries returns a copy of the active set.
func (s *Sequencer[K, D]) Entries() map[K]axis.Cue[K, D] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.active)
}

// Size returns the number of active cues.
func (s *Sequencer[K, D]) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}
