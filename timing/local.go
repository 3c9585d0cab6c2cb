package timing

import (
	"sync"

	"github.com/robmorgan/playhead/emitter"
	"github.com/robmorgan/playhead/motion"
)

// LocalSource is an in-process timing source. Producers drive it by
// calling Update with new motion vectors; the first successful update
// makes it ready.
type LocalSource struct {
	mu      sync.Mutex
	ck      Clock
	vector  motion.Vector
	old     motion.Vector
	lo, hi  float64
	isReady bool
	ready   chan struct{}

	callbacks emitter.Emitter[ChangeEvent]
}

var _ Source = (*LocalSource)(nil)

// NewLocalSource returns a local timing source on ck whose reported
// range spans the whole axis. Use SetRange to change the reported range.
func NewLocalSource(ck Clock) *LocalSource {
	lo, hi := DefaultRange()
	return &LocalSource{
		ck:    ck,
		lo:    lo,
		hi:    hi,
		ready: make(chan struct{}),
	}
}

// SetRange sets the position range reported by Range. Update does not
// clamp vectors to it.
func (s *LocalSource) SetRange(lo, hi float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lo, s.hi = lo, hi
}

// Update installs a new motion vector and notifies subscribers. A zero
// timestamp is stamped with the current clock reading. The first
// successful update latches readiness.
func (s *LocalSource) Update(v motion.Vector) error {
	if err := v.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	if v.Timestamp == 0 {
		v.Timestamp = s.ck.Now()
	}
	init := !s.isReady
	s.old = s.vector
	s.vector = v
	if init {
		s.old = v
		s.isReady = true
		close(s.ready)
	}
	s.mu.Unlock()

	s.callbacks.Emit(ChangeEvent{Init: init})
	return nil
}

func (s *LocalSource) Vector() motion.Vector {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vector
}

func (s *LocalSource) OldVector() motion.Vector {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.old
}

func (s *LocalSource) Clock() Clock {
	return s.ck
}

func (s *LocalSource) Range() (float64, float64) {
	return s.lo, s.hi
}

func (s *LocalSource) IsReady() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isReady
}

// Ready returns a channel closed once the source becomes ready.
func (s *LocalSource) Ready() <-chan struct{} {
	return s.ready
}

func (s *LocalSource) AddCallback(fn func(ChangeEvent)) emitter.Handle {
	return s.callbacks.AddCallback(fn)
}

func (s *LocalSource) RemoveCallback(h emitter.Handle) {
	s.callbacks.RemoveCallback(h)
}
