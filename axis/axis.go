package axis

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/robmorgan/playhead/emitter"
	"github.com/robmorgan/playhead/interval"
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

// ErrBadBatch is returned when any record in an update batch is
// invalid. The whole batch is rejected and no state changes.
var ErrBadBatch = errors.New("axis: invalid batch")

// Cue associates a key with an interval on the axis and arbitrary
// payload data. Data is opaque to the sequencing logic.
type Cue[K constraints.Ordered, D any] struct {
	Key      K
	Interval interval.Interval
	Data     D
}

// Op is one record of an update batch: an upsert of a cue, or a
// tombstone when Delete is set.
type Op[K constraints.Ordered, D any] struct {
	Key      K
	Interval interval.Interval
	Data     D
	Delete   bool
}

// Event describes the outcome of an update for one key.
type Event[K constraints.Ordered, D any] struct {
	Key   K
	New   *Cue[K, D]
	Old   *Cue[K, D]
	Delta Delta
}

// EventMap indexes update events by key. Batch subscribers receive one
// EventMap per update, synchronously.
type EventMap[K constraints.Ordered, D any] map[K]Event[K, D]

// Keys returns the event keys in ascending order.
func (em EventMap[K, D]) Keys() []K {
	keys := make([]K, 0, len(em))
	for k := range em {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Axis is the interval-indexed store of cues. It keeps a sorted
// endpoint index over every stored cue's interval endpoints and
// notifies batch subscribers on every update.
type Axis[K constraints.Ordered, D any] struct {
	mu        sync.RWMutex
	cues      map[K]Cue[K, D]
	index     Index
	valueKeys map[float64]map[K]struct{}

	// high-water mark of the longest stored interval; bounds the
	// candidate scan for covering-cue queries. Never shrinks.
	maxLength float64

	callbacks emitter.Emitter[EventMap[K, D]]
}

// New returns an empty axis.
func New[K constraints.Ordered, D any]() *Axis[K, D] {
	return &Axis[K, D]{
		cues:      make(map[K]Cue[K, D]),
		valueKeys: make(map[float64]map[K]struct{}),
	}
}

// AddCallback registers a batch subscriber. It receives the EventMap of
// every subsequent update, synchronously.
func (a *Axis[K, D]) AddCallback(fn func(EventMap[K, D])) emitter.Handle {
	return a.callbacks.AddCallback(fn)
}

// RemoveCallback unregisters a batch subscriber.
func (a *Axis[K, D]) RemoveCallback(h emitter.Handle) {
	a.callbacks.RemoveCallback(h)
}

// Update applies a batch of cue upserts and tombstones atomically.
// Within the batch, deletions are processed before insertions; a key
// appearing in both folds into a single replacement event. The batch is
// all-or-nothing: any invalid record aborts the whole update.
func (a *Axis[K, D]) Update(batch []Op[K, D]) (EventMap[K, D], error) {
	for i, op := range batch {
		if op.Delete {
			continue
		}
		if err := op.Interval.Validate(); err != nil {
			return nil, fmt.Errorf("%w: record %d (key %v): %v", ErrBadBatch, i, op.Key, err)
		}
	}

	// fold the batch: one tombstone flag and at most one upsert per key
	type folded struct {
		del bool
		ins *Op[K, D]
	}
	fold := make(map[K]*folded, len(batch))
	order := make([]K, 0, len(batch))
	for i := range batch {
		op := batch[i]
		f, ok := fold[op.Key]
		if !ok {
			f = &folded{}
			fold[op.Key] = f
			order = append(order, op.Key)
		}
		if op.Delete {
			f.del = true
		} else {
			f.ins = &batch[i]
		}
	}

	a.mu.Lock()
	events := make(EventMap[K, D], len(fold))
	touched := make(map[float64]struct{})

	for _, key := range order {
		f := fold[key]
		old, hadOld := a.cues[key]

		switch {
		case f.ins != nil:
			newCue := Cue[K, D]{Key: key, Interval: f.ins.Interval, Data: f.ins.Data}
			delta := Delta{Interval: DeltaInsert, Data: DeltaInsert}
			if hadOld {
				delta = Delta{}
				if old.Interval != newCue.Interval {
					delta.Interval = DeltaChange
				}
				if !reflect.DeepEqual(old.Data, newCue.Data) {
					delta.Data = DeltaChange
				}
			}
			ev := Event[K, D]{Key: key, New: &newCue, Delta: delta}
			if hadOld {
				oldCopy := old
				ev.Old = &oldCopy
			}
			events[key] = ev
			if !delta.IsNoop() || !hadOld {
				if hadOld {
					a.detachLocked(old, touched)
				}
				a.attachLocked(newCue, touched)
			}

		case f.del && hadOld:
			oldCopy := old
			events[key] = Event[K, D]{
				Key:   key,
				Old:   &oldCopy,
				Delta: Delta{Interval: DeltaDelete, Data: DeltaDelete},
			}
			a.detachLocked(old, touched)

		default:
			// tombstone for an absent key: silently ignored
		}
	}

	var toRemove, toInsert []float64
	for v := range touched {
		if len(a.valueKeys[v]) > 0 {
			toInsert = append(toInsert, v)
		} else {
			delete(a.valueKeys, v)
			toRemove = append(toRemove, v)
		}
	}
	a.index.Update(toRemove, toInsert)
	a.mu.Unlock()

	if len(events) > 0 {
		a.callbacks.Emit(events)
	}
	return events, nil
}

// detachLocked removes a cue from the store and key-tracking maps,
// recording every endpoint value whose membership changed.
func (a *Axis[K, D]) detachLocked(c Cue[K, D], touched map[float64]struct{}) {
	delete(a.cues, c.Key)
	for _, v := range endpointValues(c.Interval) {
		if set := a.valueKeys[v]; set != nil {
			delete(set, c.Key)
		}
		touched[v] = struct{}{}
	}
}

func (a *Axis[K, D]) attachLocked(c Cue[K, D], touched map[float64]struct{}) {
	a.cues[c.Key] = c
	for _, v := range endpointValues(c.Interval) {
		set := a.valueKeys[v]
		if set == nil {
			set = make(map[K]struct{})
			a.valueKeys[v] = set
		}
		set[c.Key] = struct{}{}
		touched[v] = struct{}{}
	}
	if l := c.Interval.Length(); l > a.maxLength {
		a.maxLength = l
	}
}

// endpointValues returns the distinct endpoint values of an interval:
// one for a singular interval, two otherwise.
func endpointValues(itv interval.Interval) []float64 {
	if itv.IsSingular() {
		return []float64{itv.Low}
	}
	return []float64{itv.Low, itv.High}
}

// Lookup returns all cues whose intervals overlap q, in key order.
// Cues are found by scanning endpoint values inside q, plus a bounded
// scan left of q for cues long enough to cover it entirely.
func (a *Axis[K, D]) Lookup(q interval.Interval) []Cue[K, D] {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lookupLocked(q)
}

func (a *Axis[K, D]) lookupLocked(q interval.Interval) []Cue[K, D] {
	candidates := make(map[K]struct{})
	for _, v := range a.index.Lookup(q) {
		for k := range a.valueKeys[v] {
			candidates[k] = struct{}{}
		}
	}
	// cues covering q have no endpoint inside it; their low endpoint
	// lies within maxLength left of q
	cover := interval.Interval{Low: q.Low - a.maxLength, High: q.Low, LowInclude: true, HighInclude: true}
	for _, v := range a.index.Lookup(cover) {
		for k := range a.valueKeys[v] {
			candidates[k] = struct{}{}
		}
	}

	keys := make([]K, 0, len(candidates))
	for k := range candidates {
		if cue, ok := a.cues[k]; ok && cue.Interval.Compare(q).Matches() {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	out := make([]Cue[K, D], 0, len(keys))
	for _, k := range keys {
		out = append(out, a.cues[k])
	}
	return out
}

// CoveringCues returns the cues whose intervals cover the point p, in
// key order.
func (a *Axis[K, D]) CoveringCues(p float64) []Cue[K, D] {
	return a.Lookup(interval.Interval{Low: p, High: p, LowInclude: true, HighInclude: true})
}

// Has reports whether a cue with key k is stored.
func (a *Axis[K, D]) Has(k K) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.cues[k]
	return ok
}

// Get returns the cue stored under k.
func (a *Axis[K, D]) Get(k K) (Cue[K, D], bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	c, ok := a.cues[k]
	return c, ok
}

// Keys returns all cue keys in ascending order.
func (a *Axis[K, D]) Keys() []K {
	a.mu.RLock()
	defer a.mu.RUnlock()
	keys := make([]K, 0, len(a.cues))
	for k := range a.cues {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Size returns the number of stored cues.
func (a *Axis[K, D]) Size() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.cues)
}

// Clear removes every cue as a single batch update.
func (a *Axis[K, D]) Clear() (EventMap[K, D], error) {
	keys := a.Keys()
	batch := make([]Op[K, D], 0, len(keys))
	for _, k := range keys {
		batch = append(batch, Op[K, D]{Key: k, Delete: true})
	}
	return a.Update(batch)
}
