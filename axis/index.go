package axis

import (
	"math"
	"sort"

	"github.com/robmorgan/playhead/interval"
	"golang.org/x/exp/slices"
)

// spliceBatchLimit is the batch size at or below which updates are
// applied by per-element locate-and-splice. Larger batches are applied
// by flagging removals with a sentinel, concatenating the insertions
// and re-sorting.
const spliceBatchLimit = 100

// removedSentinel flags values slated for removal during a bulk
// rebuild. Endpoint values are validated finite so it can never occur
// naturally.
var removedSentinel = math.Inf(1)

// Index is a sorted sequence of unique endpoint values with binary
// search, range lookup and bulk update.
type Index struct {
	values []float64
}

// Search returns the index of v when present. When absent it returns
// the bitwise complement of the insertion index. Note that a result of
// 0 can mean either "found at 0" or (complemented) "would insert at 0";
// use IsFound to disambiguate.
func (ix *Index) Search(v float64) int {
	i := sort.SearchFloat64s(ix.values, v)
	if i < len(ix.values) && ix.values[i] == v {
		return i
	}
	return ^i
}

// IsFound reports whether a Search result denotes a present element.
func IsFound(n int) bool {
	return n >= 0
}

// Update removes toRemove and inserts toInsert in one bulk mutation.
// Duplicate insertions and absent removals are silently ignored: the
// post-state is the set difference (prev ∪ toInsert) \ toRemove.
func (ix *Index) Update(toRemove, toInsert []float64) {
	if len(toRemove)+len(toInsert) <= spliceBatchLimit {
		ix.spliceUpdate(toRemove, toInsert)
		return
	}
	ix.rebuildUpdate(toRemove, toInsert)
}

func (ix *Index) spliceUpdate(toRemove, toInsert []float64) {
	for _, v := range toRemove {
		if n := ix.Search(v); IsFound(n) {
			ix.values = append(ix.values[:n], ix.values[n+1:]...)
		}
	}
	for _, v := range toInsert {
		n := ix.Search(v)
		if IsFound(n) {
			continue
		}
		at := ^n
		ix.values = append(ix.values, 0)
		copy(ix.values[at+1:], ix.values[at:])
		ix.values[at] = v
	}
}

func (ix *Index) rebuildUpdate(toRemove, toInsert []float64) {
	// locate all removals before flagging any: a flagged slot breaks
	// the sort order Search depends on
	marks := make([]int, 0, len(toRemove))
	for _, v := range toRemove {
		if n := ix.Search(v); IsFound(n) {
			marks = append(marks, n)
		}
	}
	for _, n := range marks {
		ix.values[n] = removedSentinel
	}
	ix.values = append(ix.values, toInsert...)
	slices.Sort(ix.values)
	ix.values = slices.Compact(ix.values)
	for len(ix.values) > 0 && ix.values[len(ix.values)-1] == removedSentinel {
		ix.values = ix.values[:len(ix.values)-1]
	}
}

// Lookup returns the values contained in itv, respecting inclusivity.
func (ix *Index) Lookup(itv interval.Interval) []float64 {
	var lo int
	if itv.LowInclude {
		lo = ix.GeIndexOf(itv.Low)
	} else {
		lo = ix.GtIndexOf(itv.Low)
	}
	if lo == -1 {
		return nil
	}
	var hi int
	if itv.HighInclude {
		hi = ix.LeIndexOf(itv.High)
	} else {
		hi = ix.LtIndexOf(itv.High)
	}
	if hi == -1 || lo > hi {
		return nil
	}
	out := make([]float64, hi-lo+1)
	copy(out, ix.values[lo:hi+1])
	return out
}

// GeIndexOf returns the index of the smallest value >= v, or -1.
func (ix *Index) GeIndexOf(v float64) int {
	n := ix.Search(v)
	if IsFound(n) {
		return n
	}
	if at := ^n; at < len(ix.values) {
		return at
	}
	return -1
}

// GtIndexOf returns the index of the smallest value > v, or -1.
func (ix *Index) GtIndexOf(v float64) int {
	n := ix.Search(v)
	at := ^n
	if IsFound(n) {
		at = n + 1
	}
	if at < len(ix.values) {
		return at
	}
	return -1
}

// LeIndexOf returns the index of the largest value <= v, or -1.
func (ix *Index) LeIndexOf(v float64) int {
	n := ix.Search(v)
	if IsFound(n) {
		return n
	}
	if at := ^n; at > 0 {
		return at - 1
	}
	return -1
}

// LtIndexOf returns the index of the largest value < v, or -1.
func (ix *Index) LtIndexOf(v float64) int {
	n := ix.Search(v)
	at := ^n
	if IsFound(n) {
		at = n
	}
	if at > 0 {
		return at - 1
	}
	return -1
}

// Min returns the smallest value in the index.
func (ix *Index) Min() (float64, bool) {
	if len(ix.values) == 0 {
		return 0, false
	}
	return ix.values[0], true
}

// Max returns the largest value in the index.
func (ix *Index) Max() (float64, bool) {
	if len(ix.values) == 0 {
		return 0, false
	}
	return ix.values[len(ix.values)-1], true
}

// Item returns the value at index i.
func (ix *Index) Item(i int) float64 {
	return ix.values[i]
}

// Items returns a copy of all values in ascending order.
func (ix *Index) Items() []float64 {
	out := make([]float64, len(ix.values))
	copy(out, ix.values)
	return out
}

// Len returns the number of values.
func (ix *Index) Len() int {
	return len(ix.values)
}

// Clear removes all values.
func (ix *Index) Clear() {
	ix.values = ix.values[:0]
}
