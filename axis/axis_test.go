package axis

import (
	"testing"

	"github.com/robmorgan/playhead/interval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slices"
)

func mustClosed(t *testing.T, low, high float64) interval.Interval {
	t.Helper()
	itv, err := interval.NewClosed(low, high)
	require.NoError(t, err)
	return itv
}

// checkIndexConsistency asserts the endpoint index contains exactly the
// endpoint values of the stored cues, with no duplicates.
func checkIndexConsistency(t *testing.T, a *Axis[string, string]) {
	t.Helper()

	want := make(map[float64]struct{})
	for _, c := range a.cues {
		for _, v := range endpointValues(c.Interval) {
			want[v] = struct{}{}
		}
	}
	wantSorted := make([]float64, 0, len(want))
	for v := range want {
		wantSorted = append(wantSorted, v)
	}
	slices.Sort(wantSorted)
	if len(wantSorted) == 0 {
		require.Equal(t, 0, a.index.Len())
		return
	}
	require.Equal(t, wantSorted, a.index.Items())
}

func TestUpdateInsertDelete(t *testing.T) {
	t.Parallel()

	a := New[string, string]()

	events, err := a.Update([]Op[string, string]{
		{Key: "a", Interval: mustClosed(t, 0, 10), Data: "first"},
		{Key: "b", Interval: mustClosed(t, 5, 15), Data: "second"},
	})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, Delta{DeltaInsert, DeltaInsert}, events["a"].Delta)
	assert.Nil(t, events["a"].Old)
	require.NotNil(t, events["a"].New)
	assert.Equal(t, "first", events["a"].New.Data)
	checkIndexConsistency(t, a)

	events, err = a.Update([]Op[string, string]{{Key: "a", Delete: true}})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, Delta{DeltaDelete, DeltaDelete}, events["a"].Delta)
	assert.Nil(t, events["a"].New)
	assert.False(t, a.Has("a"))
	assert.True(t, a.Has("b"))
	checkIndexConsistency(t, a)
}

func TestUpdateReplacement(t *testing.T) {
	t.Parallel()

	a := New[string, string]()
	_, err := a.Update([]Op[string, string]{{Key: "e", Interval: mustClosed(t, 0, 5), Data: "x"}})
	require.NoError(t, err)

	// delete and insert of the same key folds into one CHANGE
	events, err := a.Update([]Op[string, string]{
		{Key: "e", Delete: true},
		{Key: "e", Interval: mustClosed(t, 10, 20), Data: "x"},
	})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, Delta{Interval: DeltaChange, Data: DeltaNoop}, events["e"].Delta)
	require.NotNil(t, events["e"].Old)
	assert.Equal(t, mustClosed(t, 0, 5), events["e"].Old.Interval)
	require.NotNil(t, events["e"].New)
	assert.Equal(t, mustClosed(t, 10, 20), events["e"].New.Interval)
	checkIndexConsistency(t, a)
}

func TestUpdateDataOnlyChange(t *testing.T) {
	t.Parallel()

	a := New[string, string]()
	_, err := a.Update([]Op[string, string]{{Key: "e", Interval: mustClosed(t, 0, 5), Data: "x"}})
	require.NoError(t, err)

	events, err := a.Update([]Op[string, string]{{Key: "e", Interval: mustClosed(t, 0, 5), Data: "y"}})
	require.NoError(t, err)
	assert.Equal(t, Delta{Interval: DeltaNoop, Data: DeltaChange}, events["e"].Delta)

	// identical upsert reports a full noop
	events, err = a.Update([]Op[string, string]{{Key: "e", Interval: mustClosed(t, 0, 5), Data: "y"}})
	require.NoError(t, err)
	assert.True(t, events["e"].Delta.IsNoop())
	checkIndexConsistency(t, a)
}

func TestUpdateAllOrNothing(t *testing.T) {
	t.Parallel()

	a := New[string, string]()
	_, err := a.Update([]Op[string, string]{{Key: "a", Interval: mustClosed(t, 0, 10), Data: "keep"}})
	require.NoError(t, err)

	_, err = a.Update([]Op[string, string]{
		{Key: "b", Interval: mustClosed(t, 0, 5), Data: "ok"},
		{Key: "c", Interval: interval.Interval{Low: 9, High: 3, LowInclude: true, HighInclude: true}, Data: "bad"},
	})
	require.ErrorIs(t, err, ErrBadBatch)

	// nothing changed
	assert.Equal(t, 1, a.Size())
	assert.False(t, a.Has("b"))
	checkIndexConsistency(t, a)
}

func TestBatchIdempotence(t *testing.T) {
	t.Parallel()

	a := New[string, string]()
	_, err := a.Update([]Op[string, string]{
		{Key: "a", Interval: mustClosed(t, 0, 10), Data: "a"},
		{Key: "b", Interval: mustClosed(t, 5, 15), Data: "b"},
		{Key: "gone", Delete: true},
	})
	require.NoError(t, err)
	before := a.index.Items()

	events, err := a.Update(nil)
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, before, a.index.Items())
	assert.Equal(t, 2, a.Size())
}

func TestSharedEndpointValues(t *testing.T) {
	t.Parallel()

	a := New[string, string]()
	_, err := a.Update([]Op[string, string]{
		{Key: "a", Interval: mustClosed(t, 0, 10), Data: "a"},
		{Key: "b", Interval: mustClosed(t, 10, 20), Data: "b"},
	})
	require.NoError(t, err)

	// removing a must keep the shared value 10 alive for b
	_, err = a.Update([]Op[string, string]{{Key: "a", Delete: true}})
	require.NoError(t, err)
	assert.True(t, IsFound(a.index.Search(10)))
	checkIndexConsistency(t, a)
}

func TestLookupCompleteness(t *testing.T) {
	t.Parallel()

	a := New[string, string]()
	cues := map[string]interval.Interval{
		"left":     mustClosed(t, 0, 4),
		"overlapL": mustClosed(t, 3, 8),
		"inside":   mustClosed(t, 6, 7),
		"equal":    mustClosed(t, 5, 10),
		"covering": mustClosed(t, 2, 14),
		"overlapR": mustClosed(t, 9, 12),
		"right":    mustClosed(t, 11, 13),
		"point":    interval.MustNew(6, 6, true, true),
	}
	batch := make([]Op[string, string], 0, len(cues))
	for k, itv := range cues {
		batch = append(batch, Op[string, string]{Key: k, Interval: itv, Data: k})
	}
	_, err := a.Update(batch)
	require.NoError(t, err)

	q := mustClosed(t, 5, 10)
	got := a.Lookup(q)

	// brute force over the match relation set
	var want []string
	for k, itv := range cues {
		if itv.Compare(q).Matches() {
			want = append(want, k)
		}
	}
	slices.Sort(want)

	gotKeys := make([]string, 0, len(got))
	for _, c := range got {
		gotKeys = append(gotKeys, c.Key)
	}
	assert.Equal(t, want, gotKeys)
	assert.NotContains(t, gotKeys, "right")
}

func TestCoveringCues(t *testing.T) {
	t.Parallel()

	a := New[string, string]()
	_, err := a.Update([]Op[string, string]{
		{Key: "a", Interval: mustClosed(t, 0, 10), Data: "a"},
		{Key: "b", Interval: mustClosed(t, 5, 15), Data: "b"},
		{Key: "c", Interval: mustClosed(t, 20, 30), Data: "c"},
		{Key: "open", Interval: interval.MustNew(7, 9, false, false), Data: "open"},
		{Key: "p", Interval: interval.MustNew(7, 7, true, true), Data: "p"},
	})
	require.NoError(t, err)

	got := a.CoveringCues(7)
	keys := make([]string, 0, len(got))
	for _, c := range got {
		keys = append(keys, c.Key)
	}
	assert.Equal(t, []string{"a", "b", "p"}, keys)

	// open endpoints excluded at their boundary value
	got = a.CoveringCues(9)
	keys = keys[:0]
	for _, c := range got {
		keys = append(keys, c.Key)
	}
	assert.Equal(t, []string{"a", "b"}, keys)
}

func TestCallbacks(t *testing.T) {
	t.Parallel()

	a := New[string, string]()
	var seen []EventMap[string, string]
	h := a.AddCallback(func(em EventMap[string, string]) { seen = append(seen, em) })

	_, err := a.Update([]Op[string, string]{{Key: "a", Interval: mustClosed(t, 0, 1), Data: "a"}})
	require.NoError(t, err)
	require.Len(t, seen, 1)
	assert.Contains(t, seen[0], "a")

	a.RemoveCallback(h)
	_, err = a.Update([]Op[string, string]{{Key: "a", Delete: true}})
	require.NoError(t, err)
	assert.Len(t, seen, 1)
}

func TestClear(t *testing.T) {
	t.Parallel()

	a := New[string, string]()
	_, err := a.Update([]Op[string, string]{
		{Key: "a", Interval: mustClosed(t, 0, 1), Data: "a"},
		{Key: "b", Interval: mustClosed(t, 2, 3), Data: "b"},
	})
	require.NoError(t, err)

	events, err := a.Clear()
	require.NoError(t, err)
	assert.Len(t, events, 2)
	assert.Equal(t, 0, a.Size())
	assert.Equal(t, 0, a.index.Len())
}
