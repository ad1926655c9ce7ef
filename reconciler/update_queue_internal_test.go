package reconciler

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func appendUpdate(s string, lane Lane) *update {
	return &update{lane: lane, reducer: func(prev any) any { return prev.(string) + s }}
}

// lanesOf lists a circular queue from its oldest update.
func lanesOf(last *update) []Lane {
	if last == nil {
		return nil
	}
	var out []Lane
	u := last.next
	for {
		out = append(out, u.lane)
		if u == last {
			return out
		}
		u = u.next
	}
}

func queueOf(updates ...*update) *update {
	q := &updateQueue{}
	for _, u := range updates {
		q.enqueue(u)
	}
	return q.pending
}

func TestProcessUpdateQueueSkipsAndReplays(t *testing.T) {
	base := queueOf(
		appendUpdate("A", SyncLane),
		appendUpdate("B", IdleLane),
		appendUpdate("C", SyncLane),
	)

	res := processUpdateQueue("", base, SyncLane)
	assert.Equal(t, "AC", res.memoizedState)
	assert.Equal(t, "A", res.baseState)
	assert.Equal(t, IdleLane, res.skippedLanes)
	// C is carried at NoLane so it replays after B
	if diff := cmp.Diff([]Lane{IdleLane, NoLane}, lanesOf(res.baseQueue)); diff != "" {
		t.Errorf("carried queue (-want +got):\n%s", diff)
	}

	res = processUpdateQueue(res.baseState, res.baseQueue, IdleLane)
	assert.Equal(t, "ABC", res.memoizedState)
	assert.Equal(t, "ABC", res.baseState)
	assert.Nil(t, res.baseQueue)
	assert.Equal(t, NoLanes, res.skippedLanes)
}

func TestProcessUpdateQueueEmpty(t *testing.T) {
	res := processUpdateQueue("x", nil, SyncLane)
	assert.Equal(t, "x", res.memoizedState)
	assert.Equal(t, "x", res.baseState)
	assert.Nil(t, res.baseQueue)
}

func TestPayloadReplacesState(t *testing.T) {
	res := processUpdateQueue("old", queueOf(&update{payload: "new", lane: DefaultLane}), DefaultLane)
	assert.Equal(t, "new", res.memoizedState)
}

// updates taken from the pending queue by a render that never commits are
// still there for the next one
func TestResolveCellSurvivesInterruptedRender(t *testing.T) {
	q := &updateQueue{}
	cell := &stateCell{memoizedState: "", baseState: "", queue: q}
	q.enqueue(appendUpdate("A", SyncLane))
	q.enqueue(appendUpdate("B", IdleLane))

	discarded, _ := resolveCell(cell, SyncLane)
	assert.Equal(t, "A", discarded.memoizedState)
	assert.Nil(t, q.pending)

	q.enqueue(appendUpdate("C", SyncLane))
	next, skipped := resolveCell(cell, SyncLane)
	assert.Equal(t, "AC", next.memoizedState)
	assert.Equal(t, "A", next.baseState)
	assert.Equal(t, IdleLane, skipped)
	assert.Same(t, q, next.queue)

	final, skipped := resolveCell(next, IdleLane)
	assert.Equal(t, "ABC", final.memoizedState)
	assert.Equal(t, NoLanes, skipped)
}
