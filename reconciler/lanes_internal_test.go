package reconciler

import (
	"testing"

	"github.com/delaneyj/fiberparty/scheduler"
	"github.com/stretchr/testify/assert"
)

func TestLaneSets(t *testing.T) {
	set := MergeLanes(TransitionLane, DefaultLane)
	assert.Equal(t, DefaultLane, HighestPriorityLane(set))
	assert.Equal(t, NoLane, HighestPriorityLane(NoLanes))
	assert.Equal(t, TransitionLane, RemoveLanes(set, DefaultLane))
	assert.True(t, IncludesSomeLane(set, TransitionLane|IdleLane))
	assert.False(t, IncludesSomeLane(set, SyncLane))
	assert.True(t, IsSubsetOfLanes(set, DefaultLane))
	assert.True(t, IsSubsetOfLanes(set, NoLane))
	assert.False(t, IsSubsetOfLanes(DefaultLane, set))
}

func TestLaneNames(t *testing.T) {
	assert.Equal(t, "none", NoLane.String())
	assert.Equal(t, "sync|idle", (SyncLane | IdleLane).String())
	assert.Equal(t, "unknown", Lane(1<<20).String())

	for _, name := range []string{"sync", "input", "default", "transition", "idle"} {
		lane, ok := ParseLane(name)
		assert.True(t, ok, name)
		assert.Equal(t, name, lane.String())
	}
	_, ok := ParseLane("urgent")
	assert.False(t, ok)
}

// more urgent lanes never map to a less urgent priority
func TestLaneToPriorityIsMonotonic(t *testing.T) {
	lanes := []Lane{SyncLane, InputContinuousLane, DefaultLane, TransitionLane, IdleLane}
	prev := scheduler.NoPriority
	for _, l := range lanes {
		p := LaneToPriority(l)
		assert.Greater(t, p, prev, l.String())
		prev = p
	}
	assert.Equal(t, scheduler.ImmediatePriority, LaneToPriority(SyncLane|IdleLane))
	assert.Equal(t, scheduler.NoPriority, LaneToPriority(NoLane))
}

func TestNextLane(t *testing.T) {
	var b laneBook
	assert.Equal(t, NoLane, b.nextLane())

	b.markUpdated(TransitionLane)
	b.markUpdated(DefaultLane)
	assert.Equal(t, DefaultLane, b.nextLane())

	b.markSuspended(DefaultLane)
	assert.Equal(t, TransitionLane, b.nextLane())

	b.markSuspended(TransitionLane)
	assert.Equal(t, NoLane, b.nextLane())

	b.markPinged(TransitionLane)
	assert.Equal(t, TransitionLane, b.nextLane())

	b.markFinished(TransitionLane)
	assert.Equal(t, DefaultLane, b.pendingLanes)
	assert.Equal(t, NoLane, b.nextLane())
}

// idle work cannot unblock anything, other updates can
func TestMarkUpdatedClearsSuspended(t *testing.T) {
	var b laneBook
	b.markUpdated(DefaultLane)
	b.markSuspended(DefaultLane)

	b.markUpdated(IdleLane)
	assert.Equal(t, DefaultLane, b.suspendedLanes)
	assert.Equal(t, IdleLane, b.nextLane())

	b.markUpdated(SyncLane)
	assert.Equal(t, NoLanes, b.suspendedLanes)
	assert.Equal(t, SyncLane, b.nextLane())
}
