package reconciler

// update is one pending state change. Either reducer or payload is used.
type update struct {
	payload any
	reducer func(prev any) any
	lane    Lane
	next    *update
}

func (u *update) apply(prev any) any {
	if u.reducer != nil {
		return u.reducer(prev)
	}
	return u.payload
}

func (u *update) clone(lane Lane) *update {
	return &update{payload: u.payload, reducer: u.reducer, lane: lane}
}

// updateQueue is shared by both buffers of a state slot. pending points at
// the most recently enqueued update of a circular list, so pending.next is
// the oldest.
type updateQueue struct {
	pending *update
	// node the slot was created on, either buffer
	node *Node
}

func (q *updateQueue) enqueue(u *update) {
	if q.pending == nil {
		u.next = u
	} else {
		u.next = q.pending.next
		q.pending.next = u
	}
	q.pending = u
}

// stateCell is the state carried by a state hook or by the root's element
// slot. Cells are immutable per render: resolving produces a new cell for the
// work in progress buffer.
type stateCell struct {
	memoizedState any
	baseState     any
	// last update of the circular carried over list
	baseQueue *update
	queue     *updateQueue
}

type resolvedQueue struct {
	memoizedState any
	baseState     any
	baseQueue     *update
	skippedLanes  Lane
}

// processUpdateQueue walks baseQueue in enqueue order. Updates whose lane is
// outside renderLanes are cloned into a carried over queue and the state just
// before the first of them becomes the new base state. Once anything has been
// carried over, every later applied update is carried too at NoLane, so a
// retry replays them in their original order.
func processUpdateQueue(baseState any, baseQueue *update, renderLanes Lane) resolvedQueue {
	res := resolvedQueue{memoizedState: baseState, baseState: baseState}
	if baseQueue == nil {
		return res
	}

	newState, newBaseState := baseState, baseState
	var newBaseFirst, newBaseLast *update
	var skipped Lane
	carry := func(u *update) {
		if newBaseLast == nil {
			newBaseFirst, newBaseLast = u, u
			return
		}
		newBaseLast.next = u
		newBaseLast = u
	}

	first := baseQueue.next
	u := first
	for {
		if !IsSubsetOfLanes(renderLanes, u.lane) {
			if newBaseLast == nil {
				newBaseState = newState
			}
			carry(u.clone(u.lane))
			skipped |= u.lane
		} else {
			if newBaseLast != nil {
				carry(u.clone(NoLane))
			}
			newState = u.apply(newState)
		}
		u = u.next
		if u == first {
			break
		}
	}

	if newBaseLast == nil {
		newBaseState = newState
	} else {
		newBaseLast.next = newBaseFirst
	}
	return resolvedQueue{
		memoizedState: newState,
		baseState:     newBaseState,
		baseQueue:     newBaseLast,
		skippedLanes:  skipped,
	}
}

// resolveCell merges the pending updates of current into its base queue and
// resolves them at renderLane. The merged queue is stored back on current so
// an interrupted render loses nothing.
func resolveCell(current *stateCell, renderLane Lane) (*stateCell, Lane) {
	q := current.queue
	baseQueue := current.baseQueue
	if pending := q.pending; pending != nil {
		if baseQueue != nil {
			baseFirst := baseQueue.next
			pendingFirst := pending.next
			baseQueue.next = pendingFirst
			pending.next = baseFirst
		}
		baseQueue = pending
		current.baseQueue = baseQueue
		q.pending = nil
	}
	res := processUpdateQueue(current.baseState, baseQueue, renderLane)
	return &stateCell{
		memoizedState: res.memoizedState,
		baseState:     res.baseState,
		baseQueue:     res.baseQueue,
		queue:         q,
	}, res.skippedLanes
}
