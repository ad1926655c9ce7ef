// Package reconciler keeps a host tree in sync with a tree of element
// descriptions.
//
// Rendering happens on a work in progress copy of the committed node tree.
// Work is split into lanes: sync work is rendered in one go from a host
// microtask, everything else runs in scheduler callbacks that yield between
// nodes and can be preempted by more urgent lanes. Only a completed render is
// committed, so the host never sees a partial tree.
//
// A Root is not safe for concurrent use. Everything, including resolving
// futures read with Use, must happen on the goroutine that drives the
// scheduler.
package reconciler

import (
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/delaneyj/fiberparty/scheduler"
	"github.com/joeycumines/logiface"
)

type Root struct {
	host      Host
	sched     Scheduler
	container any
	opts      *options

	current      *Node
	finishedWork *Node
	finishedLane Lane
	lanes        laneBook

	callbackNode     *scheduler.Task
	callbackPriority Lane
	syncQueue        []func()
	flushingSync     bool

	session   *renderSession
	rendering bool

	pingCache        map[Wakeable]mapset.Set[Lane]
	passive          pendingPassive
	passiveScheduled bool

	updateLane      Lane
	transitionDepth int

	err     error
	commits int
}

// NewRoot mounts an empty tree into container.
func NewRoot(host Host, sched Scheduler, container any, opts ...Option) *Root {
	r := &Root{
		host:      host,
		sched:     sched,
		container: container,
		opts:      resolveOptions(opts),
	}
	n := newNode(HostRoot, nil, "")
	n.stateNode = r
	n.memoizedState = &stateCell{queue: &updateQueue{node: n}}
	r.current = n
	r.updateLane = r.opts.defaultLane
	return r
}

func (r *Root) logger() *logiface.Logger[logiface.Event] { return r.opts.logger }

// Render schedules el as the new tree at the current update lane.
func (r *Root) Render(el any) {
	r.RenderWithLane(el, r.requestUpdateLane())
}

func (r *Root) RenderWithLane(el any, lane Lane) {
	lane = HighestPriorityLane(lane)
	if lane == NoLane {
		lane = r.opts.defaultLane
	}
	cell := r.current.memoizedState.(*stateCell)
	cell.queue.enqueue(&update{payload: el, lane: lane})
	r.scheduleUpdateOnNode(r.current, lane)
}

// RunWithLane runs fn with lane as the update lane for Render and state
// dispatches.
func (r *Root) RunWithLane(lane Lane, fn func()) {
	prev := r.updateLane
	r.updateLane = HighestPriorityLane(lane)
	defer func() { r.updateLane = prev }()
	fn()
}

// StartTransition runs fn with every update inside it on TransitionLane.
func (r *Root) StartTransition(fn func()) {
	r.transitionDepth++
	defer func() { r.transitionDepth-- }()
	fn()
}

func (r *Root) requestUpdateLane() Lane {
	if r.transitionDepth > 0 {
		return TransitionLane
	}
	if r.updateLane == NoLane {
		return SyncLane
	}
	return r.updateLane
}

// scheduleUpdateOnNode records an update at lane on n and makes sure the
// root has a callback for it. A paused render at the same lane is dropped,
// since it may already have passed n.
func (r *Root) scheduleUpdateOnNode(n *Node, lane Lane) {
	if markUpdateLaneToRoot(n, lane) != r {
		return
	}
	if s := r.session; s != nil && !r.rendering && IncludesSomeLane(s.lane, lane) {
		r.logger().Debug().
			Stringer("lane", lane).
			Log("reconciler: update restarts render")
		r.session = nil
	}
	r.lanes.markUpdated(lane)
	r.ensureRootIsScheduled()
}

// FlushSync runs pending sync work now instead of in the host microtask.
func (r *Root) FlushSync() {
	r.flushSyncCallbacks()
}

// FlushPassiveEffects runs passive effects of the last commit now. It
// reports whether any were pending.
func (r *Root) FlushPassiveEffects() bool {
	return r.flushPassiveEffects()
}

// Err is the last render failure, if any.
func (r *Root) Err() error { return r.err }

// Current is the committed HostRoot node.
func (r *Root) Current() *Node { return r.current }

func (r *Root) Container() any { return r.container }

// PendingLanes are lanes with work not yet committed.
func (r *Root) PendingLanes() Lane { return r.lanes.pendingLanes }

func (r *Root) SuspendedLanes() Lane { return r.lanes.suspendedLanes }

// Commits counts commits since the root was created.
func (r *Root) Commits() int { return r.commits }
