package reconciler

import (
	"errors"
	"fmt"

	"github.com/delaneyj/fiberparty/scheduler"
)

// ExitStatus is the outcome of one render attempt.
type ExitStatus uint8

const (
	RootInProgress ExitStatus = iota
	// the time slice ran out, the session is kept for the next slice
	RootIncomplete
	RootCompleted
	// suspended with no boundary to show a fallback
	RootDidNotComplete
	RootErrored
)

func (s ExitStatus) String() string {
	switch s {
	case RootInProgress:
		return "in-progress"
	case RootIncomplete:
		return "incomplete"
	case RootCompleted:
		return "completed"
	case RootDidNotComplete:
		return "did-not-complete"
	case RootErrored:
		return "errored"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// renderSession is the state of one render attempt at one lane. It is thrown
// away when the attempt commits, fails or is preempted.
type renderSession struct {
	root    *Root
	lane    Lane
	wipRoot *Node
	wip     *Node
	exit    ExitStatus
	fatal   error

	contexts contextStack
	handlers []*Node

	didReceiveUpdate bool
	units            int
}

func (r *Root) prepareFreshStack(lane Lane) *renderSession {
	if r.session != nil {
		r.logger().Debug().
			Stringer("lane", r.session.lane).
			Stringer("next", lane).
			Log("reconciler: render discarded")
	}
	s := &renderSession{root: r, lane: lane}
	s.wipRoot = cloneForWork(r.current, r.current.pendingProps)
	s.wip = s.wipRoot
	r.session = s
	return s
}

// renderRoot builds the work in progress tree for lane. With timeSlice set
// it stops as soon as the scheduler asks to yield and reports
// RootIncomplete; calling it again with the same lane resumes.
func (r *Root) renderRoot(lane Lane, timeSlice bool) (ExitStatus, error) {
	s := r.session
	if s == nil || s.lane != lane {
		s = r.prepareFreshStack(lane)
		r.logger().Debug().
			Stringer("lane", lane).
			Bool("sliced", timeSlice).
			Log("reconciler: render start")
	}

	r.rendering = true
	func() {
		defer func() { r.rendering = false }()
		s.workLoop(timeSlice)
	}()

	if s.wip != nil {
		return RootIncomplete, nil
	}
	r.session = nil
	if s.exit == RootInProgress {
		s.exit = RootCompleted
	}
	if s.exit == RootCompleted {
		r.finishedWork = s.wipRoot
		r.finishedLane = lane
	}
	r.logger().Debug().
		Stringer("lane", lane).
		Stringer("status", s.exit).
		Int("units", s.units).
		Log("reconciler: render done")
	return s.exit, s.fatal
}

func (s *renderSession) workLoop(timeSlice bool) {
	for s.wip != nil {
		if timeSlice && s.root.sched.ShouldYield() {
			return
		}
		s.performUnitOfWork(s.wip)
	}
}

func (s *renderSession) performUnitOfWork(unit *Node) {
	s.units++
	next, err := s.safeBegin(unit)
	if err != nil {
		s.handleThrow(unit, err)
		return
	}
	unit.memoizedProps = unit.pendingProps
	if next == nil {
		s.completeUnitOfWork(unit)
		return
	}
	s.wip = next
}

// safeBegin turns a panic escaping a component into an error for unit.
func (s *renderSession) safeBegin(unit *Node) (next *Node, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = panicError(unit, rec)
		}
	}()
	return s.beginWork(unit)
}

func panicError(unit *Node, rec any) error {
	if e, ok := rec.(error); ok {
		var he *HookError
		if errors.As(e, &he) {
			return e
		}
	}
	name := unit.kind.String()
	switch t := unit.typ.(type) {
	case *Component:
		name = t.String()
	case string:
		name = t
	}
	return &ComponentError{Component: name, Err: fmt.Errorf("panic: %v", rec)}
}

func (s *renderSession) handleThrow(unit *Node, err error) {
	var se *SuspendError
	if errors.As(err, &se) && se.Wakeable != nil {
		s.throwException(se.Wakeable)
		s.unwindUnitOfWork(unit)
		return
	}
	s.fail(err)
}

func (s *renderSession) fail(err error) {
	s.fatal = err
	s.exit = RootErrored
	s.wip = nil
}

// completeUnitOfWork completes unit and then every ancestor whose children
// are all done, stopping at the first sibling still to begin. A panic while
// completing, usually from the host, fails the render.
func (s *renderSession) completeUnitOfWork(unit *Node) {
	node := unit
	defer func() {
		if rec := recover(); rec != nil {
			s.fail(panicError(node, rec))
		}
	}()
	for {
		s.completeWork(node)
		if sib := node.sibling; sib != nil {
			s.wip = sib
			return
		}
		node = node.parent
		s.wip = node
		if node == nil {
			return
		}
	}
}

// performSyncWork renders and commits the sync lane without yielding.
func (r *Root) performSyncWork() {
	r.flushPassiveEffects()
	lane := r.lanes.nextLane()
	if lane != SyncLane {
		r.ensureRootIsScheduled()
		return
	}
	status, err := r.renderRoot(lane, false)
	r.finishRender(lane, status, err)
}

// performConcurrentWork is the scheduler callback for non sync lanes. It
// returns itself as a continuation while the same lane still has work.
func (r *Root) performConcurrentWork(didTimeout bool) scheduler.Callback {
	task := r.callbackNode
	if r.flushPassiveEffects() && r.callbackNode != task {
		return nil
	}
	lane := r.lanes.nextLane()
	if lane == NoLane {
		return nil
	}

	status, err := r.renderRoot(lane, !didTimeout)
	if status != RootIncomplete {
		r.finishRender(lane, status, err)
	}
	r.ensureRootIsScheduled()
	if task != nil && r.callbackNode == task {
		return r.performConcurrentWork
	}
	return nil
}

func (r *Root) finishRender(lane Lane, status ExitStatus, err error) {
	switch status {
	case RootCompleted:
		r.commitRoot()
		return
	case RootDidNotComplete:
		r.lanes.markSuspended(lane)
	case RootErrored:
		r.lanes.markFinished(lane)
		r.reportError(err)
	default:
		return
	}
	r.callbackNode = nil
	r.callbackPriority = NoLane
	r.ensureRootIsScheduled()
}

func (r *Root) reportError(err error) {
	r.err = err
	r.logger().Err().
		Err(err).
		Log("reconciler: render failed")
	if r.opts.onError != nil {
		r.opts.onError(err)
	}
}

// ensureRootIsScheduled makes sure exactly one callback is queued for the
// most urgent pending lane.
func (r *Root) ensureRootIsScheduled() {
	lane := r.lanes.nextLane()
	existing := r.callbackNode

	if lane == NoLane {
		if existing != nil {
			r.sched.CancelCallback(existing)
		}
		r.callbackNode = nil
		r.callbackPriority = NoLane
		return
	}
	if lane == r.callbackPriority {
		return
	}
	if existing != nil {
		r.sched.CancelCallback(existing)
	}

	var task *scheduler.Task
	if lane == SyncLane {
		r.syncQueue = append(r.syncQueue, r.performSyncWork)
		r.host.ScheduleMicrotask(r.flushSyncCallbacks)
	} else {
		task = r.sched.ScheduleCallback(LaneToPriority(lane), r.performConcurrentWork)
	}
	r.callbackNode = task
	r.callbackPriority = lane
}

// flushSyncCallbacks runs queued sync work, including work queued while
// flushing. Nested calls return immediately.
func (r *Root) flushSyncCallbacks() {
	if r.flushingSync || len(r.syncQueue) == 0 {
		return
	}
	r.flushingSync = true
	defer func() { r.flushingSync = false }()
	for i := 0; i < len(r.syncQueue); i++ {
		r.syncQueue[i]()
	}
	r.syncQueue = nil
}
