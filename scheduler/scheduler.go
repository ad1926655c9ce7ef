// Package scheduler is a single threaded cooperative task scheduler.
//
// Callbacks are ordered by expiration time, which is derived from their
// priority, so an urgent callback scheduled late still runs before a lazy one
// scheduled early. A callback can return a continuation to keep its slot in
// the queue, and long running callbacks poll ShouldYield to give the host a
// chance to run microtasks and more urgent work.
//
// Nothing here is safe for concurrent use. The owner drives the scheduler by
// calling Step or RunUntilIdle from one goroutine.
package scheduler

import (
	"container/heap"
	"fmt"
	"time"
)

// Callback is a unit of scheduled work. Returning a non nil Callback keeps the
// task queued with the returned function as its continuation.
type Callback func(didTimeout bool) Callback

// Task is the handle returned by ScheduleCallback.
type Task struct {
	id             uint64
	priority       Priority
	callback       Callback
	startTime      time.Time
	expirationTime time.Time
	index          int
	canceled       bool
}

func (t *Task) Priority() Priority { return t.priority }

// Canceled reports whether CancelCallback was called for t.
func (t *Task) Canceled() bool { return t.canceled }

type Scheduler struct {
	opts *options

	queue      taskHeap
	nextID     uint64
	microtasks []func()

	sliceStart  time.Time
	currentTask *Task
	flushing    bool
}

func New(opts ...Option) *Scheduler {
	return &Scheduler{opts: resolveOptions(opts)}
}

func (s *Scheduler) now() time.Time { return s.opts.now() }

// ScheduleCallback queues cb at priority p.
func (s *Scheduler) ScheduleCallback(p Priority, cb Callback) *Task {
	if p == NoPriority {
		p = NormalPriority
	}
	now := s.now()
	s.nextID++
	t := &Task{
		id:             s.nextID,
		priority:       p,
		callback:       cb,
		startTime:      now,
		expirationTime: now.Add(p.Timeout()),
	}
	heap.Push(&s.queue, t)
	s.opts.logger.Trace().
		Uint64("task", t.id).
		Stringer("priority", p).
		Log("scheduler: callback scheduled")
	return t
}

// CancelCallback prevents t from running again. The task stays in the heap
// until it reaches the top, where it is discarded.
func (s *Scheduler) CancelCallback(t *Task) {
	if t == nil {
		return
	}
	t.canceled = true
	t.callback = nil
}

// ShouldYield reports whether the running callback has used up its slice.
func (s *Scheduler) ShouldYield() bool {
	if s.opts.shouldYield != nil {
		return s.opts.shouldYield()
	}
	return s.now().Sub(s.sliceStart) >= s.opts.frameInterval
}

// QueueMicrotask runs fn after the current macrotask, before any other.
func (s *Scheduler) QueueMicrotask(fn func()) {
	if fn == nil {
		return
	}
	s.microtasks = append(s.microtasks, fn)
}

// FlushMicrotasks drains the microtask queue, including microtasks queued
// while draining.
func (s *Scheduler) FlushMicrotasks() {
	for len(s.microtasks) > 0 {
		fn := s.microtasks[0]
		s.microtasks[0] = nil
		s.microtasks = s.microtasks[1:]
		s.safeExecute(func() { fn() })
	}
	s.microtasks = nil
}

// Len is the number of live (not canceled) tasks.
func (s *Scheduler) Len() int {
	n := 0
	for _, t := range s.queue {
		if !t.canceled {
			n++
		}
	}
	return n
}

// Idle reports whether both queues are empty.
func (s *Scheduler) Idle() bool {
	return len(s.microtasks) == 0 && s.Len() == 0
}

// Step runs one time slice: macrotasks in expiration order until the slice is
// used up or a callback yields with a continuation, then all microtasks. It
// reports whether work remains.
func (s *Scheduler) Step() bool {
	if s.flushing {
		panic("scheduler: Step called re-entrantly")
	}
	s.flushing = true
	defer func() {
		s.flushing = false
		s.currentTask = nil
	}()

	s.FlushMicrotasks()
	s.sliceStart = s.now()

	for s.queue.Len() > 0 {
		t := s.queue[0]
		if t.canceled || t.callback == nil {
			heap.Pop(&s.queue)
			continue
		}
		now := s.now()
		if t.expirationTime.After(now) && s.ShouldYield() {
			break
		}

		s.currentTask = t
		cb := t.callback
		t.callback = nil
		didTimeout := !t.expirationTime.After(now)

		var next Callback
		s.safeExecute(func() { next = cb(didTimeout) })

		if next != nil && !t.canceled {
			t.callback = next
			s.FlushMicrotasks()
			break
		}
		if t.index >= 0 && t.index < s.queue.Len() && s.queue[t.index] == t {
			heap.Remove(&s.queue, t.index)
		}
		s.FlushMicrotasks()
	}
	s.FlushMicrotasks()

	return !s.Idle()
}

// RunUntilIdle keeps stepping until no work is left.
func (s *Scheduler) RunUntilIdle() {
	for s.Step() {
	}
}

func (s *Scheduler) safeExecute(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.opts.logger.Err().
				Str("panic", fmt.Sprint(r)).
				Log("scheduler: callback panicked")
		}
	}()
	fn()
}

type taskHeap []*Task

func (h taskHeap) Len() int { return len(h) }
func (h taskHeap) Less(i, j int) bool {
	if !h[i].expirationTime.Equal(h[j].expirationTime) {
		return h[i].expirationTime.Before(h[j].expirationTime)
	}
	return h[i].id < h[j].id
}
func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *taskHeap) Push(x any) {
	t := x.(*Task)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}
