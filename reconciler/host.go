package reconciler

import "github.com/delaneyj/fiberparty/scheduler"

// Host is the target tree the reconciler mutates. Instances are opaque to
// the reconciler. All calls happen on the goroutine driving the scheduler.
type Host interface {
	CreateInstance(typ string, props Props) any
	CreateTextInstance(text string) any
	// AppendInitialChild builds a detached subtree during render.
	AppendInitialChild(parent, child any)
	AppendChild(parent, child any)
	InsertBefore(parent, child, before any)
	RemoveChild(parent, child any)
	CommitUpdate(instance any, typ string, oldProps, newProps Props)
	CommitTextUpdate(instance any, oldText, newText string)
	Hide(instance any)
	Unhide(instance any)
	ScheduleMicrotask(fn func())
}

// Scheduler runs non sync render work. *scheduler.Scheduler implements it.
type Scheduler interface {
	ScheduleCallback(p scheduler.Priority, cb scheduler.Callback) *scheduler.Task
	CancelCallback(t *scheduler.Task)
	ShouldYield() bool
}

var _ Scheduler = (*scheduler.Scheduler)(nil)
