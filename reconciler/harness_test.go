package reconciler_test

import (
	"math"
	"testing"

	"github.com/delaneyj/fiberparty/hostmem"
	"github.com/delaneyj/fiberparty/reconciler"
	"github.com/delaneyj/fiberparty/scheduler"
)

// harness wires a root to an in memory host and a scheduler whose yield
// signal is a unit budget, so tests decide exactly when a slice ends.
type harness struct {
	t      *testing.T
	sched  *scheduler.Scheduler
	host   *hostmem.Host
	root   *reconciler.Root
	budget int
	errs   []error
}

func newHarness(t *testing.T, opts ...reconciler.Option) *harness {
	t.Helper()
	hs := &harness{t: t, budget: math.MaxInt}
	hs.sched = scheduler.New(scheduler.WithYield(func() bool {
		if hs.budget <= 0 {
			return true
		}
		hs.budget--
		return false
	}))
	hs.host = hostmem.New(hs.sched.QueueMicrotask)
	opts = append([]reconciler.Option{
		reconciler.WithErrorHandler(func(err error) { hs.errs = append(hs.errs, err) }),
	}, opts...)
	hs.root = reconciler.NewRoot(hs.host, hs.sched, hs.host.Container(), opts...)
	return hs
}

func (hs *harness) render(el any) {
	hs.root.Render(el)
	hs.flush()
}

// flush runs everything queued, without yielding.
func (hs *harness) flush() {
	hs.budget = math.MaxInt
	hs.sched.RunUntilIdle()
}

// step runs one scheduler slice that may begin at most units nodes.
func (hs *harness) step(units int) {
	// one check happens before the task starts
	hs.budget = units + 1
	hs.sched.Step()
	hs.budget = math.MaxInt
}

func (hs *harness) markup() string { return hs.host.Markup() }

// mutations returns the host mutations logged since the last call.
func (hs *harness) mutations() []string {
	return hostmem.Strings(hostmem.Mutations(hs.host.TakeOps()))
}

func (hs *harness) lastErr() error {
	if len(hs.errs) == 0 {
		return nil
	}
	return hs.errs[len(hs.errs)-1]
}

// capture recovers a panic raised by fn.
func capture(fn func()) (rec any) {
	defer func() { rec = recover() }()
	fn()
	return nil
}
