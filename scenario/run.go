package scenario

import (
	"context"
	"fmt"

	"github.com/delaneyj/fiberparty/hostmem"
	"github.com/delaneyj/fiberparty/reconciler"
	"github.com/delaneyj/fiberparty/scheduler"
)

// Result is what one step did to the host.
type Result struct {
	Step int    `yaml:"step"`
	Lane string `yaml:"lane"`
	// Mutations are the host calls that touched the attached tree.
	Mutations   []string `yaml:"mutations"`
	Created     int      `yaml:"created"`
	Markup      string   `yaml:"markup"`
	Fingerprint uint64   `yaml:"fingerprint"`
	Commits     int      `yaml:"commits"`
}

// Run mounts a fresh root and renders each step of s to completion, in
// order. It stops at the first step whose render fails.
func Run(ctx context.Context, s *Scenario, opts ...reconciler.Option) ([]Result, error) {
	sched := scheduler.New()
	host := hostmem.New(sched.QueueMicrotask)
	root := reconciler.NewRoot(host, sched, host.Container(), opts...)

	results := make([]Result, 0, len(s.Steps))
	for i, st := range s.Steps {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		lane, err := st.lane()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i, err)
		}
		before := root.Commits()
		root.RenderWithLane(st.Render.Element(), lane)
		sched.RunUntilIdle()
		if err := root.Err(); err != nil {
			return results, fmt.Errorf("step %d: %w", i, err)
		}

		ops := host.TakeOps()
		mutations := hostmem.Mutations(ops)
		results = append(results, Result{
			Step:        i,
			Lane:        lane.String(),
			Mutations:   hostmem.Strings(mutations),
			Created:     countCreated(ops),
			Markup:      host.Markup(),
			Fingerprint: host.Fingerprint(),
			Commits:     root.Commits() - before,
		})
	}
	return results, nil
}

func countCreated(ops []hostmem.Op) int {
	n := 0
	for _, op := range ops {
		if op.Kind == hostmem.OpCreate || op.Kind == hostmem.OpCreateText {
			n++
		}
	}
	return n
}
