package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/delaneyj/fiberparty/hostmem"
	"github.com/delaneyj/fiberparty/reconciler"
	"github.com/delaneyj/fiberparty/scheduler"
	"github.com/dustin/go-humanize"
	"github.com/jamiealquiza/tachymeter"
	"github.com/joeycumines/logiface"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"
)

func benchCommand() *cli.Command {
	return &cli.Command{
		Name:  "bench",
		Usage: "Time keyed list renders against the in memory host",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  sizeKey,
				Usage: "Items in the list",
				Value: 1_000,
			},
			&cli.IntFlag{
				Name:  itersKey,
				Usage: "Timed renders per case",
				Value: 100,
			},
		},
		Action: bench,
	}
}

// benchCase produces the list order and labels for iteration i.
type benchCase struct {
	name string
	lane reconciler.Lane
	// remount renders into a fresh root every iteration
	remount bool
	next    func(i int, items []int) []int
	label   func(i, item int) string
}

func benchCases(rnd *rand.Rand) []benchCase {
	plain := func(_, item int) string { return strconv.Itoa(item) }
	same := func(_ int, items []int) []int { return items }
	reverse := func(_ int, items []int) []int {
		out := slices.Clone(items)
		slices.Reverse(out)
		return out
	}
	return []benchCase{
		{name: "mount", lane: reconciler.SyncLane, remount: true, next: same, label: plain},
		{name: "reverse", lane: reconciler.SyncLane, next: reverse, label: plain},
		{name: "shuffle", lane: reconciler.SyncLane, next: func(_ int, items []int) []int {
			out := slices.Clone(items)
			rnd.Shuffle(len(out), func(a, b int) { out[a], out[b] = out[b], out[a] })
			return out
		}, label: plain},
		{name: "update every 10th", lane: reconciler.SyncLane, next: same, label: func(i, item int) string {
			if item%10 == 0 {
				return fmt.Sprintf("%d.%d", item, i)
			}
			return strconv.Itoa(item)
		}},
		{name: "reverse (transition)", lane: reconciler.TransitionLane, next: reverse, label: plain},
	}
}

func benchList(items []int, label func(int) string) *reconciler.Element {
	children := make([]any, len(items))
	for i, item := range items {
		children[i] = reconciler.H("li", nil, label(item)).Keyed(strconv.Itoa(item))
	}
	return reconciler.H("ul", nil, children...)
}

type benchRig struct {
	sched *scheduler.Scheduler
	host  *hostmem.Host
	root  *reconciler.Root
}

func newBenchRig(logger *logiface.Logger[logiface.Event]) *benchRig {
	sched := scheduler.New(scheduler.WithLogger(logger))
	host := hostmem.New(sched.QueueMicrotask)
	root := reconciler.NewRoot(host, sched, host.Container(), reconciler.WithLogger(logger))
	return &benchRig{sched: sched, host: host, root: root}
}

func (b *benchRig) render(el any, lane reconciler.Lane) (int, error) {
	b.root.RenderWithLane(el, lane)
	b.sched.RunUntilIdle()
	if err := b.root.Err(); err != nil {
		return 0, err
	}
	return len(hostmem.Mutations(b.host.TakeOps())), nil
}

func bench(ctx context.Context, cmd *cli.Command) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}
	size, iters := int(cmd.Int(sizeKey)), int(cmd.Int(itersKey))
	if size <= 0 || iters <= 0 {
		return fmt.Errorf("bench: size and iters must be positive")
	}

	base := make([]int, size)
	for i := range base {
		base[i] = i
	}

	tbl := tablewriter.NewWriter(os.Stdout)
	tbl.SetHeader([]string{"case", "size", "iters", "avg", "min", "p75", "p99", "max", "mutations/iter"})

	for _, bc := range benchCases(rand.New(rand.NewSource(1))) {
		if err := ctx.Err(); err != nil {
			return err
		}
		logger.Info().
			Str("case", bc.name).
			Int("size", size).
			Log("bench case started")

		tach := tachymeter.New(&tachymeter.Config{Size: iters})
		rig := newBenchRig(logger)
		items := base
		if !bc.remount {
			if _, err := rig.render(benchList(items, func(item int) string { return bc.label(0, item) }), reconciler.SyncLane); err != nil {
				return fmt.Errorf("bench %s: %w", bc.name, err)
			}
		}

		var mutations int
		for i := 1; i <= iters; i++ {
			if bc.remount {
				rig = newBenchRig(logger)
			}
			items = bc.next(i, items)
			iter := i
			el := benchList(items, func(item int) string { return bc.label(iter, item) })

			start := time.Now()
			n, err := rig.render(el, bc.lane)
			tach.AddTime(time.Since(start))
			if err != nil {
				return fmt.Errorf("bench %s: %w", bc.name, err)
			}
			mutations += n
		}

		calc := tach.Calc()
		tbl.Append([]string{
			bc.name,
			humanize.Comma(int64(size)),
			humanize.Comma(int64(iters)),
			fmt.Sprint(calc.Time.Avg),
			fmt.Sprint(calc.Time.Min),
			fmt.Sprint(calc.Time.P75),
			fmt.Sprint(calc.Time.P99),
			fmt.Sprint(calc.Time.Max),
			humanize.Comma(int64(mutations / iters)),
		})
	}
	tbl.Render()
	return nil
}
