package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/delaneyj/fiberparty/trace"
	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v3"
)

func traceCommand() *cli.Command {
	return &cli.Command{
		Name:      "trace",
		Usage:     "List recorded runs, or show one",
		ArgsUsage: "<trace.db>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  runKey,
				Usage: "Show the steps of this run",
			},
		},
		Action: showTrace,
	}
}

func showTrace(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return errors.New("trace: missing database file")
	}
	st, err := trace.Open(path)
	if err != nil {
		return err
	}
	defer st.Close()

	if seq := int(cmd.Int(runKey)); seq > 0 {
		run, err := st.Run(seq)
		if err != nil {
			return err
		}
		renderSteps(os.Stdout, fmt.Sprintf("#%d %s", run.Seq, run.Name), run.Steps)
		return nil
	}

	runs, err := st.Runs()
	if err != nil {
		return err
	}
	tbl := table.NewWriter()
	tbl.SetTitle(path)
	tbl.SetOutputMirror(os.Stdout)
	tbl.SetStyle(tableStyle(os.Stdout))
	tbl.AppendHeader(table.Row{"run", "name", "recorded", "steps", "size"})
	for _, r := range runs {
		tbl.AppendRow(table.Row{
			r.Seq,
			r.Name,
			humanize.Time(r.Recorded),
			len(r.Steps),
			humanize.Bytes(uint64(r.Size)),
		})
	}
	tbl.Render()
	return nil
}
