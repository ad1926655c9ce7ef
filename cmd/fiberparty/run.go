package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/delaneyj/fiberparty/reconciler"
	"github.com/delaneyj/fiberparty/scenario"
	"github.com/delaneyj/fiberparty/trace"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"
)

func runCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Replay a scenario file and show what each step did to the host",
		ArgsUsage: "<scenario.yaml>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  traceKey,
				Usage: "Record the run in this trace database",
			},
		},
		Action: runScenario,
	}
}

func runScenario(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return errors.New("run: missing scenario file")
	}
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}

	s, err := scenario.LoadFile(path)
	if err != nil {
		return err
	}
	results, err := scenario.Run(ctx, s, reconciler.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("run %s: %w", path, err)
	}

	name := s.Name
	if name == "" {
		name = path
	}
	renderSteps(os.Stdout, name, results)
	if len(results) > 0 {
		fmt.Println(results[len(results)-1].Markup)
	}

	if dbPath := cmd.String(traceKey); dbPath != "" {
		st, err := trace.Open(dbPath)
		if err != nil {
			return err
		}
		defer st.Close()
		seq, err := st.Record(name, results)
		if err != nil {
			return fmt.Errorf("record run: %w", err)
		}
		logger.Info().
			Int("seq", seq).
			Str("db", dbPath).
			Log("recorded run")
		fmt.Printf("recorded run %d in %s\n", seq, dbPath)
	}
	return nil
}

// renderSteps writes one row per step.
func renderSteps(w io.Writer, title string, results []scenario.Result) {
	tbl := table.NewWriter()
	tbl.SetTitle(title)
	tbl.SetOutputMirror(w)
	tbl.SetStyle(tableStyle(w))
	tbl.AppendHeader(table.Row{"step", "lane", "commits", "created", "mutations", "fingerprint"})
	for _, r := range results {
		tbl.AppendRow(table.Row{
			r.Step,
			r.Lane,
			r.Commits,
			r.Created,
			strings.Join(r.Mutations, "\n"),
			fmt.Sprintf("%016x", r.Fingerprint),
		})
	}
	tbl.Render()
}

// tableStyle colours tables only when writing to a terminal.
func tableStyle(w io.Writer) table.Style {
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return table.StyleColoredBright
	}
	return table.StyleLight
}
