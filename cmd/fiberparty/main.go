package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
	"github.com/urfave/cli/v3"
)

const (
	logLevelKey = "log-level"
	traceKey    = "trace"
	runKey      = "run"
	sizeKey     = "size"
	itersKey    = "iters"
)

func main() {
	cmd := &cli.Command{
		Name:  "fiberparty",
		Usage: "Render scenarios through the fiber reconciler",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  logLevelKey,
				Usage: "Log level written to stderr (trace, debug, info, warning, err, disabled)",
				Value: "warning",
			},
		},
		Commands: []*cli.Command{
			runCommand(),
			traceCommand(),
			benchCommand(),
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// newLogger builds the JSON logger for the level named by --log-level.
func newLogger(cmd *cli.Command) (*logiface.Logger[logiface.Event], error) {
	lvl, err := parseLevel(cmd.String(logLevelKey))
	if err != nil {
		return nil, err
	}
	return stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(os.Stderr)),
		stumpy.L.WithLevel(lvl),
	).Logger(), nil
}

func parseLevel(name string) (logiface.Level, error) {
	for lvl := logiface.LevelDisabled; lvl <= logiface.LevelTrace; lvl++ {
		if lvl.String() == name {
			return lvl, nil
		}
	}
	return logiface.LevelDisabled, fmt.Errorf("unknown log level %q", name)
}
