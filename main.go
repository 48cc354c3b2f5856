package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/pokedata/pokepipeline/internal/pipeline"
	"github.com/pokedata/pokepipeline/pkg/db"
)

func main() {
	app := &cli.App{
		Name:  "pokepipeline",
		Usage: "fetch pokemon data from PokeAPI and load it into SQLite",
		Description: `Batch ETL over a bounded set of pokemon ids: each id is fetched,
normalized into relational rows and stored. Per-id failures are
reported in the final summary without aborting the run or changing
the exit status; only setup failures (unreadable config, unusable
database) exit non-zero.`,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "fetch, transform and load a batch of pokemon ids",
				Action: pipeline.RunAction,
				Flags: []cli.Flag{
					&cli.IntSliceFlag{
						Name:  "ids",
						Usage: "explicit pokemon ids to fetch (repeatable)",
					},
					&cli.IntFlag{
						Name:  "start-id",
						Usage: "first id of a contiguous range (inclusive)",
					},
					&cli.IntFlag{
						Name:  "end-id",
						Usage: "last id of a contiguous range (inclusive)",
					},
					&cli.StringFlag{
						Name:  "db",
						Value: db.DefaultDBName,
						Usage: "path to the SQLite database",
					},
					&cli.StringFlag{
						Name:  "config",
						Usage: "optional YAML config file (base URL, retry policy)",
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "override max fetch attempts per request",
					},
					&cli.BoolFlag{
						Name:  "quiet",
						Usage: "errors only, no progress bar",
					},
				},
			},
			{
				Name:      "show",
				Usage:     "print stored pokemon (all, or one id in detail)",
				ArgsUsage: "[id]",
				Action:    pipeline.ShowAction,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "db",
						Value: db.DefaultDBName,
						Usage: "path to the SQLite database",
					},
					&cli.BoolFlag{
						Name:  "quiet",
						Usage: "errors only",
					},
				},
			},
			{
				Name:   "runs",
				Usage:  "list recorded pipeline runs",
				Action: pipeline.RunsAction,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "db",
						Value: db.DefaultDBName,
						Usage: "path to the SQLite database",
					},
					&cli.IntFlag{
						Name:  "limit",
						Value: 20,
						Usage: "max runs to list",
					},
					&cli.BoolFlag{
						Name:  "quiet",
						Usage: "errors only",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
