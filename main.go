package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/teds-eval/internal/db"
	"github.com/dtnitsch/teds-eval/internal/evaluate"
	"github.com/dtnitsch/teds-eval/internal/normalize"
	"github.com/dtnitsch/teds-eval/internal/score"
	"github.com/dtnitsch/teds-eval/models"
)

func main() {
	app := &cli.App{
		Name:  "teds",
		Usage: "score predicted HTML tables against ground truth with TEDS",
		Commands: []*cli.Command{
			{
				Name:   "eval",
				Usage:  "score a predictions file against a ground truth file",
				Flags:  evaluate.Flags(),
				Action: evaluate.EvalAction,
			},
			{
				Name:  "score",
				Usage: "score a single prediction/ground truth pair",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "pred-file", Required: true, Usage: "predicted table HTML `FILE`"},
					&cli.StringFlag{Name: "gt-file", Required: true, Usage: "ground truth table HTML `FILE`"},
					&cli.BoolFlag{Name: "raw-gt", Usage: "ground truth is already canonical; skip normalization"},
					&cli.BoolFlag{Name: "clamp", Usage: "clamp scores to [0, 1]"},
					&cli.BoolFlag{Name: "tree", Usage: "print both full-mode trees"},
					&cli.StringFlag{Name: "format", Value: "text", Usage: "output format: text, json or yaml"},
					&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "only log errors"},
				},
				Action: score.ScoreAction,
			},
			{
				Name:  "normalize",
				Usage: "print the canonical form of a table",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Required: true, Usage: "HTML `FILE`, or - for stdin"},
					&cli.BoolFlag{Name: "ground-truth", Usage: "normalize as ground truth (wrapped in <html>)"},
					&cli.BoolFlag{Name: "tree", Usage: "also print the tree built from the canonical markup"},
					&cli.StringFlag{Name: "mode", Value: models.ModeStructure.String(), Usage: "tree labels: structure or full"},
					&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "only log errors"},
				},
				Action: normalize.NormalizeAction,
			},
			{
				Name:  "runs",
				Usage: "list recorded evaluation runs",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Value: 20, Usage: "maximum runs to list (0 for all)"},
					&cli.StringFlag{Name: "db", EnvVars: []string{"TEDS_DB"}, Usage: "run history database path"},
				},
				Action: db.RunsAction,
			},
			{
				Name:      "run",
				Usage:     "show a recorded run and its worst pairs",
				ArgsUsage: "[run-id]",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "worst", Value: models.DefaultWorst, Usage: "number of lowest-scoring pairs to show"},
					&cli.StringFlag{Name: "db", EnvVars: []string{"TEDS_DB"}, Usage: "run history database path"},
				},
				Action: db.RunAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(2)
	}
}
