package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"
)

func RunsAction(c *cli.Context) error {
	database, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer database.Close()

	runs, err := database.ListRuns(c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No runs found")
		return nil
	}

	// Print table header
	fmt.Printf("%-6s %-20s %-8s %-8s %-9s %-9s %-30s\n",
		"ID", "Created", "Matched", "Failed", "TEDS", "TED", "Predictions")
	fmt.Println(strings.Repeat("-", 100))

	for _, r := range runs {
		fmt.Printf("%-6d %-20s %-8d %-8d %-9.4f %-9.4f %-30s\n",
			r.RunID,
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.Matched,
			r.Failed,
			r.AvgTEDS,
			r.AvgTED,
			r.PredPath,
		)
	}

	fmt.Printf("\nTotal: %d runs\n", len(runs))
	fmt.Printf("\nTip: Use 'teds run <id>' to see details\n")

	return nil
}

// RunAction shows details for a specific run
func RunAction(c *cli.Context) error {
	database, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer database.Close()

	runID, err := GetRunIDOrLatest(c, database)
	if err != nil {
		return err
	}

	run, err := database.GetRunByID(runID)
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}

	worst, err := database.GetWorstScores(runID, c.Int("worst"))
	if err != nil {
		return fmt.Errorf("failed to get run scores: %w", err)
	}

	fmt.Printf("Run %d (%s)\n", run.RunID, run.RunUUID)
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Created:      %s (%s)\n", run.CreatedAt.Format("2006-01-02 15:04:05"), humanize.Time(run.CreatedAt))
	fmt.Printf("Predictions:  %s\n", run.PredPath)
	fmt.Printf("Ground truth: %s\n", run.GTPath)
	fmt.Printf("Pairs:        %s matched (%d failed), %d prediction-only, %d ground-truth-only\n",
		humanize.Comma(int64(run.Matched)), run.Failed, run.PredOnly, run.GTOnly)
	fmt.Printf("Workers:      %d, took %s\n", run.Workers, time.Duration(run.DurationMS)*time.Millisecond)
	if run.Clamped {
		fmt.Println("Scores:       clamped to [0, 1]")
	}
	fmt.Printf("\nAverage TEDS (structure only): %.4f\n", run.AvgTEDS)
	fmt.Printf("Average TED  (full table):     %.4f\n", run.AvgTED)

	if len(worst) > 0 {
		fmt.Printf("\nWorst pairs (%d):\n", len(worst))
		fmt.Println(strings.Repeat("-", 60))
		for i, s := range worst {
			if s.ErrorType != "" {
				fmt.Printf("%2d. %s  [%s] %s\n", i+1, s.Key, s.ErrorType, s.ErrorMessage)
				continue
			}
			fmt.Printf("%2d. %s  structure %.4f | full %.4f\n", i+1, s.Key, s.StructureScore, s.FullScore)
		}
	}

	return nil
}
