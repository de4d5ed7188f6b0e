package evaluate

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/dtnitsch/teds-eval/models"
	"github.com/dtnitsch/teds-eval/pkg/db"
	"github.com/dtnitsch/teds-eval/pkg/mapreduce"
)

// WriteCSV writes the avg_teds/avg_ted header and one row of means rounded
// to four decimals.
func WriteCSV(path string, s mapreduce.Summary) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create csv %s: %w", path, err)
	}
	defer f.Close()

	if err := writeCSV(f, s); err != nil {
		return fmt.Errorf("failed to write csv %s: %w", path, err)
	}
	return f.Close()
}

func writeCSV(w io.Writer, s mapreduce.Summary) error {
	cw := csv.NewWriter(w)
	rows := [][]string{
		{"avg_teds", "avg_ted"},
		{formatScore(s.MeanStructure), formatScore(s.MeanFull)},
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

// formatScore renders a rounded score without trailing zeros, the way the
// scores have always appeared in the csv: 0.5 and 1.0, not 0.5000 and 1.
func formatScore(v float64) string {
	s := strconv.FormatFloat(models.Round4(v), 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// BuildStats converts an outcome into output stats.
func BuildStats(o *Outcome, elapsed time.Duration) Stats {
	return Stats{
		Matched:          o.Summary.Count,
		PredOnly:         o.PredOnly,
		GTOnly:           o.GTOnly,
		Failed:           o.Summary.Failed,
		CacheHits:        o.CacheHits,
		AvgTEDS:          models.Round4(o.Summary.MeanStructure),
		AvgTED:           models.Round4(o.Summary.MeanFull),
		TotalTimeSeconds: elapsed.Seconds(),
	}
}

// BuildFinalOutput assembles the structured output of a run.
func BuildFinalOutput(o *Outcome, elapsed time.Duration, worst int) FinalOutput {
	out := FinalOutput{
		Status: "success",
		RunID:  o.RunID,
		Stats:  BuildStats(o, elapsed),
		Worst:  mapreduce.WorstPairs(o.Pairs(), models.ModeFull, worst),
	}
	if o.Summary.Failed > 0 {
		out.Status = "partial_failure"
	}
	return out
}

// PrintText writes the human-readable summary.
func PrintText(w io.Writer, o *Outcome, elapsed time.Duration) {
	fmt.Fprintf(w, "Matched %s pairs", humanize.Comma(int64(o.Summary.Count)))
	if o.PredOnly > 0 || o.GTOnly > 0 {
		fmt.Fprintf(w, " (%s prediction-only, %s ground-truth-only skipped)",
			humanize.Comma(int64(o.PredOnly)), humanize.Comma(int64(o.GTOnly)))
	}
	fmt.Fprintln(w)
	if o.Summary.Failed > 0 {
		fmt.Fprintf(w, "Failed to build: %s (scored as 0)\n", humanize.Comma(int64(o.Summary.Failed)))
	}
	if o.CacheHits > 0 {
		fmt.Fprintf(w, "Cache hits: %s\n", humanize.Comma(int64(o.CacheHits)))
	}
	fmt.Fprintf(w, "\nAverage TEDS (structure only): %.4f\n", o.Summary.MeanStructure)
	fmt.Fprintf(w, "Average TED  (full table):     %.4f\n", o.Summary.MeanFull)
	fmt.Fprintf(w, "\nScored in %s\n", elapsed.Round(time.Millisecond))
}

// ToPairScores converts results into rows for the run store.
func ToPairScores(results []Result) []db.PairScore {
	scores := make([]db.PairScore, len(results))
	for i, r := range results {
		scores[i] = db.PairScore{
			Key:            r.Key,
			StructureScore: r.StructureScore,
			FullScore:      r.FullScore,
			ErrorType:      r.ErrorType,
			ErrorMessage:   r.Error,
			ContentHash:    r.ContentHash,
		}
	}
	return scores
}

// ExitCode is 0 when every pair scored and 1 when any pair failed to build.
func ExitCode(o *Outcome) int {
	if o.Summary.Failed > 0 {
		return 1
	}
	return 0
}
