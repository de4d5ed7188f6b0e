package evaluate

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/teds-eval/models"
	"github.com/dtnitsch/teds-eval/pkg/caching"
	"github.com/dtnitsch/teds-eval/pkg/dataset"
	"github.com/dtnitsch/teds-eval/pkg/db"
	"github.com/dtnitsch/teds-eval/pkg/mapreduce"
	"github.com/dtnitsch/teds-eval/pkg/parser"
	"github.com/dtnitsch/teds-eval/pkg/ted"
	"github.com/dtnitsch/teds-eval/pkg/teds"
)

const (
	tableA = `<table><tr><td>A</td></tr></table>`
	tableB = `<table><tr><td>B</td></tr></table>`
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func matchedSet() dataset.Matched {
	return dataset.Match(
		map[string]string{"a": tableA, "b": tableA, "c": `<p>no table</p>`, "x": tableA},
		map[string]string{"a": tableA, "b": tableB, "c": tableA, "y": tableA},
	)
}

func TestRunner_Run(t *testing.T) {
	for _, workers := range []int{0, 1, 4, 16} {
		r := &Runner{Logger: discardLogger(), Evaluator: &teds.Evaluator{}, WorkerCount: workers}
		out, err := r.Run(context.Background(), matchedSet())
		if err != nil {
			t.Fatalf("workers=%d: Run() error = %v", workers, err)
		}

		var keys []string
		for _, res := range out.Results {
			keys = append(keys, res.Key)
		}
		if strings.Join(keys, ",") != "a,b,c" {
			t.Errorf("workers=%d: keys = %v, want sorted a,b,c", workers, keys)
		}
		if out.PredOnly != 1 || out.GTOnly != 1 {
			t.Errorf("workers=%d: PredOnly/GTOnly = %d/%d", workers, out.PredOnly, out.GTOnly)
		}
		if out.Summary.Count != 3 || out.Summary.Failed != 1 {
			t.Errorf("workers=%d: Summary = %+v", workers, out.Summary)
		}
		// a: 1/1, b: 1/(2/3), c: failed 0/0
		if math.Abs(out.Summary.MeanStructure-2.0/3) > 1e-9 {
			t.Errorf("workers=%d: MeanStructure = %v", workers, out.Summary.MeanStructure)
		}
		if math.Abs(out.Summary.MeanFull-(1+2.0/3)/3) > 1e-9 {
			t.Errorf("workers=%d: MeanFull = %v", workers, out.Summary.MeanFull)
		}
		if out.Results[2].ErrorType != parser.ErrorTypeNoTableRoot || out.Results[2].ContentHash == "" {
			t.Errorf("workers=%d: failed result = %+v", workers, out.Results[2])
		}
	}
}

func TestRunner_RecoversPanics(t *testing.T) {
	boom := ted.CostFuncs{RelabelFunc: func(a, b ted.Node) float64 { panic("bad cost") }}
	r := &Runner{Logger: discardLogger(), Evaluator: &teds.Evaluator{Costs: boom}, WorkerCount: 2}

	out, err := r.Run(context.Background(), dataset.Match(
		map[string]string{"a": tableA, "b": tableB},
		map[string]string{"a": tableA, "b": tableB},
	))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out.Summary.Failed != 2 {
		t.Fatalf("Failed = %d, want 2", out.Summary.Failed)
	}
	for _, res := range out.Results {
		if res.ErrorType != ErrorTypePanic || res.Error != "bad cost" {
			t.Errorf("result = %+v, want panic failure", res)
		}
	}
}

func TestRunner_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &Runner{Logger: discardLogger(), Evaluator: &teds.Evaluator{}, WorkerCount: 2}
	out, err := r.Run(ctx, matchedSet())
	if err != context.Canceled {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if len(out.Results) != 0 {
		t.Errorf("scored %d pairs after cancel", len(out.Results))
	}
}

func TestRunner_CancelledAfterLastPair(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cancelling := ted.CostFuncs{RelabelFunc: func(a, b ted.Node) float64 {
		cancel()
		return ted.UnitCost.Relabel(a, b)
	}}

	r := &Runner{Logger: discardLogger(), Evaluator: &teds.Evaluator{Costs: cancelling}, WorkerCount: 1}
	out, err := r.Run(ctx, dataset.Match(map[string]string{"a": tableA}, map[string]string{"a": tableB}))
	if err != nil {
		t.Fatalf("Run() error = %v, want nil once every pair is scored", err)
	}
	if ctx.Err() == nil {
		t.Fatal("cost function never ran")
	}
	if len(out.Results) != 1 || math.Abs(out.Results[0].FullScore-2.0/3) > 1e-9 {
		t.Errorf("Results = %+v", out.Results)
	}
}

func TestRunner_Cache(t *testing.T) {
	cache, err := caching.NewCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	r := &Runner{Logger: discardLogger(), Evaluator: &teds.Evaluator{}, WorkerCount: 2, Cache: cache}

	first, err := r.Run(context.Background(), matchedSet())
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheHits != 0 {
		t.Errorf("first run CacheHits = %d, want 0", first.CacheHits)
	}

	second, err := r.Run(context.Background(), matchedSet())
	if err != nil {
		t.Fatal(err)
	}
	if second.CacheHits != 3 {
		t.Errorf("second run CacheHits = %d, want 3", second.CacheHits)
	}
	if second.Summary != first.Summary {
		t.Errorf("cached summary %+v differs from %+v", second.Summary, first.Summary)
	}
	if !second.Results[0].Cached {
		t.Error("result not marked as cached")
	}

	r.Evaluator = &teds.Evaluator{Clamp: true}
	third, err := r.Run(context.Background(), matchedSet())
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheHits != 0 {
		t.Errorf("changed options still hit cache %d times", third.CacheHits)
	}
}

func TestWriteCSV(t *testing.T) {
	tests := []struct {
		name string
		s    mapreduce.Summary
		want string
	}{
		{"rounded", mapreduce.Summary{MeanStructure: 0.912345, MeanFull: 2.0 / 3}, "avg_teds,avg_ted\n0.9123,0.6667\n"},
		{"whole numbers", mapreduce.Summary{MeanStructure: 1, MeanFull: 0}, "avg_teds,avg_ted\n1.0,0.0\n"},
		{"negative", mapreduce.Summary{MeanStructure: -0.25, MeanFull: 0.5}, "avg_teds,avg_ted\n-0.25,0.5\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "scores.csv")
			if err := WriteCSV(path, tt.s); err != nil {
				t.Fatalf("WriteCSV() error = %v", err)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if string(data) != tt.want {
				t.Errorf("csv = %q, want %q", data, tt.want)
			}
		})
	}
}

func TestPrintText(t *testing.T) {
	o := &Outcome{
		Summary:  mapreduce.Summary{Count: 1200, Failed: 2, MeanStructure: 0.91234, MeanFull: 0.8},
		PredOnly: 3,
	}
	var buf bytes.Buffer
	PrintText(&buf, o, 1500*time.Millisecond)
	out := buf.String()

	for _, want := range []string{
		"Matched 1,200 pairs (3 prediction-only, 0 ground-truth-only skipped)",
		"Failed to build: 2 (scored as 0)",
		"Average TEDS (structure only): 0.9123",
		"Average TED  (full table):     0.8000",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestExitCode(t *testing.T) {
	if ExitCode(&Outcome{Summary: mapreduce.Summary{Count: 2}}) != 0 {
		t.Error("clean run should exit 0")
	}
	if ExitCode(&Outcome{Summary: mapreduce.Summary{Count: 2, Failed: 1}}) != 1 {
		t.Error("run with a failed pair should exit 1")
	}
}

func TestExecute(t *testing.T) {
	dir := t.TempDir()
	cfg := &models.EvalConfig{
		PredPath: writeFile(t, dir, "pred.json", `[
			{"filename": "a.png", "html": "<table><tr><td>A</td></tr></table>"},
			{"filename": "b.png", "html": "<p>no table</p>"}
		]`),
		GTPath: writeFile(t, dir, "gt.json", `{"image": [
			{"filename": "a.png", "text_html_table": "<table><tr><td>B</td></tr></table>"},
			{"filename": "b.png", "text_html_table": "<table><tr><td>B</td></tr></table>"},
			{"filename": "c.png", "text_html_table": "<table></table>"}
		]}`),
		OutputCSV:   filepath.Join(dir, "teds_scores.csv"),
		ReportPath:  filepath.Join(dir, "report.yaml"),
		DBPath:      filepath.Join(dir, "runs.db"),
		WorkerCount: 2,
		Worst:       5,
	}

	out, err := Execute(context.Background(), cfg, discardLogger())
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if out.RunID == "" {
		t.Error("RunID not set")
	}
	if out.Summary.Count != 2 || out.Summary.Failed != 1 || out.GTOnly != 1 {
		t.Errorf("Summary = %+v, GTOnly = %d", out.Summary, out.GTOnly)
	}

	csvData, err := os.ReadFile(cfg.OutputCSV)
	if err != nil {
		t.Fatalf("csv not written: %v", err)
	}
	if string(csvData) != "avg_teds,avg_ted\n0.5,0.3333\n" {
		t.Errorf("csv = %q", csvData)
	}

	if _, err := os.Stat(cfg.ReportPath); err != nil {
		t.Errorf("report not written: %v", err)
	}

	database, err := db.OpenPath(cfg.DBPath)
	if err != nil {
		t.Fatal(err)
	}
	defer database.Close()
	runs, err := database.ListRuns(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].RunUUID != out.RunID || runs[0].Failed != 1 {
		t.Fatalf("runs = %+v", runs)
	}
	scores, err := database.GetRunScores(runs[0].RunID)
	if err != nil {
		t.Fatal(err)
	}
	if len(scores) != 2 || scores[1].ErrorType != parser.ErrorTypeNoTableRoot {
		t.Errorf("scores = %+v", scores)
	}
}

func TestExecute_MissingInput(t *testing.T) {
	cfg := &models.EvalConfig{
		PredPath:    filepath.Join(t.TempDir(), "missing.json"),
		GTPath:      filepath.Join(t.TempDir(), "missing.json"),
		WorkerCount: 1,
		NoDB:        true,
	}
	if _, err := Execute(context.Background(), cfg, discardLogger()); err == nil {
		t.Error("Execute() with missing input should fail")
	}
}

func TestResolveConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "teds.yaml", `
pred_path: file-pred.json
gt_path: file-gt.json
workers: 8
worst: 3
cache_ttl: 2h
`)

	tests := []struct {
		name   string
		args   []string
		check  func(t *testing.T, cfg *models.EvalConfig)
		errors bool
	}{
		{
			name: "defaults",
			args: []string{"--pred", "p.json", "--gt", "g.json"},
			check: func(t *testing.T, cfg *models.EvalConfig) {
				if cfg.WorkerCount != models.DefaultWorkers || cfg.OutputCSV != models.DefaultCSVPath || cfg.Worst != models.DefaultWorst {
					t.Errorf("cfg = %+v", cfg)
				}
			},
		},
		{
			name: "file values",
			args: []string{"--config", cfgPath},
			check: func(t *testing.T, cfg *models.EvalConfig) {
				if cfg.PredPath != "file-pred.json" || cfg.WorkerCount != 8 || cfg.Worst != 3 || cfg.CacheTTL != 2*time.Hour {
					t.Errorf("cfg = %+v", cfg)
				}
				if cfg.OutputCSV != models.DefaultCSVPath {
					t.Errorf("OutputCSV = %q", cfg.OutputCSV)
				}
			},
		},
		{
			name: "flags beat file",
			args: []string{"--config", cfgPath, "--pred", "flag.json", "--workers", "2", "--output-csv", ""},
			check: func(t *testing.T, cfg *models.EvalConfig) {
				if cfg.PredPath != "flag.json" || cfg.GTPath != "file-gt.json" || cfg.WorkerCount != 2 {
					t.Errorf("cfg = %+v", cfg)
				}
				if cfg.OutputCSV != "" {
					t.Errorf("OutputCSV = %q, want disabled", cfg.OutputCSV)
				}
			},
		},
		{
			name:   "missing paths",
			args:   []string{"--workers", "2"},
			errors: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *models.EvalConfig
			var gotErr error
			app := &cli.App{
				Name:  "test",
				Flags: Flags(),
				Action: func(c *cli.Context) error {
					got, gotErr = ResolveConfig(c)
					return nil
				},
			}
			if err := app.Run(append([]string{"test"}, tt.args...)); err != nil {
				t.Fatalf("app.Run() error = %v", err)
			}
			if tt.errors {
				if gotErr == nil {
					t.Error("ResolveConfig() should fail")
				}
				return
			}
			if gotErr != nil {
				t.Fatalf("ResolveConfig() error = %v", gotErr)
			}
			tt.check(t, got)
		})
	}
}
