package evaluate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/teds-eval/internal/common"
	"github.com/dtnitsch/teds-eval/models"
	"github.com/dtnitsch/teds-eval/pkg/caching"
	"github.com/dtnitsch/teds-eval/pkg/dataset"
	"github.com/dtnitsch/teds-eval/pkg/db"
	"github.com/dtnitsch/teds-eval/pkg/manifest"
	"github.com/dtnitsch/teds-eval/pkg/mapreduce"
	"github.com/dtnitsch/teds-eval/pkg/storage"
	"github.com/dtnitsch/teds-eval/pkg/teds"
)

func EvalAction(c *cli.Context) error {
	logger := common.NewLogger(c.Bool("quiet"))
	startTime := time.Now()

	outputFormat := strings.ToLower(c.String("format"))
	if outputFormat != "text" && outputFormat != "json" && outputFormat != "yaml" {
		logger.Error("invalid output format", "format", outputFormat)
		os.Exit(2)
	}

	cfg, err := ResolveConfig(c)
	if err != nil {
		logger.Error("failed to resolve configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()

	outcome, err := Execute(ctx, cfg, logger)
	if err != nil {
		logger.Error("evaluation failed", "error", err)
		os.Exit(2)
	}
	elapsed := time.Since(startTime)

	switch outputFormat {
	case "text":
		PrintText(os.Stdout, outcome, elapsed)
		if cfg.Worst > 0 && len(outcome.Results) > 0 {
			fmt.Println("\nLowest full-table scores:")
			mapreduce.PrintWorstPairs(os.Stdout, outcome.Pairs(), models.ModeFull, cfg.Worst)
		}
		if cfg.OutputCSV != "" {
			fmt.Printf("\nSaved results to: %s\n", cfg.OutputCSV)
		}
	default:
		data, err := manifest.Encode(BuildFinalOutput(outcome, elapsed, cfg.Worst), outputFormat)
		if err != nil {
			logger.Error("failed to marshal final output", "error", err)
			os.Exit(2)
		}
		fmt.Print(string(data))
	}

	if code := ExitCode(outcome); code != 0 {
		os.Exit(code)
	}
	return nil
}

// Execute loads the dataset, scores it and writes every configured output.
// Output failures other than the csv are logged, not returned.
func Execute(ctx context.Context, cfg *models.EvalConfig, logger *slog.Logger) (*Outcome, error) {
	startTime := time.Now()
	loader := dataset.NewLoader()
	logInputSize(logger, loader.Storage, "predictions", cfg.PredPath)
	logInputSize(logger, loader.Storage, "ground_truth", cfg.GTPath)

	matched, err := loader.Load(cfg.PredPath, cfg.GTPath)
	if err != nil {
		return nil, err
	}
	logger.Info("Matched files", "matched", len(matched.Pairs), "pred_only", matched.PredOnly, "gt_only", matched.GTOnly)

	runner := &Runner{
		Logger:      logger,
		Evaluator:   &teds.Evaluator{Clamp: cfg.Clamp},
		WorkerCount: cfg.WorkerCount,
	}
	if cfg.CacheDir != "" {
		cache, err := caching.NewCache(cfg.CacheDir, cfg.CacheTTL)
		if err != nil {
			logger.Warn("Score cache disabled", "error", err)
		} else {
			runner.Cache = cache
		}
	}

	outcome, err := runner.Run(ctx, matched)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("interrupted after %d of %d pairs: %w", len(outcome.Results), len(matched.Pairs), err)
		}
		return nil, err
	}
	outcome.RunID = uuid.NewString()
	duration := time.Since(startTime)

	if cfg.OutputCSV != "" {
		if err := WriteCSV(cfg.OutputCSV, outcome.Summary); err != nil {
			return nil, err
		}
		logger.Info("Saved csv", "path", cfg.OutputCSV)
	}

	if cfg.ReportPath != "" {
		report := manifest.Build(manifest.RunInput{
			RunID:     outcome.RunID,
			PredPath:  cfg.PredPath,
			GTPath:    cfg.GTPath,
			Workers:   cfg.WorkerCount,
			Clamped:   cfg.Clamp,
			Duration:  duration,
			PredOnly:  outcome.PredOnly,
			GTOnly:    outcome.GTOnly,
			CacheHits: outcome.CacheHits,
			Worst:     cfg.Worst,
			Pairs:     outcome.Pairs(),
			Summary:   outcome.Summary,
		})
		if err := manifest.Save(report, cfg.ReportPath, loader.Storage); err != nil {
			logger.Warn("Failed to save report", "path", cfg.ReportPath, "error", err)
		} else {
			logger.Info("Saved report", "path", cfg.ReportPath)
		}
	}

	if !cfg.NoDB {
		if err := recordRun(cfg, outcome, duration); err != nil {
			logger.Warn("Failed to record run in database", "error", err)
		}
	}

	return outcome, nil
}

func recordRun(cfg *models.EvalConfig, o *Outcome, duration time.Duration) error {
	var database *db.DB
	var err error
	if cfg.DBPath != "" {
		database, err = db.OpenPath(cfg.DBPath)
	} else {
		database, err = db.Open()
	}
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	runID, err := database.InsertRun(db.Run{
		RunUUID:    o.RunID,
		PredPath:   cfg.PredPath,
		GTPath:     cfg.GTPath,
		Matched:    o.Summary.Count,
		PredOnly:   o.PredOnly,
		GTOnly:     o.GTOnly,
		Failed:     o.Summary.Failed,
		AvgTEDS:    o.Summary.MeanStructure,
		AvgTED:     o.Summary.MeanFull,
		Clamped:    cfg.Clamp,
		Workers:    cfg.WorkerCount,
		DurationMS: duration.Milliseconds(),
	})
	if err != nil {
		return err
	}
	return database.InsertPairScores(runID, ToPairScores(o.Results))
}

func logInputSize(logger *slog.Logger, s *storage.Storage, name, path string) {
	stats, err := s.GetFileStats(path)
	if err != nil {
		return
	}
	logger.Info("Input file", "name", name, "path", path, "size", humanize.Bytes(uint64(stats.SizeBytes)))
}
