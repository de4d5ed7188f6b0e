package manifest

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dtnitsch/teds-eval/models"
	"github.com/dtnitsch/teds-eval/pkg/mapreduce"
	"github.com/dtnitsch/teds-eval/pkg/storage"
)

// RunInput is everything the driver knows about a finished run.
// This is passed in to avoid a dependency on the driver package.
type RunInput struct {
	RunID     string
	PredPath  string
	GTPath    string
	Workers   int
	Clamped   bool
	Duration  time.Duration
	PredOnly  int
	GTOnly    int
	CacheHits int
	Worst     int
	Pairs     []models.ScorePair
	Summary   mapreduce.Summary
}

// Build assembles the report. Scores are rounded to four decimals.
func Build(in RunInput) RunReport {
	report := RunReport{
		RunID:       in.RunID,
		GeneratedAt: time.Now().Format(time.RFC3339),
		PredPath:    in.PredPath,
		GTPath:      in.GTPath,
		Workers:     in.Workers,
		Clamped:     in.Clamped,
		DurationMS:  in.Duration.Milliseconds(),
		Matched:     in.Summary.Count,
		PredOnly:    in.PredOnly,
		GTOnly:      in.GTOnly,
		Failed:      in.Summary.Failed,
		CacheHits:   in.CacheHits,
		AvgTEDS:     models.Round4(in.Summary.MeanStructure),
		AvgTED:      models.Round4(in.Summary.MeanFull),
		Results:     make([]PairSummary, 0, len(in.Pairs)),
	}

	for _, p := range in.Pairs {
		report.Results = append(report.Results, summarize(p))
	}
	for _, p := range mapreduce.WorstPairs(in.Pairs, models.ModeFull, in.Worst) {
		report.Worst = append(report.Worst, summarize(p))
	}
	return report
}

func summarize(p models.ScorePair) PairSummary {
	s := PairSummary{
		Key:            p.Key,
		Status:         "success",
		StructureScore: models.Round4(p.StructureScore),
		FullScore:      models.Round4(p.FullScore),
	}
	if p.Failed() {
		s.Status = "error"
		s.ErrorType = p.ErrorType
		s.ErrorMessage = p.Error
	}
	return s
}

// FormatForPath picks "yaml" for .yaml/.yml paths and "json" otherwise.
func FormatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

// Encode serializes v as indented JSON or YAML.
func Encode(v any, format string) ([]byte, error) {
	switch format {
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("error marshalling json: %w", err)
		}
		return append(data, '\n'), nil
	case "yaml":
		data, err := yaml.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("error marshalling yaml: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unknown format %q (want json or yaml)", format)
	}
}

// Save writes the report to path in the format its extension implies.
func Save(report RunReport, path string, s *storage.Storage) error {
	data, err := Encode(report, FormatForPath(path))
	if err != nil {
		return err
	}
	if err := s.SaveFile(path, data); err != nil {
		return fmt.Errorf("error saving report: %w", err)
	}
	return nil
}
