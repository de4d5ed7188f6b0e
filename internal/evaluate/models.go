package evaluate

import (
	"github.com/dtnitsch/teds-eval/models"
	"github.com/dtnitsch/teds-eval/pkg/dataset"
	"github.com/dtnitsch/teds-eval/pkg/mapreduce"
)

const ErrorTypePanic = "panic"

type Job struct {
	Pair dataset.Pair
}

// Result holds the outcome of a processed job.
type Result struct {
	models.ScorePair
	ContentHash string
}

// Outcome is everything one batch produced, results sorted by key.
type Outcome struct {
	RunID     string
	Results   []Result
	Summary   mapreduce.Summary
	PredOnly  int
	GTOnly    int
	CacheHits int
}

// Pairs returns the bare score pairs of the outcome.
func (o *Outcome) Pairs() []models.ScorePair {
	pairs := make([]models.ScorePair, len(o.Results))
	for i, r := range o.Results {
		pairs[i] = r.ScorePair
	}
	return pairs
}

// FinalOutput is the structured output for --format json|yaml.
type FinalOutput struct {
	Status string             `json:"status" yaml:"status"`
	RunID  string             `json:"run_id" yaml:"run_id"`
	Stats  Stats              `json:"stats" yaml:"stats"`
	Worst  []models.ScorePair `json:"worst,omitempty" yaml:"worst,omitempty"`
}

// Stats provides summary statistics for the run.
type Stats struct {
	Matched          int     `json:"matched" yaml:"matched"`
	PredOnly         int     `json:"pred_only" yaml:"pred_only"`
	GTOnly           int     `json:"gt_only" yaml:"gt_only"`
	Failed           int     `json:"failed" yaml:"failed"`
	CacheHits        int     `json:"cache_hits" yaml:"cache_hits"`
	AvgTEDS          float64 `json:"avg_teds" yaml:"avg_teds"`
	AvgTED           float64 `json:"avg_ted" yaml:"avg_ted"`
	TotalTimeSeconds float64 `json:"total_time_seconds" yaml:"total_time_seconds"`
}
