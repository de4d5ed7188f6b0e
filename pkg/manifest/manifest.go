package manifest

// RunReport is the per-run manifest written by `teds eval --report`.
// It carries the aggregate scores plus one entry per matched pair so a run
// can be inspected without re-scoring.
type RunReport struct {
	RunID       string        `json:"run_id" yaml:"run_id"`
	GeneratedAt string        `json:"generated_at" yaml:"generated_at"`
	PredPath    string        `json:"pred_path" yaml:"pred_path"`
	GTPath      string        `json:"gt_path" yaml:"gt_path"`
	Workers     int           `json:"workers" yaml:"workers"`
	Clamped     bool          `json:"clamped" yaml:"clamped"`
	DurationMS  int64         `json:"duration_ms" yaml:"duration_ms"`
	Matched     int           `json:"matched" yaml:"matched"`
	PredOnly    int           `json:"pred_only" yaml:"pred_only"`
	GTOnly      int           `json:"gt_only" yaml:"gt_only"`
	Failed      int           `json:"failed" yaml:"failed"`
	CacheHits   int           `json:"cache_hits,omitempty" yaml:"cache_hits,omitempty"`
	AvgTEDS     float64       `json:"avg_teds" yaml:"avg_teds"`
	AvgTED      float64       `json:"avg_ted" yaml:"avg_ted"`
	Worst       []PairSummary `json:"worst,omitempty" yaml:"worst,omitempty"`
	Results     []PairSummary `json:"results" yaml:"results"`
}

// PairSummary is one pair's line in the report.
type PairSummary struct {
	Key            string  `json:"key" yaml:"key"`
	Status         string  `json:"status" yaml:"status"` // "success" or "error"
	StructureScore float64 `json:"structure_score" yaml:"structure_score"`
	FullScore      float64 `json:"full_score" yaml:"full_score"`
	ErrorType      string  `json:"error_type,omitempty" yaml:"error_type,omitempty"`
	ErrorMessage   string  `json:"error_message,omitempty" yaml:"error_message,omitempty"`
}
