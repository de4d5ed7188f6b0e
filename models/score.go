package models

import "math"

// ScorePair is the recorded outcome for one matched table pair.
type ScorePair struct {
	Key            string  `json:"key" yaml:"key"`
	StructureScore float64 `json:"structure_score" yaml:"structure_score"`
	FullScore      float64 `json:"full_score" yaml:"full_score"`
	ErrorType      string  `json:"error_type,omitempty" yaml:"error_type,omitempty"`
	Error          string  `json:"error,omitempty" yaml:"error,omitempty"`
	Cached         bool    `json:"cached,omitempty" yaml:"cached,omitempty"`
}

// Failed reports whether either side of the pair could not be turned into a tree.
func (p ScorePair) Failed() bool {
	return p.ErrorType != ""
}

// Score returns the pair's score under the given mode.
func (p ScorePair) Score(m Mode) float64 {
	if m == ModeFull {
		return p.FullScore
	}
	return p.StructureScore
}

// Round4 rounds half away from zero to four decimals, the precision used in reports.
func Round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
