package mapreduce

import "github.com/dtnitsch/teds-eval/models"

// Partial holds per-pair sums that Reduce folds into a Summary.
type Partial struct {
	Count        int
	Failed       int
	StructureSum float64
	FullSum      float64
}

// Summary is the aggregate over every scored pair.
type Summary struct {
	Count         int     `json:"count" yaml:"count"`
	Failed        int     `json:"failed" yaml:"failed"`
	MeanStructure float64 `json:"avg_teds" yaml:"avg_teds"`
	MeanFull      float64 `json:"avg_ted" yaml:"avg_ted"`
}

// Map turns one pair's outcome into a partial. Failed pairs count with a
// score of 0 in both modes.
func Map(p models.ScorePair) Partial {
	part := Partial{Count: 1}
	if p.Failed() {
		part.Failed = 1
		return part
	}
	part.StructureSum = p.StructureScore
	part.FullSum = p.FullScore
	return part
}

// Reduce aggregates partials into means. An empty input yields zero means.
func Reduce(intermediate []Partial) Summary {
	var total Partial
	for _, p := range intermediate {
		total.Count += p.Count
		total.Failed += p.Failed
		total.StructureSum += p.StructureSum
		total.FullSum += p.FullSum
	}

	s := Summary{Count: total.Count, Failed: total.Failed}
	if total.Count > 0 {
		s.MeanStructure = total.StructureSum / float64(total.Count)
		s.MeanFull = total.FullSum / float64(total.Count)
	}
	return s
}

// Summarize maps and reduces a full result set.
func Summarize(pairs []models.ScorePair) Summary {
	parts := make([]Partial, len(pairs))
	for i, p := range pairs {
		parts[i] = Map(p)
	}
	return Reduce(parts)
}
