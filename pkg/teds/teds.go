// Package teds scores a predicted table against its ground truth with
// Tree-Edit-Distance-based Similarity.
package teds

import (
	"github.com/dtnitsch/teds-eval/models"
	"github.com/dtnitsch/teds-eval/pkg/normalizer"
	"github.com/dtnitsch/teds-eval/pkg/parser"
	"github.com/dtnitsch/teds-eval/pkg/ted"
	"github.com/dtnitsch/teds-eval/pkg/tree"
)

const (
	SidePrediction  = "prediction"
	SideGroundTruth = "ground_truth"
)

// Score returns 1 - dist/maxDist where maxDist is the distance from gt to the
// empty tree. A nil tree (failed build) on either side scores 0 and an empty
// ground truth scores 1. The result is not clamped and can be negative.
func Score(pred, gt *tree.Tree) float64 {
	return ScoreWith(pred, gt, ted.UnitCost)
}

// ScoreWith is Score with a custom cost model.
func ScoreWith(pred, gt *tree.Tree, costs ted.CostModel) float64 {
	if pred == nil || gt == nil {
		return 0
	}
	maxDist := ted.Distance(gt.TEDNode(), nil, costs)
	if maxDist == 0 {
		return 1
	}
	dist := ted.Distance(pred.TEDNode(), gt.TEDNode(), costs)
	return 1 - dist/maxDist
}

// Clamp limits a score to [0, 1].
func Clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// Evaluator runs the full normalize, build and score pipeline for one pair.
type Evaluator struct {
	// Costs defaults to ted.UnitCost.
	Costs ted.CostModel
	// Clamp limits every returned score to [0, 1].
	Clamp bool
	// RawGroundTruth skips normalization of the ground truth side, for
	// markup that is already canonical.
	RawGroundTruth bool
}

// BuildTrees normalizes both sides and builds their trees. A failure is a
// *parser.BuildError naming the side; the prediction is tried first.
func (e *Evaluator) BuildTrees(predHTML, gtHTML string, mode models.Mode) (pred, gt *tree.Tree, err error) {
	pred, err = parser.Build(normalizer.Normalize(predHTML, normalizer.KindPrediction), mode)
	if err != nil {
		return nil, nil, &parser.BuildError{Side: SidePrediction, Err: err}
	}

	gtSrc := gtHTML
	if !e.RawGroundTruth {
		gtSrc = normalizer.Normalize(gtHTML, normalizer.KindGroundTruth)
	}
	gt, err = parser.Build(gtSrc, mode)
	if err != nil {
		return nil, nil, &parser.BuildError{Side: SideGroundTruth, Err: err}
	}
	return pred, gt, nil
}

// Evaluate scores predHTML against gtHTML in one mode. When either side
// fails to build the score is 0 and the error says which side failed.
func (e *Evaluator) Evaluate(predHTML, gtHTML string, mode models.Mode) (float64, error) {
	pred, gt, err := e.BuildTrees(predHTML, gtHTML, mode)
	if err != nil {
		return 0, err
	}

	costs := e.Costs
	if costs == nil {
		costs = ted.UnitCost
	}
	score := ScoreWith(pred, gt, costs)
	if e.Clamp {
		score = Clamp(score)
	}
	return score, nil
}

// EvaluatePair scores one pair in both modes. A build failure is recorded on
// the pair, with both scores left at 0, rather than returned.
func (e *Evaluator) EvaluatePair(key, predHTML, gtHTML string) models.ScorePair {
	sp := models.ScorePair{Key: key}

	structure, err := e.Evaluate(predHTML, gtHTML, models.ModeStructure)
	if err != nil {
		sp.ErrorType = parser.ErrorType(err)
		sp.Error = err.Error()
		return sp
	}
	full, err := e.Evaluate(predHTML, gtHTML, models.ModeFull)
	if err != nil {
		sp.ErrorType = parser.ErrorType(err)
		sp.Error = err.Error()
		return sp
	}

	sp.StructureScore = structure
	sp.FullScore = full
	return sp
}
