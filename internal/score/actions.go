package score

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/teds-eval/internal/common"
	"github.com/dtnitsch/teds-eval/models"
	"github.com/dtnitsch/teds-eval/pkg/manifest"
	"github.com/dtnitsch/teds-eval/pkg/storage"
	"github.com/dtnitsch/teds-eval/pkg/teds"
)

// PairOutput is the structured output of `teds score`.
type PairOutput struct {
	Prediction     string  `json:"prediction" yaml:"prediction"`
	GroundTruth    string  `json:"ground_truth" yaml:"ground_truth"`
	StructureScore float64 `json:"structure_score" yaml:"structure_score"`
	FullScore      float64 `json:"full_score" yaml:"full_score"`
	PredNodes      int     `json:"pred_nodes" yaml:"pred_nodes"`
	GTNodes        int     `json:"gt_nodes" yaml:"gt_nodes"`
	ErrorType      string  `json:"error_type,omitempty" yaml:"error_type,omitempty"`
	Error          string  `json:"error,omitempty" yaml:"error,omitempty"`
}

func ScoreAction(c *cli.Context) error {
	logger := common.NewLogger(c.Bool("quiet"))
	s := &storage.Storage{}

	predHTML, err := s.ReadFile(c.String("pred-file"))
	if err != nil {
		logger.Error("failed to read prediction", "path", c.String("pred-file"), "error", err)
		os.Exit(2)
	}
	gtHTML, err := s.ReadFile(c.String("gt-file"))
	if err != nil {
		logger.Error("failed to read ground truth", "path", c.String("gt-file"), "error", err)
		os.Exit(2)
	}

	e := &teds.Evaluator{Clamp: c.Bool("clamp"), RawGroundTruth: c.Bool("raw-gt")}
	out := Score(e, string(predHTML), string(gtHTML))
	out.Prediction = c.String("pred-file")
	out.GroundTruth = c.String("gt-file")

	format := strings.ToLower(c.String("format"))
	if format == "text" {
		PrintText(os.Stdout, out)
		if c.Bool("tree") {
			printTrees(os.Stdout, e, string(predHTML), string(gtHTML))
		}
	} else {
		data, err := manifest.Encode(out, format)
		if err != nil {
			logger.Error("failed to marshal output", "error", err)
			os.Exit(2)
		}
		fmt.Print(string(data))
	}

	if out.ErrorType != "" {
		logger.Warn("Pair failed to build", "error_type", out.ErrorType, "error", out.Error)
		os.Exit(1)
	}
	return nil
}

// Score evaluates one pair in both modes and counts the nodes of each
// structure tree.
func Score(e *teds.Evaluator, predHTML, gtHTML string) PairOutput {
	sp := e.EvaluatePair("", predHTML, gtHTML)
	out := PairOutput{
		StructureScore: models.Round4(sp.StructureScore),
		FullScore:      models.Round4(sp.FullScore),
		ErrorType:      sp.ErrorType,
		Error:          sp.Error,
	}
	if pred, gt, err := e.BuildTrees(predHTML, gtHTML, models.ModeStructure); err == nil {
		out.PredNodes = pred.Size()
		out.GTNodes = gt.Size()
	}
	return out
}

// PrintText writes the scores in the same layout as `teds eval`.
func PrintText(w io.Writer, out PairOutput) {
	if out.ErrorType != "" {
		fmt.Fprintf(w, "Build failed: [%s] %s (scored as 0)\n", out.ErrorType, out.Error)
	} else {
		fmt.Fprintf(w, "Nodes: prediction %d, ground truth %d\n", out.PredNodes, out.GTNodes)
	}
	fmt.Fprintf(w, "TEDS (structure only): %.4f\n", out.StructureScore)
	fmt.Fprintf(w, "TED  (full table):     %.4f\n", out.FullScore)
}
