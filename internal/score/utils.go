package score

import (
	"fmt"
	"io"

	"github.com/dtnitsch/teds-eval/models"
	"github.com/dtnitsch/teds-eval/pkg/teds"
)

func printTrees(w io.Writer, e *teds.Evaluator, predHTML, gtHTML string) {
	pred, gt, err := e.BuildTrees(predHTML, gtHTML, models.ModeFull)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "\nPrediction tree:\n%s\n", pred)
	fmt.Fprintf(w, "\nGround truth tree:\n%s\n", gt)
}
