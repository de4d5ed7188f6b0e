package normalize

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/teds-eval/internal/common"
	"github.com/dtnitsch/teds-eval/models"
	"github.com/dtnitsch/teds-eval/pkg/normalizer"
	"github.com/dtnitsch/teds-eval/pkg/parser"
	"github.com/dtnitsch/teds-eval/pkg/storage"
)

// NormalizeAction prints the canonical form of one HTML file, or of stdin
// when --file is "-".
func NormalizeAction(c *cli.Context) error {
	logger := common.NewLogger(c.Bool("quiet"))

	src, err := readInput(c.String("file"))
	if err != nil {
		logger.Error("failed to read input", "file", c.String("file"), "error", err)
		os.Exit(2)
	}

	kind := normalizer.KindPrediction
	if c.Bool("ground-truth") {
		kind = normalizer.KindGroundTruth
	}

	mode, err := models.ParseMode(c.String("mode"))
	if err != nil {
		logger.Error("invalid mode", "error", err)
		os.Exit(2)
	}

	if err := Run(os.Stdout, string(src), kind, c.Bool("tree"), mode); err != nil {
		logger.Warn("no tree could be built", "error_type", parser.ErrorType(err), "error", err)
		os.Exit(1)
	}
	return nil
}

// Run writes the canonical markup and, with showTree, the tree built from it.
func Run(w io.Writer, src string, kind normalizer.Kind, showTree bool, mode models.Mode) error {
	canonical := normalizer.Normalize(src, kind)
	fmt.Fprintln(w, canonical)
	if !showTree {
		return nil
	}

	t, err := parser.Build(canonical, mode)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\n%s tree (%d nodes):\n%s\n", mode, t.Size(), t)
	return nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	s := &storage.Storage{}
	return s.ReadFile(path)
}
