// Package dataset loads prediction and ground truth files and pairs their
// entries by filename.
package dataset

import (
	"fmt"
	"sort"

	"github.com/dtnitsch/teds-eval/models"
	"github.com/dtnitsch/teds-eval/pkg/storage"
)

// Pair is one matched prediction and ground truth.
type Pair struct {
	Key         string
	Prediction  string
	GroundTruth string
}

// Matched is the result of intersecting the two keyed sets.
type Matched struct {
	Pairs    []Pair
	PredOnly int
	GTOnly   int
}

// Loader reads dataset files through a Storage.
type Loader struct {
	Storage *storage.Storage
}

func NewLoader() *Loader {
	return &Loader{Storage: &storage.Storage{}}
}

// LoadPredictions reads a predictions file into filename -> html.
func (l *Loader) LoadPredictions(path string) (map[string]string, error) {
	var entries []models.Prediction
	if err := l.Storage.ReadJSON(path, &entries); err != nil {
		return nil, fmt.Errorf("failed to load predictions: %w", err)
	}
	return PredictionMap(entries), nil
}

// LoadGroundTruth reads a ground truth file into filename -> html. Both the
// bare array and the {"image": [...]} form are accepted.
func (l *Loader) LoadGroundTruth(path string) (map[string]string, error) {
	var file models.GroundTruthFile
	if err := l.Storage.ReadJSON(path, &file); err != nil {
		return nil, fmt.Errorf("failed to load ground truth: %w", err)
	}
	return GroundTruthMap(file.Entries), nil
}

// PredictionMap keys predictions by filename. Later duplicates win.
func PredictionMap(entries []models.Prediction) map[string]string {
	m := make(map[string]string, len(entries))
	for _, e := range entries {
		m[e.Filename] = e.HTML
	}
	return m
}

// GroundTruthMap keys ground truth by filename, skipping entries without a
// filename or table. Later duplicates win.
func GroundTruthMap(entries []models.GroundTruth) map[string]string {
	m := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.Filename == "" || e.TextHTMLTable == "" {
			continue
		}
		m[e.Filename] = e.TextHTMLTable
	}
	return m
}

// Match pairs entries present on both sides, sorted by key.
func Match(preds, gts map[string]string) Matched {
	var out Matched
	for k, p := range preds {
		gt, ok := gts[k]
		if !ok {
			out.PredOnly++
			continue
		}
		out.Pairs = append(out.Pairs, Pair{Key: k, Prediction: p, GroundTruth: gt})
	}
	out.GTOnly = len(gts) - len(out.Pairs)

	sort.Slice(out.Pairs, func(i, j int) bool {
		return out.Pairs[i].Key < out.Pairs[j].Key
	})
	return out
}

// Load reads both files and matches them.
func (l *Loader) Load(predPath, gtPath string) (Matched, error) {
	preds, err := l.LoadPredictions(predPath)
	if err != nil {
		return Matched{}, err
	}
	gts, err := l.LoadGroundTruth(gtPath)
	if err != nil {
		return Matched{}, err
	}
	return Match(preds, gts), nil
}
