package dataset

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/dtnitsch/teds-eval/models"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func keys(m Matched) []string {
	var out []string
	for _, p := range m.Pairs {
		out = append(out, p.Key)
	}
	return out
}

func TestMatch(t *testing.T) {
	preds := map[string]string{"a.png": "<table/>"}
	gts := map[string]string{"a.png": "<table/>", "b.png": "<table/>"}

	m := Match(preds, gts)
	if got := keys(m); !reflect.DeepEqual(got, []string{"a.png"}) {
		t.Errorf("matched keys = %v, want [a.png]", got)
	}
	if len(m.Pairs) != 1 || m.PredOnly != 0 || m.GTOnly != 1 {
		t.Errorf("Match() = %+v", m)
	}
}

func TestMatch_SortedAndCounted(t *testing.T) {
	preds := map[string]string{"c": "pc", "a": "pa", "x": "px", "b": "pb"}
	gts := map[string]string{"b": "gb", "a": "ga", "c": "gc", "y": "gy", "z": "gz"}

	m := Match(preds, gts)
	if got := keys(m); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("matched keys = %v", got)
	}
	if m.PredOnly != 1 || m.GTOnly != 2 {
		t.Errorf("PredOnly = %d, GTOnly = %d, want 1, 2", m.PredOnly, m.GTOnly)
	}
	if m.Pairs[1].Prediction != "pb" || m.Pairs[1].GroundTruth != "gb" {
		t.Errorf("pair b = %+v", m.Pairs[1])
	}
}

func TestGroundTruthMap_SkipsIncomplete(t *testing.T) {
	entries := []models.GroundTruth{
		{Filename: "a", TextHTMLTable: "first"},
		{Filename: "", TextHTMLTable: "orphan"},
		{Filename: "b", TextHTMLTable: ""},
		{Filename: "a", TextHTMLTable: "second"},
	}
	want := map[string]string{"a": "second"}
	if got := GroundTruthMap(entries); !reflect.DeepEqual(got, want) {
		t.Errorf("GroundTruthMap() = %v, want %v", got, want)
	}
}

func TestPredictionMap_LaterWins(t *testing.T) {
	entries := []models.Prediction{{Filename: "a", HTML: "1"}, {Filename: "a", HTML: "2"}}
	if got := PredictionMap(entries); got["a"] != "2" {
		t.Errorf("PredictionMap()[a] = %q, want 2", got["a"])
	}
}

func TestLoader_Load(t *testing.T) {
	dir := t.TempDir()
	pred := writeFile(t, dir, "pred.json", `[
		{"filename": "a.png", "html": "<table><tr><td>A</td></tr></table>"}
	]`)

	tests := []struct {
		name string
		gt   string
	}{
		{"bare array", `[
			{"filename": "a.png", "text_html_table": "<table><tr><td>A</td></tr></table>"},
			{"filename": "b.png", "text_html_table": "<table></table>"}
		]`},
		{"image wrapper", `{"image": [
			{"filename": "a.png", "text_html_table": "<table><tr><td>A</td></tr></table>"},
			{"filename": "b.png", "text_html_table": "<table></table>"}
		]}`},
	}

	l := NewLoader()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt := writeFile(t, t.TempDir(), "gt.json", tt.gt)
			m, err := l.Load(pred, gt)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if got := keys(m); !reflect.DeepEqual(got, []string{"a.png"}) {
				t.Errorf("matched keys = %v", got)
			}
			if m.GTOnly != 1 {
				t.Errorf("GTOnly = %d, want 1", m.GTOnly)
			}
		})
	}
}

func TestLoader_Errors(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.json", `[]`)
	bad := writeFile(t, dir, "bad.json", `{"rows": []}`)
	l := NewLoader()

	if _, err := l.Load(filepath.Join(dir, "missing.json"), good); err == nil {
		t.Error("Load() with missing predictions should fail")
	}
	if _, err := l.Load(good, bad); err == nil {
		t.Error("Load() with an object lacking image should fail")
	}
}
