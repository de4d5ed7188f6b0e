package mapreduce

import (
	"fmt"
	"io"
	"sort"

	"github.com/dtnitsch/teds-eval/models"
)

// WorstPairs returns up to n pairs with the lowest score under mode.
// Ties keep key order so output is stable across runs.
func WorstPairs(pairs []models.ScorePair, mode models.Mode, n int) []models.ScorePair {
	if n <= 0 {
		return nil
	}

	ss := make([]models.ScorePair, len(pairs))
	copy(ss, pairs)

	sort.SliceStable(ss, func(i, j int) bool {
		si, sj := ss[i].Score(mode), ss[j].Score(mode)
		if si != sj {
			return si < sj
		}
		return ss[i].Key < ss[j].Key
	})

	if len(ss) > n {
		ss = ss[:n]
	}
	return ss
}

// PrintWorstPairs prints the n lowest-scoring pairs in a numbered list.
func PrintWorstPairs(w io.Writer, pairs []models.ScorePair, mode models.Mode, n int) {
	for i, p := range WorstPairs(pairs, mode, n) {
		if p.Failed() {
			fmt.Fprintf(w, "%d. %s: %.4f (%s)\n", i+1, p.Key, p.Score(mode), p.ErrorType)
			continue
		}
		fmt.Fprintf(w, "%d. %s: %.4f\n", i+1, p.Key, p.Score(mode))
	}
}
