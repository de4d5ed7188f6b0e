package evaluate

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/dtnitsch/teds-eval/internal/common"
	"github.com/dtnitsch/teds-eval/pkg/caching"
	"github.com/dtnitsch/teds-eval/pkg/dataset"
	"github.com/dtnitsch/teds-eval/pkg/mapreduce"
	"github.com/dtnitsch/teds-eval/pkg/teds"
)

// Runner scores matched pairs over a pool of workers.
type Runner struct {
	Logger      *slog.Logger
	Evaluator   *teds.Evaluator
	WorkerCount int
	// Cache is optional.
	Cache *caching.Cache
}

// Run scores every pair and aggregates the results. Pairs that fail to
// build, or panic while scoring, are recorded with a score of 0 and the
// batch carries on. Cancelling ctx stops new pairs from being scored; if any
// pair was skipped the partial outcome is returned together with ctx.Err().
func (r *Runner) Run(ctx context.Context, m dataset.Matched) (*Outcome, error) {
	workers := r.WorkerCount
	if workers <= 0 {
		workers = 1
	}

	r.Logger.Info("Starting scoring phase", "matched", len(m.Pairs), "pred_only", m.PredOnly, "gt_only", m.GTOnly, "workers", workers)
	var wg sync.WaitGroup
	jobs := make(chan Job, len(m.Pairs))
	results := make(chan Result, len(m.Pairs))

	hits := &hitCounter{}
	for w := 1; w <= workers; w++ {
		wg.Add(1)
		go r.worker(ctx, w, &wg, jobs, results, hits)
	}

	for _, p := range m.Pairs {
		jobs <- Job{Pair: p}
	}
	close(jobs)

	wg.Wait()
	close(results)
	r.Logger.Info("All scoring workers finished")

	out := &Outcome{
		Results:   make([]Result, 0, len(m.Pairs)),
		PredOnly:  m.PredOnly,
		GTOnly:    m.GTOnly,
		CacheHits: hits.n,
	}
	for res := range results {
		out.Results = append(out.Results, res)
	}
	sort.Slice(out.Results, func(i, j int) bool {
		return out.Results[i].Key < out.Results[j].Key
	})

	r.Logger.Info("Starting MapReduce phase")
	out.Summary = mapreduce.Summarize(out.Pairs())

	// A cancel that lands after the last pair leaves nothing unscored.
	if len(out.Results) < len(m.Pairs) {
		return out, ctx.Err()
	}
	return out, nil
}

type hitCounter struct {
	mu sync.Mutex
	n  int
}

func (h *hitCounter) inc() {
	h.mu.Lock()
	h.n++
	h.mu.Unlock()
}

func (r *Runner) worker(ctx context.Context, id int, wg *sync.WaitGroup, jobs <-chan Job, results chan<- Result, hits *hitCounter) {
	defer wg.Done()
	for job := range jobs {
		if ctx.Err() != nil {
			// Drain without scoring so the dispatcher never blocks.
			continue
		}
		res, cached := r.process(id, job.Pair)
		if cached {
			hits.inc()
		}
		results <- res
	}
}

func (r *Runner) process(id int, p dataset.Pair) (res Result, cached bool) {
	res.Key = p.Key
	res.ContentHash = common.PairHash(p.Prediction, p.GroundTruth)

	defer func() {
		if rec := recover(); rec != nil {
			r.Logger.Error("Panic while scoring pair", "worker_id", id, "key", p.Key, "error", rec)
			res.StructureScore, res.FullScore = 0, 0
			res.ErrorType = ErrorTypePanic
			res.Error = fmt.Sprint(rec)
			cached = false
		}
	}()

	var cacheKey string
	if r.Cache != nil {
		cacheKey = caching.ScoreKey(p.Prediction, p.GroundTruth, r.variant())
		if s, ok := r.Cache.GetScores(cacheKey); ok {
			res.StructureScore = s.Structure
			res.FullScore = s.Full
			res.ErrorType = s.ErrorType
			res.Error = s.Error
			res.Cached = true
			return res, true
		}
	}

	res.ScorePair = r.Evaluator.EvaluatePair(p.Key, p.Prediction, p.GroundTruth)
	if res.Failed() {
		r.Logger.Warn("Pair failed to build", "worker_id", id, "key", p.Key, "error_type", res.ErrorType, "error", res.Error)
	}

	if r.Cache != nil {
		err := r.Cache.SetScores(cacheKey, caching.Scores{
			Structure: res.StructureScore,
			Full:      res.FullScore,
			ErrorType: res.ErrorType,
			Error:     res.Error,
		})
		if err != nil {
			r.Logger.Warn("Failed to cache scores", "key", p.Key, "error", err)
		}
	}
	return res, false
}

// variant folds the evaluator options that change scores into the cache key.
func (r *Runner) variant() string {
	return fmt.Sprintf("clamp=%t raw_gt=%t", r.Evaluator.Clamp, r.Evaluator.RawGroundTruth)
}
