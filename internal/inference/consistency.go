package inference

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"suspect/internal/llm"
	"suspect/internal/models"
	"suspect/internal/parser"
)

const (
	// DefaultRuns is the number of independent samples aggregated per bug.
	DefaultRuns = 5

	// MaxRuns caps the sample count; more runs shift the frequency
	// distribution without improving the aggregate.
	MaxRuns = 7
)

// Sampler is the self-consistency strategy: N independent high-temperature
// samples of the same prompt, aggregated by cross-run agreement.
type Sampler struct {
	client      llm.Client
	parser      *parser.Parser
	runs        int
	maxInFlight int64
	opts        llm.GenerateOptions
	log         *slog.Logger
}

func NewSampler(client llm.Client, p *parser.Parser, runs int, maxInFlight int64, opts llm.GenerateOptions, log *slog.Logger) *Sampler {
	if runs <= 0 {
		runs = DefaultRuns
	}
	if runs > MaxRuns {
		runs = MaxRuns
	}
	if maxInFlight <= 0 {
		maxInFlight = 1
	}
	if log == nil {
		log = slog.Default()
	}
	return &Sampler{client: client, parser: p, runs: runs, maxInFlight: maxInFlight, opts: opts, log: log}
}

// Run samples the prompt s.runs times and aggregates the successful runs.
// A failed run is recorded and excluded; only when every run fails does the
// bug fail.
func (s *Sampler) Run(ctx context.Context, prompt string, topK int, sink RawSink) (*Result, error) {
	start := time.Now()

	rankings := make([]models.RankingList, s.runs)
	errs := make([]error, s.runs)

	sem := semaphore.NewWeighted(s.maxInFlight)
	var wg sync.WaitGroup
	for run := 1; run <= s.runs; run++ {
		if err := sem.Acquire(ctx, 1); err != nil {
			errs[run-1] = err
			break
		}
		wg.Add(1)
		go func(run int) {
			defer wg.Done()
			defer sem.Release(1)
			list, err := sampleOnce(ctx, s.client, s.parser, prompt, s.opts, func(raw string) {
				sinkRaw(sink, run, raw, s.log)
			})
			if err != nil {
				errs[run-1] = err
				return
			}
			rankings[run-1] = list
		}(run)
	}
	wg.Wait()

	res := &Result{LatencyMs: time.Since(start).Milliseconds()}
	var ok []models.RankingList
	for i := range rankings {
		if errs[i] != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("run %d: %v", i+1, errs[i]))
			continue
		}
		if rankings[i] != nil {
			ok = append(ok, rankings[i])
		}
	}
	res.Iterations = len(ok)

	if len(ok) == 0 {
		res.State = StateFailed
		return res, fmt.Errorf("all %d runs failed", s.runs)
	}

	res.Ranking = Aggregate(ok, topK)
	res.State = StateAggregated
	return res, nil
}

type candidate struct {
	method        string
	count         int
	rankSum       int
	firstSeen     int
	justification string
}

// Aggregate merges independent rankings into one list ordered by frequency
// (descending), then mean rank (ascending), then first appearance across
// the fixed run order. The score is the fraction of runs naming the method.
func Aggregate(runs []models.RankingList, topK int) models.RankingList {
	stats := make(map[string]*candidate)
	order := 0
	for _, run := range runs {
		// A method repeated within one run counts once, at its best rank.
		best := make(map[string]models.RankEntry, len(run))
		for _, entry := range run {
			prev, dup := best[entry.Method]
			if !dup || entry.Rank < prev.Rank {
				best[entry.Method] = entry
			}
		}
		for _, entry := range run {
			kept := best[entry.Method]
			if kept.Rank != entry.Rank {
				continue
			}
			delete(best, entry.Method)
			c, found := stats[entry.Method]
			if !found {
				c = &candidate{method: entry.Method, firstSeen: order}
				stats[entry.Method] = c
				order++
			}
			c.count++
			c.rankSum += entry.Rank
			if entry.Justification != "" &&
				(c.justification == "" || len(entry.Justification) < len(c.justification)) {
				c.justification = entry.Justification
			}
		}
	}

	merged := make([]*candidate, 0, len(stats))
	for _, c := range stats {
		merged = append(merged, c)
	}
	sort.Slice(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		if a.count != b.count {
			return a.count > b.count
		}
		meanA := float64(a.rankSum) / float64(a.count)
		meanB := float64(b.rankSum) / float64(b.count)
		if meanA != meanB {
			return meanA < meanB
		}
		return a.firstSeen < b.firstSeen
	})

	out := make(models.RankingList, 0, len(merged))
	for _, c := range merged {
		out = append(out, models.RankEntry{
			Method:        c.method,
			Score:         float64(c.count) / float64(len(runs)),
			Justification: c.justification,
		})
	}
	return out.Truncate(topK)
}
