// Package inference runs the per-bug strategies: the iterative zero-shot
// convergence loop and the self-consistency sampler. Both produce a Result
// that the orchestrator persists as a RankingRecord.
package inference

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"

	"suspect/internal/llm"
	"suspect/internal/models"
	"suspect/internal/parser"
)

// TerminalState names how a strategy finished.
type TerminalState string

const (
	StateConverged       TerminalState = "converged"
	StateBudgetExhausted TerminalState = "budget_exhausted"
	StateAggregated      TerminalState = "aggregated"
	StateFailed          TerminalState = "failed"
)

const (
	// DefaultMaxIterations bounds the zero-shot loop.
	DefaultMaxIterations = 10

	// maxAttempts bounds generate+parse attempts for a single model call.
	// A response that fails schema validation is re-queried, not repaired.
	maxAttempts  = 3
	retryBackoff = time.Second
)

// Result is the outcome of one bug's inference.
type Result struct {
	Ranking    models.RankingList
	State      TerminalState
	Iterations int
	Errors     []string
	LatencyMs  int64
}

// PromptFunc renders the prompt for the next iteration given the previous
// ranking. prev is nil on the first iteration.
type PromptFunc func(prev models.RankingList) string

// RawSink persists one raw model response, keyed by call number. Sink
// failures are logged and do not abort inference.
type RawSink func(n int, raw string) error

// Loop is the iterative zero-shot strategy: re-query with the previous
// ranking embedded until two consecutive iterations agree on the method
// order, or the iteration budget runs out.
type Loop struct {
	client  llm.Client
	parser  *parser.Parser
	maxIter int
	opts    llm.GenerateOptions
	log     *slog.Logger
}

func NewLoop(client llm.Client, p *parser.Parser, maxIter int, opts llm.GenerateOptions, log *slog.Logger) *Loop {
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}
	if log == nil {
		log = slog.Default()
	}
	return &Loop{client: client, parser: p, maxIter: maxIter, opts: opts, log: log}
}

// Run executes the loop. An iteration that still fails after its retry
// bound ends the loop in StateFailed; running out of iterations without
// convergence ends in StateBudgetExhausted with the last valid ranking.
func (l *Loop) Run(ctx context.Context, prompt PromptFunc, sink RawSink) (*Result, error) {
	start := time.Now()
	res := &Result{}

	var prev models.RankingList
	for iter := 1; iter <= l.maxIter; iter++ {
		list, err := sampleOnce(ctx, l.client, l.parser, prompt(prev), l.opts, func(raw string) {
			sinkRaw(sink, iter, raw, l.log)
		})
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("iteration %d: %v", iter, err))
			res.Iterations = iter
			res.State = StateFailed
			res.LatencyMs = time.Since(start).Milliseconds()
			return res, err
		}

		l.log.Debug("iteration complete", "iteration", iter, "entries", len(list))
		if prev != nil && list.SameOrder(prev) {
			res.Ranking = list
			res.State = StateConverged
			res.Iterations = iter
			res.LatencyMs = time.Since(start).Milliseconds()
			return res, nil
		}
		prev = list
	}

	res.Ranking = prev
	res.State = StateBudgetExhausted
	res.Iterations = l.maxIter
	res.LatencyMs = time.Since(start).Milliseconds()
	return res, nil
}

// sampleOnce performs one logical model call: generate, persist the raw
// response, parse. Transport and parse failures are retried up to
// maxAttempts with a constant backoff.
func sampleOnce(ctx context.Context, client llm.Client, p *parser.Parser, prompt string, opts llm.GenerateOptions, save func(raw string)) (models.RankingList, error) {
	var list models.RankingList
	backoff := retry.WithMaxRetries(maxAttempts-1, retry.NewConstant(retryBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		raw, err := client.Generate(ctx, prompt, opts)
		if err != nil {
			return retry.RetryableError(err)
		}
		if save != nil {
			save(raw)
		}
		parsed, err := p.Parse(raw)
		if err != nil {
			return retry.RetryableError(err)
		}
		list = parsed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

func sinkRaw(sink RawSink, n int, raw string, log *slog.Logger) {
	if sink == nil {
		return
	}
	if err := sink(n, raw); err != nil {
		log.Warn("saving raw response failed", "call", n, "error", err)
	}
}
