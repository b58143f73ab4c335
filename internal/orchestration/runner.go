// Package orchestration drives an experiment: it walks the discovered bugs,
// runs the configured inference strategy on each and persists the results.
// Failures are contained at the bug boundary so one bad bug never takes
// down a batch.
package orchestration

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"suspect/internal/bugs"
	"suspect/internal/config"
	"suspect/internal/inference"
	"suspect/internal/llm"
	"suspect/internal/models"
	"suspect/internal/parser"
	"suspect/internal/prompt"
	"suspect/internal/store"
)

// Runner executes one experiment batch.
type Runner struct {
	cfg    *config.Experiment
	client llm.Client
	store  *store.Store
	log    *slog.Logger

	// Progress tracking
	progressMu sync.Mutex
	listeners  []ProgressListener
}

// ProgressListener receives progress updates
type ProgressListener func(event ProgressEvent)

// EventType represents the type of progress event
type EventType string

// EventType constants
const (
	EventBatchStart    EventType = "batch_start"
	EventBatchComplete EventType = "batch_complete"
	EventBugStart      EventType = "bug_start"
	EventBugComplete   EventType = "bug_complete"
	EventBugSkipped    EventType = "bug_skipped"
	EventBugFailed     EventType = "bug_failed"
)

// ProgressEvent represents a progress update
type ProgressEvent struct {
	EventType  EventType
	Bug        string
	BugNum     int
	TotalBugs  int
	State      inference.TerminalState
	Iterations int
	DurationMs int64
	Details    map[string]any
}

// Summary counts the batch outcome per bug disposition.
type Summary struct {
	Total     int
	Completed int
	Failed    int
	Skipped   int
}

// NewRunner creates a runner for the given experiment.
func NewRunner(cfg *config.Experiment, client llm.Client, st *store.Store, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{
		cfg:       cfg,
		client:    client,
		store:     st,
		log:       log,
		listeners: []ProgressListener{},
	}
}

// OnProgress registers a progress listener
func (r *Runner) OnProgress(listener ProgressListener) {
	r.progressMu.Lock()
	defer r.progressMu.Unlock()
	r.listeners = append(r.listeners, listener)
}

func (r *Runner) notifyProgress(event ProgressEvent) {
	r.progressMu.Lock()
	listeners := make([]ProgressListener, len(r.listeners))
	copy(listeners, r.listeners)
	r.progressMu.Unlock()

	for _, listener := range listeners {
		listener(event)
	}
}

// Run executes the batch. Bugs with a completion marker from a previous run
// are skipped; a cancelled context stops between bugs, leaving everything
// already persisted intact.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	if err := r.client.Available(ctx); err != nil {
		return nil, fmt.Errorf("model endpoint unavailable: %w", err)
	}

	refs, err := bugs.Scan(r.cfg.PromptsDir)
	if err != nil {
		return nil, err
	}
	refs = bugs.Filter(refs, r.cfg.Projects, r.cfg.BugIDs)
	if len(refs) == 0 {
		return nil, fmt.Errorf("no bugs matched under %s", r.cfg.PromptsDir)
	}

	p, err := parser.New(r.cfg.TopK)
	if err != nil {
		return nil, err
	}
	builder := prompt.NewBuilder(r.cfg.TopK)

	startTime := time.Now()
	r.notifyProgress(ProgressEvent{
		EventType: EventBatchStart,
		TotalBugs: len(refs),
	})

	summary := &Summary{Total: len(refs)}
	for i, ref := range refs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		key := fmt.Sprintf("%s-%d", ref.Project, ref.BugID)
		bugStore := r.store.Bug(ref.Project, ref.BugID)
		if bugStore.Completed() {
			summary.Skipped++
			r.notifyProgress(ProgressEvent{
				EventType: EventBugSkipped,
				Bug:       key,
				BugNum:    i + 1,
				TotalBugs: len(refs),
			})
			continue
		}

		r.notifyProgress(ProgressEvent{
			EventType: EventBugStart,
			Bug:       key,
			BugNum:    i + 1,
			TotalBugs: len(refs),
		})

		bugStart := time.Now()
		res, err := r.runBug(ctx, ref, p, builder, bugStore)
		if err != nil {
			summary.Failed++
			r.log.Error("bug failed", "bug", key, "error", err)
			if serr := bugStore.SaveFailure(err.Error()); serr != nil {
				r.log.Warn("saving failure marker", "bug", key, "error", serr)
			}
			r.notifyProgress(ProgressEvent{
				EventType:  EventBugFailed,
				Bug:        key,
				BugNum:     i + 1,
				TotalBugs:  len(refs),
				DurationMs: time.Since(bugStart).Milliseconds(),
				Details:    map[string]any{"error": err.Error()},
			})
			continue
		}

		summary.Completed++
		r.notifyProgress(ProgressEvent{
			EventType:  EventBugComplete,
			Bug:        key,
			BugNum:     i + 1,
			TotalBugs:  len(refs),
			State:      res.State,
			Iterations: res.Iterations,
			DurationMs: time.Since(bugStart).Milliseconds(),
		})
	}

	r.notifyProgress(ProgressEvent{
		EventType:  EventBatchComplete,
		TotalBugs:  len(refs),
		DurationMs: time.Since(startTime).Milliseconds(),
		Details: map[string]any{
			"completed": summary.Completed,
			"failed":    summary.Failed,
			"skipped":   summary.Skipped,
		},
	})
	return summary, nil
}

// runBug runs one bug end to end and persists its record. A panic inside a
// strategy is converted into an error so the batch continues.
func (r *Runner) runBug(ctx context.Context, ref bugs.Ref, p *parser.Parser, builder *prompt.Builder, bugStore *store.BugStore) (res *inference.Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			res, err = nil, fmt.Errorf("panic processing %s-%d: %v", ref.Project, ref.BugID, rec)
		}
	}()

	bug, err := bugs.Load(ref)
	if err != nil {
		return nil, err
	}

	var expectedBehavior []string
	if r.cfg.Template == 2 {
		expectedBehavior = r.extractExpectedBehavior(ctx, bug, builder, bugStore)
	}

	base, err := builder.Base(r.cfg.Template, bug.Evidence, expectedBehavior)
	if err != nil {
		return nil, err
	}

	switch r.cfg.Mode {
	case models.ModeZeroShot:
		opts, err := r.cfg.ZeroShot()
		if err != nil {
			return nil, err
		}
		loop := inference.NewLoop(r.client, p, opts.MaxIterations, llm.GenerateOptions{
			Temperature: opts.Temperature,
			MaxTokens:   r.cfg.MaxTokens,
		}, r.log)
		res, err = loop.Run(ctx, func(prev models.RankingList) string {
			return builder.WrapZeroShot(base, prev)
		}, bugStore.SaveIteration)
		if err != nil {
			return nil, err
		}
	case models.ModeSelfConsistency:
		opts, err := r.cfg.Consistency()
		if err != nil {
			return nil, err
		}
		sampler := inference.NewSampler(r.client, p, opts.Runs, opts.MaxInFlight, llm.GenerateOptions{
			Temperature: opts.Temperature,
			MaxTokens:   r.cfg.MaxTokens,
		}, r.log)
		res, err = sampler.Run(ctx, builder.WrapSelfConsistency(base), r.cfg.TopK, bugStore.SaveRun)
		if err != nil {
			return nil, err
		}
	default:
		return nil, &models.ConfigurationError{Msg: fmt.Sprintf("unknown mode %q", r.cfg.Mode)}
	}

	rec := &models.RankingRecord{
		Project:    ref.Project,
		BugID:      ref.BugID,
		RankingTop: res.Ranking.Truncate(r.cfg.TopK),
		Metadata: models.RunMetadata{
			Mode:           r.cfg.Mode,
			IterationsUsed: res.Iterations,
			Converged:      res.State == inference.StateConverged,
			TerminalState:  string(res.State),
			Errors:         res.Errors,
			TotalLatencyMs: res.LatencyMs,
		},
	}
	if err := bugStore.SaveRecord(rec); err != nil {
		return nil, err
	}
	return res, nil
}

// extractExpectedBehavior runs the preliminary template-2 model call that
// summarizes the failing test's expectations. Extraction failures degrade
// to an empty summary rather than failing the bug.
func (r *Runner) extractExpectedBehavior(ctx context.Context, bug *models.BugCase, builder *prompt.Builder, bugStore *store.BugStore) []string {
	raw, err := r.client.Generate(ctx, builder.ExpectedBehavior(bug.Evidence), llm.GenerateOptions{
		Temperature: 0.2,
		MaxTokens:   r.cfg.MaxTokens,
	})
	if err != nil {
		r.log.Warn("expected-behavior extraction failed", "bug", bug.Key(), "error", err)
		return nil
	}
	if err := bugStore.SaveExtraction(raw); err != nil {
		r.log.Warn("saving extraction", "bug", bug.Key(), "error", err)
	}

	obj, err := parser.ExtractObject(raw)
	if err != nil {
		r.log.Warn("expected-behavior response unparseable", "bug", bug.Key(), "error", err)
		return nil
	}
	items, ok := obj["expected_behavior"].([]any)
	if !ok {
		r.log.Warn("expected-behavior response missing list", "bug", bug.Key())
		return nil
	}
	var out []string
	for _, item := range items {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
