package orchestration

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"suspect/internal/config"
	"suspect/internal/llm"
	"suspect/internal/models"
	"suspect/internal/store"
)

type fakeClient struct {
	mu        sync.Mutex
	responses []string
	prompts   []string
	availErr  error
}

func (c *fakeClient) Generate(ctx context.Context, prompt string, opts llm.GenerateOptions) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompts = append(c.prompts, prompt)
	if len(c.responses) == 0 {
		return "", errors.New("no scripted response left")
	}
	next := c.responses[0]
	c.responses = c.responses[1:]
	if next == "ERROR" {
		return "", &models.TransportError{Op: "generate", Err: errors.New("connection refused")}
	}
	return next, nil
}

func (c *fakeClient) Available(ctx context.Context) error { return c.availErr }

func rankingJSON(methods ...string) string {
	var entries []string
	for i, m := range methods {
		entries = append(entries, fmt.Sprintf(`{"rank":%d,"method":%q,"score":0.9}`, i+1, m))
	}
	return fmt.Sprintf(`{"top_k":[%s]}`, strings.Join(entries, ","))
}

func testExperiment(t *testing.T) *config.Experiment {
	t.Helper()
	cfg := config.Default()
	cfg.Model = "test-model"
	cfg.PromptsDir = t.TempDir()
	cfg.OutputsDir = t.TempDir()
	require.NoError(t, writeBasePrompt(cfg.PromptsDir, "black", 5,
		"### BUG_REPORT:\ncrash\n### FAILING_TEST:\ntest_x\n### FAILURE_TRACE:\nboom\n### CODE_SNIPPETS:\ndef f(): pass\n"))
	return cfg
}

func writeBasePrompt(promptsDir, project string, bugID int, content string) error {
	dir := filepath.Join(promptsDir, project)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	name := fmt.Sprintf("base_prompt_%s-%d.txt", project, bugID)
	return os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644)
}

func newTestRunner(cfg *config.Experiment, client llm.Client) (*Runner, *store.Store) {
	st := store.New(cfg.OutputsDir, cfg.Model, cfg.TemplateName(), cfg.Mode)
	return NewRunner(cfg, client, st, nil), st
}

func TestRunZeroShotConverges(t *testing.T) {
	cfg := testExperiment(t)
	client := &fakeClient{responses: []string{
		rankingJSON("a.b", "c.d"),
		rankingJSON("a.b", "c.d"),
	}}
	runner, st := newTestRunner(cfg, client)

	var events []EventType
	runner.OnProgress(func(e ProgressEvent) { events = append(events, e.EventType) })

	summary, err := runner.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, &Summary{Total: 1, Completed: 1}, summary)
	require.Equal(t, []EventType{EventBatchStart, EventBugStart, EventBugComplete, EventBatchComplete}, events)

	require.True(t, st.Bug("black", 5).Completed())
	records, err := st.ScanRecords()
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "black", records[0].Project)
	require.Equal(t, []string{"a.b", "c.d"}, records[0].RankingTop.Methods())
	require.True(t, records[0].Metadata.Converged)
	require.Equal(t, "converged", records[0].Metadata.TerminalState)
	require.Equal(t, 2, records[0].Metadata.IterationsUsed)
}

func TestRunSelfConsistency(t *testing.T) {
	cfg := testExperiment(t)
	cfg.Mode = models.ModeSelfConsistency
	cfg.Strategy = map[string]any{"runs": 2}
	client := &fakeClient{responses: []string{
		rankingJSON("a.b"),
		rankingJSON("a.b"),
	}}
	runner, st := newTestRunner(cfg, client)

	summary, err := runner.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, summary.Completed)

	records, err := st.ScanRecords()
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "aggregated", records[0].Metadata.TerminalState)
	require.InDelta(t, 1.0, records[0].RankingTop[0].Score, 1e-9)
}

func TestRunSkipsCompletedBugs(t *testing.T) {
	cfg := testExperiment(t)
	client := &fakeClient{responses: []string{
		rankingJSON("a.b"),
		rankingJSON("a.b"),
	}}
	runner, _ := newTestRunner(cfg, client)
	_, err := runner.Run(context.Background())
	require.NoError(t, err)

	// Second run with a client that has nothing to say: the completed bug
	// must be skipped without a single model call.
	quiet := &fakeClient{}
	runner2, _ := newTestRunner(cfg, quiet)
	summary, err := runner2.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, &Summary{Total: 1, Skipped: 1}, summary)
	require.Empty(t, quiet.prompts)
}

func TestRunRecordsFailureAndContinues(t *testing.T) {
	cfg := testExperiment(t)
	require.NoError(t, writeBasePrompt(cfg.PromptsDir, "tqdm", 1, "### BUG_REPORT:\nother\n"))

	// Bug black-5 burns through its attempts; tqdm-1 then converges.
	client := &fakeClient{responses: []string{
		"ERROR", "ERROR", "ERROR",
		rankingJSON("x.y"),
		rankingJSON("x.y"),
	}}
	runner, st := newTestRunner(cfg, client)

	summary, err := runner.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, &Summary{Total: 2, Completed: 1, Failed: 1}, summary)

	require.False(t, st.Bug("black", 5).Completed())
	_, statErr := os.Stat(filepath.Join(st.Bug("black", 5).Dir(), "failed.txt"))
	require.NoError(t, statErr)
	require.True(t, st.Bug("tqdm", 1).Completed())
}

func TestRunUnavailableEndpoint(t *testing.T) {
	cfg := testExperiment(t)
	client := &fakeClient{availErr: errors.New("connection refused")}
	runner, _ := newTestRunner(cfg, client)

	_, err := runner.Run(context.Background())
	require.ErrorContains(t, err, "unavailable")
}

func TestRunNoBugsMatched(t *testing.T) {
	cfg := testExperiment(t)
	cfg.Projects = []string{"pandas"}
	runner, _ := newTestRunner(cfg, &fakeClient{})

	_, err := runner.Run(context.Background())
	require.ErrorContains(t, err, "no bugs matched")
}

func TestRunCancelledContext(t *testing.T) {
	cfg := testExperiment(t)
	runner, _ := newTestRunner(cfg, &fakeClient{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	summary, err := runner.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 0, summary.Completed)
}

func TestRunTemplateTwoExtractsExpectedBehavior(t *testing.T) {
	cfg := testExperiment(t)
	cfg.Template = 2
	client := &fakeClient{responses: []string{
		`{"expected_behavior": ["returns the sum", "raises on nil"]}`,
		rankingJSON("a.b"),
		rankingJSON("a.b"),
	}}
	runner, st := newTestRunner(cfg, client)

	summary, err := runner.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, summary.Completed)

	// The extraction raw response is persisted alongside the iterations.
	_, statErr := os.Stat(filepath.Join(st.Bug("black", 5).Dir(), "expected_behavior_raw.txt"))
	require.NoError(t, statErr)

	// The ranking prompts embed the extracted bullets.
	require.GreaterOrEqual(t, len(client.prompts), 2)
	require.Contains(t, client.prompts[1], "- returns the sum")
}

func TestRunTemplateTwoToleratesBadExtraction(t *testing.T) {
	cfg := testExperiment(t)
	cfg.Template = 2
	client := &fakeClient{responses: []string{
		"not json",
		rankingJSON("a.b"),
		rankingJSON("a.b"),
	}}
	runner, _ := newTestRunner(cfg, client)

	summary, err := runner.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, summary.Completed)
}
