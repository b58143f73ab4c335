package orchestration

import (
	"testing"

	"github.com/stretchr/testify/require"

	"suspect/internal/groundtruth"
	"suspect/internal/metrics"
	"suspect/internal/models"
	"suspect/internal/normalize"
)

func record(project string, bugID int, methods ...string) models.RankingRecord {
	rec := models.RankingRecord{Project: project, BugID: bugID}
	for i, m := range methods {
		rec.RankingTop = append(rec.RankingTop, models.RankEntry{Rank: i + 1, Method: m})
	}
	return rec
}

func TestEvaluate(t *testing.T) {
	truth := groundtruth.Set{
		"black": {5: {"black.fmt.run"}},
		"tqdm":  {1: {"tqdm.core.update", "tqdm.core.close"}},
	}
	records := []models.RankingRecord{
		record("black", 5, "black.fmt.run", "black.fmt.other"),
		record("tqdm", 1, "tqdm.core.close"),
	}

	ev, err := Evaluate(records, truth, 5, normalize.ParamsDistinct, metrics.TopKUniverse, nil)
	require.NoError(t, err)
	require.Len(t, ev.Scored, 2)
	require.Zero(t, ev.SkippedNoTruth)
	require.Len(t, ev.Projects, 2)
	require.Equal(t, 2, ev.Global.TotalBugs)

	// black-5 hits at rank 1; tqdm-1 hits at rank 1 too.
	require.Equal(t, 2, ev.Global.TotalTop1)
}

func TestEvaluateNormalizesBeforeComparing(t *testing.T) {
	// The model uses separator variants; ground truth uses dotted form.
	truth := groundtruth.Set{"black": {5: {"black.fmt.run"}}}
	records := []models.RankingRecord{record("black", 5, "black.fmt$run")}

	ev, err := Evaluate(records, truth, 5, normalize.ParamsDistinct, metrics.TopKUniverse, nil)
	require.NoError(t, err)
	require.Equal(t, 1, ev.Global.TotalTop1)
}

func TestEvaluateSkipsMissingGroundTruth(t *testing.T) {
	truth := groundtruth.Set{"black": {5: {"black.fmt.run"}}}
	records := []models.RankingRecord{
		record("black", 5, "black.fmt.run"),
		record("black", 99, "black.fmt.run"),
	}

	ev, err := Evaluate(records, truth, 5, normalize.ParamsDistinct, metrics.TopKUniverse, nil)
	require.NoError(t, err)
	require.Len(t, ev.Scored, 1)
	require.Equal(t, 1, ev.SkippedNoTruth)
}

func TestEvaluateNothingEvaluable(t *testing.T) {
	records := []models.RankingRecord{record("black", 99, "m.x")}
	_, err := Evaluate(records, groundtruth.Set{}, 5, normalize.ParamsDistinct, metrics.TopKUniverse, nil)
	require.Error(t, err)

	_, err = Evaluate(nil, groundtruth.Set{}, 5, normalize.ParamsDistinct, metrics.TopKUniverse, nil)
	require.Error(t, err)
}

func TestEvaluateMergedParamPolicy(t *testing.T) {
	truth := groundtruth.Set{"black": {5: {"black.fmt.run(int)"}}}
	records := []models.RankingRecord{record("black", 5, "black.fmt.run(string)")}

	// Distinct params: no match.
	ev, err := Evaluate(records, truth, 5, normalize.ParamsDistinct, metrics.TopKUniverse, nil)
	require.NoError(t, err)
	require.Equal(t, 0, ev.Global.TotalTop1)

	// Merged params: overloads collapse and match.
	ev, err = Evaluate(records, truth, 5, normalize.ParamsMerged, metrics.TopKUniverse, nil)
	require.NoError(t, err)
	require.Equal(t, 1, ev.Global.TotalTop1)
}
