package orchestration

import (
	"fmt"
	"log/slog"

	"suspect/internal/groundtruth"
	"suspect/internal/metrics"
	"suspect/internal/models"
	"suspect/internal/normalize"
)

// Evaluation is the scored outcome of joining inference records against
// ground truth.
type Evaluation struct {
	Scored   []metrics.ScoredBug
	Projects []metrics.ProjectMetrics
	Global   metrics.GlobalMetrics

	// SkippedNoTruth counts records excluded because no ground truth
	// exists for them.
	SkippedNoTruth int
}

// Evaluate scores every record with ground truth available. Records without
// ground truth are counted and skipped; a predicted identifier that cannot
// be normalized drops that entry only.
func Evaluate(records []models.RankingRecord, truth groundtruth.Set, k int, policy normalize.ParamPolicy, universe metrics.UniverseFn, log *slog.Logger) (*Evaluation, error) {
	if log == nil {
		log = slog.Default()
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no ranking records to evaluate")
	}

	ev := &Evaluation{}
	for _, rec := range records {
		key := fmt.Sprintf("%s-%d", rec.Project, rec.BugID)

		truthMethods, ok := truth.Lookup(rec.Project, rec.BugID)
		if !ok {
			ev.SkippedNoTruth++
			log.Warn("no ground truth for bug, skipping", "bug", key)
			continue
		}
		truthSet, dropped := normalize.Set(truthMethods, policy)
		if dropped > 0 {
			log.Warn("dropped unnormalizable ground-truth methods", "bug", key, "dropped", dropped)
		}
		if len(truthSet) == 0 {
			ev.SkippedNoTruth++
			log.Warn("ground truth empty after normalization, skipping", "bug", key)
			continue
		}

		var predicted []string
		for _, method := range rec.RankingTop.Methods() {
			norm, err := normalize.WithPolicy(method, policy)
			if err != nil {
				log.Warn("dropping unnormalizable prediction", "bug", key, "method", method)
				continue
			}
			predicted = append(predicted, norm)
		}

		ev.Scored = append(ev.Scored, metrics.ScoredBug{
			Project:    rec.Project,
			BugID:      rec.BugID,
			BugMetrics: metrics.EvaluateBug(predicted, truthSet, k, universe),
		})
	}

	if len(ev.Scored) == 0 {
		return nil, fmt.Errorf("no evaluable bugs: %d records lacked ground truth", ev.SkippedNoTruth)
	}

	ev.Projects = metrics.AggregateProjects(ev.Scored)
	ev.Global = metrics.AggregateGlobal(ev.Projects)
	return ev, nil
}
