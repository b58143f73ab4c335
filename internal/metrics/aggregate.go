package metrics

import "sort"

// ScoredBug pairs one bug's identity with its metrics.
type ScoredBug struct {
	Project string
	BugID   int
	BugMetrics
}

// ProjectMetrics aggregates the bugs of a single project: hit counters are
// summed, the remaining metrics are arithmetic means over analyzed bugs.
type ProjectMetrics struct {
	Project       string
	BugsAnalyzed  int
	Top1Hits      int
	Top3Hits      int
	Top5Hits      int
	MeanPrecision float64
	MeanRecall    float64
	MeanF1        float64
	MeanAccuracy  float64
}

// GlobalMetrics aggregates across projects. The Weighted* fields are
// bug-count-weighted means over all bugs (what reports print as "Average"),
// the Unweighted* fields are plain means of the per-project means.
type GlobalMetrics struct {
	TotalBugs int
	TotalTop1 int
	TotalTop3 int
	TotalTop5 int

	WeightedPrecision float64
	WeightedRecall    float64
	WeightedF1        float64
	WeightedAccuracy  float64

	UnweightedPrecision float64
	UnweightedRecall    float64
	UnweightedF1        float64
	UnweightedAccuracy  float64
}

// AggregateProjects groups per-bug metrics by project, sorted by project
// name for deterministic output.
func AggregateProjects(bugs []ScoredBug) []ProjectMetrics {
	byProject := make(map[string][]ScoredBug)
	for _, b := range bugs {
		byProject[b.Project] = append(byProject[b.Project], b)
	}

	names := make([]string, 0, len(byProject))
	for name := range byProject {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]ProjectMetrics, 0, len(names))
	for _, name := range names {
		group := byProject[name]
		pm := ProjectMetrics{Project: name, BugsAnalyzed: len(group)}

		precision := make([]float64, len(group))
		recall := make([]float64, len(group))
		f1 := make([]float64, len(group))
		accuracy := make([]float64, len(group))
		for i, b := range group {
			if b.Top1 {
				pm.Top1Hits++
			}
			if b.Top3 {
				pm.Top3Hits++
			}
			if b.Top5 {
				pm.Top5Hits++
			}
			precision[i] = b.Precision
			recall[i] = b.Recall
			f1[i] = b.F1
			accuracy[i] = b.Accuracy
		}
		pm.MeanPrecision = Mean(precision)
		pm.MeanRecall = Mean(recall)
		pm.MeanF1 = Mean(f1)
		pm.MeanAccuracy = Mean(accuracy)
		out = append(out, pm)
	}
	return out
}

// AggregateGlobal folds per-project metrics into global totals, computing
// both the bug-count-weighted and the unweighted variant.
func AggregateGlobal(projects []ProjectMetrics) GlobalMetrics {
	var g GlobalMetrics

	precision := make([]float64, len(projects))
	recall := make([]float64, len(projects))
	f1 := make([]float64, len(projects))
	accuracy := make([]float64, len(projects))
	weights := make([]float64, len(projects))

	for i, p := range projects {
		g.TotalBugs += p.BugsAnalyzed
		g.TotalTop1 += p.Top1Hits
		g.TotalTop3 += p.Top3Hits
		g.TotalTop5 += p.Top5Hits
		precision[i] = p.MeanPrecision
		recall[i] = p.MeanRecall
		f1[i] = p.MeanF1
		accuracy[i] = p.MeanAccuracy
		weights[i] = float64(p.BugsAnalyzed)
	}

	g.WeightedPrecision = WeightedMean(precision, weights)
	g.WeightedRecall = WeightedMean(recall, weights)
	g.WeightedF1 = WeightedMean(f1, weights)
	g.WeightedAccuracy = WeightedMean(accuracy, weights)

	g.UnweightedPrecision = Mean(precision)
	g.UnweightedRecall = Mean(recall)
	g.UnweightedF1 = Mean(f1)
	g.UnweightedAccuracy = Mean(accuracy)
	return g
}
