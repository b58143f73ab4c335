// Package metrics scores final rankings against ground truth and aggregates
// the results per project and globally.
package metrics

// BugMetrics holds the classification metrics for a single bug.
type BugMetrics struct {
	Top1      bool
	Top3      bool
	Top5      bool
	Precision float64
	Recall    float64
	F1        float64
	Accuracy  float64
}

// UniverseFn chooses the candidate-method universe used for the accuracy
// denominator and derives the true-negative count from it. The universe is
// not well-defined by the ranking alone, so callers supply the policy.
type UniverseFn func(k, tp, fp int) (universe, tn int)

// TopKUniverse treats the top-K cutoff itself as the candidate universe:
// TN = K - TP - FP, floored at zero. This is the default policy.
func TopKUniverse(k, tp, fp int) (int, int) {
	tn := k - tp - fp
	if tn < 0 {
		tn = 0
	}
	return k, tn
}

// EvaluateBug scores one bug. predicted is the final ranking's method
// identifiers in rank order and truth the ground-truth set; both must
// already be in normalized form. predicted is cut to at most k entries.
// A nil universe falls back to TopKUniverse.
func EvaluateBug(predicted []string, truth map[string]struct{}, k int, universe UniverseFn) BugMetrics {
	if universe == nil {
		universe = TopKUniverse
	}
	if len(predicted) > k {
		predicted = predicted[:k]
	}

	predSet := make(map[string]struct{}, len(predicted))
	for _, m := range predicted {
		predSet[m] = struct{}{}
	}

	tp := 0
	for m := range predSet {
		if _, ok := truth[m]; ok {
			tp++
		}
	}
	fp := len(predSet) - tp
	fn := len(truth) - tp

	var m BugMetrics
	if tp+fp > 0 {
		m.Precision = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		m.Recall = float64(tp) / float64(tp+fn)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	if u, tn := universe(k, tp, fp); u > 0 {
		m.Accuracy = float64(tp+tn) / float64(u)
	}

	m.Top1 = hitWithin(predicted, truth, 1)
	m.Top3 = hitWithin(predicted, truth, 3)
	m.Top5 = hitWithin(predicted, truth, 5)
	return m
}

// hitWithin reports whether any of the first n predictions is in truth.
func hitWithin(predicted []string, truth map[string]struct{}, n int) bool {
	if len(predicted) < n {
		n = len(predicted)
	}
	for _, m := range predicted[:n] {
		if _, ok := truth[m]; ok {
			return true
		}
	}
	return false
}
