package models

// RankEntry is a single candidate in a ranked list of suspicious methods.
type RankEntry struct {
	Rank          int     `json:"rank"`
	Method        string  `json:"method"`
	Score         float64 `json:"score"`
	Justification string  `json:"justification,omitempty"`
}

// RankingList is an ordered list of candidates, most suspicious first.
// Ranks are 1-based and contiguous. Method identifiers are kept exactly as
// the model emitted them; normalization happens at evaluation time only, so
// persisted rankings stay inspectable independent of how we compare them.
type RankingList []RankEntry

// Methods returns the method identifiers in rank order.
func (rl RankingList) Methods() []string {
	out := make([]string, len(rl))
	for i, e := range rl {
		out[i] = e.Method
	}
	return out
}

// Truncate returns at most k entries with ranks renumbered 1..len.
func (rl RankingList) Truncate(k int) RankingList {
	if k >= 0 && len(rl) > k {
		rl = rl[:k]
	}
	out := make(RankingList, len(rl))
	copy(out, rl)
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// SameOrder reports whether both lists name the same methods in the same
// rank order. Scores and justifications are ignored; this is the
// convergence test for the zero-shot loop.
func (rl RankingList) SameOrder(other RankingList) bool {
	if len(rl) != len(other) {
		return false
	}
	for i := range rl {
		if rl[i].Method != other[i].Method {
			return false
		}
	}
	return true
}
