package models

// RunMetadata describes how a bug's final ranking was produced.
type RunMetadata struct {
	Mode           Mode     `json:"mode"`
	IterationsUsed int      `json:"iterations_used"`
	Converged      bool     `json:"converged"`
	TerminalState  string   `json:"terminal_state"`
	Errors         []string `json:"errors,omitempty"`
	TotalLatencyMs int64    `json:"total_latency_ms"`
}

// RankingRecord is the persisted result of one bug's inference. The ranking
// is stored under "ranking_top5" for compatibility with downstream tooling
// regardless of the configured K.
type RankingRecord struct {
	Project    string      `json:"project"`
	BugID      int         `json:"bug_id"`
	RankingTop RankingList `json:"ranking_top5"`
	Metadata   RunMetadata `json:"metadata"`
}
