package models

import "fmt"

// Mode selects the inference strategy for an experiment.
type Mode string

const (
	ModeZeroShot        Mode = "zero_shot"
	ModeSelfConsistency Mode = "self_consistency"
)

// Valid reports whether the mode is one of the known strategies.
func (m Mode) Valid() bool {
	return m == ModeZeroShot || m == ModeSelfConsistency
}

// Evidence is the prompt-input bundle for one bug: the raw base-prompt text
// plus the sections extracted from it.
type Evidence struct {
	Raw             string
	BugReport       string
	FailingTest     string
	FailureTrace    string
	CodeSnippets    string
	TestCodeSnippet string
}

// BugCase ties a project and bug id to its prompt evidence. Constructed
// once per experiment run and read-only afterwards.
type BugCase struct {
	Project  string
	BugID    int
	Evidence Evidence
}

// Key returns the canonical "<project>-<id>" identifier for the bug.
func (b *BugCase) Key() string {
	return fmt.Sprintf("%s-%d", b.Project, b.BugID)
}
