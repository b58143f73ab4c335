// Package prompt builds the prompts sent to the model: three base templates
// over a bug's evidence bundle plus the zero-shot and self-consistency
// wrappers around them.
package prompt

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"suspect/internal/models"
)

// TemplateCount is the number of supported base templates.
const TemplateCount = 3

// Builder fills the prompt templates for a fixed top-K.
type Builder struct {
	k int
}

// NewBuilder returns a builder asking the model for k candidates.
func NewBuilder(k int) *Builder {
	return &Builder{k: k}
}

// Base builds the base prompt for the given template id over the evidence.
// expectedBehavior is only consumed by template 2 and may be nil otherwise.
func (b *Builder) Base(template int, ev models.Evidence, expectedBehavior []string) (string, error) {
	switch template {
	case 1:
		return b.fill(template1, ev, nil), nil
	case 2:
		return b.fill(template2, ev, expectedBehavior), nil
	case 3:
		return b.fill(template3, ev, nil), nil
	default:
		return "", fmt.Errorf("unknown prompt template %d", template)
	}
}

// ExpectedBehavior builds the preliminary template-2 prompt that asks the
// model to summarize what the failing test expects.
func (b *Builder) ExpectedBehavior(ev models.Evidence) string {
	testCode := ev.TestCodeSnippet
	if testCode == "" {
		testCode = ev.FailingTest
	}
	r := strings.NewReplacer(
		"{FAILING_TEST}", ev.FailingTest,
		"{TEST_CODE_SNIPPET}", testCode,
	)
	return r.Replace(expectedBehaviorPrompt)
}

// WrapZeroShot wraps a base prompt for one refinement iteration. prev is the
// previous iteration's ranking, or nil on the first iteration.
func (b *Builder) WrapZeroShot(base string, prev models.RankingList) string {
	prefix := strings.ReplaceAll(zeroShotPrefix, "{PREVIOUS_CANDIDATES}", CandidatesJSON(prev))
	return prefix + base + b.fillCommon(zeroShotSuffix)
}

// WrapSelfConsistency wraps a base prompt for one independent
// self-consistency run.
func (b *Builder) WrapSelfConsistency(base string) string {
	return selfConsistencyPrefix + base + b.fillCommon(selfConsistencySuffix)
}

// CandidatesJSON renders a ranking as the compact method-only JSON array
// embedded in refinement prompts. A nil ranking renders as "[]".
func CandidatesJSON(list models.RankingList) string {
	type candidate struct {
		Method string `json:"method"`
	}
	candidates := make([]candidate, len(list))
	for i, e := range list {
		candidates[i] = candidate{Method: e.Method}
	}
	data, err := json.Marshal(candidates)
	if err != nil {
		// A slice of string-only structs cannot fail to marshal.
		return "[]"
	}
	return string(data)
}

func (b *Builder) fill(template string, ev models.Evidence, expectedBehavior []string) string {
	bugReport := ev.BugReport
	if bugReport == "" {
		bugReport = ev.Raw
	}
	r := strings.NewReplacer(
		"{BUG_REPORT}", bugReport,
		"{FAILING_TEST}", ev.FailingTest,
		"{FAILURE_TRACE}", ev.FailureTrace,
		"{CODE_SNIPPETS}", ev.CodeSnippets,
		"{EXPECTED_BEHAVIOR}", bullets(expectedBehavior),
	)
	return b.fillCommon(r.Replace(template))
}

func (b *Builder) fillCommon(s string) string {
	r := strings.NewReplacer(
		"{K}", strconv.Itoa(b.k),
		"{OUTPUT_SCHEMA}", outputSchema,
	)
	return r.Replace(s)
}

func bullets(lines []string) string {
	if len(lines) == 0 {
		return "- (not available)"
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = "- " + l
	}
	return strings.Join(out, "\n")
}
