package prompt

import (
	"testing"

	"github.com/stretchr/testify/require"

	"suspect/internal/models"
)

var sampleEvidence = models.Evidence{
	Raw:             "raw prompt content",
	BugReport:       "division crashes on zero",
	FailingTest:     "test_divide_by_zero",
	FailureTrace:    "ZeroDivisionError at calc.py:10",
	CodeSnippets:    "def divide(a, b): return a / b",
	TestCodeSnippet: "assert divide(1, 0) raises",
}

func TestBase_FillsEvidence(t *testing.T) {
	b := NewBuilder(5)

	for _, template := range []int{1, 2, 3} {
		p, err := b.Base(template, sampleEvidence, []string{"returns the quotient"})
		require.NoError(t, err)
		require.Contains(t, p, "division crashes on zero")
		require.Contains(t, p, "test_divide_by_zero")
		require.Contains(t, p, "ZeroDivisionError at calc.py:10")
		require.Contains(t, p, "def divide(a, b): return a / b")
		require.Contains(t, p, "top-5")
		require.Contains(t, p, `"top_k"`)
		require.NotContains(t, p, "{BUG_REPORT}")
		require.NotContains(t, p, "{K}")
	}
}

func TestBase_Template2IncludesExpectedBehavior(t *testing.T) {
	b := NewBuilder(5)
	p, err := b.Base(2, sampleEvidence, []string{"returns the quotient", "raises on zero"})
	require.NoError(t, err)
	require.Contains(t, p, "- returns the quotient\n- raises on zero")
}

func TestBase_FallsBackToRawContent(t *testing.T) {
	b := NewBuilder(5)
	ev := models.Evidence{Raw: "unstructured bug dump"}
	p, err := b.Base(1, ev, nil)
	require.NoError(t, err)
	require.Contains(t, p, "unstructured bug dump")
}

func TestBase_UnknownTemplate(t *testing.T) {
	_, err := NewBuilder(5).Base(4, sampleEvidence, nil)
	require.Error(t, err)
}

func TestWrapZeroShot(t *testing.T) {
	b := NewBuilder(3)

	t.Run("first iteration has empty candidates", func(t *testing.T) {
		p := b.WrapZeroShot("BASE", nil)
		require.Contains(t, p, "Previous candidate list from last iteration:\n[]")
		require.Contains(t, p, "BASE")
		require.Contains(t, p, "top-3")
	})

	t.Run("later iterations embed previous ranking", func(t *testing.T) {
		prev := models.RankingList{{Rank: 1, Method: "a.b(c)"}, {Rank: 2, Method: "d.e()"}}
		p := b.WrapZeroShot("BASE", prev)
		require.Contains(t, p, `[{"method":"a.b(c)"},{"method":"d.e()"}]`)
	})
}

func TestWrapSelfConsistency(t *testing.T) {
	p := NewBuilder(7).WrapSelfConsistency("BASE")
	require.Contains(t, p, "Independently analyze")
	require.Contains(t, p, "BASE")
	require.Contains(t, p, "top-7")
	require.NotContains(t, p, "{PREVIOUS_CANDIDATES}")
}

func TestExpectedBehaviorPrompt(t *testing.T) {
	b := NewBuilder(5)
	p := b.ExpectedBehavior(sampleEvidence)
	require.Contains(t, p, "test_divide_by_zero")
	require.Contains(t, p, "assert divide(1, 0) raises")
	require.Contains(t, p, `"expected_behavior"`)

	t.Run("falls back to failing test when no test code", func(t *testing.T) {
		ev := sampleEvidence
		ev.TestCodeSnippet = ""
		p := b.ExpectedBehavior(ev)
		require.Contains(t, p, "Test code:\ntest_divide_by_zero")
	})
}
