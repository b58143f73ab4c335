package reporting

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"suspect/internal/metrics"
)

func sampleData() ([]metrics.ProjectMetrics, metrics.GlobalMetrics) {
	projects := []metrics.ProjectMetrics{
		{
			Project:       "Black",
			BugsAnalyzed:  2,
			Top1Hits:      1,
			Top3Hits:      2,
			Top5Hits:      2,
			MeanPrecision: 0.25,
			MeanRecall:    0.5,
			MeanF1:        0.3333,
			MeanAccuracy:  0.7,
		},
	}
	return projects, metrics.AggregateGlobal(projects)
}

func TestRender_BugsInPyLayout(t *testing.T) {
	projects, global := sampleData()
	report := Render(projects, global, 5, LayoutBugsInPy)

	lines := strings.Split(report, "\n")
	require.Equal(t, "BugsInPy Classification Metrics (K=5)", lines[0])
	require.Equal(t, strings.Repeat("=", 50), lines[1])

	require.Contains(t, report, "Project: black (2 bugs analyzed)")
	require.Contains(t, report, "  Top-1 Hits: 1")
	require.Contains(t, report, "  Top-3 Hits: 2")
	require.Contains(t, report, "  Top-5 Hits: 2")
	require.Contains(t, report, "  Mean Precision: 0.2500")
	require.Contains(t, report, "  Mean Recall:    0.5000")
	require.Contains(t, report, "  Mean F1 Score:  0.3333")
	require.Contains(t, report, "  Mean Accuracy:  0.7000")

	require.Contains(t, report, "GLOBAL AVERAGES\n"+strings.Repeat("-", 15))
	require.Contains(t, report, "Total Bugs Processed: 2")
	require.Contains(t, report, "Average F1 Score:     0.3333")
	require.Contains(t, report, "Average Accuracy:     0.7000")
	require.NotContains(t, report, "OVERALL TOTALS")
}

func TestRender_Defects4JLayout(t *testing.T) {
	projects, global := sampleData()
	report := Render(projects, global, 5, LayoutDefects4J)

	require.True(t, strings.HasPrefix(report, "Fault Localization Evaluation (K=5)\n"))
	require.Contains(t, report, "OVERALL TOTALS\n"+strings.Repeat("-", 15))
	require.Contains(t, report, "Total Bugs Analyzed: 2")
	require.Contains(t, report, "Total Top-1: 1")
	require.Contains(t, report, "Total Top-3: 2")
	require.Contains(t, report, "Total Top-5: 2")
	require.Contains(t, report, "Average Precision: 0.2500")
	require.Contains(t, report, "Average Recall:    0.5000")
	require.Contains(t, report, "Average F1:        0.3333")
	require.Contains(t, report, "Average Accuracy:  0.7000")
	require.NotContains(t, report, "GLOBAL AVERAGES")
}

func TestRender_EmptyResults(t *testing.T) {
	report := Render(nil, metrics.GlobalMetrics{}, 5, LayoutBugsInPy)

	require.Contains(t, report, "Total Bugs Processed: 0")
	// No averages are printed when nothing was analyzed.
	require.NotContains(t, report, "Average F1 Score")
}

func TestLayoutValid(t *testing.T) {
	require.True(t, LayoutBugsInPy.Valid())
	require.True(t, LayoutDefects4J.Valid())
	require.False(t, Layout("ruby").Valid())
}
