// Package reporting formats aggregated evaluation metrics into the two
// documented textual layouts. It is a pure formatting layer over the
// metrics package; both layouts print the same numbers under different
// labels and section headers.
package reporting

import (
	"fmt"
	"strings"

	"suspect/internal/metrics"
)

// Layout selects the report dialect.
type Layout string

const (
	// LayoutBugsInPy is the Python-ecosystem (BugsInPy) report format.
	LayoutBugsInPy Layout = "python"
	// LayoutDefects4J is the Java-ecosystem (Defects4J) report format.
	LayoutDefects4J Layout = "java"
)

// Valid reports whether the layout is one of the known dialects.
func (l Layout) Valid() bool {
	return l == LayoutBugsInPy || l == LayoutDefects4J
}

// Render formats per-project metrics and global totals. Field order and
// labels are fixed; downstream consumers parse this text.
func Render(projects []metrics.ProjectMetrics, global metrics.GlobalMetrics, k int, layout Layout) string {
	var b strings.Builder

	if layout == LayoutBugsInPy {
		fmt.Fprintf(&b, "BugsInPy Classification Metrics (K=%d)\n", k)
	} else {
		fmt.Fprintf(&b, "Fault Localization Evaluation (K=%d)\n", k)
	}
	b.WriteString(strings.Repeat("=", 50))
	b.WriteString("\n\n")

	for _, p := range projects {
		if p.BugsAnalyzed == 0 {
			continue
		}
		fmt.Fprintf(&b, "Project: %s (%d bugs analyzed)\n", strings.ToLower(p.Project), p.BugsAnalyzed)
		fmt.Fprintf(&b, "  Top-1 Hits: %d\n", p.Top1Hits)
		fmt.Fprintf(&b, "  Top-3 Hits: %d\n", p.Top3Hits)
		fmt.Fprintf(&b, "  Top-5 Hits: %d\n", p.Top5Hits)
		fmt.Fprintf(&b, "  Mean Precision: %.4f\n", p.MeanPrecision)
		fmt.Fprintf(&b, "  Mean Recall:    %.4f\n", p.MeanRecall)
		fmt.Fprintf(&b, "  Mean F1 Score:  %.4f\n", p.MeanF1)
		fmt.Fprintf(&b, "  Mean Accuracy:  %.4f\n", p.MeanAccuracy)
		b.WriteString("\n")
	}

	if layout == LayoutBugsInPy {
		b.WriteString("GLOBAL AVERAGES\n")
	} else {
		b.WriteString("OVERALL TOTALS\n")
	}
	b.WriteString(strings.Repeat("-", 15))
	b.WriteString("\n")

	if layout == LayoutBugsInPy {
		fmt.Fprintf(&b, "Total Bugs Processed: %d\n", global.TotalBugs)
		if global.TotalBugs > 0 {
			fmt.Fprintf(&b, "Average F1 Score:     %.4f\n", global.WeightedF1)
			fmt.Fprintf(&b, "Average Accuracy:     %.4f\n", global.WeightedAccuracy)
		}
	} else {
		fmt.Fprintf(&b, "Total Bugs Analyzed: %d\n", global.TotalBugs)
		fmt.Fprintf(&b, "Total Top-1: %d\n", global.TotalTop1)
		fmt.Fprintf(&b, "Total Top-3: %d\n", global.TotalTop3)
		fmt.Fprintf(&b, "Total Top-5: %d\n", global.TotalTop5)
		if global.TotalBugs > 0 {
			fmt.Fprintf(&b, "Average Precision: %.4f\n", global.WeightedPrecision)
			fmt.Fprintf(&b, "Average Recall:    %.4f\n", global.WeightedRecall)
			fmt.Fprintf(&b, "Average F1:        %.4f\n", global.WeightedF1)
			fmt.Fprintf(&b, "Average Accuracy:  %.4f\n", global.WeightedAccuracy)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}
