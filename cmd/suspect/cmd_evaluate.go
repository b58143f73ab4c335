package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"suspect/internal/config"
	"suspect/internal/groundtruth"
	"suspect/internal/metrics"
	"suspect/internal/models"
	"suspect/internal/normalize"
	"suspect/internal/orchestration"
	"suspect/internal/reporting"
	"suspect/internal/store"
)

var (
	evalModel       string
	evalTemplate    int
	evalMode        string
	evalOutputsDir  string
	evalTruthPath   string
	evalBenchmark   string
	evalTopK        int
	evalParamPolicy string
	evalReportPath  string
)

func newEvaluateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score completed experiment results against ground truth",
		Long: `Score the ranking records of a completed (or partially completed)
experiment against a ground-truth file and print the metrics report.

Only bugs with a completion marker are scored. Records without ground truth
are reported as skipped, never counted as misses.`,
		RunE: evaluateCommandE,
	}

	cmd.Flags().StringVarP(&evalModel, "model", "m", "", "Model tag the experiment ran with (required)")
	cmd.Flags().IntVarP(&evalTemplate, "template", "t", 1, "Prompt template id the experiment ran with (1-3)")
	cmd.Flags().StringVar(&evalMode, "mode", string(models.ModeZeroShot), "Inference mode the experiment ran with")
	cmd.Flags().StringVarP(&evalOutputsDir, "outputs-dir", "o", "outputs", "Root directory holding experiment outputs")
	cmd.Flags().StringVarP(&evalTruthPath, "ground-truth", "g", "", "Ground-truth file, JSON or flat text (required)")
	cmd.Flags().StringVarP(&evalBenchmark, "benchmark", "b", "python", "Report layout: python or java")
	cmd.Flags().IntVarP(&evalTopK, "top-k", "k", 5, "Ranking length K used for scoring")
	cmd.Flags().StringVar(&evalParamPolicy, "param-policy", "distinct", "Overload handling: distinct or merged")
	cmd.Flags().StringVar(&evalReportPath, "output", "", "Write the report to a file instead of stdout")

	_ = cmd.MarkFlagRequired("model")
	_ = cmd.MarkFlagRequired("ground-truth")

	return cmd
}

func evaluateCommandE(cmd *cobra.Command, args []string) error {
	layout := reporting.Layout(evalBenchmark)
	if !layout.Valid() {
		return fmt.Errorf("unknown benchmark layout %q (want python or java)", evalBenchmark)
	}

	policy, err := parseParamPolicy(evalParamPolicy)
	if err != nil {
		return err
	}

	templateName, ok := config.TemplateNames[evalTemplate]
	if !ok {
		return fmt.Errorf("unknown template id %d", evalTemplate)
	}
	mode := models.Mode(evalMode)
	if !mode.Valid() {
		return fmt.Errorf("unknown mode %q", evalMode)
	}

	st := store.New(evalOutputsDir, evalModel, templateName, mode)
	records, err := st.ScanRecords()
	if err != nil {
		return fmt.Errorf("scanning records: %w", err)
	}

	truth, err := groundtruth.Load(evalTruthPath)
	if err != nil {
		return fmt.Errorf("loading ground truth: %w", err)
	}

	ev, err := orchestration.Evaluate(records, truth, evalTopK, policy, metrics.TopKUniverse, nil)
	if err != nil {
		return err
	}

	report := reporting.Render(ev.Projects, ev.Global, evalTopK, layout)
	if ev.SkippedNoTruth > 0 {
		report += fmt.Sprintf("\n%d record(s) skipped: no ground truth.\n", ev.SkippedNoTruth)
	}

	if evalReportPath != "" {
		if err := os.WriteFile(evalReportPath, []byte(report), 0o644); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		fmt.Printf("Report written to %s\n", evalReportPath)
		return nil
	}
	fmt.Println(report)
	return nil
}

func parseParamPolicy(s string) (normalize.ParamPolicy, error) {
	switch s {
	case "distinct":
		return normalize.ParamsDistinct, nil
	case "merged":
		return normalize.ParamsMerged, nil
	}
	return normalize.ParamsDistinct, fmt.Errorf("unknown param policy %q (want distinct or merged)", s)
}
