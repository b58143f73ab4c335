package main

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"suspect/internal/config"
	"suspect/internal/llm"
	"suspect/internal/models"
	"suspect/internal/orchestration"
	"suspect/internal/store"
)

var (
	runModel      string
	runEndpoint   string
	runTemplate   int
	runMode       string
	runTopK       int
	runPromptsDir string
	runOutputsDir string
	runProjects   []string
	runBugIDs     []int
	runVerbose    bool
)

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [experiment.yaml]",
		Short: "Run a fault-localization experiment",
		Long: `Run a fault-localization experiment over the discovered base prompts.

The experiment can be described in a YAML spec file or entirely through
flags; flags override the spec. Bugs that already carry a completion marker
from a previous run are skipped, so an interrupted batch resumes where it
stopped.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCommandE,
	}

	cmd.Flags().StringVarP(&runModel, "model", "m", "", "Model tag served by the endpoint (e.g. llama3.1)")
	cmd.Flags().StringVar(&runEndpoint, "endpoint", "", "Model endpoint base URL (default: http://localhost:11434)")
	cmd.Flags().IntVarP(&runTemplate, "template", "t", 0, "Prompt template id (1-3)")
	cmd.Flags().StringVar(&runMode, "mode", "", "Inference mode: zero_shot or self_consistency")
	cmd.Flags().IntVarP(&runTopK, "top-k", "k", 0, "Ranking length K")
	cmd.Flags().StringVar(&runPromptsDir, "prompts-dir", "", "Directory holding per-project base prompts")
	cmd.Flags().StringVarP(&runOutputsDir, "outputs-dir", "o", "", "Root directory for experiment outputs")
	cmd.Flags().StringArrayVar(&runProjects, "project", nil, "Only process this project (can be repeated)")
	cmd.Flags().IntSliceVar(&runBugIDs, "bug", nil, "Only process this bug id (can be repeated)")
	cmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Verbose output with detailed progress")

	return cmd
}

func runCommandE(cmd *cobra.Command, args []string) error {
	cfg, err := buildExperiment(args)
	if err != nil {
		return err
	}

	client := llm.NewOllama(cfg.Endpoint, cfg.Model, time.Duration(cfg.TimeoutSeconds)*time.Second)
	st := store.New(cfg.OutputsDir, cfg.Model, cfg.TemplateName(), cfg.Mode)
	runner := orchestration.NewRunner(cfg, client, st, nil)

	if runVerbose {
		runner.OnProgress(verboseProgressListener)
	} else {
		runner.OnProgress(simpleProgressListener)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	fmt.Printf("Model: %s\n", cfg.Model)
	fmt.Printf("Endpoint: %s\n", cfg.Endpoint)
	fmt.Printf("Template: %d (%s)\n", cfg.Template, cfg.TemplateName())
	fmt.Printf("Mode: %s\n", cfg.Mode)
	fmt.Printf("Prompts: %s\n", cfg.PromptsDir)
	fmt.Println()

	summary, err := runner.Run(ctx)
	if err != nil {
		return fmt.Errorf("experiment failed: %w", err)
	}

	fmt.Println()
	fmt.Printf("Completed: %d  Failed: %d  Skipped: %d  (of %d)\n",
		summary.Completed, summary.Failed, summary.Skipped, summary.Total)

	if summary.Failed > 0 {
		return &BugFailureError{Message: fmt.Sprintf("%d bug(s) failed inference", summary.Failed)}
	}
	return nil
}

// buildExperiment loads the optional spec file and applies flag overrides.
func buildExperiment(args []string) (*config.Experiment, error) {
	var cfg *config.Experiment
	if len(args) == 1 {
		loaded, err := config.Load(args[0])
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = config.Default()
	}

	if runModel != "" {
		cfg.Model = runModel
	}
	if runEndpoint != "" {
		cfg.Endpoint = runEndpoint
	}
	if runTemplate != 0 {
		cfg.Template = runTemplate
	}
	if runMode != "" {
		cfg.Mode = models.Mode(runMode)
	}
	if runTopK != 0 {
		cfg.TopK = runTopK
	}
	if runPromptsDir != "" {
		cfg.PromptsDir = runPromptsDir
	}
	if runOutputsDir != "" {
		cfg.OutputsDir = runOutputsDir
	}
	if len(runProjects) > 0 {
		cfg.Projects = runProjects
	}
	if len(runBugIDs) > 0 {
		cfg.BugIDs = runBugIDs
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
