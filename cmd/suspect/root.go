package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suspect",
		Short: "suspect - LLM-based fault localization harness",
		Long: `suspect runs fault-localization experiments against a locally served
language model and scores the resulting method rankings against ground truth.

It discovers per-bug prompt files, queries the model with one of the
built-in prompt templates, persists every raw response for audit, and
produces precision/recall/F1 reports over the ranked suspects.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	// Add subcommands
	cmd.AddCommand(newRunCommand())
	cmd.AddCommand(newEvaluateCommand())
	cmd.AddCommand(newListCommand())

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
