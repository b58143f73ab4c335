package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"suspect/internal/bugs"
	"suspect/internal/config"
)

var (
	listPromptsDir string
	listOutputsDir string
)

func newListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List discovered prompts, completed experiments, or templates",
	}
	cmd.AddCommand(newListPromptsCommand())
	cmd.AddCommand(newListExperimentsCommand())
	cmd.AddCommand(newListTemplatesCommand())
	return cmd
}

func newListPromptsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompts",
		Short: "List discovered base prompts per project",
		RunE: func(cmd *cobra.Command, args []string) error {
			refs, err := bugs.Scan(listPromptsDir)
			if err != nil {
				return err
			}
			counts := bugs.ProjectCounts(refs)

			projects := make([]string, 0, len(counts))
			for p := range counts {
				projects = append(projects, p)
			}
			sort.Strings(projects)

			for _, p := range projects {
				fmt.Printf("%-20s %d bug(s)\n", p, counts[p])
			}
			fmt.Printf("\nTotal: %d bug(s) across %d project(s)\n", len(refs), len(projects))
			return nil
		},
	}
	cmd.Flags().StringVar(&listPromptsDir, "prompts-dir", "prompts", "Directory holding per-project base prompts")
	return cmd
}

func newListExperimentsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "experiments",
		Short: "List experiments under the outputs directory with completed-bug counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			experiments, err := scanExperiments(listOutputsDir)
			if err != nil {
				return err
			}
			if len(experiments) == 0 {
				fmt.Println("No experiments found.")
				return nil
			}
			for _, exp := range experiments {
				fmt.Printf("%-50s %d completed bug(s)\n", exp.name, exp.completed)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&listOutputsDir, "outputs-dir", "outputs", "Root directory holding experiment outputs")
	return cmd
}

type experimentEntry struct {
	name      string
	completed int
}

// scanExperiments walks <root>/<model>/<template>/<mode> and counts the
// completion markers under each experiment.
func scanExperiments(root string) ([]experimentEntry, error) {
	counts := make(map[string]int)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == root {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() || d.Name() != "COMPLETED" {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		parts := strings.Split(rel, string(filepath.Separator))
		if len(parts) < 4 {
			return nil
		}
		counts[filepath.Join(parts[0], parts[1], parts[2])]++
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning outputs: %w", err)
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]experimentEntry, 0, len(names))
	for _, name := range names {
		out = append(out, experimentEntry{name: name, completed: counts[name]})
	}
	return out, nil
}

func newListTemplatesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List the built-in prompt templates",
		Run: func(cmd *cobra.Command, args []string) {
			ids := make([]int, 0, len(config.TemplateNames))
			for id := range config.TemplateNames {
				ids = append(ids, id)
			}
			sort.Ints(ids)
			for _, id := range ids {
				fmt.Printf("%d  %s\n", id, config.TemplateNames[id])
			}
		},
	}
}
