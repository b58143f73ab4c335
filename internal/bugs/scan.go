// Package bugs discovers base-prompt files and loads them into BugCases.
// Prompt directories follow the layout <prompts>/<project>/base_prompt_<Project>-<id>.txt.
package bugs

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"sort"
	"strconv"

	"suspect/internal/models"
)

var basePromptRe = regexp.MustCompile(`^base_prompt_([A-Za-z]+)-(\d+)\.txt$`)

// Ref points at one bug's base-prompt file.
type Ref struct {
	Project string
	BugID   int
	Path    string
}

// Scan walks the per-project subdirectories of promptsDir and collects a
// reference per base-prompt file, sorted by project then bug id.
func Scan(promptsDir string) ([]Ref, error) {
	projects, err := os.ReadDir(promptsDir)
	if err != nil {
		return nil, fmt.Errorf("prompts directory: %w", err)
	}

	var refs []Ref
	for _, proj := range projects {
		if !proj.IsDir() {
			continue
		}
		files, err := os.ReadDir(filepath.Join(promptsDir, proj.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading project %s: %w", proj.Name(), err)
		}
		for _, f := range files {
			m := basePromptRe.FindStringSubmatch(f.Name())
			if m == nil {
				continue
			}
			bugID, err := strconv.Atoi(m[2])
			if err != nil {
				continue
			}
			refs = append(refs, Ref{
				Project: proj.Name(),
				BugID:   bugID,
				Path:    filepath.Join(promptsDir, proj.Name(), f.Name()),
			})
		}
	}

	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Project != refs[j].Project {
			return refs[i].Project < refs[j].Project
		}
		return refs[i].BugID < refs[j].BugID
	})
	return refs, nil
}

// Load reads a base-prompt file and parses its evidence sections.
func Load(ref Ref) (*models.BugCase, error) {
	data, err := os.ReadFile(ref.Path)
	if err != nil {
		return nil, fmt.Errorf("loading bug %s-%d: %w", ref.Project, ref.BugID, err)
	}
	return &models.BugCase{
		Project:  ref.Project,
		BugID:    ref.BugID,
		Evidence: ParseEvidence(string(data)),
	}, nil
}

// Filter keeps refs matching the project and bug-id filters. Empty filters
// match everything.
func Filter(refs []Ref, projects []string, bugIDs []int) []Ref {
	if len(projects) == 0 && len(bugIDs) == 0 {
		return refs
	}
	var out []Ref
	for _, r := range refs {
		if len(projects) > 0 && !slices.Contains(projects, r.Project) {
			continue
		}
		if len(bugIDs) > 0 && !slices.Contains(bugIDs, r.BugID) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// ProjectCounts returns the number of bugs per project.
func ProjectCounts(refs []Ref) map[string]int {
	counts := make(map[string]int)
	for _, r := range refs {
		counts[r.Project]++
	}
	return counts
}
