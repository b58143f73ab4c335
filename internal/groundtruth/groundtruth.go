// Package groundtruth loads the authoritative buggy-method sets that
// rankings are scored against. Two on-disk formats are accepted: a JSON
// mapping project -> bug id -> methods, and a legacy flat-text format with
// one "<bug_id> : <method_id>" mapping per line.
package groundtruth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Set maps project -> bug id -> buggy method identifiers (raw form).
type Set map[string]map[int][]string

// Lookup returns the ground-truth methods for a bug, or false when the
// project/bug combination is unknown or empty.
func (s Set) Lookup(project string, bugID int) ([]string, bool) {
	bugs, ok := s[project]
	if !ok {
		return nil, false
	}
	methods, ok := bugs[bugID]
	if !ok || len(methods) == 0 {
		return nil, false
	}
	return methods, true
}

// Bugs returns the total number of bugs with ground truth.
func (s Set) Bugs() int {
	n := 0
	for _, bugs := range s {
		n += len(bugs)
	}
	return n
}

// Load reads a ground-truth file, sniffing the format: content starting
// with "{" is parsed as JSON, anything else as the legacy flat format. Flat
// files carry no project name, so the file's base name (without extension)
// is used as the project.
func Load(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ground truth: %w", err)
	}

	if strings.HasPrefix(strings.TrimSpace(string(data)), "{") {
		return parseJSON(data)
	}

	project := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return parseFlat(data, project)
}

func parseJSON(data []byte) (Set, error) {
	var raw map[string]map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing ground truth JSON: %w", err)
	}

	out := make(Set, len(raw))
	for project, bugs := range raw {
		out[project] = make(map[int][]string, len(bugs))
		for id, methods := range bugs {
			bugID, err := strconv.Atoi(id)
			if err != nil {
				return nil, fmt.Errorf("ground truth for %s: bug id %q is not numeric", project, id)
			}
			out[project][bugID] = methods
		}
	}
	return out, nil
}

// parseFlat reads the legacy "<bug_id> : <method_id>" format. Lines starting
// with "#" and blank lines are ignored; repeated bug ids accumulate methods.
func parseFlat(data []byte, project string) (Set, error) {
	bugs := make(map[int][]string)

	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		id, method, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("ground truth line %d: expected \"<bug_id> : <method_id>\", got %q", i+1, line)
		}
		bugID, err := strconv.Atoi(strings.TrimSpace(id))
		if err != nil {
			return nil, fmt.Errorf("ground truth line %d: bug id %q is not numeric", i+1, strings.TrimSpace(id))
		}
		method = strings.TrimSpace(method)
		if method == "" {
			return nil, fmt.Errorf("ground truth line %d: empty method identifier", i+1)
		}
		bugs[bugID] = append(bugs[bugID], method)
	}

	return Set{project: bugs}, nil
}
