// Package store lays out experiment outputs on disk and reads them back.
// Every bug gets its own directory containing each iteration's or run's raw
// model response, the final ranking record, and a completion marker that
// makes interrupted experiments resumable.
package store

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"suspect/internal/models"
)

const (
	recordFile     = "final.json"
	completedFile  = "COMPLETED"
	failureFile    = "failed.txt"
	iterFilePrefix = "iter"
	runFilePrefix  = "run"
)

// Store resolves the on-disk layout for one experiment:
// <root>/<model>/<template>/<mode>/<project>/<project>-<id>/. Colons in the
// model tag are replaced so the path stays portable.
type Store struct {
	base string
}

// New returns a store rooted at the experiment directory for the given
// model, template name and mode.
func New(root, model, templateName string, mode models.Mode) *Store {
	sanitized := strings.ReplaceAll(model, ":", "_")
	return &Store{base: filepath.Join(root, sanitized, templateName, string(mode))}
}

// Bug returns the persistence handle for a single bug.
func (s *Store) Bug(project string, bugID int) *BugStore {
	dir := filepath.Join(s.base, project, fmt.Sprintf("%s-%d", project, bugID))
	return &BugStore{dir: dir}
}

// BugStore persists one bug's artifacts.
type BugStore struct {
	dir string
}

// Dir returns the bug's output directory.
func (b *BugStore) Dir() string { return b.dir }

// SaveIteration writes one zero-shot iteration's raw response
// (iter_01_raw.txt, iter_02_raw.txt, ...).
func (b *BugStore) SaveIteration(n int, raw string) error {
	return b.saveRaw(iterFilePrefix, n, raw)
}

// SaveRun writes one self-consistency run's raw response
// (run_01_raw.txt, ...).
func (b *BugStore) SaveRun(n int, raw string) error {
	return b.saveRaw(runFilePrefix, n, raw)
}

// SaveExtraction writes the raw response of the template-2
// expected-behavior call.
func (b *BugStore) SaveExtraction(raw string) error {
	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return fmt.Errorf("creating bug output dir: %w", err)
	}
	return os.WriteFile(filepath.Join(b.dir, "expected_behavior_raw.txt"), []byte(raw), 0o644)
}

func (b *BugStore) saveRaw(prefix string, n int, raw string) error {
	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return fmt.Errorf("creating bug output dir: %w", err)
	}
	name := fmt.Sprintf("%s_%02d_raw.txt", prefix, n)
	return os.WriteFile(filepath.Join(b.dir, name), []byte(raw), 0o644)
}

// SaveRecord persists the final ranking record and then the completion
// marker. The marker is written last so a crash in between leaves the bug
// incomplete rather than half-trusted.
func (b *BugStore) SaveRecord(rec *models.RankingRecord) error {
	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return fmt.Errorf("creating bug output dir: %w", err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling ranking record: %w", err)
	}
	if err := os.WriteFile(filepath.Join(b.dir, recordFile), data, 0o644); err != nil {
		return fmt.Errorf("writing ranking record: %w", err)
	}
	return os.WriteFile(filepath.Join(b.dir, completedFile), nil, 0o644)
}

// SaveFailure records why a bug produced no ranking. Failed bugs carry no
// completion marker, so a later run retries them.
func (b *BugStore) SaveFailure(reason string) error {
	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return fmt.Errorf("creating bug output dir: %w", err)
	}
	return os.WriteFile(filepath.Join(b.dir, failureFile), []byte(reason+"\n"), 0o644)
}

// Completed reports whether this bug has a completion marker.
func (b *BugStore) Completed() bool {
	_, err := os.Stat(filepath.Join(b.dir, completedFile))
	return err == nil
}

// ScanRecords walks the experiment directory and loads every completed
// ranking record, sorted by project then bug id. Records that fail to load
// are skipped; the evaluation pass must never die on one bad file.
func (s *Store) ScanRecords() ([]models.RankingRecord, error) {
	var records []models.RankingRecord

	err := filepath.WalkDir(s.base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == s.base {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() || d.Name() != recordFile {
			return nil
		}
		if _, statErr := os.Stat(filepath.Join(filepath.Dir(path), completedFile)); statErr != nil {
			return nil
		}

		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil
		}
		var rec models.RankingRecord
		if jsonErr := json.Unmarshal(data, &rec); jsonErr != nil {
			return nil
		}
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning experiment outputs: %w", err)
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].Project != records[j].Project {
			return records[i].Project < records[j].Project
		}
		return records[i].BugID < records[j].BugID
	})
	return records, nil
}
