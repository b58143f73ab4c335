package bugs

import (
	"regexp"
	"sort"
	"strings"

	"suspect/internal/models"
)

// Section markers tolerate the header variants seen across base prompts:
// "### BUG_REPORT:", "Bug Report", "FAILURE TRACE", and so on.
var sectionMarkers = []struct {
	re    *regexp.Regexp
	field func(*models.Evidence) *string
}{
	{regexp.MustCompile(`(?i)(?:###\s*)?BUG[_\s]?REPORT\s*:?`), func(e *models.Evidence) *string { return &e.BugReport }},
	{regexp.MustCompile(`(?i)(?:###\s*)?FAILING[_\s]?TEST\s*:?`), func(e *models.Evidence) *string { return &e.FailingTest }},
	{regexp.MustCompile(`(?i)(?:###\s*)?(?:FAILURE[_\s]?TRACE|STACK[_\s]?TRACE)\s*:?`), func(e *models.Evidence) *string { return &e.FailureTrace }},
	{regexp.MustCompile(`(?i)(?:###\s*)?(?:CODE[_\s]?SNIPPETS?|CANDIDATE[_\s]?METHODS?)\s*:?`), func(e *models.Evidence) *string { return &e.CodeSnippets }},
	{regexp.MustCompile(`(?i)(?:###\s*)?TEST[_\s]?CODE[_\s]?SNIPPET\s*:?`), func(e *models.Evidence) *string { return &e.TestCodeSnippet }},
}

type sectionHit struct {
	start, end int
	marker     int
}

// ParseEvidence splits a base prompt's raw content into its sections. Text
// between one marker and the next belongs to the former; content without
// any markers stays available through Evidence.Raw.
func ParseEvidence(content string) models.Evidence {
	ev := models.Evidence{Raw: content}

	var hits []sectionHit
	for mi, marker := range sectionMarkers {
		for _, loc := range marker.re.FindAllStringIndex(content, -1) {
			hits = append(hits, sectionHit{start: loc[0], end: loc[1], marker: mi})
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].start != hits[j].start {
			return hits[i].start < hits[j].start
		}
		return hits[i].end > hits[j].end
	})

	// Drop hits nested in an earlier marker, e.g. the CODE_SNIPPET match
	// inside a TEST_CODE_SNIPPET header.
	kept := hits[:0]
	lastEnd := -1
	for _, h := range hits {
		if h.start < lastEnd {
			continue
		}
		kept = append(kept, h)
		lastEnd = h.end
	}

	for i, h := range kept {
		end := len(content)
		if i+1 < len(kept) {
			end = kept[i+1].start
		}
		*sectionMarkers[h.marker].field(&ev) = strings.TrimSpace(content[h.end:end])
	}
	return ev
}
