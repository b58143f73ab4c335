// Package parser converts raw model output into a validated RankingList.
// Model output is loosely structured: the ranked-method JSON is usually
// surrounded by prose and markdown fences, item keys vary, and scores come
// back as numbers, strings, or not at all. The parser tolerates all of that
// and guarantees that a successful result has contiguous 1-based ranks.
package parser

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"suspect/internal/models"
)

// DefaultScore is substituted when an entry carries no usable numeric score.
const DefaultScore = 0.5

// rankingSchema describes the minimal shape a response must have: a top_k
// array of objects, each naming a method under "method" or "method_name".
// Scores are validated leniently on purpose; a malformed score is not a
// hard failure.
const rankingSchema = `{
	"type": "object",
	"required": ["top_k"],
	"properties": {
		"top_k": {
			"type": "array",
			"items": {
				"type": "object",
				"anyOf": [
					{"required": ["method"]},
					{"required": ["method_name"]}
				]
			}
		}
	}
}`

var fenceRe = regexp.MustCompile("```(?:json)?\\s*")

// Parser turns raw model text into a RankingList capped at maxEntries.
type Parser struct {
	maxEntries int
	schema     *jsonschema.Schema
}

// New compiles the ranking schema once and returns a parser that truncates
// results to maxEntries.
func New(maxEntries int) (*Parser, error) {
	if maxEntries <= 0 {
		return nil, fmt.Errorf("parser: max entries must be positive, got %d", maxEntries)
	}

	schemaValue, err := jsonschema.UnmarshalJSON(strings.NewReader(rankingSchema))
	if err != nil {
		return nil, fmt.Errorf("parser: reading ranking schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("ranking.json", schemaValue); err != nil {
		return nil, fmt.Errorf("parser: adding ranking schema: %w", err)
	}
	schema, err := compiler.Compile("ranking.json")
	if err != nil {
		return nil, fmt.Errorf("parser: compiling ranking schema: %w", err)
	}

	return &Parser{maxEntries: maxEntries, schema: schema}, nil
}

// ExtractObject pulls the first JSON object out of raw text, stripping
// markdown fences and surrounding prose. It fails with a ParseError when
// there is no object to extract.
func ExtractObject(raw string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, &models.ParseError{Reason: "empty response"}
	}

	cleaned := fenceRe.ReplaceAllString(raw, "")
	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end <= start {
		return nil, &models.ParseError{Reason: "no JSON object found"}
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &obj); err != nil {
		return nil, &models.ParseError{Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}
	return obj, nil
}

// Parse converts raw model text into a RankingList. On success the returned
// ranks are exactly 1..len regardless of what the text claimed.
func (p *Parser) Parse(raw string) (models.RankingList, error) {
	obj, err := ExtractObject(raw)
	if err != nil {
		return nil, err
	}

	if err := p.schema.Validate(obj); err != nil {
		return nil, &models.ParseError{Reason: fmt.Sprintf("no recognizable ranked-method section: %v", err)}
	}

	items, _ := obj["top_k"].([]any)
	list := make(models.RankingList, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		method := stringField(entry, "method")
		if method == "" {
			method = stringField(entry, "method_name")
		}
		if method == "" {
			continue
		}
		list = append(list, models.RankEntry{
			Method:        method,
			Score:         scoreField(entry, "score"),
			Justification: stringField(entry, "justification"),
		})
		if len(list) == p.maxEntries {
			break
		}
	}

	if len(list) == 0 {
		return nil, &models.ParseError{Reason: "ranked-method section contains no methods"}
	}

	for i := range list {
		list[i].Rank = i + 1
	}
	return list, nil
}

func stringField(entry map[string]any, key string) string {
	v, ok := entry[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// scoreField extracts a suspicion score, accepting numbers and numeric
// strings, clamping to [0,1] and substituting DefaultScore otherwise.
func scoreField(entry map[string]any, key string) float64 {
	switch v := entry[key].(type) {
	case float64:
		return clamp01(v)
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return clamp01(f)
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return clamp01(f)
		}
	}
	return DefaultScore
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
