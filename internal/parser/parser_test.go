package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"suspect/internal/models"
)

func newParser(t *testing.T, maxEntries int) *Parser {
	t.Helper()
	p, err := New(maxEntries)
	require.NoError(t, err)
	return p
}

func TestParse_SurroundingProseAndFences(t *testing.T) {
	raw := "Sure! After analyzing the failure trace, here is my ranking:\n" +
		"```json\n" +
		`{"top_k": [` +
		`{"method": "black##format_file(src)", "score": 0.9, "justification": "appears in trace"},` +
		`{"method": "black##decode_bytes(src)", "score": 0.4}` +
		"]}\n```\nLet me know if you need more detail."

	list, err := newParser(t, 10).Parse(raw)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, []string{"black##format_file(src)", "black##decode_bytes(src)"}, list.Methods())
	require.Equal(t, 1, list[0].Rank)
	require.Equal(t, 2, list[1].Rank)
	require.Equal(t, 0.9, list[0].Score)
	require.Equal(t, "appears in trace", list[0].Justification)
}

func TestParse_MethodNameKey(t *testing.T) {
	raw := `{"top_k": [{"method_name": "pkg.Cls.run(int)"}]}`

	list, err := newParser(t, 5).Parse(raw)
	require.NoError(t, err)
	require.Equal(t, "pkg.Cls.run(int)", list[0].Method)
}

func TestParse_ScoreHandling(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want float64
	}{
		{"numeric string", `{"top_k": [{"method": "m", "score": "0.75"}]}`, 0.75},
		{"missing score", `{"top_k": [{"method": "m"}]}`, DefaultScore},
		{"non-numeric score", `{"top_k": [{"method": "m", "score": "very high"}]}`, DefaultScore},
		{"clamped above one", `{"top_k": [{"method": "m", "score": 12}]}`, 1.0},
		{"clamped below zero", `{"top_k": [{"method": "m", "score": -3}]}`, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := newParser(t, 5).Parse(tt.raw)
			require.NoError(t, err)
			require.Equal(t, tt.want, list[0].Score)
		})
	}
}

func TestParse_TruncatesToCap(t *testing.T) {
	raw := `{"top_k": [
		{"method": "a", "rank": 10},
		{"method": "b", "rank": 20},
		{"method": "c", "rank": 30}
	]}`

	list, err := newParser(t, 2).Parse(raw)
	require.NoError(t, err)
	require.Len(t, list, 2)
	// Ranks are renumbered regardless of what the text claimed.
	require.Equal(t, 1, list[0].Rank)
	require.Equal(t, 2, list[1].Rank)
}

func TestParse_Failures(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty response", "   \n\t"},
		{"no JSON at all", "I could not find any suspicious methods."},
		{"invalid JSON", `{"top_k": [broken`},
		{"wrong shape", `{"answer": 42}`},
		{"entry without method", `{"top_k": [{"justification": "no idea"}]}`},
		{"empty top_k", `{"top_k": []}`},
	}

	p := newParser(t, 5)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Parse(tt.raw)
			var perr *models.ParseError
			require.ErrorAs(t, err, &perr)
		})
	}
}

func TestExtractObject(t *testing.T) {
	obj, err := ExtractObject("prefix {\"expected_behavior\": [\"a\", \"b\"]} suffix")
	require.NoError(t, err)
	require.Contains(t, obj, "expected_behavior")
}

func TestNew_RejectsNonPositiveCap(t *testing.T) {
	_, err := New(0)
	require.Error(t, err)
}
