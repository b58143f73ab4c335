// Package normalize canonicalizes method identifiers so that Java-style
// notation (pkg.Class.method(ParamTypes)) and Python-style notation
// (module$Class#method(params), module##function(params)) compare by plain
// string equality.
package normalize

import (
	"strings"
	"unicode"

	"suspect/internal/models"
)

// ParamPolicy controls whether parameter-list variations (overloads) are
// treated as distinct methods or merged into one.
type ParamPolicy int

const (
	// ParamsDistinct keeps parameter lists, so overloads stay distinct.
	ParamsDistinct ParamPolicy = iota
	// ParamsMerged strips the trailing parameter list before comparison.
	ParamsMerged
)

// Method applies the canonicalization rules in order: "$" -> ".",
// "##" -> ".", then all whitespace removed. The two substitutions target
// disjoint substrings, so their order does not matter, and the whole
// transform is idempotent.
func Method(id string) string {
	id = strings.ReplaceAll(id, "$", ".")
	id = strings.ReplaceAll(id, "##", ".")
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, id)
}

// WithPolicy normalizes id and applies the overload policy. It fails with a
// NormalizationError when nothing identifiable remains.
func WithPolicy(id string, policy ParamPolicy) (string, error) {
	n := Method(id)
	if policy == ParamsMerged {
		if i := strings.Index(n, "("); i >= 0 {
			n = n[:i]
		}
	}
	if n == "" {
		return "", &models.NormalizationError{Identifier: id}
	}
	return n, nil
}

// Set normalizes every identifier in ids under the given policy. Identifiers
// that cannot be normalized are skipped and counted, not fatal.
func Set(ids []string, policy ParamPolicy) (map[string]struct{}, int) {
	out := make(map[string]struct{}, len(ids))
	skipped := 0
	for _, id := range ids {
		n, err := WithPolicy(id, policy)
		if err != nil {
			skipped++
			continue
		}
		out[n] = struct{}{}
	}
	return out, skipped
}
