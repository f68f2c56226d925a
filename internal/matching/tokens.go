// Package matching scores candidate matches between bank movements and
// ledger entries, creditors or correction documents. All functions are
// pure over the snapshots they receive; the host fetches candidates and
// persists confirmations.
package matching

import (
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
)

// stopwords are tokens that carry no identity: legal-form suffixes,
// articles and connectors common in Dutch counterpart names.
var stopwords = map[string]bool{
	"de": true, "het": true, "een": true, "en": true, "van": true,
	"bv": true, "nv": true, "vof": true, "the": true, "of": true,
	"and": true, "groep": true, "group": true,
}

// tokenize lowercases, splits on non-alphanumerics and drops stopwords and
// single-character fragments.
func tokenize(s string) []string {
	var tokens []string
	for _, t := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if len(t) < 2 || stopwords[t] {
			continue
		}
		tokens = append(tokens, t)
	}
	return tokens
}

// tokensEqual treats tokens within one edit of each other as the same,
// absorbing export typos and truncations.
func tokensEqual(a, b string) bool {
	if a == b {
		return true
	}
	if len(a) < 4 || len(b) < 4 {
		return false
	}
	return levenshtein.ComputeDistance(a, b) <= 1
}

// tokenOverlap counts how many tokens of a also occur in b.
func tokenOverlap(a, b []string) int {
	overlap := 0
	for _, ta := range a {
		for _, tb := range b {
			if tokensEqual(ta, tb) {
				overlap++
				break
			}
		}
	}
	return overlap
}

// namesOverlap reports whether a creditor or counterpart name textually
// overlaps a free-text field: containment either way, or at least one
// shared significant token.
func namesOverlap(name, text string) bool {
	n := strings.ToLower(strings.TrimSpace(name))
	t := strings.ToLower(strings.TrimSpace(text))
	if n == "" || t == "" {
		return false
	}
	if strings.Contains(t, n) || strings.Contains(n, t) {
		return true
	}
	return tokenOverlap(tokenize(name), tokenize(text)) >= 1
}
