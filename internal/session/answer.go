package session

import (
	"strings"

	"github.com/lexivo/lexivo/internal/catalog"
)

// normalizeAnswer lowercases and collapses internal whitespace so that
// "  La  Casa " and "la casa" compare equal.
func normalizeAnswer(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// EvaluateAnswer checks a learner's answer against an exercise. Any
// element of the accepted-answers set counts as fully correct. A miss
// still earns a partial-credit accuracy score (0-100) measured as the
// character-position overlap against the primary answer, so downstream
// consumers can tell "close" from "wrong".
func EvaluateAnswer(ex *catalog.Exercise, userAnswer string) (correct bool, accuracy float64) {
	got := normalizeAnswer(userAnswer)
	want := normalizeAnswer(ex.Answer)

	if got == want {
		return true, 100
	}
	for _, alt := range ex.AcceptedAnswers {
		if got == normalizeAnswer(alt) {
			return true, 100
		}
	}

	return false, overlapScore(got, want)
}

// overlapScore returns the proportion of character positions at which the
// two normalized strings agree, scaled to 0-100 over the longer length.
// Positions are runes, not bytes: a multibyte character ("ñ", "é") must
// count as one position or every position after it is compared misaligned.
func overlapScore(got, want string) float64 {
	g := []rune(got)
	w := []rune(want)
	if len(g) == 0 || len(w) == 0 {
		return 0
	}

	longer := len(w)
	if len(g) > longer {
		longer = len(g)
	}

	matches := 0
	for i := 0; i < len(g) && i < len(w); i++ {
		if g[i] == w[i] {
			matches++
		}
	}

	return float64(matches) / float64(longer) * 100
}
