package layout

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Score returned when one normalized text contains the other.
const CONTAINMENT_SIMILARITY = 0.9

// NormalizeText collapses whitespace, applies NFKC and folds case.
func NormalizeText(text string) string {
	return cases.Fold().String(norm.NFKC.String(strings.Join(strings.Fields(text), " ")))
}

// Similarity compares two texts after normalization.
// Containment of one non-empty text in the other short-circuits to a high score.
func Similarity(a string, b string) float64 {
	left, right := NormalizeText(a), NormalizeText(b)
	if left == right {
		return 1
	}
	if left == "" || right == "" {
		return 0
	}
	ratio := Ratio(left, right)
	if strings.Contains(left, right) || strings.Contains(right, left) {
		return max(ratio, CONTAINMENT_SIMILARITY)
	}
	return ratio
}

// Ratio is the Ratcliff/Obershelp similarity 2*M/T over runes, where M is the number of
// characters in matching blocks and T the total length of both strings.
// Popular runes of texts of 200 or more characters are treated as junk.
func Ratio(a string, b string) float64 {
	return difflib.NewMatcher(runes(a), runes(b)).Ratio()
}

func runes(text string) []string {
	result := make([]string, 0, len(text))
	for _, r := range text {
		result = append(result, string(r))
	}
	return result
}
