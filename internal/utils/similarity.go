package utils

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// SimilarityRatio returns the Ratcliff/Obershelp ratio 2*M/(len(a)+len(b))
// over code points, with difflib's auto-junk heuristic for long b. Two empty
// strings are identical (1.0).
//
// The result may differ with argument order: ties between equally long
// blocks resolve to the earliest position in a, then in b.
func SimilarityRatio(a, b string) float64 {
	if a == "" && b == "" {
		return 1.0
	}
	return difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, "")).Ratio()
}

// KeywordOverlap is the fraction of words that occur as a substring of at
// least one haystack. It is 0 when there are no words.
func KeywordOverlap(words []string, haystacks ...string) float64 {
	if len(words) == 0 {
		return 0
	}
	hits := 0
	for _, w := range words {
		for _, h := range haystacks {
			if strings.Contains(h, w) {
				hits++
				break
			}
		}
	}
	return float64(hits) / float64(len(words))
}
