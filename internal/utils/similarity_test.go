package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarityRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "hello", "hello", 1.0},
		{"both empty", "", "", 1.0},
		{"one empty", "", "abc", 0.0},
		{"disjoint", "abc", "xyz", 0.0},
		{"shifted block", "abcd", "bcde", 0.75},
		{"tide diet", "tide", "diet", 0.25},
		{"diet tide", "diet", "tide", 0.5},
		{"dropped word", "what is the leave policy", "what is leave policy", 40.0 / 44.0},
		{"popular runes only extend", strings.Repeat("a", 10), strings.Repeat("a", 200), 20.0 / 210.0},
		{"popular runes between seeds", "xa" + strings.Repeat("a", 8) + "y", "x" + strings.Repeat("a", 198) + "y", 22.0 / 211.0},
		{"short b keeps every rune", strings.Repeat("a", 200), strings.Repeat("a", 10), 20.0 / 210.0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, SimilarityRatio(tc.a, tc.b), 1e-9)
		})
	}
}

func TestSimilarityRatioBounds(t *testing.T) {
	pairs := [][2]string{
		{"how do i contact hr", "who should i contact for it issues"},
		{"what time does work start", "what are the office timings"},
		{"dress code", "what is the dress code"},
	}
	for _, p := range pairs {
		r := SimilarityRatio(p[0], p[1])
		assert.GreaterOrEqual(t, r, 0.0)
		assert.LessOrEqual(t, r, 1.0)
	}
}

func TestSimilarityRatioCountsCodePoints(t *testing.T) {
	// Each é is one element, not two bytes.
	assert.InDelta(t, 1.0, SimilarityRatio("café", "café"), 1e-9)
	assert.InDelta(t, 6.0/8.0, SimilarityRatio("café", "cafe"), 1e-9)
}

func TestKeywordOverlap(t *testing.T) {
	tests := []struct {
		name     string
		words    []string
		haystack string
		want     float64
	}{
		{"no words", nil, "anything", 0},
		{"all present", []string{"leave", "policy"}, "what is the leave policy", 1},
		{"half present", []string{"leave", "salary"}, "what is the leave policy", 0.5},
		{"substring counts", []string{"pol"}, "policy", 1},
		{"none present", []string{"xyz"}, "policy", 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, KeywordOverlap(tc.words, tc.haystack), 1e-9)
		})
	}
}

func TestKeywordOverlapAcrossHaystacks(t *testing.T) {
	words := []string{"leave", "days", "salary"}
	got := KeywordOverlap(words, "what is the leave policy", "20 days per year")
	assert.InDelta(t, 2.0/3.0, got, 1e-9)
}
