package core

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gwi.com/induction-assistant/internal/store"
)

func TestMatchExact(t *testing.T) {
	f := newFixture(t, sampleKB, defaultOpts())

	got := f.matcher.Match("what is the leave policy")
	assert.Equal(t, MatchExact, got.Type)
	assert.Equal(t, GeneralCategory, got.Category)
	assert.Equal(t, "20 days/year.", got.Context)

	got = f.matcher.Match("  WHAT is the LEAVE policy???  ")
	assert.Equal(t, MatchExact, got.Type)
}

func TestMatchExactRespectsGeneralSetting(t *testing.T) {
	f := newFixture(t, sampleKB, defaultOpts())
	f.settings.Replace(store.Settings{GeneralCategory: {Enabled: false}})

	got := f.matcher.Match("What is the leave policy?")
	assert.Equal(t, MatchDisabled, got.Type)
	assert.Equal(t, GeneralCategory, got.Category)
	assert.Equal(t, DefaultDisabledMessage, got.Context)
}

func TestMatchFixedSetIsNotSearched(t *testing.T) {
	f := newFixture(t, sampleKB, defaultOpts())
	// Close to the fixed question but not equal after normalization.
	got := f.matcher.Match("what is the leave policy please")
	assert.NotEqual(t, MatchExact, got.Type)
	for _, r := range got.Results {
		assert.NotEqual(t, "fixed_qa", r.Entry.Category)
	}
}

func TestMatchSimilarity(t *testing.T) {
	f := newFixture(t, sampleKB, defaultOpts())

	got := f.matcher.Match("How do I reset my password")
	require.Equal(t, MatchSimilarity, got.Type)
	assert.Equal(t, "it_support", got.Category)
	require.Len(t, got.Results, 1)
	assert.InDelta(t, 1.0, got.Results[0].Score, 1e-9)
	assert.Equal(t, "Q: How do I reset my password?\nA: Use the self-service portal.", got.Context)
}

func TestMatchNone(t *testing.T) {
	f := newFixture(t, sampleKB, defaultOpts())

	got := f.matcher.Match("What is the meaning of life?")
	assert.Equal(t, MatchNone, got.Type)
	assert.Equal(t, GeneralCategory, got.Category)
	assert.Empty(t, got.Context)
	assert.Empty(t, got.Results)
}

func TestMatchDisabledTopCategory(t *testing.T) {
	f := newFixture(t, sampleKB, defaultOpts())
	f.settings.Replace(store.Settings{"benefits": {Enabled: false, Message: "Ask HR directly."}})

	got := f.matcher.Match("Do we have health insurance?")
	assert.Equal(t, MatchDisabled, got.Type)
	assert.Equal(t, "benefits", got.Category)
	assert.Equal(t, "Ask HR directly.", got.Context)
}

func TestMatchDropsDisabledLowerResults(t *testing.T) {
	kb := map[string][]store.KnowledgeRecord{
		"a_cat": {{Question: "How do I reset my password today?", Answer: "A"}},
		"b_cat": {{Question: "How do I reset my password?", Answer: "B"}},
	}
	f := newFixture(t, kb, defaultOpts())

	got := f.matcher.Match("how do i reset my password")
	require.Len(t, got.Results, 2)
	assert.Equal(t, "b_cat", got.Results[0].Entry.Category)
	assert.Equal(t, "a_cat", got.Results[1].Entry.Category)

	f.settings.ReplaceDisabled([]string{"a_cat"})
	got = f.matcher.Match("how do i reset my password")
	assert.Equal(t, MatchSimilarity, got.Type)
	require.Len(t, got.Results, 1)
	assert.Equal(t, "b_cat", got.Results[0].Entry.Category)
	assert.NotContains(t, got.Context, "today")
}

func TestMatchRankingTiesAndLimits(t *testing.T) {
	rec := store.KnowledgeRecord{Question: "Where is the office?", Answer: "Main street."}
	kb := map[string][]store.KnowledgeRecord{
		"c_cat": {rec},
		"a_cat": {rec},
		"d_cat": {rec},
		"b_cat": {rec},
	}
	f := newFixture(t, kb, defaultOpts())

	got := f.matcher.Match("where is the office")
	require.Equal(t, MatchSimilarity, got.Type)
	require.Len(t, got.Results, DefaultTopK)
	assert.Equal(t, "a_cat", got.Category)
	assert.Equal(t, "a_cat", got.Results[0].Entry.Category)
	assert.Equal(t, "b_cat", got.Results[1].Entry.Category)
	assert.Equal(t, "c_cat", got.Results[2].Entry.Category)
	assert.Equal(t, 2, strings.Count(got.Context, "Q: Where is the office?"))
}

func TestMatchSkipsEmptyQuestions(t *testing.T) {
	kb := map[string][]store.KnowledgeRecord{
		"it_support": {{Question: "", Answer: "reset my password"}},
	}
	f := newFixture(t, kb, MatcherOptions{Threshold: 0.4})

	got := f.matcher.Match("reset my password")
	assert.Equal(t, MatchNone, got.Type)
}

func TestMatchSeesReloadedSnapshot(t *testing.T) {
	f := newFixture(t, sampleKB, defaultOpts())
	require.Equal(t, MatchNone, f.matcher.Match("Which laptop do I get?").Type)

	require.NoError(t, f.knowledge.AppendItem(context.Background(), "it_tools", store.KnowledgeRecord{
		Question: "Which laptop do I get?", Answer: "A MacBook.",
	}))
	got := f.matcher.Match("Which laptop do I get?")
	assert.Equal(t, MatchSimilarity, got.Type)
	assert.Equal(t, "it_tools", got.Category)
}

func TestMatchTopKCountsOnlyEnabledCategories(t *testing.T) {
	rec := store.KnowledgeRecord{Question: "Where is the office?", Answer: "Main street."}
	kb := map[string][]store.KnowledgeRecord{
		"a_cat": {rec},
		"b_cat": {rec, rec},
		"c_cat": {rec},
	}
	f := newFixture(t, kb, defaultOpts())
	f.settings.ReplaceDisabled([]string{"b_cat"})

	got := f.matcher.Match("where is the office")
	require.Equal(t, MatchSimilarity, got.Type)
	require.Len(t, got.Results, 2)
	assert.Equal(t, "a_cat", got.Results[0].Entry.Category)
	assert.Equal(t, "c_cat", got.Results[1].Entry.Category)
	assert.Equal(t, 2, strings.Count(got.Context, "Q: Where is the office?"))
}

func TestMatchEmptyKnowledgeBase(t *testing.T) {
	f := newFixture(t, map[string][]store.KnowledgeRecord{}, defaultOpts())

	for _, q := range []string{"What is the leave policy?", "How do I reset my password?", "hello", ""} {
		got := f.matcher.Match(q)
		assert.Equal(t, MatchNone, got.Type, q)
		assert.Equal(t, GeneralCategory, got.Category, q)
		assert.Empty(t, got.Context, q)
		assert.Empty(t, got.Results, q)
	}
}

func TestNewMatcherDefaults(t *testing.T) {
	f := newFixture(t, sampleKB, MatcherOptions{})

	assert.Equal(t, DefaultSimilarityThreshold, f.matcher.opts.Threshold)
	assert.Equal(t, DefaultTopK, f.matcher.opts.TopK)
	assert.Equal(t, DefaultContextResults, f.matcher.opts.ContextResults)
	assert.Equal(t, MatchNone, f.matcher.Match("What is the meaning of life?").Type)
}
