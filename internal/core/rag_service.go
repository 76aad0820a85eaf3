package core

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"gwi.com/induction-assistant/internal/store"
	"gwi.com/induction-assistant/internal/utils"
)

type MatchType string

const (
	MatchExact      MatchType = "exact_match"
	MatchSimilarity MatchType = "similarity_search"
	MatchDisabled   MatchType = "disabled_category"
	MatchNone       MatchType = "no_match"
)

const (
	// GeneralCategory is reported for exact matches and misses.
	GeneralCategory = "general"

	DefaultDisabledMessage = "This topic is temporarily disabled by the administrator. Please contact HR."

	DefaultSimilarityThreshold = 0.7
	DefaultTopK                = 3
	DefaultContextResults      = 2
)

// ScoredEntry is a knowledge entry that passed the similarity threshold.
type ScoredEntry struct {
	Entry   store.Entry
	Ratio   float64
	Overlap float64
	Score   float64 // (Ratio + Overlap) / 2
}

// MatchResult is the matcher's decision for one question. For
// MatchDisabled, Context holds the override message.
type MatchResult struct {
	Type     MatchType
	Category string
	Context  string
	Results  []ScoredEntry
}

type MatcherOptions struct {
	Threshold      float64
	TopK           int
	ContextResults int
}

// Matcher decides how a question is answered: exact lookup, disabled
// override, ranked similarity search, or nothing.
type Matcher struct {
	knowledge *store.KnowledgeStore
	settings  *store.SettingsStore
	opts      MatcherOptions
	logger    zerolog.Logger
}

func NewMatcher(knowledge *store.KnowledgeStore, settings *store.SettingsStore, opts MatcherOptions, logger zerolog.Logger) *Matcher {
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultSimilarityThreshold
	}
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	if opts.ContextResults <= 0 {
		opts.ContextResults = DefaultContextResults
	}
	return &Matcher{knowledge: knowledge, settings: settings, opts: opts, logger: logger}
}

// Match never blocks and never fails. The knowledge snapshot and the
// settings are captured once, so a concurrent reload cannot mix states
// within one query.
func (m *Matcher) Match(question string) MatchResult {
	snap := m.knowledge.Snapshot()
	settings := m.settings.Current()
	q := utils.Normalize(question)

	if answer, ok := exactLookup(snap, q); ok {
		result := MatchResult{Type: MatchExact, Category: GeneralCategory, Context: answer}
		return applySettings(settings, result)
	}

	results := m.rank(snap, q)
	if len(results) == 0 {
		m.logger.Debug().Str("question", q).Float64("threshold", m.opts.Threshold).Msg("No knowledge entry above threshold")
		return MatchResult{Type: MatchNone, Category: GeneralCategory}
	}

	top := results[0].Entry.Category
	if cs := settings.Lookup(top); !cs.Enabled {
		return disabled(top, cs)
	}

	kept := results[:0:0]
	for _, r := range results {
		if settings.Lookup(r.Entry.Category).Enabled {
			kept = append(kept, r)
		}
	}
	if len(kept) > m.opts.TopK {
		kept = kept[:m.opts.TopK]
	}

	m.logger.Debug().Str("category", top).Int("results", len(kept)).Float64("top_score", kept[0].Score).Msg("Similarity match")
	return MatchResult{
		Type:     MatchSimilarity,
		Category: top,
		Context:  buildContext(kept, m.opts.ContextResults),
		Results:  kept,
	}
}

func exactLookup(snap *store.Snapshot, q string) (string, bool) {
	if q == "" {
		return "", false
	}
	for _, e := range snap.Fixed() {
		if e.NormQuestion != "" && e.NormQuestion == q {
			return e.Record.Answer, true
		}
	}
	return "", false
}

// rank scores every general record and returns all of them above the
// threshold, best first. Ties keep enumeration order (category name, then
// position).
func (m *Matcher) rank(snap *store.Snapshot, q string) []ScoredEntry {
	words := utils.Words(q)

	var scored []ScoredEntry
	for _, cat := range snap.Categories() {
		for _, e := range snap.Entries(cat) {
			if e.NormQuestion == "" {
				continue
			}
			ratio := utils.SimilarityRatio(q, e.NormQuestion)
			overlap := utils.KeywordOverlap(words, e.NormQuestion, e.NormAnswer)
			score := (ratio + overlap) / 2
			if score >= m.opts.Threshold {
				scored = append(scored, ScoredEntry{Entry: e, Ratio: ratio, Overlap: overlap, Score: score})
			}
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

func applySettings(settings store.Settings, result MatchResult) MatchResult {
	if cs := settings.Lookup(result.Category); !cs.Enabled {
		return disabled(result.Category, cs)
	}
	return result
}

func disabled(category string, cs store.CategorySetting) MatchResult {
	msg := cs.Message
	if msg == "" {
		msg = DefaultDisabledMessage
	}
	return MatchResult{Type: MatchDisabled, Category: category, Context: msg}
}

func buildContext(results []ScoredEntry, n int) string {
	if len(results) > n {
		results = results[:n]
	}
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = fmt.Sprintf("Q: %s\nA: %s", r.Entry.Record.Question, r.Entry.Record.Answer)
	}
	return strings.Join(parts, "\n\n")
}
