package core

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gwi.com/induction-assistant/internal/store"
)

type memRepo struct {
	mu   sync.Mutex
	data map[string][]store.KnowledgeRecord
}

func newMemRepo(data map[string][]store.KnowledgeRecord) *memRepo {
	return &memRepo{data: data}
}

func (r *memRepo) ListCategories(context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.data))
	for n := range r.data {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

func (r *memRepo) ReadCategory(_ context.Context, name string) ([]store.KnowledgeRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	recs, ok := r.data[name]
	if !ok {
		return nil, fmt.Errorf("category %s: %w", name, store.ErrNotFound)
	}
	return append([]store.KnowledgeRecord(nil), recs...), nil
}

func (r *memRepo) WriteCategory(_ context.Context, name string, recs []store.KnowledgeRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[name] = append([]store.KnowledgeRecord(nil), recs...)
	return nil
}

type fakeGenerator struct {
	mu      sync.Mutex
	reply   string
	err     error
	health  Health
	prompts []string
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	return g.reply, g.err
}

func (g *fakeGenerator) HealthCheck(context.Context) Health { return g.health }

func (g *fakeGenerator) Close() error { return nil }

func (g *fakeGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

var sampleKB = map[string][]store.KnowledgeRecord{
	"fixed_qa": {
		{Question: "What is the leave policy?", Answer: "20 days/year."},
	},
	"benefits": {
		{Question: "Do we have health insurance?", Answer: "Yes, full family cover."},
	},
	"it_support": {
		{Question: "How do I reset my password?", Answer: "Use the self-service portal."},
	},
}

type fixture struct {
	knowledge *store.KnowledgeStore
	settings  *store.SettingsStore
	matcher   *Matcher
}

func newFixture(t *testing.T, data map[string][]store.KnowledgeRecord, opts MatcherOptions) fixture {
	t.Helper()
	cp := make(map[string][]store.KnowledgeRecord, len(data))
	for k, v := range data {
		cp[k] = append([]store.KnowledgeRecord(nil), v...)
	}
	ks := store.NewKnowledgeStore(newMemRepo(cp), "fixed_qa", zerolog.Nop())
	require.NoError(t, ks.Load(context.Background()))
	ss := store.NewSettingsStore()
	return fixture{knowledge: ks, settings: ss, matcher: NewMatcher(ks, ss, opts, zerolog.Nop())}
}

func defaultOpts() MatcherOptions {
	return MatcherOptions{Threshold: DefaultSimilarityThreshold, TopK: DefaultTopK, ContextResults: DefaultContextResults}
}
