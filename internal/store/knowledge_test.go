package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func newJSONStore(t *testing.T) (*KnowledgeStore, string) {
	t.Helper()
	dir := t.TempDir()
	repo, err := NewJSONRepository(dir, zerolog.Nop())
	require.NoError(t, err)
	return NewKnowledgeStore(repo, "fixed_qa", zerolog.Nop()), dir
}

func TestKnowledgeStoreLoad(t *testing.T) {
	ks, dir := newJSONStore(t)
	writeFile(t, dir, "fixed_qa.json", `[{"question": "What is the leave policy?", "answer": "20 days/year."}]`)
	writeFile(t, dir, "benefits.json", `[{"question": "Do we have health insurance?", "answer": "Yes, full family cover."}]`)
	writeFile(t, dir, "it_support.json", `[{"question": "How do I reset my password?"}, "not an object", {"answer": 42}]`)
	writeFile(t, dir, "notes.txt", "ignored")

	require.NoError(t, ks.Load(context.Background()))

	assert.Equal(t, []string{"benefits", "it_support"}, ks.Categories())

	snap := ks.Snapshot()
	require.Len(t, snap.Fixed(), 1)
	assert.Equal(t, "what is the leave policy", snap.Fixed()[0].NormQuestion)
	assert.Equal(t, 4, snap.Size())

	info, err := ks.CategoryInfo("it_support")
	require.NoError(t, err)
	assert.Equal(t, 3, info.Count)
	assert.Equal(t, KnowledgeRecord{Question: "How do I reset my password?"}, info.Items[0])
	assert.Equal(t, KnowledgeRecord{}, info.Items[1])
	assert.Equal(t, KnowledgeRecord{}, info.Items[2])

	fixed, err := ks.CategoryInfo("fixed_qa")
	require.NoError(t, err)
	assert.Equal(t, 1, fixed.Count)

	_, err = ks.CategoryInfo("payroll")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestKnowledgeStoreEmptyDirectory(t *testing.T) {
	ks, _ := newJSONStore(t)
	require.NoError(t, ks.Load(context.Background()))
	assert.Empty(t, ks.Categories())
	assert.Empty(t, ks.Snapshot().Fixed())
}

func TestKnowledgeStoreLoadFailureKeepsPreviousSnapshot(t *testing.T) {
	ks, dir := newJSONStore(t)
	writeFile(t, dir, "benefits.json", `[{"question": "Q1", "answer": "A1"}]`)
	require.NoError(t, ks.Load(context.Background()))
	before := ks.Snapshot()

	writeFile(t, dir, "broken.json", `[{"question": `)
	err := ks.Load(context.Background())

	var perr *PersistenceError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "broken", perr.Category)
	assert.Same(t, before, ks.Snapshot())
}

func TestKnowledgeStoreMutations(t *testing.T) {
	ctx := context.Background()
	ks, dir := newJSONStore(t)
	require.NoError(t, ks.Load(ctx))

	require.NoError(t, ks.ReplaceCategory(ctx, "benefits", []KnowledgeRecord{
		{Question: "Q1", Answer: "A1"},
		{Question: "Q2", Answer: "A2"},
	}))
	assert.Equal(t, []string{"benefits"}, ks.Categories())
	assert.FileExists(t, filepath.Join(dir, "benefits.json"))

	require.NoError(t, ks.AppendItem(ctx, "benefits", KnowledgeRecord{Question: "Q3", Answer: "A3"}))
	require.NoError(t, ks.AppendItem(ctx, "onboarding", KnowledgeRecord{Question: "First day?", Answer: "Come at 9."}))

	info, err := ks.CategoryInfo("benefits")
	require.NoError(t, err)
	assert.Equal(t, []string{"Q1", "Q2", "Q3"}, questions(info.Items))

	require.NoError(t, ks.DeleteItem(ctx, "benefits", 1))
	info, err = ks.CategoryInfo("benefits")
	require.NoError(t, err)
	assert.Equal(t, []string{"Q1", "Q3"}, questions(info.Items))

	assert.ErrorIs(t, ks.DeleteItem(ctx, "benefits", 2), ErrIndexOutOfRange)
	assert.ErrorIs(t, ks.DeleteItem(ctx, "benefits", -1), ErrIndexOutOfRange)
	assert.ErrorIs(t, ks.DeleteItem(ctx, "payroll", 0), ErrNotFound)

	assert.ErrorIs(t, ks.AppendItem(ctx, "benefits", KnowledgeRecord{Question: "  "}), ErrInvalidRecord)
	assert.ErrorIs(t, ks.ReplaceCategory(ctx, "../etc", nil), ErrInvalidCategory)

	items, err := ks.Items(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestKnowledgeStoreConcurrentReadsSeeWholeSnapshots(t *testing.T) {
	ctx := context.Background()
	ks, _ := newJSONStore(t)
	require.NoError(t, ks.ReplaceCategory(ctx, "a", []KnowledgeRecord{{Question: "v0", Answer: "v0"}}))
	require.NoError(t, ks.ReplaceCategory(ctx, "b", []KnowledgeRecord{{Question: "v0", Answer: "v0"}}))

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			snap := ks.Snapshot()
			a, b := snap.Entries("a"), snap.Entries("b")
			if len(a) == 1 && len(b) == 1 {
				// "a" is always written before "b", so b can never be ahead.
				assert.LessOrEqual(t, b[0].Record.Question, a[0].Record.Question)
			}
		}
	}()

	for _, v := range []string{"v1", "v2", "v3"} {
		require.NoError(t, ks.ReplaceCategory(ctx, "a", []KnowledgeRecord{{Question: v, Answer: v}}))
		require.NoError(t, ks.ReplaceCategory(ctx, "b", []KnowledgeRecord{{Question: v, Answer: v}}))
	}
	close(stop)
	wg.Wait()
}

func questions(recs []KnowledgeRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Question
	}
	return out
}
