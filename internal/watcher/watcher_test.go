package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingReloader struct {
	calls atomic.Int32
}

func (r *countingReloader) Load(context.Context) error {
	r.calls.Add(1)
	return nil
}

func TestWatcherReloadsOnCategoryChange(t *testing.T) {
	dir := t.TempDir()
	reloader := &countingReloader{}

	w, err := New(dir, reloader, 50*time.Millisecond, zerolog.Nop())
	require.NoError(t, err)
	w.Start(context.Background())
	t.Cleanup(func() { w.Close() })

	path := filepath.Join(dir, "benefits.json")
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o644))
	}

	assert.Eventually(t, func() bool { return reloader.calls.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	reloader := &countingReloader{}

	w, err := New(dir, reloader, 20*time.Millisecond, zerolog.Nop())
	require.NoError(t, err)
	w.Start(context.Background())
	t.Cleanup(func() { w.Close() })

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".benefits-123.tmp"), []byte("x"), 0o644))

	time.Sleep(200 * time.Millisecond)
	assert.Zero(t, reloader.calls.Load())
}

func TestRelevant(t *testing.T) {
	assert.True(t, relevant(fsnotify.Event{Name: "/kb/benefits.json", Op: fsnotify.Write}))
	assert.True(t, relevant(fsnotify.Event{Name: "/kb/benefits.json", Op: fsnotify.Remove}))
	assert.False(t, relevant(fsnotify.Event{Name: "/kb/benefits.json", Op: fsnotify.Chmod}))
	assert.False(t, relevant(fsnotify.Event{Name: "/kb/.benefits-1.tmp", Op: fsnotify.Create}))
}

func TestDebouncerCollapsesBursts(t *testing.T) {
	var calls atomic.Int32
	d := NewDebouncer(30*time.Millisecond, func() { calls.Add(1) })

	for i := 0; i < 5; i++ {
		d.Trigger()
	}
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 10*time.Millisecond)

	d.Stop()
	d.Trigger()
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}
