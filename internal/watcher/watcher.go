// Package watcher reloads the knowledge base when its category files change
// on disk.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const DefaultDebounce = 500 * time.Millisecond

// Reloader is implemented by store.KnowledgeStore.
type Reloader interface {
	Load(ctx context.Context) error
}

type Watcher struct {
	dir       string
	reloader  Reloader
	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer
	logger    zerolog.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
}

func New(dir string, reloader Reloader, debounce time.Duration, logger zerolog.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fs watcher: %w", err)
	}
	if err := fsWatcher.Add(dir); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w := &Watcher{
		dir:       dir,
		reloader:  reloader,
		fsWatcher: fsWatcher,
		logger:    logger,
		done:      make(chan struct{}),
	}
	w.debouncer = NewDebouncer(debounce, w.reload)
	return w, nil
}

// Start handles events until ctx is cancelled or Close is called.
func (w *Watcher) Start(ctx context.Context) {
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.logger.Info().Str("dir", w.dir).Msg("Watching knowledge base directory")
	go w.handleEvents()
}

func (w *Watcher) handleEvents() {
	defer close(w.done)
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !relevant(event) {
				continue
			}
			w.logger.Debug().Str("path", event.Name).Str("op", event.Op.String()).Msg("Knowledge file changed")
			w.debouncer.Trigger()

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Msg("File watcher error")
		}
	}
}

// relevant keeps changes to category files and ignores the temp files of
// atomic writes.
func relevant(event fsnotify.Event) bool {
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") || !strings.HasSuffix(base, ".json") {
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}

func (w *Watcher) reload() {
	if err := w.reloader.Load(w.ctx); err != nil {
		w.logger.Error().Err(err).Msg("Knowledge base reload failed, keeping previous snapshot")
		return
	}
	w.logger.Info().Msg("Knowledge base reloaded after file change")
}

func (w *Watcher) Close() error {
	w.debouncer.Stop()
	if w.cancel != nil {
		w.cancel()
		<-w.done
	}
	return w.fsWatcher.Close()
}
