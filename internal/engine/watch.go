package engine

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reruns a handler on wikitext files as they are written.
type Watcher struct {
	engine  *Engine
	logger  *zap.Logger
	watcher *fsnotify.Watcher

	// Debounce is how long to wait after an event so that several writes
	// to one file are handled once.
	Debounce time.Duration
}

// NewWatcher watches dirs and every non-hidden directory below them.
func NewWatcher(e *Engine, logger *zap.Logger, dirs ...string) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return fw.Add(path)
		})
		if err != nil {
			fw.Close()
			return nil, fmt.Errorf("error adding directory to watcher: %w", err)
		}
	}

	return &Watcher{
		engine:   e,
		logger:   logger,
		watcher:  fw,
		Debounce: 100 * time.Millisecond,
	}, nil
}

// Run calls handle for every target file written or created until ctx is
// done, then closes the watcher. When the engine has a cache, files whose
// content is already cached are not handled again.
func (w *Watcher) Run(ctx context.Context, handle func(path string)) error {
	defer w.watcher.Close()

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.Debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !w.engine.IsTarget(event.Name) {
				continue
			}
			w.logger.Debug("File changed", zap.String("file", event.Name), zap.Stringer("op", event.Op))
			pending[event.Name] = struct{}{}
			timer.Reset(w.Debounce)

		case <-timer.C:
			for path := range pending {
				if w.engine.unchanged(path) {
					w.logger.Debug("File unchanged", zap.String("file", path))
					continue
				}
				handle(path)
			}
			clear(pending)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Watcher error", zap.Error(err))
		}
	}
}
