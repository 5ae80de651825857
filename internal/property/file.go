// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package property

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	xglog "github.com/ManuGH/hwcomposer/internal/log"
)

// FileFlag mirrors a property file. The parent directory is watched so
// atomic replace (write temp, rename) is picked up; a missing file reads
// as false.
type FileFlag struct {
	path   string
	value  atomic.Bool
	logger zerolog.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	wg      sync.WaitGroup
}

var _ Flag = (*FileFlag)(nil)

// NewFileFlag reads path once. Call Start to follow changes.
func NewFileFlag(path string) *FileFlag {
	f := &FileFlag{
		path:   filepath.Clean(path),
		logger: xglog.WithComponent("property"),
	}
	f.refresh()
	return f
}

func (f *FileFlag) Enabled() bool {
	return f.value.Load()
}

// Path returns the watched file.
func (f *FileFlag) Path() string {
	return f.path
}

// Start watches the property file until ctx is cancelled or Close is called.
func (f *FileFlag) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.watcher != nil {
		return errors.New("property watcher already started")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(f.path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch property dir: %w", err)
	}
	f.watcher = watcher
	f.refresh()

	f.logger.Info().
		Str("event", "property.watcher_started").
		Str("path", f.path).
		Bool("enabled", f.Enabled()).
		Msg("watching property file")

	f.wg.Add(1)
	go f.watchLoop(ctx, watcher)
	return nil
}

func (f *FileFlag) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer f.wg.Done()
	for {
		select {
		case <-ctx.Done():
			_ = watcher.Close()
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != f.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				f.refresh()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			f.logger.Error().
				Err(err).
				Str("event", "property.watcher_error").
				Msg("property watcher error")
		}
	}
}

func (f *FileFlag) refresh() {
	next := false
	raw, err := os.ReadFile(f.path)
	switch {
	case err == nil:
		next = ParseBool(string(raw))
	case !errors.Is(err, fs.ErrNotExist):
		f.logger.Warn().Err(err).
			Str("event", "property.read_failed").
			Str("path", f.path).
			Msg("failed to read property file")
		return
	}
	if prev := f.value.Swap(next); prev != next {
		f.logger.Info().
			Str("event", "property.changed").
			Str("path", f.path).
			Bool("enabled", next).
			Msg("property changed")
	}
}

// Close stops the watcher and waits for its goroutine.
func (f *FileFlag) Close() error {
	f.mu.Lock()
	w := f.watcher
	f.mu.Unlock()
	if w == nil {
		return nil
	}
	err := w.Close()
	f.wg.Wait()
	return err
}
