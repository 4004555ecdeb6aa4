package dataset

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last source change before
// the loader is invalidated.
const DefaultDebounce = 250 * time.Millisecond

// WatchOptions configures Loader.Watch.
type WatchOptions struct {
	// Debounce defaults to DefaultDebounce.
	Debounce time.Duration
	// OnInvalidate runs after each debounced invalidation.
	OnInvalidate func()
}

// Watch invalidates the loader whenever the source log changes. The watch is
// registered before Watch returns; events are processed until ctx is done.
// The parent directory is watched so that replace-by-rename is seen.
func (l *Loader) Watch(ctx context.Context, opts WatchOptions) error {
	if l.opts.SourcePath == "" {
		return ErrNoSource
	}

	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	target, err := filepath.Abs(l.opts.SourcePath)
	if err != nil {
		return fmt.Errorf("resolve source path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	addErr := watcher.Add(filepath.Dir(target))
	if addErr != nil {
		watcher.Close()

		return fmt.Errorf("watch %s: %w", filepath.Dir(target), addErr)
	}

	go l.watchLoop(ctx, watcher, target, opts)

	return nil
}

func (l *Loader) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, target string, opts WatchOptions) {
	defer watcher.Close()

	var (
		timerMu sync.Mutex
		timer   *time.Timer
	)

	fire := func() {
		l.Invalidate()
		l.logger.InfoContext(ctx, "source log changed, dataset invalidated", "path", target)

		if opts.OnInvalidate != nil {
			opts.OnInvalidate()
		}
	}

	defer func() {
		timerMu.Lock()
		if timer != nil {
			timer.Stop()
		}
		timerMu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}

			if filepath.Clean(event.Name) != target || event.Op == fsnotify.Chmod {
				continue
			}

			timerMu.Lock()
			if timer != nil {
				timer.Stop()
			}

			timer = time.AfterFunc(opts.Debounce, fire)
			timerMu.Unlock()
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return
			}

			l.logger.WarnContext(ctx, "source watch error", "path", target, "error", watchErr)
		}
	}
}
