package ingestion

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"go.uber.org/zap"

	"github.com/Benny93/graphleague-go/internal/storage"
)

// DefaultDebounce is how long the watcher waits for changes to settle.
const DefaultDebounce = 2 * time.Second

// WatchOptions tunes Watch.
type WatchOptions struct {
	Pipeline Options
	Debounce time.Duration

	// OnReload, when set, is called after every reload attempt.
	OnReload func(*PipelineResult, error)
}

// Watch monitors the champion data at dataPath and reloads the store whenever
// it changes. A failed reload keeps the previous store contents. Blocks until
// the context is cancelled.
func Watch(ctx context.Context, dataPath string, store storage.StorageBackend, opts WatchOptions) error {
	logger := opts.Pipeline.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	root, err := filepath.Abs(dataPath)
	if err != nil {
		return err
	}
	info, err := os.Stat(root)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	// A single file is watched through its directory so that editors which
	// replace the file on save are still seen.
	var filter func(string) bool
	if info.IsDir() {
		patterns, err := loadGitignore(root)
		if err != nil {
			return err
		}
		matcher := newMatcher(patterns)
		if err := watchTree(watcher, root, root, matcher); err != nil {
			return fmt.Errorf("setting up watcher: %w", err)
		}
		filter = func(path string) bool { return shouldWatchFile(path, root, matcher) }
	} else {
		if err := watcher.Add(filepath.Dir(root)); err != nil {
			return fmt.Errorf("setting up watcher: %w", err)
		}
		filter = func(path string) bool { return path == root }
	}

	batchTimer := time.NewTimer(debounce)
	batchTimer.Stop()
	pending := 0

	logger.Info("watching champion data", zap.String("path", root))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if info.IsDir() && event.Has(fsnotify.Create) {
				if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() {
					if err := watcher.Add(event.Name); err != nil {
						logger.Warn("watching new directory", zap.String("dir", event.Name), zap.Error(err))
					}
					continue
				}
			}
			if event.Has(fsnotify.Chmod) || !filter(event.Name) {
				continue
			}

			pending++
			batchTimer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", zap.Error(err))

		case <-batchTimer.C:
			if pending == 0 {
				continue
			}
			logger.Info("champion data changed, reloading", zap.Int("events", pending))
			pending = 0

			_, result, err := RunPipeline(ctx, root, store, opts.Pipeline)
			if err != nil {
				logger.Error("reload failed, keeping previous data", zap.Error(err))
			}
			if opts.OnReload != nil {
				opts.OnReload(result, err)
			}
		}
	}
}

// watchTree adds dir and every non-ignored directory below it.
func watchTree(watcher *fsnotify.Watcher, root, dir string, matcher gitignore.Matcher) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && shouldSkipDir(d.Name(), path, root, matcher) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

// shouldWatchFile reports whether a change to path affects the data.
func shouldWatchFile(path, root string, matcher gitignore.Matcher) bool {
	relPath, err := filepath.Rel(root, path)
	if err != nil || relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return false
	}
	if filepath.Base(path) == ".gitignore" && filepath.Dir(relPath) == "." {
		return true
	}
	if !isDataFile(path) {
		return false
	}
	return !matcher.Match(splitPath(relPath), false)
}
