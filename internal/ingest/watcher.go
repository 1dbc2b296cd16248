package ingest

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

type WatchConfig struct {
	Roots       []string            // directories to watch (recursive)
	AllowedExts map[string]struct{} // nil -> constants.AllowedExtensions
	InitialScan bool                // walk roots and emit existing files first
	Debounce    time.Duration       // coalesce rapid create/write bursts per path
	SkipHidden  bool
	Logger      *slog.Logger
}

// StartWatcher emits paths of new or rewritten invoice files under the roots
// until ctx is done. Both channels are closed on exit.
func StartWatcher(ctx context.Context, cfg WatchConfig) (<-chan string, <-chan error, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.Roots) == 0 {
		logger.Error("watcher start failed: no roots provided")
		return nil, nil, errors.New("no roots provided")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Error("failed to create fsnotify watcher", "error", err)
		return nil, nil, err
	}

	// addDir watches root and every directory below it. With collect set it
	// also returns the invoice files already present.
	addDir := func(root string, collect bool) ([]string, error) {
		var found []string
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if cfg.SkipHidden && path != root && IsHidden(path) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return w.Add(path)
			}
			if collect && AllowedExt(filepath.Ext(path), cfg.AllowedExts) {
				found = append(found, path)
			}
			return nil
		})
		return found, err
	}

	var initial []string
	for _, r := range cfg.Roots {
		found, err := addDir(r, cfg.InitialScan)
		if err != nil {
			logger.Error("failed to add root directory", "root", r, "error", err)
			_ = w.Close()
			return nil, nil, err
		}
		initial = append(initial, found...)
	}

	evCh := make(chan string, 256)
	errCh := make(chan error, 1)

	go func() {
		defer close(evCh)
		defer close(errCh)
		defer func() {
			if err := w.Close(); err != nil {
				logger.Warn("failed to close watcher", "error", err)
			}
		}()

		emit := func(p string) bool {
			select {
			case evCh <- p:
				return true
			case <-ctx.Done():
				return false
			}
		}
		for _, p := range initial {
			if !emit(p) {
				return
			}
		}

		pending := map[string]time.Time{}
		var tick <-chan time.Time
		if cfg.Debounce > 0 {
			t := time.NewTicker(max(cfg.Debounce/2, time.Millisecond))
			defer t.Stop()
			tick = t.C
		}

		// queue emits p now or parks it until the debounce window passes.
		queue := func(p string) bool {
			if cfg.Debounce <= 0 {
				return emit(p)
			}
			pending[p] = time.Now()
			return true
		}

		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if e.Op.Has(fsnotify.Create) {
					if info, err := os.Stat(e.Name); err == nil && info.IsDir() {
						// a directory moved in arrives with its files already inside
						found, err := addDir(e.Name, true)
						if err != nil {
							logger.Warn("failed to add new directory to watcher", "path", e.Name, "error", err)
						}
						for _, p := range found {
							if !queue(p) {
								return
							}
						}
						continue
					}
				}
				if !e.Op.Has(fsnotify.Create) && !e.Op.Has(fsnotify.Write) {
					continue
				}
				if !AllowedExt(filepath.Ext(e.Name), cfg.AllowedExts) || (cfg.SkipHidden && IsHidden(e.Name)) {
					continue
				}
				if !queue(e.Name) {
					return
				}
			case now := <-tick:
				for p, last := range pending {
					if now.Sub(last) < cfg.Debounce {
						continue
					}
					delete(pending, p)
					if !emit(p) {
						return
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Error("watcher error", "error", err)
				select {
				case errCh <- err:
				default:
				}
			}
		}
	}()

	logger.Info("watcher started", "roots", cfg.Roots, "debounce", cfg.Debounce)
	return evCh, errCh, nil
}
