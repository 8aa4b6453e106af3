package app

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/evalsample/internal/ports"
)

// DefaultDebounceDelay is how long the watcher waits after the last change
// before rerunning.
const DefaultDebounceDelay = 200 * time.Millisecond

// Watcher reruns a function whenever one of a set of input files changes.
type Watcher struct {
	mu    sync.Mutex
	runMu sync.Mutex

	files         map[string]bool
	dirs          []string
	debounceDelay time.Duration
	run           func(ctx context.Context) error
	logger        ports.Logger
	debounce      *time.Timer
	wg            sync.WaitGroup
}

// NewWatcher watches paths. Their parent directories are watched, so files
// replaced by rename (as most editors save) keep being tracked.
func NewWatcher(paths []string, debounce time.Duration, run func(ctx context.Context) error, logger ports.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounceDelay
	}
	w := &Watcher{
		files:         make(map[string]bool, len(paths)),
		debounceDelay: debounce,
		run:           run,
		logger:        logger,
	}
	seen := map[string]bool{}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = filepath.Clean(p)
		}
		w.files[abs] = true
		dir := filepath.Dir(abs)
		if !seen[dir] {
			seen[dir] = true
			w.dirs = append(w.dirs, dir)
		}
	}
	return w
}

// Run executes run once, then again after every debounced change, until
// ctx is canceled. Failed reruns are logged and watching continues.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	for _, dir := range w.dirs {
		if err := fw.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	w.rerun(ctx)

	defer func() {
		w.mu.Lock()
		if w.debounce != nil && w.debounce.Stop() {
			w.wg.Done()
		}
		w.mu.Unlock()
		w.wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.files[filepath.Clean(event.Name)] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.logger.Debug("input changed", ports.String("file", event.Name))
			w.debounceRun(ctx)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", ports.Err(err))
		}
	}
}

func (w *Watcher) debounceRun(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil && w.debounce.Stop() {
		w.wg.Done()
	}
	w.wg.Add(1)
	w.debounce = time.AfterFunc(w.debounceDelay, func() {
		defer w.wg.Done()
		w.rerun(ctx)
	})
}

func (w *Watcher) rerun(ctx context.Context) {
	w.runMu.Lock()
	defer w.runMu.Unlock()
	if ctx.Err() != nil {
		return
	}
	if err := w.run(ctx); err != nil {
		w.logger.Error("run failed", ports.Err(err))
	}
}
