package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Aman-CERP/layer/internal/scanner"
)

// Targets are the locations a Watcher observes.
type Targets struct {
	// Root is the work tree root.
	Root string
	// GitDir is the git directory; only info/exclude inside it is reported.
	GitDir string
	// GlobalPath is the global excludes file. Optional.
	GlobalPath string
}

// Watcher watches a work tree with fsnotify.
type Watcher struct {
	fs        *fsnotify.Watcher
	debouncer *Debouncer
	targets   Targets
	opts      Options
	skip      map[string]struct{}
	errors    chan error
	stopCh    chan struct{}
	mu        sync.Mutex
	stopped   bool
}

// New creates a watcher. Nothing is watched until Start.
func New(targets Targets, opts Options) (*Watcher, error) {
	opts = opts.WithDefaults()

	root, err := filepath.Abs(targets.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve absolute path: %w", err)
	}
	targets.Root = root
	if targets.GitDir == "" {
		targets.GitDir = filepath.Join(root, ".git")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	skip := map[string]struct{}{".git": {}}
	for _, d := range opts.SkipDirs {
		skip[d] = struct{}{}
	}

	return &Watcher{
		fs:        fsw,
		debouncer: NewDebouncer(opts.DebounceWindow, opts.EventBufferSize),
		targets:   targets,
		opts:      opts,
		skip:      skip,
		errors:    make(chan error, 10),
		stopCh:    make(chan struct{}),
	}, nil
}

// Start registers the watches and processes events until ctx is done or
// Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addTree(); err != nil {
		return fmt.Errorf("add directories to watcher: %w", err)
	}
	w.addOptional(filepath.Join(w.targets.GitDir, "info"))
	if w.targets.GlobalPath != "" {
		w.addOptional(filepath.Dir(w.targets.GlobalPath))
	}

	for {
		select {
		case <-ctx.Done():
			_ = w.Stop()
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.emitError(err)
		}
	}
}

// addTree watches the root and every directory down to MaxDepth.
func (w *Watcher) addTree() error {
	return filepath.WalkDir(w.targets.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == w.targets.Root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		rel := w.rel(p)
		if rel != "" && w.skipped(rel) {
			return filepath.SkipDir
		}
		if err := w.fs.Add(p); err != nil {
			slog.Debug("cannot watch directory", slog.String("path", p), slog.String("error", err.Error()))
		}
		if scanner.Depth(rel) >= w.opts.MaxDepth {
			return filepath.SkipDir
		}
		return nil
	})
}

func (w *Watcher) addOptional(dir string) {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return
	}
	if err := w.fs.Add(dir); err != nil {
		slog.Debug("cannot watch directory", slog.String("path", dir), slog.String("error", err.Error()))
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op == fsnotify.Chmod {
		return
	}

	name := filepath.Clean(event.Name)
	if w.isRulesFile(name) {
		w.debouncer.Add(FileEvent{Path: w.display(name), Operation: OpRulesChange, Timestamp: time.Now()})
		return
	}
	if !w.inTree(name) {
		return
	}

	rel := w.rel(name)
	if rel == "" || w.skipped(rel) || scanner.Depth(rel) > w.opts.MaxDepth {
		return
	}

	isDir := false
	if info, err := os.Stat(name); err == nil {
		isDir = info.IsDir()
	}

	var op Operation
	switch {
	case event.Op.Has(fsnotify.Create):
		op = OpCreate
		if isDir && scanner.Depth(rel) <= w.opts.MaxDepth {
			if err := w.fs.Add(name); err != nil {
				slog.Debug("cannot watch new directory", slog.String("path", name), slog.String("error", err.Error()))
			}
		}
	case event.Op.Has(fsnotify.Write):
		op = OpModify
	case event.Op.Has(fsnotify.Remove):
		op = OpDelete
	case event.Op.Has(fsnotify.Rename):
		op = OpRename
	default:
		return
	}

	w.debouncer.Add(FileEvent{Path: rel, Operation: op, IsDir: isDir, Timestamp: time.Now()})
}

func (w *Watcher) isRulesFile(name string) bool {
	switch {
	case name == filepath.Join(w.targets.GitDir, "info", "exclude"):
		return true
	case w.targets.GlobalPath != "" && name == filepath.Clean(w.targets.GlobalPath):
		return true
	case filepath.Base(name) == scanner.IgnoreFile:
		return w.inTree(name) && !w.skipped(w.rel(name))
	}
	return false
}

// inTree reports whether name is under the root and outside the git dir.
func (w *Watcher) inTree(name string) bool {
	if !strings.HasPrefix(name, w.targets.Root+string(filepath.Separator)) {
		return false
	}
	return !strings.HasPrefix(name, w.targets.GitDir+string(filepath.Separator))
}

func (w *Watcher) rel(name string) string {
	rel, err := filepath.Rel(w.targets.Root, name)
	if err != nil || rel == "." {
		return ""
	}
	return filepath.ToSlash(rel)
}

// display is the repo-relative path when name is inside the root.
func (w *Watcher) display(name string) string {
	if strings.HasPrefix(name, w.targets.Root+string(filepath.Separator)) {
		return w.rel(name)
	}
	return name
}

func (w *Watcher) skipped(rel string) bool {
	for _, part := range strings.Split(rel, "/") {
		if _, ok := w.skip[part]; ok {
			return true
		}
	}
	return false
}

func (w *Watcher) emitError(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	select {
	case w.errors <- err:
	default:
		slog.Warn("watcher error dropped", slog.String("error", err.Error()))
	}
}

// Events returns debounced batches. The channel closes on Stop.
func (w *Watcher) Events() <-chan []FileEvent {
	return w.debouncer.Output()
}

// Errors returns non-fatal watcher errors. The channel closes on Stop.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Stop releases the watcher. Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.stopCh)
	err := w.fs.Close()
	w.debouncer.Stop()
	close(w.errors)
	return err
}
