package rules

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"github.com/ivang/receipt-archive/internal/links"
	"github.com/ivang/receipt-archive/internal/tags"
)

// Watcher holds the active rule snapshot and swaps it atomically when the
// rules file changes on disk. Resolvers read through Current on every
// call, so concurrent requests may legitimately observe different rule
// versions without any locking.
type Watcher struct {
	path    string
	current atomic.Pointer[Snapshot]
	fsw     *fsnotify.Watcher
}

// NewWatcher loads the rules file and starts watching its directory.
// The directory rather than the file is watched because editors and
// configuration management typically replace the file wholesale.
func NewWatcher(path string) (*Watcher, error) {
	snapshot, err := Load(path)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating rules watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching rules directory: %w", err)
	}

	w := &Watcher{path: path, fsw: fsw}
	w.current.Store(snapshot)
	return w, nil
}

// Current returns the active snapshot.
func (w *Watcher) Current() *Snapshot {
	return w.current.Load()
}

// TagRules is a tags.Provider over the active snapshot.
func (w *Watcher) TagRules() []tags.CompiledRule {
	return w.Current().TagRules
}

// LinkGroups is a links.Provider over the active snapshot.
func (w *Watcher) LinkGroups() []links.RuleGroup {
	return w.Current().LinkGroups
}

// Run processes file events until the context is cancelled. A broken edit
// keeps the previous snapshot active.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.reload()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Error("rules watcher error", "error", err)
		}
	}
}

func (w *Watcher) reload() {
	snapshot, err := Load(w.path)
	if err != nil {
		slog.Error("reloading rules", "path", w.path, "error", err)
		return
	}
	w.current.Store(snapshot)
	slog.Info("rules reloaded",
		"path", w.path,
		"tag_rules", len(snapshot.TagRules),
		"link_groups", len(snapshot.LinkGroups),
	)
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
