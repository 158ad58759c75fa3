package notes

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/slighter12/toolbelt-mcp-go/logger"
)

// Change describes one filesystem event under the storage root.
type Change struct {
	Filename string
	Op       string
}

// Watcher reports files created, written, removed or renamed in the
// storage root by anything, including other processes. Temporary files
// from in-flight writes are skipped.
type Watcher struct {
	root     string
	onChange func(Change)
	fsw      *fsnotify.Watcher
}

// NewWatcher starts watching root. onChange may be nil.
func NewWatcher(root string, onChange func(Change)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(root); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", root, err)
	}
	return &Watcher{root: root, onChange: onChange, fsw: fsw}, nil
}

// Run dispatches events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()
	logger.InfoContext(ctx, "Watching storage root", "root", w.root)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				logger.WarnContext(ctx, "Storage watcher dropped events", "root", w.root)
				continue
			}
			logger.ErrorContext(ctx, "Storage watcher error", "root", w.root, "error", err)
		}
	}
}

// Close stops the watcher; Run returns shortly after.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) handle(ctx context.Context, ev fsnotify.Event) {
	name := filepath.Base(ev.Name)
	if strings.HasPrefix(name, ".") {
		return
	}

	var op string
	switch {
	case ev.Has(fsnotify.Create):
		op = "create"
	case ev.Has(fsnotify.Write):
		op = "write"
	case ev.Has(fsnotify.Remove):
		op = "remove"
	case ev.Has(fsnotify.Rename):
		op = "rename"
	default:
		return
	}

	logger.DebugContext(ctx, "Storage root changed", "filename", name, "op", op)
	if w.onChange != nil {
		w.onChange(Change{Filename: name, Op: op})
	}
}
