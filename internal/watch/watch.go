// Package watch reports changes to Markdown sources, debounced, so a site
// can be regenerated after an editor finishes saving.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/alnah/go-md2site/internal/logfields"
)

// DefaultDebounce is the quiet period before a change batch is delivered.
const DefaultDebounce = 200 * time.Millisecond

// DefaultExtensions are the file extensions that trigger a change.
var DefaultExtensions = []string{".md", ".markdown"}

// ErrNoPaths is returned when there is nothing to watch.
var ErrNoPaths = errors.New("no paths to watch")

// ChangeFunc receives the changed paths of one debounced batch, sorted.
type ChangeFunc func(ctx context.Context, changed []string) error

// Options configures a Watcher.
type Options struct {
	Debounce   time.Duration
	Extensions []string
	Logger     *slog.Logger
}

// Watcher watches files and directories for Markdown changes.
type Watcher struct {
	fs       *fsnotify.Watcher
	files    map[string]bool // explicit files; empty means any matching file
	dirs     map[string]bool
	exts     []string
	debounce time.Duration
	logger   *slog.Logger
}

// New watches paths. Directories are watched for any file with a matching
// extension; files are watched through their directory and only they count.
func New(paths []string, opts Options) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, ErrNoPaths
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	w := &Watcher{
		fs:       fsw,
		files:    make(map[string]bool),
		dirs:     make(map[string]bool),
		exts:     opts.Extensions,
		debounce: opts.Debounce,
		logger:   opts.Logger,
	}
	if len(w.exts) == 0 {
		w.exts = DefaultExtensions
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	if w.logger == nil {
		w.logger = slog.New(slog.DiscardHandler)
	}

	for _, p := range paths {
		if err := w.add(p); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}

	dir := abs
	if !info.IsDir() {
		w.files[abs] = true
		dir = filepath.Dir(abs)
	} else {
		w.dirs[abs] = true
	}
	if err := w.fs.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	return nil
}

// relevant reports whether an event on name should trigger a rebuild.
func (w *Watcher) relevant(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	if w.files[abs] {
		return true
	}
	if !w.dirs[filepath.Dir(abs)] {
		return false
	}
	ext := strings.ToLower(filepath.Ext(abs))
	for _, e := range w.exts {
		if ext == e {
			return true
		}
	}
	return false
}

// Run delivers debounced change batches to fn until ctx ends. Errors from fn
// are logged and do not stop the watcher. Run returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context, fn ChangeFunc) error {
	pending := make(map[string]bool)
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if event.Op == fsnotify.Chmod || !w.relevant(event.Name) {
				continue
			}
			w.logger.Debug("source changed", logfields.File(event.Name), slog.String("op", event.Op.String()))
			pending[event.Name] = true
			timer.Reset(w.debounce)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", logfields.Error(err))

		case <-timer.C:
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			clear(pending)

			if err := fn(ctx, changed); err != nil {
				w.logger.Error("regeneration failed", logfields.Files(len(changed)), logfields.Error(err))
			}
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fs.Close()
}
