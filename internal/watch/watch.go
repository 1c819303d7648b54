// Package watch reports changes to dataset files so the viewer can reload
// them.
package watch

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher watches files for changes and delivers their paths on Changes,
// debounced per file.
type Watcher struct {
	watcher  *fsnotify.Watcher
	log      *zap.Logger
	debounce time.Duration

	mu     sync.Mutex
	files  map[string]bool
	dirs   map[string]int
	timers map[string]*time.Timer

	changes chan string
	done    chan struct{}
	once    sync.Once
}

// New creates a watcher. Call Start to begin delivering events.
func New(debounce time.Duration, log *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{
		watcher:  fw,
		log:      log,
		debounce: debounce,
		files:    make(map[string]bool),
		dirs:     make(map[string]int),
		timers:   make(map[string]*time.Timer),
		changes:  make(chan string, 8),
		done:     make(chan struct{}),
	}, nil
}

// Changes yields the absolute path of each changed file.
func (w *Watcher) Changes() <-chan string { return w.changes }

// Watch adds file. The parent directory is watched so that editors that
// replace the file on save are still seen.
func (w *Watcher) Watch(file string) error {
	abs, err := filepath.Abs(file)
	if err != nil {
		return fmt.Errorf("failed to resolve path %s: %w", file, err)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.files[abs] {
		return nil
	}
	dir := filepath.Dir(abs)
	if w.dirs[dir] == 0 {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	w.dirs[dir]++
	w.files[abs] = true
	return nil
}

// Unwatch removes file.
func (w *Watcher) Unwatch(file string) error {
	abs, err := filepath.Abs(file)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.files[abs] {
		return nil
	}
	delete(w.files, abs)
	if t, ok := w.timers[abs]; ok {
		t.Stop()
		delete(w.timers, abs)
	}
	dir := filepath.Dir(abs)
	w.dirs[dir]--
	if w.dirs[dir] == 0 {
		delete(w.dirs, dir)
		return w.watcher.Remove(dir)
	}
	return nil
}

// Start begins watching for file changes
func (w *Watcher) Start() {
	go func() {
		for {
			select {
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
					w.handle(filepath.Clean(event.Name))
				}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				w.log.Warn("watcher error", zap.Error(err))
			}
		}
	}()
}

func (w *Watcher) handle(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.files[path] {
		return
	}
	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		select {
		case w.changes <- path:
			w.log.Debug("file changed", zap.String("path", path))
		case <-w.done:
		}
	})
}

// Close stops the watcher. Pending notifications are dropped.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		w.mu.Lock()
		for _, t := range w.timers {
			t.Stop()
		}
		w.mu.Unlock()
		err = w.watcher.Close()
	})
	return err
}
