package vault

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/Paintersrp/retag/internal/constants"
	"github.com/Paintersrp/retag/internal/pathutil"
)

// ErrClosed is returned when a watcher is used after Close.
var ErrClosed = errors.New("vault: watcher closed")

// Watcher keeps an FS header cache honest while notes change on disk.
type Watcher struct {
	watcher  *fsnotify.Watcher
	store    *FS
	done     chan struct{}
	once     sync.Once
	mu       sync.Mutex
	onChange func(string)
	closed   bool
}

// Watch starts a recursive watch of the store's root. Changed notes have
// their cached header invalidated until Close is called.
func Watch(store *FS) (*Watcher, error) {
	if store == nil {
		return nil, errors.New("vault: nil store")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher: fw,
		store:   store,
		done:    make(chan struct{}),
	}
	if err := w.addRecursive(store.Root()); err != nil {
		_ = w.Close()
		return nil, err
	}

	go w.loop()
	return w, nil
}

// OnChange registers a callback that receives the vault-relative path of
// every changed note.
func (w *Watcher) OnChange(fn func(string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

func (w *Watcher) Close() error {
	if w == nil {
		return nil
	}

	var closeErr error
	w.once.Do(func() {
		w.mu.Lock()
		w.closed = true
		w.mu.Unlock()
		close(w.done)
		closeErr = w.watcher.Close()
	})
	return closeErr
}

// Add watches an extra directory below the root.
func (w *Watcher) Add(dir string) error {
	w.mu.Lock()
	closed := w.closed
	w.mu.Unlock()
	if closed {
		return ErrClosed
	}
	return w.addRecursive(dir)
}

func (w *Watcher) loop() {
	logger := w.store.log
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addRecursive(event.Name); err != nil {
						logger.Warn("watch new folder", "path", event.Name, "err", err)
					}
					continue
				}
			}

			rel := w.relevantPath(event)
			if rel == "" {
				continue
			}

			w.store.Invalidate(rel)
			logger.Debug("note changed", "path", rel, "op", event.Op.String())

			w.mu.Lock()
			fn := w.onChange
			w.mu.Unlock()
			if fn != nil {
				fn(rel)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if err != nil {
				logger.Warn("watcher error", "err", err)
			}
		}
	}
}

func (w *Watcher) addRecursive(root string) error {
	normalized := pathutil.NormalizePath(root)
	return filepath.WalkDir(normalized, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrPermission) {
				return filepath.SkipDir
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != w.store.Root() {
			if rel, err := pathutil.VaultRelative(w.store.Root(), p); err == nil && w.store.skipDir(rel, d.Name()) {
				return filepath.SkipDir
			}
		}
		return w.watcher.Add(p)
	})
}

func (w *Watcher) relevantPath(event fsnotify.Event) string {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return ""
	}

	rel, err := pathutil.VaultRelative(w.store.Root(), event.Name)
	if err != nil || rel == "." || rel == "" || strings.HasPrefix(rel, "..") {
		return ""
	}
	if !strings.EqualFold(filepath.Ext(rel), constants.NoteExt) {
		return ""
	}
	return rel
}
