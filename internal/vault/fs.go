package vault

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/Paintersrp/retag/internal/cache"
	"github.com/Paintersrp/retag/internal/constants"
	"github.com/Paintersrp/retag/internal/frontmatter"
	"github.com/Paintersrp/retag/internal/logging"
	"github.com/Paintersrp/retag/internal/pathutil"
)

const defaultHeaderCacheSize = 1024

// FS is a Store backed by a directory of markdown files.
type FS struct {
	root      string
	ignored   map[string]struct{}
	headers   *cache.LRUCache[*frontmatter.Header]
	log       *logging.Logger
	mu        sync.Mutex
	listeners []func()
}

// Option configures an FS.
type Option func(*FS)

// WithIgnoredFolders skips folders matching a vault-relative path or a bare
// folder name.
func WithIgnoredFolders(folders ...string) Option {
	return func(f *FS) {
		for _, folder := range folders {
			if cleaned := pathutil.CleanRelative(folder); cleaned != "" {
				f.ignored[cleaned] = struct{}{}
			}
		}
	}
}

// WithHeaderCacheSize bounds the number of parsed headers kept in memory.
func WithHeaderCacheSize(size int) Option {
	return func(f *FS) {
		f.headers = cache.NewLRUCache[*frontmatter.Header](size)
	}
}

// NewFS opens the vault rooted at root, which must be an existing directory.
func NewFS(root string, opts ...Option) (*FS, error) {
	normalized := pathutil.NormalizePath(root)
	if normalized == "" {
		return nil, errors.New("vault: root cannot be empty")
	}
	abs, err := filepath.Abs(normalized)
	if err != nil {
		return nil, fmt.Errorf("vault: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("vault: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("vault: root is not a directory: %s", abs)
	}

	f := &FS{
		root:    abs,
		ignored: make(map[string]struct{}),
		headers: cache.NewLRUCache[*frontmatter.Header](defaultHeaderCacheSize),
		log:     logging.Get("vault"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Root returns the absolute vault directory.
func (f *FS) Root() string {
	return f.root
}

// safePath resolves rel against the root and rejects anything escaping it.
func (f *FS) safePath(rel string) (string, error) {
	if rel == "" {
		return "", errors.New("vault: empty document path")
	}
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("vault: absolute paths not allowed: %s", rel)
	}
	abs := filepath.Join(f.root, cleaned)
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("vault: path escapes vault root: %s", rel)
	}
	return abs, nil
}

func (f *FS) skipDir(rel, name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	if _, ok := f.ignored[rel]; ok {
		return true
	}
	_, ok := f.ignored[name]
	return ok
}

// ListDocuments returns every markdown note sorted by path.
func (f *FS) ListDocuments() ([]Document, error) {
	var docs []Document
	err := filepath.WalkDir(f.root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if errors.Is(walkErr, fs.ErrPermission) {
				return filepath.SkipDir
			}
			return walkErr
		}

		rel, err := pathutil.VaultRelative(f.root, p)
		if err != nil {
			return err
		}

		if d.IsDir() {
			if p != f.root && f.skipDir(rel, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if !strings.EqualFold(filepath.Ext(d.Name()), constants.NoteExt) {
			return nil
		}
		docs = append(docs, NewDocument(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("vault: list: %w", err)
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs, nil
}

// Lookup returns the document for a vault-relative path if it exists.
func (f *FS) Lookup(rel string) (Document, error) {
	rel = pathutil.CleanRelative(rel)
	abs, err := f.safePath(rel)
	if err != nil {
		return Document{}, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Document{}, fmt.Errorf("vault: lookup %s: %w", rel, err)
	}
	if info.IsDir() {
		return Document{}, fmt.Errorf("vault: %s is a folder", rel)
	}
	return NewDocument(rel), nil
}

func (f *FS) ReadText(doc Document) (string, error) {
	abs, err := f.safePath(doc.Path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return "", fmt.Errorf("vault: read %s: %w", doc.Path, err)
	}
	return string(data), nil
}

// WriteText replaces the note atomically (temp file, fsync, rename) and drops
// its cached header.
func (f *FS) WriteText(doc Document, text string) error {
	abs, err := f.safePath(doc.Path)
	if err != nil {
		return err
	}

	perm := os.FileMode(0o644)
	if info, err := os.Stat(abs); err == nil {
		perm = info.Mode().Perm()
	}

	dir := filepath.Dir(abs)
	tmp, err := os.CreateTemp(dir, ".retag-tmp-*")
	if err != nil {
		return fmt.Errorf("vault: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.WriteString(text); err != nil {
		return fmt.Errorf("vault: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("vault: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("vault: close temp: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("vault: chmod temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("vault: rename: %w", err)
	}
	success = true

	f.headers.Remove(doc.Path)
	f.log.Debug("wrote document", "path", doc.Path, "bytes", len(text))
	return nil
}

// ParsedHeader returns the cached header of doc, parsing the note on a miss.
// Parse failures are returned and not cached.
func (f *FS) ParsedHeader(doc Document) (*frontmatter.Header, error) {
	if h, ok := f.headers.Get(doc.Path); ok {
		return h, nil
	}

	text, err := f.ReadText(doc)
	if err != nil {
		return nil, err
	}
	h, err := frontmatter.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("vault: header of %s: %w", doc.Path, err)
	}

	f.headers.Put(doc.Path, h)
	return h, nil
}

// KnownTags counts inline body tags and header tags across the vault. Notes
// that cannot be read or parsed are logged and skipped.
func (f *FS) KnownTags() (map[string]int, error) {
	docs, err := f.ListDocuments()
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, doc := range docs {
		text, err := f.ReadText(doc)
		if err != nil {
			f.log.Warn("skipping unreadable note", "path", doc.Path, "err", err)
			continue
		}

		_, body, _ := frontmatter.Split(text)
		for _, tag := range InlineTags(body) {
			counts["#"+tag]++
		}

		h, err := f.ParsedHeader(doc)
		if err != nil {
			f.log.Warn("skipping malformed header", "path", doc.Path, "err", err)
			continue
		}
		if h == nil || !h.HasTags {
			continue
		}
		for _, tag := range frontmatter.CurrentTags(h.Tags) {
			if tag = strings.TrimPrefix(tag, "#"); tag != "" {
				counts["#"+tag]++
			}
		}
	}
	return counts, nil
}

// Invalidate drops the cached header of a single note.
func (f *FS) Invalidate(rel string) {
	f.headers.Remove(pathutil.CleanRelative(rel))
}

// OnStale registers fn to run on every NotifyViewsStale.
func (f *FS) OnStale(fn func()) {
	if fn == nil {
		return
	}
	f.mu.Lock()
	f.listeners = append(f.listeners, fn)
	f.mu.Unlock()
}

// NotifyViewsStale purges cached headers and runs the registered listeners.
func (f *FS) NotifyViewsStale() {
	f.headers.Purge()

	f.mu.Lock()
	listeners := append([]func(){}, f.listeners...)
	f.mu.Unlock()

	f.log.Debug("views stale", "listeners", len(listeners))
	for _, fn := range listeners {
		fn()
	}
}

var _ Store = (*FS)(nil)
