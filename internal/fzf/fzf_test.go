package fzf

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/ktr0731/go-fuzzyfinder"

	"github.com/Paintersrp/retag/internal/vault"
)

func newVault(t *testing.T, files map[string]string) *vault.FS {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
	store, err := vault.NewFS(root)
	if err != nil {
		t.Fatalf("NewFS returned error: %v", err)
	}
	return store
}

func TestPickReturnsChosenDocuments(t *testing.T) {
	store := newVault(t, map[string]string{
		"a.md":     "---\ntags: [x, y]\n---\nbody",
		"b.md":     "no header",
		"sub/c.md": "---\ntags: [\n---\n",
	})

	var gotLabels []string
	p := NewPicker(store, "pick")
	p.find = func(docs []vault.Document, label func(int) string, _ ...fuzzyfinder.Option) ([]int, error) {
		for i := range docs {
			gotLabels = append(gotLabels, label(i))
		}
		return []int{2, 0, 2}, nil
	}

	picked, err := p.Pick("")
	if err != nil {
		t.Fatalf("Pick returned error: %v", err)
	}

	var paths []string
	for _, d := range picked {
		paths = append(paths, d.Path)
	}
	if want := []string{"sub/c.md", "a.md"}; !slices.Equal(paths, want) {
		t.Fatalf("picked = %v, want %v", paths, want)
	}

	wantLabels := []string{
		"a.md [Tags: x, y] ",
		"b.md [No tags] ",
		"sub/c.md [Invalid header] ",
	}
	if !slices.Equal(gotLabels, wantLabels) {
		t.Fatalf("labels = %q, want %q", gotLabels, wantLabels)
	}
}

func TestPickAbort(t *testing.T) {
	store := newVault(t, map[string]string{"a.md": "x"})

	p := NewPicker(store, "")
	p.find = func([]vault.Document, func(int) string, ...fuzzyfinder.Option) ([]int, error) {
		return nil, fuzzyfinder.ErrAbort
	}
	if _, err := p.Pick(""); !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}

	p.find = func([]vault.Document, func(int) string, ...fuzzyfinder.Option) ([]int, error) {
		return nil, nil
	}
	if _, err := p.Pick(""); !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted for empty choice, got %v", err)
	}
}

func TestRenderPreviewOutOfRange(t *testing.T) {
	p := NewPicker(newVault(t, nil), "")
	if got := p.renderPreview(-1, 10, 10); got != "" {
		t.Fatalf("expected empty preview, got %q", got)
	}
}
