package tags

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Paintersrp/retag/internal/i18n"
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

func TestSortedCounts(t *testing.T) {
	got := sortedCounts(map[string]int{"#b": 1, "#a": 1, "#c": 4})
	want := []tagCount{{"#c", 4}, {"#a", 1}, {"#b", 1}}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestRenderTableLimit(t *testing.T) {
	out := renderTable(map[string]int{"#alpha": 3, "#beta": 2, "#gamma": 1}, 2)
	if !strings.Contains(out, "#alpha") || !strings.Contains(out, "#beta") {
		t.Fatalf("expected top tags in table:\n%s", out)
	}
	if strings.Contains(out, "#gamma") {
		t.Fatalf("expected limit to drop #gamma:\n%s", out)
	}
	if strings.Index(out, "#alpha") > strings.Index(out, "#beta") {
		t.Fatalf("expected most used tag first:\n%s", out)
	}
}

func TestRunQuerySuggests(t *testing.T) {
	store := newVault(t, map[string]string{
		"a.md": "---\ntags: [project, proto]\n---\n#improve",
	})

	var out bytes.Buffer
	if err := run(store, i18n.New("en"), &out, "pro", 0); err != nil {
		t.Fatalf("run returned error: %v", err)
	}
	if got, want := out.String(), "#proto\n#improve\n#project\n"; got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
}

func TestRunEmptyVault(t *testing.T) {
	store := newVault(t, map[string]string{"a.md": "plain"})

	var out bytes.Buffer
	if err := run(store, i18n.New("en"), &out, "", 0); err != nil {
		t.Fatalf("run returned error: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "No tags in vault" {
		t.Fatalf("output = %q", got)
	}
}
