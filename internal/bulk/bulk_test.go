package bulk

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Paintersrp/retag/internal/frontmatter"
	"github.com/Paintersrp/retag/internal/vault"
)

type memStore struct {
	mu       sync.Mutex
	texts    map[string]string
	readErr  map[string]error
	writeErr map[string]error
	writes   int
	stale    int
	inFlight int32
	peak     int32
}

func newMemStore(texts map[string]string) *memStore {
	return &memStore{
		texts:    texts,
		readErr:  make(map[string]error),
		writeErr: make(map[string]error),
	}
}

func (s *memStore) ListDocuments() ([]vault.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var docs []vault.Document
	for p := range s.texts {
		docs = append(docs, vault.NewDocument(p))
	}
	slices.SortFunc(docs, func(a, b vault.Document) int { return strings.Compare(a.Path, b.Path) })
	return docs, nil
}

func (s *memStore) ReadText(doc vault.Document) (string, error) {
	n := atomic.AddInt32(&s.inFlight, 1)
	defer atomic.AddInt32(&s.inFlight, -1)
	for {
		peak := atomic.LoadInt32(&s.peak)
		if n <= peak || atomic.CompareAndSwapInt32(&s.peak, peak, n) {
			break
		}
	}
	time.Sleep(2 * time.Millisecond)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.readErr[doc.Path]; err != nil {
		return "", err
	}
	return s.texts[doc.Path], nil
}

func (s *memStore) WriteText(doc vault.Document, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writeErr[doc.Path]; err != nil {
		return err
	}
	s.writes++
	s.texts[doc.Path] = text
	return nil
}

func (s *memStore) ParsedHeader(doc vault.Document) (*frontmatter.Header, error) {
	s.mu.Lock()
	text := s.texts[doc.Path]
	s.mu.Unlock()
	return frontmatter.Parse(text)
}

func (s *memStore) KnownTags() (map[string]int, error) { return nil, nil }

func (s *memStore) NotifyViewsStale() {
	s.mu.Lock()
	s.stale++
	s.mu.Unlock()
}

func mustWriteFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func TestParseTags(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{in: "  project, #important ,, old#tag", want: []string{"project", "important", "oldtag"}},
		{in: "甲，乙, 丙", want: []string{"甲", "乙", "丙"}},
		{in: "##, ,", want: nil},
		{in: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseTags(tt.in); !slices.Equal(got, tt.want) {
				t.Fatalf("ParseTags(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestApplyValidationGating(t *testing.T) {
	store := newMemStore(map[string]string{"a.md": "body"})
	o := New(store, Options{AutoRefresh: true})
	doc := vault.NewDocument("a.md")

	_, err := o.Apply(context.Background(), nil, "x", "")
	var verr *ValidationError
	if !errors.As(err, &verr) || !errors.Is(err, ErrNoSelection) {
		t.Fatalf("expected ErrNoSelection validation error, got %v", err)
	}

	_, err = o.Apply(context.Background(), []vault.Document{doc}, "  ", "\t")
	if !errors.As(err, &verr) || !errors.Is(err, ErrNoTags) {
		t.Fatalf("expected ErrNoTags validation error, got %v", err)
	}

	if store.writes != 0 || store.stale != 0 {
		t.Fatalf("expected no side effects, writes=%d stale=%d", store.writes, store.stale)
	}
}

func TestApplyEndToEnd(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, root, "a.md", "---\ntags: [x, y]\n---\n\nAlpha body.\n")
	mustWriteFile(t, root, "sub/b.md", "Beta body.\n")

	store, err := vault.NewFS(root)
	if err != nil {
		t.Fatalf("NewFS returned error: %v", err)
	}
	docs, err := store.ListDocuments()
	if err != nil {
		t.Fatalf("ListDocuments returned error: %v", err)
	}

	stale := 0
	store.OnStale(func() { stale++ })

	report, err := New(store, Options{AutoRefresh: true}).Apply(context.Background(), docs, "z", "x")
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if report.Processed != 2 {
		t.Fatalf("Processed = %d, want 2", report.Processed)
	}
	if stale != 1 {
		t.Fatalf("expected one refresh signal, got %d", stale)
	}

	check := func(rel string, wantTags []string, wantBody string) {
		t.Helper()
		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			t.Fatalf("read %s: %v", rel, err)
		}
		h, err := frontmatter.Parse(string(data))
		if err != nil || h == nil {
			t.Fatalf("parse %s: %v", rel, err)
		}
		if got := frontmatter.CurrentTags(h.Tags); !slices.Equal(got, wantTags) {
			t.Fatalf("%s tags = %v, want %v", rel, got, wantTags)
		}
		if _, body, _ := frontmatter.Split(string(data)); strings.TrimSpace(body) != wantBody {
			t.Fatalf("%s body = %q, want %q", rel, body, wantBody)
		}
	}
	check("a.md", []string{"y", "z"}, "Alpha body.")
	check("sub/b.md", []string{"z"}, "Beta body.")
}

func TestApplyAggregatesFailures(t *testing.T) {
	store := newMemStore(map[string]string{
		"a.md": "a",
		"b.md": "b",
		"c.md": "c",
	})
	store.readErr["b.md"] = errors.New("read denied")
	store.writeErr["c.md"] = errors.New("disk full")
	docs, _ := store.ListDocuments()

	report, err := New(store, Options{AutoRefresh: true}).Apply(context.Background(), docs, "t", "")

	var batch *BatchError
	if !errors.As(err, &batch) {
		t.Fatalf("expected *BatchError, got %v", err)
	}
	if err.Error() != "processing failed: read denied" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if want := []string{"b.md", "c.md"}; !slices.Equal(batch.Paths(), want) {
		t.Fatalf("failed paths = %v, want %v", batch.Paths(), want)
	}

	var docErr *DocumentError
	if !errors.As(err, &docErr) || docErr.Op != "read" {
		t.Fatalf("expected read DocumentError, got %#v", docErr)
	}

	if report.Processed != 1 || len(report.Failed()) != 2 {
		t.Fatalf("unexpected report %+v", report)
	}
	if store.writes != 1 {
		t.Fatalf("expected the healthy document to be written, writes=%d", store.writes)
	}
	if store.stale != 0 {
		t.Fatalf("expected no refresh after a failed batch, got %d", store.stale)
	}
}

func TestApplyMalformedHeaderIsDocumentFailure(t *testing.T) {
	store := newMemStore(map[string]string{"bad.md": "---\ntags: [a\n---\nbody"})
	docs, _ := store.ListDocuments()

	_, err := New(store, Options{}).Apply(context.Background(), docs, "t", "")

	var docErr *DocumentError
	if !errors.As(err, &docErr) || docErr.Op != "parse" {
		t.Fatalf("expected parse DocumentError, got %v", err)
	}
	if store.writes != 0 {
		t.Fatalf("expected no writes, got %d", store.writes)
	}
}

func TestApplyDryRunDoesNotWrite(t *testing.T) {
	store := newMemStore(map[string]string{"a.md": "body"})
	docs, _ := store.ListDocuments()

	report, err := New(store, Options{AutoRefresh: true, DryRun: true}).Apply(context.Background(), docs, "new", "")
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if !report.DryRun || report.Results[0].NewText != "---\ntags:\n  - new\n---\nbody" {
		t.Fatalf("unexpected dry run report %+v", report)
	}
	if store.writes != 0 || store.stale != 0 {
		t.Fatalf("expected no side effects, writes=%d stale=%d", store.writes, store.stale)
	}
}

func TestApplyWithoutAutoRefresh(t *testing.T) {
	store := newMemStore(map[string]string{"a.md": "body"})
	docs, _ := store.ListDocuments()

	if _, err := New(store, Options{}).Apply(context.Background(), docs, "x", ""); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if store.stale != 0 {
		t.Fatalf("expected no refresh signal, got %d", store.stale)
	}
}

func TestApplyRespectsWorkerLimit(t *testing.T) {
	texts := make(map[string]string)
	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		texts[name+".md"] = "body"
	}
	store := newMemStore(texts)
	docs, _ := store.ListDocuments()

	if _, err := New(store, Options{Workers: 2}).Apply(context.Background(), docs, "x", ""); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if peak := atomic.LoadInt32(&store.peak); peak > 2 {
		t.Fatalf("expected at most 2 concurrent reads, saw %d", peak)
	}
}

func TestApplyStampsUpdated(t *testing.T) {
	store := newMemStore(map[string]string{"a.md": "---\ntitle: x\n---\nbody"})
	docs, _ := store.ListDocuments()
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	_, err := New(store, Options{StampUpdated: true, Now: func() time.Time { return now }}).
		Apply(context.Background(), docs, "t", "")
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if !strings.Contains(store.texts["a.md"], `updated: "2024-01-02T03:04:05.000Z"`) {
		t.Fatalf("expected updated stamp, got %q", store.texts["a.md"])
	}
}

func TestApplyHonorsCanceledContext(t *testing.T) {
	store := newMemStore(map[string]string{"a.md": "body"})
	docs, _ := store.ListDocuments()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New(store, Options{}).Apply(ctx, docs, "x", ""); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if store.writes != 0 {
		t.Fatalf("expected no writes, got %d", store.writes)
	}
}
