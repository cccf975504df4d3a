package frontmatter

import (
	"slices"
	"strings"
	"testing"
	"time"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantHeader string
		wantBody   string
		wantOK     bool
	}{
		{
			name:       "header and body",
			text:       "---\ntitle: a\n---\n\nbody text\n",
			wantHeader: "title: a",
			wantBody:   "\nbody text\n",
			wantOK:     true,
		},
		{
			name:     "no header",
			text:     "just a body\n",
			wantBody: "just a body\n",
		},
		{
			name:     "unterminated header",
			text:     "---\ntitle: a\n",
			wantBody: "---\ntitle: a\n",
		},
		{
			name:       "horizontal rule in body",
			text:       "---\ntags: [a]\n---\nabove\n---\nbelow",
			wantHeader: "tags: [a]",
			wantBody:   "above\n---\nbelow",
			wantOK:     true,
		},
		{
			name:       "windows line endings",
			text:       "---\r\ntitle: a\r\n---\r\nbody",
			wantHeader: "title: a",
			wantBody:   "body",
			wantOK:     true,
		},
		{
			name:   "empty header",
			text:   "---\n---",
			wantOK: true,
		},
		{
			name:     "trailing spaces after delimiter",
			text:     "---  \ntitle: a\n---\nbody",
			wantBody: "---  \ntitle: a\n---\nbody",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header, body, ok := Split(tt.text)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if header != tt.wantHeader {
				t.Fatalf("header = %q, want %q", header, tt.wantHeader)
			}
			if body != tt.wantBody {
				t.Fatalf("body = %q, want %q", body, tt.wantBody)
			}
		})
	}
}

func TestParsePreservesFieldOrderAndTags(t *testing.T) {
	text := "---\ntitle: Weekly\ntags:\n  - a\n  - b\ndate: 2024-03-01\naliases: [x, y]\ncount: 3\ndraft: true\n---\nbody"

	h, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if !h.HasTags {
		t.Fatal("expected tags field to be present")
	}
	if got := CurrentTags(h.Tags); !slices.Equal(got, []string{"a", "b"}) {
		t.Fatalf("unexpected tags %v", got)
	}

	keys := make([]string, 0, len(h.Fields))
	for _, f := range h.Fields {
		keys = append(keys, f.Key)
	}
	if want := []string{"title", "date", "aliases", "count", "draft"}; !slices.Equal(keys, want) {
		t.Fatalf("field order = %v, want %v", keys, want)
	}

	if v, _ := h.Get("date"); v != "2024-03-01" {
		t.Fatalf("expected date to stay verbatim, got %#v", v)
	}
	if v, _ := h.Get("count"); v != 3 {
		t.Fatalf("expected integer count, got %#v", v)
	}
	if v, _ := h.Get("draft"); v != true {
		t.Fatalf("expected boolean draft, got %#v", v)
	}
}

func TestParseWithoutHeaderReturnsNil(t *testing.T) {
	h, err := Parse("plain body")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if h != nil {
		t.Fatalf("expected nil header, got %+v", h)
	}
}

func TestParseRejectsNonMapping(t *testing.T) {
	if _, err := Parse("---\n- a\n- b\n---\n"); err == nil {
		t.Fatal("expected error for sequence header")
	}
}

func TestCurrentTags(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want []string
	}{
		{name: "nil", raw: nil, want: nil},
		{name: "list", raw: []any{" a ", "b", 3}, want: []string{"a", "b", "3"}},
		{name: "string", raw: "a, b ,, c", want: []string{"a", "b", "c"}},
		{name: "other", raw: map[string]any{"a": 1}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CurrentTags(tt.raw); !slices.Equal(got, tt.want) {
				t.Fatalf("CurrentTags(%v) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestMergeTagsKeepsOrderAndDedups(t *testing.T) {
	got := MergeTags([]string{"a", "b", "c"}, []string{"c", "d"}, []string{"b"})
	if want := []string{"a", "c", "d"}; !slices.Equal(got, want) {
		t.Fatalf("MergeTags = %v, want %v", got, want)
	}
}

func TestSerialize(t *testing.T) {
	got := Serialize([]string{"a", "b"}, []Field{
		{Key: "title", Value: "Weekly"},
		{Key: "aliases", Value: []any{"x", "y"}},
		{Key: "count", Value: 3},
		{Key: "meta", Value: map[string]any{"k": "v"}},
		{Key: "empty", Value: nil},
	})

	want := strings.Join([]string{
		"tags:",
		"  - a",
		"  - b",
		"title: Weekly",
		`aliases: ["x", "y"]`,
		"count: 3",
		`meta: {"k":"v"}`,
		"empty: null",
	}, "\n")

	if got != want {
		t.Fatalf("Serialize mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestSerializeOmitsEmptyTags(t *testing.T) {
	got := Serialize(nil, []Field{{Key: "title", Value: "x"}})
	if strings.Contains(got, "tags:") {
		t.Fatalf("expected no tags block, got %q", got)
	}
}

func TestReplace(t *testing.T) {
	if got := Replace("---\nold: 1\n---\n\n  body\n", "new: 2"); got != "---\nnew: 2\n---\nbody" {
		t.Fatalf("unexpected replace result %q", got)
	}
	if got := Replace("---\nold: 1\n---\n", "new: 2"); got != "---\nnew: 2\n---" {
		t.Fatalf("expected no trailing body, got %q", got)
	}
	if got := Replace("only body", "tags:\n  - z"); got != "---\ntags:\n  - z\n---\nonly body" {
		t.Fatalf("expected body to be kept for header-less note, got %q", got)
	}
}

func TestRewriteWithoutTagsOmitsTagsBlock(t *testing.T) {
	text := "---\ntitle: x\n---\nbody"
	h, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	got := Rewrite(text, h, nil, nil, Options{})
	if got != "---\ntitle: x\n---\nbody" {
		t.Fatalf("unexpected rewrite %q", got)
	}
}

func TestRewriteRoundTrip(t *testing.T) {
	text := "---\ntags:\n  - a\n  - b\ntitle: Note\naliases: [one, two]\ncount: 4\n---\nbody line\n"
	h, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	out := Rewrite(text, h, nil, nil, Options{})

	again, err := Parse(out)
	if err != nil {
		t.Fatalf("re-parse returned error: %v", err)
	}
	if !slices.Equal(CurrentTags(again.Tags), CurrentTags(h.Tags)) {
		t.Fatalf("tags changed: %v vs %v", CurrentTags(again.Tags), CurrentTags(h.Tags))
	}
	if len(again.Fields) != len(h.Fields) {
		t.Fatalf("field count changed: %d vs %d", len(again.Fields), len(h.Fields))
	}
	for i, f := range h.Fields {
		if again.Fields[i].Key != f.Key {
			t.Fatalf("field %d key %q, want %q", i, again.Fields[i].Key, f.Key)
		}
		if stringifyValue(again.Fields[i].Value) != stringifyValue(f.Value) {
			t.Fatalf("field %q value %v, want %v", f.Key, again.Fields[i].Value, f.Value)
		}
	}

	if _, body, _ := Split(out); strings.TrimSpace(body) != "body line" {
		t.Fatalf("body changed: %q", body)
	}
}

func TestRewriteStampsUpdated(t *testing.T) {
	now := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	text := "---\ntitle: x\nupdated: old\n---\nbody"
	h, _ := Parse(text)

	got := Rewrite(text, h, []string{"a"}, nil, Options{StampUpdated: true, Now: func() time.Time { return now }})
	want := "---\ntags:\n  - a\ntitle: x\nupdated: \"2024-05-06T07:08:09.000Z\"\n---\nbody"
	if got != want {
		t.Fatalf("Rewrite = %q, want %q", got, want)
	}
}

func TestRewriteKeepsStringValues(t *testing.T) {
	tests := []struct {
		name  string
		value string
		line  string
	}{
		{name: "mapping-like", value: "a: b", line: `title: "a: b"`},
		{name: "comment-like", value: "#x", line: `title: "#x"`},
		{name: "number-like", value: "123", line: `title: "123"`},
		{name: "empty", value: "", line: `title: ""`},
		{name: "bool-like", value: "true", line: `title: "true"`},
		{name: "inner colon", value: "Note: draft", line: `title: "Note: draft"`},
		{name: "leading space", value: " padded", line: `title: " padded"`},
		{name: "plain", value: "Weekly review", line: "title: Weekly review"},
		{name: "date", value: "2024-01-02", line: "title: 2024-01-02"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &Header{Fields: []Field{{Key: "title", Value: tt.value}}}
			out := Rewrite("body", h, []string{"a"}, nil, Options{})

			header, _, _ := Split(out)
			if !slices.Contains(strings.Split(header, "\n"), tt.line) {
				t.Fatalf("expected line %q in header %q", tt.line, header)
			}

			again, err := Parse(out)
			if err != nil {
				t.Fatalf("re-parse returned error: %v", err)
			}
			if got, _ := again.Get("title"); got != tt.value {
				t.Fatalf("title = %#v, want %q", got, tt.value)
			}
		})
	}
}

func TestRewriteKeepsHashTags(t *testing.T) {
	text := "---\ntags: [\"#a\", b]\n---\nbody"
	h, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	out := Rewrite(text, h, []string{"c"}, nil, Options{})
	if want := "---\ntags:\n  - \"#a\"\n  - b\n  - c\n---\nbody"; out != want {
		t.Fatalf("Rewrite = %q, want %q", out, want)
	}

	again, err := Parse(out)
	if err != nil {
		t.Fatalf("re-parse returned error: %v", err)
	}
	if got, want := CurrentTags(again.Tags), []string{"#a", "b", "c"}; !slices.Equal(got, want) {
		t.Fatalf("tags = %v, want %v", got, want)
	}
}
