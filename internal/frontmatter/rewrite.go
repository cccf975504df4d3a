package frontmatter

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// UpdatedKey is the field stamped when Options.StampUpdated is set.
const UpdatedKey = "updated"

// Options tune Rewrite.
type Options struct {
	// StampUpdated writes an `updated` field holding the rewrite time.
	StampUpdated bool
	// Now supplies the stamp time. Defaults to time.Now.
	Now func() time.Time
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// CurrentTags flattens a raw `tags` value into trimmed strings. Lists are
// stringified per element, strings are split on commas, anything else yields
// no tags.
func CurrentTags(tags any) []string {
	var out []string
	appendTag := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}

	switch v := tags.(type) {
	case []any:
		for _, item := range v {
			if item == nil {
				continue
			}
			appendTag(fmt.Sprint(item))
		}
	case []string:
		for _, item := range v {
			appendTag(item)
		}
	case string:
		for _, piece := range strings.Split(v, ",") {
			appendTag(piece)
		}
	}

	return out
}

// MergeTags drops every removed tag from existing, appends add, and keeps the
// first occurrence of each tag.
func MergeTags(existing, add, remove []string) []string {
	removed := make(map[string]struct{}, len(remove))
	for _, t := range remove {
		removed[t] = struct{}{}
	}

	merged := make([]string, 0, len(existing)+len(add))
	seen := make(map[string]struct{}, len(existing)+len(add))
	push := func(t string) {
		if _, dup := seen[t]; dup {
			return
		}
		seen[t] = struct{}{}
		merged = append(merged, t)
	}

	for _, t := range existing {
		if _, drop := removed[t]; drop {
			continue
		}
		push(t)
	}
	for _, t := range add {
		push(t)
	}

	return merged
}

// Serialize renders header lines: the tags block first (omitted entirely when
// tags is empty), then every field in order.
func Serialize(tags []string, fields []Field) string {
	lines := make([]string, 0, len(tags)+len(fields)+1)
	if len(tags) > 0 {
		lines = append(lines, TagsKey+":")
		for _, t := range tags {
			lines = append(lines, "  - "+scalarText(t))
		}
	}

	for _, f := range fields {
		lines = append(lines, f.Key+": "+stringifyValue(f.Value))
	}

	return strings.Join(lines, "\n")
}

// quotedString is a value always written as a double-quoted scalar.
type quotedString string

// plainSafe reports whether s, written bare, reads back as the same string.
func plainSafe(s string) bool {
	if s == "" || strings.TrimSpace(s) != s {
		return false
	}
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(s), &doc); err != nil || len(doc.Content) != 1 {
		return false
	}
	n := doc.Content[0]
	if n.Kind != yaml.ScalarNode || n.Style != 0 || n.Value != s {
		return false
	}
	switch n.ShortTag() {
	case "!!str", "!!timestamp":
		return true
	}
	return false
}

// quoteString renders s as a double-quoted scalar.
func quoteString(s string) string {
	var b strings.Builder
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return fmt.Sprintf("%q", s)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func scalarText(s string) string {
	if plainSafe(s) {
		return s
	}
	return quoteString(s)
}

func stringifyValue(value any) string {
	switch v := value.(type) {
	case string:
		return scalarText(v)
	case quotedString:
		return quoteString(string(v))
	case []any:
		quoted := make([]string, len(v))
		for i, item := range v {
			if item == nil {
				quoted[i] = `"null"`
				continue
			}
			quoted[i] = quoteString(fmt.Sprint(item))
		}
		return "[" + strings.Join(quoted, ", ") + "]"
	case []string:
		quoted := make([]string, len(v))
		for i, item := range v {
			quoted[i] = quoteString(item)
		}
		return "[" + strings.Join(quoted, ", ") + "]"
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprint(value)
	}
	return string(data)
}

// Replace swaps the header of text for header and keeps the body, trimmed of
// surrounding whitespace. Text without a header is treated as all body.
func Replace(text, header string) string {
	_, body, _ := Split(text)
	body = strings.TrimSpace(body)

	var b strings.Builder
	b.WriteString(Delimiter + "\n")
	b.WriteString(header)
	b.WriteString("\n" + Delimiter)
	if body != "" {
		b.WriteString("\n")
		b.WriteString(body)
	}
	return b.String()
}

// Rewrite computes the new tag set for a note and returns the note with its
// header regenerated. h may be nil for a note without a header.
func Rewrite(text string, h *Header, add, remove []string, opts Options) string {
	var (
		existing []string
		fields   []Field
	)
	if h != nil {
		existing = CurrentTags(h.Tags)
		fields = append(fields, h.Fields...)
	}

	if opts.StampUpdated {
		stamp := quotedString(opts.now().UTC().Format("2006-01-02T15:04:05.000Z07:00"))
		fields = setField(fields, UpdatedKey, stamp)
	}

	merged := MergeTags(existing, add, remove)
	return Replace(text, Serialize(merged, fields))
}
