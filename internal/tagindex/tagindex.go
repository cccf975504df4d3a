// Package tagindex aggregates the tags known across a vault and answers
// suggestion queries while tags are typed.
package tagindex

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Paintersrp/retag/internal/constants"
	"github.com/Paintersrp/retag/internal/vault"
)

// Index is a sorted, deduplicated set of normalized tags.
type Index struct {
	tags []string
}

// Normalize reduces a registry token to its top level segment without a
// leading '#'.
func Normalize(raw string) string {
	top, _, _ := strings.Cut(raw, "/")
	return normalizeTag(top)
}

func normalizeTag(s string) string {
	return strings.TrimPrefix(strings.TrimSpace(s), "#")
}

// FromHeader normalizes a raw header `tags` value.
func FromHeader(tags any) []string {
	var out []string
	switch v := tags.(type) {
	case []any:
		for _, item := range v {
			if item == nil {
				continue
			}
			out = append(out, normalizeTag(fmt.Sprint(item)))
		}
	case []string:
		for _, item := range v {
			out = append(out, normalizeTag(item))
		}
	case string:
		for _, piece := range strings.Split(v, ",") {
			out = append(out, normalizeTag(piece))
		}
	}
	return out
}

// Build unions the registry keys and every header's tags.
func Build(registry map[string]int, headers []any) *Index {
	set := make(map[string]struct{}, len(registry))
	for raw := range registry {
		if tag := Normalize(raw); tag != "" {
			set[tag] = struct{}{}
		}
	}
	for _, h := range headers {
		for _, tag := range FromHeader(h) {
			if tag != "" {
				set[tag] = struct{}{}
			}
		}
	}

	tags := make([]string, 0, len(set))
	for tag := range set {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return &Index{tags: tags}
}

// Collect builds an index from the store's tag registry and the cached header
// of every listed document.
func Collect(store vault.Store) (*Index, error) {
	registry, err := store.KnownTags()
	if err != nil {
		return nil, fmt.Errorf("tagindex: known tags: %w", err)
	}

	docs, err := store.ListDocuments()
	if err != nil {
		return nil, fmt.Errorf("tagindex: list documents: %w", err)
	}

	headers := make([]any, 0, len(docs))
	for _, doc := range docs {
		h, err := store.ParsedHeader(doc)
		if err != nil || h == nil || !h.HasTags {
			continue
		}
		headers = append(headers, h.Tags)
	}

	return Build(registry, headers), nil
}

// Tags returns a copy of the sorted tag set.
func (idx *Index) Tags() []string {
	if idx == nil {
		return nil
	}
	return append([]string(nil), idx.tags...)
}

func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.tags)
}

// Suggest returns up to limit tags containing token, case insensitively,
// shortest first. An empty token yields nothing.
func (idx *Index) Suggest(token string, limit int) []string {
	if idx == nil {
		return nil
	}
	if limit <= 0 {
		limit = constants.SuggestionLimit
	}

	needle := strings.ToLower(normalizeTag(token))
	if needle == "" {
		return nil
	}

	var matches []string
	for _, tag := range idx.tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			matches = append(matches, tag)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if len(matches[i]) != len(matches[j]) {
			return len(matches[i]) < len(matches[j])
		}
		return matches[i] < matches[j]
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// CurrentToken returns the comma separated token that ends at caret.
func CurrentToken(input string, caret int) string {
	before := input[:clampCaret(input, caret)]
	if i := strings.LastIndex(before, ","); i >= 0 {
		before = before[i+1:]
	}
	return normalizeTag(before)
}

// Complete replaces the token under caret with tag. The tokens before it are
// rejoined with ", " and exactly one ", " separates the completion from
// whatever followed the caret. It returns the new input and caret position.
func Complete(input string, caret int, tag string) (string, int) {
	caret = clampCaret(input, caret)
	before, after := input[:caret], input[caret:]

	var parts []string
	if i := strings.LastIndex(before, ","); i >= 0 {
		for _, p := range strings.Split(before[:i+1], ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
	}
	parts = append(parts, tag)

	joined := strings.Join(parts, ", ")
	rest := strings.TrimLeft(after, " \t")
	rest = strings.TrimPrefix(rest, ",")
	rest = strings.TrimLeft(rest, " \t")

	return joined + ", " + rest, len(joined) + 2
}

func clampCaret(input string, caret int) int {
	if caret < 0 {
		return 0
	}
	if caret > len(input) {
		return len(input)
	}
	return caret
}
