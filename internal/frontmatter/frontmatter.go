// Package frontmatter reads and rewrites the `---` delimited metadata header
// at the top of a note. The rewrite is line oriented: it understands a `tags:`
// list and flat `key: value` pairs and passes every other value through
// untouched.
package frontmatter

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// Delimiter opens and closes a header on a line of its own.
	Delimiter = "---"
	// TagsKey is the only field the rewrite interprets.
	TagsKey = "tags"
)

// ErrNotMapping is returned when a header is valid YAML but not a key/value
// mapping.
var ErrNotMapping = errors.New("frontmatter: header is not a mapping")

// Field is a non-tag header entry in the order it was encountered.
type Field struct {
	Key   string
	Value any
}

// Header is the parsed form of a note header.
type Header struct {
	// Tags holds the raw `tags` value: a list, a comma separated string, or
	// anything else the author wrote. Nil when HasTags is false.
	Tags    any
	HasTags bool
	Fields  []Field
}

// Get returns the value of a non-tag field.
func (h *Header) Get(key string) (any, bool) {
	if h == nil {
		return nil, false
	}
	for _, f := range h.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Split separates the header block from the body. A header exists only when
// the first line is a delimiter and a later line is a delimiter as well; in
// every other case the whole text is body.
func Split(text string) (header string, body string, ok bool) {
	lines := strings.SplitAfter(text, "\n")
	if len(lines) == 0 || !isDelimiter(lines[0]) {
		return "", text, false
	}

	start := len(lines[0])
	offset := start
	for _, line := range lines[1:] {
		if isDelimiter(line) {
			header = strings.TrimRight(text[start:offset], "\r\n")
			return header, text[offset+len(line):], true
		}
		offset += len(line)
	}

	return "", text, false
}

func isDelimiter(line string) bool {
	return strings.TrimRight(line, "\r\n") == Delimiter
}

// Parse extracts the header of a full note. It returns nil without error when
// the note has no header.
func Parse(text string) (*Header, error) {
	raw, _, ok := Split(text)
	if !ok {
		return nil, nil
	}
	return ParseHeader(raw)
}

// ParseHeader decodes the lines between the delimiters.
func ParseHeader(raw string) (*Header, error) {
	h := &Header{}
	if strings.TrimSpace(raw) == "" {
		return h, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("frontmatter: %w", err)
	}

	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return h, nil
	}

	mapping := doc.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return nil, ErrNotMapping
	}

	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key := mapping.Content[i].Value
		value, err := decodeValue(mapping.Content[i+1])
		if err != nil {
			return nil, fmt.Errorf("frontmatter: field %q: %w", key, err)
		}

		if key == TagsKey {
			h.Tags = value
			h.HasTags = true
			continue
		}
		h.Fields = setField(h.Fields, key, value)
	}

	return h, nil
}

// decodeValue keeps string-like scalars verbatim so dates and quoted values
// come back exactly as written.
func decodeValue(node *yaml.Node) (any, error) {
	switch node.Kind {
	case yaml.AliasNode:
		if node.Alias == nil {
			return nil, nil
		}
		return decodeValue(node.Alias)
	case yaml.ScalarNode:
		switch node.ShortTag() {
		case "!!str", "!!timestamp", "!!binary":
			return node.Value, nil
		case "!!null":
			return nil, nil
		}
		var v any
		if err := node.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	case yaml.SequenceNode:
		out := make([]any, 0, len(node.Content))
		for _, child := range node.Content {
			v, err := decodeValue(child)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	default:
		var v any
		if err := node.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	}
}

func setField(fields []Field, key string, value any) []Field {
	for i := range fields {
		if fields[i].Key == key {
			fields[i].Value = value
			return fields
		}
	}
	return append(fields, Field{Key: key, Value: value})
}
