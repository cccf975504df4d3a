package vault

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var inlineTagPattern = regexp.MustCompile(`(?:^|[\s(\[,;])#([\p{L}\p{N}_/-]+)`)

// InlineTags returns the `#tag` tokens written in a markdown body, in order
// of appearance and without the leading '#'. Code spans and code blocks are
// ignored, as are purely numeric tokens such as issue references.
func InlineTags(body string) []string {
	source := []byte(body)
	document := goldmark.DefaultParser().Parse(text.NewReader(source))

	var prose strings.Builder
	_ = ast.Walk(document, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.CodeSpan, *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock, *ast.RawHTML:
			prose.WriteByte(' ')
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			prose.Write(node.Segment.Value(source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				prose.WriteByte('\n')
			}
		default:
			if n.Type() == ast.TypeBlock {
				prose.WriteByte('\n')
			}
		}
		return ast.WalkContinue, nil
	})

	var tags []string
	for _, match := range inlineTagPattern.FindAllStringSubmatch(prose.String(), -1) {
		tag := strings.TrimRight(match[1], "/")
		if tag == "" || isNumeric(tag) {
			continue
		}
		tags = append(tags, tag)
	}
	return tags
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
