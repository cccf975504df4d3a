package fzf

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ktr0731/go-fuzzyfinder"

	"github.com/Paintersrp/retag/internal/frontmatter"
	"github.com/Paintersrp/retag/internal/preview"
	"github.com/Paintersrp/retag/internal/vault"
)

// ErrAborted is returned when the picker is closed without a choice.
var ErrAborted = errors.New("no file selected")

type findMultiFunc func(docs []vault.Document, label func(int) string, opts ...fuzzyfinder.Option) ([]int, error)

// Picker is a multi-select fuzzy finder over vault documents.
type Picker struct {
	store  vault.Store
	Header string
	docs   []vault.Document
	labels []string
	find   findMultiFunc
}

func NewPicker(store vault.Store, header string) *Picker {
	return &Picker{
		store:  store,
		Header: header,
		find: func(docs []vault.Document, label func(int) string, opts ...fuzzyfinder.Option) ([]int, error) {
			return fuzzyfinder.FindMulti(docs, label, opts...)
		},
	}
}

// Pick lists the vault and returns the chosen documents in list order.
func (p *Picker) Pick(query string) ([]vault.Document, error) {
	docs, err := p.store.ListDocuments()
	if err != nil {
		return nil, fmt.Errorf("error listing files: %w", err)
	}
	p.docs = docs
	p.labels = make([]string, len(docs))
	for i, doc := range docs {
		p.labels[i] = p.label(doc)
	}

	options := []fuzzyfinder.Option{
		fuzzyfinder.WithPreviewWindow(p.renderPreview),
	}
	if query != "" {
		options = append(options, fuzzyfinder.WithQuery(query))
	}
	if p.Header != "" {
		options = append(options, fuzzyfinder.WithHeader(p.Header))
	}

	idxs, err := p.find(p.docs, func(i int) string { return p.labels[i] }, options...)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil, ErrAborted
		}
		return nil, fmt.Errorf("error selecting files: %w", err)
	}
	if len(idxs) == 0 {
		return nil, ErrAborted
	}

	picked := make([]vault.Document, 0, len(idxs))
	seen := make(map[int]bool, len(idxs))
	for _, i := range idxs {
		if i < 0 || i >= len(p.docs) || seen[i] {
			continue
		}
		seen[i] = true
		picked = append(picked, p.docs[i])
	}
	return picked, nil
}

func (p *Picker) label(doc vault.Document) string {
	h, err := p.store.ParsedHeader(doc)
	if err != nil {
		return fmt.Sprintf("%s [Invalid header] ", doc.Path)
	}

	var tags []string
	if h != nil && h.HasTags {
		tags = frontmatter.CurrentTags(h.Tags)
	}
	if len(tags) == 0 {
		return fmt.Sprintf("%s [No tags] ", doc.Path)
	}
	return fmt.Sprintf("%s [Tags: %s] ", doc.Path, strings.Join(tags, ", "))
}

func (p *Picker) renderPreview(i, w, h int) string {
	if i < 0 || i >= len(p.docs) {
		return ""
	}

	content, err := p.store.ReadText(p.docs[i])
	if err != nil {
		return "Error reading file"
	}
	return preview.Render(content, w)
}
