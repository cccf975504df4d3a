// Package vault exposes the notes under a vault directory as documents with
// cached header metadata and a tag registry.
package vault

import (
	"github.com/Paintersrp/retag/internal/frontmatter"
	"github.com/Paintersrp/retag/internal/pathutil"
)

// Document identifies a note by its slash separated path relative to the
// vault root.
type Document struct {
	Path       string
	Basename   string
	ParentPath string
}

// NewDocument derives the basename and parent folder from rel.
func NewDocument(rel string) Document {
	rel = pathutil.CleanRelative(rel)
	return Document{
		Path:       rel,
		Basename:   pathutil.Basename(rel),
		ParentPath: pathutil.ParentDir(rel),
	}
}

// Store is the host surface the tagging components work against.
type Store interface {
	ListDocuments() ([]Document, error)
	ReadText(doc Document) (string, error)
	WriteText(doc Document, text string) error
	// ParsedHeader returns nil without error when the document has no header.
	ParsedHeader(doc Document) (*frontmatter.Header, error)
	// KnownTags maps every tag seen in the vault, with its leading '#', to
	// its occurrence count.
	KnownTags() (map[string]int, error)
	NotifyViewsStale()
}
