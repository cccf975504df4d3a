// Package selection tracks which documents are picked for a bulk edit and
// which folders are expanded in the tree view. It is not safe for
// concurrent use; the UI drives it one action at a time.
package selection

import (
	"sort"

	"github.com/Paintersrp/retag/internal/tree"
	"github.com/Paintersrp/retag/internal/vault"
)

// CollapsePersister stores the collapsed flag of one folder path.
type CollapsePersister interface {
	SetFolderCollapsed(path string, collapsed bool) error
}

// State holds the selection and expansion sets.
type State struct {
	selected map[string]vault.Document
	// order lists paths in selection order. A slot is live only while
	// pos maps its path back to that slot.
	order     []string
	pos       map[string]int
	expanded  map[string]bool
	persister CollapsePersister
}

// New seeds the expansion set with every path whose persisted collapsed flag
// is false. persister may be nil.
func New(collapse map[string]bool, persister CollapsePersister) *State {
	s := &State{
		selected:  make(map[string]vault.Document),
		pos:       make(map[string]int),
		expanded:  make(map[string]bool),
		persister: persister,
	}
	for path, collapsed := range collapse {
		if !collapsed {
			s.expanded[path] = true
		}
	}
	return s
}

func (s *State) add(doc vault.Document) {
	if _, ok := s.selected[doc.Path]; ok {
		return
	}
	s.selected[doc.Path] = doc
	s.pos[doc.Path] = len(s.order)
	s.order = append(s.order, doc.Path)
}

func (s *State) remove(path string) {
	if _, ok := s.selected[path]; !ok {
		return
	}
	delete(s.selected, path)
	delete(s.pos, path)
	if len(s.order) > 2*len(s.selected)+16 {
		s.compact()
	}
}

// compact drops dead slots from order.
func (s *State) compact() {
	live := make([]string, 0, len(s.selected))
	for i, path := range s.order {
		if p, ok := s.pos[path]; ok && p == i {
			s.pos[path] = len(live)
			live = append(live, path)
		}
	}
	s.order = live
}

// ToggleFile adds or removes a single document.
func (s *State) ToggleFile(doc vault.Document, selected bool) {
	if selected {
		s.add(doc)
		return
	}
	s.remove(doc.Path)
}

// ToggleFolder adds or removes every document in folder's subtree.
func (s *State) ToggleFolder(folder *tree.Folder, selected bool) {
	for _, doc := range folder.Files() {
		s.ToggleFile(doc, selected)
	}
}

// SelectAll replaces the selection with docs.
func (s *State) SelectAll(docs []vault.Document) {
	s.UnselectAll()
	for _, doc := range docs {
		s.add(doc)
	}
}

func (s *State) UnselectAll() {
	s.selected = make(map[string]vault.Document)
	s.pos = make(map[string]int)
	s.order = nil
}

func (s *State) IsSelected(doc vault.Document) bool {
	_, ok := s.selected[doc.Path]
	return ok
}

// IsFolderFullySelected is true when folder's subtree holds at least one
// document and all of them are selected.
func (s *State) IsFolderFullySelected(folder *tree.Folder) bool {
	files := folder.Files()
	if len(files) == 0 {
		return false
	}
	for _, doc := range files {
		if !s.IsSelected(doc) {
			return false
		}
	}
	return true
}

// Selected returns the selected documents in the order they were added.
func (s *State) Selected() []vault.Document {
	out := make([]vault.Document, 0, len(s.selected))
	for i, path := range s.order {
		if p, ok := s.pos[path]; ok && p == i {
			out = append(out, s.selected[path])
		}
	}
	return out
}

func (s *State) Len() int {
	return len(s.selected)
}

func (s *State) IsExpanded(path string) bool {
	return s.expanded[path]
}

// ToggleFolderExpansion flips path in the expansion set and persists only
// that path's collapsed flag. The in-memory flip stands even if persisting
// fails.
func (s *State) ToggleFolderExpansion(path string) error {
	if s.expanded[path] {
		delete(s.expanded, path)
	} else {
		s.expanded[path] = true
	}

	if s.persister == nil {
		return nil
	}
	return s.persister.SetFolderCollapsed(path, !s.expanded[path])
}

// Expanded returns the expanded folder paths, sorted.
func (s *State) Expanded() []string {
	out := make([]string, 0, len(s.expanded))
	for path := range s.expanded {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}
