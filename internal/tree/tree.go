// Package tree arranges a flat document list into a folder hierarchy.
package tree

import (
	"strings"

	"github.com/Paintersrp/retag/internal/vault"
)

// Node is either a *Folder or a *File.
type Node interface {
	node()
}

// Folder groups the documents sharing a path prefix. The synthetic root has
// an empty Path.
type Folder struct {
	Path     string
	Name     string
	Children []Node
}

// File wraps exactly one document.
type File struct {
	Doc vault.Document
}

func (*Folder) node() {}
func (*File) node() {}

// Build places every document under its ancestor folders in encounter order
// and returns the synthetic root.
func Build(docs []vault.Document) *Folder {
	root := &Folder{}
	index := map[string]*Folder{"": root}

	for _, doc := range docs {
		current := root
		for _, segment := range segments(doc.ParentPath) {
			var path string
			if current.Path == "" {
				path = segment
			} else {
				path = current.Path + "/" + segment
			}

			next, ok := index[path]
			if !ok {
				next = &Folder{Path: path, Name: segment}
				index[path] = next
				current.Children = append(current.Children, next)
			}
			current = next
		}
		current.Children = append(current.Children, &File{Doc: doc})
	}

	return root
}

func segments(parent string) []string {
	parent = strings.Trim(parent, "/")
	if parent == "" {
		return nil
	}

	var out []string
	for _, s := range strings.Split(parent, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// IsRoot reports whether f is the synthetic root.
func (f *Folder) IsRoot() bool {
	return f != nil && f.Path == ""
}

// Find returns the folder in f's subtree with exactly path, or nil.
func (f *Folder) Find(path string) *Folder {
	if f == nil {
		return nil
	}
	if f.Path == path {
		return f
	}
	for _, child := range f.Children {
		if sub, ok := child.(*Folder); ok {
			if found := sub.Find(path); found != nil {
				return found
			}
		}
	}
	return nil
}

// Files collects every document in f's subtree in tree order.
func (f *Folder) Files() []vault.Document {
	var docs []vault.Document
	f.Walk(func(n Node, _ int) bool {
		if file, ok := n.(*File); ok {
			docs = append(docs, file.Doc)
		}
		return true
	})
	return docs
}

// Folders returns every folder below f, depth first.
func (f *Folder) Folders() []*Folder {
	var out []*Folder
	f.Walk(func(n Node, _ int) bool {
		if sub, ok := n.(*Folder); ok {
			out = append(out, sub)
		}
		return true
	})
	return out
}

// Walk visits f's descendants depth first with their depth below f, starting
// at 0. Returning false from fn skips a folder's children.
func (f *Folder) Walk(fn func(n Node, depth int) bool) {
	if f == nil {
		return
	}
	walk(f.Children, 0, fn)
}

func walk(nodes []Node, depth int, fn func(Node, int) bool) {
	for _, n := range nodes {
		if !fn(n, depth) {
			continue
		}
		if sub, ok := n.(*Folder); ok {
			walk(sub.Children, depth+1, fn)
		}
	}
}
