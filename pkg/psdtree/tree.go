// Package psdtree rebuilds the group/layer hierarchy of a flat layered-image
// document and resolves the absolute paths of its nodes.
//
// The document lists groups and layers side by side, each pointing at its
// parent group by id. New indexes those parent links once; afterwards
// listing the children of a group is a map lookup and every Node is a small
// value holding its record, its depth and a pointer back to the Tree.
//
// At every level groups come before layers, each in document order. The
// format does not tell us how groups and layers interleave within a parent,
// so true sibling z-order is not reconstructed.
package psdtree

import (
	"github.com/kataras/psd-extractor/pkg/document"
	"github.com/kataras/psd-extractor/pkg/errors"
)

// ref points into the tree index: a group id or a layer position.
type ref struct {
	kind  Kind
	group document.GroupID
	layer int
}

// Tree is the read-only index over a Document. It is safe for concurrent
// use.
type Tree struct {
	doc    document.Document
	groups map[document.GroupID]document.Group
	layers []document.Layer

	roots    []ref
	children map[document.GroupID][]ref
}

// New validates doc and indexes its parent links.
//
// It fails with ErrCodeUnsupportedColorMode when the document is not RGB and
// with ErrCodeCorruptTree when a group id is listed but missing, or when a
// parent id does not name an existing group.
func New(doc document.Document) (*Tree, error) {
	if mode := doc.ColorMode(); mode != document.RGB {
		return nil, errors.New(errors.ErrCodeUnsupportedColorMode,
			"color mode %s is not supported, only %s documents can be loaded", mode, document.RGB)
	}

	ids := doc.GroupIDs()
	t := &Tree{
		doc:      doc,
		groups:   make(map[document.GroupID]document.Group, len(ids)),
		layers:   doc.Layers(),
		children: make(map[document.GroupID][]ref),
	}

	for _, id := range ids {
		g, ok := doc.Group(id)
		if !ok {
			return nil, errors.New(errors.ErrCodeCorruptTree, "group %d is listed but cannot be resolved", id)
		}
		t.groups[id] = g
	}

	// Groups first, then layers: the two passes give the group-before-layer
	// order at every level without a sort.
	for _, id := range ids {
		g := t.groups[id]
		parent, ok := g.ParentID()
		if !ok {
			t.roots = append(t.roots, ref{kind: KindGroup, group: id})
			continue
		}
		if _, exists := t.groups[parent]; !exists {
			return nil, errors.New(errors.ErrCodeCorruptTree,
				"group %q (%d) points at missing parent group %d", document.TrimName(g.Name), id, parent)
		}
		t.children[parent] = append(t.children[parent], ref{kind: KindGroup, group: id})
	}

	for i, l := range t.layers {
		parent, ok := l.ParentID()
		if !ok {
			t.roots = append(t.roots, ref{kind: KindLayer, layer: i})
			continue
		}
		if _, exists := t.groups[parent]; !exists {
			return nil, errors.New(errors.ErrCodeCorruptTree,
				"layer %q points at missing parent group %d", document.TrimName(l.Name), parent)
		}
		t.children[parent] = append(t.children[parent], ref{kind: KindLayer, layer: i})
	}

	return t, nil
}

// Document returns the document the tree was built from.
func (t *Tree) Document() document.Document {
	return t.doc
}

// Width returns the canvas width.
func (t *Tree) Width() int { return t.doc.Width() }

// Height returns the canvas height.
func (t *Tree) Height() int { return t.doc.Height() }

// RootChildren returns the top-level nodes: root groups in document order,
// then root layers in document order. All of them have depth 0.
func (t *Tree) RootChildren() []Node {
	return t.nodes(t.roots, 0)
}

// Children returns the direct children of n. For a layer it returns
// (nil, false); for a group without children it returns an empty, non-nil
// slice and true.
func (t *Tree) Children(n Node) ([]Node, bool) {
	g, ok := n.Element.Group()
	if !ok {
		return nil, false
	}
	return t.nodes(t.children[g.ID], n.Depth+1), true
}

func (t *Tree) nodes(refs []ref, depth int) []Node {
	out := make([]Node, 0, len(refs))
	for _, r := range refs {
		out = append(out, Node{Element: t.element(r), Depth: depth, tree: t})
	}
	return out
}

func (t *Tree) element(r ref) Element {
	if r.kind == KindLayer {
		return LayerElement(t.layers[r.layer])
	}
	return GroupElement(t.groups[r.group])
}

// group is the typed lookup behind the path walk.
func (t *Tree) group(id document.GroupID) (document.Group, error) {
	g, ok := t.groups[id]
	if !ok {
		return document.Group{}, errors.New(errors.ErrCodeCorruptTree, "parent group %d does not exist", id)
	}
	return g, nil
}

// Walk visits every node depth-first in listing order. Returning false from
// fn skips the children of that node.
func (t *Tree) Walk(fn func(Node) bool) {
	var walk func(nodes []Node)
	walk = func(nodes []Node) {
		for _, n := range nodes {
			if !fn(n) {
				continue
			}
			if children, ok := t.Children(n); ok {
				walk(children)
			}
		}
	}
	walk(t.RootChildren())
}
