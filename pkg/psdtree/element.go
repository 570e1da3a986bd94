package psdtree

import (
	"fmt"
	"image"

	"github.com/kataras/psd-extractor/pkg/document"
)

// Kind tells groups and layers apart.
type Kind int

const (
	KindGroup Kind = iota
	KindLayer
)

func (k Kind) String() string {
	if k == KindLayer {
		return "Layer"
	}
	return "Group"
}

// MarshalText renders the kind as "Group" or "Layer".
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses the form written by MarshalText.
func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "Group":
		*k = KindGroup
	case "Layer":
		*k = KindLayer
	default:
		return fmt.Errorf("unknown node kind %q", text)
	}
	return nil
}

// Element is either a group or a layer record. The zero value is an empty
// group and is never handed out by a Tree.
type Element struct {
	kind  Kind
	group document.Group
	layer document.Layer
}

// GroupElement wraps a group record.
func GroupElement(g document.Group) Element {
	return Element{kind: KindGroup, group: g}
}

// LayerElement wraps a layer record.
func LayerElement(l document.Layer) Element {
	return Element{kind: KindLayer, layer: l}
}

// Kind reports whether e is a group or a layer.
func (e Element) Kind() Kind { return e.kind }

// Group returns the wrapped group record when e is a group.
func (e Element) Group() (document.Group, bool) {
	return e.group, e.kind == KindGroup
}

// Layer returns the wrapped layer record when e is a layer.
func (e Element) Layer() (document.Layer, bool) {
	return e.layer, e.kind == KindLayer
}

// Name returns the display name with NUL padding removed.
func (e Element) Name() string {
	if e.kind == KindLayer {
		return document.TrimName(e.layer.Name)
	}
	return document.TrimName(e.group.Name)
}

// ParentID returns the id of the enclosing group, if any.
func (e Element) ParentID() (document.GroupID, bool) {
	if e.kind == KindLayer {
		return e.layer.ParentID()
	}
	return e.group.ParentID()
}

// Bounds returns the record rectangle on the canvas.
func (e Element) Bounds() image.Rectangle {
	if e.kind == KindLayer {
		return e.layer.Bounds
	}
	return e.group.Bounds
}

// Key identifies the underlying record: the group id for groups and the
// document index for layers.
type Key struct {
	Kind  Kind
	Group document.GroupID
	Layer int
}

// Key returns the identity of the underlying record.
func (e Element) Key() Key {
	if e.kind == KindLayer {
		return Key{Kind: KindLayer, Layer: e.layer.Index}
	}
	return Key{Kind: KindGroup, Group: e.group.ID}
}
