// Package document defines the boundary between psd-extractor and whatever
// parses a layered-image file. A parser hands over a flat list of groups and
// layers, each optionally pointing at a parent group, plus the canvas size and
// colour mode. Everything else (tree shape, paths, export) is derived from it.
package document

import (
	"fmt"
	"image"
	"strings"
)

// ColorMode is the colour mode a document declares in its header.
type ColorMode int

// Colour modes of the layered-image format. Only RGB is supported downstream.
const (
	Bitmap ColorMode = iota
	Grayscale
	Indexed
	RGB
	CMYK
	Multichannel
	Duotone
	Lab
)

var colorModeNames = map[ColorMode]string{
	Bitmap:       "bitmap",
	Grayscale:    "grayscale",
	Indexed:      "indexed",
	RGB:          "rgb",
	CMYK:         "cmyk",
	Multichannel: "multichannel",
	Duotone:      "duotone",
	Lab:          "lab",
}

func (m ColorMode) String() string {
	if s, ok := colorModeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("ColorMode(%d)", int(m))
}

// ParseColorMode maps a case-insensitive colour mode name to its ColorMode.
func ParseColorMode(s string) (ColorMode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for m, n := range colorModeNames {
		if n == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown color mode %q", s)
}

// GroupID identifies a group within one document. It is stable for the
// lifetime of the parsed document.
type GroupID uint32

// Document is a parsed layered image. Implementations must be safe for
// concurrent reads; nothing in this module ever mutates one.
type Document interface {
	// GroupIDs returns every group id in document order.
	GroupIDs() []GroupID
	// Group looks up a group by id.
	Group(id GroupID) (Group, bool)
	// Layers returns every layer in document order.
	Layers() []Layer
	Width() int
	Height() int
	ColorMode() ColorMode
}

// Group is a container record.
type Group struct {
	ID     GroupID
	Name   string          // raw name, may carry NUL padding
	Parent *GroupID        // nil for a root group
	Bounds image.Rectangle // left/top and size on the canvas
}

// ParentID returns the parent group id, if any.
func (g Group) ParentID() (GroupID, bool) {
	if g.Parent == nil {
		return 0, false
	}
	return *g.Parent, true
}

// PixelFunc produces a canvas-sized RGBA buffer (width*height*4 bytes).
type PixelFunc func() ([]byte, error)

// Layer is a leaf record holding pixel data.
type Layer struct {
	Index   int    // position in Document.Layers
	Name    string // raw name, may carry NUL padding
	Parent  *GroupID
	Visible bool
	Opacity uint8 // 255 is fully opaque
	Bounds  image.Rectangle
	Pixels  PixelFunc
}

// ParentID returns the parent group id, if any.
func (l Layer) ParentID() (GroupID, bool) {
	if l.Parent == nil {
		return 0, false
	}
	return *l.Parent, true
}

// RGBA decodes the layer pixels. The result is sized to the document canvas,
// not to the layer bounds. Decoding can be expensive; callers should invoke
// it once per use.
func (l Layer) RGBA() ([]byte, error) {
	if l.Pixels == nil {
		return nil, fmt.Errorf("layer %q has no pixel source", TrimName(l.Name))
	}
	return l.Pixels()
}

// TrimName strips the NUL padding the format uses for fixed-width name
// fields.
func TrimName(name string) string {
	return strings.Trim(name, "\x00")
}

// Ref returns a pointer to id, for filling Group.Parent and Layer.Parent.
func Ref(id GroupID) *GroupID {
	return &id
}
