package psdtree

import (
	"fmt"
	"image"
	"strings"

	"github.com/kataras/psd-extractor/pkg/document"
	"github.com/kataras/psd-extractor/pkg/errors"
)

// Node is a position in the tree. It holds no children of its own; ask the
// tree for them with Children.
type Node struct {
	Element Element
	Depth   int // root children are depth 0

	tree *Tree
}

// Tree returns the tree n belongs to.
func (n Node) Tree() *Tree { return n.tree }

// Name is shorthand for n.Element.Name().
func (n Node) Name() string { return n.Element.Name() }

// IsLayer reports whether n wraps a layer.
func (n Node) IsLayer() bool { return n.Element.Kind() == KindLayer }

// Children lists the direct children of n; see Tree.Children.
func (n Node) Children() ([]Node, bool) {
	if n.tree == nil {
		return nil, false
	}
	return n.tree.Children(n)
}

// Path returns the absolute path of n, e.g. "/Face Shadows/Masculine".
// Each segment is the NUL-trimmed name of one ancestor, root-most first.
//
// A parent link that leads nowhere, or one that loops, is reported as
// ErrCodeCorruptTree.
func (n Node) Path() (string, error) {
	parts := []string{n.Name()}

	parent, ok := n.Element.ParentID()
	for steps := 0; ok; steps++ {
		if steps > len(n.tree.groups) {
			return "", errors.New(errors.ErrCodeCorruptTree, "parent chain of %q does not terminate", n.Name())
		}
		g, err := n.tree.group(parent)
		if err != nil {
			return "", err
		}
		parts = append(parts, document.TrimName(g.Name))
		parent, ok = g.ParentID()
	}

	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return "/" + strings.Join(parts, "/"), nil
}

// Lookup resolves path relative to n. A leading "/" is ignored, so absolute
// paths produced by Path work too as long as n is the parent of their first
// segment. It returns false on the first segment that names no child.
func (n Node) Lookup(path string) (Node, bool) {
	if n.tree == nil {
		return Node{}, false
	}
	children, ok := n.Children()
	if !ok {
		return Node{}, false
	}
	return n.tree.resolve(children, path)
}

// Lookup resolves an absolute or relative path from the top of the tree.
// A miss returns false, never an error.
func (t *Tree) Lookup(path string) (Node, bool) {
	return t.resolve(t.RootChildren(), path)
}

func (t *Tree) resolve(level []Node, path string) (Node, bool) {
	var (
		current Node
		matched bool
	)
	for _, segment := range strings.Split(strings.TrimPrefix(path, "/"), "/") {
		if matched {
			next, ok := t.Children(current)
			if !ok {
				if isNoopSegment(segment) {
					continue
				}
				return Node{}, false
			}
			level = next
		}

		if child, ok := childNamed(level, segment); ok {
			current, matched = child, true
			continue
		}
		if !isNoopSegment(segment) {
			return Node{}, false
		}
	}
	return current, matched
}

func childNamed(level []Node, name string) (Node, bool) {
	for _, child := range level {
		if child.Name() == name {
			return child, true
		}
	}
	return Node{}, false
}

// isNoopSegment reports whether segment, when no child carries it as its
// exact name, stays at the current level: empty segments from leading,
// trailing or doubled slashes, and ".".
func isNoopSegment(segment string) bool {
	return segment == "" || segment == "."
}

// String renders n as "Layer[/a/b]" or "Group[/a]".
func (n Node) String() string {
	p, err := n.Path()
	if err != nil {
		p = "?" + n.Name()
	}
	return fmt.Sprintf("%s[%s]", n.Element.Kind(), p)
}

// LayerProperties are the layer-only fields exposed to hosts.
type LayerProperties struct {
	Visible bool              `json:"visible"`
	Opacity uint8             `json:"opacity"`
	Width   int               `json:"width"`
	Height  int               `json:"height"`
	GroupID *document.GroupID `json:"group_id,omitempty"`
}

// Info is the read-only description of a node handed to host integrations.
type Info struct {
	Name       string           `json:"name"`
	Path       string           `json:"path"`
	Type       Kind             `json:"type"`
	Bounds     image.Rectangle  `json:"bounds"`
	Properties *LayerProperties `json:"properties,omitempty"`
}

// Describe collects the host-facing fields of n.
func Describe(n Node) (Info, error) {
	p, err := n.Path()
	if err != nil {
		return Info{}, err
	}

	info := Info{
		Name:   n.Name(),
		Path:   p,
		Type:   n.Element.Kind(),
		Bounds: n.Element.Bounds(),
	}

	if l, ok := n.Element.Layer(); ok {
		props := &LayerProperties{
			Visible: l.Visible,
			Opacity: l.Opacity,
			Width:   l.Bounds.Dx(),
			Height:  l.Bounds.Dy(),
		}
		if id, ok := l.ParentID(); ok {
			props.GroupID = document.Ref(id)
		}
		info.Properties = props
	}

	return info, nil
}

// Layers keeps only the layer nodes of nodes.
func Layers(nodes []Node) []Node {
	return filter(nodes, KindLayer)
}

// Groups keeps only the group nodes of nodes.
func Groups(nodes []Node) []Node {
	return filter(nodes, KindGroup)
}

func filter(nodes []Node, kind Kind) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if n.Element.Kind() == kind {
			out = append(out, n)
		}
	}
	return out
}

// List renders the tree one node per line, indented by depth with tabs:
//
//	[G] Face Shadows
//		[L] Masculine
func (t *Tree) List() []string {
	var lines []string
	t.Walk(func(n Node) bool {
		marker := "[G]"
		if n.IsLayer() {
			marker = "[L]"
		}
		lines = append(lines, fmt.Sprintf("%s%s %s", strings.Repeat("\t", n.Depth), marker, n.Name()))
		return true
	})
	return lines
}
