package document

// Memory is an in-memory Document. It is what pkg/bundle produces and what
// tests build fixtures with.
type Memory struct {
	width, height int
	mode          ColorMode
	order         []GroupID
	groups        map[GroupID]Group
	layers        []Layer
}

// NewMemory creates an empty document with the given canvas size and colour
// mode.
func NewMemory(width, height int, mode ColorMode) *Memory {
	return &Memory{
		width:  width,
		height: height,
		mode:   mode,
		groups: make(map[GroupID]Group),
	}
}

// AddGroup appends a group in document order. A group with an id that is
// already present replaces the previous record but keeps its position.
func (m *Memory) AddGroup(g Group) *Memory {
	if _, exists := m.groups[g.ID]; !exists {
		m.order = append(m.order, g.ID)
	}
	m.groups[g.ID] = g
	return m
}

// AddLayer appends a layer in document order and sets its Index.
func (m *Memory) AddLayer(l Layer) *Memory {
	l.Index = len(m.layers)
	m.layers = append(m.layers, l)
	return m
}

// GroupIDs implements Document.
func (m *Memory) GroupIDs() []GroupID {
	out := make([]GroupID, len(m.order))
	copy(out, m.order)
	return out
}

// Group implements Document.
func (m *Memory) Group(id GroupID) (Group, bool) {
	g, ok := m.groups[id]
	return g, ok
}

// Layers implements Document.
func (m *Memory) Layers() []Layer {
	out := make([]Layer, len(m.layers))
	copy(out, m.layers)
	return out
}

// Width implements Document.
func (m *Memory) Width() int { return m.width }

// Height implements Document.
func (m *Memory) Height() int { return m.height }

// ColorMode implements Document.
func (m *Memory) ColorMode() ColorMode { return m.mode }

// StaticPixels returns a PixelFunc that hands out a copy of pix on every call.
func StaticPixels(pix []byte) PixelFunc {
	return func() ([]byte, error) {
		out := make([]byte, len(pix))
		copy(out, pix)
		return out, nil
	}
}

var _ Document = (*Memory)(nil)
