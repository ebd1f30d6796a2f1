package scene

import "fmt"

// World is the root container: a flat list of elements linked by index,
// the indices of the root elements and the background color.
type World struct {
	Elements   []*Element
	Roots      []int
	Background Color
}

// NewWorld creates an empty world.
func NewWorld(background Color) *World {
	return &World{Background: background}
}

// AddRoot adds e as a root element and returns its index.
func (w *World) AddRoot(e *Element) int {
	idx := w.add(e, -1)
	w.Roots = append(w.Roots, idx)
	return idx
}

// AddChild adds e as a sub-element of the element at parent and returns its index.
func (w *World) AddChild(parent int, e *Element) (int, error) {
	if parent < 0 || parent >= len(w.Elements) {
		return -1, fmt.Errorf("add child %q: parent index %d out of range", e.Name, parent)
	}
	idx := w.add(e, parent)
	w.Elements[parent].Children = append(w.Elements[parent].Children, idx)
	return idx, nil
}

func (w *World) add(e *Element, parent int) int {
	e.Parent = parent
	w.Elements = append(w.Elements, e)
	return len(w.Elements) - 1
}

// Element returns the element at idx.
func (w *World) Element(idx int) *Element {
	return w.Elements[idx]
}

// Children returns the sub-elements of the element at idx.
func (w *World) Children(idx int) []*Element {
	e := w.Elements[idx]
	out := make([]*Element, len(e.Children))
	for i, c := range e.Children {
		out[i] = w.Elements[c]
	}
	return out
}

// TriangleCount returns the number of triangles over all elements.
func (w *World) TriangleCount() int {
	n := 0
	for _, e := range w.Elements {
		n += len(e.Triangles)
	}
	return n
}

// VertexCount returns the number of vertices over all elements.
func (w *World) VertexCount() int {
	n := 0
	for _, e := range w.Elements {
		n += len(e.Vertices)
	}
	return n
}
