package scene

import (
	"math"

	"github.com/taigrr/softrender/pkg/math3d"
)

// Material holds the surface attributes of an element.
type Material struct {
	Color            Color
	SpecularExponent float64 // 0 disables the specular term
	SpecularColor    Color
}

// DefaultMaterial is used when neither an element nor any ancestor sets one.
var DefaultMaterial = Material{
	Color:         ColorGray,
	SpecularColor: ColorWhite,
}

// Transformation is an element's local transform, composed as
// scale, then rotation, then translation.
type Transformation struct {
	Scaling     math3d.Vec3
	Rotation    math3d.Mat4
	Translation math3d.Vec3

	// Explicit overrides the composed transform when set.
	Explicit    math3d.Mat4
	HasExplicit bool
}

// NewTransformation returns the identity transformation.
func NewTransformation() Transformation {
	return Transformation{
		Scaling:  math3d.V3(1, 1, 1),
		Rotation: math3d.Identity(),
	}
}

// Matrix materializes the transform as T * R * S.
func (t Transformation) Matrix() math3d.Mat4 {
	if t.HasExplicit {
		return t.Explicit
	}
	return math3d.Translate(t.Translation).Mul(t.Rotation).Mul(math3d.Scale(t.Scaling))
}

// Element is a node of the scene tree. Parent and Children are indices into
// the owning World's element list; Parent is -1 for roots.
type Element struct {
	Name      string
	Vertices  []*Vertex
	Triangles []*Triangle
	Transform Transformation
	Material  *Material // nil inherits from the parent

	// Closed marks a closed manifold mesh whose back faces may be culled.
	Closed bool

	Parent   int
	Children []int

	boundsMin, boundsMax math3d.Vec3
	boundsValid          bool
}

// NewElement creates an empty element with an identity transform.
func NewElement(name string) *Element {
	return &Element{
		Name:      name,
		Transform: NewTransformation(),
		Parent:    -1,
	}
}

// AddVertex appends a vertex and returns it.
func (e *Element) AddVertex(v *Vertex) *Vertex {
	e.Vertices = append(e.Vertices, v)
	e.boundsValid = false
	return v
}

// AddTriangle appends a triangle over three of the element's vertices.
func (e *Element) AddTriangle(a, b, c *Vertex) *Triangle {
	t := NewTriangle(a, b, c)
	e.Triangles = append(e.Triangles, t)
	return t
}

// SetColor sets the element's material color, creating a material if needed.
func (e *Element) SetColor(c Color) {
	if e.Material == nil {
		m := DefaultMaterial
		e.Material = &m
	}
	e.Material.Color = c
}

// Translate adds to the local translation.
func (e *Element) Translate(v math3d.Vec3) {
	e.Transform.Translation = e.Transform.Translation.Add(v)
}

// Rotate prepends a rotation about axis to the local rotation.
func (e *Element) Rotate(axis math3d.Vec3, angle float64) {
	e.Transform.Rotation = math3d.Rotate(axis, angle).Mul(e.Transform.Rotation)
}

// Scale multiplies the local scaling.
func (e *Element) Scale(v math3d.Vec3) {
	e.Transform.Scaling = e.Transform.Scaling.Mul(v)
}

// IsLeaf reports whether the element has no children.
func (e *Element) IsLeaf() bool {
	return len(e.Children) == 0
}

// Bounds returns the model-space bounding box of the element's own vertices.
// ok is false when the element has no vertices.
func (e *Element) Bounds() (min, max math3d.Vec3, ok bool) {
	if len(e.Vertices) == 0 {
		return min, max, false
	}
	if !e.boundsValid {
		inf := math.Inf(1)
		e.boundsMin = math3d.V3(inf, inf, inf)
		e.boundsMax = math3d.V3(-inf, -inf, -inf)
		for _, v := range e.Vertices {
			p := v.Position.Vec3()
			e.boundsMin = e.boundsMin.Min(p)
			e.boundsMax = e.boundsMax.Max(p)
		}
		e.boundsValid = true
	}
	return e.boundsMin, e.boundsMax, true
}

// InvalidateBounds drops the cached bounds after vertices are moved.
func (e *Element) InvalidateBounds() {
	e.boundsValid = false
	for _, t := range e.Triangles {
		t.InvalidateNormal()
	}
}
