package scene

import (
	"github.com/taigrr/softrender/pkg/math3d"
)

// Vertex is a model-space point with optional normal and color.
//
// The World*, Clip* fields are per-frame scratch written by the transform
// stage. They are valid only for the frame (and pass) that wrote them; a
// shadow pass overwrites them before the main pass runs.
type Vertex struct {
	Position  math3d.Vec4 // Model-space position, W=1
	Normal    math3d.Vec4 // Model-space normal, W=0
	HasNormal bool
	Color     *Color // Overrides triangle and element color at this vertex

	WorldPos    math3d.Vec4
	ClipPos     math3d.Vec4
	WorldNormal math3d.Vec4
	ClipNormal  math3d.Vec4
}

// NewVertex creates a vertex without a normal.
func NewVertex(x, y, z float64) *Vertex {
	return &Vertex{Position: math3d.V4(x, y, z, 1)}
}

// NewVertexWithNormal creates a vertex with a model-space normal.
func NewVertexWithNormal(pos, normal math3d.Vec3) *Vertex {
	return &Vertex{
		Position:  pos.Point(),
		Normal:    normal.Normalize().Direction(),
		HasNormal: true,
	}
}

// Texture is a 2D color lookup by normalized coordinate.
type Texture interface {
	Sample(u, v float64) Color
}

// TextureBinding attaches a texture to a triangle. Each coordinate is
// (s, t, q): the sampled point is (s/q, t/q), so q carries a homogeneous
// weight. Plain 2D coordinates use q=1.
type TextureBinding struct {
	Texture            Texture
	Coords             [3]math3d.Vec3
	PerspectiveCorrect bool
}

// NewTextureBinding binds tex with 2D coordinates and perspective correction.
func NewTextureBinding(tex Texture, uv0, uv1, uv2 math3d.Vec2) *TextureBinding {
	return &TextureBinding{
		Texture: tex,
		Coords: [3]math3d.Vec3{
			math3d.V3(uv0.X, uv0.Y, 1),
			math3d.V3(uv1.X, uv1.Y, 1),
			math3d.V3(uv2.X, uv2.Y, 1),
		},
		PerspectiveCorrect: true,
	}
}

// Triangle references three vertices owned by its element. Vertices may be
// shared with adjacent triangles.
type Triangle struct {
	V [3]*Vertex

	Color     *Color      // Overrides the element color
	Normal    math3d.Vec4 // Explicit face normal (model space), used when HasNormal
	HasNormal bool
	Texture   *TextureBinding

	// Per-frame scratch, see Vertex.
	WorldNormal math3d.Vec4
	ClipNormal  math3d.Vec4

	computed    math3d.Vec4
	hasComputed bool
}

// NewTriangle creates a triangle over three vertices.
func NewTriangle(a, b, c *Vertex) *Triangle {
	return &Triangle{V: [3]*Vertex{a, b, c}}
}

// SetNormal sets an explicit face normal.
func (t *Triangle) SetNormal(n math3d.Vec3) {
	t.Normal = n.Normalize().Direction()
	t.HasNormal = true
}

// SetColor sets the face color.
func (t *Triangle) SetColor(c Color) {
	t.Color = &c
}

// HasVertexNormals reports whether all three vertices carry normals.
func (t *Triangle) HasVertexNormals() bool {
	return t.V[0].HasNormal && t.V[1].HasNormal && t.V[2].HasNormal
}

// UsesFaceNormal reports whether shading and culling use a single face
// normal. Vertex normals win whenever all three vertices carry one; the
// explicit face normal only replaces the geometric one.
func (t *Triangle) UsesFaceNormal() bool {
	return !t.HasVertexNormals()
}

// FaceNormal returns the explicit face normal, or the counter-clockwise
// geometric normal of the model-space positions. The geometric normal is
// computed once and cached; call InvalidateNormal after moving vertices.
func (t *Triangle) FaceNormal() math3d.Vec4 {
	if t.HasNormal {
		return t.Normal
	}
	if !t.hasComputed {
		e1 := t.V[1].Position.Sub(t.V[0].Position)
		e2 := t.V[2].Position.Sub(t.V[0].Position)
		t.computed = e1.Cross(e2).NormalizeDirection()
		t.hasComputed = true
	}
	return t.computed
}

// InvalidateNormal drops the cached geometric normal.
func (t *Triangle) InvalidateNormal() {
	t.hasComputed = false
}

// Centroid returns the mean of the world positions from the current frame.
func (t *Triangle) Centroid() math3d.Vec4 {
	c := t.V[0].WorldPos.Add(t.V[1].WorldPos).Add(t.V[2].WorldPos)
	return c.Scale(1.0 / 3)
}
