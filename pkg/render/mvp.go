package render

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/taigrr/softrender/pkg/math3d"
	"github.com/taigrr/softrender/pkg/scene"
)

// ModelViewProjection is the transform stage. View and projection are fixed
// for a pass; the model and normal matrices are replaced per element.
type ModelViewProjection struct {
	view     math3d.Mat4
	proj     math3d.Mat4
	viewProj math3d.Mat4

	model     math3d.Mat4
	normal    math3d.Mat4
	hasNormal bool

	full        math3d.Mat4
	fullNormals math3d.Mat4

	log *zap.Logger
}

// NewModelViewProjection creates a transform stage with an identity model.
func NewModelViewProjection(view, proj math3d.Mat4, log *zap.Logger) *ModelViewProjection {
	if log == nil {
		log = zap.NewNop()
	}
	m := &ModelViewProjection{
		view:     view,
		proj:     proj,
		viewProj: proj.Mul(view),
		log:      log,
	}
	m.SetModel(math3d.Identity())
	m.CalculateMVPMatrix()
	return m
}

// View returns the view matrix.
func (m *ModelViewProjection) View() math3d.Mat4 { return m.view }

// Projection returns the projection matrix.
func (m *ModelViewProjection) Projection() math3d.Mat4 { return m.proj }

// ViewProjection returns Projection * View.
func (m *ModelViewProjection) ViewProjection() math3d.Mat4 { return m.viewProj }

// Model returns the current model matrix.
func (m *ModelViewProjection) Model() math3d.Mat4 { return m.model }

// Full returns Projection * View * Model as of the last CalculateMVPMatrix.
func (m *ModelViewProjection) Full() math3d.Mat4 { return m.full }

// NormalMatrix returns the model-normal matrix; ok is false until
// CalculateNormalMatrix runs for the current model.
func (m *ModelViewProjection) NormalMatrix() (n math3d.Mat4, ok bool) {
	return m.normal, m.hasNormal
}

// SetModel stores the cumulative model matrix of the next element and drops
// the previous normal matrix.
func (m *ModelViewProjection) SetModel(model math3d.Mat4) {
	m.model = model
	m.hasNormal = false
}

// CalculateNormalMatrix derives the matrix applied to normals. Rotation and
// translation only models are used as is; anything else takes the
// inverse-transpose. A singular model falls back to the model matrix and the
// error is returned after logging; the frame carries on.
func (m *ModelViewProjection) CalculateNormalMatrix() error {
	m.hasNormal = true
	if m.model.IsOrthogonal() {
		m.normal = m.model
		return nil
	}
	inv, err := m.model.Inverse()
	if err != nil {
		m.normal = m.model
		m.log.Warn("normal matrix fallback", zap.Error(err))
		return fmt.Errorf("calculate normal matrix: %w", err)
	}
	m.normal = inv.Transpose()
	return nil
}

// CalculateMVPMatrix builds Projection * View * Model, and the same product
// over the normal matrix when one is set.
func (m *ModelViewProjection) CalculateMVPMatrix() {
	m.full = m.viewProj.Mul(m.model)
	if m.hasNormal {
		m.fullNormals = m.viewProj.Mul(directionOnly(m.normal))
	}
}

// directionOnly resets the bottom row so that normals keep W = 0 and pick up
// no translation from the projection. The inverse-transpose of a translated
// model carries the translation there.
func directionOnly(n math3d.Mat4) math3d.Mat4 {
	n[12], n[13], n[14], n[15] = 0, 0, 0, 1
	return n
}

// TransformVertex writes the vertex's world and clip positions, and with
// withNormals its world and clip normals when the vertex has one.
func (m *ModelViewProjection) TransformVertex(v *scene.Vertex, withNormals bool) {
	v.WorldPos = m.model.MulVec4(v.Position)
	v.ClipPos = m.full.MulVec4(v.Position)
	if withNormals && v.HasNormal && m.hasNormal {
		v.WorldNormal = m.normal.MulVec4(v.Normal).NormalizeDirection()
		v.ClipNormal = m.fullNormals.MulVec4(v.Normal).AsDirection()
	}
}

// TransformElement transforms the element's own vertices. Sub-elements are
// not visited.
func (m *ModelViewProjection) TransformElement(e *scene.Element, withNormals bool) {
	for _, v := range e.Vertices {
		m.TransformVertex(v, withNormals)
	}
}

// ProjectVertex returns the clip position of a model-space point without
// touching any vertex.
func (m *ModelViewProjection) ProjectVertex(p math3d.Vec4) math3d.Vec4 {
	return m.full.MulVec4(p)
}

// ProjectWorldVertex returns the clip position of a world-space point.
func (m *ModelViewProjection) ProjectWorldVertex(p math3d.Vec4) math3d.Vec4 {
	return m.viewProj.MulVec4(p)
}

// TransformNormal writes the triangle's world and clip face normals.
func (m *ModelViewProjection) TransformNormal(t *scene.Triangle) {
	n := t.FaceNormal()
	normal := m.model
	if m.hasNormal {
		normal = m.normal
	}
	t.WorldNormal = normal.MulVec4(n).NormalizeDirection()
	t.ClipNormal = m.ProjectNormal(n)
}

// ProjectNormal returns a model-space normal in clip space, as a direction.
func (m *ModelViewProjection) ProjectNormal(n math3d.Vec4) math3d.Vec4 {
	if m.hasNormal {
		return m.fullNormals.MulVec4(n).AsDirection()
	}
	return m.full.MulVec4(n.AsDirection()).AsDirection()
}
