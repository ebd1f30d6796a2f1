package render

import (
	"errors"
	"math"
	"testing"

	"github.com/taigrr/softrender/pkg/math3d"
	"github.com/taigrr/softrender/pkg/scene"
)

func vec4Near(a, b math3d.Vec4) bool {
	return math.Abs(a.X-b.X) < 1e-9 && math.Abs(a.Y-b.Y) < 1e-9 &&
		math.Abs(a.Z-b.Z) < 1e-9 && math.Abs(a.W-b.W) < 1e-9
}

func TestMVPIdentity(t *testing.T) {
	m := NewModelViewProjection(math3d.Identity(), math3d.Identity(), nil)
	if err := m.CalculateNormalMatrix(); err != nil {
		t.Fatal(err)
	}
	m.CalculateMVPMatrix()

	v := scene.NewVertexWithNormal(math3d.V3(1, 2, 3), math3d.V3(0, 0, 2))
	m.TransformVertex(v, true)

	if !vec4Near(v.WorldPos, math3d.V4(1, 2, 3, 1)) || !vec4Near(v.ClipPos, math3d.V4(1, 2, 3, 1)) {
		t.Errorf("positions = %v %v", v.WorldPos, v.ClipPos)
	}
	if !vec4Near(v.WorldNormal, math3d.V4(0, 0, 1, 0)) || !vec4Near(v.ClipNormal, math3d.V4(0, 0, 1, 0)) {
		t.Errorf("normals = %v %v", v.WorldNormal, v.ClipNormal)
	}
}

func TestMVPComposition(t *testing.T) {
	view := math3d.LookAt(math3d.V3(0, 0, 5), math3d.Zero3(), math3d.Up())
	proj := math3d.Perspective(math.Pi/3, 1, 0.1, 100)
	m := NewModelViewProjection(view, proj, nil)

	model := math3d.Translate(math3d.V3(1, 0, 0)).Mul(math3d.RotateY(0.3))
	m.SetModel(model)
	m.CalculateMVPMatrix()

	want := proj.Mul(view).Mul(model)
	if !m.Full().ApproxEqual(want, 1e-12) {
		t.Errorf("Full = %v, want %v", m.Full(), want)
	}
	if !m.ViewProjection().ApproxEqual(proj.Mul(view), 1e-12) {
		t.Error("ViewProjection mismatch")
	}

	p := math3d.V4(0.5, -0.5, 0.25, 1)
	if got := m.ProjectVertex(p); !vec4Near(got, want.MulVec4(p)) {
		t.Errorf("ProjectVertex = %v", got)
	}
	if got := m.ProjectWorldVertex(p); !vec4Near(got, proj.Mul(view).MulVec4(p)) {
		t.Errorf("ProjectWorldVertex = %v", got)
	}
}

func TestNormalMatrix(t *testing.T) {
	tests := []struct {
		name   string
		model  math3d.Mat4
		normal math3d.Vec3
		want   math3d.Vec3
	}{
		{"rotation", math3d.RotateZ(math.Pi / 2), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0)},
		{"translation", math3d.Translate(math3d.V3(4, 5, 6)), math3d.V3(0, 1, 0), math3d.V3(0, 1, 0)},
		// Squashing a 45 degree slope along X tilts its normal toward X.
		{"non-uniform scale", math3d.Scale(math3d.V3(0.5, 1, 1)), math3d.V3(1, 1, 0), math3d.V3(2, 1, 0).Normalize()},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := NewModelViewProjection(math3d.Identity(), math3d.Identity(), nil)
			m.SetModel(tc.model)
			if _, ok := m.NormalMatrix(); ok {
				t.Error("normal matrix should be unset after SetModel")
			}
			if err := m.CalculateNormalMatrix(); err != nil {
				t.Fatal(err)
			}
			m.CalculateMVPMatrix()

			v := scene.NewVertexWithNormal(math3d.Zero3(), tc.normal)
			m.TransformVertex(v, true)
			if !v.WorldNormal.Vec3().ApproxEqual(tc.want, 1e-9) {
				t.Errorf("world normal = %v, want %v", v.WorldNormal, tc.want)
			}
		})
	}
}

func TestNormalMatrixSingular(t *testing.T) {
	m := NewModelViewProjection(math3d.Identity(), math3d.Identity(), nil)
	model := math3d.Scale(math3d.V3(1, 0, 1))
	m.SetModel(model)

	err := m.CalculateNormalMatrix()
	if !errors.Is(err, math3d.ErrSingularMatrix) {
		t.Fatalf("err = %v, want ErrSingularMatrix", err)
	}
	n, ok := m.NormalMatrix()
	if !ok || n != model {
		t.Errorf("fallback normal matrix = %v, want the model", n)
	}
}

func TestTransformNormal(t *testing.T) {
	view := math3d.LookAt(math3d.V3(0, 0, 5), math3d.Zero3(), math3d.Up())
	proj := math3d.Orthographic(-2, 2, -2, 2, 0.1, 100)
	m := NewModelViewProjection(view, proj, nil)
	m.SetModel(math3d.RotateY(math.Pi))
	if err := m.CalculateNormalMatrix(); err != nil {
		t.Fatal(err)
	}
	m.CalculateMVPMatrix()

	el := scene.NewElement("tri")
	tri := el.AddTriangle(
		el.AddVertex(scene.NewVertex(0, 0, 0)),
		el.AddVertex(scene.NewVertex(1, 0, 0)),
		el.AddVertex(scene.NewVertex(0, 1, 0)),
	)
	m.TransformNormal(tri)

	// Facing +Z in model space, turned away from the camera.
	if !tri.WorldNormal.Vec3().ApproxEqual(math3d.V3(0, 0, -1), 1e-9) {
		t.Errorf("world normal = %v", tri.WorldNormal)
	}
	if tri.ClipNormal.W != 0 || tri.ClipNormal.Z <= 0 {
		t.Errorf("clip normal = %v, want a direction with positive Z", tri.ClipNormal)
	}
}

func TestProjectNormalScaledTranslated(t *testing.T) {
	view := math3d.LookAt(math3d.V3(8, 4, 3), math3d.V3(3, 0, 0), math3d.Up())
	proj := math3d.Orthographic(-2, 2, -2, 2, 0.1, 100)
	m := NewModelViewProjection(view, proj, nil)
	m.SetModel(math3d.Translate(math3d.V3(3, 0, 0)).Mul(math3d.Scale(math3d.V3(2, 1, 1))))
	if err := m.CalculateNormalMatrix(); err != nil {
		t.Fatal(err)
	}
	m.CalculateMVPMatrix()

	n := math3d.V3(1, 0, 0).Direction()
	normal, _ := m.NormalMatrix()
	want := m.ViewProjection().MulVec4(normal.MulVec4(n).AsDirection()).AsDirection()

	got := m.ProjectNormal(n)
	if !vec4Near(got, want) {
		t.Errorf("ProjectNormal = %v, want %v", got, want)
	}
	// +X faces the camera, so it points toward -Z in clip space.
	if got.Z >= 0 || got.W != 0 {
		t.Errorf("clip normal = %v, want a direction with negative Z", got)
	}

	v := scene.NewVertexWithNormal(math3d.V3(0.5, 0, 0), math3d.V3(1, 0, 0))
	m.TransformVertex(v, true)
	if !vec4Near(v.ClipNormal, want) {
		t.Errorf("vertex clip normal = %v, want %v", v.ClipNormal, want)
	}
}

func TestTransformElementSkipsNormals(t *testing.T) {
	m := NewModelViewProjection(math3d.Identity(), math3d.Identity(), nil)
	m.SetModel(math3d.Translate(math3d.V3(1, 0, 0)))
	m.CalculateMVPMatrix()

	el := scene.NewElement("e")
	v := el.AddVertex(scene.NewVertexWithNormal(math3d.Zero3(), math3d.V3(0, 1, 0)))
	m.TransformElement(el, false)

	if !vec4Near(v.WorldPos, math3d.V4(1, 0, 0, 1)) {
		t.Errorf("world pos = %v", v.WorldPos)
	}
	if v.WorldNormal != (math3d.Vec4{}) {
		t.Errorf("normal written in a depth-only transform: %v", v.WorldNormal)
	}
}
