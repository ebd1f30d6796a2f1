package models

import (
	"testing"

	"github.com/taigrr/softrender/pkg/math3d"
	"github.com/taigrr/softrender/pkg/scene"
	"github.com/taigrr/softrender/pkg/shapes"
)

func TestCalculateFlatNormals(t *testing.T) {
	el := scene.NewElement("tri")
	a := el.AddVertex(scene.NewVertex(0, 0, 0))
	b := el.AddVertex(scene.NewVertex(0, 0, 1))
	c := el.AddVertex(scene.NewVertex(1, 0, 0))
	el.AddTriangle(a, b, c)
	el.AddTriangle(a, a, c) // Degenerate

	CalculateFlatNormals(el)

	if n := el.Triangles[0].Normal.Vec3(); !n.ApproxEqual(math3d.V3(0, 1, 0), 1e-9) {
		t.Errorf("normal = %v, want +Y", n)
	}
	if el.Triangles[1].HasNormal {
		t.Error("degenerate triangle got a normal")
	}
}

func TestCalculateSmoothNormals(t *testing.T) {
	// Two faces of a roof meeting at the ridge.
	el := scene.NewElement("roof")
	l := el.AddVertex(scene.NewVertex(-1, 0, 0))
	r := el.AddVertex(scene.NewVertex(1, 0, 0))
	top0 := el.AddVertex(scene.NewVertex(0, 1, 0))
	top1 := el.AddVertex(scene.NewVertex(0, 1, -1))
	el.AddTriangle(l, top0, top1)
	el.AddTriangle(r, top1, top0)
	lone := el.AddVertex(scene.NewVertex(5, 5, 5))

	CalculateSmoothNormals(el)

	if !top0.HasNormal || !top0.Normal.Vec3().ApproxEqual(math3d.V3(0, 1, 0), 1e-9) {
		t.Errorf("ridge normal = %v, want +Y", top0.Normal)
	}
	if !l.Normal.Vec3().ApproxEqual(math3d.V3(-1, 1, 0).Normalize(), 1e-9) {
		t.Errorf("left normal = %v", l.Normal)
	}
	if lone.HasNormal {
		t.Error("unreferenced vertex got a normal")
	}
}

func TestSubtreeBounds(t *testing.T) {
	world := scene.NewWorld(scene.ColorBlack)
	root := world.AddRoot(scene.NewElement("root"))
	world.Element(root).Translate(math3d.V3(10, 0, 0))

	child := shapes.Cube(2)
	child.Translate(math3d.V3(0, 5, 0))
	if _, err := world.AddChild(root, child); err != nil {
		t.Fatal(err)
	}

	box, ok := SubtreeBounds(world, root)
	if !ok {
		t.Fatal("no bounds")
	}
	if !box.Min.ApproxEqual(math3d.V3(9, 4, -1), 1e-9) || !box.Max.ApproxEqual(math3d.V3(11, 6, 1), 1e-9) {
		t.Errorf("bounds = %v..%v", box.Min, box.Max)
	}

	empty := world.AddRoot(scene.NewElement("empty"))
	if _, ok := SubtreeBounds(world, empty); ok {
		t.Error("empty subtree reported bounds")
	}
}

func TestFit(t *testing.T) {
	world := scene.NewWorld(scene.ColorBlack)
	root := world.AddRoot(scene.NewElement("model"))
	box := shapes.Box(4, 2, 1)
	box.Translate(math3d.V3(3, 3, 3))
	if _, err := world.AddChild(root, box); err != nil {
		t.Fatal(err)
	}

	Fit(world, root, 2)

	fitted, _ := SubtreeBounds(world, root)
	if !fitted.Min.ApproxEqual(math3d.V3(-1, -0.5, -0.25), 1e-9) || !fitted.Max.ApproxEqual(math3d.V3(1, 0.5, 0.25), 1e-9) {
		t.Errorf("fitted bounds = %v..%v", fitted.Min, fitted.Max)
	}
}
