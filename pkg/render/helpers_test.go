package render

import (
	"math"

	"github.com/taigrr/softrender/pkg/math3d"
	"github.com/taigrr/softrender/pkg/scene"
	"github.com/taigrr/softrender/pkg/shapes"
)

// testBox returns a closed cube of the given size and color.
func testBox(size float64, c scene.Color) *scene.Element {
	box := shapes.Cube(size)
	box.SetColor(c)
	return box
}

// testQuad returns an open quad on the XY plane at depth z, facing +Z.
func testQuad(half, z float64, c scene.Color) *scene.Element {
	el := scene.NewElement("quad")
	v0 := el.AddVertex(scene.NewVertex(-half, -half, z))
	v1 := el.AddVertex(scene.NewVertex(half, -half, z))
	v2 := el.AddVertex(scene.NewVertex(half, half, z))
	v3 := el.AddVertex(scene.NewVertex(-half, half, z))
	el.AddTriangle(v0, v1, v2)
	el.AddTriangle(v0, v2, v3)
	el.SetColor(c)
	return el
}

// testGround returns an open horizontal quad at height y, facing +Y.
func testGround(half, y float64, c scene.Color) *scene.Element {
	el := scene.NewElement("ground")
	v0 := el.AddVertex(scene.NewVertex(-half, y, -half))
	v1 := el.AddVertex(scene.NewVertex(-half, y, half))
	v2 := el.AddVertex(scene.NewVertex(half, y, half))
	v3 := el.AddVertex(scene.NewVertex(half, y, -half))
	for _, tri := range []*scene.Triangle{el.AddTriangle(v0, v1, v2), el.AddTriangle(v0, v2, v3)} {
		tri.SetNormal(math3d.V3(0, 1, 0))
	}
	el.SetColor(c)
	return el
}

// orthoFront is a 60x60 orthographic view of [-3,3]^2 looking down -Z.
func orthoFront() (*Camera, GraphicContext) {
	return NewCamera(math3d.V3(0, 0, 5), math3d.Zero3()), NewOrthographicContext(60, 60, 3, 0.1, 100)
}

// screenPoint projects a world point to pixel coordinates the way the
// rasterizer maps clip space. ok is false off screen.
func screenPoint(cam *Camera, gc GraphicContext, p math3d.Vec3) (x, y float64, ok bool) {
	proj, err := gc.ProjectionMatrix()
	if err != nil {
		return 0, 0, false
	}
	clip := proj.Mul(cam.ViewMatrix()).MulVec4(p.Point())
	if clip.W <= 0 {
		return 0, 0, false
	}
	ndc := clip.PerspectiveDivide()
	if math.Abs(ndc.X) > 1 || math.Abs(ndc.Y) > 1 || math.Abs(ndc.Z) > 1 {
		return 0, 0, false
	}
	return (ndc.X + 1) * 0.5 * float64(gc.Width), (1 - ndc.Y) * 0.5 * float64(gc.Height), true
}

func colorNear(a, b scene.Color, tol int) bool {
	d := func(x, y uint8) int { return int(math.Abs(float64(x) - float64(y))) }
	return d(a.R, b.R) <= tol && d(a.G, b.G) <= tol && d(a.B, b.B) <= tol
}

func countNot(fb *Framebuffer, bg scene.Color) int {
	n := 0
	for _, p := range fb.Pixels {
		if p != bg {
			n++
		}
	}
	return n
}
