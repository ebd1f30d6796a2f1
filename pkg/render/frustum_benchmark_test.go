package render

import (
	"math"
	"math/rand"
	"testing"

	"github.com/taigrr/softrender/pkg/math3d"
	"github.com/taigrr/softrender/pkg/scene"
)

// BenchmarkFrustumExtract benchmarks frustum plane extraction from view-projection matrix.
func BenchmarkFrustumExtract(b *testing.B) {
	fov := math.Pi / 3
	aspect := 16.0 / 9.0
	near := 0.1
	far := 100.0

	proj := math3d.Perspective(fov, aspect, near, far)
	view := math3d.Identity()
	viewProj := proj.Mul(view)

	for b.Loop() {
		_ = NewFrustumFromMatrix(viewProj)
	}
}

// BenchmarkAABBIntersection benchmarks AABB vs frustum intersection test.
func BenchmarkAABBIntersection(b *testing.B) {
	fov := math.Pi / 3
	aspect := 16.0 / 9.0
	near := 0.1
	far := 100.0

	proj := math3d.Perspective(fov, aspect, near, far)
	view := math3d.Identity()
	viewProj := proj.Mul(view)
	frustum := NewFrustumFromMatrix(viewProj)

	// AABB in front of camera (visible)
	visibleBounds := AABB{
		Min: math3d.V3(-1, -1, -15),
		Max: math3d.V3(1, 1, -5),
	}

	b.Run("visible", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = frustum.IntersectAABB(visibleBounds)
		}
	})

	// AABB behind camera (culled quickly)
	culledBounds := AABB{
		Min: math3d.V3(-1, -1, 5),
		Max: math3d.V3(1, 1, 15),
	}

	b.Run("culled", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = frustum.IntersectAABB(culledBounds)
		}
	})
}

// BenchmarkTransformAABB benchmarks AABB transformation.
func BenchmarkTransformAABB(b *testing.B) {
	local := AABB{
		Min: math3d.V3(-1, -1, -1),
		Max: math3d.V3(1, 1, 1),
	}
	transform := math3d.Translate(math3d.V3(10, 5, -20)).Mul(math3d.RotateY(0.5)).Mul(math3d.ScaleUniform(2))

	for b.Loop() {
		_ = local.Transform(transform)
	}
}

// BenchmarkCullingScenario simulates culling N objects, some visible, some not.
func BenchmarkCullingScenario(b *testing.B) {
	// Setup camera and frustum
	cam := NewCamera(math3d.V3(0, 10, 20), math3d.Zero3())
	gc := NewPerspectiveContext(160, 90, math.Pi/3, 0.1, 1000)
	proj, _ := gc.ProjectionMatrix()

	viewProj := proj.Mul(cam.ViewMatrix())
	frustum := NewFrustumFromMatrix(viewProj)

	// Generate random objects: some in view, some out
	rng := rand.New(rand.NewSource(42))
	objectCount := 100

	type object struct {
		bounds    AABB
		transform math3d.Mat4
	}
	objects := make([]object, objectCount)

	for i := range objectCount {
		// Random position: X, Z in [-50, 50], Y in [0, 10]
		x := rng.Float64()*100 - 50
		y := rng.Float64() * 10
		z := rng.Float64()*100 - 50

		objects[i] = object{
			bounds: AABB{
				Min: math3d.V3(-1, -1, -1),
				Max: math3d.V3(1, 1, 1),
			},
			transform: math3d.Translate(math3d.V3(x, y, z)),
		}
	}

	b.Run("with_culling", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			visible := 0
			for _, obj := range objects {
				worldBounds := obj.bounds.Transform(obj.transform)
				if frustum.IntersectAABB(worldBounds) {
					visible++
				}
			}
			_ = visible
		}
	})

	b.Run("no_culling", func(b *testing.B) {
		// Simulate just doing work without culling
		for i := 0; i < b.N; i++ {
			visible := 0
			for range objects {
				// Pretend we "render" everything
				visible++
			}
			_ = visible
		}
	})
}

// BenchmarkElementCulling renders a field of boxes where half sit behind the
// camera, so the element bounds test rejects them before any vertex work.
func BenchmarkElementCulling(b *testing.B) {
	world := scene.NewWorld(scene.ColorBlack)
	rng := rand.New(rand.NewSource(42))
	for i := range 100 {
		var z float64
		if i%2 == 0 {
			z = rng.Float64()*30 - 40 // Z from -40 to -10
		} else {
			z = rng.Float64()*20 + 25 // Z from 25 to 45
		}
		box := testBox(1, scene.RGB(100, 150, 200))
		box.Translate(math3d.V3(rng.Float64()*40-20, rng.Float64()*10, z))
		world.AddRoot(box)
	}

	cam := NewCamera(math3d.V3(0, 10, 20), math3d.Zero3())
	lights := NewLighting(NewAmbientLight(scene.ColorWhite, 0.3), NewDirectionalLight(math3d.V3(-0.5, -1, -0.3), scene.ColorWhite, 1))
	gc := NewPerspectiveContext(160, 120, math.Pi/3, 0.1, 1000)
	rc := DefaultRenderContext()
	engine := NewEngine(nil, nil)

	for b.Loop() {
		if _, err := engine.Render(world, lights, cam, rc, gc); err != nil {
			b.Fatal(err)
		}
	}
}
