// Package shapes builds procedural geometry as scene elements.
package shapes

import (
	"math"

	"github.com/taigrr/softrender/pkg/math3d"
	"github.com/taigrr/softrender/pkg/scene"
)

// Box returns a closed box centered on the origin. The 8 corners are shared
// between faces; each triangle carries its outward face normal and all faces
// wind counter-clockwise seen from outside.
func Box(width, height, depth float64) *scene.Element {
	el := scene.NewElement("box")
	el.Closed = true

	hx, hy, hz := width/2, height/2, depth/2
	pos := [8]math3d.Vec3{
		{X: -hx, Y: -hy, Z: -hz}, {X: hx, Y: -hy, Z: -hz},
		{X: hx, Y: hy, Z: -hz}, {X: -hx, Y: hy, Z: -hz},
		{X: -hx, Y: -hy, Z: hz}, {X: hx, Y: -hy, Z: hz},
		{X: hx, Y: hy, Z: hz}, {X: -hx, Y: hy, Z: hz},
	}
	var v [8]*scene.Vertex
	for i, p := range pos {
		v[i] = el.AddVertex(scene.NewVertex(p.X, p.Y, p.Z))
	}

	faces := []struct {
		idx    [6]int
		normal math3d.Vec3
	}{
		{[6]int{4, 5, 6, 4, 6, 7}, math3d.V3(0, 0, 1)},  // Front
		{[6]int{1, 0, 3, 1, 3, 2}, math3d.V3(0, 0, -1)}, // Back
		{[6]int{5, 1, 2, 5, 2, 6}, math3d.V3(1, 0, 0)},  // Right
		{[6]int{0, 4, 7, 0, 7, 3}, math3d.V3(-1, 0, 0)}, // Left
		{[6]int{3, 7, 6, 3, 6, 2}, math3d.V3(0, 1, 0)},  // Top
		{[6]int{0, 1, 5, 0, 5, 4}, math3d.V3(0, -1, 0)}, // Bottom
	}
	for _, f := range faces {
		for t := 0; t < 6; t += 3 {
			tri := el.AddTriangle(v[f.idx[t]], v[f.idx[t+1]], v[f.idx[t+2]])
			tri.SetNormal(f.normal)
		}
	}
	return el
}

// Cube returns a Box with equal sides.
func Cube(size float64) *scene.Element {
	el := Box(size, size, size)
	el.Name = "cube"
	return el
}

// Sphere returns a closed UV sphere with smooth vertex normals. segments is
// the number of slices around the Y axis; there are half as many stacks.
func Sphere(radius float64, segments int) *scene.Element {
	segments = max(segments, 3)
	stacks := max(segments/2, 2)

	el := scene.NewElement("sphere")
	el.Closed = true

	north := el.AddVertex(scene.NewVertexWithNormal(math3d.V3(0, radius, 0), math3d.V3(0, 1, 0)))
	south := el.AddVertex(scene.NewVertexWithNormal(math3d.V3(0, -radius, 0), math3d.V3(0, -1, 0)))

	// rings[i][j]: stack i (1..stacks-1), slice j
	rings := make([][]*scene.Vertex, stacks-1)
	for i := range rings {
		phi := math.Pi * float64(i+1) / float64(stacks)
		rings[i] = make([]*scene.Vertex, segments)
		for j := range segments {
			theta := 2 * math.Pi * float64(j) / float64(segments)
			n := math3d.V3(math.Sin(phi)*math.Cos(theta), math.Cos(phi), -math.Sin(phi)*math.Sin(theta))
			rings[i][j] = el.AddVertex(scene.NewVertexWithNormal(n.Scale(radius), n))
		}
	}

	for j := range segments {
		k := (j + 1) % segments
		el.AddTriangle(north, rings[0][j], rings[0][k])
		for i := 0; i < len(rings)-1; i++ {
			a, b := rings[i][j], rings[i][k]
			c, d := rings[i+1][j], rings[i+1][k]
			el.AddTriangle(a, c, d)
			el.AddTriangle(a, d, b)
		}
		last := rings[len(rings)-1]
		el.AddTriangle(last[j], south, last[k])
	}
	return el
}

// Plane returns a flat grid on the XZ plane facing +Y, split into
// divisions x divisions quads. It is open, so back faces are never culled.
func Plane(width, depth float64, divisions int) *scene.Element {
	divisions = max(divisions, 1)
	el := scene.NewElement("plane")

	up := math3d.V3(0, 1, 0)
	n := divisions + 1
	grid := make([]*scene.Vertex, n*n)
	for i := range n {
		z := -depth/2 + depth*float64(i)/float64(divisions)
		for j := range n {
			x := -width/2 + width*float64(j)/float64(divisions)
			grid[i*n+j] = el.AddVertex(scene.NewVertexWithNormal(math3d.V3(x, 0, z), up))
		}
	}
	for i := range divisions {
		for j := range divisions {
			a := grid[i*n+j]
			b := grid[i*n+j+1]
			c := grid[(i+1)*n+j]
			d := grid[(i+1)*n+j+1]
			// Counter-clockwise seen from +Y.
			el.AddTriangle(a, c, d)
			el.AddTriangle(a, d, b)
		}
	}
	return el
}

// ApplyPlanarTexture binds tex to every triangle, mapping the element's
// bounding box in X to u and in Z to v.
func ApplyPlanarTexture(el *scene.Element, tex scene.Texture) {
	lo, hi, ok := el.Bounds()
	if !ok {
		return
	}
	size := hi.Sub(lo)
	uv := func(v *scene.Vertex) math3d.Vec2 {
		p := v.Position.Vec3()
		var u, w float64
		if size.X > 0 {
			u = (p.X - lo.X) / size.X
		}
		if size.Z > 0 {
			w = (p.Z - lo.Z) / size.Z
		}
		return math3d.V2(u, w)
	}
	for _, t := range el.Triangles {
		t.Texture = scene.NewTextureBinding(tex, uv(t.V[0]), uv(t.V[1]), uv(t.V[2]))
	}
}
