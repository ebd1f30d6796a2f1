package render

import (
	"math"

	"github.com/taigrr/softrender/pkg/math3d"
	"github.com/taigrr/softrender/pkg/scene"
)

// screenVertex is a vertex after the perspective divide and viewport mapping.
type screenVertex struct {
	X, Y float64 // Pixel coordinates
	Z    float64 // NDC depth
	W    float64 // Clip W, for perspective-correct interpolation
}

// Rasterizer scan-converts clip-space triangles and lines into a color buffer
// and a depth map. A nil color buffer makes it depth-only.
type Rasterizer struct {
	fb     *Framebuffer
	depth  *MapView
	width  int
	height int
}

// NewRasterizer creates a rasterizer over the given buffers. fb may be nil.
func NewRasterizer(fb *Framebuffer, depth *MapView) *Rasterizer {
	return &Rasterizer{
		fb:     fb,
		depth:  depth,
		width:  depth.Width,
		height: depth.Height,
	}
}

// Width returns the viewport width.
func (r *Rasterizer) Width() int { return r.width }

// Height returns the viewport height.
func (r *Rasterizer) Height() int { return r.height }

// toScreen maps a clip position to pixel coordinates.
func (r *Rasterizer) toScreen(clip math3d.Vec4) screenVertex {
	ndc := clip.PerspectiveDivide()
	return screenVertex{
		X: (ndc.X + 1) * 0.5 * float64(r.width),
		Y: (1 - ndc.Y) * 0.5 * float64(r.height), // Y is flipped
		Z: ndc.Z,
		W: clip.W,
	}
}

// isInViewFrustum is the coarse visibility test. A triangle is rejected when
// any vertex sits at or behind the eye plane, or when all three vertices lie
// beyond the same face of the canonical cube.
func isInViewFrustum(c [3]math3d.Vec4) bool {
	for i := range 3 {
		if c[i].W <= 0 {
			return false
		}
	}
	outside := func(f func(v math3d.Vec4) bool) bool {
		return f(c[0]) && f(c[1]) && f(c[2])
	}
	switch {
	case outside(func(v math3d.Vec4) bool { return v.X < -v.W }),
		outside(func(v math3d.Vec4) bool { return v.X > v.W }),
		outside(func(v math3d.Vec4) bool { return v.Y < -v.W }),
		outside(func(v math3d.Vec4) bool { return v.Y > v.W }),
		outside(func(v math3d.Vec4) bool { return v.Z < -v.W }),
		outside(func(v math3d.Vec4) bool { return v.Z > v.W }):
		return false
	}
	return true
}

// edgeCoeffs returns A, B, C for the edge function A*x + B*y + C.
// Positive = left of edge, negative = right of edge, zero = on edge.
func edgeCoeffs(x0, y0, x1, y1 float64) (A, B, C float64) {
	A = y0 - y1 // dy
	B = x1 - x0 // -dx
	C = x0*y1 - x1*y0
	return
}

// edgeFunc evaluates edge function at point (x, y)
func edgeFunc(A, B, C, x, y float64) float64 {
	return A*x + B*y + C
}

// fragment is one covered pixel handed to a fragment callback.
type fragment struct {
	x, y       int
	z          float64
	b0, b1, b2 float64 // Screen-space barycentric weights
}

// fill walks the screen bounding box of the triangle with incremental edge
// functions. Pixels are sampled at their centers and coverage is inclusive on
// every edge, for either winding. With depthTest the fragment is kept only if
// nearer than the stored depth, which it then replaces. shade may be nil for
// depth-only passes. It returns the number of fragments written.
func (r *Rasterizer) fill(sv [3]screenVertex, depthTest bool, shade func(f *fragment) scene.Color) int {
	minX := int(math.Max(0, math.Floor(min3(sv[0].X, sv[1].X, sv[2].X))))
	maxX := int(math.Min(float64(r.width-1), math.Ceil(max3(sv[0].X, sv[1].X, sv[2].X))))
	minY := int(math.Max(0, math.Floor(min3(sv[0].Y, sv[1].Y, sv[2].Y))))
	maxY := int(math.Min(float64(r.height-1), math.Ceil(max3(sv[0].Y, sv[1].Y, sv[2].Y))))

	if minX > maxX || minY > maxY {
		return 0
	}

	// Edge 0: v1 -> v2, Edge 1: v2 -> v0, Edge 2: v0 -> v1
	A0, B0, C0 := edgeCoeffs(sv[1].X, sv[1].Y, sv[2].X, sv[2].Y)
	A1, B1, C1 := edgeCoeffs(sv[2].X, sv[2].Y, sv[0].X, sv[0].Y)
	A2, B2, C2 := edgeCoeffs(sv[0].X, sv[0].Y, sv[1].X, sv[1].Y)

	// 2 * signed area; its sign follows the winding.
	area2 := edgeFunc(A0, B0, C0, sv[0].X, sv[0].Y)
	if area2 == 0 {
		return 0
	}
	invArea := 1.0 / area2

	px := float64(minX) + 0.5
	py := float64(minY) + 0.5

	w0Row := edgeFunc(A0, B0, C0, px, py)
	w1Row := edgeFunc(A1, B1, C1, px, py)
	w2Row := edgeFunc(A2, B2, C2, px, py)

	written := 0
	var f fragment
	for y := minY; y <= maxY; y++ {
		w0 := w0Row
		w1 := w1Row
		w2 := w2Row

		for x := minX; x <= maxX; x++ {
			b0 := w0 * invArea
			b1 := w1 * invArea
			b2 := w2 * invArea

			if b0 >= 0 && b1 >= 0 && b2 >= 0 {
				z := b0*sv[0].Z + b1*sv[1].Z + b2*sv[2].Z
				if !depthTest || r.depth.TestAndSet(x, y, z) {
					if shade != nil && r.fb != nil {
						f = fragment{x: x, y: y, z: z, b0: b0, b1: b1, b2: b2}
						r.fb.SetPixel(x, y, shade(&f))
					}
					written++
				}
			}

			w0 += A0
			w1 += A1
			w2 += A2
		}

		w0Row += B0
		w1Row += B1
		w2Row += B2
	}
	return written
}

// FillDepth rasterizes a clip-space triangle into the depth map only.
func (r *Rasterizer) FillDepth(clip [3]math3d.Vec4) int {
	sv := [3]screenVertex{r.toScreen(clip[0]), r.toScreen(clip[1]), r.toScreen(clip[2])}
	return r.fill(sv, true, nil)
}

// triangleShading describes how fragments of one triangle are colored.
type triangleShading struct {
	flat      bool
	flatColor scene.Color

	terms [3]shadeTerms // Per-vertex lighting, Gouraud only
	world [3]math3d.Vec4

	texture *scene.TextureBinding
	casters []*Light // nil disables shadow sampling
	bias    float64
}

// DrawTriangle rasterizes a clip-space triangle with depth testing.
func (r *Rasterizer) DrawTriangle(clip [3]math3d.Vec4, sh *triangleShading) int {
	sv := [3]screenVertex{r.toScreen(clip[0]), r.toScreen(clip[1]), r.toScreen(clip[2])}

	if sh.flat {
		c := sh.flatColor
		return r.fill(sv, true, func(*fragment) scene.Color { return c })
	}

	var invW [3]float64
	for i := range 3 {
		if sv[i].W != 0 {
			invW[i] = 1.0 / sv[i].W
		}
	}

	var interp shadeTerms
	shadowed := make([]bool, len(sh.casters))

	return r.fill(sv, true, func(f *fragment) scene.Color {
		lerpTerms(&sh.terms, f.b0, f.b1, f.b2, &interp)

		if len(sh.casters) > 0 {
			// Perspective-correct world position.
			p0, p1, p2 := f.b0*invW[0], f.b1*invW[1], f.b2*invW[2]
			if sum := p0 + p1 + p2; sum != 0 {
				p0, p1, p2 = p0/sum, p1/sum, p2/sum
			}
			world := sh.world[0].Scale(p0).Add(sh.world[1].Scale(p1)).Add(sh.world[2].Scale(p2))
			for i, light := range sh.casters {
				shadowed[i] = light.occludes(world, sh.bias)
			}
		}

		c := interp.resolve(shadowed)
		if sh.texture != nil {
			if tc, ok := sampleBinding(sh.texture, f, invW); ok {
				c = c.Mul(scene.ColorVec(tc))
			}
		}
		return scene.VecColor(c)
	})
}

// sampleBinding interpolates the (s, t, q) coordinates and samples the
// texture at (s/q, t/q).
func sampleBinding(tb *scene.TextureBinding, f *fragment, invW [3]float64) (scene.Color, bool) {
	w0, w1, w2 := f.b0, f.b1, f.b2
	if tb.PerspectiveCorrect {
		w0, w1, w2 = w0*invW[0], w1*invW[1], w2*invW[2]
	}
	st := tb.Coords[0].Scale(w0).Add(tb.Coords[1].Scale(w1)).Add(tb.Coords[2].Scale(w2))
	if st.Z == 0 {
		return scene.Color{}, false
	}
	return tb.Texture.Sample(st.X/st.Z, st.Y/st.Z), true
}

// DrawLine draws a clip-space segment. With writeDepth the interpolated
// depth is stored along the line without a depth test. Segments with an
// endpoint at or behind the eye plane are skipped.
func (r *Rasterizer) DrawLine(a, b math3d.Vec4, c scene.Color, writeDepth bool) int {
	if a.W <= 0 || b.W <= 0 {
		return 0
	}
	sa, sb := r.toScreen(a), r.toScreen(b)

	x0, y0, x1, y1, t0, t1, ok := clipSegment(sa.X, sa.Y, sb.X, sb.Y, float64(r.width), float64(r.height))
	if !ok {
		return 0
	}

	written := 0
	bresenham(int(math.Floor(x0)), int(math.Floor(y0)), int(math.Floor(x1)), int(math.Floor(y1)), func(x, y int, t float64) {
		if !r.depth.InBounds(x, y) {
			return
		}
		if writeDepth {
			s := t0 + (t1-t0)*t
			r.depth.Set(x, y, sa.Z+(sb.Z-sa.Z)*s)
		}
		if r.fb != nil {
			r.fb.SetPixel(x, y, c)
		}
		written++
	})
	return written
}

// DrawEdges draws the three edges of a clip-space triangle.
func (r *Rasterizer) DrawEdges(clip [3]math3d.Vec4, c scene.Color, writeDepth bool) int {
	n := r.DrawLine(clip[0], clip[1], c, writeDepth)
	n += r.DrawLine(clip[1], clip[2], c, writeDepth)
	n += r.DrawLine(clip[2], clip[0], c, writeDepth)
	return n
}

// clipSegment clips a screen segment to [0,w) x [0,h) (Liang-Barsky). It
// returns the clipped endpoints and their parameters along the original
// segment.
func clipSegment(x0, y0, x1, y1, w, h float64) (cx0, cy0, cx1, cy1, t0, t1 float64, ok bool) {
	const inset = 1e-6
	dx, dy := x1-x0, y1-y0
	t0, t1 = 0, 1

	p := [4]float64{-dx, dx, -dy, dy}
	q := [4]float64{x0, w - inset - x0, y0, h - inset - y0}
	for i := range 4 {
		if p[i] == 0 {
			if q[i] < 0 {
				return 0, 0, 0, 0, 0, 0, false
			}
			continue
		}
		t := q[i] / p[i]
		if p[i] < 0 {
			if t > t1 {
				return 0, 0, 0, 0, 0, 0, false
			}
			t0 = math.Max(t0, t)
		} else {
			if t < t0 {
				return 0, 0, 0, 0, 0, 0, false
			}
			t1 = math.Min(t1, t)
		}
	}
	return x0 + t0*dx, y0 + t0*dy, x0 + t1*dx, y0 + t1*dy, t0, t1, true
}

func min3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}

func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}
