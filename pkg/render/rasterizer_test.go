package render

import (
	"math"
	"testing"

	"github.com/taigrr/softrender/pkg/math3d"
	"github.com/taigrr/softrender/pkg/scene"
)

// createTestRasterizer creates a rasterizer with cleared buffers.
func createTestRasterizer(width, height int) (*Rasterizer, *Framebuffer, *MapView) {
	fb := NewFramebuffer(width, height)
	fb.Clear(scene.ColorBlack)
	depth := NewMapView(width, height)
	return NewRasterizer(fb, depth), fb, depth
}

func flat(c scene.Color) *triangleShading {
	return &triangleShading{flat: true, flatColor: c}
}

// Covers the whole viewport.
func screenTriangle(z float64) [3]math3d.Vec4 {
	return [3]math3d.Vec4{
		math3d.V4(-1, -1, z, 1),
		math3d.V4(3, -1, z, 1),
		math3d.V4(-1, 3, z, 1),
	}
}

func TestIsInViewFrustum(t *testing.T) {
	tests := []struct {
		name string
		clip [3]math3d.Vec4
		want bool
	}{
		{"inside", [3]math3d.Vec4{math3d.V4(0, 0, 0, 1), math3d.V4(0.5, 0, 0, 1), math3d.V4(0, 0.5, 0, 1)}, true},
		{"straddles right plane", [3]math3d.Vec4{math3d.V4(0, 0, 0, 1), math3d.V4(5, 0, 0, 1), math3d.V4(5, 1, 0, 1)}, true},
		{"all right", [3]math3d.Vec4{math3d.V4(2, 0, 0, 1), math3d.V4(3, 0, 0, 1), math3d.V4(2, 1, 0, 1)}, false},
		{"all below", [3]math3d.Vec4{math3d.V4(0, -2, 0, 1), math3d.V4(1, -3, 0, 1), math3d.V4(0, -5, 0, 1)}, false},
		{"all beyond far", [3]math3d.Vec4{math3d.V4(0, 0, 2, 1), math3d.V4(0.5, 0, 2, 1), math3d.V4(0, 0.5, 2, 1)}, false},
		{"vertex behind eye", [3]math3d.Vec4{math3d.V4(0, 0, 0, 1), math3d.V4(0.5, 0, 0, -1), math3d.V4(0, 0.5, 0, 1)}, false},
		{"vertex on eye plane", [3]math3d.Vec4{math3d.V4(0, 0, 0, 1), math3d.V4(0.5, 0, 0, 0), math3d.V4(0, 0.5, 0, 1)}, false},
		{"spread over different planes", [3]math3d.Vec4{math3d.V4(2, 0, 0, 1), math3d.V4(-2, 0, 0, 1), math3d.V4(0, 2, 0, 1)}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := isInViewFrustum(tc.clip); got != tc.want {
				t.Errorf("isInViewFrustum = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestFillBothWindings(t *testing.T) {
	ccw := [3]math3d.Vec4{math3d.V4(-1, -1, 0, 1), math3d.V4(1, -1, 0, 1), math3d.V4(-1, 1, 0, 1)}
	cw := [3]math3d.Vec4{ccw[0], ccw[2], ccw[1]}

	for name, clip := range map[string][3]math3d.Vec4{"ccw": ccw, "cw": cw} {
		t.Run(name, func(t *testing.T) {
			r, fb, _ := createTestRasterizer(10, 10)
			n := r.DrawTriangle(clip, flat(scene.ColorRed))
			if n == 0 {
				t.Fatal("no fragments written")
			}
			// Lower-left half of the screen.
			if got := fb.GetPixel(2, 7); got != scene.ColorRed {
				t.Errorf("inside pixel = %v, want red", got)
			}
			if got := fb.GetPixel(7, 2); got != scene.ColorBlack {
				t.Errorf("outside pixel = %v, want black", got)
			}
		})
	}
}

func TestFillDegenerate(t *testing.T) {
	r, fb, depth := createTestRasterizer(10, 10)
	line := [3]math3d.Vec4{math3d.V4(-1, -1, 0, 1), math3d.V4(0, 0, 0, 1), math3d.V4(1, 1, 0, 1)}
	if n := r.DrawTriangle(line, flat(scene.ColorRed)); n != 0 {
		t.Errorf("degenerate triangle wrote %d fragments", n)
	}
	if countNot(fb, scene.ColorBlack) != 0 || depth.Coverage() != 0 {
		t.Error("degenerate triangle touched the buffers")
	}
}

func TestDepthTest(t *testing.T) {
	tests := []struct {
		name  string
		first float64
		color scene.Color
	}{
		{"far then near", 0.5, scene.ColorRed},
		{"near then far", -0.5, scene.ColorGreen},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, fb, depth := createTestRasterizer(8, 8)
			r.DrawTriangle(screenTriangle(tc.first), flat(tc.color))
			r.DrawTriangle(screenTriangle(-tc.first), flat(scene.ColorBlue))

			want := scene.ColorBlue
			if tc.first < 0 {
				want = tc.color
			}
			for y := range 8 {
				for x := range 8 {
					if got := fb.GetPixel(x, y); got != want {
						t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, want)
					}
				}
			}
			if got := depth.At(4, 4); math.Abs(got+0.5) > 1e-9 {
				t.Errorf("depth = %v, want -0.5", got)
			}
		})
	}
}

func TestFillDepthOnly(t *testing.T) {
	depth := NewMapView(16, 16)
	r := NewRasterizer(nil, depth)

	n := r.FillDepth(screenTriangle(0.25))
	if n != 16*16 {
		t.Errorf("fragments = %d, want %d", n, 16*16)
	}
	if depth.Coverage() != 16*16 {
		t.Errorf("coverage = %d", depth.Coverage())
	}
	if got := depth.At(3, 3); math.Abs(got-0.25) > 1e-9 {
		t.Errorf("depth = %v, want 0.25", got)
	}
}

func TestGouraudInterpolation(t *testing.T) {
	r, fb, _ := createTestRasterizer(60, 60)
	clip := [3]math3d.Vec4{math3d.V4(-1, -1, 0, 1), math3d.V4(1, -1, 0, 1), math3d.V4(0, 1, 0, 1)}
	sh := &triangleShading{}
	sh.terms[0].base = math3d.V3(1, 0, 0)
	sh.terms[1].base = math3d.V3(0, 1, 0)
	sh.terms[2].base = math3d.V3(0, 0, 1)

	r.DrawTriangle(clip, sh)

	// Near the centroid every channel gets about a third.
	if got := fb.GetPixel(30, 39); !colorNear(got, scene.RGB(85, 85, 85), 6) {
		t.Errorf("centroid = %v, want about (85,85,85)", got)
	}
	// Near a corner the corner color dominates.
	if got := fb.GetPixel(2, 58); got.R < 200 || got.G > 40 || got.B > 40 {
		t.Errorf("corner = %v, want mostly red", got)
	}
}

type solidTexture struct{ c scene.Color }

func (s solidTexture) Sample(u, v float64) scene.Color { return s.c }

func TestTextureModulation(t *testing.T) {
	r, fb, _ := createTestRasterizer(10, 10)
	sh := &triangleShading{
		texture: scene.NewTextureBinding(solidTexture{scene.RGB(200, 100, 50)}, math3d.V2(0, 0), math3d.V2(1, 0), math3d.V2(0, 1)),
	}
	half := math3d.V3(0.5, 0.5, 0.5)
	sh.terms[0].base, sh.terms[1].base, sh.terms[2].base = half, half, half

	r.DrawTriangle(screenTriangle(0), sh)

	if got := fb.GetPixel(5, 5); !colorNear(got, scene.RGB(100, 50, 25), 1) {
		t.Errorf("pixel = %v, want texture tinted by half", got)
	}
}

func TestSampleBindingPerspective(t *testing.T) {
	tex := NewGradientTexture(2, 1, scene.ColorBlack, scene.ColorWhite)
	tex.FilterMode = FilterNearest
	tb := scene.NewTextureBinding(tex, math3d.V2(0, 0), math3d.V2(1, 0), math3d.V2(0, 0))

	// Vertex 1 is three times further away, so halfway on screen is
	// a quarter of the way in texture space.
	invW := [3]float64{1, 1.0 / 3, 1}
	f := &fragment{b0: 0.5, b1: 0.5}
	got, ok := sampleBinding(tb, f, invW)
	if !ok || got != scene.ColorBlack {
		t.Errorf("perspective sample = %v, %v; want black", got, ok)
	}

	tb.PerspectiveCorrect = false
	f = &fragment{b0: 0.4, b1: 0.6}
	got, ok = sampleBinding(tb, f, invW)
	if !ok || got != scene.ColorWhite {
		t.Errorf("affine sample = %v, %v; want white", got, ok)
	}
}

func TestDrawLine(t *testing.T) {
	t.Run("writes depth without testing", func(t *testing.T) {
		r, fb, depth := createTestRasterizer(20, 20)
		depth.Clear(-1) // Nearer than anything
		n := r.DrawLine(math3d.V4(-0.9, 0, 0.5, 1), math3d.V4(0.9, 0, 0.5, 1), scene.ColorWhite, true)
		if n == 0 {
			t.Fatal("no pixels drawn")
		}
		if countNot(fb, scene.ColorBlack) != n {
			t.Errorf("framebuffer pixels = %d, want %d", countNot(fb, scene.ColorBlack), n)
		}
		if got := depth.At(10, 10); math.Abs(got-0.5) > 1e-9 {
			t.Errorf("depth on line = %v, want 0.5", got)
		}
	})

	t.Run("overlay keeps depth", func(t *testing.T) {
		r, _, depth := createTestRasterizer(20, 20)
		r.DrawLine(math3d.V4(-0.9, 0, 0.5, 1), math3d.V4(0.9, 0, 0.5, 1), scene.ColorWhite, false)
		if depth.Coverage() != 0 {
			t.Error("overlay line wrote depth")
		}
	})

	t.Run("behind eye", func(t *testing.T) {
		r, _, _ := createTestRasterizer(20, 20)
		if n := r.DrawLine(math3d.V4(0, 0, 0, 1), math3d.V4(1, 0, 0, -1), scene.ColorWhite, true); n != 0 {
			t.Errorf("drew %d pixels", n)
		}
	})

	t.Run("clipped to viewport", func(t *testing.T) {
		r, fb, _ := createTestRasterizer(20, 20)
		n := r.DrawLine(math3d.V4(-50, 0, 0, 1), math3d.V4(50, 0, 0, 1), scene.ColorWhite, true)
		if n != 20 {
			t.Errorf("drew %d pixels, want 20", n)
		}
		if countNot(fb, scene.ColorBlack) != 20 {
			t.Errorf("framebuffer pixels = %d", countNot(fb, scene.ColorBlack))
		}
	})

	t.Run("fully outside", func(t *testing.T) {
		r, _, _ := createTestRasterizer(20, 20)
		if n := r.DrawLine(math3d.V4(2, 2, 0, 1), math3d.V4(3, 5, 0, 1), scene.ColorWhite, true); n != 0 {
			t.Errorf("drew %d pixels", n)
		}
	})
}

func TestClipSegment(t *testing.T) {
	tests := []struct {
		name           string
		x0, y0, x1, y1 float64
		ok             bool
		t0, t1         float64
	}{
		{"inside", 1, 1, 5, 5, true, 0, 1},
		{"left of viewport", -5, 1, -1, 8, false, 0, 0},
		{"crosses horizontally", -10, 5, 20, 5, true, 1.0 / 3, 2.0/3 - 1e-6/30},
		{"parallel above", 0, -1, 9, -1, false, 0, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, _, _, t0, t1, ok := clipSegment(tc.x0, tc.y0, tc.x1, tc.y1, 10, 10)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if !ok {
				return
			}
			if math.Abs(t0-tc.t0) > 1e-9 || math.Abs(t1-tc.t1) > 1e-9 {
				t.Errorf("t = [%v, %v], want [%v, %v]", t0, t1, tc.t0, tc.t1)
			}
		})
	}
}

func TestDrawEdges(t *testing.T) {
	r, fb, _ := createTestRasterizer(30, 30)
	clip := [3]math3d.Vec4{math3d.V4(-0.8, -0.8, 0, 1), math3d.V4(0.8, -0.8, 0, 1), math3d.V4(0, 0.8, 0, 1)}
	n := r.DrawEdges(clip, scene.ColorYellow, false)
	if n == 0 {
		t.Fatal("no edges drawn")
	}
	// The interior stays empty.
	if got := fb.GetPixel(15, 18); got != scene.ColorBlack {
		t.Errorf("interior pixel = %v", got)
	}
}

func TestMin3Max3(t *testing.T) {
	if got := min3(3, -1, 2); got != -1 {
		t.Errorf("min3 = %v", got)
	}
	if got := max3(3, -1, 7); got != 7 {
		t.Errorf("max3 = %v", got)
	}
}

func BenchmarkDrawTriangleGouraud(b *testing.B) {
	r, _, depth := createTestRasterizer(320, 240)
	clip := [3]math3d.Vec4{math3d.V4(-0.9, -0.9, 0, 1), math3d.V4(0.9, -0.9, 0, 1), math3d.V4(0, 0.9, 0, 1)}
	sh := &triangleShading{}
	sh.terms[0].base = math3d.V3(1, 0, 0)
	sh.terms[1].base = math3d.V3(0, 1, 0)
	sh.terms[2].base = math3d.V3(0, 0, 1)

	for b.Loop() {
		depth.Clear(Empty)
		r.DrawTriangle(clip, sh)
	}
}

func BenchmarkDrawTriangleFlat(b *testing.B) {
	r, _, depth := createTestRasterizer(320, 240)
	clip := [3]math3d.Vec4{math3d.V4(-0.9, -0.9, 0, 1), math3d.V4(0.9, -0.9, 0, 1), math3d.V4(0, 0.9, 0, 1)}
	sh := flat(scene.ColorRed)

	for b.Loop() {
		depth.Clear(Empty)
		r.DrawTriangle(clip, sh)
	}
}
