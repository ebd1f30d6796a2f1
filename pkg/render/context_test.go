package render

import (
	"errors"
	"math"
	"testing"

	"github.com/taigrr/softrender/pkg/math3d"
)

func TestParseRenderingMode(t *testing.T) {
	tests := []struct {
		in      string
		want    RenderingMode
		wantErr bool
	}{
		{"line", ModeLine, false},
		{"Monochrome", ModeMonochrome, false},
		{"PLAIN", ModePlain, false},
		{"interpolate", ModeInterpolate, false},
		{"gouraud", 0, true},
		{"", 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseRenderingMode(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tc.wantErr)
			}
			if !tc.wantErr && got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRenderingModeDepthTested(t *testing.T) {
	for _, m := range []RenderingMode{ModePlain, ModeInterpolate} {
		if !m.DepthTested() {
			t.Errorf("%v should be depth tested", m)
		}
	}
	for _, m := range []RenderingMode{ModeLine, ModeMonochrome} {
		if m.DepthTested() {
			t.Errorf("%v should not be depth tested", m)
		}
	}
}

func TestParseProjectionType(t *testing.T) {
	for in, want := range map[string]ProjectionType{
		"frustum":      ProjectionFrustum,
		"perspective":  ProjectionFrustum,
		"Orthographic": ProjectionOrthographic,
		"ortho":        ProjectionOrthographic,
	} {
		got, err := ParseProjectionType(in)
		if err != nil || got != want {
			t.Errorf("ParseProjectionType(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseProjectionType("fisheye"); err == nil {
		t.Error("expected error for unknown projection")
	}
}

func TestGraphicContextValidate(t *testing.T) {
	tests := []struct {
		name    string
		gc      GraphicContext
		wantErr bool
	}{
		{"perspective", NewPerspectiveContext(80, 60, math.Pi/3, 0.1, 100), false},
		{"orthographic", NewOrthographicContext(80, 60, 2, -10, 10), false},
		{"zero size", NewPerspectiveContext(0, 60, math.Pi/3, 0.1, 100), true},
		{"frustum at eye", NewPerspectiveContext(80, 60, math.Pi/3, 0, 100), true},
		{"inverted depth", NewOrthographicContext(80, 60, 2, 10, 1), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.gc.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tc.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidViewport) {
				t.Errorf("err = %v, want ErrInvalidViewport", err)
			}
		})
	}
}

func TestPerspectiveContextAspect(t *testing.T) {
	gc := NewPerspectiveContext(200, 100, math.Pi/2, 1, 10)
	if math.Abs(gc.Top-1) > 1e-12 || math.Abs(gc.Right-2) > 1e-12 {
		t.Errorf("window = [%v,%v]x[%v,%v]", gc.Left, gc.Right, gc.Bottom, gc.Top)
	}
	if gc.Aspect() != 2 {
		t.Errorf("aspect = %v", gc.Aspect())
	}
	if got := gc.HalfExtentAt(5); math.Abs(got-10) > 1e-12 {
		t.Errorf("half extent at 5 = %v, want 10", got)
	}
}

func TestProjectionMatrix(t *testing.T) {
	gc := NewOrthographicContext(10, 10, 2, 1, 9)
	proj, err := gc.ProjectionMatrix()
	if err != nil {
		t.Fatal(err)
	}
	if want := math3d.Orthographic(-2, 2, -2, 2, 1, 9); proj != want {
		t.Errorf("ortho = %v, want %v", proj, want)
	}

	gc.Projection = ProjectionType(5)
	if _, err := gc.ProjectionMatrix(); !errors.Is(err, ErrUnknownProjection) {
		t.Errorf("err = %v, want ErrUnknownProjection", err)
	}
}
