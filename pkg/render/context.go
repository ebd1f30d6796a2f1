package render

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/taigrr/softrender/pkg/math3d"
	"github.com/taigrr/softrender/pkg/scene"
)

// ErrInvalidViewport is returned when a GraphicContext cannot describe a
// drawable viewport.
var ErrInvalidViewport = errors.New("render: invalid viewport")

// ErrUnknownProjection is returned for an unrecognized projection type.
var ErrUnknownProjection = errors.New("render: unknown projection type")

// RenderingMode selects how accepted triangles are drawn.
type RenderingMode int

const (
	ModeLine        RenderingMode = iota // Edges only
	ModeMonochrome                       // Reserved, draws nothing
	ModePlain                            // Flat shading, one lighting evaluation per triangle
	ModeInterpolate                      // Gouraud shading with optional texture and shadows
)

var modeNames = map[RenderingMode]string{
	ModeLine:        "line",
	ModeMonochrome:  "monochrome",
	ModePlain:       "plain",
	ModeInterpolate: "interpolate",
}

func (m RenderingMode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("RenderingMode(%d)", int(m))
}

// ParseRenderingMode parses a mode name as written in config files and flags.
func ParseRenderingMode(s string) (RenderingMode, error) {
	for m, name := range modeNames {
		if strings.EqualFold(s, name) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown rendering mode %q", s)
}

// DepthTested reports whether the mode compares fragments against the depth buffer.
func (m RenderingMode) DepthTested() bool {
	return m == ModePlain || m == ModeInterpolate
}

// ProjectionType selects the camera projection model.
type ProjectionType int

const (
	ProjectionFrustum ProjectionType = iota
	ProjectionOrthographic
)

func (p ProjectionType) String() string {
	switch p {
	case ProjectionFrustum:
		return "frustum"
	case ProjectionOrthographic:
		return "orthographic"
	}
	return fmt.Sprintf("ProjectionType(%d)", int(p))
}

// ParseProjectionType parses "frustum" (or "perspective") and "orthographic".
func ParseProjectionType(s string) (ProjectionType, error) {
	switch strings.ToLower(s) {
	case "frustum", "perspective":
		return ProjectionFrustum, nil
	case "orthographic", "ortho":
		return ProjectionOrthographic, nil
	}
	return 0, fmt.Errorf("unknown projection type %q", s)
}

// RenderContext holds the per-frame rendering options. It is read-only for
// the duration of a frame.
type RenderContext struct {
	Mode            RenderingMode
	BackfaceCulling bool
	Texture         bool
	Shadows         bool

	LineOverlay     bool
	NormalOverlay   bool
	LandmarkOverlay bool
	LightOverlay    bool

	ShadowMapSize int     // Side of each light's square depth map
	ShadowBias    float64 // Depth slack before a point counts as occluded
	ShadowExtent  float64 // Half-size of the light-space box; 0 derives it from the camera

	OverlayColor   scene.Color
	NormalLength   float64
	LandmarkLength float64
}

// DefaultRenderContext returns Gouraud shading with culling and textures on.
func DefaultRenderContext() RenderContext {
	return RenderContext{
		Mode:            ModeInterpolate,
		BackfaceCulling: true,
		Texture:         true,
		ShadowMapSize:   512,
		ShadowBias:      0.005,
		OverlayColor:    scene.ColorYellow,
		NormalLength:    0.25,
		LandmarkLength:  1,
	}
}

// GraphicContext describes the viewport and projection volume. Left, Right,
// Bottom and Top are measured on the near plane for a frustum projection.
type GraphicContext struct {
	Width, Height int
	Projection    ProjectionType

	Left, Right float64
	Bottom, Top float64
	Near, Far   float64
}

// NewPerspectiveContext builds a symmetric frustum from a vertical field of
// view in radians. The horizontal extent follows the viewport aspect ratio.
func NewPerspectiveContext(width, height int, fovy, near, far float64) GraphicContext {
	top := near * math.Tan(fovy/2)
	right := top
	if height > 0 {
		right = top * float64(width) / float64(height)
	}
	return GraphicContext{
		Width:      width,
		Height:     height,
		Projection: ProjectionFrustum,
		Left:       -right,
		Right:      right,
		Bottom:     -top,
		Top:        top,
		Near:       near,
		Far:        far,
	}
}

// NewOrthographicContext builds a symmetric box with the given half-height.
func NewOrthographicContext(width, height int, halfHeight, near, far float64) GraphicContext {
	halfWidth := halfHeight
	if height > 0 {
		halfWidth = halfHeight * float64(width) / float64(height)
	}
	return GraphicContext{
		Width:      width,
		Height:     height,
		Projection: ProjectionOrthographic,
		Left:       -halfWidth,
		Right:      halfWidth,
		Bottom:     -halfHeight,
		Top:        halfHeight,
		Near:       near,
		Far:        far,
	}
}

// Validate checks the viewport size and the projection volume.
func (g GraphicContext) Validate() error {
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("%w: %dx%d pixels", ErrInvalidViewport, g.Width, g.Height)
	}
	if g.Right == g.Left || g.Top == g.Bottom {
		return fmt.Errorf("%w: empty projection window", ErrInvalidViewport)
	}
	if g.Far <= g.Near {
		return fmt.Errorf("%w: far %v not beyond near %v", ErrInvalidViewport, g.Far, g.Near)
	}
	if g.Projection == ProjectionFrustum && g.Near <= 0 {
		return fmt.Errorf("%w: frustum near plane %v must be positive", ErrInvalidViewport, g.Near)
	}
	return nil
}

// Aspect returns width over height in pixels.
func (g GraphicContext) Aspect() float64 {
	if g.Height == 0 {
		return 1
	}
	return float64(g.Width) / float64(g.Height)
}

// ProjectionMatrix returns the projection for the configured type.
func (g GraphicContext) ProjectionMatrix() (math3d.Mat4, error) {
	switch g.Projection {
	case ProjectionFrustum:
		return math3d.Frustum(g.Left, g.Right, g.Bottom, g.Top, g.Near, g.Far), nil
	case ProjectionOrthographic:
		return math3d.Orthographic(g.Left, g.Right, g.Bottom, g.Top, g.Near, g.Far), nil
	}
	return math3d.Identity(), fmt.Errorf("%w: %v", ErrUnknownProjection, g.Projection)
}

// HalfExtentAt returns the larger half-size of the view window at the given
// distance from the eye.
func (g GraphicContext) HalfExtentAt(distance float64) float64 {
	half := math.Max(math.Max(math.Abs(g.Left), math.Abs(g.Right)), math.Max(math.Abs(g.Bottom), math.Abs(g.Top)))
	if g.Projection == ProjectionFrustum && g.Near > 0 {
		return half * distance / g.Near
	}
	return half
}
