package config

import (
	"fmt"
	"math"

	"github.com/taigrr/softrender/internal/logger"
	"github.com/taigrr/softrender/pkg/math3d"
	"github.com/taigrr/softrender/pkg/render"
	"github.com/taigrr/softrender/pkg/scene"
)

func (v Vec) vec3() math3d.Vec3 { return math3d.V3(v[0], v[1], v[2]) }

func (c RGB) color() scene.Color { return scene.RGB(c[0], c[1], c[2]) }

// GraphicContext builds and validates the viewport and projection volume.
func (c *Config) GraphicContext() (render.GraphicContext, error) {
	vp := c.Viewport
	proj, err := render.ParseProjectionType(vp.Projection)
	if err != nil {
		return render.GraphicContext{}, fmt.Errorf("viewport: %w", err)
	}

	var gc render.GraphicContext
	switch proj {
	case render.ProjectionOrthographic:
		gc = render.NewOrthographicContext(vp.Width, vp.Height, vp.HalfHeight, vp.Near, vp.Far)
	default:
		gc = render.NewPerspectiveContext(vp.Width, vp.Height, vp.FOV*math.Pi/180, vp.Near, vp.Far)
	}
	if err := gc.Validate(); err != nil {
		return gc, fmt.Errorf("viewport: %w", err)
	}
	return gc, nil
}

// RenderContext builds the per-frame rendering options.
func (c *Config) RenderContext() (render.RenderContext, error) {
	r := c.Render
	mode, err := render.ParseRenderingMode(r.Mode)
	if err != nil {
		return render.RenderContext{}, fmt.Errorf("render: %w", err)
	}

	rc := render.DefaultRenderContext()
	rc.Mode = mode
	rc.BackfaceCulling = r.BackfaceCulling
	rc.Texture = r.Texture
	rc.Shadows = r.Shadows
	rc.LineOverlay = r.Overlays.Lines
	rc.NormalOverlay = r.Overlays.Normals
	rc.LandmarkOverlay = r.Overlays.Landmarks
	rc.LightOverlay = r.Overlays.Lights
	rc.OverlayColor = r.Overlays.Color.color()
	if r.ShadowMapSize > 0 {
		rc.ShadowMapSize = r.ShadowMapSize
	}
	if r.ShadowBias > 0 {
		rc.ShadowBias = r.ShadowBias
	}
	rc.ShadowExtent = r.ShadowExtent
	return rc, nil
}

// Background returns the clear color.
func (c *Config) Background() scene.Color {
	return c.Render.Background.color()
}

// Camera builds the look-at camera.
func (c *Config) Camera() *render.Camera {
	cam := render.NewCamera(c.Camera.Eye.vec3(), c.Camera.POI.vec3())
	if up := c.Camera.Up.vec3(); up.LenSq() > 0 {
		cam.SetUp(up)
	}
	return cam
}

// Lighting builds the light set.
func (c *Config) Lighting() (*render.Lighting, error) {
	lights := render.NewLighting()
	for i, lc := range c.Lights {
		var l *render.Light
		switch lc.Kind {
		case "ambient":
			l = render.NewAmbientLight(lc.Color.color(), lc.Intensity)
		case "directional":
			dir := lc.Direction.vec3()
			if dir.LenSq() == 0 {
				return nil, fmt.Errorf("light %d: directional light needs a direction", i)
			}
			l = render.NewDirectionalLight(dir, lc.Color.color(), lc.Intensity)
		case "point":
			l = render.NewPointLight(lc.Position.vec3(), lc.Color.color(), lc.Intensity)
		default:
			return nil, fmt.Errorf("light %d: unknown kind %q", i, lc.Kind)
		}
		l.CastsShadow = lc.CastsShadow
		lights.Add(l)
	}
	return lights, nil
}

// Logger returns the logger settings.
func (c *Config) Logger() logger.Config {
	return logger.Config{
		Level:   c.Logging.Level,
		Console: c.Logging.Console,
		File:    c.Logging.File,
	}
}
