package render

import (
	"math"

	"go.uber.org/zap"

	"github.com/taigrr/softrender/pkg/math3d"
	"github.com/taigrr/softrender/pkg/scene"
)

const (
	defaultShadowMapSize = 512
	shadowNear           = 0.01
)

// shadowBounds returns the half-extent of the light-space box. It is a fixed
// box around the camera's point of interest, not a tight fit of the casters.
func shadowBounds(rc RenderContext, gc GraphicContext, cam *Camera) float64 {
	if rc.ShadowExtent > 0 {
		return rc.ShadowExtent
	}
	return gc.HalfExtentAt(cam.Distance())
}

// lightView builds the light-space view and orthographic projection. The
// light looks at the camera's point of interest; directional lights are
// placed 2*extent back along their direction.
func lightView(light *Light, poi math3d.Vec3, extent float64) (view, proj math3d.Mat4) {
	var eye, dir math3d.Vec3
	switch light.Kind {
	case LightPoint:
		eye = light.Position
		dir = poi.Sub(eye).Normalize()
		if dir.LenSq() == 0 {
			dir = math3d.V3(0, -1, 0)
		}
	default:
		dir = light.Direction.Normalize()
		eye = poi.Sub(dir.Scale(2 * extent))
	}

	// A light straight up or down would make the look-at basis degenerate.
	up := math3d.Up()
	if math.Abs(dir.Dot(up)) > 0.99 {
		up = math3d.V3(0, 0, 1)
	}

	view = math3d.LookAt(eye, eye.Add(dir), up)
	far := eye.Distance(poi) + 2*extent
	proj = math3d.Orthographic(-extent, extent, -extent, extent, shadowNear, far)
	return view, proj
}

// shadowPass renders the depth of the whole world from light into its
// shadow map. It runs without shading or culling and rebuilds the map every
// frame.
func (e *Engine) shadowPass(world *scene.World, light *Light, cam *Camera, rc RenderContext, gc GraphicContext) {
	size := rc.ShadowMapSize
	if size <= 0 {
		size = defaultShadowMapSize
	}
	if light.shadowMap == nil || light.shadowMap.Width != size || light.shadowMap.Height != size {
		light.shadowMap = NewMapView(size, size)
	} else {
		light.shadowMap.Clear(Empty)
	}

	extent := shadowBounds(rc, gc, cam)
	view, proj := lightView(light, cam.POI(), extent)
	light.viewProj = proj.Mul(view)

	var stats Stats
	p := &pass{
		world:     world,
		mvp:       NewModelViewProjection(view, proj, e.log),
		raster:    NewRasterizer(nil, light.shadowMap),
		frustum:   NewFrustumFromMatrix(light.viewProj),
		depthOnly: true,
		stats:     &stats,
		log:       e.log,
	}
	p.run()

	e.log.Debug("shadow map rendered",
		zap.Stringer("light", light.Kind),
		zap.Float64("extent", extent),
		zap.Int("triangles", stats.TrianglesShown),
		zap.Int("coverage", light.shadowMap.Coverage()),
	)
}
