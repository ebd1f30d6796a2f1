package render

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/taigrr/softrender/pkg/math3d"
	"github.com/taigrr/softrender/pkg/scene"
)

// Stats are the per-frame counters, reset at the start of every Render.
type Stats struct {
	TrianglesProcessed  int
	TrianglesShown      int
	TrianglesOut        int // Outside the view volume, culled element or back-facing
	TrianglesBackFacing int
	ElementsProcessed   int
	ElementsCulled      int
	ElementsInside      int // Entirely in the view volume; per-triangle tests skipped
	ShadowMaps          int
	NormalFallbacks     int // Singular model matrices
}

// ViewSink receives finished frames.
type ViewSink interface {
	Clear(background scene.Color)
	Present(fb *Framebuffer) error
}

// Engine is the frame orchestrator. It owns the color buffer and depth map,
// reusing them across frames of the same size. An Engine renders one frame
// at a time.
type Engine struct {
	log  *zap.Logger
	sink ViewSink

	fb    *Framebuffer
	depth *MapView
	stats Stats
}

// NewEngine creates an engine. log and sink may be nil.
func NewEngine(log *zap.Logger, sink ViewSink) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{log: log, sink: sink}
}

// Stats returns the counters of the last frame.
func (e *Engine) Stats() Stats { return e.stats }

// Framebuffer returns the color buffer of the last frame.
func (e *Engine) Framebuffer() *Framebuffer { return e.fb }

// Render draws one frame of world as seen by cam and returns its depth map.
// Only an invalid viewport or a failing sink make it fail; numerical problems
// degrade the affected geometry and are logged.
func (e *Engine) Render(world *scene.World, lights *Lighting, cam *Camera, rc RenderContext, gc GraphicContext) (*MapView, error) {
	if err := gc.Validate(); err != nil {
		return nil, fmt.Errorf("render frame: %w", err)
	}
	e.stats = Stats{}
	e.resize(gc.Width, gc.Height)

	e.fb.Clear(world.Background)
	e.depth.Clear(Empty)
	if e.sink != nil {
		e.sink.Clear(world.Background)
	}

	proj, err := gc.ProjectionMatrix()
	if err != nil {
		e.log.Warn("skipping frame geometry", zap.Error(err))
		return e.depth, e.present()
	}
	view := cam.ViewMatrix()

	var casters []*Light
	if rc.Shadows {
		casters = lights.ShadowCasters()
		for _, light := range casters {
			e.shadowPass(world, light, cam, rc, gc)
			e.stats.ShadowMaps++
		}
	}

	p := &pass{
		world:   world,
		mvp:     NewModelViewProjection(view, proj, e.log),
		raster:  NewRasterizer(e.fb, e.depth),
		frustum: NewFrustumFromMatrix(proj.Mul(view)),
		stats:   &e.stats,
		log:     e.log,
		rc:      rc,
		lights:  lights,
		casters: casters,
		eye:     cam.Eye(),
		ortho:   gc.Projection == ProjectionOrthographic,
	}
	p.run()

	if rc.LandmarkOverlay {
		p.drawLandmarks()
	}
	if rc.LightOverlay {
		p.drawLights(cam.POI())
	}

	e.log.Debug("frame rendered",
		zap.String("mode", rc.Mode.String()),
		zap.Int("processed", e.stats.TrianglesProcessed),
		zap.Int("shown", e.stats.TrianglesShown),
		zap.Int("out", e.stats.TrianglesOut),
		zap.Int("backFacing", e.stats.TrianglesBackFacing),
		zap.Int("elements", e.stats.ElementsProcessed),
	)
	return e.depth, e.present()
}

func (e *Engine) resize(width, height int) {
	if e.fb == nil || e.fb.Width != width || e.fb.Height != height {
		e.fb = NewFramebuffer(width, height)
		e.depth = NewMapView(width, height)
	}
}

func (e *Engine) present() error {
	if e.sink == nil {
		return nil
	}
	if err := e.sink.Present(e.fb); err != nil {
		return fmt.Errorf("present frame: %w", err)
	}
	return nil
}

// pass is one traversal of the element tree: the main pass or the
// depth-only pass of a shadow-casting light.
type pass struct {
	world     *scene.World
	mvp       *ModelViewProjection
	raster    *Rasterizer
	frustum   Frustum
	depthOnly bool
	stats     *Stats
	log       *zap.Logger

	rc      RenderContext
	lights  *Lighting
	casters []*Light
	eye     math3d.Vec3
	ortho   bool

	warnedMode bool
}

func (p *pass) run() {
	for _, idx := range p.world.Roots {
		p.visit(idx, math3d.Identity(), &scene.DefaultMaterial)
	}
}

// visit renders one element and recurses into its children with the
// element's cumulative model matrix and resolved material.
func (p *pass) visit(idx int, parent math3d.Mat4, inherited *scene.Material) {
	el := p.world.Elements[idx]
	model := parent.Mul(el.Transform.Matrix())
	mat := inherited
	if el.Material != nil {
		mat = el.Material
	}
	p.stats.ElementsProcessed++

	box, bounded := ElementBounds(el, model)
	if bounded && !p.frustum.IntersectAABB(box) {
		p.stats.ElementsCulled++
		p.stats.TrianglesProcessed += len(el.Triangles)
		p.stats.TrianglesOut += len(el.Triangles)
	} else if len(el.Triangles) > 0 {
		inside := bounded && p.frustum.ContainsAABB(box)
		if inside {
			p.stats.ElementsInside++
		}
		p.mvp.SetModel(model)
		if !p.depthOnly {
			if err := p.mvp.CalculateNormalMatrix(); err != nil {
				p.stats.NormalFallbacks++
				p.log.Warn("degraded normals", zap.String("element", el.Name), zap.Error(err))
			}
		}
		p.mvp.CalculateMVPMatrix()
		p.mvp.TransformElement(el, !p.depthOnly)

		for _, tri := range el.Triangles {
			p.renderTriangle(el, tri, mat, inside)
		}
	}

	for _, child := range el.Children {
		p.visit(child, model, mat)
	}
}

// renderTriangle draws one triangle. inside reports that the owning element
// lies entirely within the view volume, so the coarse test cannot reject it.
func (p *pass) renderTriangle(el *scene.Element, tri *scene.Triangle, mat *scene.Material, inside bool) {
	p.stats.TrianglesProcessed++
	clip := [3]math3d.Vec4{tri.V[0].ClipPos, tri.V[1].ClipPos, tri.V[2].ClipPos}
	if !inside && !isInViewFrustum(clip) {
		p.stats.TrianglesOut++
		return
	}

	if p.depthOnly {
		p.raster.FillDepth(clip)
		p.stats.TrianglesShown++
		return
	}

	if tri.UsesFaceNormal() {
		p.mvp.TransformNormal(tri)
	}
	if p.rc.BackfaceCulling && el.Closed && p.isBackFacing(tri) {
		p.stats.TrianglesBackFacing++
		p.stats.TrianglesOut++
		return
	}

	color := mat.Color
	if tri.Color != nil {
		color = *tri.Color
	}

	switch p.rc.Mode {
	case ModeLine:
		p.raster.DrawEdges(clip, color, true)
	case ModeMonochrome:
		return
	case ModePlain:
		p.raster.DrawTriangle(clip, p.flatShading(tri, color, mat))
	case ModeInterpolate:
		p.raster.DrawTriangle(clip, p.gouraudShading(tri, color, mat))
	default:
		if !p.warnedMode {
			p.log.Warn("unknown rendering mode", zap.Int("mode", int(p.rc.Mode)))
			p.warnedMode = true
		}
		return
	}
	p.stats.TrianglesShown++

	if p.rc.LineOverlay {
		p.raster.DrawEdges(clip, p.rc.OverlayColor, false)
	}
	if p.rc.NormalOverlay {
		p.drawNormals(tri)
	}
}

// isBackFacing selects the culling strategy by projection type and by
// whether the triangle is shaded with a face normal or vertex normals.
func (p *pass) isBackFacing(tri *scene.Triangle) bool {
	if tri.UsesFaceNormal() {
		if tri.WorldNormal.Vec3().LenSq() == 0 || p.ortho {
			return tri.ClipNormal.Z > 0
		}
		return p.facesAway(tri.WorldNormal, tri.V[0].WorldPos)
	}

	for _, v := range tri.V {
		if p.ortho {
			if v.ClipNormal.Z <= 0 {
				return false
			}
		} else if !p.facesAway(v.WorldNormal, v.WorldPos) {
			return false
		}
	}
	return true
}

func (p *pass) facesAway(normal, pos math3d.Vec4) bool {
	return normal.Vec3().Dot(pos.Vec3().Sub(p.eye)) > 0
}

// faceWorldNormal is the face normal, or the mean of the vertex normals.
func faceWorldNormal(tri *scene.Triangle) math3d.Vec3 {
	if tri.UsesFaceNormal() {
		return tri.WorldNormal.Vec3()
	}
	n := tri.V[0].WorldNormal.Add(tri.V[1].WorldNormal).Add(tri.V[2].WorldNormal)
	return n.Vec3().Normalize()
}

func (p *pass) flatShading(tri *scene.Triangle, color scene.Color, mat *scene.Material) *triangleShading {
	terms := p.lights.evaluate(shadeInput{
		pos:    tri.Centroid().Vec3(),
		normal: faceWorldNormal(tri),
		eye:    p.eye,
		albedo: scene.ColorVec(color),
	}, mat, false)
	return &triangleShading{flat: true, flatColor: scene.VecColor(terms.base)}
}

func (p *pass) gouraudShading(tri *scene.Triangle, color scene.Color, mat *scene.Material) *triangleShading {
	sh := &triangleShading{bias: p.rc.ShadowBias}
	split := len(p.casters) > 0
	if split {
		sh.casters = p.casters
	}
	if p.rc.Texture && tri.Texture != nil && tri.Texture.Texture != nil {
		sh.texture = tri.Texture
	}

	faceNormal := tri.UsesFaceNormal()
	for i, v := range tri.V {
		normal := tri.WorldNormal.Vec3()
		if !faceNormal {
			normal = v.WorldNormal.Vec3()
		}
		albedo := color
		if v.Color != nil {
			albedo = *v.Color
		}
		sh.terms[i] = p.lights.evaluate(shadeInput{
			pos:    v.WorldPos.Vec3(),
			normal: normal,
			eye:    p.eye,
			albedo: scene.ColorVec(albedo),
		}, mat, split)
		sh.world[i] = v.WorldPos
	}
	return sh
}
