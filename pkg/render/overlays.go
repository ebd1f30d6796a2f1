package render

import (
	"github.com/taigrr/softrender/pkg/math3d"
	"github.com/taigrr/softrender/pkg/scene"
)

// drawSegment draws a world-space segment over the frame without touching
// depth.
func (p *pass) drawSegment(a, b math3d.Vec3, c scene.Color) {
	p.raster.DrawLine(p.mvp.ProjectWorldVertex(a.Point()), p.mvp.ProjectWorldVertex(b.Point()), c, false)
}

// drawNormals draws the world normal from the face centroid, or from each
// vertex when the triangle is shaded with vertex normals. Vertex fields are
// those of the current frame.
func (p *pass) drawNormals(tri *scene.Triangle) {
	length := p.rc.NormalLength
	if tri.UsesFaceNormal() {
		from := tri.Centroid().Vec3()
		p.drawSegment(from, from.Add(tri.WorldNormal.Vec3().Scale(length)), p.rc.OverlayColor)
		return
	}
	for _, v := range tri.V {
		from := v.WorldPos.Vec3()
		p.drawSegment(from, from.Add(v.WorldNormal.Vec3().Scale(length)), p.rc.OverlayColor)
	}
}

// drawLandmarks draws the world axes at the origin: X red, Y green, Z blue.
func (p *pass) drawLandmarks() {
	p.mvp.SetModel(math3d.Identity())
	p.mvp.CalculateMVPMatrix()

	length := p.rc.LandmarkLength
	if length <= 0 {
		length = 1
	}
	origin := math3d.Zero3().Point()
	axes := []struct {
		dir   math3d.Vec3
		color scene.Color
	}{
		{math3d.V3(length, 0, 0), scene.ColorRed},
		{math3d.V3(0, length, 0), scene.ColorGreen},
		{math3d.V3(0, 0, length), scene.ColorBlue},
	}
	for _, axis := range axes {
		p.raster.DrawLine(p.mvp.ProjectVertex(origin), p.mvp.ProjectVertex(axis.dir.Point()), axis.color, false)
	}
}

// drawLights draws one segment per light: directional lights as a ray
// arriving at target, point lights as a ray from the light to target, and
// ambient lights not at all.
func (p *pass) drawLights(target math3d.Vec3) {
	p.mvp.SetModel(math3d.Identity())
	p.mvp.CalculateMVPMatrix()

	if p.lights == nil {
		return
	}
	length := p.rc.LandmarkLength
	if length <= 0 {
		length = 1
	}
	for _, light := range p.lights.Lights {
		var from math3d.Vec3
		switch light.Kind {
		case LightDirectional:
			from = target.Sub(light.Direction.Normalize().Scale(2 * length))
		case LightPoint:
			from = light.Position
		default:
			continue
		}
		p.raster.DrawLine(p.mvp.ProjectVertex(from.Point()), p.mvp.ProjectVertex(target.Point()), light.Color, false)
	}
}
