package render

import (
	"fmt"
	"math"

	"github.com/taigrr/softrender/pkg/math3d"
	"github.com/taigrr/softrender/pkg/scene"
)

// LightKind identifies how a light contributes to shading.
type LightKind int

const (
	LightAmbient LightKind = iota
	LightDirectional
	LightPoint
)

func (k LightKind) String() string {
	switch k {
	case LightAmbient:
		return "ambient"
	case LightDirectional:
		return "directional"
	case LightPoint:
		return "point"
	}
	return fmt.Sprintf("LightKind(%d)", int(k))
}

// Light is a single light source. Direction is the direction light travels
// for directional lights; Position is used by point lights.
type Light struct {
	Kind        LightKind
	Color       scene.Color
	Intensity   float64
	Direction   math3d.Vec3
	Position    math3d.Vec3
	CastsShadow bool

	// Rebuilt by every shadow pass.
	viewProj  math3d.Mat4
	shadowMap *MapView
}

// NewAmbientLight creates a light that lights every surface evenly.
func NewAmbientLight(c scene.Color, intensity float64) *Light {
	return &Light{Kind: LightAmbient, Color: c, Intensity: intensity}
}

// NewDirectionalLight creates a light traveling along dir.
func NewDirectionalLight(dir math3d.Vec3, c scene.Color, intensity float64) *Light {
	return &Light{Kind: LightDirectional, Direction: dir.Normalize(), Color: c, Intensity: intensity}
}

// NewPointLight creates an unattenuated light at pos.
func NewPointLight(pos math3d.Vec3, c scene.Color, intensity float64) *Light {
	return &Light{Kind: LightPoint, Position: pos, Color: c, Intensity: intensity}
}

// ShadowMap returns the depth map from the last shadow pass, or nil.
func (l *Light) ShadowMap() *MapView { return l.shadowMap }

// LightSpace returns the light's view-projection from the last shadow pass.
func (l *Light) LightSpace() math3d.Mat4 { return l.viewProj }

// canCastShadow reports whether the light has a direction to render depth from.
func (l *Light) canCastShadow() bool {
	return l.CastsShadow && (l.Kind == LightDirectional || l.Kind == LightPoint)
}

// occludes reports whether the shadow map hides world point p from the light.
// Points projecting outside the map are lit.
func (l *Light) occludes(p math3d.Vec4, bias float64) bool {
	if l.shadowMap == nil {
		return false
	}
	clip := l.viewProj.MulVec4(p)
	if clip.W <= 0 {
		return false
	}
	ndc := clip.PerspectiveDivide()
	if ndc.Z < -1 || ndc.Z > 1 {
		return false
	}
	x := int(math.Floor((ndc.X + 1) * 0.5 * float64(l.shadowMap.Width)))
	y := int(math.Floor((1 - ndc.Y) * 0.5 * float64(l.shadowMap.Height)))
	if !l.shadowMap.InBounds(x, y) {
		return false
	}
	return l.shadowMap.At(x, y) < ndc.Z-bias
}

// Lighting is the set of lights of a scene.
type Lighting struct {
	Lights []*Light
}

// NewLighting creates a light set.
func NewLighting(lights ...*Light) *Lighting {
	return &Lighting{Lights: lights}
}

// Add appends a light.
func (l *Lighting) Add(light *Light) {
	l.Lights = append(l.Lights, light)
}

// ShadowCasters returns the lights that render a shadow map.
func (l *Lighting) ShadowCasters() []*Light {
	if l == nil {
		return nil
	}
	var out []*Light
	for _, light := range l.Lights {
		if light.canCastShadow() {
			out = append(out, light)
		}
	}
	return out
}

// shadeTerms is a lighting result split so that shadowing can be applied
// later per fragment. casters has one entry per shadow-casting light, in
// Lighting.ShadowCasters order; every other contribution is folded into base.
type shadeTerms struct {
	base    math3d.Vec3
	casters []math3d.Vec3
}

// resolve sums the terms, dropping the casters marked in shadowed.
func (s shadeTerms) resolve(shadowed []bool) math3d.Vec3 {
	c := s.base
	for i, d := range s.casters {
		if i < len(shadowed) && shadowed[i] {
			continue
		}
		c = c.Add(d)
	}
	return c
}

// shadeInput is one lighting evaluation point.
type shadeInput struct {
	pos    math3d.Vec3
	normal math3d.Vec3 // unit length, zero when unknown
	eye    math3d.Vec3
	albedo math3d.Vec3 // 0-1 surface color
}

// evaluate applies ambient, Lambert diffuse and Phong specular terms. With
// split set, the direct terms of shadow-casting lights are kept separate.
// An empty light set leaves the surface color unlit.
func (l *Lighting) evaluate(in shadeInput, mat *scene.Material, split bool) shadeTerms {
	var terms shadeTerms
	if l == nil || len(l.Lights) == 0 {
		terms.base = in.albedo
		return terms
	}

	var specColor math3d.Vec3
	if mat != nil && mat.SpecularExponent > 0 {
		specColor = scene.ColorVec(mat.SpecularColor)
	}
	view := in.eye.Sub(in.pos).Normalize()

	for _, light := range l.Lights {
		lc := scene.ColorVec(light.Color).Scale(light.Intensity)
		var contrib math3d.Vec3

		switch light.Kind {
		case LightAmbient:
			terms.base = terms.base.Add(in.albedo.Mul(lc))
			continue
		case LightDirectional:
			contrib = directTerm(in, light.Direction.Negate().Normalize(), view, lc, mat, specColor)
		case LightPoint:
			contrib = directTerm(in, light.Position.Sub(in.pos).Normalize(), view, lc, mat, specColor)
		default:
			continue
		}

		if split && light.canCastShadow() {
			terms.casters = append(terms.casters, contrib)
		} else {
			terms.base = terms.base.Add(contrib)
		}
	}
	return terms
}

func directTerm(in shadeInput, toLight, view, lc math3d.Vec3, mat *scene.Material, specColor math3d.Vec3) math3d.Vec3 {
	diffuse := in.normal.Dot(toLight)
	if diffuse <= 0 {
		return math3d.Vec3{}
	}
	c := in.albedo.Mul(lc).Scale(diffuse)
	if mat != nil && mat.SpecularExponent > 0 {
		reflected := in.normal.Scale(2 * diffuse).Sub(toLight)
		if rv := reflected.Dot(view); rv > 0 {
			c = c.Add(specColor.Mul(lc).Scale(math.Pow(rv, mat.SpecularExponent)))
		}
	}
	return c
}

// lerpTerms blends three shade terms with barycentric weights.
func lerpTerms(t *[3]shadeTerms, b0, b1, b2 float64, out *shadeTerms) {
	out.base = t[0].base.Scale(b0).Add(t[1].base.Scale(b1)).Add(t[2].base.Scale(b2))
	out.casters = out.casters[:0]
	for i := range t[0].casters {
		out.casters = append(out.casters,
			t[0].casters[i].Scale(b0).Add(t[1].casters[i].Scale(b1)).Add(t[2].casters[i].Scale(b2)))
	}
}
