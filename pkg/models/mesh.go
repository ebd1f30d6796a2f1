// Package models loads 3D models into scene elements and provides mesh
// utilities over them.
package models

import (
	"math"

	"github.com/taigrr/softrender/pkg/math3d"
	"github.com/taigrr/softrender/pkg/render"
	"github.com/taigrr/softrender/pkg/scene"
)

// CalculateFlatNormals sets every triangle's explicit face normal from its
// counter-clockwise winding.
func CalculateFlatNormals(el *scene.Element) {
	for _, t := range el.Triangles {
		v0 := t.V[0].Position.Vec3()
		v1 := t.V[1].Position.Vec3()
		v2 := t.V[2].Position.Vec3()

		edge1 := v1.Sub(v0)
		edge2 := v2.Sub(v0)
		if n := edge1.Cross(edge2); n.LenSq() > 0 {
			t.SetNormal(n)
		}
	}
}

// CalculateSmoothNormals computes averaged vertex normals for smooth
// shading. Faces contribute in proportion to their area.
func CalculateSmoothNormals(el *scene.Element) {
	acc := make(map[*scene.Vertex]math3d.Vec3, len(el.Vertices))

	for _, t := range el.Triangles {
		v0 := t.V[0].Position.Vec3()
		v1 := t.V[1].Position.Vec3()
		v2 := t.V[2].Position.Vec3()

		normal := v1.Sub(v0).Cross(v2.Sub(v0)) // Don't normalize yet
		for _, v := range t.V {
			acc[v] = acc[v].Add(normal)
		}
	}

	for _, v := range el.Vertices {
		n, ok := acc[v]
		if !ok || n.LenSq() == 0 {
			continue
		}
		n = n.Normalize()
		v.Normal = n.Direction()
		v.HasNormal = true
	}
}

// SubtreeBounds returns the world-space bounding box of the element at idx
// and all of its descendants, with the element's ancestors' transforms
// applied. ok is false when the subtree has no vertices.
func SubtreeBounds(world *scene.World, idx int) (box render.AABB, ok bool) {
	var walk func(i int, model math3d.Mat4)
	walk = func(i int, model math3d.Mat4) {
		el := world.Element(i)
		model = model.Mul(el.Transform.Matrix())
		if b, has := render.ElementBounds(el, model); has {
			if ok {
				box = render.NewAABB(box.Min.Min(b.Min), box.Max.Max(b.Max))
			} else {
				box, ok = b, true
			}
		}
		for _, c := range el.Children {
			walk(c, model)
		}
	}
	walk(idx, parentMatrix(world, idx))
	return box, ok
}

// parentMatrix composes the transforms of idx's ancestors.
func parentMatrix(world *scene.World, idx int) math3d.Mat4 {
	m := math3d.Identity()
	for p := world.Element(idx).Parent; p >= 0; p = world.Element(p).Parent {
		m = world.Element(p).Transform.Matrix().Mul(m)
	}
	return m
}

// Fit rescales and moves the root element at idx so that its subtree is
// centered on the origin with a largest dimension of size.
func Fit(world *scene.World, idx int, size float64) {
	box, ok := SubtreeBounds(world, idx)
	if !ok {
		return
	}
	extent := box.Size()
	largest := math.Max(extent.X, math.Max(extent.Y, extent.Z))
	if largest == 0 {
		return
	}
	s := size / largest
	center := box.Center()

	el := world.Element(idx)
	el.Transform.Explicit = math3d.ScaleUniform(s).Mul(math3d.Translate(center.Negate())).Mul(el.Transform.Matrix())
	el.Transform.HasExplicit = true
}
