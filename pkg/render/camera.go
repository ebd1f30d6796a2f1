package render

import (
	"math"

	"github.com/taigrr/softrender/pkg/math3d"
)

// Camera is a look-at camera: an eye position, a point of interest and an up
// direction. Setters invalidate the cached view matrix.
type Camera struct {
	eye math3d.Vec3
	poi math3d.Vec3
	up  math3d.Vec3

	viewMatrix math3d.Mat4
	viewDirty  bool
}

// NewCamera creates a camera at eye looking at poi with +Y up.
func NewCamera(eye, poi math3d.Vec3) *Camera {
	return &Camera{
		eye:       eye,
		poi:       poi,
		up:        math3d.Up(),
		viewDirty: true,
	}
}

// Eye returns the camera position.
func (c *Camera) Eye() math3d.Vec3 { return c.eye }

// POI returns the point of interest.
func (c *Camera) POI() math3d.Vec3 { return c.poi }

// UpVector returns the up direction.
func (c *Camera) UpVector() math3d.Vec3 { return c.up }

// SetEye moves the camera.
func (c *Camera) SetEye(eye math3d.Vec3) {
	c.eye = eye
	c.viewDirty = true
}

// SetPOI changes the point the camera looks at.
func (c *Camera) SetPOI(poi math3d.Vec3) {
	c.poi = poi
	c.viewDirty = true
}

// SetUp changes the up direction.
func (c *Camera) SetUp(up math3d.Vec3) {
	c.up = up
	c.viewDirty = true
}

// Forward returns the unit direction from the eye to the point of interest.
func (c *Camera) Forward() math3d.Vec3 {
	return c.poi.Sub(c.eye).Normalize()
}

// Distance returns the distance from the eye to the point of interest.
func (c *Camera) Distance() float64 {
	return c.eye.Distance(c.poi)
}

// ViewMatrix returns the look-at view matrix.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	if c.viewDirty {
		c.viewMatrix = math3d.LookAt(c.eye, c.poi, c.up)
		c.viewDirty = false
	}
	return c.viewMatrix
}

// Orbit rotates the eye about the point of interest around the up axis.
func (c *Camera) Orbit(angle float64) {
	offset := c.eye.Sub(c.poi)
	c.eye = c.poi.Add(math3d.Rotate(c.up, angle).MulVec3Dir(offset))
	c.viewDirty = true
}

// Elevate tilts the eye toward the up axis, keeping the distance to the
// point of interest. The elevation stays short of the poles.
func (c *Camera) Elevate(angle float64) {
	offset := c.eye.Sub(c.poi)
	dist := offset.Len()
	if dist == 0 {
		return
	}
	up := c.up.Normalize()
	const maxElevation = math.Pi/2 - 0.01
	current := math.Asin(math.Max(-1, math.Min(1, offset.Dot(up)/dist)))
	target := math.Max(-maxElevation, math.Min(maxElevation, current+angle))

	horizontal := offset.Sub(up.Scale(offset.Dot(up)))
	if horizontal.LenSq() == 0 {
		return
	}
	horizontal = horizontal.Normalize()
	c.eye = c.poi.Add(horizontal.Scale(dist * math.Cos(target))).Add(up.Scale(dist * math.Sin(target)))
	c.viewDirty = true
}

// Zoom scales the eye's distance from the point of interest.
func (c *Camera) Zoom(factor float64) {
	if factor <= 0 {
		return
	}
	c.eye = c.poi.Add(c.eye.Sub(c.poi).Scale(factor))
	c.viewDirty = true
}
