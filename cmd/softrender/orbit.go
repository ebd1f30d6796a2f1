package main

import (
	"math"

	"github.com/charmbracelet/harmonica"

	"github.com/taigrr/softrender/pkg/math3d"
	"github.com/taigrr/softrender/pkg/render"
)

// axis holds a velocity that a spring eases back to rest.
type axis struct {
	Velocity  float64
	velSpring harmonica.Spring
	velAccel  float64 // internal spring velocity (for animating Velocity toward 0)
}

func newAxis(fps int) axis {
	return axis{
		// Frequency 4.0 = moderate speed, damping 1.0 = critically damped (no overshoot)
		velSpring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

// step returns the motion for this frame and decays the velocity.
func (a *axis) step() float64 {
	d := a.Velocity
	a.Velocity, a.velAccel = a.velSpring.Update(a.Velocity, a.velAccel, 0)
	return d
}

const restEpsilon = 1e-4

// Orbit moves a camera around its point of interest with spring-damped yaw,
// pitch and zoom.
type Orbit struct {
	Yaw, Pitch, Zoom axis
	fps              int

	homeEye, homePOI math3d.Vec3
}

// NewOrbit creates an orbit controller that resets cam to its current pose.
func NewOrbit(fps int, cam *render.Camera) *Orbit {
	o := &Orbit{fps: fps, homeEye: cam.Eye(), homePOI: cam.POI()}
	o.Stop()
	return o
}

// Impulse adds angular velocity in radians per frame. Zoom is a log-scale
// change of the eye distance.
func (o *Orbit) Impulse(yaw, pitch, zoom float64) {
	o.Yaw.Velocity += yaw
	o.Pitch.Velocity += pitch
	o.Zoom.Velocity += zoom
}

// Stop zeroes all velocities.
func (o *Orbit) Stop() {
	o.Yaw = newAxis(o.fps)
	o.Pitch = newAxis(o.fps)
	o.Zoom = newAxis(o.fps)
}

// Reset stops the motion and restores the camera's starting pose.
func (o *Orbit) Reset(cam *render.Camera) {
	o.Stop()
	cam.SetEye(o.homeEye)
	cam.SetPOI(o.homePOI)
}

// Moving reports whether any axis still has velocity.
func (o *Orbit) Moving() bool {
	return math.Abs(o.Yaw.Velocity) > restEpsilon ||
		math.Abs(o.Pitch.Velocity) > restEpsilon ||
		math.Abs(o.Zoom.Velocity) > restEpsilon
}

// Step advances the springs one frame and moves cam.
func (o *Orbit) Step(cam *render.Camera) {
	if yaw := o.Yaw.step(); yaw != 0 {
		cam.Orbit(yaw)
	}
	if pitch := o.Pitch.step(); pitch != 0 {
		cam.Elevate(pitch)
	}
	if zoom := o.Zoom.step(); zoom != 0 {
		factor := math.Exp(zoom)
		dist := cam.Distance() * factor
		if dist >= minDistance && dist <= maxDistance {
			cam.Zoom(factor)
		}
	}
}

const (
	minDistance = 0.5
	maxDistance = 50
)
