package camera

import (
	"math"

	"github.com/litescript/ls-stellar/internal/astro"
)

// maxPitch keeps the orbit off the poles, where the basis degenerates.
const maxPitch = 89.5 * math.Pi / 180

// Orbit rotates and zooms a camera around a target point.
//
// The camera's position is the source of truth: Update reads it back, so
// anything that moves the camera directly (such as the animator) stays in
// sync with the orbit.
type Orbit struct {
	camera    *PerspectiveCamera
	target    astro.Vec3
	minRadius float64
	maxRadius float64
}

// NewOrbit attaches an orbit controller to cam, circling target.
func NewOrbit(cam *PerspectiveCamera, target astro.Vec3, minRadius, maxRadius float64) *Orbit {
	o := &Orbit{
		camera:    cam,
		target:    target,
		minRadius: minRadius,
		maxRadius: maxRadius,
	}
	if o.Radius() == 0 {
		o.place(0, 0, minRadius)
	}
	o.Update()
	return o
}

// Camera returns the controlled camera.
func (o *Orbit) Camera() *PerspectiveCamera {
	return o.camera
}

// Target returns the point the orbit circles.
func (o *Orbit) Target() astro.Vec3 {
	return o.target
}

// SetTarget moves the orbit centre without moving the camera.
func (o *Orbit) SetTarget(t astro.Vec3) {
	o.target = t
}

// Radius returns the camera's distance from the target.
func (o *Orbit) Radius() float64 {
	return o.camera.Position.Distance(o.target)
}

// spherical returns yaw (around Y), pitch (from the XZ plane) and radius of
// the camera relative to the target.
func (o *Orbit) spherical() (yaw, pitch, radius float64) {
	off := o.camera.Position.Sub(o.target)
	radius = off.Norm()
	if radius == 0 {
		return 0, 0, 0
	}
	yaw = math.Atan2(off.Z, off.X)
	pitch = math.Asin(clampUnit(off.Y / radius))
	return yaw, pitch, radius
}

func (o *Orbit) place(yaw, pitch, radius float64) {
	cp := math.Cos(pitch)
	o.camera.Position = o.target.Add(astro.Vec3{
		X: radius * cp * math.Cos(yaw),
		Y: radius * math.Sin(pitch),
		Z: radius * cp * math.Sin(yaw),
	})
}

// Update re-syncs the camera with the orbit: it enforces the radius and
// pitch limits and turns the camera toward the target. The camera is only
// repositioned when a limit was violated; a camera sitting on the target
// is left alone.
func (o *Orbit) Update() {
	yaw, pitch, radius := o.spherical()
	if radius == 0 {
		return
	}
	r := math.Min(o.maxRadius, math.Max(o.minRadius, radius))
	p := math.Min(maxPitch, math.Max(-maxPitch, pitch))
	if r != radius || p != pitch {
		o.place(yaw, p, r)
	}
	o.camera.LookAt(o.target)
}

// Aim sets the target and turns the camera toward it without enforcing
// the radius or pitch limits. The animator uses it so a flight ends
// exactly where it was sent.
func (o *Orbit) Aim(t astro.Vec3) {
	o.target = t
	o.camera.LookAt(t)
}

// Rotate orbits the camera by the given yaw and pitch deltas in radians.
func (o *Orbit) Rotate(dYaw, dPitch float64) {
	yaw, pitch, radius := o.spherical()
	if radius == 0 {
		radius = o.minRadius
	}
	o.place(yaw+dYaw, math.Min(maxPitch, math.Max(-maxPitch, pitch+dPitch)), radius)
	o.Update()
}

// Zoom scales the orbit radius by factor (<1 moves closer).
func (o *Orbit) Zoom(factor float64) {
	if !(factor > 0) {
		return
	}
	yaw, pitch, radius := o.spherical()
	if radius == 0 {
		radius = o.minRadius
	}
	o.place(yaw, pitch, radius*factor)
	o.Update()
}

func clampUnit(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}
