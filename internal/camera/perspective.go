// Package camera holds the scene camera, the orbit controller, and the
// fly-to animator that moves them.
package camera

import (
	"math"

	"github.com/litescript/ls-stellar/internal/astro"
)

// CellAspect is the height/width ratio of a terminal cell.
const CellAspect = 2.0

var worldUp = astro.Vec3{Y: 1}

// PerspectiveCamera is a pinhole camera in scene space.
type PerspectiveCamera struct {
	Position astro.Vec3
	Forward  astro.Vec3 // Unit view direction
	FOV      float64    // Vertical field of view, degrees
	Near     float64
	Far      float64
}

// NewPerspectiveCamera creates a camera at pos looking at the origin.
func NewPerspectiveCamera(pos astro.Vec3, fov float64) *PerspectiveCamera {
	c := &PerspectiveCamera{
		Position: pos,
		Forward:  astro.Vec3{Z: -1},
		FOV:      fov,
		Near:     0.1,
		Far:      50000,
	}
	c.LookAt(astro.Vec3{})
	return c
}

// LookAt turns the camera toward p. Looking at its own position is a no-op.
func (c *PerspectiveCamera) LookAt(p astro.Vec3) {
	dir := p.Sub(c.Position)
	if dir.Norm() == 0 || !dir.IsFinite() {
		return
	}
	c.Forward = dir.Normalized()
}

// Basis returns the camera's right, up and forward unit vectors.
func (c *PerspectiveCamera) Basis() (right, up, forward astro.Vec3) {
	forward = c.Forward.Normalized()
	right = forward.Cross(worldUp)
	if right.Norm() < 1e-9 {
		// Looking straight up or down; pick any horizontal right vector.
		right = astro.Vec3{X: 1}
	}
	right = right.Normalized()
	up = right.Cross(forward).Normalized()
	return right, up, forward
}

// Project maps a scene point to terminal cell coordinates on a width×height
// grid. depth is the distance along the view axis. ok is false for points
// behind the camera, outside the clip range, or off screen.
func (c *PerspectiveCamera) Project(p astro.Vec3, width, height int) (x, y int, depth float64, ok bool) {
	if width <= 0 || height <= 0 {
		return 0, 0, 0, false
	}
	right, up, forward := c.Basis()
	rel := p.Sub(c.Position)

	depth = rel.Dot(forward)
	if depth < c.Near || depth > c.Far {
		return 0, 0, depth, false
	}

	f := 1 / math.Tan(c.FOV*math.Pi/360)
	aspect := float64(width) / (float64(height) * CellAspect)

	ndcX := rel.Dot(right) * f / (depth * aspect)
	ndcY := rel.Dot(up) * f / depth

	sx := (ndcX + 1) / 2 * float64(width)
	sy := (1 - ndcY) / 2 * float64(height)
	x, y = int(math.Floor(sx)), int(math.Floor(sy))
	if x < 0 || x >= width || y < 0 || y >= height {
		return x, y, depth, false
	}
	return x, y, depth, true
}
