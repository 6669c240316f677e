package viewer

import (
	"math"

	"github.com/miropolcevpro/paver-ar-web/pkg/geometry"
)

// Camera is a pinhole camera placed by a device pose. It looks along the
// pose's -Z axis with +Y up.
type Camera struct {
	Pose geometry.Pose
	FOV  float64 // Vertical field of view in radians
	Near float64
	Far  float64
}

// NewCamera creates a camera at pose with a 60 degree field of view.
func NewCamera(pose geometry.Pose, near, far float64) *Camera {
	return &Camera{
		Pose: pose,
		FOV:  math.Pi / 3,
		Near: near,
		Far:  far,
	}
}

// Position returns the camera center.
func (c *Camera) Position() geometry.Vector3 {
	return c.Pose.Position
}

// Ray returns the camera center and its unit forward direction.
func (c *Camera) Ray() (origin, direction geometry.Vector3) {
	return c.Pose.Position, c.Pose.Forward()
}

// basis returns the camera's right, up and forward axes in world space.
func (c *Camera) basis() (right, up, forward geometry.Vector3) {
	q := c.Pose.Orientation
	return geometry.Rotate(q, geometry.Vector3{X: 1}),
		geometry.Rotate(q, geometry.Up),
		geometry.Rotate(q, geometry.Forward)
}

// Project projects a world point to screen coordinates.
// dist is the distance along the view axis (the negated view-space Z).
// ok is false for points closer than the near plane.
func (c *Camera) Project(point geometry.Vector3, width, height float64) (screenX, screenY, dist float64, ok bool) {
	right, up, forward := c.basis()

	relative := point.Sub(c.Pose.Position)
	x := relative.Dot(right)
	y := relative.Dot(up)
	z := relative.Dot(forward)
	if z < c.Near {
		return 0, 0, z, false
	}

	aspect := width / height
	fovScale := math.Tan(c.FOV / 2)

	screenX = (x/(z*fovScale*aspect))*(width/2) + (width / 2)
	screenY = (-y/(z*fovScale))*(height/2) + (height / 2)

	return screenX, screenY, z, true
}

// Unproject converts 2D screen coordinates back to a world-space ray.
func (c *Camera) Unproject(screenX, screenY, width, height float64) (origin, direction geometry.Vector3) {
	// Convert screen coordinates to normalized device coordinates (-1 to 1)
	ndcX := (2.0 * screenX / width) - 1.0
	ndcY := 1.0 - (2.0 * screenY / height)

	aspect := width / height
	fovScale := math.Tan(c.FOV / 2)

	right, up, forward := c.basis()
	rayDir := forward.Add(right.Mul(ndcX * fovScale * aspect)).Add(up.Mul(ndcY * fovScale))

	return c.Pose.Position, rayDir.Normalize()
}

// FragDepth returns the window-space depth in [0, 1] of a point at view
// distance dist.
func (c *Camera) FragDepth(dist float64) float64 {
	return ViewZToPerspectiveDepth(-dist, c.Near, c.Far)
}

// PerspectiveDepthToViewZ converts a window-space depth in [0, 1] back to
// view-space Z (negative in front of the camera).
func PerspectiveDepthToViewZ(depth, near, far float64) float64 {
	return (near * far) / ((far-near)*depth - far)
}

// ViewZToPerspectiveDepth converts view-space Z to window-space depth.
func ViewZToPerspectiveDepth(viewZ, near, far float64) float64 {
	return ((near + viewZ) * far) / ((far - near) * viewZ)
}
