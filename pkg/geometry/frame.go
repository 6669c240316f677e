package geometry

// Frame is a rigid coordinate frame anchored in world space.
// Scale is always one. Use NewFloorFrame to build a frame that keeps
// content horizontal.
type Frame struct {
	Origin      Vector3
	Orientation Rotation
}

// IdentityFrame returns the frame that coincides with world space.
func IdentityFrame() Frame {
	return Frame{Orientation: Identity()}
}

// NewFloorFrame builds a frame at origin whose orientation keeps only the
// heading of orientation. The resulting XZ plane is always horizontal.
func NewFloorFrame(origin Vector3, orientation Rotation) Frame {
	return Frame{Origin: origin, Orientation: YawOnly(orientation)}
}

// ToLocal converts a world-space point into frame-local coordinates.
func (f Frame) ToLocal(world Vector3) Vector3 {
	return Rotate(Inverse(f.Orientation), world.Sub(f.Origin))
}

// ToWorld converts a frame-local point into world-space coordinates.
func (f Frame) ToWorld(local Vector3) Vector3 {
	return Rotate(f.Orientation, local).Add(f.Origin)
}

// DirToWorld rotates a frame-local direction into world space.
func (f Frame) DirToWorld(local Vector3) Vector3 {
	return Rotate(f.Orientation, local)
}

// DirToLocal rotates a world-space direction into the frame.
func (f Frame) DirToLocal(world Vector3) Vector3 {
	return Rotate(Inverse(f.Orientation), world)
}

// PoseToWorld converts a frame-local pose into world space.
func (f Frame) PoseToWorld(local Pose) Pose {
	return Pose{
		Position:    f.ToWorld(local.Position),
		Orientation: Compose(f.Orientation, local.Orientation),
	}
}

// PoseToLocal converts a world-space pose into the frame.
func (f Frame) PoseToLocal(world Pose) Pose {
	return Pose{
		Position:    f.ToLocal(world.Position),
		Orientation: Compose(Inverse(f.Orientation), world.Orientation),
	}
}
