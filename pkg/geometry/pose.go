package geometry

// Pose is a rigid placement: a position and an orientation.
type Pose struct {
	Position    Vector3
	Orientation Rotation
}

// NewPose creates a pose, normalizing the orientation.
func NewPose(position Vector3, orientation Rotation) Pose {
	return Pose{Position: position, Orientation: Normalized(orientation)}
}

// Forward returns the unit forward (-Z) direction of the pose.
func (p Pose) Forward() Vector3 {
	return Rotate(p.Orientation, Forward).Normalize()
}

// Up returns the unit up (+Y) direction of the pose.
func (p Pose) Up() Vector3 {
	return Rotate(p.Orientation, Up).Normalize()
}

// NormalDotUp returns how closely the pose's local up axis aligns with world up.
// Platform plane hits report the plane normal as the pose's local Y axis.
func (p Pose) NormalDotUp() float64 {
	return p.Up().Dot(Up)
}

// Lerp blends position linearly and orientation spherically towards target.
func (p Pose) Lerp(target Pose, t float64) Pose {
	return Pose{
		Position:    p.Position.Lerp(target.Position, t),
		Orientation: Slerp(p.Orientation, target.Orientation, t),
	}
}
