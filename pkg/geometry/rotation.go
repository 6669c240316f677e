package geometry

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Rotation is a unit quaternion orientation.
type Rotation = r3.Rotation

// Forward is the camera/content forward axis (-Z), matching the platform convention.
var Forward = Vector3{Z: -1}

// Identity returns the identity rotation.
func Identity() Rotation {
	return Rotation{Real: 1}
}

// AxisAngle returns a rotation of angle radians around axis.
func AxisAngle(axis Vector3, angle float64) Rotation {
	return r3.NewRotation(angle, axis.Vec())
}

// YawRotation returns a rotation of yaw radians around the world up axis.
// Yaw 0 looks towards -Z; positive yaw turns towards -X.
func YawRotation(yaw float64) Rotation {
	return AxisAngle(Up, yaw)
}

// Rotate applies q to v.
func Rotate(q Rotation, v Vector3) Vector3 {
	return FromVec(q.Rotate(v.Vec()))
}

// Inverse returns the inverse of a unit rotation.
func Inverse(q Rotation) Rotation {
	return Rotation(quat.Conj(quat.Number(q)))
}

// Compose returns the rotation that applies b first, then a.
func Compose(a, b Rotation) Rotation {
	return Rotation(quat.Mul(quat.Number(a), quat.Number(b)))
}

// Yaw returns the heading of q around the up axis, measured from -Z.
// ok is false when the rotated forward vector is (nearly) vertical and the
// heading is undefined.
func Yaw(q Rotation) (yaw float64, ok bool) {
	fwd := Rotate(q, Forward)
	fwd.Y = 0
	if fwd.LengthSq() < 1e-8 {
		return 0, false
	}
	return math.Atan2(-fwd.X, -fwd.Z), true
}

// YawOnly strips pitch and roll from q, keeping only the heading.
// A vertical forward vector yields the identity rotation.
func YawOnly(q Rotation) Rotation {
	yaw, ok := Yaw(q)
	if !ok {
		return Identity()
	}
	return YawRotation(yaw)
}

// Tilt returns the angle in radians between the rotated up axis and world up.
// It is zero for any yaw-only rotation.
func Tilt(q Rotation) float64 {
	up := Rotate(q, Up)
	return math.Atan2(up.Cross(Up).Length(), up.Dot(Up))
}

// Normalized returns q scaled to unit length. A zero quaternion becomes identity.
func Normalized(q Rotation) Rotation {
	n := quat.Abs(quat.Number(q))
	if n == 0 || math.IsNaN(n) {
		return Identity()
	}
	return Rotation(quat.Scale(1/n, quat.Number(q)))
}

// Slerp spherically interpolates from a to b by t along the shortest arc.
func Slerp(a, b Rotation, t float64) Rotation {
	qa, qb := quat.Number(a), quat.Number(b)
	dot := qa.Real*qb.Real + qa.Imag*qb.Imag + qa.Jmag*qb.Jmag + qa.Kmag*qb.Kmag
	if dot < 0 {
		qb = quat.Scale(-1, qb)
		dot = -dot
	}
	if dot > 0.9995 {
		// Nearly parallel: normalized lerp is stable and indistinguishable.
		q := quat.Add(qa, quat.Scale(t, quat.Sub(qb, qa)))
		return Normalized(Rotation(q))
	}
	theta := math.Acos(dot)
	sin := math.Sin(theta)
	wa := math.Sin((1-t)*theta) / sin
	wb := math.Sin(t*theta) / sin
	return Rotation(quat.Add(quat.Scale(wa, qa), quat.Scale(wb, qb)))
}

// NormalizeAngle wraps a to the range [-π, π].
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a > math.Pi {
		a -= 2 * math.Pi
	}
	if a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
