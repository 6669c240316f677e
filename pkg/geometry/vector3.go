package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Vector3 represents a 3D point or vector in meters.
// Y is up; the floor plane is XZ.
type Vector3 struct {
	X, Y, Z float64
}

// NewVector3 creates a new 3D vector
func NewVector3(x, y, z float64) Vector3 {
	return Vector3{X: x, Y: y, Z: z}
}

// Up is the world up axis.
var Up = Vector3{Y: 1}

// FromVec converts a gonum vector.
func FromVec(p r3.Vec) Vector3 {
	return Vector3{X: p.X, Y: p.Y, Z: p.Z}
}

// Vec converts the vector to its gonum representation.
func (v Vector3) Vec() r3.Vec {
	return r3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}

// Add returns the sum of two vectors
func (v Vector3) Add(other Vector3) Vector3 {
	return FromVec(r3.Add(v.Vec(), other.Vec()))
}

// Sub returns the difference between two vectors
func (v Vector3) Sub(other Vector3) Vector3 {
	return FromVec(r3.Sub(v.Vec(), other.Vec()))
}

// Mul multiplies the vector by a scalar
func (v Vector3) Mul(scalar float64) Vector3 {
	return FromVec(r3.Scale(scalar, v.Vec()))
}

// Dot returns the dot product of two vectors
func (v Vector3) Dot(other Vector3) float64 {
	return r3.Dot(v.Vec(), other.Vec())
}

// Cross returns the cross product of two vectors
func (v Vector3) Cross(other Vector3) Vector3 {
	return FromVec(r3.Cross(v.Vec(), other.Vec()))
}

// Length returns the magnitude of the vector
func (v Vector3) Length() float64 {
	return r3.Norm(v.Vec())
}

// LengthSq returns the squared magnitude of the vector
func (v Vector3) LengthSq() float64 {
	return r3.Norm2(v.Vec())
}

// Distance returns the distance between two points
func (v Vector3) Distance(other Vector3) float64 {
	return v.Sub(other).Length()
}

// DistanceXZ returns the distance between two points projected onto the floor plane.
func (v Vector3) DistanceXZ(other Vector3) float64 {
	return math.Hypot(v.X-other.X, v.Z-other.Z)
}

// Normalize returns a unit vector in the same direction
func (v Vector3) Normalize() Vector3 {
	if v.LengthSq() == 0 {
		return Vector3{}
	}
	return FromVec(r3.Unit(v.Vec()))
}

// Lerp moves v towards target by the fraction t.
func (v Vector3) Lerp(target Vector3, t float64) Vector3 {
	return v.Add(target.Sub(v).Mul(t))
}

// WithY returns a copy of v with Y replaced.
func (v Vector3) WithY(y float64) Vector3 {
	v.Y = y
	return v
}

// IsFinite reports whether all components are finite numbers.
func (v Vector3) IsFinite() bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
