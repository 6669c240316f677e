package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// SignedAreaXZ returns the signed shoelace sum over the XZ plane, halved.
// The sign depends on winding; Y is ignored.
func SignedAreaXZ(points []Vector3) float64 {
	if len(points) < 3 {
		return 0
	}
	a := 0.0
	for i := range points {
		p1 := points[i]
		p2 := points[(i+1)%len(points)]
		a += p1.X*p2.Z - p2.X*p1.Z
	}
	return a / 2
}

// AreaXZ returns the area of the polygon projected onto the floor plane.
// It is independent of winding direction and starting vertex.
func AreaXZ(points []Vector3) float64 {
	return math.Abs(SignedAreaXZ(points))
}

// Perimeter returns the length of the closed loop through points,
// including the edge from the last point back to the first.
func Perimeter(points []Vector3) float64 {
	if len(points) < 2 {
		return 0
	}
	p := 0.0
	for i := range points {
		p += points[i].Distance(points[(i+1)%len(points)])
	}
	return p
}

// PathLength returns the length of the open polyline through points.
func PathLength(points []Vector3) float64 {
	l := 0.0
	for i := 1; i < len(points); i++ {
		l += points[i-1].Distance(points[i])
	}
	return l
}

// ProjectXZ drops the Y axis and maps points into a 2D plane relative to
// origin. Z is negated so that a counter-clockwise outline seen from above
// stays counter-clockwise in the projected plane.
func ProjectXZ(points []Vector3, origin Vector3) []r2.Vec {
	out := make([]r2.Vec, len(points))
	for i, p := range points {
		out[i] = r2.Vec{X: p.X - origin.X, Y: -(p.Z - origin.Z)}
	}
	return out
}

// SignedArea2D returns the signed area of a 2D polygon; positive when
// counter-clockwise.
func SignedArea2D(pts []r2.Vec) float64 {
	if len(pts) < 3 {
		return 0
	}
	a := 0.0
	for i := range pts {
		a += r2.Cross(pts[i], pts[(i+1)%len(pts)])
	}
	return a / 2
}

// IsClockwise reports whether a 2D polygon winds clockwise.
func IsClockwise(pts []r2.Vec) bool {
	return SignedArea2D(pts) < 0
}

// Reversed returns a reversed copy of pts.
func Reversed[T any](pts []T) []T {
	out := make([]T, len(pts))
	for i, p := range pts {
		out[len(pts)-1-i] = p
	}
	return out
}
