package geometry

import (
	"errors"

	"gonum.org/v1/gonum/spatial/r2"
)

// ErrDegeneratePolygon is returned when a polygon has fewer than three vertices.
var ErrDegeneratePolygon = errors.New("polygon needs at least 3 vertices")

const earEpsilon = 1e-12

// Triangulate splits a simple counter-clockwise polygon into triangles by
// ear clipping. It returns index triples into pts, each counter-clockwise.
// Self-intersecting outlines still produce len(pts)-2 triangles; the
// result then covers the outline only approximately.
func Triangulate(pts []r2.Vec) ([]int, error) {
	n := len(pts)
	if n < 3 {
		return nil, ErrDegeneratePolygon
	}

	remaining := make([]int, n)
	for i := range remaining {
		remaining[i] = i
	}
	indices := make([]int, 0, (n-2)*3)

	for len(remaining) > 3 {
		m := len(remaining)
		clipped := -1
		fallback := -1
		for i := 0; i < m; i++ {
			prev := remaining[(i+m-1)%m]
			cur := remaining[i]
			next := remaining[(i+1)%m]
			if !isConvex(pts[prev], pts[cur], pts[next]) {
				continue
			}
			if fallback < 0 {
				fallback = i
			}
			if containsAny(pts, remaining, prev, cur, next) {
				continue
			}
			clipped = i
			break
		}
		if clipped < 0 {
			clipped = fallback
		}
		if clipped < 0 {
			clipped = 0
		}
		prev := remaining[(clipped+m-1)%m]
		cur := remaining[clipped]
		next := remaining[(clipped+1)%m]
		indices = append(indices, prev, cur, next)
		remaining = append(remaining[:clipped], remaining[clipped+1:]...)
	}
	indices = append(indices, remaining[0], remaining[1], remaining[2])
	return indices, nil
}

func isConvex(a, b, c r2.Vec) bool {
	return r2.Cross(r2.Sub(b, a), r2.Sub(c, b)) > earEpsilon
}

func containsAny(pts []r2.Vec, remaining []int, a, b, c int) bool {
	tri := r2.Triangle{pts[a], pts[b], pts[c]}
	for _, idx := range remaining {
		if idx == a || idx == b || idx == c {
			continue
		}
		if pointInTriangle(pts[idx], tri) {
			return true
		}
	}
	return false
}

func pointInTriangle(p r2.Vec, t r2.Triangle) bool {
	d1 := r2.Cross(r2.Sub(t[1], t[0]), r2.Sub(p, t[0]))
	d2 := r2.Cross(r2.Sub(t[2], t[1]), r2.Sub(p, t[1]))
	d3 := r2.Cross(r2.Sub(t[0], t[2]), r2.Sub(p, t[2]))
	hasNeg := d1 < -earEpsilon || d2 < -earEpsilon || d3 < -earEpsilon
	hasPos := d1 > earEpsilon || d2 > earEpsilon || d3 > earEpsilon
	return !(hasNeg && hasPos)
}

// TriangulatedArea sums the areas of the triangles produced by Triangulate.
func TriangulatedArea(pts []r2.Vec, indices []int) float64 {
	a := 0.0
	for i := 0; i+2 < len(indices); i += 3 {
		a += r2.Triangle{pts[indices[i]], pts[indices[i+1]], pts[indices[i+2]]}.Area()
	}
	return a
}
