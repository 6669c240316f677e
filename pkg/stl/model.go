package stl

import (
	"errors"
	"fmt"
	"math"

	"github.com/miropolcevpro/paver-ar-web/pkg/geometry"
)

// ErrBadIndices is returned by FromMesh for index lists that are not
// whole triangles or point outside the vertex list.
var ErrBadIndices = errors.New("mesh indices do not form triangles")

// Triangle is one facet with its unit normal.
type Triangle struct {
	Normal     geometry.Vector3
	V1, V2, V3 geometry.Vector3
}

// NewTriangle builds a facet and derives its normal from the winding.
func NewTriangle(v1, v2, v3 geometry.Vector3) Triangle {
	n := v2.Sub(v1).Cross(v3.Sub(v1)).Normalize()
	return Triangle{Normal: n, V1: v1, V2: v2, V3: v3}
}

// Area returns the facet area.
func (t Triangle) Area() float64 {
	return t.V2.Sub(t.V1).Cross(t.V3.Sub(t.V1)).Length() / 2
}

// Bounds is an axis-aligned box.
type Bounds struct {
	Min, Max geometry.Vector3
}

// Size returns the extent along each axis.
func (b Bounds) Size() geometry.Vector3 {
	return b.Max.Sub(b.Min)
}

// Model represents a complete STL model
type Model struct {
	Name      string
	Triangles []Triangle
}

// NewModel creates a new STL model
func NewModel(name string) *Model {
	return &Model{Name: name}
}

// FromMesh converts an indexed triangle mesh into a model.
func FromMesh(name string, positions []geometry.Vector3, indices []int) (*Model, error) {
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("%w: %d indices", ErrBadIndices, len(indices))
	}
	m := NewModel(name)
	for i := 0; i < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		if max(a, b, c) >= len(positions) || min(a, b, c) < 0 {
			return nil, fmt.Errorf("%w: triangle %d references vertex outside [0,%d)", ErrBadIndices, i/3, len(positions))
		}
		m.AddTriangle(NewTriangle(positions[a], positions[b], positions[c]))
	}
	return m, nil
}

// AddTriangle adds a triangle to the model
func (m *Model) AddTriangle(triangle Triangle) {
	m.Triangles = append(m.Triangles, triangle)
}

// TriangleCount returns the number of triangles in the model
func (m *Model) TriangleCount() int {
	return len(m.Triangles)
}

// Bounds returns the box around every vertex. An empty model has zero
// bounds.
func (m *Model) Bounds() Bounds {
	if len(m.Triangles) == 0 {
		return Bounds{}
	}
	inf := math.Inf(1)
	b := Bounds{
		Min: geometry.NewVector3(inf, inf, inf),
		Max: geometry.NewVector3(-inf, -inf, -inf),
	}
	for _, t := range m.Triangles {
		for _, v := range [3]geometry.Vector3{t.V1, t.V2, t.V3} {
			b.Min = geometry.NewVector3(math.Min(b.Min.X, v.X), math.Min(b.Min.Y, v.Y), math.Min(b.Min.Z, v.Z))
			b.Max = geometry.NewVector3(math.Max(b.Max.X, v.X), math.Max(b.Max.Y, v.Y), math.Max(b.Max.Z, v.Z))
		}
	}
	return b
}

// SurfaceArea calculates the total surface area of the model
func (m *Model) SurfaceArea() float64 {
	totalArea := 0.0
	for _, triangle := range m.Triangles {
		totalArea += triangle.Area()
	}
	return totalArea
}
