package contour

import (
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/miropolcevpro/paver-ar-web/internal/material"
	"github.com/miropolcevpro/paver-ar-web/pkg/geometry"
)

// Mesh is the triangulated fill of a closed contour. Shape coordinates are
// meters in the surface plane relative to the contour origin; shape (x, y)
// maps to frame-local offset (x, 0, -y).
type Mesh struct {
	Shape    []r2.Vec
	UVs      []r2.Vec
	Indices  []int
	released bool
}

// Released reports whether the mesh was released.
func (m *Mesh) Released() bool {
	return m.released
}

// Triangles returns the number of triangles.
func (m *Mesh) Triangles() int {
	return len(m.Indices) / 3
}

// Surface is a placed floor fill. Positions are in locked-frame-local space.
type Surface struct {
	Mesh     *Mesh
	Base     geometry.Vector3 // contour origin
	Material *material.Descriptor
	Pattern  PatternSettings

	liftMM    float64
	floatEps  float64
	createdAt time.Time
	fade      time.Duration
}

// LiftHeightMM returns the lift above the floor in millimeters.
func (s *Surface) LiftHeightMM() float64 {
	return s.liftMM
}

// Position returns the mesh origin including lift and the float epsilon.
func (s *Surface) Position() geometry.Vector3 {
	return s.Base.Add(geometry.Vector3{Y: s.liftMM/1000 + s.floatEps})
}

// Positions returns the mesh vertices in locked-frame-local space.
func (s *Surface) Positions() []geometry.Vector3 {
	origin := s.Position()
	out := make([]geometry.Vector3, len(s.Mesh.Shape))
	for i, v := range s.Mesh.Shape {
		out[i] = origin.Add(geometry.Vector3{X: v.X, Z: -v.Y})
	}
	return out
}

// WorldPositions returns the mesh vertices in world space.
func (s *Surface) WorldPositions(f geometry.Frame) []geometry.Vector3 {
	local := s.Positions()
	for i, p := range local {
		local[i] = f.ToWorld(p)
	}
	return local
}

// Opacity returns the fade-in opacity at now, in [0, 1].
func (s *Surface) Opacity(now time.Time) float64 {
	if s.fade <= 0 {
		return 1
	}
	t := float64(now.Sub(s.createdAt)) / float64(s.fade)
	switch {
	case t <= 0:
		return 0
	case t >= 1:
		return 1
	default:
		return t
	}
}

// Fading reports whether the fade-in is still running at now.
func (s *Surface) Fading(now time.Time) bool {
	return s.Opacity(now) < 1
}

// buildMesh projects a flat contour, normalizes it to counter-clockwise
// and triangulates it.
func buildMesh(points []geometry.Vector3, pattern PatternSettings) (*Mesh, error) {
	shape := geometry.ProjectXZ(points, points[0])
	if geometry.IsClockwise(shape) {
		shape = geometry.Reversed(shape)
	}
	indices, err := geometry.Triangulate(shape)
	if err != nil {
		return nil, err
	}
	return &Mesh{
		Shape:   shape,
		UVs:     RemapUVs(shape, pattern),
		Indices: indices,
	}, nil
}
