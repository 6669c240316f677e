package contour

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/miropolcevpro/paver-ar-web/internal/config"
	"github.com/miropolcevpro/paver-ar-web/internal/material"
	"github.com/miropolcevpro/paver-ar-web/pkg/geometry"
)

func square(e *Engine) {
	for _, p := range []geometry.Vector3{
		{X: 0, Z: 0}, {X: 2, Z: 0}, {X: 2, Z: 2}, {X: 0, Z: 2},
	} {
		if _, err := e.AddPoint(p); err != nil {
			panic(err)
		}
	}
}

func TestAddPointTransitions(t *testing.T) {
	e := New(config.Empty())
	assert.Equal(t, Empty, e.State())

	_, err := e.AddPoint(geometry.NewVector3(0, 0.1, 0))
	require.NoError(t, err)
	assert.Equal(t, Open, e.State())

	// Height is pinned to the origin.
	_, err = e.AddPoint(geometry.NewVector3(1, 0.4, 0))
	require.NoError(t, err)
	assert.Equal(t, 0.1, e.Points()[1].Y)
}

func TestSquareMeasurements(t *testing.T) {
	e := New(config.Empty())
	square(e)
	require.NoError(t, e.Close())

	s := e.Summary()
	assert.Equal(t, Closed, s.State)
	assert.Equal(t, 4, s.Points)
	assert.Equal(t, "4.00 m²", s.AreaText)
	assert.Equal(t, "8.00 m", s.PerimeterText)
}

func TestCloseBySnappingAddsNoPoint(t *testing.T) {
	e := New(config.Empty())
	square(e)

	closed, err := e.AddPoint(geometry.NewVector3(0.05, 0, 0.05))
	require.NoError(t, err)
	assert.True(t, closed)
	assert.Equal(t, Closed, e.State())
	assert.Equal(t, 4, e.Len())

	_, err = e.AddPoint(geometry.NewVector3(5, 0, 5))
	assert.True(t, errors.Is(err, ErrContourClosed))
	assert.Equal(t, 4, e.Len())
}

func TestNoSnapWithTwoPoints(t *testing.T) {
	e := New(config.Empty())
	e.AddPoint(geometry.NewVector3(0, 0, 0))
	e.AddPoint(geometry.NewVector3(1, 0, 0))
	closed, err := e.AddPoint(geometry.NewVector3(0.01, 0, 0))
	require.NoError(t, err)
	assert.False(t, closed)
	assert.Equal(t, 3, e.Len())
}

func TestSnapUsesFloorDistance(t *testing.T) {
	e := New(config.Empty())
	square(e)
	// Far above the origin but close on the floor plane.
	assert.True(t, e.CanClose(geometry.NewVector3(0.1, 3, 0)))
	assert.False(t, e.CanClose(geometry.NewVector3(0.2, 0, 0)))
}

func TestCloseNeedsThreePoints(t *testing.T) {
	e := New(config.Empty())
	assert.ErrorIs(t, e.Close(), ErrTooFewPoints)
	e.AddPoint(geometry.NewVector3(0, 0, 0))
	e.AddPoint(geometry.NewVector3(1, 0, 0))
	assert.ErrorIs(t, e.Close(), ErrTooFewPoints)
	assert.Equal(t, Open, e.State())
}

func TestUndo(t *testing.T) {
	e := New(config.Empty())
	assert.False(t, e.Undo())
	assert.Equal(t, Empty, e.State())

	square(e)
	require.NoError(t, e.Close())
	_, err := e.Surface(nil)
	require.NoError(t, err)

	// Reopens and keeps points.
	assert.True(t, e.Undo())
	assert.Equal(t, Open, e.State())
	assert.Equal(t, 4, e.Len())
	assert.Nil(t, e.CurrentSurface())

	for i := 0; i < 3; i++ {
		e.Undo()
	}
	assert.Equal(t, 1, e.Len())
	assert.Equal(t, Open, e.State())

	e.Undo()
	assert.Equal(t, Empty, e.State())
	assert.Equal(t, 0, e.Len())
}

func TestSurfaceRequiresClosed(t *testing.T) {
	e := New(config.Empty())
	square(e)
	_, err := e.Surface(nil)
	assert.ErrorIs(t, err, ErrNotClosed)
}

func TestSurfaceMesh(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	now := start
	e := New(config.Empty())
	e.SetClock(func() time.Time { return now })

	// Clockwise when seen from above.
	for _, p := range []geometry.Vector3{{X: 0, Z: 0}, {X: 0, Z: -2}, {X: 2, Z: -2}, {X: 2, Z: 0}} {
		e.AddPoint(p)
	}
	require.NoError(t, e.Close())

	mat := &material.Descriptor{ID: "tile", RepeatSize: [2]float64{0.5, 0.5}, LiftHeightMM: 20}
	s, err := e.Surface(mat)
	require.NoError(t, err)
	assert.Equal(t, Surfaced, e.State())
	assert.Equal(t, 2, s.Mesh.Triangles())
	assert.False(t, geometry.IsClockwise(s.Mesh.Shape))
	assert.InDelta(t, 4.0, geometry.TriangulatedArea(s.Mesh.Shape, s.Mesh.Indices), 1e-9)

	// Lifted by 20 mm plus the float epsilon.
	assert.InDelta(t, 0.021, s.Position().Y, 1e-12)
	for _, p := range s.Positions() {
		assert.InDelta(t, 0.021, p.Y, 1e-12)
	}

	assert.Equal(t, 0.0, s.Opacity(start))
	now = start.Add(180 * time.Millisecond)
	assert.InDelta(t, 0.5, s.Opacity(now), 1e-9)
	assert.True(t, s.Fading(now))
	assert.Equal(t, 1.0, s.Opacity(start.Add(time.Second)))
}

func TestSurfacePositionsFollowContour(t *testing.T) {
	e := New(config.Empty())
	for _, p := range []geometry.Vector3{{X: 1, Z: 1}, {X: 3, Z: 1}, {X: 3, Z: 2}} {
		e.AddPoint(p)
	}
	require.NoError(t, e.Close())
	s, err := e.Surface(nil)
	require.NoError(t, err)

	got := s.Positions()
	want := e.Points()
	for _, w := range want {
		found := false
		for _, g := range got {
			if g.DistanceXZ(w) < 1e-12 {
				found = true
			}
		}
		assert.True(t, found, "outline point %v missing from mesh", w)
	}
}

func TestSetLiftHeightMovesOnly(t *testing.T) {
	e := New(config.Empty())
	square(e)
	e.Close()
	s, err := e.Surface(nil)
	require.NoError(t, err)
	uvs := append([]r2.Vec(nil), s.Mesh.UVs...)

	e.SetLiftHeight(50)
	assert.InDelta(t, 0.051, s.Position().Y, 1e-12)
	assert.Equal(t, uvs, s.Mesh.UVs)
}

func TestMeshesAreReleased(t *testing.T) {
	e := New(config.Empty())
	square(e)
	e.Close()
	for i := 0; i < 5; i++ {
		_, err := e.Surface(nil)
		require.NoError(t, err)
	}
	last := e.CurrentSurface().Mesh
	e.Undo()
	assert.True(t, last.Released())
	e.Close()
	e.Surface(nil)
	e.Clear()

	built, released := e.MeshStats()
	assert.Equal(t, 6, built)
	assert.Equal(t, built, released)
}

func TestClearResetsRotation(t *testing.T) {
	e := New(config.Empty())
	e.RotatePattern(math.Pi / 2)
	square(e)
	e.Clear()
	assert.Equal(t, Empty, e.State())
	assert.Equal(t, 0.0, e.Pattern().Rotation)
}

func TestRemapUVs(t *testing.T) {
	shape := []r2.Vec{{X: 0.6, Y: 0.3}}
	base := PatternSettings{RepeatSize: [2]float64{0.3, 0.3}, Scale: 1}

	uv := RemapUVs(shape, base)[0]
	assert.InDelta(t, 2.0, uv.X, 1e-12)
	assert.InDelta(t, 1.0, uv.Y, 1e-12)

	cross := base
	cross.Layout = material.Cross
	uv = RemapUVs(shape, cross)[0]
	assert.InDelta(t, -1.0, uv.X, 1e-12)
	assert.InDelta(t, 2.0, uv.Y, 1e-12)

	running := base
	running.Layout = material.Running
	uv = RemapUVs(shape, running)[0]
	assert.InDelta(t, 2.5, uv.X, 1e-12)
	uv = RemapUVs([]r2.Vec{{X: 0.6, Y: 0.0}}, running)[0]
	assert.InDelta(t, 2.0, uv.X, 1e-12)

	diagonal := base
	diagonal.Layout = material.Diagonal
	uv = RemapUVs([]r2.Vec{{X: 0.3, Y: 0}}, diagonal)[0]
	assert.InDelta(t, math.Sqrt2/2, uv.X, 1e-12)
	assert.InDelta(t, math.Sqrt2/2, uv.Y, 1e-12)

	scaled := base
	scaled.Scale = 2
	uv = RemapUVs(shape, scaled)[0]
	assert.InDelta(t, 1.0, uv.X, 1e-12)

	rotated := base
	rotated.Rotation = math.Pi / 2
	uv = RemapUVs(shape, rotated)[0]
	assert.InDelta(t, -1.0, uv.X, 1e-12)
	assert.InDelta(t, 2.0, uv.Y, 1e-12)
}

func TestSetPatternChangesUVsOnly(t *testing.T) {
	e := New(config.Empty())
	square(e)
	e.Close()
	s, err := e.Surface(nil)
	require.NoError(t, err)
	before := s.Positions()

	p := e.Pattern()
	p.Layout = material.Diagonal
	e.SetPattern(p)

	assert.Equal(t, before, s.Positions())
	assert.Equal(t, material.Diagonal, s.Pattern.Layout)
}

func TestUserPatternSurvivesSurfaceAndMaterialSwap(t *testing.T) {
	e := New(config.Empty())
	square(e)
	require.NoError(t, e.Close())

	p := e.Pattern()
	p.Layout = material.Diagonal
	p.Scale = 2
	e.SetPattern(p)

	s, err := e.Surface(nil)
	require.NoError(t, err)
	assert.Equal(t, material.Diagonal, s.Pattern.Layout)
	assert.Equal(t, 2.0, s.Pattern.Scale)

	e.SetMaterial(&material.Descriptor{ID: "brick", RepeatSize: [2]float64{0.2, 0.1}, Layout: material.Running, Scale: 3})
	assert.Equal(t, material.Diagonal, s.Pattern.Layout)
	assert.Equal(t, 2.0, s.Pattern.Scale)
	assert.Equal(t, [2]float64{0.2, 0.1}, s.Pattern.RepeatSize)
}

func TestMaterialSuppliesLayoutUntilOverridden(t *testing.T) {
	e := New(config.Empty())
	square(e)
	require.NoError(t, e.Close())
	brick := &material.Descriptor{ID: "brick", Layout: material.Running, Scale: 3}

	s, err := e.Surface(brick)
	require.NoError(t, err)
	assert.Equal(t, material.Running, s.Pattern.Layout)
	assert.Equal(t, 3.0, s.Pattern.Scale)

	e.SetScale(1.5)
	s, err = e.Surface(brick)
	require.NoError(t, err)
	assert.Equal(t, material.Running, s.Pattern.Layout)
	assert.Equal(t, 1.5, s.Pattern.Scale)

	e.SetLayout(material.Cross)
	assert.Equal(t, material.Cross, e.Pattern().Layout)
	assert.Equal(t, material.Cross, s.Pattern.Layout)
}
