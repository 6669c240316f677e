package analysis

import (
	"math"
	"testing"

	"github.com/miropolcevpro/paver-ar-web/pkg/geometry"
	"github.com/miropolcevpro/paver-ar-web/pkg/stl"
)

func square(t *testing.T, y float64) *stl.Model {
	t.Helper()
	pos := []geometry.Vector3{
		geometry.NewVector3(0, y, 0),
		geometry.NewVector3(2, y, 0),
		geometry.NewVector3(2, y, -2),
		geometry.NewVector3(0, y, -2),
	}
	m, err := stl.FromMesh("square", pos, []int{0, 1, 2, 0, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestAnalyzeModel(t *testing.T) {
	r := AnalyzeModel(square(t, 0.021))

	if r.TriangleCount != 2 || r.EdgeCount != 6 {
		t.Fatalf("got %d triangles, %d edges", r.TriangleCount, r.EdgeCount)
	}
	if math.Abs(r.SurfaceArea-4) > 1e-12 || math.Abs(r.FootprintArea-4) > 1e-12 {
		t.Errorf("areas = %v / %v, want 4", r.SurfaceArea, r.FootprintArea)
	}
	if r.MinEdgeLength != 2 {
		t.Errorf("MinEdgeLength = %v", r.MinEdgeLength)
	}
	if math.Abs(r.MaxEdgeLength-2*math.Sqrt2) > 1e-12 {
		t.Errorf("MaxEdgeLength = %v", r.MaxEdgeLength)
	}
	if r.EdgeStdDev <= 0 {
		t.Errorf("EdgeStdDev = %v, want > 0", r.EdgeStdDev)
	}
	if d := r.AreaDeviation(4); d > 1e-12 {
		t.Errorf("AreaDeviation = %v", d)
	}
	if d := r.AreaDeviation(5); math.Abs(d-0.2) > 1e-12 {
		t.Errorf("AreaDeviation(5) = %v, want 0.2", d)
	}
}

func TestEdgeOrdering(t *testing.T) {
	r := AnalyzeModel(square(t, 0))

	longest := FindLongestEdges(r, 2)
	if len(longest) != 2 || longest[0].Length != longest[1].Length {
		t.Errorf("longest = %+v, want both diagonals", longest)
	}
	if got := FindShortestEdges(r, 10); len(got) != 6 || got[0].Length != 2 {
		t.Errorf("shortest = %+v", got)
	}
}

func TestEmptyModel(t *testing.T) {
	r := AnalyzeModel(stl.NewModel("empty"))
	if r.EdgeCount != 0 || r.MinEdgeLength != 0 || r.FootprintArea != 0 {
		t.Errorf("empty report = %+v", r)
	}
}

func TestFindNearestVertex(t *testing.T) {
	v, d := FindNearestVertex(square(t, 0), geometry.NewVector3(2.1, 0, 0.1))
	if v != geometry.NewVector3(2, 0, 0) {
		t.Errorf("nearest = %+v", v)
	}
	if math.Abs(d-math.Sqrt(0.02)) > 1e-12 {
		t.Errorf("distance = %v", d)
	}
}
