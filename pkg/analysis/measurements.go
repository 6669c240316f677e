// Package analysis reports on exported surface meshes: triangle and edge
// statistics plus a footprint area that can be checked against the
// contour it was built from.
package analysis

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"

	"github.com/miropolcevpro/paver-ar-web/pkg/geometry"
	"github.com/miropolcevpro/paver-ar-web/pkg/stl"
)

// EdgeInfo contains information about an edge in the model
type EdgeInfo struct {
	Start      geometry.Vector3
	End        geometry.Vector3
	Length     float64
	TriangleID int
}

// Report contains the measurements of a surface mesh.
type Report struct {
	Bounds        stl.Bounds
	Dimensions    geometry.Vector3
	SurfaceArea   float64
	FootprintArea float64 // area projected on the floor plane
	TriangleCount int
	EdgeCount     int
	MinEdgeLength float64
	MaxEdgeLength float64
	AvgEdgeLength float64
	EdgeStdDev    float64
	AllEdges      []EdgeInfo
}

// AnalyzeModel measures model.
func AnalyzeModel(model *stl.Model) *Report {
	r := &Report{
		Bounds:        model.Bounds(),
		SurfaceArea:   model.SurfaceArea(),
		TriangleCount: model.TriangleCount(),
	}
	r.Dimensions = r.Bounds.Size()

	lengths := make([]float64, 0, 3*len(model.Triangles))
	for i, t := range model.Triangles {
		r.FootprintArea += r2.Triangle{xz(t.V1), xz(t.V2), xz(t.V3)}.Area()
		for _, e := range [3][2]geometry.Vector3{{t.V1, t.V2}, {t.V2, t.V3}, {t.V3, t.V1}} {
			l := e[0].Distance(e[1])
			r.AllEdges = append(r.AllEdges, EdgeInfo{Start: e[0], End: e[1], Length: l, TriangleID: i})
			lengths = append(lengths, l)
		}
	}

	r.EdgeCount = len(lengths)
	if r.EdgeCount > 0 {
		r.MinEdgeLength = floats.Min(lengths)
		r.MaxEdgeLength = floats.Max(lengths)
		r.AvgEdgeLength, r.EdgeStdDev = stat.PopMeanStdDev(lengths, nil)
	}
	return r
}

func xz(v geometry.Vector3) r2.Vec {
	return r2.Vec{X: v.X, Y: v.Z}
}

// AreaDeviation returns the relative difference between the mesh footprint
// and the area of the contour it was triangulated from.
func (r *Report) AreaDeviation(contourArea float64) float64 {
	if contourArea == 0 {
		return math.Abs(r.FootprintArea)
	}
	return math.Abs(r.FootprintArea-contourArea) / contourArea
}

// FindLongestEdges returns the N longest edges in the model
func FindLongestEdges(r *Report, count int) []EdgeInfo {
	return sortedEdges(r, count, func(a, b float64) bool { return a > b })
}

// FindShortestEdges returns the N shortest edges in the model
func FindShortestEdges(r *Report, count int) []EdgeInfo {
	return sortedEdges(r, count, func(a, b float64) bool { return a < b })
}

func sortedEdges(r *Report, count int, less func(a, b float64) bool) []EdgeInfo {
	edges := make([]EdgeInfo, len(r.AllEdges))
	copy(edges, r.AllEdges)
	sort.SliceStable(edges, func(i, j int) bool {
		return less(edges[i].Length, edges[j].Length)
	})
	return edges[:min(count, len(edges))]
}

// FindNearestVertex finds the vertex in the model nearest to a given point
func FindNearestVertex(model *stl.Model, point geometry.Vector3) (geometry.Vector3, float64) {
	var nearest geometry.Vector3
	minDistance := math.MaxFloat64

	for _, t := range model.Triangles {
		for _, v := range [3]geometry.Vector3{t.V1, t.V2, t.V3} {
			if d := point.Distance(v); d < minDistance {
				minDistance = d
				nearest = v
			}
		}
	}
	return nearest, minDistance
}

// FormatVector formats a 3D vector in meters.
func FormatVector(v geometry.Vector3) string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", v.X, v.Y, v.Z)
}
