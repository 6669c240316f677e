package stl

import (
	"bytes"
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/miropolcevpro/paver-ar-web/pkg/geometry"
)

func quad() *Model {
	pos := []geometry.Vector3{
		geometry.NewVector3(0, 0, 0),
		geometry.NewVector3(2, 0, 0),
		geometry.NewVector3(2, 0, -2),
		geometry.NewVector3(0, 0, -2),
	}
	m, err := FromMesh("floor", pos, []int{0, 1, 2, 0, 2, 3})
	if err != nil {
		panic(err)
	}
	return m
}

func TestFromMesh(t *testing.T) {
	m := quad()
	if m.TriangleCount() != 2 {
		t.Fatalf("TriangleCount = %d, want 2", m.TriangleCount())
	}
	if got := m.SurfaceArea(); math.Abs(got-4) > 1e-12 {
		t.Errorf("SurfaceArea = %v, want 4", got)
	}
	// Counter-clockwise seen from above faces up.
	if n := m.Triangles[0].Normal; math.Abs(n.Y-1) > 1e-12 {
		t.Errorf("normal = %+v, want +Y", n)
	}
	size := m.Bounds().Size()
	if size.X != 2 || size.Y != 0 || size.Z != 2 {
		t.Errorf("bounds size = %+v", size)
	}
}

func TestFromMeshBadIndices(t *testing.T) {
	pos := []geometry.Vector3{{}, {X: 1}, {Z: 1}}
	if _, err := FromMesh("x", pos, []int{0, 1}); !errors.Is(err, ErrBadIndices) {
		t.Errorf("partial triangle: err = %v", err)
	}
	if _, err := FromMesh("x", pos, []int{0, 1, 3}); !errors.Is(err, ErrBadIndices) {
		t.Errorf("out of range: err = %v", err)
	}
}

func TestBinaryRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteBinary(&buf, quad()); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 80+4+2*50 {
		t.Fatalf("binary size = %d", buf.Len())
	}
	m, err := Read(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if m.Name != "floor" || m.TriangleCount() != 2 {
		t.Errorf("got name %q with %d triangles", m.Name, m.TriangleCount())
	}
	if got := m.SurfaceArea(); math.Abs(got-4) > 1e-6 {
		t.Errorf("SurfaceArea = %v", got)
	}
}

func TestASCII(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteASCII(&buf, quad()); err != nil {
		t.Fatal(err)
	}
	text := buf.String()
	if !strings.HasPrefix(text, "solid floor\n") || !strings.HasSuffix(text, "endsolid floor\n") {
		t.Errorf("unexpected framing:\n%s", text)
	}
	if strings.Count(text, "vertex ") != 6 {
		t.Errorf("want 6 vertices:\n%s", text)
	}

	m, err := Read(strings.NewReader(text))
	if err != nil {
		t.Fatal(err)
	}
	if m.TriangleCount() != 2 || m.Name != "floor" {
		t.Errorf("got %q with %d triangles", m.Name, m.TriangleCount())
	}
}

func TestASCIIBadNumber(t *testing.T) {
	src := "solid x\nfacet normal 0 1 0\nouter loop\nvertex 0 zero 0\n"
	if _, err := Read(strings.NewReader(src)); err == nil {
		t.Error("expected an error for a malformed vertex")
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "floor.stl")
	if err := WriteFile(path, quad(), false); err != nil {
		t.Fatal(err)
	}
	m, err := Parse(path)
	if err != nil {
		t.Fatal(err)
	}
	if m.TriangleCount() != 2 {
		t.Errorf("TriangleCount = %d", m.TriangleCount())
	}
}
