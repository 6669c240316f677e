package viewer

import (
	"image/color"
	"math"
	"testing"

	"github.com/miropolcevpro/paver-ar-web/pkg/geometry"
)

const tolerance = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < tolerance
}

func TestProjectCenter(t *testing.T) {
	cam := NewCamera(geometry.NewPose(geometry.Vector3{}, geometry.Identity()), 0.01, 100)
	x, y, dist, ok := cam.Project(geometry.NewVector3(0, 0, -3), 640, 480)
	if !ok {
		t.Fatal("point in front of the camera was not projected")
	}
	if !almostEqual(x, 320) || !almostEqual(y, 240) || !almostEqual(dist, 3) {
		t.Errorf("Project() = (%v, %v, %v), want (320, 240, 3)", x, y, dist)
	}

	if _, _, _, ok := cam.Project(geometry.NewVector3(0, 0, 1), 640, 480); ok {
		t.Error("point behind the camera should not project")
	}
}

func TestUnprojectInvertsProject(t *testing.T) {
	pose := geometry.NewPose(geometry.NewVector3(1, 1.5, 2), geometry.Compose(geometry.YawRotation(0.4), geometry.AxisAngle(geometry.Vector3{X: 1}, -0.6)))
	cam := NewCamera(pose, 0.01, 100)

	point := geometry.NewVector3(0.5, 0, -1)
	sx, sy, _, ok := cam.Project(point, 800, 600)
	if !ok {
		t.Fatal("point not visible")
	}
	origin, dir := cam.Unproject(sx, sy, 800, 600)
	want := point.Sub(origin).Normalize()
	if dir.Sub(want).Length() > 1e-9 {
		t.Errorf("Unproject() direction = %v, want %v", dir, want)
	}
}

func TestRayLooksForward(t *testing.T) {
	cam := NewCamera(geometry.NewPose(geometry.NewVector3(0, 1, 0), geometry.YawRotation(math.Pi/2)), 0.01, 100)
	_, dir := cam.Ray()
	// Quarter turn to the left looks down -X.
	if !almostEqual(dir.X, -1) || !almostEqual(dir.Z, 0) {
		t.Errorf("Ray() direction = %v, want (-1, 0, 0)", dir)
	}
}

func TestDepthConversionRoundTrip(t *testing.T) {
	near, far := 0.01, 20.0
	for _, dist := range []float64{0.01, 0.5, 1, 7.5, 20} {
		depth := ViewZToPerspectiveDepth(-dist, near, far)
		if depth < -tolerance || depth > 1+tolerance {
			t.Errorf("depth %v at distance %v outside [0, 1]", depth, dist)
		}
		got := -PerspectiveDepthToViewZ(depth, near, far)
		if math.Abs(got-dist) > 1e-6 {
			t.Errorf("round trip of %v gave %v", dist, got)
		}
	}
	if !almostEqual(ViewZToPerspectiveDepth(-near, near, far), 0) {
		t.Error("near plane should map to depth 0")
	}
	if !almostEqual(ViewZToPerspectiveDepth(-far, near, far), 1) {
		t.Error("far plane should map to depth 1")
	}
}

type leftHalf struct{ width int }

func (o leftHalf) Occludes(x, y int, depth float64) bool {
	return x < o.width/2
}

func TestDrawMeshDepthTest(t *testing.T) {
	cam := NewCamera(geometry.NewPose(geometry.Vector3{}, geometry.Identity()), 0.01, 100)
	r := NewRasterizer(40, 30)

	quad := func(z float64) []geometry.Vector3 {
		return []geometry.Vector3{{X: -1, Y: -1, Z: z}, {X: 1, Y: -1, Z: z}, {X: 1, Y: 1, Z: z}, {X: -1, Y: 1, Z: z}}
	}
	indices := []int{0, 1, 2, 0, 2, 3}
	near := color.RGBA{G: 255, A: 255}
	far := color.RGBA{B: 255, A: 255}

	r.DrawMesh(cam, quad(-2), indices, near, nil)
	stats := r.DrawMesh(cam, quad(-4), indices, far, nil)
	if stats.Drawn != 0 {
		t.Errorf("far quad drew %d pixels through the near one", stats.Drawn)
	}
	if got := r.Image.RGBAAt(20, 15); got != near {
		t.Errorf("center pixel = %v, want %v", got, near)
	}
}

func TestDrawMeshOccluder(t *testing.T) {
	cam := NewCamera(geometry.NewPose(geometry.Vector3{}, geometry.Identity()), 0.01, 100)
	r := NewRasterizer(40, 30)
	quad := []geometry.Vector3{{X: -1, Y: -1, Z: -2}, {X: 1, Y: -1, Z: -2}, {X: 1, Y: 1, Z: -2}, {X: -1, Y: 1, Z: -2}}
	col := color.RGBA{R: 255, A: 255}

	stats := r.DrawMesh(cam, quad, []int{0, 1, 2, 0, 2, 3}, col, leftHalf{width: 40})
	if stats.Drawn == 0 || stats.Occluded == 0 {
		t.Fatalf("expected drawn and occluded fragments, got %+v", stats)
	}
	if got := r.Image.RGBAAt(12, 15); got != (color.RGBA{}) {
		t.Errorf("occluded pixel was drawn: %v", got)
	}
	if r.Depth(12, 15) != 1 {
		t.Error("occluded fragment wrote depth")
	}
	if got := r.Image.RGBAAt(28, 15); got != col {
		t.Errorf("visible pixel = %v, want %v", got, col)
	}
}

func TestDrawPolylineClosed(t *testing.T) {
	cam := NewCamera(geometry.NewPose(geometry.Vector3{}, geometry.Identity()), 0.01, 100)
	r := NewRasterizer(40, 30)
	col := color.RGBA{R: 255, G: 255, A: 255}
	pts := []geometry.Vector3{{X: -1, Y: 0, Z: -2}, {X: 1, Y: 0, Z: -2}}
	r.DrawPolyline(cam, pts, false, col)
	if got := r.Image.RGBAAt(20, 15); got != col {
		t.Errorf("line pixel = %v, want %v", got, col)
	}
}
