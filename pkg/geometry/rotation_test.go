package geometry

import (
	"math"
	"testing"
)

func TestYawOnlyStripsPitchAndRoll(t *testing.T) {
	for _, tc := range []struct {
		yaw, pitch, roll float64
	}{
		{0.3, 0.4, -0.2},
		{-2.5, -0.9, 0.7},
		{math.Pi / 2, 1.2, 1.2},
		{3.0, -0.1, 0},
	} {
		q := Compose(YawRotation(tc.yaw), Compose(AxisAngle(NewVector3(1, 0, 0), tc.pitch), AxisAngle(NewVector3(0, 0, 1), tc.roll)))
		flat := YawOnly(q)

		if tilt := Tilt(flat); tilt > 1e-9 {
			t.Errorf("yaw=%v pitch=%v roll=%v: tilt %v, want 0", tc.yaw, tc.pitch, tc.roll, tilt)
		}

		// The horizontal heading must survive.
		want := Rotate(q, Forward)
		want.Y = 0
		want = want.Normalize()
		got := Rotate(flat, Forward)
		if got.Distance(want) > 1e-9 {
			t.Errorf("heading changed: got %v, want %v", got, want)
		}
	}
}

func TestYawOnlyVerticalForwardIsIdentity(t *testing.T) {
	down := AxisAngle(NewVector3(1, 0, 0), -math.Pi/2)
	if fwd := Rotate(down, Forward); math.Abs(fwd.Y+1) > 1e-9 {
		t.Fatalf("setup: forward should point down, got %v", fwd)
	}
	if got := YawOnly(down); got != Identity() {
		t.Errorf("YawOnly(looking down) = %v, want identity", got)
	}
	up := AxisAngle(NewVector3(1, 0, 0), math.Pi/2)
	if got := YawOnly(up); got != Identity() {
		t.Errorf("YawOnly(looking up) = %v, want identity", got)
	}
}

func TestYawRoundTrip(t *testing.T) {
	for _, yaw := range []float64{0, 0.5, -1.2, math.Pi - 0.01} {
		got, ok := Yaw(YawRotation(yaw))
		if !ok || math.Abs(got-yaw) > 1e-9 {
			t.Errorf("Yaw(YawRotation(%v)) = %v, %v", yaw, got, ok)
		}
	}
}

func TestSlerpEndpointsAndMidpoint(t *testing.T) {
	a := YawRotation(0)
	b := YawRotation(math.Pi / 2)

	if got, _ := Yaw(Slerp(a, b, 0)); math.Abs(got) > 1e-9 {
		t.Errorf("Slerp(0) yaw = %v, want 0", got)
	}
	if got, _ := Yaw(Slerp(a, b, 1)); math.Abs(got-math.Pi/2) > 1e-9 {
		t.Errorf("Slerp(1) yaw = %v, want pi/2", got)
	}
	if got, _ := Yaw(Slerp(a, b, 0.5)); math.Abs(got-math.Pi/4) > 1e-9 {
		t.Errorf("Slerp(0.5) yaw = %v, want pi/4", got)
	}
}

func TestSlerpTakesShortestArc(t *testing.T) {
	a := YawRotation(0.1)
	b := Normalized(Rotation{Real: -YawRotation(0.3).Real, Jmag: -YawRotation(0.3).Jmag})

	got, _ := Yaw(Slerp(a, b, 0.5))
	if math.Abs(got-0.2) > 1e-9 {
		t.Errorf("Slerp across hemispheres yaw = %v, want 0.2", got)
	}
}

func TestNormalizeAngle(t *testing.T) {
	for _, tc := range []struct{ in, want float64 }{
		{0, 0},
		{3 * math.Pi / 2, -math.Pi / 2},
		{-3 * math.Pi / 2, math.Pi / 2},
		{7 * math.Pi / 2, -math.Pi / 2},
	} {
		if got := NormalizeAngle(tc.in); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("NormalizeAngle(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestFrameRoundTrip(t *testing.T) {
	f := NewFloorFrame(NewVector3(1, -1.4, 2), Compose(YawRotation(0.7), AxisAngle(NewVector3(1, 0, 0), 0.3)))
	p := NewVector3(0.25, 0, -3)

	back := f.ToLocal(f.ToWorld(p))
	if back.Distance(p) > 1e-9 {
		t.Errorf("ToLocal(ToWorld(p)) = %v, want %v", back, p)
	}
	if w := f.ToWorld(NewVector3(5, 0, 5)); math.Abs(w.Y-(-1.4)) > 1e-9 {
		t.Errorf("floor frame must keep local y=0 at origin height, got %v", w.Y)
	}
}
