package lockedframe

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miropolcevpro/paver-ar-web/pkg/geometry"
)

type fakeAnchor struct {
	deleted bool
}

func (a *fakeAnchor) ID() string { return "anchor-1" }
func (a *fakeAnchor) Delete()    { a.deleted = true }

type fakeFactory struct {
	anchor *fakeAnchor
	err    error
}

func (f *fakeFactory) CreateAnchor(context.Context) (Anchor, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.anchor = &fakeAnchor{}
	return f.anchor, nil
}

func tiltedCamera() geometry.Pose {
	// Heading 0.7 rad, pitched down and slightly rolled.
	q := geometry.Compose(geometry.YawRotation(0.7), geometry.Compose(
		geometry.AxisAngle(geometry.Vector3{X: 1}, -0.8),
		geometry.AxisAngle(geometry.Vector3{Z: 1}, 0.1)))
	return geometry.NewPose(geometry.NewVector3(0, 1.5, 0), q)
}

func TestCalibrateRequiresValidTarget(t *testing.T) {
	m := New()
	err := m.Calibrate(context.Background(), Target{Valid: false})
	assert.ErrorIs(t, err, ErrAimAtFloor)
	assert.False(t, m.Locked())
}

func TestCalibrateKeepsFrameHorizontal(t *testing.T) {
	m := New()
	target := Target{Valid: true, Position: geometry.NewVector3(1, -0.2, -2), Camera: tiltedCamera()}
	require.NoError(t, m.Calibrate(context.Background(), target))

	assert.True(t, m.Locked())
	assert.False(t, m.Anchored())
	assert.InDelta(t, -0.2, m.FloorY(), 1e-12)
	assert.InDelta(t, 0, geometry.Tilt(m.Frame().Orientation), 1e-9)

	yaw, ok := geometry.Yaw(m.Frame().Orientation)
	require.True(t, ok)
	assert.InDelta(t, 0.7, yaw, 1e-9)

	// Origin maps to the local origin and local points stay on the floor.
	assert.InDelta(t, 0, m.ToLocal(target.Position).Length(), 1e-12)
	w := m.ToWorld(geometry.NewVector3(2, 0, 3))
	assert.InDelta(t, -0.2, w.Y, 1e-12)
}

func TestAnchorFailureDegradesToStatic(t *testing.T) {
	m := New()
	f := &fakeFactory{err: errors.New("anchors unsupported")}
	err := m.Calibrate(context.Background(), Target{Valid: true, Camera: tiltedCamera(), Anchors: f})
	require.NoError(t, err)
	assert.True(t, m.Locked())
	assert.False(t, m.Anchored())

	assert.False(t, m.Refresh(geometry.NewPose(geometry.NewVector3(5, 5, 5), geometry.Identity()), true))
	assert.Equal(t, geometry.Vector3{}, m.Frame().Origin)
}

func TestRefreshFollowsAnchorWithoutTilt(t *testing.T) {
	m := New()
	f := &fakeFactory{}
	hit := geometry.YawRotation(0.2)
	require.NoError(t, m.Calibrate(context.Background(), Target{
		Valid:          true,
		Position:       geometry.NewVector3(0, 0, -1),
		Camera:         tiltedCamera(),
		HitOrientation: hit,
		Anchors:        f,
	}))
	require.True(t, m.Anchored())

	// The anchor drifts 2 cm, rotates by 0.05 rad and picks up some tilt.
	drifted := geometry.Compose(geometry.YawRotation(0.25), geometry.AxisAngle(geometry.Vector3{X: 1}, 0.03))
	moved := m.Refresh(geometry.NewPose(geometry.NewVector3(0.02, 0.01, -1), drifted), true)
	require.True(t, moved)

	assert.InDelta(t, 0.01, m.FloorY(), 1e-12)
	assert.InDelta(t, 0, geometry.Tilt(m.Frame().Orientation), 1e-9)
	yaw, _ := geometry.Yaw(m.Frame().Orientation)
	assert.InDelta(t, 0.75, yaw, 1e-9)
	assert.Equal(t, 1, m.Refreshes())

	// A missing pose keeps the frame.
	before := m.Frame()
	assert.False(t, m.Refresh(geometry.Pose{}, false))
	assert.Equal(t, before, m.Frame())
}

func TestResetReleasesAnchor(t *testing.T) {
	m := New()
	f := &fakeFactory{}
	require.NoError(t, m.Calibrate(context.Background(), Target{Valid: true, Camera: tiltedCamera(), Anchors: f}))
	m.Reset()

	assert.True(t, f.anchor.deleted)
	assert.False(t, m.Locked())
	assert.Nil(t, m.Anchor())
	assert.Equal(t, geometry.IdentityFrame(), m.Frame())
}

func TestRecalibrateReplacesAnchor(t *testing.T) {
	m := New()
	f := &fakeFactory{}
	require.NoError(t, m.Calibrate(context.Background(), Target{Valid: true, Camera: tiltedCamera(), Anchors: f}))
	first := f.anchor
	require.NoError(t, m.Calibrate(context.Background(), Target{Valid: true, Camera: tiltedCamera(), Anchors: f}))
	assert.True(t, first.deleted)
	assert.False(t, f.anchor.deleted)
}

func TestRoundTrip(t *testing.T) {
	m := New()
	require.NoError(t, m.Calibrate(context.Background(), Target{Valid: true, Position: geometry.NewVector3(3, 0.5, 1), Camera: tiltedCamera()}))
	p := geometry.NewVector3(-1.25, 0.3, 4)
	got := m.ToWorld(m.ToLocal(p))
	assert.InDelta(t, 0, got.Sub(p).Length(), 1e-12)
	assert.False(t, math.IsNaN(got.X))
}
