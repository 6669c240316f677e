package simplatform

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miropolcevpro/paver-ar-web/internal/contour"
	"github.com/miropolcevpro/paver-ar-web/internal/material"
	"github.com/miropolcevpro/paver-ar-web/internal/occlusion"
	"github.com/miropolcevpro/paver-ar-web/internal/session"
	"github.com/miropolcevpro/paver-ar-web/pkg/geometry"
)

var square = [][2]float64{{0, 0}, {2, 0}, {2, 2}, {0, 2}}

func start(t *testing.T, p *Platform) *session.Session {
	t.Helper()
	s := session.New(p, nil, nil)
	require.NoError(t, s.Start(context.Background()))
	return s
}

func TestSquareReplay(t *testing.T) {
	p := New()
	s := start(t, p)

	out, err := Replay(context.Background(), s, p, DefaultScene().Polygon(square), nil)
	require.NoError(t, err)

	assert.Equal(t, "4.00 m²", out.Status.AreaText)
	assert.Equal(t, "8.00 m", out.Status.PerimeterText)
	assert.True(t, out.Status.SurfaceReady)
	assert.True(t, out.Status.Anchored)
	require.NotNil(t, out.Render.Surface)
	assert.Equal(t, 1.0, out.Render.Surface.Opacity)
	assert.Len(t, p.LiveAnchors(), 1)

	s.End()
	assert.Empty(t, p.LiveAnchors())
}

func TestTraceRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	for _, rec := range DefaultScene().Polygon(square) {
		require.NoError(t, w.Write(rec))
	}

	recs, err := NewReader(&buf).ReadAll()
	require.NoError(t, err)

	p := New()
	out, err := Replay(context.Background(), start(t, p), p, recs, nil)
	require.NoError(t, err)
	assert.Equal(t, "4.00 m²", out.Status.AreaText)
}

func TestTapeReplay(t *testing.T) {
	p := New()
	out, err := Replay(context.Background(), start(t, p), p, DefaultScene().Measure([2]float64{1, 1}, [2]float64{4, 5}), nil)
	require.NoError(t, err)
	assert.Equal(t, "5.00 m", out.Status.TapeText)
	assert.Equal(t, session.Measure, out.Status.Mode)
	assert.Equal(t, contour.Empty, out.Status.Contour)
}

func TestAnchorDriftMovesContent(t *testing.T) {
	p := New()
	s := start(t, p)
	sc := DefaultScene().Script().Calibrate(0, 0).Tap(0, 0).Tap(1, 0)
	drift := geometry.NewPose(geometry.NewVector3(0.02, 0.005, 0), geometry.Identity())
	sc.DriftAnchor(drift)

	out, err := Replay(context.Background(), s, p, sc.Records(), nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.02, out.Frame.Origin.X, 1e-12)
	require.GreaterOrEqual(t, len(out.Render.Outline), 2)
	assert.InDelta(t, 1.02, out.Render.Outline[1].X, 1e-9)
	assert.InDelta(t, 0.005, out.Render.Outline[1].Y, 1e-9)
	// Local coordinates are untouched.
	assert.InDelta(t, 1.0, s.Contour().Points()[1].X, 1e-9)
}

func TestAnchorFailureDegrades(t *testing.T) {
	p := New()
	p.FailAnchors = true
	out, err := Replay(context.Background(), start(t, p), p, DefaultScene().Script().Calibrate(0, 0).Records(), nil)
	require.NoError(t, err)
	assert.True(t, out.Status.Calibrated)
	assert.False(t, out.Status.Anchored)
}

func TestRecalibrationReplay(t *testing.T) {
	p := New()
	sc := DefaultScene().Script().Calibrate(0, 0).Tap(0, 0).Tap(1, 0).Tap(1, 1).Calibrate(3, 3)
	out, err := Replay(context.Background(), start(t, p), p, sc.Records(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, out.Status.Points)
	assert.True(t, out.Status.Calibrated)
	// The second calibration happens while locked, so no new anchor.
	assert.False(t, out.Status.Anchored)
	assert.Empty(t, p.LiveAnchors())
}

func TestOcclusionReplay(t *testing.T) {
	p := New()
	s := start(t, p)
	s.SetMaterial(&material.Descriptor{ID: "tile", OcclusionAware: true})

	scene := DefaultScene()
	scene.Depth = &DepthRecord{Width: 2, Height: 2, Data: []uint16{1000, 0, 1000, 0}, RawToMeters: 0.001}

	var active int
	out, err := Replay(context.Background(), s, p, scene.Polygon(square), func(_ int, out session.FrameOutput) {
		if out.Status.OcclusionActive {
			active++
		}
	})
	require.NoError(t, err)
	assert.Positive(t, active)
	require.NotNil(t, out.Render.Surface)
	assert.Equal(t, occlusion.Occluded, out.Render.Surface.Variant)
	assert.True(t, out.Render.Surface.Uniforms.Active())
}

func TestNoDepthPlatform(t *testing.T) {
	p := New()
	p.Depth = false
	scene := DefaultScene()
	scene.Depth = &DepthRecord{Width: 2, Height: 2, Data: []uint16{1000, 0, 1000, 0}}

	out, err := Replay(context.Background(), start(t, p), p, scene.Polygon(square), nil)
	require.NoError(t, err)
	assert.False(t, out.Status.OcclusionActive)
}

func TestReplayCanceled(t *testing.T) {
	p := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Replay(ctx, start(t, p), p, DefaultScene().Polygon(square), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReaderSkipsBlankLines(t *testing.T) {
	in := "\n{\"t_ms\":5,\"actions\":[{\"kind\":\"calibrate\"}]}\n\n   \n{\"camera\":{\"position\":[0,1,0],\"orientation\":[0,0,0,1]}}\n"
	recs, err := NewReader(strings.NewReader(in)).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, int64(5), recs[0].TimeMS)
	assert.Equal(t, session.ActionCalibrate, recs[0].Actions[0].Kind)
	require.NotNil(t, recs[1].Camera)
	assert.Equal(t, 1.0, recs[1].Camera.Pose().Position.Y)
}

func TestReaderReportsLine(t *testing.T) {
	_, err := NewReader(strings.NewReader("{}\n{oops\n")).ReadAll()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trace line 2")
}

func TestPoseRecord(t *testing.T) {
	pose := DefaultScene().Camera(1, 2)
	back := PoseOf(pose).Pose()
	assert.InDelta(t, pose.Position.Z, back.Position.Z, 1e-12)
	assert.InDelta(t, pose.Orientation.Imag, back.Orientation.Imag, 1e-12)
	assert.Equal(t, geometry.Identity(), PoseRecord{}.Pose().Orientation)
}
