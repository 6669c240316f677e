// Package session runs the per-frame floor placement pipeline:
// depth ingestion, frame refresh, reticle tracking, user input and render
// list assembly, in that order.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/miropolcevpro/paver-ar-web/internal/config"
	"github.com/miropolcevpro/paver-ar-web/internal/contour"
	"github.com/miropolcevpro/paver-ar-web/internal/lockedframe"
	"github.com/miropolcevpro/paver-ar-web/internal/logging"
	"github.com/miropolcevpro/paver-ar-web/internal/material"
	"github.com/miropolcevpro/paver-ar-web/internal/measurement"
	"github.com/miropolcevpro/paver-ar-web/internal/occlusion"
	"github.com/miropolcevpro/paver-ar-web/internal/reticle"
	"github.com/miropolcevpro/paver-ar-web/pkg/geometry"
)

// LineMaterialID is the occlusion registry id of contour and tape lines.
const LineMaterialID = "overlay-lines"

// Session owns every per-session component. It is driven from a single
// frame goroutine; only the material slot may be written concurrently.
type Session struct {
	cfg      *config.Tuning
	platform Platform
	slot     *material.Slot

	id      string
	running bool
	mode    Mode
	message string
	failure error

	tracker *reticle.Tracker
	floor   *lockedframe.Manager
	contour *contour.Engine
	tape    measurement.Tape
	occl    *occlusion.Compositor

	material   *material.Descriptor
	matVersion uint64
	camera     *geometry.Pose
	now        time.Time
	frames     int
}

// New creates a stopped session. slot may be nil when materials are set
// with SetMaterial only.
func New(p Platform, cfg *config.Tuning, slot *material.Slot) *Session {
	if cfg == nil {
		cfg = config.Empty()
	}
	if slot == nil {
		slot = &material.Slot{}
	}
	s := &Session{
		cfg:      cfg,
		platform: p,
		slot:     slot,
		tracker:  reticle.New(cfg),
		floor:    lockedframe.New(),
		contour:  contour.New(cfg),
		occl:     occlusion.New(cfg),
		now:      time.Now(),
	}
	s.contour.SetClock(func() time.Time { return s.now })
	return s
}

func logger() *slog.Logger {
	return logging.For("session")
}

// ID returns the identifier of the current run, empty before Start.
func (s *Session) ID() string {
	return s.id
}

// Running reports whether the session is started.
func (s *Session) Running() bool {
	return s.running
}

// Start begins a session. It fails with ErrUnsupported when the platform
// cannot hit-test.
func (s *Session) Start(ctx context.Context) error {
	if s.platform == nil || !s.platform.SupportsHitTest() {
		s.message = ErrUnsupported.Error()
		return ErrUnsupported
	}
	if s.running {
		return nil
	}
	s.id = uuid.NewString()
	s.running = true
	s.failure = nil
	s.message = ""
	s.occl.SetEnabled(s.platform.SupportsDepth())
	s.occl.RegisterDefault(LineMaterialID)
	if s.material != nil {
		s.occl.RegisterMaterial(s.material)
	}
	logger().Info("session started",
		"session", s.id,
		"anchors", s.platform.SupportsAnchors(),
		"depth", s.platform.SupportsDepth())
	return nil
}

// End stops the session synchronously: the reticle is invalidated, the
// anchor and depth texture released, the floor unlocked and all contour
// and tape state cleared.
func (s *Session) End() {
	s.tracker.Invalidate()
	s.floor.Reset()
	s.occl.Release()
	s.contour.Clear()
	s.tape.Clear()
	s.camera = nil
	if s.running {
		logger().Info("session ended", "session", s.id, "frames", s.frames)
	}
	s.running = false
	s.frames = 0
}

// Fail tears the session down after an unrecoverable platform error.
func (s *Session) Fail(err error) {
	logger().Error("session failed", "session", s.id, "error", err)
	s.End()
	s.failure = err
	s.message = fmt.Sprintf("AR session failed: %v", err)
}

// Err returns the error passed to Fail, if any.
func (s *Session) Err() error {
	return s.failure
}

// SetMode switches what taps do.
func (s *Session) SetMode(m Mode) {
	s.mode = m
}

// Mode returns the tap mode.
func (s *Session) Mode() Mode {
	return s.mode
}

// SetMaterial stores d in the material slot. It is applied at the start
// of the next frame.
func (s *Session) SetMaterial(d *material.Descriptor) {
	s.slot.Store(d)
}

// Material returns the material applied to the current frame.
func (s *Session) Material() *material.Descriptor {
	return s.material
}

// Floor returns the locked frame manager.
func (s *Session) Floor() *lockedframe.Manager {
	return s.floor
}

// Contour returns the contour engine.
func (s *Session) Contour() *contour.Engine {
	return s.contour
}

// Compositor returns the occlusion compositor.
func (s *Session) Compositor() *occlusion.Compositor {
	return s.occl
}

// Reticle returns the current reticle pose.
func (s *Session) Reticle() reticle.Pose {
	return s.tracker.Pose()
}

// Step runs one frame. User precondition errors from actions do not fail
// the frame; they are reported in FrameOutput.Errors and in the status
// message.
func (s *Session) Step(ctx context.Context, in FrameInput) (FrameOutput, error) {
	if !s.running {
		return FrameOutput{Status: s.Status()}, ErrNotRunning
	}
	s.frames++
	if !in.Time.IsZero() {
		s.now = in.Time
	} else {
		s.now = time.Now()
	}

	s.pickUpMaterial()
	s.ingestDepth(in.Depth)
	s.refreshFrame(in.AnchorPoses)
	s.track(in)

	var errs []error
	for _, a := range in.Actions {
		if err := s.Apply(ctx, a); err != nil {
			if !IsUserError(err) {
				return FrameOutput{}, fmt.Errorf("failed to apply %s: %w", a.Kind, err)
			}
			errs = append(errs, err)
		}
	}

	out := s.render(in.View)
	out.Errors = errs
	if len(errs) > 0 {
		out.Status.Message = errs[len(errs)-1].Error()
	}
	return out, nil
}

// pickUpMaterial applies a material stored since the last frame.
func (s *Session) pickUpMaterial() {
	d, v := s.slot.Load()
	if v == s.matVersion {
		return
	}
	s.matVersion = v
	if s.material == d {
		return
	}
	if s.material != nil {
		s.occl.Unregister(s.material.ID)
	}
	s.material = d
	if d != nil {
		s.occl.RegisterMaterial(d)
		logger().Debug("material applied", "material", d.ID)
	}
	s.contour.SetMaterial(d)
}

func (s *Session) ingestDepth(f *occlusion.DepthFrame) {
	if !s.occl.WantsDepth() {
		_ = s.occl.Ingest(nil)
		return
	}
	if err := s.occl.Ingest(f); err != nil {
		logger().Warn("depth frame dropped", "error", err)
	}
}

func (s *Session) refreshFrame(poses map[string]geometry.Pose) {
	a := s.floor.Anchor()
	if a == nil {
		return
	}
	pose, ok := poses[a.ID()]
	s.floor.Refresh(pose, ok)
}

func (s *Session) track(in FrameInput) {
	if in.Camera == nil {
		s.camera = nil
		s.tracker.Invalidate()
		return
	}
	cam := *in.Camera
	s.camera = &cam

	input := reticle.FrameInput{Camera: cam, Hits: in.Hits, Floor: s.floor}
	if s.mode == Draw && s.contour.State() == contour.Open && s.contour.Len() >= 3 {
		origin, _ := s.contour.Origin()
		input.CloseOrigin = &origin
	}
	s.tracker.Update(input)
}

// Apply performs one user action immediately.
func (s *Session) Apply(ctx context.Context, a Action) error {
	switch a.Kind {
	case ActionTap:
		return s.Tap()
	case ActionCalibrate:
		return s.Calibrate(ctx)
	case ActionClose:
		return s.contour.Close()
	case ActionSurface:
		_, err := s.contour.Surface(s.material)
		return err
	case ActionUndo:
		s.contour.Undo()
	case ActionClear:
		s.contour.Clear()
		s.tape.Clear()
	case ActionClearMeasure:
		s.tape.Clear()
	case ActionMode:
		s.SetMode(a.Mode)
	case ActionLift:
		s.contour.SetLiftHeight(a.Value)
	case ActionRotatePattern:
		s.contour.RotatePattern(a.Value)
	case ActionLayout:
		l, err := material.ParseLayout(a.Layout)
		if err != nil {
			return err
		}
		s.contour.SetLayout(l)
	case ActionScale:
		s.contour.SetScale(a.Value)
	default:
		return fmt.Errorf("unknown action %q", a.Kind)
	}
	return nil
}

// Tap places a point at the reticle: a contour point in draw mode, a tape
// point in measure mode.
func (s *Session) Tap() error {
	if !s.floor.Locked() {
		return ErrFloorNotLocked
	}
	r := s.tracker.Pose()
	if !r.Valid {
		return ErrReticleInvalid
	}
	local := s.floor.ToLocal(r.Position)

	if s.mode == Measure {
		s.tape.Tap(local)
		return nil
	}
	_, err := s.contour.AddPoint(local)
	return err
}

// Calibrate locks the floor at the reticle. Contour and tape state is
// cleared first; the chosen material is kept.
func (s *Session) Calibrate(ctx context.Context) error {
	r := s.tracker.Pose()
	if !r.Valid || s.camera == nil {
		return ErrAimAtFloor
	}

	s.contour.Clear()
	s.tape.Clear()

	target := lockedframe.Target{
		Valid:    true,
		Position: r.Position,
		Camera:   *s.camera,
	}
	// A fresh raw hit only exists before calibration; recalibrating a
	// locked floor yields a static frame.
	if best := s.tracker.BestHit(); best != nil && s.platform.SupportsAnchors() {
		target.HitOrientation = best.Hit.Pose.Orientation
		target.Anchors = best.Hit.Anchors
	}
	return s.floor.Calibrate(ctx, target)
}
