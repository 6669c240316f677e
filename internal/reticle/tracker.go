// Package reticle turns per-frame hit-test results into a stable floor
// reticle pose.
package reticle

import (
	"log/slog"

	"github.com/miropolcevpro/paver-ar-web/internal/config"
	"github.com/miropolcevpro/paver-ar-web/internal/lockedframe"
	"github.com/miropolcevpro/paver-ar-web/internal/logging"
	"github.com/miropolcevpro/paver-ar-web/pkg/geometry"
)

// RawHit is one hit-test result from the platform. The pose's local Y axis
// is the plane normal.
type RawHit struct {
	Pose    geometry.Pose
	Anchors lockedframe.AnchorFactory // nil when anchors are unsupported
}

// HitCandidate is a raw hit annotated for selection.
type HitCandidate struct {
	Hit            RawHit
	NormalDotUp    float64
	FloorPlausible bool // far enough below the camera to be the floor
}

// Floor is the locked floor the tracker intersects after calibration.
type Floor interface {
	Locked() bool
	FloorY() float64
	Frame() geometry.Frame
}

// FrameInput is everything the tracker needs for one frame.
type FrameInput struct {
	Camera geometry.Pose
	Hits   []RawHit
	Floor  Floor // nil is treated as unlocked

	// CloseOrigin is the frame-local origin of an open contour that can be
	// closed this frame, or nil.
	CloseOrigin *geometry.Vector3
}

// Pose is the smoothed reticle. Position and orientation are world space.
type Pose struct {
	geometry.Pose
	Valid    bool
	Closable bool
	OnFloor  bool // from the locked floor plane rather than a hit
}

// Tracker selects and smooths the reticle pose. It owns the last valid
// pose and the best raw hit used for calibration.
type Tracker struct {
	minDot       float64
	minDotStrict float64
	minBelow     float64
	heightBand   float64
	smoothing    float64
	rayMinDirY   float64
	rayMaxDist   float64
	snapRadius   float64

	pose Pose
	best *HitCandidate
}

// New creates a tracker with thresholds from cfg.
func New(cfg *config.Tuning) *Tracker {
	return &Tracker{
		minDot:       cfg.GetHitNormalDot(),
		minDotStrict: cfg.GetHitNormalDotStrict(),
		minBelow:     cfg.GetFloorMinBelowCamera(),
		heightBand:   cfg.GetHeightBand(),
		smoothing:    cfg.GetSmoothing(),
		rayMinDirY:   cfg.GetLockRayMinDirY(),
		rayMaxDist:   cfg.GetLockRayMaxDistance(),
		snapRadius:   cfg.GetCloseSnapRadius(),
	}
}

func logger() *slog.Logger {
	return logging.For("reticle")
}

// Candidates annotates raw hits relative to the camera.
func (t *Tracker) Candidates(camera geometry.Pose, hits []RawHit) []HitCandidate {
	out := make([]HitCandidate, 0, len(hits))
	for _, h := range hits {
		if !h.Pose.Position.IsFinite() {
			continue
		}
		out = append(out, HitCandidate{
			Hit:            h,
			NormalDotUp:    h.Pose.NormalDotUp(),
			FloorPlausible: h.Pose.Position.Y <= camera.Position.Y-t.minBelow,
		})
	}
	return out
}

// SelectFloor picks the calibration candidate: horizontal enough under the
// strict threshold, plausibly below the camera, and the lowest one. Within
// the height band the better aligned normal wins.
func (t *Tracker) SelectFloor(cands []HitCandidate) (HitCandidate, bool) {
	var best HitCandidate
	found := false
	for _, c := range cands {
		if c.NormalDotUp < t.minDotStrict || !c.FloorPlausible {
			continue
		}
		if !found {
			best, found = c, true
			continue
		}
		y, bestY := c.Hit.Pose.Position.Y, best.Hit.Pose.Position.Y
		if y < bestY-t.heightBand || (y <= bestY+t.heightBand && c.NormalDotUp > best.NormalDotUp) {
			best = c
		}
	}
	return best, found
}

// IntersectFloor casts the camera's forward ray onto the locked floor
// plane. Rays that are too flat or hit too far away are rejected.
func (t *Tracker) IntersectFloor(camera geometry.Pose, floorY float64) (geometry.Vector3, bool) {
	dir := camera.Forward()
	if dir.Y > t.rayMinDirY {
		return geometry.Vector3{}, false
	}
	dist := (floorY - camera.Position.Y) / dir.Y
	if dist <= 0 || dist >= t.rayMaxDist {
		return geometry.Vector3{}, false
	}
	p := camera.Position.Add(dir.Mul(dist))
	p.Y = floorY
	return p, true
}

// Update computes this frame's reticle pose.
func (t *Tracker) Update(in FrameInput) Pose {
	target, ok := t.target(in)
	if !ok {
		if t.pose.Valid {
			logger().Debug("reticle lost", "hits", len(in.Hits))
		}
		t.Invalidate()
		return t.pose
	}

	if t.pose.Valid {
		t.pose.Pose = t.pose.Pose.Lerp(target.Pose, t.smoothing)
	} else {
		t.pose.Pose = target.Pose
	}
	t.pose.Valid = true
	t.pose.OnFloor = target.OnFloor
	t.pose.Closable = t.closable(in)
	return t.pose
}

func (t *Tracker) target(in FrameInput) (Pose, bool) {
	if in.Floor != nil && in.Floor.Locked() {
		t.best = nil
		p, ok := t.IntersectFloor(in.Camera, in.Floor.FloorY())
		if !ok {
			return Pose{}, false
		}
		return Pose{Pose: geometry.Pose{Position: p, Orientation: in.Floor.Frame().Orientation}, OnFloor: true}, true
	}

	cands := t.Candidates(in.Camera, in.Hits)
	best, ok := t.SelectFloor(cands)
	if !ok {
		t.best = nil
		return Pose{}, false
	}
	t.best = &best
	return Pose{Pose: geometry.Pose{Position: best.Hit.Pose.Position, Orientation: best.Hit.Pose.Orientation}}, true
}

func (t *Tracker) closable(in FrameInput) bool {
	if in.CloseOrigin == nil || in.Floor == nil || !in.Floor.Locked() {
		return false
	}
	local := in.Floor.Frame().ToLocal(t.pose.Position)
	return local.DistanceXZ(*in.CloseOrigin) < t.snapRadius
}

// Pose returns the last computed reticle pose.
func (t *Tracker) Pose() Pose {
	return t.pose
}

// BestHit returns the raw hit behind the current reticle, or nil. It is
// only set before calibration.
func (t *Tracker) BestHit() *HitCandidate {
	return t.best
}

// Invalidate drops the reticle and the best hit. The next valid frame
// snaps instead of blending.
func (t *Tracker) Invalidate() {
	t.pose = Pose{}
	t.best = nil
}
