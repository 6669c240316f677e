// Package lockedframe owns the calibrated floor frame: a horizontal,
// drift-corrected coordinate system in which all floor content lives.
package lockedframe

import (
	"context"
	"errors"
	"log/slog"

	"github.com/miropolcevpro/paver-ar-web/internal/logging"
	"github.com/miropolcevpro/paver-ar-web/pkg/geometry"
)

// ErrAimAtFloor is returned when calibrating without a valid floor target.
var ErrAimAtFloor = errors.New("aim the reticle at the floor and wait for it to turn valid")

// Anchor is a platform-tracked pose that follows the real floor as the
// platform refines its map.
type Anchor interface {
	ID() string
	Delete()
}

// AnchorFactory creates an anchor at a hit-test result.
type AnchorFactory interface {
	CreateAnchor(ctx context.Context) (Anchor, error)
}

// Target is what calibration locks onto.
type Target struct {
	Valid    bool
	Position geometry.Vector3 // floor point under the reticle
	Camera   geometry.Pose    // heading source

	// Optional raw hit used to request an anchor.
	HitOrientation geometry.Rotation
	Anchors        AnchorFactory
}

// Manager holds the locked frame. The zero value is unlocked; use New.
type Manager struct {
	frame     geometry.Frame
	locked    bool
	anchor    Anchor
	yawOffset float64 // heading of the frame relative to the anchor's heading
	refreshes int
}

// New creates an unlocked manager.
func New() *Manager {
	return &Manager{frame: geometry.IdentityFrame()}
}

func logger() *slog.Logger {
	return logging.For("lockedframe")
}

// Calibrate locks the frame at the target: origin at the floor point,
// heading from the camera, no pitch or roll. An existing lock and anchor
// are replaced. Anchor creation is best effort; on failure the frame stays
// static.
func (m *Manager) Calibrate(ctx context.Context, t Target) error {
	if !t.Valid || !t.Position.IsFinite() {
		return ErrAimAtFloor
	}
	m.releaseAnchor()

	m.frame = geometry.NewFloorFrame(t.Position, t.Camera.Orientation)
	m.locked = true
	m.refreshes = 0

	if t.Anchors != nil {
		a, err := t.Anchors.CreateAnchor(ctx)
		if err != nil {
			logger().Warn("anchor not available, using static floor frame", "error", err)
		} else {
			m.anchor = a
			frameYaw, _ := geometry.Yaw(m.frame.Orientation)
			hitYaw, _ := geometry.Yaw(t.HitOrientation)
			m.yawOffset = geometry.NormalizeAngle(frameYaw - hitYaw)
		}
	}

	logger().Info("floor calibrated",
		"floor_y", m.frame.Origin.Y,
		"anchored", m.anchor != nil)
	return nil
}

// Refresh re-derives the frame from the anchor's current pose. It does
// nothing while unlocked, without an anchor, or when the pose is missing
// this frame. It reports whether the frame moved.
func (m *Manager) Refresh(anchorPose geometry.Pose, ok bool) bool {
	if !m.locked || m.anchor == nil || !ok || !anchorPose.Position.IsFinite() {
		return false
	}
	yaw, _ := geometry.Yaw(anchorPose.Orientation)
	m.frame = geometry.Frame{
		Origin:      anchorPose.Position,
		Orientation: geometry.YawRotation(geometry.NormalizeAngle(yaw + m.yawOffset)),
	}
	m.refreshes++
	return true
}

// Reset releases the anchor and returns to the unlocked identity frame.
func (m *Manager) Reset() {
	m.releaseAnchor()
	m.frame = geometry.IdentityFrame()
	m.locked = false
	m.refreshes = 0
}

func (m *Manager) releaseAnchor() {
	if m.anchor == nil {
		return
	}
	m.anchor.Delete()
	m.anchor = nil
	m.yawOffset = 0
}

// Locked reports whether a floor is calibrated.
func (m *Manager) Locked() bool {
	return m.locked
}

// Anchored reports whether the frame follows an anchor.
func (m *Manager) Anchored() bool {
	return m.anchor != nil
}

// Anchor returns the bound anchor, or nil.
func (m *Manager) Anchor() Anchor {
	return m.anchor
}

// Refreshes returns how many anchor refreshes happened since calibration.
func (m *Manager) Refreshes() int {
	return m.refreshes
}

// Frame returns the current frame.
func (m *Manager) Frame() geometry.Frame {
	return m.frame
}

// FloorY returns the world height of the locked floor.
func (m *Manager) FloorY() float64 {
	return m.frame.Origin.Y
}

// ToLocal converts a world point into the locked frame.
func (m *Manager) ToLocal(world geometry.Vector3) geometry.Vector3 {
	return m.frame.ToLocal(world)
}

// ToWorld converts a locked-frame point into world space.
func (m *Manager) ToWorld(local geometry.Vector3) geometry.Vector3 {
	return m.frame.ToWorld(local)
}
