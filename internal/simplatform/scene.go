package simplatform

import (
	"math"

	"github.com/miropolcevpro/paver-ar-web/internal/session"
	"github.com/miropolcevpro/paver-ar-web/pkg/geometry"
)

// Scene is a flat floor watched by a camera that faces -Z and tilts down
// so its center ray meets the floor Reach meters ahead.
type Scene struct {
	FloorY     float64
	Height     float64 // camera height above the floor
	Reach      float64
	Anchorable bool
	StepMS     int64
	View       *ViewRecord
	Depth      *DepthRecord // attached to every tracked frame when set
}

// DefaultScene is a handheld phone 1.5 m above the floor.
func DefaultScene() Scene {
	return Scene{
		Height:     1.5,
		Reach:      1.5,
		Anchorable: true,
		StepMS:     33,
		View:       &ViewRecord{Width: 640, Height: 480},
	}
}

// Camera returns the camera pose aimed at floor point (x, z).
func (s Scene) Camera(x, z float64) geometry.Pose {
	pitch := -math.Atan2(s.Height, s.Reach)
	return geometry.NewPose(
		geometry.NewVector3(x, s.FloorY+s.Height, z+s.Reach),
		geometry.AxisAngle(geometry.Vector3{X: 1}, pitch),
	)
}

// Hit returns an upward-facing floor hit at (x, z).
func (s Scene) Hit(x, z float64) HitRecord {
	pose := geometry.NewPose(geometry.NewVector3(x, s.FloorY, z), geometry.Identity())
	return HitRecord{PoseRecord: *PoseOf(pose), Anchorable: s.Anchorable}
}

// Script builds a trace frame by frame.
type Script struct {
	scene  Scene
	recs   []Record
	t      int64
	camera *PoseRecord
	hits   []HitRecord
}

// Script starts an empty trace in s.
func (s Scene) Script() *Script {
	return &Script{scene: s}
}

func (sc *Script) emit(rec Record) *Script {
	rec.TimeMS = sc.t
	sc.t += sc.scene.StepMS
	if rec.View == nil {
		rec.View = sc.scene.View
	}
	if rec.Camera != nil && rec.Depth == nil {
		rec.Depth = sc.scene.Depth
	}
	sc.recs = append(sc.recs, rec)
	return sc
}

// Lost emits a frame without tracking.
func (sc *Script) Lost() *Script {
	sc.camera, sc.hits = nil, nil
	return sc.emit(Record{})
}

// Aim points the camera at (x, z) and runs actions in that frame. A lost
// frame goes first so the reticle lands on the target without smoothing.
func (sc *Script) Aim(x, z float64, actions ...session.Action) *Script {
	sc.Lost()
	sc.camera = PoseOf(sc.scene.Camera(x, z))
	sc.hits = []HitRecord{sc.scene.Hit(x, z)}
	return sc.emit(Record{Camera: sc.camera, Hits: sc.hits, Actions: actions})
}

// Do runs actions with the camera held still.
func (sc *Script) Do(actions ...session.Action) *Script {
	return sc.emit(Record{Camera: sc.camera, Hits: sc.hits, Actions: actions})
}

// Hold emits n still frames.
func (sc *Script) Hold(n int) *Script {
	for range n {
		sc.Do()
	}
	return sc
}

// Calibrate locks the floor at (x, z).
func (sc *Script) Calibrate(x, z float64) *Script {
	return sc.Aim(x, z, session.Action{Kind: session.ActionCalibrate})
}

// Tap taps at (x, z).
func (sc *Script) Tap(x, z float64) *Script {
	return sc.Aim(x, z, session.Action{Kind: session.ActionTap})
}

// DriftAnchor moves every live anchor to pose in the next still frame.
func (sc *Script) DriftAnchor(pose geometry.Pose) *Script {
	return sc.emit(Record{Camera: sc.camera, Hits: sc.hits, Anchor: PoseOf(pose)})
}

// Records returns the trace built so far.
func (sc *Script) Records() []Record {
	return sc.recs
}

// Polygon scripts a full placement: calibrate at the first corner, tap
// every corner, close and surface, then hold long enough for the fade.
func (s Scene) Polygon(corners [][2]float64) []Record {
	sc := s.Script()
	if len(corners) == 0 {
		return nil
	}
	sc.Calibrate(corners[0][0], corners[0][1])
	for _, c := range corners {
		sc.Tap(c[0], c[1])
	}
	sc.Do(session.Action{Kind: session.ActionClose})
	sc.Do(session.Action{Kind: session.ActionSurface})
	return sc.Hold(15).Records()
}

// Measure scripts a tape measurement between a and b.
func (s Scene) Measure(a, b [2]float64) []Record {
	sc := s.Script()
	sc.Calibrate(a[0], a[1])
	sc.Do(session.Action{Kind: session.ActionMode, Mode: session.Measure})
	sc.Tap(a[0], a[1])
	sc.Tap(b[0], b[1])
	return sc.Records()
}
