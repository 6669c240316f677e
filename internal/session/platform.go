package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/miropolcevpro/paver-ar-web/internal/lockedframe"
	"github.com/miropolcevpro/paver-ar-web/internal/occlusion"
	"github.com/miropolcevpro/paver-ar-web/internal/reticle"
	"github.com/miropolcevpro/paver-ar-web/pkg/geometry"
)

// Platform describes the capabilities of the host AR runtime.
type Platform interface {
	SupportsHitTest() bool
	SupportsAnchors() bool
	SupportsDepth() bool
}

// Anchor is a platform-tracked anchor.
type Anchor = lockedframe.Anchor

// Mode selects what a tap does.
type Mode int

const (
	// Draw adds contour points.
	Draw Mode = iota
	// Measure sets tape measure points.
	Measure
)

func (m Mode) String() string {
	switch m {
	case Draw:
		return "draw"
	case Measure:
		return "measure"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode converts "draw" or "measure".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "draw":
		return Draw, nil
	case "measure":
		return Measure, nil
	default:
		return Draw, fmt.Errorf("unknown mode %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// ActionKind names a user action.
type ActionKind string

const (
	ActionTap           ActionKind = "tap"
	ActionCalibrate     ActionKind = "calibrate"
	ActionClose         ActionKind = "close"
	ActionSurface       ActionKind = "surface"
	ActionUndo          ActionKind = "undo"
	ActionClear         ActionKind = "clear"
	ActionClearMeasure  ActionKind = "clear_measure"
	ActionMode          ActionKind = "mode"
	ActionLift          ActionKind = "lift"           // Value: millimeters
	ActionRotatePattern ActionKind = "rotate_pattern" // Value: radians
	ActionLayout        ActionKind = "layout"         // Layout: name
	ActionScale         ActionKind = "scale"          // Value: texture scale
)

// Action is one user input applied during the input stage of a frame.
type Action struct {
	Kind   ActionKind `json:"kind"`
	Mode   Mode       `json:"mode,omitempty"`
	Value  float64    `json:"value,omitempty"`
	Layout string     `json:"layout,omitempty"`
}

// FrameInput is the platform data of one rendered frame. Every field is
// optional: a nil camera means tracking is lost this frame.
type FrameInput struct {
	Time        time.Time
	Camera      *geometry.Pose
	Hits        []reticle.RawHit
	Depth       *occlusion.DepthFrame
	AnchorPoses map[string]geometry.Pose
	View        occlusion.View
	Actions     []Action
}
