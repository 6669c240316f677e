package session

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/miropolcevpro/paver-ar-web/internal/contour"
	"github.com/miropolcevpro/paver-ar-web/internal/occlusion"
	"github.com/miropolcevpro/paver-ar-web/internal/reticle"
	"github.com/miropolcevpro/paver-ar-web/pkg/geometry"
)

// Status is the user-facing state after a frame.
type Status struct {
	SessionID       string        `json:"session_id,omitempty"`
	Running         bool          `json:"running"`
	Calibrated      bool          `json:"calibrated"`
	Anchored        bool          `json:"anchored"`
	ReticleValid    bool          `json:"reticle_valid"`
	Closable        bool          `json:"closable"`
	Mode            Mode          `json:"mode"`
	Contour         contour.State `json:"-"`
	ContourState    string        `json:"contour_state"`
	Points          int           `json:"points"`
	AreaText        string        `json:"area,omitempty"`
	PerimeterText   string        `json:"perimeter,omitempty"`
	TapeText        string        `json:"tape,omitempty"`
	// CanSurface is set while a closed outline waits to be filled.
	CanSurface      bool          `json:"can_surface"`
	// SurfaceReady is set once a fill is placed. Export keys off it.
	SurfaceReady    bool          `json:"surface_ready"`
	OcclusionActive bool          `json:"occlusion_active"`
	Message         string        `json:"message"`
}

// Renderable is a mesh ready for drawing in world space.
type Renderable struct {
	MaterialID string
	Positions  []geometry.Vector3
	UVs        []r2.Vec
	Indices    []int
	Opacity    float64
	Variant    occlusion.Variant
	Uniforms   occlusion.Uniforms
}

// RenderList is everything drawn in one frame.
type RenderList struct {
	Reticle       *reticle.Pose
	Outline       []geometry.Vector3 // world space, includes the live preview point
	OutlineClosed bool
	Surface       *Renderable
	Tape          []geometry.Vector3 // world space, 0 to 2 points
	LineUniforms  occlusion.Uniforms
}

// FrameOutput is the result of Step.
type FrameOutput struct {
	Status Status
	Frame  geometry.Frame
	Render RenderList
	Errors []error
}

// Status returns the current user-facing state.
func (s *Session) Status() Status {
	sum := s.contour.Summary()
	r := s.tracker.Pose()
	st := Status{
		SessionID:       s.id,
		Running:         s.running,
		Calibrated:      s.floor.Locked(),
		Anchored:        s.floor.Anchored(),
		ReticleValid:    r.Valid,
		Closable:        r.Closable,
		Mode:            s.mode,
		Contour:         sum.State,
		ContourState:    sum.State.String(),
		Points:          sum.Points,
		AreaText:        sum.AreaText,
		PerimeterText:   sum.PerimeterText,
		TapeText:        s.tape.Text(),
		CanSurface:      sum.State == contour.Closed,
		SurfaceReady:    sum.State == contour.Surfaced,
		OcclusionActive: s.occl.HasDepth(),
	}
	st.Message = s.statusMessage(st)
	return st
}

func (s *Session) statusMessage(st Status) string {
	switch {
	case s.failure != nil || s.message != "":
		return s.message
	case !st.Running:
		return "Start AR to begin."
	case !st.Calibrated && !st.ReticleValid:
		return "Move the phone slowly and aim the reticle at the floor."
	case !st.Calibrated:
		return "Floor found. Calibrate to lock it."
	case st.Mode == Measure && st.TapeText != "":
		return "Distance: " + st.TapeText
	case st.Mode == Measure:
		return "Tap two points on the floor to measure."
	}

	switch st.Contour {
	case contour.Empty:
		return "Tap on the floor to place contour points."
	case contour.Open:
		if st.Points < 3 {
			return "Place at least 3 points to close the contour."
		}
		return "Tap near the first point or close the contour."
	case contour.Closed:
		return "Contour closed. Surface it to preview the material."
	default:
		return "Surface placed. Area " + st.AreaText + ", perimeter " + st.PerimeterText + "."
	}
}

// TapePoints returns the tape points in floor-local coordinates.
func (s *Session) TapePoints() []geometry.Vector3 {
	if seg, ok := s.tape.Segment(); ok {
		return []geometry.Vector3{seg.Start, seg.End}
	}
	if a, ok := s.tape.A(); ok {
		return []geometry.Vector3{a}
	}
	return nil
}

func (s *Session) render(view occlusion.View) FrameOutput {
	if view.Near == 0 && view.Far == 0 {
		view.Near, view.Far = s.cfg.GetCameraNear(), s.cfg.GetCameraFar()
	}
	frame := s.floor.Frame()
	out := FrameOutput{Status: s.Status(), Frame: frame}

	if r := s.tracker.Pose(); r.Valid {
		out.Render.Reticle = &r
	}
	out.Render.LineUniforms, _ = s.occl.Uniforms(LineMaterialID, view)

	pts := s.contour.Points()
	state := s.contour.State()
	if state == contour.Open && s.mode == Draw {
		if r := s.tracker.Pose(); r.Valid && s.floor.Locked() {
			live := s.floor.ToLocal(r.Position)
			pts = append(pts, live.WithY(pts[0].Y))
		}
	}
	for _, p := range pts {
		out.Render.Outline = append(out.Render.Outline, frame.ToWorld(p))
	}
	out.Render.OutlineClosed = state == contour.Closed || state == contour.Surfaced

	for _, p := range s.TapePoints() {
		out.Render.Tape = append(out.Render.Tape, frame.ToWorld(p))
	}

	if surf := s.contour.CurrentSurface(); surf != nil {
		rd := &Renderable{
			Positions: surf.WorldPositions(frame),
			UVs:       surf.Mesh.UVs,
			Indices:   surf.Mesh.Indices,
			Opacity:   surf.Opacity(s.now),
		}
		if surf.Material != nil {
			rd.MaterialID = surf.Material.ID
			rd.Variant = s.occl.VariantFor(rd.MaterialID)
			rd.Uniforms, _ = s.occl.Uniforms(rd.MaterialID, view)
		}
		out.Render.Surface = rd
	}
	return out
}
