// Package contour captures a flat floor outline point by point, measures
// it, and turns the closed outline into a textured surface mesh.
//
// All coordinates are locked-frame-local. The contour is flat: every point
// takes the height of the first one.
package contour

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/miropolcevpro/paver-ar-web/internal/config"
	"github.com/miropolcevpro/paver-ar-web/internal/logging"
	"github.com/miropolcevpro/paver-ar-web/internal/material"
	"github.com/miropolcevpro/paver-ar-web/internal/measurement"
	"github.com/miropolcevpro/paver-ar-web/pkg/geometry"
)

var (
	// ErrTooFewPoints is returned when closing with fewer than three points.
	ErrTooFewPoints = errors.New("at least 3 points are needed")
	// ErrContourClosed is returned when adding points to a closed contour.
	ErrContourClosed = errors.New("contour is closed; undo or clear first")
	// ErrNotClosed is returned when surfacing an open contour.
	ErrNotClosed = errors.New("contour is not closed")
)

// State is the capture state of the contour.
type State int

const (
	Empty State = iota
	Open
	Closed
	Surfaced
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Open:
		return "open"
	case Closed:
		return "closed"
	case Surfaced:
		return "surfaced"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Summary is the user-facing measurement of the contour.
type Summary struct {
	State         State
	Points        int
	Area          float64
	Perimeter     float64
	AreaText      string // empty below three points
	PerimeterText string // empty below three points
}

// Engine is the contour state machine.
type Engine struct {
	snapRadius    float64
	floatEps      float64
	fade          time.Duration
	defaultRepeat float64

	state   State
	points  []geometry.Vector3
	surface *Surface
	pattern PatternSettings
	liftMM  float64

	// Layout and scale picked by the user; they win over the material's.
	userLayout *material.Layout
	userScale  *float64
	now     func() time.Time

	built    int
	released int
}

// New creates an empty engine.
func New(cfg *config.Tuning) *Engine {
	e := &Engine{
		snapRadius:    cfg.GetCloseSnapRadius(),
		floatEps:      cfg.GetSurfaceFloatEpsilon(),
		fade:          cfg.GetSurfaceFade(),
		defaultRepeat: cfg.GetPatternSize(),
		now:           time.Now,
	}
	e.pattern = PatternFor(nil, 0, e.defaultRepeat)
	return e
}

func logger() *slog.Logger {
	return logging.For("contour")
}

// SetClock replaces the time source used for surface fades.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// State returns the current state.
func (e *Engine) State() State {
	return e.state
}

// Len returns the number of points.
func (e *Engine) Len() int {
	return len(e.points)
}

// Points returns a copy of the contour points.
func (e *Engine) Points() []geometry.Vector3 {
	return append([]geometry.Vector3(nil), e.points...)
}

// Origin returns the first point.
func (e *Engine) Origin() (geometry.Vector3, bool) {
	if len(e.points) == 0 {
		return geometry.Vector3{}, false
	}
	return e.points[0], true
}

// CanClose reports whether p would close the contour: the contour is open
// with at least three points and p lies within the snap radius of the
// origin on the floor plane.
func (e *Engine) CanClose(p geometry.Vector3) bool {
	return e.state == Open && len(e.points) >= 3 && p.DistanceXZ(e.points[0]) < e.snapRadius
}

// AddPoint appends a point, or closes the contour when p is near the
// origin. The point's height is pinned to the origin's. It reports whether
// the contour closed.
func (e *Engine) AddPoint(p geometry.Vector3) (closed bool, err error) {
	switch e.state {
	case Closed, Surfaced:
		return false, ErrContourClosed
	case Empty:
		e.points = append(e.points[:0], p)
		e.state = Open
		return false, nil
	}

	if e.CanClose(p) {
		e.state = Closed
		logger().Debug("contour closed by snapping to origin", "points", len(e.points))
		return true, nil
	}
	e.points = append(e.points, p.WithY(e.points[0].Y))
	return false, nil
}

// Close closes an open contour explicitly.
func (e *Engine) Close() error {
	switch e.state {
	case Closed, Surfaced:
		return nil
	case Empty:
		return ErrTooFewPoints
	}
	if len(e.points) < 3 {
		return ErrTooFewPoints
	}
	e.state = Closed
	return nil
}

// Surface fills the closed contour with mat. Surfacing again rebuilds the
// mesh and releases the previous one.
func (e *Engine) Surface(mat *material.Descriptor) (*Surface, error) {
	if e.state != Closed && e.state != Surfaced {
		return nil, ErrNotClosed
	}

	pattern := e.patternFor(mat)
	mesh, err := buildMesh(e.points, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to build surface: %w", err)
	}
	e.built++

	lift := e.liftMM
	if lift == 0 && mat != nil {
		lift = mat.LiftHeightMM
	}

	e.releaseSurface()
	e.pattern = pattern
	e.liftMM = lift
	e.surface = &Surface{
		Mesh:      mesh,
		Base:      e.points[0],
		Material:  mat,
		Pattern:   pattern,
		liftMM:    lift,
		floatEps:  e.floatEps,
		createdAt: e.now(),
		fade:      e.fade,
	}
	e.state = Surfaced
	logger().Info("surface placed", "points", len(e.points), "triangles", mesh.Triangles(), "area", e.Area())
	return e.surface, nil
}

// CurrentSurface returns the placed surface, or nil.
func (e *Engine) CurrentSurface() *Surface {
	return e.surface
}

// SetMaterial re-textures the placed surface. It keeps the geometry and
// re-derives UVs for the material's repeat size and layout.
func (e *Engine) SetMaterial(mat *material.Descriptor) {
	e.pattern = e.patternFor(mat)
	if e.surface == nil {
		return
	}
	e.surface.Material = mat
	e.applyPattern()
}

// SetPattern replaces the pattern settings. Only texture coordinates change.
// The layout and scale are kept across material changes; the repeat size
// follows the next material.
func (e *Engine) SetPattern(p PatternSettings) {
	e.userLayout, e.userScale = &p.Layout, &p.Scale
	e.pattern = p
	e.applyPattern()
}

// SetLayout overrides the material's layout.
func (e *Engine) SetLayout(l material.Layout) {
	e.userLayout = &l
	e.pattern.Layout = l
	e.applyPattern()
}

// SetScale overrides the material's scale.
func (e *Engine) SetScale(scale float64) {
	e.userScale = &scale
	e.pattern.Scale = scale
	e.applyPattern()
}

// patternFor derives the pattern for mat, keeping rotation and any layout
// or scale the user picked.
func (e *Engine) patternFor(mat *material.Descriptor) PatternSettings {
	p := PatternFor(mat, e.pattern.Rotation, e.defaultRepeat)
	if e.userLayout != nil {
		p.Layout = *e.userLayout
	}
	if e.userScale != nil {
		p.Scale = *e.userScale
	}
	return p
}

// Pattern returns the current pattern settings.
func (e *Engine) Pattern() PatternSettings {
	return e.pattern
}

// RotatePattern turns the pattern by delta radians.
func (e *Engine) RotatePattern(delta float64) {
	e.pattern.Rotation = geometry.NormalizeAngle(e.pattern.Rotation + delta)
	e.applyPattern()
}

func (e *Engine) applyPattern() {
	if e.surface == nil {
		return
	}
	e.surface.Pattern = e.pattern
	e.surface.Mesh.UVs = RemapUVs(e.surface.Mesh.Shape, e.pattern)
}

// SetLiftHeight moves the surface up by mm millimeters. Geometry and
// texture coordinates are kept.
func (e *Engine) SetLiftHeight(mm float64) {
	e.liftMM = mm
	if e.surface != nil {
		e.surface.liftMM = mm
	}
}

// Undo steps back once: a closed or surfaced contour reopens with its
// points kept, an open one drops its last point. Undo on an empty contour
// does nothing.
func (e *Engine) Undo() bool {
	switch e.state {
	case Empty:
		return false
	case Closed, Surfaced:
		e.releaseSurface()
		e.state = Open
		return true
	}

	e.points = e.points[:len(e.points)-1]
	if len(e.points) == 0 {
		e.state = Empty
	}
	return true
}

// Clear drops all points and the surface and resets the pattern rotation.
func (e *Engine) Clear() {
	e.releaseSurface()
	e.points = e.points[:0]
	e.state = Empty
	e.pattern.Rotation = 0
}

func (e *Engine) releaseSurface() {
	if e.surface == nil {
		return
	}
	if !e.surface.Mesh.released {
		e.surface.Mesh.released = true
		e.released++
	}
	e.surface = nil
}

// MeshStats returns how many meshes were built and released.
func (e *Engine) MeshStats() (built, released int) {
	return e.built, e.released
}

// Area returns the enclosed floor area in square meters.
func (e *Engine) Area() float64 {
	return geometry.AreaXZ(e.points)
}

// Perimeter returns the outline length including the closing edge.
func (e *Engine) Perimeter() float64 {
	return geometry.Perimeter(e.points)
}

// Summary returns the current point count and measurements.
func (e *Engine) Summary() Summary {
	s := Summary{State: e.state, Points: len(e.points)}
	if len(e.points) >= 3 {
		s.Area = e.Area()
		s.Perimeter = e.Perimeter()
		s.AreaText = measurement.FormatArea(s.Area)
		s.PerimeterText = measurement.FormatDistance(s.Perimeter)
	}
	return s
}
