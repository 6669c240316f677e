// Package measurement holds tape measurements and the user-facing number
// formatting shared by contour summaries.
package measurement

import (
	"fmt"

	"github.com/miropolcevpro/paver-ar-web/pkg/geometry"
)

// Segment represents a single measurement line between two points
type Segment struct {
	Start geometry.Vector3
	End   geometry.Vector3
}

// Length returns the straight-line distance between the end points.
func (s Segment) Length() float64 {
	return s.Start.Distance(s.End)
}

// Tape is a two-point distance measurement in locked-frame-local space.
// The first tap sets A; every later tap replaces B.
type Tape struct {
	a, b *geometry.Vector3
}

// Tap records a point and reports whether a distance is now available.
func (t *Tape) Tap(p geometry.Vector3) bool {
	if t.a == nil {
		t.a = &p
		return false
	}
	t.b = &p
	return true
}

// Clear resets both points.
func (t *Tape) Clear() {
	t.a, t.b = nil, nil
}

// Points returns how many points are set.
func (t *Tape) Points() int {
	switch {
	case t.a == nil:
		return 0
	case t.b == nil:
		return 1
	default:
		return 2
	}
}

// A returns the first point.
func (t *Tape) A() (geometry.Vector3, bool) {
	if t.a == nil {
		return geometry.Vector3{}, false
	}
	return *t.a, true
}

// Segment returns the measured segment once both points are set.
func (t *Tape) Segment() (Segment, bool) {
	if t.a == nil || t.b == nil {
		return Segment{}, false
	}
	return Segment{Start: *t.a, End: *t.b}, true
}

// Distance returns the 3D distance between A and B.
func (t *Tape) Distance() (float64, bool) {
	s, ok := t.Segment()
	if !ok {
		return 0, false
	}
	return s.Length(), true
}

// Text returns the distance formatted for display, or "" before B is set.
func (t *Tape) Text() string {
	d, ok := t.Distance()
	if !ok {
		return ""
	}
	return FormatDistance(d)
}

// FormatDistance formats meters with two decimals, e.g. "5.00 m".
func FormatDistance(m float64) string {
	return fmt.Sprintf("%.2f m", m)
}

// FormatArea formats square meters with two decimals, e.g. "4.00 m²".
func FormatArea(m2 float64) string {
	return fmt.Sprintf("%.2f m²", m2)
}
