// Package material describes floor surface materials and loads them from
// catalog files.
package material

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownLayout is returned for layout names that are not recognized.
var ErrUnknownLayout = errors.New("unknown layout")

// Layout is the arrangement of a repeating pattern on the surface.
type Layout int

const (
	Straight Layout = iota
	Diagonal
	Cross
	Running
)

var layoutNames = [...]string{"straight", "diagonal", "cross", "running"}

func (l Layout) String() string {
	if l < 0 || int(l) >= len(layoutNames) {
		return fmt.Sprintf("Layout(%d)", int(l))
	}
	return layoutNames[l]
}

// ParseLayout converts a layout name. An empty name means Straight.
func ParseLayout(s string) (Layout, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Straight, nil
	}
	for i, name := range layoutNames {
		if name == s {
			return Layout(i), nil
		}
	}
	return Straight, fmt.Errorf("%w %q", ErrUnknownLayout, s)
}

// MarshalText implements encoding.TextMarshaler.
func (l Layout) MarshalText() ([]byte, error) {
	if l < 0 || int(l) >= len(layoutNames) {
		return nil, fmt.Errorf("invalid layout %d", int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Layout) UnmarshalText(b []byte) error {
	v, err := ParseLayout(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// Maps holds texture handles. Handles are opaque to the core.
type Maps struct {
	Base      string `json:"base,omitempty"`
	Normal    string `json:"normal,omitempty"`
	Roughness string `json:"roughness,omitempty"`
}

// Descriptor is a fully resolved material ready to be applied to a surface.
type Descriptor struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Maps Maps   `json:"maps"`
	Tint string `json:"tint,omitempty"` // "#rrggbb", multiplied with the base map

	// RepeatSize is the physical size in meters of one pattern repeat.
	RepeatSize   [2]float64 `json:"repeat_size"`
	Layout       Layout     `json:"layout"`
	Scale        float64    `json:"scale,omitempty"`
	LiftHeightMM float64    `json:"lift_height_mm,omitempty"`

	// Occlusion settings. A nil value selects the compositor default.
	OcclusionAware   bool     `json:"occlusion_aware"`
	OcclusionEpsilon *float64 `json:"occlusion_epsilon,omitempty"`
	OcclusionBias    *float64 `json:"occlusion_bias,omitempty"`
}

// Repeat returns the repeat size in meters, falling back to def for a
// missing width and to the width for a missing height.
func (d *Descriptor) Repeat(def float64) (sx, sy float64) {
	sx, sy = d.RepeatSize[0], d.RepeatSize[1]
	if sx <= 0 {
		sx = def
	}
	if sy <= 0 {
		sy = sx
	}
	return sx, sy
}

// GetScale returns the texture scale factor, 1 when unset.
func (d *Descriptor) GetScale() float64 {
	if d.Scale <= 0 {
		return 1
	}
	return d.Scale
}

// TintRGB parses the tint into a 0xRRGGBB value. An empty tint is white.
func (d *Descriptor) TintRGB() (uint32, error) {
	return ParseHexColor(d.Tint)
}

// Validate checks that the descriptor can be applied.
func (d *Descriptor) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("material id is required")
	}
	if d.RepeatSize[0] < 0 || d.RepeatSize[1] < 0 {
		return fmt.Errorf("material %s: repeat size must not be negative", d.ID)
	}
	if d.Scale < 0 {
		return fmt.Errorf("material %s: scale must not be negative", d.ID)
	}
	if _, err := d.TintRGB(); err != nil {
		return fmt.Errorf("material %s: %w", d.ID, err)
	}
	if d.OcclusionEpsilon != nil && *d.OcclusionEpsilon < 0 {
		return fmt.Errorf("material %s: occlusion epsilon must not be negative", d.ID)
	}
	return nil
}

// ParseHexColor parses "#rgb" or "#rrggbb" (the leading # is optional).
// An empty string is white.
func ParseHexColor(s string) (uint32, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(s) {
	case 0:
		return 0xffffff, nil
	case 3:
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	case 6:
	default:
		return 0, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return uint32(v), nil
}
