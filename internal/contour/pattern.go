package contour

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/miropolcevpro/paver-ar-web/internal/material"
)

// PatternSettings control how the material repeats across the surface.
type PatternSettings struct {
	RepeatSize [2]float64 // meters per repeat along u and v
	Rotation   float64    // radians, counter-clockwise seen from above
	Layout     material.Layout
	Scale      float64 // larger scale means fewer repeats
}

// PatternFor derives pattern settings from a material, keeping rotation.
func PatternFor(d *material.Descriptor, rotation, defaultRepeat float64) PatternSettings {
	p := PatternSettings{Rotation: rotation, Scale: 1}
	if d == nil {
		p.RepeatSize = [2]float64{defaultRepeat, defaultRepeat}
		return p
	}
	sx, sy := d.Repeat(defaultRepeat)
	p.RepeatSize = [2]float64{sx, sy}
	p.Layout = d.Layout
	p.Scale = d.GetScale()
	return p
}

func (p PatternSettings) repeat() (sx, sy float64) {
	sx, sy = p.RepeatSize[0], p.RepeatSize[1]
	if sx <= 0 {
		sx = 1
	}
	if sy <= 0 {
		sy = sx
	}
	return sx, sy
}

func (p PatternSettings) scale() float64 {
	if p.Scale <= 0 {
		return 1
	}
	return p.Scale
}

// RemapUVs derives texture coordinates for shape vertices given in meters.
// Rotation is applied first, then the layout transform, then scale.
func RemapUVs(shape []r2.Vec, p PatternSettings) []r2.Vec {
	sx, sy := p.repeat()
	scale := p.scale()
	uvs := make([]r2.Vec, len(shape))
	for i, v := range shape {
		uv := r2.Vec{X: v.X / sx, Y: v.Y / sy}
		if p.Rotation != 0 {
			uv = r2.Rotate(uv, p.Rotation, r2.Vec{})
		}
		uvs[i] = r2.Scale(1/scale, applyLayout(uv, p.Layout))
	}
	return uvs
}

func applyLayout(uv r2.Vec, layout material.Layout) r2.Vec {
	switch layout {
	case material.Diagonal:
		return r2.Rotate(uv, math.Pi/4, r2.Vec{})
	case material.Cross:
		return r2.Vec{X: -uv.Y, Y: uv.X}
	case material.Running:
		// Odd rows shift by half a repeat.
		if int(math.Floor(uv.Y))%2 != 0 {
			uv.X += 0.5
		}
		return uv
	default:
		return uv
	}
}
