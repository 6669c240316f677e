package occlusion

import "github.com/miropolcevpro/paver-ar-web/pkg/viewer"

// Uniforms are the per-material parameters of the occlusion test.
// A zero depth size makes the test inert.
type Uniforms struct {
	DepthWidth     float64
	DepthHeight    float64
	ViewportWidth  float64
	ViewportHeight float64
	RawToMeters    float64
	Epsilon        float64
	Bias           float64
	Near           float64
	Far            float64
}

// Active reports whether depth data is bound.
func (u Uniforms) Active() bool {
	return u.DepthWidth > 1 && u.DepthHeight > 1
}

// Pack lays the uniforms out as the shader's Occlusion block:
// sizes (depth w, h, viewport w, h), params (raw-to-meters, eps, bias, 0)
// and clip (near, far, 0, 0).
func (u Uniforms) Pack() [12]float32 {
	return [12]float32{
		float32(u.DepthWidth), float32(u.DepthHeight), float32(u.ViewportWidth), float32(u.ViewportHeight),
		float32(u.RawToMeters), float32(u.Epsilon), float32(u.Bias), 0,
		float32(u.Near), float32(u.Far), 0, 0,
	}
}

// ShouldDiscard reports whether a fragment at window depth fragDepth is
// hidden behind the real surface sampled as raw.
func ShouldDiscard(u Uniforms, raw uint16, fragDepth float64) bool {
	viewZ := viewer.PerspectiveDepthToViewZ(fragDepth, u.Near, u.Far)
	return DiscardAtDistance(u, raw, -viewZ)
}

// DiscardAtDistance is ShouldDiscard for a fragment at view distance dist.
// A zero sample means no measurement and never discards.
func DiscardAtDistance(u Uniforms, raw uint16, dist float64) bool {
	if !u.Active() {
		return false
	}
	measured := float64(raw) * u.RawToMeters
	if measured <= 0 {
		return false
	}
	virt := dist - u.Bias
	return virt > measured+u.Epsilon
}
