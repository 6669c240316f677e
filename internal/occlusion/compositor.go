// Package occlusion hides virtual floor content behind real-world objects
// using per-frame platform depth.
package occlusion

import (
	"log/slog"

	"github.com/miropolcevpro/paver-ar-web/internal/config"
	"github.com/miropolcevpro/paver-ar-web/internal/logging"
	"github.com/miropolcevpro/paver-ar-web/internal/material"
)

const defaultRawToMeters = 0.001

// Settings are the occlusion tolerances of one registered material.
type Settings struct {
	Epsilon float64
	Bias    float64
}

// View describes the render target and camera clip planes of a frame.
type View struct {
	Width  int
	Height int
	Near   float64
	Far    float64
}

// Compositor owns the depth texture and the registry of occlusion-aware
// materials. It is used from the frame goroutine only.
type Compositor struct {
	enabled     bool
	defaults    Settings
	surface     Settings
	materials   map[string]Settings
	tex         *DepthTexture
	hasDepth    bool
	rawToMeters float64
	reallocs    int
}

// New creates a compositor with tolerances from cfg.
func New(cfg *config.Tuning) *Compositor {
	return &Compositor{
		enabled: true,
		defaults: Settings{
			Epsilon: cfg.GetOcclusionEpsilon(),
		},
		surface: Settings{
			Epsilon: cfg.GetSurfaceOcclusionEpsilon(),
			Bias:    cfg.GetSurfaceOcclusionBias(),
		},
		materials:   make(map[string]Settings),
		rawToMeters: defaultRawToMeters,
	}
}

func logger() *slog.Logger {
	return logging.For("occlusion")
}

// SetEnabled turns depth occlusion on or off globally.
func (c *Compositor) SetEnabled(on bool) {
	c.enabled = on
	if !on {
		c.hasDepth = false
	}
}

// Enabled reports whether occlusion is globally enabled.
func (c *Compositor) Enabled() bool {
	return c.enabled
}

// Register adds an occlusion-aware material with explicit settings.
// Registering an id again replaces its settings.
func (c *Compositor) Register(id string, s Settings) {
	c.materials[id] = s
}

// RegisterDefault adds a material with the default tolerances.
func (c *Compositor) RegisterDefault(id string) {
	c.Register(id, c.defaults)
}

// RegisterMaterial registers a surface material using its own tolerances,
// falling back to the surface defaults. Materials that are not
// occlusion-aware are ignored.
func (c *Compositor) RegisterMaterial(d *material.Descriptor) bool {
	if d == nil || !d.OcclusionAware {
		return false
	}
	s := c.surface
	if d.OcclusionEpsilon != nil {
		s.Epsilon = *d.OcclusionEpsilon
	}
	if d.OcclusionBias != nil {
		s.Bias = *d.OcclusionBias
	}
	c.Register(d.ID, s)
	return true
}

// Unregister removes a material.
func (c *Compositor) Unregister(id string) {
	delete(c.materials, id)
}

// Registered returns the settings of a material.
func (c *Compositor) Registered(id string) (Settings, bool) {
	s, ok := c.materials[id]
	return s, ok
}

// Len returns the number of registered materials.
func (c *Compositor) Len() int {
	return len(c.materials)
}

// WantsDepth reports whether depth should be requested this frame. Depth
// reads are skipped while nothing is registered.
func (c *Compositor) WantsDepth() bool {
	return c.enabled && len(c.materials) > 0
}

// Ingest repacks a depth frame into the persistent texture. The texture is
// reallocated only when the dimensions change. A nil frame marks depth as
// unavailable for this frame and is not an error. Frames one sample wide or
// tall are packed but leave depth unavailable, since the discard test
// ignores them.
func (c *Compositor) Ingest(f *DepthFrame) error {
	c.hasDepth = false
	if f == nil || !c.WantsDepth() {
		return nil
	}
	if err := f.Validate(); err != nil {
		return err
	}

	if f.RawToMeters > 0 {
		c.rawToMeters = f.RawToMeters
	}
	if c.tex == nil || c.tex.Width != f.Width || c.tex.Height != f.Height {
		c.tex = newDepthTexture(f.Width, f.Height)
		c.reallocs++
		logger().Debug("depth texture allocated", "width", f.Width, "height", f.Height)
	}
	c.tex.pack(f.Data)
	c.hasDepth = f.Width > 1 && f.Height > 1
	if !c.hasDepth {
		logger().Debug("depth frame too small for occlusion", "width", f.Width, "height", f.Height)
	}
	return nil
}

// HasDepth reports whether the current frame has depth data.
func (c *Compositor) HasDepth() bool {
	return c.hasDepth
}

// Texture returns the packed depth texture, or nil before the first frame.
func (c *Compositor) Texture() *DepthTexture {
	return c.tex
}

// Reallocations returns how many times the depth texture was allocated.
func (c *Compositor) Reallocations() int {
	return c.reallocs
}

// RawToMeters returns the current depth scale.
func (c *Compositor) RawToMeters() float64 {
	return c.rawToMeters
}

// Release drops the depth texture. Registered materials are kept.
func (c *Compositor) Release() {
	c.tex = nil
	c.hasDepth = false
	c.rawToMeters = defaultRawToMeters
}

// Uniforms returns the uniforms of a registered material for view.
// ok is false for unregistered materials. Without depth the uniforms are
// inert.
func (c *Compositor) Uniforms(id string, view View) (u Uniforms, ok bool) {
	s, ok := c.materials[id]
	if !ok {
		return Uniforms{}, false
	}
	u = Uniforms{
		ViewportWidth:  float64(view.Width),
		ViewportHeight: float64(view.Height),
		RawToMeters:    c.rawToMeters,
		Epsilon:        s.Epsilon,
		Bias:           s.Bias,
		Near:           view.Near,
		Far:            view.Far,
	}
	if c.enabled && c.hasDepth && c.tex != nil {
		u.DepthWidth = float64(c.tex.Width)
		u.DepthHeight = float64(c.tex.Height)
	}
	return u, true
}

// Pass returns the per-fragment test of a material for one draw. It is nil
// when the material is not registered.
func (c *Compositor) Pass(id string, view View) *Pass {
	u, ok := c.Uniforms(id, view)
	if !ok {
		return nil
	}
	return &Pass{Uniforms: u, tex: c.tex}
}

// Pass applies the occlusion test to fragments of one draw.
type Pass struct {
	Uniforms Uniforms
	tex      *DepthTexture
}

// Occludes reports whether the fragment at pixel (x, y) with window depth
// depth is hidden. It samples the depth texture at the pixel center.
func (p *Pass) Occludes(x, y int, depth float64) bool {
	if p == nil || !p.Uniforms.Active() || p.tex == nil {
		return false
	}
	su := (float64(x) + 0.5) / p.Uniforms.ViewportWidth
	sv := (float64(y) + 0.5) / p.Uniforms.ViewportHeight
	return ShouldDiscard(p.Uniforms, p.tex.Sample(su, sv), depth)
}
