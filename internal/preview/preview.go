// Package preview shows replayed floor sessions in a fyne widget, seen
// from straight above the locked floor.
package preview

import (
	"image"
	"image/color"
	"math"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"github.com/miropolcevpro/paver-ar-web/internal/session"
	"github.com/miropolcevpro/paver-ar-web/pkg/geometry"
	"github.com/miropolcevpro/paver-ar-web/pkg/viewer"
)

var (
	background   = color.RGBA{30, 30, 34, 255}
	gridColor    = color.RGBA{55, 55, 62, 255}
	outlineColor = color.RGBA{255, 255, 255, 255}
	tapeColor    = color.RGBA{255, 200, 40, 255}
	reticleOK    = color.RGBA{80, 220, 120, 255}
	reticleClose = color.RGBA{80, 160, 255, 255}
)

const (
	minHeight = 0.5
	maxHeight = 40
	gridStep  = 0.5
)

// Preview is a top-down view of the latest frame output.
type Preview struct {
	widget.BaseWidget

	mu        sync.Mutex
	out       session.FrameOutput
	center    geometry.Vector3 // look-at point on the floor
	height    float64
	surface   color.RGBA
	dragStart *fyne.Position
	raster    *canvas.Raster
}

// New creates a preview looking down from 6 m.
func New() *Preview {
	p := &Preview{height: 6, surface: color.RGBA{184, 184, 184, 255}}
	p.raster = canvas.NewRaster(func(w, h int) image.Image {
		return p.Render(w, h)
	})
	p.ExtendBaseWidget(p)
	return p
}

// SetSurfaceColor sets the fill color of the surfaced mesh.
func (p *Preview) SetSurfaceColor(c color.RGBA) {
	p.mu.Lock()
	p.surface = c
	p.mu.Unlock()
	p.Refresh()
}

// Update shows out. The view recenters on the floor origin after each
// calibration.
func (p *Preview) Update(out session.FrameOutput) {
	p.mu.Lock()
	if out.Status.Calibrated && (!p.out.Status.Calibrated || out.Frame.Origin != p.out.Frame.Origin) {
		p.center = out.Frame.Origin
	}
	p.out = out
	p.mu.Unlock()
	p.Refresh()
}

// Camera returns the top-down camera for the current pan and zoom.
func (p *Preview) Camera() *viewer.Camera {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.camera()
}

func (p *Preview) camera() *viewer.Camera {
	pos := p.center.Add(geometry.NewVector3(0, p.height, 0))
	pose := geometry.NewPose(pos, geometry.AxisAngle(geometry.Vector3{X: 1}, -math.Pi/2))
	return viewer.NewCamera(pose, 0.01, p.height*4)
}

// Render draws the current frame into a w×h image.
func (p *Preview) Render(w, h int) *image.RGBA {
	p.mu.Lock()
	out, surf := p.out, p.surface
	cam := p.camera()
	p.mu.Unlock()

	r := viewer.NewRasterizer(max(w, 1), max(h, 1))
	r.Clear(background)
	drawGrid(r, cam, out.Frame)

	if s := out.Render.Surface; s != nil {
		r.DrawMesh(cam, s.Positions, s.Indices, fade(surf, s.Opacity), nil)
	}
	r.DrawPolyline(cam, out.Render.Outline, out.Render.OutlineClosed, outlineColor)
	r.DrawPolyline(cam, out.Render.Tape, false, tapeColor)

	if ret := out.Render.Reticle; ret != nil {
		col := reticleOK
		if ret.Closable {
			col = reticleClose
		}
		drawCross(r, cam, ret.Position, 0.08, col)
	}
	return r.Image
}

// drawGrid draws floor lines every half meter around the frame origin.
func drawGrid(r *viewer.Rasterizer, cam *viewer.Camera, frame geometry.Frame) {
	const n = 20
	span := gridStep * n
	for i := -n; i <= n; i++ {
		o := float64(i) * gridStep
		r.DrawPolyline(cam, []geometry.Vector3{
			frame.ToWorld(geometry.NewVector3(o, 0, -span)),
			frame.ToWorld(geometry.NewVector3(o, 0, span)),
		}, false, gridColor)
		r.DrawPolyline(cam, []geometry.Vector3{
			frame.ToWorld(geometry.NewVector3(-span, 0, o)),
			frame.ToWorld(geometry.NewVector3(span, 0, o)),
		}, false, gridColor)
	}
}

func drawCross(r *viewer.Rasterizer, cam *viewer.Camera, at geometry.Vector3, size float64, col color.RGBA) {
	r.DrawPolyline(cam, []geometry.Vector3{at.Add(geometry.Vector3{X: -size}), at.Add(geometry.Vector3{X: size})}, false, col)
	r.DrawPolyline(cam, []geometry.Vector3{at.Add(geometry.Vector3{Z: -size}), at.Add(geometry.Vector3{Z: size})}, false, col)
}

// fade blends c towards the background by opacity.
func fade(c color.RGBA, opacity float64) color.RGBA {
	o := math.Max(0, math.Min(1, opacity))
	mix := func(a, b uint8) uint8 {
		return uint8(math.Round(float64(b) + (float64(a)-float64(b))*o))
	}
	return color.RGBA{mix(c.R, background.R), mix(c.G, background.G), mix(c.B, background.B), 255}
}

// Dragged pans the view.
func (p *Preview) Dragged(event *fyne.DragEvent) {
	p.mu.Lock()
	if p.dragStart != nil {
		// Meters per pixel at the current height.
		scale := p.height * math.Tan(math.Pi/6) * 2 / float64(max(p.Size().Height, 1))
		p.center.X -= float64(event.Position.X-p.dragStart.X) * scale
		p.center.Z -= float64(event.Position.Y-p.dragStart.Y) * scale
	}
	pos := event.Position
	p.dragStart = &pos
	p.mu.Unlock()
	p.Refresh()
}

// DragEnd handles the end of a drag event
func (p *Preview) DragEnd() {
	p.mu.Lock()
	p.dragStart = nil
	p.mu.Unlock()
}

// Scrolled zooms in and out.
func (p *Preview) Scrolled(event *fyne.ScrollEvent) {
	p.mu.Lock()
	p.height = math.Max(minHeight, math.Min(maxHeight, p.height*math.Exp(-float64(event.Scrolled.DY)*0.002)))
	p.mu.Unlock()
	p.Refresh()
}

// CreateRenderer creates the renderer for the widget
func (p *Preview) CreateRenderer() fyne.WidgetRenderer {
	return &previewRenderer{preview: p}
}

// previewRenderer implements fyne.WidgetRenderer
type previewRenderer struct {
	preview *Preview
}

func (r *previewRenderer) Layout(size fyne.Size) {
	r.preview.raster.Resize(size)
}

func (r *previewRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 400)
}

func (r *previewRenderer) Refresh() {
	canvas.Refresh(r.preview.raster)
}

func (r *previewRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.preview.raster}
}

func (r *previewRenderer) Destroy() {}
