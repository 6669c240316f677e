// Package export writes session results to files: the surfaced mesh as
// STL, a top-down plot of the contour and an occlusion-aware view render.
package export

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/miropolcevpro/paver-ar-web/internal/session"
	"github.com/miropolcevpro/paver-ar-web/pkg/geometry"
	"github.com/miropolcevpro/paver-ar-web/pkg/stl"
	"github.com/miropolcevpro/paver-ar-web/pkg/viewer"
)

// ErrNoSurface is returned when there is no surfaced mesh to export.
var ErrNoSurface = errors.New("no surface placed")

var (
	SurfaceColor = color.RGBA{184, 184, 184, 255}
	OutlineColor = color.RGBA{255, 255, 255, 255}
	TapeColor    = color.RGBA{255, 200, 40, 255}
)

// SurfaceModel converts a surface renderable into an STL model.
func SurfaceModel(name string, r *session.Renderable) (*stl.Model, error) {
	if r == nil || len(r.Indices) == 0 {
		return nil, ErrNoSurface
	}
	return stl.FromMesh(name, r.Positions, r.Indices)
}

// Plot draws a top-down view of a contour and tape given in floor-local
// coordinates. Forward (-Z) points up.
func Plot(title string, contour []geometry.Vector3, closed bool, tape []geometry.Vector3) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "forward (m)"
	p.Add(plotter.NewGrid())

	if len(contour) > 0 {
		pts := xy(contour)
		if closed {
			pts = append(pts, pts[0])
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("failed to plot contour: %w", err)
		}
		line.Width = vg.Points(1.5)
		scatter, err := plotter.NewScatter(xy(contour))
		if err != nil {
			return nil, fmt.Errorf("failed to plot contour points: %w", err)
		}
		p.Add(line, scatter)
		p.Legend.Add("contour", line)
	}

	if len(tape) == 2 {
		line, err := plotter.NewLine(xy(tape))
		if err != nil {
			return nil, fmt.Errorf("failed to plot tape: %w", err)
		}
		line.Color = TapeColor
		line.Width = vg.Points(1)
		line.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(line)
		p.Legend.Add("tape", line)
	}

	p.Legend.Top = true
	return p, nil
}

func xy(points []geometry.Vector3) plotter.XYs {
	out := make(plotter.XYs, len(points))
	for i, v := range points {
		out[i] = plotter.XY{X: v.X, Y: -v.Z}
	}
	return out
}

// SavePlot writes p as an image; the format follows the file extension.
func SavePlot(p *plot.Plot, path string) error {
	if err := p.Save(6*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save plot: %w", err)
	}
	return nil
}

// View renders what the camera sees of the placed content on a
// transparent background. occ hides surface fragments behind real
// geometry; it may be nil.
func View(cam *viewer.Camera, width, height int, out session.FrameOutput, occ viewer.Occluder) (*image.RGBA, viewer.Stats) {
	r := viewer.NewRasterizer(width, height)
	r.Clear(color.RGBA{})
	var stats viewer.Stats
	if s := out.Render.Surface; s != nil {
		stats = r.DrawMesh(cam, s.Positions, s.Indices, SurfaceColor, occ)
	}
	r.DrawPolyline(cam, out.Render.Outline, out.Render.OutlineClosed, OutlineColor)
	r.DrawPolyline(cam, out.Render.Tape, false, TapeColor)
	return r.Image, stats
}

// WritePNG writes img to path.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create image: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return f.Close()
}
