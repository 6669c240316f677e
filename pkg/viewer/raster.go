package viewer

import (
	"image"
	"image/color"
	"math"

	"github.com/miropolcevpro/paver-ar-web/pkg/geometry"
)

// Occluder decides whether a fragment is hidden by real-world geometry.
// x and y are pixel coordinates; depth is the fragment's window depth.
type Occluder interface {
	Occludes(x, y int, depth float64) bool
}

// Stats counts the fragments produced by a draw call.
type Stats struct {
	Drawn    int
	Occluded int
}

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	s.Drawn += other.Drawn
	s.Occluded += other.Occluded
}

// Rasterizer is a software renderer with a depth buffer. It draws virtual
// geometry the way the GPU path does, including the per-fragment occlusion
// test, so occlusion masks can be produced without a device.
type Rasterizer struct {
	Image  *image.RGBA
	zbuf   []float64
	width  int
	height int
}

// NewRasterizer creates a rasterizer with a cleared color and depth buffer.
func NewRasterizer(width, height int) *Rasterizer {
	r := &Rasterizer{
		Image:  image.NewRGBA(image.Rect(0, 0, width, height)),
		zbuf:   make([]float64, width*height),
		width:  width,
		height: height,
	}
	r.Clear(color.RGBA{})
	return r
}

// Size returns the viewport size in pixels.
func (r *Rasterizer) Size() (width, height int) {
	return r.width, r.height
}

// Clear fills the color buffer with bg and resets depth to the far plane.
func (r *Rasterizer) Clear(bg color.RGBA) {
	for i := range r.zbuf {
		r.zbuf[i] = 1
	}
	for y := 0; y < r.height; y++ {
		for x := 0; x < r.width; x++ {
			r.Image.SetRGBA(x, y, bg)
		}
	}
}

// Depth returns the stored window depth at a pixel.
func (r *Rasterizer) Depth(x, y int) float64 {
	return r.zbuf[y*r.width+x]
}

// DrawMesh draws an indexed triangle mesh given in world space.
// Triangles with a vertex in front of the near plane are skipped.
func (r *Rasterizer) DrawMesh(cam *Camera, positions []geometry.Vector3, indices []int, col color.RGBA, occ Occluder) Stats {
	var stats Stats
	w, h := float64(r.width), float64(r.height)
	for i := 0; i+2 < len(indices); i += 3 {
		var pts [3][3]float64
		visible := true
		for k := 0; k < 3; k++ {
			x, y, dist, ok := cam.Project(positions[indices[i+k]], w, h)
			if !ok {
				visible = false
				break
			}
			pts[k] = [3]float64{x, y, cam.FragDepth(dist)}
		}
		if !visible {
			continue
		}
		stats.Add(r.fillTriangleWithDepth(pts, col, occ))
	}
	return stats
}

// DrawPolyline draws the projected segments between consecutive points.
// Lines are overlays and ignore the depth buffer.
func (r *Rasterizer) DrawPolyline(cam *Camera, points []geometry.Vector3, closed bool, col color.RGBA) {
	w, h := float64(r.width), float64(r.height)
	n := len(points)
	if n < 2 {
		return
	}
	segments := n - 1
	if closed {
		segments = n
	}
	for i := 0; i < segments; i++ {
		x1, y1, _, ok1 := cam.Project(points[i], w, h)
		x2, y2, _, ok2 := cam.Project(points[(i+1)%n], w, h)
		if !ok1 || !ok2 {
			continue
		}
		drawLine(r.Image, int(math.Round(x1)), int(math.Round(y1)), int(math.Round(x2)), int(math.Round(y2)), col)
	}
}

// fillTriangleWithDepth fills a triangle with depth testing and occlusion
func (r *Rasterizer) fillTriangleWithDepth(vertices [3][3]float64, col color.RGBA, occ Occluder) Stats {
	var stats Stats

	// Sort vertices by Y coordinate (top to bottom)
	if vertices[0][1] > vertices[1][1] {
		vertices[0], vertices[1] = vertices[1], vertices[0]
	}
	if vertices[1][1] > vertices[2][1] {
		vertices[1], vertices[2] = vertices[2], vertices[1]
	}
	if vertices[0][1] > vertices[1][1] {
		vertices[0], vertices[1] = vertices[1], vertices[0]
	}

	x1, y1, z1 := vertices[0][0], vertices[0][1], vertices[0][2]
	x2, y2, z2 := vertices[1][0], vertices[1][1], vertices[1][2]
	x3, y3, z3 := vertices[2][0], vertices[2][1], vertices[2][2]

	// Scanline algorithm with depth interpolation
	for y := int(math.Max(0, math.Ceil(y1))); y <= int(math.Min(float64(r.height-1), y3)); y++ {
		fy := float64(y)

		var xStart, xEnd, zStart, zEnd float64
		foundStart := false
		foundEnd := false

		edge := func(ax, ay, az, bx, by, bz float64) {
			if ay == by || fy < ay || fy > by {
				return
			}
			t := (fy - ay) / (by - ay)
			x := ax + t*(bx-ax)
			z := az + t*(bz-az)
			if !foundStart {
				xStart, zStart = x, z
				foundStart = true
			} else {
				xEnd, zEnd = x, z
				foundEnd = true
			}
		}
		edge(x1, y1, z1, x2, y2, z2)
		edge(x2, y2, z2, x3, y3, z3)
		edge(x1, y1, z1, x3, y3, z3)

		if !foundStart || !foundEnd {
			continue
		}

		// Ensure xStart < xEnd
		if xStart > xEnd {
			xStart, xEnd = xEnd, xStart
			zStart, zEnd = zEnd, zStart
		}

		// Clamp to image bounds
		xStartInt := int(math.Max(0, math.Ceil(xStart)))
		xEndInt := int(math.Min(float64(r.width-1), xEnd))

		for x := xStartInt; x <= xEndInt; x++ {
			t := 0.0
			if xEnd != xStart {
				t = (float64(x) - xStart) / (xEnd - xStart)
			}
			z := zStart + t*(zEnd-zStart)

			// Depth test - draw if closer (smaller z)
			idx := y*r.width + x
			if z >= r.zbuf[idx] {
				continue
			}
			if occ != nil && occ.Occludes(x, y, z) {
				stats.Occluded++
				continue
			}
			r.zbuf[idx] = z
			r.Image.SetRGBA(x, y, col)
			stats.Drawn++
		}
	}
	return stats
}

// drawLine draws a line on an image using Bresenham's algorithm
func drawLine(img *image.RGBA, x1, y1, x2, y2 int, col color.RGBA) {
	bounds := img.Bounds()

	dx := abs(x2 - x1)
	dy := abs(y2 - y1)

	var sx, sy int
	if x1 < x2 {
		sx = 1
	} else {
		sx = -1
	}
	if y1 < y2 {
		sy = 1
	} else {
		sy = -1
	}

	err := dx - dy

	for {
		// Check bounds
		if x1 >= 0 && x1 < bounds.Max.X && y1 >= 0 && y1 < bounds.Max.Y {
			img.SetRGBA(x1, y1, col)
		}

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
