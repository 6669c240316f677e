package occlusion

import (
	"errors"
	"fmt"
)

// ErrInvalidDepth is returned for depth frames with unusable dimensions.
var ErrInvalidDepth = errors.New("invalid depth frame")

// DepthFrame is one frame of platform depth data. Samples are row-major
// with row 0 at the top of the view. A frame is valid for one render frame.
type DepthFrame struct {
	Width       int
	Height      int
	Data        []uint16
	RawToMeters float64 // 0 keeps the previous scale
}

// Validate checks the frame dimensions.
func (f *DepthFrame) Validate() error {
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalidDepth, f.Width, f.Height)
	}
	if f.RawToMeters < 0 {
		return fmt.Errorf("%w: negative raw-to-meters scale %f", ErrInvalidDepth, f.RawToMeters)
	}
	return nil
}

// DepthTexture is depth packed into an RGBA8 image so that it can be
// sampled on devices without 16-bit texture formats.
// R holds the low byte, G the high byte, B is 0 and A is 255.
type DepthTexture struct {
	Width  int
	Height int
	Pix    []byte
}

func newDepthTexture(w, h int) *DepthTexture {
	return &DepthTexture{Width: w, Height: h, Pix: make([]byte, w*h*4)}
}

// pack writes data into the texture. Missing samples are zero.
func (t *DepthTexture) pack(data []uint16) {
	n := min(len(data), t.Width*t.Height)
	for i, j := 0, 0; i < n; i, j = i+1, j+4 {
		v := data[i]
		t.Pix[j] = byte(v & 0xff)
		t.Pix[j+1] = byte(v >> 8)
		t.Pix[j+2] = 0
		t.Pix[j+3] = 255
	}
	clear(t.Pix[n*4:])
}

// Raw decodes the 16-bit sample at a texel.
func (t *DepthTexture) Raw(x, y int) uint16 {
	i := (y*t.Width + x) * 4
	return uint16(t.Pix[i]) | uint16(t.Pix[i+1])<<8
}

// Sample decodes the sample nearest to normalized coordinates u, v in [0, 1].
func (t *DepthTexture) Sample(u, v float64) uint16 {
	x := clampIndex(int(u*float64(t.Width)), t.Width)
	y := clampIndex(int(v*float64(t.Height)), t.Height)
	return t.Raw(x, y)
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
