// Package raster is a small CPU rasterizer: clip-space triangles, lines and point
// sprites are clipped, projected and shaded into a float color buffer with depth.
package raster

import (
	"image"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Framebuffer holds linear RGBA color in [0,1] (additive blending may exceed 1
// until the buffer is converted) and window-space depth in [0,1].
type Framebuffer struct {
	Width, Height int
	Color         []mgl32.Vec4
	Depth         []float32
}

func NewFramebuffer(width, height int) *Framebuffer {
	fb := &Framebuffer{}
	fb.Resize(width, height)
	return fb
}

// Resize reallocates the buffers when the size changes. Contents are undefined afterwards.
func (fb *Framebuffer) Resize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	if width == fb.Width && height == fb.Height && fb.Color != nil {
		return
	}
	fb.Width, fb.Height = width, height
	fb.Color = make([]mgl32.Vec4, width*height)
	fb.Depth = make([]float32, width*height)
}

func (fb *Framebuffer) Clear(c mgl32.Vec4) {
	for i := range fb.Color {
		fb.Color[i] = c
		fb.Depth[i] = math.MaxFloat32
	}
}

func (fb *Framebuffer) At(x, y int) mgl32.Vec4 {
	return fb.Color[y*fb.Width+x]
}

// ToImage converts the color buffer to 8-bit RGBA, reusing dst when it has the right size.
func (fb *Framebuffer) ToImage(dst *image.RGBA) *image.RGBA {
	if dst == nil || dst.Bounds().Dx() != fb.Width || dst.Bounds().Dy() != fb.Height {
		dst = image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	}
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			c := fb.Color[y*fb.Width+x]
			dst.SetRGBA(x, y, color.RGBA{
				R: toByte(c[0]),
				G: toByte(c[1]),
				B: toByte(c[2]),
				A: toByte(c[3]),
			})
		}
	}
	return dst
}

func toByte(v float32) uint8 {
	if v <= 0 || v != v {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

func (fb *Framebuffer) blend(i int, src mgl32.Vec4, mode BlendMode) {
	dst := fb.Color[i]
	a := src[3]
	switch mode {
	case BlendNone:
		fb.Color[i] = src
	case BlendAdditive:
		fb.Color[i] = mgl32.Vec4{
			dst[0] + src[0]*a,
			dst[1] + src[1]*a,
			dst[2] + src[2]*a,
			dst[3],
		}
	default:
		fb.Color[i] = mgl32.Vec4{
			src[0]*a + dst[0]*(1-a),
			src[1]*a + dst[1]*(1-a),
			src[2]*a + dst[2]*(1-a),
			a + dst[3]*(1-a),
		}
	}
}
