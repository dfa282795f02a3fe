package raster

import (
	"image"
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(c mgl32.Vec4) FragmentShader {
	return func(*Varyings, bool) (mgl32.Vec4, bool) { return c, true }
}

func vert(x, y, z float32) Vertex {
	return Vertex{Clip: mgl32.Vec4{x, y, z, 1}}
}

func TestDrawTriangleCoversCenter(t *testing.T) {
	fb := NewFramebuffer(8, 8)
	fb.Clear(mgl32.Vec4{0, 0, 0, 1})
	red := mgl32.Vec4{1, 0, 0, 1}
	fb.DrawTriangle(vert(-1, -1, 0), vert(1, -1, 0), vert(0, 1, 0), DefaultState(), solid(red))

	assert.Equal(t, red, fb.At(4, 4))
	assert.Equal(t, mgl32.Vec4{0, 0, 0, 1}, fb.At(0, 0))
}

func TestBackFaceCulled(t *testing.T) {
	fb := NewFramebuffer(8, 8)
	fb.Clear(mgl32.Vec4{})
	// clockwise
	fb.DrawTriangle(vert(-1, -1, 0), vert(0, 1, 0), vert(1, -1, 0), DefaultState(), solid(mgl32.Vec4{1, 1, 1, 1}))
	assert.Equal(t, mgl32.Vec4{}, fb.At(4, 4))

	st := DefaultState()
	st.Cull = CullNone
	fb.DrawTriangle(vert(-1, -1, 0), vert(0, 1, 0), vert(1, -1, 0), st, solid(mgl32.Vec4{1, 1, 1, 1}))
	assert.Equal(t, mgl32.Vec4{1, 1, 1, 1}, fb.At(4, 4))
}

func TestDepthTestKeepsNearest(t *testing.T) {
	fb := NewFramebuffer(4, 4)
	fb.Clear(mgl32.Vec4{})
	near := mgl32.Vec4{0, 1, 0, 1}
	far := mgl32.Vec4{0, 0, 1, 1}
	quad := func(z float32, c mgl32.Vec4) {
		fb.DrawTriangle(vert(-1, -1, z), vert(1, -1, z), vert(1, 1, z), DefaultState(), solid(c))
		fb.DrawTriangle(vert(-1, -1, z), vert(1, 1, z), vert(-1, 1, z), DefaultState(), solid(c))
	}
	quad(-0.5, near)
	quad(0.5, far)
	assert.Equal(t, near, fb.At(2, 2))
}

func TestAdditiveBlendingAccumulates(t *testing.T) {
	fb := NewFramebuffer(4, 4)
	fb.Clear(mgl32.Vec4{0, 0, 0, 1})
	st := State{Blend: BlendAdditive}
	shade := func(*Varyings, mgl32.Vec2) (mgl32.Vec4, bool) { return mgl32.Vec4{0.5, 0, 0, 1}, true }
	fb.DrawPoint(vert(0, 0, 0), 2, st, shade)
	fb.DrawPoint(vert(0, 0, 0), 2, st, shade)
	assert.InDelta(t, 1.0, fb.At(2, 2)[0], 1e-6)
}

func TestNearPlaneClipping(t *testing.T) {
	fb := NewFramebuffer(8, 8)
	fb.Clear(mgl32.Vec4{})
	st := DefaultState()
	st.Cull = CullNone
	// one vertex behind the near plane
	a := Vertex{Clip: mgl32.Vec4{-1, -1, 0, 1}}
	b := Vertex{Clip: mgl32.Vec4{1, -1, 0, 1}}
	c := Vertex{Clip: mgl32.Vec4{0, 1, -3, 1}}
	require.NotPanics(t, func() { fb.DrawTriangle(a, b, c, st, solid(mgl32.Vec4{1, 1, 1, 1})) })
	assert.Equal(t, mgl32.Vec4{1, 1, 1, 1}, fb.At(4, 6))
	assert.Equal(t, mgl32.Vec4{}, fb.At(4, 0))
}

func TestVaryingsInterpolated(t *testing.T) {
	fb := NewFramebuffer(16, 16)
	fb.Clear(mgl32.Vec4{})
	a, b, c := vert(-1, -1, 0), vert(3, -1, 0), vert(-1, 3, 0)
	b.Varyings[0] = 1
	st := DefaultState()
	fb.DrawTriangle(a, b, c, st, func(v *Varyings, _ bool) (mgl32.Vec4, bool) {
		return mgl32.Vec4{v[0], 0, 0, 1}, true
	})
	assert.Less(t, fb.At(1, 8)[0], fb.At(14, 8)[0])
}

func TestTextureSampling(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.NRGBA{255, 0, 0, 255})
	img.Set(1, 0, color.NRGBA{0, 0, 255, 255})
	tex := NewTexture(img)
	tex.Filter = FilterNearest

	assert.Equal(t, mgl32.Vec4{1, 0, 0, 1}, tex.Sample(0.1, 0.5))
	assert.Equal(t, mgl32.Vec4{0, 0, 1, 1}, tex.Sample(0.9, 0.5))

	tex.Filter = FilterLinear
	mid := tex.Sample(0.5, 0.5)
	assert.InDelta(t, 0.5, mid[0], 1e-5)
	assert.InDelta(t, 0.5, mid[2], 1e-5)
}

func TestToImageClamps(t *testing.T) {
	fb := NewFramebuffer(1, 1)
	fb.Clear(mgl32.Vec4{2, -1, 0.5, 1})
	img := fb.ToImage(nil)
	assert.Equal(t, color.RGBA{255, 0, 128, 255}, img.RGBAAt(0, 0))
}
