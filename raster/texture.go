package raster

import (
	"image"
	"image/draw"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type Filter int

const (
	FilterLinear Filter = iota
	FilterNearest
)

type Wrap int

const (
	WrapClamp Wrap = iota
	WrapRepeat
)

// Texture is a decoded RGBA image sampled with normalized coordinates.
type Texture struct {
	Width, Height int
	Pix           []mgl32.Vec4
	Filter        Filter
	Wrap          Wrap
	// FlipY maps v=0 to the bottom row of the image.
	FlipY bool
}

func NewTexture(img image.Image) *Texture {
	b := img.Bounds()
	nrgba, ok := img.(*image.NRGBA)
	if !ok || b.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)
	}
	t := &Texture{Width: b.Dx(), Height: b.Dy(), Pix: make([]mgl32.Vec4, b.Dx()*b.Dy()), FlipY: true}
	for y := 0; y < t.Height; y++ {
		for x := 0; x < t.Width; x++ {
			o := nrgba.PixOffset(x, y)
			p := nrgba.Pix[o : o+4 : o+4]
			t.Pix[y*t.Width+x] = mgl32.Vec4{
				float32(p[0]) / 255,
				float32(p[1]) / 255,
				float32(p[2]) / 255,
				float32(p[3]) / 255,
			}
		}
	}
	return t
}

// SolidTexture is a 1x1 texture of a single color.
func SolidTexture(c mgl32.Vec4) *Texture {
	return &Texture{Width: 1, Height: 1, Pix: []mgl32.Vec4{c}, Filter: FilterNearest}
}

func (t *Texture) wrap(i, n int) int {
	if t.Wrap == WrapRepeat {
		i %= n
		if i < 0 {
			i += n
		}
		return i
	}
	return min(max(i, 0), n-1)
}

func (t *Texture) texel(x, y int) mgl32.Vec4 {
	return t.Pix[t.wrap(y, t.Height)*t.Width+t.wrap(x, t.Width)]
}

// Sample returns the texel color at (u, v).
func (t *Texture) Sample(u, v float32) mgl32.Vec4 {
	if t == nil || len(t.Pix) == 0 {
		return mgl32.Vec4{1, 1, 1, 1}
	}
	if t.FlipY {
		v = 1 - v
	}
	fx := u*float32(t.Width) - 0.5
	fy := v*float32(t.Height) - 0.5
	if t.Filter == FilterNearest {
		return t.texel(int(math.Floor(float64(fx+0.5))), int(math.Floor(float64(fy+0.5))))
	}
	x0 := int(math.Floor(float64(fx)))
	y0 := int(math.Floor(float64(fy)))
	tx := fx - float32(x0)
	ty := fy - float32(y0)
	c00 := t.texel(x0, y0)
	c10 := t.texel(x0+1, y0)
	c01 := t.texel(x0, y0+1)
	c11 := t.texel(x0+1, y0+1)
	top := c00.Mul(1 - tx).Add(c10.Mul(tx))
	bottom := c01.Mul(1 - tx).Add(c11.Mul(tx))
	return top.Mul(1 - ty).Add(bottom.Mul(ty))
}
