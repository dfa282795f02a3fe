package geometry

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// TextOptions mirrors ExtrudeOptions with a glyph size and curve resolution.
type TextOptions struct {
	Size          float32
	CurveSegments int
	ExtrudeOptions
}

// DefaultTextOptions returns a flat-bevelled, unit sized setup.
func DefaultTextOptions() TextOptions {
	return TextOptions{
		Size:          1,
		CurveSegments: 12,
		ExtrudeOptions: ExtrudeOptions{
			Depth:          0.5,
			Steps:          1,
			BevelThickness: 0.1,
			BevelSize:      0.08,
			BevelSegments:  3,
		},
	}
}

// NewText lays out s with f and extrudes the glyph outlines.
func NewText(f *sfnt.Font, s string, opts TextOptions) (*BufferGeometry, error) {
	shapes, err := TextShapes(f, s, opts.Size, opts.CurveSegments)
	if err != nil {
		return nil, err
	}
	return Extrude(shapes, opts.ExtrudeOptions), nil
}

// TextShapes converts s to filled shapes with the baseline at y=0 and the em
// square scaled to size. A newline starts a new line below.
func TextShapes(f *sfnt.Font, s string, size float32, curveSegments int) ([]Shape, error) {
	if f == nil {
		return nil, errors.New("nil font")
	}
	var buf sfnt.Buffer
	upem := f.UnitsPerEm()
	ppem := fixed.I(int(upem))
	scale := size / float32(upem)

	metrics, err := f.Metrics(&buf, ppem, font.HintingNone)
	if err != nil {
		return nil, fmt.Errorf("font metrics: %w", err)
	}
	lineHeight := fromFixed(metrics.Height) * scale

	var shapes []Shape
	var penX, penY float32
	var prev sfnt.GlyphIndex
	hasPrev := false
	for _, r := range s {
		if r == '\n' {
			penX = 0
			penY -= lineHeight
			hasPrev = false
			continue
		}
		idx, err := f.GlyphIndex(&buf, r)
		if err != nil {
			return nil, fmt.Errorf("glyph %q: %w", r, err)
		}
		if hasPrev {
			if k, err := f.Kern(&buf, prev, idx, ppem, font.HintingNone); err == nil {
				penX += fromFixed(k) * scale
			}
		}
		segs, err := f.LoadGlyph(&buf, idx, ppem, nil)
		if err != nil {
			return nil, fmt.Errorf("load glyph %q: %w", r, err)
		}
		contours := flatten(segs, curveSegments, scale, mgl32.Vec2{penX, penY})
		shapes = append(shapes, ShapesFromContours(contours)...)

		adv, err := f.GlyphAdvance(&buf, idx, ppem, font.HintingNone)
		if err != nil {
			return nil, fmt.Errorf("advance %q: %w", r, err)
		}
		penX += fromFixed(adv) * scale
		prev, hasPrev = idx, true
	}
	return shapes, nil
}

func fromFixed(v fixed.Int26_6) float32 {
	return float32(v) / 64
}

// flatten turns glyph segments into closed polylines. sfnt's y axis points
// down, so it is flipped here.
func flatten(segs sfnt.Segments, curveSegments int, scale float32, origin mgl32.Vec2) [][]mgl32.Vec2 {
	divisions := max(curveSegments, 1)
	pt := func(p fixed.Point26_6) mgl32.Vec2 {
		return mgl32.Vec2{origin[0] + fromFixed(p.X)*scale, origin[1] - fromFixed(p.Y)*scale}
	}
	var contours [][]mgl32.Vec2
	var cur []mgl32.Vec2
	closeContour := func() {
		if len(cur) > 1 && cur[0].ApproxEqual(cur[len(cur)-1]) {
			cur = cur[:len(cur)-1]
		}
		if len(cur) >= 3 {
			contours = append(contours, cur)
		}
		cur = nil
	}
	for _, seg := range segs {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			closeContour()
			cur = append(cur, pt(seg.Args[0]))
		case sfnt.SegmentOpLineTo:
			cur = appendDistinct(cur, pt(seg.Args[0]))
		case sfnt.SegmentOpQuadTo:
			p0 := cur[len(cur)-1]
			c, p1 := pt(seg.Args[0]), pt(seg.Args[1])
			for k := 1; k <= divisions; k++ {
				t := float32(k) / float32(divisions)
				u := 1 - t
				cur = appendDistinct(cur, p0.Mul(u*u).Add(c.Mul(2*u*t)).Add(p1.Mul(t*t)))
			}
		case sfnt.SegmentOpCubeTo:
			p0 := cur[len(cur)-1]
			c0, c1, p1 := pt(seg.Args[0]), pt(seg.Args[1]), pt(seg.Args[2])
			for k := 1; k <= divisions; k++ {
				t := float32(k) / float32(divisions)
				u := 1 - t
				p := p0.Mul(u * u * u).Add(c0.Mul(3 * u * u * t)).Add(c1.Mul(3 * u * t * t)).Add(p1.Mul(t * t * t))
				cur = appendDistinct(cur, p)
			}
		}
	}
	closeContour()
	return contours
}

func appendDistinct(pts []mgl32.Vec2, p mgl32.Vec2) []mgl32.Vec2 {
	if len(pts) > 0 && pts[len(pts)-1].ApproxEqual(p) {
		return pts
	}
	return append(pts, p)
}
