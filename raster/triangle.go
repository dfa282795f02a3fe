package raster

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const minW = 1e-6

type screenVertex struct {
	x, y, z float32
	invW    float32
	v       Varyings // varyings divided by w
}

func lerpVertex(a, b Vertex, t float32) Vertex {
	out := Vertex{Clip: a.Clip.Add(b.Clip.Sub(a.Clip).Mul(t))}
	for i := range out.Varyings {
		out.Varyings[i] = a.Varyings[i] + (b.Varyings[i]-a.Varyings[i])*t
	}
	return out
}

// clipNear clips a polygon against z >= -w and w > 0.
func clipNear(in []Vertex, out []Vertex) []Vertex {
	out = out[:0]
	dist := func(v Vertex) float32 { return v.Clip[2] + v.Clip[3] }
	for i := range in {
		cur := in[i]
		next := in[(i+1)%len(in)]
		dc, dn := dist(cur), dist(next)
		if dc >= 0 {
			out = append(out, cur)
		}
		if (dc >= 0) != (dn >= 0) {
			out = append(out, lerpVertex(cur, next, dc/(dc-dn)))
		}
	}
	return out
}

func (fb *Framebuffer) project(v Vertex) screenVertex {
	w := v.Clip[3]
	if w < minW {
		w = minW
	}
	invW := 1 / w
	sv := screenVertex{
		x:    (v.Clip[0]*invW*0.5 + 0.5) * float32(fb.Width),
		y:    (0.5 - v.Clip[1]*invW*0.5) * float32(fb.Height),
		z:    v.Clip[2]*invW*0.5 + 0.5,
		invW: invW,
	}
	for i := range v.Varyings {
		sv.v[i] = v.Varyings[i] * invW
	}
	return sv
}

// DrawTriangle rasterizes one clip-space triangle. Counter-clockwise winding in
// normalized device coordinates is front facing.
func (fb *Framebuffer) DrawTriangle(a, b, c Vertex, st State, shade FragmentShader) {
	if fb.Width == 0 || fb.Height == 0 {
		return
	}
	var inBuf, outBuf [8]Vertex
	in := append(inBuf[:0], a, b, c)
	poly := clipNear(in, outBuf[:0])
	if len(poly) < 3 {
		return
	}
	s0 := fb.project(poly[0])
	for i := 1; i+1 < len(poly); i++ {
		fb.rasterize(s0, fb.project(poly[i]), fb.project(poly[i+1]), st, shade)
	}
}

func (fb *Framebuffer) rasterize(a, b, c screenVertex, st State, shade FragmentShader) {
	area := edge(a.x, a.y, b.x, b.y, c.x, c.y)
	if area == 0 || area != area {
		return
	}
	// y is flipped in window space, so front faces have negative area here.
	front := area < 0
	switch st.Cull {
	case CullBack:
		if !front {
			return
		}
	case CullFront:
		if front {
			return
		}
	}

	minX := max(0, int(math.Floor(float64(min(a.x, b.x, c.x)))))
	maxX := min(fb.Width-1, int(math.Ceil(float64(max(a.x, b.x, c.x)))))
	minY := max(0, int(math.Floor(float64(min(a.y, b.y, c.y)))))
	maxY := min(fb.Height-1, int(math.Ceil(float64(max(a.y, b.y, c.y)))))
	if minX > maxX || minY > maxY {
		return
	}

	invArea := 1 / area
	var vary Varyings
	for py := minY; py <= maxY; py++ {
		y := float32(py) + 0.5
		for px := minX; px <= maxX; px++ {
			x := float32(px) + 0.5
			w0 := edge(b.x, b.y, c.x, c.y, x, y) * invArea
			w1 := edge(c.x, c.y, a.x, a.y, x, y) * invArea
			w2 := edge(a.x, a.y, b.x, b.y, x, y) * invArea
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			z := w0*a.z + w1*b.z + w2*c.z
			if z < 0 || z > 1 {
				continue
			}
			i := py*fb.Width + px
			if st.DepthTest && z >= fb.Depth[i] {
				continue
			}
			invW := w0*a.invW + w1*b.invW + w2*c.invW
			if invW <= 0 {
				continue
			}
			wc := 1 / invW
			for k := range vary {
				vary[k] = (w0*a.v[k] + w1*b.v[k] + w2*c.v[k]) * wc
			}
			fb.shadeFragment(i, z, &vary, front, st, shade)
		}
	}
}

func (fb *Framebuffer) shadeFragment(i int, z float32, vary *Varyings, front bool, st State, shade FragmentShader) {
	col, keep := shade(vary, front)
	if !keep || col[3] < st.AlphaTest {
		return
	}
	fb.blend(i, col, st.Blend)
	if st.DepthWrite {
		fb.Depth[i] = z
	}
}

func edge(ax, ay, bx, by, px, py float32) float32 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

// DrawLine rasterizes a clip-space segment one pixel wide.
func (fb *Framebuffer) DrawLine(a, b Vertex, st State, shade FragmentShader) {
	if fb.Width == 0 || fb.Height == 0 {
		return
	}
	da, db := a.Clip[2]+a.Clip[3], b.Clip[2]+b.Clip[3]
	if da < 0 && db < 0 {
		return
	}
	if da < 0 {
		a = lerpVertex(a, b, da/(da-db))
	} else if db < 0 {
		b = lerpVertex(a, b, da/(da-db))
	}
	sa, sb := fb.project(a), fb.project(b)
	dx, dy := sb.x-sa.x, sb.y-sa.y
	steps := int(math.Ceil(float64(max(abs32(dx), abs32(dy)))))
	if steps == 0 {
		steps = 1
	}
	var vary Varyings
	for s := 0; s <= steps; s++ {
		t := float32(s) / float32(steps)
		px := int(math.Floor(float64(sa.x + dx*t)))
		py := int(math.Floor(float64(sa.y + dy*t)))
		if px < 0 || py < 0 || px >= fb.Width || py >= fb.Height {
			continue
		}
		z := sa.z + (sb.z-sa.z)*t
		if z < 0 || z > 1 {
			continue
		}
		i := py*fb.Width + px
		if st.DepthTest && z >= fb.Depth[i] {
			continue
		}
		invW := sa.invW + (sb.invW-sa.invW)*t
		wc := 1 / invW
		for k := range vary {
			vary[k] = (sa.v[k] + (sb.v[k]-sa.v[k])*t) * wc
		}
		fb.shadeFragment(i, z, &vary, true, st, shade)
	}
}

// DrawPoint rasterizes a square sprite of size pixels centered on the projected vertex.
func (fb *Framebuffer) DrawPoint(p Vertex, size float32, st State, shade PointShader) {
	if fb.Width == 0 || fb.Height == 0 || size <= 0 {
		return
	}
	w := p.Clip[3]
	if w < minW || p.Clip[2] < -w || p.Clip[2] > w {
		return
	}
	sp := fb.project(p)
	half := size / 2
	minX := max(0, int(math.Floor(float64(sp.x-half))))
	maxX := min(fb.Width-1, int(math.Ceil(float64(sp.x+half)))-1)
	minY := max(0, int(math.Floor(float64(sp.y-half))))
	maxY := min(fb.Height-1, int(math.Ceil(float64(sp.y+half)))-1)
	vary := p.Varyings
	for py := minY; py <= maxY; py++ {
		cy := float32(py) + 0.5
		v := (cy - (sp.y - half)) / size
		if v < 0 || v > 1 {
			continue
		}
		for px := minX; px <= maxX; px++ {
			cx := float32(px) + 0.5
			u := (cx - (sp.x - half)) / size
			if u < 0 || u > 1 {
				continue
			}
			i := py*fb.Width + px
			if st.DepthTest && sp.z >= fb.Depth[i] {
				continue
			}
			col, keep := shade(&vary, mgl32.Vec2{u, v})
			if !keep || col[3] < st.AlphaTest {
				continue
			}
			fb.blend(i, col, st.Blend)
			if st.DepthWrite {
				fb.Depth[i] = sp.z
			}
		}
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
