package geometry

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// ExtrudeOptions controls how shapes are pushed along +Z.
type ExtrudeOptions struct {
	Depth          float32
	Steps          int
	BevelEnabled   bool
	BevelThickness float32
	BevelSize      float32
	BevelOffset    float32
	BevelSegments  int
}

type layer struct {
	z, offset float32
}

func (o ExtrudeOptions) layers() []layer {
	steps := max(o.Steps, 1)
	var ls []layer
	segs := max(o.BevelSegments, 1)
	if o.BevelEnabled {
		for b := 0; b < segs; b++ {
			t := float32(b) / float32(segs) * math32.Pi / 2
			ls = append(ls, layer{z: -o.BevelThickness * math32.Cos(t), offset: o.BevelSize*math32.Sin(t) + o.BevelOffset})
		}
	}
	side := float32(0)
	if o.BevelEnabled {
		side = o.BevelSize + o.BevelOffset
	}
	for s := 0; s <= steps; s++ {
		ls = append(ls, layer{z: o.Depth / float32(steps) * float32(s), offset: side})
	}
	if o.BevelEnabled {
		for b := segs - 1; b >= 0; b-- {
			t := float32(b) / float32(segs) * math32.Pi / 2
			ls = append(ls, layer{z: o.Depth + o.BevelThickness*math32.Cos(t), offset: o.BevelSize*math32.Sin(t) + o.BevelOffset})
		}
	}
	return ls
}

// Extrude turns flat shapes into closed solids: a front cap at the lowest z, a
// back cap at the highest z and side walls through every bevel ring. The result
// is non-indexed with flat normals.
func Extrude(shapes []Shape, opts ExtrudeOptions) *BufferGeometry {
	g := &BufferGeometry{}
	ls := opts.layers()
	for _, s := range shapes {
		extrudeShape(g, s, ls)
	}
	g.ComputeVertexNormals()
	return g
}

func extrudeShape(g *BufferGeometry, s Shape, ls []layer) {
	tris := s.Triangulate()
	pts := s.Points()
	rings := append([][]mgl32.Vec2{s.Outer}, s.Holes...)

	moves := make([]mgl32.Vec2, 0, len(pts))
	for _, r := range rings {
		moves = append(moves, bevelVectors(r)...)
	}
	at := func(l layer, i int) mgl32.Vec3 {
		p := pts[i].Add(moves[i].Mul(l.offset))
		return mgl32.Vec3{p[0], p[1], l.z}
	}
	emit := func(a, b, c mgl32.Vec3, ua, ub, uc mgl32.Vec2) {
		g.Positions = append(g.Positions, a, b, c)
		g.UVs = append(g.UVs, ua, ub, uc)
	}
	uvOf := func(v mgl32.Vec3) mgl32.Vec2 { return mgl32.Vec2{v[0], v[1]} }

	front, back := ls[0], ls[len(ls)-1]
	for t := 0; t+2 < len(tris); t += 3 {
		a, b, c := at(front, int(tris[t])), at(front, int(tris[t+1])), at(front, int(tris[t+2]))
		emit(c, b, a, uvOf(c), uvOf(b), uvOf(a))
		a, b, c = at(back, int(tris[t])), at(back, int(tris[t+1])), at(back, int(tris[t+2]))
		emit(a, b, c, uvOf(a), uvOf(b), uvOf(c))
	}

	base := 0
	for _, r := range rings {
		n := len(r)
		for li := 0; li+1 < len(ls); li++ {
			for i := 0; i < n; i++ {
				j := (i + 1) % n
				a := at(ls[li], base+i)
				b := at(ls[li], base+j)
				c := at(ls[li+1], base+j)
				d := at(ls[li+1], base+i)
				ua, ub := mgl32.Vec2{a[0] + a[1], a[2]}, mgl32.Vec2{b[0] + b[1], b[2]}
				uc, ud := mgl32.Vec2{c[0] + c[1], c[2]}, mgl32.Vec2{d[0] + d[1], d[2]}
				emit(a, b, d, ua, ub, ud)
				emit(b, c, d, ub, uc, ud)
			}
		}
		base += n
	}
}

// bevelVectors returns per-vertex miter directions that move both adjacent
// edges outward from the filled region by one unit.
func bevelVectors(ring []mgl32.Vec2) []mgl32.Vec2 {
	n := len(ring)
	out := make([]mgl32.Vec2, n)
	for i := range ring {
		prev, cur, next := ring[(i+n-1)%n], ring[i], ring[(i+1)%n]
		n1 := edgeNormal(prev, cur)
		n2 := edgeNormal(cur, next)
		sum := n1.Add(n2)
		denom := 1 + n1.Dot(n2)
		if denom < 1e-3 {
			out[i] = n1
			continue
		}
		v := sum.Mul(1 / denom)
		// Limit spikes at very sharp corners.
		if l := v.Len(); l > 2 {
			v = v.Mul(2 / l)
		}
		out[i] = v
	}
	return out
}

func edgeNormal(a, b mgl32.Vec2) mgl32.Vec2 {
	d := b.Sub(a)
	l := d.Len()
	if l == 0 {
		return mgl32.Vec2{}
	}
	return mgl32.Vec2{d[1] / l, -d[0] / l}
}
