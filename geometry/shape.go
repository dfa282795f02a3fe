package geometry

import (
	"slices"

	"github.com/go-gl/mathgl/mgl32"
)

// Shape is a filled outline with optional holes. Outer is counter-clockwise and
// holes are clockwise once normalized by NewShape.
type Shape struct {
	Outer []mgl32.Vec2
	Holes [][]mgl32.Vec2
}

// NewShape orients the outline counter-clockwise and every hole clockwise.
func NewShape(outer []mgl32.Vec2, holes ...[]mgl32.Vec2) Shape {
	s := Shape{Outer: orient(outer, true)}
	for _, h := range holes {
		s.Holes = append(s.Holes, orient(h, false))
	}
	return s
}

func orient(pts []mgl32.Vec2, ccw bool) []mgl32.Vec2 {
	pts = slices.Clone(pts)
	if (SignedArea(pts) > 0) != ccw {
		slices.Reverse(pts)
	}
	return pts
}

// SignedArea is positive for counter-clockwise polygons.
func SignedArea(pts []mgl32.Vec2) float32 {
	var a float32
	for i := range pts {
		p, q := pts[i], pts[(i+1)%len(pts)]
		a += p[0]*q[1] - q[0]*p[1]
	}
	return a / 2
}

// PointInPolygon uses the even-odd rule.
func PointInPolygon(p mgl32.Vec2, poly []mgl32.Vec2) bool {
	in := false
	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if (a[1] > p[1]) != (b[1] > p[1]) &&
			p[0] < (b[0]-a[0])*(p[1]-a[1])/(b[1]-a[1])+a[0] {
			in = !in
		}
	}
	return in
}

// ShapesFromContours groups closed contours into shapes. A contour nested in an
// even number of others is an outline; the rest are holes of their smallest
// enclosing outline.
func ShapesFromContours(contours [][]mgl32.Vec2) []Shape {
	type entry struct {
		pts   []mgl32.Vec2
		area  float32
		depth int
	}
	var entries []entry
	for _, c := range contours {
		if len(c) < 3 {
			continue
		}
		a := SignedArea(c)
		if a == 0 {
			continue
		}
		entries = append(entries, entry{pts: c, area: abs32(a)})
	}
	for i := range entries {
		for j := range entries {
			if i != j && entries[j].area > entries[i].area && PointInPolygon(entries[i].pts[0], entries[j].pts) {
				entries[i].depth++
			}
		}
	}
	var shapes []Shape
	outerOf := map[int]int{}
	for i, e := range entries {
		if e.depth%2 == 0 {
			outerOf[i] = len(shapes)
			shapes = append(shapes, Shape{Outer: orient(e.pts, true)})
		}
	}
	for _, e := range entries {
		if e.depth%2 == 0 {
			continue
		}
		best := -1
		for j, o := range entries {
			if o.depth%2 != 0 || o.area <= e.area || !PointInPolygon(e.pts[0], o.pts) {
				continue
			}
			if best < 0 || o.area < entries[best].area {
				best = j
			}
		}
		if best < 0 {
			continue
		}
		s := &shapes[outerOf[best]]
		s.Holes = append(s.Holes, orient(e.pts, false))
	}
	return shapes
}

// Points returns the outline followed by every hole, the vertex order used by Triangulate.
func (s Shape) Points() []mgl32.Vec2 {
	pts := slices.Clone(s.Outer)
	for _, h := range s.Holes {
		pts = append(pts, h...)
	}
	return pts
}

// Triangulate returns counter-clockwise triangles indexing into s.Points().
// Holes are bridged into the outline and the result is ear clipped.
func (s Shape) Triangulate() []uint32 {
	pts := s.Points()
	ring := make([]int, len(s.Outer))
	for i := range ring {
		ring[i] = i
	}
	type hole struct {
		idx   []int
		right int
	}
	var holes []hole
	off := len(s.Outer)
	for _, h := range s.Holes {
		hh := hole{idx: make([]int, len(h))}
		for i := range h {
			hh.idx[i] = off + i
			if pts[off+i][0] > pts[hh.idx[hh.right]][0] {
				hh.right = i
			}
		}
		holes = append(holes, hh)
		off += len(h)
	}
	slices.SortStableFunc(holes, func(a, b hole) int {
		ax, bx := pts[a.idx[a.right]][0], pts[b.idx[b.right]][0]
		switch {
		case ax > bx:
			return -1
		case ax < bx:
			return 1
		}
		return 0
	})
	for hi, h := range holes {
		var others [][]int
		for _, o := range holes[hi+1:] {
			others = append(others, o.idx)
		}
		ring = bridge(pts, ring, h.idx, h.right, others)
	}
	return earClip(pts, ring)
}

// bridge splices hole into ring through the closest mutually visible vertex pair.
func bridge(pts []mgl32.Vec2, ring, hole []int, start int, others [][]int) []int {
	m := pts[hole[start]]
	loops := append([][]int{ring, hole}, others...)
	best, bestDist := -1, float32(0)
	for i, vi := range ring {
		v := pts[vi]
		d := v.Sub(m).LenSqr()
		if best >= 0 && d >= bestDist {
			continue
		}
		if !visible(pts, m, v, loops) {
			continue
		}
		best, bestDist = i, d
	}
	if best < 0 {
		// Fall back to the nearest vertex; the ear clipper tolerates the overlap.
		for i, vi := range ring {
			d := pts[vi].Sub(m).LenSqr()
			if best < 0 || d < bestDist {
				best, bestDist = i, d
			}
		}
	}
	out := make([]int, 0, len(ring)+len(hole)+2)
	out = append(out, ring[:best+1]...)
	for k := 0; k <= len(hole); k++ {
		out = append(out, hole[(start+k)%len(hole)])
	}
	out = append(out, ring[best])
	out = append(out, ring[best+1:]...)
	return out
}

func visible(pts []mgl32.Vec2, a, b mgl32.Vec2, loops [][]int) bool {
	for _, loop := range loops {
		for i := range loop {
			p, q := pts[loop[i]], pts[loop[(i+1)%len(loop)]]
			if segmentsCross(a, b, p, q) {
				return false
			}
		}
	}
	return true
}

// segmentsCross reports a proper crossing; touching at shared endpoints is allowed.
func segmentsCross(a, b, p, q mgl32.Vec2) bool {
	if a == p || a == q || b == p || b == q {
		return false
	}
	d1 := cross(p, q, a)
	d2 := cross(p, q, b)
	d3 := cross(a, b, p)
	d4 := cross(a, b, q)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

func cross(o, a, b mgl32.Vec2) float32 {
	return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
}

func earClip(pts []mgl32.Vec2, ring []int) []uint32 {
	ring = slices.Clone(ring)
	var tris []uint32
	for len(ring) > 3 {
		n := len(ring)
		clipped := false
		for i := 0; i < n; i++ {
			ia, ib, ic := ring[(i+n-1)%n], ring[i], ring[(i+1)%n]
			a, b, c := pts[ia], pts[ib], pts[ic]
			if cross(a, b, c) <= 0 {
				continue
			}
			if containsOther(pts, ring, a, b, c) {
				continue
			}
			tris = append(tris, uint32(ia), uint32(ib), uint32(ic))
			ring = slices.Delete(ring, i, i+1)
			clipped = true
			break
		}
		if !clipped {
			// Degenerate input: drop the flattest vertex and carry on.
			i := flattest(pts, ring)
			n := len(ring)
			ia, ib, ic := ring[(i+n-1)%n], ring[i], ring[(i+1)%n]
			if cross(pts[ia], pts[ib], pts[ic]) > 0 {
				tris = append(tris, uint32(ia), uint32(ib), uint32(ic))
			}
			ring = slices.Delete(ring, i, i+1)
		}
	}
	if len(ring) == 3 && cross(pts[ring[0]], pts[ring[1]], pts[ring[2]]) > 0 {
		tris = append(tris, uint32(ring[0]), uint32(ring[1]), uint32(ring[2]))
	}
	return tris
}

func containsOther(pts []mgl32.Vec2, ring []int, a, b, c mgl32.Vec2) bool {
	for _, vi := range ring {
		p := pts[vi]
		if p == a || p == b || p == c {
			continue
		}
		if cross(a, b, p) >= 0 && cross(b, c, p) >= 0 && cross(c, a, p) >= 0 {
			return true
		}
	}
	return false
}

func flattest(pts []mgl32.Vec2, ring []int) int {
	best, bestArea := 0, float32(0)
	n := len(ring)
	for i := range ring {
		a := abs32(cross(pts[ring[(i+n-1)%n]], pts[ring[i]], pts[ring[(i+1)%n]]))
		if i == 0 || a < bestArea {
			best, bestArea = i, a
		}
	}
	return best
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
