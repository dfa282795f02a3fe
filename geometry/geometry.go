// Package geometry builds indexed vertex buffers for primitive shapes and text.
package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// BufferGeometry is a vertex soup with optional index buffer. Attributes other
// than Positions are either empty or have one entry per position.
type BufferGeometry struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	UVs       []mgl32.Vec2
	Colors    []mgl32.Vec3
	// Joints and Weights carry skinning influences, four per vertex.
	Joints  [][4]uint16
	Weights []mgl32.Vec4
	// Indices are triangle corners; nil means consecutive triples of Positions.
	Indices []uint32
}

type Box3 struct {
	Min, Max mgl32.Vec3
}

func (b Box3) Empty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

func (b Box3) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

func (b Box3) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

func (g *BufferGeometry) VertexCount() int {
	return len(g.Positions)
}

func (g *BufferGeometry) TriangleCount() int {
	if g.Indices != nil {
		return len(g.Indices) / 3
	}
	return len(g.Positions) / 3
}

// Triangle returns the vertex indices of triangle i.
func (g *BufferGeometry) Triangle(i int) (uint32, uint32, uint32) {
	if g.Indices != nil {
		return g.Indices[3*i], g.Indices[3*i+1], g.Indices[3*i+2]
	}
	return uint32(3 * i), uint32(3*i + 1), uint32(3*i + 2)
}

func (g *BufferGeometry) BoundingBox() Box3 {
	inf := float32(math.MaxFloat32)
	b := Box3{Min: mgl32.Vec3{inf, inf, inf}, Max: mgl32.Vec3{-inf, -inf, -inf}}
	for _, p := range g.Positions {
		for k := 0; k < 3; k++ {
			b.Min[k] = min(b.Min[k], p[k])
			b.Max[k] = max(b.Max[k], p[k])
		}
	}
	return b
}

func (g *BufferGeometry) Translate(x, y, z float32) *BufferGeometry {
	d := mgl32.Vec3{x, y, z}
	for i := range g.Positions {
		g.Positions[i] = g.Positions[i].Add(d)
	}
	return g
}

// Center moves the geometry so its bounding box is centered on the origin.
func (g *BufferGeometry) Center() *BufferGeometry {
	b := g.BoundingBox()
	if b.Empty() {
		return g
	}
	c := b.Center()
	return g.Translate(-c[0], -c[1], -c[2])
}

// ComputeVertexNormals sets area weighted vertex normals. Shared indexed
// vertices are smoothed; non-indexed triangles get flat normals.
func (g *BufferGeometry) ComputeVertexNormals() {
	g.Normals = make([]mgl32.Vec3, len(g.Positions))
	for t := 0; t < g.TriangleCount(); t++ {
		a, b, c := g.Triangle(t)
		pa, pb, pc := g.Positions[a], g.Positions[b], g.Positions[c]
		n := pb.Sub(pa).Cross(pc.Sub(pa))
		g.Normals[a] = g.Normals[a].Add(n)
		g.Normals[b] = g.Normals[b].Add(n)
		g.Normals[c] = g.Normals[c].Add(n)
	}
	for i, n := range g.Normals {
		if l := n.Len(); l > 0 {
			g.Normals[i] = n.Mul(1 / l)
		}
	}
}

// Wireframe returns the unique edges of every triangle as index pairs.
func (g *BufferGeometry) Wireframe() [][2]uint32 {
	seen := make(map[[2]uint32]struct{})
	var edges [][2]uint32
	add := func(a, b uint32) {
		if a > b {
			a, b = b, a
		}
		k := [2]uint32{a, b}
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		edges = append(edges, k)
	}
	for t := 0; t < g.TriangleCount(); t++ {
		a, b, c := g.Triangle(t)
		add(a, b)
		add(b, c)
		add(c, a)
	}
	return edges
}
