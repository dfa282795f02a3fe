package geometry

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
)

func TestBoxCounts(t *testing.T) {
	g := NewBox(1, 1, 1, 1, 1, 1)
	assert.Equal(t, 24, g.VertexCount())
	assert.Equal(t, 12, g.TriangleCount())

	g = NewBox(1, 1, 1, 5, 5, 5)
	assert.Equal(t, 6*36, g.VertexCount())
	assert.Equal(t, 6*25*2, g.TriangleCount())

	b := g.BoundingBox()
	assert.InDelta(t, -0.5, b.Min[0], 1e-6)
	assert.InDelta(t, 0.5, b.Max[2], 1e-6)
}

func TestBoxWindingMatchesNormals(t *testing.T) {
	g := NewBox(2, 3, 4, 2, 2, 2)
	for i := 0; i < g.TriangleCount(); i++ {
		a, b, c := g.Triangle(i)
		face := g.Positions[b].Sub(g.Positions[a]).Cross(g.Positions[c].Sub(g.Positions[a]))
		assert.Greater(t, face.Dot(g.Normals[a]), float32(0), "triangle %d", i)
	}
}

func TestPlaneFacesPositiveZ(t *testing.T) {
	g := NewPlane(10, 10, 1, 1)
	require.Equal(t, 4, g.VertexCount())
	a, b, c := g.Triangle(0)
	face := g.Positions[b].Sub(g.Positions[a]).Cross(g.Positions[c].Sub(g.Positions[a]))
	assert.Greater(t, face[2], float32(0))
}

func TestTorusCounts(t *testing.T) {
	g := NewTorus(0.3, 0.2, 20, 45)
	assert.Equal(t, 21*46, g.VertexCount())
	assert.Equal(t, 20*45*2, g.TriangleCount())
	b := g.BoundingBox()
	assert.InDelta(t, 0.5, b.Max[0], 1e-5)
	assert.InDelta(t, 0.2, b.Max[2], 1e-5)
}

func TestCenter(t *testing.T) {
	g := NewBox(1, 1, 1, 1, 1, 1).Translate(3, -2, 1).Center()
	c := g.BoundingBox().Center()
	assert.InDelta(t, 0, c.Len(), 1e-6)
}

func TestTriangulateSquareWithHole(t *testing.T) {
	outer := []mgl32.Vec2{{0, 0}, {4, 0}, {4, 4}, {0, 4}}
	hole := []mgl32.Vec2{{1, 1}, {3, 1}, {3, 3}, {1, 3}}
	s := NewShape(outer, hole)
	tris := s.Triangulate()
	pts := s.Points()

	var area float32
	for i := 0; i < len(tris); i += 3 {
		a := cross(pts[tris[i]], pts[tris[i+1]], pts[tris[i+2]]) / 2
		assert.GreaterOrEqual(t, a, float32(0))
		area += a
	}
	assert.InDelta(t, 12, area, 1e-4)
}

func TestShapesFromContoursNestsHoles(t *testing.T) {
	outer := []mgl32.Vec2{{0, 0}, {0, 4}, {4, 4}, {4, 0}} // clockwise
	hole := []mgl32.Vec2{{1, 1}, {3, 1}, {3, 3}, {1, 3}}
	island := []mgl32.Vec2{{1.5, 1.5}, {2.5, 1.5}, {2.5, 2.5}, {1.5, 2.5}}
	shapes := ShapesFromContours([][]mgl32.Vec2{outer, hole, island})
	require.Len(t, shapes, 2)
	assert.Greater(t, SignedArea(shapes[0].Outer), float32(0))
	require.Len(t, shapes[0].Holes, 1)
	assert.Less(t, SignedArea(shapes[0].Holes[0]), float32(0))
	assert.Empty(t, shapes[1].Holes)
}

func TestExtrudeClosedBox(t *testing.T) {
	sq := NewShape([]mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}})
	g := Extrude([]Shape{sq}, ExtrudeOptions{Depth: 2, Steps: 1})
	// two caps of two triangles, four walls of two triangles
	assert.Equal(t, 12, g.TriangleCount())
	b := g.BoundingBox()
	assert.InDelta(t, 0, b.Min[2], 1e-6)
	assert.InDelta(t, 2, b.Max[2], 1e-6)

	// Every normal points away from the box center.
	center := mgl32.Vec3{0.5, 0.5, 1}
	for i := 0; i < g.TriangleCount(); i++ {
		a, bb, c := g.Triangle(i)
		mid := g.Positions[a].Add(g.Positions[bb]).Add(g.Positions[c]).Mul(1.0 / 3)
		assert.Greater(t, g.Normals[a].Dot(mid.Sub(center)), float32(0))
	}
}

func TestExtrudeBevelGrowsOutline(t *testing.T) {
	sq := NewShape([]mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}})
	g := Extrude([]Shape{sq}, ExtrudeOptions{Depth: 1, Steps: 1, BevelEnabled: true, BevelThickness: 0.1, BevelSize: 0.2, BevelSegments: 3})
	b := g.BoundingBox()
	assert.InDelta(t, -0.2, b.Min[0], 1e-5)
	assert.InDelta(t, 1.2, b.Max[1], 1e-5)
	assert.InDelta(t, -0.1, b.Min[2], 1e-5)
	assert.InDelta(t, 1.1, b.Max[2], 1e-5)
}

func TestTextGeometry(t *testing.T) {
	f, err := sfnt.Parse(goregular.TTF)
	require.NoError(t, err)

	opts := TextOptions{
		Size:          0.5,
		CurveSegments: 12,
		ExtrudeOptions: ExtrudeOptions{
			Depth: 0.2, Steps: 1, BevelEnabled: true,
			BevelThickness: 0.03, BevelSize: 0.02, BevelSegments: 5,
		},
	}
	g, err := NewText(f, "Hello", opts)
	require.NoError(t, err)
	require.NotZero(t, g.TriangleCount())
	g.Center()

	b := g.BoundingBox()
	assert.InDelta(t, 0, b.Center().Len(), 1e-4)
	assert.InDelta(t, 0.26, b.Size()[2], 1e-4)
	assert.Greater(t, b.Size()[0], b.Size()[1])
	assert.Len(t, g.Normals, g.VertexCount())
}

func TestTextShapesHoles(t *testing.T) {
	f, err := sfnt.Parse(goregular.TTF)
	require.NoError(t, err)
	shapes, err := TextShapes(f, "o", 1, 8)
	require.NoError(t, err)
	require.Len(t, shapes, 1)
	assert.Len(t, shapes[0].Holes, 1)
}

func TestWireframeEdgesUnique(t *testing.T) {
	g := NewPlane(1, 1, 1, 1)
	assert.Len(t, g.Wireframe(), 5)
}
