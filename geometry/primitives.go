package geometry

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// NewBox builds an axis-aligned box centered on the origin with the given
// number of segments along each axis. Each face carries its own vertices.
func NewBox(width, height, depth float32, widthSegments, heightSegments, depthSegments int) *BufferGeometry {
	ws, hs, ds := max(widthSegments, 1), max(heightSegments, 1), max(depthSegments, 1)
	g := &BufferGeometry{}
	const x, y, z = 0, 1, 2
	g.boxFace(z, y, x, -1, -1, depth, height, width, ds, hs)
	g.boxFace(z, y, x, 1, -1, depth, height, -width, ds, hs)
	g.boxFace(x, z, y, 1, 1, width, depth, height, ws, ds)
	g.boxFace(x, z, y, 1, -1, width, depth, -height, ws, ds)
	g.boxFace(x, y, z, 1, -1, width, height, depth, ws, hs)
	g.boxFace(x, y, z, -1, -1, width, height, -depth, ws, hs)
	return g
}

func (g *BufferGeometry) boxFace(u, v, w int, udir, vdir, width, height, depth float32, gridX, gridY int) {
	base := uint32(len(g.Positions))
	segW := width / float32(gridX)
	segH := height / float32(gridY)
	normalW := float32(1)
	if depth < 0 {
		normalW = -1
	}
	for iy := 0; iy <= gridY; iy++ {
		py := float32(iy)*segH - height/2
		for ix := 0; ix <= gridX; ix++ {
			px := float32(ix)*segW - width/2
			var pos, n mgl32.Vec3
			pos[u] = px * udir
			pos[v] = py * vdir
			pos[w] = depth / 2
			n[w] = normalW
			g.Positions = append(g.Positions, pos)
			g.Normals = append(g.Normals, n)
			g.UVs = append(g.UVs, mgl32.Vec2{float32(ix) / float32(gridX), 1 - float32(iy)/float32(gridY)})
		}
	}
	row := uint32(gridX + 1)
	for iy := uint32(0); iy < uint32(gridY); iy++ {
		for ix := uint32(0); ix < uint32(gridX); ix++ {
			a := base + ix + row*iy
			b := base + ix + row*(iy+1)
			c := base + ix + 1 + row*(iy+1)
			d := base + ix + 1 + row*iy
			g.Indices = append(g.Indices, a, b, d, b, c, d)
		}
	}
}

// NewPlane builds a plane in the XY plane facing +Z.
func NewPlane(width, height float32, widthSegments, heightSegments int) *BufferGeometry {
	gridX, gridY := max(widthSegments, 1), max(heightSegments, 1)
	segW := width / float32(gridX)
	segH := height / float32(gridY)
	g := &BufferGeometry{}
	for iy := 0; iy <= gridY; iy++ {
		y := float32(iy)*segH - height/2
		for ix := 0; ix <= gridX; ix++ {
			x := float32(ix)*segW - width/2
			g.Positions = append(g.Positions, mgl32.Vec3{x, -y, 0})
			g.Normals = append(g.Normals, mgl32.Vec3{0, 0, 1})
			g.UVs = append(g.UVs, mgl32.Vec2{float32(ix) / float32(gridX), 1 - float32(iy)/float32(gridY)})
		}
	}
	row := uint32(gridX + 1)
	for iy := uint32(0); iy < uint32(gridY); iy++ {
		for ix := uint32(0); ix < uint32(gridX); ix++ {
			a := ix + row*iy
			b := ix + row*(iy+1)
			c := ix + 1 + row*(iy+1)
			d := ix + 1 + row*iy
			g.Indices = append(g.Indices, a, b, d, b, c, d)
		}
	}
	return g
}

// NewTorus builds a full torus around the Z axis.
func NewTorus(radius, tube float32, radialSegments, tubularSegments int) *BufferGeometry {
	radial, tubular := max(radialSegments, 3), max(tubularSegments, 3)
	g := &BufferGeometry{}
	for j := 0; j <= radial; j++ {
		v := float32(j) / float32(radial) * 2 * math32.Pi
		for i := 0; i <= tubular; i++ {
			u := float32(i) / float32(tubular) * 2 * math32.Pi
			ring := radius + tube*math32.Cos(v)
			p := mgl32.Vec3{ring * math32.Cos(u), ring * math32.Sin(u), tube * math32.Sin(v)}
			center := mgl32.Vec3{radius * math32.Cos(u), radius * math32.Sin(u), 0}
			g.Positions = append(g.Positions, p)
			g.Normals = append(g.Normals, p.Sub(center).Normalize())
			g.UVs = append(g.UVs, mgl32.Vec2{float32(i) / float32(tubular), float32(j) / float32(radial)})
		}
	}
	row := uint32(tubular + 1)
	for j := uint32(1); j <= uint32(radial); j++ {
		for i := uint32(1); i <= uint32(tubular); i++ {
			a := row*j + i - 1
			b := row*(j-1) + i - 1
			c := row*(j-1) + i
			d := row*j + i
			g.Indices = append(g.Indices, a, b, d, b, c, d)
		}
	}
	return g
}

// NewSphere builds a UV sphere centered on the origin.
func NewSphere(radius float32, widthSegments, heightSegments int) *BufferGeometry {
	ws, hs := max(widthSegments, 3), max(heightSegments, 2)
	g := &BufferGeometry{}
	for iy := 0; iy <= hs; iy++ {
		v := float32(iy) / float32(hs)
		for ix := 0; ix <= ws; ix++ {
			u := float32(ix) / float32(ws)
			phi := u * 2 * math32.Pi
			theta := v * math32.Pi
			n := mgl32.Vec3{
				-math32.Cos(phi) * math32.Sin(theta),
				math32.Cos(theta),
				math32.Sin(phi) * math32.Sin(theta),
			}
			g.Positions = append(g.Positions, n.Mul(radius))
			g.Normals = append(g.Normals, n)
			g.UVs = append(g.UVs, mgl32.Vec2{u, 1 - v})
		}
	}
	row := uint32(ws + 1)
	for iy := uint32(0); iy < uint32(hs); iy++ {
		for ix := uint32(0); ix < uint32(ws); ix++ {
			a := iy*row + ix + 1
			b := iy*row + ix
			c := (iy+1)*row + ix
			d := (iy+1)*row + ix + 1
			if iy != 0 {
				g.Indices = append(g.Indices, a, b, d)
			}
			if iy != uint32(hs)-1 {
				g.Indices = append(g.Indices, b, c, d)
			}
		}
	}
	return g
}

// NewPoints builds a non-indexed point cloud.
func NewPoints(positions []mgl32.Vec3, colors []mgl32.Vec3) *BufferGeometry {
	return &BufferGeometry{Positions: positions, Colors: colors}
}
