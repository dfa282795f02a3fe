package scenekit

import (
	"image"
	"math"

	"github.com/chewxy/math32"
	"github.com/gekko3d/scenekit/geometry"
	"github.com/gekko3d/scenekit/raster"
	"github.com/go-gl/mathgl/mgl32"
)

// varying slots shared by the mesh shaders
const (
	vNormal   = 0 // 3
	vUV       = 3 // 2
	vColor    = 5 // 3
	vPosition = 8 // 3
)

// SoftwareRenderer rasterizes frames on the CPU.
type SoftwareRenderer struct {
	width, height int
	pixelRatio    float32

	fb    *raster.Framebuffer
	img   *image.RGBA
	verts []raster.Vertex
}

func NewSoftwareRenderer(width, height int) *SoftwareRenderer {
	r := &SoftwareRenderer{pixelRatio: 1}
	r.SetSize(width, height)
	return r
}

func (r *SoftwareRenderer) SetSize(width, height int) {
	r.width, r.height = max(width, 1), max(height, 1)
	r.resize()
}

func (r *SoftwareRenderer) SetPixelRatio(ratio float32) {
	if ratio <= 0 {
		ratio = 1
	}
	r.pixelRatio = ratio
	r.resize()
}

func (r *SoftwareRenderer) Size() (int, int)    { return r.width, r.height }
func (r *SoftwareRenderer) PixelRatio() float32 { return r.pixelRatio }

func (r *SoftwareRenderer) DrawingBufferSize() (int, int) {
	w := int(math.Floor(float64(float32(r.width) * r.pixelRatio)))
	h := int(math.Floor(float64(float32(r.height) * r.pixelRatio)))
	return max(w, 1), max(h, 1)
}

func (r *SoftwareRenderer) resize() {
	w, h := r.DrawingBufferSize()
	if r.fb == nil {
		r.fb = raster.NewFramebuffer(w, h)
		return
	}
	r.fb.Resize(w, h)
}

// Image returns the last rendered frame. The image is reused between frames.
func (r *SoftwareRenderer) Image() *image.RGBA {
	if r.img == nil {
		r.img = r.fb.ToImage(nil)
	}
	return r.img
}

func (r *SoftwareRenderer) Render(frame *Frame) error {
	r.fb.Clear(frame.ClearColor)
	viewProj := frame.Projection.Mul4(frame.View)
	for i := range frame.Items {
		item := &frame.Items[i]
		switch item.Kind {
		case DrawPoints:
			r.drawPoints(frame, item)
		default:
			r.drawMesh(frame, item, viewProj)
		}
	}
	r.img = r.fb.ToImage(r.img)
	return nil
}

func pipelineState(opts *MaterialOptions) raster.State {
	st := raster.State{
		DepthTest:  opts.DepthTest,
		DepthWrite: opts.DepthWrite,
		AlphaTest:  opts.AlphaTest,
	}
	switch {
	case opts.Blending == AdditiveBlending:
		st.Blend = raster.BlendAdditive
	case opts.Transparent && opts.Blending != NoBlending:
		st.Blend = raster.BlendNormal
	}
	switch opts.Side {
	case FrontSide:
		st.Cull = raster.CullBack
	case BackSide:
		st.Cull = raster.CullFront
	}
	return st
}

// transformVertices fills r.verts with clip positions and world-space varyings.
func (r *SoftwareRenderer) transformVertices(g *geometry.BufferGeometry, item *DrawItem, viewProj mgl32.Mat4) []raster.Vertex {
	n := len(g.Positions)
	if cap(r.verts) < n {
		r.verts = make([]raster.Vertex, n)
	}
	verts := r.verts[:n]
	normalMat := item.Model.Mat3().Inv().Transpose()
	skinned := item.Skin != nil && len(g.Joints) == n && len(g.Weights) == n

	for i, p := range g.Positions {
		model, nm := item.Model, normalMat
		if skinned {
			if m, ok := skinMatrix(item.Skin, g.Joints[i], g.Weights[i]); ok {
				model, nm = m, m.Mat3()
			}
		}
		world := model.Mul4x1(p.Vec4(1))
		v := &verts[i]
		v.Clip = viewProj.Mul4x1(world)
		v.Varyings = raster.Varyings{}
		if i < len(g.Normals) {
			wn := nm.Mul3x1(g.Normals[i])
			v.Varyings[vNormal], v.Varyings[vNormal+1], v.Varyings[vNormal+2] = wn[0], wn[1], wn[2]
		}
		if i < len(g.UVs) {
			v.Varyings[vUV], v.Varyings[vUV+1] = g.UVs[i][0], g.UVs[i][1]
		}
		c := mgl32.Vec3{1, 1, 1}
		if i < len(g.Colors) {
			c = g.Colors[i]
		}
		v.Varyings[vColor], v.Varyings[vColor+1], v.Varyings[vColor+2] = c[0], c[1], c[2]
		v.Varyings[vPosition], v.Varyings[vPosition+1], v.Varyings[vPosition+2] = world[0], world[1], world[2]
	}
	return verts
}

func skinMatrix(joints []mgl32.Mat4, idx [4]uint16, w mgl32.Vec4) (mgl32.Mat4, bool) {
	var m mgl32.Mat4
	total := float32(0)
	for k := 0; k < 4; k++ {
		if w[k] == 0 || int(idx[k]) >= len(joints) {
			continue
		}
		m = m.Add(joints[idx[k]].Mul(w[k]))
		total += w[k]
	}
	if total == 0 {
		return m, false
	}
	return m.Mul(1 / total), true
}

func (r *SoftwareRenderer) drawMesh(frame *Frame, item *DrawItem, viewProj mgl32.Mat4) {
	g := item.Geometry
	if len(g.Positions) == 0 {
		return
	}
	st := pipelineState(item.Material.Options())
	verts := r.transformVertices(g, item, viewProj)

	if basic, ok := item.Material.(*BasicMaterial); ok && basic.Wireframe {
		st.Cull = raster.CullNone
		shade := r.basicShader(frame, basic)
		for _, e := range g.Wireframe() {
			r.fb.DrawLine(verts[e[0]], verts[e[1]], st, shade)
		}
		return
	}

	shade := r.meshShader(frame, item.Material)
	if shade == nil {
		return
	}
	for t := 0; t < g.TriangleCount(); t++ {
		a, b, c := g.Triangle(t)
		r.fb.DrawTriangle(verts[a], verts[b], verts[c], st, shade)
	}
}

func (r *SoftwareRenderer) meshShader(frame *Frame, mat Material) raster.FragmentShader {
	switch m := mat.(type) {
	case *BasicMaterial:
		return r.basicShader(frame, m)
	case *MatcapMaterial:
		return r.matcapShader(frame, m)
	case *StandardMaterial:
		return r.standardShader(frame, m)
	}
	return nil
}

func frameTexture(frame *Frame, id AssetId) *raster.Texture {
	if id == "" || frame.Assets == nil {
		return nil
	}
	return frame.Assets.Texture(id)
}

func varyingVec3(v *raster.Varyings, at int) mgl32.Vec3 {
	return mgl32.Vec3{v[at], v[at+1], v[at+2]}
}

func surfaceNormal(v *raster.Varyings, front bool) mgl32.Vec3 {
	n := varyingVec3(v, vNormal)
	l := n.Len()
	if l == 0 {
		return mgl32.Vec3{0, 0, 1}
	}
	n = n.Mul(1 / l)
	if !front {
		n = n.Mul(-1)
	}
	return n
}

func (r *SoftwareRenderer) basicShader(frame *Frame, m *BasicMaterial) raster.FragmentShader {
	tex := frameTexture(frame, m.Map)
	return func(v *raster.Varyings, _ bool) (mgl32.Vec4, bool) {
		c := m.Color.Vec4(m.Opacity)
		if m.VertexColors {
			c = mulRGB(c, varyingVec3(v, vColor))
		}
		if tex != nil {
			c = mulVec4(c, tex.Sample(v[vUV], v[vUV+1]))
		}
		return c, true
	}
}

func (r *SoftwareRenderer) matcapShader(frame *Frame, m *MatcapMaterial) raster.FragmentShader {
	tex := frameTexture(frame, m.Matcap)
	view := frame.View.Mat3()
	return func(v *raster.Varyings, front bool) (mgl32.Vec4, bool) {
		n := view.Mul3x1(surfaceNormal(v, front))
		c := m.Color.Vec4(m.Opacity)
		if tex != nil {
			c = mulVec4(c, tex.Sample(n[0]*0.495+0.5, n[1]*0.495+0.5))
		}
		return c, true
	}
}

func (r *SoftwareRenderer) standardShader(frame *Frame, m *StandardMaterial) raster.FragmentShader {
	tex := frameTexture(frame, m.Map)
	rough := mgl32.Clamp(m.Roughness, 0.04, 1)
	shininess := mgl32.Clamp(2/(rough*rough*rough*rough)-2, 1, 2048)
	metal := mgl32.Clamp(m.Metalness, 0, 1)
	lights := frame.Lights
	eye := frame.CameraPosition

	return func(v *raster.Varyings, front bool) (mgl32.Vec4, bool) {
		base := m.Color.Vec4(m.Opacity)
		if tex != nil {
			base = mulVec4(base, tex.Sample(v[vUV], v[vUV+1]))
		}
		albedo := base.Vec3()
		diffuse := albedo.Mul(1 - metal)
		specular := mgl32.Vec3{0.04, 0.04, 0.04}.Mul(1 - metal).Add(albedo.Mul(metal))

		n := surfaceNormal(v, front)
		p := varyingVec3(v, vPosition)
		viewDir := eye.Sub(p)
		if viewDir.Len() > 0 {
			viewDir = viewDir.Normalize()
		}

		var out mgl32.Vec3
		for _, l := range lights {
			var dir mgl32.Vec3
			radiance := l.Radiance
			switch l.Type {
			case LightTypeAmbient:
				out = out.Add(mulVec3(diffuse, radiance))
				continue
			case LightTypeDirectional:
				dir = l.Direction
			case LightTypePoint:
				d := l.Position.Sub(p)
				dist := d.Len()
				if dist == 0 {
					continue
				}
				dir = d.Mul(1 / dist)
				radiance = radiance.Mul(pointFalloff(dist, l.Range))
			}
			ndl := n.Dot(dir)
			if ndl <= 0 {
				continue
			}
			h := dir.Add(viewDir)
			spec := float32(0)
			if h.Len() > 0 {
				spec = math32.Pow(max(n.Dot(h.Normalize()), 0), shininess) * (shininess + 2) / 8
			}
			lit := diffuse.Add(specular.Mul(spec)).Mul(ndl)
			out = out.Add(mulVec3(lit, radiance))
		}
		return out.Vec4(base[3]), true
	}
}

// pointFalloff is inverse-square attenuation windowed to zero at rng.
func pointFalloff(dist, rng float32) float32 {
	att := 1 / max(dist*dist, 0.01)
	if rng > 0 {
		x := dist / rng
		w := mgl32.Clamp(1-x*x*x*x, 0, 1)
		att *= w * w
	}
	return att
}

func (r *SoftwareRenderer) drawPoints(frame *Frame, item *DrawItem) {
	m, ok := item.Material.(*PointsMaterial)
	if !ok {
		return
	}
	g := item.Geometry
	st := pipelineState(&m.MaterialOptions)
	st.Cull = raster.CullNone
	mapTex := frameTexture(frame, m.Map)
	alphaTex := frameTexture(frame, m.AlphaMap)
	perspective := frame.Projection[15] == 0
	scale := float32(r.height) / 2

	shade := func(v *raster.Varyings, pc mgl32.Vec2) (mgl32.Vec4, bool) {
		c := m.Color.Vec4(m.Opacity)
		if m.VertexColors {
			c = mulRGB(c, varyingVec3(v, vColor))
		}
		if mapTex != nil {
			c = mulVec4(c, mapTex.Sample(pc[0], 1-pc[1]))
		}
		if alphaTex != nil {
			c[3] *= alphaTex.Sample(pc[0], 1-pc[1])[1]
		}
		return c, true
	}

	for i, p := range g.Positions {
		world := item.Model.Mul4x1(p.Vec4(1))
		view := frame.View.Mul4x1(world)
		var vert raster.Vertex
		vert.Clip = frame.Projection.Mul4x1(view)
		c := mgl32.Vec3{1, 1, 1}
		if i < len(g.Colors) {
			c = g.Colors[i]
		}
		vert.Varyings[vColor], vert.Varyings[vColor+1], vert.Varyings[vColor+2] = c[0], c[1], c[2]

		size := m.Size * r.pixelRatio
		if m.SizeAttenuation && perspective {
			if view[2] >= 0 {
				continue
			}
			size *= scale / -view[2]
		}
		r.fb.DrawPoint(vert, size, st, shade)
	}
}

func mulVec4(a, b mgl32.Vec4) mgl32.Vec4 {
	return mgl32.Vec4{a[0] * b[0], a[1] * b[1], a[2] * b[2], a[3] * b[3]}
}

func mulRGB(a mgl32.Vec4, b mgl32.Vec3) mgl32.Vec4 {
	return mgl32.Vec4{a[0] * b[0], a[1] * b[1], a[2] * b[2], a[3]}
}

func mulVec3(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}
