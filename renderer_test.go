package scenekit

import (
	"image/color"
	"testing"

	"github.com/gekko3d/scenekit/geometry"
	"github.com/gekko3d/scenekit/raster"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type frameScene struct {
	app    *App
	cmd    *Commands
	assets *AssetServer
	main   *MainCamera
	quad   AssetId
}

func newFrameScene(t *testing.T) *frameScene {
	t.Helper()
	app := NewApp()
	s := &frameScene{app: app, cmd: app.Commands(), assets: NewAssetServer(""), main: &MainCamera{}}
	s.quad = s.assets.AddGeometry(geometry.NewPlane(1, 1, 1, 1))
	cam := NewPerspectiveCamera(75, 1, 0.1, 100)
	camTr := NewTransform(mgl32.Vec3{0, 0, 5})
	s.main.Entity = s.cmd.AddEntity(&camTr, &cam)
	s.main.Set = true
	return s
}

func (s *frameScene) mesh(m Material, pos mgl32.Vec3, extra ...any) EntityId {
	tr := NewTransform(pos)
	return s.cmd.AddEntity(append([]any{&tr, &MeshComponent{Geometry: s.quad, Material: s.assets.AddMaterial(m)}}, extra...)...)
}

func (s *frameScene) collect(t *testing.T) *Frame {
	t.Helper()
	s.app.FlushCommands()
	f, err := CollectFrame(s.cmd, s.assets, s.main)
	require.NoError(t, err)
	return f
}

func entities(f *Frame) []EntityId {
	var ids []EntityId
	for _, it := range f.Items {
		ids = append(ids, it.Entity)
	}
	return ids
}

func TestCollectFrame_Order(t *testing.T) {
	s := newFrameScene(t)

	glass := func() Material {
		m := NewBasicMaterial(Hex(0xffffff))
		m.Transparent = true
		return m
	}
	near := s.mesh(glass(), mgl32.Vec3{0, 0, 2})
	opaqueA := s.mesh(NewBasicMaterial(Hex(0xff0000)), mgl32.Vec3{0, 0, -1})
	far := s.mesh(glass(), mgl32.Vec3{0, 0, -3})
	opaqueB := s.mesh(NewBasicMaterial(Hex(0x00ff00)), mgl32.Vec3{0, 0, 1})
	additive := NewPointsMaterial(0.1)
	additive.Blending = AdditiveBlending
	sparkTr := NewTransform(mgl32.Vec3{0, 0, 0})
	spark := s.cmd.AddEntity(&sparkTr, &PointsComponent{Geometry: s.quad, Material: s.assets.AddMaterial(additive)})

	f := s.collect(t)
	assert.Equal(t, []EntityId{opaqueA, opaqueB, far, spark, near}, entities(f))
	assert.Equal(t, DrawPoints, f.Items[3].Kind)

	for i := 0; i < 5; i++ {
		assert.Equal(t, entities(f), entities(s.collect(t)), "order is stable across collections")
	}
}

func TestCollectFrame_NoCamera(t *testing.T) {
	app := NewApp()
	_, err := CollectFrame(app.Commands(), NewAssetServer(""), &MainCamera{})
	assert.ErrorIs(t, err, ErrNoCamera)
}

func TestCollectFrame_FallsBackToLowestCamera(t *testing.T) {
	s := newFrameScene(t)
	s.main.Set = false
	other := NewPerspectiveCamera(50, 1, 0.1, 10)
	otherTr := NewTransform(mgl32.Vec3{9, 9, 9})
	s.cmd.AddEntity(&otherTr, &other)

	f := s.collect(t)
	assert.Equal(t, mgl32.Vec3{0, 0, 5}, f.CameraPosition)
}

func TestCollectFrame_MissingAsset(t *testing.T) {
	s := newFrameScene(t)
	tr := NewTransform(mgl32.Vec3{})
	s.cmd.AddEntity(&tr, &MeshComponent{Geometry: s.quad, Material: "missing"})
	s.app.FlushCommands()

	_, err := CollectFrame(s.cmd, s.assets, s.main)
	assert.ErrorIs(t, err, ErrAssetNotFound)
}

func TestCollectFrame_HiddenAncestor(t *testing.T) {
	s := newFrameScene(t)
	parentTr := NewTransform(mgl32.Vec3{})
	parentTr.Hidden = true
	parent := s.cmd.AddEntity(&parentTr)
	visible := s.mesh(NewBasicMaterial(Hex(0xffffff)), mgl32.Vec3{})
	s.mesh(NewBasicMaterial(Hex(0xffffff)), mgl32.Vec3{}, &Parent{Entity: parent}, ptr(NewLocalTransform(mgl32.Vec3{})))

	f := s.collect(t)
	assert.Equal(t, []EntityId{visible}, entities(f))
}

func TestCollectFrame_Lights(t *testing.T) {
	s := newFrameScene(t)
	add := func(l LightComponent, pos mgl32.Vec3) EntityId {
		tr := NewTransform(pos)
		return s.cmd.AddEntity(&tr, &l)
	}
	amb := add(AmbientLight(Hex(0xffffff), 0.5), mgl32.Vec3{})
	sun := add(DirectionalLight(Hex(0xffffff), 2), mgl32.Vec3{0, 10, 0})
	lamp := add(PointLight(Hex(0xff0000), 1, 4), mgl32.Vec3{1, 0, 0})

	f := s.collect(t)
	require.Len(t, f.Lights, 3)
	assert.Equal(t, []EntityId{lamp, sun, amb}, []EntityId{f.Lights[0].entity, f.Lights[1].entity, f.Lights[2].entity})
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, f.Lights[1].Direction)
	assert.Equal(t, mgl32.Vec3{2, 2, 2}, f.Lights[1].Radiance)
	assert.Equal(t, float32(4), f.Lights[0].Range)
}

func TestSoftwareRenderer_DrawsMesh(t *testing.T) {
	s := newFrameScene(t)
	s.mesh(NewBasicMaterial(Hex(0xff0000)), mgl32.Vec3{0, 0, 3})
	f := s.collect(t)
	f.ClearColor = mgl32.Vec4{0, 0, 1, 1}

	r := NewSoftwareRenderer(32, 32)
	require.NoError(t, r.Render(f))
	img := r.Image()
	assert.Equal(t, color.RGBA{R: 255, A: 255}, img.RGBAAt(16, 16))
	assert.Equal(t, color.RGBA{B: 255, A: 255}, img.RGBAAt(0, 0))

	first := append([]uint8(nil), img.Pix...)
	require.NoError(t, r.Render(f))
	assert.Equal(t, first, r.Image().Pix)
}

func TestSoftwareRenderer_Sizes(t *testing.T) {
	r := NewSoftwareRenderer(100, 50)
	r.SetPixelRatio(1.5)
	w, h := r.DrawingBufferSize()
	assert.Equal(t, 150, w)
	assert.Equal(t, 75, h)

	r.SetSize(0, -4)
	w, h = r.Size()
	assert.Equal(t, 1, w)
	assert.Equal(t, 1, h)
}

func TestPipelineState(t *testing.T) {
	m := NewPointsMaterial(1)
	m.Transparent = true
	m.DepthWrite = false
	m.Blending = AdditiveBlending
	st := pipelineState(m.Options())
	assert.False(t, st.DepthWrite)
	assert.True(t, st.DepthTest)
	assert.Equal(t, raster.BlendAdditive, st.Blend)
	assert.Equal(t, raster.CullBack, st.Cull)

	b := NewBasicMaterial(Hex(0))
	b.Side = DoubleSide
	st = pipelineState(b.Options())
	assert.Equal(t, raster.BlendNone, st.Blend)
	assert.Equal(t, raster.CullNone, st.Cull)
}
