package scenekit

import (
	"math"
	"testing"
	"time"

	"github.com/gekko3d/scenekit/geometry"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testStep = 16 * time.Millisecond

// scriptedInput plays the role of a window: fixed mouse position and size.
type scriptedInput struct {
	mouseX, mouseY float64
	width, height  int
	dpr            float32
}

func (s *scriptedInput) PollInput(in *Input) {
	in.MoveMouse(s.mouseX, s.mouseY)
	in.WindowWidth, in.WindowHeight = s.width, s.height
	in.DevicePixelRatio = s.dpr
}

func testConfig(t *testing.T) Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = 64, 48
	cfg.AssetRoot = t.TempDir()
	return cfg
}

func buildTestApp(t *testing.T, h Harness, host *Host) (*App, *SceneContext) {
	t.Helper()
	app, ctx, err := h.Build(HarnessOptions{
		Config:     testConfig(t),
		Host:       host,
		TimeSource: StepSource(time.Unix(0, 0), testStep),
		Logger:     NewNopLogger(),
	})
	require.NoError(t, err)
	t.Cleanup(ctx.Loads.Close)
	return app, ctx
}

func redCube(cmd *Commands, ctx *SceneContext) EntityId {
	g := ctx.Assets.AddGeometry(geometry.NewBox(1, 1, 1, 1, 1, 1))
	m := ctx.Assets.AddMaterial(NewBasicMaterial(Hex(0xff0000)))
	tr := NewTransform(mgl32.Vec3{})
	return cmd.AddEntity(&tr, &MeshComponent{Geometry: g, Material: m})
}

func TestHarness_Build(t *testing.T) {
	var setupCalls, updateCalls int
	app, ctx := buildTestApp(t, Harness{
		Name:           "test",
		CameraPosition: mgl32.Vec3{0, 0, 3},
		Setup: func(cmd *Commands, ctx *SceneContext) error {
			setupCalls++
			redCube(cmd, ctx)
			return nil
		},
		Update: func(cmd *Commands, ctx *SceneContext) { updateCalls++ },
	}, nil)

	assert.Equal(t, 1, setupCalls)
	cam := ctx.CameraComponent(app.Commands())
	require.NotNil(t, cam)
	assert.Equal(t, float32(75), cam.Fov)
	assert.Equal(t, float32(0.1), cam.Near)
	assert.Equal(t, float32(100), cam.Far)
	assert.InDelta(t, 64.0/48.0, cam.Aspect, 1e-6)
	assert.Equal(t, mgl32.Vec3{0, 0, 3}, ctx.CameraTransform(app.Commands()).Position)

	require.NoError(t, app.Step())
	require.NoError(t, app.Step())
	assert.Equal(t, 2, updateCalls)

	rr, ok := Resource[RendererResource](app)
	require.True(t, ok)
	assert.Equal(t, uint64(2), rr.Frames)
	assert.Equal(t, RendererSoftware, rr.Name)
}

func TestHarness_SetupError(t *testing.T) {
	_, _, err := Harness{
		Name:  "broken",
		Setup: func(*Commands, *SceneContext) error { return ErrAssetNotFound },
	}.Build(HarnessOptions{Config: testConfig(t), Logger: NewNopLogger()})
	assert.ErrorIs(t, err, ErrAssetNotFound)
	assert.Contains(t, err.Error(), "broken setup")
}

func TestHarness_InvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.FPS = 0
	_, _, err := Harness{Name: "x"}.Build(HarnessOptions{Config: cfg, Logger: NewNopLogger()})
	assert.Error(t, err)
}

func TestRenderer_SingleRendererGuard(t *testing.T) {
	app, _ := buildTestApp(t, Harness{Name: "guard"}, nil)
	assert.NotPanics(t, func() { app.UseSoftwareRenderer() })
	assert.Panics(t, func() { app.UseRenderer("other", nil) })
}

// The camera circles the cube on the cursor's x and rises with its y.
func TestCursorCamera_FollowsCursor(t *testing.T) {
	input := &scriptedInput{}
	var cube EntityId
	app, ctx := buildTestApp(t, Harness{
		Name: "cursor",
		Setup: func(cmd *Commands, ctx *SceneContext) error {
			cube = redCube(cmd, ctx)
			cc := NewCursorCamera(cube)
			cmd.AddComponents(ctx.Camera, &cc)
			return nil
		},
	}, &Host{Input: input})

	cases := []struct{ mouseX, mouseY float64 }{
		{32, 24}, {48, 24}, {0, 0}, {64, 48}, {10, 40},
	}
	for _, c := range cases {
		input.mouseX, input.mouseY = c.mouseX, c.mouseY
		require.NoError(t, app.Step())

		cx := float32(c.mouseX/64 - 0.5)
		cy := float32(-(c.mouseY/48 - 0.5))
		assert.InDelta(t, cx, ctx.Cursor.X, 1e-6)
		assert.InDelta(t, cy, ctx.Cursor.Y, 1e-6)

		tr := ctx.CameraTransform(app.Commands())
		angle := float64(cx) * 2 * math.Pi
		assert.InDelta(t, 2*math.Sin(angle), tr.Position.X(), 1e-4)
		assert.InDelta(t, cy*3, tr.Position.Y(), 1e-4)
		assert.InDelta(t, 2*math.Cos(angle), tr.Position.Z(), 1e-4)

		forward := tr.Rotation.Rotate(mgl32.Vec3{0, 0, -1})
		toCube := worldOf(t, app.Commands(), cube).Position.Sub(tr.Position).Normalize()
		assert.InDelta(t, 1, forward.Dot(toCube), 1e-4, "camera looks at the cube")
	}
}

func TestResize_UpdatesCameraAndRenderer(t *testing.T) {
	app, ctx := buildTestApp(t, Harness{Name: "resize"}, nil)
	cmd := app.Commands()

	require.True(t, Resize(cmd, ResizeEvent{Width: 320, Height: 160, PixelRatio: 3}))

	cam := ctx.CameraComponent(cmd)
	assert.Equal(t, float32(2), cam.Aspect)
	assert.True(t, cam.ProjectionMatrix().ApproxEqual(mgl32.Perspective(mgl32.DegToRad(75), 2, 0.1, 100)))

	w, h := ctx.Renderer.Size()
	assert.Equal(t, 320, w)
	assert.Equal(t, 160, h)
	assert.Equal(t, float32(2), ctx.Renderer.PixelRatio(), "pixel ratio is capped")
	bw, bh := ctx.Renderer.DrawingBufferSize()
	assert.Equal(t, 640, bw)
	assert.Equal(t, 320, bh)

	assert.False(t, Resize(cmd, ResizeEvent{Width: 0, Height: 100}))
	assert.False(t, Resize(cmd, ResizeEvent{Width: 100, Height: -1}))
	assert.Equal(t, 320, ctx.Sizes.Width)
	assert.Equal(t, 160, ctx.Sizes.Height)
}

func TestResize_FromHostWindow(t *testing.T) {
	input := &scriptedInput{width: 300, height: 200, dpr: 1}
	app, ctx := buildTestApp(t, Harness{Name: "resize"}, &Host{Input: input})

	require.NoError(t, app.Step())
	assert.Equal(t, 300, ctx.Sizes.Width)
	assert.Equal(t, 200, ctx.Sizes.Height)
	assert.Equal(t, float32(1.5), ctx.CameraComponent(app.Commands()).Aspect)
	assert.Equal(t, 300, ctx.Renderer.Image().Bounds().Dx())

	input.width, input.height = 0, 0
	require.NoError(t, app.Step())
	assert.Equal(t, 300, ctx.Sizes.Width, "non-positive window sizes are ignored")
}

// Two renders of an unchanged scene are pixel-identical.
func TestRender_Deterministic(t *testing.T) {
	rec := &FrameRecorder{}
	app, _ := buildTestApp(t, Harness{
		Name:           "determinism",
		CameraPosition: mgl32.Vec3{1.5, 1, 3},
		Setup: func(cmd *Commands, ctx *SceneContext) error {
			mat := ctx.Assets.AddMaterial(NewStandardMaterial(Hex(0x88aaff), 0, 0.5))
			for i := 0; i < 4; i++ {
				tr := NewTransform(mgl32.Vec3{float32(i) - 1.5, 0, -float32(i)})
				cmd.AddEntity(&tr, &MeshComponent{Geometry: ctx.Assets.AddGeometry(geometry.NewSphere(0.5, 16, 12)), Material: mat})
			}
			glass := NewBasicMaterial(Hex(0xffffff))
			glass.Transparent = true
			glass.Opacity = 0.5
			glassTr := NewTransform(mgl32.Vec3{0, 0, 1})
			cmd.AddEntity(&glassTr, &MeshComponent{Geometry: ctx.Assets.AddGeometry(geometry.NewPlane(2, 2, 1, 1)), Material: ctx.Assets.AddMaterial(glass)})

			ambient := AmbientLight(Hex(0xffffff), 0.3)
			sun := DirectionalLight(Hex(0xffffff), 0.8)
			lamp := PointLight(Hex(0xff8800), 2, 10)
			for i, l := range []LightComponent{ambient, sun, lamp} {
				tr := NewTransform(mgl32.Vec3{2, 3, float32(i)})
				cmd.AddEntity(&tr, &l)
			}
			return nil
		},
	}, &Host{Presenter: rec})

	require.NoError(t, app.Step())
	require.NoError(t, app.Step())
	require.Len(t, rec.Frames, 2)
	assert.Equal(t, rec.Frames[0].Pix, rec.Frames[1].Pix)

	lit := false
	for i := 0; i < len(rec.Frames[0].Pix); i += 4 {
		if rec.Frames[0].Pix[i] != 0 || rec.Frames[0].Pix[i+1] != 0 || rec.Frames[0].Pix[i+2] != 0 {
			lit = true
			break
		}
	}
	assert.True(t, lit, "scene draws something")
}
