package scenekit

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

// SceneContext is the state an exercise's Setup and Update work against.
// It is registered as a resource, so systems can ask for it directly.
type SceneContext struct {
	App      *App
	Config   Config
	Assets   *AssetServer
	Loads    *LoadQueue
	Clock    *Clock
	Sizes    *Sizes
	Cursor   *Cursor
	Input    *Input
	Camera   EntityId
	Renderer Renderer
	Rand     *rand.Rand
	Logger   Logger
}

// CameraTransform returns the live transform of the default camera.
func (c *SceneContext) CameraTransform(cmd *Commands) *TransformComponent {
	tr, _ := GetComponent[TransformComponent](cmd, c.Camera)
	return tr
}

// CameraComponent returns the live projection of the default camera.
func (c *SceneContext) CameraComponent(cmd *Commands) *CameraComponent {
	cam, _ := GetComponent[CameraComponent](cmd, c.Camera)
	return cam
}

// Harness is the scaffold shared by every exercise: camera, renderer, resize
// handling and the frame loop. Exercises provide only Setup and Update.
type Harness struct {
	Name        string
	Description string

	CameraPosition mgl32.Vec3
	// zero values select fov 75, near 0.1, far 100
	CameraFov  float32
	CameraNear float32
	CameraFar  float32

	Setup  func(cmd *Commands, ctx *SceneContext) error
	Update func(cmd *Commands, ctx *SceneContext)
}

// HarnessOptions carries what differs between hosts.
type HarnessOptions struct {
	Config Config
	Host   *Host
	// TimeSource drives the Clock; nil means wall time.
	TimeSource func() time.Time
	Logger     Logger
	Renderer   Renderer
}

// Build assembles an App ready to Run and performs the exercise Setup.
func (h Harness) Build(opts HarnessOptions) (*App, *SceneContext, error) {
	cfg := opts.Config
	if cfg.Width == 0 && cfg.Height == 0 {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", h.Name, err)
	}

	app := NewApp()
	cmd := app.Commands()
	host := opts.Host
	if host == nil {
		host = &Host{}
	}
	cmd.AddResources(host)

	app.UseModules(
		LoggingModule{Prefix: h.Name, Debug: cfg.Debug, Logger: opts.Logger},
		TimeModule{Source: opts.TimeSource},
		InputModule{},
		SizesModule{Width: cfg.Width, Height: cfg.Height, MaxPixelRatio: cfg.MaxPixelRatio},
		AssetServerModule{Root: cfg.AssetRoot},
		LoaderModule{},
		TweenModule{},
		ParticlesModule{},
		AnimationModule{},
		CursorCameraModule{},
		OrbitControlsModule{},
		HierarchyModule{},
	)
	app.UseRenderer(RendererSoftware, opts.Renderer)

	settings, _ := Resource[RenderSettings](app)
	settings.ClearColor = cfg.Clear()

	ctx := &SceneContext{
		App:    app,
		Config: cfg,
		Rand:   rand.New(rand.NewSource(cfg.Seed)),
		Logger: app.Logger(),
	}
	ctx.Assets, _ = Resource[AssetServer](app)
	ctx.Loads, _ = Resource[LoadQueue](app)
	ctx.Clock, _ = Resource[Clock](app)
	ctx.Sizes, _ = Resource[Sizes](app)
	ctx.Cursor, _ = Resource[Cursor](app)
	ctx.Input, _ = Resource[Input](app)
	rr, _ := Resource[RendererResource](app)
	ctx.Renderer = rr.Renderer
	cmd.AddResources(ctx)

	ctx.Camera = h.spawnCamera(cmd, ctx.Sizes)
	main, _ := Resource[MainCamera](app)
	main.Entity, main.Set = ctx.Camera, true

	if h.Setup != nil {
		if err := h.Setup(cmd, ctx); err != nil {
			ctx.Loads.Close()
			return nil, nil, fmt.Errorf("%s setup: %w", h.Name, err)
		}
	}
	app.FlushCommands()

	if h.Update != nil {
		update := h.Update
		app.UseSystem(
			System(func(cmd *Commands, ctx *SceneContext) { update(cmd, ctx) }).
				InStage(Update).
				RunAlways(),
		)
	}
	app.Logger().Infof("%s ready (%dx%d)", h.Name, cfg.Width, cfg.Height)
	return app, ctx, nil
}

func (h Harness) spawnCamera(cmd *Commands, sizes *Sizes) EntityId {
	fov, near, far := h.CameraFov, h.CameraNear, h.CameraFar
	if fov == 0 {
		fov = 75
	}
	if near == 0 {
		near = 0.1
	}
	if far == 0 {
		far = 100
	}
	cam := NewPerspectiveCamera(fov, sizes.Aspect(), near, far)
	tr := NewTransform(h.CameraPosition)
	return cmd.AddEntity(
		&tr,
		&cam,
		&Name{Value: "camera"},
	)
}
