package scenekit

import (
	"fmt"
	"reflect"

	"github.com/go-gl/mathgl/mgl32"
)

// RenderSettings holds per-app render options.
type RenderSettings struct {
	ClearColor mgl32.Vec4
}

// RenderModule renders the main camera once per frame and presents the result.
// Prefer App.UseRenderer, which also guards against a second renderer.
type RenderModule struct {
	Name       RendererName
	Renderer   Renderer
	ClearColor mgl32.Vec4
}

var typeOfMainCamera = reflect.TypeFor[MainCamera]()

func (mod RenderModule) Install(app *App, cmd *Commands) {
	sizes, ok := Resource[Sizes](app)
	if !ok {
		panic("RenderModule requires SizesModule")
	}
	r := mod.Renderer
	if r == nil {
		r = NewSoftwareRenderer(sizes.Width, sizes.Height)
	}
	r.SetSize(sizes.Width, sizes.Height)
	r.SetPixelRatio(sizes.PixelRatio)

	name := mod.Name
	if name == "" {
		name = RendererSoftware
	}
	clearColor := mod.ClearColor
	if clearColor == (mgl32.Vec4{}) {
		clearColor = mgl32.Vec4{0, 0, 0, 1}
	}
	cmd.AddResources(&RendererResource{Name: name, Renderer: r}, &RenderSettings{ClearColor: clearColor})
	if !app.hasResource(typeOfMainCamera) {
		cmd.AddResources(&MainCamera{})
	}
	if !app.hasResource(typeOfHost) {
		cmd.AddResources(&Host{})
	}

	app.UseSystem(
		System(renderSystem).
			InStage(Render).
			RunAlways(),
	)
	app.UseSystem(
		System(presentSystem).
			InStage(PostRender).
			RunAlways(),
	)
}

func renderSystem(cmd *Commands, rr *RendererResource, settings *RenderSettings, assets *AssetServer, main *MainCamera) error {
	frame, err := CollectFrame(cmd, assets, main)
	if err != nil {
		return fmt.Errorf("collect frame: %w", err)
	}
	frame.ClearColor = settings.ClearColor
	if err := rr.Renderer.Render(frame); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	rr.Frames++
	return nil
}

func presentSystem(host *Host, rr *RendererResource) error {
	if host.Presenter == nil {
		return nil
	}
	if err := host.Presenter.Present(rr.Renderer.Image()); err != nil {
		return fmt.Errorf("present: %w", err)
	}
	return nil
}
