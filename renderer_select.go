package scenekit

// RendererName identifies a concrete renderer.
type RendererName string

const (
	RendererSoftware RendererName = "software"
)

// UseRenderer installs exactly one renderer. A nil renderer selects a
// SoftwareRenderer sized from Sizes.
func (app *App) UseRenderer(name RendererName, r Renderer) *App {
	if !ensureSingleRenderer(app, name) {
		return app
	}
	app.Logger().Infof("renderer selected: %s", name)
	app.UseModules(RenderModule{Name: name, Renderer: r})
	return app
}

// UseSoftwareRenderer is shorthand for UseRenderer(RendererSoftware, nil).
func (app *App) UseSoftwareRenderer() *App {
	return app.UseRenderer(RendererSoftware, nil)
}
