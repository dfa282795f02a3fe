package scenekit

import (
	"fmt"
	"reflect"
)

// RendererTag marks that a renderer has been installed into the App.
type RendererTag struct {
	Name RendererName
}

var typeOfRendererTag = reflect.TypeFor[RendererTag]()

// ensureSingleRenderer panics when a different renderer is already installed.
// Installing the same renderer name twice is a no-op.
func ensureSingleRenderer(app *App, name RendererName) bool {
	if app == nil {
		panic("ensureSingleRenderer: app is nil")
	}
	if res, ok := app.resources[typeOfRendererTag]; ok {
		tag := res.(*RendererTag)
		if tag.Name != name {
			app.Logger().Errorf("multiple renderers installed: %s and %s", tag.Name, name)
			panic(fmt.Sprintf("multiple renderers installed: %s and %s", tag.Name, name))
		}
		return false
	}
	app.addResources(&RendererTag{Name: name})
	return true
}
