package scenekit

import "fmt"

// AppBuilder collects resources and modules, then installs them in one go.
// Resources are registered before any module runs, so Install can look them up.
type AppBuilder struct {
	app       *App
	resources []any
	modules   []Module
}

func NewAppBuilder() *AppBuilder {
	return &AppBuilder{app: NewApp()}
}

// UseStates makes the app stateful over the range [initial, final].
// The loop ends once final is reached.
func (b *AppBuilder) UseStates(initial, final State) *AppBuilder {
	if final < initial {
		panic(fmt.Sprintf("state range [%d, %d] is empty", initial, final))
	}
	app := b.app
	app.stateful = true
	app.initialState, app.finalState = initial, final
	app.state = initial
	app.initStages()
	return b
}

// UseResources queues pointer resources for registration.
func (b *AppBuilder) UseResources(resources ...any) *AppBuilder {
	b.resources = append(b.resources, resources...)
	return b
}

func (b *AppBuilder) UseModule(modules ...Module) *AppBuilder {
	b.modules = append(b.modules, modules...)
	return b
}

func (b *AppBuilder) Build() *App {
	b.app.addResources(b.resources...)
	b.app.UseModules(b.modules...)
	b.app.FlushCommands()
	return b.app
}
