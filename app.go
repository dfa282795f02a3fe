package scenekit

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"runtime"
)

type systemFn any

// LoopStatus is the render loop state. A loop only ever moves forward:
// idle -> running -> stopped.
type LoopStatus int

const (
	LoopIdle LoopStatus = iota
	LoopRunning
	LoopStopped
)

func (s LoopStatus) String() string {
	switch s {
	case LoopIdle:
		return "idle"
	case LoopRunning:
		return "running"
	case LoopStopped:
		return "stopped"
	}
	return fmt.Sprintf("LoopStatus(%d)", int(s))
}

// Module installs resources and systems into an App.
type Module interface {
	Install(app *App, cmd *Commands)
}

// FrameScheduler is the host's per-frame callback primitive. Run invokes frame once
// per host frame, never concurrently, until ctx is done, the host is torn down,
// or frame reports that the loop is over.
type FrameScheduler interface {
	Run(ctx context.Context, frame func() (more bool, err error)) error
}

type App struct {
	stateful           bool
	stateTransitioning bool
	initialState       State
	finalState         State
	nextState          State
	state              State
	stages             []Stage
	systems            map[string]map[State]map[statePhase][]systemFn
	systemsStateless   map[string][]systemFn
	resources          map[reflect.Type]any
	ecs                *Ecs

	status   LoopStatus
	frame    uint64
	finished bool
	frameErr error

	queued []queuedOp
}

var defaultStages = []Stage{Prelude, PreUpdate, Update, PostUpdate, PreRender, Render, PostRender, Finale}

// NewApp returns a stateless app with the default stages.
func NewApp() *App {
	ecs := MakeEcs()
	app := &App{
		resources: make(map[reflect.Type]any),
		ecs:       &ecs,
	}
	app.initStages()
	return app
}

func (app *App) initStages() {
	app.systemsStateless = make(map[string][]systemFn)
	app.systems = make(map[string]map[State]map[statePhase][]systemFn)
	app.stages = nil
	for _, stage := range defaultStages {
		app.stages = append(app.stages, stage)
		app.initStatefulStage(stage)
	}
}

func (app *App) Commands() *Commands {
	return &Commands{app: app}
}

// UseModules installs modules in order.
func (app *App) UseModules(modules ...Module) *App {
	cmd := app.Commands()
	for _, module := range modules {
		module.Install(app, cmd)
	}
	return app
}

func (app *App) Status() LoopStatus { return app.status }

// Frame is the number of completed frames.
func (app *App) Frame() uint64 { return app.frame }

func (app *App) State() State { return app.state }

func (app *App) start() {
	if app.status != LoopIdle {
		return
	}
	app.status = LoopRunning
	if app.stateful {
		app.state = app.initialState
		app.Logger().Debugf("Running in stateful mode, initial state %d", app.state)
		app.callSystems(app.state, enter)
	} else {
		app.Logger().Debugf("Running in stateless mode")
	}
}

// Step runs a single frame: every stage in order, flushing commands after each one.
// The first error returned by a system aborts nothing but is reported once the frame completes.
func (app *App) Step() error {
	if app.status == LoopStopped {
		return ErrLoopStopped
	}
	app.start()
	app.frameErr = nil

	app.callSystems(app.state, execute)

	if app.stateful {
		if app.stateTransitioning {
			app.stateTransitioning = false
			app.executeChangeState(app.nextState)
		}
		if app.state == app.finalState {
			app.callSystems(app.state, exit)
			app.finished = true
		}
	}
	app.frame++

	err := app.frameErr
	app.frameErr = nil
	if err != nil {
		return fmt.Errorf("frame %d: %w", app.frame, err)
	}
	return nil
}

// Run drives frames from the scheduler until it stops. The loop status is
// LoopStopped afterwards regardless of how it ended.
func (app *App) Run(ctx context.Context, scheduler FrameScheduler) error {
	app.start()
	defer func() { app.status = LoopStopped }()

	err := scheduler.Run(ctx, func() (bool, error) {
		if err := app.Step(); err != nil {
			return false, err
		}
		return !app.finished, nil
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (app *App) callSystems(state State, phase statePhase) {
	for _, stage := range app.stages {
		if execute == phase {
			for _, system := range app.systemsStateless[stage.Name] {
				app.callSystem(system)
			}
		}

		if app.stateful {
			if systemsInStage, ok := app.systems[stage.Name]; ok {
				if systemsInState, ok := systemsInStage[state]; ok {
					for _, system := range systemsInState[phase] {
						app.callSystem(system)
					}
				}
			}
		}
		app.FlushCommands()
	}
}

func (app *App) changeState(newState State) {
	app.nextState = newState
	app.stateTransitioning = true
}

func (app *App) executeChangeState(newState State) {
	app.callSystems(app.state, exit)
	app.state = newState
	app.callSystems(app.state, enter)
}

func (app *App) addResources(resources ...any) *App {
	for _, resource := range resources {
		resourceType := reflect.TypeOf(resource)
		if resourceType.Kind() != reflect.Pointer {
			panic(fmt.Sprintf("resource %s must be a pointer", resourceType))
		}
		if _, ok := app.resources[resourceType.Elem()]; ok {
			panic(fmt.Sprintf("%s is already in resources", resourceType))
		}
		app.resources[resourceType.Elem()] = resource
	}
	return app
}

// Resource returns the registered resource of type T.
func Resource[T any](app *App) (*T, bool) {
	res, ok := app.resources[reflect.TypeFor[T]()]
	if !ok {
		return nil, false
	}
	return res.(*T), true
}

func (app *App) hasResource(t reflect.Type) bool {
	_, ok := app.resources[t]
	return ok
}

var (
	typeOfCommands = reflect.TypeOf(Commands{})
	typeOfError    = reflect.TypeOf((*error)(nil)).Elem()
)

func (app *App) callSystem(system systemFn) {
	systemType := reflect.TypeOf(system)
	systemValue := reflect.ValueOf(system)

	args := make([]reflect.Value, systemType.NumIn())
	for i := 0; i < systemType.NumIn(); i++ {
		argType := systemType.In(i)
		if argType.Kind() != reflect.Pointer {
			app.panicUnresolved(systemValue, systemType, argType)
		}
		underlyingType := argType.Elem()

		if underlyingType == typeOfCommands {
			args[i] = reflect.ValueOf(&Commands{app: app})
		} else if resource, isResource := app.resources[underlyingType]; isResource {
			args[i] = reflect.ValueOf(resource)
		} else {
			app.panicUnresolved(systemValue, systemType, argType)
		}
	}

	out := systemValue.Call(args)
	if len(out) == 1 && systemType.Out(0) == typeOfError && !out[0].IsNil() && app.frameErr == nil {
		app.frameErr = out[0].Interface().(error)
	}
}

func (app *App) panicUnresolved(systemValue reflect.Value, systemType reflect.Type, argType reflect.Type) {
	msg := fmt.Sprintf("Unable to resolve System dependency.\nSystem: %s\nSystem type: %s\nDependency: %s",
		runtime.FuncForPC(systemValue.Pointer()).Name(),
		fmt.Sprint(systemType),
		fmt.Sprint(argType),
	)
	app.Logger().Errorf("%s", msg)
	panic(msg)
}

// FlushCommands applies buffered commands in the order they were issued.
func (app *App) FlushCommands() {
	ops := app.queued
	app.queued = nil
	for _, op := range ops {
		switch op.kind {
		case opSpawn:
			app.ecs.insertEntity(op.eid, op.components...)
		case opDespawn:
			app.ecs.removeEntity(op.eid)
		case opInsert:
			app.ecs.addComponents(op.eid, op.components...)
		case opStrip:
			app.ecs.removeComponents(op.eid, op.components...)
		}
	}
}
