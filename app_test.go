package scenekit

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockResource1 struct {
	name string
}
type MockResource2 struct {
	name string
}

func NewMockResource1(name string) *MockResource1 {
	return &MockResource1{name: name}
}
func NewMockResource2(name string) *MockResource2 {
	return &MockResource2{name: name}
}

// countScheduler runs at most n frames.
type countScheduler struct {
	n   int
	ran int
}

func (s *countScheduler) Run(ctx context.Context, frame func() (bool, error)) error {
	for s.ran < s.n {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.ran++
		more, err := frame()
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
	return nil
}

func TestApp_changeState(t *testing.T) {
	app := NewAppBuilder().UseStates(1, 2).Build()

	app.changeState(2)
	assert.Equal(t, State(2), app.nextState)
	assert.True(t, app.stateTransitioning)

	app.executeChangeState(2)
	assert.Equal(t, State(2), app.state)
}

func TestApp_addResources(t *testing.T) {
	app := &App{
		resources: make(map[reflect.Type]any),
	}

	resource1 := NewMockResource1("Resource1")
	app.addResources(resource1)
	assert.Contains(t, app.resources, reflect.TypeOf(resource1).Elem(), "Resource1 should be in resources map.")

	require.PanicsWithValue(t, fmt.Sprintf("%s is already in resources", reflect.TypeOf(resource1)), func() {
		app.addResources(resource1)
	})

	resource2 := NewMockResource2("Resource2")
	app.addResources(resource2)
	assert.Contains(t, app.resources, reflect.TypeOf(resource2).Elem(), "Resource2 should be in resources map.")

	got, ok := Resource[MockResource2](app)
	require.True(t, ok)
	assert.Equal(t, "Resource2", got.name)
}

func TestApp_addResourcesRejectsValues(t *testing.T) {
	app := NewApp()
	assert.Panics(t, func() { app.addResources(MockResource1{}) })
}

func TestApp_StagesRunInOrder(t *testing.T) {
	app := NewApp()
	var order []string
	for _, s := range []Stage{Finale, Render, Update, Prelude} {
		name := s.Name
		app.UseSystem(System(func() { order = append(order, name) }).InStage(s))
	}
	custom := Stage{Name: "Physics"}
	app.UseStage(custom, AfterStage(Update))
	app.UseSystem(System(func() { order = append(order, "Physics") }).InStage(custom))

	require.NoError(t, app.Step())
	assert.Equal(t, []string{"Prelude", "Update", "Physics", "Render", "Finale"}, order)
	assert.Equal(t, uint64(1), app.Frame())
	assert.Equal(t, LoopRunning, app.Status())
}

func TestApp_UnknownStagePanics(t *testing.T) {
	app := NewApp()
	assert.Panics(t, func() { app.UseSystem(System(func() {}).InStage(Stage{Name: "Nope"})) })
	assert.Panics(t, func() { app.UseStage(Stage{Name: "X"}, BeforeStage(Stage{Name: "Nope"})) })
}

func TestApp_UnresolvedDependencyPanics(t *testing.T) {
	app := NewApp()
	app.UseSystem(System(func(*MockResource1) {}))
	assert.Panics(t, func() { _ = app.Step() })
}

func TestApp_SystemsReceiveResourcesAndCommands(t *testing.T) {
	app := NewApp()
	app.addResources(NewMockResource1("a"))
	var (
		seen    string
		eid     EntityId
		spawned bool
	)
	app.UseSystem(System(func(cmd *Commands, r *MockResource1) {
		seen = r.name
		if !spawned {
			eid = cmd.AddEntity(&MockResource2{name: "entity"})
			spawned = true
		}
	}))
	require.NoError(t, app.Step())
	assert.Equal(t, "a", seen)

	c, ok := GetComponent[MockResource2](app.Commands(), eid)
	require.True(t, ok, "entity should be flushed at the end of the stage")
	assert.Equal(t, "entity", c.name)
}

func TestApp_StepReportsSystemError(t *testing.T) {
	app := NewApp()
	boom := errors.New("boom")
	calls := 0
	app.UseSystem(System(func() error { calls++; return boom }).InStage(Update))
	app.UseSystem(System(func() { calls++ }).InStage(Render))

	err := app.Step()
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls, "the frame finishes before the error is returned")
}

func TestApp_RunStopsOnError(t *testing.T) {
	app := NewApp()
	boom := errors.New("boom")
	frames := 0
	app.UseSystem(System(func() error {
		frames++
		if frames == 3 {
			return boom
		}
		return nil
	}))

	s := &countScheduler{n: 10}
	err := app.Run(context.Background(), s)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 3, s.ran)
	assert.Equal(t, LoopStopped, app.Status())
	assert.ErrorIs(t, app.Step(), ErrLoopStopped)
}

func TestApp_RunCanceledIsNotAnError(t *testing.T) {
	app := NewApp()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, app.Run(ctx, &countScheduler{n: 5}))
	assert.Equal(t, LoopStopped, app.Status())
}

func TestApp_StatefulLifecycle(t *testing.T) {
	app := NewAppBuilder().UseStates(0, 2).Build()
	var log []string
	app.UseSystem(System(func() { log = append(log, "enter0") }).InState(OnEnter(0)))
	app.UseSystem(System(func(cmd *Commands) {
		log = append(log, "exec0")
		cmd.ChangeState(1)
	}).InState(OnExecute(0)))
	app.UseSystem(System(func() { log = append(log, "exit0") }).InState(OnExit(0)))
	app.UseSystem(System(func(cmd *Commands) {
		log = append(log, "exec1")
		cmd.ChangeState(2)
	}).InState(OnExecute(1)))
	app.UseSystem(System(func() { log = append(log, "exit2") }).InState(OnExit(2)))

	s := &countScheduler{n: 10}
	require.NoError(t, app.Run(context.Background(), s))
	assert.Equal(t, 2, s.ran)
	assert.Equal(t, []string{"enter0", "exec0", "exit0", "exec1", "exit2"}, log)
	assert.Equal(t, State(2), app.State())
}

func TestApp_StatefulSystemInStatelessAppPanics(t *testing.T) {
	app := NewApp()
	assert.Panics(t, func() { app.UseSystem(System(func() {}).InState(OnEnter(1))) })
}

func TestLoopStatus_String(t *testing.T) {
	assert.Equal(t, "idle", LoopIdle.String())
	assert.Equal(t, "stopped", LoopStopped.String())
	assert.Equal(t, "LoopStatus(9)", LoopStatus(9).String())
}
