package scenekit

import (
	"context"
	"fmt"
	"sync"
)

type LoadState int

const (
	Pending LoadState = iota
	Loaded
	Failed
)

func (s LoadState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("LoadState(%d)", int(s))
}

// Future is the result of an asynchronous load. It resolves on the frame
// goroutine between stages, so systems never observe a half-applied load.
type Future[T any] struct {
	mu    sync.Mutex
	state LoadState
	value T
	err   error
	done  chan struct{}
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Resolved returns an already loaded future.
func Resolved[T any](v T) *Future[T] {
	f := newFuture[T]()
	f.resolve(v, nil)
	return f
}

func (f *Future[T]) resolve(v T, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != Pending {
		return
	}
	if err != nil {
		f.state, f.err = Failed, err
	} else {
		f.state, f.value = Loaded, v
	}
	close(f.done)
}

func (f *Future[T]) State() LoadState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Value returns the loaded value; ok is false until the load succeeded.
func (f *Future[T]) Value() (v T, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value, f.state == Loaded
}

func (f *Future[T]) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the future resolves. It must not be called from a system:
// futures resolve on the frame goroutine.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// LoadQueue runs loads in the background and applies their results in PreUpdate.
type LoadQueue struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	completions []func(cmd *Commands)
	inFlight    sync.WaitGroup
	pending     int
}

func NewLoadQueue(ctx context.Context) *LoadQueue {
	ctx, cancel := context.WithCancel(ctx)
	return &LoadQueue{ctx: ctx, cancel: cancel}
}

// Close cancels the context passed to loads still running.
func (q *LoadQueue) Close() {
	q.cancel()
}

// Pending is the number of loads started but not yet applied.
func (q *LoadQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pending
}

// WaitIdle blocks until every started load has finished running. Their results
// are still applied by the next drain.
func (q *LoadQueue) WaitIdle(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		q.inFlight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LoadHandlers receive a load's outcome on the frame goroutine.
type LoadHandlers[T any] struct {
	OnLoad  func(cmd *Commands, v T)
	OnError func(cmd *Commands, err error)
}

// LoadAsync starts load on a goroutine. Failures are always logged; OnError is
// optional.
func LoadAsync[T any](q *LoadQueue, name string, load func(ctx context.Context) (T, error), h LoadHandlers[T]) *Future[T] {
	f := newFuture[T]()
	q.mu.Lock()
	q.pending++
	q.mu.Unlock()
	q.inFlight.Add(1)
	go func() {
		defer q.inFlight.Done()
		v, err := runLoad(q.ctx, load)
		if err != nil {
			err = fmt.Errorf("load %s: %w", name, err)
		}
		q.mu.Lock()
		defer q.mu.Unlock()
		q.completions = append(q.completions, func(cmd *Commands) {
			f.resolve(v, err)
			if err != nil {
				cmd.App().Logger().Errorf("%v", err)
				if h.OnError != nil {
					h.OnError(cmd, err)
				}
				return
			}
			cmd.App().Logger().Debugf("loaded %s", name)
			if h.OnLoad != nil {
				h.OnLoad(cmd, v)
			}
		})
	}()
	return f
}

// runLoad turns a panic inside load into an error so it reaches OnError.
func runLoad[T any](ctx context.Context, load func(ctx context.Context) (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			v, err = zero, fmt.Errorf("%w: %v", ErrLoadPanicked, r)
		}
	}()
	return load(ctx)
}

// Drain applies every finished load in completion order.
func (q *LoadQueue) Drain(cmd *Commands) int {
	q.mu.Lock()
	batch := q.completions
	q.completions = nil
	q.pending -= len(batch)
	q.mu.Unlock()
	for _, c := range batch {
		c(cmd)
	}
	return len(batch)
}

type LoaderModule struct{}

func (LoaderModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(NewLoadQueue(context.Background()))
	app.UseSystem(
		System(loadQueueSystem).
			InStage(PreUpdate).
			RunAlways(),
	)
}

func loadQueueSystem(cmd *Commands, q *LoadQueue) {
	q.Drain(cmd)
}
