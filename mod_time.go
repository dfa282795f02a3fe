package scenekit

import (
	"time"
)

// Clock is the monotonic time source sampled once per frame.
type Clock struct {
	Start   time.Time
	Now     time.Time
	Elapsed time.Duration
	// Delta is Elapsed minus the previous frame's Elapsed.
	Delta time.Duration

	source func() time.Time
}

func NewClock(source func() time.Time) *Clock {
	if source == nil {
		source = time.Now
	}
	now := source()
	return &Clock{Start: now, Now: now, source: source}
}

// Tick samples the source and updates Elapsed and Delta.
func (c *Clock) Tick() {
	now := c.source()
	elapsed := now.Sub(c.Start)
	if elapsed < c.Elapsed {
		elapsed = c.Elapsed
	}
	c.Delta = elapsed - c.Elapsed
	c.Elapsed = elapsed
	c.Now = now
}

func (c *Clock) ElapsedSeconds() float32 { return float32(c.Elapsed.Seconds()) }
func (c *Clock) DeltaSeconds() float32   { return float32(c.Delta.Seconds()) }

// StepSource returns a time source that advances by step on every call,
// for deterministic headless rendering and tests.
func StepSource(start time.Time, step time.Duration) func() time.Time {
	next := start
	first := true
	return func() time.Time {
		if first {
			first = false
			return next
		}
		next = next.Add(step)
		return next
	}
}

type TimeModule struct {
	Source func() time.Time
}

func (mod TimeModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(NewClock(mod.Source))
	app.UseSystem(
		System(clockSystem).
			InStage(Prelude).
			RunAlways(),
	)
}

func clockSystem(clock *Clock) {
	clock.Tick()
}
