package scenekit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClock_Tick(t *testing.T) {
	start := time.Unix(100, 0)
	c := NewClock(StepSource(start, 100*time.Millisecond))
	assert.Equal(t, start, c.Start)
	assert.Zero(t, c.Elapsed)

	c.Tick()
	assert.Equal(t, 100*time.Millisecond, c.Elapsed)
	assert.Equal(t, 100*time.Millisecond, c.Delta)

	c.Tick()
	assert.Equal(t, 200*time.Millisecond, c.Elapsed)
	assert.Equal(t, 100*time.Millisecond, c.Delta)
	assert.InDelta(t, 0.2, c.ElapsedSeconds(), 1e-6)
	assert.InDelta(t, 0.1, c.DeltaSeconds(), 1e-6)
}

func TestClock_NeverRunsBackwards(t *testing.T) {
	times := []time.Time{time.Unix(10, 0), time.Unix(12, 0), time.Unix(11, 0), time.Unix(13, 0)}
	i := 0
	c := NewClock(func() time.Time {
		v := times[i]
		i++
		return v
	})

	c.Tick()
	assert.Equal(t, 2*time.Second, c.Elapsed)
	c.Tick()
	assert.Equal(t, 2*time.Second, c.Elapsed)
	assert.Zero(t, c.Delta)
	c.Tick()
	assert.Equal(t, 3*time.Second, c.Elapsed)
	assert.Equal(t, time.Second, c.Delta)
}

func TestTimeModule_TicksInPrelude(t *testing.T) {
	app := NewApp()
	app.UseModules(TimeModule{Source: StepSource(time.Unix(0, 0), time.Second)})

	var seen []float32
	app.UseSystem(System(func(c *Clock) { seen = append(seen, c.ElapsedSeconds()) }).InStage(Update))
	for i := 0; i < 3; i++ {
		assert.NoError(t, app.Step())
	}
	assert.Equal(t, []float32{1, 2, 3}, seen)
}

func TestNewClock_DefaultsToWallTime(t *testing.T) {
	c := NewClock(nil)
	time.Sleep(time.Millisecond)
	c.Tick()
	assert.Positive(t, c.Elapsed)
}
