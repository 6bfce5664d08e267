package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func TestTickLogsOncePerInterval(t *testing.T) {
	clock := &fakeClock{t: time.Unix(100, 0)}
	p := NewProfiler(WithClock(clock.now), WithInterval(500*time.Millisecond))

	for range 4 {
		clock.advance(100 * time.Millisecond)
		assert.False(t, p.Tick())
	}
	clock.advance(100 * time.Millisecond)
	require.True(t, p.Tick())

	s := p.Last()
	assert.Equal(t, 5, s.Frames)
	assert.Equal(t, 500*time.Millisecond, s.Elapsed)
	assert.InDelta(t, 10.0, s.FPS, 1e-9)
	assert.Equal(t, 100*time.Millisecond, s.FrameTime)
	assert.Greater(t, s.SysMB, 0.0)

	clock.advance(100 * time.Millisecond)
	assert.False(t, p.Tick())
}

func TestSummaryCoversWholeRun(t *testing.T) {
	clock := &fakeClock{t: time.Unix(100, 0)}
	p := NewProfiler(WithClock(clock.now), WithInterval(time.Second))

	for range 8 {
		clock.advance(250 * time.Millisecond)
		p.Tick()
	}

	s := p.Summary()
	assert.Equal(t, 8, s.Frames)
	assert.Equal(t, 2*time.Second, s.Elapsed)
	assert.InDelta(t, 4.0, s.FPS, 1e-9)
	assert.Equal(t, 250*time.Millisecond, s.FrameTime)
}

func TestSummaryBeforeFirstFrame(t *testing.T) {
	clock := &fakeClock{t: time.Unix(100, 0)}
	p := NewProfiler(WithClock(clock.now))

	s := p.Summary()
	assert.Zero(t, s.Frames)
	assert.Zero(t, s.FPS)
	assert.Zero(t, s.FrameTime)
	assert.Equal(t, Stats{}, p.Last())
}
