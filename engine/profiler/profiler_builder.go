package profiler

import "time"

// ProfilerOption is a functional option applied to a Profiler during construction via NewProfiler.
type ProfilerOption func(*Profiler)

// WithInterval sets how often Tick logs statistics.
//
// Parameters:
//   - d: the update interval, ignored if not positive
//
// Returns:
//   - ProfilerOption: a function that applies the interval to a profiler
func WithInterval(d time.Duration) ProfilerOption {
	return func(p *Profiler) {
		if d > 0 {
			p.updateInterval = d
		}
	}
}

// WithClock replaces the wall clock used to time frames.
//
// Parameters:
//   - now: the clock
//
// Returns:
//   - ProfilerOption: a function that applies the clock to a profiler
func WithClock(now func() time.Time) ProfilerOption {
	return func(p *Profiler) {
		p.now = now
	}
}
