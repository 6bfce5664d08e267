package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-q3/common"
)

// Stats is one interval of frame timing and memory statistics.
type Stats struct {
	// Frames is the number of frames ticked during the interval.
	Frames int
	// Elapsed is the length of the interval.
	Elapsed time.Duration
	// FPS is Frames divided by Elapsed.
	FPS float64
	// FrameTime is the mean time per frame.
	FrameTime time.Duration
	// HeapMB is the live heap at the end of the interval.
	HeapMB float64
	// AllocRateMB is heap bytes allocated per second during the interval.
	AllocRateMB float64
	// SysMB is the memory obtained from the OS.
	SysMB float64
	// GCCount is the cumulative number of completed GC cycles.
	GCCount uint32
	// LastPause and MaxPause are the most recent and the longest GC pause of the interval.
	LastPause, MaxPause time.Duration
}

// Profiler tracks frame rate and memory statistics for performance monitoring.
// Outputs stats to the logger at a configurable interval.
type Profiler struct {
	frameCount     int
	totalFrames    int
	start          time.Time
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	last           Stats
	now            func() time.Time
}

// NewProfiler creates a new Profiler. Update interval defaults to 1 second.
//
// Parameters:
//   - options: variadic list of ProfilerOption functions to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		now:            time.Now,
	}
	for _, opt := range options {
		opt(p)
	}
	p.start = p.now()
	p.lastTime = p.start
	return p
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	p.totalFrames++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	p.last = p.sample(p.frameCount, elapsed)
	common.Logger().Info("profiler",
		"fps", p.last.FPS,
		"frame_ms", float64(p.last.FrameTime.Microseconds())/1000,
		"heap_mb", p.last.HeapMB,
		"alloc_mb_s", p.last.AllocRateMB,
		"gc", p.last.GCCount,
		"gc_last_us", p.last.LastPause.Microseconds(),
		"gc_max_us", p.last.MaxPause.Microseconds(),
		"sys_mb", p.last.SysMB,
	)

	p.frameCount = 0
	p.lastTime = currentTime
	return true
}

// Last returns the statistics of the most recently logged interval.
//
// Returns:
//   - Stats: the last interval, zero before the first one completes
func (p *Profiler) Last() Stats {
	return p.last
}

// Summary samples the statistics of the whole run, from construction to now.
//
// Returns:
//   - Stats: every frame ticked so far and the current memory state
func (p *Profiler) Summary() Stats {
	return p.sample(p.totalFrames, p.now().Sub(p.start))
}

func (p *Profiler) sample(frames int, elapsed time.Duration) Stats {
	runtime.ReadMemStats(&p.memStats)

	s := Stats{
		Frames:  frames,
		Elapsed: elapsed,
		HeapMB:  float64(p.memStats.Alloc) / 1024 / 1024,
		SysMB:   float64(p.memStats.Sys) / 1024 / 1024,
		GCCount: p.memStats.NumGC,
	}
	if frames > 0 {
		s.FrameTime = elapsed / time.Duration(frames)
	}
	if secs := elapsed.Seconds(); secs > 0 {
		s.FPS = float64(frames) / secs
		s.AllocRateMB = float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / secs
	}

	// PauseNs is a circular buffer of the last 256 pauses.
	if gc := p.memStats.NumGC; gc > 0 {
		s.LastPause = time.Duration(p.memStats.PauseNs[(gc-1)%256])
		startIdx := p.lastGCCount
		if gc-startIdx > 256 {
			startIdx = gc - 256
		}
		for i := startIdx; i < gc; i++ {
			s.MaxPause = max(s.MaxPause, time.Duration(p.memStats.PauseNs[i%256]))
		}
	}

	p.lastGCCount = p.memStats.NumGC
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return s
}
