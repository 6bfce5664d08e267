package frame

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-q3/common"
)

// ErrTimeRegressed is returned by Publish when a frame's time is earlier than the current frame's.
var ErrTimeRegressed = errors.New("frame time regressed")

type publisherImpl struct {
	mu      *sync.Mutex
	current atomic.Pointer[frameImpl]
}

// Publisher is the single writer of the per-frame block. Readers take a snapshot with Current
// and keep using it for the whole frame; publishing swaps in a new snapshot and never mutates
// the old one, so readers of frame N are never disturbed by frame N+1.
type Publisher interface {
	// Publish makes f the current frame and stamps it with the next generation.
	// The frame time must not be earlier than the time of the current frame.
	//
	// Parameters:
	//   - f: the frame to publish
	//
	// Returns:
	//   - Frame: the published snapshot carrying its generation
	//   - error: ErrTimeRegressed if time went backwards, nil otherwise
	Publish(f Frame) (Frame, error)

	// Current returns the most recently published frame, or nil before the first Publish.
	//
	// Returns:
	//   - Frame: the current frame snapshot
	Current() Frame

	// Generation returns the generation of the current frame, zero before the first Publish.
	//
	// Returns:
	//   - uint64: the current generation
	Generation() uint64
}

var _ Publisher = &publisherImpl{}

// NewPublisher creates a new Publisher with no current frame.
//
// Returns:
//   - Publisher: the newly created publisher
func NewPublisher() Publisher {
	return &publisherImpl{
		mu: &sync.Mutex{},
	}
}

func (p *publisherImpl) Publish(f Frame) (Frame, error) {
	if f == nil {
		panic("cannot publish a nil frame")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	prev := p.current.Load()
	var gen uint64 = 1
	if prev != nil {
		if f.Time() < prev.time {
			common.Logger().Warn("frame rejected", "time", f.Time(), "current_time", prev.time, "generation", prev.generation)
			return nil, fmt.Errorf("publish at %g after %g: %w", f.Time(), prev.time, ErrTimeRegressed)
		}
		gen = prev.generation + 1
	}

	next := toImpl(f).withGeneration(gen)
	p.current.Store(next)
	common.Logger().Debug("frame published", "generation", gen, "time", next.time)
	return next, nil
}

func (p *publisherImpl) Current() Frame {
	f := p.current.Load()
	if f == nil {
		return nil
	}
	return f
}

func (p *publisherImpl) Generation() uint64 {
	f := p.current.Load()
	if f == nil {
		return 0
	}
	return f.generation
}

// toImpl copies any Frame implementation into a frameImpl.
func toImpl(f Frame) *frameImpl {
	if fi, ok := f.(*frameImpl); ok {
		return fi
	}
	return &frameImpl{
		time:             f.Time(),
		viewOrigin:       f.ViewOrigin(),
		projectionMatrix: f.ProjectionMatrix(),
		viewMatrix:       f.ViewMatrix(),
		modelMatrix:      f.ModelMatrix(),
	}
}
