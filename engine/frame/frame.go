package frame

import (
	"github.com/Carmen-Shannon/oxy-q3/common"
)

type frameImpl struct {
	generation uint64
	time       float32
	viewOrigin [3]float32

	projectionMatrix [16]float32
	viewMatrix       [16]float32
	modelMatrix      [16]float32
}

// Frame is an immutable description of everything that is constant across one rendered
// frame: the three transforms, the eye position and the frame time. A Frame is never
// modified after construction; the next frame is a new value built with WithFrom.
type Frame interface {
	// Generation returns the publication counter assigned by a Publisher.
	// Frames that were never published report zero.
	//
	// Returns:
	//   - uint64: the generation of this frame
	Generation() uint64

	// Time returns the frame time in seconds.
	//
	// Returns:
	//   - float32: the frame time
	Time() float32

	// ViewOrigin returns the world-space eye position.
	//
	// Returns:
	//   - [3]float32: the eye position
	ViewOrigin() [3]float32

	// ProjectionMatrix returns the view -> clip transform (column-major).
	//
	// Returns:
	//   - [16]float32: the projection matrix
	ProjectionMatrix() [16]float32

	// ViewMatrix returns the world -> view transform (column-major).
	//
	// Returns:
	//   - [16]float32: the view matrix
	ViewMatrix() [16]float32

	// ModelMatrix returns the object -> world transform (column-major).
	//
	// Returns:
	//   - [16]float32: the model matrix
	ModelMatrix() [16]float32

	// ModelViewProjection returns projection * view * model (column-major).
	//
	// Returns:
	//   - [16]float32: the combined transform
	ModelViewProjection() [16]float32

	// Uniforms returns the GPU block for this frame.
	//
	// Returns:
	//   - GPUFrameUniforms: the frame uniform block
	Uniforms() GPUFrameUniforms
}

var _ Frame = &frameImpl{}

// NewFrame creates a new Frame. Unset transforms default to identity and the time to zero.
//
// Parameters:
//   - options: functional options to configure the frame
//
// Returns:
//   - Frame: the newly created frame
func NewFrame(options ...FrameBuilderOption) Frame {
	f := &frameImpl{}
	common.Identity(f.projectionMatrix[:])
	common.Identity(f.viewMatrix[:])
	common.Identity(f.modelMatrix[:])
	for _, option := range options {
		option(f)
	}
	return f
}

func (f *frameImpl) Generation() uint64 {
	return f.generation
}

func (f *frameImpl) Time() float32 {
	return f.time
}

func (f *frameImpl) ViewOrigin() [3]float32 {
	return f.viewOrigin
}

func (f *frameImpl) ProjectionMatrix() [16]float32 {
	return f.projectionMatrix
}

func (f *frameImpl) ViewMatrix() [16]float32 {
	return f.viewMatrix
}

func (f *frameImpl) ModelMatrix() [16]float32 {
	return f.modelMatrix
}

func (f *frameImpl) ModelViewProjection() [16]float32 {
	var vm, mvp [16]float32
	common.Mul4(vm[:], f.viewMatrix[:], f.modelMatrix[:])
	common.Mul4(mvp[:], f.projectionMatrix[:], vm[:])
	return mvp
}

func (f *frameImpl) Uniforms() GPUFrameUniforms {
	return GPUFrameUniforms{
		ProjectionMatrix: f.projectionMatrix,
		ViewMatrix:       f.viewMatrix,
		ModelMatrix:      f.modelMatrix,
		ViewOrigin:       f.viewOrigin,
		Time:             f.time,
	}
}

// withGeneration returns a copy of f carrying the given generation.
func (f *frameImpl) withGeneration(gen uint64) *frameImpl {
	c := *f
	c.generation = gen
	return &c
}
