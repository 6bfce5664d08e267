package stage

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-q3/engine/frame"
	"github.com/Carmen-Shannon/oxy-q3/engine/model"
	"github.com/chewxy/math32"
)

// stage is the implementation of the Stage interface.
type stage struct {
	name string

	tcGen   TCGen
	sVector [3]float32
	tVector [3]float32
	tcMods  []TCMod

	rgbGen        RGBGen
	alphaGen      AlphaGen
	identityLight float32

	animFrequency float32
	animFrames    int

	alphaTestFunc     AlphaTestFunc
	alphaTestValue    float32
	hasAlphaTestValue bool

	useLightmap bool
	timeOffset  float32

	blendMode  BlendMode
	depthWrite *bool
}

// Stage defines the setup side of one texture stage: the authored generators and modifiers
// that are resolved once per frame into a GPUStageUniforms block. A Stage is immutable after
// construction and safe for concurrent use.
//
// Every time-dependent parameter (waves, scroll, rotate, animMap and turbulence) is evaluated
// at the stage time, the frame time plus the stage's time offset.
type Stage interface {
	// Name retrieves the stage identifier.
	//
	// Returns:
	//   - string: the stage name
	Name() string

	// TCGen retrieves the base texture coordinate source.
	//
	// Returns:
	//   - TCGen: the authored tcGen
	TCGen() TCGen

	// AlphaTestFunc retrieves the alpha test comparison.
	//
	// Returns:
	//   - AlphaTestFunc: the authored alpha test
	AlphaTestFunc() AlphaTestFunc

	// BlendMode retrieves the framebuffer blend applied after the alpha test.
	//
	// Returns:
	//   - BlendMode: the authored blend mode
	BlendMode() BlendMode

	// DepthWrite reports whether pixels passing the alpha test write depth.
	// Unless set explicitly it is true only for opaque stages.
	//
	// Returns:
	//   - bool: true if depth is written
	DepthWrite() bool

	// UsesLightmap reports whether this stage multiplies in the lightmap sample.
	//
	// Returns:
	//   - bool: true if the lightmap is sampled
	UsesLightmap() bool

	// AnimFrames retrieves the number of frames of the animated color texture, or 1.
	//
	// Returns:
	//   - int: the frame count
	AnimFrames() int

	// TurbTime returns the turbulence time for a frame: the frame time plus the stage's time offset.
	// It tracks the frame clock exactly and never resets between frames.
	//
	// Parameters:
	//   - f: the frame being rendered
	//
	// Returns:
	//   - float32: the stage time
	TurbTime(f frame.Frame) float32

	// Uniforms resolves the stage for a frame.
	//
	// Parameters:
	//   - f: the frame being rendered
	//
	// Returns:
	//   - GPUStageUniforms: the fully determined stage block
	Uniforms(f frame.Frame) GPUStageUniforms

	// UniformsAt resolves the stage at a raw frame time, for callers that have no Frame.
	//
	// Parameters:
	//   - frameTime: the frame time in seconds
	//
	// Returns:
	//   - GPUStageUniforms: the fully determined stage block
	UniformsAt(frameTime float32) GPUStageUniforms

	// TCGenVectors returns the injected S and T vectors read by TCGenVector.
	//
	// Returns:
	//   - GPUTCGenVectors: the vector block
	TCGenVectors() GPUTCGenVectors

	// Validate checks the resolved stage against the vertex stream it will be drawn with.
	//
	// Parameters:
	//   - format: the optional attributes the vertex stream carries
	//
	// Returns:
	//   - error: every configuration error found, joined, or nil
	Validate(format model.VertexFormat) error
}

var _ Stage = &stage{}

// NewStage creates a new Stage configured with the provided options. The defaults are an
// identity tcGen, identity rgbGen and alphaGen, no alpha test and opaque blending.
//
// Parameters:
//   - options: variadic list of StageBuilderOption functions to configure the stage
//
// Returns:
//   - Stage: a new Stage instance
func NewStage(options ...StageBuilderOption) Stage {
	s := &stage{
		tcGen:         TCGenIdentity,
		identityLight: 1,
		animFrames:    1,
		sVector:       [3]float32{1, 0, 0},
		tVector:       [3]float32{0, 1, 0},
	}
	for _, opt := range options {
		opt(s)
	}
	if s.animFrames < 1 {
		panic(fmt.Sprintf("stage %q: animMap needs at least one frame, got %d", s.name, s.animFrames))
	}
	return s
}

func (s *stage) Name() string {
	return s.name
}

func (s *stage) TCGen() TCGen {
	return s.tcGen
}

func (s *stage) AlphaTestFunc() AlphaTestFunc {
	return s.alphaTestFunc
}

func (s *stage) BlendMode() BlendMode {
	return s.blendMode
}

func (s *stage) DepthWrite() bool {
	if s.depthWrite != nil {
		return *s.depthWrite
	}
	return s.blendMode == BlendOpaque
}

func (s *stage) UsesLightmap() bool {
	return s.useLightmap
}

func (s *stage) AnimFrames() int {
	return s.animFrames
}

func (s *stage) TurbTime(f frame.Frame) float32 {
	return f.Time() + s.timeOffset
}

func (s *stage) Uniforms(f frame.Frame) GPUStageUniforms {
	return s.UniformsAt(f.Time())
}

func (s *stage) UniformsAt(frameTime float32) GPUStageUniforms {
	t := frameTime + s.timeOffset

	rgb, useVertexColor := s.rgbGen.Resolve(t, s.identityLight)
	alpha, useVertexAlpha := s.alphaGen.Resolve(t)
	affine, turb := ComposeTCMods(s.tcMods, t)

	u := GPUStageUniforms{
		Color:          [4]float32{rgb[0], rgb[1], rgb[2], alpha},
		TCModMat:       affine.M,
		TCModOffset:    affine.O,
		AlphaTestFunc:  s.alphaTestFunc,
		AlphaTestValue: s.alphaTestFunc.DefaultValue(),
		UseVertexColor: boolToInt32(useVertexColor),
		UseVertexAlpha: boolToInt32(useVertexAlpha),
		TCGen:          s.tcGen,
		AnimFrame:      s.animFrame(t),
		TurbTime:       t,
		UseLightmap:    boolToInt32(s.useLightmap),
	}
	if s.hasAlphaTestValue {
		u.AlphaTestValue = s.alphaTestValue
	}
	if turb != nil {
		u.TurbAmplitude = turb.Wave.Amplitude
		u.TurbPhase = turb.Wave.Phase
		u.TurbFrequency = turb.Wave.Frequency
	}
	return u
}

func (s *stage) TCGenVectors() GPUTCGenVectors {
	return GPUTCGenVectors{
		SVector: [4]float32{s.sVector[0], s.sVector[1], s.sVector[2], 0},
		TVector: [4]float32{s.tVector[0], s.tVector[1], s.tVector[2], 0},
	}
}

func (s *stage) Validate(format model.VertexFormat) error {
	var errs []error
	if !s.blendMode.Valid() {
		errs = append(errs, fmt.Errorf("blend mode %d: %w", int32(s.blendMode), ErrBlendModeOutOfRange))
	}
	if err := Validate(s.UniformsAt(0), format); err != nil {
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("stage %q: %w", s.name, errors.Join(errs...))
}

// animFrame maps the stage time onto a frame of the animMap, wrapping negative times.
func (s *stage) animFrame(t float32) int32 {
	if s.animFrames <= 1 || s.animFrequency == 0 {
		return 0
	}
	n := int64(math32.Floor(t * s.animFrequency))
	frames := int64(s.animFrames)
	return int32(((n % frames) + frames) % frames)
}
