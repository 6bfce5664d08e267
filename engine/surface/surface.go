package surface

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-q3/engine/frame"
	"github.com/Carmen-Shannon/oxy-q3/engine/model"
	"github.com/Carmen-Shannon/oxy-q3/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-q3/engine/stage"
	"github.com/Carmen-Shannon/oxy-q3/engine/texture"
)

// Layer is one stage of a surface together with the textures it samples.
// A nil Color samples white; a nil Lightmap samples white as well.
type Layer struct {
	Stage    stage.Stage
	Color    texture.Texture
	Lightmap texture.Texture
}

// ResolvedStage is the per-draw state of one layer for one frame.
type ResolvedStage struct {
	// Index is the position of the layer in authored order.
	Index    int
	Layer    Layer
	Uniforms stage.GPUStageUniforms
	Vectors  stage.GPUTCGenVectors
}

// surface is the implementation of the Surface interface.
type surface struct {
	mu *sync.Mutex

	name        string
	sort        float32
	layers      []Layer
	pipelineKey string
	providers   []bind_group_provider.BindGroupProvider
}

// Surface defines the interface for a multi-pass surface shader: a named, ordered list of
// stages drawn one after another over the same geometry, each blending onto the result of
// the previous one.
//
// The layers are fixed at construction. GPU resource references (pipeline key, per-stage
// bind group providers) are mutable so the upload path can attach them after construction.
type Surface interface {
	// Name retrieves the surface identifier.
	//
	// Returns:
	//   - string: the surface name
	Name() string

	// Sort retrieves the sort key; surfaces are drawn in ascending order.
	//
	// Returns:
	//   - float32: the sort key
	Sort() float32

	// Layers retrieves the stages in authored order.
	//
	// Returns:
	//   - []Layer: the layers, never modified by the caller
	Layers() []Layer

	// Resolve computes the stage blocks of every layer for a frame, in authored order.
	// All layers share the frame; each gets its own block.
	//
	// Parameters:
	//   - f: the frame being rendered
	//
	// Returns:
	//   - []ResolvedStage: one entry per layer
	Resolve(f frame.Frame) []ResolvedStage

	// Validate checks every layer against the vertex stream the surface is drawn with.
	//
	// Parameters:
	//   - format: the optional attributes the vertex stream carries
	//
	// Returns:
	//   - error: every configuration error found, joined, or nil
	Validate(format model.VertexFormat) error

	// PipelineKey retrieves the key of the shader this surface is drawn with.
	//
	// Returns:
	//   - string: the pipeline key
	PipelineKey() string

	// SetPipelineKey sets the key of the shader this surface is drawn with.
	//
	// Parameters:
	//   - key: the pipeline key
	SetPipelineKey(key string)

	// StageProvider retrieves the GPU resources of one layer, or nil if not yet uploaded.
	//
	// Parameters:
	//   - index: the layer index
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the provider, or nil
	StageProvider(index int) bind_group_provider.BindGroupProvider

	// SetStageProvider attaches the GPU resources of one layer.
	//
	// Parameters:
	//   - index: the layer index
	//   - provider: the provider holding the layer's buffers and textures
	SetStageProvider(index int, provider bind_group_provider.BindGroupProvider)
}

var _ Surface = &surface{}

// NewSurface creates a new Surface configured with the provided options.
// It panics if no layer was given or a layer has no stage.
//
// Parameters:
//   - options: variadic list of SurfaceBuilderOption functions to configure the surface
//
// Returns:
//   - Surface: a new Surface instance
func NewSurface(options ...SurfaceBuilderOption) Surface {
	s := &surface{
		mu:          &sync.Mutex{},
		pipelineKey: DefaultPipelineKey,
	}
	for _, opt := range options {
		opt(s)
	}
	if len(s.layers) == 0 {
		panic(fmt.Sprintf("surface %q has no layers", s.name))
	}
	for i, l := range s.layers {
		if l.Stage == nil {
			panic(fmt.Sprintf("surface %q layer %d has no stage", s.name, i))
		}
	}
	s.providers = make([]bind_group_provider.BindGroupProvider, len(s.layers))
	return s
}

// DefaultPipelineKey is the shader key of world surfaces.
const DefaultPipelineKey = "surface_stage"

func (s *surface) Name() string {
	return s.name
}

func (s *surface) Sort() float32 {
	return s.sort
}

func (s *surface) Layers() []Layer {
	return s.layers
}

func (s *surface) Resolve(f frame.Frame) []ResolvedStage {
	out := make([]ResolvedStage, len(s.layers))
	for i, l := range s.layers {
		out[i] = ResolvedStage{
			Index:    i,
			Layer:    l,
			Uniforms: l.Stage.Uniforms(f),
			Vectors:  l.Stage.TCGenVectors(),
		}
	}
	return out
}

func (s *surface) Validate(format model.VertexFormat) error {
	var errs []error
	for i, l := range s.layers {
		if err := l.Stage.Validate(format); err != nil {
			errs = append(errs, fmt.Errorf("layer %d: %w", i, err))
		}
		if l.Color != nil && l.Stage.AnimFrames() > l.Color.Layers() {
			errs = append(errs, fmt.Errorf("layer %d: animMap has %d frames but texture %q has %d layers",
				i, l.Stage.AnimFrames(), l.Color.Name(), l.Color.Layers()))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("surface %q: %w", s.name, errors.Join(errs...))
}

func (s *surface) PipelineKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pipelineKey
}

func (s *surface) SetPipelineKey(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pipelineKey = key
}

func (s *surface) StageProvider(index int) bind_group_provider.BindGroupProvider {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.providers) {
		return nil
	}
	return s.providers[index]
}

func (s *surface) SetStageProvider(index int, provider bind_group_provider.BindGroupProvider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.providers) {
		panic(fmt.Sprintf("surface %q has no layer %d", s.name, index))
	}
	s.providers[index] = provider
}
