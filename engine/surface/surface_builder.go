package surface

import (
	"github.com/Carmen-Shannon/oxy-q3/engine/stage"
	"github.com/Carmen-Shannon/oxy-q3/engine/texture"
)

// SurfaceBuilderOption is a function that configures a surface instance during construction.
type SurfaceBuilderOption func(*surface)

// WithName is an option builder that sets the name of the surface.
//
// Parameters:
//   - name: the identifier for the surface
//
// Returns:
//   - SurfaceBuilderOption: a function that applies the name option to a surface
func WithName(name string) SurfaceBuilderOption {
	return func(s *surface) {
		s.name = name
	}
}

// WithSort is an option builder that sets the sort key of the surface.
//
// Parameters:
//   - sort: the sort key, lower draws first
//
// Returns:
//   - SurfaceBuilderOption: a function that applies the sort option to a surface
func WithSort(sort float32) SurfaceBuilderOption {
	return func(s *surface) {
		s.sort = sort
	}
}

// WithLayer is an option builder that appends one stage with its textures.
//
// Parameters:
//   - st: the stage
//   - color: the color texture, nil for white
//   - lightmap: the lightmap texture, nil for white
//
// Returns:
//   - SurfaceBuilderOption: a function that appends the layer to a surface
func WithLayer(st stage.Stage, color, lightmap texture.Texture) SurfaceBuilderOption {
	return func(s *surface) {
		s.layers = append(s.layers, Layer{Stage: st, Color: color, Lightmap: lightmap})
	}
}

// WithPipelineKey is an option builder that sets the shader key of the surface.
//
// Parameters:
//   - key: the pipeline key
//
// Returns:
//   - SurfaceBuilderOption: a function that applies the pipeline key to a surface
func WithPipelineKey(key string) SurfaceBuilderOption {
	return func(s *surface) {
		s.pipelineKey = key
	}
}
