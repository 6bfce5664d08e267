package stage

// StageBuilderOption is a function that configures a stage instance during construction.
type StageBuilderOption func(*stage)

// WithName is an option builder that sets the name of the stage.
//
// Parameters:
//   - name: the identifier for the stage
//
// Returns:
//   - StageBuilderOption: a function that applies the name option to a stage
func WithName(name string) StageBuilderOption {
	return func(s *stage) {
		s.name = name
	}
}

// WithTCGen is an option builder that sets the base texture coordinate source.
//
// Parameters:
//   - g: the tcGen
//
// Returns:
//   - StageBuilderOption: a function that applies the tcGen option to a stage
func WithTCGen(g TCGen) StageBuilderOption {
	return func(s *stage) {
		s.tcGen = g
	}
}

// WithTCGenVectors is an option builder that sets the S and T vectors of TCGenVector
// and selects that tcGen.
//
// Parameters:
//   - sVec: the vector projected onto for s
//   - tVec: the vector projected onto for t
//
// Returns:
//   - StageBuilderOption: a function that applies the vector option to a stage
func WithTCGenVectors(sVec, tVec [3]float32) StageBuilderOption {
	return func(s *stage) {
		s.tcGen = TCGenVector
		s.sVector = sVec
		s.tVector = tVec
	}
}

// WithTCMods is an option builder that appends texture coordinate modifiers in authored order.
//
// Parameters:
//   - mods: the modifiers to append
//
// Returns:
//   - StageBuilderOption: a function that applies the tcMod option to a stage
func WithTCMods(mods ...TCMod) StageBuilderOption {
	return func(s *stage) {
		s.tcMods = append(s.tcMods, mods...)
	}
}

// WithRGBGen is an option builder that sets the rgbGen.
//
// Parameters:
//   - g: the rgbGen
//
// Returns:
//   - StageBuilderOption: a function that applies the rgbGen option to a stage
func WithRGBGen(g RGBGen) StageBuilderOption {
	return func(s *stage) {
		s.rgbGen = g
	}
}

// WithAlphaGen is an option builder that sets the alphaGen.
//
// Parameters:
//   - g: the alphaGen
//
// Returns:
//   - StageBuilderOption: a function that applies the alphaGen option to a stage
func WithAlphaGen(g AlphaGen) StageBuilderOption {
	return func(s *stage) {
		s.alphaGen = g
	}
}

// WithIdentityLight is an option builder that sets the light scale of the identityLighting
// and vertex rgbGens. The default is 1.
//
// Parameters:
//   - v: the identity light value
//
// Returns:
//   - StageBuilderOption: a function that applies the identity light option to a stage
func WithIdentityLight(v float32) StageBuilderOption {
	return func(s *stage) {
		s.identityLight = v
	}
}

// WithAnimMap is an option builder that animates the color texture through frames layers
// at frequency frames per second.
//
// Parameters:
//   - frequency: frames per second
//   - frames: number of layers in the color texture, at least 1
//
// Returns:
//   - StageBuilderOption: a function that applies the animMap option to a stage
func WithAnimMap(frequency float32, frames int) StageBuilderOption {
	return func(s *stage) {
		s.animFrequency = frequency
		s.animFrames = frames
	}
}

// WithAlphaTest is an option builder that sets the alpha test comparison. The threshold
// defaults to the comparison's nominal value unless WithAlphaTestValue is also given.
//
// Parameters:
//   - fn: the alpha test comparison
//
// Returns:
//   - StageBuilderOption: a function that applies the alpha test option to a stage
func WithAlphaTest(fn AlphaTestFunc) StageBuilderOption {
	return func(s *stage) {
		s.alphaTestFunc = fn
	}
}

// WithAlphaTestValue is an option builder that overrides the alpha test threshold.
//
// Parameters:
//   - v: the threshold in the normalized alpha domain
//
// Returns:
//   - StageBuilderOption: a function that applies the threshold option to a stage
func WithAlphaTestValue(v float32) StageBuilderOption {
	return func(s *stage) {
		s.alphaTestValue = v
		s.hasAlphaTestValue = true
	}
}

// WithLightmap is an option builder that makes the stage multiply in the lightmap sample.
//
// Parameters:
//   - enabled: true to sample the lightmap
//
// Returns:
//   - StageBuilderOption: a function that applies the lightmap option to a stage
func WithLightmap(enabled bool) StageBuilderOption {
	return func(s *stage) {
		s.useLightmap = enabled
	}
}

// WithTimeOffset is an option builder that shifts the stage clock relative to the frame clock.
//
// Parameters:
//   - offset: seconds added to the frame time
//
// Returns:
//   - StageBuilderOption: a function that applies the time offset option to a stage
func WithTimeOffset(offset float32) StageBuilderOption {
	return func(s *stage) {
		s.timeOffset = offset
	}
}

// WithBlendMode is an option builder that sets the framebuffer blend.
//
// Parameters:
//   - b: the blend mode
//
// Returns:
//   - StageBuilderOption: a function that applies the blend option to a stage
func WithBlendMode(b BlendMode) StageBuilderOption {
	return func(s *stage) {
		s.blendMode = b
	}
}

// WithDepthWrite is an option builder that overrides whether the stage writes depth.
//
// Parameters:
//   - enabled: true to write depth
//
// Returns:
//   - StageBuilderOption: a function that applies the depth write option to a stage
func WithDepthWrite(enabled bool) StageBuilderOption {
	return func(s *stage) {
		s.depthWrite = &enabled
	}
}
