package evaluator

import (
	"github.com/Carmen-Shannon/oxy-q3/engine/frame"
	"github.com/Carmen-Shannon/oxy-q3/engine/model"
	"github.com/Carmen-Shannon/oxy-q3/engine/stage"
	"github.com/Carmen-Shannon/oxy-q3/engine/texture"
)

// Outcome is the fate of one evaluated pixel.
type Outcome int

const (
	// OutcomeWritten means the pixel passed the alpha test and its color may be blended.
	OutcomeWritten Outcome = iota
	// OutcomeDiscarded means the alpha test failed; nothing is written.
	OutcomeDiscarded
	// OutcomeMisconfigured means the stage block violated a precondition (bad tcGen,
	// out-of-range enum, environment mapping without normals). Nothing is written.
	OutcomeMisconfigured
)

func (o Outcome) String() string {
	switch o {
	case OutcomeWritten:
		return "written"
	case OutcomeDiscarded:
		return "discarded"
	case OutcomeMisconfigured:
		return "misconfigured"
	default:
		return "unknown"
	}
}

// Interpolants are the vertex attributes interpolated at one pixel. Format reports which
// of the optional attributes carry real data.
type Interpolants struct {
	// Position is the object-space position. 2D geometry uses (x, y, 0) in virtual screen units.
	Position      [3]float32
	TexCoord      [2]float32
	Color         [4]float32
	Normal        [3]float32
	LightmapCoord [2]float32
	Format        model.VertexFormat
	// Screen marks 2D geometry. It has no view depth, so tcGen fog resolves to zero.
	Screen bool
}

// Result is the output of one evaluation.
type Result struct {
	Color [4]float32
	// TexCoord is the modified coordinate the color texture was sampled at.
	TexCoord [2]float32
	Outcome  Outcome
}

// Binding is the state bound for one stage draw call: the frame block, the stage block,
// the tcGen vectors and up to two textures. A nil texture samples white.
// A Binding is read-only during evaluation and safe for concurrent use.
type Binding struct {
	Frame    frame.GPUFrameUniforms
	Stage    stage.GPUStageUniforms
	Vectors  stage.GPUTCGenVectors
	Color    texture.Texture
	Lightmap texture.Texture
}

// Evaluate computes the color of one pixel: tcGen, tcMod, color, texture sampling, lightmap,
// then the alpha test. It is a pure function of the binding and the interpolants.
//
// Parameters:
//   - in: the interpolated vertex attributes
//
// Returns:
//   - Result: the pixel color and its outcome
func (b *Binding) Evaluate(in Interpolants) Result {
	s := &b.Stage

	base, ok := BaseTexCoord(&b.Frame, s.TCGen, &b.Vectors, in)
	if !ok || !s.AlphaTestFunc.Valid() {
		return Result{Outcome: OutcomeMisconfigured}
	}

	uv := ModifyTexCoord(s, base)
	color := StageColor(s, in.Color)

	texel := sampleOrWhite(b.Color, uv, int(s.AnimFrame))
	for i := range 4 {
		color[i] *= texel[i]
	}

	if s.UseLightmap != 0 {
		lm := sampleOrWhite(b.Lightmap, LightmapTexCoord(in), 0)
		color = ApplyLightmap(color, lm)
	}

	pass, _ := AlphaTest(s.AlphaTestFunc, s.AlphaTestValue, color[3])
	if !pass {
		return Result{Color: color, TexCoord: uv, Outcome: OutcomeDiscarded}
	}
	return Result{Color: color, TexCoord: uv, Outcome: OutcomeWritten}
}

// StageColor applies the vertex color and vertex alpha flags to the stage color.
//
// Parameters:
//   - s: the stage block
//   - vertexColor: the interpolated vertex color
//
// Returns:
//   - [4]float32: the stage color before texturing
func StageColor(s *stage.GPUStageUniforms, vertexColor [4]float32) [4]float32 {
	c := s.Color
	if s.UseVertexColor != 0 {
		c[0] *= vertexColor[0]
		c[1] *= vertexColor[1]
		c[2] *= vertexColor[2]
	}
	if s.UseVertexAlpha != 0 {
		c[3] *= vertexColor[3]
	}
	return c
}

// ApplyLightmap multiplies the RGB channels by the lightmap sample. Alpha is left alone.
func ApplyLightmap(c, lightmap [4]float32) [4]float32 {
	return [4]float32{c[0] * lightmap[0], c[1] * lightmap[1], c[2] * lightmap[2], c[3]}
}

// AlphaTest compares alpha against the threshold.
//
// Parameters:
//   - fn: the comparison
//   - value: the threshold
//   - alpha: the computed alpha
//
// Returns:
//   - bool: true if the pixel survives
//   - bool: false if fn is out of range, in which case the pixel does not survive
func AlphaTest(fn stage.AlphaTestFunc, value, alpha float32) (bool, bool) {
	switch fn {
	case stage.AlphaTestNone:
		return true, true
	case stage.AlphaTestGreaterThanZero:
		return alpha > 0, true
	case stage.AlphaTestLessThan128:
		return alpha < value, true
	case stage.AlphaTestGreaterOrEqual128:
		return alpha >= value, true
	default:
		return false, false
	}
}

func sampleOrWhite(t texture.Texture, uv [2]float32, layer int) [4]float32 {
	if t == nil {
		return [4]float32{1, 1, 1, 1}
	}
	return t.Sample(uv, layer)
}
