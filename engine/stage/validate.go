package stage

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-q3/engine/model"
	"github.com/chewxy/math32"
)

// Configuration errors reported by Validate. Test for them with errors.Is.
var (
	ErrBadTCGen                = errors.New("tcGen is bad")
	ErrTCGenOutOfRange         = errors.New("tcGen out of range")
	ErrAlphaTestFuncOutOfRange = errors.New("alpha test function out of range")
	ErrEnvMapRequiresNormals   = errors.New("environment tcGen requires vertex normals")
	ErrInvalidFlag             = errors.New("flag must be 0 or 1")
	ErrNegativeAnimFrame       = errors.New("animation frame is negative")
	ErrNonFinite               = errors.New("value is not finite")
	ErrBlendModeOutOfRange     = errors.New("blend mode out of range")
)

// Validate checks a stage block once, at bind time, for the configuration errors the evaluator
// assumes never reach it. The per-pixel path does not repeat these checks.
//
// Parameters:
//   - u: the stage block about to be bound
//   - format: the optional attributes the vertex stream carries
//
// Returns:
//   - error: every problem found joined with errors.Join, or nil
func Validate(u GPUStageUniforms, format model.VertexFormat) error {
	var errs []error

	switch {
	case !u.TCGen.Valid():
		errs = append(errs, fmt.Errorf("tcGen %d: %w", int32(u.TCGen), ErrTCGenOutOfRange))
	case u.TCGen == TCGenBad:
		errs = append(errs, ErrBadTCGen)
	case u.TCGen == TCGenEnvMap && !format.Normals:
		errs = append(errs, ErrEnvMapRequiresNormals)
	}

	if !u.AlphaTestFunc.Valid() {
		errs = append(errs, fmt.Errorf("alphaTestFunc %d: %w", int32(u.AlphaTestFunc), ErrAlphaTestFuncOutOfRange))
	}

	flags := []struct {
		name  string
		value int32
	}{
		{"useVertexColor", u.UseVertexColor},
		{"useVertexAlpha", u.UseVertexAlpha},
		{"useLightmap", u.UseLightmap},
	}
	for _, f := range flags {
		if f.value != 0 && f.value != 1 {
			errs = append(errs, fmt.Errorf("%s = %d: %w", f.name, f.value, ErrInvalidFlag))
		}
	}

	if u.AnimFrame < 0 {
		errs = append(errs, fmt.Errorf("animFrame %d: %w", u.AnimFrame, ErrNegativeAnimFrame))
	}

	floats := []struct {
		name  string
		value float32
	}{
		{"color.r", u.Color[0]}, {"color.g", u.Color[1]}, {"color.b", u.Color[2]}, {"color.a", u.Color[3]},
		{"tcModMat[0]", u.TCModMat[0]}, {"tcModMat[1]", u.TCModMat[1]},
		{"tcModMat[2]", u.TCModMat[2]}, {"tcModMat[3]", u.TCModMat[3]},
		{"tcModOffset.s", u.TCModOffset[0]}, {"tcModOffset.t", u.TCModOffset[1]},
		{"alphaTestValue", u.AlphaTestValue},
		{"turbAmplitude", u.TurbAmplitude}, {"turbPhase", u.TurbPhase},
		{"turbFrequency", u.TurbFrequency}, {"turbTime", u.TurbTime},
	}
	for _, f := range floats {
		if math32.IsNaN(f.value) || math32.IsInf(f.value, 0) {
			errs = append(errs, fmt.Errorf("%s: %w", f.name, ErrNonFinite))
		}
	}

	return errors.Join(errs...)
}
