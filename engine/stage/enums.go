package stage

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownName is returned by the Parse functions for names that match no enum value.
var ErrUnknownName = errors.New("unknown name")

// TCGen selects how the base texture coordinate of a stage is derived before tcMod.
type TCGen int32

const (
	// TCGenBad marks a stage whose coordinate source could not be resolved. It is never
	// evaluated as Identity.
	TCGenBad TCGen = iota
	// TCGenIdentity passes the vertex texture coordinate through.
	TCGenIdentity
	// TCGenLightmap uses the lightmap coordinate, or the texture coordinate when the
	// vertex stream has none.
	TCGenLightmap
	// TCGenTexture is an explicit texture-space passthrough.
	TCGenTexture
	// TCGenEnvMap derives coordinates from the view vector reflected about the normal.
	TCGenEnvMap
	// TCGenFog derives coordinates from view-space depth.
	TCGenFog
	// TCGenVector projects the position onto the injected S and T vectors.
	TCGenVector
)

var tcGenNames = [...]string{"bad", "identity", "lightmap", "texture", "environment", "fog", "vector"}

func (g TCGen) String() string {
	if g.Valid() {
		return tcGenNames[g]
	}
	return fmt.Sprintf("TCGen(%d)", int32(g))
}

// Valid reports whether g is one of the defined TCGen values. TCGenBad is defined.
func (g TCGen) Valid() bool {
	return g >= TCGenBad && g <= TCGenVector
}

// ParseTCGen parses a tcGen name. Aliases: "base" for texture, "envmap" for environment.
//
// Parameters:
//   - s: the name, case insensitive
//
// Returns:
//   - TCGen: the parsed value
//   - error: ErrUnknownName if s names no value
func ParseTCGen(s string) (TCGen, error) {
	switch n := strings.ToLower(strings.TrimSpace(s)); n {
	case "base":
		return TCGenTexture, nil
	case "envmap":
		return TCGenEnvMap, nil
	default:
		for i, name := range tcGenNames {
			if name == n {
				return TCGen(i), nil
			}
		}
	}
	return TCGenBad, fmt.Errorf("tcGen %q: %w", s, ErrUnknownName)
}

// AlphaTestFunc selects the alpha test comparison.
type AlphaTestFunc int32

const (
	// AlphaTestNone always passes.
	AlphaTestNone AlphaTestFunc = iota
	// AlphaTestGreaterThanZero passes when alpha > 0.
	AlphaTestGreaterThanZero
	// AlphaTestLessThan128 passes when alpha < AlphaTestValue.
	AlphaTestLessThan128
	// AlphaTestGreaterOrEqual128 passes when alpha >= AlphaTestValue.
	AlphaTestGreaterOrEqual128
)

// DefaultAlphaTestThreshold is the nominal 128/255 threshold of the LT128 and GE128 tests.
const DefaultAlphaTestThreshold float32 = 128.0 / 255.0

var alphaTestNames = [...]string{"none", "GT0", "LT128", "GE128"}

func (a AlphaTestFunc) String() string {
	if a.Valid() {
		return alphaTestNames[a]
	}
	return fmt.Sprintf("AlphaTestFunc(%d)", int32(a))
}

// Valid reports whether a is one of the defined AlphaTestFunc values.
func (a AlphaTestFunc) Valid() bool {
	return a >= AlphaTestNone && a <= AlphaTestGreaterOrEqual128
}

// DefaultValue returns the threshold a stage uses when none is authored.
func (a AlphaTestFunc) DefaultValue() float32 {
	switch a {
	case AlphaTestLessThan128, AlphaTestGreaterOrEqual128:
		return DefaultAlphaTestThreshold
	default:
		return 0
	}
}

// ParseAlphaTestFunc parses an alphaFunc name such as "GT0", "LT128" or "GE128".
//
// Parameters:
//   - s: the name, case insensitive; empty means none
//
// Returns:
//   - AlphaTestFunc: the parsed value
//   - error: ErrUnknownName if s names no value
func ParseAlphaTestFunc(s string) (AlphaTestFunc, error) {
	n := strings.TrimSpace(s)
	if n == "" {
		return AlphaTestNone, nil
	}
	for i, name := range alphaTestNames {
		if strings.EqualFold(name, n) {
			return AlphaTestFunc(i), nil
		}
	}
	return AlphaTestNone, fmt.Errorf("alphaFunc %q: %w", s, ErrUnknownName)
}

// WaveFunc selects the periodic function of a Wave.
type WaveFunc int32

const (
	// WaveSin is sin(2*pi*x).
	WaveSin WaveFunc = iota
	// WaveTriangle rises from 0 to 1 over the first quarter, falls to -1 at three quarters
	// and returns to 0.
	WaveTriangle
	// WaveSquare is 1 for the first half of the period and -1 for the second.
	WaveSquare
	// WaveSawtooth ramps from 0 to 1.
	WaveSawtooth
	// WaveInverseSawtooth ramps from 1 to 0.
	WaveInverseSawtooth
)

var waveNames = [...]string{"sin", "triangle", "square", "sawtooth", "inversesawtooth"}

func (w WaveFunc) String() string {
	if w.Valid() {
		return waveNames[w]
	}
	return fmt.Sprintf("WaveFunc(%d)", int32(w))
}

// Valid reports whether w is one of the defined WaveFunc values.
func (w WaveFunc) Valid() bool {
	return w >= WaveSin && w <= WaveInverseSawtooth
}

// ParseWaveFunc parses a waveform name.
//
// Parameters:
//   - s: the name, case insensitive
//
// Returns:
//   - WaveFunc: the parsed value
//   - error: ErrUnknownName if s names no value
func ParseWaveFunc(s string) (WaveFunc, error) {
	n := strings.ToLower(strings.TrimSpace(s))
	for i, name := range waveNames {
		if name == n {
			return WaveFunc(i), nil
		}
	}
	return WaveSin, fmt.Errorf("wave %q: %w", s, ErrUnknownName)
}

// BlendMode is the framebuffer blend applied after a stage passes its alpha test.
type BlendMode int32

const (
	// BlendOpaque replaces the destination (GL_ONE, GL_ZERO).
	BlendOpaque BlendMode = iota
	// BlendAdd adds the source to the destination (GL_ONE, GL_ONE).
	BlendAdd
	// BlendFilter multiplies the destination by the source (GL_DST_COLOR, GL_ZERO).
	BlendFilter
	// BlendAlpha mixes by source alpha (GL_SRC_ALPHA, GL_ONE_MINUS_SRC_ALPHA).
	BlendAlpha
)

var blendNames = [...]string{"opaque", "add", "filter", "blend"}

func (b BlendMode) String() string {
	if b.Valid() {
		return blendNames[b]
	}
	return fmt.Sprintf("BlendMode(%d)", int32(b))
}

// Valid reports whether b is one of the defined BlendMode values.
func (b BlendMode) Valid() bool {
	return b >= BlendOpaque && b <= BlendAlpha
}

// ParseBlendMode parses a blendFunc shorthand. Empty means opaque.
//
// Parameters:
//   - s: the name, case insensitive
//
// Returns:
//   - BlendMode: the parsed value
//   - error: ErrUnknownName if s names no value
func ParseBlendMode(s string) (BlendMode, error) {
	n := strings.ToLower(strings.TrimSpace(s))
	if n == "" {
		return BlendOpaque, nil
	}
	for i, name := range blendNames {
		if name == n {
			return BlendMode(i), nil
		}
	}
	return BlendOpaque, fmt.Errorf("blendFunc %q: %w", s, ErrUnknownName)
}
