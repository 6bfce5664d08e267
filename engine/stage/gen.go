package stage

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-q3/common"
)

// RGBGenKind selects how the RGB part of the stage color is produced.
type RGBGenKind int32

const (
	// RGBGenIdentity is white.
	RGBGenIdentity RGBGenKind = iota
	// RGBGenIdentityLighting is the frame identity light scale on every channel.
	RGBGenIdentityLighting
	// RGBGenConst is the authored constant color.
	RGBGenConst
	// RGBGenWave is the authored wave at frame time, clamped to [0, 1], on every channel.
	RGBGenWave
	// RGBGenVertex is the vertex color scaled by the identity light scale.
	RGBGenVertex
	// RGBGenExactVertex is the vertex color unscaled.
	RGBGenExactVertex
)

var rgbGenNames = [...]string{"identity", "identitylighting", "const", "wave", "vertex", "exactvertex"}

func (k RGBGenKind) String() string {
	if k >= RGBGenIdentity && int(k) < len(rgbGenNames) {
		return rgbGenNames[k]
	}
	return fmt.Sprintf("RGBGenKind(%d)", int32(k))
}

// ParseRGBGenKind parses an rgbGen name. Empty means identity.
func ParseRGBGenKind(s string) (RGBGenKind, error) {
	n := strings.ToLower(strings.TrimSpace(s))
	if n == "" {
		return RGBGenIdentity, nil
	}
	for i, name := range rgbGenNames {
		if name == n {
			return RGBGenKind(i), nil
		}
	}
	return RGBGenIdentity, fmt.Errorf("rgbGen %q: %w", s, ErrUnknownName)
}

// RGBGen is an authored rgbGen. Const is read by RGBGenConst and Wave by RGBGenWave.
type RGBGen struct {
	Kind  RGBGenKind
	Const [3]float32
	Wave  Wave
}

// Resolve returns the RGB color at time t and whether the vertex color must be multiplied in.
//
// Parameters:
//   - t: time in seconds
//   - identityLight: the light scale of RGBGenIdentityLighting
//
// Returns:
//   - [3]float32: the resolved color
//   - bool: true for the vertex kinds
func (g RGBGen) Resolve(t, identityLight float32) ([3]float32, bool) {
	switch g.Kind {
	case RGBGenIdentityLighting:
		return [3]float32{identityLight, identityLight, identityLight}, false
	case RGBGenConst:
		return g.Const, false
	case RGBGenWave:
		v := common.Clamp01(g.Wave.Eval(t))
		return [3]float32{v, v, v}, false
	case RGBGenVertex:
		return [3]float32{identityLight, identityLight, identityLight}, true
	case RGBGenExactVertex:
		return [3]float32{1, 1, 1}, true
	default:
		return [3]float32{1, 1, 1}, false
	}
}

// AlphaGenKind selects how the alpha part of the stage color is produced.
type AlphaGenKind int32

const (
	// AlphaGenIdentity is opaque.
	AlphaGenIdentity AlphaGenKind = iota
	// AlphaGenConst is the authored constant alpha.
	AlphaGenConst
	// AlphaGenWave is the authored wave at frame time, clamped to [0, 1].
	AlphaGenWave
	// AlphaGenVertex is the vertex alpha.
	AlphaGenVertex
)

var alphaGenNames = [...]string{"identity", "const", "wave", "vertex"}

func (k AlphaGenKind) String() string {
	if k >= AlphaGenIdentity && int(k) < len(alphaGenNames) {
		return alphaGenNames[k]
	}
	return fmt.Sprintf("AlphaGenKind(%d)", int32(k))
}

// ParseAlphaGenKind parses an alphaGen name. Empty means identity.
func ParseAlphaGenKind(s string) (AlphaGenKind, error) {
	n := strings.ToLower(strings.TrimSpace(s))
	if n == "" {
		return AlphaGenIdentity, nil
	}
	for i, name := range alphaGenNames {
		if name == n {
			return AlphaGenKind(i), nil
		}
	}
	return AlphaGenIdentity, fmt.Errorf("alphaGen %q: %w", s, ErrUnknownName)
}

// AlphaGen is an authored alphaGen. Const is read by AlphaGenConst and Wave by AlphaGenWave.
type AlphaGen struct {
	Kind  AlphaGenKind
	Const float32
	Wave  Wave
}

// Resolve returns the alpha at time t and whether the vertex alpha must be multiplied in.
//
// Parameters:
//   - t: time in seconds
//
// Returns:
//   - float32: the resolved alpha
//   - bool: true for AlphaGenVertex
func (g AlphaGen) Resolve(t float32) (float32, bool) {
	switch g.Kind {
	case AlphaGenConst:
		return g.Const, false
	case AlphaGenWave:
		return common.Clamp01(g.Wave.Eval(t)), false
	case AlphaGenVertex:
		return 1, true
	default:
		return 1, false
	}
}
