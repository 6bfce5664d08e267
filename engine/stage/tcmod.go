package stage

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-q3/common"
	"github.com/chewxy/math32"
)

// Affine2 is a 2D affine texture coordinate transform uv' = M*uv + O with M stored column-major,
// the same layout as TCModMat and TCModOffset.
type Affine2 struct {
	M [4]float32
	O [2]float32
}

// IdentityAffine2 returns the transform that leaves coordinates unchanged.
func IdentityAffine2() Affine2 {
	return Affine2{M: IdentityTCModMat}
}

// Apply transforms uv.
func (a Affine2) Apply(uv [2]float32) [2]float32 {
	return [2]float32{
		a.M[0]*uv[0] + a.M[2]*uv[1] + a.O[0],
		a.M[1]*uv[0] + a.M[3]*uv[1] + a.O[1],
	}
}

// Then returns the transform that applies a first and next second.
//
// Parameters:
//   - next: the transform applied after a
//
// Returns:
//   - Affine2: the composed transform
func (a Affine2) Then(next Affine2) Affine2 {
	n := next.M
	return Affine2{
		M: [4]float32{
			n[0]*a.M[0] + n[2]*a.M[1],
			n[1]*a.M[0] + n[3]*a.M[1],
			n[0]*a.M[2] + n[2]*a.M[3],
			n[1]*a.M[2] + n[3]*a.M[3],
		},
		O: next.Apply(a.O),
	}
}

// TCModKind identifies one texture coordinate modifier.
type TCModKind int32

const (
	// TCModScroll translates by Vec units per second, wrapped to [0, 1).
	TCModScroll TCModKind = iota
	// TCModScale multiplies s by Vec[0] and t by Vec[1].
	TCModScale
	// TCModRotate rotates about (0.5, 0.5) by DegreesPerSecond.
	TCModRotate
	// TCModStretch scales about (0.5, 0.5) by the reciprocal of Wave.
	TCModStretch
	// TCModTransform applies Matrix and then Translate.
	TCModTransform
	// TCModTurb offsets both coordinates by a sine wave of time. It is carried in the
	// turbulence fields of the stage block rather than the matrix.
	TCModTurb
)

var tcModNames = [...]string{"scroll", "scale", "rotate", "stretch", "transform", "turb"}

func (k TCModKind) String() string {
	if k >= TCModScroll && int(k) < len(tcModNames) {
		return tcModNames[k]
	}
	return fmt.Sprintf("TCModKind(%d)", int32(k))
}

// ParseTCModKind parses a tcMod name.
func ParseTCModKind(s string) (TCModKind, error) {
	n := strings.ToLower(strings.TrimSpace(s))
	for i, name := range tcModNames {
		if name == n {
			return TCModKind(i), nil
		}
	}
	return TCModScroll, fmt.Errorf("tcMod %q: %w", s, ErrUnknownName)
}

// TCMod is one authored texture coordinate modifier. Only the fields of its Kind are read.
type TCMod struct {
	Kind TCModKind

	// Scroll speed or Scale factors, per axis.
	Vec [2]float32
	// Rotate speed in degrees per second.
	DegreesPerSecond float32
	// Stretch and Turb parameters. Turb reads Amplitude, Phase and Frequency.
	Wave Wave
	// Transform matrix (column-major) and translation.
	Matrix    [4]float32
	Translate [2]float32
}

// Scroll builds a tcMod that translates coordinates by speed*t, wrapped into [0, 1).
func Scroll(sSpeed, tSpeed float32) TCMod {
	return TCMod{Kind: TCModScroll, Vec: [2]float32{sSpeed, tSpeed}}
}

// Scale builds a tcMod that scales coordinates.
func Scale(s, t float32) TCMod {
	return TCMod{Kind: TCModScale, Vec: [2]float32{s, t}}
}

// Rotate builds a tcMod that rotates coordinates about (0.5, 0.5).
func Rotate(degreesPerSecond float32) TCMod {
	return TCMod{Kind: TCModRotate, DegreesPerSecond: degreesPerSecond}
}

// Stretch builds a tcMod that scales coordinates about (0.5, 0.5) by 1/w(t).
func Stretch(w Wave) TCMod {
	return TCMod{Kind: TCModStretch, Wave: w}
}

// Transform builds a tcMod with an explicit matrix, s' = s*m00 + t*m10 + t0 and t' = s*m01 + t*m11 + t1.
func Transform(m00, m01, m10, m11, t0, t1 float32) TCMod {
	return TCMod{
		Kind:      TCModTransform,
		Matrix:    [4]float32{m00, m01, m10, m11},
		Translate: [2]float32{t0, t1},
	}
}

// Turb builds a turbulence tcMod. It does not contribute to the affine transform; it fills
// the turbulence slot of the stage block instead.
func Turb(amplitude, phase, frequency float32) TCMod {
	return TCMod{Kind: TCModTurb, Wave: Wave{Func: WaveSin, Amplitude: amplitude, Phase: phase, Frequency: frequency}}
}

// Affine returns the affine transform of m at time t. Turb and a stretch wave evaluating
// to zero yield the identity.
//
// Parameters:
//   - t: time in seconds
//
// Returns:
//   - Affine2: the transform of this modifier
func (m TCMod) Affine(t float32) Affine2 {
	switch m.Kind {
	case TCModScroll:
		return Affine2{
			M: IdentityTCModMat,
			O: [2]float32{common.Fract(m.Vec[0] * t), common.Fract(m.Vec[1] * t)},
		}
	case TCModScale:
		return Affine2{M: [4]float32{m.Vec[0], 0, 0, m.Vec[1]}}
	case TCModRotate:
		rad := -m.DegreesPerSecond * t * math32.Pi / 180
		s, c := math32.Sin(rad), math32.Cos(rad)
		return Affine2{
			M: [4]float32{c, s, -s, c},
			O: [2]float32{0.5 - 0.5*c + 0.5*s, 0.5 - 0.5*s - 0.5*c},
		}
	case TCModStretch:
		v := m.Wave.Eval(t)
		if v == 0 {
			return IdentityAffine2()
		}
		p := 1 / v
		return Affine2{
			M: [4]float32{p, 0, 0, p},
			O: [2]float32{0.5 - 0.5*p, 0.5 - 0.5*p},
		}
	case TCModTransform:
		return Affine2{M: m.Matrix, O: m.Translate}
	default:
		return IdentityAffine2()
	}
}

// ComposeTCMods folds mods in authored order into one affine transform and reports the last
// turbulence modifier, if any.
//
// Parameters:
//   - mods: the modifiers in authored order
//   - t: time in seconds
//
// Returns:
//   - Affine2: the composed transform
//   - *TCMod: the last turbulence modifier, nil when there is none
func ComposeTCMods(mods []TCMod, t float32) (Affine2, *TCMod) {
	a := IdentityAffine2()
	var turb *TCMod
	for i := range mods {
		if mods[i].Kind == TCModTurb {
			turb = &mods[i]
			continue
		}
		a = a.Then(mods[i].Affine(t))
	}
	return a, turb
}
