package stage

import (
	"github.com/Carmen-Shannon/oxy-q3/common"
	"github.com/chewxy/math32"
)

// Wave is a periodic function of time: Base + Amplitude * f(frac(Phase + t*Frequency)).
type Wave struct {
	Func      WaveFunc
	Base      float32
	Amplitude float32
	Phase     float32
	Frequency float32
}

// Eval evaluates the wave at time t in seconds.
//
// Parameters:
//   - t: time in seconds
//
// Returns:
//   - float32: the wave value
func (w Wave) Eval(t float32) float32 {
	return w.Base + w.Amplitude*w.Func.At(common.Fract(w.Phase+t*w.Frequency))
}

// At evaluates the unit waveform at x in [0, 1). Every waveform has period 1 and range [-1, 1],
// except the sawtooth pair which span [0, 1].
func (f WaveFunc) At(x float32) float32 {
	switch f {
	case WaveSin:
		return math32.Sin(2 * math32.Pi * x)
	case WaveTriangle:
		switch {
		case x < 0.25:
			return 4 * x
		case x < 0.75:
			return 2 - 4*x
		default:
			return 4*x - 4
		}
	case WaveSquare:
		if x < 0.5 {
			return 1
		}
		return -1
	case WaveSawtooth:
		return x
	case WaveInverseSawtooth:
		return 1 - x
	default:
		return 0
	}
}
