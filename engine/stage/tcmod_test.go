package stage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func assertUV(t *testing.T, want, got [2]float32) {
	t.Helper()
	assert.InDelta(t, want[0], got[0], 1e-5, "s")
	assert.InDelta(t, want[1], got[1], 1e-5, "t")
}

func TestAffineScaleThenOffset(t *testing.T) {
	a := Affine2{M: [4]float32{2, 0, 0, 2}, O: [2]float32{0.1, 0.1}}
	assertUV(t, [2]float32{0.6, 0.6}, a.Apply([2]float32{0.25, 0.25}))
}

func TestAffineThenOrder(t *testing.T) {
	scale := Scale(2, 3).Affine(0)
	shift := Transform(1, 0, 0, 1, 0.5, 0).Affine(0)

	uv := [2]float32{0.25, 0.5}
	// scale first, then shift
	assertUV(t, [2]float32{1.0, 1.5}, scale.Then(shift).Apply(uv))
	// shift first, then scale
	assertUV(t, [2]float32{1.5, 1.5}, shift.Then(scale).Apply(uv))
}

func TestScrollWraps(t *testing.T) {
	a := Scroll(0.5, -0.25).Affine(3)
	// frac(1.5) = 0.5, frac(-0.75) = 0.25
	assertUV(t, [2]float32{0.5, 0.25}, a.O)
	assert.Equal(t, IdentityTCModMat, a.M)
}

func TestRotateAboutCenter(t *testing.T) {
	a := Rotate(90).Affine(1)
	// the center is a fixed point
	assertUV(t, [2]float32{0.5, 0.5}, a.Apply([2]float32{0.5, 0.5}))
	// -90 degrees maps (1, 0.5) to (0.5, 0)
	assertUV(t, [2]float32{0.5, 0}, a.Apply([2]float32{1, 0.5}))
}

func TestStretch(t *testing.T) {
	a := Stretch(Wave{Func: WaveSquare, Base: 0, Amplitude: 2, Frequency: 1}).Affine(0)
	// p = 1/2, scaling about the center
	assertUV(t, [2]float32{0.5, 0.5}, a.Apply([2]float32{0.5, 0.5}))
	assertUV(t, [2]float32{0.75, 0.25}, a.Apply([2]float32{1, 0}))

	zero := Stretch(Wave{Func: WaveSin}).Affine(0)
	assert.Equal(t, IdentityAffine2(), zero)
}

func TestTransformMatchesAuthoredOrder(t *testing.T) {
	// s' = s*m00 + t*m10 + t0, t' = s*m01 + t*m11 + t1
	a := Transform(1, 2, 3, 4, 5, 6).Affine(0)
	assertUV(t, [2]float32{1*1 + 1*3 + 5, 1*2 + 1*4 + 6}, a.Apply([2]float32{1, 1}))
}

func TestComposeTCModsSkipsTurb(t *testing.T) {
	mods := []TCMod{Scale(2, 2), Turb(0.1, 0, 1), Transform(1, 0, 0, 1, 0.1, 0.1)}
	a, turb := ComposeTCMods(mods, 0)
	assertUV(t, [2]float32{0.6, 0.6}, a.Apply([2]float32{0.25, 0.25}))
	if assert.NotNil(t, turb) {
		assert.Equal(t, float32(0.1), turb.Wave.Amplitude)
	}

	a, turb = ComposeTCMods(nil, 5)
	assert.Equal(t, IdentityAffine2(), a)
	assert.Nil(t, turb)
}
