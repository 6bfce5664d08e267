package raster

import (
	"github.com/Carmen-Shannon/oxy-q3/common"
	"github.com/Carmen-Shannon/oxy-q3/engine/stage"
)

// Blend combines a source color with the destination color under a blend mode.
// The result is clamped to [0, 1].
//
// Parameters:
//   - mode: the blend mode
//   - src: the evaluated stage color
//   - dst: the framebuffer color
//
// Returns:
//   - [4]float32: the new framebuffer color
func Blend(mode stage.BlendMode, src, dst [4]float32) [4]float32 {
	var out [4]float32
	switch mode {
	case stage.BlendAdd:
		for i := range 4 {
			out[i] = src[i] + dst[i]
		}
	case stage.BlendFilter:
		for i := range 4 {
			out[i] = src[i] * dst[i]
		}
	case stage.BlendAlpha:
		a := src[3]
		for i := range 3 {
			out[i] = src[i]*a + dst[i]*(1-a)
		}
		out[3] = a + dst[3]*(1-a)
	default:
		out = src
	}
	for i := range 4 {
		out[i] = common.Clamp01(out[i])
	}
	return out
}
