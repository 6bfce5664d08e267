package texture

import (
	"github.com/Carmen-Shannon/oxy-q3/common"
	"github.com/chewxy/math32"
	"github.com/cogentcore/webgpu/wgpu"
)

// AddressMode decides what happens to texel coordinates outside the texture.
type AddressMode int

const (
	// AddressRepeat wraps coordinates, the default for stage textures.
	AddressRepeat AddressMode = iota
	// AddressClamp clamps coordinates to the edge texel (clampMap).
	AddressClamp
)

// Filter selects how texels are combined for one sample.
type Filter int

const (
	// FilterLinear blends the four nearest texels.
	FilterLinear Filter = iota
	// FilterNearest picks the nearest texel.
	FilterNearest
)

// Sampler is the software counterpart of a GPU sampler.
type Sampler struct {
	AddressU AddressMode
	AddressV AddressMode
	Filter   Filter
}

// SamplerFromStaging converts GPU sampler parameters into a software Sampler.
// Nil yields the linear, repeating default the uploader also uses.
//
// Parameters:
//   - s: the GPU sampler parameters, may be nil
//
// Returns:
//   - Sampler: the equivalent software sampler
func SamplerFromStaging(s *common.SamplerStagingData) Sampler {
	if s == nil {
		return Sampler{}
	}
	out := Sampler{
		AddressU: addressFromWGPU(s.AddressModeU),
		AddressV: addressFromWGPU(s.AddressModeV),
	}
	if s.MagFilter == wgpu.FilterModeNearest {
		out.Filter = FilterNearest
	}
	return out
}

// Staging converts the sampler into GPU sampler parameters.
//
// Returns:
//   - common.SamplerStagingData: the equivalent GPU sampler parameters
func (s Sampler) Staging() common.SamplerStagingData {
	filter := wgpu.FilterModeLinear
	mip := wgpu.MipmapFilterModeLinear
	if s.Filter == FilterNearest {
		filter = wgpu.FilterModeNearest
		mip = wgpu.MipmapFilterModeNearest
	}
	return common.SamplerStagingData{
		AddressModeU:  addressToWGPU(s.AddressU),
		AddressModeV:  addressToWGPU(s.AddressV),
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     filter,
		MinFilter:     filter,
		MipmapFilter:  mip,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	}
}

func addressFromWGPU(m wgpu.AddressMode) AddressMode {
	if m == wgpu.AddressModeClampToEdge {
		return AddressClamp
	}
	return AddressRepeat
}

func addressToWGPU(m AddressMode) wgpu.AddressMode {
	if m == AddressClamp {
		return wgpu.AddressModeClampToEdge
	}
	return wgpu.AddressModeRepeat
}

// wrap maps a texel index into [0, n).
func wrap(i, n int, mode AddressMode) int {
	if mode == AddressClamp {
		return min(max(i, 0), n-1)
	}
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

// texelPosition converts a normalized coordinate into a texel index and, for linear filtering,
// the blend weight toward the next texel.
func texelPosition(c float32, n int, filter Filter) (int, float32) {
	x := c * float32(n)
	if filter == FilterNearest {
		return int(math32.Floor(x)), 0
	}
	x -= 0.5
	f := math32.Floor(x)
	return int(f), x - f
}
