package frame

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUFrameUniformsSource is the canonical WGSL definition of the FrameUniforms struct.
// Matches GPUFrameUniforms layout exactly (208 bytes, uniform address space aligned).
//
//go:embed assets/frame_uniforms.wgsl
var GPUFrameUniformsSource string

// GPUFrameUniforms is the GPU-aligned representation of the per-frame uniform block.
// One instance is written before any stage of a frame is evaluated and is read-only
// for the rest of that frame. Matches the WGSL FrameUniforms struct (see GPUFrameUniformsSource).
// Size: 208 bytes.
type GPUFrameUniforms struct {
	ProjectionMatrix [16]float32 // offset   0: view -> clip transform (mat4x4<f32>, column-major)
	ViewMatrix       [16]float32 // offset  64: world -> view transform (mat4x4<f32>, column-major)
	ModelMatrix      [16]float32 // offset 128: object -> world transform (mat4x4<f32>, column-major)
	ViewOrigin       [3]float32  // offset 192: world-space eye position (vec3<f32>)
	Time             float32     // offset 204: frame time in seconds (f32)
}

// Size returns the size of the GPUFrameUniforms struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (208)
func (g *GPUFrameUniforms) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUFrameUniforms struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUFrameUniforms) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.ProjectionMatrix[i]))
		binary.LittleEndian.PutUint32(buf[64+i*4:], math.Float32bits(g.ViewMatrix[i]))
		binary.LittleEndian.PutUint32(buf[128+i*4:], math.Float32bits(g.ModelMatrix[i]))
	}
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[192+i*4:], math.Float32bits(g.ViewOrigin[i]))
	}
	binary.LittleEndian.PutUint32(buf[204:], math.Float32bits(g.Time))
	return buf
}
