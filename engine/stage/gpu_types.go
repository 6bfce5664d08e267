package stage

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUStageUniformsSource is the canonical WGSL definition of the StageUniforms struct.
// Matches GPUStageUniforms layout exactly (96 bytes, uniform address space aligned).
//
//go:embed assets/stage_uniforms.wgsl
var GPUStageUniformsSource string

// GPUStageUniforms is the GPU-aligned per-stage block, written once per stage draw call.
// Color already carries the rgbGen/alphaGen result; the only generator work left to the
// evaluator is the vertex color and vertex alpha multiply selected by the flags.
// Matches the WGSL StageUniforms struct (see GPUStageUniformsSource).
// Size: 96 bytes. The struct aligns to 16 bytes in WGSL, hence the trailing pad words.
type GPUStageUniforms struct {
	Color          [4]float32    // offset  0: resolved rgbGen/alphaGen color (vec4<f32>)
	TCModMat       [4]float32    // offset 16: texture coordinate matrix, column-major (mat2x2<f32>)
	TCModOffset    [2]float32    // offset 32: texture coordinate offset applied after the matrix (vec2<f32>)
	AlphaTestFunc  AlphaTestFunc // offset 40: alpha test comparison (i32)
	AlphaTestValue float32       // offset 44: alpha test threshold (f32)
	UseVertexColor int32         // offset 48: 1 = multiply RGB by vertex RGB (i32)
	UseVertexAlpha int32         // offset 52: 1 = multiply alpha by vertex alpha (i32)
	TCGen          TCGen         // offset 56: base texture coordinate source (i32)
	AnimFrame      int32         // offset 60: layer of the animated color texture (i32)
	TurbAmplitude  float32       // offset 64: turbulence amplitude (f32)
	TurbPhase      float32       // offset 68: turbulence phase (f32)
	TurbFrequency  float32       // offset 72: turbulence frequency (f32)
	TurbTime       float32       // offset 76: turbulence time, frame time plus stage offset (f32)
	UseLightmap    int32         // offset 80: 1 = multiply by the lightmap sample (i32)
	VertexFlags    int32         // offset 84: model.VertexFlag bits of the mesh drawn (i32)
	_pad1          int32         // offset 88
	_pad2          int32         // offset 92
}

// IdentityTCModMat is the column-major 2x2 identity matrix.
var IdentityTCModMat = [4]float32{1, 0, 0, 1}

// Size returns the size of the GPUStageUniforms struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (96)
func (g *GPUStageUniforms) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUStageUniforms struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUStageUniforms) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.Color[i]))
		binary.LittleEndian.PutUint32(buf[16+i*4:], math.Float32bits(g.TCModMat[i]))
	}
	binary.LittleEndian.PutUint32(buf[32:], math.Float32bits(g.TCModOffset[0]))
	binary.LittleEndian.PutUint32(buf[36:], math.Float32bits(g.TCModOffset[1]))
	binary.LittleEndian.PutUint32(buf[40:], uint32(g.AlphaTestFunc))
	binary.LittleEndian.PutUint32(buf[44:], math.Float32bits(g.AlphaTestValue))
	binary.LittleEndian.PutUint32(buf[48:], uint32(g.UseVertexColor))
	binary.LittleEndian.PutUint32(buf[52:], uint32(g.UseVertexAlpha))
	binary.LittleEndian.PutUint32(buf[56:], uint32(g.TCGen))
	binary.LittleEndian.PutUint32(buf[60:], uint32(g.AnimFrame))
	binary.LittleEndian.PutUint32(buf[64:], math.Float32bits(g.TurbAmplitude))
	binary.LittleEndian.PutUint32(buf[68:], math.Float32bits(g.TurbPhase))
	binary.LittleEndian.PutUint32(buf[72:], math.Float32bits(g.TurbFrequency))
	binary.LittleEndian.PutUint32(buf[76:], math.Float32bits(g.TurbTime))
	binary.LittleEndian.PutUint32(buf[80:], uint32(g.UseLightmap))
	binary.LittleEndian.PutUint32(buf[84:], uint32(g.VertexFlags))
	// bytes 88-95 are padding and stay zero
	return buf
}

// GPUTCGenVectorsSource is the canonical WGSL definition of the TCGenVectors struct.
//
//go:embed assets/tcgen_vectors.wgsl
var GPUTCGenVectorsSource string

// GPUTCGenVectors carries the injected direction vectors of TCGenVector.
// Only xyz is read; w pads each vector to 16 bytes.
// Size: 32 bytes.
type GPUTCGenVectors struct {
	SVector [4]float32 // offset  0: s = dot(position, SVector.xyz) (vec4<f32>)
	TVector [4]float32 // offset 16: t = dot(position, TVector.xyz) (vec4<f32>)
}

// Size returns the size of the GPUTCGenVectors struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (32)
func (g *GPUTCGenVectors) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUTCGenVectors struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUTCGenVectors) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.SVector[i]))
		binary.LittleEndian.PutUint32(buf[16+i*4:], math.Float32bits(g.TVector[i]))
	}
	return buf
}

func boolToInt32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
