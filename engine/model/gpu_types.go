package model

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPU2DVertexSource is the canonical WGSL definition of the Vertex2D struct.
// Matches GPU2DVertex layout exactly (32 bytes, tightly packed vertex attributes).
//
//go:embed assets/vertex_2d.wgsl
var GPU2DVertexSource string

// GPU2DVertex is one vertex of screen-space 2D geometry (HUD, console, menus).
// Position is in the 640x480 virtual screen regardless of the real framebuffer size.
// Matches the WGSL Vertex2D struct layout exactly (see GPU2DVertexSource).
// Size: 32 bytes.
type GPU2DVertex struct {
	Position [2]float32 // offset  0: virtual screen position, x in [0, 640], y in [0, 480] (8 bytes)
	TexCoord [2]float32 // offset  8: texture coordinate (8 bytes)
	Color    [4]float32 // offset 16: RGBA vertex color, each channel in [0, 1] (16 bytes)
}

// Size returns the size of the GPU2DVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes (32)
func (g *GPU2DVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPU2DVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 32-byte buffer ready for GPU upload
func (g *GPU2DVertex) Marshal() []byte {
	buf := make([]byte, g.Size())
	putFloats(buf[0:], g.Position[:])
	putFloats(buf[8:], g.TexCoord[:])
	putFloats(buf[16:], g.Color[:])
	return buf
}

// GPUSurfaceVertexSource is the canonical WGSL definition of the SurfaceVertex struct.
// Matches GPUSurfaceVertex layout exactly (56 bytes, tightly packed vertex attributes).
//
//go:embed assets/surface_vertex.wgsl
var GPUSurfaceVertexSource string

// GPUSurfaceVertex is one vertex of world geometry drawn through surface stages.
// Normal feeds environment-mapped texture coordinates and LightmapCoord feeds the
// lightmap sample; streams without them are flagged through VertexFormat.
// Size: 56 bytes.
type GPUSurfaceVertex struct {
	Position      [3]float32 // offset  0: world-space position (12 bytes)
	TexCoord      [2]float32 // offset 12: base texture coordinate (8 bytes)
	Color         [4]float32 // offset 20: RGBA vertex color (16 bytes)
	Normal        [3]float32 // offset 36: world-space unit normal (12 bytes)
	LightmapCoord [2]float32 // offset 48: lightmap texture coordinate (8 bytes)
}

// Size returns the size of the GPUSurfaceVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes (56)
func (g *GPUSurfaceVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUSurfaceVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 56-byte buffer ready for GPU upload
func (g *GPUSurfaceVertex) Marshal() []byte {
	buf := make([]byte, g.Size())
	putFloats(buf[0:], g.Position[:])
	putFloats(buf[12:], g.TexCoord[:])
	putFloats(buf[20:], g.Color[:])
	putFloats(buf[36:], g.Normal[:])
	putFloats(buf[48:], g.LightmapCoord[:])
	return buf
}

func putFloats(buf []byte, v []float32) {
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
}
