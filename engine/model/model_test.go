package model

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatAt(buf []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
}

func TestGPU2DVertexLayout(t *testing.T) {
	v := GPU2DVertex{
		Position: [2]float32{320, 240},
		TexCoord: [2]float32{0.25, 0.75},
		Color:    [4]float32{1, 0.5, 0.25, 0.125},
	}
	require.Equal(t, 32, v.Size())
	buf := v.Marshal()
	require.Len(t, buf, 32)
	assert.Equal(t, float32(320), floatAt(buf, 0))
	assert.Equal(t, float32(240), floatAt(buf, 4))
	assert.Equal(t, float32(0.25), floatAt(buf, 8))
	assert.Equal(t, float32(0.75), floatAt(buf, 12))
	assert.Equal(t, float32(1), floatAt(buf, 16))
	assert.Equal(t, float32(0.125), floatAt(buf, 28))
}

func TestGPUSurfaceVertexLayout(t *testing.T) {
	v := GPUSurfaceVertex{
		Position:      [3]float32{1, 2, 3},
		TexCoord:      [2]float32{4, 5},
		Color:         [4]float32{6, 7, 8, 9},
		Normal:        [3]float32{0, 0, 1},
		LightmapCoord: [2]float32{0.5, 0.25},
	}
	require.Equal(t, 56, v.Size())
	buf := v.Marshal()
	assert.Equal(t, float32(3), floatAt(buf, 8))
	assert.Equal(t, float32(4), floatAt(buf, 12))
	assert.Equal(t, float32(6), floatAt(buf, 20))
	assert.Equal(t, float32(1), floatAt(buf, 44))
	assert.Equal(t, float32(0.5), floatAt(buf, 48))
	assert.Equal(t, float32(0.25), floatAt(buf, 52))
}

func TestBindingValues(t *testing.T) {
	assert.Equal(t, BufferIndex(0), BufferIndexMeshPositions)
	assert.Equal(t, BufferIndex(1), BufferIndexMeshGenerics)
	assert.Equal(t, BufferIndex(2), BufferIndexUniforms)
	assert.Equal(t, BufferIndex(3), BufferIndexStageUniforms)
	assert.Equal(t, BufferIndex(4), BufferIndexTwoDVertices)
	assert.Equal(t, VertexAttribute(0), VertexAttributePosition)
	assert.Equal(t, VertexAttribute(1), VertexAttributeTexcoord)
	assert.Equal(t, TextureIndex(0), TextureIndexColor)
	assert.Equal(t, TextureIndex(1), TextureIndexLightmap)

	assert.Equal(t, "stage_uniforms", BufferIndexStageUniforms.String())
	assert.Equal(t, "BufferIndex(9)", BufferIndex(9).String())
	assert.Equal(t, "lightmap", TextureIndexLightmap.String())
	assert.Equal(t, "normal", VertexAttributeNormal.String())
}

func TestWGSLSourcesEmbedded(t *testing.T) {
	assert.Contains(t, GPU2DVertexSource, "struct Vertex2D")
	assert.Contains(t, GPUSurfaceVertexSource, "struct SurfaceVertex")
	assert.Contains(t, GPUSurfaceVertexSource, "@location(4) lightmap_coord")
}

func TestQuad2D(t *testing.T) {
	white := [4]float32{1, 1, 1, 1}
	verts, idx := Quad2D(10, 20, 100, 50, 0, 0, 1, 1, white)
	require.Len(t, verts, 4)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, idx)
	assert.Equal(t, [2]float32{110, 70}, verts[2].Position)
	assert.Equal(t, [2]float32{1, 1}, verts[2].TexCoord)
	assert.Equal(t, white, verts[3].Color)
}

func TestQuadSurface(t *testing.T) {
	white := [4]float32{1, 1, 1, 1}
	verts, idx, format := QuadSurface([3]float32{-1, -1, 0}, [3]float32{2, 0, 0}, [3]float32{0, 2, 0}, 4, 2, white)
	require.Len(t, verts, 4)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, idx)
	assert.Equal(t, VertexFormat{Normals: true, LightmapCoords: true}, format)
	assert.Equal(t, [3]float32{1, 1, 0}, verts[2].Position)
	assert.Equal(t, [2]float32{4, 2}, verts[2].TexCoord)
	assert.Equal(t, [2]float32{1, 1}, verts[2].LightmapCoord)
	assert.Equal(t, [2]float32{0, 1}, verts[3].LightmapCoord)
	for _, v := range verts {
		assert.Equal(t, [3]float32{0, 0, 1}, v.Normal)
	}
}

func TestNewMesh2D(t *testing.T) {
	verts, idx := Quad2D(0, 0, 640, 480, 0, 0, 1, 1, [4]float32{1, 1, 1, 1})
	m := NewMesh(WithName("fullscreen"), With2DVertices(verts), WithIndices(idx))

	assert.Equal(t, "fullscreen", m.Name())
	assert.Equal(t, MeshKind2D, m.Kind())
	assert.Equal(t, VertexFormat{}, m.Format())
	assert.Equal(t, 6, m.IndexCount())
	assert.Len(t, m.VertexData(), 4*32)
	assert.Len(t, m.IndexData(), 6*4)
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(m.IndexData()[8:]))
	assert.Nil(t, m.MeshProvider())
}

func TestVertexFormatFlags(t *testing.T) {
	assert.Zero(t, VertexFormat{}.Flags())
	assert.Equal(t, VertexFlagNormals, VertexFormat{Normals: true}.Flags())
	assert.Equal(t, VertexFlagNormals|VertexFlagLightmapCoords, VertexFormat{Normals: true, LightmapCoords: true}.Flags())
}

func TestNewMeshSurfaceUnindexed(t *testing.T) {
	verts := make([]GPUSurfaceVertex, 3)
	m := NewMesh(WithName("tri"), WithSurfaceVertices(verts, VertexFormat{Normals: true}))
	assert.Equal(t, MeshKindSurface, m.Kind())
	assert.True(t, m.Format().Normals)
	assert.False(t, m.Format().LightmapCoords)
	assert.Equal(t, []uint32{0, 1, 2}, m.Indices())
	assert.Len(t, m.VertexData(), 3*56)
}

func TestVertexDataLightmapFallback(t *testing.T) {
	verts := []GPUSurfaceVertex{{TexCoord: [2]float32{0.25, 0.5}, LightmapCoord: [2]float32{0.9, 0.9}}}
	data := NewMesh(WithSurfaceVertices(verts, VertexFormat{}), WithIndices([]uint32{0, 0, 0})).VertexData()
	assert.Equal(t, float32(0.25), floatAt(data, 48))
	assert.Equal(t, float32(0.5), floatAt(data, 52))

	data = NewMesh(WithSurfaceVertices(verts, VertexFormat{LightmapCoords: true}), WithIndices([]uint32{0, 0, 0})).VertexData()
	assert.Equal(t, float32(0.9), floatAt(data, 48))
}

func TestNewMeshPanics(t *testing.T) {
	assert.Panics(t, func() {
		NewMesh(With2DVertices(make([]GPU2DVertex, 3)), WithSurfaceVertices(make([]GPUSurfaceVertex, 3), VertexFormat{}))
	})
	assert.Panics(t, func() {
		NewMesh(With2DVertices(make([]GPU2DVertex, 4)), WithIndices([]uint32{0, 1}))
	})
}
