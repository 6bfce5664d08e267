package model

import "fmt"

// BufferIndex names the buffer argument slots shared by the CPU and the shading stage.
// The numeric values are part of the binding contract and must not be reordered.
type BufferIndex int32

const (
	BufferIndexMeshPositions BufferIndex = 0
	BufferIndexMeshGenerics  BufferIndex = 1
	BufferIndexUniforms      BufferIndex = 2
	BufferIndexStageUniforms BufferIndex = 3
	BufferIndexTwoDVertices  BufferIndex = 4
)

func (b BufferIndex) String() string {
	switch b {
	case BufferIndexMeshPositions:
		return "mesh_positions"
	case BufferIndexMeshGenerics:
		return "mesh_generics"
	case BufferIndexUniforms:
		return "uniforms"
	case BufferIndexStageUniforms:
		return "stage_uniforms"
	case BufferIndexTwoDVertices:
		return "2d_vertices"
	default:
		return fmt.Sprintf("BufferIndex(%d)", int32(b))
	}
}

// VertexAttribute names the vertex attribute locations consumed by the shading stage.
// Position and Texcoord keep their fixed slots; the remaining slots carry the
// per-vertex color, normal and lightmap coordinate of surface geometry.
type VertexAttribute int32

const (
	VertexAttributePosition         VertexAttribute = 0
	VertexAttributeTexcoord         VertexAttribute = 1
	VertexAttributeColor            VertexAttribute = 2
	VertexAttributeNormal           VertexAttribute = 3
	VertexAttributeLightmapTexcoord VertexAttribute = 4
)

func (a VertexAttribute) String() string {
	switch a {
	case VertexAttributePosition:
		return "position"
	case VertexAttributeTexcoord:
		return "texcoord"
	case VertexAttributeColor:
		return "color"
	case VertexAttributeNormal:
		return "normal"
	case VertexAttributeLightmapTexcoord:
		return "lightmap_texcoord"
	default:
		return fmt.Sprintf("VertexAttribute(%d)", int32(a))
	}
}

// TextureIndex names the texture slots bound for a stage draw.
type TextureIndex int32

const (
	TextureIndexColor    TextureIndex = 0
	TextureIndexLightmap TextureIndex = 1
)

func (t TextureIndex) String() string {
	switch t {
	case TextureIndexColor:
		return "color"
	case TextureIndexLightmap:
		return "lightmap"
	default:
		return fmt.Sprintf("TextureIndex(%d)", int32(t))
	}
}

// VertexFormat describes which optional attributes a vertex stream actually carries.
// Stage validation consults it: environment-mapped coordinates need normals and
// lightmap coordinates fall back to the base texture coordinate when absent.
type VertexFormat struct {
	Normals        bool
	LightmapCoords bool
}

// Vertex format bits as carried in the stage block.
const (
	VertexFlagNormals        int32 = 1 << 0
	VertexFlagLightmapCoords int32 = 1 << 1
)

// Flags packs the format into VertexFlag bits.
func (f VertexFormat) Flags() int32 {
	var flags int32
	if f.Normals {
		flags |= VertexFlagNormals
	}
	if f.LightmapCoords {
		flags |= VertexFlagLightmapCoords
	}
	return flags
}
