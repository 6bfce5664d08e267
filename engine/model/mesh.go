package model

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-q3/common"
	"github.com/Carmen-Shannon/oxy-q3/engine/renderer/bind_group_provider"
)

// MeshKind distinguishes screen-space 2D geometry from projected surface geometry.
type MeshKind int

const (
	// MeshKind2D holds GPU2DVertex records in the 640x480 virtual screen.
	MeshKind2D MeshKind = iota

	// MeshKindSurface holds GPUSurfaceVertex records in world space.
	MeshKindSurface
)

// mesh is the implementation of the Mesh interface.
type mesh struct {
	mu *sync.Mutex

	name            string
	kind            MeshKind
	format          VertexFormat
	vertices2D      []GPU2DVertex
	surfaceVertices []GPUSurfaceVertex
	indices         []uint32
	meshProvider    bind_group_provider.BindGroupProvider
}

// Mesh defines the interface for one draw call's worth of indexed triangle geometry.
// Vertex records are immutable once the mesh is built; the GPU upload path reads
// VertexData and IndexData while the software rasterizer reads the typed records directly.
type Mesh interface {
	// Name retrieves the mesh identifier.
	//
	// Returns:
	//   - string: the mesh name
	Name() string

	// Kind reports whether the mesh holds 2D or surface vertices.
	//
	// Returns:
	//   - MeshKind: MeshKind2D or MeshKindSurface
	Kind() MeshKind

	// Format reports which optional attributes the vertex stream carries.
	// 2D meshes never carry normals or lightmap coordinates.
	//
	// Returns:
	//   - VertexFormat: the attribute flags of this mesh
	Format() VertexFormat

	// Vertices2D retrieves the 2D vertex records, or nil for surface meshes.
	//
	// Returns:
	//   - []GPU2DVertex: the vertex records
	Vertices2D() []GPU2DVertex

	// SurfaceVertices retrieves the surface vertex records, or nil for 2D meshes.
	//
	// Returns:
	//   - []GPUSurfaceVertex: the vertex records
	SurfaceVertices() []GPUSurfaceVertex

	// Indices retrieves the triangle list indices.
	//
	// Returns:
	//   - []uint32: three indices per triangle
	Indices() []uint32

	// VertexData returns the marshaled vertex records for GPU upload.
	//
	// Returns:
	//   - []byte: the packed vertex data
	VertexData() []byte

	// IndexData returns the index list as little-endian uint32 bytes for GPU upload.
	//
	// Returns:
	//   - []byte: the index data
	IndexData() []byte

	// IndexCount returns the number of indices in the mesh.
	//
	// Returns:
	//   - int: the index count
	IndexCount() int

	// MeshProvider retrieves the BindGroupProvider holding the GPU vertex and index buffers.
	// It is nil until the mesh has been uploaded.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the mesh provider, or nil
	MeshProvider() bind_group_provider.BindGroupProvider

	// SetMeshProvider replaces the BindGroupProvider holding the GPU buffers.
	//
	// Parameters:
	//   - provider: the provider to set
	SetMeshProvider(provider bind_group_provider.BindGroupProvider)
}

var _ Mesh = &mesh{}

// NewMesh creates a new Mesh from the given options. Exactly one of With2DVertices or
// WithSurfaceVertices must be supplied, and the index count must be a multiple of three.
// When no indices are supplied the vertices are drawn as an unindexed triangle list.
//
// Parameters:
//   - options: functional options to configure the mesh
//
// Returns:
//   - Mesh: the newly created mesh
func NewMesh(options ...MeshBuilderOption) Mesh {
	m := &mesh{
		mu: &sync.Mutex{},
	}
	for _, option := range options {
		option(m)
	}
	if len(m.vertices2D) > 0 && len(m.surfaceVertices) > 0 {
		panic("model: mesh " + m.name + " cannot hold both 2D and surface vertices")
	}
	if len(m.surfaceVertices) > 0 {
		m.kind = MeshKindSurface
	} else {
		m.kind = MeshKind2D
		m.format = VertexFormat{}
	}
	if m.indices == nil {
		n := max(len(m.vertices2D), len(m.surfaceVertices))
		m.indices = make([]uint32, n)
		for i := range m.indices {
			m.indices[i] = uint32(i)
		}
	}
	if len(m.indices)%3 != 0 {
		panic("model: mesh " + m.name + " index count is not a multiple of three")
	}
	return m
}

func (m *mesh) Name() string {
	return m.name
}

func (m *mesh) Kind() MeshKind {
	return m.kind
}

func (m *mesh) Format() VertexFormat {
	return m.format
}

func (m *mesh) Vertices2D() []GPU2DVertex {
	return m.vertices2D
}

func (m *mesh) SurfaceVertices() []GPUSurfaceVertex {
	return m.surfaceVertices
}

func (m *mesh) Indices() []uint32 {
	return m.indices
}

func (m *mesh) VertexData() []byte {
	switch m.kind {
	case MeshKindSurface:
		stride := (&GPUSurfaceVertex{}).Size()
		out := make([]byte, 0, stride*len(m.surfaceVertices))
		for i := range m.surfaceVertices {
			v := m.surfaceVertices[i]
			// streams without lightmap coordinates sample the lightmap at the texture coordinate
			if !m.format.LightmapCoords {
				v.LightmapCoord = v.TexCoord
			}
			out = append(out, v.Marshal()...)
		}
		return out
	default:
		stride := (&GPU2DVertex{}).Size()
		out := make([]byte, 0, stride*len(m.vertices2D))
		for i := range m.vertices2D {
			out = append(out, m.vertices2D[i].Marshal()...)
		}
		return out
	}
}

func (m *mesh) IndexData() []byte {
	out := make([]byte, len(m.indices)*4)
	copy(out, common.SliceToBytes(m.indices))
	return out
}

func (m *mesh) IndexCount() int {
	return len(m.indices)
}

func (m *mesh) MeshProvider() bind_group_provider.BindGroupProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.meshProvider
}

func (m *mesh) SetMeshProvider(provider bind_group_provider.BindGroupProvider) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.meshProvider = provider
}
