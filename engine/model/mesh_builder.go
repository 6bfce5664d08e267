package model

import "github.com/Carmen-Shannon/oxy-q3/engine/renderer/bind_group_provider"

// MeshBuilderOption is a functional option for configuring a Mesh via NewMesh.
type MeshBuilderOption func(*mesh)

// WithName sets the mesh identifier, also used as the GPU debug label.
//
// Parameters:
//   - name: the mesh identifier
//
// Returns:
//   - MeshBuilderOption: a function that applies the name option to a mesh
func WithName(name string) MeshBuilderOption {
	return func(m *mesh) {
		m.name = name
	}
}

// With2DVertices sets screen-space vertex records on the mesh.
//
// Parameters:
//   - vertices: the 2D vertex records
//
// Returns:
//   - MeshBuilderOption: a function that applies the vertices to a mesh
func With2DVertices(vertices []GPU2DVertex) MeshBuilderOption {
	return func(m *mesh) {
		m.vertices2D = vertices
	}
}

// WithSurfaceVertices sets world-space vertex records on the mesh together with the
// description of which optional attributes they carry.
//
// Parameters:
//   - vertices: the surface vertex records
//   - format: which of Normal and LightmapCoord hold real data
//
// Returns:
//   - MeshBuilderOption: a function that applies the vertices to a mesh
func WithSurfaceVertices(vertices []GPUSurfaceVertex, format VertexFormat) MeshBuilderOption {
	return func(m *mesh) {
		m.surfaceVertices = vertices
		m.format = format
	}
}

// WithIndices sets the triangle list indices.
//
// Parameters:
//   - indices: three indices per triangle
//
// Returns:
//   - MeshBuilderOption: a function that applies the indices to a mesh
func WithIndices(indices []uint32) MeshBuilderOption {
	return func(m *mesh) {
		m.indices = indices
	}
}

// WithMeshProvider attaches an existing BindGroupProvider for the GPU buffers.
//
// Parameters:
//   - provider: the provider to attach
//
// Returns:
//   - MeshBuilderOption: a function that applies the provider to a mesh
func WithMeshProvider(provider bind_group_provider.BindGroupProvider) MeshBuilderOption {
	return func(m *mesh) {
		m.meshProvider = provider
	}
}
