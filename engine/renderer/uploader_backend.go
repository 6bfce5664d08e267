package renderer

import (
	"github.com/Carmen-Shannon/oxy-q3/common"
	"github.com/Carmen-Shannon/oxy-q3/engine/renderer/bind_group_provider"
	"github.com/cogentcore/webgpu/wgpu"
)

// uploaderBackend is the GPU API surface the Uploader drives. Every method stores the
// resources it creates on the given provider, so releasing the provider releases them.
type uploaderBackend interface {
	// CreateBindGroupLayout creates a layout that several providers share.
	CreateBindGroupLayout(descriptor wgpu.BindGroupLayoutDescriptor) (*wgpu.BindGroupLayout, error)

	// InitMeshBuffers creates and fills the vertex and index buffers of a mesh.
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// InitBindGroup creates the uniform buffers of the descriptor and the bind group itself.
	// Texture and sampler bindings must already be set on the provider.
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor) error

	// InitTextureView uploads every layer of the staging data into one texture and views it
	// with the given dimension.
	InitTextureView(provider bind_group_provider.BindGroupProvider, binding int, stagingData common.TextureStagingData, dimension wgpu.TextureViewDimension) error

	// InitSampler creates a sampler from staging data, filling unset fields with defaults.
	InitSampler(provider bind_group_provider.BindGroupProvider, binding int, samplerStagingData common.SamplerStagingData) error

	// WriteBuffers queues every write. Writes to a binding without a buffer are skipped.
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// Release frees the device, the adapter and the instance.
	Release()
}
