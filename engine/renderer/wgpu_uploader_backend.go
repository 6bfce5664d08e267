package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-q3/common"
	"github.com/Carmen-Shannon/oxy-q3/engine/renderer/bind_group_provider"
	"github.com/cogentcore/webgpu/wgpu"
)

// stageTextureFormat is the format of every stage texture. Pixels are uploaded as authored,
// with no sRGB decode on sampling, so GPU and CPU shading read the same values.
const stageTextureFormat = wgpu.TextureFormatRGBA8Unorm

type wgpuUploaderBackend struct {
	mu       *sync.Mutex
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
}

var _ uploaderBackend = &wgpuUploaderBackend{}

// newWGPUUploaderBackend requests a headless adapter and device.
func newWGPUUploaderBackend(forceFallbackAdapter bool) (uploaderBackend, error) {
	b := &wgpuUploaderBackend{
		mu:       &sync.Mutex{},
		instance: wgpu.CreateInstance(nil),
	}

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
	})
	if err != nil {
		b.instance.Release()
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	b.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Upload Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		b.adapter.Release()
		b.instance.Release()
		return nil, fmt.Errorf("request device: %w", err)
	}
	b.device = d
	b.queue = d.GetQueue()

	common.Logger().Info("gpu device ready", "fallback", forceFallbackAdapter)
	return b, nil
}

func (b *wgpuUploaderBackend) CreateBindGroupLayout(descriptor wgpu.BindGroupLayoutDescriptor) (*wgpu.BindGroupLayout, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.device.CreateBindGroupLayout(&descriptor)
}

func (b *wgpuUploaderBackend) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var vertexBuffer, indexBuffer *wgpu.Buffer
	if len(vertexData) > 0 {
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: provider.Label() + " Vertex Buffer",
			Size:  uint64(len(vertexData)),
			Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return err
		}
		b.queue.WriteBuffer(buf, 0, vertexData)
		vertexBuffer = buf
	}

	if len(indexData) > 0 {
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: provider.Label() + " Index Buffer",
			Size:  uint64(len(indexData)),
			Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			if vertexBuffer != nil {
				vertexBuffer.Release()
			}
			return err
		}
		b.queue.WriteBuffer(buf, 0, indexData)
		indexBuffer = buf
	}

	provider.SetMeshBuffers(vertexBuffer, indexBuffer, indexCount)
	return nil
}

func (b *wgpuUploaderBackend) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(descriptor.Entries) == 0 {
		return nil
	}

	layout := provider.BindGroupLayout()
	if layout == nil {
		var err error
		layout, err = b.device.CreateBindGroupLayout(&descriptor)
		if err != nil {
			return err
		}
		provider.SetBindGroupLayout(layout)
	}

	entries := make([]wgpu.BindGroupEntry, len(descriptor.Entries))
	for i, entry := range descriptor.Entries {
		binding := int(entry.Binding)

		switch {
		case entry.Texture.SampleType != wgpu.TextureSampleTypeUndefined:
			tv := provider.TextureView(binding)
			if tv == nil {
				return fmt.Errorf("%s: texture binding %d has no view", provider.Label(), binding)
			}
			entries[i] = wgpu.BindGroupEntry{Binding: entry.Binding, TextureView: tv}
		case entry.Sampler.Type != wgpu.SamplerBindingTypeUndefined:
			s := provider.Sampler(binding)
			if s == nil {
				return fmt.Errorf("%s: sampler binding %d has no sampler", provider.Label(), binding)
			}
			entries[i] = wgpu.BindGroupEntry{Binding: entry.Binding, Sampler: s}
		default:
			buf := provider.Buffer(binding)
			if buf == nil {
				var err error
				buf, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
					Label: fmt.Sprintf("%s Buffer %d", provider.Label(), binding),
					Size:  entry.Buffer.MinBindingSize,
					Usage: bufferUsage(entry.Buffer.Type),
				})
				if err != nil {
					return err
				}
				provider.SetBuffer(binding, buf)
			}
			entries[i] = wgpu.BindGroupEntry{
				Binding: entry.Binding,
				Buffer:  buf,
				Size:    wgpu.WholeSize,
			}
		}
	}

	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   provider.Label() + " Bind Group",
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return err
	}
	provider.SetBindGroup(bindGroup)
	return nil
}

func (b *wgpuUploaderBackend) InitTextureView(provider bind_group_provider.BindGroupProvider, binding int, stagingData common.TextureStagingData, dimension wgpu.TextureViewDimension) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	label := fmt.Sprintf("%s Texture %d", provider.Label(), binding)
	desc := textureDescriptor(label, stagingData)
	tex, err := b.device.CreateTexture(&desc)
	if err != nil {
		return err
	}

	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture: tex,
			Aspect:  wgpu.TextureAspectAll,
		},
		stagingData.Pixels,
		&wgpu.TextureDataLayout{
			BytesPerRow:  stagingData.Width * 4,
			RowsPerImage: stagingData.Height,
		},
		&desc.Size,
	)

	view, err := tex.CreateView(textureViewDescriptor(label, stagingData.LayerCount(), dimension))
	if err != nil {
		tex.Release()
		return err
	}
	provider.SetTexture(binding, tex, view)
	return nil
}

func (b *wgpuUploaderBackend) InitSampler(provider bind_group_provider.BindGroupProvider, binding int, samplerStagingData common.SamplerStagingData) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	desc := samplerDescriptor(fmt.Sprintf("%s Sampler %d", provider.Label(), binding), samplerStagingData)
	s, err := b.device.CreateSampler(&desc)
	if err != nil {
		return err
	}
	provider.SetSampler(binding, s)
	return nil
}

func (b *wgpuUploaderBackend) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, w := range writes {
		buf := w.Provider.Buffer(w.Binding)
		if buf == nil {
			continue
		}
		b.queue.WriteBuffer(buf, w.Offset, w.Data)
	}
}

func (b *wgpuUploaderBackend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}

// bufferUsage derives the usage of a buffer from the binding type it backs.
func bufferUsage(t wgpu.BufferBindingType) wgpu.BufferUsage {
	switch t {
	case wgpu.BufferBindingTypeStorage, wgpu.BufferBindingTypeReadOnlyStorage:
		return wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst
	default:
		return wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst
	}
}

// textureDescriptor describes a 2D texture holding every layer of the staging data.
func textureDescriptor(label string, stagingData common.TextureStagingData) wgpu.TextureDescriptor {
	return wgpu.TextureDescriptor{
		Label:     label,
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              stagingData.Width,
			Height:             stagingData.Height,
			DepthOrArrayLayers: stagingData.LayerCount(),
		},
		Format:        stageTextureFormat,
		MipLevelCount: 1,
		SampleCount:   1,
	}
}

// textureViewDescriptor views a texture of the given layer count. A 2D view covers the
// first layer only; an array view covers every layer.
func textureViewDescriptor(label string, layers uint32, dimension wgpu.TextureViewDimension) *wgpu.TextureViewDescriptor {
	if dimension != wgpu.TextureViewDimension2DArray {
		layers = 1
	}
	return &wgpu.TextureViewDescriptor{
		Label:           label + " View",
		Format:          stageTextureFormat,
		Dimension:       dimension,
		MipLevelCount:   1,
		ArrayLayerCount: layers,
		Aspect:          wgpu.TextureAspectAll,
	}
}

// samplerDescriptor builds a sampler descriptor. Zero staging data selects a linear,
// repeating sampler; the filter and address fields are otherwise taken as given, since the
// zero value of each is a valid mode.
func samplerDescriptor(label string, s common.SamplerStagingData) wgpu.SamplerDescriptor {
	if s == (common.SamplerStagingData{}) {
		s = common.SamplerStagingData{
			AddressModeU: wgpu.AddressModeRepeat,
			AddressModeV: wgpu.AddressModeRepeat,
			AddressModeW: wgpu.AddressModeRepeat,
			MagFilter:    wgpu.FilterModeLinear,
			MinFilter:    wgpu.FilterModeLinear,
			MipmapFilter: wgpu.MipmapFilterModeLinear,
		}
	}
	return wgpu.SamplerDescriptor{
		Label:         label,
		AddressModeU:  s.AddressModeU,
		AddressModeV:  s.AddressModeV,
		AddressModeW:  s.AddressModeW,
		MagFilter:     s.MagFilter,
		MinFilter:     s.MinFilter,
		MipmapFilter:  s.MipmapFilter,
		LodMinClamp:   s.LodMinClamp,
		LodMaxClamp:   common.Coalesce(s.LodMaxClamp, 32.0),
		MaxAnisotropy: common.Coalesce(s.MaxAnisotropy, 1),
	}
}
