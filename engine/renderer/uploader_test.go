package renderer

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-q3/common"
	"github.com/Carmen-Shannon/oxy-q3/engine/frame"
	"github.com/Carmen-Shannon/oxy-q3/engine/model"
	"github.com/Carmen-Shannon/oxy-q3/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-q3/engine/renderer/binder"
	"github.com/Carmen-Shannon/oxy-q3/engine/stage"
	"github.com/Carmen-Shannon/oxy-q3/engine/surface"
	"github.com/Carmen-Shannon/oxy-q3/engine/texture"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type textureCall struct {
	label     string
	binding   int
	layers    uint32
	dimension wgpu.TextureViewDimension
}

// fakeBackend records every call and creates no GPU objects.
type fakeBackend struct {
	layouts    []wgpu.BindGroupLayoutDescriptor
	meshes     []string
	bindGroups map[string]wgpu.BindGroupLayoutDescriptor
	textures   []textureCall
	samplers   []int
	writes     []bind_group_provider.BufferWrite
	released   bool
	failGroup  error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{bindGroups: make(map[string]wgpu.BindGroupLayoutDescriptor)}
}

func (f *fakeBackend) CreateBindGroupLayout(descriptor wgpu.BindGroupLayoutDescriptor) (*wgpu.BindGroupLayout, error) {
	f.layouts = append(f.layouts, descriptor)
	return nil, nil
}

func (f *fakeBackend) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	f.meshes = append(f.meshes, provider.Label())
	return nil
}

func (f *fakeBackend) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor) error {
	if f.failGroup != nil {
		return f.failGroup
	}
	f.bindGroups[provider.Label()] = descriptor
	return nil
}

func (f *fakeBackend) InitTextureView(provider bind_group_provider.BindGroupProvider, binding int, stagingData common.TextureStagingData, dimension wgpu.TextureViewDimension) error {
	f.textures = append(f.textures, textureCall{provider.Label(), binding, stagingData.LayerCount(), dimension})
	return nil
}

func (f *fakeBackend) InitSampler(provider bind_group_provider.BindGroupProvider, binding int, samplerStagingData common.SamplerStagingData) error {
	f.samplers = append(f.samplers, binding)
	return nil
}

func (f *fakeBackend) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	f.writes = append(f.writes, writes...)
}

func (f *fakeBackend) Release() {
	f.released = true
}

func newTestUploader(t *testing.T, options ...UploaderBuilderOption) (Uploader, *fakeBackend) {
	t.Helper()
	fb := newFakeBackend()
	u, err := NewUploader(append(options, withBackend(fb))...)
	require.NoError(t, err)
	return u, fb
}

func publish(t *testing.T, p frame.Publisher, seconds float32) frame.Frame {
	t.Helper()
	f, err := p.Publish(frame.NewFrame(frame.WithFrom(p.Current()), frame.WithTime(seconds)))
	require.NoError(t, err)
	return f
}

func quadMesh() model.Mesh {
	verts, idx := model.Quad2D(0, 0, 64, 64, 0, 0, 1, 1, [4]float32{1, 1, 1, 1})
	return model.NewMesh(model.WithName("quad"), model.With2DVertices(verts), model.WithIndices(idx))
}

func animatedTexture(t *testing.T, name string, layers uint32) texture.Texture {
	t.Helper()
	tex, err := texture.NewTexture(
		texture.WithName(name),
		texture.WithStagingData(common.TextureStagingData{
			Pixels: make([]byte, 4*4*4*int(layers)),
			Width:  4,
			Height: 4,
			Layers: layers,
		}),
	)
	require.NoError(t, err)
	return tex
}

func TestNewUploaderInitializesFrameGroup(t *testing.T) {
	u, fb := newTestUploader(t)

	desc, ok := fb.bindGroups["frame"]
	require.True(t, ok)
	require.Len(t, desc.Entries, 1)
	assert.Equal(t, uint64(208), desc.Entries[0].Buffer.MinBindingSize)
	assert.NotNil(t, u.FrameProvider())
	assert.Equal(t, "ui_stage", u.Shader(model.MeshKind2D).Key())
	assert.Equal(t, "surface_stage", u.Shader(model.MeshKindSurface).Key())

	u.Release()
	assert.True(t, fb.released)
}

func TestNewUploaderBindGroupError(t *testing.T) {
	fb := newFakeBackend()
	fb.failGroup = errors.New("out of memory")
	_, err := NewUploader(withBackend(fb))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of memory")
	assert.True(t, fb.released)
}

func TestInitSurfaceCreatesProviders(t *testing.T) {
	u, fb := newTestUploader(t)
	anim := animatedTexture(t, "flame", 3)
	s := surface.NewSurface(
		surface.WithName("fire"),
		surface.WithLayer(stage.NewStage(stage.WithName("base"), stage.WithAnimMap(4, 3)), anim, nil),
		surface.WithLayer(stage.NewStage(stage.WithName("glow"), stage.WithAnimMap(4, 3), stage.WithBlendMode(stage.BlendAdd)), anim, nil),
	)

	require.NoError(t, u.InitSurface(s, model.MeshKind2D))
	assert.Equal(t, "ui_stage", s.PipelineKey())
	require.Len(t, fb.layouts, 1)
	for i := range s.Layers() {
		require.NotNil(t, s.StageProvider(i))
		_, ok := fb.bindGroups[s.StageProvider(i).Label()]
		assert.True(t, ok)
	}

	// Both layers sample the same textures, so one texture group serves them.
	p, ok := u.TextureProvider(model.MeshKind2D, s.Layers()[0])
	require.True(t, ok)
	assert.Contains(t, p.Label(), "flame|*white")
	require.Len(t, fb.textures, 2)
	assert.Equal(t, textureCall{p.Label(), 0, 3, wgpu.TextureViewDimension2DArray}, fb.textures[0])
	assert.Equal(t, textureCall{p.Label(), 2, 1, wgpu.TextureViewDimension2D}, fb.textures[1])
	assert.Equal(t, []int{1, 3}, fb.samplers)

	_, ok = u.TextureProvider(model.MeshKindSurface, s.Layers()[0])
	assert.False(t, ok)

	// A second call leaves the surface untouched.
	stage0 := s.StageProvider(0)
	require.NoError(t, u.InitSurface(s, model.MeshKind2D))
	assert.Same(t, stage0, s.StageProvider(0))
	assert.Len(t, fb.layouts, 1)
}

func TestUploadWritesFrameOncePerGeneration(t *testing.T) {
	u, fb := newTestUploader(t)
	p := frame.NewPublisher()
	m := quadMesh()
	s := surface.NewSurface(
		surface.WithName("two"),
		surface.WithLayer(stage.NewStage(stage.WithName("base")), nil, nil),
		surface.WithLayer(stage.NewStage(stage.WithName("add"), stage.WithBlendMode(stage.BlendAdd)), nil, nil),
	)

	f := publish(t, p, 1)
	require.NoError(t, u.Upload(f, m, s))
	require.NotNil(t, m.MeshProvider())
	assert.Equal(t, []string{"quad Mesh"}, fb.meshes)
	require.Len(t, fb.writes, 5)
	assert.Same(t, u.FrameProvider(), fb.writes[0].Provider)
	uniforms := f.Uniforms()
	assert.Equal(t, uniforms.Marshal(), fb.writes[0].Data)
	for i, w := range fb.writes[1:] {
		layer := i / 2
		assert.Same(t, s.StageProvider(layer), w.Provider)
		assert.Equal(t, i%2, w.Binding)
	}

	fb.writes = nil
	require.NoError(t, u.Upload(f, m, s))
	assert.Len(t, fb.writes, 4)
	assert.Equal(t, []string{"quad Mesh"}, fb.meshes)
}

func TestUploadRejectsStaleFrame(t *testing.T) {
	u, _ := newTestUploader(t)
	p := frame.NewPublisher()
	m := quadMesh()
	s := surface.NewSurface(surface.WithName("one"), surface.WithLayer(stage.NewStage(), nil, nil))

	f1 := publish(t, p, 1)
	f2 := publish(t, p, 2)
	require.NoError(t, u.Upload(f2, m, s))
	err := u.Upload(f1, m, s)
	assert.True(t, errors.Is(err, binder.ErrStaleFrame))
}

func TestUploadValidation(t *testing.T) {
	u, fb := newTestUploader(t, WithValidation(true))
	p := frame.NewPublisher()
	m := quadMesh()
	s := surface.NewSurface(
		surface.WithName("bad"),
		surface.WithLayer(stage.NewStage(stage.WithName("env"), stage.WithTCGen(stage.TCGenEnvMap)), nil, nil),
	)

	err := u.Upload(publish(t, p, 1), m, s)
	assert.True(t, errors.Is(err, stage.ErrEnvMapRequiresNormals))
	assert.Empty(t, fb.writes)
}

func TestWritesRouting(t *testing.T) {
	u, _ := newTestUploader(t)
	s := surface.NewSurface(surface.WithName("one"), surface.WithLayer(stage.NewStage(), nil, nil))

	_, err := u.Writes([]binder.Upload{{Index: model.BufferIndexStageUniforms, Layer: 0}}, s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no stage provider")

	_, err = u.Writes([]binder.Upload{{Index: model.BufferIndexTwoDVertices, Layer: binder.FrameLayer}}, s)
	assert.True(t, errors.Is(err, ErrNotUniform))

	require.NoError(t, u.InitSurface(s, model.MeshKindSurface))
	writes, err := u.Writes([]binder.Upload{
		{Index: model.BufferIndexUniforms, Layer: binder.FrameLayer, Data: []byte{1}},
		{Index: model.BufferIndexStageUniforms, Layer: 0, Binding: binder.TCGenVectorsBinding, Data: []byte{2}},
	}, s)
	require.NoError(t, err)
	require.Len(t, writes, 2)
	assert.Same(t, u.FrameProvider(), writes[0].Provider)
	assert.Same(t, s.StageProvider(0), writes[1].Provider)
	assert.Equal(t, binder.TCGenVectorsBinding, writes[1].Binding)
	assert.Equal(t, "surface_stage", s.PipelineKey())
}

func TestTextureDescriptors(t *testing.T) {
	desc := textureDescriptor("t", common.TextureStagingData{Width: 8, Height: 4, Layers: 5})
	assert.Equal(t, wgpu.Extent3D{Width: 8, Height: 4, DepthOrArrayLayers: 5}, desc.Size)
	assert.Equal(t, stageTextureFormat, desc.Format)

	desc = textureDescriptor("t", common.TextureStagingData{Width: 8, Height: 4})
	assert.Equal(t, uint32(1), desc.Size.DepthOrArrayLayers)

	view := textureViewDescriptor("t", 5, wgpu.TextureViewDimension2DArray)
	assert.Equal(t, uint32(5), view.ArrayLayerCount)
	view = textureViewDescriptor("t", 5, wgpu.TextureViewDimension2D)
	assert.Equal(t, uint32(1), view.ArrayLayerCount)
	assert.Equal(t, uint32(0), view.BaseArrayLayer)
}

func TestSamplerDescriptorDefaults(t *testing.T) {
	desc := samplerDescriptor("s", common.SamplerStagingData{})
	assert.Equal(t, wgpu.AddressModeRepeat, desc.AddressModeU)
	assert.Equal(t, wgpu.FilterModeLinear, desc.MagFilter)
	assert.Equal(t, float32(32), desc.LodMaxClamp)
	assert.Equal(t, uint16(1), desc.MaxAnisotropy)

	nearest := texture.Sampler{AddressU: texture.AddressClamp, Filter: texture.FilterNearest}
	desc = samplerDescriptor("s", nearest.Staging())
	assert.Equal(t, wgpu.AddressModeClampToEdge, desc.AddressModeU)
	assert.Equal(t, wgpu.AddressModeRepeat, desc.AddressModeV)
	assert.Equal(t, wgpu.FilterModeNearest, desc.MagFilter)
	assert.Equal(t, wgpu.MipmapFilterModeNearest, desc.MipmapFilter)
}

func TestBufferUsage(t *testing.T) {
	assert.Equal(t, wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst, bufferUsage(wgpu.BufferBindingTypeUniform))
	assert.Equal(t, wgpu.BufferUsageStorage|wgpu.BufferUsageCopyDst, bufferUsage(wgpu.BufferBindingTypeReadOnlyStorage))
}
