package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-q3/common"
	"github.com/Carmen-Shannon/oxy-q3/engine/frame"
	"github.com/Carmen-Shannon/oxy-q3/engine/model"
	"github.com/Carmen-Shannon/oxy-q3/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-q3/engine/renderer/binder"
	"github.com/Carmen-Shannon/oxy-q3/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-q3/engine/surface"
	"github.com/Carmen-Shannon/oxy-q3/engine/texture"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrNotUniform is returned when an upload targets a buffer index that is not backed by a
// uniform buffer. Vertex streams are uploaded once through InitMesh.
var ErrNotUniform = errors.New("upload is not a uniform buffer write")

// uploader is the implementation of the Uploader interface.
type uploader struct {
	mu *sync.Mutex

	backend uploaderBackend
	binder  binder.Binder
	shaders map[model.MeshKind]shader.Shader

	frameProvider bind_group_provider.BindGroupProvider
	stageLayouts  map[model.MeshKind]*wgpu.BindGroupLayout
	textures      map[string]bind_group_provider.BindGroupProvider
	owned         []bind_group_provider.BindGroupProvider

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	validate             bool
}

// Uploader defines the interface for moving frame, stage and mesh data onto the GPU.
//
// The Uploader owns a headless wgpu device. It creates every GPU resource a stage draw
// binds, using the bind group layouts parsed from the stage shaders:
//   - group 0: the frame uniforms, one buffer shared by every draw
//   - group 1: the stage uniforms and texture generation vectors, one bind group per surface layer
//   - group 2: the color and lightmap textures with their samplers, cached per texture pair
//
// Per-draw data flows through a binder.Binder, so frame bytes are written once per
// generation and stage validation runs before anything reaches the queue. Creating render
// pipelines and presenting is left to the caller.
type Uploader interface {
	// Shader retrieves the stage shader used for a mesh kind.
	//
	// Parameters:
	//   - kind: the mesh kind
	//
	// Returns:
	//   - shader.Shader: the parsed stage shader
	Shader(kind model.MeshKind) shader.Shader

	// FrameProvider retrieves the provider holding the frame uniform buffer and bind group.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the group 0 provider
	FrameProvider() bind_group_provider.BindGroupProvider

	// TextureProvider retrieves the cached texture bind group of a surface layer.
	//
	// Parameters:
	//   - kind: the mesh kind the layer is drawn with
	//   - layer: the surface layer
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the group 2 provider
	//   - bool: false if InitSurface has not created it yet
	TextureProvider(kind model.MeshKind, layer surface.Layer) (bind_group_provider.BindGroupProvider, bool)

	// InitMesh creates the vertex and index buffers of a mesh and attaches them as its mesh provider.
	// Meshes that already have a provider are left untouched.
	//
	// Parameters:
	//   - m: the mesh
	//
	// Returns:
	//   - error: an error if buffer creation fails
	InitMesh(m model.Mesh) error

	// InitSurface creates one stage bind group per surface layer and the texture bind groups
	// the layers sample. Stage providers are attached to the surface and its pipeline key is set
	// to the key of the stage shader. Surfaces that already have providers are left untouched.
	//
	// Parameters:
	//   - s: the surface
	//   - kind: the mesh kind the surface is drawn with
	//
	// Returns:
	//   - error: an error if resource creation fails
	InitSurface(s surface.Surface, kind model.MeshKind) error

	// Upload binds a frame, a mesh and a surface for one draw and queues the resulting
	// uniform writes. The mesh and surface are initialized first when needed.
	//
	// Parameters:
	//   - f: the frame being drawn
	//   - m: the mesh being drawn
	//   - s: the surface shading the mesh
	//
	// Returns:
	//   - error: an error if binding, validation or resource creation fails
	Upload(f frame.Frame, m model.Mesh, s surface.Surface) error

	// Writes routes binder uploads to the buffers that back them.
	//
	// Parameters:
	//   - uploads: the uploads produced by a binder
	//   - s: the surface the stage uploads belong to
	//
	// Returns:
	//   - []bind_group_provider.BufferWrite: one write per upload
	//   - error: an error if an upload has no uniform buffer to land in
	Writes(uploads []binder.Upload, s surface.Surface) ([]bind_group_provider.BufferWrite, error)

	// Release frees every GPU resource created by the Uploader and then the device.
	Release()
}

var _ Uploader = &uploader{}

// NewUploader creates an Uploader on a headless wgpu device and initializes the frame bind group.
//
// Parameters:
//   - options: a variadic list of UploaderBuilderOption functions to configure the Uploader
//
// Returns:
//   - Uploader: the new Uploader
//   - error: an error if no adapter or device is available
func NewUploader(options ...UploaderBuilderOption) (Uploader, error) {
	u := &uploader{
		mu:           &sync.Mutex{},
		stageLayouts: make(map[model.MeshKind]*wgpu.BindGroupLayout),
		textures:     make(map[string]bind_group_provider.BindGroupProvider),
		shaders: map[model.MeshKind]shader.Shader{
			model.MeshKind2D:      shader.NewStageShader(model.MeshKind2D),
			model.MeshKindSurface: shader.NewStageShader(model.MeshKindSurface),
		},
	}
	for _, opt := range options {
		opt(u)
	}

	if u.backend == nil {
		backend, err := newWGPUUploaderBackend(u.forceFallbackAdapter)
		if err != nil {
			return nil, fmt.Errorf("uploader: %w", err)
		}
		u.backend = backend
	}
	u.binder = binder.NewBinder(binder.WithValidation(u.validate))

	sh := u.shaders[model.MeshKindSurface]
	group, ok := sh.ProviderGroup(shader.AnnotationArgFrame)
	if !ok {
		u.backend.Release()
		return nil, fmt.Errorf("uploader: shader %s declares no frame group", sh.Key())
	}
	u.frameProvider = bind_group_provider.NewBindGroupProvider("frame")
	if err := u.backend.InitBindGroup(u.frameProvider, sh.BindGroupLayoutDescriptor(group)); err != nil {
		u.backend.Release()
		return nil, fmt.Errorf("uploader: frame bind group: %w", err)
	}
	return u, nil
}

func (u *uploader) Shader(kind model.MeshKind) shader.Shader {
	return u.shaders[kind]
}

func (u *uploader) FrameProvider() bind_group_provider.BindGroupProvider {
	return u.frameProvider
}

func (u *uploader) TextureProvider(kind model.MeshKind, layer surface.Layer) (bind_group_provider.BindGroupProvider, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	p, ok := u.textures[textureKey(u.shaders[kind], layer)]
	return p, ok
}

func (u *uploader) InitMesh(m model.Mesh) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.initMesh(m)
}

func (u *uploader) initMesh(m model.Mesh) error {
	if m.MeshProvider() != nil {
		return nil
	}
	p := bind_group_provider.NewBindGroupProvider(m.Name() + " Mesh")
	if err := u.backend.InitMeshBuffers(p, binder.MeshUpload(m).Data, m.IndexData(), m.IndexCount()); err != nil {
		p.Release()
		return fmt.Errorf("mesh %q: %w", m.Name(), err)
	}
	m.SetMeshProvider(p)
	u.owned = append(u.owned, p)
	return nil
}

func (u *uploader) InitSurface(s surface.Surface, kind model.MeshKind) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.initSurface(s, kind)
}

func (u *uploader) initSurface(s surface.Surface, kind model.MeshKind) error {
	layers := s.Layers()
	if len(layers) == 0 || s.StageProvider(0) != nil {
		return nil
	}

	sh := u.shaders[kind]
	group, ok := sh.ProviderGroup(shader.AnnotationArgStage)
	if !ok {
		return fmt.Errorf("surface %q: shader %s declares no stage group", s.Name(), sh.Key())
	}
	desc := sh.BindGroupLayoutDescriptor(group)

	layout, ok := u.stageLayouts[kind]
	if !ok {
		var err error
		layout, err = u.backend.CreateBindGroupLayout(desc)
		if err != nil {
			return fmt.Errorf("surface %q: stage layout: %w", s.Name(), err)
		}
		u.stageLayouts[kind] = layout
	}

	for i, layer := range layers {
		p := bind_group_provider.NewBindGroupProvider(
			fmt.Sprintf("%s Stage %d", s.Name(), i),
			bind_group_provider.WithBindGroupLayout(layout),
		)
		if err := u.backend.InitBindGroup(p, desc); err != nil {
			p.Release()
			return fmt.Errorf("surface %q layer %d: %w", s.Name(), i, err)
		}
		s.SetStageProvider(i, p)
		u.owned = append(u.owned, p)

		if _, err := u.textureProvider(sh, layer); err != nil {
			return fmt.Errorf("surface %q layer %d: %w", s.Name(), i, err)
		}
	}
	s.SetPipelineKey(sh.Key())
	common.Logger().Debug("surface initialized", "surface", s.Name(), "layers", len(layers), "shader", sh.Key())
	return nil
}

// textureProvider returns the cached texture bind group of a layer, creating it on first use.
func (u *uploader) textureProvider(sh shader.Shader, layer surface.Layer) (bind_group_provider.BindGroupProvider, error) {
	key := textureKey(sh, layer)
	if p, ok := u.textures[key]; ok {
		return p, nil
	}

	group, ok := sh.ProviderGroup(shader.AnnotationArgStageTextures)
	if !ok {
		return nil, fmt.Errorf("shader %s declares no stage texture group", sh.Key())
	}

	color := layerTexture(layer.Color)
	lightmap := layerTexture(layer.Lightmap)
	bindings := []struct {
		role      shader.AnnotationArg
		tex       texture.Texture
		dimension wgpu.TextureViewDimension
	}{
		{shader.AnnotationArgColorTexture, color, wgpu.TextureViewDimension2DArray},
		{shader.AnnotationArgLightmapTexture, lightmap, wgpu.TextureViewDimension2D},
	}
	samplers := []struct {
		role shader.AnnotationArg
		tex  texture.Texture
	}{
		{shader.AnnotationArgColorSampler, color},
		{shader.AnnotationArgLightmapSampler, lightmap},
	}

	p := bind_group_provider.NewBindGroupProvider(key)
	for _, b := range bindings {
		_, binding, ok := sh.RoleBinding(b.role)
		if !ok {
			continue
		}
		if err := u.backend.InitTextureView(p, binding, b.tex.StagingData(), b.dimension); err != nil {
			p.Release()
			return nil, fmt.Errorf("texture %q: %w", b.tex.Name(), err)
		}
	}
	for _, s := range samplers {
		_, binding, ok := sh.RoleBinding(s.role)
		if !ok {
			continue
		}
		if err := u.backend.InitSampler(p, binding, s.tex.Sampler().Staging()); err != nil {
			p.Release()
			return nil, fmt.Errorf("sampler for %q: %w", s.tex.Name(), err)
		}
	}
	if err := u.backend.InitBindGroup(p, sh.BindGroupLayoutDescriptor(group)); err != nil {
		p.Release()
		return nil, err
	}

	u.textures[key] = p
	return p, nil
}

func (u *uploader) Upload(f frame.Frame, m model.Mesh, s surface.Surface) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if err := u.initMesh(m); err != nil {
		return err
	}
	if err := u.initSurface(s, m.Kind()); err != nil {
		return err
	}

	uploads, err := u.binder.BindDraw(f, m, s)
	if err != nil {
		return err
	}
	writes, err := u.writes(uploads, s)
	if err != nil {
		return err
	}
	u.backend.WriteBuffers(writes)
	return nil
}

func (u *uploader) Writes(uploads []binder.Upload, s surface.Surface) ([]bind_group_provider.BufferWrite, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.writes(uploads, s)
}

func (u *uploader) writes(uploads []binder.Upload, s surface.Surface) ([]bind_group_provider.BufferWrite, error) {
	writes := make([]bind_group_provider.BufferWrite, 0, len(uploads))
	for _, up := range uploads {
		var p bind_group_provider.BindGroupProvider
		switch up.Index {
		case model.BufferIndexUniforms:
			p = u.frameProvider
		case model.BufferIndexStageUniforms:
			p = s.StageProvider(up.Layer)
			if p == nil {
				return nil, fmt.Errorf("surface %q layer %d has no stage provider", s.Name(), up.Layer)
			}
		default:
			return nil, fmt.Errorf("%s: %w", up.Index, ErrNotUniform)
		}
		writes = append(writes, bind_group_provider.BufferWrite{
			Provider: p,
			Binding:  up.Binding,
			Data:     up.Data,
		})
	}
	return writes, nil
}

func (u *uploader) Release() {
	u.mu.Lock()
	defer u.mu.Unlock()

	for _, p := range u.owned {
		p.Release()
	}
	u.owned = nil
	for key, p := range u.textures {
		p.Release()
		delete(u.textures, key)
	}
	for kind, l := range u.stageLayouts {
		if l != nil {
			l.Release()
		}
		delete(u.stageLayouts, kind)
	}
	if u.frameProvider != nil {
		u.frameProvider.Release()
		u.frameProvider = nil
	}
	u.backend.Release()
}

func layerTexture(t texture.Texture) texture.Texture {
	if t == nil {
		return texture.White
	}
	return t
}

// textureKey identifies a texture bind group by shader and texture pair.
func textureKey(sh shader.Shader, layer surface.Layer) string {
	return fmt.Sprintf("%s %s|%s", sh.Key(), layerTexture(layer.Color).Name(), layerTexture(layer.Lightmap).Name())
}
