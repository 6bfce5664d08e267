package shader

import (
	"strings"
	"testing"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-q3/engine/frame"
	"github.com/Carmen-Shannon/oxy-q3/engine/model"
	"github.com/Carmen-Shannon/oxy-q3/engine/stage"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnnotation(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    AnnotationType
		wantErr bool
	}{
		{"plain code", "let x = 1.0;", "", false},
		{"plain comment", "// just a comment", "", false},
		{"include", "//@oxy:include stage", annotationTypeInclude, false},
		{"include eval", "  //@oxy:include stage_eval", annotationTypeInclude, false},
		{"group", "//@oxy:group 1 0 storage_uniform stage_uniforms stage", AnnotationTypeBindingGroup, false},
		{"provider with role", "//@oxy:provider 2 0 stage_textures color_texture", AnnotationTypeProvider, false},
		{"provider without role", "//@oxy:provider 0 0 frame", AnnotationTypeProvider, false},
		{"empty", "//@oxy:", "", true},
		{"unknown type", "//@oxy:bogus x", "", true},
		{"unknown include", "//@oxy:include camera", "", true},
		{"eval is include only", "//@oxy:group 1 2 storage_uniform e stage_eval", "", true},
		{"bad group", "//@oxy:group x 0 storage_uniform s stage", "", true},
		{"negative binding", "//@oxy:group 1 -1 storage_uniform s stage", "", true},
		{"bad address space", "//@oxy:group 1 0 private s stage", "", true},
		{"unknown provider", "//@oxy:provider 2 0 material", "", true},
		{"unknown role", "//@oxy:provider 2 0 stage_textures normal_texture", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := parseAnnotation(tt.line, 7)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "line 7")
				return
			}
			require.NoError(t, err)
			if tt.want == "" {
				assert.Nil(t, a)
				return
			}
			require.NotNil(t, a)
			assert.Equal(t, tt.want, a.Type)
		})
	}
}

func TestPreProcessorExpandsAnnotations(t *testing.T) {
	src := strings.Join([]string{
		"//@oxy:include stage",
		"//@oxy:include stage",
		"//@oxy:group 1 0 storage_uniform stage_uniforms stage",
		"//@oxy:provider 2 1 stage_textures color_sampler",
		"@group(2) @binding(1) var color_sampler: sampler;",
	}, "\n")

	pp := NewPreProcessor()
	out, err := pp.Process(src)
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(out, "struct StageUniforms"), "a source is included once")
	assert.Contains(t, out, "@group(1) @binding(0) var<uniform> stage_uniforms: StageUniforms;")
	assert.NotContains(t, out, "@oxy:")

	decls := pp.Declarations()
	require.Len(t, decls, 2)
	assert.Equal(t, AnnotationTypeBindingGroup, decls[0].Type)
	assert.Equal(t, AnnotationTypeProvider, decls[1].Type)
	assert.Equal(t, AnnotationArgColorSampler, decls[1].Role())
	assert.Equal(t, AnnotationArg(""), decls[0].Role())
}

func TestUniformLayoutsMatchGoTypes(t *testing.T) {
	s := NewStageShader(model.MeshKindSurface)

	var fu frame.GPUFrameUniforms
	var su stage.GPUStageUniforms
	var tv stage.GPUTCGenVectors

	tests := []struct {
		name    string
		size    uintptr
		offsets map[string]uintptr
	}{
		{"FrameUniforms", unsafe.Sizeof(fu), map[string]uintptr{
			"projection":  unsafe.Offsetof(fu.ProjectionMatrix),
			"view":        unsafe.Offsetof(fu.ViewMatrix),
			"model":       unsafe.Offsetof(fu.ModelMatrix),
			"view_origin": unsafe.Offsetof(fu.ViewOrigin),
			"time":        unsafe.Offsetof(fu.Time),
		}},
		{"StageUniforms", unsafe.Sizeof(su), map[string]uintptr{
			"color":            unsafe.Offsetof(su.Color),
			"tc_mod_mat":       unsafe.Offsetof(su.TCModMat),
			"tc_mod_offset":    unsafe.Offsetof(su.TCModOffset),
			"alpha_test_func":  unsafe.Offsetof(su.AlphaTestFunc),
			"alpha_test_value": unsafe.Offsetof(su.AlphaTestValue),
			"use_vertex_color": unsafe.Offsetof(su.UseVertexColor),
			"use_vertex_alpha": unsafe.Offsetof(su.UseVertexAlpha),
			"tc_gen":           unsafe.Offsetof(su.TCGen),
			"anim_frame":       unsafe.Offsetof(su.AnimFrame),
			"turb_amplitude":   unsafe.Offsetof(su.TurbAmplitude),
			"turb_phase":       unsafe.Offsetof(su.TurbPhase),
			"turb_frequency":   unsafe.Offsetof(su.TurbFrequency),
			"turb_time":        unsafe.Offsetof(su.TurbTime),
			"use_lightmap":     unsafe.Offsetof(su.UseLightmap),
			"vertex_flags":     unsafe.Offsetof(su.VertexFlags),
		}},
		{"TCGenVectors", unsafe.Sizeof(tv), map[string]uintptr{
			"s_vector": unsafe.Offsetof(tv.SVector),
			"t_vector": unsafe.Offsetof(tv.TVector),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, ok := s.StructLayout(tt.name)
			require.True(t, ok)
			assert.Equal(t, uint64(tt.size), l.Size)
			for field, off := range tt.offsets {
				f, ok := l.Field(field)
				require.True(t, ok, field)
				assert.Equal(t, uint64(off), f.Offset, field)
			}
		})
	}

	assert.Equal(t, uint64(208), uint64(fu.Size()))
	assert.Equal(t, uint64(96), uint64(su.Size()))
	assert.Equal(t, uint64(32), uint64(tv.Size()))
}

func TestVertexLayoutsMatchGoTypes(t *testing.T) {
	var sv model.GPUSurfaceVertex
	surface, ok := NewStageShader(model.MeshKindSurface).VertexLayoutFor("SurfaceVertex")
	require.True(t, ok)
	assert.Equal(t, uint64(unsafe.Sizeof(sv)), surface.ArrayStride)
	require.Len(t, surface.Attributes, 5)
	for i, off := range []uintptr{
		unsafe.Offsetof(sv.Position),
		unsafe.Offsetof(sv.TexCoord),
		unsafe.Offsetof(sv.Color),
		unsafe.Offsetof(sv.Normal),
		unsafe.Offsetof(sv.LightmapCoord),
	} {
		assert.Equal(t, uint64(off), surface.Attributes[i].Offset)
		assert.Equal(t, uint32(i), surface.Attributes[i].ShaderLocation)
	}
	assert.Equal(t, uint32(model.VertexAttributeLightmapTexcoord), surface.Attributes[4].ShaderLocation)

	var v2 model.GPU2DVertex
	ui := NewStageShader(model.MeshKind2D)
	flat, ok := ui.VertexLayoutFor("Vertex2D")
	require.True(t, ok)
	assert.Equal(t, uint64(unsafe.Sizeof(v2)), flat.ArrayStride)
	require.Len(t, flat.Attributes, 3)
	assert.Equal(t, uint64(unsafe.Offsetof(v2.Color)), flat.Attributes[2].Offset)
	assert.Equal(t, wgpu.VertexFormatFloat32x4, flat.Attributes[2].Format)

	_, ok = ui.VertexLayoutFor("UIVaryings")
	assert.False(t, ok, "structs with builtins are not vertex inputs")
}

func TestStageShaderBindGroups(t *testing.T) {
	for _, kind := range []model.MeshKind{model.MeshKindSurface, model.MeshKind2D} {
		s := NewStageShader(kind)
		t.Run(s.Key(), func(t *testing.T) {
			assert.Equal(t, "vs_main", s.VertexEntryPoint())
			assert.Equal(t, "fs_main", s.FragmentEntryPoint())

			descs := s.BindGroupLayoutDescriptors()
			require.Len(t, descs, 3)

			frameGroup := s.BindGroupLayoutDescriptor(0)
			require.Len(t, frameGroup.Entries, 1)
			assert.Equal(t, wgpu.BufferBindingTypeUniform, frameGroup.Entries[0].Buffer.Type)
			assert.Equal(t, uint64(208), frameGroup.Entries[0].Buffer.MinBindingSize)
			assert.Equal(t, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, frameGroup.Entries[0].Visibility)

			stageGroup := s.BindGroupLayoutDescriptor(1)
			require.Len(t, stageGroup.Entries, 2)
			assert.Equal(t, uint64(96), stageGroup.Entries[0].Buffer.MinBindingSize)
			assert.Equal(t, uint64(32), stageGroup.Entries[1].Buffer.MinBindingSize)

			textures := s.BindGroupLayoutDescriptor(2)
			require.Len(t, textures.Entries, 4)
			assert.Equal(t, wgpu.TextureViewDimension2DArray, textures.Entries[0].Texture.ViewDimension)
			assert.Equal(t, wgpu.TextureSampleTypeFloat, textures.Entries[0].Texture.SampleType)
			assert.Equal(t, wgpu.SamplerBindingTypeFiltering, textures.Entries[1].Sampler.Type)
			assert.Equal(t, wgpu.TextureViewDimension2D, textures.Entries[2].Texture.ViewDimension)
			assert.Equal(t, wgpu.SamplerBindingTypeFiltering, textures.Entries[3].Sampler.Type)

			g, ok := s.ProviderGroup(AnnotationArgFrameProvider)
			assert.True(t, ok)
			assert.Equal(t, 0, g)
			g, ok = s.ProviderGroup(AnnotationArgStageProvider)
			assert.True(t, ok)
			assert.Equal(t, 1, g)
			g, ok = s.ProviderGroup(AnnotationArgStageTextures)
			assert.True(t, ok)
			assert.Equal(t, 2, g)

			g, b, ok := s.RoleBinding(AnnotationArgLightmapSampler)
			assert.True(t, ok)
			assert.Equal(t, 2, g)
			assert.Equal(t, 3, b)

			binding, ok := s.BindGroupFromVarName(1, "tcgen_vectors")
			assert.True(t, ok)
			assert.Equal(t, 1, binding)
			assert.Equal(t, "color_texture", s.BindGroupVarName(2, 0))
		})
	}
}

func TestDuplicateBindingRejected(t *testing.T) {
	src := strings.Join([]string{
		"@group(2) @binding(1) var a: sampler;",
		"@group(2) @binding(1) var b: sampler;",
	}, "\n")
	_, err := NewShaderFromSource("dup", src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "@group(2) @binding(1)")
}

func TestNewShaderPanicsWithoutSource(t *testing.T) {
	assert.Panics(t, func() { NewShader("missing", "") })
	assert.Panics(t, func() { NewShader("missing", "does/not/exist.wgsl") })
}

func TestResolveTypeLayout(t *testing.T) {
	structs := map[string]StructLayout{"S": {Name: "S", Size: 48, Align: 16}}
	tests := []struct {
		typ  string
		want wgslTypeLayout
		ok   bool
	}{
		{"vec3<f32>", wgslTypeLayout{12, 16}, true},
		{"mat2x2<f32>", wgslTypeLayout{16, 8}, true},
		{"array<vec3<f32>, 4>", wgslTypeLayout{64, 16}, true},
		{"array<S>", wgslTypeLayout{48, 16}, true},
		{"array<f32, 3>", wgslTypeLayout{12, 4}, true},
		{"Unknown", wgslTypeLayout{}, false},
	}
	for _, tt := range tests {
		got, ok := resolveTypeLayout(tt.typ, structs)
		assert.Equal(t, tt.ok, ok, tt.typ)
		assert.Equal(t, tt.want, got, tt.typ)
	}
}

func TestStageShadersReadVertexFlags(t *testing.T) {
	for _, kind := range []model.MeshKind{model.MeshKindSurface, model.MeshKind2D} {
		s := NewStageShader(kind)
		t.Run(s.Key(), func(t *testing.T) {
			src := s.Source()
			assert.Contains(t, src, "tc_gen == TC_GEN_ENVIRONMENT && stage_has_vertex(VERTEX_NORMALS)")
			assert.Contains(t, src, "stage_lightmap_tc(in.tex_coord")
			assert.NotContains(t, src, "has_normals")
		})
	}
	ui := NewStageShader(model.MeshKind2D).Source()
	assert.Contains(t, ui, "vec2<f32>(0.0, 0.0), 0.0);", "screen geometry has zero fog depth")
}

func TestStageShadersCompile(t *testing.T) {
	for _, kind := range []model.MeshKind{model.MeshKindSurface, model.MeshKind2D} {
		s := NewStageShader(kind)
		t.Run(s.Key(), func(t *testing.T) {
			spirv, err := Compile(s)
			require.NoError(t, err)
			require.GreaterOrEqual(t, len(spirv), 4)
			assert.Equal(t, []byte{0x03, 0x02, 0x23, 0x07}, spirv[:4], "SPIR-V magic, little endian")

			metal, err := TranslateMSL(s)
			require.NoError(t, err)
			assert.NotEmpty(t, metal)

			frag, err := TranslateGLSL(s, s.FragmentEntryPoint())
			require.NoError(t, err)
			assert.Contains(t, frag, "#version 330")
		})
	}
}
