package shader

import (
	"fmt"
	"os"

	"github.com/Carmen-Shannon/oxy-q3/common"
	"github.com/Carmen-Shannon/oxy-q3/engine/model"
	"github.com/cogentcore/webgpu/wgpu"
)

// shader is the implementation of the Shader interface.
type shader struct {
	key                        string
	source                     string
	vertexEntryPoint           string
	fragmentEntryPoint         string
	visibility                 wgpu.ShaderStage
	bindGroupLayoutDescriptors map[int]wgpu.BindGroupLayoutDescriptor
	bindingVarNames            map[int]map[int]string
	vertexLayouts              map[int][]wgpu.VertexBufferLayout
	vertexStructs              map[int]string
	structLayouts              map[string]StructLayout
	declarations               []Annotation
	module                     *wgpu.ShaderModuleDescriptor
}

// Shader defines the interface for a pre-processed and parsed WGSL stage shader. It carries
// everything the uploader needs to create GPU resources for a stage: bind group layouts,
// vertex layouts, the provider declarations and the host layout of every uniform struct.
type Shader interface {
	// Key retrieves the unique identifier of this shader.
	//
	// Returns:
	//   - string: the shader key
	Key() string

	// Source retrieves the pre-processed WGSL source, ready for compilation.
	//
	// Returns:
	//   - string: the WGSL source with every annotation expanded
	Source() string

	// VertexEntryPoint returns the name of the @vertex function, or "" if there is none.
	//
	// Returns:
	//   - string: the vertex entry point
	VertexEntryPoint() string

	// FragmentEntryPoint returns the name of the @fragment function, or "" if there is none.
	//
	// Returns:
	//   - string: the fragment entry point
	FragmentEntryPoint() string

	// BindGroupLayoutDescriptor retrieves the layout descriptor of one bind group.
	//
	// Parameters:
	//   - group: the @group index
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: the descriptor, or an empty descriptor if the group is not declared
	BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor

	// BindGroupLayoutDescriptors retrieves every bind group layout descriptor keyed by group.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: the descriptors
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// BindGroupVarName retrieves the WGSL variable name bound at a group and binding.
	//
	// Parameters:
	//   - group: the @group index
	//   - binding: the @binding index
	//
	// Returns:
	//   - string: the variable name, or "" if nothing is bound there
	BindGroupVarName(group, binding int) string

	// BindGroupFromVarName finds the binding of a variable within a group.
	//
	// Parameters:
	//   - group: the @group index
	//   - varName: the WGSL variable name
	//
	// Returns:
	//   - int: the binding index, or -1 if not found
	//   - bool: true if the variable was found
	BindGroupFromVarName(group int, varName string) (int, bool)

	// VertexLayout retrieves the vertex buffer layout of one vertex input struct.
	//
	// Parameters:
	//   - key: the index of the vertex input struct in source order
	//
	// Returns:
	//   - []wgpu.VertexBufferLayout: the layout, or nil if there is no such struct
	VertexLayout(key int) []wgpu.VertexBufferLayout

	// VertexLayouts retrieves every vertex buffer layout keyed by input struct order.
	//
	// Returns:
	//   - map[int][]wgpu.VertexBufferLayout: the layouts
	VertexLayouts() map[int][]wgpu.VertexBufferLayout

	// VertexLayoutFor retrieves the vertex buffer layout of the named input struct.
	//
	// Parameters:
	//   - structName: the WGSL struct name, e.g. "SurfaceVertex"
	//
	// Returns:
	//   - wgpu.VertexBufferLayout: the layout
	//   - bool: true if the struct is a vertex input of this shader
	VertexLayoutFor(structName string) (wgpu.VertexBufferLayout, bool)

	// StructLayout retrieves the host-shareable layout of a struct declared in the shader.
	//
	// Parameters:
	//   - name: the WGSL struct name
	//
	// Returns:
	//   - StructLayout: the layout with per-field offsets
	//   - bool: true if the struct exists and every field type resolved
	StructLayout(name string) (StructLayout, bool)

	// Declarations returns the group and provider annotations of the shader in source order.
	//
	// Returns:
	//   - []Annotation: the declarations
	Declarations() []Annotation

	// ProviderGroup finds the bind group filled by a provider. Group annotations match on
	// their struct key, provider annotations on their provider identity.
	//
	// Parameters:
	//   - identity: the provider identity, e.g. AnnotationArgStageTextures
	//
	// Returns:
	//   - int: the @group index, or -1 if not found
	//   - bool: true if a declaration names the provider
	ProviderGroup(identity AnnotationArg) (int, bool)

	// RoleBinding finds the binding that carries a role within the stage texture group.
	//
	// Parameters:
	//   - role: the binding role, e.g. AnnotationArgColorTexture
	//
	// Returns:
	//   - int: the @group index
	//   - int: the @binding index
	//   - bool: true if a provider annotation declares the role
	RoleBinding(role AnnotationArg) (int, int, bool)

	// Module returns the shader module descriptor built from the processed source.
	//
	// Returns:
	//   - *wgpu.ShaderModuleDescriptor: the descriptor holding the WGSL code
	Module() *wgpu.ShaderModuleDescriptor
}

var _ Shader = &shader{}

// NewShader reads, pre-processes and parses a WGSL file. It panics if the file cannot be
// read or parsed.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - sourcePath: the WGSL file path
//
// Returns:
//   - Shader: the parsed shader
func NewShader(key string, sourcePath string) Shader {
	if sourcePath == "" {
		panic(fmt.Sprintf("shader: %s must have a source path", key))
	}
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		panic(fmt.Sprintf("shader: failed to read source file %q: %v", sourcePath, err))
	}
	s, err := NewShaderFromSource(key, string(data))
	if err != nil {
		panic(fmt.Sprintf("shader: %q: %v", sourcePath, err))
	}
	return s
}

// NewShaderFromSource pre-processes and parses annotated WGSL source.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - source: the annotated WGSL source
//
// Returns:
//   - Shader: the parsed shader
//   - error: an error if an annotation is malformed or a binding is declared twice
func NewShaderFromSource(key string, source string) (Shader, error) {
	pp := NewPreProcessor()
	processed, err := pp.Process(source)
	if err != nil {
		return nil, fmt.Errorf("shader %s: pre-process: %w", key, err)
	}

	s := &shader{
		key:          key,
		source:       processed,
		declarations: pp.Declarations(),
		module: &wgpu.ShaderModuleDescriptor{
			Label:          key,
			WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: processed},
		},
	}

	cleaned := stripComments(processed)
	s.vertexEntryPoint, s.fragmentEntryPoint = parseEntryPoints(cleaned)
	if s.vertexEntryPoint != "" {
		s.visibility |= wgpu.ShaderStageVertex
	}
	if s.fragmentEntryPoint != "" {
		s.visibility |= wgpu.ShaderStageFragment
	}

	structs := parseStructBlocks(cleaned)
	s.structLayouts = computeStructLayouts(structs)
	if s.vertexEntryPoint != "" {
		s.vertexLayouts, s.vertexStructs = parseVertexLayouts(structs)
	}
	s.bindGroupLayoutDescriptors, s.bindingVarNames, err = parseBindGroupLayouts(cleaned, s.visibility, s.structLayouts)
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", key, err)
	}
	for g, desc := range s.bindGroupLayoutDescriptors {
		desc.Label = fmt.Sprintf("%s_group_%d", key, g)
		s.bindGroupLayoutDescriptors[g] = desc
	}

	common.Logger().Debug("shader parsed",
		"key", key, "vertex", s.vertexEntryPoint, "fragment", s.fragmentEntryPoint,
		"groups", len(s.bindGroupLayoutDescriptors), "structs", len(s.structLayouts))
	return s, nil
}

// NewStageShader returns the built-in stage shader for a mesh kind: the UI shader for 2D
// meshes and the surface shader otherwise. It panics if the embedded source fails to parse.
//
// Parameters:
//   - kind: the mesh kind drawn with the shader
//
// Returns:
//   - Shader: the parsed stage shader
func NewStageShader(kind model.MeshKind) Shader {
	key, source := "surface_stage", SurfaceStageSource
	if kind == model.MeshKind2D {
		key, source = "ui_stage", UIStageSource
	}
	s, err := NewShaderFromSource(key, source)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) VertexEntryPoint() string {
	return s.vertexEntryPoint
}

func (s *shader) FragmentEntryPoint() string {
	return s.fragmentEntryPoint
}

func (s *shader) BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors[group]
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors
}

func (s *shader) BindGroupVarName(group, binding int) string {
	return s.bindingVarNames[group][binding]
}

func (s *shader) BindGroupFromVarName(group int, varName string) (int, bool) {
	for binding, name := range s.bindingVarNames[group] {
		if name == varName {
			return binding, true
		}
	}
	return -1, false
}

func (s *shader) VertexLayout(key int) []wgpu.VertexBufferLayout {
	return s.vertexLayouts[key]
}

func (s *shader) VertexLayouts() map[int][]wgpu.VertexBufferLayout {
	return s.vertexLayouts
}

func (s *shader) VertexLayoutFor(structName string) (wgpu.VertexBufferLayout, bool) {
	for i, name := range s.vertexStructs {
		if name == structName {
			return s.vertexLayouts[i][0], true
		}
	}
	return wgpu.VertexBufferLayout{}, false
}

func (s *shader) StructLayout(name string) (StructLayout, bool) {
	l, ok := s.structLayouts[name]
	return l, ok
}

func (s *shader) Declarations() []Annotation {
	return s.declarations
}

func (s *shader) ProviderGroup(identity AnnotationArg) (int, bool) {
	for _, d := range s.declarations {
		switch {
		case d.Type == AnnotationTypeProvider && d.Args[0] == identity:
			return *d.Group, true
		case d.Type == AnnotationTypeBindingGroup && d.Args[2] == identity:
			return *d.Group, true
		}
	}
	return -1, false
}

func (s *shader) RoleBinding(role AnnotationArg) (int, int, bool) {
	for _, d := range s.declarations {
		if d.Role() == role {
			return *d.Group, *d.Binding, true
		}
	}
	return -1, -1, false
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}
