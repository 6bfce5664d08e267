// annotations.go defines the @oxy: annotations understood by the stage shader pre-processor.
// An annotation is a single-line WGSL comment. It either injects a registered WGSL source
// (a uniform struct, a vertex struct or the shared stage evaluation library), declares a
// uniform binding, or records which provider owns a hand-written texture or sampler binding.
package shader

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// annotationPrefix marks an annotation inside a WGSL line comment.
const annotationPrefix = "@oxy:"

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
type AnnotationType string

const (
	// annotationTypeInclude injects a registered WGSL source at the annotation site.
	// It is consumed entirely during pre-processing and never becomes a declaration.
	//
	// Syntax: //@oxy:include <source_key>
	//
	// Example: //@oxy:include stage
	annotationTypeInclude AnnotationType = "include"

	// AnnotationTypeBindingGroup emits a @group/@binding variable declaration for a
	// registered struct and records it as a declaration.
	//
	// Syntax: //@oxy:group <group> <binding> <address_space> <var_name> <struct_key>
	//
	// Example: //@oxy:group 1 0 storage_uniform stage_uniforms stage
	AnnotationTypeBindingGroup AnnotationType = "group"

	// AnnotationTypeProvider records the owner of the binding declared on the following
	// hand-written line without emitting any WGSL. Texture and sampler bindings use it.
	// The optional role names which texture of the stage the binding carries.
	//
	// Syntax:
	//   //@oxy:provider <group> <binding> <provider_identity>
	//   //@oxy:provider <group> <binding> <provider_identity> <binding_role>
	//
	// Example: //@oxy:provider 2 0 stage_textures color_texture
	AnnotationTypeProvider AnnotationType = "provider"
)

// Annotation is one parsed @oxy: annotation. Group and binding annotations are kept as
// declarations so the uploader can find the bind group a provider fills.
type Annotation struct {
	// Type identifies which annotation was parsed.
	Type AnnotationType

	// Args holds the annotation arguments:
	//   - include:  [0] = source key
	//   - group:    [0] = address space, [1] = var name, [2] = struct key
	//   - provider: [0] = provider identity, [1] = binding role (optional)
	Args []AnnotationArg

	// Line is the 1-based source line of the annotation.
	Line int

	// Group and Binding are nil for include annotations.
	Group   *int
	Binding *int
}

// Role returns the binding role of a provider annotation, or "" when none was given.
func (a Annotation) Role() AnnotationArg {
	if a.Type != AnnotationTypeProvider || len(a.Args) < 2 {
		return ""
	}
	return a.Args[1]
}

// AnnotationArg is a typed annotation argument.
type AnnotationArg string

// Registered WGSL sources. Struct keys may be used by include and group annotations;
// the stage evaluation library is include-only.
const (
	// AnnotationArgFrame identifies the FrameUniforms struct (engine/frame/assets/frame_uniforms.wgsl).
	AnnotationArgFrame AnnotationArg = "frame"

	// AnnotationArgStage identifies the StageUniforms struct (engine/stage/assets/stage_uniforms.wgsl).
	AnnotationArgStage AnnotationArg = "stage"

	// AnnotationArgTCGenVectors identifies the TCGenVectors struct (engine/stage/assets/tcgen_vectors.wgsl).
	AnnotationArgTCGenVectors AnnotationArg = "tcgen_vectors"

	// annotationArgVertex2D identifies the Vertex2D input struct (engine/model/assets/vertex_2d.wgsl).
	annotationArgVertex2D AnnotationArg = "vertex_2d"

	// annotationArgSurfaceVertex identifies the SurfaceVertex input struct (engine/model/assets/surface_vertex.wgsl).
	annotationArgSurfaceVertex AnnotationArg = "surface_vertex"

	// annotationArgStageEval identifies the shared stage evaluation functions (assets/stage_eval.wgsl).
	annotationArgStageEval AnnotationArg = "stage_eval"
)

// Address spaces accepted by group annotations.
const (
	// annotationArgStorageTypeUniform maps to var<uniform>.
	annotationArgStorageTypeUniform AnnotationArg = "storage_uniform"

	// annotationArgStorageTypeRead maps to var<storage, read>.
	annotationArgStorageTypeRead AnnotationArg = "storage_read"
)

// Provider identities. Each names the BindGroupProvider that fills a bind group.
const (
	// AnnotationArgFrameProvider is the provider of the frame uniform block.
	AnnotationArgFrameProvider AnnotationArg = "frame"

	// AnnotationArgStageProvider is the per-stage provider of the stage uniforms and tcGen vectors.
	AnnotationArgStageProvider AnnotationArg = "stage"

	// AnnotationArgStageTextures is the per-stage provider of the color and lightmap textures.
	AnnotationArgStageTextures AnnotationArg = "stage_textures"
)

// Binding roles inside the stage_textures group.
const (
	AnnotationArgColorTexture    AnnotationArg = "color_texture"
	AnnotationArgColorSampler    AnnotationArg = "color_sampler"
	AnnotationArgLightmapTexture AnnotationArg = "lightmap_texture"
	AnnotationArgLightmapSampler AnnotationArg = "lightmap_sampler"
)

// validStructTypes lists the keys usable in group annotations.
var validStructTypes = []AnnotationArg{
	AnnotationArgFrame,
	AnnotationArgStage,
	AnnotationArgTCGenVectors,
	annotationArgVertex2D,
	annotationArgSurfaceVertex,
}

// validIncludes lists the keys usable in include annotations.
var validIncludes = append(slices.Clone(validStructTypes), annotationArgStageEval)

var validAddressSpaces = []AnnotationArg{
	annotationArgStorageTypeUniform,
	annotationArgStorageTypeRead,
}

var validProviderIdentities = []AnnotationArg{
	AnnotationArgFrameProvider,
	AnnotationArgStageProvider,
	AnnotationArgStageTextures,
}

var validBindingRoles = []AnnotationArg{
	AnnotationArgColorTexture,
	AnnotationArgColorSampler,
	AnnotationArgLightmapTexture,
	AnnotationArgLightmapSampler,
}

// parseAnnotation parses one WGSL source line. Lines without the annotation prefix yield
// (nil, nil); malformed annotations yield an error naming the line.
//
// Parameters:
//   - line: the raw WGSL source line
//   - lineNum: the 1-based line number for error reporting
//
// Returns:
//   - *Annotation: the parsed annotation, or nil if the line is not an annotation
//   - error: an error if the annotation is malformed
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "//") {
		return nil, nil
	}
	_, after, ok := strings.Cut(trimmed, annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @oxy annotation", lineNum)
	}

	switch AnnotationType(args[0]) {
	case annotationTypeInclude:
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @oxy:include takes exactly one argument", lineNum)
		}
		if !slices.Contains(validIncludes, AnnotationArg(args[1])) {
			return nil, fmt.Errorf("line %d: unknown include %q", lineNum, args[1])
		}
		return &Annotation{Type: annotationTypeInclude, Args: []AnnotationArg{AnnotationArg(args[1])}, Line: lineNum}, nil

	case AnnotationTypeBindingGroup:
		if len(args) != 6 {
			return nil, fmt.Errorf("line %d: @oxy:group takes group, binding, address space, var name and struct", lineNum)
		}
		group, binding, err := parseSlot(args[1], args[2], lineNum)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(validAddressSpaces, AnnotationArg(args[3])) {
			return nil, fmt.Errorf("line %d: unknown address space %q", lineNum, args[3])
		}
		if !slices.Contains(validStructTypes, AnnotationArg(args[5])) {
			return nil, fmt.Errorf("line %d: unknown struct %q", lineNum, args[5])
		}
		return &Annotation{
			Type:    AnnotationTypeBindingGroup,
			Args:    []AnnotationArg{AnnotationArg(args[3]), AnnotationArg(args[4]), AnnotationArg(args[5])},
			Line:    lineNum,
			Group:   &group,
			Binding: &binding,
		}, nil

	case AnnotationTypeProvider:
		if len(args) < 4 || len(args) > 5 {
			return nil, fmt.Errorf("line %d: @oxy:provider takes group, binding, provider and an optional role", lineNum)
		}
		group, binding, err := parseSlot(args[1], args[2], lineNum)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(validProviderIdentities, AnnotationArg(args[3])) {
			return nil, fmt.Errorf("line %d: unknown provider %q", lineNum, args[3])
		}
		providerArgs := []AnnotationArg{AnnotationArg(args[3])}
		if len(args) == 5 {
			if !slices.Contains(validBindingRoles, AnnotationArg(args[4])) {
				return nil, fmt.Errorf("line %d: unknown binding role %q", lineNum, args[4])
			}
			providerArgs = append(providerArgs, AnnotationArg(args[4]))
		}
		return &Annotation{
			Type:    AnnotationTypeProvider,
			Args:    providerArgs,
			Line:    lineNum,
			Group:   &group,
			Binding: &binding,
		}, nil

	default:
		return nil, fmt.Errorf("line %d: unknown @oxy annotation %q", lineNum, args[0])
	}
}

func parseSlot(groupArg, bindingArg string, lineNum int) (int, int, error) {
	group, err := strconv.Atoi(groupArg)
	if err != nil || group < 0 {
		return 0, 0, fmt.Errorf("line %d: invalid group %q", lineNum, groupArg)
	}
	binding, err := strconv.Atoi(bindingArg)
	if err != nil || binding < 0 {
		return 0, 0, fmt.Errorf("line %d: invalid binding %q", lineNum, bindingArg)
	}
	return group, binding, nil
}
