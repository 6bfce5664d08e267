package shader

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// wgslVertexFormatMap maps the WGSL types a vertex stream may carry to wgpu vertex formats.
var wgslVertexFormatMap = map[string]vertexFormatInfo{
	"f32":       {wgpu.VertexFormatFloat32, 4},
	"vec2f":     {wgpu.VertexFormatFloat32x2, 8},
	"vec2<f32>": {wgpu.VertexFormatFloat32x2, 8},
	"vec3f":     {wgpu.VertexFormatFloat32x3, 12},
	"vec3<f32>": {wgpu.VertexFormatFloat32x3, 12},
	"vec4f":     {wgpu.VertexFormatFloat32x4, 16},
	"vec4<f32>": {wgpu.VertexFormatFloat32x4, 16},
	"i32":       {wgpu.VertexFormatSint32, 4},
	"u32":       {wgpu.VertexFormatUint32, 4},
}

// wgslTextureViewMap maps sampled texture types to their view dimension.
var wgslTextureViewMap = map[string]wgpu.TextureViewDimension{
	"texture_2d":       wgpu.TextureViewDimension2D,
	"texture_2d_array": wgpu.TextureViewDimension2DArray,
	"texture_cube":     wgpu.TextureViewDimensionCube,
}

var wgslSampleTypeMap = map[string]wgpu.TextureSampleType{
	"f32": wgpu.TextureSampleTypeFloat,
	"i32": wgpu.TextureSampleTypeSint,
	"u32": wgpu.TextureSampleTypeUint,
}

var (
	structBlockRegex   = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)
	locationRegex      = regexp.MustCompile(`@location\((\d+)\)`)
	builtinRegex       = regexp.MustCompile(`@builtin\(\w+\)`)
	fieldRegex         = regexp.MustCompile(`^(?:@\w+\([^)]*\)\s*)*(\w+)\s*:\s*(.+)$`)
	vertexEntryRegex   = regexp.MustCompile(`@vertex\s+fn\s+(\w+)`)
	fragmentEntryRegex = regexp.MustCompile(`@fragment\s+fn\s+(\w+)`)

	// bindGroupDeclRegex captures group, binding, address space, name and type of
	// declarations such as "@group(1) @binding(0) var<uniform> stage_uniforms: StageUniforms;"
	// and "@group(2) @binding(1) var color_sampler: sampler;".
	bindGroupDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// parseEntryPoints returns the vertex and fragment entry point names, empty when absent.
//
// Parameters:
//   - source: comment-free WGSL source
//
// Returns:
//   - vertex: the @vertex function name
//   - fragment: the @fragment function name
func parseEntryPoints(source string) (vertex, fragment string) {
	if m := vertexEntryRegex.FindStringSubmatch(source); m != nil {
		vertex = m[1]
	}
	if m := fragmentEntryRegex.FindStringSubmatch(source); m != nil {
		fragment = m[1]
	}
	return vertex, fragment
}

// parseVertexLayouts builds one vertex buffer layout per vertex input struct, that is
// every struct whose fields all carry @location and none @builtin. Attributes are packed
// in declaration order with no padding, matching the Marshal output of the vertex types.
//
// Parameters:
//   - structs: the parsed structs of the shader
//
// Returns:
//   - map[int][]wgpu.VertexBufferLayout: layouts keyed by input struct order
//   - map[int]string: struct names keyed the same way
func parseVertexLayouts(structs []parsedStruct) (map[int][]wgpu.VertexBufferLayout, map[int]string) {
	layouts := make(map[int][]wgpu.VertexBufferLayout)
	names := make(map[int]string)
	for _, ps := range structs {
		if !isVertexInputStruct(ps) {
			continue
		}
		layout, ok := buildVertexBufferLayout(ps)
		if !ok {
			continue
		}
		i := len(layouts)
		layouts[i] = []wgpu.VertexBufferLayout{layout}
		names[i] = ps.name
	}
	return layouts, names
}

// parseBindGroupLayouts collects every @group/@binding declaration into bind group layout
// descriptors. Uniform and storage bindings get MinBindingSize from the struct layouts.
//
// Parameters:
//   - source: comment-free WGSL source
//   - visibility: the shader stages every entry is visible to
//   - layouts: struct layouts used to size buffer bindings
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group
//   - map[int]map[int]string: variable names keyed by group and binding
//   - error: an error if a group and binding pair is declared twice
func parseBindGroupLayouts(source string, visibility wgpu.ShaderStage, layouts map[string]StructLayout) (map[int]wgpu.BindGroupLayoutDescriptor, map[int]map[int]string, error) {
	groups := make(map[int][]wgpu.BindGroupLayoutEntry)
	varNames := make(map[int]map[int]string)

	for _, m := range bindGroupDeclRegex.FindAllStringSubmatch(source, -1) {
		group, _ := strconv.Atoi(m[1])
		binding, _ := strconv.Atoi(m[2])
		addressSpace := strings.TrimSpace(m[3])
		name := m[4]
		typeName := strings.TrimSpace(m[5])

		if varNames[group] == nil {
			varNames[group] = make(map[int]string)
		}
		if prev, ok := varNames[group][binding]; ok {
			return nil, nil, fmt.Errorf("@group(%d) @binding(%d) declared by both %s and %s", group, binding, prev, name)
		}
		varNames[group][binding] = name

		entry := classifyResource(uint32(binding), visibility, addressSpace, typeName)
		if entry.Buffer.Type != wgpu.BufferBindingTypeUndefined {
			if l, ok := resolveTypeLayout(typeName, layouts); ok {
				entry.Buffer.MinBindingSize = l.size
			}
		}
		groups[group] = append(groups[group], entry)
	}

	result := make(map[int]wgpu.BindGroupLayoutDescriptor, len(groups))
	for g, entries := range groups {
		slices.SortFunc(entries, func(a, b wgpu.BindGroupLayoutEntry) int {
			return int(a.Binding) - int(b.Binding)
		})
		result[g] = wgpu.BindGroupLayoutDescriptor{Entries: entries}
	}
	return result, varNames, nil
}

// parseStructBlocks parses every struct declaration of comment-free WGSL source.
func parseStructBlocks(source string) []parsedStruct {
	matches := structBlockRegex.FindAllStringSubmatch(source, -1)
	structs := make([]parsedStruct, 0, len(matches))
	for _, m := range matches {
		structs = append(structs, parsedStruct{name: m[1], fields: parseStructFields(m[2])})
	}
	return structs
}

func parseStructFields(body string) []parsedField {
	parts := splitAtTopLevelCommas(body)
	fields := make([]parsedField, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fm := fieldRegex.FindStringSubmatch(part)
		if fm == nil {
			continue
		}
		field := parsedField{
			name:      fm[1],
			typeName:  strings.TrimSpace(fm[2]),
			location:  -1,
			isBuiltin: builtinRegex.MatchString(part),
		}
		if lm := locationRegex.FindStringSubmatch(part); lm != nil {
			field.location, _ = strconv.Atoi(lm[1])
		}
		fields = append(fields, field)
	}
	return fields
}

func isVertexInputStruct(ps parsedStruct) bool {
	if len(ps.fields) == 0 {
		return false
	}
	for _, f := range ps.fields {
		if f.isBuiltin || f.location < 0 {
			return false
		}
	}
	return true
}

func buildVertexBufferLayout(ps parsedStruct) (wgpu.VertexBufferLayout, bool) {
	attrs := make([]wgpu.VertexAttribute, 0, len(ps.fields))
	var offset uint64
	for _, f := range ps.fields {
		info, ok := wgslVertexFormatMap[f.typeName]
		if !ok {
			return wgpu.VertexBufferLayout{}, false
		}
		attrs = append(attrs, wgpu.VertexAttribute{
			Format:         info.format,
			Offset:         offset,
			ShaderLocation: uint32(f.location),
		})
		offset += info.size
	}
	return wgpu.VertexBufferLayout{
		ArrayStride: offset,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  attrs,
	}, true
}
