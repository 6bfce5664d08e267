package shader

import (
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// wgslPrimitiveLayoutMap holds size and alignment of the WGSL scalar, vector and matrix types
// per https://www.w3.org/TR/WGSL/#alignment-and-size.
var wgslPrimitiveLayoutMap = map[string]wgslTypeLayout{
	"f32":  {4, 4},
	"i32":  {4, 4},
	"u32":  {4, 4},
	"bool": {4, 4},

	"vec2<f32>": {8, 8},
	"vec2f":     {8, 8},
	"vec3<f32>": {12, 16},
	"vec3f":     {12, 16},
	"vec4<f32>": {16, 16},
	"vec4f":     {16, 16},

	"vec2<i32>": {8, 8},
	"vec2i":     {8, 8},
	"vec3<i32>": {12, 16},
	"vec3i":     {12, 16},
	"vec4<i32>": {16, 16},
	"vec4i":     {16, 16},

	"vec2<u32>": {8, 8},
	"vec2u":     {8, 8},
	"vec4<u32>": {16, 16},
	"vec4u":     {16, 16},

	// matCxR: C columns, each padded to the alignment of vecR.
	"mat2x2<f32>": {16, 8},
	"mat2x2f":     {16, 8},
	"mat3x3<f32>": {48, 16},
	"mat3x3f":     {48, 16},
	"mat4x4<f32>": {64, 16},
	"mat4x4f":     {64, 16},
}

// roundUpAlign rounds value up to a multiple of the power-of-two alignment.
func roundUpAlign(alignment, value uint64) uint64 {
	if alignment == 0 {
		return value
	}
	return (value + alignment - 1) &^ (alignment - 1)
}

// resolveTypeLayout resolves a WGSL type against the primitives and already computed
// struct layouts. Fixed-size arrays resolve to count times the element stride and
// runtime-sized arrays to a single stride.
//
// Parameters:
//   - typeName: the WGSL type, e.g. "f32", "StageUniforms" or "array<vec4<f32>, 4>"
//   - structs: struct layouts computed so far
//
// Returns:
//   - wgslTypeLayout: the resolved layout
//   - bool: false if the type is unknown
func resolveTypeLayout(typeName string, structs map[string]StructLayout) (wgslTypeLayout, bool) {
	if l, ok := wgslPrimitiveLayoutMap[typeName]; ok {
		return l, true
	}
	if s, ok := structs[typeName]; ok {
		return wgslTypeLayout{s.Size, s.Align}, true
	}

	inner, ok := strings.CutPrefix(typeName, "array<")
	if !ok || !strings.HasSuffix(inner, ">") {
		return wgslTypeLayout{}, false
	}
	inner = strings.TrimSuffix(inner, ">")
	elemType, countStr, fixed := cutLastTopLevelComma(inner)
	elem, ok := resolveTypeLayout(strings.TrimSpace(elemType), structs)
	if !ok {
		return wgslTypeLayout{}, false
	}
	stride := roundUpAlign(elem.align, elem.size)
	if !fixed {
		return wgslTypeLayout{stride, elem.align}, true
	}
	count, err := strconv.ParseUint(strings.TrimSpace(countStr), 10, 64)
	if err != nil {
		return wgslTypeLayout{}, false
	}
	return wgslTypeLayout{count * stride, elem.align}, true
}

// computeStructLayout places each field at the next offset aligned for its type and rounds
// the struct size up to its largest field alignment. Builtin fields are skipped.
//
// Parameters:
//   - ps: the parsed struct
//   - structs: struct layouts computed so far
//
// Returns:
//   - StructLayout: the computed layout
//   - bool: false if a field type is not yet resolvable
func computeStructLayout(ps parsedStruct, structs map[string]StructLayout) (StructLayout, bool) {
	layout := StructLayout{Name: ps.name, Align: 1}
	var offset uint64
	for _, f := range ps.fields {
		if f.isBuiltin {
			continue
		}
		fl, ok := resolveTypeLayout(f.typeName, structs)
		if !ok {
			return StructLayout{}, false
		}
		offset = roundUpAlign(fl.align, offset)
		layout.Fields = append(layout.Fields, FieldLayout{Name: f.name, Type: f.typeName, Offset: offset, Size: fl.size})
		offset += fl.size
		layout.Align = max(layout.Align, fl.align)
	}
	layout.Size = roundUpAlign(layout.Align, offset)
	return layout, true
}

// computeStructLayouts resolves every struct, iterating until nested struct fields resolve.
// Structs that never resolve are left out of the result.
func computeStructLayouts(structs []parsedStruct) map[string]StructLayout {
	resolved := make(map[string]StructLayout, len(structs))
	remaining := structs
	for len(remaining) > 0 {
		var next []parsedStruct
		for _, ps := range remaining {
			if l, ok := computeStructLayout(ps, resolved); ok {
				resolved[ps.name] = l
			} else {
				next = append(next, ps)
			}
		}
		if len(next) == len(remaining) {
			break
		}
		remaining = next
	}
	return resolved
}

// classifyResource builds the layout entry of one binding from its address space and type.
//
// Parameters:
//   - binding: the @binding index
//   - visibility: the shader stages the entry is visible to
//   - addressSpace: "uniform", "storage, read" or empty for textures and samplers
//   - typeName: the declared WGSL type
//
// Returns:
//   - wgpu.BindGroupLayoutEntry: the layout entry
func classifyResource(binding uint32, visibility wgpu.ShaderStage, addressSpace, typeName string) wgpu.BindGroupLayoutEntry {
	entry := wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: visibility,
	}

	switch {
	case addressSpace == "uniform":
		entry.Buffer.Type = wgpu.BufferBindingTypeUniform
	case strings.HasPrefix(addressSpace, "storage"):
		entry.Buffer.Type = wgpu.BufferBindingTypeReadOnlyStorage
		if strings.Contains(addressSpace, "read_write") {
			entry.Buffer.Type = wgpu.BufferBindingTypeStorage
		}
	case typeName == "sampler":
		entry.Sampler.Type = wgpu.SamplerBindingTypeFiltering
	case strings.HasPrefix(typeName, "texture_"):
		base, param := splitTypeParams(typeName)
		entry.Texture.ViewDimension = wgslTextureViewMap[base]
		entry.Texture.SampleType = wgslSampleTypeMap[param]
	}
	return entry
}

// splitTypeParams splits "texture_2d<f32>" into ("texture_2d", "f32").
func splitTypeParams(typeName string) (base string, params string) {
	before, after, ok := strings.Cut(typeName, "<")
	if !ok {
		return typeName, ""
	}
	return before, strings.TrimSpace(strings.TrimSuffix(after, ">"))
}

// cutLastTopLevelComma splits "T, N" at the last comma outside angle brackets.
func cutLastTopLevelComma(s string) (before, after string, found bool) {
	parts := splitAtTopLevelCommas(s)
	if len(parts) < 2 {
		return s, "", false
	}
	return strings.Join(parts[:len(parts)-1], ","), parts[len(parts)-1], true
}

// stripComments removes line comments and nested block comments from WGSL source.
func stripComments(source string) string {
	return stripLineComments(stripBlockComments(source))
}

func stripLineComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	for line := range strings.SplitSeq(source, "\n") {
		if idx := strings.Index(line, "//"); idx >= 0 {
			line = line[:idx]
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func stripBlockComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	for i := 0; i < len(source); i++ {
		if i+1 < len(source) {
			switch {
			case source[i] == '/' && source[i+1] == '*':
				depth++
				i++
				continue
			case source[i] == '*' && source[i+1] == '/' && depth > 0:
				depth--
				i++
				continue
			}
		}
		if depth == 0 {
			sb.WriteByte(source[i])
		}
	}
	return sb.String()
}

// splitAtTopLevelCommas splits s at commas outside angle brackets, so "array<T, 4>" stays whole.
func splitAtTopLevelCommas(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i := range len(s) {
		switch s[i] {
		case '<':
			depth++
		case '>':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}
