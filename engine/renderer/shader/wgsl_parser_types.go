package shader

import "github.com/cogentcore/webgpu/wgpu"

// StructLayout is the host-shareable layout of a WGSL struct as computed from the
// WGSL alignment and size rules.
type StructLayout struct {
	Name   string
	Size   uint64
	Align  uint64
	Fields []FieldLayout
}

// Field returns the layout of the named field.
func (l StructLayout) Field(name string) (FieldLayout, bool) {
	for _, f := range l.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldLayout{}, false
}

// FieldLayout is one member of a StructLayout.
type FieldLayout struct {
	Name   string
	Type   string
	Offset uint64
	Size   uint64
}

// vertexFormatInfo pairs a wgpu vertex format with its packed byte size.
type vertexFormatInfo struct {
	format wgpu.VertexFormat
	size   uint64
}

// wgslTypeLayout is the size and alignment of a WGSL type.
type wgslTypeLayout struct {
	size  uint64
	align uint64
}

type parsedField struct {
	name      string
	typeName  string
	location  int
	isBuiltin bool
}

type parsedStruct struct {
	name   string
	fields []parsedField
}
