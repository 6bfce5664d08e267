// pre_processor.go expands @oxy: annotations in stage shader sources. Struct includes pull
// the embedded WGSL asset of the matching Go GPU type, so every uniform and vertex layout
// has one definition shared by the Go marshaling code and the shaders.
package shader

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-q3/engine/frame"
	"github.com/Carmen-Shannon/oxy-q3/engine/model"
	"github.com/Carmen-Shannon/oxy-q3/engine/stage"
)

// registryEntry pairs an embedded WGSL source with the type name a group annotation emits.
// Type is empty for include-only sources.
type registryEntry struct {
	Source string
	Type   string
}

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	structRegistry       map[AnnotationArg]registryEntry
	addressSpaceRegistry map[AnnotationArg]string

	// declarations holds the group and provider annotations of the last Process call.
	declarations []Annotation
}

// PreProcessor expands @oxy: annotations in WGSL source and collects the binding declarations.
type PreProcessor interface {
	// Process replaces every annotation in source with its WGSL expansion. Include
	// annotations become the registered source, group annotations become a variable
	// declaration and provider annotations are dropped from the output. A source is
	// included at most once per call, so shaders may include a struct the evaluation
	// library also needs.
	//
	// Parameters:
	//   - source: WGSL source containing annotations
	//
	// Returns:
	//   - string: the expanded WGSL source
	//   - error: an error if an annotation is malformed
	Process(source string) (string, error)

	// Declarations returns the group and provider annotations collected by the last
	// Process call, in source order.
	//
	// Returns:
	//   - []Annotation: the collected declarations
	Declarations() []Annotation
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor with every stage shader source registered.
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor
func NewPreProcessor() PreProcessor {
	return &preProcessor{
		structRegistry: map[AnnotationArg]registryEntry{
			AnnotationArgFrame:         {Source: frame.GPUFrameUniformsSource, Type: "FrameUniforms"},
			AnnotationArgStage:         {Source: stage.GPUStageUniformsSource, Type: "StageUniforms"},
			AnnotationArgTCGenVectors:  {Source: stage.GPUTCGenVectorsSource, Type: "TCGenVectors"},
			annotationArgVertex2D:      {Source: model.GPU2DVertexSource, Type: "Vertex2D"},
			annotationArgSurfaceVertex: {Source: model.GPUSurfaceVertexSource, Type: "SurfaceVertex"},
			annotationArgStageEval:     {Source: stageEvalSource},
		},
		addressSpaceRegistry: map[AnnotationArg]string{
			annotationArgStorageTypeUniform: "var<uniform>",
			annotationArgStorageTypeRead:    "var<storage, read>",
		},
	}
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = nil
	included := make(map[AnnotationArg]bool)

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		switch a.Type {
		case annotationTypeInclude:
			if included[a.Args[0]] {
				continue
			}
			entry, ok := p.structRegistry[a.Args[0]]
			if !ok {
				return "", fmt.Errorf("line %d: no source registered for %q", a.Line, a.Args[0])
			}
			included[a.Args[0]] = true
			out = append(out, strings.TrimRight(entry.Source, "\n"))
		case AnnotationTypeBindingGroup:
			entry := p.structRegistry[a.Args[2]]
			out = append(out, fmt.Sprintf("@group(%d) @binding(%d) %s %s: %s;",
				*a.Group, *a.Binding, p.addressSpaceRegistry[a.Args[0]], a.Args[1], entry.Type))
			p.declarations = append(p.declarations, *a)
		case AnnotationTypeProvider:
			p.declarations = append(p.declarations, *a)
		}
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}
