package shader

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-q3/common"
	"github.com/gogpu/naga"
	"github.com/gogpu/naga/glsl"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/msl"
)

// lower parses, lowers and validates WGSL into naga IR.
func lower(key, source string) (*ir.Module, error) {
	ast, err := naga.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("shader %s: parse: %w", key, err)
	}
	module, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return nil, fmt.Errorf("shader %s: lower: %w", key, err)
	}
	verrs, err := naga.Validate(module)
	if err != nil {
		return nil, fmt.Errorf("shader %s: validate: %w", key, err)
	}
	if len(verrs) > 0 {
		errs := make([]error, len(verrs))
		for i := range verrs {
			errs[i] = &verrs[i]
		}
		return nil, fmt.Errorf("shader %s: validate: %w", key, errors.Join(errs...))
	}
	return module, nil
}

// Compile compiles the processed source of s to SPIR-V.
//
// Parameters:
//   - s: the shader
//
// Returns:
//   - []byte: the SPIR-V binary
//   - error: an error if the source does not parse or validate
func Compile(s Shader) ([]byte, error) {
	spirv, err := naga.Compile(s.Source())
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", s.Key(), err)
	}
	common.Logger().Debug("shader compiled", "key", s.Key(), "format", "spirv", "bytes", len(spirv))
	return spirv, nil
}

// TranslateMSL translates the processed source of s to Metal Shading Language.
// Every entry point is emitted into one translation unit.
//
// Parameters:
//   - s: the shader
//
// Returns:
//   - string: the MSL source
//   - error: an error if the source does not validate or translate
func TranslateMSL(s Shader) (string, error) {
	module, err := lower(s.Key(), s.Source())
	if err != nil {
		return "", err
	}
	out, _, err := msl.Compile(module, msl.DefaultOptions())
	if err != nil {
		return "", fmt.Errorf("shader %s: msl: %w", s.Key(), err)
	}
	common.Logger().Debug("shader translated", "key", s.Key(), "format", "msl", "bytes", len(out))
	return out, nil
}

// TranslateGLSL translates one entry point of s to GLSL 3.30 core.
//
// Parameters:
//   - s: the shader
//   - entryPoint: the entry point to emit, e.g. s.FragmentEntryPoint()
//
// Returns:
//   - string: the GLSL source
//   - error: an error if the source does not validate or translate
func TranslateGLSL(s Shader, entryPoint string) (string, error) {
	module, err := lower(s.Key(), s.Source())
	if err != nil {
		return "", err
	}
	opts := glsl.DefaultOptions()
	opts.LangVersion = glsl.Version330
	opts.EntryPoint = entryPoint
	out, _, err := glsl.Compile(module, opts)
	if err != nil {
		return "", fmt.Errorf("shader %s: glsl %s: %w", s.Key(), entryPoint, err)
	}
	common.Logger().Debug("shader translated", "key", s.Key(), "format", "glsl", "entry", entryPoint, "bytes", len(out))
	return out, nil
}
