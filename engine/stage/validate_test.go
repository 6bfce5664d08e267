package stage

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-q3/engine/model"
	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
)

func validBlock() GPUStageUniforms {
	return NewStage().UniformsAt(0)
}

func TestValidateAcceptsDefaults(t *testing.T) {
	assert.NoError(t, Validate(validBlock(), model.VertexFormat{}))
}

func TestValidateConfigurationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(u *GPUStageUniforms)
		format model.VertexFormat
		want   error
	}{
		{"bad tcGen", func(u *GPUStageUniforms) { u.TCGen = TCGenBad }, model.VertexFormat{}, ErrBadTCGen},
		{"tcGen out of range", func(u *GPUStageUniforms) { u.TCGen = 7 }, model.VertexFormat{}, ErrTCGenOutOfRange},
		{"negative tcGen", func(u *GPUStageUniforms) { u.TCGen = -1 }, model.VertexFormat{}, ErrTCGenOutOfRange},
		{"envmap without normals", func(u *GPUStageUniforms) { u.TCGen = TCGenEnvMap }, model.VertexFormat{}, ErrEnvMapRequiresNormals},
		{"alpha func out of range", func(u *GPUStageUniforms) { u.AlphaTestFunc = 4 }, model.VertexFormat{}, ErrAlphaTestFuncOutOfRange},
		{"vertex color flag", func(u *GPUStageUniforms) { u.UseVertexColor = 2 }, model.VertexFormat{}, ErrInvalidFlag},
		{"lightmap flag", func(u *GPUStageUniforms) { u.UseLightmap = -1 }, model.VertexFormat{}, ErrInvalidFlag},
		{"negative anim frame", func(u *GPUStageUniforms) { u.AnimFrame = -3 }, model.VertexFormat{}, ErrNegativeAnimFrame},
		{"nan color", func(u *GPUStageUniforms) { u.Color[1] = math32.NaN() }, model.VertexFormat{}, ErrNonFinite},
		{"inf turb time", func(u *GPUStageUniforms) { u.TurbTime = math32.Inf(1) }, model.VertexFormat{}, ErrNonFinite},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := validBlock()
			tt.mutate(&u)
			err := Validate(u, tt.format)
			assert.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestValidateEnvMapWithNormals(t *testing.T) {
	u := validBlock()
	u.TCGen = TCGenEnvMap
	assert.NoError(t, Validate(u, model.VertexFormat{Normals: true}))
}

func TestValidateLightmapWithoutCoordsIsAllowed(t *testing.T) {
	u := validBlock()
	u.TCGen = TCGenLightmap
	u.UseLightmap = 1
	assert.NoError(t, Validate(u, model.VertexFormat{}))
}

func TestValidateJoinsEveryError(t *testing.T) {
	u := validBlock()
	u.TCGen = TCGenBad
	u.AnimFrame = -1
	u.UseVertexAlpha = 5
	err := Validate(u, model.VertexFormat{})
	assert.True(t, errors.Is(err, ErrBadTCGen))
	assert.True(t, errors.Is(err, ErrNegativeAnimFrame))
	assert.True(t, errors.Is(err, ErrInvalidFlag))
}

func TestStageValidate(t *testing.T) {
	s := NewStage(WithName("sky"), WithTCGen(TCGenEnvMap), WithBlendMode(BlendMode(9)))
	err := s.Validate(model.VertexFormat{})
	assert.True(t, errors.Is(err, ErrEnvMapRequiresNormals))
	assert.True(t, errors.Is(err, ErrBlendModeOutOfRange))
	assert.Contains(t, err.Error(), `stage "sky"`)
}
