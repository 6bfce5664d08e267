package surface

import (
	"errors"
	"image"
	"testing"

	"github.com/Carmen-Shannon/oxy-q3/engine/frame"
	"github.com/Carmen-Shannon/oxy-q3/engine/model"
	"github.com/Carmen-Shannon/oxy-q3/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-q3/engine/stage"
	"github.com/Carmen-Shannon/oxy-q3/engine/texture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveKeepsAuthoredOrder(t *testing.T) {
	base := stage.NewStage(stage.WithName("base"), stage.WithTCMods(stage.Scroll(1, 0)))
	lm := stage.NewStage(stage.WithName("lightmap"), stage.WithTCGen(stage.TCGenLightmap), stage.WithLightmap(true), stage.WithBlendMode(stage.BlendFilter))
	s := NewSurface(
		WithName("textures/base_wall/concrete"),
		WithSort(3),
		WithLayer(base, nil, nil),
		WithLayer(lm, nil, texture.White),
	)
	assert.Equal(t, float32(3), s.Sort())
	assert.Equal(t, DefaultPipelineKey, s.PipelineKey())

	resolved := s.Resolve(frame.NewFrame(frame.WithTime(0.25)))
	require.Len(t, resolved, 2)
	assert.Equal(t, 0, resolved[0].Index)
	assert.Equal(t, "base", resolved[0].Layer.Stage.Name())
	assert.InDelta(t, 0.25, resolved[0].Uniforms.TCModOffset[0], 1e-6)
	assert.Equal(t, 1, resolved[1].Index)
	assert.Equal(t, stage.TCGenLightmap, resolved[1].Uniforms.TCGen)
	assert.Equal(t, int32(1), resolved[1].Uniforms.UseLightmap)
	assert.Same(t, texture.White, resolved[1].Layer.Lightmap)
}

func TestValidateReportsLayer(t *testing.T) {
	env := stage.NewStage(stage.WithTCGen(stage.TCGenEnvMap))
	s := NewSurface(WithName("chrome"), WithLayer(env, nil, nil))

	err := s.Validate(model.VertexFormat{})
	assert.True(t, errors.Is(err, stage.ErrEnvMapRequiresNormals))
	assert.ErrorContains(t, err, "layer 0")
	assert.NoError(t, s.Validate(model.VertexFormat{Normals: true}))
}

func TestValidateAnimFramesAgainstTexture(t *testing.T) {
	tex, err := texture.NewTexture(texture.WithImages(image.NewRGBA(image.Rect(0, 0, 1, 1))))
	require.NoError(t, err)
	anim := stage.NewStage(stage.WithAnimMap(10, 4))
	s := NewSurface(WithLayer(anim, tex, nil))
	assert.ErrorContains(t, s.Validate(model.VertexFormat{}), "animMap has 4 frames")
}

func TestStageProviders(t *testing.T) {
	s := NewSurface(WithLayer(stage.NewStage(), nil, nil), WithPipelineKey("ui_stage"))
	assert.Equal(t, "ui_stage", s.PipelineKey())
	assert.Nil(t, s.StageProvider(0))
	assert.Nil(t, s.StageProvider(5))

	p := bind_group_provider.NewBindGroupProvider("stage_0")
	s.SetStageProvider(0, p)
	assert.Same(t, p, s.StageProvider(0))
	assert.Panics(t, func() { s.SetStageProvider(1, p) })
}

func TestNewSurfacePanics(t *testing.T) {
	assert.Panics(t, func() { NewSurface(WithName("empty")) })
	assert.Panics(t, func() { NewSurface(WithLayer(nil, nil, nil)) })
}
