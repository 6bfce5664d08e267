package evaluator

import (
	"math/rand"
	"testing"

	"github.com/Carmen-Shannon/oxy-q3/common"
	"github.com/Carmen-Shannon/oxy-q3/engine/frame"
	"github.com/Carmen-Shannon/oxy-q3/engine/model"
	"github.com/Carmen-Shannon/oxy-q3/engine/stage"
	"github.com/Carmen-Shannon/oxy-q3/engine/texture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identityStage() stage.GPUStageUniforms {
	return stage.GPUStageUniforms{
		Color:    [4]float32{1, 1, 1, 1},
		TCModMat: stage.IdentityTCModMat,
		TCGen:    stage.TCGenIdentity,
	}
}

func identityFrame() frame.GPUFrameUniforms {
	return frame.NewFrame().Uniforms()
}

func newBinding(s stage.GPUStageUniforms) *Binding {
	return &Binding{Frame: identityFrame(), Stage: s}
}

func TestIdentityTCModPassesBaseThrough(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	f := identityFrame()
	vectors := stage.GPUTCGenVectors{SVector: [4]float32{0.3, 0.1, 0}, TVector: [4]float32{0, 0.2, 0.7}}

	for _, gen := range []stage.TCGen{stage.TCGenIdentity, stage.TCGenTexture, stage.TCGenLightmap, stage.TCGenFog, stage.TCGenVector} {
		for range 50 {
			s := identityStage()
			s.TCGen = gen
			// turbulence parameters are irrelevant while the amplitude is zero
			s.TurbPhase = r.Float32()
			s.TurbFrequency = r.Float32() * 10
			s.TurbTime = r.Float32() * 100

			in := Interpolants{
				Position:      [3]float32{r.Float32()*20 - 10, r.Float32()*20 - 10, r.Float32()*20 - 10},
				TexCoord:      [2]float32{r.Float32()*4 - 2, r.Float32()*4 - 2},
				LightmapCoord: [2]float32{r.Float32(), r.Float32()},
				Format:        model.VertexFormat{LightmapCoords: r.Intn(2) == 0},
			}
			base, ok := BaseTexCoord(&f, gen, &vectors, in)
			require.True(t, ok)
			assert.Equal(t, base, ModifyTexCoord(&s, base), "tcGen %s", gen)
		}
	}
}

func TestScaleAndOffsetScenario(t *testing.T) {
	s := identityStage()
	s.TCModMat = [4]float32{2, 0, 0, 2}
	s.TCModOffset = [2]float32{0.1, 0.1}

	res := newBinding(s).Evaluate(Interpolants{TexCoord: [2]float32{0.25, 0.25}, Color: [4]float32{1, 1, 1, 1}})
	require.Equal(t, OutcomeWritten, res.Outcome)
	assert.InDelta(t, 0.6, res.TexCoord[0], 1e-6)
	assert.InDelta(t, 0.6, res.TexCoord[1], 1e-6)
}

func TestTurbulencePeriodicAndBounded(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	for range 200 {
		s := identityStage()
		s.TurbAmplitude = r.Float32()*2 - 1
		s.TurbPhase = r.Float32()
		s.TurbFrequency = 0.25 + r.Float32()*4
		s.TurbTime = r.Float32() * 10

		d := Turbulence(&s)
		bound := s.TurbAmplitude
		if bound < 0 {
			bound = -bound
		}
		assert.LessOrEqual(t, d, bound+1e-6)
		assert.GreaterOrEqual(t, d, -bound-1e-6)

		shifted := s
		shifted.TurbTime += 1 / s.TurbFrequency
		assert.InDelta(t, d, Turbulence(&shifted), 1e-3)

		uv := ModifyTexCoord(&s, [2]float32{0.5, 0.5})
		assert.InDelta(t, 0.5+d, uv[0], 1e-6)
		assert.InDelta(t, 0.5+d, uv[1], 1e-6)
	}
}

func TestTurbulenceKnownValue(t *testing.T) {
	s := identityStage()
	s.TurbAmplitude = 0.2
	s.TurbFrequency = 1
	s.TurbTime = 0.125
	s.TurbPhase = 0.125
	// sin(2*pi*0.25) = 1
	assert.InDelta(t, 0.2, Turbulence(&s), 1e-6)
}

func TestLessThan128Scenario(t *testing.T) {
	s := identityStage()
	s.AlphaTestFunc = stage.AlphaTestLessThan128
	s.AlphaTestValue = 0.5

	s.Color[3] = 0.3
	assert.Equal(t, OutcomeWritten, newBinding(s).Evaluate(Interpolants{}).Outcome)

	s.Color[3] = 0.7
	assert.Equal(t, OutcomeDiscarded, newBinding(s).Evaluate(Interpolants{}).Outcome)
}

func TestAlphaTestFunctions(t *testing.T) {
	tests := []struct {
		fn    stage.AlphaTestFunc
		value float32
		alpha float32
		pass  bool
	}{
		{stage.AlphaTestNone, 0.5, 0, true},
		{stage.AlphaTestGreaterThanZero, 0, 0, false},
		{stage.AlphaTestGreaterThanZero, 0, 0.01, true},
		{stage.AlphaTestLessThan128, 0.5, 0.5, false},
		{stage.AlphaTestLessThan128, 0.5, 0.49, true},
		{stage.AlphaTestGreaterOrEqual128, 0.5, 0.5, true},
		{stage.AlphaTestGreaterOrEqual128, 0.5, 0.49, false},
	}
	for _, tt := range tests {
		pass, ok := AlphaTest(tt.fn, tt.value, tt.alpha)
		assert.True(t, ok)
		assert.Equal(t, tt.pass, pass, "%s value=%g alpha=%g", tt.fn, tt.value, tt.alpha)
	}
	pass, ok := AlphaTest(stage.AlphaTestFunc(9), 0.5, 1)
	assert.False(t, pass)
	assert.False(t, ok)
}

func TestEvaluationIsPure(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	tex := texture.Solid("grey", [4]float32{0.5, 0.5, 0.5, 0.6})
	for range 100 {
		s := identityStage()
		s.AlphaTestFunc = stage.AlphaTestFunc(r.Intn(4))
		s.AlphaTestValue = r.Float32()
		s.Color[3] = r.Float32()
		s.UseVertexAlpha = int32(r.Intn(2))
		b := &Binding{Frame: identityFrame(), Stage: s, Color: tex}
		in := Interpolants{Color: [4]float32{r.Float32(), r.Float32(), r.Float32(), r.Float32()}, TexCoord: [2]float32{r.Float32(), r.Float32()}}

		first := b.Evaluate(in)
		for range 3 {
			assert.Equal(t, first, b.Evaluate(in))
		}
	}
}

func TestVertexColorFlags(t *testing.T) {
	r := rand.New(rand.NewSource(4))
	s := identityStage()
	s.Color = [4]float32{0.8, 0.6, 0.4, 0.9}
	b := newBinding(s)

	want := b.Evaluate(Interpolants{Color: [4]float32{1, 1, 1, 1}}).Color
	for range 50 {
		vc := [4]float32{r.Float32(), r.Float32(), r.Float32(), 1}
		got := b.Evaluate(Interpolants{Color: vc}).Color
		assert.Equal(t, want[:3], got[:3])
	}

	s.UseVertexColor = 1
	s.UseVertexAlpha = 1
	got := newBinding(s).Evaluate(Interpolants{Color: [4]float32{0.5, 0.5, 0.5, 0.5}}).Color
	assert.InDeltaSlice(t, []float32{0.4, 0.3, 0.2, 0.45}, got[:], 1e-6)
}

func TestLightmapMultipliesRGBOnly(t *testing.T) {
	c := texture.Solid("base", [4]float32{1, 0.6, 0.2, 1})
	l := texture.Solid("lightmap", [4]float32{0.2, 0.4, 1, 0})

	s := identityStage()
	s.UseLightmap = 1
	b := &Binding{Frame: identityFrame(), Stage: s, Color: c, Lightmap: l}

	res := b.Evaluate(Interpolants{TexCoord: [2]float32{0.3, 0.3}, LightmapCoord: [2]float32{0.7, 0.7}, Format: model.VertexFormat{LightmapCoords: true}})
	require.Equal(t, OutcomeWritten, res.Outcome)
	cs := c.Sample([2]float32{}, 0)
	ls := l.Sample([2]float32{}, 0)
	assert.InDelta(t, cs[0]*ls[0], res.Color[0], 1e-6)
	assert.InDelta(t, cs[1]*ls[1], res.Color[1], 1e-6)
	assert.InDelta(t, cs[2]*ls[2], res.Color[2], 1e-6)
	assert.Equal(t, float32(1), res.Color[3])

	s.UseLightmap = 0
	b.Stage = s
	res = b.Evaluate(Interpolants{})
	assert.InDelta(t, cs[1], res.Color[1], 1e-6)
}

func TestAnimFrameSelectsLayer(t *testing.T) {
	red := texture.Solid("r", [4]float32{1, 0, 0, 1}).StagingData()
	green := texture.Solid("g", [4]float32{0, 1, 0, 1}).StagingData()
	anim, err := texture.NewTexture(texture.WithStagingData(common.TextureStagingData{
		Pixels: append(append([]byte{}, red.Pixels...), green.Pixels...),
		Width:  1,
		Height: 1,
		Layers: 2,
	}))
	require.NoError(t, err)

	s := identityStage()
	s.AnimFrame = 1
	res := (&Binding{Frame: identityFrame(), Stage: s, Color: anim}).Evaluate(Interpolants{})
	assert.Equal(t, [4]float32{0, 1, 0, 1}, res.Color)

	s.AnimFrame = 7
	res = (&Binding{Frame: identityFrame(), Stage: s, Color: anim}).Evaluate(Interpolants{})
	assert.Equal(t, [4]float32{0, 1, 0, 1}, res.Color)
}

func TestMisconfiguredStages(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *stage.GPUStageUniforms)
		in     Interpolants
	}{
		{"bad tcGen", func(s *stage.GPUStageUniforms) { s.TCGen = stage.TCGenBad }, Interpolants{}},
		{"tcGen out of range", func(s *stage.GPUStageUniforms) { s.TCGen = 12 }, Interpolants{}},
		{"envmap without normals", func(s *stage.GPUStageUniforms) { s.TCGen = stage.TCGenEnvMap }, Interpolants{}},
		{"alpha func out of range", func(s *stage.GPUStageUniforms) { s.AlphaTestFunc = -1 }, Interpolants{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := identityStage()
			tt.mutate(&s)
			res := newBinding(s).Evaluate(tt.in)
			assert.Equal(t, OutcomeMisconfigured, res.Outcome)
			assert.Equal(t, [4]float32{}, res.Color)
		})
	}
}

func TestTCGenSources(t *testing.T) {
	f := frame.NewFrame(frame.WithViewOrigin(0, 0, 5)).Uniforms()
	vectors := stage.GPUTCGenVectors{SVector: [4]float32{0.5, 0, 0, 0}, TVector: [4]float32{0, 0, 0.25, 0}}

	// the eye looks straight down the normal, so the reflection is the normal itself
	env, ok := BaseTexCoord(&f, stage.TCGenEnvMap, &vectors, Interpolants{Normal: [3]float32{0, 0, 1}, Format: model.VertexFormat{Normals: true}})
	require.True(t, ok)
	assert.InDelta(t, 0.5, env[0], 1e-6)
	assert.InDelta(t, 0, env[1], 1e-6)

	fog, ok := BaseTexCoord(&f, stage.TCGenFog, &vectors, Interpolants{Position: [3]float32{0, 0, -3}})
	require.True(t, ok)
	assert.Equal(t, [2]float32{3, 0.5}, fog)

	vec, ok := BaseTexCoord(&f, stage.TCGenVector, &vectors, Interpolants{Position: [3]float32{2, 7, 4}})
	require.True(t, ok)
	assert.Equal(t, [2]float32{1, 1}, vec)

	in := Interpolants{TexCoord: [2]float32{0.1, 0.2}, LightmapCoord: [2]float32{0.8, 0.9}}
	lm, _ := BaseTexCoord(&f, stage.TCGenLightmap, &vectors, in)
	assert.Equal(t, in.TexCoord, lm)
	in.Format.LightmapCoords = true
	lm, _ = BaseTexCoord(&f, stage.TCGenLightmap, &vectors, in)
	assert.Equal(t, in.LightmapCoord, lm)
}

func TestFogDepthFollowsView(t *testing.T) {
	f := frame.NewFrame(frame.WithLookAt([3]float32{0, 0, 10}, [3]float32{}, [3]float32{0, 1, 0})).Uniforms()
	assert.InDelta(t, 10, FogDepth(&f, [3]float32{0, 0, 0}), 1e-5)
	assert.InDelta(t, 12, FogDepth(&f, [3]float32{3, 1, -2}), 1e-5)
}

func TestFogOnScreenGeometry(t *testing.T) {
	f := frame.NewFrame(frame.WithLookAt([3]float32{0, 0, 10}, [3]float32{}, [3]float32{0, 1, 0})).Uniforms()
	var vectors stage.GPUTCGenVectors
	pos := [3]float32{320, 240, 0}

	fog, ok := BaseTexCoord(&f, stage.TCGenFog, &vectors, Interpolants{Position: pos, Screen: true})
	require.True(t, ok)
	assert.Equal(t, [2]float32{0, 0.5}, fog)

	fog, ok = BaseTexCoord(&f, stage.TCGenFog, &vectors, Interpolants{Position: pos})
	require.True(t, ok)
	assert.InDelta(t, 10, fog[0], 1e-5)

	_, ok = BaseTexCoord(&f, stage.TCGenEnvMap, &vectors, Interpolants{Position: pos, Normal: [3]float32{0, 0, 1}, Screen: true})
	assert.False(t, ok, "screen geometry carries no normals")
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "written", OutcomeWritten.String())
	assert.Equal(t, "misconfigured", OutcomeMisconfigured.String())
	assert.Equal(t, "unknown", Outcome(9).String())
}
