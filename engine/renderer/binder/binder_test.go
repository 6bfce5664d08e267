package binder

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-q3/engine/frame"
	"github.com/Carmen-Shannon/oxy-q3/engine/model"
	"github.com/Carmen-Shannon/oxy-q3/engine/stage"
	"github.com/Carmen-Shannon/oxy-q3/engine/surface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func publish(t *testing.T, p frame.Publisher, seconds float32) frame.Frame {
	t.Helper()
	f, err := p.Publish(frame.NewFrame(frame.WithFrom(p.Current()), frame.WithTime(seconds)))
	require.NoError(t, err)
	return f
}

func quadMesh() model.Mesh {
	verts, idx := model.Quad2D(0, 0, 64, 64, 0, 0, 1, 1, [4]float32{1, 1, 1, 1})
	return model.NewMesh(model.WithName("quad"), model.With2DVertices(verts), model.WithIndices(idx))
}

func TestBindFrameOncePerGeneration(t *testing.T) {
	p := frame.NewPublisher()
	b := NewBinder()

	f1 := publish(t, p, 0.5)
	ups, err := b.BindFrame(f1)
	require.NoError(t, err)
	require.Len(t, ups, 1)
	u := f1.Uniforms()
	assert.Equal(t, model.BufferIndexUniforms, ups[0].Index)
	assert.Equal(t, FrameLayer, ups[0].Layer)
	assert.Equal(t, u.Marshal(), ups[0].Data)
	assert.Equal(t, f1.Generation(), b.Generation())

	ups, err = b.BindFrame(f1)
	require.NoError(t, err)
	assert.Nil(t, ups)

	f2 := publish(t, p, 0.6)
	ups, err = b.BindFrame(f2)
	require.NoError(t, err)
	assert.Len(t, ups, 1)

	_, err = b.BindFrame(f1)
	assert.True(t, errors.Is(err, ErrStaleFrame))
	assert.Equal(t, f2.Generation(), b.Generation())
}

func TestBindRejectsUnpublishedFrame(t *testing.T) {
	b := NewBinder()
	s := surface.NewSurface(surface.WithLayer(stage.NewStage(), nil, nil))

	for range 2 {
		_, err := b.BindFrame(frame.NewFrame(frame.WithTime(1)))
		assert.True(t, errors.Is(err, ErrUnpublishedFrame))
		_, err = b.BindDraw(frame.NewFrame(), quadMesh(), s)
		assert.True(t, errors.Is(err, ErrUnpublishedFrame))
	}
	assert.Zero(t, b.Generation())

	ups, err := b.BindFrame(publish(t, frame.NewPublisher(), 1))
	require.NoError(t, err)
	assert.Len(t, ups, 1)
}

func TestBindSurfaceEmitsEveryLayer(t *testing.T) {
	p := frame.NewPublisher()
	f := publish(t, p, 2)
	s := surface.NewSurface(
		surface.WithName("two"),
		surface.WithLayer(stage.NewStage(stage.WithName("base")), nil, nil),
		surface.WithLayer(stage.NewStage(
			stage.WithName("vec"),
			stage.WithTCGenVectors([3]float32{1, 0, 0}, [3]float32{0, 0, 1}),
			stage.WithBlendMode(stage.BlendAdd),
		), nil, nil),
	)

	ups, err := NewBinder().BindSurface(f, s, model.VertexFormat{})
	require.NoError(t, err)
	require.Len(t, ups, 4)

	resolved := s.Resolve(f)
	for i, rs := range resolved {
		u := ups[2*i]
		v := ups[2*i+1]
		assert.Equal(t, model.BufferIndexStageUniforms, u.Index)
		assert.Equal(t, i, u.Layer)
		assert.Equal(t, StageUniformsBinding, u.Binding)
		assert.Equal(t, rs.Uniforms.Marshal(), u.Data)
		assert.Len(t, u.Data, 96)

		assert.Equal(t, TCGenVectorsBinding, v.Binding)
		assert.Equal(t, rs.Vectors.Marshal(), v.Data)
		assert.Len(t, v.Data, 32)
	}
}

func TestBindSurfaceCarriesVertexFlags(t *testing.T) {
	f := publish(t, frame.NewPublisher(), 1)
	s := surface.NewSurface(surface.WithLayer(stage.NewStage(stage.WithTCGen(stage.TCGenEnvMap)), nil, nil))

	tests := []struct {
		format model.VertexFormat
		want   uint32
	}{
		{model.VertexFormat{}, 0},
		{model.VertexFormat{Normals: true}, 1},
		{model.VertexFormat{LightmapCoords: true}, 2},
		{model.VertexFormat{Normals: true, LightmapCoords: true}, 3},
	}
	for _, tt := range tests {
		ups, err := NewBinder().BindSurface(f, s, tt.format)
		require.NoError(t, err)
		require.Len(t, ups, 2)
		assert.Equal(t, tt.want, binary.LittleEndian.Uint32(ups[0].Data[84:]), "%+v", tt.format)
	}
}

func TestBindSurfaceValidation(t *testing.T) {
	f := frame.NewFrame()
	s := surface.NewSurface(
		surface.WithName("env"),
		surface.WithLayer(stage.NewStage(stage.WithName("shiny"), stage.WithTCGen(stage.TCGenEnvMap)), nil, nil),
	)

	_, err := NewBinder().BindSurface(f, s, model.VertexFormat{})
	assert.NoError(t, err, "validation is off by default")

	_, err = NewBinder(WithValidation(true)).BindSurface(f, s, model.VertexFormat{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, stage.ErrEnvMapRequiresNormals))
	assert.Contains(t, err.Error(), "shiny")

	ups, err := NewBinder(WithValidation(true)).BindSurface(f, s, model.VertexFormat{Normals: true})
	require.NoError(t, err)
	assert.Len(t, ups, 2)
}

func TestBindDraw(t *testing.T) {
	p := frame.NewPublisher()
	b := NewBinder(WithValidation(true))
	mesh := quadMesh()
	s := surface.NewSurface(surface.WithLayer(stage.NewStage(), nil, nil))

	f1 := publish(t, p, 1)
	ups, err := b.BindDraw(f1, mesh, s)
	require.NoError(t, err)
	require.Len(t, ups, 3)
	assert.Equal(t, model.BufferIndexUniforms, ups[0].Index)
	assert.Equal(t, model.BufferIndexStageUniforms, ups[1].Index)

	ups, err = b.BindDraw(f1, mesh, s)
	require.NoError(t, err)
	assert.Len(t, ups, 2, "second draw of the same frame skips the frame block")

	bad := surface.NewSurface(surface.WithName("bad"), surface.WithLayer(stage.NewStage(stage.WithTCGen(stage.TCGenBad)), nil, nil))
	f2 := publish(t, p, 2)
	_, err = b.BindDraw(f2, mesh, bad)
	require.Error(t, err)
	assert.True(t, errors.Is(err, stage.ErrBadTCGen))
	assert.Equal(t, f1.Generation(), b.Generation(), "a failed draw binds nothing")

	_, err = b.BindDraw(f2, mesh, s)
	require.NoError(t, err)
	_, err = b.BindDraw(f1, mesh, s)
	assert.True(t, errors.Is(err, ErrStaleFrame))
}

func TestMeshUpload(t *testing.T) {
	mesh := quadMesh()
	u := MeshUpload(mesh)
	assert.Equal(t, model.BufferIndexTwoDVertices, u.Index)
	assert.Len(t, u.Data, 4*32)

	surf := model.NewMesh(model.WithSurfaceVertices(make([]model.GPUSurfaceVertex, 3), model.VertexFormat{Normals: true}))
	u = MeshUpload(surf)
	assert.Equal(t, model.BufferIndexMeshPositions, u.Index)
	assert.Len(t, u.Data, 3*56)
}
