package binder

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-q3/common"
	"github.com/Carmen-Shannon/oxy-q3/engine/frame"
	"github.com/Carmen-Shannon/oxy-q3/engine/model"
	"github.com/Carmen-Shannon/oxy-q3/engine/stage"
	"github.com/Carmen-Shannon/oxy-q3/engine/surface"
)

// ErrStaleFrame is returned when a frame older than the last bound generation is bound.
var ErrStaleFrame = errors.New("stale frame generation")

// ErrUnpublishedFrame is returned when a frame that never went through a Publisher is bound.
// Such frames carry generation zero and cannot be told apart.
var ErrUnpublishedFrame = errors.New("unpublished frame")

// Binding slots inside the stage bind group.
const (
	StageUniformsBinding = 0
	TCGenVectorsBinding  = 1
)

// FrameLayer marks an Upload that does not belong to a surface layer.
const FrameLayer = -1

// Upload is one marshaled buffer write. Index names the buffer slot, Layer the surface layer
// the data belongs to (FrameLayer for frame and mesh data) and Binding the entry within the
// bind group of that slot.
type Upload struct {
	Index   model.BufferIndex
	Layer   int
	Binding int
	Data    []byte
}

// binder is the implementation of the Binder interface.
type binder struct {
	mu *sync.Mutex

	validate   bool
	generation uint64
	bound      bool
}

// Binder defines the interface for turning frames and surfaces into GPU buffer writes.
//
// The frame block is fenced by generation: it is emitted once when a new frame is bound and
// never again for the same frame, so every stage draw of a frame reads the same bytes.
// Stage blocks are emitted for every draw. With validation enabled each resolved stage block
// is checked against the mesh vertex format before anything is emitted.
type Binder interface {
	// BindFrame emits the frame block if f is newer than the last bound frame.
	//
	// Parameters:
	//   - f: the published frame
	//
	// Returns:
	//   - []Upload: one Upload at BufferIndexUniforms, or nil if f is already bound
	//   - error: ErrStaleFrame if f is older than the last bound frame, ErrUnpublishedFrame if f
	//     was never published
	BindFrame(f frame.Frame) ([]Upload, error)

	// BindSurface resolves every layer of s for frame f and emits its stage uniforms and tcGen
	// vectors at BufferIndexStageUniforms.
	//
	// Parameters:
	//   - f: the frame the stages are resolved for
	//   - s: the surface
	//   - format: the vertex format of the mesh the surface is drawn with
	//
	// Returns:
	//   - []Upload: two Uploads per layer in authored order
	//   - error: a joined validation error when validation is enabled and a block is invalid
	BindSurface(f frame.Frame, s surface.Surface, format model.VertexFormat) ([]Upload, error)

	// BindDraw combines BindFrame and BindSurface for one draw. Nothing is emitted if either fails.
	//
	// Parameters:
	//   - f: the published frame
	//   - m: the mesh drawn
	//   - s: the surface drawn
	//
	// Returns:
	//   - []Upload: the frame Upload (if new) followed by the stage Uploads
	//   - error: an error if the frame is stale or unpublished, or a stage fails validation
	BindDraw(f frame.Frame, m model.Mesh, s surface.Surface) ([]Upload, error)

	// Generation returns the generation of the last bound frame, 0 if none.
	//
	// Returns:
	//   - uint64: the generation
	Generation() uint64
}

var _ Binder = &binder{}

// NewBinder creates a new Binder with the given options.
//
// Parameters:
//   - options: functional options to configure the binder
//
// Returns:
//   - Binder: the newly created binder
func NewBinder(options ...BinderBuilderOption) Binder {
	b := &binder{
		mu: &sync.Mutex{},
	}
	for _, opt := range options {
		opt(b)
	}
	return b
}

// MeshUpload returns the vertex data of a mesh at the slot its kind is bound to.
//
// Parameters:
//   - m: the mesh
//
// Returns:
//   - Upload: the vertex Upload
func MeshUpload(m model.Mesh) Upload {
	idx := model.BufferIndexMeshPositions
	if m.Kind() == model.MeshKind2D {
		idx = model.BufferIndexTwoDVertices
	}
	return Upload{Index: idx, Layer: FrameLayer, Data: m.VertexData()}
}

func (b *binder) Generation() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.generation
}

func (b *binder) BindFrame(f frame.Frame) ([]Upload, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bindFrame(f)
}

func (b *binder) bindFrame(f frame.Frame) ([]Upload, error) {
	gen := f.Generation()
	if gen == 0 {
		return nil, ErrUnpublishedFrame
	}
	if b.bound {
		if gen == b.generation {
			return nil, nil
		}
		if gen < b.generation {
			return nil, fmt.Errorf("bind frame %d after %d: %w", gen, b.generation, ErrStaleFrame)
		}
	}

	u := f.Uniforms()
	b.generation = gen
	b.bound = true
	common.Logger().Debug("frame bound", "generation", gen, "time", f.Time())
	return []Upload{{
		Index:   model.BufferIndexUniforms,
		Layer:   FrameLayer,
		Binding: 0,
		Data:    u.Marshal(),
	}}, nil
}

func (b *binder) BindSurface(f frame.Frame, s surface.Surface, format model.VertexFormat) ([]Upload, error) {
	resolved := s.Resolve(f)

	if b.validate {
		var errs []error
		for _, rs := range resolved {
			if err := stage.Validate(rs.Uniforms, format); err != nil {
				errs = append(errs, fmt.Errorf("layer %d (%s): %w", rs.Index, rs.Layer.Stage.Name(), err))
			}
		}
		if len(errs) > 0 {
			err := fmt.Errorf("surface %q: %w", s.Name(), errors.Join(errs...))
			common.Logger().Warn("stage validation failed", "surface", s.Name(), "error", err)
			return nil, err
		}
	}

	uploads := make([]Upload, 0, 2*len(resolved))
	for _, rs := range resolved {
		u := rs.Uniforms
		u.VertexFlags = format.Flags()
		uploads = append(uploads,
			Upload{
				Index:   model.BufferIndexStageUniforms,
				Layer:   rs.Index,
				Binding: StageUniformsBinding,
				Data:    u.Marshal(),
			},
			Upload{
				Index:   model.BufferIndexStageUniforms,
				Layer:   rs.Index,
				Binding: TCGenVectorsBinding,
				Data:    rs.Vectors.Marshal(),
			},
		)
	}
	return uploads, nil
}

func (b *binder) BindDraw(f frame.Frame, m model.Mesh, s surface.Surface) ([]Upload, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if f.Generation() == 0 {
		return nil, fmt.Errorf("bind %q: %w", s.Name(), ErrUnpublishedFrame)
	}
	if b.bound && f.Generation() < b.generation {
		return nil, fmt.Errorf("bind frame %d after %d: %w", f.Generation(), b.generation, ErrStaleFrame)
	}

	stages, err := b.BindSurface(f, s, m.Format())
	if err != nil {
		return nil, fmt.Errorf("bind %q with mesh %q: %w", s.Name(), m.Name(), err)
	}

	frameUploads, err := b.bindFrame(f)
	if err != nil {
		return nil, err
	}
	return append(frameUploads, stages...), nil
}
