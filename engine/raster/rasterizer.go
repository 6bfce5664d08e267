package raster

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-q3/common"
	"github.com/Carmen-Shannon/oxy-q3/engine/evaluator"
	"github.com/Carmen-Shannon/oxy-q3/engine/frame"
	"github.com/Carmen-Shannon/oxy-q3/engine/model"
	"github.com/Carmen-Shannon/oxy-q3/engine/surface"
)

// ErrMisconfiguredStage is returned by Draw when validation is enabled and a stage of the
// surface fails stage validation. Nothing is drawn.
var ErrMisconfiguredStage = errors.New("misconfigured stage")

// Stats counts pixel outcomes of a draw, summed over every stage.
type Stats struct {
	Written       int
	Discarded     int
	Misconfigured int
	// DepthRejected counts pixels hidden behind earlier geometry; they are never evaluated.
	DepthRejected int
}

func (s *Stats) add(o Stats) {
	s.Written += o.Written
	s.Discarded += o.Discarded
	s.Misconfigured += o.Misconfigured
	s.DepthRejected += o.DepthRejected
}

// rasterizer is the implementation of the Rasterizer interface.
type rasterizer struct {
	mu *sync.Mutex

	width      int
	height     int
	workers    int
	queueSize  int
	bandHeight int
	validate   bool
	clearColor [4]float32

	fb   *Framebuffer
	pool worker.DynamicWorkerPool
}

// Rasterizer defines the interface for the headless CPU execution of surface stages.
// Each draw evaluates every stage of a surface over the covered pixels, in authored order:
// stage evaluation, alpha test, blend, then depth write. Pixels are split into horizontal
// bands evaluated in parallel on a worker pool; a band owns its rows, so the result does not
// depend on the worker count.
type Rasterizer interface {
	// Framebuffer retrieves the render target.
	//
	// Returns:
	//   - *Framebuffer: the framebuffer draws write into
	Framebuffer() *Framebuffer

	// Clear resets the framebuffer to the configured clear color and the far depth.
	Clear()

	// Draw rasterizes a mesh through every stage of a surface with the given frame.
	// 2D meshes are mapped from the 640x480 virtual screen and ignore depth; surface meshes are
	// projected with the frame matrices, clipped against the near plane and depth tested.
	//
	// Parameters:
	//   - f: the published frame; its block is read once for the whole draw
	//   - m: the geometry
	//   - s: the surface whose stages are drawn
	//
	// Returns:
	//   - Stats: pixel outcomes summed over every stage
	//   - error: ErrMisconfiguredStage when validation is enabled and a stage is invalid
	Draw(f frame.Frame, m model.Mesh, s surface.Surface) (Stats, error)

	// Release stops the worker pool. The rasterizer must not be used afterwards.
	Release()
}

var _ Rasterizer = &rasterizer{}

// NewRasterizer creates a new Rasterizer with the given options.
//
// Parameters:
//   - options: functional options to configure the rasterizer
//
// Returns:
//   - Rasterizer: the newly created rasterizer
func NewRasterizer(options ...RasterizerBuilderOption) Rasterizer {
	r := &rasterizer{
		mu:         &sync.Mutex{},
		width:      model.VirtualScreenWidth,
		height:     model.VirtualScreenHeight,
		workers:    defaultWorkers(),
		queueSize:  256,
		bandHeight: 16,
	}

	for _, opt := range options {
		opt(r)
	}

	r.fb = NewFramebuffer(r.width, r.height)
	r.fb.Clear(r.clearColor)
	r.pool = worker.NewDynamicWorkerPool(r.workers, r.queueSize, defaultIdleTimeout)

	common.Logger().Debug("rasterizer created",
		"width", r.width, "height", r.height, "workers", r.workers, "bandHeight", r.bandHeight)
	return r
}

func (r *rasterizer) Framebuffer() *Framebuffer {
	return r.fb
}

func (r *rasterizer) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fb.Clear(r.clearColor)
}

func (r *rasterizer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pool != nil {
		r.pool.Stop()
		r.pool = nil
	}
}

func (r *rasterizer) Draw(f frame.Frame, m model.Mesh, s surface.Surface) (Stats, error) {
	if f == nil || m == nil || s == nil {
		panic("raster draw requires a frame, a mesh and a surface")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pool == nil {
		return Stats{}, fmt.Errorf("draw %q: rasterizer released", s.Name())
	}

	if r.validate {
		if err := s.Validate(m.Format()); err != nil {
			common.Logger().Warn("surface failed validation", "surface", s.Name(), "mesh", m.Name(), "error", err)
			return Stats{}, fmt.Errorf("draw %q: %w: %w", s.Name(), ErrMisconfiguredStage, err)
		}
	}

	var tris []triangle
	depthTest := m.Kind() == model.MeshKindSurface
	if depthTest {
		tris = r.setupSurface(f, m)
	} else {
		tris = r.setup2D(m)
	}

	var total Stats
	format := m.Format()
	block := f.Uniforms()
	for _, rs := range s.Resolve(f) {
		binding := evaluator.Binding{
			Frame:    block,
			Stage:    rs.Uniforms,
			Vectors:  rs.Vectors,
			Color:    rs.Layer.Color,
			Lightmap: rs.Layer.Lightmap,
		}
		binding.Stage.VertexFlags = format.Flags()
		p := pass{
			fb:         r.fb,
			tris:       tris,
			binding:    &binding,
			format:     format,
			screen:     !depthTest,
			blend:      rs.Layer.Stage.BlendMode(),
			depthTest:  depthTest,
			depthWrite: depthTest && rs.Layer.Stage.DepthWrite(),
		}
		total.add(r.run(&p))
	}

	if total.Misconfigured > 0 {
		common.Logger().Warn("misconfigured pixels discarded",
			"surface", s.Name(), "mesh", m.Name(), "count", total.Misconfigured)
	}
	common.Logger().Debug("draw complete",
		"surface", s.Name(), "mesh", m.Name(), "triangles", len(tris),
		"written", total.Written, "discarded", total.Discarded, "generation", f.Generation())
	return total, nil
}

// run fans the bands of one stage out to the pool and joins them with a barrier.
func (r *rasterizer) run(p *pass) Stats {
	bands := (r.height + r.bandHeight - 1) / r.bandHeight
	results := make([]Stats, bands)

	var wg sync.WaitGroup
	for b := range bands {
		y0 := b * r.bandHeight
		y1 := min(y0+r.bandHeight, r.height)
		wg.Add(1)
		r.pool.SubmitTask(worker.Task{
			ID: b,
			Do: func() (any, error) {
				defer wg.Done()
				results[b] = p.band(y0, y1)
				return nil, nil
			},
		})
	}
	wg.Wait()

	var total Stats
	for _, s := range results {
		total.add(s)
	}
	return total
}

func (r *rasterizer) setup2D(m model.Mesh) []triangle {
	verts := m.Vertices2D()
	idx := m.Indices()
	sx := float32(r.width) / model.VirtualScreenWidth
	sy := float32(r.height) / model.VirtualScreenHeight

	screen := make([]screenVertex, len(verts))
	for i, v := range verts {
		screen[i] = screenVertex{
			x:    v.Position[0] * sx,
			y:    v.Position[1] * sy,
			invW: 1,
			a:    pack2DVertex(v),
		}
	}

	tris := make([]triangle, 0, len(idx)/3)
	for i := 0; i+2 < len(idx); i += 3 {
		if t, ok := newTriangle(screen[idx[i]], screen[idx[i+1]], screen[idx[i+2]], r.width, r.height); ok {
			tris = append(tris, t)
		}
	}
	return tris
}

func (r *rasterizer) setupSurface(f frame.Frame, m model.Mesh) []triangle {
	verts := m.SurfaceVertices()
	idx := m.Indices()
	mvp := f.ModelViewProjection()

	clip := make([]clipVertex, len(verts))
	for i, v := range verts {
		clip[i] = clipVertex{
			clip: common.TransformPoint(mvp[:], v.Position),
			a:    packSurfaceVertex(v),
		}
	}

	tris := make([]triangle, 0, len(idx)/3)
	for i := 0; i+2 < len(idx); i += 3 {
		poly := clipNear([3]clipVertex{clip[idx[i]], clip[idx[i+1]], clip[idx[i+2]]})
		if len(poly) < 3 {
			continue
		}
		v0 := toScreen(poly[0], r.width, r.height)
		for j := 1; j+1 < len(poly); j++ {
			v1 := toScreen(poly[j], r.width, r.height)
			v2 := toScreen(poly[j+1], r.width, r.height)
			if t, ok := newTriangle(v0, v1, v2, r.width, r.height); ok {
				tris = append(tris, t)
			}
		}
	}
	return tris
}
