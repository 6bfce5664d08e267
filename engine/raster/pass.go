package raster

import (
	"github.com/Carmen-Shannon/oxy-q3/engine/evaluator"
	"github.com/Carmen-Shannon/oxy-q3/engine/model"
	"github.com/Carmen-Shannon/oxy-q3/engine/stage"
)

// pass is one stage drawn over a set of triangles. It is shared read-only by the band tasks.
type pass struct {
	fb         *Framebuffer
	tris       []triangle
	binding    *evaluator.Binding
	format     model.VertexFormat
	screen     bool
	blend      stage.BlendMode
	depthTest  bool
	depthWrite bool
}

// band evaluates rows [y0, y1). Triangles are visited in submission order.
func (p *pass) band(y0, y1 int) Stats {
	var st Stats
	fb := p.fb
	for ti := range p.tris {
		t := &p.tris[ti]
		top := max(t.minY, y0)
		bottom := min(t.maxY, y1-1)
		for y := top; y <= bottom; y++ {
			py := float32(y) + 0.5
			for x := t.minX; x <= t.maxX; x++ {
				b, ok := t.covers(float32(x)+0.5, py)
				if !ok {
					continue
				}
				z, a := t.interpolate(b)
				i := y*fb.width + x
				if p.depthTest && z > fb.depth[i] {
					st.DepthRejected++
					continue
				}

				res := p.binding.Evaluate(a.interpolants(p.format, p.screen))
				switch res.Outcome {
				case evaluator.OutcomeMisconfigured:
					st.Misconfigured++
					continue
				case evaluator.OutcomeDiscarded:
					st.Discarded++
					continue
				}

				st.Written++
				fb.setPixel(i, Blend(p.blend, res.Color, fb.Pixel(x, y)))
				if p.depthWrite {
					fb.depth[i] = z
				}
			}
		}
	}
	return st
}
