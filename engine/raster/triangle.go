package raster

import (
	"github.com/Carmen-Shannon/oxy-q3/common"
	"github.com/Carmen-Shannon/oxy-q3/engine/evaluator"
	"github.com/Carmen-Shannon/oxy-q3/engine/model"
)

// attribute slots of a packed vertex
const (
	attrPos      = 0
	attrTexCoord = 3
	attrColor    = 5
	attrNormal   = 9
	attrLightmap = 12
	attrCount    = 14
)

type attrs [attrCount]float32

// clipVertex is a vertex after the model-view-projection transform, before the divide.
type clipVertex struct {
	clip [4]float32
	a    attrs
}

// screenVertex is a vertex in framebuffer pixels. invW is 1/w for perspective-correct
// interpolation and z the depth in [0, 1].
type screenVertex struct {
	x, y, z float32
	invW    float32
	a       attrs
}

type triangle struct {
	v [3]screenVertex
	// bounding box in pixels, inclusive
	minX, minY, maxX, maxY int
}

func packSurfaceVertex(v model.GPUSurfaceVertex) attrs {
	var a attrs
	copy(a[attrPos:], v.Position[:])
	copy(a[attrTexCoord:], v.TexCoord[:])
	copy(a[attrColor:], v.Color[:])
	copy(a[attrNormal:], v.Normal[:])
	copy(a[attrLightmap:], v.LightmapCoord[:])
	return a
}

func pack2DVertex(v model.GPU2DVertex) attrs {
	var a attrs
	a[attrPos] = v.Position[0]
	a[attrPos+1] = v.Position[1]
	copy(a[attrTexCoord:], v.TexCoord[:])
	copy(a[attrColor:], v.Color[:])
	return a
}

func (a *attrs) interpolants(format model.VertexFormat, screen bool) evaluator.Interpolants {
	var in evaluator.Interpolants
	copy(in.Position[:], a[attrPos:attrPos+3])
	copy(in.TexCoord[:], a[attrTexCoord:attrTexCoord+2])
	copy(in.Color[:], a[attrColor:attrColor+4])
	copy(in.Normal[:], a[attrNormal:attrNormal+3])
	copy(in.LightmapCoord[:], a[attrLightmap:attrLightmap+2])
	in.Format = format
	in.Screen = screen
	return in
}

func lerpClip(p, q clipVertex, t float32) clipVertex {
	var out clipVertex
	for i := range 4 {
		out.clip[i] = common.Lerp(p.clip[i], q.clip[i], t)
	}
	for i := range attrCount {
		out.a[i] = common.Lerp(p.a[i], q.a[i], t)
	}
	return out
}

// clipPolygon keeps the part of poly where dist >= 0 (Sutherland-Hodgman).
func clipPolygon(poly []clipVertex, dist func(clipVertex) float32) []clipVertex {
	if len(poly) == 0 {
		return nil
	}
	out := make([]clipVertex, 0, len(poly)+1)
	prev := poly[len(poly)-1]
	prevD := dist(prev)
	for _, cur := range poly {
		curD := dist(cur)
		if curD >= 0 {
			if prevD < 0 {
				out = append(out, lerpClip(prev, cur, prevD/(prevD-curD)))
			}
			out = append(out, cur)
		} else if prevD >= 0 {
			out = append(out, lerpClip(prev, cur, prevD/(prevD-curD)))
		}
		prev, prevD = cur, curD
	}
	return out
}

const minClipW = 1e-5

// clipNear clips a clip-space triangle against the near plane (z >= 0) and w > 0.
func clipNear(tri [3]clipVertex) []clipVertex {
	poly := clipPolygon(tri[:], func(v clipVertex) float32 { return v.clip[2] })
	return clipPolygon(poly, func(v clipVertex) float32 { return v.clip[3] - minClipW })
}

// toScreen performs the perspective divide and viewport transform. Clip y points up,
// framebuffer rows go down.
func toScreen(v clipVertex, width, height int) screenVertex {
	invW := 1 / v.clip[3]
	ndcX := v.clip[0] * invW
	ndcY := v.clip[1] * invW
	return screenVertex{
		x:    (ndcX*0.5 + 0.5) * float32(width),
		y:    (0.5 - ndcY*0.5) * float32(height),
		z:    v.clip[2] * invW,
		invW: invW,
		a:    v.a,
	}
}

// edge is the signed distance-like value of (px, py) from the directed edge a->b. It is
// evaluated from the endpoint with the smaller (y, x) so that edge(a, b) == -edge(b, a)
// bit for bit and two triangles sharing an edge never both cover a pixel.
func edge(a, b screenVertex, px, py float32) float32 {
	if b.y < a.y || (b.y == a.y && b.x < a.x) {
		return -edgeFrom(b, a, px, py)
	}
	return edgeFrom(a, b, px, py)
}

func edgeFrom(a, b screenVertex, px, py float32) float32 {
	return (b.x-a.x)*(py-a.y) - (b.y-a.y)*(px-a.x)
}

// newTriangle orders the vertices so the signed area is positive and computes the pixel
// bounding box clamped to the framebuffer. It reports false for degenerate or off-screen
// triangles.
func newTriangle(v0, v1, v2 screenVertex, width, height int) (triangle, bool) {
	area := edge(v0, v1, v2.x, v2.y)
	if area == 0 {
		return triangle{}, false
	}
	if area < 0 {
		v1, v2 = v2, v1
	}
	t := triangle{v: [3]screenVertex{v0, v1, v2}}
	minX := min(v0.x, v1.x, v2.x)
	maxX := max(v0.x, v1.x, v2.x)
	minY := min(v0.y, v1.y, v2.y)
	maxY := max(v0.y, v1.y, v2.y)
	t.minX = max(int(minX), 0)
	t.minY = max(int(minY), 0)
	t.maxX = min(int(maxX), width-1)
	t.maxY = min(int(maxY), height-1)
	if t.minX > t.maxX || t.minY > t.maxY || maxX < 0 || maxY < 0 {
		return triangle{}, false
	}
	return t, true
}

// owns reports whether a pixel center exactly on the edge a->b belongs to this triangle.
// Of two triangles sharing an edge exactly one owns it, so shared edges are drawn once.
func owns(a, b screenVertex) bool {
	dy := b.y - a.y
	return dy > 0 || (dy == 0 && b.x-a.x > 0)
}

// covers computes the barycentric weights of the pixel center (px, py), reporting false
// when the center lies outside the triangle.
func (t *triangle) covers(px, py float32) ([3]float32, bool) {
	v := &t.v
	w0 := edge(v[1], v[2], px, py)
	w1 := edge(v[2], v[0], px, py)
	w2 := edge(v[0], v[1], px, py)
	if w0 < 0 || w1 < 0 || w2 < 0 {
		return [3]float32{}, false
	}
	if (w0 == 0 && !owns(v[1], v[2])) || (w1 == 0 && !owns(v[2], v[0])) || (w2 == 0 && !owns(v[0], v[1])) {
		return [3]float32{}, false
	}
	inv := 1 / (w0 + w1 + w2)
	return [3]float32{w0 * inv, w1 * inv, w2 * inv}, true
}

// interpolate returns the depth and the perspective-correct attributes at barycentric b.
func (t *triangle) interpolate(b [3]float32) (float32, attrs) {
	v := &t.v
	z := b[0]*v[0].z + b[1]*v[1].z + b[2]*v[2].z
	q0 := b[0] * v[0].invW
	q1 := b[1] * v[1].invW
	q2 := b[2] * v[2].invW
	inv := 1 / (q0 + q1 + q2)
	q0, q1, q2 = q0*inv, q1*inv, q2*inv

	var a attrs
	for i := range attrCount {
		a[i] = q0*v[0].a[i] + q1*v[1].a[i] + q2*v[2].a[i]
	}
	return z, a
}
