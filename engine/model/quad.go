package model

import "github.com/Carmen-Shannon/oxy-q3/common"

// VirtualScreenWidth and VirtualScreenHeight define the coordinate space of 2D geometry.
const (
	VirtualScreenWidth  = 640
	VirtualScreenHeight = 480
)

// Quad2D builds the two triangles of an axis-aligned screen rectangle, the way
// HUD pictures and console characters are drawn.
//
// Parameters:
//   - x, y: top-left corner in virtual screen units
//   - w, h: size in virtual screen units
//   - s1, t1: texture coordinate at the top-left corner
//   - s2, t2: texture coordinate at the bottom-right corner
//   - color: RGBA color applied to all four vertices
//
// Returns:
//   - []GPU2DVertex: the four corner vertices
//   - []uint32: six indices forming two triangles
func Quad2D(x, y, w, h, s1, t1, s2, t2 float32, color [4]float32) ([]GPU2DVertex, []uint32) {
	vertices := []GPU2DVertex{
		{Position: [2]float32{x, y}, TexCoord: [2]float32{s1, t1}, Color: color},
		{Position: [2]float32{x + w, y}, TexCoord: [2]float32{s2, t1}, Color: color},
		{Position: [2]float32{x + w, y + h}, TexCoord: [2]float32{s2, t2}, Color: color},
		{Position: [2]float32{x, y + h}, TexCoord: [2]float32{s1, t2}, Color: color},
	}
	return vertices, []uint32{0, 1, 2, 0, 2, 3}
}

// QuadSurface builds the two triangles of a world-space parallelogram spanned from origin
// by the edges u and v. Every vertex carries the unit normal u x v, and the lightmap
// coordinate runs from (0, 0) at origin to (1, 1) at the far corner.
//
// Parameters:
//   - origin: the first corner
//   - u, v: the two edges leaving origin
//   - s, t: the texture coordinate at the far corner, i.e. the texture repeat count per edge
//   - color: RGBA color applied to all four vertices
//
// Returns:
//   - []GPUSurfaceVertex: the four corner vertices
//   - []uint32: six indices forming two triangles
//   - VertexFormat: a format with normals and lightmap coordinates
func QuadSurface(origin, u, v [3]float32, s, t float32, color [4]float32) ([]GPUSurfaceVertex, []uint32, VertexFormat) {
	n := common.Normalize3(common.Cross3(u, v))
	corner := func(a, b float32) GPUSurfaceVertex {
		return GPUSurfaceVertex{
			Position: [3]float32{
				origin[0] + a*u[0] + b*v[0],
				origin[1] + a*u[1] + b*v[1],
				origin[2] + a*u[2] + b*v[2],
			},
			TexCoord:      [2]float32{a * s, b * t},
			Color:         color,
			Normal:        n,
			LightmapCoord: [2]float32{a, b},
		}
	}
	vertices := []GPUSurfaceVertex{corner(0, 0), corner(1, 0), corner(1, 1), corner(0, 1)}
	return vertices, []uint32{0, 1, 2, 0, 2, 3}, VertexFormat{Normals: true, LightmapCoords: true}
}
