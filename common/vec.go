package common

import "github.com/chewxy/math32"

// Dot3 returns the dot product of two 3-component vectors.
func Dot3(a, b [3]float32) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// Sub3 returns a - b.
func Sub3(a, b [3]float32) [3]float32 {
	return [3]float32{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

// Scale3 returns v scaled by s.
func Scale3(v [3]float32, s float32) [3]float32 {
	return [3]float32{v[0] * s, v[1] * s, v[2] * s}
}

// Cross3 returns the cross product a x b.
func Cross3(a, b [3]float32) [3]float32 {
	return [3]float32{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// Length3 returns the euclidean length of v.
func Length3(v [3]float32) float32 {
	return math32.Sqrt(Dot3(v, v))
}

// Normalize3 returns v scaled to unit length. A zero vector is returned unchanged.
//
// Parameters:
//   - v: the vector to normalize
//
// Returns:
//   - [3]float32: the unit-length vector, or v if its length is zero
func Normalize3(v [3]float32) [3]float32 {
	l := Length3(v)
	if l == 0 {
		return v
	}
	return Scale3(v, 1/l)
}

// Reflect3 reflects the incident direction v about the unit normal n, returning
// 2*dot(n, v)*n - v. Both vectors point away from the surface.
//
// Parameters:
//   - v: the direction to reflect (pointing away from the surface)
//   - n: the unit surface normal
//
// Returns:
//   - [3]float32: the reflected direction
func Reflect3(v, n [3]float32) [3]float32 {
	d := 2 * Dot3(n, v)
	return [3]float32{n[0]*d - v[0], n[1]*d - v[1], n[2]*d - v[2]}
}

// TransformPoint multiplies the column-major 4x4 matrix m by the point (p, 1).
//
// Parameters:
//   - m: column-major matrix (16 elements)
//   - p: the point to transform
//
// Returns:
//   - [4]float32: the homogeneous result
func TransformPoint(m []float32, p [3]float32) [4]float32 {
	var out [4]float32
	for row := range 4 {
		out[row] = m[row]*p[0] + m[4+row]*p[1] + m[8+row]*p[2] + m[12+row]
	}
	return out
}

// Fract returns the fractional part of x, always in [0, 1).
func Fract(x float32) float32 {
	f := x - math32.Floor(x)
	if f >= 1 {
		// tiny negative inputs round up to exactly 1 in float32
		return 0
	}
	return f
}

// Clamp01 clamps x into [0, 1].
func Clamp01(x float32) float32 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// Lerp linearly interpolates between a and b by t.
func Lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}
