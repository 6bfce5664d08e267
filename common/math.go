package common

import (
	"unsafe"

	"github.com/chewxy/math32"
)

// Matrices in this package are flat column-major [16]float32 slices: element (row, col)
// lives at col*4+row, matching WGSL mat4x4<f32>.

// Identity overwrites the first 16 elements of m with the identity matrix.
func Identity(m []float32) {
	clear(m[:16])
	for i := 0; i < 16; i += 5 {
		m[i] = 1
	}
}

// SliceToBytes reinterprets a slice as its raw bytes for buffer uploads. The result aliases
// data and must not outlive or modify it.
//
// Parameters:
//   - data: the source slice
//
// Returns:
//   - []byte: the byte view, nil for an empty slice
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	n := len(data) * int(unsafe.Sizeof(data[0]))
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(data))), n)
}

// Mul4 stores a*b in out. out may alias a or b.
func Mul4(out, a, b []float32) {
	var r [16]float32
	for col := range 4 {
		bc := b[col*4 : col*4+4]
		for row := range 4 {
			r[col*4+row] = a[row]*bc[0] + a[4+row]*bc[1] + a[8+row]*bc[2] + a[12+row]*bc[3]
		}
	}
	copy(out, r[:])
}

// Perspective writes a right-handed projection that maps view depth [-near, -far] to the
// WebGPU clip depth range [0, 1].
//
// Parameters:
//   - out: destination, at least 16 elements
//   - fovY: vertical field of view in radians
//   - aspect: width over height
//   - near: near plane distance, > 0
//   - far: far plane distance, > near
func Perspective(out []float32, fovY, aspect, near, far float32) {
	f := 1 / math32.Tan(fovY/2)
	depth := 1 / (near - far)

	clear(out[:16])
	out[0] = f / aspect
	out[5] = f
	out[10] = far * depth
	out[11] = -1
	out[14] = near * far * depth
}

// BuildModelMatrix writes translate * Ry * Rx * Rz * scale.
//
// Parameters:
//   - out: destination, at least 16 elements
//   - posX, posY, posZ: translation
//   - rotX, rotY, rotZ: Euler angles in radians
//   - scaleX, scaleY, scaleZ: per-axis scale
func BuildModelMatrix(out []float32, posX, posY, posZ, rotX, rotY, rotZ, scaleX, scaleY, scaleZ float32) {
	sx, cx := math32.Sincos(rotX)
	sy, cy := math32.Sincos(rotY)
	sz, cz := math32.Sincos(rotZ)

	// Columns of Ry*Rx*Rz.
	axes := [3][3]float32{
		{cy*cz + sy*sx*sz, cx * sz, cy*sx*sz - sy*cz},
		{sy*sx*cz - cy*sz, cx * cz, sy*sz + cy*sx*cz},
		{sy * cx, -sx, cy * cx},
	}
	scale := [3]float32{scaleX, scaleY, scaleZ}
	for col, axis := range axes {
		v := Scale3(axis, scale[col])
		copy(out[col*4:], v[:])
		out[col*4+3] = 0
	}
	out[12], out[13], out[14], out[15] = posX, posY, posZ, 1
}

// LookAt writes the view matrix of an eye at eye looking at center. The eye looks down its
// local -Z axis. A degenerate direction or up vector leaves the affected axis unnormalized.
//
// Parameters:
//   - out: destination, at least 16 elements
//   - eyeX, eyeY, eyeZ: eye position
//   - centerX, centerY, centerZ: the point looked at
//   - upX, upY, upZ: world up
func LookAt(out []float32, eyeX, eyeY, eyeZ, centerX, centerY, centerZ, upX, upY, upZ float32) {
	eye := [3]float32{eyeX, eyeY, eyeZ}
	back := Normalize3(Sub3(eye, [3]float32{centerX, centerY, centerZ}))
	right := Normalize3(Cross3([3]float32{upX, upY, upZ}, back))
	up := Cross3(back, right)

	for i, axis := range [3][3]float32{right, up, back} {
		out[i], out[4+i], out[8+i] = axis[0], axis[1], axis[2]
		out[12+i] = -Dot3(axis, eye)
	}
	out[3], out[7], out[11], out[15] = 0, 0, 0, 1
}
