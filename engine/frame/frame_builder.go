package frame

import "github.com/Carmen-Shannon/oxy-q3/common"

// FrameBuilderOption is a functional option applied to a frame during NewFrame.
type FrameBuilderOption func(*frameImpl)

// WithFrom copies every field of a previous frame except its generation.
// Later options override the copied values, so WithFrom(prev), WithTime(t) advances a frame.
//
// Parameters:
//   - prev: the frame to copy, ignored when nil
//
// Returns:
//   - FrameBuilderOption: a function that copies the previous frame
func WithFrom(prev Frame) FrameBuilderOption {
	return func(f *frameImpl) {
		if prev == nil {
			return
		}
		f.time = prev.Time()
		f.viewOrigin = prev.ViewOrigin()
		f.projectionMatrix = prev.ProjectionMatrix()
		f.viewMatrix = prev.ViewMatrix()
		f.modelMatrix = prev.ModelMatrix()
	}
}

// WithTime sets the frame time in seconds.
//
// Parameters:
//   - seconds: the frame time
//
// Returns:
//   - FrameBuilderOption: a function that sets the frame time
func WithTime(seconds float32) FrameBuilderOption {
	return func(f *frameImpl) {
		f.time = seconds
	}
}

// WithViewOrigin sets the world-space eye position without touching the view matrix.
//
// Parameters:
//   - x, y, z: the eye position
//
// Returns:
//   - FrameBuilderOption: a function that sets the eye position
func WithViewOrigin(x, y, z float32) FrameBuilderOption {
	return func(f *frameImpl) {
		f.viewOrigin = [3]float32{x, y, z}
	}
}

// WithPerspective sets a perspective projection with a [0, 1] clip depth range.
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport width / height
//   - near: near plane distance (> 0)
//   - far: far plane distance (> near)
//
// Returns:
//   - FrameBuilderOption: a function that sets the projection matrix
func WithPerspective(fovY, aspect, near, far float32) FrameBuilderOption {
	return func(f *frameImpl) {
		common.Perspective(f.projectionMatrix[:], fovY, aspect, near, far)
	}
}

// WithLookAt sets the view matrix from an eye, a target and an up vector, and sets the
// view origin to the eye so the two can never disagree.
//
// Parameters:
//   - eye: the world-space eye position
//   - target: the point the eye looks at
//   - up: the world up direction
//
// Returns:
//   - FrameBuilderOption: a function that sets the view matrix and origin
func WithLookAt(eye, target, up [3]float32) FrameBuilderOption {
	return func(f *frameImpl) {
		common.LookAt(f.viewMatrix[:], eye[0], eye[1], eye[2], target[0], target[1], target[2], up[0], up[1], up[2])
		f.viewOrigin = eye
	}
}

// WithProjectionMatrix sets the projection matrix directly.
//
// Parameters:
//   - m: column-major matrix
//
// Returns:
//   - FrameBuilderOption: a function that sets the projection matrix
func WithProjectionMatrix(m [16]float32) FrameBuilderOption {
	return func(f *frameImpl) {
		f.projectionMatrix = m
	}
}

// WithViewMatrix sets the view matrix directly. The caller is responsible for a matching view origin.
//
// Parameters:
//   - m: column-major matrix
//
// Returns:
//   - FrameBuilderOption: a function that sets the view matrix
func WithViewMatrix(m [16]float32) FrameBuilderOption {
	return func(f *frameImpl) {
		f.viewMatrix = m
	}
}

// WithModelMatrix sets the model matrix directly.
//
// Parameters:
//   - m: column-major matrix
//
// Returns:
//   - FrameBuilderOption: a function that sets the model matrix
func WithModelMatrix(m [16]float32) FrameBuilderOption {
	return func(f *frameImpl) {
		f.modelMatrix = m
	}
}

// WithModelTransform builds the model matrix from a position, Euler rotation (radians) and scale.
//
// Parameters:
//   - pos: translation
//   - rot: rotation around x, y and z in radians
//   - scale: scale along each axis
//
// Returns:
//   - FrameBuilderOption: a function that sets the model matrix
func WithModelTransform(pos, rot, scale [3]float32) FrameBuilderOption {
	return func(f *frameImpl) {
		common.BuildModelMatrix(f.modelMatrix[:], pos[0], pos[1], pos[2], rot[0], rot[1], rot[2], scale[0], scale[1], scale[2])
	}
}
