package renderer

// UploaderBuilderOption is a functional option applied to an uploader during construction via NewUploader.
type UploaderBuilderOption func(*uploader)

// WithForceFallbackAdapter forces wgpu to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - UploaderBuilderOption: a function that applies the option to an uploader
func WithForceFallbackAdapter(force bool) UploaderBuilderOption {
	return func(u *uploader) {
		u.forceFallbackAdapter = force
	}
}

// WithValidation enables stage validation before every upload. A surface whose stages
// fail validation is not written to the GPU.
//
// Parameters:
//   - enabled: true to validate stages at bind time
//
// Returns:
//   - UploaderBuilderOption: a function that applies the option to an uploader
func WithValidation(enabled bool) UploaderBuilderOption {
	return func(u *uploader) {
		u.validate = enabled
	}
}

func withBackend(b uploaderBackend) UploaderBuilderOption {
	return func(u *uploader) {
		u.backend = b
	}
}
