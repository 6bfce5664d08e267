package binder

// BinderBuilderOption is a functional option for configuring a Binder.
type BinderBuilderOption func(*binder)

// WithValidation enables stage block validation at bind time.
//
// Parameters:
//   - enabled: whether BindSurface validates each resolved stage block
//
// Returns:
//   - BinderBuilderOption: a function that applies the validation option
func WithValidation(enabled bool) BinderBuilderOption {
	return func(b *binder) {
		b.validate = enabled
	}
}
