// Package options provides the generic functional-option plumbing shared by
// the configurable types in this module (mip.Builder, render.DataSource,
// session.Session, snapshot writers).
//
// Public packages alias Option to a concrete configuration type, e.g.:
//
//	type BuilderOption = options.Option[*builderConfig]
//
// and expose WithXxx constructors built on New or NoError.
package options

// Option configures a value of type T. Options are applied in order; the
// first failing option aborts the whole application.
type Option[T any] interface {
	apply(T) error
}

// Func adapts a plain function into an Option.
type Func[T any] func(T) error

func (f Func[T]) apply(target T) error {
	return f(target)
}

// New wraps a fallible configuration function as an Option.
// Use it for options that validate their argument, e.g. WithDecimationFactor.
func New[T any](fn func(T) error) Option[T] {
	return Func[T](fn)
}

// NoError wraps an infallible configuration function as an Option.
func NoError[T any](fn func(T)) Option[T] {
	return Func[T](func(target T) error {
		fn(target)
		return nil
	})
}

// Apply runs opts against target in order, stopping at the first error.
func Apply[T any](target T, opts ...Option[T]) error {
	for _, opt := range opts {
		if err := opt.apply(target); err != nil {
			return err
		}
	}

	return nil
}
