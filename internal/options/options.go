// Package options implements the generic functional-option pattern shared by the
// configurable irstream types (stream buffers, decoders, readers, writers and queries).
//
// Each package exposes its own option type as an alias of Option[*T]:
//
//	type Option = options.Option[*Buffer]
//
//	func WithInitialCapacity(n int) Option {
//	    return options.New(func(b *Buffer) error { ... })
//	}
package options

// Option configures a target of type T. Application may fail, in which case the
// constructor that applies it returns the error.
type Option[T any] interface {
	apply(T) error
}

// Func is a functional option backed by a plain function.
type Func[T any] struct {
	applyFunc func(T) error
}

func (f *Func[T]) apply(target T) error {
	return f.applyFunc(target)
}

// New creates an option that may reject its value.
func New[T any](fn func(T) error) *Func[T] {
	return &Func[T]{applyFunc: fn}
}

// NoError creates an option that cannot fail.
func NoError[T any](fn func(T)) *Func[T] {
	return &Func[T]{
		applyFunc: func(target T) error {
			fn(target)
			return nil
		},
	}
}

// Apply applies opts to target in order, stopping at the first error.
func Apply[T any](target T, opts ...Option[T]) error {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.apply(target); err != nil {
			return err
		}
	}

	return nil
}
