package viewstate

// Factory produces the initial state for a container type. Two variants
// exist, chosen statically by whether an argument value was supplied to the
// screen: DefaultFactory for zero-argument construction and ArgumentFactory
// for argument-seeded construction. No runtime constructor inspection takes
// place.
type Factory[T any] interface {
	New() T
}

// DefaultFactory adapts a zero-argument initializer. A nil function yields
// the zero value of T.
type DefaultFactory[T any] func() T

// New builds the initial state.
func (f DefaultFactory[T]) New() T {
	if f == nil {
		var zero T
		return zero
	}
	return f()
}

// ArgumentFactory seeds the initial state from the argument value attached
// to a screen at creation time.
type ArgumentFactory[T, A any] struct {
	Args A
	Init func(A) T
}

// New builds the initial state from the captured arguments.
func (f ArgumentFactory[T, A]) New() T {
	if f.Init == nil {
		var zero T
		return zero
	}
	return f.Init(f.Args)
}
