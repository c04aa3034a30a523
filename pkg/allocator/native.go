package allocator

import (
	"io"

	"github.com/pkg/errors"
)

// Native uses Go's built-in memory management
type Native[T any] struct{}

func (a *Native[T]) Create() (*T, error) {
	return new(T), nil
}

// Delete closes t when it implements io.Closer and then zeroes it so that
// whatever it references can be collected.
func (a *Native[T]) Delete(t *T) error {
	if t == nil {
		return nil
	}

	var err error
	if c, ok := any(t).(io.Closer); ok {
		err = c.Close()
	}

	var zero T
	*t = zero
	return err
}

// NativeArray backs buffers with Go slices. Deallocate is a no-op, the
// garbage collector reclaims a buffer once nothing references it.
type NativeArray[T any] struct{}

func NewNativeArray[T any]() *NativeArray[T] {
	return &NativeArray[T]{}
}

func (a *NativeArray[T]) Allocate(n int) ([]T, error) {
	if n < 0 {
		return nil, errors.Wrapf(ErrInvalidSize, "allocate %d slots", n)
	}

	return make([]T, n), nil
}

func (a *NativeArray[T]) Deallocate([]T) error {
	// noop
	return nil
}

func (a *NativeArray[T]) Construct(slot *T, init func(*T) error) error {
	var zero T
	*slot = zero

	if init == nil {
		return nil
	}

	if err := init(slot); err != nil {
		*slot = zero
		return err
	}

	return nil
}

func (a *NativeArray[T]) Destroy(slot *T) {
	var zero T
	*slot = zero
}

// Enforce that the native allocators implement their capabilities
var (
	_ Allocator[int] = (*Native[int])(nil)
	_ Array[int]     = (*NativeArray[int])(nil)
)
