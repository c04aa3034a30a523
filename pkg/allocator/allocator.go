package allocator

import "github.com/pkg/errors"

// ErrInvalidSize is returned when a buffer of negative length is requested.
var ErrInvalidSize = errors.New("invalid allocation size")

// Allocator hands out and reclaims single objects.
type Allocator[T any] interface {
	Create() (*T, error)
	Delete(*T) error
}

// Array manages contiguous slot buffers and the lifetime of the values
// stored in them.
//
// A buffer returned by Allocate has len == cap == n and none of its slots
// are constructed. Construct runs init against a slot; when it fails the slot
// must be left unconstructed. Destroy returns a constructed slot to the
// unconstructed state.
type Array[T any] interface {
	Allocate(n int) ([]T, error)
	Deallocate(buf []T) error
	Construct(slot *T, init func(*T) error) error
	Destroy(slot *T)
}
