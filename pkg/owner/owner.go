package owner

import (
	"cmp"
	"fmt"
	"unsafe"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/tangledbytes/go-stl/pkg/allocator"
	"github.com/tangledbytes/go-stl/pkg/assert"
)

// Deleter disposes of an object a Pointer owns. Delete is called exactly once
// per owned object and never with nil.
type Deleter[T any] interface {
	Delete(*T) error
}

// DeleterFunc adapts a function to the Deleter interface.
type DeleterFunc[T any] func(*T) error

func (f DeleterFunc[T]) Delete(t *T) error {
	return f(t)
}

// noCopy makes go vet's copylocks check flag a Pointer that is copied by
// value.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

type Option[T any] func(*Pointer[T])

// WithDeleter sets the capability used to dispose of the owned object.
func WithDeleter[T any](d Deleter[T]) Option[T] {
	return func(p *Pointer[T]) {
		p.deleter = d
	}
}

// Pointer is the sole owner of a heap object. It disposes of the object
// through its Deleter when reset, overwritten or closed; ownership can only
// be handed over with Move, MoveFrom, Swap or Release.
//
// The zero value owns nothing and disposes with allocator.Native. A Pointer
// must not be copied after first use.
type Pointer[T any] struct {
	noCopy noCopy

	ptr     *T
	deleter Deleter[T]
}

// New returns a Pointer owning ptr, which may be nil.
func New[T any](ptr *T, opts ...Option[T]) *Pointer[T] {
	p := &Pointer[T]{ptr: ptr}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Make allocates a T, runs init against it and returns a Pointer owning it
// that disposes with allocator.Native. A nil init leaves the zero value.
func Make[T any](init func(*T) error) (*Pointer[T], error) {
	return MakeWith[T](&allocator.Native[T]{}, init)
}

// MakeWith is Make with the object created by alloc and, later, deleted by
// it. If init fails the object is deleted straight away.
func MakeWith[T any](alloc allocator.Allocator[T], init func(*T) error) (*Pointer[T], error) {
	obj, err := alloc.Create()
	if err != nil {
		return nil, errors.Wrap(err, "create object")
	}

	if init != nil {
		if err := init(obj); err != nil {
			return nil, multierr.Append(errors.Wrap(err, "initialise object"), alloc.Delete(obj))
		}
	}

	return New(obj, WithDeleter[T](alloc)), nil
}

// From returns a Pointer owning a new heap copy of value.
func From[T any](value T) *Pointer[T] {
	obj := new(T)
	*obj = value
	return New(obj)
}

// Get returns the owned address without affecting ownership.
func (p *Pointer[T]) Get() *T {
	return p.ptr
}

// Value dereferences the owned object. The Pointer must not be empty.
func (p *Pointer[T]) Value() T {
	assert.Assert(p.ptr != nil, "dereference of empty owner.Pointer")
	return *p.ptr
}

// Valid reports whether p currently owns an object.
func (p *Pointer[T]) Valid() bool {
	return p.ptr != nil
}

// Deleter returns the capability p disposes with.
func (p *Pointer[T]) Deleter() Deleter[T] {
	return p.deleterOrDefault()
}

// Reset disposes of the owned object, if any, and takes ownership of ptr.
// Resetting to the address already owned does nothing.
func (p *Pointer[T]) Reset(ptr *T) error {
	if p.ptr == ptr {
		return nil
	}

	old := p.ptr
	p.ptr = ptr
	if old == nil {
		return nil
	}

	return errors.Wrap(p.deleterOrDefault().Delete(old), "delete owned object")
}

// Release gives up ownership without disposing of the object and returns
// it. The caller becomes responsible for it.
func (p *Pointer[T]) Release() *T {
	old := p.ptr
	p.ptr = nil
	return old
}

// Swap exchanges the owned objects and deleters of p and other.
func (p *Pointer[T]) Swap(other *Pointer[T]) {
	p.ptr, other.ptr = other.ptr, p.ptr
	p.deleter, other.deleter = other.deleter, p.deleter
}

// Move returns a new Pointer that takes over the object and deleter of p,
// leaving p empty.
func (p *Pointer[T]) Move() *Pointer[T] {
	m := &Pointer[T]{
		ptr:     p.ptr,
		deleter: p.deleter,
	}

	p.ptr = nil
	return m
}

// MoveFrom disposes of the object owned by p and takes over the object and
// deleter of src, leaving src empty. Moving a Pointer into itself is a no-op.
func (p *Pointer[T]) MoveFrom(src *Pointer[T]) error {
	if src == p {
		return nil
	}

	err := p.Reset(nil)

	p.ptr = src.Release()
	p.deleter = src.deleter
	return err
}

// Close disposes of the owned object. Closing an empty Pointer does nothing.
func (p *Pointer[T]) Close() error {
	return p.Reset(nil)
}

// Is reports whether p owns the object at raw.
func (p *Pointer[T]) Is(raw *T) bool {
	return p.ptr == raw
}

// Equal reports whether p and other own the same address. Pointee values are
// never compared.
func (p *Pointer[T]) Equal(other *Pointer[T]) bool {
	return p.ptr == other.ptr
}

// Compare orders p and other by owned address and returns -1, 0 or +1.
func (p *Pointer[T]) Compare(other *Pointer[T]) int {
	return cmp.Compare(uintptr(unsafe.Pointer(p.ptr)), uintptr(unsafe.Pointer(other.ptr)))
}

func (p *Pointer[T]) String() string {
	return fmt.Sprintf("%p", p.ptr)
}

func (p *Pointer[T]) deleterOrDefault() Deleter[T] {
	if p.deleter == nil {
		p.deleter = &allocator.Native[T]{}
	}

	return p.deleter
}
