package vector

import (
	"iter"
	"math"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/tangledbytes/go-stl/pkg/allocator"
	"github.com/tangledbytes/go-stl/pkg/assert"
)

// ErrIndexOutOfBounds is returned by At when the index does not address a
// live element.
var ErrIndexOutOfBounds = errors.New("vector: index out of bounds")

// Cloner is implemented by element types whose copies must not share state
// with the original. Vector calls Clone wherever it copies an element;
// relocating an element into a new buffer is a move and never clones.
type Cloner[T any] interface {
	Clone() T
}

type Option[T any] func(*Vector[T])

// WithAllocator makes the vector obtain its buffers and construct its
// elements through a.
func WithAllocator[T any](a allocator.Array[T]) Option[T] {
	return func(v *Vector[T]) {
		v.alloc = a
	}
}

// Vector is a contiguous, growable array whose storage is managed through an
// allocator.Array capability.
//
// Slots [0, Len()) hold constructed elements and slots [Len(), Cap()) are
// allocated but unconstructed. The buffer is allocated lazily and is nil iff
// Cap() == 0. The zero value is an empty vector using the native allocator.
//
// Vector is not safe for concurrent use.
type Vector[T any] struct {
	data  []T
	size  int
	alloc allocator.Array[T]

	// gen is bumped whenever the buffer is replaced. Iterators remember the
	// generation they were created in.
	gen uint64
}

func New[T any](opts ...Option[T]) *Vector[T] {
	v := &Vector[T]{}
	for _, opt := range opts {
		opt(v)
	}

	if v.alloc == nil {
		v.alloc = allocator.NewNativeArray[T]()
	}

	return v
}

// NewFilled returns a vector holding count copies of value.
func NewFilled[T any](count int, value T, opts ...Option[T]) (*Vector[T], error) {
	v := New(opts...)
	if err := v.Reserve(count); err != nil {
		return nil, err
	}

	for i := 0; i < count; i++ {
		if err := v.pushCopy(value); err != nil {
			return nil, multierr.Append(err, v.Free())
		}
	}

	return v, nil
}

// NewFrom returns a vector holding copies of items, in order.
func NewFrom[T any](items []T, opts ...Option[T]) (*Vector[T], error) {
	v := New(opts...)
	if err := v.appendCopies(items); err != nil {
		return nil, multierr.Append(err, v.Free())
	}

	return v, nil
}

// Assign replaces the contents of v with copies of items.
func (v *Vector[T]) Assign(items ...T) error {
	v.Clear()
	return v.appendCopies(items)
}

// Len returns the number of live elements.
func (v *Vector[T]) Len() int {
	return v.size
}

// Cap returns the number of allocated slots.
func (v *Vector[T]) Cap() int {
	return len(v.data)
}

func (v *Vector[T]) Empty() bool {
	return v.size == 0
}

// Allocator returns the allocator capability used by v.
func (v *Vector[T]) Allocator() allocator.Array[T] {
	return v.allocator()
}

// Reserve ensures Cap() >= n. When the buffer has to grow, a new buffer of
// exactly n slots is allocated and the live elements are moved into it in
// index order. If anything fails v is left as it was.
func (v *Vector[T]) Reserve(n int) error {
	if n <= v.Cap() {
		return nil
	}

	return v.rebuild(n, v.size, func(i int, slot *T) error {
		return v.moveInto(slot, &v.data[i])
	})
}

// PushBack appends value, doubling the capacity when the vector is full.
func (v *Vector[T]) PushBack(value T) error {
	return v.EmplaceBack(func(slot *T) error {
		*slot = value
		return nil
	})
}

// EmplaceBack constructs a new element in the tail slot by running init
// against it. A nil init constructs the zero value.
func (v *Vector[T]) EmplaceBack(init func(*T) error) error {
	if err := v.grow(); err != nil {
		return err
	}

	if err := v.allocator().Construct(&v.data[v.size], init); err != nil {
		return errors.Wrapf(err, "construct element %d", v.size)
	}

	v.size++
	return nil
}

// PopBack destroys the last element. It is a no-op on an empty vector.
func (v *Vector[T]) PopBack() {
	if v.size == 0 {
		return
	}

	v.size--
	v.allocator().Destroy(&v.data[v.size])
}

// Insert inserts value before index pos.
func (v *Vector[T]) Insert(pos int, value T) error {
	return v.InsertN(pos, 1, value)
}

// InsertN inserts count copies of value before index pos. It is a no-op when
// count is not positive, pos is out of [0, Len()] or the vector has no buffer
// yet.
//
// InsertN always moves the contents into a fresh buffer. The capacity is
// doubled relative to the new length when the current one would be filled.
func (v *Vector[T]) InsertN(pos, count int, value T) error {
	if count <= 0 || pos < 0 || pos > v.size || v.data == nil {
		return nil
	}

	n, err := v.insertCapacity(count)
	if err != nil {
		return err
	}

	return v.rebuild(n, v.size+count, func(i int, slot *T) error {
		switch {
		case i < pos:
			return v.moveInto(slot, &v.data[i])
		case i < pos+count:
			return v.copyInto(slot, value)
		default:
			return v.moveInto(slot, &v.data[i-count])
		}
	})
}

// Emplace constructs a new element before index pos by running init against
// it. Position and reallocation rules are those of InsertN with a count of 1.
func (v *Vector[T]) Emplace(pos int, init func(*T) error) error {
	if pos < 0 || pos > v.size || v.data == nil {
		return nil
	}

	n, err := v.insertCapacity(1)
	if err != nil {
		return err
	}

	a := v.allocator()
	return v.rebuild(n, v.size+1, func(i int, slot *T) error {
		switch {
		case i < pos:
			return v.moveInto(slot, &v.data[i])
		case i == pos:
			return a.Construct(slot, init)
		default:
			return v.moveInto(slot, &v.data[i-1])
		}
	})
}

// Resize changes the number of elements to n. New trailing elements hold the
// zero value; surplus trailing elements are destroyed.
//
// When growing beyond the capacity, the capacity is doubled until it can hold
// n elements and the buffer is reallocated once. Doubling stops at n when it
// would overflow.
func (v *Vector[T]) Resize(n int) error {
	if n < 0 {
		return errors.Wrapf(allocator.ErrInvalidSize, "resize to %d", n)
	}

	if n == v.size {
		return nil
	}

	if n < v.size {
		for v.size > n {
			v.PopBack()
		}
		return nil
	}

	if n > v.Cap() {
		c := max(v.Cap(), 1)
		for c < n {
			if c > math.MaxInt/2 {
				c = n
				break
			}
			c *= 2
		}

		if err := v.Reserve(c); err != nil {
			return err
		}
	}

	for v.size < n {
		if err := v.EmplaceBack(nil); err != nil {
			return err
		}
	}

	return nil
}

// ShrinkToFit reallocates the buffer to exactly Len() slots. An empty vector
// gives its buffer back entirely.
func (v *Vector[T]) ShrinkToFit() error {
	if v.size == v.Cap() {
		return nil
	}

	if v.size == 0 {
		return v.Free()
	}

	return v.rebuild(v.size, v.size, func(i int, slot *T) error {
		return v.moveInto(slot, &v.data[i])
	})
}

// Clear destroys all elements. The buffer is kept.
func (v *Vector[T]) Clear() {
	a := v.allocator()
	for i := 0; i < v.size; i++ {
		a.Destroy(&v.data[i])
	}

	v.size = 0
}

// At returns a pointer to the element at index i, or ErrIndexOutOfBounds if
// there is no such element. It is the only checked accessor.
func (v *Vector[T]) At(i int) (*T, error) {
	if i < 0 || i >= v.size {
		return nil, errors.Wrapf(ErrIndexOutOfBounds, "index %d with size %d", i, v.size)
	}

	return &v.data[i], nil
}

// Get returns the element at index i. The caller must ensure 0 <= i < Len().
func (v *Vector[T]) Get(i int) T {
	return *v.Ref(i)
}

// Ref returns a pointer to the element at index i. The caller must ensure
// 0 <= i < Len(). The pointer is invalidated by any operation that replaces
// the buffer.
func (v *Vector[T]) Ref(i int) *T {
	assert.Assert(i >= 0 && i < v.size, "index %d out of bounds for size %d", i, v.size)
	return &v.data[i]
}

// Set overwrites the element at index i. The caller must ensure
// 0 <= i < Len().
func (v *Vector[T]) Set(i int, value T) {
	*v.Ref(i) = value
}

// Front returns the first element of a non-empty vector.
func (v *Vector[T]) Front() T {
	return v.Get(0)
}

// Back returns the last element of a non-empty vector.
func (v *Vector[T]) Back() T {
	return v.Get(v.size - 1)
}

// Slice returns the live elements. It shares storage with v and is
// invalidated by any operation that replaces the buffer.
func (v *Vector[T]) Slice() []T {
	return v.data[:v.size:v.size]
}

// All iterates over index/element pairs from front to back.
func (v *Vector[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := 0; i < v.size; i++ {
			if !yield(i, v.data[i]) {
				return
			}
		}
	}
}

// Values iterates over the elements from front to back.
func (v *Vector[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := 0; i < v.size; i++ {
			if !yield(v.data[i]) {
				return
			}
		}
	}
}

// Backward iterates over index/element pairs from back to front.
func (v *Vector[T]) Backward() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := v.size - 1; i >= 0; i-- {
			if !yield(i, v.data[i]) {
				return
			}
		}
	}
}

// Clone returns a deep copy of v backed by a buffer of exactly Len() slots
// obtained from the same allocator.
func (v *Vector[T]) Clone() (*Vector[T], error) {
	c := &Vector[T]{alloc: v.allocator()}
	if err := c.CopyFrom(v); err != nil {
		return nil, err
	}

	return c, nil
}

// CopyFrom replaces the contents of v with copies of the elements of src,
// stored in a fresh buffer of exactly src.Len() slots. On failure v is left
// unchanged.
func (v *Vector[T]) CopyFrom(src *Vector[T]) error {
	if src == v {
		return nil
	}

	if src.size == 0 {
		return v.Free()
	}

	return v.rebuild(src.size, src.size, func(i int, slot *T) error {
		return v.copyInto(slot, src.data[i])
	})
}

// Move returns a new vector that takes over the buffer, elements and
// allocator of v. No element is constructed or destroyed; v is left empty
// with no buffer.
func (v *Vector[T]) Move() *Vector[T] {
	m := &Vector[T]{
		data:  v.data,
		size:  v.size,
		alloc: v.allocator(),
	}

	v.data, v.size = nil, 0
	v.gen++
	return m
}

// MoveFrom frees the contents of v and takes over the buffer, elements and
// allocator of src, leaving src empty. Moving a vector into itself is a
// no-op.
func (v *Vector[T]) MoveFrom(src *Vector[T]) error {
	if src == v {
		return nil
	}

	err := v.Free()

	v.data, v.size, v.alloc = src.data, src.size, src.allocator()
	v.gen++

	src.data, src.size = nil, 0
	src.gen++
	return err
}

// Free destroys all elements and gives the buffer back to the allocator.
// The vector stays usable and is empty afterwards.
func (v *Vector[T]) Free() error {
	old, live := v.data, v.size
	v.data, v.size = nil, 0
	if old != nil {
		v.gen++
	}

	return v.release(old, live)
}

func (v *Vector[T]) allocator() allocator.Array[T] {
	if v.alloc == nil {
		v.alloc = allocator.NewNativeArray[T]()
	}

	return v.alloc
}

func (v *Vector[T]) grow() error {
	if v.size < v.Cap() {
		return nil
	}

	if v.Cap() == 0 {
		return v.Reserve(1)
	}

	return v.Reserve(v.Cap() * 2)
}

// insertCapacity returns the buffer size for inserting count elements, or
// ErrInvalidSize if doubling the new length would overflow.
func (v *Vector[T]) insertCapacity(count int) (int, error) {
	if count > math.MaxInt/2-v.size {
		return 0, errors.Wrapf(allocator.ErrInvalidSize, "insert %d elements into %d", count, v.size)
	}

	if v.size+count >= v.Cap() {
		return (v.size + count) * 2, nil
	}

	return v.Cap(), nil
}

func (v *Vector[T]) pushCopy(value T) error {
	return v.EmplaceBack(func(slot *T) error {
		*slot = copyOf(value)
		return nil
	})
}

func (v *Vector[T]) appendCopies(items []T) error {
	if err := v.Reserve(v.size + len(items)); err != nil {
		return err
	}

	for _, item := range items {
		if err := v.pushCopy(item); err != nil {
			return err
		}
	}

	return nil
}

func (v *Vector[T]) moveInto(slot *T, src *T) error {
	return v.allocator().Construct(slot, func(dst *T) error {
		*dst = *src
		return nil
	})
}

func (v *Vector[T]) copyInto(slot *T, value T) error {
	return v.allocator().Construct(slot, func(dst *T) error {
		*dst = copyOf(value)
		return nil
	})
}

// rebuild allocates a buffer of n slots, fills slots [0, size) with fill and
// swaps it in, releasing the old buffer. If allocation or any fill fails the
// new buffer is torn down and v is not modified.
func (v *Vector[T]) rebuild(n, size int, fill func(i int, slot *T) error) error {
	assert.Assert(size <= n, "rebuild of %d elements into %d slots", size, n)

	a := v.allocator()
	buf, err := a.Allocate(n)
	if err != nil {
		return errors.Wrapf(err, "allocate %d slots", n)
	}

	for i := 0; i < size; i++ {
		if err := fill(i, &buf[i]); err != nil {
			for j := 0; j < i; j++ {
				a.Destroy(&buf[j])
			}

			return multierr.Append(
				errors.Wrapf(err, "construct element %d", i),
				a.Deallocate(buf),
			)
		}
	}

	old, live := v.data, v.size
	v.data, v.size = buf, size
	v.gen++

	return v.release(old, live)
}

func (v *Vector[T]) release(buf []T, live int) error {
	if buf == nil {
		return nil
	}

	a := v.allocator()
	for i := 0; i < live; i++ {
		a.Destroy(&buf[i])
	}

	return errors.Wrap(a.Deallocate(buf), "deallocate buffer")
}

func copyOf[T any](value T) T {
	if c, ok := any(value).(Cloner[T]); ok {
		return c.Clone()
	}

	return value
}
