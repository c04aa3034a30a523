package vector

import "github.com/tangledbytes/go-stl/pkg/assert"

// Iterator is a random access position within a Vector. Iterators are
// values; stepping returns a new iterator.
//
// An iterator is invalidated by any operation that replaces the vector's
// buffer (growth, insertion, ShrinkToFit, CopyFrom, moves and Free).
// Dereferencing an iterator outside [Begin, End) or one that is no longer
// valid is a programming error.
type Iterator[T any] struct {
	vec *Vector[T]
	pos int
	gen uint64
}

// Begin returns an iterator to the first element.
func (v *Vector[T]) Begin() Iterator[T] {
	return Iterator[T]{vec: v, pos: 0, gen: v.gen}
}

// End returns an iterator one past the last element.
func (v *Vector[T]) End() Iterator[T] {
	return Iterator[T]{vec: v, pos: v.size, gen: v.gen}
}

// Valid reports whether the vector's buffer is still the one it was when the
// iterator was created.
func (it Iterator[T]) Valid() bool {
	return it.vec != nil && it.gen == it.vec.gen
}

// Index returns the position of the iterator relative to Begin.
func (it Iterator[T]) Index() int {
	return it.pos
}

func (it Iterator[T]) Value() T {
	return *it.Ref()
}

func (it Iterator[T]) Ref() *T {
	assert.Assert(it.Valid(), "dereference of invalidated iterator")
	return it.vec.Ref(it.pos)
}

func (it Iterator[T]) Next() Iterator[T] {
	it.pos++
	return it
}

func (it Iterator[T]) Prev() Iterator[T] {
	it.pos--
	return it
}

// Add returns the iterator n positions away; n may be negative.
func (it Iterator[T]) Add(n int) Iterator[T] {
	it.pos += n
	return it
}

// Sub returns the distance from other to it. Both must come from the same
// vector and generation.
func (it Iterator[T]) Sub(other Iterator[T]) int {
	assert.Assert(it.vec == other.vec && it.gen == other.gen, "distance between unrelated iterators")
	return it.pos - other.pos
}

func (it Iterator[T]) Equal(other Iterator[T]) bool {
	return it.vec == other.vec && it.pos == other.pos
}

func (it Iterator[T]) Less(other Iterator[T]) bool {
	assert.Assert(it.vec == other.vec, "comparison between unrelated iterators")
	return it.pos < other.pos
}
