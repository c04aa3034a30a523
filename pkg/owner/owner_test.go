package owner

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/tangledbytes/go-stl/pkg/allocator"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type point struct {
	X, Y int
}

// recorder counts deletions per address.
type recorder struct {
	deleted map[*point]int
	err     error
}

func newRecorder() *recorder {
	return &recorder{deleted: map[*point]int{}}
}

func (r *recorder) Delete(p *point) error {
	r.deleted[p]++
	return r.err
}

func (r *recorder) total() int {
	n := 0
	for _, c := range r.deleted {
		n += c
	}
	return n
}

func TestPointer_ZeroValue(t *testing.T) {
	var p Pointer[point]

	assert.False(t, p.Valid())
	assert.Nil(t, p.Get())
	assert.Nil(t, p.Release())
	require.NoError(t, p.Reset(nil))
	require.NoError(t, p.Close())
}

func TestPointer_New(t *testing.T) {
	rec := newRecorder()
	raw := &point{X: 1}
	p := New(raw, WithDeleter[point](rec))

	assert.True(t, p.Valid())
	assert.Same(t, raw, p.Get())
	assert.Equal(t, 1, p.Value().X)
	assert.True(t, p.Is(raw))

	p.Get().Y = 5
	assert.Equal(t, 5, raw.Y, "member access goes through the owned object")

	require.NoError(t, p.Close())
	assert.Equal(t, 1, rec.deleted[raw])
	assert.False(t, p.Valid())

	require.NoError(t, p.Close())
	assert.Equal(t, 1, rec.total(), "closing twice must not dispose twice")
}

func TestMake(t *testing.T) {
	p, err := Make(func(pt *point) error {
		pt.X, pt.Y = 3, 4
		return nil
	})
	require.NoError(t, err)
	require.NotNil(t, p.Get())
	assert.Equal(t, point{X: 3, Y: 4}, p.Value())

	owned := p.Get()
	require.NoError(t, p.Close())
	assert.Equal(t, point{}, *owned, "the default deleter zeroes the object")

	zero, err := Make[point](nil)
	require.NoError(t, err)
	assert.Equal(t, point{}, zero.Value())
}

type failingCreate struct {
	allocator.Native[point]
}

func (failingCreate) Create() (*point, error) {
	return nil, errors.New("out of memory")
}

type countingAllocator struct {
	allocator.Native[point]
	deletes int
}

func (c *countingAllocator) Delete(p *point) error {
	c.deletes++
	return c.Native.Delete(p)
}

func TestMakeWith(t *testing.T) {
	t.Run("deletes through the allocator", func(t *testing.T) {
		alloc := &countingAllocator{}
		p, err := MakeWith[point](alloc, nil)
		require.NoError(t, err)

		require.NoError(t, p.Close())
		assert.Equal(t, 1, alloc.deletes)
	})

	t.Run("create failure", func(t *testing.T) {
		p, err := MakeWith[point](&failingCreate{}, nil)
		require.Error(t, err)
		assert.Nil(t, p)
	})

	t.Run("init failure disposes the object", func(t *testing.T) {
		alloc := &countingAllocator{}
		errInit := errors.New("bad args")

		p, err := MakeWith[point](alloc, func(*point) error { return errInit })
		require.ErrorIs(t, err, errInit)
		assert.Nil(t, p)
		assert.Equal(t, 1, alloc.deletes)
	})
}

func TestFrom(t *testing.T) {
	v := point{X: 9}
	p := From(v)

	v.X = 10
	assert.Equal(t, 9, p.Value().X)
}

func TestPointer_Reset(t *testing.T) {
	rec := newRecorder()
	first, second := &point{X: 1}, &point{X: 2}
	p := New(first, WithDeleter[point](rec))

	require.NoError(t, p.Reset(first))
	assert.Zero(t, rec.total(), "resetting to the owned address must not dispose it")

	require.NoError(t, p.Reset(second))
	assert.Equal(t, 1, rec.deleted[first])
	assert.Same(t, second, p.Get())

	require.NoError(t, p.Reset(nil))
	assert.Equal(t, 1, rec.deleted[second])
	assert.Equal(t, 2, rec.total())
}

func TestPointer_ResetReportsDeleterError(t *testing.T) {
	rec := newRecorder()
	rec.err = errors.New("close failed")
	p := New(&point{}, WithDeleter[point](rec))

	err := p.Reset(nil)
	require.ErrorIs(t, err, rec.err)
	assert.False(t, p.Valid())
}

func TestPointer_Release(t *testing.T) {
	rec := newRecorder()
	raw := &point{X: 1}
	p := New(raw, WithDeleter[point](rec))

	got := p.Release()
	assert.Same(t, raw, got)
	assert.Nil(t, p.Get())

	require.NoError(t, p.Close())
	assert.Zero(t, rec.total(), "a released object must not be disposed")
}

func TestPointer_Swap(t *testing.T) {
	recA, recB := newRecorder(), newRecorder()
	rawA, rawB := &point{X: 1}, &point{X: 2}
	a := New(rawA, WithDeleter[point](recA))
	b := New(rawB, WithDeleter[point](recB))

	a.Swap(b)
	assert.Same(t, rawB, a.Get())
	assert.Same(t, rawA, b.Get())
	assert.Zero(t, recA.total()+recB.total(), "swap must not dispose")

	require.NoError(t, a.Close())
	assert.Equal(t, 1, recB.deleted[rawB], "the deleter travels with the object")
}

func TestPointer_Move(t *testing.T) {
	rec := newRecorder()
	raw := &point{X: 1}
	src := New(raw, WithDeleter[point](rec))

	dst := src.Move()
	assert.False(t, src.Valid())
	assert.Same(t, raw, dst.Get())

	require.NoError(t, src.Close())
	assert.Zero(t, rec.total())
	require.NoError(t, dst.Close())
	assert.Equal(t, 1, rec.deleted[raw])
}

func TestPointer_MoveFrom(t *testing.T) {
	t.Run("disposes the overwritten object", func(t *testing.T) {
		recDst, recSrc := newRecorder(), newRecorder()
		old, moved := &point{X: 1}, &point{X: 2}
		dst := New(old, WithDeleter[point](recDst))
		src := New(moved, WithDeleter[point](recSrc))

		require.NoError(t, dst.MoveFrom(src))
		assert.Equal(t, 1, recDst.deleted[old])
		assert.Same(t, moved, dst.Get())
		assert.False(t, src.Valid())

		require.NoError(t, dst.Close())
		assert.Equal(t, 1, recSrc.deleted[moved])
	})

	t.Run("self move", func(t *testing.T) {
		rec := newRecorder()
		raw := &point{}
		p := New(raw, WithDeleter[point](rec))

		require.NoError(t, p.MoveFrom(p))
		assert.Same(t, raw, p.Get())
		assert.Zero(t, rec.total())
	})
}

func TestPointer_Compare(t *testing.T) {
	objs := make([]point, 2)
	a := New(&objs[0])
	b := New(&objs[1])
	alias := New(&objs[0])
	empty := New[point](nil)

	assert.True(t, a.Equal(alias), "identity, not pointee value")
	assert.False(t, a.Equal(b))
	assert.Equal(t, 0, a.Compare(alias))
	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, b.Compare(a))
	assert.Equal(t, -1, empty.Compare(a))
	assert.True(t, empty.Is(nil))

	// Avoid disposing the same object twice through the alias.
	alias.Release()
}

func TestPointer_String(t *testing.T) {
	raw := &point{}
	p := New(raw)

	assert.Equal(t, fmt.Sprintf("%p", raw), p.String())
	assert.Equal(t, "0x0", New[point](nil).String())
}
