package allocator

import "github.com/pkg/errors"

// ErrBudgetExceeded is returned by Budget when an allocation would take the
// number of live slots above its limit.
var ErrBudgetExceeded = errors.New("allocation budget exceeded")

// Budget delegates to a parent allocator but refuses to keep more than a
// fixed number of slots allocated at once.
type Budget[T any] struct {
	parent Array[T]
	limit  int
	used   int
}

func NewBudget[T any](parent Array[T], limit int) *Budget[T] {
	return &Budget[T]{
		parent: parent,
		limit:  limit,
	}
}

// Used returns the number of slots currently allocated through b.
func (b *Budget[T]) Used() int {
	return b.used
}

func (b *Budget[T]) Allocate(n int) ([]T, error) {
	if n > b.limit-b.used {
		return nil, errors.Wrapf(ErrBudgetExceeded, "requested %d slots with %d of %d in use", n, b.used, b.limit)
	}

	buf, err := b.parent.Allocate(n)
	if err != nil {
		return nil, err
	}

	b.used += cap(buf)
	return buf, nil
}

func (b *Budget[T]) Deallocate(buf []T) error {
	if err := b.parent.Deallocate(buf); err != nil {
		return err
	}

	b.used -= cap(buf)
	return nil
}

func (b *Budget[T]) Construct(slot *T, init func(*T) error) error {
	return b.parent.Construct(slot, init)
}

func (b *Budget[T]) Destroy(slot *T) {
	b.parent.Destroy(slot)
}

var _ Array[int] = (*Budget[int])(nil)
