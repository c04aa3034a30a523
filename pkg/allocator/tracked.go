package allocator

import "go.uber.org/atomic"

// Tracked delegates to Parent and counts every call it forwards.
//
// LiveSlots is the number of slots in buffers that were allocated and not
// yet deallocated; LiveElements is constructions minus destructions.
type Tracked[T any] struct {
	Parent Array[T]

	Allocations   atomic.Int64
	Deallocations atomic.Int64
	Constructions atomic.Int64
	Destructions  atomic.Int64
	LiveSlots     atomic.Int64
	LiveElements  atomic.Int64
}

func NewTracked[T any](parent Array[T]) *Tracked[T] {
	return &Tracked[T]{Parent: parent}
}

func (t *Tracked[T]) Allocate(n int) ([]T, error) {
	buf, err := t.Parent.Allocate(n)
	if err != nil {
		return nil, err
	}

	t.Allocations.Inc()
	t.LiveSlots.Add(int64(cap(buf)))
	return buf, nil
}

func (t *Tracked[T]) Deallocate(buf []T) error {
	if err := t.Parent.Deallocate(buf); err != nil {
		return err
	}

	t.Deallocations.Inc()
	t.LiveSlots.Sub(int64(cap(buf)))
	return nil
}

func (t *Tracked[T]) Construct(slot *T, init func(*T) error) error {
	if err := t.Parent.Construct(slot, init); err != nil {
		return err
	}

	t.Constructions.Inc()
	t.LiveElements.Inc()
	return nil
}

func (t *Tracked[T]) Destroy(slot *T) {
	t.Parent.Destroy(slot)

	t.Destructions.Inc()
	t.LiveElements.Dec()
}

var _ Array[int] = (*Tracked[int])(nil)
