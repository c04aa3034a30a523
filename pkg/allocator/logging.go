package allocator

import (
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Logging delegates to a parent allocator and logs every buffer it
// allocates or deallocates at debug level. Element construction is not
// logged.
type Logging[T any] struct {
	parent Array[T]
	logger log.Logger
}

func NewLogging[T any](parent Array[T], logger log.Logger) *Logging[T] {
	return &Logging[T]{
		parent: parent,
		logger: log.With(logger, "component", "allocator"),
	}
}

func (l *Logging[T]) Allocate(n int) ([]T, error) {
	buf, err := l.parent.Allocate(n)
	if err != nil {
		level.Warn(l.logger).Log("msg", "allocation failed", "slots", n, "err", err)
		return nil, err
	}

	level.Debug(l.logger).Log("msg", "allocated buffer", "slots", cap(buf))
	return buf, nil
}

func (l *Logging[T]) Deallocate(buf []T) error {
	err := l.parent.Deallocate(buf)
	if err != nil {
		level.Warn(l.logger).Log("msg", "deallocation failed", "slots", cap(buf), "err", err)
		return err
	}

	level.Debug(l.logger).Log("msg", "deallocated buffer", "slots", cap(buf))
	return nil
}

func (l *Logging[T]) Construct(slot *T, init func(*T) error) error {
	return l.parent.Construct(slot, init)
}

func (l *Logging[T]) Destroy(slot *T) {
	l.parent.Destroy(slot)
}

var _ Array[int] = (*Logging[int])(nil)
