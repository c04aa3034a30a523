package allocator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Instrumented delegates to a parent allocator and exports what passes
// through it as Prometheus metrics labelled with the allocator name.
type Instrumented[T any] struct {
	parent Array[T]

	allocations        prometheus.Counter
	allocationFailures prometheus.Counter
	deallocations      prometheus.Counter
	allocatedSlots     prometheus.Counter
	liveSlots          prometheus.Gauge
	constructions      prometheus.Counter
	destructions       prometheus.Counter
}

func NewInstrumented[T any](parent Array[T], name string, reg prometheus.Registerer) *Instrumented[T] {
	labels := prometheus.Labels{"allocator": name}

	return &Instrumented[T]{
		parent: parent,

		allocations: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name:        "stl_allocator_allocations_total",
			Help:        "Total number of buffers allocated.",
			ConstLabels: labels,
		}),
		allocationFailures: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name:        "stl_allocator_allocation_failures_total",
			Help:        "Total number of buffer allocations that failed.",
			ConstLabels: labels,
		}),
		deallocations: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name:        "stl_allocator_deallocations_total",
			Help:        "Total number of buffers deallocated.",
			ConstLabels: labels,
		}),
		allocatedSlots: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name:        "stl_allocator_allocated_slots_total",
			Help:        "Total number of slots handed out across all allocations.",
			ConstLabels: labels,
		}),
		liveSlots: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name:        "stl_allocator_live_slots",
			Help:        "Number of slots in buffers that have not been deallocated.",
			ConstLabels: labels,
		}),
		constructions: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name:        "stl_allocator_constructions_total",
			Help:        "Total number of elements constructed.",
			ConstLabels: labels,
		}),
		destructions: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name:        "stl_allocator_destructions_total",
			Help:        "Total number of elements destroyed.",
			ConstLabels: labels,
		}),
	}
}

func (i *Instrumented[T]) Allocate(n int) ([]T, error) {
	buf, err := i.parent.Allocate(n)
	if err != nil {
		i.allocationFailures.Inc()
		return nil, err
	}

	i.allocations.Inc()
	i.allocatedSlots.Add(float64(cap(buf)))
	i.liveSlots.Add(float64(cap(buf)))
	return buf, nil
}

func (i *Instrumented[T]) Deallocate(buf []T) error {
	if err := i.parent.Deallocate(buf); err != nil {
		return err
	}

	i.deallocations.Inc()
	i.liveSlots.Sub(float64(cap(buf)))
	return nil
}

func (i *Instrumented[T]) Construct(slot *T, init func(*T) error) error {
	if err := i.parent.Construct(slot, init); err != nil {
		return err
	}

	i.constructions.Inc()
	return nil
}

func (i *Instrumented[T]) Destroy(slot *T) {
	i.parent.Destroy(slot)
	i.destructions.Inc()
}

var _ Array[int] = (*Instrumented[int])(nil)
