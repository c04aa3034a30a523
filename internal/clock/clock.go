package clock

import "time"

const NANOSECOND = 1
const MICROSECOND = 1000 * NANOSECOND
const MILLISECOND = 1000 * MICROSECOND
const SECOND = 1000 * MILLISECOND

// Clock reports monotonically increasing time in nanoseconds.
type Clock interface {
	Now() uint64
}

type Real struct {
	start time.Time
}

func NewReal() *Real {
	return &Real{start: time.Now()}
}

// Now returns the nanoseconds elapsed since the clock was created, read from
// the monotonic clock.
func (r *Real) Now() uint64 {
	return uint64(time.Since(r.start).Nanoseconds())
}

// Stepping is a virtual clock that moves forward by a fixed step every time
// it is read. It makes measured durations deterministic.
type Stepping struct {
	ticks uint64
	step  uint64
}

func NewStepping(step uint64) *Stepping {
	return &Stepping{step: step}
}

func (s *Stepping) Now() uint64 {
	now := s.ticks
	s.ticks += s.step
	return now
}

var (
	_ Clock = (*Real)(nil)
	_ Clock = (*Stepping)(nil)
)
