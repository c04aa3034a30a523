package bench

import (
	"context"
	"strings"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/tangledbytes/go-stl/internal/clock"
	"github.com/tangledbytes/go-stl/pkg/allocator"
	"github.com/tangledbytes/go-stl/pkg/utils"
	"github.com/tangledbytes/go-stl/pkg/vector"
)

const (
	SubjectVector = "vector"
	SubjectSlice  = "slice"
)

// workload is one array implementation under measurement.
type workload interface {
	push(v int) error
	lookup(i int) (int, error)
	free() error
}

type subject struct {
	name string
	new  func() workload
}

type vectorWorkload struct {
	v *vector.Vector[int]
}

func (w *vectorWorkload) push(v int) error {
	return w.v.PushBack(v)
}

func (w *vectorWorkload) lookup(i int) (int, error) {
	p, err := w.v.At(i)
	if err != nil {
		return 0, err
	}

	return *p, nil
}

func (w *vectorWorkload) free() error {
	return w.v.Free()
}

// sliceWorkload is the baseline: a builtin slice grown by append, with the
// same bounds check as Vector.At.
type sliceWorkload struct {
	data []int
}

func (w *sliceWorkload) push(v int) error {
	w.data = append(w.data, v)
	return nil
}

func (w *sliceWorkload) lookup(i int) (int, error) {
	if i < 0 || i >= len(w.data) {
		return 0, errors.Errorf("index %d with length %d", i, len(w.data))
	}

	return w.data[i], nil
}

func (w *sliceWorkload) free() error {
	w.data = nil
	return nil
}

// Runner measures amortised append+lookup throughput of Vector against a
// builtin slice over repeated trials.
type Runner struct {
	cfg    Config
	clock  clock.Clock
	logger log.Logger
	reg    prometheus.Registerer
}

func NewRunner(cfg Config, clk clock.Clock, logger log.Logger, reg prometheus.Registerer) *Runner {
	return &Runner{
		cfg:    cfg,
		clock:  clk,
		logger: logger,
		reg:    reg,
	}
}

// Run executes every trial for every subject, checking ctx between trials.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	if err := r.cfg.Validate(); err != nil {
		return nil, err
	}

	alloc := allocator.NewInstrumented[int](allocator.NewNativeArray[int](), SubjectVector, r.reg)
	subjects := []subject{
		{name: SubjectVector, new: func() workload {
			return &vectorWorkload{v: vector.New(vector.WithAllocator[int](alloc))}
		}},
		{name: SubjectSlice, new: func() workload {
			return &sliceWorkload{}
		}},
	}

	report := &Report{Config: r.cfg}
	for trial := 0; trial < r.cfg.Trials; trial++ {
		for _, s := range subjects {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			res, err := r.runTrial(s, trial)
			if err != nil {
				return nil, errors.Wrapf(err, "%s trial %d", s.name, trial)
			}

			level.Info(r.logger).Log(
				"msg", "trial finished",
				"subject", res.Subject,
				"trial", res.Trial,
				"ops", res.Ops,
				"elapsed", time.Duration(res.ElapsedNanos),
			)
			report.Results = append(report.Results, res)
		}
	}

	report.summarize()
	if g, ok := r.reg.(prometheus.Gatherer); ok {
		m, err := allocatorMetrics(g)
		if err != nil {
			return nil, err
		}
		report.Allocator = m
	}

	return report, nil
}

func (r *Runner) runTrial(s subject, trial int) (Result, error) {
	w := s.new()
	rng := utils.NewRand(r.cfg.Seed + int64(trial))

	var checksum int64
	start := r.clock.Now()
	for i := 0; i < r.cfg.Ops; i++ {
		if err := w.push(i); err != nil {
			return Result{}, multierr.Append(err, w.free())
		}

		idx := (i + 1) / 2
		if r.cfg.Pattern == PatternRandom {
			idx = utils.RandomIntRange(rng, 0, i+1)
		}

		x, err := w.lookup(idx)
		if err != nil {
			return Result{}, multierr.Append(err, w.free())
		}
		checksum += int64(x)
	}
	elapsed := r.clock.Now() - start

	return Result{
		Subject:      s.name,
		Trial:        trial,
		Ops:          r.cfg.Ops,
		ElapsedNanos: elapsed,
		Checksum:     checksum,
	}, w.free()
}

// allocatorMetrics returns the current value of every allocator metric
// registered with g, keyed by metric name.
func allocatorMetrics(g prometheus.Gatherer) (map[string]float64, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, errors.Wrap(err, "gather allocator metrics")
	}

	out := map[string]float64{}
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "stl_allocator_") {
			continue
		}

		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				out[mf.GetName()] += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				out[mf.GetName()] += m.GetGauge().GetValue()
			}
		}
	}

	return out, nil
}
