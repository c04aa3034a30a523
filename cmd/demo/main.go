package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/tangledbytes/go-stl/internal/logging"
	"github.com/tangledbytes/go-stl/pkg/allocator"
	"github.com/tangledbytes/go-stl/pkg/owner"
	"github.com/tangledbytes/go-stl/pkg/vector"
)

// resource logs when it is disposed, which makes ownership transfers visible.
type resource struct {
	name   string
	logger log.Logger
}

func (r *resource) Close() error {
	level.Info(r.logger).Log("msg", "resource closed", "name", r.name)
	return nil
}

func logVector[T any](logger log.Logger, msg string, v *vector.Vector[T]) {
	level.Info(logger).Log("msg", msg, "len", v.Len(), "cap", v.Cap(), "items", fmt.Sprint(v.Slice()))
}

func construction(logger log.Logger, alloc allocator.Array[string]) (err error) {
	filled, err := vector.NewFilled(3, "x", vector.WithAllocator(alloc))
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, filled.Free()) }()
	logVector(logger, "filled", filled)

	words, err := vector.NewFrom([]string{"alpha", "beta", "gamma"}, vector.WithAllocator(alloc))
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, words.Free()) }()
	logVector(logger, "from slice", words)

	clone, err := words.Clone()
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, clone.Free()) }()
	clone.Set(0, "omega")
	logVector(logger, "clone after set", clone)
	logVector(logger, "original after clone set", words)

	return nil
}

func access(logger log.Logger) (err error) {
	v, err := vector.NewFrom([]int{10, 20, 30})
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, v.Free()) }()

	level.Info(logger).Log("msg", "ends", "front", v.Front(), "back", v.Back())

	if _, err := v.At(3); err != nil {
		level.Info(logger).Log("msg", "checked access rejected", "err", err)
	}

	p, err := v.At(1)
	if err != nil {
		return err
	}
	*p = 25
	logVector(logger, "after write through At", v)

	return nil
}

func growth(logger log.Logger, alloc allocator.Array[int]) (err error) {
	v := vector.New(vector.WithAllocator(alloc))
	defer func() { err = multierr.Append(err, v.Free()) }()

	for i := 1; i <= 5; i++ {
		if err := v.PushBack(i); err != nil {
			return err
		}
		level.Debug(logger).Log("msg", "pushed", "value", i, "len", v.Len(), "cap", v.Cap())
	}
	logVector(logger, "after pushes", v)

	if err := v.InsertN(1, 2, 0); err != nil {
		return err
	}
	logVector(logger, "after insert", v)

	if err := v.Resize(3); err != nil {
		return err
	}
	logVector(logger, "after resize", v)

	if err := v.ShrinkToFit(); err != nil {
		return err
	}
	logVector(logger, "after shrink", v)

	return nil
}

func iteration(logger log.Logger) (err error) {
	v, err := vector.NewFrom([]string{"a", "b", "c"})
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, v.Free()) }()

	for it := v.Begin(); it.Less(v.End()); it = it.Next() {
		level.Info(logger).Log("msg", "iterator", "index", it.Index(), "value", it.Value())
	}

	for i, s := range v.Backward() {
		level.Info(logger).Log("msg", "backward", "index", i, "value", s)
	}

	it := v.Begin()
	if err := v.Reserve(64); err != nil {
		return err
	}
	level.Info(logger).Log("msg", "iterator after reserve", "valid", it.Valid())

	return nil
}

func ownership(logger log.Logger) (err error) {
	newResource := func(name string) func(*resource) error {
		return func(r *resource) error {
			r.name, r.logger = name, logger
			return nil
		}
	}

	first, err := owner.Make(newResource("first"))
	if err != nil {
		return err
	}
	second, err := owner.Make(newResource("second"))
	if err != nil {
		return multierr.Append(err, first.Close())
	}

	moved := first.Move()
	defer func() {
		err = multierr.Combine(err, moved.Close(), second.Close())
	}()
	level.Info(logger).Log("msg", "moved", "source_valid", first.Valid(), "target", moved.Value().name)

	moved.Swap(second)
	level.Info(logger).Log("msg", "swapped", "moved", moved.Value().name, "second", second.Value().name)

	raw := second.Release()
	level.Info(logger).Log("msg", "released", "name", raw.name, "still_owned", second.Valid())
	if err := raw.Close(); err != nil {
		return err
	}

	third, err := owner.Make(newResource("third"))
	if err != nil {
		return err
	}
	if err := moved.MoveFrom(third); err != nil {
		return errors.Wrap(err, "move assignment")
	}

	return moved.Reset(nil)
}

func main() {
	app := kingpin.New("demo", "Walks through vector.Vector and owner.Pointer behaviour, logging each step.")
	logLevel := app.Flag("log.level", "Only log messages with the given severity or above.").Default("info").Enum(logging.Levels...)
	traceAlloc := app.Flag("trace-allocator", "Log every buffer the vectors allocate and release.").Bool()
	kingpin.MustParse(app.Parse(os.Args[1:]))

	logger := logging.New(os.Stderr, *logLevel)

	var (
		strAlloc allocator.Array[string] = allocator.NewNativeArray[string]()
		intAlloc allocator.Array[int]    = allocator.NewNativeArray[int]()
	)
	if *traceAlloc {
		strAlloc = allocator.NewLogging(strAlloc, logger)
		intAlloc = allocator.NewLogging(intAlloc, logger)
	}

	scenarios := []struct {
		name string
		run  func(log.Logger) error
	}{
		{"construction", func(l log.Logger) error { return construction(l, strAlloc) }},
		{"access", access},
		{"growth", func(l log.Logger) error { return growth(l, intAlloc) }},
		{"iteration", iteration},
		{"ownership", ownership},
	}

	for _, s := range scenarios {
		l := log.With(logger, "scenario", s.name)
		if err := s.run(l); err != nil {
			level.Error(l).Log("msg", "scenario failed", "err", err)
			os.Exit(1)
		}
		level.Info(l).Log("msg", "scenario done")
	}
}
