package main

import (
	"context"
	"os"
	"os/signal"
	"runtime/pprof"

	"github.com/alecthomas/kingpin/v2"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tangledbytes/go-stl/internal/bench"
	"github.com/tangledbytes/go-stl/internal/clock"
	"github.com/tangledbytes/go-stl/internal/logging"
)

func storeHeap(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := pprof.WriteHeapProfile(f); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

func run(cfg bench.Config, output, heapProfile string, logger log.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	reg := prometheus.NewRegistry()
	level.Info(logger).Log("msg", "starting benchmark", "trials", cfg.Trials, "ops", cfg.Ops, "pattern", cfg.Pattern)

	report, err := bench.NewRunner(cfg, clock.NewReal(), logger, reg).Run(ctx)
	if heapProfile != "" {
		if herr := storeHeap(heapProfile); herr != nil {
			level.Warn(logger).Log("msg", "failed to write heap profile", "path", heapProfile, "err", herr)
		}
	}
	if err != nil {
		return errors.Wrap(err, "benchmark")
	}

	if output == "json" {
		return report.ToWriter(os.Stdout)
	}

	return report.WriteText(os.Stdout)
}

func main() {
	app := kingpin.New("bench", "Measures amortised append+lookup throughput of vector.Vector against a builtin slice.")

	cfg := bench.DefaultConfig()
	cfg.RegisterFlags(app)

	configFile := app.Flag("config.file", "YAML file with benchmark settings. Keys present in the file take precedence over flags.").String()
	output := app.Flag("output", "Report format.").Default("text").Enum("text", "json")
	heapProfile := app.Flag("heap-profile", "Write a heap profile to this path when the run ends.").String()
	logLevel := app.Flag("log.level", "Only log messages with the given severity or above.").Default("info").Enum(logging.Levels...)

	kingpin.MustParse(app.Parse(os.Args[1:]))
	logger := logging.New(os.Stderr, *logLevel)

	if *configFile != "" {
		if err := bench.LoadFile(*configFile, &cfg); err != nil {
			level.Error(logger).Log("msg", "failed to load config", "err", err)
			os.Exit(1)
		}
	}

	if err := run(cfg, *output, *heapProfile, logger); err != nil {
		level.Error(logger).Log("msg", "benchmark failed", "err", err)
		os.Exit(1)
	}
}
