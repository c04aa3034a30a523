package bench

import (
	"bytes"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	// PatternMiddle looks up the element in the middle of the array after
	// every append.
	PatternMiddle = "middle"
	// PatternRandom looks up a uniformly random live element after every
	// append.
	PatternRandom = "random"
)

// Config describes a benchmark run.
type Config struct {
	Trials  int    `yaml:"trials" json:"trials"`
	Ops     int    `yaml:"ops" json:"ops"`
	Pattern string `yaml:"pattern" json:"pattern"`
	Seed    int64  `yaml:"seed" json:"seed"`
}

// DefaultConfig matches the defaults of the registered flags.
func DefaultConfig() Config {
	return Config{
		Trials:  5,
		Ops:     1_000_000,
		Pattern: PatternMiddle,
		Seed:    1,
	}
}

// RegisterFlags registers the benchmark flags on app.
func (c *Config) RegisterFlags(app *kingpin.Application) {
	app.Flag("trials", "Number of repetitions for every subject.").Default("5").IntVar(&c.Trials)
	app.Flag("ops", "Append and lookup operations per trial.").Default("1000000").IntVar(&c.Ops)
	app.Flag("pattern", "Which element to look up after every append.").Default(PatternMiddle).EnumVar(&c.Pattern, PatternMiddle, PatternRandom)
	app.Flag("seed", "Seed of the random lookup pattern.").Default("1").Int64Var(&c.Seed)
}

func (c Config) Validate() error {
	if c.Trials < 1 {
		return errors.Errorf("invalid number of trials %d", c.Trials)
	}
	if c.Ops < 1 {
		return errors.Errorf("invalid number of operations %d", c.Ops)
	}
	if c.Pattern != PatternMiddle && c.Pattern != PatternRandom {
		return errors.Errorf("unknown lookup pattern %q", c.Pattern)
	}
	return nil
}

// LoadFile overlays the YAML document at path onto cfg. Keys missing from
// the file keep their current value; unknown keys are an error.
func LoadFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read config file")
	}

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return errors.Wrapf(err, "parse config file %s", path)
	}

	return nil
}
