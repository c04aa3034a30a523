package bench

import (
	"fmt"
	"io"
	"math"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	jsoniter "github.com/json-iterator/go"
)

// Result is the measurement of a single trial.
type Result struct {
	Subject      string `json:"subject"`
	Trial        int    `json:"trial"`
	Ops          int    `json:"ops"`
	ElapsedNanos uint64 `json:"elapsed_ns,string"`
	// Checksum sums every looked-up value; subjects must agree on it.
	Checksum int64 `json:"checksum,string"`
}

// OpsPerSecond returns the throughput of the trial, or 0 if no time elapsed.
func (r Result) OpsPerSecond() float64 {
	if r.ElapsedNanos == 0 {
		return 0
	}

	return float64(r.Ops) / time.Duration(r.ElapsedNanos).Seconds()
}

// Summary aggregates the trials of one subject.
type Summary struct {
	Subject string  `json:"subject"`
	Trials  int     `json:"trials"`
	Mean    float64 `json:"mean_ops_per_sec"`
	Min     float64 `json:"min_ops_per_sec"`
	Max     float64 `json:"max_ops_per_sec"`
}

type Report struct {
	Config    Config             `json:"config"`
	Results   []Result           `json:"results"`
	Summaries []Summary          `json:"summaries"`
	Allocator map[string]float64 `json:"allocator,omitempty"`
}

// Summary returns the aggregate of subject and whether it has any trials.
func (r *Report) Summary(subject string) (Summary, bool) {
	for _, s := range r.Summaries {
		if s.Subject == subject {
			return s, true
		}
	}

	return Summary{}, false
}

func (r *Report) summarize() {
	r.Summaries = r.Summaries[:0]
	index := map[string]int{}

	for _, res := range r.Results {
		i, ok := index[res.Subject]
		if !ok {
			i = len(r.Summaries)
			index[res.Subject] = i
			r.Summaries = append(r.Summaries, Summary{
				Subject: res.Subject,
				Min:     math.Inf(1),
				Max:     math.Inf(-1),
			})
		}

		s := &r.Summaries[i]
		rate := res.OpsPerSecond()
		s.Trials++
		s.Mean += rate
		s.Min = math.Min(s.Min, rate)
		s.Max = math.Max(s.Max, rate)
	}

	for i := range r.Summaries {
		r.Summaries[i].Mean /= float64(r.Summaries[i].Trials)
	}
}

// ToWriter encodes the report as a single JSON document.
func (r *Report) ToWriter(w io.Writer) error {
	return jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w).Encode(r)
}

// WriteText writes a human readable table of the summaries followed by the
// allocator counters.
func (r *Report) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)

	fmt.Fprintln(tw, "SUBJECT\tTRIALS\tMEAN OPS/S\tMIN OPS/S\tMAX OPS/S")
	for _, s := range r.Summaries {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n",
			s.Subject, s.Trials,
			humanize.Comma(int64(s.Mean)),
			humanize.Comma(int64(s.Min)),
			humanize.Comma(int64(s.Max)),
		)
	}

	if len(r.Allocator) > 0 {
		names := make([]string, 0, len(r.Allocator))
		for name := range r.Allocator {
			names = append(names, name)
		}
		sort.Strings(names)

		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "METRIC\tVALUE")
		for _, name := range names {
			fmt.Fprintf(tw, "%s\t%s\n", name, humanize.Comma(int64(r.Allocator[name])))
		}
	}

	return tw.Flush()
}
