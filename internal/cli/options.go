// internal/cli/options.go
package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"predsim/internal/cliutil"
	"predsim/internal/config"
	"predsim/internal/output"
)

// Options holds all CLI flags and arguments.
type Options struct {
	// Input
	PFile      string
	TFile      string
	Skip       int
	NumRecords int
	SeedsFile  string

	// Simulation
	Length     int
	GammaCats  int
	Freqs      []float64
	SeqGenPath string
	Jobs       int

	// Output
	OutputFormat string
	CommandsFile string
	TreesFile    string
	LedgerPath   string
	MetricsFile  string

	// Misc
	ConfigFile string
	LogLevel   string
	Quiet      bool
}

// Register wires every flag onto fs.
func Register(fs *pflag.FlagSet, o *Options) {
	fs.IntVarP(&o.Length, "length", "l", 1000, "sequence length")
	fs.IntVarP(&o.GammaCats, "gamma-cats", "g", 0, "number of gamma rate categories (default: continuous)")
	fs.Float64SliceVar(&o.Freqs, "freqs", nil, "base frequencies A,C,G,T for every replicate (overrides pi(X) columns)")
	fs.IntVarP(&o.Skip, "skip", "s", 0, "number of records (trees) to skip at the beginning of the sample")
	fs.IntVarP(&o.NumRecords, "num-records", "n", 0, "number of records (trees) to use in the simulation (0 = all)")
	fs.StringVarP(&o.OutputFormat, "output-format", "o", output.FormatNexus, "output format: "+strings.Join(output.Formats, " | "))
	fs.StringVarP(&o.SeqGenPath, "seqgen-path", "p", "seq-gen", "path to a Seq-Gen executable")
	fs.IntVarP(&o.Jobs, "jobs", "j", 1, "concurrent Seq-Gen processes (0 = one per CPU); output order is unchanged")

	fs.StringVar(&o.SeedsFile, "seeds-file", "", "file with one Seq-Gen seed per line")
	fs.StringVar(&o.CommandsFile, "commands-file", "", "write the Seq-Gen command of each replicate to this file")
	fs.StringVar(&o.TreesFile, "trees-file", "", "write the source tree of each replicate to this file")
	fs.StringVar(&o.LedgerPath, "ledger", "", "record the run in this SQLite database")
	fs.StringVar(&o.MetricsFile, "metrics-file", "", "write Prometheus metrics to this file at exit")

	fs.StringVar(&o.ConfigFile, "config", "", "YAML config file")
	fs.StringVar(&o.LogLevel, "log-level", "info", "log level: info | debug | trace | warn | error")
	fs.BoolVarP(&o.Quiet, "quiet", "q", false, "only log warnings and errors")
}

// Finalize fills positionals, expands paths and checks flag-level invariants.
func (o *Options) Finalize(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("expected PFILE and TFILE, got %d argument(s)", len(args))
	}
	o.PFile, o.TFile = args[0], args[1]

	for _, p := range []*string{&o.PFile, &o.TFile, &o.SeedsFile, &o.CommandsFile, &o.TreesFile,
		&o.LedgerPath, &o.MetricsFile, &o.ConfigFile} {
		exp, err := cliutil.ExpandPath(*p)
		if err != nil {
			return err
		}
		*p = exp
	}
	for _, p := range []string{o.PFile, o.TFile} {
		if err := cliutil.RequireFile(p); err != nil {
			return err
		}
	}
	if o.SeedsFile != "" {
		if err := cliutil.RequireFile(o.SeedsFile); err != nil {
			return err
		}
	}
	if o.Skip < 0 {
		return errors.New("--skip must be ≥ 0")
	}
	if o.NumRecords < 0 {
		return errors.New("--num-records must be ≥ 0")
	}
	return nil
}

// Apply overlays explicitly set flags onto cfg; unset flags keep the config value.
func (o *Options) Apply(fs *pflag.FlagSet, cfg *config.Config) {
	if fs.Changed("length") {
		cfg.SeqGen.Length = o.Length
	}
	if fs.Changed("gamma-cats") {
		cfg.SeqGen.GammaCats = o.GammaCats
	}
	if fs.Changed("freqs") {
		cfg.SeqGen.Freqs = o.Freqs
	}
	if fs.Changed("seqgen-path") {
		cfg.SeqGen.Path = o.SeqGenPath
	}
	if fs.Changed("output-format") {
		cfg.Output.Format = o.OutputFormat
	}
	if fs.Changed("jobs") {
		cfg.Jobs = o.Jobs
	}
	if fs.Changed("log-level") {
		cfg.Logging.Level = o.LogLevel
	}
	if fs.Changed("quiet") {
		cfg.Logging.Quiet = o.Quiet
	}
}
