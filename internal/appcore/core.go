// internal/appcore/core.go
package appcore

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"predsim/internal/cliutil"
	"predsim/internal/combine"
	"predsim/internal/config"
	"predsim/internal/ledger"
	"predsim/internal/metrics"
	"predsim/internal/output"
	"predsim/internal/posterior"
	"predsim/internal/replicate"
	"predsim/internal/runutil"
	"predsim/internal/seqgen"
	"predsim/internal/treefile"
	"predsim/internal/writers"
)

// Options are the resolved inputs of one run.
type Options struct {
	PFile      string
	TFile      string
	Skip       int
	NumRecords int
	SeedsFile  string

	CommandsFile string
	TreesFile    string
	LedgerPath   string
	MetricsFile  string

	Config *config.Config
}

// Summary describes a finished (or aborted) run.
type Summary struct {
	RunID      string
	Replicates int // records delivered to every sink
	Jobs       int
	Elapsed    time.Duration
}

// Run reads the posterior sample, simulates one replicate per (tree, sample)
// pair and streams the records to stdout and the optional side sinks. Sinks
// are closed on every path; records already written stay written.
func Run(ctx context.Context, stdout io.Writer, log *slog.Logger, o Options, sim seqgen.Simulator) (Summary, error) {
	start := time.Now()
	sum := Summary{RunID: uuid.NewString()}
	cfg := o.Config

	triples, err := loadInputs(log, o)
	if err != nil {
		return sum, err
	}

	var m *metrics.Metrics
	if o.MetricsFile != "" {
		m = metrics.New()
		sim = m.Instrument(sim)
	}

	outputs, ls, err := openSinks(ctx, stdout, o, sum.RunID)
	if err != nil {
		return sum, err
	}

	sum.Jobs = runutil.EffectiveJobs(cfg.Jobs, triples.Len())
	log.Debug("starting run", "run", sum.RunID, "replicates", triples.Len(), "jobs", sum.Jobs,
		"seqgen", seqgen.ResolvePath(cfg.SeqGen.Path), "format", cfg.Output.Format)

	ropts := replicate.Options{
		SeqLen:     cfg.SeqGen.Length,
		GammaCats:  cfg.SeqGen.GammaCats,
		StateFreqs: cfg.SeqGen.Freqs,
		SeqGenPath: cfg.SeqGen.Path,
		Logger:     log,
	}
	runErr := replicate.Ordered(ctx, triples, sim, ropts, sum.Jobs, func(rec replicate.Record) error {
		if err := outputs.Write(rec); err != nil {
			return err
		}
		if ls != nil {
			if err := ls.Write(rec); err != nil {
				return err
			}
		}
		sum.Replicates++
		return nil
	})

	runErr = finish(runErr, outputs, m, o.MetricsFile, ls)
	sum.Elapsed = time.Since(start)
	return sum, runErr
}

// finish closes the output sinks and writes metrics, then records the combined
// outcome in the ledger before closing it. A run whose outputs fail to close is
// never recorded as done.
func finish(runErr error, outputs writers.Sink, m *metrics.Metrics, metricsFile string, ls *ledger.Sink) error {
	if err := outputs.Close(); runErr == nil {
		runErr = err
	}
	if m != nil {
		if err := m.WriteTextfile(metricsFile); err != nil && runErr == nil {
			runErr = fmt.Errorf("writing metrics: %w", err)
		}
	}
	if ls != nil {
		if runErr != nil {
			ls.Fail(runErr)
		}
		if err := ls.Close(); runErr == nil {
			runErr = err
		}
	}
	return runErr
}

func loadInputs(log *slog.Logger, o Options) (*combine.Triples, error) {
	samples, err := posterior.ReadFile(o.PFile, o.Skip, o.NumRecords)
	if err != nil {
		return nil, err
	}
	trees, err := treefile.ReadFile(o.TFile, o.Skip, o.NumRecords)
	if err != nil {
		return nil, err
	}
	var seeds []string
	if o.SeedsFile != "" {
		if seeds, err = cliutil.ReadSeeds(o.SeedsFile); err != nil {
			return nil, err
		}
	}
	log.Debug("inputs read", "samples", len(samples), "trees", len(trees), "seeds", len(seeds))
	return combine.Combine(trees, samples, seeds)
}

// openSinks builds the stdout sink followed by the optional file sinks, and the
// ledger sink when requested. On error everything opened so far is closed.
func openSinks(ctx context.Context, stdout io.Writer, o Options, runID string) (writers.Multi, *ledger.Sink, error) {
	var sinks writers.Multi
	fail := func(err error) (writers.Multi, *ledger.Sink, error) {
		_ = sinks.Close()
		return nil, nil, err
	}

	if o.Config.Output.Format == output.FormatJSONL {
		sinks = append(sinks, writers.NewJSONLSink(stdout))
	} else {
		as, err := writers.NewAlignmentSink(stdout, o.Config.Output.Format)
		if err != nil {
			return fail(err)
		}
		sinks = append(sinks, as)
	}
	if o.CommandsFile != "" {
		cl, err := writers.OpenCommandLog(o.CommandsFile)
		if err != nil {
			return fail(err)
		}
		sinks = append(sinks, cl)
	}
	if o.TreesFile != "" {
		tl, err := writers.OpenTreeLog(o.TreesFile)
		if err != nil {
			return fail(err)
		}
		sinks = append(sinks, tl)
	}
	var ls *ledger.Sink
	if o.LedgerPath != "" {
		store, err := ledger.Open(ctx, o.LedgerPath)
		if err != nil {
			return fail(err)
		}
		ls, err = ledger.NewSink(ctx, store, ledger.Run{
			ID:        runID,
			PFile:     o.PFile,
			TFile:     o.TFile,
			SeqLen:    o.Config.SeqGen.Length,
			GammaCats: o.Config.SeqGen.GammaCats,
		})
		if err != nil {
			_ = store.Close()
			return fail(err)
		}
	}
	return sinks, ls, nil
}
