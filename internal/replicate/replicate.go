package replicate

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"predsim/internal/combine"
	"predsim/internal/logging"
	"predsim/internal/params"
	"predsim/internal/seqgen"
)

// Options are the run-wide settings applied to every replicate.
type Options struct {
	SeqLen     int       // simulated alignment length
	GammaCats  int       // discrete gamma categories; 0 = continuous
	StateFreqs []float64 // A, C, G, T; replaces the sample's pi(X) cells when set
	SeqGenPath string    // executable handed to the simulator
	Logger     *slog.Logger
}

// Record is the immutable result of one replicate.
type Record struct {
	Index     int // 0-based input position
	Label     string
	Alignment seqgen.Alignment
	Command   string
	Tree      string
	Seed      string
	Params    params.SimulatorParams
}

// Replicates is a lazy, single-pass sequence of Records.
//
//	for reps.Next() {
//		rec := reps.Record()
//	}
//	if err := reps.Err(); err != nil { ... }
type Replicates struct {
	ctx     context.Context
	triples *combine.Triples
	sim     seqgen.Simulator
	opts    Options

	cur  Record
	err  error
	done bool
}

// New returns an iterator over triples. No work happens until Next is called.
func New(ctx context.Context, triples *combine.Triples, sim seqgen.Simulator, opts Options) *Replicates {
	return &Replicates{ctx: ctx, triples: triples, sim: sim, opts: opts}
}

// Next runs the next replicate. It returns false when the input is exhausted or
// a replicate failed; the iterator cannot be restarted afterwards.
func (r *Replicates) Next() bool {
	if r.done {
		return false
	}
	t, ok := r.triples.Next()
	if !ok {
		r.done = true
		return false
	}
	rec, err := Run(r.ctx, t, r.sim, r.opts)
	if err != nil {
		r.err, r.done = err, true
		r.cur = Record{}
		return false
	}
	r.cur = rec
	return true
}

// Record returns the record produced by the last successful Next.
func (r *Replicates) Record() Record { return r.cur }

// Err returns the error that stopped iteration, if any.
func (r *Replicates) Err() error { return r.err }

// Prepare translates t's sample, applies the run-wide overrides and checks the
// result. It never calls the simulator.
func Prepare(t combine.Triple, opts Options) (seqgen.Request, error) {
	sample := t.Sample
	if opts.StateFreqs != nil {
		sample = params.WithFreqs(sample, opts.StateFreqs)
	}
	p, err := params.Translate(sample)
	if err != nil {
		return seqgen.Request{}, wrap(t, err)
	}
	p.GammaCats = opts.GammaCats
	if err := p.Check(); err != nil {
		return seqgen.Request{}, wrap(t, err)
	}
	return seqgen.Request{
		Tree:    t.Topology.Newick,
		SeqLen:  opts.SeqLen,
		Params:  p,
		Seed:    t.Seed,
		HasSeed: t.HasSeed,
		Path:    opts.SeqGenPath,
	}, nil
}

// Run executes one replicate: Prepare, then the simulator call.
func Run(ctx context.Context, t combine.Triple, sim seqgen.Simulator, opts Options) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	req, err := Prepare(t, opts)
	if err != nil {
		return Record{}, err
	}
	log := logger(opts)
	log.Debug("simulating replicate",
		"replicate", t.Index+1, "tree", t.Topology.Label,
		"model", req.Params.Model(), "fields", params.Present(t.Sample))

	start := time.Now()
	res, err := sim.Simulate(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return Record{}, ctx.Err()
		}
		return Record{}, wrap(t, err)
	}
	log.Debug("replicate done", "replicate", t.Index+1,
		"ntax", res.Alignment.NTax(), "nchar", res.Alignment.NChar(), "elapsed", time.Since(start))
	log.Log(ctx, logging.LevelTrace, "seq-gen command", "replicate", t.Index+1, "command", res.Command)

	return Record{
		Index:     t.Index,
		Label:     t.Topology.Label,
		Alignment: res.Alignment,
		Command:   res.Command,
		Tree:      t.Topology.Newick,
		Seed:      t.Seed,
		Params:    req.Params,
	}, nil
}

func wrap(t combine.Triple, err error) error {
	if t.Topology.Label != "" {
		return fmt.Errorf("replicate %d (%s): %w", t.Index+1, t.Topology.Label, err)
	}
	return fmt.Errorf("replicate %d: %w", t.Index+1, err)
}

func logger(o Options) *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
