package replicate

import (
	"context"

	"golang.org/x/sync/errgroup"

	"predsim/internal/combine"
	"predsim/internal/seqgen"
)

// Ordered runs up to jobs replicates at once and calls emit with each Record in
// input order. The first failure in input order is returned; replicates still in
// flight are cancelled and records after it are discarded. jobs < 2 runs the
// serial iterator.
func Ordered(
	ctx context.Context,
	triples *combine.Triples,
	sim seqgen.Simulator,
	opts Options,
	jobs int,
	emit func(Record) error,
) error {
	if jobs < 2 {
		reps := New(ctx, triples, sim, opts)
		for reps.Next() {
			if err := emit(reps.Record()); err != nil {
				return err
			}
		}
		return reps.Err()
	}

	type slot struct {
		rec  Record
		err  error
		done chan struct{}
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(runCtx)
	g.SetLimit(jobs + 1) // workers plus the feeder
	slots := make(chan *slot, jobs)

	g.Go(func() error {
		defer close(slots)
		for gctx.Err() == nil {
			t, ok := triples.Next()
			if !ok {
				return nil
			}
			s := &slot{done: make(chan struct{})}
			select {
			case slots <- s:
			case <-gctx.Done():
				return gctx.Err()
			}
			g.Go(func() error {
				defer close(s.done)
				s.rec, s.err = Run(gctx, t, sim, opts)
				return nil
			})
		}
		return gctx.Err()
	})

	var firstErr error
	for s := range slots {
		<-s.done
		if firstErr != nil {
			continue
		}
		if s.err != nil {
			firstErr = s.err
			cancel()
			continue
		}
		if err := emit(s.rec); err != nil {
			firstErr = err
			cancel()
		}
	}
	_ = g.Wait()

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}
