package ledger

import (
	"context"

	"predsim/internal/replicate"
)

// Sink writes records of one run into a Store and finalizes the run on Close.
type Sink struct {
	ctx   context.Context
	store *Store
	runID string
	err   error
}

// NewSink begins run r in store and returns a sink that owns store.
func NewSink(ctx context.Context, store *Store, r Run) (*Sink, error) {
	if err := store.BeginRun(ctx, r); err != nil {
		return nil, err
	}
	return &Sink{ctx: ctx, store: store, runID: r.ID}, nil
}

func (s *Sink) Write(rec replicate.Record) error {
	return s.store.Append(s.ctx, s.runID, rec)
}

// Fail records the error that ended the run; Close then marks it failed.
func (s *Sink) Fail(err error) { s.err = err }

// Close finalizes the run row and closes the database.
func (s *Sink) Close() error {
	// The run context may already be cancelled; the status update must still land.
	ferr := s.store.FinishRun(context.WithoutCancel(s.ctx), s.runID, s.err)
	cerr := s.store.Close()
	if ferr != nil {
		return ferr
	}
	return cerr
}
