package writers

import (
	"errors"

	"predsim/internal/replicate"
)

// Sink consumes records one at a time.
type Sink interface {
	Write(rec replicate.Record) error
	Close() error
}

// Multi fans each record out to every sink in order.
type Multi []Sink

func (m Multi) Write(rec replicate.Record) error {
	for _, s := range m {
		if err := s.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink, even after a failure, and joins their errors.
func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
