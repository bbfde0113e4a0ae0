package db

import (
	"context"

	"github.com/jplaskett/trustsweep/service/batch"
)

// Sink adapts the Store to batch.OutcomeSink so every outcome of a run is
// written to the audit tables as it is produced.
type Sink struct {
	store *Store
}

// NewSink creates an outcome sink backed by the store.
func NewSink(store *Store) *Sink {
	return &Sink{store: store}
}

func (s *Sink) Name() string { return "db" }

func (s *Sink) Record(ctx context.Context, o *batch.Outcome) error {
	return s.store.RecordOutcome(ctx, o)
}
