package nats

import (
	"context"

	"github.com/jplaskett/trustsweep/service/batch"
)

// Sink adapts a Publisher to batch.OutcomeSink so batch runs stream their
// outcomes to JetStream as they happen.
type Sink struct {
	publisher Publisher
}

// NewSink creates an outcome sink backed by the publisher.
func NewSink(publisher Publisher) *Sink {
	return &Sink{publisher: publisher}
}

func (s *Sink) Name() string { return "nats" }

func (s *Sink) Record(ctx context.Context, o *batch.Outcome) error {
	return s.publisher.PublishOutcome(ctx, FromOutcome(o))
}
