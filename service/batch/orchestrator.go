package batch

import (
	"context"
	"log/slog"
	"time"

	"github.com/jplaskett/trustsweep/service/metrics"
	"github.com/jplaskett/trustsweep/service/xrpl"
)

// Resolver turns a participant secret into a signing identity. The default
// is xrpl.ResolveSecret; tests substitute their own.
type Resolver func(secret string) (xrpl.AccountIdentity, error)

// emitOutcome fans one outcome out to every sink and records participant
// metrics. Sink failures are logged and skipped: reporting problems must not
// slow or stop the batch.
func emitOutcome(ctx context.Context, logger *slog.Logger, m *metrics.Metrics, sinks []OutcomeSink, o *Outcome) {
	if m != nil {
		m.RecordParticipant(string(o.Mode), string(o.Status))
		if o.Status == StatusSkipped {
			m.RecordSkip(string(o.Mode), string(o.SkipReason))
		}
		if o.EngineResult != "" {
			m.RecordSubmission(string(o.Mode), o.EngineResult)
		}
	}

	for _, sink := range sinks {
		err := sink.Record(ctx, o)
		if m != nil {
			m.RecordOutcomeSink(sink.Name(), err)
		}
		if err != nil {
			logger.ErrorContext(ctx, "failed to record outcome",
				"sink", sink.Name(),
				"run_id", o.RunID,
				"source", o.Source,
				"error", err,
			)
		}
	}
}

// pace blocks for the configured inter-submission delay. Only successful
// submissions are paced; skips and failures advance immediately so problems
// never slow the rest of the batch. Returns the context error on interrupt.
func pace(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
