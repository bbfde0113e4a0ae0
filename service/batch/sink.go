package batch

import (
	"context"
	"log/slog"
)

// OutcomeSink receives every Outcome a batch run produces, in order.
// Sinks are reporting surfaces: a sink error is logged and skipped, it never
// affects the run itself.
type OutcomeSink interface {
	// Record persists or publishes one outcome.
	Record(ctx context.Context, outcome *Outcome) error

	// Name identifies the sink in logs and metrics.
	Name() string
}

// LogSink writes outcomes to the structured logger. It is always configured
// so that no participant's result goes unreported.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a sink that logs each outcome at a level matching its
// status.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Record(ctx context.Context, outcome *Outcome) error {
	attrs := []any{
		"run_id", outcome.RunID,
		"mode", outcome.Mode,
		"source", outcome.Source,
		"destination", outcome.Destination,
		"amount", outcome.Amount.String(),
	}

	switch outcome.Status {
	case StatusSucceeded:
		if outcome.DestinationBalance != nil {
			attrs = append(attrs, "destination_balance", *outcome.DestinationBalance)
		}
		s.logger.InfoContext(ctx, "transfer succeeded", attrs...)
	case StatusSkipped:
		attrs = append(attrs, "reason", outcome.SkipReason)
		s.logger.InfoContext(ctx, "participant skipped", attrs...)
	case StatusFailed:
		attrs = append(attrs,
			"engine_result", outcome.EngineResult,
			"engine_result_message", outcome.EngineResultMessage,
		)
		s.logger.WarnContext(ctx, "transfer failed", attrs...)
	}
	return nil
}
