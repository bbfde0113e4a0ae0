package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jplaskett/trustsweep/service/metrics"
	"github.com/jplaskett/trustsweep/service/xrpl"
)

// Collector runs fan-in batches: each participant secret resolves to a
// source account that sweeps its balance of the selected trustline, minus
// the retained reserve, to the single configured destination.
//
// Participants are processed strictly sequentially with one ledger round
// trip outstanding at a time. That is deliberate backpressure against the
// shared endpoint, not an incidental simplification.
type Collector struct {
	client   xrpl.Client
	resolver Resolver
	logger   *slog.Logger
	metrics  *metrics.Metrics
	sinks    []OutcomeSink
}

// NewCollector creates a fan-in orchestrator. The client handle is owned by
// the caller: opened before the run, closed after. If m is nil, no metrics
// are recorded.
func NewCollector(client xrpl.Client, m *metrics.Metrics, logger *slog.Logger, sinks ...OutcomeSink) *Collector {
	return &Collector{
		client:   client,
		resolver: xrpl.ResolveSecret,
		logger:   logger,
		metrics:  m,
		sinks:    sinks,
	}
}

// WithResolver substitutes the secret resolver. Intended for tests.
func (c *Collector) WithResolver(r Resolver) *Collector {
	c.resolver = r
	return c
}

// Run processes every secret once, in order, producing one Outcome per
// participant. Per-participant failures are isolated; only transport loss
// aborts the run, returning the outcomes gathered so far alongside the
// error. There is no automatic retry: each participant gets exactly one
// attempt per run.
func (c *Collector) Run(ctx context.Context, cfg CollectConfig, secrets []string) ([]Outcome, error) {
	if len(secrets) == 0 {
		return nil, ErrNoParticipants
	}

	runID := cfg.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	start := time.Now()
	c.logger.InfoContext(ctx, "starting collect run",
		"run_id", runID,
		"participants", len(secrets),
		"issuer", cfg.Issuer,
		"currency", cfg.Currency,
		"retain", cfg.Retain.String(),
		"destination", cfg.Destination,
		"delay", cfg.Delay,
	)

	outcomes := make([]Outcome, 0, len(secrets))
	finish := func(status string) {
		if c.metrics != nil {
			c.metrics.RecordBatchDuration(string(ModeCollect), status, time.Since(start).Seconds())
		}
	}

	for _, secret := range secrets {
		if err := ctx.Err(); err != nil {
			finish("cancelled")
			return outcomes, err
		}

		outcome := c.processParticipant(ctx, runID, cfg, secret)
		emitOutcome(ctx, c.logger, c.metrics, c.sinks, &outcome)
		outcomes = append(outcomes, outcome)

		if xrpl.IsTransportError(outcome.submitErr) {
			finish("aborted")
			return outcomes, fmt.Errorf("collect run %s: %w", runID, outcome.submitErr)
		}
		if xrpl.IsTransportError(outcome.queryErr) {
			finish("aborted")
			return outcomes, fmt.Errorf("collect run %s: %w", runID, outcome.queryErr)
		}
		if outcome.Status == StatusSucceeded {
			if err := pace(ctx, cfg.Delay); err != nil {
				finish("cancelled")
				return outcomes, err
			}
		}
	}

	finish("completed")
	c.logger.InfoContext(ctx, "collect run finished",
		"run_id", runID,
		"participants", len(outcomes),
		"duration", time.Since(start),
	)
	return outcomes, nil
}

// processParticipant walks one participant through the per-iteration state
// machine: resolve, self-guard, inspect, compute, submit, classify.
func (c *Collector) processParticipant(ctx context.Context, runID string, cfg CollectConfig, secret string) Outcome {
	outcome := Outcome{
		RunID:       runID,
		Mode:        ModeCollect,
		Destination: cfg.Destination,
		Timestamp:   time.Now().UTC(),
	}

	id, err := c.resolver(secret)
	if err != nil {
		outcome.Status = StatusSkipped
		outcome.SkipReason = SkipInvalidSecret
		return outcome
	}
	outcome.Source = id.Address

	if id.Address == cfg.Destination {
		outcome.Status = StatusSkipped
		outcome.SkipReason = SkipSelfTransfer
		return outcome
	}

	// Fresh query per participant: trustline snapshots go stale the moment
	// they are returned.
	lines, err := c.client.AccountLines(ctx, id.Address)
	if err != nil {
		outcome.Status = StatusFailed
		outcome.EngineResultMessage = err.Error()
		outcome.queryErr = err
		return outcome
	}

	line, ok := xrpl.FindLine(lines, cfg.Issuer, cfg.Currency)
	if !ok {
		outcome.Status = StatusSkipped
		outcome.SkipReason = SkipTrustlineAbsent
		return outcome
	}

	balance, err := decimal.NewFromString(line.Balance)
	if err != nil {
		outcome.Status = StatusSkipped
		outcome.SkipReason = SkipInvalidBalance
		return outcome
	}

	sendable := ComputeSendable(balance, cfg.Retain)
	if !sendable.IsPositive() {
		outcome.Status = StatusSkipped
		outcome.SkipReason = SkipInsufficientBalance
		return outcome
	}
	outcome.Amount = sendable

	result, err := c.client.SubmitPayment(ctx, xrpl.TransferIntent{
		Source:      id,
		Currency:    cfg.Currency,
		Issuer:      cfg.Issuer,
		Amount:      sendable,
		Destination: cfg.Destination,
	})
	if err != nil {
		outcome.Status = StatusFailed
		outcome.EngineResultMessage = err.Error()
		outcome.submitErr = err
		return outcome
	}

	outcome.EngineResult = result.EngineResult
	outcome.EngineResultMessage = result.EngineResultMessage
	if result.Applied() {
		outcome.Status = StatusSucceeded
	} else {
		outcome.Status = StatusFailed
	}
	return outcome
}
