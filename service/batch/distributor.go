package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jplaskett/trustsweep/service/metrics"
	"github.com/jplaskett/trustsweep/service/xrpl"
)

// Distributor runs fan-out batches: one resolved sender pays the fixed
// configured amount to each destination in turn. The trustline is selected
// once from the sender before the loop; destinations are not re-inspected
// before submission, only after a success to report the new balance.
type Distributor struct {
	client  xrpl.Client
	logger  *slog.Logger
	metrics *metrics.Metrics
	sinks   []OutcomeSink
}

// NewDistributor creates a fan-out orchestrator. The client handle is owned
// by the caller. If m is nil, no metrics are recorded.
func NewDistributor(client xrpl.Client, m *metrics.Metrics, logger *slog.Logger, sinks ...OutcomeSink) *Distributor {
	return &Distributor{
		client:  client,
		logger:  logger,
		metrics: m,
		sinks:   sinks,
	}
}

// Run sends cfg.Value to every destination once, in order. The destination
// list must already exclude the sender (LoadDestinations filters it); the
// configured amount must be strictly positive. Per-destination engine
// rejections are isolated; transport loss aborts the run with the outcomes
// gathered so far.
func (d *Distributor) Run(ctx context.Context, cfg DistributeConfig, source xrpl.AccountIdentity, destinations []string) ([]Outcome, error) {
	if len(destinations) == 0 {
		return nil, ErrNoParticipants
	}
	if !cfg.Value.IsPositive() {
		return nil, fmt.Errorf("distribute value %s is not positive", cfg.Value.String())
	}

	runID := cfg.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	start := time.Now()
	d.logger.InfoContext(ctx, "starting distribute run",
		"run_id", runID,
		"source", source.Address,
		"destinations", len(destinations),
		"issuer", cfg.Issuer,
		"currency", cfg.Currency,
		"value", cfg.Value.String(),
		"delay", cfg.Delay,
	)

	outcomes := make([]Outcome, 0, len(destinations))
	finish := func(status string) {
		if d.metrics != nil {
			d.metrics.RecordBatchDuration(string(ModeDistribute), status, time.Since(start).Seconds())
		}
	}

	for _, destination := range destinations {
		if err := ctx.Err(); err != nil {
			finish("cancelled")
			return outcomes, err
		}

		outcome := Outcome{
			RunID:       runID,
			Mode:        ModeDistribute,
			Source:      source.Address,
			Destination: destination,
			Amount:      cfg.Value,
			Timestamp:   time.Now().UTC(),
		}

		result, err := d.client.SubmitPayment(ctx, xrpl.TransferIntent{
			Source:      source,
			Currency:    cfg.Currency,
			Issuer:      cfg.Issuer,
			Amount:      cfg.Value,
			Destination: destination,
		})
		if err != nil {
			outcome.Status = StatusFailed
			outcome.EngineResultMessage = err.Error()
			emitOutcome(ctx, d.logger, d.metrics, d.sinks, &outcome)
			outcomes = append(outcomes, outcome)
			if xrpl.IsTransportError(err) {
				finish("aborted")
				return outcomes, fmt.Errorf("distribute run %s: %w", runID, err)
			}
			continue
		}

		outcome.EngineResult = result.EngineResult
		outcome.EngineResultMessage = result.EngineResultMessage

		if !result.Applied() {
			outcome.Status = StatusFailed
			emitOutcome(ctx, d.logger, d.metrics, d.sinks, &outcome)
			outcomes = append(outcomes, outcome)
			continue
		}

		outcome.Status = StatusSucceeded
		balance, balErr := d.destinationBalance(ctx, cfg, destination)
		if balErr == nil && balance != "" {
			outcome.DestinationBalance = &balance
		}
		emitOutcome(ctx, d.logger, d.metrics, d.sinks, &outcome)
		outcomes = append(outcomes, outcome)

		// The transfer already succeeded; a dead connection during the
		// balance re-query still aborts what remains of the batch.
		if balErr != nil && xrpl.IsTransportError(balErr) {
			finish("aborted")
			return outcomes, fmt.Errorf("distribute run %s: %w", runID, balErr)
		}

		if err := pace(ctx, cfg.Delay); err != nil {
			finish("cancelled")
			return outcomes, err
		}
	}

	finish("completed")
	d.logger.InfoContext(ctx, "distribute run finished",
		"run_id", runID,
		"destinations", len(outcomes),
		"duration", time.Since(start),
	)
	return outcomes, nil
}

// destinationBalance re-queries the destination's trustlines after a
// successful transfer. A missing line is not a failure: it reports as
// balance unavailable (empty string) for operator visibility only.
func (d *Distributor) destinationBalance(ctx context.Context, cfg DistributeConfig, destination string) (string, error) {
	lines, err := d.client.AccountLines(ctx, destination)
	if err != nil {
		d.logger.WarnContext(ctx, "could not fetch destination balance",
			"destination", destination,
			"error", err,
		)
		return "", err
	}
	line, ok := xrpl.FindLine(lines, cfg.Issuer, cfg.Currency)
	if !ok {
		return "", nil
	}
	return line.Balance, nil
}
