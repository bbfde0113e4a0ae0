package batch

import (
	"time"

	"github.com/shopspring/decimal"
)

// Mode identifies the fan direction of a batch run.
type Mode string

const (
	// ModeCollect sweeps many source accounts into one destination.
	ModeCollect Mode = "collect"

	// ModeDistribute sends a fixed amount from one source to many
	// destinations.
	ModeDistribute Mode = "distribute"
)

// Status is the final classification of one participant's pass.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// SkipReason explains why a participant never reached submission.
type SkipReason string

const (
	SkipInvalidSecret       SkipReason = "invalid_secret"
	SkipSelfTransfer        SkipReason = "self_transfer"
	SkipTrustlineAbsent     SkipReason = "trustline_absent"
	SkipInsufficientBalance SkipReason = "insufficient_balance"
	SkipInvalidBalance      SkipReason = "invalid_balance"
)

// Outcome records what happened to one participant in one batch pass.
// Exactly one is produced per participant; outcomes are reported, never
// retried.
type Outcome struct {
	RunID       string
	Mode        Mode
	Source      string
	Destination string

	// Amount is the value attempted (or that would have been attempted);
	// zero for skips that never computed one.
	Amount decimal.Decimal

	Status     Status
	SkipReason SkipReason

	// EngineResult and EngineResultMessage carry the ledger's verdict for
	// submitted transfers. For local submit failures EngineResultMessage
	// holds the error text and EngineResult is empty.
	EngineResult        string
	EngineResultMessage string

	// DestinationBalance is the destination's post-transfer balance where
	// the run re-queries it (distribute mode); nil when unavailable.
	DestinationBalance *string

	Timestamp time.Time

	// queryErr and submitErr hold the underlying errors so the run loop
	// can tell batch-fatal transport loss from an isolated participant
	// failure. Reporting surfaces use the exported message fields.
	queryErr  error
	submitErr error
}

// CollectConfig is the immutable configuration for one fan-in run.
// The trustline (issuer, raw currency) pair is selected once, up front.
type CollectConfig struct {
	// RunID stamps every outcome; generated when empty.
	RunID string

	Issuer      string
	Currency    string
	Retain      decimal.Decimal
	Destination string
	Delay       time.Duration
}

// DistributeConfig is the immutable configuration for one fan-out run.
type DistributeConfig struct {
	// RunID stamps every outcome; generated when empty.
	RunID string

	Issuer   string
	Currency string
	Value    decimal.Decimal
	Delay    time.Duration
}
