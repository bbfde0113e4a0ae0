package nats

import (
	"time"

	"github.com/jplaskett/trustsweep/service/batch"
)

// OutcomeEvent is a transfer outcome published to JetStream. Events go to
// the subject "sweeps.{run_id}" so consumers can follow one batch run.
type OutcomeEvent struct {
	RunID       string `json:"run_id"`
	Mode        string `json:"mode"`
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Amount      string `json:"amount"`
	Status      string `json:"status"`

	SkipReason          string `json:"skip_reason,omitempty"`
	EngineResult        string `json:"engine_result,omitempty"`
	EngineResultMessage string `json:"engine_result_message,omitempty"`
	DestinationBalance  string `json:"destination_balance,omitempty"`

	Timestamp   time.Time `json:"timestamp"`
	PublishedAt time.Time `json:"published_at"`
}

// FromOutcome converts a batch outcome to its published form.
func FromOutcome(o *batch.Outcome) *OutcomeEvent {
	event := &OutcomeEvent{
		RunID:               o.RunID,
		Mode:                string(o.Mode),
		Source:              o.Source,
		Destination:         o.Destination,
		Amount:              o.Amount.String(),
		Status:              string(o.Status),
		SkipReason:          string(o.SkipReason),
		EngineResult:        o.EngineResult,
		EngineResultMessage: o.EngineResultMessage,
		Timestamp:           o.Timestamp,
		PublishedAt:         time.Now().UTC(),
	}
	if o.DestinationBalance != nil {
		event.DestinationBalance = *o.DestinationBalance
	}
	return event
}
