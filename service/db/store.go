package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/jplaskett/trustsweep/service/batch"
)

// Store provides the outcome audit database. Recording is optional: runs
// work without a database, but when DATABASE_URL is set every outcome of
// every batch pass is persisted for later inspection.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a Store with the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// BatchRun is one recorded batch pass.
type BatchRun struct {
	ID        string
	Mode      string
	Issuer    string
	Currency  string
	StartedAt time.Time
}

// OutcomeRow is one persisted participant outcome.
type OutcomeRow struct {
	ID                  int64
	RunID               string
	Mode                string
	Source              string
	Destination         string
	Amount              string
	Status              string
	SkipReason          *string
	EngineResult        *string
	EngineResultMessage *string
	DestinationBalance  *string
	CreatedAt           time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS batch_runs (
	id UUID PRIMARY KEY,
	mode TEXT NOT NULL,
	issuer TEXT NOT NULL,
	currency TEXT NOT NULL,
	started_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS transfer_outcomes (
	id BIGSERIAL PRIMARY KEY,
	run_id UUID NOT NULL,
	mode TEXT NOT NULL,
	source TEXT NOT NULL,
	destination TEXT NOT NULL,
	amount TEXT NOT NULL,
	status TEXT NOT NULL,
	skip_reason TEXT,
	engine_result TEXT,
	engine_result_message TEXT,
	destination_balance TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS transfer_outcomes_run_id_idx ON transfer_outcomes (run_id);
`

// EnsureSchema creates the audit tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure audit schema: %w", err)
	}
	return nil
}

// CreateBatchRun records the start of a batch pass.
func (s *Store) CreateBatchRun(ctx context.Context, run BatchRun) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO batch_runs (id, mode, issuer, currency) VALUES ($1, $2, $3, $4)`,
		run.ID, run.Mode, run.Issuer, run.Currency,
	)
	if err != nil {
		return fmt.Errorf("create batch run %s: %w", run.ID, err)
	}
	return nil
}

// RecordOutcome persists one participant outcome.
func (s *Store) RecordOutcome(ctx context.Context, o *batch.Outcome) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO transfer_outcomes
			(run_id, mode, source, destination, amount, status,
			 skip_reason, engine_result, engine_result_message, destination_balance)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		o.RunID,
		string(o.Mode),
		o.Source,
		o.Destination,
		o.Amount.String(),
		string(o.Status),
		nullable(string(o.SkipReason)),
		nullable(o.EngineResult),
		nullable(o.EngineResultMessage),
		o.DestinationBalance,
	)
	if err != nil {
		return fmt.Errorf("record outcome for %s: %w", o.Source, err)
	}
	return nil
}

// ListRuns returns the most recent batch runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int32) ([]*BatchRun, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, mode, issuer, currency, started_at
		 FROM batch_runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list batch runs: %w", err)
	}
	defer rows.Close()

	var runs []*BatchRun
	for rows.Next() {
		r := &BatchRun{}
		if err := rows.Scan(&r.ID, &r.Mode, &r.Issuer, &r.Currency, &r.StartedAt); err != nil {
			return nil, fmt.Errorf("scan batch run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// ListOutcomes returns a run's outcomes in submission order.
func (s *Store) ListOutcomes(ctx context.Context, runID string, limit int32) ([]*OutcomeRow, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, run_id, mode, source, destination, amount, status,
			skip_reason, engine_result, engine_result_message, destination_balance, created_at
		 FROM transfer_outcomes WHERE run_id = $1 ORDER BY id ASC LIMIT $2`,
		runID, limit)
	if err != nil {
		return nil, fmt.Errorf("list outcomes for run %s: %w", runID, err)
	}
	defer rows.Close()

	var outcomes []*OutcomeRow
	for rows.Next() {
		o := &OutcomeRow{}
		if err := rows.Scan(
			&o.ID, &o.RunID, &o.Mode, &o.Source, &o.Destination, &o.Amount, &o.Status,
			&o.SkipReason, &o.EngineResult, &o.EngineResultMessage, &o.DestinationBalance, &o.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, rows.Err()
}

// CountOutcomesByStatus summarises a run for reporting.
func (s *Store) CountOutcomesByStatus(ctx context.Context, runID string) (map[string]int64, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT status, count(*) FROM transfer_outcomes WHERE run_id = $1 GROUP BY status`,
		runID)
	if err != nil {
		return nil, fmt.Errorf("count outcomes for run %s: %w", runID, err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan outcome count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// nullable maps an empty string to SQL NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// AmountDecimal parses the stored amount string back into a decimal.
func (o *OutcomeRow) AmountDecimal() (decimal.Decimal, error) {
	return decimal.NewFromString(o.Amount)
}
