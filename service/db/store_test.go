package db

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jplaskett/trustsweep/service/batch"
)

func TestRecordAndListOutcomes(t *testing.T) {
	SkipIfNoTestDB(t)

	store := NewTestStore(t)
	defer store.Close()
	defer store.Cleanup(t)

	ctx := context.Background()
	runID := uuid.NewString()

	require.NoError(t, store.CreateBatchRun(ctx, BatchRun{
		ID:       runID,
		Mode:     "collect",
		Issuer:   "rIssuerXXXXXXXXXXXXXXXXXXXXXXXXXXX",
		Currency: "USD",
	}))

	amount, err := decimal.NewFromString("74.5")
	require.NoError(t, err)

	succeeded := &batch.Outcome{
		RunID:        runID,
		Mode:         batch.ModeCollect,
		Source:       "rSourceA",
		Destination:  "rDestB",
		Amount:       amount,
		Status:       batch.StatusSucceeded,
		EngineResult: "tesSUCCESS",
	}
	skipped := &batch.Outcome{
		RunID:       runID,
		Mode:        batch.ModeCollect,
		Source:      "rSourceC",
		Destination: "rDestB",
		Status:      batch.StatusSkipped,
		SkipReason:  batch.SkipTrustlineAbsent,
	}

	require.NoError(t, store.RecordOutcome(ctx, succeeded))
	require.NoError(t, store.RecordOutcome(ctx, skipped))

	outcomes, err := store.ListOutcomes(ctx, runID, 10)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	assert.Equal(t, "rSourceA", outcomes[0].Source)
	assert.Equal(t, "74.5", outcomes[0].Amount)
	parsed, err := outcomes[0].AmountDecimal()
	require.NoError(t, err)
	assert.True(t, amount.Equal(parsed))
	assert.Equal(t, "succeeded", outcomes[0].Status)
	require.NotNil(t, outcomes[0].EngineResult)
	assert.Equal(t, "tesSUCCESS", *outcomes[0].EngineResult)
	assert.Nil(t, outcomes[0].SkipReason)

	assert.Equal(t, "skipped", outcomes[1].Status)
	require.NotNil(t, outcomes[1].SkipReason)
	assert.Equal(t, "trustline_absent", *outcomes[1].SkipReason)

	counts, err := store.CountOutcomesByStatus(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts["succeeded"])
	assert.Equal(t, int64(1), counts["skipped"])
}

func TestListRuns(t *testing.T) {
	SkipIfNoTestDB(t)

	store := NewTestStore(t)
	defer store.Close()
	defer store.Cleanup(t)

	ctx := context.Background()
	for _, mode := range []string{"collect", "distribute"} {
		require.NoError(t, store.CreateBatchRun(ctx, BatchRun{
			ID:       uuid.NewString(),
			Mode:     mode,
			Issuer:   "rIssuerXXXXXXXXXXXXXXXXXXXXXXXXXXX",
			Currency: "USD",
		}))
	}

	runs, err := store.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
}
