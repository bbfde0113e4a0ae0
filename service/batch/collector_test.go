package batch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jplaskett/trustsweep/service/xrpl"
)

const (
	testIssuer      = "rIssuerXXXXXXXXXXXXXXXXXXXXXXXXXXX"
	testCurrency    = "534F4C4F00000000000000000000000000000000"
	testDestination = "rDestinationYYYYYYYYYYYYYYYYYYYYYY"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubResolver resolves secrets from a fixed map; unknown secrets behave
// like undecodable ones.
func stubResolver(addresses map[string]string) Resolver {
	return func(secret string) (xrpl.AccountIdentity, error) {
		addr, ok := addresses[secret]
		if !ok {
			return xrpl.AccountIdentity{}, xrpl.ErrInvalidSecret
		}
		return xrpl.NewIdentity(addr), nil
	}
}

func collectConfig(t *testing.T, retain string) CollectConfig {
	return CollectConfig{
		Issuer:      testIssuer,
		Currency:    testCurrency,
		Retain:      dec(t, retain),
		Destination: testDestination,
	}
}

func newTestCollector(mock *xrpl.MockClient, resolver Resolver, sinks ...OutcomeSink) *Collector {
	return NewCollector(mock, nil, testLogger(), sinks...).WithResolver(resolver)
}

func TestCollectorSweepsBalanceMinusRetain(t *testing.T) {
	mock := xrpl.NewMockClient()
	mock.SetLines("rSourceA", []xrpl.TrustLine{
		{Account: testIssuer, Currency: testCurrency, Balance: "100.000000000000000"},
	})

	collector := newTestCollector(mock, stubResolver(map[string]string{"sA": "rSourceA"}))
	outcomes, err := collector.Run(context.Background(), collectConfig(t, "25.5"), []string{"sA"})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)

	assert.Equal(t, StatusSucceeded, outcomes[0].Status)
	assert.Equal(t, "rSourceA", outcomes[0].Source)
	assert.Equal(t, testDestination, outcomes[0].Destination)
	assert.Equal(t, "74.5", outcomes[0].Amount.String())
	assert.Equal(t, xrpl.EngineResultSuccess, outcomes[0].EngineResult)

	intents := mock.SubmittedIntents()
	require.Len(t, intents, 1)
	assert.Equal(t, "74.5", intents[0].Amount.String())
	assert.Equal(t, testCurrency, intents[0].Currency)
	assert.Equal(t, testIssuer, intents[0].Issuer)
}

func TestCollectorSkipsInsufficientBalance(t *testing.T) {
	mock := xrpl.NewMockClient()
	mock.SetLines("rSourceA", []xrpl.TrustLine{
		{Account: testIssuer, Currency: testCurrency, Balance: "10"},
	})

	collector := newTestCollector(mock, stubResolver(map[string]string{"sA": "rSourceA"}))
	outcomes, err := collector.Run(context.Background(), collectConfig(t, "25.5"), []string{"sA"})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)

	assert.Equal(t, StatusSkipped, outcomes[0].Status)
	assert.Equal(t, SkipInsufficientBalance, outcomes[0].SkipReason)

	// A non-positive sendable amount must never reach submission.
	assert.Empty(t, mock.SubmittedIntents())
}

func TestCollectorSkipsInvalidSecret(t *testing.T) {
	mock := xrpl.NewMockClient()
	mock.SetLines("rSourceB", []xrpl.TrustLine{
		{Account: testIssuer, Currency: testCurrency, Balance: "50"},
	})

	collector := newTestCollector(mock, stubResolver(map[string]string{"sB": "rSourceB"}))
	outcomes, err := collector.Run(context.Background(), collectConfig(t, "0"),
		[]string{"garbage", "sB"})
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	assert.Equal(t, StatusSkipped, outcomes[0].Status)
	assert.Equal(t, SkipInvalidSecret, outcomes[0].SkipReason)

	// One bad credential never stops the batch.
	assert.Equal(t, StatusSucceeded, outcomes[1].Status)
	require.Len(t, mock.SubmittedIntents(), 1)
}

func TestCollectorSelfTransferGuard(t *testing.T) {
	mock := xrpl.NewMockClient()
	collector := newTestCollector(mock, stubResolver(map[string]string{"sSelf": testDestination}))

	outcomes, err := collector.Run(context.Background(), collectConfig(t, "0"), []string{"sSelf"})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)

	assert.Equal(t, StatusSkipped, outcomes[0].Status)
	assert.Equal(t, SkipSelfTransfer, outcomes[0].SkipReason)

	// Guarded before any ledger traffic: no line query, no submission.
	assert.Empty(t, mock.LinesQueries())
	assert.Empty(t, mock.SubmittedIntents())
}

func TestCollectorSkipsAbsentTrustline(t *testing.T) {
	mock := xrpl.NewMockClient()
	mock.SetLines("rSourceA", []xrpl.TrustLine{
		{Account: testIssuer, Currency: "USD", Balance: "999"},
	})

	collector := newTestCollector(mock, stubResolver(map[string]string{"sA": "rSourceA"}))
	outcomes, err := collector.Run(context.Background(), collectConfig(t, "0"), []string{"sA"})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)

	assert.Equal(t, StatusSkipped, outcomes[0].Status)
	assert.Equal(t, SkipTrustlineAbsent, outcomes[0].SkipReason)
	assert.Empty(t, mock.SubmittedIntents())
}

func TestCollectorClassifiesEngineRejection(t *testing.T) {
	mock := xrpl.NewMockClient()
	mock.SetLines("rSourceA", []xrpl.TrustLine{
		{Account: testIssuer, Currency: testCurrency, Balance: "50"},
	})
	mock.SetLines("rSourceB", []xrpl.TrustLine{
		{Account: testIssuer, Currency: testCurrency, Balance: "60"},
	})
	mock.QueueSubmitResult(xrpl.SubmitResult{
		EngineResult:        "tecUNFUNDED_PAYMENT",
		EngineResultMessage: "Insufficient balance to fund payment.",
	})

	collector := newTestCollector(mock, stubResolver(map[string]string{
		"sA": "rSourceA",
		"sB": "rSourceB",
	}))
	outcomes, err := collector.Run(context.Background(), collectConfig(t, "0"), []string{"sA", "sB"})
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	assert.Equal(t, StatusFailed, outcomes[0].Status)
	assert.Equal(t, "tecUNFUNDED_PAYMENT", outcomes[0].EngineResult)
	assert.Equal(t, "Insufficient balance to fund payment.", outcomes[0].EngineResultMessage)

	// The rejection is terminal for that participant only; the batch moves
	// on and each participant gets exactly one attempt.
	assert.Equal(t, StatusSucceeded, outcomes[1].Status)
	assert.Len(t, mock.SubmittedIntents(), 2)
}

func TestCollectorTransportLossIsBatchFatal(t *testing.T) {
	mock := xrpl.NewMockClient()
	mock.SetLinesError(&xrpl.TransportError{Op: "account_lines", Err: context.DeadlineExceeded})

	collector := newTestCollector(mock, stubResolver(map[string]string{
		"sA": "rSourceA",
		"sB": "rSourceB",
	}))
	outcomes, err := collector.Run(context.Background(), collectConfig(t, "0"), []string{"sA", "sB"})
	require.Error(t, err)
	assert.True(t, xrpl.IsTransportError(err))

	// The failing participant is still reported; the rest are untouched.
	require.Len(t, outcomes, 1)
	assert.Equal(t, StatusFailed, outcomes[0].Status)
	assert.Empty(t, mock.SubmittedIntents())
}

func TestCollectorNonTransportQueryErrorIsIsolated(t *testing.T) {
	mock := xrpl.NewMockClient()
	mock.SetLinesError(errors.New("actNotFound"))

	collector := newTestCollector(mock, stubResolver(map[string]string{
		"sA": "rSourceA",
		"sB": "rSourceB",
	}))
	outcomes, err := collector.Run(context.Background(), collectConfig(t, "0"), []string{"sA", "sB"})
	require.NoError(t, err)

	// Only transport loss is batch-fatal; a query the endpoint rejects
	// fails that participant and the batch keeps going.
	require.Len(t, outcomes, 2)
	assert.Equal(t, StatusFailed, outcomes[0].Status)
	assert.Equal(t, StatusFailed, outcomes[1].Status)
	assert.Empty(t, mock.SubmittedIntents())
}

func TestCollectorEmptyParticipantList(t *testing.T) {
	collector := newTestCollector(xrpl.NewMockClient(), stubResolver(nil))
	_, err := collector.Run(context.Background(), collectConfig(t, "0"), nil)
	assert.ErrorIs(t, err, ErrNoParticipants)
}

func TestCollectorPacesOnlyAfterSuccess(t *testing.T) {
	mock := xrpl.NewMockClient()
	for _, addr := range []string{"rSourceA", "rSourceB", "rSourceC"} {
		mock.SetLines(addr, []xrpl.TrustLine{
			{Account: testIssuer, Currency: testCurrency, Balance: "50"},
		})
	}
	// All three submissions rejected: the batch must not slow down.
	for range 3 {
		mock.QueueSubmitResult(xrpl.SubmitResult{EngineResult: "telINSUF_FEE_P"})
	}

	cfg := collectConfig(t, "0")
	cfg.Delay = 300 * time.Millisecond

	collector := newTestCollector(mock, stubResolver(map[string]string{
		"sA": "rSourceA", "sB": "rSourceB", "sC": "rSourceC",
	}))

	start := time.Now()
	outcomes, err := collector.Run(context.Background(), cfg, []string{"sA", "sB", "sC"})
	elapsed := time.Since(start)

	require.NoError(t, err)
	require.Len(t, outcomes, 3)
	for _, o := range outcomes {
		assert.Equal(t, StatusFailed, o.Status)
	}
	assert.Less(t, elapsed, 200*time.Millisecond,
		"failed submissions must advance without the inter-submission delay")
}

func TestCollectorOutcomesReachSinks(t *testing.T) {
	mock := xrpl.NewMockClient()
	mock.SetLines("rSourceA", []xrpl.TrustLine{
		{Account: testIssuer, Currency: testCurrency, Balance: "50"},
	})

	sink := &captureSink{}
	collector := newTestCollector(mock, stubResolver(map[string]string{"sA": "rSourceA"}), sink,
		NewLogSink(testLogger()))

	outcomes, err := collector.Run(context.Background(), collectConfig(t, "0"),
		[]string{"garbage", "sA"})
	require.NoError(t, err)

	// Every participant gets a reported outcome, skips included.
	require.Len(t, sink.records, 2)
	assert.Equal(t, outcomes[0].SkipReason, sink.records[0].SkipReason)
	assert.Equal(t, outcomes[1].Status, sink.records[1].Status)
	assert.Equal(t, outcomes[0].RunID, outcomes[1].RunID)
}

// captureSink records outcomes for assertions.
type captureSink struct {
	records []Outcome
	err     error
}

func (s *captureSink) Name() string { return "capture" }

func (s *captureSink) Record(_ context.Context, o *Outcome) error {
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, *o)
	return nil
}

func TestCollectorSinkFailureDoesNotStopBatch(t *testing.T) {
	mock := xrpl.NewMockClient()
	mock.SetLines("rSourceA", []xrpl.TrustLine{
		{Account: testIssuer, Currency: testCurrency, Balance: "50"},
	})

	broken := &captureSink{err: assert.AnError}
	collector := newTestCollector(mock, stubResolver(map[string]string{"sA": "rSourceA"}), broken)

	outcomes, err := collector.Run(context.Background(), collectConfig(t, "0"), []string{"sA"})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, StatusSucceeded, outcomes[0].Status)
}
