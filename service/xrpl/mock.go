package xrpl

import (
	"context"
	"sync"
)

// MockClient is a Client for tests. It is behavior-focused: configure the
// lines each address should report and the result each submission should
// return, then assert on the recorded intents afterwards.
type MockClient struct {
	mu sync.RWMutex

	// linesByAddress maps address -> trustline snapshot.
	linesByAddress map[string][]TrustLine

	// linesErr, if set, is returned from every AccountLines call.
	linesErr error

	// submitResults is consumed one per SubmitPayment call; when
	// exhausted, defaultResult is returned.
	submitResults []SubmitResult
	defaultResult SubmitResult

	// submitErr, if set, is returned from every SubmitPayment call.
	submitErr error

	pingErr error

	submittedIntents []TransferIntent
	linesQueries     []string
}

// NewMockClient creates a mock whose submissions succeed by default.
func NewMockClient() *MockClient {
	return &MockClient{
		linesByAddress: make(map[string][]TrustLine),
		defaultResult: SubmitResult{
			EngineResult:        EngineResultSuccess,
			EngineResultMessage: "The transaction was applied.",
		},
	}
}

// SetLines configures the trustline snapshot returned for an address.
func (m *MockClient) SetLines(address string, lines []TrustLine) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.linesByAddress[address] = lines
}

// SetLinesError configures AccountLines to fail.
func (m *MockClient) SetLinesError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.linesErr = err
}

// QueueSubmitResult appends a result to be returned by the next unconsumed
// SubmitPayment call.
func (m *MockClient) QueueSubmitResult(r SubmitResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submitResults = append(m.submitResults, r)
}

// SetSubmitError configures SubmitPayment to fail.
func (m *MockClient) SetSubmitError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submitErr = err
}

// SetPingError configures Ping to fail.
func (m *MockClient) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingErr = err
}

func (m *MockClient) AccountLines(ctx context.Context, address string) ([]TrustLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.linesQueries = append(m.linesQueries, address)
	if m.linesErr != nil {
		return nil, m.linesErr
	}

	lines := m.linesByAddress[address]
	out := make([]TrustLine, len(lines))
	copy(out, lines)
	return out, nil
}

func (m *MockClient) SubmitPayment(ctx context.Context, intent TransferIntent) (SubmitResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.submittedIntents = append(m.submittedIntents, intent)
	if m.submitErr != nil {
		return SubmitResult{}, m.submitErr
	}

	if len(m.submitResults) > 0 {
		r := m.submitResults[0]
		m.submitResults = m.submitResults[1:]
		return r, nil
	}
	return m.defaultResult, nil
}

func (m *MockClient) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingErr
}

func (m *MockClient) Close() error { return nil }

// SubmittedIntents returns a copy of every intent passed to SubmitPayment.
func (m *MockClient) SubmittedIntents() []TransferIntent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]TransferIntent, len(m.submittedIntents))
	copy(out, m.submittedIntents)
	return out
}

// LinesQueries returns the addresses queried via AccountLines, in order.
func (m *MockClient) LinesQueries() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.linesQueries))
	copy(out, m.linesQueries)
	return out
}
