package xrpl

import (
	"context"
	"errors"
	"fmt"
)

// ErrInvalidSecret is returned when a participant secret cannot be decoded
// under the configured key algorithm.
var ErrInvalidSecret = errors.New("invalid account secret")

// TransportError wraps a failure to reach the ledger endpoint. The batch
// orchestrators treat it as fatal, unlike a per-participant engine rejection.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("xrpl transport: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransportError reports whether err is (or wraps) a TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// Client is the narrow ledger surface the batch orchestrators depend on.
// The real implementation wraps an xrpl-go websocket client; tests use
// MockClient. Signing and wire encoding never leak past this interface.
type Client interface {
	// AccountLines queries the account's trustlines in ledger response
	// order. The returned slice is a point-in-time snapshot.
	AccountLines(ctx context.Context, address string) ([]TrustLine, error)

	// SubmitPayment builds an issued-currency Payment from the intent,
	// autofills and signs it with the source identity, submits the signed
	// blob, and returns the engine result. A non-success engine result is
	// NOT an error; only transport and signing failures are.
	SubmitPayment(ctx context.Context, intent TransferIntent) (SubmitResult, error)

	// Ping verifies the connection is usable. Called once at startup so a
	// dead endpoint fails the run before any participant is touched.
	Ping(ctx context.Context) error

	// Close releases the websocket connection.
	Close() error
}

// FindLine locates the trustline matching the (issuer, currency) pair.
// Matching is exact on the raw currency identifier, never on a decoded
// display name. Returns false when the account holds no such line.
func FindLine(lines []TrustLine, issuer, currency string) (TrustLine, bool) {
	for _, line := range lines {
		if line.Account == issuer && line.Currency == currency {
			return line, true
		}
	}
	return TrustLine{}, false
}
