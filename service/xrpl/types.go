package xrpl

import "github.com/shopspring/decimal"

// EngineResultSuccess is the one engine result the XRPL reports for a
// transaction that was applied. Every other code is a failure as far as a
// batch run is concerned.
const EngineResultSuccess = "tesSUCCESS"

// AccountIdentity is a resolved account capable of signing payments.
// The signing handle is opaque to callers; only the adapter in this package
// ever looks inside it. The address is deterministic for a given secret and
// key algorithm.
type AccountIdentity struct {
	Address string

	// signer is the underlying wallet handle. Unexported so the
	// orchestration layer can never reach the key material.
	signer any
}

// NewIdentity creates an identity with no signing capability. Useful where
// only address semantics matter (destination bookkeeping, tests against
// MockClient); the real adapter rejects it at submission time.
func NewIdentity(address string) AccountIdentity {
	return AccountIdentity{Address: address}
}

// TrustLine is a snapshot of one issued-currency trust relationship as
// reported by account_lines. It is stale the moment it is returned; callers
// must re-query rather than cache across submissions.
type TrustLine struct {
	// Account is the counterparty (issuer) account.
	Account string

	// Currency is the raw currency identifier exactly as the ledger
	// reports it: either a 3-letter code or a 40-char hex symbol. All
	// matching and amount construction uses this raw form.
	Currency string

	// Balance is the decimal balance string at query time.
	Balance string
}

// TransferIntent describes one issued-currency payment to build, sign, and
// submit. Constructed per participant and consumed exactly once.
type TransferIntent struct {
	Source      AccountIdentity
	Currency    string
	Issuer      string
	Amount      decimal.Decimal
	Destination string
}

// SubmitResult is the ledger's verdict on a submitted transaction.
type SubmitResult struct {
	// EngineResult is the machine-readable result code, e.g. "tesSUCCESS"
	// or "tecUNFUNDED_PAYMENT".
	EngineResult string

	// EngineResultMessage is the human-readable explanation.
	EngineResultMessage string
}

// Applied reports whether the ledger accepted the transaction.
func (r SubmitResult) Applied() bool {
	return r.EngineResult == EngineResultSuccess
}
