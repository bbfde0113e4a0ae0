package batch

import "github.com/shopspring/decimal"

// ledgerPrecision is the number of fractional decimal digits the XRPL
// accepts in an issued-currency amount.
const ledgerPrecision = 15

// ComputeSendable returns the amount a source account can sweep after
// keeping the retained reserve: truncate(balance - retain, 15 fractional
// digits). Truncation never rounds up, so the result can never exceed what
// the account actually holds. A non-positive result means the participant
// is skipped, not that the run failed.
func ComputeSendable(balance, retain decimal.Decimal) decimal.Decimal {
	return balance.Sub(retain).Truncate(ledgerPrecision)
}
