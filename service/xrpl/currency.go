package xrpl

import (
	"encoding/hex"
	"strings"
	"unicode"
)

// CurrencyName is the result of best-effort currency identifier decoding.
// Raw is always the identifier exactly as the ledger reported it and is the
// only field safe for matching; Display is for human output.
type CurrencyName struct {
	// Raw is the on-ledger identifier (3-letter code or hex symbol).
	Raw string

	// Display is the decoded symbol when Decoded is true, otherwise Raw.
	Display string

	// Decoded reports whether Display came from hex decoding.
	Decoded bool
}

// DecodeCurrency interprets a currency identifier for display. Standard
// 3-letter codes pass through unchanged. Longer identifiers are treated as
// hex-encoded symbols with trailing NUL padding stripped. Anything that
// fails to decode, or decodes to unprintable garbage, degrades to the raw
// identifier. This never fails: it is a display convenience only.
func DecodeCurrency(raw string) CurrencyName {
	name := CurrencyName{Raw: raw, Display: raw}

	// Standard codes are exactly 3 characters and already readable.
	if len(raw) == 3 {
		return name
	}

	decoded, err := hex.DecodeString(raw)
	if err != nil {
		return name
	}

	display := strings.TrimRight(string(decoded), "\x00")
	if display == "" || !printable(display) {
		return name
	}

	name.Display = display
	name.Decoded = true
	return name
}

func printable(s string) bool {
	for _, r := range s {
		if !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}
