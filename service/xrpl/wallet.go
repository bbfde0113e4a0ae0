package xrpl

import (
	"fmt"

	"github.com/Peersyst/xrpl-go/xrpl/wallet"
)

// ResolveSecret derives a signing identity from a participant secret.
// The key algorithm is pinned by the seed encoding itself (classic "s..."
// seeds derive secp256k1, "sEd..." seeds derive ed25519), so the same secret
// always resolves to the same address. Any decode or derivation failure is
// reported as ErrInvalidSecret; the orchestrators treat that as a
// per-participant skip, never as batch-fatal.
func ResolveSecret(secret string) (AccountIdentity, error) {
	w, err := wallet.FromSecret(secret)
	if err != nil {
		return AccountIdentity{}, fmt.Errorf("%w: %v", ErrInvalidSecret, err)
	}

	return AccountIdentity{
		Address: string(w.ClassicAddress),
		signer:  &w,
	}, nil
}
