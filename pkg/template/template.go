// Package template builds locking and unlocking scripts: plain P2PKH,
// ordinal-inscribed P2PKH with MAP metadata, and OrdLock listing and
// purchase contracts. Templates that need keys or signatures call an
// injected wallet; lock paths that are given a hash or public key work
// without one.
package template

import (
	"context"
	"errors"
	"fmt"

	"github.com/bsv-blockchain/bsv-wallet-helper-sub000/pkg/crypto"
	"github.com/bsv-blockchain/bsv-wallet-helper-sub000/pkg/wallet"
)

// PubKeyHashSize is the length of a P2PKH public key hash.
const PubKeyHashSize = 20

// Lock key errors.
var (
	ErrLockKeyConflict = errors.New("lock key must set at most one of hash, public key or derivation")
	ErrNoLockKey       = errors.New("no lock key given and no wallet attached for the default derivation")
	ErrBadHashSize     = errors.New("public key hash must be 20 bytes")
)

// LockKey selects the key a lock commits to. At most one field may be
// set. An empty LockKey falls back to the wallet's default derivation
// when a wallet is attached.
type LockKey struct {
	// Hash is an explicit 20-byte public key hash.
	Hash []byte
	// PublicKeyHex is a compressed public key, hashed internally.
	PublicKeyHex string
	// Derivation asks the attached wallet for the public key.
	Derivation *wallet.DerivationParams
}

// resolveHash reduces a LockKey to the 20-byte hash a lock script
// commits to. Wallet-derived keys require w to be non-nil.
func resolveHash(ctx context.Context, w wallet.Wallet, key LockKey) ([]byte, error) {
	set := 0
	if key.Hash != nil {
		set++
	}
	if key.PublicKeyHex != "" {
		set++
	}
	if key.Derivation != nil {
		set++
	}
	if set > 1 {
		return nil, ErrLockKeyConflict
	}

	switch {
	case key.Hash != nil:
		if len(key.Hash) != PubKeyHashSize {
			return nil, fmt.Errorf("%w, got %d", ErrBadHashSize, len(key.Hash))
		}
		return key.Hash, nil
	case key.PublicKeyHex != "":
		pub, err := crypto.ParsePubKeyHex(key.PublicKeyHex)
		if err != nil {
			return nil, err
		}
		return crypto.Hash160(pub), nil
	}

	derivation := key.Derivation
	if derivation == nil {
		if w == nil {
			return nil, ErrNoLockKey
		}
		d := wallet.SelfDerivation()
		derivation = &d
	}
	if w == nil {
		return nil, wallet.ErrNoWallet
	}
	res, err := w.GetPublicKey(ctx, wallet.GetPublicKeyArgs{DerivationParams: *derivation})
	if err != nil {
		return nil, fmt.Errorf("wallet getPublicKey: %w", err)
	}
	pub, err := crypto.ParsePubKeyHex(res.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("wallet public key: %w", err)
	}
	return crypto.Hash160(pub), nil
}
