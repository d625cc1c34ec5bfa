package template

import (
	"context"
	"fmt"

	"github.com/bsv-blockchain/bsv-wallet-helper-sub000/pkg/crypto"
	"github.com/bsv-blockchain/bsv-wallet-helper-sub000/pkg/script"
	"github.com/bsv-blockchain/bsv-wallet-helper-sub000/pkg/tx"
	"github.com/bsv-blockchain/bsv-wallet-helper-sub000/pkg/wallet"
)

// P2PKHUnlockEstimate is the unlocking-script size estimate for P2PKH:
// a 73-byte signature plus push byte, a 33-byte compressed key plus push
// byte, and one slack byte. An upper bound; real DER signatures vary
// between 70 and 73 bytes.
const P2PKHUnlockEstimate = 108

// P2PKH builds standard pay-to-public-key-hash locks and unlocks.
type P2PKH struct {
	wallet wallet.Wallet
}

// NewP2PKH creates the template. The wallet may be nil when every lock
// supplies an explicit hash or public key and no unlocking is needed.
func NewP2PKH(w wallet.Wallet) *P2PKH {
	return &P2PKH{wallet: w}
}

// Lock builds OP_DUP OP_HASH160 <hash> OP_EQUALVERIFY OP_CHECKSIG for
// the resolved key.
func (p *P2PKH) Lock(ctx context.Context, key LockKey) (script.Script, error) {
	hash, err := resolveHash(ctx, p.wallet, key)
	if err != nil {
		return nil, err
	}
	s := script.Script{script.OpDUP, script.OpHASH160}
	s = script.AppendPushData(s, hash)
	return append(s, script.OpEQUALVERIFY, script.OpCHECKSIG), nil
}

// UnlockParams configures a P2PKH unlocker. A zero SignOutputs means
// sign-all.
type UnlockParams struct {
	Derivation   wallet.DerivationParams
	SignOutputs  tx.SignOutputs
	AnyoneCanPay bool
}

// Unlock returns an unlocker that signs with the wallet under the given
// derivation.
func (p *P2PKH) Unlock(params UnlockParams) (*P2PKHUnlocker, error) {
	if p.wallet == nil {
		return nil, wallet.ErrNoWallet
	}
	if params.SignOutputs == 0 {
		params.SignOutputs = tx.SignOutputsAll
	}
	return &P2PKHUnlocker{wallet: p.wallet, params: params}, nil
}

// P2PKHUnlocker produces <sig><pubkey> unlocking scripts.
type P2PKHUnlocker struct {
	wallet wallet.Wallet
	params UnlockParams
}

// Sign computes the sighash digest, has the wallet sign it, and emits
// the signature and public key pushes.
func (u *P2PKHUnlocker) Sign(ctx context.Context, t *tx.Transaction, inputIndex int) (script.Script, error) {
	digest, scope, err := tx.SighashDigest(t, inputIndex, u.params.SignOutputs, u.params.AnyoneCanPay)
	if err != nil {
		return nil, err
	}

	sigRes, err := u.wallet.CreateSignature(ctx, wallet.CreateSignatureArgs{
		DerivationParams:   u.params.Derivation,
		HashToDirectlySign: digest.Bytes(),
	})
	if err != nil {
		return nil, fmt.Errorf("wallet createSignature: %w", err)
	}
	sig, err := crypto.SigToChecksigFormat(sigRes.Signature, scope)
	if err != nil {
		return nil, err
	}

	pubRes, err := u.wallet.GetPublicKey(ctx, wallet.GetPublicKeyArgs{DerivationParams: u.params.Derivation})
	if err != nil {
		return nil, fmt.Errorf("wallet getPublicKey: %w", err)
	}
	pub, err := crypto.ParsePubKeyHex(pubRes.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("wallet public key: %w", err)
	}

	s := script.AppendPushData(nil, sig)
	return script.AppendPushData(s, pub), nil
}

// EstimateLength returns the constant P2PKH estimate.
func (u *P2PKHUnlocker) EstimateLength(context.Context, *tx.Transaction, int) (int, error) {
	return P2PKHUnlockEstimate, nil
}
