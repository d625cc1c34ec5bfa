package wallet

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/rs/zerolog"
	"github.com/tyler-smith/go-bip32"
	"github.com/tyler-smith/go-bip39"

	"github.com/bsv-blockchain/bsv-wallet-helper-sub000/internal/log"
	"github.com/bsv-blockchain/bsv-wallet-helper-sub000/pkg/tx"
	"github.com/bsv-blockchain/bsv-wallet-helper-sub000/pkg/types"
)

// MemoryWallet is an in-process Wallet backed by a BIP-32 root key. It
// exists for tests and the CLI; production callers wire a real BRC-100
// wallet instead.
//
// Key derivation maps (protocolID, keyID, counterparty) onto a pair of
// non-hardened child indexes. It is deterministic for a given root but
// is not BRC-42 point addition, so keys derived here are only reachable
// by holders of the same root.
type MemoryWallet struct {
	root   *bip32.Key
	logger zerolog.Logger
}

// NewMemoryWallet creates a wallet from a BIP-39 mnemonic and optional
// passphrase.
func NewMemoryWallet(mnemonic, passphrase string) (*MemoryWallet, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, errors.New("invalid mnemonic")
	}
	seed := bip39.NewSeed(mnemonic, passphrase)
	return NewMemoryWalletFromSeed(seed)
}

// NewMemoryWalletFromSeed creates a wallet directly from seed bytes.
func NewMemoryWalletFromSeed(seed []byte) (*MemoryWallet, error) {
	root, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, fmt.Errorf("derive master key: %w", err)
	}
	return &MemoryWallet{root: root, logger: log.Wallet}, nil
}

// GenerateMnemonic returns a fresh 12-word mnemonic.
func GenerateMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(128)
	if err != nil {
		return "", fmt.Errorf("generate entropy: %w", err)
	}
	return bip39.NewMnemonic(entropy)
}

// deriveKey resolves derivation params to a child private key. The
// params are hashed and two 31-bit indexes taken from the digest, so
// distinct (protocol, keyID, counterparty) triples land on distinct
// child paths.
func (w *MemoryWallet) deriveKey(p DerivationParams) (*secp256k1.PrivateKey, error) {
	tag := fmt.Sprintf("%d/%s/%s/%s", p.ProtocolID.SecurityLevel, p.ProtocolID.Name, p.KeyID, p.Counterparty)
	sum := sha256.Sum256([]byte(tag))
	first := binary.BigEndian.Uint32(sum[0:4]) &^ bip32.FirstHardenedChild
	second := binary.BigEndian.Uint32(sum[4:8]) &^ bip32.FirstHardenedChild

	child, err := w.root.NewChildKey(first)
	if err != nil {
		return nil, fmt.Errorf("derive child %d: %w", first, err)
	}
	child, err = child.NewChildKey(second)
	if err != nil {
		return nil, fmt.Errorf("derive child %d/%d: %w", first, second, err)
	}
	return secp256k1.PrivKeyFromBytes(child.Key), nil
}

// GetPublicKey returns the compressed public key for the derivation.
func (w *MemoryWallet) GetPublicKey(_ context.Context, args GetPublicKeyArgs) (*GetPublicKeyResult, error) {
	priv, err := w.deriveKey(args.DerivationParams)
	if err != nil {
		return nil, err
	}
	return &GetPublicKeyResult{
		PublicKey: hex.EncodeToString(priv.PubKey().SerializeCompressed()),
	}, nil
}

// CreateSignature signs the 32-byte digest directly (no extra hashing)
// and returns the DER encoding.
func (w *MemoryWallet) CreateSignature(_ context.Context, args CreateSignatureArgs) (*CreateSignatureResult, error) {
	if len(args.HashToDirectlySign) != sha256.Size {
		return nil, fmt.Errorf("hashToDirectlySign must be %d bytes, got %d", sha256.Size, len(args.HashToDirectlySign))
	}
	priv, err := w.deriveKey(args.DerivationParams)
	if err != nil {
		return nil, err
	}
	sig := ecdsa.Sign(priv, args.HashToDirectlySign)
	return &CreateSignatureResult{Signature: hex.EncodeToString(sig.Serialize())}, nil
}

// CreateAction assembles the described transaction and returns its txid
// and raw bytes. Inputs must arrive fully signed: this wallet holds no
// UTXO set, so it cannot fund or sign on the caller's behalf. Broadcast
// options are accepted and validated but there is no network to send to.
func (w *MemoryWallet) CreateAction(_ context.Context, args CreateActionArgs) (*CreateActionResult, error) {
	if args.Description == "" {
		return nil, errors.New("action description is required")
	}
	if len(args.Outputs) == 0 {
		return nil, errors.New("action requires at least one output")
	}
	if err := args.Options.Validate(); err != nil {
		return nil, fmt.Errorf("action options: %w", err)
	}

	t := tx.New()
	for i, in := range args.Inputs {
		op, err := types.ParseOutpoint(in.Outpoint)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		unlocking, err := hex.DecodeString(in.UnlockingScript)
		if err != nil {
			return nil, fmt.Errorf("input %d unlocking script: %w", i, err)
		}
		t.AddInput(&tx.Input{
			SourceTxid:      op.Txid,
			SourceIndex:     op.Index,
			UnlockingScript: unlocking,
		})
	}
	for i, out := range args.Outputs {
		locking, err := hex.DecodeString(out.LockingScript)
		if err != nil {
			return nil, fmt.Errorf("output %d locking script: %w", i, err)
		}
		t.AddOutput(&tx.Output{Satoshis: out.Satoshis, LockingScript: locking})
	}

	txid := t.TxID()
	w.logger.Info().
		Str("txid", txid.String()).
		Int("inputs", len(t.Inputs)).
		Int("outputs", len(t.Outputs)).
		Str("description", args.Description).
		Msg("action created")

	res := &CreateActionResult{Txid: txid.String()}
	if args.Options == nil || args.Options.ReturnTXIDOnly == nil || !*args.Options.ReturnTXIDOnly {
		res.Tx = t.Serialize()
	}
	return res, nil
}
