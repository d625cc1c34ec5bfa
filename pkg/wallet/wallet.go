// Package wallet defines the BRC-100 wallet collaborator interface the
// builder drives, the action-request wire types, and an in-process HD
// wallet used by tests and the CLI.
package wallet

import (
	"context"
	"errors"
)

// SecurityLevel is the first element of a BRC-43 protocol ID.
type SecurityLevel int

const (
	SecurityLevelSilent                  SecurityLevel = 0
	SecurityLevelEveryApp                SecurityLevel = 1
	SecurityLevelEveryAppAndCounterparty SecurityLevel = 2
)

// Protocol identifies a key-derivation protocol: a security level plus a
// protocol name.
type Protocol struct {
	SecurityLevel SecurityLevel `json:"securityLevel"`
	Name          string        `json:"protocol"`
}

// DerivationParams identifies a key the wallet can produce. Immutable
// once attached to an input or output config.
type DerivationParams struct {
	ProtocolID   Protocol `json:"protocolID"`
	KeyID        string   `json:"keyID"`
	Counterparty string   `json:"counterparty"`
}

// SelfDerivation is the wallet-less default used when a P2PKH lock is
// requested with a wallet attached but no explicit key source.
func SelfDerivation() DerivationParams {
	return DerivationParams{
		ProtocolID:   Protocol{SecurityLevel: SecurityLevelEveryAppAndCounterparty, Name: "p2pkh"},
		KeyID:        "0",
		Counterparty: "self",
	}
}

// GetPublicKeyArgs asks the wallet for a derived public key.
type GetPublicKeyArgs struct {
	DerivationParams
}

// GetPublicKeyResult carries the compressed public key as hex.
type GetPublicKeyResult struct {
	PublicKey string `json:"publicKey"`
}

// CreateSignatureArgs asks the wallet to sign a 32-byte digest directly
// under the given derivation.
type CreateSignatureArgs struct {
	DerivationParams
	HashToDirectlySign []byte `json:"hashToDirectlySign"`
}

// CreateSignatureResult carries the DER-encoded signature as hex.
type CreateSignatureResult struct {
	Signature string `json:"signature"`
}

// ActionInput is one input of a wallet action request.
type ActionInput struct {
	Outpoint         string `json:"outpoint"`
	InputDescription string `json:"inputDescription"`
	UnlockingScript  string `json:"unlockingScript"`
}

// ActionOutput is one output of a wallet action request.
type ActionOutput struct {
	LockingScript      string `json:"lockingScript"`
	Satoshis           uint64 `json:"satoshis"`
	OutputDescription  string `json:"outputDescription"`
	CustomInstructions string `json:"customInstructions,omitempty"`
	Basket             string `json:"basket,omitempty"`
}

// CreateActionArgs is the createAction request wire shape.
type CreateActionArgs struct {
	Description string         `json:"description"`
	InputBEEF   []byte         `json:"inputBEEF,omitempty"`
	Inputs      []ActionInput  `json:"inputs,omitempty"`
	Outputs     []ActionOutput `json:"outputs"`
	Options     *ActionOptions `json:"options,omitempty"`
}

// CreateActionResult is the wallet's response to createAction.
type CreateActionResult struct {
	Txid string `json:"txid"`
	Tx   []byte `json:"tx,omitempty"`
}

// ErrNoWallet is returned when an operation needs a wallet and none is
// attached.
var ErrNoWallet = errors.New("no wallet attached")

// Wallet is the BRC-100 capability set the builder and templates
// consume. Implementations are external; MemoryWallet is an in-process
// stand-in for tests and tooling.
type Wallet interface {
	GetPublicKey(ctx context.Context, args GetPublicKeyArgs) (*GetPublicKeyResult, error)
	CreateSignature(ctx context.Context, args CreateSignatureArgs) (*CreateSignatureResult, error)
	CreateAction(ctx context.Context, args CreateActionArgs) (*CreateActionResult, error)
}
