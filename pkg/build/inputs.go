package build

import (
	"github.com/bsv-blockchain/bsv-wallet-helper-sub000/pkg/script"
	"github.com/bsv-blockchain/bsv-wallet-helper-sub000/pkg/tx"
	"github.com/bsv-blockchain/bsv-wallet-helper-sub000/pkg/types"
	"github.com/bsv-blockchain/bsv-wallet-helper-sub000/pkg/wallet"
)

type inputKind int

const (
	inputP2PKH inputKind = iota + 1
	inputOrdinal
	inputCustom
)

// inputConfig is one accumulated input record, owned by the builder.
type inputConfig struct {
	kind              inputKind
	sourceTransaction *tx.Transaction
	sourceBEEF        []byte
	sourceTxid        types.Hash
	sourceOutputIndex uint32
	sourceSatoshis    *uint64
	lockingScript     script.Script
	derivation        *wallet.DerivationParams
	signOutputs       tx.SignOutputs
	anyoneCanPay      bool
	unlocker          tx.Unlocker
	unlockingScript   script.Script
	description       string
}

// P2PKHInput configures a P2PKH or ordinal-P2PKH input. Either
// SourceTransaction or the SourceTxid plus SourceSatoshis and
// LockingScript overrides must resolve before signing.
type P2PKHInput struct {
	SourceTransaction *tx.Transaction
	SourceBEEF        []byte
	SourceTxid        types.Hash
	SourceOutputIndex uint32
	SourceSatoshis    *uint64
	LockingScript     script.Script
	Derivation        *wallet.DerivationParams
	SignOutputs       tx.SignOutputs
	AnyoneCanPay      bool
}

// CustomInput configures an input whose unlocking the caller controls,
// either through a ready unlocking script or an Unlocker.
type CustomInput struct {
	SourceTransaction *tx.Transaction
	SourceBEEF        []byte
	SourceTxid        types.Hash
	SourceOutputIndex uint32
	SourceSatoshis    *uint64
	LockingScript     script.Script
	Unlocker          tx.Unlocker
	UnlockingScript   script.Script
}

// InputHandle mutates one accumulated input by index. Handles stay
// valid until Build or Preview runs.
type InputHandle struct {
	b     *Builder
	index int
}

// Index returns the input's position in the transaction.
func (h InputHandle) Index() int { return h.index }

// Description sets the per-input description sent to the wallet.
func (h InputHandle) Description(s string) InputHandle {
	h.b.inputs[h.index].description = s
	return h
}

// AddP2PKHInput accumulates a P2PKH input.
func (b *Builder) AddP2PKHInput(in P2PKHInput) InputHandle {
	return b.appendInput(inputP2PKH, in)
}

// AddOrdinalInput accumulates an ordinal-P2PKH input. Spending is plain
// P2PKH; the kind only distinguishes the record.
func (b *Builder) AddOrdinalInput(in P2PKHInput) InputHandle {
	return b.appendInput(inputOrdinal, in)
}

func (b *Builder) appendInput(kind inputKind, in P2PKHInput) InputHandle {
	b.inputs = append(b.inputs, &inputConfig{
		kind:              kind,
		sourceTransaction: in.SourceTransaction,
		sourceBEEF:        in.SourceBEEF,
		sourceTxid:        in.SourceTxid,
		sourceOutputIndex: in.SourceOutputIndex,
		sourceSatoshis:    in.SourceSatoshis,
		lockingScript:     in.LockingScript,
		derivation:        in.Derivation,
		signOutputs:       in.SignOutputs,
		anyoneCanPay:      in.AnyoneCanPay,
	})
	return InputHandle{b: b, index: len(b.inputs) - 1}
}

// AddCustomInput accumulates an input with caller-supplied unlocking.
func (b *Builder) AddCustomInput(in CustomInput) InputHandle {
	b.inputs = append(b.inputs, &inputConfig{
		kind:              inputCustom,
		sourceTransaction: in.SourceTransaction,
		sourceBEEF:        in.SourceBEEF,
		sourceTxid:        in.SourceTxid,
		sourceOutputIndex: in.SourceOutputIndex,
		sourceSatoshis:    in.SourceSatoshis,
		lockingScript:     in.LockingScript,
		unlocker:          in.Unlocker,
		unlockingScript:   in.UnlockingScript,
	})
	return InputHandle{b: b, index: len(b.inputs) - 1}
}

// resolvedTxid returns the spent transaction's id, preferring the
// attached source transaction.
func (c *inputConfig) resolvedTxid() types.Hash {
	if c.sourceTransaction != nil {
		return c.sourceTransaction.TxID()
	}
	return c.sourceTxid
}
