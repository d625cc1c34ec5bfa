// Package build assembles wallet action requests: it accumulates typed
// input and output configurations, resolves them to concrete scripts
// through the templates, computes fees, signs, and emits or submits the
// createAction request.
package build

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/bsv-blockchain/bsv-wallet-helper-sub000/internal/log"
	"github.com/bsv-blockchain/bsv-wallet-helper-sub000/pkg/script"
	"github.com/bsv-blockchain/bsv-wallet-helper-sub000/pkg/template"
	"github.com/bsv-blockchain/bsv-wallet-helper-sub000/pkg/tx"
	"github.com/bsv-blockchain/bsv-wallet-helper-sub000/pkg/types"
	"github.com/bsv-blockchain/bsv-wallet-helper-sub000/pkg/wallet"
)

// Build errors.
var (
	ErrAlreadyBuilt       = errors.New("builder already consumed: create a new one")
	ErrNoOutputs          = errors.New("at least one output is required")
	ErrChangeWithoutInput = errors.New("a change output requires at least one input")
	ErrNoUnlockSource     = errors.New("custom input has neither unlocker nor unlocking script")
)

// Builder accumulates inputs and outputs, then assembles the wallet
// action request in one terminal Build or Preview call. It owns every
// config record; handles address records by index and never hold their
// own copy. Not safe for concurrent use.
type Builder struct {
	wallet      wallet.Wallet
	p2pkh       *template.P2PKH
	ordinal     *template.OrdinalP2PKH
	logger      zerolog.Logger
	description string
	feeRate     uint64
	options     *wallet.ActionOptions
	inputs      []*inputConfig
	outputs     []*outputConfig
	built       bool
}

// New creates a builder bound to a wallet. The wallet may be nil when
// every output carries an explicit key or script and only Preview is
// used.
func New(w wallet.Wallet, description string) *Builder {
	p := template.NewP2PKH(w)
	return &Builder{
		wallet:      w,
		p2pkh:       p,
		ordinal:     template.NewOrdinalP2PKH(p),
		logger:      log.Build,
		description: description,
		feeRate:     tx.DefaultFeeRate,
	}
}

// FeeRate overrides the fee rate in satoshis per kilobyte.
func (b *Builder) FeeRate(satsPerKB uint64) *Builder {
	b.feeRate = satsPerKB
	return b
}

// Options validates and attaches action options.
func (b *Builder) Options(o *wallet.ActionOptions) error {
	if err := o.Validate(); err != nil {
		return err
	}
	b.options = o
	return nil
}

// Preview assembles the action request without submitting it. Terminal:
// the builder cannot be reused afterwards.
func (b *Builder) Preview(ctx context.Context) (*wallet.CreateActionArgs, error) {
	return b.assemble(ctx)
}

// Build assembles the action request and submits it to the wallet.
// Terminal like Preview.
func (b *Builder) Build(ctx context.Context) (*wallet.CreateActionResult, error) {
	args, err := b.assemble(ctx)
	if err != nil {
		return nil, err
	}
	if b.wallet == nil {
		return nil, wallet.ErrNoWallet
	}
	res, err := b.wallet.CreateAction(ctx, *args)
	if err != nil {
		return nil, fmt.Errorf("wallet createAction: %w", err)
	}
	b.logger.Info().
		Str("txid", res.Txid).
		Int("inputs", len(args.Inputs)).
		Int("outputs", len(args.Outputs)).
		Msg("action submitted")
	return res, nil
}

// assemble runs the one-shot build: shape checks first, then input
// unlockers, then output scripts, then fee, signing and back-fill, and
// finally the merged BEEF. Inputs and outputs are processed strictly in
// index order because derivation bookkeeping is positional.
func (b *Builder) assemble(ctx context.Context) (*wallet.CreateActionArgs, error) {
	if b.built {
		return nil, ErrAlreadyBuilt
	}
	b.built = true

	if len(b.outputs) == 0 {
		return nil, ErrNoOutputs
	}
	hasChange := false
	for _, out := range b.outputs {
		if out.kind == outputChange {
			hasChange = true
		}
	}
	if hasChange && len(b.inputs) == 0 {
		return nil, ErrChangeWithoutInput
	}
	if err := b.options.Validate(); err != nil {
		return nil, fmt.Errorf("action options: %w", err)
	}

	t := tx.New()
	actionInputs, err := b.resolveInputs(t)
	if err != nil {
		return nil, err
	}
	actionOutputs, err := b.resolveOutputs(ctx, t)
	if err != nil {
		return nil, err
	}

	if len(b.inputs) > 0 {
		if hasChange {
			if err := t.AllocateChange(ctx, b.feeRate); err != nil {
				return nil, err
			}
		}
		if err := t.Sign(ctx); err != nil {
			return nil, err
		}
		for i, in := range t.Inputs {
			actionInputs[i].UnlockingScript = in.UnlockingScript.Hex()
		}
		for i, out := range t.Outputs {
			actionOutputs[i].Satoshis = out.Satoshis
		}
	}

	inputBEEF, err := b.mergeSourceBEEF()
	if err != nil {
		return nil, err
	}

	args := &wallet.CreateActionArgs{
		Description: b.description,
		InputBEEF:   inputBEEF,
		Inputs:      actionInputs,
		Outputs:     actionOutputs,
		Options:     b.options,
	}
	b.logger.Debug().
		Int("inputs", len(args.Inputs)).
		Int("outputs", len(args.Outputs)).
		Msg("action assembled")
	return args, nil
}

// resolveInputs attaches every input to the transaction with its
// unlocker and records the action-request entries.
func (b *Builder) resolveInputs(t *tx.Transaction) ([]wallet.ActionInput, error) {
	var actionInputs []wallet.ActionInput
	for i, cfg := range b.inputs {
		in := &tx.Input{
			SourceTxid:          cfg.sourceTxid,
			SourceIndex:         cfg.sourceOutputIndex,
			SourceTransaction:   cfg.sourceTransaction,
			SourceSatoshis:      cfg.sourceSatoshis,
			SourceLockingScript: cfg.lockingScript,
		}

		switch cfg.kind {
		case inputP2PKH, inputOrdinal:
			derivation := cfg.derivation
			if derivation == nil {
				d := wallet.SelfDerivation()
				derivation = &d
			}
			unlocker, err := b.p2pkh.Unlock(template.UnlockParams{
				Derivation:   *derivation,
				SignOutputs:  cfg.signOutputs,
				AnyoneCanPay: cfg.anyoneCanPay,
			})
			if err != nil {
				return nil, fmt.Errorf("input %d: %w", i, err)
			}
			in.Unlocker = unlocker
		case inputCustom:
			switch {
			case cfg.unlocker != nil:
				in.Unlocker = cfg.unlocker
			case len(cfg.unlockingScript) > 0:
				in.UnlockingScript = cfg.unlockingScript
			default:
				return nil, fmt.Errorf("input %d: %w", i, ErrNoUnlockSource)
			}
		}

		t.AddInput(in)
		outpoint := types.Outpoint{Txid: cfg.resolvedTxid(), Index: cfg.sourceOutputIndex}
		actionInputs = append(actionInputs, wallet.ActionInput{
			Outpoint:         outpoint.String(),
			InputDescription: cfg.description,
		})
	}
	return actionInputs, nil
}

// resolveOutputs builds every output's locking script, auto-deriving
// ephemeral keys where none were given, and records the action-request
// entries.
func (b *Builder) resolveOutputs(ctx context.Context, t *tx.Transaction) ([]wallet.ActionOutput, error) {
	var actionOutputs []wallet.ActionOutput
	for i, cfg := range b.outputs {
		if cfg.key.Hash == nil && cfg.key.PublicKeyHex == "" && cfg.key.Derivation == nil &&
			cfg.kind != outputCustom && b.wallet != nil {
			derived, err := deriveOnce()
			if err != nil {
				return nil, fmt.Errorf("output %d: %w", i, err)
			}
			params := derived.params()
			cfg.key = template.LockKey{Derivation: &params}
			instructions, err := derived.customInstructions()
			if err != nil {
				return nil, fmt.Errorf("output %d: %w", i, err)
			}
			cfg.customInstructions = instructions
		}

		var (
			locking script.Script
			err     error
		)
		switch cfg.kind {
		case outputP2PKH, outputChange:
			locking, err = b.p2pkh.Lock(ctx, cfg.key)
		case outputOrdinal:
			locking, err = b.ordinal.Lock(ctx, cfg.key, cfg.inscription, cfg.metadata)
		case outputCustom:
			locking = cfg.lockingScript
		}
		if err != nil {
			return nil, fmt.Errorf("output %d: %w", i, err)
		}

		if len(cfg.opReturnFields) > 0 {
			locking, err = script.AppendOpReturn(locking, cfg.opReturnFields)
			if err != nil {
				return nil, fmt.Errorf("output %d: %w", i, err)
			}
		}

		t.AddOutput(&tx.Output{
			Satoshis:      cfg.satoshis,
			LockingScript: locking,
			Change:        cfg.kind == outputChange,
		})
		actionOutputs = append(actionOutputs, wallet.ActionOutput{
			LockingScript:      locking.Hex(),
			Satoshis:           cfg.satoshis,
			OutputDescription:  cfg.description,
			CustomInstructions: cfg.customInstructions,
			Basket:             cfg.basket,
		})
	}
	return actionOutputs, nil
}

// mergeSourceBEEF unions every input's source BEEF. Inputs carrying a
// source transaction but no BEEF contribute the transaction's own
// ancestry serialization.
func (b *Builder) mergeSourceBEEF() ([]byte, error) {
	var payloads [][]byte
	for i, cfg := range b.inputs {
		switch {
		case len(cfg.sourceBEEF) > 0:
			payloads = append(payloads, cfg.sourceBEEF)
		case cfg.sourceTransaction != nil:
			payload, err := tx.NewBEEFFromTransaction(cfg.sourceTransaction)
			if err != nil {
				return nil, fmt.Errorf("input %d BEEF: %w", i, err)
			}
			payloads = append(payloads, payload)
		}
	}
	merged, err := tx.MergeBEEF(payloads)
	if err != nil {
		return nil, err
	}
	return merged, nil
}
