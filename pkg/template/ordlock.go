package template

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bsv-blockchain/bsv-wallet-helper-sub000/internal/log"
	"github.com/bsv-blockchain/bsv-wallet-helper-sub000/pkg/script"
	"github.com/bsv-blockchain/bsv-wallet-helper-sub000/pkg/tx"
)

// The OrdLock contract body, split around the cancel hash and the pay
// output it interpolates. Opaque to this library; the script itself
// verifies the purchase preimage and output commitments on chain.
const (
	ordLockPrefixHex = "2097dfd76851bf465e8f715593b217714858bbe9570ff3bd5e33840a34e20ff0262102ba79df5f8ae7604a9830f03c7933028186aede0675a16f025dc4f8be8eec0382201008ce7480da41702918d1ec8e6849ba32b4d65b1e40dc669c31a1e6306b266c0000"
	ordLockSuffixHex = "615179547a75537a537a537a0079537a75527a527a7575615579008763567901c161517957795779210ac407f0e4bd44bfc207355a778b046225a7068fc59ee7eda43ad905aadbffc800206c266b30e6a1319c66dc401e5bd6b432ba49688eecd118297041da8074ce081059795679615679aa0079610079517f517f517f517f517f517f517f517f517f517f517f517f517f517f517f517f517f517f517f517f517f517f517f517f517f517f517f517f517f517f517f517f01007e81517a75615779567956795679567961537956795479577995939521414136d08c5ed2bf3ba048afe6dcaebafeffffffffffffffffffffffffffffff00517951796151795179970079009f63007952799367007968517a75517a75517a7561527a75517a517951795296a0630079527994527a75517a6853798277527982775379012080517f517f517f517f517f517f517f517f517f517f517f517f517f517f517f517f517f517f517f517f517f517f517f517f517f517f517f517f517f517f517f517f01007e81517a75615179517a75517a75618777777777777777777767557951876351795779a9876957795779ac777777777777777767006868"
)

// BSV20ContentType is the inscription MIME type for BSV-20 token
// operations.
const BSV20ContentType = "application/bsv-20"

// OrdLock errors.
var (
	ErrNoPayOutput       = errors.New("listing requires a pay output")
	ErrNoAssetID         = errors.New("listing requires an asset id")
	ErrPurchaseOutputs   = errors.New("purchase transaction needs at least two outputs")
	ErrUnknownUnlockKind = errors.New("unknown ordlock unlock kind")
)

// bsv20Transfer is the inscription payload of a one-token transfer.
type bsv20Transfer struct {
	P   string `json:"p"`
	Op  string `json:"op"`
	Amt int    `json:"amt"`
	ID  string `json:"id"`
}

// ListParams describes an OrdLock listing.
type ListParams struct {
	// Seller resolves to the cancel public key hash.
	Seller LockKey
	// AssetID is the BSV-20 token being listed.
	AssetID string
	// PayOutput is the payment the purchaser must include at index 1.
	PayOutput *tx.Output
	// Metadata, when non-nil, is appended as a trailing OP_RETURN JSON
	// blob.
	Metadata map[string]string
}

// OrdLock builds BSV-20 listing contracts and their cancel and purchase
// unlocks. The pay-output sub-script is plain P2PKH, built by the
// wrapped template.
type OrdLock struct {
	p2pkh *P2PKH
}

// NewOrdLock creates the template over an existing P2PKH template.
func NewOrdLock(p *P2PKH) *OrdLock {
	return &OrdLock{p2pkh: p}
}

// Lock builds the listing script: a BSV-20 transfer inscription, the
// contract prefix, the cancel hash and serialized pay output, and the
// contract suffix.
func (o *OrdLock) Lock(ctx context.Context, params ListParams) (script.Script, error) {
	if params.AssetID == "" {
		return nil, ErrNoAssetID
	}
	if params.PayOutput == nil || len(params.PayOutput.LockingScript) == 0 {
		return nil, ErrNoPayOutput
	}
	cancelHash, err := resolveHash(ctx, o.p2pkh.wallet, params.Seller)
	if err != nil {
		return nil, fmt.Errorf("seller key: %w", err)
	}

	transfer, err := json.Marshal(bsv20Transfer{P: "bsv-20", Op: "transfer", Amt: 1, ID: params.AssetID})
	if err != nil {
		return nil, fmt.Errorf("encode transfer inscription: %w", err)
	}
	s, err := appendInscriptionEnvelope(nil, &Inscription{
		DataB64:     base64.StdEncoding.EncodeToString(transfer),
		ContentType: BSV20ContentType,
	})
	if err != nil {
		return nil, err
	}

	prefix, err := script.NewFromHex(ordLockPrefixHex)
	if err != nil {
		return nil, err
	}
	suffix, err := script.NewFromHex(ordLockSuffixHex)
	if err != nil {
		return nil, err
	}
	s = append(s, prefix...)
	s = script.AppendPushData(s, cancelHash)
	s = script.AppendPushData(s, tx.SerializeOutput(params.PayOutput))
	s = append(s, suffix...)

	if params.Metadata != nil {
		blob, err := json.Marshal(params.Metadata)
		if err != nil {
			return nil, fmt.Errorf("encode listing metadata: %w", err)
		}
		s = append(s, script.OpRETURN)
		s = script.AppendPushData(s, blob)
	}
	log.Template.Debug().
		Str("asset", params.AssetID).
		Uint64("pay_satoshis", params.PayOutput.Satoshis).
		Int("script_bytes", len(s)).
		Msg("listing lock assembled")
	return s, nil
}

// UnlockKind selects the OrdLock spending path.
type UnlockKind int

const (
	UnlockCancel UnlockKind = iota + 1
	UnlockPurchase
)

// UnlockCancelParams configures the seller's cancel path.
type UnlockCancelParams struct {
	Params UnlockParams
}

// Cancel returns the seller's unlocker: a P2PKH signature over the
// anyone-can-pay all-outputs scope, followed by OP_1 to select the
// cancel branch.
func (o *OrdLock) Cancel(params UnlockCancelParams) (*OrdLockUnlocker, error) {
	params.Params.SignOutputs = tx.SignOutputsAll
	params.Params.AnyoneCanPay = true
	inner, err := o.p2pkh.Unlock(params.Params)
	if err != nil {
		return nil, err
	}
	return &OrdLockUnlocker{kind: UnlockCancel, cancel: inner}, nil
}

// Purchase returns the buyer's unlocker. It needs no wallet: the
// contract validates the sighash preimage and the committed outputs
// directly.
func (o *OrdLock) Purchase() *OrdLockUnlocker {
	return &OrdLockUnlocker{kind: UnlockPurchase}
}

// OrdLockUnlocker produces cancel or purchase unlocking scripts.
type OrdLockUnlocker struct {
	kind   UnlockKind
	cancel *P2PKHUnlocker
}

// Sign builds the unlocking script for the configured path.
func (u *OrdLockUnlocker) Sign(ctx context.Context, t *tx.Transaction, inputIndex int) (script.Script, error) {
	switch u.kind {
	case UnlockCancel:
		s, err := u.cancel.Sign(ctx, t, inputIndex)
		if err != nil {
			return nil, err
		}
		return append(s, script.Op1), nil
	case UnlockPurchase:
		return purchaseScript(t, inputIndex)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownUnlockKind, u.kind)
	}
}

// purchaseScript pushes the serialized leading outputs, the trailing
// outputs (or OP_0 when there are none), and the sighash preimage, then
// terminates with OP_0 to select the purchase branch.
func purchaseScript(t *tx.Transaction, inputIndex int) (script.Script, error) {
	if t == nil || len(t.Outputs) < 2 {
		return nil, ErrPurchaseOutputs
	}
	preimage, _, err := tx.SighashPreimage(t, inputIndex, tx.SignOutputsAll, true)
	if err != nil {
		return nil, err
	}

	var leading []byte
	leading = append(leading, tx.SerializeOutput(t.Outputs[0])...)
	leading = append(leading, tx.SerializeOutput(t.Outputs[1])...)

	s := script.AppendPushData(nil, leading)
	if len(t.Outputs) > 2 {
		var trailing []byte
		for _, out := range t.Outputs[2:] {
			trailing = append(trailing, tx.SerializeOutput(out)...)
		}
		s = script.AppendPushData(s, trailing)
	} else {
		s = append(s, script.Op0)
	}
	s = script.AppendPushData(s, preimage)
	return append(s, script.Op0), nil
}

// EstimateLength signs against the candidate transaction for the
// purchase path, whose preimage push makes the size transaction
// dependent. Cancel uses the constant P2PKH estimate plus the branch
// selector.
func (u *OrdLockUnlocker) EstimateLength(ctx context.Context, t *tx.Transaction, inputIndex int) (int, error) {
	switch u.kind {
	case UnlockCancel:
		return P2PKHUnlockEstimate + 1, nil
	case UnlockPurchase:
		s, err := purchaseScript(t, inputIndex)
		if err != nil {
			return 0, err
		}
		return len(s), nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnknownUnlockKind, u.kind)
	}
}
