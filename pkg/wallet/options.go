package wallet

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/bsv-blockchain/bsv-wallet-helper-sub000/pkg/types"
)

// TrustSelf values.
const (
	TrustSelfKnown = "known"
	TrustSelfAll   = "all"
)

// Action option errors.
var (
	ErrBadTrustSelf = errors.New("trustSelf must be \"known\" or \"all\"")
	ErrBadTxid      = errors.New("txid must be 64 hex characters")
)

// ActionOptions tunes how the wallet processes a createAction request.
// Nil pointer fields mean "wallet default".
type ActionOptions struct {
	RandomizeOutputs       *bool    `json:"randomizeOutputs,omitempty"`
	TrustSelf              string   `json:"trustSelf,omitempty"`
	SignAndProcess         *bool    `json:"signAndProcess,omitempty"`
	AcceptDelayedBroadcast *bool    `json:"acceptDelayedBroadcast,omitempty"`
	ReturnTXIDOnly         *bool    `json:"returnTXIDOnly,omitempty"`
	NoSend                 *bool    `json:"noSend,omitempty"`
	KnownTxids             []string `json:"knownTxids,omitempty"`
	NoSendChange           []string `json:"noSendChange,omitempty"`
	SendWith               []string `json:"sendWith,omitempty"`
}

// Validate checks the enumerated and formatted fields. A nil receiver is
// valid: every option falls back to the wallet default.
func (o *ActionOptions) Validate() error {
	if o == nil {
		return nil
	}
	if o.TrustSelf != "" && o.TrustSelf != TrustSelfKnown && o.TrustSelf != TrustSelfAll {
		return fmt.Errorf("%w, got %q", ErrBadTrustSelf, o.TrustSelf)
	}
	for _, txid := range o.KnownTxids {
		if err := checkTxidHex(txid); err != nil {
			return fmt.Errorf("knownTxids: %w", err)
		}
	}
	for _, op := range o.NoSendChange {
		if _, err := types.ParseOutpoint(op); err != nil {
			return fmt.Errorf("noSendChange: %w", err)
		}
	}
	for _, txid := range o.SendWith {
		if err := checkTxidHex(txid); err != nil {
			return fmt.Errorf("sendWith: %w", err)
		}
	}
	return nil
}

func checkTxidHex(s string) error {
	if len(s) != 2*types.HashSize {
		return fmt.Errorf("%w, got %d: %q", ErrBadTxid, len(s), s)
	}
	if _, err := hex.DecodeString(s); err != nil {
		return fmt.Errorf("%w: %q", ErrBadTxid, s)
	}
	return nil
}
