package tx

import (
	"context"
	"errors"
	"fmt"
)

// DefaultFeeRate is the default fee rate in satoshis per kilobyte.
const DefaultFeeRate uint64 = 10

// Fee/change errors.
var (
	ErrInsufficientFunds = errors.New("insufficient input satoshis for outputs plus fee")
	ErrNoChangeOutput    = errors.New("transaction has no change output")
)

// EstimateSize returns the serialized size of the transaction assuming
// every unsigned input's unlocking script reaches its estimated length.
// This is an upper bound, not an exact size.
func (t *Transaction) EstimateSize(ctx context.Context) (int, error) {
	size := 4 + 4 // version + locktime
	size += varIntSize(uint64(len(t.Inputs)))
	for i, in := range t.Inputs {
		size += 32 + 4 + 4 // outpoint + sequence
		sLen := len(in.UnlockingScript)
		if sLen == 0 {
			if in.Unlocker == nil {
				return 0, fmt.Errorf("input %d has neither unlocking script nor unlocker", i)
			}
			est, err := in.Unlocker.EstimateLength(ctx, t, i)
			if err != nil {
				return 0, fmt.Errorf("estimate input %d unlocking script: %w", i, err)
			}
			sLen = est
		}
		size += varIntSize(uint64(sLen)) + sLen
	}
	size += varIntSize(uint64(len(t.Outputs)))
	for _, out := range t.Outputs {
		size += 8 + varIntSize(uint64(len(out.LockingScript))) + len(out.LockingScript)
	}
	return size, nil
}

// ComputeFee returns the fee for the transaction at the given rate in
// satoshis per kilobyte, rounded up, with a floor of one satoshi.
func (t *Transaction) ComputeFee(ctx context.Context, satsPerKB uint64) (uint64, error) {
	size, err := t.EstimateSize(ctx)
	if err != nil {
		return 0, err
	}
	fee := (uint64(size)*satsPerKB + 999) / 1000
	if fee == 0 {
		fee = 1
	}
	return fee, nil
}

// AllocateChange back-fills every change output's satoshis with an even
// share of what the inputs leave after the fixed outputs and the fee.
// Inputs must all resolve a source satoshi value first.
func (t *Transaction) AllocateChange(ctx context.Context, satsPerKB uint64) error {
	fee, err := t.ComputeFee(ctx, satsPerKB)
	if err != nil {
		return err
	}

	var totalIn uint64
	for i, in := range t.Inputs {
		sats, ok := in.ResolvedSourceSatoshis()
		if !ok {
			return fmt.Errorf("input %d: %w", i, ErrMissingSourceSatoshis)
		}
		totalIn += sats
	}

	var fixedOut uint64
	var change []*Output
	for _, out := range t.Outputs {
		if out.Change {
			change = append(change, out)
			continue
		}
		fixedOut += out.Satoshis
	}
	if len(change) == 0 {
		return ErrNoChangeOutput
	}
	if totalIn < fixedOut+fee {
		return fmt.Errorf("%w: have %d, need %d plus %d fee", ErrInsufficientFunds, totalIn, fixedOut, fee)
	}

	remainder := totalIn - fixedOut - fee
	share := remainder / uint64(len(change))
	for i, out := range change {
		out.Satoshis = share
		if i == 0 {
			out.Satoshis += remainder % uint64(len(change))
		}
	}
	return nil
}
