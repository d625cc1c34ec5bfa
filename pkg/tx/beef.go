package tx

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/bsv-blockchain/bsv-wallet-helper-sub000/pkg/types"
)

// BEEFVersion is the BRC-62 serialization version marker (0xEFBE0001).
const BEEFVersion uint32 = 4022206465

// ErrNotBEEF is returned when a payload does not start with the BEEF
// version marker.
var ErrNotBEEF = errors.New("payload is not BEEF encoded")

// beefTx is one transaction entry in a BEEF payload.
type beefTx struct {
	raw       []byte
	txid      types.Hash
	bumpIndex int // -1 when the transaction carries no merkle proof
}

// beef is a decoded BEEF payload: merkle proofs (kept opaque) plus
// transactions in dependency order, parents before children.
type beef struct {
	bumps [][]byte
	txs   []beefTx
}

// NewBEEFFromTransaction serializes a transaction and its attached
// ancestry (via SourceTransaction links) as a BEEF payload. A builder
// holds no merkle proofs, so the bump list is empty; wallets configured
// with trustSelf accept such payloads for known ancestors.
func NewBEEFFromTransaction(t *Transaction) ([]byte, error) {
	if t == nil {
		return nil, errors.New("transaction is nil")
	}
	b := &beef{}
	seen := map[types.Hash]bool{}
	if err := appendAncestry(b, t, seen); err != nil {
		return nil, err
	}
	return b.serialize(), nil
}

// appendAncestry walks source transactions depth-first so every parent
// precedes its spender in the payload.
func appendAncestry(b *beef, t *Transaction, seen map[types.Hash]bool) error {
	txid := t.TxID()
	if seen[txid] {
		return nil
	}
	seen[txid] = true
	for _, in := range t.Inputs {
		if in.SourceTransaction != nil {
			if err := appendAncestry(b, in.SourceTransaction, seen); err != nil {
				return err
			}
		}
	}
	b.txs = append(b.txs, beefTx{raw: t.Serialize(), txid: txid, bumpIndex: -1})
	return nil
}

// MergeBEEF unions several BEEF payloads into one. A single payload is
// returned unchanged; across payloads, transactions are deduplicated by
// txid and proofs by their raw bytes, preserving first-seen order.
func MergeBEEF(payloads [][]byte) ([]byte, error) {
	switch len(payloads) {
	case 0:
		return nil, nil
	case 1:
		return payloads[0], nil
	}

	merged := &beef{}
	seenTx := map[types.Hash]int{}
	for i, payload := range payloads {
		b, err := parseBEEF(payload)
		if err != nil {
			return nil, fmt.Errorf("merge payload %d: %w", i, err)
		}

		bumpRemap := make([]int, len(b.bumps))
		for j, bump := range b.bumps {
			bumpRemap[j] = merged.addBump(bump)
		}
		for _, entry := range b.txs {
			if _, ok := seenTx[entry.txid]; ok {
				continue
			}
			if entry.bumpIndex >= 0 {
				entry.bumpIndex = bumpRemap[entry.bumpIndex]
			}
			seenTx[entry.txid] = len(merged.txs)
			merged.txs = append(merged.txs, entry)
		}
	}
	return merged.serialize(), nil
}

func (b *beef) addBump(bump []byte) int {
	for i, existing := range b.bumps {
		if bytes.Equal(existing, bump) {
			return i
		}
	}
	b.bumps = append(b.bumps, bump)
	return len(b.bumps) - 1
}

func (b *beef) serialize() []byte {
	var buf []byte
	buf = append(buf, 0x01, 0x00, 0xbe, 0xef) // BEEFVersion, little-endian
	buf = appendVarInt(buf, uint64(len(b.bumps)))
	for _, bump := range b.bumps {
		buf = append(buf, bump...)
	}
	buf = appendVarInt(buf, uint64(len(b.txs)))
	for _, entry := range b.txs {
		buf = append(buf, entry.raw...)
		if entry.bumpIndex >= 0 {
			buf = append(buf, 0x01)
			buf = appendVarInt(buf, uint64(entry.bumpIndex))
		} else {
			buf = append(buf, 0x00)
		}
	}
	return buf
}

func parseBEEF(payload []byte) (*beef, error) {
	r := &reader{buf: payload}
	version, err := r.readUint32()
	if err != nil {
		return nil, err
	}
	if version != BEEFVersion {
		return nil, fmt.Errorf("%w: version %#x", ErrNotBEEF, version)
	}

	b := &beef{}
	nBumps, err := r.readVarInt()
	if err != nil {
		return nil, err
	}
	for i := uint64(0); i < nBumps; i++ {
		bump, err := readBump(r)
		if err != nil {
			return nil, fmt.Errorf("bump %d: %w", i, err)
		}
		b.bumps = append(b.bumps, bump)
	}

	nTxs, err := r.readVarInt()
	if err != nil {
		return nil, err
	}
	for i := uint64(0); i < nTxs; i++ {
		start := r.pos
		t, err := readTransaction(r)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		raw := payload[start:r.pos]
		entry := beefTx{raw: raw, txid: t.TxID(), bumpIndex: -1}

		flag, err := r.readBytes(1)
		if err != nil {
			return nil, err
		}
		if flag[0] == 0x01 {
			idx, err := r.readVarInt()
			if err != nil {
				return nil, err
			}
			if idx >= uint64(len(b.bumps)) {
				return nil, fmt.Errorf("transaction %d references bump %d of %d", i, idx, len(b.bumps))
			}
			entry.bumpIndex = int(idx)
		}
		b.txs = append(b.txs, entry)
	}
	return b, nil
}

// readBump consumes one BRC-74 merkle path from the reader and returns
// its raw bytes. The proof content is kept opaque; only its framing is
// parsed so it can be copied and deduplicated.
func readBump(r *reader) ([]byte, error) {
	start := r.pos
	if _, err := r.readVarInt(); err != nil { // block height
		return nil, err
	}
	treeHeight, err := r.readBytes(1)
	if err != nil {
		return nil, err
	}
	for level := 0; level < int(treeHeight[0]); level++ {
		nLeaves, err := r.readVarInt()
		if err != nil {
			return nil, err
		}
		for leaf := uint64(0); leaf < nLeaves; leaf++ {
			if _, err := r.readVarInt(); err != nil { // offset
				return nil, err
			}
			flags, err := r.readBytes(1)
			if err != nil {
				return nil, err
			}
			// Flag 0x01 marks a duplicate working hash; no data follows.
			if flags[0] != 0x01 {
				if _, err := r.readBytes(types.HashSize); err != nil {
					return nil, err
				}
			}
		}
	}
	return r.buf[start:r.pos], nil
}
