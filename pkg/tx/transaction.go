// Package tx defines the Bitcoin SV wire transaction model, the sighash
// preimage engine and the fee/change arithmetic used during a build.
package tx

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/bsv-blockchain/bsv-wallet-helper-sub000/pkg/crypto"
	"github.com/bsv-blockchain/bsv-wallet-helper-sub000/pkg/script"
	"github.com/bsv-blockchain/bsv-wallet-helper-sub000/pkg/types"
)

// DefaultSequence is the sequence number used for inputs that do not set
// one explicitly.
const DefaultSequence uint32 = 0xFFFFFFFF

// Unlocker produces an unlocking script for one input of a transaction.
// Implementations live in pkg/template.
type Unlocker interface {
	// Sign computes the unlocking script for the input at inputIndex.
	Sign(ctx context.Context, t *Transaction, inputIndex int) (script.Script, error)
	// EstimateLength returns an upper bound on the unlocking script
	// size in bytes, used for fee estimation before signing.
	EstimateLength(ctx context.Context, t *Transaction, inputIndex int) (int, error)
}

// Transaction is a Bitcoin SV transaction under construction.
type Transaction struct {
	Version  uint32
	Inputs   []*Input
	Outputs  []*Output
	LockTime uint32
}

// Input spends a previous output. Either SourceTransaction or the
// explicit SourceSatoshis/SourceLockingScript pair must resolve before
// the input can be signed.
type Input struct {
	SourceTxid          types.Hash
	SourceIndex         uint32
	UnlockingScript     script.Script
	Sequence            *uint32
	SourceTransaction   *Transaction
	SourceSatoshis      *uint64
	SourceLockingScript script.Script
	Unlocker            Unlocker
}

// Output creates a new spendable output. Change outputs have their
// satoshi value back-filled after fee computation.
type Output struct {
	Satoshis      uint64
	LockingScript script.Script
	Change        bool
}

// New creates an empty version-1 transaction.
func New() *Transaction {
	return &Transaction{Version: 1}
}

// SequenceValue returns the input's sequence number, defaulting to
// DefaultSequence when unset.
func (in *Input) SequenceValue() uint32 {
	if in.Sequence == nil {
		return DefaultSequence
	}
	return *in.Sequence
}

// ResolvedSourceTxid returns the spent output's txid, from the explicit
// field or the attached source transaction. Returns a zero hash if
// neither is available.
func (in *Input) ResolvedSourceTxid() types.Hash {
	if !in.SourceTxid.IsZero() {
		return in.SourceTxid
	}
	if in.SourceTransaction != nil {
		return in.SourceTransaction.TxID()
	}
	return types.Hash{}
}

// ResolvedSourceSatoshis returns the spent output's satoshis, from the
// explicit field or the source transaction's referenced output.
func (in *Input) ResolvedSourceSatoshis() (uint64, bool) {
	if in.SourceSatoshis != nil {
		return *in.SourceSatoshis, true
	}
	if in.SourceTransaction != nil && int(in.SourceIndex) < len(in.SourceTransaction.Outputs) {
		return in.SourceTransaction.Outputs[in.SourceIndex].Satoshis, true
	}
	return 0, false
}

// ResolvedLockingScript returns the spent output's locking script, from
// the explicit field or the source transaction's referenced output.
func (in *Input) ResolvedLockingScript() (script.Script, bool) {
	if in.SourceLockingScript != nil {
		return in.SourceLockingScript, true
	}
	if in.SourceTransaction != nil && int(in.SourceIndex) < len(in.SourceTransaction.Outputs) {
		return in.SourceTransaction.Outputs[in.SourceIndex].LockingScript, true
	}
	return nil, false
}

// AddInput appends an input and returns the transaction for chaining.
func (t *Transaction) AddInput(in *Input) *Transaction {
	t.Inputs = append(t.Inputs, in)
	return t
}

// AddOutput appends an output and returns the transaction for chaining.
func (t *Transaction) AddOutput(out *Output) *Transaction {
	t.Outputs = append(t.Outputs, out)
	return t
}

// Serialize returns the canonical wire encoding of the transaction.
func (t *Transaction) Serialize() []byte {
	var buf []byte
	buf = binary.LittleEndian.AppendUint32(buf, t.Version)

	buf = appendVarInt(buf, uint64(len(t.Inputs)))
	for _, in := range t.Inputs {
		txid := in.ResolvedSourceTxid()
		buf = append(buf, txid[:]...)
		buf = binary.LittleEndian.AppendUint32(buf, in.SourceIndex)
		buf = appendVarInt(buf, uint64(len(in.UnlockingScript)))
		buf = append(buf, in.UnlockingScript...)
		buf = binary.LittleEndian.AppendUint32(buf, in.SequenceValue())
	}

	buf = appendVarInt(buf, uint64(len(t.Outputs)))
	for _, out := range t.Outputs {
		buf = appendOutput(buf, out)
	}

	buf = binary.LittleEndian.AppendUint32(buf, t.LockTime)
	return buf
}

// Hex returns the hex encoding of the serialized transaction.
func (t *Transaction) Hex() string {
	return script.Script(t.Serialize()).Hex()
}

// TxID computes the transaction ID (double-SHA256 of the serialization).
func (t *Transaction) TxID() types.Hash {
	return crypto.Sha256d(t.Serialize())
}

// SerializeOutput returns one output's wire encoding: satoshis (LE64)
// followed by the varint-prefixed locking script. OrdLock purchase
// unlocking scripts embed outputs in this same format.
func SerializeOutput(out *Output) []byte {
	return appendOutput(nil, out)
}

func appendOutput(buf []byte, out *Output) []byte {
	buf = binary.LittleEndian.AppendUint64(buf, out.Satoshis)
	buf = appendVarInt(buf, uint64(len(out.LockingScript)))
	return append(buf, out.LockingScript...)
}

// TotalOutputSatoshis returns the sum of all output values.
func (t *Transaction) TotalOutputSatoshis() uint64 {
	var total uint64
	for _, out := range t.Outputs {
		total += out.Satoshis
	}
	return total
}

// appendVarInt appends a Bitcoin variable-length integer.
func appendVarInt(buf []byte, n uint64) []byte {
	switch {
	case n < 0xfd:
		return append(buf, byte(n))
	case n <= 0xffff:
		buf = append(buf, 0xfd)
		return binary.LittleEndian.AppendUint16(buf, uint16(n))
	case n <= 0xffffffff:
		buf = append(buf, 0xfe)
		return binary.LittleEndian.AppendUint32(buf, uint32(n))
	default:
		buf = append(buf, 0xff)
		return binary.LittleEndian.AppendUint64(buf, n)
	}
}

// varIntSize returns the encoded size of a varint.
func varIntSize(n uint64) int {
	switch {
	case n < 0xfd:
		return 1
	case n <= 0xffff:
		return 3
	case n <= 0xffffffff:
		return 5
	default:
		return 9
	}
}

// reader walks a byte slice during deserialization.
type reader struct {
	buf []byte
	pos int
}

func (r *reader) remaining() int { return len(r.buf) - r.pos }

func (r *reader) readBytes(n int) ([]byte, error) {
	if n < 0 || r.remaining() < n {
		return nil, fmt.Errorf("truncated transaction: need %d bytes at offset %d", n, r.pos)
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) readUint32() (uint32, error) {
	b, err := r.readBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *reader) readUint64() (uint64, error) {
	b, err := r.readBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *reader) readVarInt() (uint64, error) {
	b, err := r.readBytes(1)
	if err != nil {
		return 0, err
	}
	switch b[0] {
	case 0xfd:
		v, err := r.readBytes(2)
		if err != nil {
			return 0, err
		}
		return uint64(binary.LittleEndian.Uint16(v)), nil
	case 0xfe:
		v, err := r.readBytes(4)
		if err != nil {
			return 0, err
		}
		return uint64(binary.LittleEndian.Uint32(v)), nil
	case 0xff:
		return r.readUint64()
	default:
		return uint64(b[0]), nil
	}
}

// Deserialize parses a wire-encoded transaction. Trailing bytes are an
// error; use readTransaction for embedded transactions.
func Deserialize(raw []byte) (*Transaction, error) {
	r := &reader{buf: raw}
	t, err := readTransaction(r)
	if err != nil {
		return nil, err
	}
	if r.remaining() != 0 {
		return nil, fmt.Errorf("trailing %d bytes after transaction", r.remaining())
	}
	return t, nil
}

func readTransaction(r *reader) (*Transaction, error) {
	t := &Transaction{}
	var err error
	if t.Version, err = r.readUint32(); err != nil {
		return nil, err
	}

	nIn, err := r.readVarInt()
	if err != nil {
		return nil, err
	}
	for i := uint64(0); i < nIn; i++ {
		in := &Input{}
		txid, err := r.readBytes(types.HashSize)
		if err != nil {
			return nil, err
		}
		copy(in.SourceTxid[:], txid)
		if in.SourceIndex, err = r.readUint32(); err != nil {
			return nil, err
		}
		sLen, err := r.readVarInt()
		if err != nil {
			return nil, err
		}
		sBytes, err := r.readBytes(int(sLen))
		if err != nil {
			return nil, err
		}
		in.UnlockingScript = append(script.Script(nil), sBytes...)
		seq, err := r.readUint32()
		if err != nil {
			return nil, err
		}
		in.Sequence = &seq
		t.Inputs = append(t.Inputs, in)
	}

	nOut, err := r.readVarInt()
	if err != nil {
		return nil, err
	}
	for i := uint64(0); i < nOut; i++ {
		out := &Output{}
		if out.Satoshis, err = r.readUint64(); err != nil {
			return nil, err
		}
		sLen, err := r.readVarInt()
		if err != nil {
			return nil, err
		}
		sBytes, err := r.readBytes(int(sLen))
		if err != nil {
			return nil, err
		}
		out.LockingScript = append(script.Script(nil), sBytes...)
		t.Outputs = append(t.Outputs, out)
	}

	if t.LockTime, err = r.readUint32(); err != nil {
		return nil, err
	}
	return t, nil
}
