package tx

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/bsv-blockchain/bsv-wallet-helper-sub000/pkg/crypto"
	"github.com/bsv-blockchain/bsv-wallet-helper-sub000/pkg/types"
)

// Signature scope flags. The final scope word is Forkid OR'd with one of
// All/None/Single, plus AnyoneCanPay when set.
const (
	SighashAll          uint32 = 0x01
	SighashNone         uint32 = 0x02
	SighashSingle       uint32 = 0x03
	SighashForkid       uint32 = 0x40
	SighashAnyoneCanPay uint32 = 0x80
)

// SignOutputs selects which outputs a signature commits to.
type SignOutputs uint8

const (
	SignOutputsAll SignOutputs = iota + 1
	SignOutputsNone
	SignOutputsSingle
)

// String returns the lowercase mode name.
func (so SignOutputs) String() string {
	switch so {
	case SignOutputsAll:
		return "all"
	case SignOutputsNone:
		return "none"
	case SignOutputsSingle:
		return "single"
	default:
		return "invalid"
	}
}

// Sighash preimage errors. Each unmet precondition is distinct so
// callers can tell a malformed request from an unresolved input.
var (
	ErrNilTransaction        = errors.New("transaction is nil or has no inputs")
	ErrInputIndexRange       = errors.New("input index out of range")
	ErrInvalidSignOutputs    = errors.New("invalid sign-outputs mode")
	ErrSingleWithoutOutput   = errors.New("SIGHASH_SINGLE requires an output at the input index")
	ErrMissingSourceTxid     = errors.New("input has no source txid and no source transaction")
	ErrMissingSourceSatoshis = errors.New("input satoshis are unknown: provide sourceSatoshis or a source transaction")
	ErrMissingLockingScript  = errors.New("input locking script is unknown: provide lockingScript or a source transaction")
)

// SighashPreimage computes the BIP-143/Forkid signature preimage and the
// signature scope word for one input. The preimage is the byte sequence
// whose double-SHA256 the wallet signs.
//
// The function is pure: it never mutates the transaction, so it may be
// called concurrently for different inputs of the same transaction.
func SighashPreimage(t *Transaction, inputIndex int, signOutputs SignOutputs, anyoneCanPay bool) ([]byte, uint32, error) {
	if t == nil || len(t.Inputs) == 0 {
		return nil, 0, ErrNilTransaction
	}
	if inputIndex < 0 || inputIndex >= len(t.Inputs) {
		return nil, 0, fmt.Errorf("%w: %d of %d", ErrInputIndexRange, inputIndex, len(t.Inputs))
	}

	scope := SighashForkid
	switch signOutputs {
	case SignOutputsAll:
		scope |= SighashAll
	case SignOutputsNone:
		scope |= SighashNone
	case SignOutputsSingle:
		if inputIndex >= len(t.Outputs) {
			return nil, 0, fmt.Errorf("%w: input %d, %d outputs", ErrSingleWithoutOutput, inputIndex, len(t.Outputs))
		}
		scope |= SighashSingle
	default:
		return nil, 0, fmt.Errorf("%w: %d", ErrInvalidSignOutputs, signOutputs)
	}
	if anyoneCanPay {
		scope |= SighashAnyoneCanPay
	}

	in := t.Inputs[inputIndex]
	sourceTxid := in.ResolvedSourceTxid()
	if sourceTxid.IsZero() {
		return nil, 0, fmt.Errorf("input %d: %w", inputIndex, ErrMissingSourceTxid)
	}
	sourceSatoshis, ok := in.ResolvedSourceSatoshis()
	if !ok {
		return nil, 0, fmt.Errorf("input %d: %w", inputIndex, ErrMissingSourceSatoshis)
	}
	subscript, ok := in.ResolvedLockingScript()
	if !ok {
		return nil, 0, fmt.Errorf("input %d: %w", inputIndex, ErrMissingLockingScript)
	}

	// hashPrevouts commits to every input's outpoint. ANYONECANPAY
	// excludes all other inputs, leaving nothing to commit to.
	var hashPrevouts, hashSequence, hashOutputs types.Hash
	if !anyoneCanPay {
		var prevouts []byte
		for _, other := range t.Inputs {
			otherTxid := other.ResolvedSourceTxid()
			prevouts = append(prevouts, otherTxid[:]...)
			prevouts = binary.LittleEndian.AppendUint32(prevouts, other.SourceIndex)
		}
		hashPrevouts = crypto.Sha256d(prevouts)
	}

	// hashSequence commits to the other inputs' sequence numbers, and
	// only when the signature also commits to every output.
	if !anyoneCanPay && signOutputs == SignOutputsAll {
		var seqs []byte
		for _, other := range t.Inputs {
			seqs = binary.LittleEndian.AppendUint32(seqs, other.SequenceValue())
		}
		hashSequence = crypto.Sha256d(seqs)
	}

	switch signOutputs {
	case SignOutputsAll:
		var outs []byte
		for _, out := range t.Outputs {
			outs = appendOutput(outs, out)
		}
		hashOutputs = crypto.Sha256d(outs)
	case SignOutputsSingle:
		hashOutputs = crypto.Sha256d(SerializeOutput(t.Outputs[inputIndex]))
	}

	var buf []byte
	buf = binary.LittleEndian.AppendUint32(buf, t.Version)
	buf = append(buf, hashPrevouts[:]...)
	buf = append(buf, hashSequence[:]...)
	buf = append(buf, sourceTxid[:]...)
	buf = binary.LittleEndian.AppendUint32(buf, in.SourceIndex)
	buf = appendVarInt(buf, uint64(len(subscript)))
	buf = append(buf, subscript...)
	buf = binary.LittleEndian.AppendUint64(buf, sourceSatoshis)
	buf = binary.LittleEndian.AppendUint32(buf, in.SequenceValue())
	buf = append(buf, hashOutputs[:]...)
	buf = binary.LittleEndian.AppendUint32(buf, t.LockTime)
	buf = binary.LittleEndian.AppendUint32(buf, scope)

	return buf, scope, nil
}

// SighashDigest computes the double-SHA256 of the preimage, the 32-byte
// value the wallet is asked to sign directly.
func SighashDigest(t *Transaction, inputIndex int, signOutputs SignOutputs, anyoneCanPay bool) (types.Hash, uint32, error) {
	preimage, scope, err := SighashPreimage(t, inputIndex, signOutputs, anyoneCanPay)
	if err != nil {
		return types.Hash{}, 0, err
	}
	return crypto.Sha256d(preimage), scope, nil
}
