package build

import (
	"github.com/bsv-blockchain/bsv-wallet-helper-sub000/pkg/script"
	"github.com/bsv-blockchain/bsv-wallet-helper-sub000/pkg/template"
)

type outputKind int

const (
	outputP2PKH outputKind = iota + 1
	outputOrdinal
	outputCustom
	outputChange
)

// outputConfig is one accumulated output record, owned by the builder.
type outputConfig struct {
	kind               outputKind
	satoshis           uint64
	key                template.LockKey
	inscription        *template.Inscription
	metadata           map[string]string
	lockingScript      script.Script
	opReturnFields     []script.Field
	basket             string
	customInstructions string
	description        string
}

// P2PKHOutput configures a plain P2PKH output. An empty Key derives an
// ephemeral BRC-29 key through the wallet during build.
type P2PKHOutput struct {
	Key      template.LockKey
	Satoshis uint64
}

// OrdinalOutput configures an inscription output. Satoshis defaults to
// one, the ordinal convention.
type OrdinalOutput struct {
	Key         template.LockKey
	Satoshis    uint64
	Inscription *template.Inscription
	Metadata    map[string]string
}

// CustomOutput carries a ready locking script.
type CustomOutput struct {
	LockingScript script.Script
	Satoshis      uint64
}

// OutputHandle mutates one accumulated output by index. Handles stay
// valid until Build or Preview runs.
type OutputHandle struct {
	b     *Builder
	index int
}

// Index returns the output's position in the transaction.
func (h OutputHandle) Index() int { return h.index }

// Description sets the per-output description sent to the wallet.
func (h OutputHandle) Description(s string) OutputHandle {
	h.b.outputs[h.index].description = s
	return h
}

// AddOpReturn queues OP_RETURN fields to append to the output's locking
// script. Strings of even length made of hex digits are decoded as hex;
// anything else is taken as UTF-8.
func (h OutputHandle) AddOpReturn(fields ...string) OutputHandle {
	cfg := h.b.outputs[h.index]
	for _, f := range fields {
		cfg.opReturnFields = append(cfg.opReturnFields, script.FieldFromString(f))
	}
	return h
}

// AddOpReturnBytes queues raw byte OP_RETURN fields.
func (h OutputHandle) AddOpReturnBytes(fields ...[]byte) OutputHandle {
	cfg := h.b.outputs[h.index]
	for _, f := range fields {
		cfg.opReturnFields = append(cfg.opReturnFields, script.Field(f))
	}
	return h
}

// Basket tags the output for the wallet's basket bookkeeping.
func (h OutputHandle) Basket(s string) OutputHandle {
	h.b.outputs[h.index].basket = s
	return h
}

// CustomInstructions sets the output's customInstructions verbatim.
// Build overwrites this for outputs whose key it auto-derives.
func (h OutputHandle) CustomInstructions(s string) OutputHandle {
	h.b.outputs[h.index].customInstructions = s
	return h
}

// AddP2PKHOutput accumulates a plain P2PKH output.
func (b *Builder) AddP2PKHOutput(out P2PKHOutput) OutputHandle {
	b.outputs = append(b.outputs, &outputConfig{
		kind:     outputP2PKH,
		satoshis: out.Satoshis,
		key:      out.Key,
	})
	return OutputHandle{b: b, index: len(b.outputs) - 1}
}

// AddOrdinalOutput accumulates an ordinal-P2PKH output.
func (b *Builder) AddOrdinalOutput(out OrdinalOutput) OutputHandle {
	sats := out.Satoshis
	if sats == 0 {
		sats = 1
	}
	b.outputs = append(b.outputs, &outputConfig{
		kind:        outputOrdinal,
		satoshis:    sats,
		key:         out.Key,
		inscription: out.Inscription,
		metadata:    out.Metadata,
	})
	return OutputHandle{b: b, index: len(b.outputs) - 1}
}

// AddCustomOutput accumulates an output with a caller-built script.
func (b *Builder) AddCustomOutput(out CustomOutput) OutputHandle {
	b.outputs = append(b.outputs, &outputConfig{
		kind:          outputCustom,
		satoshis:      out.Satoshis,
		lockingScript: out.LockingScript,
	})
	return OutputHandle{b: b, index: len(b.outputs) - 1}
}

// AddChangeOutput accumulates a change output. Its satoshi value is
// back-filled after fee computation; the key resolves like P2PKH.
func (b *Builder) AddChangeOutput(key template.LockKey) OutputHandle {
	b.outputs = append(b.outputs, &outputConfig{
		kind: outputChange,
		key:  key,
	})
	return OutputHandle{b: b, index: len(b.outputs) - 1}
}
