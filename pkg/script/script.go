// Package script provides byte-level Bitcoin script construction and
// inspection: opcode constants, minimal push encoding, ASM rendering and
// the OP_RETURN metadata appender.
package script

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// Script is an opaque locking or unlocking script. Scripts are compared
// and concatenated via their byte, hex or ASM representations only; the
// library never executes them.
type Script []byte

// NewFromHex decodes a hex string into a Script.
func NewFromHex(s string) (Script, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid script hex: %w", err)
	}
	return Script(b), nil
}

// Hex returns the lowercase hex encoding of the script.
func (s Script) Hex() string {
	return hex.EncodeToString(s)
}

// Bytes returns a copy of the raw script bytes.
func (s Script) Bytes() []byte {
	b := make([]byte, len(s))
	copy(b, s)
	return b
}

// Chunk is one decoded script element: an opcode and, for push opcodes,
// the pushed data.
type Chunk struct {
	Op   byte
	Data []byte
}

// Chunks decodes the script into its opcode/push sequence.
// Returns an error on a truncated push, together with the chunks decoded
// before the truncation point.
func (s Script) Chunks() ([]Chunk, error) {
	var chunks []Chunk
	for i := 0; i < len(s); {
		op := s[i]
		i++
		switch {
		case op > Op0 && op < OpPUSHDATA1:
			n := int(op)
			if i+n > len(s) {
				return chunks, fmt.Errorf("truncated push of %d bytes at offset %d", n, i-1)
			}
			chunks = append(chunks, Chunk{Op: op, Data: s[i : i+n]})
			i += n
		case op == OpPUSHDATA1:
			if i >= len(s) {
				return chunks, fmt.Errorf("truncated PUSHDATA1 length at offset %d", i-1)
			}
			n := int(s[i])
			i++
			if i+n > len(s) {
				return chunks, fmt.Errorf("truncated PUSHDATA1 of %d bytes at offset %d", n, i)
			}
			chunks = append(chunks, Chunk{Op: op, Data: s[i : i+n]})
			i += n
		case op == OpPUSHDATA2:
			if i+2 > len(s) {
				return chunks, fmt.Errorf("truncated PUSHDATA2 length at offset %d", i-1)
			}
			n := int(binary.LittleEndian.Uint16(s[i:]))
			i += 2
			if i+n > len(s) {
				return chunks, fmt.Errorf("truncated PUSHDATA2 of %d bytes at offset %d", n, i)
			}
			chunks = append(chunks, Chunk{Op: op, Data: s[i : i+n]})
			i += n
		case op == OpPUSHDATA4:
			if i+4 > len(s) {
				return chunks, fmt.Errorf("truncated PUSHDATA4 length at offset %d", i-1)
			}
			n := int(binary.LittleEndian.Uint32(s[i:]))
			i += 4
			if i+n > len(s) {
				return chunks, fmt.Errorf("truncated PUSHDATA4 of %d bytes at offset %d", n, i)
			}
			chunks = append(chunks, Chunk{Op: op, Data: s[i : i+n]})
			i += n
		default:
			chunks = append(chunks, Chunk{Op: op})
		}
	}
	return chunks, nil
}

// ASM renders the script as space-separated opcode names and hex pushes.
// Undecodable scripts render their remaining bytes as a single hex blob.
func (s Script) ASM() string {
	chunks, err := s.Chunks()
	if err != nil {
		return hex.EncodeToString(s)
	}
	out := ""
	for i, c := range chunks {
		if i > 0 {
			out += " "
		}
		switch {
		case c.Data != nil:
			out += hex.EncodeToString(c.Data)
		default:
			if name, ok := opcodeNames[c.Op]; ok {
				out += name
			} else {
				out += fmt.Sprintf("OP_UNKNOWN_%02x", c.Op)
			}
		}
	}
	return out
}

// Contains reports whether the script contains the given opcode outside
// of pushed data. Scripts with a truncated push are scanned up to the
// truncation point, so an opcode followed by raw non-script data (as in
// an OP_RETURN payload) is still found.
func (s Script) Contains(op byte) bool {
	chunks, _ := s.Chunks()
	for _, c := range chunks {
		if c.Data == nil && c.Op == op {
			return true
		}
	}
	return false
}

// AppendPushData appends data to the script using the shortest push
// opcode that fits.
func AppendPushData(s Script, data []byte) Script {
	n := len(data)
	switch {
	case n == 0:
		s = append(s, Op0)
	case n < int(OpPUSHDATA1):
		s = append(s, byte(n))
	case n <= 0xff:
		s = append(s, OpPUSHDATA1, byte(n))
	case n <= 0xffff:
		s = append(s, OpPUSHDATA2)
		s = binary.LittleEndian.AppendUint16(s, uint16(n))
	default:
		s = append(s, OpPUSHDATA4)
		s = binary.LittleEndian.AppendUint32(s, uint32(n))
	}
	return append(s, data...)
}
