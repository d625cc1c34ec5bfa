package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Outpoint references a specific output in a transaction.
type Outpoint struct {
	Txid  Hash   `json:"txid"`
	Index uint32 `json:"index"`
}

// IsZero returns true if the outpoint has a zero txid and zero index.
func (o Outpoint) IsZero() bool {
	return o.Txid.IsZero() && o.Index == 0
}

// String returns "txid.index", the form wallet action requests use.
func (o Outpoint) String() string {
	return fmt.Sprintf("%s.%d", o.Txid.String(), o.Index)
}

// ParseOutpoint parses a "txid.index" string.
func ParseOutpoint(s string) (Outpoint, error) {
	dot := strings.LastIndexByte(s, '.')
	if dot < 0 {
		return Outpoint{}, fmt.Errorf("outpoint %q missing index separator", s)
	}
	txid, err := HexToHash(s[:dot])
	if err != nil {
		return Outpoint{}, fmt.Errorf("outpoint txid: %w", err)
	}
	idx, err := strconv.ParseUint(s[dot+1:], 10, 32)
	if err != nil {
		return Outpoint{}, fmt.Errorf("outpoint index: %w", err)
	}
	return Outpoint{Txid: txid, Index: uint32(idx)}, nil
}
