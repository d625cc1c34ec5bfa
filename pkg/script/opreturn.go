package script

import (
	"encoding/hex"
	"errors"
)

// OP_RETURN append errors.
var (
	ErrHasOpReturn = errors.New("script already contains OP_RETURN")
	ErrNoFields    = errors.New("no OP_RETURN fields given")
	ErrNilField    = errors.New("nil OP_RETURN field")
)

// Field is one OP_RETURN data field, already in raw byte form.
type Field []byte

// FieldFromString converts a string field to bytes. Strings of even
// length consisting solely of hex digits are decoded as hex; anything
// else is taken as UTF-8.
func FieldFromString(s string) Field {
	if len(s) > 0 && len(s)%2 == 0 && isHex(s) {
		b, err := hex.DecodeString(s)
		if err == nil {
			return Field(b)
		}
	}
	return Field(s)
}

func isHex(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// AppendOpReturn returns a copy of the script with a single trailing
// OP_RETURN followed by the raw bytes of every field, in order. A script
// may carry at most one OP_RETURN; appending to a script that already
// has one is an error. The input script is never mutated.
func AppendOpReturn(s Script, fields []Field) (Script, error) {
	if len(fields) == 0 {
		return nil, ErrNoFields
	}
	if s.Contains(OpRETURN) {
		return nil, ErrHasOpReturn
	}
	out := make(Script, len(s), len(s)+1+totalLen(fields))
	copy(out, s)
	out = append(out, OpRETURN)
	for _, f := range fields {
		if f == nil {
			return nil, ErrNilField
		}
		out = append(out, f...)
	}
	return out, nil
}

func totalLen(fields []Field) int {
	n := 0
	for _, f := range fields {
		n += len(f)
	}
	return n
}
