package template

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sort"

	"github.com/bsv-blockchain/bsv-wallet-helper-sub000/pkg/script"
)

// MAPPrefix is the Magic Attribute Protocol namespace address pushed
// first in every MAP OP_RETURN.
const MAPPrefix = "1PuQa7K62MiKCtssSLKy1kh56WWU7MtUR5"

// mapReservedKey is stripped from metadata before encoding; it selects
// the MAP command and is always "SET" here.
const mapReservedKey = "cmd"

// Inscription errors.
var (
	ErrInscriptionIncomplete = errors.New("inscription requires both dataB64 and contentType")
	ErrMetadataIncomplete    = errors.New("metadata requires app and type fields")
)

// Inscription is the payload of an ord envelope.
type Inscription struct {
	DataB64     string `json:"dataB64"`
	ContentType string `json:"contentType"`
}

// OrdinalP2PKH wraps a P2PKH lock in an ord inscription envelope and an
// optional MAP metadata suffix. Spending is plain P2PKH; the wrapping
// only affects how indexers classify the output.
type OrdinalP2PKH struct {
	p2pkh *P2PKH
}

// NewOrdinalP2PKH creates the template over an existing P2PKH template.
func NewOrdinalP2PKH(p *P2PKH) *OrdinalP2PKH {
	return &OrdinalP2PKH{p2pkh: p}
}

// Lock builds the P2PKH lock for key, prefixes the ord envelope when an
// inscription is given, and suffixes MAP metadata when given. Envelope
// and metadata are independent; either, both or neither may be present.
func (o *OrdinalP2PKH) Lock(ctx context.Context, key LockKey, insc *Inscription, metadata map[string]string) (script.Script, error) {
	base, err := o.p2pkh.Lock(ctx, key)
	if err != nil {
		return nil, err
	}

	var s script.Script
	if insc != nil {
		s, err = appendInscriptionEnvelope(s, insc)
		if err != nil {
			return nil, err
		}
	}
	s = append(s, base...)
	if metadata != nil {
		s, err = appendMAPMetadata(s, metadata)
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Unlock is identical to plain P2PKH.
func (o *OrdinalP2PKH) Unlock(params UnlockParams) (*P2PKHUnlocker, error) {
	return o.p2pkh.Unlock(params)
}

// appendInscriptionEnvelope emits the ord envelope:
// OP_FALSE OP_IF "ord" OP_1 <contentType> OP_0 <data> OP_ENDIF.
func appendInscriptionEnvelope(s script.Script, insc *Inscription) (script.Script, error) {
	if insc.DataB64 == "" || insc.ContentType == "" {
		return nil, ErrInscriptionIncomplete
	}
	data, err := base64.StdEncoding.DecodeString(insc.DataB64)
	if err != nil {
		return nil, fmt.Errorf("inscription data: %w", err)
	}

	s = append(s, script.OpFALSE, script.OpIF)
	s = script.AppendPushData(s, []byte("ord"))
	s = append(s, script.Op1)
	s = script.AppendPushData(s, []byte(insc.ContentType))
	s = append(s, script.Op0)
	s = script.AppendPushData(s, data)
	return append(s, script.OpENDIF), nil
}

// appendMAPMetadata emits OP_RETURN <MAPPrefix> "SET" then every
// key/value pair. app and type lead; remaining keys follow in sorted
// order so the script is deterministic. The reserved cmd key is skipped.
func appendMAPMetadata(s script.Script, metadata map[string]string) (script.Script, error) {
	if metadata["app"] == "" || metadata["type"] == "" {
		return nil, ErrMetadataIncomplete
	}

	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		if k == mapReservedKey || k == "app" || k == "type" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	keys = append([]string{"app", "type"}, keys...)

	s = append(s, script.OpRETURN)
	s = script.AppendPushData(s, []byte(MAPPrefix))
	s = script.AppendPushData(s, []byte("SET"))
	for _, k := range keys {
		s = script.AppendPushData(s, []byte(k))
		s = script.AppendPushData(s, []byte(metadata[k]))
	}
	return s, nil
}
