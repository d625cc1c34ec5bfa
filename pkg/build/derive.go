package build

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/bsv-blockchain/bsv-wallet-helper-sub000/pkg/wallet"
)

// BRC29Protocol is the BRC-29 payment key-derivation protocol
// identifier.
var BRC29Protocol = wallet.Protocol{
	SecurityLevel: wallet.SecurityLevelEveryAppAndCounterparty,
	Name:          "3241645161d8",
}

// derivedID is one ephemeral BRC-29 derivation: the keyID handed to the
// wallet plus the prefix/suffix pair recorded in the output's
// customInstructions so the wallet can recompute the key later.
type derivedID struct {
	keyID  string
	prefix string
	suffix string
}

// deriveOnce generates a fresh derivation identifier from two
// independent 8-byte random values. Each call consumes new entropy; an
// entropy failure aborts the build.
func deriveOnce() (derivedID, error) {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return derivedID{}, fmt.Errorf("derivation entropy: %w", err)
	}
	prefix := base64.StdEncoding.EncodeToString(buf[:8])
	suffix := base64.StdEncoding.EncodeToString(buf[8:])
	return derivedID{
		keyID:  prefix + " " + suffix,
		prefix: prefix,
		suffix: suffix,
	}, nil
}

// customInstructions serializes the prefix/suffix pair into the JSON
// shape wallets read back from the action request.
func (d derivedID) customInstructions() (string, error) {
	blob, err := json.Marshal(struct {
		DerivationPrefix string `json:"derivationPrefix"`
		DerivationSuffix string `json:"derivationSuffix"`
	}{d.prefix, d.suffix})
	if err != nil {
		return "", err
	}
	return string(blob), nil
}

// params returns the wallet derivation the keyID addresses.
func (d derivedID) params() wallet.DerivationParams {
	return wallet.DerivationParams{
		ProtocolID:   BRC29Protocol,
		KeyID:        d.keyID,
		Counterparty: "self",
	}
}
