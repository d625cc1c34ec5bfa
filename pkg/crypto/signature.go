package crypto

import (
	"encoding/hex"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// CompressedPubKeySize is the length of a compressed secp256k1 public key.
const CompressedPubKeySize = 33

// ParsePubKeyHex validates and decodes a compressed public key hex string.
func ParsePubKeyHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid public key hex: %w", err)
	}
	if len(b) != CompressedPubKeySize {
		return nil, fmt.Errorf("public key must be %d bytes, got %d", CompressedPubKeySize, len(b))
	}
	if _, err := secp256k1.ParsePubKey(b); err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	return b, nil
}

// SigToChecksigFormat converts a wallet's DER-hex signature into the
// form OP_CHECKSIG consumes: the DER bytes with the one-byte signature
// scope appended. The DER structure is validated before re-encoding.
func SigToChecksigFormat(derHex string, scope uint32) ([]byte, error) {
	der, err := hex.DecodeString(derHex)
	if err != nil {
		return nil, fmt.Errorf("invalid signature hex: %w", err)
	}
	sig, err := ecdsa.ParseDERSignature(der)
	if err != nil {
		return nil, fmt.Errorf("parse DER signature: %w", err)
	}
	out := append(sig.Serialize(), byte(scope&0xff))
	return out, nil
}

// VerifyHashSignature checks a DER signature against a 32-byte hash and
// a compressed public key. Returns false on any parse failure.
func VerifyHashSignature(hash, der, pubKey []byte) bool {
	pk, err := secp256k1.ParsePubKey(pubKey)
	if err != nil {
		return false
	}
	sig, err := ecdsa.ParseDERSignature(der)
	if err != nil {
		return false
	}
	return sig.Verify(hash, pk)
}
