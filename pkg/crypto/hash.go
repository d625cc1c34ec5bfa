// Package crypto provides the hashing and signature-encoding helpers the
// transaction engine needs. Elliptic-curve math itself lives in the
// secp256k1 library; nothing here implements primitives.
package crypto

import (
	"crypto/sha256"

	"github.com/bsv-blockchain/bsv-wallet-helper-sub000/pkg/types"
	"golang.org/x/crypto/ripemd160"
)

// Sha256d computes SHA-256(SHA-256(data)), the transaction and sighash
// digest function.
func Sha256d(data []byte) types.Hash {
	first := sha256.Sum256(data)
	return sha256.Sum256(first[:])
}

// Hash160 computes RIPEMD-160(SHA-256(data)), the public-key-hash
// digest used by P2PKH locks.
func Hash160(data []byte) []byte {
	first := sha256.Sum256(data)
	h := ripemd160.New()
	h.Write(first[:])
	return h.Sum(nil)
}
