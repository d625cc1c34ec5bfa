package template

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/bsv-blockchain/bsv-wallet-helper-sub000/pkg/crypto"
	"github.com/bsv-blockchain/bsv-wallet-helper-sub000/pkg/script"
	"github.com/bsv-blockchain/bsv-wallet-helper-sub000/pkg/tx"
	"github.com/bsv-blockchain/bsv-wallet-helper-sub000/pkg/wallet"
)

func testWallet(t *testing.T) *wallet.MemoryWallet {
	t.Helper()
	w, err := wallet.NewMemoryWalletFromSeed([]byte("0123456789abcdef0123456789abcdef"))
	if err != nil {
		t.Fatalf("NewMemoryWalletFromSeed: %v", err)
	}
	return w
}

func TestP2PKHLock_ByteLayout(t *testing.T) {
	hash := bytes.Repeat([]byte{0x11}, 20)
	s, err := NewP2PKH(nil).Lock(context.Background(), LockKey{Hash: hash})
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}

	want := append([]byte{0x76, 0xa9, 0x14}, hash...)
	want = append(want, 0x88, 0xac)
	if !bytes.Equal(s, want) {
		t.Fatalf("script = %x, want %x", s, want)
	}
}

func TestP2PKHLock_PublicKeyMatchesDerivation(t *testing.T) {
	w := testWallet(t)
	ctx := context.Background()
	derivation := wallet.SelfDerivation()

	pubRes, err := w.GetPublicKey(ctx, wallet.GetPublicKeyArgs{DerivationParams: derivation})
	if err != nil {
		t.Fatalf("GetPublicKey: %v", err)
	}

	p2pkh := NewP2PKH(w)
	byKey, err := p2pkh.Lock(ctx, LockKey{PublicKeyHex: pubRes.PublicKey})
	if err != nil {
		t.Fatalf("lock by public key: %v", err)
	}
	byDerivation, err := p2pkh.Lock(ctx, LockKey{Derivation: &derivation})
	if err != nil {
		t.Fatalf("lock by derivation: %v", err)
	}
	if !bytes.Equal(byKey, byDerivation) {
		t.Fatalf("scripts differ: %x vs %x", byKey, byDerivation)
	}

	// An empty key with a wallet attached falls back to the same default
	// derivation.
	byDefault, err := p2pkh.Lock(ctx, LockKey{})
	if err != nil {
		t.Fatalf("lock by default: %v", err)
	}
	if !bytes.Equal(byKey, byDefault) {
		t.Fatal("default derivation lock differs from explicit self derivation")
	}
}

func TestP2PKHLock_KeyErrors(t *testing.T) {
	ctx := context.Background()
	p2pkh := NewP2PKH(nil)

	if _, err := p2pkh.Lock(ctx, LockKey{Hash: []byte{1, 2, 3}}); !errors.Is(err, ErrBadHashSize) {
		t.Fatalf("short hash error = %v", err)
	}
	if _, err := p2pkh.Lock(ctx, LockKey{}); !errors.Is(err, ErrNoLockKey) {
		t.Fatalf("empty key error = %v", err)
	}
	both := LockKey{Hash: bytes.Repeat([]byte{1}, 20), PublicKeyHex: "02ab"}
	if _, err := p2pkh.Lock(ctx, both); !errors.Is(err, ErrLockKeyConflict) {
		t.Fatalf("conflict error = %v", err)
	}

	d := wallet.SelfDerivation()
	if _, err := p2pkh.Lock(ctx, LockKey{Derivation: &d}); !errors.Is(err, wallet.ErrNoWallet) {
		t.Fatalf("walletless derivation error = %v", err)
	}
}

func TestP2PKHUnlock_EstimateConstant(t *testing.T) {
	w := testWallet(t)
	unlocker, err := NewP2PKH(w).Unlock(UnlockParams{Derivation: wallet.SelfDerivation()})
	if err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	n, err := unlocker.EstimateLength(context.Background(), nil, 0)
	if err != nil || n != P2PKHUnlockEstimate {
		t.Fatalf("estimate = %d, %v, want %d", n, err, P2PKHUnlockEstimate)
	}
}

func TestP2PKHUnlock_NoWallet(t *testing.T) {
	if _, err := NewP2PKH(nil).Unlock(UnlockParams{}); !errors.Is(err, wallet.ErrNoWallet) {
		t.Fatalf("error = %v, want ErrNoWallet", err)
	}
}

// signedSpend builds a source output locked to the wallet's default key
// and a spending transaction signed by the unlocker.
func signedSpend(t *testing.T, w *wallet.MemoryWallet) (*tx.Transaction, script.Script) {
	t.Helper()
	ctx := context.Background()
	p2pkh := NewP2PKH(w)

	locking, err := p2pkh.Lock(ctx, LockKey{})
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	source := tx.New()
	source.AddOutput(&tx.Output{Satoshis: 5000, LockingScript: locking})

	spend := tx.New()
	unlocker, err := p2pkh.Unlock(UnlockParams{Derivation: wallet.SelfDerivation()})
	if err != nil {
		t.Fatalf("unlock: %v", err)
	}
	spend.AddInput(&tx.Input{SourceTransaction: source, Unlocker: unlocker})
	spend.AddOutput(&tx.Output{Satoshis: 4900, LockingScript: locking})

	if err := spend.Sign(ctx); err != nil {
		t.Fatalf("sign: %v", err)
	}
	return spend, locking
}

func TestP2PKHUnlock_SignRoundTrip(t *testing.T) {
	w := testWallet(t)
	spend, locking := signedSpend(t, w)

	chunks, err := spend.Inputs[0].UnlockingScript.Chunks()
	if err != nil {
		t.Fatalf("chunks: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("chunk count = %d, want sig and pubkey", len(chunks))
	}
	sig, pub := chunks[0].Data, chunks[1].Data
	if len(pub) != crypto.CompressedPubKeySize {
		t.Fatalf("pubkey length = %d", len(pub))
	}

	// The scope byte trails the DER signature.
	if sig[len(sig)-1] != 0x41 {
		t.Fatalf("scope byte = %#x, want ALL|FORKID", sig[len(sig)-1])
	}

	// The pubkey must hash to the locked-to hash.
	lockChunks, err := locking.Chunks()
	if err != nil {
		t.Fatalf("lock chunks: %v", err)
	}
	if !bytes.Equal(crypto.Hash160(pub), lockChunks[2].Data) {
		t.Fatal("pubkey does not match locked hash")
	}

	// The DER portion must verify against the recomputed digest.
	digest, _, err := tx.SighashDigest(spend, 0, tx.SignOutputsAll, false)
	if err != nil {
		t.Fatalf("digest: %v", err)
	}
	if !crypto.VerifyHashSignature(digest.Bytes(), sig[:len(sig)-1], pub) {
		t.Fatal("signature failed verification")
	}
}

func TestP2PKHUnlock_MultiInput(t *testing.T) {
	w := testWallet(t)
	ctx := context.Background()
	p2pkh := NewP2PKH(w)

	locking, err := p2pkh.Lock(ctx, LockKey{})
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	sourceA := tx.New()
	sourceA.AddOutput(&tx.Output{Satoshis: 1000, LockingScript: locking})
	sourceB := tx.New()
	sourceB.AddOutput(&tx.Output{Satoshis: 2000, LockingScript: locking})
	sourceB.AddOutput(&tx.Output{Satoshis: 3000, LockingScript: locking})

	spend := tx.New()
	for _, src := range []*tx.Transaction{sourceA, sourceB} {
		unlocker, err := p2pkh.Unlock(UnlockParams{Derivation: wallet.SelfDerivation()})
		if err != nil {
			t.Fatalf("unlock: %v", err)
		}
		spend.AddInput(&tx.Input{SourceTransaction: src, Unlocker: unlocker})
	}
	spend.AddOutput(&tx.Output{Satoshis: 2500, LockingScript: locking})

	if err := spend.Sign(ctx); err != nil {
		t.Fatalf("sign: %v", err)
	}
	for i := range spend.Inputs {
		digest, _, err := tx.SighashDigest(spend, i, tx.SignOutputsAll, false)
		if err != nil {
			t.Fatalf("digest %d: %v", i, err)
		}
		chunks, err := spend.Inputs[i].UnlockingScript.Chunks()
		if err != nil || len(chunks) != 2 {
			t.Fatalf("input %d chunks: %v", i, err)
		}
		sig := chunks[0].Data
		if !crypto.VerifyHashSignature(digest.Bytes(), sig[:len(sig)-1], chunks[1].Data) {
			t.Fatalf("input %d signature failed verification", i)
		}
	}
}
