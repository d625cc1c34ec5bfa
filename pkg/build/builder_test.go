package build

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"testing"

	"github.com/bsv-blockchain/bsv-wallet-helper-sub000/pkg/template"
	"github.com/bsv-blockchain/bsv-wallet-helper-sub000/pkg/tx"
	"github.com/bsv-blockchain/bsv-wallet-helper-sub000/pkg/wallet"
)

// countingWallet wraps the in-process wallet and records calls.
type countingWallet struct {
	*wallet.MemoryWallet
	pubKeyCalls int
	signCalls   int
	actionCalls int
	lastAction  wallet.CreateActionArgs
}

func (c *countingWallet) GetPublicKey(ctx context.Context, args wallet.GetPublicKeyArgs) (*wallet.GetPublicKeyResult, error) {
	c.pubKeyCalls++
	return c.MemoryWallet.GetPublicKey(ctx, args)
}

func (c *countingWallet) CreateSignature(ctx context.Context, args wallet.CreateSignatureArgs) (*wallet.CreateSignatureResult, error) {
	c.signCalls++
	return c.MemoryWallet.CreateSignature(ctx, args)
}

func (c *countingWallet) CreateAction(ctx context.Context, args wallet.CreateActionArgs) (*wallet.CreateActionResult, error) {
	c.actionCalls++
	c.lastAction = args
	return c.MemoryWallet.CreateAction(ctx, args)
}

func newCountingWallet(t *testing.T) *countingWallet {
	t.Helper()
	w, err := wallet.NewMemoryWalletFromSeed([]byte("0123456789abcdef0123456789abcdef"))
	if err != nil {
		t.Fatalf("NewMemoryWalletFromSeed: %v", err)
	}
	return &countingWallet{MemoryWallet: w}
}

// walletPubKey returns the wallet's default-derivation public key hex.
func walletPubKey(t *testing.T, w wallet.Wallet) string {
	t.Helper()
	res, err := w.GetPublicKey(context.Background(), wallet.GetPublicKeyArgs{
		DerivationParams: wallet.SelfDerivation(),
	})
	if err != nil {
		t.Fatalf("GetPublicKey: %v", err)
	}
	return res.PublicKey
}

// fundingSource returns a transaction with one output locked to the
// wallet's default key.
func fundingSource(t *testing.T, w wallet.Wallet, satoshis uint64) *tx.Transaction {
	t.Helper()
	locking, err := template.NewP2PKH(w).Lock(context.Background(), template.LockKey{})
	if err != nil {
		t.Fatalf("funding lock: %v", err)
	}
	source := tx.New()
	source.AddOutput(&tx.Output{Satoshis: satoshis, LockingScript: locking})
	return source
}

func TestBuild_NoOutputsFailsBeforeWalletCalls(t *testing.T) {
	w := newCountingWallet(t)
	b := New(w, "empty")

	if _, err := b.Build(context.Background()); !errors.Is(err, ErrNoOutputs) {
		t.Fatalf("error = %v, want ErrNoOutputs", err)
	}
	if w.pubKeyCalls+w.signCalls+w.actionCalls != 0 {
		t.Fatal("wallet was called before shape validation failed")
	}
}

func TestBuild_ChangeWithoutInputFailsBeforeResolution(t *testing.T) {
	w := newCountingWallet(t)
	b := New(w, "bad change")
	b.AddChangeOutput(template.LockKey{})

	if _, err := b.Build(context.Background()); !errors.Is(err, ErrChangeWithoutInput) {
		t.Fatalf("error = %v, want ErrChangeWithoutInput", err)
	}
	if w.pubKeyCalls+w.signCalls+w.actionCalls != 0 {
		t.Fatal("wallet was called before shape validation failed")
	}
}

func TestBuild_SingleP2PKHOutput(t *testing.T) {
	w := newCountingWallet(t)

	b := New(w, "simple payment")
	b.AddP2PKHOutput(P2PKHOutput{
		Key:      template.LockKey{Hash: bytes.Repeat([]byte{0x11}, 20)},
		Satoshis: 1000,
	})

	res, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if res.Txid == "" {
		t.Fatal("empty txid")
	}
	if w.actionCalls != 1 {
		t.Fatalf("createAction calls = %d, want 1", w.actionCalls)
	}

	action := w.lastAction
	if len(action.Outputs) != 1 {
		t.Fatalf("outputs = %d, want 1", len(action.Outputs))
	}
	if action.Outputs[0].Satoshis != 1000 {
		t.Fatalf("satoshis = %d, want 1000", action.Outputs[0].Satoshis)
	}
	raw, err := hex.DecodeString(action.Outputs[0].LockingScript)
	if err != nil {
		t.Fatalf("locking script hex: %v", err)
	}
	if bytes.IndexByte(raw, 0x6a) >= 0 {
		t.Fatalf("unexpected OP_RETURN byte in %x", raw)
	}
}

func TestBuild_OpReturnAppendsRawFields(t *testing.T) {
	w := newCountingWallet(t)

	b := New(w, "with metadata")
	b.AddP2PKHOutput(P2PKHOutput{
		Key:      template.LockKey{Hash: bytes.Repeat([]byte{0x11}, 20)},
		Satoshis: 1000,
	}).AddOpReturn("hello")

	if _, err := b.Build(context.Background()); err != nil {
		t.Fatalf("Build: %v", err)
	}
	raw, err := hex.DecodeString(w.lastAction.Outputs[0].LockingScript)
	if err != nil {
		t.Fatalf("locking script hex: %v", err)
	}
	want := append([]byte{0x6a}, []byte("hello")...)
	if !bytes.Contains(raw, want) {
		t.Fatalf("locking script %x missing OP_RETURN payload", raw)
	}
}

func TestBuild_OneShot(t *testing.T) {
	w := newCountingWallet(t)
	pk := walletPubKey(t, w)

	b := New(w, "once")
	b.AddP2PKHOutput(P2PKHOutput{Key: template.LockKey{PublicKeyHex: pk}, Satoshis: 500})
	if _, err := b.Build(context.Background()); err != nil {
		t.Fatalf("first build: %v", err)
	}
	if _, err := b.Build(context.Background()); !errors.Is(err, ErrAlreadyBuilt) {
		t.Fatalf("second build error = %v, want ErrAlreadyBuilt", err)
	}
}

func TestBuild_AutoDerivationRecordsCustomInstructions(t *testing.T) {
	w := newCountingWallet(t)

	b := New(w, "derived output")
	b.AddP2PKHOutput(P2PKHOutput{Satoshis: 1000})

	args, err := b.Preview(context.Background())
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	var instructions struct {
		DerivationPrefix string `json:"derivationPrefix"`
		DerivationSuffix string `json:"derivationSuffix"`
	}
	if err := json.Unmarshal([]byte(args.Outputs[0].CustomInstructions), &instructions); err != nil {
		t.Fatalf("customInstructions not JSON: %v", err)
	}
	if instructions.DerivationPrefix == "" || instructions.DerivationSuffix == "" {
		t.Fatalf("prefix/suffix missing: %+v", instructions)
	}
}

func TestBuild_SignedWithChange(t *testing.T) {
	w := newCountingWallet(t)
	pk := walletPubKey(t, w)
	source := fundingSource(t, w, 10000)

	b := New(w, "spend with change")
	b.AddP2PKHInput(P2PKHInput{SourceTransaction: source}).
		Description("funding")
	b.AddP2PKHOutput(P2PKHOutput{Key: template.LockKey{PublicKeyHex: pk}, Satoshis: 4000}).
		Description("payment").
		Basket("payments")
	b.AddChangeOutput(template.LockKey{PublicKeyHex: pk})

	res, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if res.Txid == "" {
		t.Fatal("empty txid")
	}

	action := w.lastAction
	if len(action.Inputs) != 1 || len(action.Outputs) != 2 {
		t.Fatalf("shape = %d inputs, %d outputs", len(action.Inputs), len(action.Outputs))
	}
	wantOutpoint := source.TxID().String() + ".0"
	if action.Inputs[0].Outpoint != wantOutpoint {
		t.Fatalf("outpoint = %s, want %s", action.Inputs[0].Outpoint, wantOutpoint)
	}
	if action.Inputs[0].UnlockingScript == "" {
		t.Fatal("unlocking script not backfilled")
	}
	if action.Inputs[0].InputDescription != "funding" {
		t.Fatalf("input description = %q", action.Inputs[0].InputDescription)
	}
	if action.Outputs[1].Satoshis == 0 || action.Outputs[1].Satoshis >= 6000 {
		t.Fatalf("change satoshis = %d", action.Outputs[1].Satoshis)
	}
	if action.Outputs[0].Basket != "payments" {
		t.Fatalf("basket = %q", action.Outputs[0].Basket)
	}
	if len(action.InputBEEF) == 0 {
		t.Fatal("inputBEEF missing")
	}
	if !bytes.HasPrefix(action.InputBEEF, []byte{0x01, 0x00, 0xbe, 0xef}) {
		t.Fatalf("inputBEEF prefix = %x", action.InputBEEF[:4])
	}
}

func TestBuild_CustomInputAndOutput(t *testing.T) {
	w := newCountingWallet(t)
	source := fundingSource(t, w, 2000)

	locking, err := template.NewP2PKH(nil).Lock(context.Background(), template.LockKey{
		Hash: bytes.Repeat([]byte{0x44}, 20),
	})
	if err != nil {
		t.Fatalf("custom lock: %v", err)
	}

	b := New(w, "custom")
	b.AddCustomInput(CustomInput{
		SourceTransaction: source,
		UnlockingScript:   []byte{0x00},
	})
	b.AddCustomOutput(CustomOutput{LockingScript: locking, Satoshis: 1500})

	args, err := b.Preview(context.Background())
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if args.Inputs[0].UnlockingScript != "00" {
		t.Fatalf("unlocking script = %q", args.Inputs[0].UnlockingScript)
	}
	if args.Outputs[0].LockingScript != locking.Hex() {
		t.Fatal("custom locking script altered")
	}
}

func TestBuild_CustomInputNeedsUnlockSource(t *testing.T) {
	w := newCountingWallet(t)
	b := New(w, "bad custom")
	b.AddCustomInput(CustomInput{SourceTransaction: fundingSource(t, w, 100)})
	b.AddP2PKHOutput(P2PKHOutput{Satoshis: 50})

	if _, err := b.Preview(context.Background()); !errors.Is(err, ErrNoUnlockSource) {
		t.Fatalf("error = %v, want ErrNoUnlockSource", err)
	}
}

func TestBuilder_OptionsValidation(t *testing.T) {
	b := New(newCountingWallet(t), "opts")
	if err := b.Options(&wallet.ActionOptions{TrustSelf: "nonsense"}); err == nil {
		t.Fatal("expected error for bad trustSelf")
	}
	if err := b.Options(&wallet.ActionOptions{TrustSelf: wallet.TrustSelfKnown}); err != nil {
		t.Fatalf("valid options rejected: %v", err)
	}
}

func TestBuild_PreviewDoesNotSubmit(t *testing.T) {
	w := newCountingWallet(t)
	pk := walletPubKey(t, w)

	b := New(w, "preview only")
	b.AddP2PKHOutput(P2PKHOutput{Key: template.LockKey{PublicKeyHex: pk}, Satoshis: 123})

	args, err := b.Preview(context.Background())
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if args.Description != "preview only" {
		t.Fatalf("description = %q", args.Description)
	}
	if w.actionCalls != 0 {
		t.Fatal("preview submitted the action")
	}
}
