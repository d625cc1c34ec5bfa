package template

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/bsv-blockchain/bsv-wallet-helper-sub000/pkg/script"
)

func plainHashKey() LockKey {
	return LockKey{Hash: bytes.Repeat([]byte{0x22}, 20)}
}

func TestOrdinalLock_PlainFallsBackToP2PKH(t *testing.T) {
	ctx := context.Background()
	ordinal := NewOrdinalP2PKH(NewP2PKH(nil))

	plain, err := ordinal.Lock(ctx, plainHashKey(), nil, nil)
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	base, err := NewP2PKH(nil).Lock(ctx, plainHashKey())
	if err != nil {
		t.Fatalf("base lock: %v", err)
	}
	if !bytes.Equal(plain, base) {
		t.Fatal("without envelope or metadata the script must be plain P2PKH")
	}
}

func TestOrdinalLock_Envelope(t *testing.T) {
	ctx := context.Background()
	ordinal := NewOrdinalP2PKH(NewP2PKH(nil))

	data := []byte("hello ordinal")
	s, err := ordinal.Lock(ctx, plainHashKey(), &Inscription{
		DataB64:     base64.StdEncoding.EncodeToString(data),
		ContentType: "text/plain",
	}, nil)
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}

	// OP_FALSE OP_IF "ord" leads the envelope.
	if !bytes.HasPrefix(s, []byte{script.OpFALSE, script.OpIF, 0x03, 'o', 'r', 'd'}) {
		t.Fatalf("envelope prefix = %x", s[:8])
	}
	if !bytes.Contains(s, []byte("text/plain")) {
		t.Fatal("content type missing from envelope")
	}
	if !bytes.Contains(s, data) {
		t.Fatal("payload missing from envelope")
	}
	// The P2PKH tail survives intact after OP_ENDIF.
	if !bytes.Contains(s, append([]byte{0x76, 0xa9, 0x14}, bytes.Repeat([]byte{0x22}, 20)...)) {
		t.Fatal("P2PKH segment missing")
	}
}

func TestOrdinalLock_EnvelopeRequiresBothFields(t *testing.T) {
	ctx := context.Background()
	ordinal := NewOrdinalP2PKH(NewP2PKH(nil))

	cases := []*Inscription{
		{DataB64: "aGk="},
		{ContentType: "text/plain"},
		{},
	}
	for _, insc := range cases {
		if _, err := ordinal.Lock(ctx, plainHashKey(), insc, nil); !errors.Is(err, ErrInscriptionIncomplete) {
			t.Fatalf("inscription %+v error = %v", insc, err)
		}
	}
}

func TestOrdinalLock_BadBase64(t *testing.T) {
	ordinal := NewOrdinalP2PKH(NewP2PKH(nil))
	_, err := ordinal.Lock(context.Background(), plainHashKey(), &Inscription{
		DataB64:     "!!!not base64!!!",
		ContentType: "text/plain",
	}, nil)
	if err == nil {
		t.Fatal("expected error for invalid base64")
	}
}

func TestOrdinalLock_MAPMetadata(t *testing.T) {
	ctx := context.Background()
	ordinal := NewOrdinalP2PKH(NewP2PKH(nil))

	s, err := ordinal.Lock(ctx, plainHashKey(), nil, map[string]string{
		"app":  "testapp",
		"type": "post",
		"cmd":  "ignored",
		"name": "alice",
	})
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}

	asm := s.ASM()
	if !strings.Contains(asm, "OP_RETURN") {
		t.Fatal("MAP suffix missing OP_RETURN")
	}
	if !bytes.Contains(s, []byte(MAPPrefix)) {
		t.Fatal("MAP prefix missing")
	}
	if !bytes.Contains(s, []byte("SET")) {
		t.Fatal("SET command missing")
	}
	if !bytes.Contains(s, []byte("alice")) {
		t.Fatal("extra field missing")
	}
	if bytes.Contains(s, []byte("ignored")) {
		t.Fatal("reserved cmd key leaked into the script")
	}
	// app and type lead the pair list.
	appIdx := bytes.Index(s, []byte("testapp"))
	nameIdx := bytes.Index(s, []byte("alice"))
	if appIdx < 0 || nameIdx < 0 || appIdx > nameIdx {
		t.Fatalf("field order wrong: app at %d, name at %d", appIdx, nameIdx)
	}
}

func TestOrdinalLock_MetadataRequiresAppAndType(t *testing.T) {
	ctx := context.Background()
	ordinal := NewOrdinalP2PKH(NewP2PKH(nil))

	for _, meta := range []map[string]string{
		{"app": "x"},
		{"type": "y"},
		{},
	} {
		if _, err := ordinal.Lock(ctx, plainHashKey(), nil, meta); !errors.Is(err, ErrMetadataIncomplete) {
			t.Fatalf("metadata %v error = %v", meta, err)
		}
	}
}

func TestOrdinalLock_EnvelopeAndMetadataCombine(t *testing.T) {
	ctx := context.Background()
	ordinal := NewOrdinalP2PKH(NewP2PKH(nil))

	s, err := ordinal.Lock(ctx, plainHashKey(),
		&Inscription{DataB64: base64.StdEncoding.EncodeToString([]byte("x")), ContentType: "text/plain"},
		map[string]string{"app": "a", "type": "b"},
	)
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	envIdx := bytes.Index(s, []byte("ord"))
	p2pkhIdx := bytes.Index(s, []byte{0x76, 0xa9, 0x14})
	mapIdx := bytes.Index(s, []byte(MAPPrefix))
	if envIdx < 0 || p2pkhIdx < 0 || mapIdx < 0 {
		t.Fatalf("segment missing: env %d p2pkh %d map %d", envIdx, p2pkhIdx, mapIdx)
	}
	if !(envIdx < p2pkhIdx && p2pkhIdx < mapIdx) {
		t.Fatalf("segment order wrong: env %d p2pkh %d map %d", envIdx, p2pkhIdx, mapIdx)
	}
}
