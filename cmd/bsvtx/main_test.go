package main

import (
	"testing"

	"github.com/bsv-blockchain/bsv-wallet-helper-sub000/config"
)

func TestParseGlobalFlags(t *testing.T) {
	cfg := config.Default(config.Mainnet)
	rest := parseGlobalFlags(cfg, []string{
		"--network", "testnet",
		"--log-level=debug",
		"--log-file", "/tmp/bsvtx.log",
		"--log-json",
		"preview", "--satoshis", "1000",
	})

	if cfg.Network != config.Testnet {
		t.Fatalf("network = %q, want testnet", cfg.Network)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("log level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Log.File != "/tmp/bsvtx.log" {
		t.Fatalf("log file = %q, want /tmp/bsvtx.log", cfg.Log.File)
	}
	if !cfg.Log.JSON {
		t.Fatal("log json not set")
	}
	if len(rest) != 3 || rest[0] != "preview" {
		t.Fatalf("remaining args = %v, want subcommand first", rest)
	}
}

func TestParseGlobalFlags_EqualsForm(t *testing.T) {
	cfg := config.Default(config.Mainnet)
	rest := parseGlobalFlags(cfg, []string{"--log-file=out.log", "mnemonic"})
	if cfg.Log.File != "out.log" {
		t.Fatalf("log file = %q, want out.log", cfg.Log.File)
	}
	if len(rest) != 1 || rest[0] != "mnemonic" {
		t.Fatalf("remaining args = %v, want [mnemonic]", rest)
	}
}
