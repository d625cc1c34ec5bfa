// Package config handles runtime configuration for the CLI and any
// embedding application.
package config

import (
	"fmt"

	"github.com/bsv-blockchain/bsv-wallet-helper-sub000/pkg/tx"
)

// NetworkType identifies mainnet or testnet.
type NetworkType string

const (
	Mainnet NetworkType = "mainnet"
	Testnet NetworkType = "testnet"
)

// Config holds runtime settings. Protocol behavior (script layouts,
// sighash rules) is fixed in code and not configurable.
type Config struct {
	// Core
	Network NetworkType `conf:"network"`

	// FeeRate is the fee rate in satoshis per kilobyte applied when
	// back-filling change outputs.
	FeeRate uint64 `conf:"feerate"`

	// Logging
	Log LogConfig
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// Default returns the default configuration for the given network.
func Default(network NetworkType) *Config {
	return &Config{
		Network: network,
		FeeRate: tx.DefaultFeeRate,
		Log: LogConfig{
			Level: "info",
			JSON:  false,
		},
	}
}

// Validate checks the config for obvious operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.Network != Mainnet && cfg.Network != Testnet {
		return fmt.Errorf("network must be %q or %q", Mainnet, Testnet)
	}
	if cfg.FeeRate == 0 {
		return fmt.Errorf("feerate must be at least 1 satoshi per kilobyte")
	}
	switch cfg.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error")
	}
	return nil
}
