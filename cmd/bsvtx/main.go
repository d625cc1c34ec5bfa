// bsvtx is a command-line client for building and previewing BSV
// transactions with an in-process wallet.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/bsv-blockchain/bsv-wallet-helper-sub000/config"
	"github.com/bsv-blockchain/bsv-wallet-helper-sub000/internal/log"
	"github.com/bsv-blockchain/bsv-wallet-helper-sub000/pkg/build"
	"github.com/bsv-blockchain/bsv-wallet-helper-sub000/pkg/template"
	"github.com/bsv-blockchain/bsv-wallet-helper-sub000/pkg/wallet"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg := config.Default(config.Mainnet)
	args := parseGlobalFlags(cfg, os.Args[1:])

	if err := config.Validate(cfg); err != nil {
		fatalf("config: %v", err)
	}
	if err := log.Init(cfg.Log.Level, cfg.Log.JSON, cfg.Log.File); err != nil {
		fatalf("init logging: %v", err)
	}
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	cmd, args := args[0], args[1:]
	switch cmd {
	case "mnemonic":
		cmdMnemonic()
	case "pubkey":
		cmdPubkey(args)
	case "lock":
		cmdLock(args)
	case "preview":
		cmdPreview(cfg, args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		usage()
		os.Exit(1)
	}
}

// parseGlobalFlags consumes leading global flags into cfg and returns
// the remaining arguments, starting at the subcommand.
func parseGlobalFlags(cfg *config.Config, args []string) []string {
	for len(args) > 0 {
		switch {
		case args[0] == "--network" && len(args) > 1:
			cfg.Network = config.NetworkType(args[1])
			args = args[2:]
		case strings.HasPrefix(args[0], "--network="):
			cfg.Network = config.NetworkType(args[0][len("--network="):])
			args = args[1:]
		case args[0] == "--log-level" && len(args) > 1:
			cfg.Log.Level = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--log-level="):
			cfg.Log.Level = args[0][len("--log-level="):]
			args = args[1:]
		case args[0] == "--log-file" && len(args) > 1:
			cfg.Log.File = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--log-file="):
			cfg.Log.File = args[0][len("--log-file="):]
			args = args[1:]
		case args[0] == "--log-json":
			cfg.Log.JSON = true
			args = args[1:]
		default:
			return args
		}
	}
	return args
}

func usage() {
	fmt.Fprint(os.Stderr, `Usage: bsvtx [global flags] <command> [flags]

Commands:
  mnemonic   Generate a fresh 12-word wallet mnemonic
  pubkey     Derive and print a public key from a mnemonic wallet
  lock       Build a P2PKH locking script from a public key
  preview    Assemble a createAction request without submitting it

Global flags:
  --network <mainnet|testnet>   Network (default mainnet)
  --log-level <level>           debug, info, warn or error
  --log-file <path>             also append JSON logs to a file
  --log-json                    JSON log output
`)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// promptWallet reads a mnemonic from stdin and a passphrase without
// echo, then opens the in-process wallet.
func promptWallet() *wallet.MemoryWallet {
	fmt.Fprint(os.Stderr, "Mnemonic: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		fatalf("read mnemonic: %v", err)
	}

	fmt.Fprint(os.Stderr, "Passphrase (empty for none): ")
	pass, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		fatalf("read passphrase: %v", err)
	}

	w, err := wallet.NewMemoryWallet(strings.TrimSpace(line), string(pass))
	if err != nil {
		fatalf("open wallet: %v", err)
	}
	return w
}

func cmdMnemonic() {
	m, err := wallet.GenerateMnemonic()
	if err != nil {
		fatalf("generate mnemonic: %v", err)
	}
	fmt.Println(m)
}

func cmdPubkey(args []string) {
	fs := flag.NewFlagSet("pubkey", flag.ExitOnError)
	protocol := fs.String("protocol", "p2pkh", "derivation protocol name")
	level := fs.Int("level", 2, "derivation security level")
	keyID := fs.String("keyid", "0", "derivation key ID")
	counterparty := fs.String("counterparty", "self", "derivation counterparty")
	_ = fs.Parse(args)

	w := promptWallet()
	res, err := w.GetPublicKey(context.Background(), wallet.GetPublicKeyArgs{
		DerivationParams: wallet.DerivationParams{
			ProtocolID:   wallet.Protocol{SecurityLevel: wallet.SecurityLevel(*level), Name: *protocol},
			KeyID:        *keyID,
			Counterparty: *counterparty,
		},
	})
	if err != nil {
		fatalf("get public key: %v", err)
	}
	fmt.Println(res.PublicKey)
}

func cmdLock(args []string) {
	fs := flag.NewFlagSet("lock", flag.ExitOnError)
	pubkey := fs.String("pubkey", "", "compressed public key hex")
	asm := fs.Bool("asm", false, "print ASM instead of hex")
	_ = fs.Parse(args)
	if *pubkey == "" {
		fatalf("lock: --pubkey is required")
	}

	p2pkh := template.NewP2PKH(nil)
	s, err := p2pkh.Lock(context.Background(), template.LockKey{PublicKeyHex: *pubkey})
	if err != nil {
		fatalf("build lock: %v", err)
	}
	if *asm {
		fmt.Println(s.ASM())
		return
	}
	fmt.Println(s.Hex())
}

func cmdPreview(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("preview", flag.ExitOnError)
	to := fs.String("to", "", "recipient compressed public key hex (empty derives a fresh key)")
	satoshis := fs.Uint64("satoshis", 0, "output value in satoshis")
	opReturn := fs.String("opreturn", "", "comma-separated OP_RETURN fields")
	description := fs.String("description", "bsvtx preview", "action description")
	_ = fs.Parse(args)
	if *satoshis == 0 {
		fatalf("preview: --satoshis is required")
	}

	w := promptWallet()
	b := build.New(w, *description).FeeRate(cfg.FeeRate)
	out := b.AddP2PKHOutput(build.P2PKHOutput{
		Key:      template.LockKey{PublicKeyHex: *to},
		Satoshis: *satoshis,
	})
	if *opReturn != "" {
		out.AddOpReturn(strings.Split(*opReturn, ",")...)
	}

	preview, err := b.Preview(context.Background())
	if err != nil {
		fatalf("preview: %v", err)
	}
	blob, err := json.MarshalIndent(preview, "", "  ")
	if err != nil {
		fatalf("encode preview: %v", err)
	}
	fmt.Println(string(blob))
}
