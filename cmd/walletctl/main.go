// walletctl is a command-line wallet for the IOTA Stardust and rebased
// ledgers.
package main

import (
	"bufio"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/Klingon-tech/klingnet-wallet/config"
	"github.com/Klingon-tech/klingnet-wallet/internal/log"
	"github.com/Klingon-tech/klingnet-wallet/internal/wallet"
	"github.com/Klingon-tech/klingnet-wallet/pkg/amount"
	"github.com/Klingon-tech/klingnet-wallet/pkg/ledger"
)

const version = "0.1.0"

func main() {
	cfg, flags, err := config.Load(os.Args[1:])
	if errors.Is(err, config.ErrHelp) {
		config.PrintUsage(os.Stdout)
		return
	}
	if err != nil {
		fatal("%v", err)
	}
	if flags.Version {
		fmt.Printf("walletctl version %s\n", version)
		return
	}
	if len(flags.Args) == 0 {
		config.PrintUsage(os.Stderr)
		os.Exit(1)
	}
	if err := log.Init(cfg.Log.Level, cfg.Log.JSON, cfg.Log.File); err != nil {
		fatal("init logging: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd, cmdArgs := flags.Args[0], flags.Args[1:]
	switch cmd {
	case "init":
		cmdInit(cfg)
	case "import":
		cmdImport(cfg, cmdArgs)
	case "address":
		withWallet(cfg, func(w ledger.Wallet) { cmdAddress(ctx, w) })
	case "balance":
		withWallet(cfg, func(w ledger.Wallet) { cmdBalance(ctx, w) })
	case "send":
		intent := parseIntent("send", cmdArgs)
		withWallet(cfg, func(w ledger.Wallet) { cmdSend(ctx, w, intent) })
	case "estimate":
		intent := parseIntent("estimate", cmdArgs)
		withWallet(cfg, func(w ledger.Wallet) { cmdEstimate(ctx, w, intent) })
	case "tx":
		if len(cmdArgs) != 1 {
			fatal("Usage: walletctl tx <id>")
		}
		withWallet(cfg, func(w ledger.Wallet) { cmdTx(ctx, w, cmdArgs[0]) })
	case "txs":
		start, limit := parsePage(cmdArgs)
		withWallet(cfg, func(w ledger.Wallet) { cmdTxs(ctx, w, start, limit) })
	case "help":
		config.PrintUsage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		config.PrintUsage(os.Stderr)
		os.Exit(1)
	}
}

// ── Vault commands ──────────────────────────────────────────────────────

func cmdInit(cfg *config.Config) {
	vault := openVault(cfg)
	if vault.Exists() {
		fatal("vault already exists: %s", vault.Path())
	}
	mnemonic, err := wallet.GenerateMnemonic()
	if err != nil {
		fatal("generate mnemonic: %v", err)
	}

	fmt.Println("Mnemonic (write this down!):")
	fmt.Printf("  %s\n\n", mnemonic)

	createVault(vault, mnemonic)
	fmt.Printf("Vault created: %s\n", vault.Path())
}

func cmdImport(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	mnemonic := fs.String("mnemonic", "", "BIP-39 mnemonic (prompted when empty)")
	fs.Parse(args)

	vault := openVault(cfg)
	if vault.Exists() {
		fatal("vault already exists: %s", vault.Path())
	}
	words := *mnemonic
	if words == "" {
		var err error
		words, err = readLine("Enter mnemonic: ")
		if err != nil {
			fatal("read mnemonic: %v", err)
		}
	}
	if err := wallet.ValidateMnemonic(wallet.NormalizeMnemonic(words)); err != nil {
		fatal("%v", err)
	}

	createVault(vault, words)
	fmt.Printf("Vault imported: %s\n", vault.Path())
}

func openVault(cfg *config.Config) *wallet.Vault {
	vault, err := wallet.OpenVault(cfg.NetworkDir())
	if err != nil {
		fatal("open vault: %v", err)
	}
	return vault
}

func createVault(vault *wallet.Vault, mnemonic string) {
	password, err := readPassword("Enter password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	if string(password) != string(confirm) {
		fatal("passwords do not match")
	}
	if err := vault.Create(mnemonic, password, wallet.DefaultParams()); err != nil {
		fatal("create vault: %v", err)
	}
}

// ── Wallet commands ─────────────────────────────────────────────────────

func withWallet(cfg *config.Config, fn func(ledger.Wallet)) {
	vault := openVault(cfg)
	if !vault.Exists() {
		fatal("no vault at %s (run walletctl init or import)", vault.Path())
	}
	password, err := readPassword("Password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	mnemonic, err := vault.Load(password)
	if err != nil {
		fatal("%v", err)
	}

	b, err := openBackend(cfg, mnemonic)
	if err != nil {
		fatal("%v", err)
	}
	defer b.Close()
	fn(b.Wallet)
}

func cmdAddress(ctx context.Context, w ledger.Wallet) {
	addr, err := w.Address(ctx)
	if err != nil {
		fatal("get address: %v", err)
	}
	fmt.Println(addr)
}

func cmdBalance(ctx context.Context, w ledger.Wallet) {
	bal, err := w.Balance(ctx)
	if err != nil {
		fatal("get balance: %v", err)
	}
	fmt.Println(bal.String())
}

func cmdSend(ctx context.Context, w ledger.Wallet, intent *ledger.TransactionIntent) {
	id, err := w.SendAmount(ctx, intent)
	var confirm *ledger.ConfirmationError
	switch {
	case errors.As(err, &confirm):
		fmt.Printf("Transaction: %s\n", id)
		fatal("not confirmed after %s; check later with: walletctl tx %s", confirm.Waited, id)
	case err != nil && id != "":
		fmt.Printf("Transaction: %s\n", id)
		fatal("%v", err)
	case err != nil:
		fatal("send: %v", err)
	}
	fmt.Printf("Transaction: %s\n", id)
}

func cmdEstimate(ctx context.Context, w ledger.Wallet, intent *ledger.TransactionIntent) {
	est, err := w.EstimateGasCost(ctx, intent)
	if err != nil {
		fatal("estimate: %v", err)
	}
	printJSON(os.Stdout, est)
}

func cmdTx(ctx context.Context, w ledger.Wallet, id string) {
	tx, err := w.WalletTx(ctx, id)
	if err != nil {
		fatal("get transaction: %v", err)
	}
	printJSON(os.Stdout, tx)
}

func cmdTxs(ctx context.Context, w ledger.Wallet, start, limit int) {
	ids, err := w.WalletTxList(ctx, start, limit)
	if err != nil {
		fatal("list transactions: %v", err)
	}
	for _, id := range ids {
		fmt.Println(id)
	}
}

// ── Argument parsing ────────────────────────────────────────────────────

// parseIntent reads --to, --amount and --data (hex, or text with a
// "text:" prefix) into an intent.
func parseIntent(name string, args []string) *ledger.TransactionIntent {
	intent, err := intentFromArgs(name, args)
	if err != nil {
		fatal("%v", err)
	}
	return intent
}

func intentFromArgs(name string, args []string) (*ledger.TransactionIntent, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	to := fs.String("to", "", "Recipient address")
	amt := fs.String("amount", "", "Amount in coins (e.g. 1.5)")
	data := fs.String("data", "", "Optional payload: hex, or text:<string>")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *to == "" || *amt == "" {
		return nil, fmt.Errorf("usage: walletctl %s --to <address> --amount <coins> [--data <hex|text:...>]", name)
	}

	value, err := amount.Parse(*amt)
	if err != nil {
		return nil, err
	}
	intent := &ledger.TransactionIntent{AddressTo: *to, Amount: value}
	switch {
	case *data == "":
	case strings.HasPrefix(*data, "text:"):
		intent.Data = []byte(strings.TrimPrefix(*data, "text:"))
	default:
		b, err := hex.DecodeString(strings.TrimPrefix(*data, "0x"))
		if err != nil {
			return nil, fmt.Errorf("invalid --data hex: %w", err)
		}
		intent.Data = b
	}
	return intent, intent.Validate()
}

func parsePage(args []string) (int, int) {
	fs := flag.NewFlagSet("txs", flag.ExitOnError)
	start := fs.Int("start", 0, "Page number")
	limit := fs.Int("limit", 10, "Page size")
	fs.Parse(args)
	return *start, *limit
}

func printJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fatal("encode: %v", err)
	}
}

// ── Prompt helpers ──────────────────────────────────────────────────────

func readPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr) // newline after hidden input
	if err != nil {
		return nil, err
	}
	return password, nil
}

func readLine(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ── Error helper ────────────────────────────────────────────────────────

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
