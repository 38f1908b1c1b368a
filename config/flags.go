package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrHelp is returned by Load when --help was given.
var ErrHelp = flag.ErrHelp

// Flags holds parsed global command-line flags.
type Flags struct {
	// Commands
	Help    bool
	Version bool

	// Core
	Network string
	Testnet bool
	DataDir string
	Config  string
	Backend string

	// Endpoints
	RebasedURL  string
	StardustURL string

	// Key derivation
	Account      uint
	AddressIndex uint
	Scheme       string

	// Logging
	LogLevel string
	LogFile  string
	LogJSON  bool

	// Subcommand and its arguments.
	Args []string

	// Explicitly-set flags (for zero-value overrides).
	SetAccount      bool
	SetAddressIndex bool
	SetLogJSON      bool
}

// ParseFlags parses the global flags in args (without the program name).
// Parsing stops at the first positional argument, the subcommand.
func ParseFlags(args []string) (*Flags, error) {
	f := &Flags{}
	fs := flag.NewFlagSet("walletctl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	// Commands
	fs.BoolVar(&f.Help, "help", false, "Show help message")
	fs.BoolVar(&f.Help, "h", false, "Show help message (shorthand)")
	fs.BoolVar(&f.Version, "version", false, "Show version information")

	// Core
	fs.StringVar(&f.Network, "network", "", "Network type (mainnet or testnet)")
	fs.BoolVar(&f.Testnet, "testnet", false, "Shorthand for --network=testnet")
	fs.StringVar(&f.DataDir, "datadir", "", "Data directory path")
	fs.StringVar(&f.Config, "config", "", "Config file path")
	fs.StringVar(&f.Config, "c", "", "Config file path (shorthand)")
	fs.StringVar(&f.Backend, "backend", "", "Ledger backend (rebased or stardust)")

	// Endpoints
	fs.StringVar(&f.RebasedURL, "rebased-url", "", "Move-object ledger JSON-RPC endpoint")
	fs.StringVar(&f.StardustURL, "stardust-url", "", "UTXO ledger REST endpoint")

	// Key derivation
	fs.UintVar(&f.Account, "account", 0, "Account index of the derivation path")
	fs.UintVar(&f.AddressIndex, "address-index", 0, "Address index of the derivation path")
	fs.StringVar(&f.Scheme, "scheme", "", "Signature scheme (ed25519 or secp256k1)")

	// Logging
	fs.StringVar(&f.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.LogFile, "log-file", "", "Log file path")
	fs.BoolVar(&f.LogJSON, "log-json", false, "Output logs as JSON")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if f.Testnet {
		f.Network = string(Testnet)
	}
	f.SetAccount = isFlagSet(fs, "account")
	f.SetAddressIndex = isFlagSet(fs, "address-index")
	f.SetLogJSON = isFlagSet(fs, "log-json")
	f.Args = fs.Args()

	return f, nil
}

// ApplyFlags applies command-line flags to a Config struct.
func ApplyFlags(cfg *Config, f *Flags) {
	// Core
	if f.Network != "" {
		cfg.Network = NetworkType(strings.ToLower(f.Network))
	}
	if f.DataDir != "" {
		cfg.DataDir = f.DataDir
	}
	if f.Backend != "" {
		cfg.Backend = Backend(strings.ToLower(f.Backend))
	}

	// Endpoints
	if f.RebasedURL != "" {
		cfg.Rebased.URL = f.RebasedURL
	}
	if f.StardustURL != "" {
		cfg.Stardust.URL = f.StardustURL
	}

	// Key derivation
	if f.SetAccount {
		cfg.Account.Index = uint32(f.Account)
	}
	if f.SetAddressIndex {
		cfg.Account.AddressIndex = uint32(f.AddressIndex)
	}
	if f.Scheme != "" {
		cfg.Account.Scheme = strings.ToLower(f.Scheme)
	}

	// Logging
	if f.LogLevel != "" {
		cfg.Log.Level = f.LogLevel
	}
	if f.LogFile != "" {
		cfg.Log.File = f.LogFile
	}
	if f.SetLogJSON {
		cfg.Log.JSON = f.LogJSON
	}
}

// isFlagSet checks if a flag was explicitly set.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// PrintUsage writes the global usage text to w.
func PrintUsage(w io.Writer) {
	usage := `walletctl - IOTA wallet for the Stardust and rebased ledgers

Usage:
  walletctl [options] <command> [command options]

Commands:
  init                       Create a new mnemonic and encrypt it
  import                     Import an existing mnemonic
  address                    Show the wallet address
  balance                    Show the wallet balance
  send --to --amount [--data]
                             Send coins and wait for inclusion
  tx <id>                    Show one transaction
  txs [--start] [--limit]    List transaction ids
  estimate --to --amount     Estimate the fee of a send

Core Options:
  --network       Network type: mainnet (default) or testnet
  --testnet       Shorthand for --network=testnet
  --datadir       Data directory (default: ~/.klingnet-wallet)
  --config, -c    Config file path (default: <datadir>/walletctl.conf)
  --backend       Ledger backend: rebased (default) or stardust

Endpoint Options:
  --rebased-url   Move-object ledger JSON-RPC endpoint
  --stardust-url  UTXO ledger REST endpoint

Key Options:
  --account        Account index (default: 0)
  --address-index  Address index (default: 0)
  --scheme         ed25519 (default) or secp256k1

Logging Options:
  --log-level     Log level: debug, info, warn, error (default: info)
  --log-file      Log file path (default: stderr)
  --log-json      Output logs as JSON

Examples:
  walletctl --testnet init
  walletctl --backend=stardust balance
  walletctl send --to 0x1f... --amount 1.5
`
	fmt.Fprint(w, usage)
}

// Load resolves configuration with the following precedence:
// 1. Default values
// 2. Auto-create data dirs + default config (idempotent)
// 3. Config file
// 4. Command-line flags
//
// It returns ErrHelp when --help was given.
func Load(args []string) (*Config, *Flags, error) {
	flags, err := ParseFlags(args)
	if err != nil {
		return nil, nil, err
	}
	if flags.Help {
		return nil, flags, ErrHelp
	}

	network := Mainnet
	if strings.ToLower(flags.Network) == string(Testnet) {
		network = Testnet
	}
	cfg := Default(network)
	if flags.DataDir != "" {
		cfg.DataDir = flags.DataDir
	}

	if err := EnsureDataDirs(cfg); err != nil {
		return nil, nil, fmt.Errorf("ensuring data dirs: %w", err)
	}

	configPath := flags.Config
	if configPath == "" {
		configPath = cfg.ConfigFile()
	}
	fileValues, err := LoadFile(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config file: %w", err)
	}
	if err := ApplyFileConfig(cfg, fileValues); err != nil {
		return nil, nil, fmt.Errorf("applying config file: %w", err)
	}

	ApplyFlags(cfg, flags)
	if err := Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, flags, nil
}

// EnsureDataDirs creates the data and network directories and writes a
// default config file on first start.
func EnsureDataDirs(cfg *Config) error {
	for _, dir := range []string{cfg.DataDir, cfg.NetworkDir()} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}
	}
	path := cfg.ConfigFile()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return WriteDefaultConfig(path, cfg.Network)
	} else if err != nil {
		return err
	}
	return nil
}
