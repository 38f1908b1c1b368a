// Package config handles walletctl configuration.
//
// Settings are resolved in order: per-network defaults, the .conf file in
// the data directory, then command-line flags.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// NetworkType identifies mainnet or testnet.
type NetworkType string

const (
	Mainnet NetworkType = "mainnet"
	Testnet NetworkType = "testnet"
)

// Backend selects the ledger the wallet talks to.
type Backend string

const (
	BackendRebased  Backend = "rebased"
	BackendStardust Backend = "stardust"
)

// Config holds the runtime configuration of the wallet.
type Config struct {
	// Core
	Network NetworkType `conf:"network"`
	DataDir string      `conf:"datadir"`
	Backend Backend     `conf:"backend"`

	// Move-object ledger
	Rebased RebasedConfig

	// UTXO ledger
	Stardust StardustConfig

	// Key derivation
	Account AccountConfig

	// Inclusion polling
	Poll PollConfig

	// Logging
	Log LogConfig
}

// RebasedConfig holds the Move-object backend settings.
type RebasedConfig struct {
	URL        string  `conf:"rebased.url"`
	NetworkKey string  `conf:"rebased.network_key"`
	CoinType   string  `conf:"rebased.cointype"` // Move coin type, e.g. 0x2::iota::IOTA
	Decimals   uint32  `conf:"rebased.decimals"`
	GasBudget  uint64  `conf:"rebased.gasbudget"`
	RateLimit  float64 `conf:"rebased.ratelimit"` // Requests per second, 0 = unlimited
	Explorer   string  `conf:"rebased.explorer"`
}

// StardustConfig holds the UTXO backend settings.
type StardustConfig struct {
	URL        string  `conf:"stardust.url"`
	NetworkKey string  `conf:"stardust.network_key"`
	CoinType   uint32  `conf:"stardust.cointype"` // SLIP-44 coin type of the key path
	Decimals   uint32  `conf:"stardust.decimals"`
	RateLimit  float64 `conf:"stardust.ratelimit"`
	Explorer   string  `conf:"stardust.explorer"`
}

// AccountConfig selects the derived key.
type AccountConfig struct {
	Index        uint32 `conf:"account.index"`
	AddressIndex uint32 `conf:"account.address_index"`
	Scheme       string `conf:"account.scheme"` // ed25519 or secp256k1
}

// PollConfig bounds inclusion polling after a send.
type PollConfig struct {
	Timeout  time.Duration `conf:"poll.timeout"`
	Delay    time.Duration `conf:"poll.delay"`
	Interval time.Duration `conf:"poll.interval"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// =============================================================================
// Directory helpers
// =============================================================================

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.klingnet-wallet
//	macOS:   ~/Library/Application Support/KlingnetWallet
//	Windows: %APPDATA%\KlingnetWallet
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".klingnet-wallet"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "KlingnetWallet")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "KlingnetWallet")
		}
		return filepath.Join(home, "AppData", "Roaming", "KlingnetWallet")
	default:
		return filepath.Join(home, ".klingnet-wallet")
	}
}

// NetworkDir returns the network-specific data directory. It holds the
// encrypted mnemonic vault.
func (c *Config) NetworkDir() string {
	return filepath.Join(c.DataDir, string(c.Network))
}

// JournalDir returns the directory of the send journal database.
func (c *Config) JournalDir() string {
	return filepath.Join(c.NetworkDir(), "journal")
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "walletctl.conf")
}
