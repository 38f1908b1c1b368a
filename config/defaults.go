package config

import (
	"github.com/Klingon-tech/klingnet-wallet/internal/rebased"
	"github.com/Klingon-tech/klingnet-wallet/internal/stardust"
	"github.com/Klingon-tech/klingnet-wallet/internal/wallet"
	"github.com/Klingon-tech/klingnet-wallet/pkg/tx"
)

// DefaultMainnet returns the default configuration for mainnet.
func DefaultMainnet() *Config {
	return &Config{
		Network: Mainnet,
		DataDir: DefaultDataDir(),
		Backend: BackendRebased,
		Rebased: RebasedConfig{
			URL:        "https://api.mainnet.iota.cafe",
			NetworkKey: "iota_rebased_mainnet",
			CoinType:   rebased.DefaultCoinType,
			Decimals:   rebased.DefaultDecimals,
			GasBudget:  tx.DefaultGasBudget,
			RateLimit:  10,
			Explorer:   "https://explorer.iota.org",
		},
		Stardust: StardustConfig{
			URL:        "https://api.stardust-mainnet.iotaledger.net",
			NetworkKey: stardust.DefaultNetworkKey,
			CoinType:   wallet.CoinTypeIota,
			Decimals:   stardust.DefaultDecimals,
			RateLimit:  10,
			Explorer:   "https://explorer.iota.org/mainnet",
		},
		Account: AccountConfig{
			Scheme: "ed25519",
		},
		Poll: PollConfig{
			Timeout:  wallet.DefaultPollTimeout,
			Delay:    wallet.DefaultPollDelay,
			Interval: wallet.DefaultPollInterval,
		},
		Log: LogConfig{
			Level: "info",
			JSON:  false,
		},
	}
}

// DefaultTestnet returns the default configuration for testnet.
func DefaultTestnet() *Config {
	cfg := DefaultMainnet()
	cfg.Network = Testnet
	cfg.Rebased.URL = "https://api.testnet.iota.cafe"
	cfg.Rebased.NetworkKey = rebased.DefaultNetworkKey
	cfg.Rebased.Explorer = "https://explorer.iota.org/testnet"
	cfg.Stardust.URL = "https://api.testnet.iotaledger.net"
	cfg.Stardust.NetworkKey = "iota_stardust_testnet"
	cfg.Stardust.Explorer = "https://explorer.iota.org/iota-testnet"
	return cfg
}

// Default returns the default configuration for the given network.
func Default(network NetworkType) *Config {
	switch network {
	case Testnet:
		return DefaultTestnet()
	default:
		return DefaultMainnet()
	}
}

// PollPolicy converts the polling settings for the backends.
func (c *Config) PollPolicy() wallet.PollPolicy {
	return wallet.PollPolicy{Timeout: c.Poll.Timeout, Delay: c.Poll.Delay, Interval: c.Poll.Interval}
}

// RebasedWallet returns the Move-object backend settings.
func (c *Config) RebasedWallet() rebased.Config {
	return rebased.Config{
		NetworkKey:  c.Rebased.NetworkKey,
		CoinType:    c.Rebased.CoinType,
		Decimals:    c.Rebased.Decimals,
		GasBudget:   c.Rebased.GasBudget,
		ExplorerURL: c.Rebased.Explorer,
		Poll:        c.PollPolicy(),
	}
}

// StardustWallet returns the UTXO backend settings.
func (c *Config) StardustWallet() stardust.Config {
	return stardust.Config{
		NetworkKey:  c.Stardust.NetworkKey,
		Decimals:    c.Stardust.Decimals,
		ExplorerURL: c.Stardust.Explorer,
		Poll:        c.PollPolicy(),
	}
}
