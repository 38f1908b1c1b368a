package config

import (
	"fmt"
	"net/url"

	"github.com/Klingon-tech/klingnet-wallet/pkg/crypto"
)

// Validate checks the runtime config for obvious operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.Network != Mainnet && cfg.Network != Testnet {
		return fmt.Errorf("network must be %q or %q", Mainnet, Testnet)
	}
	if cfg.DataDir == "" {
		return fmt.Errorf("datadir must be set")
	}

	scheme, err := crypto.ParseScheme(cfg.Account.Scheme)
	if err != nil {
		return fmt.Errorf("account.scheme: %w", err)
	}

	switch cfg.Backend {
	case BackendRebased:
		if err := validateURL(cfg.Rebased.URL, "rebased.url"); err != nil {
			return err
		}
		if cfg.Rebased.CoinType == "" {
			return fmt.Errorf("rebased.cointype must be set")
		}
		if cfg.Rebased.GasBudget == 0 {
			return fmt.Errorf("rebased.gasbudget must be positive")
		}
		if cfg.Rebased.RateLimit < 0 {
			return fmt.Errorf("rebased.ratelimit must not be negative")
		}
	case BackendStardust:
		if err := validateURL(cfg.Stardust.URL, "stardust.url"); err != nil {
			return err
		}
		if scheme != crypto.Ed25519 {
			return fmt.Errorf("stardust backend requires account.scheme=ed25519")
		}
		if cfg.Stardust.RateLimit < 0 {
			return fmt.Errorf("stardust.ratelimit must not be negative")
		}
	default:
		return fmt.Errorf("backend must be %q or %q", BackendRebased, BackendStardust)
	}

	if cfg.Poll.Timeout <= 0 || cfg.Poll.Interval <= 0 || cfg.Poll.Delay < 0 {
		return fmt.Errorf("poll durations must be positive")
	}
	return nil
}

func validateURL(raw, field string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%s must be an http(s) URL", field)
	}
	return nil
}
