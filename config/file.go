package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// LoadFile reads a .conf file into a key/value map.
// Format: key = value (one per line, # for comments). A missing file
// yields an empty map.
func LoadFile(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}
	defer file.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("line %d: invalid format (expected key = value)", lineNum)
		}
		key = strings.TrimSpace(key)
		value = unquote(strings.TrimSpace(value))
		if key == "" {
			return nil, fmt.Errorf("line %d: empty key", lineNum)
		}
		values[key] = value
	}

	return values, scanner.Err()
}

func unquote(v string) string {
	if len(v) >= 2 {
		if (v[0] == '"' && v[len(v)-1] == '"') || (v[0] == '\'' && v[len(v)-1] == '\'') {
			return v[1 : len(v)-1]
		}
	}
	return v
}

// ApplyFileConfig applies file values to cfg.
func ApplyFileConfig(cfg *Config, values map[string]string) error {
	for key, value := range values {
		if err := setConfigValue(cfg, key, value); err != nil {
			return fmt.Errorf("config key %q: %w", key, err)
		}
	}
	return nil
}

// setConfigValue sets one config value by key. Unknown keys are ignored.
func setConfigValue(cfg *Config, key, value string) error {
	var err error
	switch key {
	// Core
	case "network":
		cfg.Network = NetworkType(strings.ToLower(value))
	case "datadir":
		cfg.DataDir = value
	case "backend":
		cfg.Backend = Backend(strings.ToLower(value))

	// Move-object ledger
	case "rebased.url":
		cfg.Rebased.URL = value
	case "rebased.network_key":
		cfg.Rebased.NetworkKey = value
	case "rebased.cointype":
		cfg.Rebased.CoinType = value
	case "rebased.decimals":
		cfg.Rebased.Decimals, err = parseUint32(value)
	case "rebased.gasbudget":
		cfg.Rebased.GasBudget, err = strconv.ParseUint(value, 10, 64)
	case "rebased.ratelimit":
		cfg.Rebased.RateLimit, err = strconv.ParseFloat(value, 64)
	case "rebased.explorer":
		cfg.Rebased.Explorer = value

	// UTXO ledger
	case "stardust.url":
		cfg.Stardust.URL = value
	case "stardust.network_key":
		cfg.Stardust.NetworkKey = value
	case "stardust.cointype":
		cfg.Stardust.CoinType, err = parseUint32(value)
	case "stardust.decimals":
		cfg.Stardust.Decimals, err = parseUint32(value)
	case "stardust.ratelimit":
		cfg.Stardust.RateLimit, err = strconv.ParseFloat(value, 64)
	case "stardust.explorer":
		cfg.Stardust.Explorer = value

	// Key derivation
	case "account.index":
		cfg.Account.Index, err = parseUint32(value)
	case "account.address_index":
		cfg.Account.AddressIndex, err = parseUint32(value)
	case "account.scheme":
		cfg.Account.Scheme = strings.ToLower(value)

	// Polling
	case "poll.timeout":
		cfg.Poll.Timeout, err = time.ParseDuration(value)
	case "poll.delay":
		cfg.Poll.Delay, err = time.ParseDuration(value)
	case "poll.interval":
		cfg.Poll.Interval, err = time.ParseDuration(value)

	// Logging
	case "log.level":
		cfg.Log.Level = value
	case "log.file":
		cfg.Log.File = value
	case "log.json":
		cfg.Log.JSON = parseBool(value)
	}
	return err
}

// parseBool parses a boolean value.
func parseBool(s string) bool {
	s = strings.ToLower(s)
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

func parseUint32(s string) (uint32, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	return uint32(n), err
}

// WriteDefaultConfig writes a commented default configuration file.
func WriteDefaultConfig(path string, network NetworkType) error {
	d := Default(network)
	content := `# Klingnet Wallet Configuration

# Network: mainnet or testnet
network = ` + string(network) + `

# Data directory (default: ~/.klingnet-wallet)
# datadir = ~/.klingnet-wallet

# Ledger backend: rebased or stardust
backend = ` + string(d.Backend) + `

# ============================================================================
# Move-object ledger (rebased)
# ============================================================================

rebased.url = ` + d.Rebased.URL + `
rebased.network_key = ` + d.Rebased.NetworkKey + `
rebased.cointype = ` + d.Rebased.CoinType + `
rebased.decimals = ` + strconv.FormatUint(uint64(d.Rebased.Decimals), 10) + `
rebased.gasbudget = ` + strconv.FormatUint(d.Rebased.GasBudget, 10) + `
# Requests per second, 0 disables pacing
rebased.ratelimit = ` + strconv.FormatFloat(d.Rebased.RateLimit, 'f', -1, 64) + `
rebased.explorer = ` + d.Rebased.Explorer + `

# ============================================================================
# UTXO ledger (stardust)
# ============================================================================

stardust.url = ` + d.Stardust.URL + `
stardust.network_key = ` + d.Stardust.NetworkKey + `
# 4218 = IOTA, 4219 = Shimmer
stardust.cointype = ` + strconv.FormatUint(uint64(d.Stardust.CoinType), 10) + `
stardust.decimals = ` + strconv.FormatUint(uint64(d.Stardust.Decimals), 10) + `
stardust.ratelimit = ` + strconv.FormatFloat(d.Stardust.RateLimit, 'f', -1, 64) + `
stardust.explorer = ` + d.Stardust.Explorer + `

# ============================================================================
# Key derivation
# ============================================================================

account.index = 0
account.address_index = 0
# ed25519 or secp256k1 (secp256k1 is rebased only)
account.scheme = ` + d.Account.Scheme + `

# ============================================================================
# Inclusion polling
# ============================================================================

poll.timeout = ` + d.Poll.Timeout.String() + `
poll.delay = ` + d.Poll.Delay.String() + `
poll.interval = ` + d.Poll.Interval.String() + `

# ============================================================================
# Logging
# ============================================================================

log.level = info
# log.file =
log.json = false
`
	return os.WriteFile(path, []byte(content), 0600)
}
