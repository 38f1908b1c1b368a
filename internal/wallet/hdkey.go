package wallet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tyler-smith/go-bip32"

	"github.com/Klingon-tech/klingnet-wallet/pkg/crypto"
)

// HardenedOffset marks a hardened derivation index.
const HardenedOffset = bip32.FirstHardenedChild

// Derivation path constants.
const (
	// PurposeBIP44 is used by Ed25519 keys: m/44'/coin'/account'/0'/index'.
	PurposeBIP44 = 44
	// PurposeSecp256k1 is used by Secp256k1 keys on the Move-object
	// ledger: m/54'/coin'/account'/0/index.
	PurposeSecp256k1 = 54

	// CoinTypeIota is the registered SLIP-44 coin type of IOTA.
	CoinTypeIota = 4218
	// CoinTypeShimmer is the registered SLIP-44 coin type of Shimmer.
	CoinTypeShimmer = 4219
)

// Ed25519Path returns m/44'/coin'/account'/0'/index'.
func Ed25519Path(coinType, account, index uint32) []uint32 {
	return []uint32{
		HardenedOffset + PurposeBIP44,
		HardenedOffset + coinType,
		HardenedOffset + account,
		HardenedOffset,
		HardenedOffset + index,
	}
}

// Secp256k1Path returns m/54'/coin'/account'/0/index.
func Secp256k1Path(coinType, account, index uint32) []uint32 {
	return []uint32{
		HardenedOffset + PurposeSecp256k1,
		HardenedOffset + coinType,
		HardenedOffset + account,
		0,
		index,
	}
}

// ParsePath parses a path such as "m/44'/4218'/0'/0'/0'".
func ParsePath(s string) ([]uint32, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) == 0 || parts[0] != "m" {
		return nil, fmt.Errorf("derivation path %q must start with m", s)
	}
	path := make([]uint32, 0, len(parts)-1)
	for _, p := range parts[1:] {
		hardened := strings.HasSuffix(p, "'") || strings.HasSuffix(p, "h")
		p = strings.TrimRight(p, "'h")
		n, err := strconv.ParseUint(p, 10, 32)
		if err != nil || n >= uint64(HardenedOffset) {
			return nil, fmt.Errorf("invalid path element %q in %q", p, s)
		}
		idx := uint32(n)
		if hardened {
			idx += HardenedOffset
		}
		path = append(path, idx)
	}
	return path, nil
}

// FormatPath renders path in m/a'/b form.
func FormatPath(path []uint32) string {
	var b strings.Builder
	b.WriteString("m")
	for _, idx := range path {
		b.WriteByte('/')
		if idx >= HardenedOffset {
			b.WriteString(strconv.FormatUint(uint64(idx-HardenedOffset), 10))
			b.WriteByte('\'')
			continue
		}
		b.WriteString(strconv.FormatUint(uint64(idx), 10))
	}
	return b.String()
}

// HDKey is a BIP-32 secp256k1 key node.
type HDKey struct {
	key *bip32.Key
}

// NewMasterKey creates a master HD key from a 64-byte seed.
func NewMasterKey(seed []byte) (*HDKey, error) {
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes, got %d", SeedSize, len(seed))
	}
	master, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, fmt.Errorf("create master key: %w", err)
	}
	return &HDKey{key: master}, nil
}

// DerivePath derives a key along path.
func (k *HDKey) DerivePath(path []uint32) (*HDKey, error) {
	current := k.key
	for _, idx := range path {
		child, err := current.NewChildKey(idx)
		if err != nil {
			return nil, fmt.Errorf("derive child %d: %w", idx, err)
		}
		current = child
	}
	return &HDKey{key: current}, nil
}

// PrivateKeyBytes returns the raw 32-byte private key, or nil for a
// public-only key.
func (k *HDKey) PrivateKeyBytes() []byte {
	if !k.key.IsPrivate {
		return nil
	}
	raw := k.key.Key
	if len(raw) == 33 && raw[0] == 0 {
		return raw[1:]
	}
	return raw
}

// PublicKeyBytes returns the compressed 33-byte public key.
func (k *HDKey) PublicKeyBytes() []byte {
	return k.key.PublicKey().Key
}

// KeyPair returns the secp256k1 signing key of this node.
func (k *HDKey) KeyPair() (*crypto.Secp256k1KeyPair, error) {
	priv := k.PrivateKeyBytes()
	if priv == nil {
		return nil, fmt.Errorf("cannot create signer from public key")
	}
	return crypto.Secp256k1FromBytes(priv)
}

// Depth returns the derivation depth (0 for master).
func (k *HDKey) Depth() uint8 {
	return k.key.Depth
}

// DeriveSecp256k1 derives a secp256k1 key pair along path from a seed.
func DeriveSecp256k1(seed []byte, path []uint32) (*crypto.Secp256k1KeyPair, error) {
	master, err := NewMasterKey(seed)
	if err != nil {
		return nil, err
	}
	node, err := master.DerivePath(path)
	if err != nil {
		return nil, err
	}
	return node.KeyPair()
}
