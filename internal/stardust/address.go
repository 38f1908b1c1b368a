package stardust

import (
	"crypto/ed25519"
	"fmt"

	"github.com/Klingon-tech/klingnet-wallet/pkg/crypto"
	"github.com/Klingon-tech/klingnet-wallet/pkg/encoding"
	"github.com/Klingon-tech/klingnet-wallet/pkg/types"
)

// addressTypeEd25519 is the leading type byte of an Ed25519 address.
const addressTypeEd25519 byte = 0

// Address is an Ed25519 address: the BLAKE2b-256 hash of a public key.
type Address [32]byte

// AddressFromPublicKey hashes an Ed25519 public key into an Address.
func AddressFromPublicKey(pub []byte) (Address, error) {
	if len(pub) != ed25519.PublicKeySize {
		return Address{}, fmt.Errorf("ed25519 public key must be %d bytes, got %d", ed25519.PublicKeySize, len(pub))
	}
	return Address(crypto.Hash(pub)), nil
}

// ParseAddress decodes a bech32 Ed25519 address. A non-empty hrp must
// match the address prefix.
func ParseAddress(s, hrp string) (Address, error) {
	gotHRP, data, err := types.Bech32Decode(s)
	if err != nil {
		return Address{}, err
	}
	if hrp != "" && gotHRP != hrp {
		return Address{}, fmt.Errorf("address prefix %q, want %q", gotHRP, hrp)
	}
	if len(data) != 33 || data[0] != addressTypeEd25519 {
		return Address{}, fmt.Errorf("not an ed25519 address")
	}
	var a Address
	copy(a[:], data[1:])
	return a, nil
}

// Bech32 encodes the address with the network's human-readable part.
func (a Address) Bech32(hrp string) (string, error) {
	return types.Bech32Encode(hrp, append([]byte{addressTypeEd25519}, a[:]...))
}

// String returns the 0x-prefixed hex of the key hash.
func (a Address) String() string {
	return encoding.HexPrefixed(a[:])
}

func (a Address) serialize(w *writer) {
	w.u8(addressTypeEd25519)
	w.raw(a[:])
}
