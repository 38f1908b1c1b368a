package types

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Klingon-tech/klingnet-wallet/pkg/encoding"
)

// AddressLength is the length of an account address or object id in bytes.
const AddressLength = 32

// Address is a 32-byte account address on the Move-object ledger.
type Address [AddressLength]byte

// ObjectID identifies a ledger object. It shares the address layout.
type ObjectID [AddressLength]byte

// ParseAddress parses a hex address. The 0x prefix is optional and short
// forms such as "0x2" are left-padded with zeros.
func ParseAddress(s string) (Address, error) {
	b, err := parseHex32(s)
	if err != nil {
		return Address{}, fmt.Errorf("invalid address %q: %w", s, err)
	}
	return Address(b), nil
}

// AddressFromBytes copies a 32-byte slice into an Address.
func AddressFromBytes(b []byte) (Address, error) {
	if len(b) != AddressLength {
		return Address{}, fmt.Errorf("address must be %d bytes, got %d", AddressLength, len(b))
	}
	var a Address
	copy(a[:], b)
	return a, nil
}

// IsZero returns true if the address is all zeros.
func (a Address) IsZero() bool {
	return a == Address{}
}

// String returns the 0x-prefixed, zero-padded hex form.
func (a Address) String() string {
	return encoding.HexPrefixed(a[:])
}

// Bytes returns a copy of the address as a byte slice.
func (a Address) Bytes() []byte {
	b := make([]byte, AddressLength)
	copy(b, a[:])
	return b
}

// MarshalJSON encodes the address as a 0x-prefixed hex string.
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON decodes a hex address string.
func (a *Address) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseAddress(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseObjectID parses a hex object id with the same rules as ParseAddress.
func ParseObjectID(s string) (ObjectID, error) {
	b, err := parseHex32(s)
	if err != nil {
		return ObjectID{}, fmt.Errorf("invalid object id %q: %w", s, err)
	}
	return ObjectID(b), nil
}

// String returns the 0x-prefixed, zero-padded hex form.
func (id ObjectID) String() string {
	return encoding.HexPrefixed(id[:])
}

// MarshalJSON encodes the id as a 0x-prefixed hex string.
func (id ObjectID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

// UnmarshalJSON decodes a hex object id string.
func (id *ObjectID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseObjectID(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func parseHex32(s string) ([AddressLength]byte, error) {
	var out [AddressLength]byte
	h := encoding.TrimHexPrefix(strings.TrimSpace(s))
	if h == "" {
		return out, fmt.Errorf("empty hex")
	}
	if len(h) > 2*AddressLength {
		return out, fmt.Errorf("hex longer than %d bytes", AddressLength)
	}
	if len(h)%2 == 1 {
		h = "0" + h
	}
	b, err := hex.DecodeString(h)
	if err != nil {
		return out, err
	}
	copy(out[AddressLength-len(b):], b)
	return out, nil
}
