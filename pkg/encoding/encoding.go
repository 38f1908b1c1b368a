// Package encoding provides the reversible string codecs used for digests,
// identifiers, transaction bytes and signatures.
package encoding

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

// ErrInvalidEncoding is returned when a string cannot be decoded.
var ErrInvalidEncoding = errors.New("invalid encoding")

// Encoding converts between bytes and their string form.
type Encoding interface {
	Encode(data []byte) string
	Decode(s string) ([]byte, error)
}

// Codecs.
var (
	Base58 Encoding = base58Encoding{}
	Base64 Encoding = base64Encoding{}
	Hex    Encoding = hexEncoding{}
)

type base58Encoding struct{}

func (base58Encoding) Encode(data []byte) string {
	return base58.Encode(data)
}

func (base58Encoding) Decode(s string) ([]byte, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty base58 string", ErrInvalidEncoding)
	}
	b, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: base58: %v", ErrInvalidEncoding, err)
	}
	return b, nil
}

type base64Encoding struct{}

func (base64Encoding) Encode(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

func (base64Encoding) Decode(s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: base64: %v", ErrInvalidEncoding, err)
	}
	return b, nil
}

type hexEncoding struct{}

// Encode returns lowercase hex without a prefix.
func (hexEncoding) Encode(data []byte) string {
	return hex.EncodeToString(data)
}

// Decode accepts an optional 0x or 0X prefix.
func (hexEncoding) Decode(s string) ([]byte, error) {
	b, err := hex.DecodeString(TrimHexPrefix(s))
	if err != nil {
		return nil, fmt.Errorf("%w: hex: %v", ErrInvalidEncoding, err)
	}
	return b, nil
}

// HexPrefixed encodes data as 0x-prefixed lowercase hex.
func HexPrefixed(data []byte) string {
	return "0x" + hex.EncodeToString(data)
}

// TrimHexPrefix strips a leading 0x or 0X.
func TrimHexPrefix(s string) string {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return s[2:]
	}
	return s
}
