package crypto

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Klingon-tech/klingnet-wallet/pkg/encoding"
	"github.com/Klingon-tech/klingnet-wallet/pkg/types"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// Signature errors.
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidSignature = errors.New("invalid signature")
)

// SignatureScheme is the one-byte flag that prefixes serialized signatures.
type SignatureScheme uint8

// Supported schemes.
const (
	Ed25519   SignatureScheme = 0x00
	Secp256k1 SignatureScheme = 0x01
)

// SignatureLength is the raw signature length for every supported scheme.
const SignatureLength = 64

// Flag returns the scheme byte.
func (s SignatureScheme) Flag() byte { return byte(s) }

// PublicKeyLength returns the serialized public key length for s, or 0 if s
// is unknown.
func (s SignatureScheme) PublicKeyLength() int {
	switch s {
	case Ed25519:
		return ed25519.PublicKeySize
	case Secp256k1:
		return secp256k1.PubKeyBytesLenCompressed
	default:
		return 0
	}
}

func (s SignatureScheme) String() string {
	switch s {
	case Ed25519:
		return "ed25519"
	case Secp256k1:
		return "secp256k1"
	default:
		return fmt.Sprintf("scheme(0x%02x)", uint8(s))
	}
}

// ParseScheme maps a scheme name to its flag.
func ParseScheme(name string) (SignatureScheme, error) {
	switch name {
	case "ed25519":
		return Ed25519, nil
	case "secp256k1":
		return Secp256k1, nil
	default:
		return 0, fmt.Errorf("%w: unknown signature scheme %q", ErrInvalidInput, name)
	}
}

// Signer produces signatures over a message digest.
type Signer interface {
	// Sign signs msg, usually a 32-byte intent digest.
	Sign(msg []byte) (*Signature, error)
	// PublicKey returns the serialized public key.
	PublicKey() []byte
	Scheme() SignatureScheme
}

// Signature is flag || signature || public key.
type Signature struct {
	Scheme    SignatureScheme
	Sig       []byte
	PublicKey []byte
}

// Bytes returns the serialized form.
func (s *Signature) Bytes() []byte {
	out := make([]byte, 0, 1+len(s.Sig)+len(s.PublicKey))
	out = append(out, s.Scheme.Flag())
	out = append(out, s.Sig...)
	return append(out, s.PublicKey...)
}

// String returns the Base64 form used on the RPC transport.
func (s *Signature) String() string {
	return encoding.Base64.Encode(s.Bytes())
}

// MarshalJSON encodes the signature as a Base64 string.
func (s *Signature) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Address returns the address of the signing key.
func (s *Signature) Address() types.Address {
	return AddressFromPublicKey(s.Scheme, s.PublicKey)
}

// ParseSignature splits a serialized signature on its leading flag. Unknown
// flags and wrong lengths fail with ErrInvalidInput.
func ParseSignature(b []byte) (*Signature, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: empty signature", ErrInvalidInput)
	}
	scheme := SignatureScheme(b[0])
	pkLen := scheme.PublicKeyLength()
	if pkLen == 0 {
		return nil, fmt.Errorf("%w: unknown signature flag 0x%02x", ErrInvalidInput, b[0])
	}
	if want := 1 + SignatureLength + pkLen; len(b) != want {
		return nil, fmt.Errorf("%w: %s signature must be %d bytes, got %d", ErrInvalidInput, scheme, want, len(b))
	}
	sig := &Signature{
		Scheme:    scheme,
		Sig:       make([]byte, SignatureLength),
		PublicKey: make([]byte, pkLen),
	}
	copy(sig.Sig, b[1:1+SignatureLength])
	copy(sig.PublicKey, b[1+SignatureLength:])
	return sig, nil
}

// ParseSignatureBase64 decodes and parses a Base64 signature.
func ParseSignatureBase64(s string) (*Signature, error) {
	b, err := encoding.Base64.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return ParseSignature(b)
}

// Verify checks the signature over msg.
func (s *Signature) Verify(msg []byte) error {
	if len(s.Sig) != SignatureLength {
		return fmt.Errorf("%w: signature length %d", ErrInvalidInput, len(s.Sig))
	}
	switch s.Scheme {
	case Ed25519:
		if len(s.PublicKey) != ed25519.PublicKeySize {
			return fmt.Errorf("%w: ed25519 public key length %d", ErrInvalidInput, len(s.PublicKey))
		}
		if !ed25519.Verify(ed25519.PublicKey(s.PublicKey), msg, s.Sig) {
			return ErrInvalidSignature
		}
		return nil
	case Secp256k1:
		pub, err := secp256k1.ParsePubKey(s.PublicKey)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		var r, sc secp256k1.ModNScalar
		if overflow := r.SetByteSlice(s.Sig[:32]); overflow {
			return ErrInvalidSignature
		}
		if overflow := sc.SetByteSlice(s.Sig[32:]); overflow {
			return ErrInvalidSignature
		}
		hash := sha256.Sum256(msg)
		if !ecdsa.NewSignature(&r, &sc).Verify(hash[:], pub) {
			return ErrInvalidSignature
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown signature flag 0x%02x", ErrInvalidInput, s.Scheme.Flag())
	}
}
