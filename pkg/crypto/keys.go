package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"fmt"

	"github.com/Klingon-tech/klingnet-wallet/pkg/types"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// Ed25519KeyPair signs with Ed25519.
type Ed25519KeyPair struct {
	key ed25519.PrivateKey
}

// GenerateEd25519 creates a random Ed25519 key pair.
func GenerateEd25519() (*Ed25519KeyPair, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate ed25519 key: %w", err)
	}
	return &Ed25519KeyPair{key: priv}, nil
}

// Ed25519FromSeed builds a key pair from a 32-byte seed.
func Ed25519FromSeed(seed []byte) (*Ed25519KeyPair, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("ed25519 seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	return &Ed25519KeyPair{key: ed25519.NewKeyFromSeed(seed)}, nil
}

// Sign signs msg.
func (k *Ed25519KeyPair) Sign(msg []byte) (*Signature, error) {
	return &Signature{
		Scheme:    Ed25519,
		Sig:       ed25519.Sign(k.key, msg),
		PublicKey: k.PublicKey(),
	}, nil
}

// PublicKey returns the 32-byte public key.
func (k *Ed25519KeyPair) PublicKey() []byte {
	pub := make([]byte, ed25519.PublicKeySize)
	copy(pub, k.key.Public().(ed25519.PublicKey))
	return pub
}

// Scheme returns Ed25519.
func (k *Ed25519KeyPair) Scheme() SignatureScheme { return Ed25519 }

// Address returns the account address of this key.
func (k *Ed25519KeyPair) Address() types.Address {
	return AddressFromPublicKey(Ed25519, k.PublicKey())
}

// Zero wipes the private key.
func (k *Ed25519KeyPair) Zero() {
	for i := range k.key {
		k.key[i] = 0
	}
}

// Secp256k1KeyPair signs with ECDSA over secp256k1. Messages are hashed with
// SHA-256 before signing.
type Secp256k1KeyPair struct {
	key *secp256k1.PrivateKey
}

// GenerateSecp256k1 creates a random secp256k1 key pair.
func GenerateSecp256k1() (*Secp256k1KeyPair, error) {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return &Secp256k1KeyPair{key: key}, nil
}

// Secp256k1FromBytes creates a key pair from a 32-byte secret.
func Secp256k1FromBytes(b []byte) (*Secp256k1KeyPair, error) {
	if len(b) != 32 {
		return nil, fmt.Errorf("private key must be 32 bytes, got %d", len(b))
	}
	return &Secp256k1KeyPair{key: secp256k1.PrivKeyFromBytes(b)}, nil
}

// Sign produces a 64-byte r || s signature with low s.
func (k *Secp256k1KeyPair) Sign(msg []byte) (*Signature, error) {
	hash := sha256.Sum256(msg)
	compact := ecdsa.SignCompact(k.key, hash[:], true)
	if len(compact) != 1+SignatureLength {
		return nil, fmt.Errorf("ecdsa sign: unexpected signature length %d", len(compact))
	}
	sig := make([]byte, SignatureLength)
	copy(sig, compact[1:])
	return &Signature{Scheme: Secp256k1, Sig: sig, PublicKey: k.PublicKey()}, nil
}

// PublicKey returns the compressed 33-byte public key.
func (k *Secp256k1KeyPair) PublicKey() []byte {
	return k.key.PubKey().SerializeCompressed()
}

// Scheme returns Secp256k1.
func (k *Secp256k1KeyPair) Scheme() SignatureScheme { return Secp256k1 }

// Address returns the account address of this key.
func (k *Secp256k1KeyPair) Address() types.Address {
	return AddressFromPublicKey(Secp256k1, k.PublicKey())
}

// Serialize returns the 32-byte private scalar.
func (k *Secp256k1KeyPair) Serialize() []byte {
	return k.key.Serialize()
}

// Zero wipes the private key.
func (k *Secp256k1KeyPair) Zero() {
	k.key.Zero()
}
