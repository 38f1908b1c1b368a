// Package crypto provides hashing, intent signing and the signature schemes
// used by the wallet backends.
package crypto

import (
	"github.com/Klingon-tech/klingnet-wallet/pkg/types"
	"golang.org/x/crypto/blake2b"
)

// Hash computes BLAKE2b-256 over the concatenation of parts.
func Hash(parts ...[]byte) types.Digest {
	h, _ := blake2b.New256(nil)
	for _, p := range parts {
		h.Write(p)
	}
	var d types.Digest
	copy(d[:], h.Sum(nil))
	return d
}

// HashTagged hashes "<tag>::" followed by data. Transaction digests use the
// tag "TransactionData".
func HashTagged(tag string, data []byte) types.Digest {
	return Hash([]byte(tag+"::"), data)
}

// AddressFromPublicKey derives a Move-object ledger address.
// Ed25519 keys hash the raw key; other schemes hash flag || key.
func AddressFromPublicKey(scheme SignatureScheme, pubKey []byte) types.Address {
	if scheme == Ed25519 {
		return types.Address(Hash(pubKey))
	}
	return types.Address(Hash([]byte{scheme.Flag()}, pubKey))
}
