package wallet

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"fmt"

	"github.com/Klingon-tech/klingnet-wallet/pkg/crypto"
)

// SLIP-10 curve key for Ed25519 master derivation.
const slip10Ed25519Curve = "ed25519 seed"

// slip10Key is an Ed25519 SLIP-10 node. Ed25519 supports hardened
// derivation only.
type slip10Key struct {
	key       []byte
	chainCode []byte
}

func slip10Master(seed []byte) *slip10Key {
	mac := hmac.New(sha512.New, []byte(slip10Ed25519Curve))
	mac.Write(seed)
	sum := mac.Sum(nil)
	return &slip10Key{key: sum[:32], chainCode: sum[32:]}
}

func (k *slip10Key) child(index uint32) (*slip10Key, error) {
	if index < HardenedOffset {
		return nil, fmt.Errorf("ed25519 derivation requires hardened index, got %d", index)
	}
	data := make([]byte, 0, 1+32+4)
	data = append(data, 0x00)
	data = append(data, k.key...)
	data = binary.BigEndian.AppendUint32(data, index)

	mac := hmac.New(sha512.New, k.chainCode)
	mac.Write(data)
	sum := mac.Sum(nil)
	return &slip10Key{key: sum[:32], chainCode: sum[32:]}, nil
}

// DeriveEd25519 derives an Ed25519 key pair along path from a BIP-39 seed.
// Every path element must be hardened.
func DeriveEd25519(seed []byte, path []uint32) (*crypto.Ed25519KeyPair, error) {
	node := slip10Master(seed)
	for _, idx := range path {
		next, err := node.child(idx)
		if err != nil {
			return nil, err
		}
		node = next
	}
	return crypto.Ed25519FromSeed(node.key)
}
