package wallet

import (
	"fmt"

	"github.com/Klingon-tech/klingnet-wallet/pkg/crypto"
	"github.com/Klingon-tech/klingnet-wallet/pkg/types"
)

// Account describes the key a Keystore holds.
type Account struct {
	Scheme       crypto.SignatureScheme
	CoinType     uint32
	Index        uint32
	AddressIndex uint32
	Path         string
}

// Keystore holds a single derived signing key in memory.
type Keystore struct {
	account Account
	signer  crypto.Signer
}

// NewKeystore derives the key for account/addressIndex from a mnemonic.
// Ed25519 keys use SLIP-10 on m/44'/coin'/account'/0'/index', Secp256k1
// keys use BIP-32 on m/54'/coin'/account'/0/index.
func NewKeystore(mnemonic, passphrase string, scheme crypto.SignatureScheme, coinType, account, addressIndex uint32) (*Keystore, error) {
	seed, err := SeedFromMnemonic(mnemonic, passphrase)
	if err != nil {
		return nil, err
	}
	defer zero(seed)
	return KeystoreFromSeed(seed, scheme, coinType, account, addressIndex)
}

// KeystoreFromSeed is NewKeystore for an already derived BIP-39 seed.
func KeystoreFromSeed(seed []byte, scheme crypto.SignatureScheme, coinType, account, addressIndex uint32) (*Keystore, error) {
	acct := Account{Scheme: scheme, CoinType: coinType, Index: account, AddressIndex: addressIndex}
	var signer crypto.Signer
	switch scheme {
	case crypto.Ed25519:
		path := Ed25519Path(coinType, account, addressIndex)
		kp, err := DeriveEd25519(seed, path)
		if err != nil {
			return nil, fmt.Errorf("derive ed25519 key: %w", err)
		}
		acct.Path, signer = FormatPath(path), kp
	case crypto.Secp256k1:
		path := Secp256k1Path(coinType, account, addressIndex)
		kp, err := DeriveSecp256k1(seed, path)
		if err != nil {
			return nil, fmt.Errorf("derive secp256k1 key: %w", err)
		}
		acct.Path, signer = FormatPath(path), kp
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %s", crypto.ErrInvalidInput, scheme)
	}
	return &Keystore{account: acct, signer: signer}, nil
}

// Account returns the derivation metadata.
func (k *Keystore) Account() Account { return k.account }

// Signer returns the signing key.
func (k *Keystore) Signer() crypto.Signer { return k.signer }

// PublicKey returns the serialized public key.
func (k *Keystore) PublicKey() []byte { return k.signer.PublicKey() }

// Address returns the Move-object ledger address of the key.
func (k *Keystore) Address() types.Address {
	return crypto.AddressFromPublicKey(k.signer.Scheme(), k.signer.PublicKey())
}

// Close wipes the private key.
func (k *Keystore) Close() {
	if z, ok := k.signer.(interface{ Zero() }); ok {
		z.Zero()
	}
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
