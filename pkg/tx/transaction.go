// Package tx defines the programmable transaction model of the Move-object
// ledger, its canonical BCS encoding and a builder for it.
package tx

import (
	"fmt"

	"github.com/novifinancial/serde-reflection/serde-generate/runtime/golang/serde"

	"github.com/Klingon-tech/klingnet-wallet/pkg/crypto"
	"github.com/Klingon-tech/klingnet-wallet/pkg/encoding"
	"github.com/Klingon-tech/klingnet-wallet/pkg/types"
)

// ProgrammableTransaction is an ordered input list plus a command list.
// Commands may consume results of earlier commands only.
type ProgrammableTransaction struct {
	Inputs   []CallArg
	Commands []Command
}

func (pt *ProgrammableTransaction) serialize(s serde.Serializer) error {
	if err := serializeSeq(s, pt.Inputs); err != nil {
		return err
	}
	return serializeSeq(s, pt.Commands)
}

// GasData names the coins paying for gas, their owner, the price and the
// budget in base units.
type GasData struct {
	Payment []types.ObjectRef
	Owner   types.Address
	Price   uint64
	Budget  uint64
}

func (g *GasData) serialize(s serde.Serializer) error {
	if err := s.SerializeLen(uint64(len(g.Payment))); err != nil {
		return err
	}
	for _, ref := range g.Payment {
		if err := serializeObjectRef(s, ref); err != nil {
			return err
		}
	}
	if err := serializeAddress(s, g.Owner); err != nil {
		return err
	}
	if err := s.SerializeU64(g.Price); err != nil {
		return err
	}
	return s.SerializeU64(g.Budget)
}

// Expiration bounds the epoch a transaction may execute in. A nil Epoch
// never expires.
type Expiration struct {
	Epoch *uint64
}

func (e Expiration) serialize(s serde.Serializer) error {
	if e.Epoch == nil {
		return s.SerializeVariantIndex(0)
	}
	if err := s.SerializeVariantIndex(1); err != nil {
		return err
	}
	return s.SerializeU64(*e.Epoch)
}

// TransactionData is the signable V1 transaction.
type TransactionData struct {
	Kind       ProgrammableTransaction
	Sender     types.Address
	GasData    GasData
	Expiration Expiration
}

// NewProgrammable assembles transaction data for sender paying gas with
// gasPayment.
func NewProgrammable(sender types.Address, gasPayment []types.ObjectRef, pt ProgrammableTransaction, gasBudget, gasPrice uint64) *TransactionData {
	return &TransactionData{
		Kind:   pt,
		Sender: sender,
		GasData: GasData{
			Payment: gasPayment,
			Owner:   sender,
			Price:   gasPrice,
			Budget:  gasBudget,
		},
	}
}

func (d *TransactionData) serialize(s serde.Serializer) error {
	// TransactionData::V1
	if err := s.SerializeVariantIndex(0); err != nil {
		return err
	}
	// TransactionKind::ProgrammableTransaction
	if err := s.SerializeVariantIndex(0); err != nil {
		return err
	}
	if err := d.Kind.serialize(s); err != nil {
		return err
	}
	if err := serializeAddress(s, d.Sender); err != nil {
		return err
	}
	if err := d.GasData.serialize(s); err != nil {
		return err
	}
	return d.Expiration.serialize(s)
}

// MarshalBCS returns the canonical encoding.
func (d *TransactionData) MarshalBCS() ([]byte, error) {
	return marshalBCS(d)
}

// Digest returns the transaction digest: BLAKE2b-256 over
// "TransactionData::" followed by the canonical encoding.
func (d *TransactionData) Digest() (types.TransactionDigest, error) {
	b, err := d.MarshalBCS()
	if err != nil {
		return types.TransactionDigest{}, err
	}
	return types.NewTransactionDigest(crypto.HashTagged("TransactionData", b)), nil
}

// SigningDigest returns the intent digest a signer signs.
func (d *TransactionData) SigningDigest() (types.Digest, error) {
	b, err := d.MarshalBCS()
	if err != nil {
		return types.Digest{}, err
	}
	return crypto.IotaTransaction().MessageDigest(b), nil
}

// SignedTransaction is transaction data plus its signatures.
type SignedTransaction struct {
	Data       *TransactionData
	Signatures []*crypto.Signature
}

// Sign validates data and signs it with every signer.
func Sign(data *TransactionData, signers ...crypto.Signer) (*SignedTransaction, error) {
	if len(signers) == 0 {
		return nil, fmt.Errorf("sign tx: no signers")
	}
	if err := data.Validate(); err != nil {
		return nil, err
	}
	b, err := data.MarshalBCS()
	if err != nil {
		return nil, err
	}
	signed := &SignedTransaction{Data: data}
	for i, signer := range signers {
		sig, err := crypto.SignIntent(signer, crypto.IotaTransaction(), b)
		if err != nil {
			return nil, fmt.Errorf("sign tx with signer %d: %w", i, err)
		}
		signed.Signatures = append(signed.Signatures, sig)
	}
	return signed, nil
}

// Verify checks every signature against the transaction data.
func (t *SignedTransaction) Verify() error {
	b, err := t.Data.MarshalBCS()
	if err != nil {
		return err
	}
	for i, sig := range t.Signatures {
		if err := crypto.VerifyIntent(sig, crypto.IotaTransaction(), b); err != nil {
			return fmt.Errorf("signature %d: %w", i, err)
		}
	}
	return nil
}

// TxBytesAndSignatures returns the Base64 transaction bytes and Base64
// signatures expected by the execute RPC.
func (t *SignedTransaction) TxBytesAndSignatures() (string, []string, error) {
	b, err := t.Data.MarshalBCS()
	if err != nil {
		return "", nil, err
	}
	sigs := make([]string, len(t.Signatures))
	for i, sig := range t.Signatures {
		sigs[i] = sig.String()
	}
	return encoding.Base64.Encode(b), sigs, nil
}
