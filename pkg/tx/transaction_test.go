package tx

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/Klingon-tech/klingnet-wallet/pkg/crypto"
	"github.com/Klingon-tech/klingnet-wallet/pkg/encoding"
	"github.com/Klingon-tech/klingnet-wallet/pkg/types"
)

func TestArgument_BCS(t *testing.T) {
	tests := []struct {
		arg  Argument
		want []byte
	}{
		{GasCoin(), []byte{0}},
		{Input(1), []byte{1, 1, 0}},
		{Result(258), []byte{2, 2, 1}},
		{NestedResult(2, 3), []byte{3, 2, 0, 3, 0}},
	}
	for _, tt := range tests {
		got, err := marshalBCS(tt.arg)
		if err != nil {
			t.Fatalf("marshal %s: %v", tt.arg, err)
		}
		if !bytes.Equal(got, tt.want) {
			t.Errorf("BCS(%s) = %x, want %x", tt.arg, got, tt.want)
		}
	}
}

func TestPure_BCS(t *testing.T) {
	tests := []struct {
		name string
		v    any
		want []byte
	}{
		{"u64", uint64(5), []byte{5, 0, 0, 0, 0, 0, 0, 0}},
		{"u8", uint8(9), []byte{9}},
		{"bool", true, []byte{1}},
		{"string", "ab", []byte{2, 'a', 'b'}},
		{"bytes", []byte{7, 8}, []byte{2, 7, 8}},
		{"u64 vector", []uint64{1}, []byte{1, 1, 0, 0, 0, 0, 0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodePure(tt.v)
			if err != nil {
				t.Fatalf("EncodePure: %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("EncodePure() = %x, want %x", got, tt.want)
			}
		})
	}

	addr := testAddress(0xff)
	got, _ := EncodePure(addr)
	if !bytes.Equal(got, addr[:]) {
		t.Errorf("EncodePure(address) = %x, want raw 32 bytes", got)
	}
}

func TestCallArg_BCS(t *testing.T) {
	got, _ := marshalBCS(PureArg{Bytes: []byte{5, 0}})
	if want := []byte{0, 2, 5, 0}; !bytes.Equal(got, want) {
		t.Errorf("BCS(pure) = %x, want %x", got, want)
	}

	ref := testRef(1, 2)
	got, _ = marshalBCS(ObjectCallArg{Object: ImmOrOwnedObject{Ref: ref}})
	var want []byte
	want = append(want, 1, 0)
	want = append(want, ref.ObjectID[:]...)
	want = binary.LittleEndian.AppendUint64(want, 2)
	d := ref.Digest.Digest()
	want = append(want, 32)
	want = append(want, d[:]...)
	if !bytes.Equal(got, want) {
		t.Errorf("BCS(owned object) = %x, want %x", got, want)
	}

	shared := SharedObject{ObjectID: ref.ObjectID, InitialSharedVersion: 1, Mutable: true}
	got, _ = marshalBCS(ObjectCallArg{Object: shared})
	want = append([]byte{1, 1}, ref.ObjectID[:]...)
	want = binary.LittleEndian.AppendUint64(want, 1)
	want = append(want, 1)
	if !bytes.Equal(got, want) {
		t.Errorf("BCS(shared object) = %x, want %x", got, want)
	}
}

func sampleTransaction(t *testing.T) *TransactionData {
	t.Helper()
	b := NewBuilder()
	if err := b.PayFromGas([]types.Address{testAddress(0xB)}, []uint64{1000}); err != nil {
		t.Fatalf("PayFromGas: %v", err)
	}
	pt, err := b.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	return NewProgrammable(testAddress(0xA), []types.ObjectRef{testRef(1, 7)}, pt, 5_000_000, 1000)
}

func TestTransactionData_BCS(t *testing.T) {
	data := sampleTransaction(t)
	got, err := data.MarshalBCS()
	if err != nil {
		t.Fatalf("MarshalBCS: %v", err)
	}

	var want []byte
	want = append(want, 0, 0) // V1, ProgrammableTransaction
	// inputs: pure u64 1000, pure recipient
	want = append(want, 2)
	want = append(want, 0, 8)
	want = binary.LittleEndian.AppendUint64(want, 1000)
	recipient := testAddress(0xB)
	want = append(want, 0, 32)
	want = append(want, recipient[:]...)
	// commands: SplitCoins(GasCoin, [Input(0)]), TransferObjects([NestedResult(0,0)], Input(1))
	want = append(want, 2)
	want = append(want, 2, 0, 1, 1, 0, 0)
	want = append(want, 1, 1, 3, 0, 0, 0, 0, 1, 1, 0)
	sender := testAddress(0xA)
	want = append(want, sender[:]...)
	// gas data
	ref := testRef(1, 7)
	want = append(want, 1)
	want = append(want, ref.ObjectID[:]...)
	want = binary.LittleEndian.AppendUint64(want, 7)
	d := ref.Digest.Digest()
	want = append(want, 32)
	want = append(want, d[:]...)
	want = append(want, sender[:]...)
	want = binary.LittleEndian.AppendUint64(want, 1000)
	want = binary.LittleEndian.AppendUint64(want, 5_000_000)
	want = append(want, 0) // no expiration

	if !bytes.Equal(got, want) {
		t.Errorf("MarshalBCS() =\n%x\nwant\n%x", got, want)
	}

	epoch := uint64(3)
	data.Expiration = Expiration{Epoch: &epoch}
	got, _ = data.MarshalBCS()
	tail := got[len(got)-9:]
	if !bytes.Equal(tail, []byte{1, 3, 0, 0, 0, 0, 0, 0, 0}) {
		t.Errorf("expiration tail = %x", tail)
	}
}

func TestTransactionData_Digest(t *testing.T) {
	data := sampleTransaction(t)
	raw, _ := data.MarshalBCS()
	digest, err := data.Digest()
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	want := crypto.Hash([]byte("TransactionData::"), raw)
	if digest.Digest() != want {
		t.Errorf("Digest() = %s, want %s", digest, want)
	}

	signing, _ := data.SigningDigest()
	if signing != crypto.Hash([]byte{0, 0, 0}, raw) {
		t.Error("SigningDigest() does not hash intent || bcs")
	}
	if signing == digest.Digest() {
		t.Error("signing digest must differ from transaction digest")
	}
}

func TestSign(t *testing.T) {
	key, err := crypto.GenerateEd25519()
	if err != nil {
		t.Fatalf("GenerateEd25519: %v", err)
	}
	data := sampleTransaction(t)
	data.Sender = key.Address()
	data.GasData.Owner = key.Address()

	signed, err := Sign(data, key)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if err := signed.Verify(); err != nil {
		t.Fatalf("Verify: %v", err)
	}

	txBytes, sigs, err := signed.TxBytesAndSignatures()
	if err != nil {
		t.Fatalf("TxBytesAndSignatures: %v", err)
	}
	raw, _ := data.MarshalBCS()
	if txBytes != encoding.Base64.Encode(raw) {
		t.Error("tx bytes are not base64 of the canonical encoding")
	}
	if len(sigs) != 1 {
		t.Fatalf("signatures = %d, want 1", len(sigs))
	}
	sig, err := crypto.ParseSignatureBase64(sigs[0])
	if err != nil {
		t.Fatalf("ParseSignatureBase64: %v", err)
	}
	if sig.Address() != key.Address() {
		t.Errorf("signature address = %s, want %s", sig.Address(), key.Address())
	}

	// Tampering invalidates the signature.
	signed.Data.GasData.Budget++
	if err := signed.Verify(); !errors.Is(err, crypto.ErrInvalidSignature) {
		t.Errorf("Verify() after tamper = %v, want ErrInvalidSignature", err)
	}
}

func TestSign_NoSigners(t *testing.T) {
	if _, err := Sign(sampleTransaction(t)); err == nil {
		t.Error("Sign() without signers should fail")
	}
}
