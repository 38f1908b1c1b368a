package stardust

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"
	"errors"
	"strings"
	"testing"

	"github.com/Klingon-tech/klingnet-wallet/pkg/crypto"
	"github.com/Klingon-tech/klingnet-wallet/pkg/types"
)

func testOutputID(b byte, index uint16) OutputID {
	var id OutputID
	id.TxID[0] = b
	id.TxID[31] = b
	id.Index = index
	return id
}

func TestOutputID_RoundTrip(t *testing.T) {
	id := testOutputID(0xab, 258)
	s := id.String()
	if len(s) != 2+2*outputIDLength || !strings.HasSuffix(s, "0201") {
		t.Fatalf("String() = %s", s)
	}
	got, err := ParseOutputID(s)
	if err != nil {
		t.Fatalf("ParseOutputID: %v", err)
	}
	if got != id {
		t.Errorf("ParseOutputID() = %+v, want %+v", got, id)
	}
	if _, err := ParseOutputID("0x1234"); err == nil {
		t.Error("short id should fail")
	}
}

func TestParseHexID(t *testing.T) {
	d := types.Digest{1, 2, 3}
	got, err := ParseHexID(HexID(d))
	if err != nil || got != d {
		t.Fatalf("ParseHexID(HexID) = %x, %v", got, err)
	}
	for _, bad := range []string{"", "nonexistent_transaction_id", "0x0102"} {
		if _, err := ParseHexID(bad); err == nil {
			t.Errorf("ParseHexID(%q) should fail", bad)
		}
	}
}

func TestNetworkID(t *testing.T) {
	h := crypto.Hash([]byte("testnet"))
	if got, want := NetworkID("testnet"), binary.LittleEndian.Uint64(h[:8]); got != want {
		t.Errorf("NetworkID() = %d, want %d", got, want)
	}
	if NetworkID("testnet") == NetworkID("iota-mainnet") {
		t.Error("different names should give different ids")
	}
}

func testEssence(inputs int) *Essence {
	e := &Essence{
		NetworkID: 0x0102030405060708,
		Outputs:   []*BasicOutput{{Amount: 1_000_000}},
		Payload:   &TaggedData{Tag: []byte("data"), Data: []byte("hi")},
	}
	for i := 0; i < inputs; i++ {
		e.Inputs = append(e.Inputs, testOutputID(byte(i+1), uint16(i)))
	}
	return e
}

func TestEssence_Layout(t *testing.T) {
	b, err := testEssence(1).Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if len(b) != 145 {
		t.Fatalf("len = %d, want 145", len(b))
	}
	if b[0] != essenceTypeRegular {
		t.Errorf("type = %d", b[0])
	}
	if got := binary.LittleEndian.Uint64(b[1:9]); got != 0x0102030405060708 {
		t.Errorf("network id = %#x", got)
	}
	if got := binary.LittleEndian.Uint16(b[9:11]); got != 1 {
		t.Errorf("input count = %d", got)
	}
	if got := binary.LittleEndian.Uint16(b[78:80]); got != 1 {
		t.Errorf("output count = %d", got)
	}
	if got := binary.LittleEndian.Uint32(b[126:130]); got != 15 {
		t.Errorf("payload length = %d, want 15", got)
	}
	if got := binary.LittleEndian.Uint32(b[130:134]); got != payloadTypeTaggedData {
		t.Errorf("payload type = %d", got)
	}
	if !bytes.Equal(b[134:139], []byte("\x04data")) || !bytes.Equal(b[139:], []byte("\x02\x00\x00\x00hi")) {
		t.Errorf("tagged data = %x", b[134:])
	}
}

func TestEssence_NoPayload(t *testing.T) {
	e := testEssence(1)
	e.Payload = nil
	b, err := e.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if len(b) != 130 || binary.LittleEndian.Uint32(b[126:]) != 0 {
		t.Errorf("essence without payload = %x", b)
	}
}

func TestEssence_Invalid(t *testing.T) {
	dup := testEssence(2)
	dup.Inputs[1] = dup.Inputs[0]
	noOutputs := testEssence(1)
	noOutputs.Outputs = nil
	longTag := testEssence(1)
	longTag.Payload.Tag = make([]byte, 65)

	for name, e := range map[string]*Essence{
		"no inputs":  testEssence(0),
		"duplicate":  dup,
		"no outputs": noOutputs,
		"long tag":   longTag,
	} {
		if _, err := e.Bytes(); !errors.Is(err, ErrSerialize) {
			t.Errorf("%s: err = %v, want ErrSerialize", name, err)
		}
	}
}

func TestSignEssence_Unlocks(t *testing.T) {
	kp, err := crypto.Ed25519FromSeed(bytes.Repeat([]byte{9}, 32))
	if err != nil {
		t.Fatal(err)
	}
	ess := testEssence(3)
	payload, err := SignEssence(ess, kp)
	if err != nil {
		t.Fatalf("SignEssence: %v", err)
	}
	msg, _ := ess.SigningHash()
	first := payload.Unlocks[0]
	if !ed25519.Verify(first.PublicKey, msg[:], first.Signature) {
		t.Fatal("signature does not verify over the essence hash")
	}

	raw, err := payload.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	essBytes, _ := ess.Bytes()
	if got := binary.LittleEndian.Uint32(raw[:4]); got != payloadTypeTransaction {
		t.Errorf("payload type = %d", got)
	}
	if !bytes.Equal(raw[4:4+len(essBytes)], essBytes) {
		t.Fatal("payload does not embed the essence")
	}
	unlocks := raw[4+len(essBytes):]
	want := append([]byte{3, 0, unlockTypeSignature, signatureTypeEd25519}, first.PublicKey...)
	want = append(want, first.Signature...)
	want = append(want, unlockTypeReference, 0, 0, unlockTypeReference, 0, 0)
	if !bytes.Equal(unlocks, want) {
		t.Errorf("unlocks = %x\nwant      %x", unlocks, want)
	}

	id, _ := payload.ID()
	if id != crypto.Hash(raw) {
		t.Error("transaction id is not the payload hash")
	}
}

func TestSignEssence_Secp256k1(t *testing.T) {
	kp, err := crypto.GenerateSecp256k1()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := SignEssence(testEssence(1), kp); err == nil {
		t.Error("secp256k1 signer should be rejected")
	}
}

func TestTransactionPayload_BadUnlocks(t *testing.T) {
	ess := testEssence(2)
	sig := Unlock{PublicKey: make([]byte, 32), Signature: make([]byte, 64)}
	tests := map[string][]Unlock{
		"count":         {sig},
		"self ref":      {{Reference: 0}, sig},
		"forward ref":   {sig, {Reference: 1}},
		"short sig":     {{PublicKey: make([]byte, 32), Signature: make([]byte, 10)}, {}},
		"short pub key": {{PublicKey: make([]byte, 31), Signature: make([]byte, 64)}, {}},
	}
	for name, unlocks := range tests {
		p := &TransactionPayload{Essence: ess, Unlocks: unlocks}
		if _, err := p.Bytes(); !errors.Is(err, ErrSerialize) {
			t.Errorf("%s: err = %v, want ErrSerialize", name, err)
		}
	}
}

func TestBlock_Bytes(t *testing.T) {
	kp, _ := crypto.Ed25519FromSeed(bytes.Repeat([]byte{1}, 32))
	payload, err := SignEssence(testEssence(1), kp)
	if err != nil {
		t.Fatal(err)
	}
	p1, p2 := types.Digest{2}, types.Digest{1}
	block := &Block{ProtocolVersion: 2, Parents: []types.Digest{p1, p2, p1}, Payload: payload, Nonce: 7}
	raw, err := block.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	payloadBytes, _ := payload.Bytes()
	if len(raw) != 1+1+64+4+len(payloadBytes)+8 {
		t.Fatalf("len = %d", len(raw))
	}
	if raw[0] != 2 || raw[1] != 2 {
		t.Errorf("version/parents = %d/%d", raw[0], raw[1])
	}
	if !bytes.Equal(raw[2:34], p2[:]) || !bytes.Equal(raw[34:66], p1[:]) {
		t.Error("parents are not sorted")
	}
	if got := binary.LittleEndian.Uint32(raw[66:70]); int(got) != len(payloadBytes) {
		t.Errorf("payload length = %d", got)
	}
	if got := binary.LittleEndian.Uint64(raw[len(raw)-8:]); got != 7 {
		t.Errorf("nonce = %d", got)
	}
	id, _ := block.ID()
	if id != crypto.Hash(raw) {
		t.Error("block id is not the block hash")
	}
	if _, err := (&Block{ProtocolVersion: 2}).Bytes(); !errors.Is(err, ErrSerialize) {
		t.Errorf("no parents err = %v", err)
	}
}
