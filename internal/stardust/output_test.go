package stardust

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/Klingon-tech/klingnet-wallet/pkg/crypto"
)

var testRent = RentStructure{VByteCost: 100, FactorData: 1, FactorKey: 10}

func TestBasicOutput_Bytes(t *testing.T) {
	var addr Address
	addr[0] = 0xaa
	o := &BasicOutput{Amount: 1_000_000, Address: addr}
	b, err := o.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if len(b) != 46 {
		t.Fatalf("len = %d, want 46", len(b))
	}
	want := []byte{3, 0x40, 0x42, 0x0f, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0xaa}
	for i, w := range want {
		if b[i] != w {
			t.Fatalf("byte %d = %#x, want %#x (%x)", i, b[i], w, b)
		}
	}
	if b[45] != 0 {
		t.Errorf("feature count = %d, want 0", b[45])
	}
}

func TestRentStructure_MinDeposit(t *testing.T) {
	tests := []struct {
		name string
		out  *BasicOutput
		want uint64
	}{
		{"plain", &BasicOutput{}, 42_600},
		{"tag", &BasicOutput{Features: []Feature{{Type: FeatureTag, Data: []byte("hello")}}}, 43_300},
		{"sender", &BasicOutput{Features: []Feature{{Type: FeatureSender}}}, 46_000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := testRent.MinDeposit(tt.out)
			if err != nil {
				t.Fatalf("MinDeposit: %v", err)
			}
			if got != tt.want {
				t.Errorf("MinDeposit() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBasicOutput_BadFeature(t *testing.T) {
	o := &BasicOutput{Features: []Feature{{Type: FeatureTag, Data: make([]byte, 65)}}}
	if _, err := o.Bytes(); !errors.Is(err, ErrSerialize) {
		t.Errorf("long tag err = %v, want ErrSerialize", err)
	}
	o = &BasicOutput{Features: []Feature{{Type: 9}}}
	if _, err := o.Bytes(); !errors.Is(err, ErrSerialize) {
		t.Errorf("unknown feature err = %v, want ErrSerialize", err)
	}
}

func TestInputsCommitment(t *testing.T) {
	a := &BasicOutput{Amount: 1}
	b := &BasicOutput{Amount: 2}
	ab, _ := a.Bytes()
	bb, _ := b.Bytes()
	ha, hb := crypto.Hash(ab), crypto.Hash(bb)

	got, err := InputsCommitment([]*BasicOutput{a, b})
	if err != nil {
		t.Fatalf("InputsCommitment: %v", err)
	}
	if want := crypto.Hash(ha[:], hb[:]); got != want {
		t.Errorf("commitment = %x, want %x", got, want)
	}
	swapped, _ := InputsCommitment([]*BasicOutput{b, a})
	if swapped == got {
		t.Error("commitment should depend on input order")
	}
}

const pubKeyHash = "0x" + "11111111111111111111111111111111" + "11111111111111111111111111111111"

func TestOutputJSON_Basic(t *testing.T) {
	raw := `{
		"type": 3,
		"amount": "1500000",
		"unlockConditions": [{"type": 0, "address": {"type": 0, "pubKeyHash": "` + pubKeyHash + `"}}],
		"features": [
			{"type": 0, "address": {"type": 0, "pubKeyHash": "` + pubKeyHash + `"}},
			{"type": 2, "data": "0x6869"},
			{"type": 3, "tag": "0x64617461"}
		]
	}`
	var o outputJSON
	if err := json.Unmarshal([]byte(raw), &o); err != nil {
		t.Fatal(err)
	}
	out, err := o.basic()
	if err != nil {
		t.Fatalf("basic: %v", err)
	}
	if out.Amount != 1_500_000 || out.Address[0] != 0x11 {
		t.Errorf("output = %+v", out)
	}
	if len(out.Features) != 3 || string(out.Features[1].Data) != "hi" || string(out.Features[2].Data) != "data" {
		t.Errorf("features = %+v", out.Features)
	}
	if out.Features[0].Address != out.Address {
		t.Errorf("sender = %x", out.Features[0].Address)
	}
}

func TestOutputJSON_Unsupported(t *testing.T) {
	addr := `{"type": 0, "address": {"type": 0, "pubKeyHash": "` + pubKeyHash + `"}}`
	tests := map[string]string{
		"alias output":  `{"type": 4, "amount": "1", "unlockConditions": [` + addr + `]}`,
		"native tokens": `{"type": 3, "amount": "1", "nativeTokens": [{"id": "0x01", "amount": "0x1"}], "unlockConditions": [` + addr + `]}`,
		"timelock":      `{"type": 3, "amount": "1", "unlockConditions": [` + addr + `, {"type": 2, "unixTime": 1}]}`,
		"nft owner":     `{"type": 3, "amount": "1", "unlockConditions": [{"type": 0, "address": {"type": 16, "nftId": "0x01"}}]}`,
		"bad amount":    `{"type": 3, "amount": "-1", "unlockConditions": [` + addr + `]}`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			var o outputJSON
			if err := json.Unmarshal([]byte(raw), &o); err != nil {
				t.Fatal(err)
			}
			if _, err := o.basic(); !errors.Is(err, ErrUnsupportedOutput) {
				t.Errorf("basic() err = %v, want ErrUnsupportedOutput", err)
			}
		})
	}
}
