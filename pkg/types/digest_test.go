package types

import (
	"bytes"
	"encoding/json"
	"testing"

	"pgregory.net/rapid"
)

func TestDigest_NextLexicographical(t *testing.T) {
	var max Digest
	for i := range max {
		max[i] = 0xff
	}
	if _, ok := max.NextLexicographical(); ok {
		t.Error("NextLexicographical() on all-0xff digest should report no successor")
	}

	var d Digest
	for i := 1; i < DigestSize; i++ {
		d[i] = 0xff
	}
	next, ok := d.NextLexicographical()
	if !ok {
		t.Fatal("NextLexicographical() reported no successor")
	}
	want := Digest{0x01}
	if next != want {
		t.Errorf("NextLexicographical() = %x, want %x", next, want)
	}

	var zero Digest
	next, _ = zero.NextLexicographical()
	if next[DigestSize-1] != 1 {
		t.Errorf("NextLexicographical(zero) last byte = %d, want 1", next[DigestSize-1])
	}
}

func TestDigest_NextIsGreater(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		b := rapid.SliceOfN(rapid.Byte(), DigestSize, DigestSize).Draw(t, "digest")
		d, err := NewDigest(b)
		if err != nil {
			t.Fatalf("NewDigest: %v", err)
		}
		next, ok := d.NextLexicographical()
		if !ok {
			if !bytes.Equal(b, bytes.Repeat([]byte{0xff}, DigestSize)) {
				t.Fatalf("no successor for %x", b)
			}
			return
		}
		if next.Compare(d) != 1 {
			t.Fatalf("next %x is not greater than %x", next, d)
		}
	})
}

func TestDigest_StringRoundtrip(t *testing.T) {
	d := RandomDigest()
	parsed, err := ParseDigest(d.String())
	if err != nil {
		t.Fatalf("ParseDigest() error: %v", err)
	}
	if parsed != d {
		t.Errorf("ParseDigest(String()) = %x, want %x", parsed, d)
	}

	if _, err := ParseDigest("abc"); err == nil {
		t.Error("ParseDigest() of a short value should fail")
	}
	if _, err := NewDigest(make([]byte, 31)); err == nil {
		t.Error("NewDigest() of 31 bytes should fail")
	}
}

func TestDigest_Compare(t *testing.T) {
	a := Digest{0x01}
	b := Digest{0x02}
	if a.Compare(b) != -1 || b.Compare(a) != 1 || a.Compare(a) != 0 {
		t.Error("Compare() is not byte-lexicographic")
	}
}

func TestTypedDigests_JSON(t *testing.T) {
	d := RandomDigest()
	tx := NewTransactionDigest(d)

	data, err := json.Marshal(tx)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if string(data) != `"`+d.String()+`"` {
		t.Errorf("Marshal() = %s, want Base58 string", data)
	}

	var back TransactionDigest
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if back != tx {
		t.Error("transaction digest JSON round trip mismatch")
	}

	obj := NewObjectDigest(tx.Digest())
	if obj.Digest() != d {
		t.Error("ObjectDigest.Digest() should expose the shared bytes")
	}
	cp, err := ParseCheckpointDigest(d.String())
	if err != nil {
		t.Fatalf("ParseCheckpointDigest() error: %v", err)
	}
	if cp.String() != d.String() {
		t.Errorf("CheckpointDigest.String() = %s, want %s", cp, d)
	}
}
