// Package types defines the identifier types shared by the wallet backends.
package types

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"fmt"

	"github.com/Klingon-tech/klingnet-wallet/pkg/encoding"
)

// DigestSize is the length of a digest in bytes.
const DigestSize = 32

// Digest is a 32-byte content identifier. Ordering is byte-lexicographic.
type Digest [DigestSize]byte

// NewDigest copies b into a Digest. b must be exactly 32 bytes.
func NewDigest(b []byte) (Digest, error) {
	var d Digest
	if len(b) != DigestSize {
		return d, fmt.Errorf("digest must be %d bytes, got %d", DigestSize, len(b))
	}
	copy(d[:], b)
	return d, nil
}

// RandomDigest returns a digest filled from crypto/rand.
func RandomDigest() Digest {
	var d Digest
	if _, err := rand.Read(d[:]); err != nil {
		panic(fmt.Sprintf("read random digest: %v", err))
	}
	return d
}

// ParseDigest decodes a Base58 digest string.
func ParseDigest(s string) (Digest, error) {
	b, err := encoding.Base58.Decode(s)
	if err != nil {
		return Digest{}, err
	}
	return NewDigest(b)
}

// IsZero returns true if the digest is all zeros.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// String returns the Base58 form.
func (d Digest) String() string {
	return encoding.Base58.Encode(d[:])
}

// Bytes returns a copy of the digest as a byte slice.
func (d Digest) Bytes() []byte {
	b := make([]byte, DigestSize)
	copy(b, d[:])
	return b
}

// Compare returns -1, 0 or 1 comparing d and other byte by byte.
func (d Digest) Compare(other Digest) int {
	return bytes.Compare(d[:], other[:])
}

// NextLexicographical returns the smallest digest greater than d with the
// same length: the last byte that is not 0xff is incremented and every byte
// after it is zeroed. It reports false for the all-0xff digest.
func (d Digest) NextLexicographical() (Digest, bool) {
	next := d
	for i := DigestSize - 1; i >= 0; i-- {
		if next[i] != 0xff {
			next[i]++
			return next, true
		}
		next[i] = 0
	}
	return Digest{}, false
}

// MarshalJSON encodes the digest as a Base58 string.
func (d Digest) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a Base58 string into a digest.
func (d *Digest) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDigest(s)
	if err != nil {
		return fmt.Errorf("invalid digest: %w", err)
	}
	*d = parsed
	return nil
}

// The typed digests below wrap Digest under differently named fields so
// that one kind cannot be converted into another with a plain type
// conversion.

// TransactionDigest identifies a transaction.
type TransactionDigest struct{ tx Digest }

// NewTransactionDigest tags d as a transaction digest.
func NewTransactionDigest(d Digest) TransactionDigest { return TransactionDigest{tx: d} }

// ParseTransactionDigest decodes a Base58 transaction digest.
func ParseTransactionDigest(s string) (TransactionDigest, error) {
	d, err := ParseDigest(s)
	if err != nil {
		return TransactionDigest{}, err
	}
	return TransactionDigest{tx: d}, nil
}

// Digest returns the underlying digest.
func (t TransactionDigest) Digest() Digest { return t.tx }

// String returns the Base58 form.
func (t TransactionDigest) String() string { return t.tx.String() }

// MarshalJSON encodes the digest as a Base58 string.
func (t TransactionDigest) MarshalJSON() ([]byte, error) { return t.tx.MarshalJSON() }

// UnmarshalJSON decodes a Base58 string.
func (t *TransactionDigest) UnmarshalJSON(data []byte) error { return t.tx.UnmarshalJSON(data) }

// ObjectDigest identifies one version of an object.
type ObjectDigest struct{ obj Digest }

// NewObjectDigest tags d as an object digest.
func NewObjectDigest(d Digest) ObjectDigest { return ObjectDigest{obj: d} }

// ParseObjectDigest decodes a Base58 object digest.
func ParseObjectDigest(s string) (ObjectDigest, error) {
	d, err := ParseDigest(s)
	if err != nil {
		return ObjectDigest{}, err
	}
	return ObjectDigest{obj: d}, nil
}

// Digest returns the underlying digest.
func (o ObjectDigest) Digest() Digest { return o.obj }

// String returns the Base58 form.
func (o ObjectDigest) String() string { return o.obj.String() }

// MarshalJSON encodes the digest as a Base58 string.
func (o ObjectDigest) MarshalJSON() ([]byte, error) { return o.obj.MarshalJSON() }

// UnmarshalJSON decodes a Base58 string.
func (o *ObjectDigest) UnmarshalJSON(data []byte) error { return o.obj.UnmarshalJSON(data) }

// CheckpointDigest identifies a checkpoint summary.
type CheckpointDigest struct{ checkpoint Digest }

// NewCheckpointDigest tags d as a checkpoint digest.
func NewCheckpointDigest(d Digest) CheckpointDigest { return CheckpointDigest{checkpoint: d} }

// ParseCheckpointDigest decodes a Base58 checkpoint digest.
func ParseCheckpointDigest(s string) (CheckpointDigest, error) {
	d, err := ParseDigest(s)
	if err != nil {
		return CheckpointDigest{}, err
	}
	return CheckpointDigest{checkpoint: d}, nil
}

// Digest returns the underlying digest.
func (c CheckpointDigest) Digest() Digest { return c.checkpoint }

// String returns the Base58 form.
func (c CheckpointDigest) String() string { return c.checkpoint.String() }

// MarshalJSON encodes the digest as a Base58 string.
func (c CheckpointDigest) MarshalJSON() ([]byte, error) { return c.checkpoint.MarshalJSON() }

// UnmarshalJSON decodes a Base58 string.
func (c *CheckpointDigest) UnmarshalJSON(data []byte) error {
	return c.checkpoint.UnmarshalJSON(data)
}
