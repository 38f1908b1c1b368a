// Package amount converts between user-facing decimal amounts and the
// fixed-point integers written on-chain.
package amount

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// ErrNegativeAmount is returned when a CryptoAmount would be negative.
var ErrNegativeAmount = errors.New("negative amount")

// CryptoAmount is a non-negative decimal quantity of a ledger's base coin.
type CryptoAmount struct {
	d decimal.Decimal
}

// Zero is the zero amount.
var Zero = CryptoAmount{}

// New wraps d, rejecting negative values.
func New(d decimal.Decimal) (CryptoAmount, error) {
	if d.IsNegative() {
		return CryptoAmount{}, fmt.Errorf("%w: %s", ErrNegativeAmount, d)
	}
	return CryptoAmount{d: d}, nil
}

// Parse reads a decimal string such as "12.5".
func Parse(s string) (CryptoAmount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return CryptoAmount{}, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return New(d)
}

// MustParse is Parse for constants; it panics on error.
func MustParse(s string) CryptoAmount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// FromUint64 returns n whole coins.
func FromUint64(n uint64) CryptoAmount {
	return CryptoAmount{d: decimal.NewFromBigInt(new(big.Int).SetUint64(n), 0)}
}

// Decimal returns the underlying decimal.
func (a CryptoAmount) Decimal() decimal.Decimal { return a.d }

// IsZero reports whether a is zero.
func (a CryptoAmount) IsZero() bool { return a.d.IsZero() }

// Equal compares by value, so 1.50 equals 1.5.
func (a CryptoAmount) Equal(b CryptoAmount) bool { return a.d.Equal(b.d) }

// Cmp returns -1, 0 or 1.
func (a CryptoAmount) Cmp(b CryptoAmount) int { return a.d.Cmp(b.d) }

// Add returns a + b.
func (a CryptoAmount) Add(b CryptoAmount) CryptoAmount {
	return CryptoAmount{d: a.d.Add(b.d)}
}

// Sub returns a - b, failing if the result would be negative.
func (a CryptoAmount) Sub(b CryptoAmount) (CryptoAmount, error) {
	return New(a.d.Sub(b.d))
}

// String returns the normalized decimal form.
func (a CryptoAmount) String() string {
	return a.d.String()
}

// MarshalJSON encodes the amount as a decimal string.
func (a CryptoAmount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts a decimal string or a JSON number.
func (a *CryptoAmount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("amount must be a string or number: %w", err)
		}
		s = n.String()
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
