package amount

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// Conversion errors.
var (
	ErrPrecisionLoss = errors.New("precision loss")
	ErrNegativeValue = errors.New("negative value")
	ErrOverflow      = errors.New("overflow")
)

// Width limits of the fixed and decimal representations.
const (
	// FixedBits is the width of on-chain integers.
	FixedBits = 128
	// MantissaBits is the widest mantissa a decimal amount may carry.
	MantissaBits = 96
	// MaxScale is the largest number of fractional digits.
	MaxScale = 28
)

var (
	bigTen = big.NewInt(10)
	maxU64 = new(big.Int).SetUint64(^uint64(0))
)

// normalize returns the mantissa and scale of d with trailing fractional
// zeros stripped. A positive exponent is folded into the mantissa.
func normalize(d decimal.Decimal) (*big.Int, int32) {
	coef := new(big.Int).Set(d.Coefficient())
	exp := d.Exponent()
	if coef.Sign() == 0 {
		return coef, 0
	}
	rem := new(big.Int)
	for exp < 0 {
		q, r := new(big.Int).QuoRem(coef, bigTen, rem)
		if r.Sign() != 0 {
			break
		}
		coef = q
		exp++
	}
	if exp > 0 {
		coef.Mul(coef, new(big.Int).Exp(bigTen, big.NewInt(int64(exp)), nil))
		exp = 0
	}
	return coef, -exp
}

// Normalize strips trailing fractional zeros from a.
func Normalize(a CryptoAmount) CryptoAmount {
	coef, scale := normalize(a.d)
	return CryptoAmount{d: decimal.NewFromBigInt(coef, -scale)}
}

// maxFixedDigits is the number of decimal digits that always fit in
// FixedBits; a larger power of ten overflows for any non-zero mantissa.
const maxFixedDigits = 38

// DecimalToFixed scales d by 10^decimals into an unsigned 128-bit integer.
// It fails with ErrNegativeValue if d is negative, ErrPrecisionLoss if d has
// more fractional digits than decimals and ErrOverflow if the result does
// not fit in 128 bits.
func DecimalToFixed(d decimal.Decimal, decimals uint32) (*big.Int, error) {
	if d.IsNegative() {
		return nil, fmt.Errorf("%w: %s", ErrNegativeValue, d)
	}
	coef, scale := normalize(d)
	if uint32(scale) > decimals {
		return nil, fmt.Errorf("%w: %s has %d fractional digits, ledger supports %d", ErrPrecisionLoss, d, scale, decimals)
	}
	if coef.Sign() == 0 {
		return coef, nil
	}
	shift := decimals - uint32(scale)
	if shift > maxFixedDigits+1 {
		return nil, fmt.Errorf("%w: 10^%d exceeds %d bits", ErrOverflow, shift, FixedBits)
	}
	v := coef.Mul(coef, new(big.Int).Exp(bigTen, big.NewInt(int64(shift)), nil))
	if v.BitLen() > FixedBits {
		return nil, fmt.Errorf("%w: %s scaled by 10^%d exceeds %d bits", ErrOverflow, d, decimals, FixedBits)
	}
	return v, nil
}

// DecimalToUint64 is DecimalToFixed for ledgers with 64-bit balances.
func DecimalToUint64(d decimal.Decimal, decimals uint32) (uint64, error) {
	v, err := DecimalToFixed(d, decimals)
	if err != nil {
		return 0, err
	}
	if v.Cmp(maxU64) > 0 {
		return 0, fmt.Errorf("%w: %s exceeds 64 bits", ErrOverflow, v)
	}
	return v.Uint64(), nil
}

// ToFixed converts a with DecimalToFixed.
func (a CryptoAmount) ToFixed(decimals uint32) (*big.Int, error) {
	return DecimalToFixed(a.d, decimals)
}

// ToUint64 converts a with DecimalToUint64.
func (a CryptoAmount) ToUint64(decimals uint32) (uint64, error) {
	return DecimalToUint64(a.d, decimals)
}

// FixedToDecimal divides v by 10^decimals. It fails with ErrNegativeValue
// for negative v and ErrOverflow if v does not fit a 96-bit mantissa or
// decimals exceeds MaxScale. The result is normalized.
func FixedToDecimal(v *big.Int, decimals uint32) (CryptoAmount, error) {
	if v == nil {
		return Zero, nil
	}
	if v.Sign() < 0 {
		return CryptoAmount{}, fmt.Errorf("%w: %s", ErrNegativeValue, v)
	}
	if v.BitLen() > MantissaBits {
		return CryptoAmount{}, fmt.Errorf("%w: %s exceeds %d-bit mantissa", ErrOverflow, v, MantissaBits)
	}
	if decimals > MaxScale {
		return CryptoAmount{}, fmt.Errorf("%w: scale %d exceeds %d", ErrOverflow, decimals, MaxScale)
	}
	return Normalize(CryptoAmount{d: decimal.NewFromBigInt(v, -int32(decimals))}), nil
}

// Uint64ToDecimal is FixedToDecimal for 64-bit values.
func Uint64ToDecimal(v uint64, decimals uint32) (CryptoAmount, error) {
	return FixedToDecimal(new(big.Int).SetUint64(v), decimals)
}
