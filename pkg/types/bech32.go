package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidBech32 is returned for strings that are not valid bech32.
var ErrInvalidBech32 = errors.New("invalid bech32")

const (
	bech32Charset   = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"
	bech32MaxLength = 90
	checksumLength  = 6
)

var bech32Values = func() (rev [128]int8) {
	for i := range rev {
		rev[i] = -1
	}
	for i, c := range bech32Charset {
		rev[c] = int8(i)
	}
	return rev
}()

var bech32Generator = [5]uint32{0x3b6a57b2, 0x26508e6d, 0x1ea119fa, 0x3d4233dd, 0x2a1462b3}

// Bech32Encode encodes data under hrp (BIP-173). The result is lowercase.
func Bech32Encode(hrp string, data []byte) (string, error) {
	hrp = strings.ToLower(hrp)
	if err := checkHRP(hrp); err != nil {
		return "", err
	}
	groups, err := regroup(data, 8, 5, true)
	if err != nil {
		return "", err
	}
	sum := checksum(hrp, groups)

	var sb strings.Builder
	sb.Grow(len(hrp) + 1 + len(groups) + checksumLength)
	sb.WriteString(hrp)
	sb.WriteByte('1')
	for _, g := range append(groups, sum...) {
		sb.WriteByte(bech32Charset[g])
	}
	if sb.Len() > bech32MaxLength {
		return "", fmt.Errorf("%w: %d characters", ErrInvalidBech32, sb.Len())
	}
	return sb.String(), nil
}

// Bech32Decode splits s into its hrp and data bytes, verifying the
// checksum.
func Bech32Decode(s string) (string, []byte, error) {
	if len(s) > bech32MaxLength {
		return "", nil, fmt.Errorf("%w: %d characters", ErrInvalidBech32, len(s))
	}
	lower := strings.ToLower(s)
	if lower != s && strings.ToUpper(s) != s {
		return "", nil, fmt.Errorf("%w: mixed case", ErrInvalidBech32)
	}
	sep := strings.LastIndexByte(lower, '1')
	if sep < 1 || sep+1+checksumLength > len(lower) {
		return "", nil, fmt.Errorf("%w: bad separator position", ErrInvalidBech32)
	}
	hrp := lower[:sep]
	if err := checkHRP(hrp); err != nil {
		return "", nil, err
	}

	groups := make([]byte, 0, len(lower)-sep-1)
	for _, c := range lower[sep+1:] {
		if c >= 128 || bech32Values[c] < 0 {
			return "", nil, fmt.Errorf("%w: character %q", ErrInvalidBech32, c)
		}
		groups = append(groups, byte(bech32Values[c]))
	}
	if polymod(append(expandHRP(hrp), groups...)) != 1 {
		return "", nil, fmt.Errorf("%w: checksum mismatch", ErrInvalidBech32)
	}
	data, err := regroup(groups[:len(groups)-checksumLength], 5, 8, false)
	if err != nil {
		return "", nil, err
	}
	return hrp, data, nil
}

func checkHRP(hrp string) error {
	if hrp == "" {
		return fmt.Errorf("%w: empty hrp", ErrInvalidBech32)
	}
	for _, c := range hrp {
		if c < 33 || c > 126 {
			return fmt.Errorf("%w: hrp character %q", ErrInvalidBech32, c)
		}
	}
	return nil
}

func polymod(values []byte) uint32 {
	chk := uint32(1)
	for _, v := range values {
		top := chk >> 25
		chk = (chk&0x1ffffff)<<5 ^ uint32(v)
		for i, g := range bech32Generator {
			if (top>>uint(i))&1 == 1 {
				chk ^= g
			}
		}
	}
	return chk
}

func expandHRP(hrp string) []byte {
	out := make([]byte, 0, 2*len(hrp)+1)
	for i := 0; i < len(hrp); i++ {
		out = append(out, hrp[i]>>5)
	}
	out = append(out, 0)
	for i := 0; i < len(hrp); i++ {
		out = append(out, hrp[i]&31)
	}
	return out
}

func checksum(hrp string, groups []byte) []byte {
	values := append(expandHRP(hrp), groups...)
	values = append(values, make([]byte, checksumLength)...)
	mod := polymod(values) ^ 1
	out := make([]byte, checksumLength)
	for i := range out {
		out[i] = byte(mod>>uint(5*(5-i))) & 31
	}
	return out
}

// regroup converts between from-bit and to-bit groups. Encoding pads the
// last group with zeros; decoding rejects non-zero padding.
func regroup(data []byte, from, to uint, pad bool) ([]byte, error) {
	var acc uint32
	var bits uint
	maxv := uint32(1)<<to - 1
	out := make([]byte, 0, len(data)*int(from)/int(to)+1)
	for _, b := range data {
		if uint32(b)>>from != 0 {
			return nil, fmt.Errorf("%w: value %d exceeds %d bits", ErrInvalidBech32, b, from)
		}
		acc = acc<<from | uint32(b)
		bits += from
		for bits >= to {
			bits -= to
			out = append(out, byte(acc>>bits&maxv))
		}
	}
	switch {
	case pad && bits > 0:
		out = append(out, byte(acc<<(to-bits)&maxv))
	case !pad && (bits >= from || acc<<(to-bits)&maxv != 0):
		return nil, fmt.Errorf("%w: non-zero padding", ErrInvalidBech32)
	}
	return out, nil
}
