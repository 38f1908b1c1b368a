package stardust

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrSerialize is returned when a value cannot be put on the wire.
var ErrSerialize = errors.New("stardust serialization")

// writer accumulates the little-endian, fixed-width-prefixed binary form
// shared by outputs, essences, payloads and blocks.
type writer struct {
	buf []byte
	err error
}

func (w *writer) u8(v uint8)   { w.buf = append(w.buf, v) }
func (w *writer) u16(v uint16) { w.buf = binary.LittleEndian.AppendUint16(w.buf, v) }
func (w *writer) u32(v uint32) { w.buf = binary.LittleEndian.AppendUint32(w.buf, v) }
func (w *writer) u64(v uint64) { w.buf = binary.LittleEndian.AppendUint64(w.buf, v) }
func (w *writer) raw(b []byte) { w.buf = append(w.buf, b...) }

// count writes n as a u8 or u16 element count.
func (w *writer) count(n, max int, wide bool, what string) {
	if n > max {
		w.fail("%d %s, max %d", n, what, max)
		return
	}
	if wide {
		w.u16(uint16(n))
	} else {
		w.u8(uint8(n))
	}
}

// bytes8 writes b with a u8 length prefix.
func (w *writer) bytes8(b []byte, what string) {
	if len(b) > math.MaxUint8 {
		w.fail("%s length %d", what, len(b))
		return
	}
	w.u8(uint8(len(b)))
	w.raw(b)
}

// bytes16 writes b with a u16 length prefix.
func (w *writer) bytes16(b []byte, what string) {
	if len(b) > math.MaxUint16 {
		w.fail("%s length %d", what, len(b))
		return
	}
	w.u16(uint16(len(b)))
	w.raw(b)
}

// bytes32 writes b with a u32 length prefix.
func (w *writer) bytes32(b []byte) {
	w.u32(uint32(len(b)))
	w.raw(b)
}

func (w *writer) fail(format string, args ...any) {
	if w.err == nil {
		w.err = fmt.Errorf("%w: %s", ErrSerialize, fmt.Sprintf(format, args...))
	}
}

func (w *writer) result() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	return w.buf, nil
}
