package value

import (
	"bytes"
	"encoding/binary"
	"math"
)

// tag bytes fix the cross-type encoded order; they must stay in the same
// relative order as the Kind constants in value.go.
const (
	tagMin    byte = 0x00
	tagNull   byte = 0x10
	tagNumber byte = 0x20
	tagString byte = 0x30
	tagBool   byte = 0x40
	tagArray  byte = 0x50
	tagMax    byte = 0xFF
)

// Encode produces a byte string whose lexicographic order matches Compare's
// order on v. It is used to build sortable B-tree index keys; it is not used
// by the planner's own interval algebra, which compares Values directly.
func Encode(v Value) []byte {
	switch v.kind {
	case KindMin:
		return []byte{tagMin}
	case KindNull:
		return []byte{tagNull}
	case KindNumber:
		buf := make([]byte, 9)
		buf[0] = tagNumber
		binary.BigEndian.PutUint64(buf[1:], orderedFloatBits(v.num))
		return buf
	case KindString:
		var buf bytes.Buffer
		buf.WriteByte(tagString)
		buf.Write(encodeOrderedString(v.str))
		return buf.Bytes()
	case KindBool:
		b := byte(0)
		if v.b {
			b = 1
		}
		return []byte{tagBool, b}
	case KindArray:
		var buf bytes.Buffer
		buf.WriteByte(tagArray)
		for _, e := range v.arr {
			enc := Encode(e)
			var lenBuf [4]byte
			binary.BigEndian.PutUint32(lenBuf[:], uint32(len(enc)))
			buf.Write(lenBuf[:])
			buf.Write(enc)
		}
		return buf.Bytes()
	case KindMax:
		return []byte{tagMax}
	default:
		panic("value: Encode on unknown kind")
	}
}

// orderedFloatBits maps a float64 onto a uint64 whose big-endian byte order
// matches IEEE-754 numeric order (negative numbers sort before positive, and
// within a sign the usual order is preserved).
func orderedFloatBits(f float64) uint64 {
	bits := math.Float64bits(f)
	if bits&(1<<63) != 0 {
		// Negative: flip everything so more-negative sorts first.
		return ^bits
	}
	// Non-negative: flip the sign bit so positives sort after negatives.
	return bits | (1 << 63)
}

// encodeOrderedString escapes embedded NUL bytes (0x00 -> 0x00 0xFF) and
// terminates with 0x00 0x00 so that concatenated multi-component keys remain
// unambiguous and byte order continues to match string order.
func encodeOrderedString(s string) []byte {
	var buf bytes.Buffer
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == 0x00 {
			buf.WriteByte(0x00)
			buf.WriteByte(0xFF)
		} else {
			buf.WriteByte(c)
		}
	}
	buf.WriteByte(0x00)
	buf.WriteByte(0x00)
	return buf.Bytes()
}

// EncodeComponent encodes v for use as one component of a composite index
// key. When dir is -1 the encoded bytes are bit-complemented so that
// ascending byte order over the complemented bytes corresponds to descending
// value order, letting a plain byte-sorted B-tree serve a descending key
// component.
func EncodeComponent(v Value, dir int) []byte {
	enc := Encode(v)
	if dir >= 0 {
		return enc
	}
	out := make([]byte, len(enc))
	for i, b := range enc {
		out[i] = ^b
	}
	return out
}
