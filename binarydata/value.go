package binarydata

import (
	"encoding/binary"
	"math"
)

// Bool8 through Bool64 are booleans stored in 1, 2, 4 and 8 bytes. Any
// non-zero pattern reads as true; true is written as 1.
type (
	Bool8  bool
	Bool16 bool
	Bool32 bool
	Bool64 bool
)

// Char8 and Char16 are 8-bit and 16-bit character codes.
type (
	Char8  uint8
	Char16 uint16
)

// Value is the closed set of fixed-width encodings the accessor supports.
// A plain bool is stored in one byte.
type Value interface {
	int8 | uint8 | int16 | uint16 | int32 | uint32 | int64 | uint64 |
		float32 | float64 |
		bool | Bool8 | Bool16 | Bool32 | Bool64 |
		Char8 | Char16
}

// SizeOf returns the encoded width of T in bytes.
func SizeOf[T Value]() int {
	var zero T

	switch any(zero).(type) {
	case int8, uint8, bool, Bool8, Char8:
		return 1
	case int16, uint16, Bool16, Char16:
		return 2
	case int32, uint32, float32, Bool32:
		return 4
	default:
		return 8
	}
}

// Get reads one T at offset.
func Get[T Value](d *BinaryData, offset int) (T, error) {
	var v T

	size := SizeOf[T]()
	if err := d.CheckRange(offset, size, 1); err != nil {
		return v, err
	}

	decode(d.order, d.buf[offset:offset+size], &v)

	return v, nil
}

// Set writes v at offset.
func Set[T Value](d *BinaryData, offset int, v T) error {
	size := SizeOf[T]()
	if err := d.CheckRange(offset, size, 1); err != nil {
		return err
	}

	encode(d.order, d.buf[offset:offset+size], v)

	return nil
}

// GetSlice reads count consecutive values starting at offset.
func GetSlice[T Value](d *BinaryData, offset, count int) ([]T, error) {
	size := SizeOf[T]()
	if err := d.CheckRange(offset, size, count); err != nil {
		return nil, err
	}

	out := make([]T, count)
	for i := range out {
		start := offset + i*size
		decode(d.order, d.buf[start:start+size], &out[i])
	}

	return out, nil
}

// SetSlice writes values consecutively starting at offset.
func SetSlice[T Value](d *BinaryData, offset int, values []T) error {
	size := SizeOf[T]()
	if err := d.CheckRange(offset, size, len(values)); err != nil {
		return err
	}

	for i, v := range values {
		start := offset + i*size
		encode(d.order, d.buf[start:start+size], v)
	}

	return nil
}

func decode[T Value](order binary.ByteOrder, b []byte, out *T) {
	switch p := any(out).(type) {
	case *int8:
		*p = int8(b[0])
	case *uint8:
		*p = b[0]
	case *int16:
		*p = int16(order.Uint16(b))
	case *uint16:
		*p = order.Uint16(b)
	case *int32:
		*p = int32(order.Uint32(b))
	case *uint32:
		*p = order.Uint32(b)
	case *int64:
		*p = int64(order.Uint64(b))
	case *uint64:
		*p = order.Uint64(b)
	case *float32:
		*p = math.Float32frombits(order.Uint32(b))
	case *float64:
		*p = math.Float64frombits(order.Uint64(b))
	case *bool:
		*p = b[0] != 0
	case *Bool8:
		*p = b[0] != 0
	case *Bool16:
		*p = order.Uint16(b) != 0
	case *Bool32:
		*p = order.Uint32(b) != 0
	case *Bool64:
		*p = order.Uint64(b) != 0
	case *Char8:
		*p = Char8(b[0])
	case *Char16:
		*p = Char16(order.Uint16(b))
	}
}

func encode[T Value](order binary.ByteOrder, b []byte, v T) {
	switch x := any(v).(type) {
	case int8:
		b[0] = byte(x)
	case uint8:
		b[0] = x
	case int16:
		order.PutUint16(b, uint16(x))
	case uint16:
		order.PutUint16(b, x)
	case int32:
		order.PutUint32(b, uint32(x))
	case uint32:
		order.PutUint32(b, x)
	case int64:
		order.PutUint64(b, uint64(x))
	case uint64:
		order.PutUint64(b, x)
	case float32:
		order.PutUint32(b, math.Float32bits(x))
	case float64:
		order.PutUint64(b, math.Float64bits(x))
	case bool:
		b[0] = boolByte(x)
	case Bool8:
		b[0] = boolByte(bool(x))
	case Bool16:
		order.PutUint16(b, uint16(boolByte(bool(x))))
	case Bool32:
		order.PutUint32(b, uint32(boolByte(bool(x))))
	case Bool64:
		order.PutUint64(b, uint64(boolByte(bool(x))))
	case Char8:
		b[0] = byte(x)
	case Char16:
		order.PutUint16(b, uint16(x))
	}
}

func boolByte(v bool) byte {
	if v {
		return 1
	}

	return 0
}
