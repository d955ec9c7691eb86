// Package binarydata owns a byte buffer and mediates all typed access to it.
//
// Every read and write is bounds checked and applies the buffer's endianness
// uniformly. A failed call never touches the buffer.
package binarydata

import (
	"encoding/binary"
	"fmt"

	"github.com/shibukawa/bytelayout"
)

// Endianness selects the byte order of multi-byte values.
type Endianness int

const (
	LittleEndian Endianness = iota
	BigEndian
)

// ParseEndianness accepts "little" or "big".
func ParseEndianness(s string) (Endianness, error) {
	switch s {
	case "little", "le", "":
		return LittleEndian, nil
	case "big", "be":
		return BigEndian, nil
	default:
		return LittleEndian, fmt.Errorf("unknown endianness '%s'", s)
	}
}

func (e Endianness) String() string {
	if e == BigEndian {
		return "big"
	}

	return "little"
}

// ByteOrder returns the encoding/binary order for e.
func (e Endianness) ByteOrder() binary.ByteOrder {
	if e == BigEndian {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// RangeError reports an access outside the buffer.
type RangeError struct {
	Offset int
	Size   int
	Length int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s: offset %d (size %d) outside buffer of length %d", bytelayout.ErrOutOfRange, e.Offset, e.Size, e.Length)
}

func (e *RangeError) Unwrap() error {
	return bytelayout.ErrOutOfRange
}

// BinaryData is a fixed-length byte buffer with a declared endianness.
type BinaryData struct {
	buf    []byte
	order  binary.ByteOrder
	endian Endianness
}

// New allocates a zeroed buffer of size bytes.
func New(size int, endian Endianness) *BinaryData {
	if size < 0 {
		size = 0
	}

	return &BinaryData{buf: make([]byte, size), order: endian.ByteOrder(), endian: endian}
}

// FromBytes copies b into a new buffer.
func FromBytes(b []byte, endian Endianness) *BinaryData {
	buf := make([]byte, len(b))
	copy(buf, b)

	return &BinaryData{buf: buf, order: endian.ByteOrder(), endian: endian}
}

// Len returns the buffer length in bytes.
func (d *BinaryData) Len() int {
	return len(d.buf)
}

// Endianness returns the byte order fixed at construction.
func (d *BinaryData) Endianness() Endianness {
	return d.endian
}

// Bytes returns a copy of the buffer contents.
func (d *BinaryData) Bytes() []byte {
	out := make([]byte, len(d.buf))
	copy(out, d.buf)

	return out
}

// CheckRange validates that count elements of size bytes fit at offset.
func (d *BinaryData) CheckRange(offset, size, count int) error {
	if offset < 0 || size < 0 || count < 0 {
		return &RangeError{Offset: offset, Size: size * count, Length: len(d.buf)}
	}

	total := size * count
	if count != 0 && total/count != size {
		return &RangeError{Offset: offset, Size: total, Length: len(d.buf)}
	}

	if offset > len(d.buf) || total > len(d.buf)-offset {
		return &RangeError{Offset: offset, Size: total, Length: len(d.buf)}
	}

	return nil
}

// ReadBytes copies n raw bytes starting at offset.
func (d *BinaryData) ReadBytes(offset, n int) ([]byte, error) {
	if err := d.CheckRange(offset, 1, n); err != nil {
		return nil, err
	}

	out := make([]byte, n)
	copy(out, d.buf[offset:offset+n])

	return out, nil
}

// WriteBytes copies b into the buffer at offset.
func (d *BinaryData) WriteBytes(offset int, b []byte) error {
	if err := d.CheckRange(offset, 1, len(b)); err != nil {
		return err
	}

	copy(d.buf[offset:], b)

	return nil
}
