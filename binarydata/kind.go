package binarydata

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shibukawa/bytelayout"
)

// Kind enumerates the primitive encodings a layout can declare.
type Kind int

const (
	Invalid Kind = iota
	KindBool8
	KindBool16
	KindBool32
	KindBool64
	KindChar8
	KindChar16
	KindInt8
	KindUInt8
	KindInt16
	KindUInt16
	KindInt32
	KindUInt32
	KindInt64
	KindUInt64
	KindFloat32
	KindFloat64
	KindGUID
)

type kindInfo struct {
	name  string
	size  int
	read  func(d *BinaryData, offset int) (any, error)
	write func(d *BinaryData, offset int, v any) error
	parse func(s string) (any, error)
}

var kinds = map[Kind]kindInfo{
	KindBool8:   scalar("bool8", parseBool[Bool8]),
	KindBool16:  scalar("bool16", parseBool[Bool16]),
	KindBool32:  scalar("bool32", parseBool[Bool32]),
	KindBool64:  scalar("bool64", parseBool[Bool64]),
	KindChar8:   scalar("char8", parseChar8),
	KindChar16:  scalar("char16", parseChar16),
	KindInt8:    scalar("int8", parseSigned[int8](8)),
	KindUInt8:   scalar("uint8", parseUnsigned[uint8](8)),
	KindInt16:   scalar("int16", parseSigned[int16](16)),
	KindUInt16:  scalar("uint16", parseUnsigned[uint16](16)),
	KindInt32:   scalar("int32", parseSigned[int32](32)),
	KindUInt32:  scalar("uint32", parseUnsigned[uint32](32)),
	KindInt64:   scalar("int64", parseSigned[int64](64)),
	KindUInt64:  scalar("uint64", parseUnsigned[uint64](64)),
	KindFloat32: scalar("float32", parseFloat[float32](32)),
	KindFloat64: scalar("float64", parseFloat[float64](64)),
	KindGUID: {
		name:  "guid",
		size:  16,
		read:  func(d *BinaryData, offset int) (any, error) { return d.GetUUID(offset) },
		write: writeGUID,
		parse: func(s string) (any, error) { return uuid.Parse(s) },
	},
}

func scalar[T Value](name string, parse func(string) (T, error)) kindInfo {
	return kindInfo{
		name: name,
		size: SizeOf[T](),
		read: func(d *BinaryData, offset int) (any, error) {
			return Get[T](d, offset)
		},
		write: func(d *BinaryData, offset int, v any) error {
			typed, ok := v.(T)
			if !ok {
				return fmt.Errorf("%w: %s field cannot hold %T", bytelayout.ErrTypeMismatch, name, v)
			}

			return Set(d, offset, typed)
		},
		parse: func(s string) (any, error) {
			v, err := parse(s)
			if err != nil {
				return nil, fmt.Errorf("%w: cannot parse '%s' as %s: %w", bytelayout.ErrTypeMismatch, s, name, err)
			}

			return v, nil
		},
	}
}

func writeGUID(d *BinaryData, offset int, v any) error {
	id, ok := v.(uuid.UUID)
	if !ok {
		return fmt.Errorf("%w: guid field cannot hold %T", bytelayout.ErrTypeMismatch, v)
	}

	return d.SetUUID(offset, id)
}

func parseBool[T ~bool](s string) (T, error) {
	b, err := strconv.ParseBool(s)
	return T(b), err
}

func parseSigned[T ~int8 | ~int16 | ~int32 | ~int64](bits int) func(string) (T, error) {
	return func(s string) (T, error) {
		n, err := strconv.ParseInt(s, 0, bits)
		return T(n), err
	}
}

func parseUnsigned[T ~uint8 | ~uint16 | ~uint32 | ~uint64](bits int) func(string) (T, error) {
	return func(s string) (T, error) {
		n, err := strconv.ParseUint(s, 0, bits)
		return T(n), err
	}
}

func parseFloat[T ~float32 | ~float64](bits int) func(string) (T, error) {
	return func(s string) (T, error) {
		f, err := strconv.ParseFloat(s, bits)
		return T(f), err
	}
}

func parseChar8(s string) (Char8, error) {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || size != len(s) || r > 0xFF {
		return 0, fmt.Errorf("expected a single 8-bit character, got '%s'", s)
	}

	return Char8(r), nil
}

func parseChar16(s string) (Char16, error) {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || size != len(s) || r > 0xFFFF {
		return 0, fmt.Errorf("expected a single 16-bit character, got '%s'", s)
	}

	return Char16(r), nil
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	_, ok := kinds[k]
	return ok
}

// Size returns the encoded width of one element of kind k.
func (k Kind) Size() int {
	return kinds[k].size
}

func (k Kind) String() string {
	if info, ok := kinds[k]; ok {
		return info.name
	}

	return "invalid"
}

// IsBool reports whether k is one of the boolean widths.
func (k Kind) IsBool() bool {
	return k >= KindBool8 && k <= KindBool64
}

// IsChar reports whether k is a character code.
func (k Kind) IsChar() bool {
	return k == KindChar8 || k == KindChar16
}

// IsFloat reports whether k is a floating point kind.
func (k Kind) IsFloat() bool {
	return k == KindFloat32 || k == KindFloat64
}

// Read decodes one value of kind k at offset. The dynamic type is the Go type
// matching the kind: int16 for KindInt16, Bool32 for KindBool32, uuid.UUID for
// KindGUID and so on.
func (d *BinaryData) Read(k Kind, offset int) (any, error) {
	info, ok := kinds[k]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported kind %d", bytelayout.ErrTypeMismatch, int(k))
	}

	return info.read(d, offset)
}

// Write encodes v at offset. v must have the Go type Read returns for k.
func (d *BinaryData) Write(k Kind, offset int, v any) error {
	info, ok := kinds[k]
	if !ok {
		return fmt.Errorf("%w: unsupported kind %d", bytelayout.ErrTypeMismatch, int(k))
	}

	return info.write(d, offset, v)
}

// ParseValue converts textual input into the Go type used for kind k.
// Integers accept 0x, 0o and 0b prefixes.
func ParseValue(k Kind, s string) (any, error) {
	info, ok := kinds[k]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported kind %d", bytelayout.ErrTypeMismatch, int(k))
	}

	return info.parse(s)
}
