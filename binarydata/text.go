package binarydata

import (
	"bytes"
	"fmt"

	"github.com/google/uuid"
	"github.com/shibukawa/bytelayout"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// GetUUID reads 16 raw bytes at offset as a GUID.
func (d *BinaryData) GetUUID(offset int) (uuid.UUID, error) {
	raw, err := d.ReadBytes(offset, 16)
	if err != nil {
		return uuid.Nil, err
	}

	return uuid.FromBytes(raw)
}

// SetUUID writes the 16 raw bytes of id at offset.
func (d *BinaryData) SetUUID(offset int, id uuid.UUID) error {
	return d.WriteBytes(offset, id[:])
}

func (d *BinaryData) textEncoding(k Kind) (encoding.Encoding, error) {
	switch k {
	case KindChar8:
		return charmap.Windows1252, nil
	case KindChar16:
		if d.endian == BigEndian {
			return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), nil
		}

		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), nil
	default:
		return nil, fmt.Errorf("%w: %s is not a character kind", bytelayout.ErrTypeMismatch, k)
	}
}

// GetString decodes count characters of kind k starting at offset. Decoding
// stops at the first NUL character.
func (d *BinaryData) GetString(k Kind, offset, count int) (string, error) {
	enc, err := d.textEncoding(k)
	if err != nil {
		return "", err
	}

	raw, err := d.ReadBytes(offset, k.Size()*count)
	if err != nil {
		return "", err
	}

	raw = truncateAtNul(raw, k.Size())

	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("%w: cannot decode %s text: %w", bytelayout.ErrTypeMismatch, k, err)
	}

	return string(decoded), nil
}

// SetString encodes s into a field of count characters of kind k. Shorter
// text is padded with NUL characters; text that does not fit fails without
// writing.
func (d *BinaryData) SetString(k Kind, offset, count int, s string) error {
	enc, err := d.textEncoding(k)
	if err != nil {
		return err
	}

	if err := d.CheckRange(offset, k.Size(), count); err != nil {
		return err
	}

	encoded, err := enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return fmt.Errorf("%w: cannot encode '%s' as %s: %w", bytelayout.ErrTypeMismatch, s, k, err)
	}

	width := k.Size() * count
	if len(encoded) > width {
		return fmt.Errorf("%w: '%s' needs %d bytes, field has %d", bytelayout.ErrTypeMismatch, s, len(encoded), width)
	}

	padded := make([]byte, width)
	copy(padded, encoded)

	return d.WriteBytes(offset, padded)
}

func truncateAtNul(raw []byte, width int) []byte {
	if width == 1 {
		if i := bytes.IndexByte(raw, 0); i >= 0 {
			return raw[:i]
		}

		return raw
	}

	for i := 0; i+width <= len(raw); i += width {
		if bytes.Equal(raw[i:i+width], make([]byte, width)) {
			return raw[:i]
		}
	}

	return raw
}
