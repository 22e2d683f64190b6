package section

import (
	"fmt"

	"github.com/rrmetrics/eventcode/endian"
	"github.com/rrmetrics/eventcode/errs"
	"github.com/rrmetrics/eventcode/format"
)

// Flag is the packed 4-byte flag field at the start of every header.
type Flag struct {
	// Options carries the magic number and option bits.
	// Bit 0 is endianness, bit 1 marks a zero-seeded key table, bits 4-15 are the magic number.
	Options uint16
	// Kind is the format.TableKind of the stored codes.
	Kind uint8
	// Codec packs payload compression in bits 0-3 and numeric width in bits 4-7.
	Codec uint8
}

// NewFlag creates a little-endian flag with the given magic, zstd compression and safe53 width.
func NewFlag(magic uint16, kind format.TableKind) Flag {
	return Flag{
		Options: magic & MagicNumberMask,
		Kind:    uint8(kind),
		Codec:   CompressionZstd | WidthSafe53,
	}
}

// GetMagicNumber returns the magic number from the Options field.
func (f Flag) GetMagicNumber() uint16 {
	return f.Options & MagicNumberMask
}

// IsLittleEndian returns whether the header body and payload are little-endian.
func (f Flag) IsLittleEndian() bool {
	return (f.Options & EndiannessMask) == 0
}

// IsBigEndian returns whether the header body and payload are big-endian.
func (f Flag) IsBigEndian() bool {
	return (f.Options & EndiannessMask) != 0
}

// WithLittleEndian sets little-endian byte order.
func (f *Flag) WithLittleEndian() {
	f.Options &^= EndiannessMask
}

// WithBigEndian sets big-endian byte order.
func (f *Flag) WithBigEndian() {
	f.Options |= EndiannessMask
}

// IsZeroSeeded reports whether raw code 0 was forced into the key table.
func (f Flag) IsZeroSeeded() bool {
	return (f.Options & ZeroSeededMask) != 0
}

// SetZeroSeeded sets or clears the zero seeded bit.
func (f *Flag) SetZeroSeeded(seeded bool) {
	if seeded {
		f.Options |= ZeroSeededMask
	} else {
		f.Options &^= ZeroSeededMask
	}
}

// TableKind returns the kind of the stored codes.
func (f Flag) TableKind() format.TableKind {
	return format.TableKind(f.Kind)
}

// Compression returns the payload compression from bits 0-3 of Codec.
func (f Flag) Compression() format.CompressionType {
	return format.CompressionType(f.Codec & 0x0F)
}

// SetCompression sets the payload compression in bits 0-3 of Codec.
func (f *Flag) SetCompression(c format.CompressionType) {
	f.Codec &^= 0x0F
	f.Codec |= uint8(c) & 0x0F
}

// Width returns the numeric width from bits 4-7 of Codec.
func (f Flag) Width() format.NumericWidth {
	return format.NumericWidth((f.Codec >> 4) & 0x0F)
}

// SetWidth sets the numeric width in bits 4-7 of Codec.
func (f *Flag) SetWidth(w format.NumericWidth) {
	f.Codec &^= 0xF0
	f.Codec |= (uint8(w) & 0x0F) << 4
}

// GetEndianEngine returns the endian engine selected by the flag.
func (f Flag) GetEndianEngine() endian.EndianEngine {
	return endian.ForFlag(f.IsBigEndian())
}

// Validate checks that the flag carries the expected magic and known enum values.
func (f Flag) Validate(magic uint16) error {
	if f.GetMagicNumber() != magic {
		return fmt.Errorf("%w: got 0x%04X, want 0x%04X", errs.ErrInvalidMagic, f.GetMagicNumber(), magic)
	}

	if f.Options&ReservedBitsMask != 0 {
		return fmt.Errorf("%w: reserved bits set", errs.ErrInvalidHeaderFlags)
	}

	if !f.TableKind().Valid() {
		return fmt.Errorf("%w: unknown table kind %d", errs.ErrInvalidHeaderFlags, f.Kind)
	}

	switch f.Compression() {
	case format.CompressionNone, format.CompressionZstd, format.CompressionS2, format.CompressionLZ4:
	default:
		return fmt.Errorf("%w: unknown compression %d", errs.ErrInvalidHeaderFlags, f.Codec&0x0F)
	}

	if !f.Width().Valid() {
		return fmt.Errorf("%w: unknown numeric width %d", errs.ErrInvalidHeaderFlags, f.Codec>>4)
	}

	return nil
}
