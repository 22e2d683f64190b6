package section

import "github.com/rrmetrics/eventcode/format"

const (
	// Option bit masks
	EndiannessMask   = 0x0001 // Mask for endianness bit (bit 0)
	ZeroSeededMask   = 0x0002 // Mask for zero seeded bit (bit 1)
	ReservedBitsMask = 0x000C // Mask for reserved bits (bits 2-3)
	MagicNumberMask  = 0xFFF0 // Mask for magic number (bits 4-15)

	// Magic numbers (bits 4-15)
	MagicKeyTableV1 = 0xEC10 // MagicKeyTableV1 identifies key table format v1.
	MagicGridV1     = 0xED10 // MagicGridV1 identifies packed key grid format v1.

	// Payload compression (bits 0-3 of Codec)
	CompressionNone = uint8(format.CompressionNone)
	CompressionZstd = uint8(format.CompressionZstd)
	CompressionS2   = uint8(format.CompressionS2)
	CompressionLZ4  = uint8(format.CompressionLZ4)

	// Numeric width (bits 4-7 of Codec)
	WidthSafe53  = uint8(format.WidthSafe53) << 4
	WidthExact64 = uint8(format.WidthExact64) << 4
)

// HeaderSize is the fixed header size in bytes, shared by key tables and grids.
const HeaderSize = 32

// ChecksumOffset is the offset of the checksum; the header bytes before it are checksummed with the payload.
const ChecksumOffset = 24
