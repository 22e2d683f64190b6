package section

import (
	"encoding/binary"

	"github.com/rrmetrics/eventcode/errs"
	"github.com/rrmetrics/eventcode/format"
	"github.com/rrmetrics/eventcode/internal/hash"
)

// Header is the fixed-size header of a persisted key table or packed key grid.
type Header struct {
	// Flag is a packed field for magic number, options, kind and codec.
	Flag Flag // byte offset 0-3
	// Count is the number of key table entries or grid cells.
	Count uint32 // byte offset 4-7
	// Fingerprint identifies the domain the artifact was built for.
	Fingerprint uint64 // byte offset 8-15
	// PayloadSize is the number of payload bytes following the header.
	PayloadSize uint32 // byte offset 16-19
	// RawSize is the payload size before compression.
	RawSize uint32 // byte offset 20-23
	// Checksum is the xxHash64 of the stored payload.
	Checksum uint64 // byte offset 24-31
}

// NewKeyTableHeader creates a key table header for the given kind and domain fingerprint.
func NewKeyTableHeader(kind format.TableKind, fingerprint uint64) *Header {
	return &Header{
		Flag:        NewFlag(MagicKeyTableV1, kind),
		Fingerprint: fingerprint,
	}
}

// NewGridHeader creates a grid header for the given kind and domain fingerprint.
func NewGridHeader(kind format.TableKind, fingerprint uint64) *Header {
	return &Header{
		Flag:        NewFlag(MagicGridV1, kind),
		Fingerprint: fingerprint,
	}
}

// SetPayload records size and checksum of the stored payload.
// Flag, Count and Fingerprint must be final, since the checksum covers them.
func (h *Header) SetPayload(stored []byte, rawSize int) {
	h.PayloadSize = uint32(len(stored)) //nolint:gosec
	h.RawSize = uint32(rawSize)         //nolint:gosec
	h.Checksum = h.checksum(stored)
}

// VerifyPayload checks size and checksum of the stored payload.
func (h *Header) VerifyPayload(stored []byte) error {
	if uint32(len(stored)) != h.PayloadSize { //nolint:gosec
		return errs.ErrInvalidPayload
	}

	if h.checksum(stored) != h.Checksum {
		return errs.ErrChecksumMismatch
	}

	return nil
}

// checksum digests header bytes 0-23 followed by the stored payload.
func (h *Header) checksum(stored []byte) uint64 {
	var b [HeaderSize]byte
	h.WriteToSlice(b[:])

	return hash.Checksum(b[:ChecksumOffset], stored)
}

// Bytes serializes the header into a new byte slice.
func (h *Header) Bytes() []byte {
	b := make([]byte, HeaderSize)
	h.WriteToSlice(b)

	return b
}

// WriteToSlice serializes the header into b, which must hold at least HeaderSize bytes.
func (h *Header) WriteToSlice(b []byte) {
	_ = b[HeaderSize-1]

	// Options are always little-endian so the byte order can be read before it is known.
	binary.LittleEndian.PutUint16(b[0:2], h.Flag.Options)
	b[2] = h.Flag.Kind
	b[3] = h.Flag.Codec

	engine := h.Flag.GetEndianEngine()
	engine.PutUint32(b[4:8], h.Count)
	engine.PutUint64(b[8:16], h.Fingerprint)
	engine.PutUint32(b[16:20], h.PayloadSize)
	engine.PutUint32(b[20:24], h.RawSize)
	engine.PutUint64(b[24:32], h.Checksum)
}

// Parse parses the header from exactly HeaderSize bytes and validates the flag against magic.
func (h *Header) Parse(data []byte, magic uint16) error {
	if len(data) != HeaderSize {
		return errs.ErrInvalidHeaderSize
	}

	h.Flag.Options = binary.LittleEndian.Uint16(data[0:2])
	h.Flag.Kind = data[2]
	h.Flag.Codec = data[3]

	if err := h.Flag.Validate(magic); err != nil {
		return err
	}

	engine := h.Flag.GetEndianEngine()
	h.Count = engine.Uint32(data[4:8])
	h.Fingerprint = engine.Uint64(data[8:16])
	h.PayloadSize = engine.Uint32(data[16:20])
	h.RawSize = engine.Uint32(data[20:24])
	h.Checksum = engine.Uint64(data[24:32])

	return nil
}

// ParseHeader parses a header from the start of data.
//
// Returns:
//   - Header: Parsed header struct
//   - error: ErrInvalidHeaderSize, ErrInvalidMagic or ErrInvalidHeaderFlags
func ParseHeader(data []byte, magic uint16) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, errs.ErrInvalidHeaderSize
	}

	h := Header{}
	if err := h.Parse(data[:HeaderSize], magic); err != nil {
		return Header{}, err
	}

	return h, nil
}
