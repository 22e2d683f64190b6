package dictionary

import (
	"fmt"

	"github.com/rrmetrics/eventcode/compress"
	"github.com/rrmetrics/eventcode/encoding"
	"github.com/rrmetrics/eventcode/errs"
	"github.com/rrmetrics/eventcode/format"
	"github.com/rrmetrics/eventcode/section"
)

// MarshalBinary encodes the table little-endian with zstd compression.
func (t *KeyTable) MarshalBinary() ([]byte, error) {
	return t.Encode(format.CompressionZstd, false)
}

// Encode serializes the table as a section header followed by the compressed
// delta-uvarint column of raw codes. Dense codes are implicit.
func (t *KeyTable) Encode(compression format.CompressionType, bigEndian bool) ([]byte, error) {
	codec, err := compress.GetCodec(compression, "key table")
	if err != nil {
		return nil, err
	}

	enc := encoding.NewCodeDeltaEncoder()
	defer enc.Finish()

	if err := enc.WriteSlice(t.raw); err != nil {
		return nil, err
	}

	payload, err := codec.Compress(enc.Bytes())
	if err != nil {
		return nil, fmt.Errorf("compress %s table: %w", t.kind, err)
	}

	header := section.NewKeyTableHeader(t.kind, t.fingerprint)
	if bigEndian {
		header.Flag.WithBigEndian()
	}
	header.Flag.SetZeroSeeded(t.zeroSeeded)
	header.Flag.SetCompression(compression)
	header.Count = uint32(len(t.raw)) //nolint:gosec
	header.SetPayload(payload, enc.Size())

	out := make([]byte, section.HeaderSize+len(payload))
	header.WriteToSlice(out)
	copy(out[section.HeaderSize:], payload)

	return out, nil
}

// Parse decodes a table written by Encode.
func Parse(data []byte) (*KeyTable, error) {
	header, err := section.ParseHeader(data, section.MagicKeyTableV1)
	if err != nil {
		return nil, err
	}

	stored := data[section.HeaderSize:]
	if err := header.VerifyPayload(stored); err != nil {
		return nil, err
	}

	if header.Count == 0 {
		return nil, fmt.Errorf("%w: empty key table", errs.ErrInvalidPayload)
	}

	codec, err := compress.GetCodec(header.Flag.Compression(), "key table")
	if err != nil {
		return nil, err
	}

	column, err := codec.Decompress(stored)
	if err != nil {
		return nil, fmt.Errorf("%w: decompress key table: %w", errs.ErrInvalidPayload, err)
	}

	if len(column) != int(header.RawSize) {
		return nil, fmt.Errorf("%w: key table column has %d bytes, header says %d", errs.ErrInvalidPayload, len(column), header.RawSize)
	}

	raw, err := encoding.NewCodeDeltaDecoder().Decode(column, int(header.Count))
	if err != nil {
		return nil, err
	}

	return newKeyTable(header.Flag.TableKind(), header.Fingerprint, header.Flag.IsZeroSeeded(), raw), nil
}

// ParseForDomain decodes a table and verifies it belongs to the domain with the given fingerprint.
func ParseForDomain(data []byte, fingerprint uint64) (*KeyTable, error) {
	t, err := Parse(data)
	if err != nil {
		return nil, err
	}

	if err := t.VerifyDomain(fingerprint); err != nil {
		return nil, err
	}

	return t, nil
}
