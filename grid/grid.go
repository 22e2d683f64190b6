// Package grid persists a grid of codes, typically the packed keys of a
// build, as a section header followed by a compressed raw uint64 column.
package grid

import (
	"fmt"
	"os"

	"github.com/rrmetrics/eventcode/compress"
	"github.com/rrmetrics/eventcode/encoding"
	"github.com/rrmetrics/eventcode/errs"
	"github.com/rrmetrics/eventcode/format"
	"github.com/rrmetrics/eventcode/internal/options"
	"github.com/rrmetrics/eventcode/section"
)

// Grid is a decoded code grid in cell order.
type Grid struct {
	Kind        format.TableKind
	Width       format.NumericWidth
	Fingerprint uint64
	Codes       []uint64
}

type config struct {
	kind        format.TableKind
	width       format.NumericWidth
	fingerprint uint64
	compression format.CompressionType
	bigEndian   bool
}

// Option configures Marshal.
type Option = options.Option[*config]

// WithKind sets the kind of the stored codes. The default is format.KindComposite.
func WithKind(kind format.TableKind) Option {
	return options.New(func(c *config) error {
		if !kind.Valid() {
			return fmt.Errorf("%w: table kind %d", errs.ErrInvalidConfig, kind)
		}
		c.kind = kind

		return nil
	})
}

// WithWidth records the numeric width the codes were built for.
func WithWidth(w format.NumericWidth) Option {
	return options.New(func(c *config) error {
		if !w.Valid() {
			return fmt.Errorf("%w: numeric width %d", errs.ErrInvalidConfig, w)
		}
		c.width = w

		return nil
	})
}

// WithFingerprint binds the grid to a domain.
func WithFingerprint(fp uint64) Option {
	return options.NoError(func(c *config) { c.fingerprint = fp })
}

// WithCompression sets the payload compression. The default is zstd.
func WithCompression(ct format.CompressionType) Option {
	return options.NoError(func(c *config) { c.compression = ct })
}

// WithBigEndian stores the grid big-endian.
func WithBigEndian() Option {
	return options.NoError(func(c *config) { c.bigEndian = true })
}

// Marshal serializes codes.
func Marshal(codes []uint64, opts ...Option) ([]byte, error) {
	cfg, err := options.Build(config{
		kind:        format.KindComposite,
		width:       format.WidthSafe53,
		compression: format.CompressionZstd,
	}, opts...)
	if err != nil {
		return nil, err
	}

	if uint64(len(codes)) > uint64(^uint32(0)) {
		return nil, fmt.Errorf("%w: %d cells exceed the grid format", errs.ErrInvalidConfig, len(codes))
	}

	codec, err := compress.GetCodec(cfg.compression, "grid")
	if err != nil {
		return nil, err
	}

	header := section.NewGridHeader(cfg.kind, cfg.fingerprint)
	if cfg.bigEndian {
		header.Flag.WithBigEndian()
	}
	header.Flag.SetCompression(cfg.compression)
	header.Flag.SetWidth(cfg.width)

	enc := encoding.NewCodeRawEncoder(header.Flag.GetEndianEngine())
	defer enc.Finish()
	enc.WriteSlice(codes)

	payload, err := codec.Compress(enc.Bytes())
	if err != nil {
		return nil, fmt.Errorf("compress grid: %w", err)
	}

	header.Count = uint32(len(codes)) //nolint:gosec
	header.SetPayload(payload, enc.Size())

	out := make([]byte, section.HeaderSize+len(payload))
	header.WriteToSlice(out)
	copy(out[section.HeaderSize:], payload)

	return out, nil
}

// Unmarshal decodes a grid written by Marshal.
func Unmarshal(data []byte) (*Grid, error) {
	header, err := section.ParseHeader(data, section.MagicGridV1)
	if err != nil {
		return nil, err
	}

	stored := data[section.HeaderSize:]
	if err := header.VerifyPayload(stored); err != nil {
		return nil, err
	}

	codec, err := compress.GetCodec(header.Flag.Compression(), "grid")
	if err != nil {
		return nil, err
	}

	column, err := codec.Decompress(stored)
	if err != nil {
		return nil, fmt.Errorf("%w: decompress grid: %w", errs.ErrInvalidPayload, err)
	}

	codes, err := encoding.NewCodeRawDecoder(header.Flag.GetEndianEngine()).Decode(column, int(header.Count))
	if err != nil {
		return nil, err
	}

	return &Grid{
		Kind:        header.Flag.TableKind(),
		Width:       header.Flag.Width(),
		Fingerprint: header.Fingerprint,
		Codes:       codes,
	}, nil
}

// UnmarshalForDomain decodes a grid and verifies it belongs to the domain with the given fingerprint.
func UnmarshalForDomain(data []byte, fingerprint uint64) (*Grid, error) {
	g, err := Unmarshal(data)
	if err != nil {
		return nil, err
	}

	if g.Fingerprint != fingerprint {
		return nil, fmt.Errorf("%w: grid has fingerprint %016x, domain has %016x",
			errs.ErrDomainFingerprintMismatch, g.Fingerprint, fingerprint)
	}

	return g, nil
}

// WriteFile marshals codes into the file at path.
func WriteFile(path string, codes []uint64, opts ...Option) error {
	data, err := Marshal(codes, opts...)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644) //nolint:gosec
}

// ReadFile reads a grid from the file at path.
func ReadFile(path string) (*Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return Unmarshal(data)
}
