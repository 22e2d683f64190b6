package compress

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"
)

// maxLZ4Size bounds the allocation made from an untrusted size prefix.
const maxLZ4Size = 1 << 30

const (
	lz4ModeRaw   byte = 0
	lz4ModeBlock byte = 1
)

// lz4CompressorPool pools lz4.Compressor instances; their hash tables are reused.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// LZ4Compressor compresses payloads with LZ4 block compression.
type LZ4Compressor struct{}

var _ Codec = (*LZ4Compressor)(nil)

// NewLZ4Compressor creates an LZ4 codec.
func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

// Compress compresses data with a pooled lz4.Compressor.
//
// The block format does not record the original size, so the output starts
// with the uncompressed length as a uvarint followed by a mode byte.
// Payloads LZ4 cannot shrink are stored raw.
func (c LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	prefix := binary.AppendUvarint(nil, uint64(len(data)))
	prefix = append(prefix, lz4ModeBlock)
	dst := make([]byte, len(prefix)+lz4.CompressBlockBound(len(data)))
	copy(dst, prefix)

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst[len(prefix):])
	if err != nil {
		return nil, err
	}
	if n == 0 {
		dst = append(dst[:len(prefix)-1], lz4ModeRaw)
		return append(dst, data...), nil
	}

	return dst[:len(prefix)+n], nil
}

// Decompress decompresses data produced by Compress.
func (c LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	size, n := binary.Uvarint(data)
	if n <= 0 || n >= len(data) {
		return nil, errors.New("lz4 decompression failed: invalid size prefix")
	}
	if size > maxLZ4Size {
		return nil, fmt.Errorf("lz4 decompression failed: size %d exceeds limit %d", size, maxLZ4Size)
	}

	mode, body := data[n], data[n+1:]
	switch mode {
	case lz4ModeRaw:
		if uint64(len(body)) != size {
			return nil, fmt.Errorf("lz4 decompression failed: raw body has %d bytes, want %d", len(body), size)
		}
		return append([]byte(nil), body...), nil
	case lz4ModeBlock:
	default:
		return nil, fmt.Errorf("lz4 decompression failed: unknown mode %d", mode)
	}

	buf := make([]byte, size)
	m, err := lz4.UncompressBlock(body, buf)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompression failed: %w", err)
	}
	if uint64(m) != size {
		return nil, fmt.Errorf("lz4 decompression failed: got %d bytes, want %d", m, size)
	}

	return buf, nil
}
