package compress

// ZstdCompressor compresses payloads with Zstandard.
//
// It is the default for persisted key tables and grids: artifacts are written
// once per dataset version and read many times, so ratio matters more than
// encode speed. The pure-Go klauspost implementation is used unless the module
// is built with the gozstd tag on a cgo toolchain.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a Zstandard codec.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
