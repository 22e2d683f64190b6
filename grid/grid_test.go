package grid

import (
	"path/filepath"
	"testing"

	"github.com/rrmetrics/eventcode/errs"
	"github.com/rrmetrics/eventcode/format"
	"github.com/stretchr/testify/require"
)

func sampleCodes() []uint64 {
	codes := make([]uint64, 10_000)
	for i := range codes {
		if i%3 != 0 {
			codes[i] = 1_000_000 + uint64(i%17)*100 + uint64(i%5)
		}
	}

	return codes
}

func TestMarshal_RoundTrip(t *testing.T) {
	codes := sampleCodes()

	for _, ct := range []format.CompressionType{format.CompressionNone, format.CompressionZstd, format.CompressionS2, format.CompressionLZ4} {
		for _, big := range []bool{false, true} {
			opts := []Option{WithCompression(ct), WithFingerprint(77), WithWidth(format.WidthExact64), WithKind(format.KindFireYear)}
			if big {
				opts = append(opts, WithBigEndian())
			}

			data, err := Marshal(codes, opts...)
			require.NoError(t, err)
			if ct != format.CompressionNone {
				require.Less(t, len(data), len(codes)*8, "%s compresses repetitive keys", ct)
			}

			g, err := UnmarshalForDomain(data, 77)
			require.NoError(t, err)
			require.Equal(t, codes, g.Codes)
			require.Equal(t, format.KindFireYear, g.Kind)
			require.Equal(t, format.WidthExact64, g.Width)
		}
	}
}

func TestMarshal_Defaults(t *testing.T) {
	data, err := Marshal([]uint64{1, 0, 2})
	require.NoError(t, err)

	g, err := Unmarshal(data)
	require.NoError(t, err)
	require.Equal(t, format.KindComposite, g.Kind)
	require.Equal(t, format.WidthSafe53, g.Width)
	require.Equal(t, uint64(0), g.Fingerprint)

	empty, err := Marshal(nil)
	require.NoError(t, err)
	g, err = Unmarshal(empty)
	require.NoError(t, err)
	require.Empty(t, g.Codes)
}

func TestMarshal_InvalidOptions(t *testing.T) {
	_, err := Marshal(nil, WithKind(0))
	require.ErrorIs(t, err, errs.ErrInvalidConfig)

	_, err = Marshal(nil, WithWidth(0))
	require.ErrorIs(t, err, errs.ErrInvalidConfig)

	_, err = Marshal(nil, WithCompression(0))
	require.ErrorIs(t, err, errs.ErrUnsupportedCompressionType)
}

func TestUnmarshal_Errors(t *testing.T) {
	data, err := Marshal([]uint64{5, 6, 7}, WithFingerprint(1), WithCompression(format.CompressionNone))
	require.NoError(t, err)

	_, err = UnmarshalForDomain(data, 2)
	require.ErrorIs(t, err, errs.ErrDomainFingerprintMismatch)

	bad := append([]byte(nil), data...)
	bad[len(bad)-3] ^= 0x01
	_, err = Unmarshal(bad)
	require.ErrorIs(t, err, errs.ErrChecksumMismatch)

	_, err = Unmarshal(data[:20])
	require.ErrorIs(t, err, errs.ErrInvalidHeaderSize)
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.grid")
	codes := sampleCodes()

	require.NoError(t, WriteFile(path, codes, WithFingerprint(9)))

	g, err := ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, codes, g.Codes)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}
