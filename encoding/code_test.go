package encoding

import (
	"math"
	"slices"
	"testing"

	"github.com/rrmetrics/eventcode/endian"
	"github.com/rrmetrics/eventcode/errs"
	"github.com/stretchr/testify/require"
)

func TestCodeRaw_RoundTrip(t *testing.T) {
	for _, engine := range []endian.EndianEngine{endian.GetLittleEndianEngine(), endian.GetBigEndianEngine()} {
		codes := []uint64{0, 10000100003, 10000100003, math.MaxUint64}

		enc := NewCodeRawEncoder(engine)
		enc.Write(codes[0])
		enc.WriteSlice(codes[1:])
		require.Equal(t, 4, enc.Len())
		require.Equal(t, 32, enc.Size())

		data := append([]byte(nil), enc.Bytes()...)
		enc.Finish()

		dec := NewCodeRawDecoder(engine)
		got, err := dec.Decode(data, len(codes))
		require.NoError(t, err)
		require.Equal(t, codes, got)
		require.Equal(t, codes, slices.Collect(dec.All(data, len(codes))))

		v, ok := dec.At(data, 3, len(codes))
		require.True(t, ok)
		require.Equal(t, uint64(math.MaxUint64), v)
		_, ok = dec.At(data, 4, len(codes))
		require.False(t, ok)
	}
}

func TestCodeRaw_DecodeLengthMismatch(t *testing.T) {
	dec := NewCodeRawDecoder(endian.GetLittleEndianEngine())

	_, err := dec.Decode(make([]byte, 15), 2)
	require.ErrorIs(t, err, errs.ErrInvalidPayload)
	require.Empty(t, slices.Collect(dec.All(make([]byte, 15), 2)))
}

func TestCodeDelta_RoundTrip(t *testing.T) {
	codes := []uint64{0, 1, 4, 5, 6, 1 << 34, (1 << 35) - 1}

	enc := NewCodeDeltaEncoder()
	require.NoError(t, enc.WriteSlice(codes))
	require.Equal(t, len(codes), enc.Len())
	data := append([]byte(nil), enc.Bytes()...)
	enc.Finish()

	dec := NewCodeDeltaDecoder()
	got, err := dec.Decode(data, len(codes))
	require.NoError(t, err)
	require.Equal(t, codes, got)
	require.Equal(t, codes, slices.Collect(dec.All(data, len(codes))))
}

func TestCodeDelta_SmallGapsAreCompact(t *testing.T) {
	enc := NewCodeDeltaEncoder()
	defer enc.Finish()

	for c := uint64(1 << 30); c < (1<<30)+1000; c++ {
		require.NoError(t, enc.Write(c))
	}
	// first value takes 5 bytes, every gap of 1 takes one byte
	require.Equal(t, 5+999, enc.Size())
}

func TestCodeDelta_RejectsNonAscending(t *testing.T) {
	enc := NewCodeDeltaEncoder()
	defer enc.Finish()

	require.NoError(t, enc.Write(5))
	require.ErrorIs(t, enc.Write(5), errs.ErrInvalidPayload)
	require.ErrorIs(t, enc.WriteSlice([]uint64{7, 6}), errs.ErrInvalidPayload)
}

func TestCodeDelta_DecodeErrors(t *testing.T) {
	dec := NewCodeDeltaDecoder()

	_, err := dec.Decode([]byte{0x80}, 1)
	require.ErrorIs(t, err, errs.ErrInvalidPayload, "truncated varint")

	_, err = dec.Decode([]byte{0x01, 0x00}, 2)
	require.ErrorIs(t, err, errs.ErrInvalidPayload, "zero gap")

	_, err = dec.Decode([]byte{0x01, 0x01, 0x01}, 2)
	require.ErrorIs(t, err, errs.ErrInvalidPayload, "trailing bytes")

	_, err = dec.Decode([]byte{0x01, 0x01}, 3)
	require.ErrorIs(t, err, errs.ErrInvalidPayload, "more codes than bytes")

	_, err = dec.Decode([]byte{0x01, 0x01}, 1<<31-1)
	require.ErrorIs(t, err, errs.ErrInvalidPayload, "count beyond payload")

	_, err = dec.Decode(nil, -1)
	require.ErrorIs(t, err, errs.ErrInvalidPayload)

	got, err := dec.Decode(nil, 0)
	require.NoError(t, err)
	require.Empty(t, got)
}

func BenchmarkCodeDeltaEncoder(b *testing.B) {
	codes := make([]uint64, 5000)
	for i := range codes {
		codes[i] = uint64(i*i + i)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		enc := NewCodeDeltaEncoder()
		_ = enc.WriteSlice(codes)
		enc.Finish()
	}
}
