package severity

import (
	"math/rand/v2"
	"testing"

	"github.com/rrmetrics/eventcode/domain"
	"github.com/rrmetrics/eventcode/errs"
	"github.com/rrmetrics/eventcode/format"
	"github.com/rrmetrics/eventcode/yearbits"
	"github.com/stretchr/testify/require"
)

func TestEncode_Example(t *testing.T) {
	enc, err := NewEncoder(5, 3, format.WidthSafe53)
	require.NoError(t, err)

	code, err := enc.Encode([]uint8{2, 1, 3})
	require.NoError(t, err)
	require.Equal(t, Code{Value: 82, Count: 3}, code)

	sevs, err := enc.DecodeCode(code)
	require.NoError(t, err)
	require.Equal(t, []uint8{2, 1, 3}, sevs)
}

func TestEncode_CountDisambiguates(t *testing.T) {
	enc, err := NewEncoder(6, 4, format.WidthSafe53)
	require.NoError(t, err)

	a, err := enc.Encode([]uint8{3})
	require.NoError(t, err)
	b, err := enc.Encode([]uint8{3, 0})
	require.NoError(t, err)

	require.Equal(t, a.Value, b.Value)
	require.NotEqual(t, a, b)

	sevs, err := enc.DecodeCode(b)
	require.NoError(t, err)
	require.Equal(t, []uint8{3, 0}, sevs)
}

func TestEncode_Errors(t *testing.T) {
	enc, err := NewEncoder(5, 3, format.WidthSafe53)
	require.NoError(t, err)

	_, err = enc.Encode(nil)
	require.ErrorIs(t, err, errs.ErrNoOccurrences)

	_, err = enc.Encode([]uint8{1, 1, 1, 1})
	require.ErrorIs(t, err, errs.ErrOccurrenceCountOverflow)

	_, err = enc.Encode([]uint8{1, 5})
	require.ErrorIs(t, err, errs.ErrSeverityOutOfRange)
}

func TestMaxOccurrences(t *testing.T) {
	tests := []struct {
		width   format.NumericWidth
		classes int
		want    int
	}{
		{format.WidthSafe53, 2, 53},
		{format.WidthExact64, 2, 64},
		{format.WidthSafe53, 5, 22},
		{format.WidthSafe53, 6, 20},
		{format.WidthExact64, 6, 24},
		{format.WidthExact64, 16, 16},
		{format.WidthSafe53, 1, 0},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, MaxOccurrences(tt.width, tt.classes), "%s S=%d", tt.width, tt.classes)
	}
}

func TestNewEncoder_Overflow(t *testing.T) {
	_, err := NewEncoder(6, 21, format.WidthSafe53)
	require.ErrorIs(t, err, errs.ErrOccurrenceCountOverflow)

	_, err = NewEncoder(6, 21, format.WidthExact64)
	require.NoError(t, err)

	_, err = NewEncoder(1, 3, format.WidthSafe53)
	require.ErrorIs(t, err, errs.ErrInvalidConfig)

	_, err = NewEncoder(5, 0, format.WidthSafe53)
	require.ErrorIs(t, err, errs.ErrInvalidConfig)
}

func TestEncode_LargestCodeIsExact(t *testing.T) {
	for _, width := range []format.NumericWidth{format.WidthSafe53, format.WidthExact64} {
		for _, classes := range []int{2, 5, 6, 10, 16} {
			n := MaxOccurrences(width, classes)
			enc, err := NewEncoder(classes, n, width)
			require.NoError(t, err)

			sevs := make([]uint8, n)
			for i := range sevs {
				sevs[i] = uint8(classes - 1)
			}
			code, err := enc.Encode(sevs)
			require.NoError(t, err)
			if width == format.WidthSafe53 {
				require.Less(t, code.Value, uint64(1)<<53)
				require.Equal(t, code.Value, uint64(float64(code.Value)), "exact as float64")
			}

			back, err := enc.DecodeCode(code)
			require.NoError(t, err)
			require.Equal(t, sevs, back)
		}
	}
}

func TestDecode_Errors(t *testing.T) {
	enc, err := NewEncoder(5, 3, format.WidthSafe53)
	require.NoError(t, err)

	_, err = enc.Decode(125, 3)
	require.ErrorIs(t, err, errs.ErrDomainMismatch)

	_, err = enc.Decode(1, 4)
	require.ErrorIs(t, err, errs.ErrOccurrenceCountOverflow)

	sevs, err := enc.Decode(0, 0)
	require.NoError(t, err)
	require.Empty(t, sevs)
}

func TestEncodeCell(t *testing.T) {
	dom, err := domain.New(2000, 2005, domain.WithSeverityClasses(5))
	require.NoError(t, err)
	enc, err := NewEncoderForDomain(dom)
	require.NoError(t, err)
	require.Equal(t, 6, enc.MaxOccurrences())

	years, err := yearbits.NewEncoder(dom)
	require.NoError(t, err)

	fy, err := years.EncodeYears([]int{2001, 2003, 2004})
	require.NoError(t, err)

	byYear := []uint8{0, 2, 4, 1, 3, 0}
	code, err := enc.EncodeCell(fy, byYear)
	require.NoError(t, err)
	require.Equal(t, Code{Value: 2 + 1*5 + 3*25, Count: 3}, code)

	yearly := make([][]uint8, len(byYear))
	for i, s := range byYear {
		yearly[i] = []uint8{9, s}
	}
	atCell, err := enc.EncodeCellAt(fy, yearly, 1)
	require.NoError(t, err)
	require.Equal(t, code, atCell)

	sevs, err := enc.DecodeCode(code)
	require.NoError(t, err)
	spread, err := SpreadByYear(fy, sevs, dom.N())
	require.NoError(t, err)
	require.Equal(t, []uint8{0, 2, 0, 1, 3, 0}, spread)

	zero, err := enc.EncodeCell(0, byYear)
	require.NoError(t, err)
	require.Equal(t, Code{}, zero)

	_, err = enc.EncodeCell(1<<6, byYear)
	require.ErrorIs(t, err, errs.ErrDomainMismatch)

	_, err = SpreadByYear(fy, sevs[:2], dom.N())
	require.ErrorIs(t, err, errs.ErrDomainMismatch)
}

func TestNewEncoderForDomain_DerivedCap(t *testing.T) {
	dom := domain.Default()
	enc, err := NewEncoderForDomain(dom)
	require.NoError(t, err)
	require.Equal(t, 20, enc.MaxOccurrences())
	require.Equal(t, 6, enc.Classes())

	dom.MaxOccurrences = 25
	_, err = NewEncoderForDomain(dom)
	require.ErrorIs(t, err, errs.ErrOccurrenceCountOverflow)
}

func TestRoundTrip_Random(t *testing.T) {
	enc, err := NewEncoder(6, 12, format.WidthSafe53)
	require.NoError(t, err)
	rng := rand.New(rand.NewPCG(5, 8))

	for range 2000 {
		sevs := make([]uint8, 1+rng.IntN(12))
		for i := range sevs {
			sevs[i] = uint8(rng.IntN(6))
		}
		code, err := enc.Encode(sevs)
		require.NoError(t, err)

		back, err := enc.DecodeCode(code)
		require.NoError(t, err)
		require.Equal(t, sevs, back)
	}
}
