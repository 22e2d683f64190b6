package packing

import (
	"math/rand/v2"
	"testing"

	"github.com/rrmetrics/eventcode/errs"
	"github.com/rrmetrics/eventcode/format"
	"github.com/stretchr/testify/require"
)

func TestCapacity(t *testing.T) {
	require.Equal(t, 15, Capacity(10, format.WidthSafe53))
	require.Equal(t, 19, Capacity(10, format.WidthExact64))
	require.Equal(t, 53, Capacity(2, format.WidthSafe53))
}

func TestNewLayout_Widths(t *testing.T) {
	l, err := NewLayout(10, format.WidthExact64,
		NewField("a", 999999),
		NewField("b", 99999),
	)
	require.NoError(t, err)
	require.Equal(t, []int{6, 5}, l.Widths())
	require.Equal(t, 11, l.TotalDigits())
	require.Equal(t, 19, l.Capacity())
	require.Equal(t, uint64(99999999999), l.MaxPacked())
	require.Equal(t, "a[6] b[5] base 10, 11/19 digits", l.String())
}

func TestNewLayout_Overflow(t *testing.T) {
	_, err := NewLayout(10, format.WidthExact64,
		NewField("a", 999999),
		NewField("b", 99999),
		NewField("c", 1_000_000_000),
	)
	require.ErrorIs(t, err, errs.ErrWidthOverflow)

	var werr *errs.WidthError
	require.ErrorAs(t, err, &werr)
	require.Equal(t, "c", werr.Field)
	require.Equal(t, 10, werr.Required)
	require.Equal(t, 8, werr.Available)
	require.Contains(t, err.Error(), `field "c" requires 10 base-10 digits, 8 available`)
}

func TestNewLayout_SafeVsExact(t *testing.T) {
	fields := []Field{Rebased("unit", 99999), NewField("fire-year", 9999), NewField("severity", 99999)}

	// 6 + 4 + 5 = 15 digits fit both widths
	_, err := NewLayout(10, format.WidthSafe53, fields...)
	require.NoError(t, err)

	fields[2] = NewField("severity", 999999)
	_, err = NewLayout(10, format.WidthSafe53, fields...)
	var werr *errs.WidthError
	require.ErrorAs(t, err, &werr)
	require.Equal(t, "severity", werr.Field)

	_, err = NewLayout(10, format.WidthExact64, fields...)
	require.NoError(t, err)
}

func TestNewLayout_InvalidConfig(t *testing.T) {
	_, err := NewLayout(1, format.WidthSafe53, NewField("a", 1))
	require.ErrorIs(t, err, errs.ErrInvalidConfig)

	_, err = NewLayout(10, format.NumericWidth(0), NewField("a", 1))
	require.ErrorIs(t, err, errs.ErrInvalidConfig)

	_, err = NewLayout(10, format.WidthSafe53)
	require.ErrorIs(t, err, errs.ErrInvalidConfig)

	_, err = NewLayout(10, format.WidthSafe53, Rebased("unit", 999_999_999_999_999))
	require.ErrorIs(t, err, errs.ErrWidthOverflow)
}

func TestRebased(t *testing.T) {
	l, err := NewLayout(10, format.WidthSafe53, Rebased("unit", 99999), NewField("fire-year", 2500))
	require.NoError(t, err)
	require.Equal(t, uint64(100000), l.Field(0).Offset)
	require.Equal(t, []int{6, 4}, l.Widths())

	key, err := l.Pack(42, 17)
	require.NoError(t, err)
	require.Equal(t, uint64(1000420017), key)

	key, err = l.Pack(0, 0)
	require.NoError(t, err)
	require.Equal(t, uint64(1000000000), key, "leading field keeps its digit count")

	values, err := l.Unpack(1000420017)
	require.NoError(t, err)
	require.Equal(t, []uint64{42, 17}, values)
}

func TestRebased_MatchesBatchScheme(t *testing.T) {
	// unit+100000 shifted past a 5-digit fire-year field
	l, err := NewLayout(10, format.WidthSafe53, Rebased("unit", 12345), NewField("fire-year", 99999))
	require.NoError(t, err)

	key, err := l.Pack(12345, 678)
	require.NoError(t, err)
	require.Equal(t, uint64((12345+100000)*100000+678), key)
}

func TestOptional(t *testing.T) {
	l, err := NewLayout(10, format.WidthSafe53, NewField("fire-year", 99), Optional("severity", 8))
	require.NoError(t, err)
	require.Equal(t, []int{2, 1}, l.Widths())

	key, err := l.Pack(7, 0)
	require.NoError(t, err)
	require.Equal(t, uint64(71), key)

	values, err := l.Unpack(key)
	require.NoError(t, err)
	require.Equal(t, []uint64{7, 0}, values)

	_, err = l.Unpack(70)
	require.ErrorIs(t, err, errs.ErrInvalidPayload, "digit 0 of an optional field is never produced")
}

func TestPack_Errors(t *testing.T) {
	l, err := NewLayout(10, format.WidthSafe53, NewField("a", 50), NewField("b", 5))
	require.NoError(t, err)

	_, err = l.Pack(1)
	require.ErrorIs(t, err, errs.ErrFieldCountMismatch)

	_, err = l.Pack(51, 0)
	require.ErrorIs(t, err, errs.ErrWidthOverflow)
	var werr *errs.WidthError
	require.ErrorAs(t, err, &werr)
	require.Equal(t, "a", werr.Field)

	_, err = l.Pack(1, 6)
	require.ErrorIs(t, err, errs.ErrWidthOverflow)
}

func TestUnpack_Errors(t *testing.T) {
	l, err := NewLayout(10, format.WidthSafe53, NewField("a", 50), NewField("b", 5))
	require.NoError(t, err)

	_, err = l.Unpack(47)
	require.ErrorIs(t, err, errs.ErrInvalidPayload, "b digit 7 > 5")

	_, err = l.Unpack(l.MaxPacked() + 1)
	require.ErrorIs(t, err, errs.ErrInvalidPayload)
}

func TestPackUnpack_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(13, 17))

	for _, base := range []uint64{2, 10, 16, 36} {
		for _, width := range []format.NumericWidth{format.WidthSafe53, format.WidthExact64} {
			l, err := NewLayout(base, width,
				Rebased("unit", 50_000),
				NewField("fire-year", 3000),
				Optional("severity", 700),
			)
			require.NoError(t, err)

			for range 500 {
				in := []uint64{rng.Uint64N(50_001), rng.Uint64N(3001), rng.Uint64N(701)}
				key, err := l.Pack(in...)
				require.NoError(t, err)
				require.LessOrEqual(t, key, l.MaxPacked())
				require.LessOrEqual(t, key, width.MaxCode())

				out, err := l.Unpack(key)
				require.NoError(t, err)
				require.Equal(t, in, out)
			}
		}
	}
}

func TestLayout_FullCapacitySingleField(t *testing.T) {
	l, err := NewLayout(16, format.WidthExact64, NewField("all", ^uint64(0)))
	require.NoError(t, err)
	require.Equal(t, 16, l.TotalDigits())

	key, err := l.Pack(^uint64(0))
	require.NoError(t, err)
	require.Equal(t, ^uint64(0), key)

	values, err := l.Unpack(key)
	require.NoError(t, err)
	require.Equal(t, []uint64{^uint64(0)}, values)
}

func BenchmarkPack(b *testing.B) {
	l, err := NewLayout(10, format.WidthSafe53, Rebased("unit", 99999), NewField("fire-year", 9999), NewField("severity", 9999))
	require.NoError(b, err)

	for i := 0; i < b.N; i++ {
		_, _ = l.Pack(uint64(i%99999), uint64(i%9999), uint64(i%7))
	}
}
