package format

import (
	"fmt"
	"math"
	"strings"
)

type (
	NumericWidth    uint8
	CompressionType uint8
	AggregateOp     uint8
	TableKind       uint8
)

const (
	WidthSafe53  NumericWidth = 0x1 // WidthSafe53 limits codes to integers exact in an IEEE-754 double.
	WidthExact64 NumericWidth = 0x2 // WidthExact64 allows the full unsigned 64-bit range.

	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.

	OpSum   AggregateOp = 0x1 // OpSum sums values per key.
	OpMean  AggregateOp = 0x2 // OpMean averages values per key.
	OpCount AggregateOp = 0x3 // OpCount counts contributing cells per key.

	KindFireYear  TableKind = 0x1 // KindFireYear is the dictionary of raw fire-year codes.
	KindSeverity  TableKind = 0x2 // KindSeverity is the dictionary of raw severity-sequence codes.
	KindComposite TableKind = 0x3 // KindComposite is the dictionary of packed composite keys.
)

// Bits returns the number of low bits a code may use under this width.
func (w NumericWidth) Bits() int {
	switch w {
	case WidthSafe53:
		return 53
	case WidthExact64:
		return 64
	default:
		return 0
	}
}

// MaxExact returns the largest integer every value up to which is exactly representable.
func (w NumericWidth) MaxExact() uint64 {
	switch w {
	case WidthSafe53:
		return 1 << 53
	case WidthExact64:
		return math.MaxUint64
	default:
		return 0
	}
}

// MaxCode returns the largest code allowed under this width: 2^53-1 for
// WidthSafe53 and 2^64-1 for WidthExact64.
func (w NumericWidth) MaxCode() uint64 {
	switch w {
	case WidthSafe53:
		return 1<<53 - 1
	case WidthExact64:
		return math.MaxUint64
	default:
		return 0
	}
}

// Digits returns the largest digit count d such that every base-radix number
// of d digits is a valid code under this width. With radix 10 this is 15 for
// WidthSafe53 and 19 for WidthExact64.
func (w NumericWidth) Digits(radix uint64) int {
	if radix < 2 || !w.Valid() {
		return 0
	}

	limit := w.MaxCode()
	var m uint64 // largest number of d digits: radix^d - 1
	d := 0
	for m <= (limit-(radix-1))/radix {
		m = m*radix + (radix - 1)
		d++
	}

	return d
}

// Valid reports whether w is a known width.
func (w NumericWidth) Valid() bool {
	return w == WidthSafe53 || w == WidthExact64
}

func (w NumericWidth) String() string {
	switch w {
	case WidthSafe53:
		return "safe53"
	case WidthExact64:
		return "exact64"
	default:
		return "Unknown"
	}
}

// UnmarshalText parses "safe53" or "exact64".
func (w *NumericWidth) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "safe53", "53", "float64", "double":
		*w = WidthSafe53
	case "exact64", "64", "int64", "uint64":
		*w = WidthExact64
	default:
		return fmt.Errorf("invalid numeric width: %q", string(text))
	}

	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (w NumericWidth) MarshalText() ([]byte, error) {
	if !w.Valid() {
		return nil, fmt.Errorf("invalid numeric width: %d", uint8(w))
	}

	return []byte(w.String()), nil
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// UnmarshalText parses a compression name such as "zstd".
func (c *CompressionType) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "", "none":
		*c = CompressionNone
	case "zstd":
		*c = CompressionZstd
	case "s2":
		*c = CompressionS2
	case "lz4":
		*c = CompressionLZ4
	default:
		return fmt.Errorf("invalid compression: %q", string(text))
	}

	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (c CompressionType) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(c.String())), nil
}

func (o AggregateOp) String() string {
	switch o {
	case OpSum:
		return "sum"
	case OpMean:
		return "mean"
	case OpCount:
		return "count"
	default:
		return "Unknown"
	}
}

func (k TableKind) String() string {
	switch k {
	case KindFireYear:
		return "fire-year"
	case KindSeverity:
		return "severity"
	case KindComposite:
		return "composite"
	default:
		return "Unknown"
	}
}

// Valid reports whether k is a known table kind.
func (k TableKind) Valid() bool {
	return k >= KindFireYear && k <= KindComposite
}
