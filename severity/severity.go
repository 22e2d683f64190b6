// Package severity encodes the ordered severities of a cell's occurrences as a
// single mixed-radix integer.
//
// With radix S, the k-th occurrence (by ascending year) contributes
// severity_k * S^(k-1):
//
//	severities (2, 1, 3), S = 5  ->  2 + 1*5 + 3*25 = 82
//
// Leading zero severities would be indistinguishable from fewer occurrences,
// so a Code always carries its occurrence count explicitly and decoding needs
// both. The count of a cell equals the popcount of its fire-year code.
package severity

import (
	"fmt"
	"math/bits"

	"github.com/rrmetrics/eventcode/domain"
	"github.com/rrmetrics/eventcode/errs"
	"github.com/rrmetrics/eventcode/format"
	"github.com/rrmetrics/eventcode/yearbits"
)

// Code is a severity sequence code together with its occurrence count.
type Code struct {
	Value uint64
	Count int
}

// Encoder encodes severity sequences of a fixed radix.
// It is immutable and safe for concurrent use.
type Encoder struct {
	classes        uint64
	maxOccurrences int
	width          format.NumericWidth
}

// MaxOccurrences returns the largest occurrence count F for which every
// sequence of F severities in [0, classes) has an exact code under width.
func MaxOccurrences(width format.NumericWidth, classes int) int {
	if classes < 2 {
		return 0
	}

	return width.Digits(uint64(classes))
}

// NewEncoder creates an encoder with radix classes that accepts up to
// maxOccurrences severities per sequence.
//
// It fails with errs.ErrOccurrenceCountOverflow when classes^maxOccurrences
// codes do not fit the exact range of width.
//
// Parameters:
//   - classes: severity radix, in [2, 256]
//   - maxOccurrences: longest severity sequence accepted by Encode
//   - width: numeric width whose exact range bounds the codes
//
// Returns:
//   - *Encoder: encoder for the given radix and cap
//   - error: errs.ErrInvalidConfig or errs.ErrOccurrenceCountOverflow
func NewEncoder(classes, maxOccurrences int, width format.NumericWidth) (*Encoder, error) {
	if classes < 2 || classes > 256 {
		return nil, fmt.Errorf("%w: severity classes %d outside [2, 256]", errs.ErrInvalidConfig, classes)
	}

	if !width.Valid() {
		return nil, fmt.Errorf("%w: numeric width %d", errs.ErrInvalidConfig, width)
	}

	if maxOccurrences < 1 {
		return nil, fmt.Errorf("%w: max occurrences %d", errs.ErrInvalidConfig, maxOccurrences)
	}

	if limit := MaxOccurrences(width, classes); maxOccurrences > limit {
		return nil, fmt.Errorf("%w: %d^%d codes exceed %s, at most %d occurrences fit",
			errs.ErrOccurrenceCountOverflow, classes, maxOccurrences, width, limit)
	}

	return &Encoder{
		classes:        uint64(classes),
		maxOccurrences: maxOccurrences,
		width:          width,
	}, nil
}

// NewEncoderForDomain creates an encoder for dom. When dom.MaxOccurrences is
// zero the cap is the smaller of the year count and the width limit.
func NewEncoderForDomain(dom domain.Domain) (*Encoder, error) {
	maxOcc := dom.MaxOccurrences
	if maxOcc == 0 {
		maxOcc = min(dom.N(), MaxOccurrences(dom.Width, dom.SeverityClasses))
	}

	return NewEncoder(dom.SeverityClasses, maxOcc, dom.Width)
}

// Classes returns the radix S.
func (e *Encoder) Classes() int { return int(e.classes) }

// MaxOccurrences returns the largest accepted sequence length.
func (e *Encoder) MaxOccurrences() int { return e.maxOccurrences }

// Encode encodes severities ordered by occurrence rank.
func (e *Encoder) Encode(severities []uint8) (Code, error) {
	if len(severities) == 0 {
		return Code{}, errs.ErrNoOccurrences
	}

	if len(severities) > e.maxOccurrences {
		return Code{}, fmt.Errorf("%w: %d occurrences, at most %d", errs.ErrOccurrenceCountOverflow, len(severities), e.maxOccurrences)
	}

	var v uint64
	for k := len(severities) - 1; k >= 0; k-- {
		sev := uint64(severities[k])
		if sev >= e.classes {
			return Code{}, fmt.Errorf("%w: severity %d at occurrence %d, radix %d", errs.ErrSeverityOutOfRange, sev, k+1, e.classes)
		}
		v = v*e.classes + sev
	}

	return Code{Value: v, Count: len(severities)}, nil
}

// EncodeCell encodes the severities found at the years set in fireYearCode.
// severityByYear holds one severity per year offset. A cell that never
// qualified encodes to the zero Code.
func (e *Encoder) EncodeCell(fireYearCode uint64, severityByYear []uint8) (Code, error) {
	return e.encodeAt(fireYearCode, len(severityByYear), func(off int) uint8 { return severityByYear[off] })
}

// EncodeCellAt is like EncodeCell for a cell of a per-year grid stack.
func (e *Encoder) EncodeCellAt(fireYearCode uint64, yearly [][]uint8, cell int) (Code, error) {
	return e.encodeAt(fireYearCode, len(yearly), func(off int) uint8 { return yearly[off][cell] })
}

func (e *Encoder) encodeAt(fireYearCode uint64, years int, at func(off int) uint8) (Code, error) {
	if fireYearCode == 0 {
		return Code{}, nil
	}

	count := bits.OnesCount64(fireYearCode)
	if count > e.maxOccurrences {
		return Code{}, fmt.Errorf("%w: %d occurrences, at most %d", errs.ErrOccurrenceCountOverflow, count, e.maxOccurrences)
	}

	if hi := 63 - bits.LeadingZeros64(fireYearCode); hi >= years {
		return Code{}, fmt.Errorf("%w: fire-year code %d sets year offset %d of %d", errs.ErrDomainMismatch, fireYearCode, hi, years)
	}

	var sevs [64]uint8
	for i, off := range yearbits.Offsets(fireYearCode) {
		sevs[i] = at(off)
	}

	return e.Encode(sevs[:count])
}

// Decode returns the count severities encoded in value, ordered by rank.
func (e *Encoder) Decode(value uint64, count int) ([]uint8, error) {
	if count < 0 || count > e.maxOccurrences {
		return nil, fmt.Errorf("%w: %d occurrences, at most %d", errs.ErrOccurrenceCountOverflow, count, e.maxOccurrences)
	}

	out := make([]uint8, count)
	v := value
	for k := range out {
		out[k] = uint8(v % e.classes) //nolint:gosec
		v /= e.classes
	}

	if v != 0 {
		return nil, fmt.Errorf("%w: code %d has more than %d radix-%d digits", errs.ErrDomainMismatch, value, count, e.classes)
	}

	return out, nil
}

// DecodeCode is Decode for a Code.
func (e *Encoder) DecodeCode(c Code) ([]uint8, error) {
	return e.Decode(c.Value, c.Count)
}

// SpreadByYear places decoded severities back on their years: the result has
// one entry per year offset, zero where fireYearCode has no occurrence.
func SpreadByYear(fireYearCode uint64, severities []uint8, years int) ([]uint8, error) {
	offs := yearbits.Offsets(fireYearCode)
	if len(offs) != len(severities) {
		return nil, fmt.Errorf("%w: %d severities for %d occurrences", errs.ErrDomainMismatch, len(severities), len(offs))
	}

	out := make([]uint8, years)
	for i, off := range offs {
		if off >= years {
			return nil, fmt.Errorf("%w: year offset %d of %d", errs.ErrDomainMismatch, off, years)
		}
		out[off] = severities[i]
	}

	return out, nil
}
