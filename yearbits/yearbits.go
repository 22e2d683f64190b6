// Package yearbits encodes which years of a domain a cell experienced a
// qualifying event as a single integer.
//
// Year offset i (year - StartYear) contributes 2^i, so a code is the sum of
// 2^i over the qualifying years and always lies in [0, 2^N). The encoding is
// a bijection between year subsets and codes: Decode(Encode(x)) == x.
//
//	enc, _ := yearbits.NewEncoder(dom)     // dom spans 1986..1988
//	code, _ := enc.EncodeYears([]int{1986, 1988})
//	// code == 5
//	enc.Years(code) // [1986 1988]
//	enc.Ranks(code) // [1 0 2]
package yearbits

import (
	"fmt"
	"math/bits"

	"github.com/rrmetrics/eventcode/domain"
	"github.com/rrmetrics/eventcode/errs"
)

// Encoder encodes per-year indicators of one domain.
// It is immutable and safe for concurrent use.
type Encoder struct {
	dom domain.Domain
	n   int
}

// NewEncoder creates an encoder for dom.
//
// A year range wider than the bit capacity of the domain width fails with a
// *errs.WidthError for field "fire-year".
func NewEncoder(dom domain.Domain) (*Encoder, error) {
	if err := dom.Validate(); err != nil {
		return nil, err
	}

	return &Encoder{dom: dom, n: dom.N()}, nil
}

// N returns the number of years.
func (e *Encoder) N() int {
	return e.n
}

// Domain returns the domain of the encoder.
func (e *Encoder) Domain() domain.Domain {
	return e.dom
}

// Limit returns 2^N, the exclusive upper bound of codes.
// For N == 64 the bound does not fit and Limit returns 0.
func (e *Encoder) Limit() uint64 {
	if e.n >= 64 {
		return 0
	}

	return uint64(1) << e.n
}

// Valid reports whether code can be produced by this encoder.
func (e *Encoder) Valid(code uint64) bool {
	return e.n >= 64 || code>>e.n == 0
}

// Encode encodes one indicator per year, in year order.
func (e *Encoder) Encode(indicators []bool) (uint64, error) {
	if len(indicators) != e.n {
		return 0, fmt.Errorf("%w: %d indicators for %d years", errs.ErrDomainMismatch, len(indicators), e.n)
	}

	var code uint64
	for i, hit := range indicators {
		if hit {
			code |= uint64(1) << i
		}
	}

	return code, nil
}

// EncodeYears encodes a sparse list of calendar years. Duplicates are ignored
// and an empty list encodes to 0.
func (e *Encoder) EncodeYears(years []int) (uint64, error) {
	var code uint64
	for _, y := range years {
		off, ok := e.dom.Offset(y)
		if !ok {
			return 0, fmt.Errorf("%w: year %d outside %d..%d", errs.ErrDomainMismatch, y, e.dom.StartYear, e.dom.EndYear)
		}
		code |= uint64(1) << off
	}

	return code, nil
}

// EncodeGrid encodes a stack of per-year grids. yearly[i][c] reports whether
// cell c qualified in year offset i; every year must cover the same cells.
func (e *Encoder) EncodeGrid(yearly [][]bool) ([]uint64, error) {
	cells, err := e.CheckGrid(yearly)
	if err != nil {
		return nil, err
	}

	out := make([]uint64, cells)
	e.EncodeRange(yearly, 0, cells, out)

	return out, nil
}

// CheckGrid validates a per-year grid stack and returns its cell count.
func (e *Encoder) CheckGrid(yearly [][]bool) (int, error) {
	if len(yearly) != e.n {
		return 0, fmt.Errorf("%w: %d yearly grids for %d years", errs.ErrDomainMismatch, len(yearly), e.n)
	}

	cells := 0
	if e.n > 0 {
		cells = len(yearly[0])
	}
	for i, g := range yearly {
		if len(g) != cells {
			return 0, fmt.Errorf("%w: year %d has %d cells, want %d", errs.ErrDomainMismatch, e.dom.StartYear+i, len(g), cells)
		}
	}

	return cells, nil
}

// EncodeRange encodes cells [lo, hi) of a grid stack already accepted by
// CheckGrid into dst[0:hi-lo].
func (e *Encoder) EncodeRange(yearly [][]bool, lo, hi int, dst []uint64) {
	dst = dst[:hi-lo]
	clear(dst)
	for i, g := range yearly {
		bit := uint64(1) << i
		for c, hit := range g[lo:hi] {
			if hit {
				dst[c] |= bit
			}
		}
	}
}

// Decode returns one indicator per year.
func (e *Encoder) Decode(code uint64) ([]bool, error) {
	if !e.Valid(code) {
		return nil, fmt.Errorf("%w: code %d has bits beyond %d years", errs.ErrDomainMismatch, code, e.n)
	}

	out := make([]bool, e.n)
	for i := range out {
		out[i] = code&(uint64(1)<<i) != 0
	}

	return out, nil
}

// Years returns the calendar years set in code, ascending.
func (e *Encoder) Years(code uint64) []int {
	offs := Offsets(code)
	for i := range offs {
		offs[i] += e.dom.StartYear
	}

	return offs
}

// Ranks returns, per year, the 1-based rank of the occurrence in that year or
// 0 if the year did not qualify. The k-th set year has rank k.
func (e *Encoder) Ranks(code uint64) []int {
	ranks := make([]int, e.n)
	rank := 0
	for code != 0 {
		off := bits.TrailingZeros64(code)
		if off >= e.n {
			break
		}
		rank++
		ranks[off] = rank
		code &= code - 1
	}

	return ranks
}

// Offsets returns the year offsets set in code, ascending.
func Offsets(code uint64) []int {
	out := make([]int, 0, bits.OnesCount64(code))
	for code != 0 {
		out = append(out, bits.TrailingZeros64(code))
		code &= code - 1
	}

	return out
}

// Count returns the number of occurrences in code.
func Count(code uint64) int {
	return bits.OnesCount64(code)
}
