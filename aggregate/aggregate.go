// Package aggregate reduces attribute grids by packed key.
//
// Aggregator is the contract of a grouped reduction: for every distinct key
// it combines the attribute values of the cells carrying that key. Production
// reductions run inside an external raster engine that implements Aggregator;
// Reducer is the in-memory implementation used for local batches and tests.
//
// Key 0 marks masked cells and never forms a group.
package aggregate

import (
	"context"
	"fmt"
	"math"

	"github.com/rrmetrics/eventcode/errs"
	"github.com/rrmetrics/eventcode/format"
)

// Region restricts a reduction to part of the grid.
type Region struct {
	// Mask selects the cells to reduce. A nil mask selects every cell.
	Mask []bool
	// Resolution is the cell size in meters.
	Resolution int
}

// Request is one grouped reduction.
type Request struct {
	// Keys holds one packed key per cell.
	Keys []uint64
	// Values holds one attribute value per cell. OpCount ignores it.
	Values []float64
	Op     format.AggregateOp
	Region Region
}

// Aggregator reduces Values grouped by Keys.
type Aggregator interface {
	Aggregate(ctx context.Context, req Request) (map[uint64]float64, error)
}

// Validate checks that the request is internally consistent.
func (r Request) Validate() error {
	switch r.Op {
	case format.OpSum, format.OpMean:
		if len(r.Values) != len(r.Keys) {
			return fmt.Errorf("%w: %d values for %d keys", errs.ErrDomainMismatch, len(r.Values), len(r.Keys))
		}
	case format.OpCount:
		if r.Values != nil && len(r.Values) != len(r.Keys) {
			return fmt.Errorf("%w: %d values for %d keys", errs.ErrDomainMismatch, len(r.Values), len(r.Keys))
		}
	default:
		return fmt.Errorf("%w: aggregate op %d", errs.ErrInvalidConfig, r.Op)
	}

	if r.Region.Mask != nil && len(r.Region.Mask) != len(r.Keys) {
		return fmt.Errorf("%w: mask has %d cells, keys have %d", errs.ErrDomainMismatch, len(r.Region.Mask), len(r.Keys))
	}

	return nil
}

// accumulator is the partial state of one group.
type accumulator struct {
	sum   float64
	count int64
}

func (a accumulator) result(op format.AggregateOp) float64 {
	switch op {
	case format.OpSum:
		return a.sum
	case format.OpMean:
		if a.count == 0 {
			return math.NaN()
		}
		return a.sum / float64(a.count)
	default:
		return float64(a.count)
	}
}
