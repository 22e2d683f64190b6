package aggregate

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/rrmetrics/eventcode/domain"
	"github.com/rrmetrics/eventcode/errs"
	"github.com/rrmetrics/eventcode/format"
)

// AreaAttribute names the attribute of records produced by Area.
const AreaAttribute = "area"

// Record is one reduced value of one key. Year is 0 for values that do not
// belong to a year.
type Record struct {
	Key       uint64
	Attribute string
	Year      int
	Value     float64
}

// SortRecords orders records by attribute, year and key.
func SortRecords(records []Record) {
	slices.SortFunc(records, func(a, b Record) int {
		return cmp.Or(
			cmp.Compare(a.Attribute, b.Attribute),
			cmp.Compare(a.Year, b.Year),
			cmp.Compare(a.Key, b.Key),
		)
	})
}

func toRecords(groups map[uint64]float64, attribute string, year int) []Record {
	out := make([]Record, 0, len(groups))
	for k, v := range groups {
		out = append(out, Record{Key: k, Attribute: attribute, Year: year, Value: v})
	}

	return out
}

// ByYear computes the mean of attribute per key for every year of dom.
// yearly holds one value grid per year; a count other than dom.N() fails with
// errs.ErrDomainMismatch.
func ByYear(ctx context.Context, agg Aggregator, keys []uint64, yearly [][]float64, attribute string, dom domain.Domain, region Region) ([]Record, error) {
	if len(yearly) != dom.N() {
		return nil, fmt.Errorf("%w: %d yearly %s grids for %d years", errs.ErrDomainMismatch, len(yearly), attribute, dom.N())
	}

	var records []Record
	for i, values := range yearly {
		groups, err := agg.Aggregate(ctx, Request{Keys: keys, Values: values, Op: format.OpMean, Region: region})
		if err != nil {
			return nil, fmt.Errorf("aggregate %s %d: %w", attribute, dom.StartYear+i, err)
		}
		records = append(records, toRecords(groups, attribute, dom.StartYear+i)...)
	}
	SortRecords(records)

	return records, nil
}

// Area computes the area in square meters covered by each key.
func Area(ctx context.Context, agg Aggregator, keys []uint64, region Region) ([]Record, error) {
	if region.Resolution <= 0 {
		return nil, fmt.Errorf("%w: resolution %d", errs.ErrInvalidConfig, region.Resolution)
	}

	groups, err := agg.Aggregate(ctx, Request{Keys: keys, Op: format.OpCount, Region: region})
	if err != nil {
		return nil, fmt.Errorf("aggregate area: %w", err)
	}

	cell := float64(region.Resolution) * float64(region.Resolution)
	for k, n := range groups {
		groups[k] = n * cell
	}

	records := toRecords(groups, AreaAttribute, 0)
	SortRecords(records)

	return records, nil
}
