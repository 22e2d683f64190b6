// Package eventcode encodes sparse per-cell event histories (the years a
// spatial unit burned and the severity of every burn) into compact integer
// keys that stay exact under the chosen numeric width, and decodes such keys
// back into the full history.
//
// A build turns per-year occurrence and severity grids into three sub-codes
// per cell and packs them into one key:
//
//   - fire-year code: Σ 2^(year-start) over the years a cell burned
//   - severity code: Σ severity_k · S^(k-1) over its burns, in year order
//   - packed key: unit id, dense fire-year code and dense severity code as
//     fixed-width base-B digit fields
//
// Fire-year and severity codes are compacted into dense ranges by key tables,
// which are persisted with the keys so every key can be decoded later.
//
// # Basic Usage
//
// Building keys for a grid of cells:
//
//	import "github.com/rrmetrics/eventcode"
//
//	dom, _ := eventcode.NewDomain(1986, 2020)
//	res, _ := eventcode.Build(ctx, dom, eventcode.Input{
//	    Units:   units,   // one unit id per cell, 0 for none
//	    Classes: classes, // one MTBS class grid per year
//	})
//
// Decoding a key:
//
//	cell, _ := eventcode.Decode(res, res.Keys[0])
//	fmt.Println(cell.Unit, cell.Years, cell.Severities)
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the domain,
// pipeline and export packages. The encoders live in yearbits, severity,
// dictionary and packing; persistence in grid, export and store/sqlite.
package eventcode

import (
	"context"

	"github.com/rrmetrics/eventcode/aggregate"
	"github.com/rrmetrics/eventcode/domain"
	"github.com/rrmetrics/eventcode/export"
	"github.com/rrmetrics/eventcode/pipeline"
)

type (
	Domain = domain.Domain
	Input  = pipeline.Input
	Result = pipeline.Result
	Cell   = pipeline.Cell
)

// NewDomain creates a validated domain for the inclusive year range.
func NewDomain(startYear, endYear int, opts ...domain.Option) (Domain, error) {
	return domain.New(startYear, endYear, opts...)
}

// LoadDomain loads a domain from a YAML file, or the default domain when path
// is empty, with EVENTCODE_* environment overrides applied.
func LoadDomain(path string) (Domain, error) {
	return domain.Load(path)
}

// Build encodes in over dom.
func Build(ctx context.Context, dom Domain, in Input, opts ...pipeline.Option) (*Result, error) {
	return pipeline.Build(ctx, dom, in, opts...)
}

// Decode decomposes a packed key of res.
func Decode(res *Result, key uint64) (Cell, error) {
	return res.Decoder().Decode(key)
}

// Area returns the burned area per packed key of res, in square meters.
func Area(ctx context.Context, res *Result) ([]aggregate.Record, error) {
	reducer, err := aggregate.NewReducer(aggregate.WithTileSize(res.Domain.TileSize))
	if err != nil {
		return nil, err
	}

	return aggregate.Area(ctx, reducer, res.Keys, aggregate.Region{Resolution: res.Domain.Resolution})
}

// Export writes the key tables of res and its area records as CSV files into dir.
func Export(ctx context.Context, dir string, res *Result) ([]string, error) {
	records, err := Area(ctx, res)
	if err != nil {
		return nil, err
	}

	return export.WriteResult(dir, res, records)
}
