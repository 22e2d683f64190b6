package aggregate

import (
	"context"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/rrmetrics/eventcode/format"
	"github.com/rrmetrics/eventcode/internal/options"
)

const defaultReducerTileSize = 1 << 16

type reducerConfig struct {
	tileSize    int
	concurrency int
	noData      float64
	hasNoData   bool
}

// ReducerOption configures a Reducer.
type ReducerOption = options.Option[*reducerConfig]

// WithTileSize sets the number of cells each worker reduces at once.
func WithTileSize(cells int) ReducerOption {
	return options.NoError(func(c *reducerConfig) {
		if cells > 0 {
			c.tileSize = cells
		}
	})
}

// WithConcurrency caps the number of concurrent tile workers.
func WithConcurrency(n int) ReducerOption {
	return options.NoError(func(c *reducerConfig) {
		if n > 0 {
			c.concurrency = n
		}
	})
}

// WithNoData skips cells whose value equals v. NaN values are always skipped.
func WithNoData(v float64) ReducerOption {
	return options.NoError(func(c *reducerConfig) {
		c.noData = v
		c.hasNoData = true
	})
}

// Reducer is an in-memory Aggregator. Tiles of cells are reduced in parallel
// into partial groups that are merged once every tile is done.
type Reducer struct {
	cfg reducerConfig
}

var _ Aggregator = (*Reducer)(nil)

// NewReducer creates a reducer.
func NewReducer(opts ...ReducerOption) (*Reducer, error) {
	cfg, err := options.Build(reducerConfig{
		tileSize:    defaultReducerTileSize,
		concurrency: runtime.GOMAXPROCS(0),
	}, opts...)
	if err != nil {
		return nil, err
	}

	return &Reducer{cfg: cfg}, nil
}

// Aggregate implements Aggregator. Cancellation is observed between tiles.
func (r *Reducer) Aggregate(ctx context.Context, req Request) (map[uint64]float64, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	n := len(req.Keys)
	tiles := (n + r.cfg.tileSize - 1) / r.cfg.tileSize
	partials := make([]map[uint64]accumulator, tiles)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.concurrency)
	for t := range tiles {
		lo := t * r.cfg.tileSize
		hi := min(lo+r.cfg.tileSize, n)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			partials[t] = r.reduceTile(req, lo, hi)

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make(map[uint64]accumulator)
	for _, p := range partials {
		for k, a := range p {
			m := merged[k]
			m.sum += a.sum
			m.count += a.count
			merged[k] = m
		}
	}

	out := make(map[uint64]float64, len(merged))
	for k, a := range merged {
		out[k] = a.result(req.Op)
	}

	return out, nil
}

func (r *Reducer) reduceTile(req Request, lo, hi int) map[uint64]accumulator {
	groups := make(map[uint64]accumulator)
	mask := req.Region.Mask
	for i := lo; i < hi; i++ {
		key := req.Keys[i]
		if key == 0 || (mask != nil && !mask[i]) {
			continue
		}

		var v float64
		if req.Values != nil {
			v = req.Values[i]
			if math.IsNaN(v) || (r.cfg.hasNoData && v == r.cfg.noData) {
				continue
			}
		}

		a := groups[key]
		if req.Op != format.OpCount {
			a.sum += v
		}
		a.count++
		groups[key] = a
	}

	return groups
}
