// Package pipeline builds all codes of one dataset version in two phases.
//
// Phase 1 splits the grid into tiles and, in parallel, encodes fire-year and
// severity codes while every tile collects its own distinct code sets. The
// sets are merged and each dictionary is compacted exactly once. Phase 2
// remaps and packs the tiles in parallel against the read-only key tables and
// collects the distinct packed keys, which are compacted into the composite
// table. Masked cells (no unit, or excluded by the mask) get key 0 and never
// enter a dictionary.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rrmetrics/eventcode/dictionary"
	"github.com/rrmetrics/eventcode/domain"
	"github.com/rrmetrics/eventcode/format"
	"github.com/rrmetrics/eventcode/internal/distinct"
	"github.com/rrmetrics/eventcode/internal/options"
	"github.com/rrmetrics/eventcode/packing"
	"github.com/rrmetrics/eventcode/severity"
	"github.com/rrmetrics/eventcode/yearbits"
)

// Stats summarizes a build.
type Stats struct {
	Cells   int
	Masked  int
	Burned  int
	Tiles   int
	Elapsed time.Duration
}

// Result holds every artifact of a build. Grids are in input cell order.
type Result struct {
	RunID  uuid.UUID
	Domain domain.Domain
	// MaxUnit is the largest unit id; together with the tables it determines Layout.
	MaxUnit uint64

	FireYear  *dictionary.KeyTable
	Severity  *dictionary.KeyTable // nil when the input has no severity
	Composite *dictionary.KeyTable
	Layout    *packing.Layout

	FireYearRaw   []uint64
	FireYearDense []uint64
	SeverityRaw   []uint64
	SeverityDense []uint64
	Keys          []uint64

	Stats Stats

	decoder *Decoder
}

// Decoder returns the decoder of the build's packed keys.
func (r *Result) Decoder() *Decoder {
	return r.decoder
}

type tile struct {
	lo, hi int
}

func splitTiles(cells, size int) []tile {
	tiles := make([]tile, 0, (cells+size-1)/size)
	for lo := 0; lo < cells; lo += size {
		tiles = append(tiles, tile{lo: lo, hi: min(lo+size, cells)})
	}

	return tiles
}

// forEachTile runs fn for every tile with at most limit workers.
// Cancellation is observed before each tile starts.
func forEachTile(ctx context.Context, limit int, tiles []tile, fn func(i int, t tile) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, t := range tiles {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			return fn(i, t)
		})
	}

	return g.Wait()
}

// phase1 is the local state of one tile.
type phase1 struct {
	fireYear *distinct.Set
	severity *distinct.Set
	maxUnit  uint64
	masked   int
	burned   int
}

// Build encodes, compacts and packs one batch.
//
// Parameters:
//   - ctx: cancels tile workers between tiles
//   - dom: year span, severity classes and numeric width of the batch
//   - in: per-cell unit, occurrence, severity and mask rasters
//   - opts: build options such as concurrency, logger and run ID
//
// Returns:
//   - *Result: raw and dense codes, key tables and packed composite keys
//   - error: invalid domain or input, occurrence or width overflow, or ctx.Err()
func Build(ctx context.Context, dom domain.Domain, in Input, opts ...Option) (*Result, error) {
	cfg, err := options.Build(defaultConfig(), opts...)
	if err != nil {
		return nil, err
	}
	if cfg.runID == uuid.Nil {
		cfg.runID = uuid.New()
	}

	start := time.Now()
	logger := cfg.logger

	if err := dom.Validate(); err != nil {
		return nil, err
	}

	occurrence, sevGrid, cells, err := in.resolve(dom)
	if err != nil {
		return nil, err
	}

	years, err := yearbits.NewEncoder(dom)
	if err != nil {
		return nil, err
	}

	var sevEnc *severity.Encoder
	if sevGrid != nil {
		if sevEnc, err = severity.NewEncoderForDomain(dom); err != nil {
			return nil, err
		}
	}

	tiles := splitTiles(cells, dom.TileSize)
	logger.Printf("run %s: %s, %d cells in %d tiles", cfg.runID, dom, cells, len(tiles))

	res := &Result{
		RunID:         cfg.runID,
		Domain:        dom,
		FireYearRaw:   make([]uint64, cells),
		FireYearDense: make([]uint64, cells),
		Keys:          make([]uint64, cells),
	}
	if sevEnc != nil {
		res.SeverityRaw = make([]uint64, cells)
		res.SeverityDense = make([]uint64, cells)
	}

	// phase 1: encode and collect local distinct sets
	locals := make([]phase1, len(tiles))
	err = forEachTile(ctx, cfg.concurrency, tiles, func(ti int, t tile) error {
		fyRaw := res.FireYearRaw[t.lo:t.hi]
		years.EncodeRange(occurrence, t.lo, t.hi, fyRaw)

		l := phase1{fireYear: distinct.NewSet(64)}
		if sevEnc != nil {
			l.severity = distinct.NewSet(64)
		}

		for i := t.lo; i < t.hi; i++ {
			if in.masked(i) {
				res.FireYearRaw[i] = 0
				l.masked++
				continue
			}

			l.maxUnit = max(l.maxUnit, in.Units[i])
			code := res.FireYearRaw[i]
			l.fireYear.Add(code)
			if code != 0 {
				l.burned++
			}

			if sevEnc != nil {
				c, err := sevEnc.EncodeCellAt(code, sevGrid, i)
				if err != nil {
					return fmt.Errorf("cell %d: %w", i, err)
				}
				res.SeverityRaw[i] = c.Value
				l.severity.Add(c.Value)
			}
		}
		locals[ti] = l

		return nil
	})
	if err != nil {
		return nil, err
	}

	// merge, then compact once
	fySets := make([]*distinct.Set, len(locals))
	sevSets := make([]*distinct.Set, len(locals))
	for i, l := range locals {
		fySets[i] = l.fireYear
		sevSets[i] = l.severity
		res.MaxUnit = max(res.MaxUnit, l.maxUnit)
		res.Stats.Masked += l.masked
		res.Stats.Burned += l.burned
	}

	fp := dom.Fingerprint()
	res.FireYear, err = dictionary.CompactSet(format.KindFireYear, distinct.MergeAll(fySets...),
		dictionary.WithZero(), dictionary.WithFingerprint(fp))
	if err != nil {
		return nil, err
	}
	logger.Printf("run %s: fire-year table has %d codes", cfg.runID, res.FireYear.Len())

	if sevEnc != nil {
		res.Severity, err = dictionary.CompactSet(format.KindSeverity, distinct.MergeAll(sevSets...),
			dictionary.WithZero(), dictionary.WithFingerprint(fp))
		if err != nil {
			return nil, err
		}
		logger.Printf("run %s: severity table has %d codes", cfg.runID, res.Severity.Len())
	}

	res.decoder, err = NewDecoder(dom, res.MaxUnit, res.FireYear, res.Severity)
	if err != nil {
		return nil, err
	}
	res.Layout = res.decoder.Layout()
	logger.Printf("run %s: layout %s", cfg.runID, res.Layout)

	// phase 2: remap and pack against the read-only tables
	keySets := make([]*distinct.Set, len(tiles))
	err = forEachTile(ctx, cfg.concurrency, tiles, func(ti int, t tile) error {
		set := distinct.NewSet(64)
		var values [3]uint64
		for i := t.lo; i < t.hi; i++ {
			if in.masked(i) {
				continue
			}

			values[0] = in.Units[i]
			values[1] = res.FireYear.MustDense(res.FireYearRaw[i])
			res.FireYearDense[i] = values[1]
			n := 2
			if res.Severity != nil {
				values[2] = res.Severity.MustDense(res.SeverityRaw[i])
				res.SeverityDense[i] = values[2]
				n = 3
			}

			key, err := res.Layout.Pack(values[:n]...)
			if err != nil {
				return fmt.Errorf("cell %d: %w", i, err)
			}
			res.Keys[i] = key
			set.Add(key)
		}
		keySets[ti] = set

		return nil
	})
	if err != nil {
		return nil, err
	}

	res.Composite, err = dictionary.CompactSet(format.KindComposite, distinct.MergeAll(keySets...),
		dictionary.WithFingerprint(fp))
	if err != nil {
		return nil, fmt.Errorf("composite table: %w", err)
	}

	res.Stats.Cells = cells
	res.Stats.Tiles = len(tiles)
	res.Stats.Elapsed = time.Since(start)
	logger.Printf("run %s: composite table has %d keys, %d of %d cells burned, %d masked (%s)",
		cfg.runID, res.Composite.Len(), res.Stats.Burned, cells, res.Stats.Masked, res.Stats.Elapsed)

	return res, nil
}
