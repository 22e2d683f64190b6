package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand/v2"
	"strconv"

	"github.com/rrmetrics/eventcode/domain"
	"github.com/rrmetrics/eventcode/errs"
	"github.com/rrmetrics/eventcode/pipeline"
)

// Cell CSV value modes.
const (
	modeClasses  = "classes"  // values are MTBS product classes
	modeSeverity = "severity" // values are severities, 0 for no event
)

// readCells reads one row per cell with the header "unit,<year>,...", one
// column per year of dom in ascending order.
func readCells(r io.Reader, dom domain.Domain, mode string) (pipeline.Input, error) {
	if mode != modeClasses && mode != modeSeverity {
		return pipeline.Input{}, fmt.Errorf("%w: unknown mode %q", errs.ErrInvalidConfig, mode)
	}

	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return pipeline.Input{}, fmt.Errorf("read header: %w", err)
	}
	if len(header) != dom.N()+1 || header[0] != "unit" {
		return pipeline.Input{}, fmt.Errorf("%w: header needs unit and %d year columns", errs.ErrDomainMismatch, dom.N())
	}
	for k, year := range dom.Years() {
		if header[k+1] != strconv.Itoa(year) {
			return pipeline.Input{}, fmt.Errorf("%w: column %d is %q, want %d", errs.ErrDomainMismatch, k+1, header[k+1], year)
		}
	}

	var units []uint64
	yearly := make([][]uint8, dom.N())
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return pipeline.Input{}, fmt.Errorf("line %d: %w", line, err)
		}

		unit, err := strconv.ParseUint(row[0], 10, 64)
		if err != nil {
			return pipeline.Input{}, fmt.Errorf("line %d: unit: %w", line, err)
		}
		units = append(units, unit)

		for k := range yearly {
			v, err := strconv.ParseUint(row[k+1], 10, 8)
			if err != nil {
				return pipeline.Input{}, fmt.Errorf("line %d: year %d: %w", line, dom.StartYear+k, err)
			}
			yearly[k] = append(yearly[k], uint8(v))
		}
	}

	if mode == modeClasses {
		return pipeline.Input{Units: units, Classes: yearly}, nil
	}

	occurrence := make([][]bool, len(yearly))
	for k, g := range yearly {
		occurrence[k] = make([]bool, len(g))
		for i, v := range g {
			occurrence[k][i] = v > 0
		}
	}

	return pipeline.Input{Units: units, Occurrence: occurrence, Severity: yearly}, nil
}

// demoCells generates a reproducible input of MTBS classes: units cover
// blocks of 64 cells, every 20th cell has no unit and each cell burns in a
// year with probability 1/20.
func demoCells(dom domain.Domain, cells int, seed uint64) pipeline.Input {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	units := make([]uint64, cells)
	for i := range units {
		if rng.IntN(20) != 0 {
			units[i] = uint64(i/64) + 1
		}
	}

	classes := make([][]uint8, dom.N())
	for k := range classes {
		classes[k] = make([]uint8, cells)
		for i := range classes[k] {
			if rng.IntN(20) == 0 {
				classes[k][i] = uint8(rng.IntN(6)) + 1 //nolint:gosec
			}
		}
	}

	return pipeline.Input{Units: units, Classes: classes}
}
