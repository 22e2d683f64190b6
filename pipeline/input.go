package pipeline

import (
	"fmt"

	"github.com/rrmetrics/eventcode/domain"
	"github.com/rrmetrics/eventcode/errs"
	"github.com/rrmetrics/eventcode/severity"
)

// Input is one batch of per-cell grids. All grids are flattened in the same
// cell order.
type Input struct {
	// Units holds the spatial unit id of each cell; 0 means no unit.
	Units []uint64
	// Mask optionally excludes cells; nil includes every cell with a unit.
	Mask []bool
	// Occurrence holds one grid per year reporting a qualifying event.
	Occurrence [][]bool
	// Severity optionally holds one severity grid per year. Without it the
	// packed keys have no severity field.
	Severity [][]uint8
	// Classes replaces Occurrence and Severity with per-year product class
	// grids that Classifier turns into both.
	Classes [][]uint8
	// Classifier interprets Classes; nil selects the MTBS classifier.
	Classifier *severity.Classifier
}

// resolve returns the occurrence and severity stacks and the cell count.
func (in Input) resolve(dom domain.Domain) ([][]bool, [][]uint8, int, error) {
	occurrence, sev := in.Occurrence, in.Severity
	if in.Classes != nil {
		if in.Occurrence != nil || in.Severity != nil {
			return nil, nil, 0, fmt.Errorf("%w: classes given together with occurrence or severity grids", errs.ErrInvalidConfig)
		}

		c := in.Classifier
		if c == nil {
			c = severity.MTBSClassifier()
		}
		if err := c.Validate(dom.SeverityClasses); err != nil {
			return nil, nil, 0, err
		}
		occurrence, sev = c.ClassifyGrid(in.Classes)
	}

	cells := len(in.Units)
	if len(occurrence) != dom.N() {
		return nil, nil, 0, fmt.Errorf("%w: %d occurrence grids for %d years", errs.ErrDomainMismatch, len(occurrence), dom.N())
	}
	for i, g := range occurrence {
		if len(g) != cells {
			return nil, nil, 0, fmt.Errorf("%w: occurrence %d has %d cells, units have %d", errs.ErrDomainMismatch, dom.StartYear+i, len(g), cells)
		}
	}

	if sev != nil {
		if len(sev) != dom.N() {
			return nil, nil, 0, fmt.Errorf("%w: %d severity grids for %d years", errs.ErrDomainMismatch, len(sev), dom.N())
		}
		for i, g := range sev {
			if len(g) != cells {
				return nil, nil, 0, fmt.Errorf("%w: severity %d has %d cells, units have %d", errs.ErrDomainMismatch, dom.StartYear+i, len(g), cells)
			}
		}
	}

	if in.Mask != nil && len(in.Mask) != cells {
		return nil, nil, 0, fmt.Errorf("%w: mask has %d cells, units have %d", errs.ErrDomainMismatch, len(in.Mask), cells)
	}

	return occurrence, sev, cells, nil
}

func (in Input) masked(i int) bool {
	return in.Units[i] == 0 || (in.Mask != nil && !in.Mask[i])
}
