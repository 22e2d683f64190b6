package pipeline

import (
	"fmt"

	"github.com/rrmetrics/eventcode/dictionary"
	"github.com/rrmetrics/eventcode/domain"
	"github.com/rrmetrics/eventcode/errs"
	"github.com/rrmetrics/eventcode/packing"
	"github.com/rrmetrics/eventcode/severity"
	"github.com/rrmetrics/eventcode/yearbits"
)

// Field names of the packed key layout.
const (
	FieldUnit     = "unit"
	FieldFireYear = "fire-year"
	FieldSeverity = "severity"
)

// NewLayout returns the packed key layout of a domain: the rebased unit id,
// the dense fire-year code and, when sev is not nil, the dense severity code.
func NewLayout(dom domain.Domain, maxUnit uint64, fireYear, sev *dictionary.KeyTable) (*packing.Layout, error) {
	fields := []packing.Field{
		packing.Rebased(FieldUnit, maxUnit),
		packing.NewField(FieldFireYear, fireYear.MaxDense()),
	}
	if sev != nil {
		fields = append(fields, packing.NewField(FieldSeverity, sev.MaxDense()))
	}

	return packing.NewLayout(dom.Base, dom.Width, fields...)
}

// Cell is the decoded history of one packed key.
type Cell struct {
	// Masked is set for key 0; no other field is filled then.
	Masked bool
	Unit   uint64

	FireYearDense uint64
	FireYearRaw   uint64
	Years         []int

	SeverityDense uint64
	Severity      severity.Code
	Severities    []uint8 // ordered like Years; nil without severity
}

// Decoder turns packed keys back into unit, years and severities.
// It is safe for concurrent use.
type Decoder struct {
	layout   *packing.Layout
	years    *yearbits.Encoder
	sevEnc   *severity.Encoder
	fireYear *dictionary.KeyTable
	severity *dictionary.KeyTable
}

// NewDecoder creates a decoder from the key tables of a build. The tables must
// belong to dom.
func NewDecoder(dom domain.Domain, maxUnit uint64, fireYear, sev *dictionary.KeyTable) (*Decoder, error) {
	if fireYear == nil {
		return nil, fmt.Errorf("%w: fire-year table is required", errs.ErrInvalidConfig)
	}

	fp := dom.Fingerprint()
	if err := fireYear.VerifyDomain(fp); err != nil {
		return nil, err
	}

	d := &Decoder{fireYear: fireYear, severity: sev}

	var err error
	if d.years, err = yearbits.NewEncoder(dom); err != nil {
		return nil, err
	}

	if sev != nil {
		if err := sev.VerifyDomain(fp); err != nil {
			return nil, err
		}
		if d.sevEnc, err = severity.NewEncoderForDomain(dom); err != nil {
			return nil, err
		}
	}

	if d.layout, err = NewLayout(dom, maxUnit, fireYear, sev); err != nil {
		return nil, err
	}

	return d, nil
}

// Layout returns the packed key layout.
func (d *Decoder) Layout() *packing.Layout {
	return d.layout
}

// Decode decodes one packed key.
func (d *Decoder) Decode(key uint64) (Cell, error) {
	if key == 0 {
		return Cell{Masked: true}, nil
	}

	values, err := d.layout.Unpack(key)
	if err != nil {
		return Cell{}, err
	}

	c := Cell{Unit: values[0], FireYearDense: values[1]}

	var ok bool
	if c.FireYearRaw, ok = d.fireYear.Raw(c.FireYearDense); !ok {
		return Cell{}, fmt.Errorf("%w: dense fire-year %d", errs.ErrCodeNotFound, c.FireYearDense)
	}
	c.Years = d.years.Years(c.FireYearRaw)

	if d.severity == nil {
		return c, nil
	}

	c.SeverityDense = values[2]
	raw, ok := d.severity.Raw(c.SeverityDense)
	if !ok {
		return Cell{}, fmt.Errorf("%w: dense severity %d", errs.ErrCodeNotFound, c.SeverityDense)
	}
	c.Severity = severity.Code{Value: raw, Count: yearbits.Count(c.FireYearRaw)}

	if c.Severity.Count > 0 {
		if c.Severities, err = d.sevEnc.DecodeCode(c.Severity); err != nil {
			return Cell{}, err
		}
	} else if raw != 0 {
		return Cell{}, fmt.Errorf("%w: severity %d without occurrences", errs.ErrDomainMismatch, raw)
	}

	return c, nil
}
