// Package export writes key tables, composite key tables and aggregate
// records as CSV files named after the domain they were built for.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rrmetrics/eventcode/aggregate"
	"github.com/rrmetrics/eventcode/dictionary"
	"github.com/rrmetrics/eventcode/domain"
	"github.com/rrmetrics/eventcode/errs"
	"github.com/rrmetrics/eventcode/format"
	"github.com/rrmetrics/eventcode/pipeline"
)

// CSV column headers.
var (
	KeyTableHeader  = []string{"denseCode", "rawCode"}
	CompositeHeader = []string{"denseCode", "rawCode", "unit", "fireYearDense", "severityDense"}
	RecordHeader    = []string{"packedKey", "attribute", "year", "value"}
)

// Output names.
const (
	NameAggregates = "aggregates"
)

// FileName returns "<dataset>_<name><suffix>.<ext>", e.g.
// "mtbs_fire-year_1986_2020_30m_v1.csv".
func FileName(dom domain.Domain, name, ext string) string {
	return fmt.Sprintf("%s_%s%s.%s", dom.Dataset, name, dom.Suffix(), ext)
}

func u(v uint64) string { return strconv.FormatUint(v, 10) }

// WriteKeyTable writes t as denseCode,rawCode rows in dense order.
func WriteKeyTable(w io.Writer, t *dictionary.KeyTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(KeyTableHeader); err != nil {
		return err
	}

	for dense, raw := range t.Entries() {
		if err := cw.Write([]string{u(dense), u(raw)}); err != nil {
			return err
		}
	}
	cw.Flush()

	return cw.Error()
}

// ReadKeyTable reads a table written by WriteKeyTable. Dense codes must run
// 0..K-1 in ascending raw order, so that the table compacts back to itself.
func ReadKeyTable(r io.Reader, kind format.TableKind, opts ...dictionary.Option) (*dictionary.KeyTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 || len(rows[0]) < len(KeyTableHeader) || rows[0][0] != KeyTableHeader[0] || rows[0][1] != KeyTableHeader[1] {
		return nil, fmt.Errorf("%w: missing %v header", errs.ErrInvalidPayload, KeyTableHeader)
	}

	raw := make([]uint64, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) < 2 {
			return nil, fmt.Errorf("%w: row %d has %d columns", errs.ErrInvalidPayload, i+1, len(row))
		}

		dense, err := strconv.ParseUint(row[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", errs.ErrInvalidPayload, i+1, err)
		}
		if dense != uint64(i) {
			return nil, fmt.Errorf("%w: row %d has dense code %d", errs.ErrInvalidPayload, i+1, dense)
		}

		v, err := strconv.ParseUint(row[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", errs.ErrInvalidPayload, i+1, err)
		}
		if len(raw) > 0 && v <= raw[len(raw)-1] {
			return nil, fmt.Errorf("%w: row %d raw code %d is not ascending", errs.ErrInvalidPayload, i+1, v)
		}
		raw = append(raw, v)
	}

	return dictionary.Compact(kind, raw, opts...)
}

// WriteComposite writes the composite key table of res with every key
// decomposed into its unit and dense sub-codes. severityDense is empty when
// the build had no severity.
func WriteComposite(w io.Writer, res *pipeline.Result) error {
	dec := res.Decoder()
	cw := csv.NewWriter(w)
	if err := cw.Write(CompositeHeader); err != nil {
		return err
	}

	for dense, key := range res.Composite.Entries() {
		cell, err := dec.Decode(key)
		if err != nil {
			return fmt.Errorf("composite key %d: %w", key, err)
		}

		sev := ""
		if res.Severity != nil {
			sev = u(cell.SeverityDense)
		}

		if err := cw.Write([]string{u(dense), u(key), u(cell.Unit), u(cell.FireYearDense), sev}); err != nil {
			return err
		}
	}
	cw.Flush()

	return cw.Error()
}

// WriteRecords writes records as packedKey,attribute,year,value rows in the given order.
func WriteRecords(w io.Writer, records []aggregate.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(RecordHeader); err != nil {
		return err
	}

	for _, r := range records {
		row := []string{u(r.Key), r.Attribute, strconv.Itoa(r.Year), strconv.FormatFloat(r.Value, 'g', -1, 64)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()

	return cw.Error()
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	return write(f)
}

// WriteResult writes the key tables of res, and records when non-empty, into
// dir. It returns the written paths.
func WriteResult(dir string, res *pipeline.Result, records []aggregate.Record) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	var paths []string
	add := func(name string, write func(io.Writer) error) error {
		path := filepath.Join(dir, FileName(res.Domain, name, "csv"))
		if err := writeFile(path, write); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)

		return nil
	}

	tables := []*dictionary.KeyTable{res.FireYear, res.Severity}
	for _, t := range tables {
		if t == nil {
			continue
		}
		if err := add(t.Kind().String(), func(w io.Writer) error { return WriteKeyTable(w, t) }); err != nil {
			return paths, err
		}
	}

	if err := add(format.KindComposite.String(), func(w io.Writer) error { return WriteComposite(w, res) }); err != nil {
		return paths, err
	}

	if len(records) > 0 {
		if err := add(NameAggregates, func(w io.Writer) error { return WriteRecords(w, records) }); err != nil {
			return paths, err
		}
	}

	return paths, nil
}
