// Package packing concatenates several bounded sub-codes into one integer key
// and splits it again.
//
// Each field reserves a fixed number of base-B digits, derived from its
// declared maximum. The first field is the most significant:
//
//	layout, _ := packing.NewLayout(10, format.WidthSafe53,
//	    packing.Rebased("unit", 99999),     // 6 digits: 100000 + unit
//	    packing.NewField("fire-year", 2500), // 4 digits
//	)
//	key, _ := layout.Pack(42, 17)            // 1000420017
//	layout.Unpack(key)                       // [42 17]
//
// A layout is rejected up front when its total digit count does not fit the
// exact range of the numeric width, so packing never loses precision.
package packing

import (
	"fmt"
	"strings"

	"github.com/rrmetrics/eventcode/errs"
	"github.com/rrmetrics/eventcode/format"
)

// Field is one component of a packed key.
type Field struct {
	// Name identifies the field in errors.
	Name string
	// Max is the largest value the field accepts.
	Max uint64
	// Offset is added to the value before packing.
	Offset uint64

	rebase bool
}

// NewField creates a plain field holding values 0..max.
func NewField(name string, max uint64) Field {
	return Field{Name: name, Max: max}
}

// Rebased creates a field whose values are offset by B^w, w being the digit
// count of max, so that every packed value has the same number of digits and
// the field never starts with a zero digit.
func Rebased(name string, max uint64) Field {
	return Field{Name: name, Max: max, rebase: true}
}

// Optional creates a field where 0 means "absent": values are stored plus one.
func Optional(name string, max uint64) Field {
	return Field{Name: name, Max: max, Offset: 1}
}

// Layout is an immutable packing scheme. It is safe for concurrent use.
type Layout struct {
	base   uint64
	width  format.NumericWidth
	fields []Field
	widths []int
	scales []uint64 // base^width of each field; scales[0] is unused
	shifts []uint64 // base^(digits of all less significant fields)
	total  int
	unit   string
}

// Capacity returns the number of base digits exactly representable under width.
func Capacity(base uint64, width format.NumericWidth) int {
	return width.Digits(base)
}

// digits returns the number of base digits of v, at least 1.
func digits(v, base uint64) int {
	d := 1
	for v >= base {
		v /= base
		d++
	}

	return d
}

// pow returns base^n; callers guarantee it fits.
func pow(base uint64, n int) uint64 {
	p := uint64(1)
	for range n {
		p *= base
	}

	return p
}

// NewLayout computes field widths for the given base and numeric width.
//
// It fails with a *errs.WidthError naming the first field whose digits do not
// fit in what the earlier fields left of the capacity.
//
// Parameters:
//   - base: digit base shared by all fields, at least 2
//   - width: numeric width whose exact range bounds the packed key
//   - fields: fields in packing order, most significant first
//
// Returns:
//   - *Layout: layout with per-field digit counts and multipliers
//   - error: invalid base or width, or a *errs.WidthError
func NewLayout(base uint64, width format.NumericWidth, fields ...Field) (*Layout, error) {
	if base < 2 {
		return nil, fmt.Errorf("%w: base %d", errs.ErrInvalidConfig, base)
	}

	if !width.Valid() {
		return nil, fmt.Errorf("%w: numeric width %d", errs.ErrInvalidConfig, width)
	}

	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: layout has no fields", errs.ErrInvalidConfig)
	}

	capacity := Capacity(base, width)
	unit := fmt.Sprintf("base-%d digits", base)

	l := &Layout{
		base:   base,
		width:  width,
		fields: make([]Field, len(fields)),
		widths: make([]int, len(fields)),
		scales: make([]uint64, len(fields)),
		shifts: make([]uint64, len(fields)),
		unit:   unit,
	}

	for i, f := range fields {
		if f.rebase {
			d := digits(f.Max, base)
			if d >= capacity {
				return nil, &errs.WidthError{Field: f.Name, Required: d + 1, Available: capacity - l.total, Unit: unit}
			}
			f.Offset = pow(base, d)
		}

		if f.Max > width.MaxCode()-f.Offset {
			return nil, &errs.WidthError{Field: f.Name, Required: capacity + 1, Available: capacity - l.total, Unit: unit}
		}

		w := digits(f.Max+f.Offset, base)
		if l.total+w > capacity {
			return nil, &errs.WidthError{Field: f.Name, Required: w, Available: capacity - l.total, Unit: unit}
		}

		l.fields[i] = f
		l.widths[i] = w
		l.scales[i] = pow(base, w)
		l.total += w
	}

	shift := uint64(1)
	for i := len(l.fields) - 1; i >= 0; i-- {
		l.shifts[i] = shift
		if i > 0 {
			shift *= l.scales[i]
		}
	}

	return l, nil
}

// Base returns the digit base.
func (l *Layout) Base() uint64 { return l.base }

// Width returns the numeric width the layout was checked against.
func (l *Layout) Width() format.NumericWidth { return l.width }

// Len returns the number of fields.
func (l *Layout) Len() int { return len(l.fields) }

// Field returns field i with its resolved offset.
func (l *Layout) Field(i int) Field { return l.fields[i] }

// Widths returns the digit width of every field.
func (l *Layout) Widths() []int {
	out := make([]int, len(l.widths))
	copy(out, l.widths)

	return out
}

// TotalDigits returns the sum of all field widths.
func (l *Layout) TotalDigits() int { return l.total }

// Capacity returns the digit capacity of the layout's base and width.
func (l *Layout) Capacity() int { return Capacity(l.base, l.width) }

// MaxPacked returns the key packed from every field's maximum.
func (l *Layout) MaxPacked() uint64 {
	var key uint64
	for i, f := range l.fields {
		key += (f.Max + f.Offset) * l.shifts[i]
	}

	return key
}

// Pack packs one value per field, most significant first.
func (l *Layout) Pack(values ...uint64) (uint64, error) {
	if len(values) != len(l.fields) {
		return 0, fmt.Errorf("%w: %d values for %d fields", errs.ErrFieldCountMismatch, len(values), len(l.fields))
	}

	var key uint64
	for i, v := range values {
		f := l.fields[i]
		if v > f.Max {
			werr := &errs.WidthError{Field: f.Name, Required: digits(v, l.base), Available: l.widths[i], Unit: l.unit}
			return 0, fmt.Errorf("value %d exceeds max %d: %w", v, f.Max, werr)
		}
		key += (v + f.Offset) * l.shifts[i]
	}

	return key, nil
}

// Unpack splits a key into one value per field. It is the exact inverse of
// Pack and rejects keys whose field digits lie outside a field's range.
func (l *Layout) Unpack(key uint64) ([]uint64, error) {
	out := make([]uint64, len(l.fields))
	if err := l.UnpackInto(out, key); err != nil {
		return nil, err
	}

	return out, nil
}

// UnpackInto is Unpack writing into dst, which must hold Len values.
func (l *Layout) UnpackInto(dst []uint64, key uint64) error {
	if key > l.MaxPacked() {
		return fmt.Errorf("%w: key %d beyond %d", errs.ErrInvalidPayload, key, l.MaxPacked())
	}

	rest := key
	for i := len(l.fields) - 1; i >= 0; i-- {
		d := rest
		if i > 0 {
			d = rest % l.scales[i]
			rest /= l.scales[i]
		}

		f := l.fields[i]
		if d < f.Offset || d-f.Offset > f.Max {
			return fmt.Errorf("%w: key %d has %s digits %d outside [%d, %d]",
				errs.ErrInvalidPayload, key, f.Name, d, f.Offset, f.Max+f.Offset)
		}
		dst[i] = d - f.Offset
	}

	return nil
}

func (l *Layout) String() string {
	var sb strings.Builder
	for i, f := range l.fields {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%s[%d]", f.Name, l.widths[i])
	}
	fmt.Fprintf(&sb, " base %d, %d/%d digits", l.base, l.total, l.Capacity())

	return sb.String()
}
