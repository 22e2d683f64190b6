// Package domain describes the dataset a set of codes is built for: the year
// range, severity radix, grid resolution, key packing base and numeric width.
//
// A Domain is a small value type. It is passed by value through the codec and
// never mutated after validation; every persisted artifact records the
// domain's Fingerprint so that it cannot be reused with a different domain.
package domain

import (
	"fmt"
	"strconv"

	"github.com/rrmetrics/eventcode/errs"
	"github.com/rrmetrics/eventcode/format"
	"github.com/rrmetrics/eventcode/internal/hash"
	"github.com/rrmetrics/eventcode/internal/options"
)

// Defaults of the MTBS compilation the codec was first used for.
const (
	DefaultStartYear       = 1986
	DefaultEndYear         = 2020
	DefaultSeverityClasses = 6
	DefaultResolution      = 30
	DefaultBase            = 10
	DefaultTileSize        = 1 << 16
)

// Domain is the configuration every encoder of one dataset version shares.
type Domain struct {
	// StartYear and EndYear bound the inclusive year range.
	StartYear int `json:"startYear" env:"START_YEAR"`
	EndYear   int `json:"endYear"   env:"END_YEAR"`
	// SeverityClasses is the radix S of severity codes; valid severities are 0..S-1.
	SeverityClasses int `json:"severityClasses" env:"SEVERITY_CLASSES"`
	// MaxOccurrences caps the occurrences per cell. Zero derives it from N and the width.
	MaxOccurrences int `json:"maxOccurrences,omitempty" env:"MAX_OCCURRENCES"`
	// Resolution is the grid cell size in meters.
	Resolution int `json:"resolution" env:"RESOLUTION"`
	// Base is the digit base of packed composite keys.
	Base uint64 `json:"base" env:"BASE"`
	// Width is the numeric width every code must be exact in.
	Width format.NumericWidth `json:"width" env:"WIDTH"`
	// Compression is applied to persisted key tables and grids.
	Compression format.CompressionType `json:"compression" env:"COMPRESSION"`
	Dataset     string                 `json:"dataset"     env:"DATASET"`
	Version     string                 `json:"version"     env:"VERSION"`
	CRS         string                 `json:"crs,omitempty" env:"CRS"`
	// TileSize is the number of cells a pipeline worker processes at once.
	TileSize int `json:"tileSize" env:"TILE_SIZE"`
	// TestRun prefixes output names with "testRun".
	TestRun bool `json:"testRun,omitempty" env:"TEST_RUN"`
}

// Default returns the default domain.
func Default() Domain {
	return Domain{
		StartYear:       DefaultStartYear,
		EndYear:         DefaultEndYear,
		SeverityClasses: DefaultSeverityClasses,
		Resolution:      DefaultResolution,
		Base:            DefaultBase,
		Width:           format.WidthSafe53,
		Compression:     format.CompressionZstd,
		Dataset:         "mtbs",
		Version:         "v1",
		TileSize:        DefaultTileSize,
	}
}

// Option configures a Domain built by New.
type Option = options.Option[*Domain]

// WithSeverityClasses sets the severity radix.
func WithSeverityClasses(classes int) Option {
	return options.NoError(func(d *Domain) { d.SeverityClasses = classes })
}

// WithMaxOccurrences caps the number of occurrences per cell.
func WithMaxOccurrences(n int) Option {
	return options.NoError(func(d *Domain) { d.MaxOccurrences = n })
}

// WithResolution sets the cell size in meters.
func WithResolution(meters int) Option {
	return options.NoError(func(d *Domain) { d.Resolution = meters })
}

// WithBase sets the digit base of packed keys.
func WithBase(base uint64) Option {
	return options.NoError(func(d *Domain) { d.Base = base })
}

// WithWidth sets the numeric width.
func WithWidth(w format.NumericWidth) Option {
	return options.NoError(func(d *Domain) { d.Width = w })
}

// WithCompression sets the compression of persisted artifacts.
func WithCompression(c format.CompressionType) Option {
	return options.NoError(func(d *Domain) { d.Compression = c })
}

// WithDataset sets the dataset name and version.
func WithDataset(name, version string) Option {
	return options.NoError(func(d *Domain) {
		d.Dataset = name
		d.Version = version
	})
}

// WithCRS records the coordinate reference system of the input grids.
func WithCRS(crs string) Option {
	return options.NoError(func(d *Domain) { d.CRS = crs })
}

// WithTileSize sets the number of cells per pipeline tile.
func WithTileSize(cells int) Option {
	return options.NoError(func(d *Domain) { d.TileSize = cells })
}

// WithTestRun marks outputs as a test run.
func WithTestRun() Option {
	return options.NoError(func(d *Domain) { d.TestRun = true })
}

// New creates a validated domain for [startYear, endYear] on top of Default.
func New(startYear, endYear int, opts ...Option) (Domain, error) {
	d := Default()
	d.StartYear = startYear
	d.EndYear = endYear

	d, err := options.Build(d, opts...)
	if err != nil {
		return Domain{}, err
	}

	if err := d.Validate(); err != nil {
		return Domain{}, err
	}

	return d, nil
}

// Validate checks the domain for internal consistency.
//
// A year range wider than the width's bit capacity is reported as a
// *errs.WidthError for field "fire-year".
func (d Domain) Validate() error {
	if d.EndYear < d.StartYear {
		return fmt.Errorf("%w: end year %d before start year %d", errs.ErrInvalidConfig, d.EndYear, d.StartYear)
	}

	if !d.Width.Valid() {
		return fmt.Errorf("%w: numeric width %d", errs.ErrInvalidConfig, d.Width)
	}

	if n := d.N(); n > d.Width.Bits() {
		return &errs.WidthError{Field: "fire-year", Required: n, Available: d.Width.Bits(), Unit: "bits"}
	}

	if d.SeverityClasses < 2 || d.SeverityClasses > 256 {
		return fmt.Errorf("%w: severity classes %d outside [2, 256]", errs.ErrInvalidConfig, d.SeverityClasses)
	}

	if d.MaxOccurrences < 0 || d.MaxOccurrences > d.N() {
		return fmt.Errorf("%w: max occurrences %d outside [0, %d]", errs.ErrInvalidConfig, d.MaxOccurrences, d.N())
	}

	if d.Base < 2 {
		return fmt.Errorf("%w: base %d", errs.ErrInvalidConfig, d.Base)
	}

	if d.Resolution <= 0 {
		return fmt.Errorf("%w: resolution %d", errs.ErrInvalidConfig, d.Resolution)
	}

	if d.TileSize <= 0 {
		return fmt.Errorf("%w: tile size %d", errs.ErrInvalidConfig, d.TileSize)
	}

	switch d.Compression {
	case format.CompressionNone, format.CompressionZstd, format.CompressionS2, format.CompressionLZ4:
	default:
		return fmt.Errorf("%w: compression %d", errs.ErrInvalidConfig, d.Compression)
	}

	return nil
}

// N returns the number of years in the domain.
func (d Domain) N() int {
	return d.EndYear - d.StartYear + 1
}

// Years returns the calendar years of the domain in ascending order.
func (d Domain) Years() []int {
	years := make([]int, 0, d.N())
	for y := d.StartYear; y <= d.EndYear; y++ {
		years = append(years, y)
	}

	return years
}

// Offset returns the year offset of a calendar year.
func (d Domain) Offset(year int) (int, bool) {
	if year < d.StartYear || year > d.EndYear {
		return 0, false
	}

	return year - d.StartYear, true
}

// Fingerprint identifies the domain in persisted artifacts.
// Tile size, compression and the test run flag do not change any code and are excluded.
func (d Domain) Fingerprint() uint64 {
	return hash.Fingerprint(
		"eventcode/v1",
		strconv.Itoa(d.StartYear),
		strconv.Itoa(d.EndYear),
		strconv.Itoa(d.SeverityClasses),
		strconv.Itoa(d.MaxOccurrences),
		strconv.Itoa(d.Resolution),
		strconv.FormatUint(d.Base, 10),
		d.Width.String(),
		d.Dataset,
		d.Version,
		d.CRS,
	)
}

// RunVersion returns the version used in output names, prefixed with "testRun" for test runs.
func (d Domain) RunVersion() string {
	if d.TestRun {
		return "testRun" + d.Version
	}

	return d.Version
}

// Suffix returns the output name suffix "_<start>_<end>_<res>m_<version>".
func (d Domain) Suffix() string {
	return fmt.Sprintf("_%d_%d_%dm_%s", d.StartYear, d.EndYear, d.Resolution, d.RunVersion())
}

func (d Domain) String() string {
	return fmt.Sprintf("%s%s (S=%d, base=%d, %s)", d.Dataset, d.Suffix(), d.SeverityClasses, d.Base, d.Width)
}
