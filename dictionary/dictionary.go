// Package dictionary compacts a sparse set of observed raw codes into the
// dense range [0, K-1].
//
// Distinct raw codes are sorted ascending and numbered in that order, so the
// assignment is deterministic for a given set, monotonic (raw a < raw b implies
// dense a < dense b) and idempotent. When raw 0 is present it always receives
// dense 0, which keeps "never burned" cells at 0 after compaction. The result
// is an immutable KeyTable that maps both ways and can be persisted.
package dictionary

import (
	"fmt"
	"slices"

	"github.com/rrmetrics/eventcode/errs"
	"github.com/rrmetrics/eventcode/format"
	"github.com/rrmetrics/eventcode/internal/distinct"
	"github.com/rrmetrics/eventcode/internal/options"
	"github.com/rrmetrics/eventcode/internal/pool"
)

type config struct {
	fingerprint uint64
	withZero    bool
}

// Option configures Compact and CompactSet.
type Option = options.Option[*config]

// WithFingerprint binds the table to the domain with the given fingerprint.
func WithFingerprint(fingerprint uint64) Option {
	return options.NoError(func(c *config) { c.fingerprint = fingerprint })
}

// WithZero seeds raw code 0 into the table even if no input value is 0.
func WithZero() Option {
	return options.NoError(func(c *config) { c.withZero = true })
}

// Compact builds a key table over the distinct values.
// It fails with errs.ErrEmptyDomain when there is nothing to compact.
//
// Parameters:
//   - kind: table kind stored in the section header
//   - values: raw codes, in any order and possibly repeated
//   - opts: table options such as WithZero
//
// Returns:
//   - *KeyTable: table mapping each distinct raw code to its dense index
//   - error: errs.ErrEmptyDomain, or an option error
func Compact(kind format.TableKind, values []uint64, opts ...Option) (*KeyTable, error) {
	sorted, cleanup := pool.GetUint64Slice(len(values))
	defer cleanup()

	copy(sorted, values)
	slices.Sort(sorted)

	return compact(kind, slices.Clone(slices.Compact(sorted)), opts...)
}

// CompactSet builds a key table from a set of distinct raw codes, typically the
// union of per-tile sets. The set is not modified.
func CompactSet(kind format.TableKind, set *distinct.Set, opts ...Option) (*KeyTable, error) {
	var raw []uint64
	if set != nil {
		raw = set.Sorted()
	}

	return compact(kind, raw, opts...)
}

// compact numbers raw, which must be sorted, distinct and owned by the table.
func compact(kind format.TableKind, raw []uint64, opts ...Option) (*KeyTable, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: table kind %d", errs.ErrInvalidConfig, kind)
	}

	cfg, err := options.Build(config{}, opts...)
	if err != nil {
		return nil, err
	}

	seeded := false
	if cfg.withZero && (len(raw) == 0 || raw[0] != 0) {
		raw = append([]uint64{0}, raw...)
		seeded = true
	}

	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: %s table", errs.ErrEmptyDomain, kind)
	}

	return newKeyTable(kind, cfg.fingerprint, seeded, raw), nil
}
