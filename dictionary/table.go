package dictionary

import (
	"fmt"
	"iter"
	"slices"

	"github.com/rrmetrics/eventcode/errs"
	"github.com/rrmetrics/eventcode/format"
)

// KeyTable is an immutable bidirectional mapping between dense and raw codes.
// It is safe for concurrent use.
type KeyTable struct {
	kind        format.TableKind
	fingerprint uint64
	zeroSeeded  bool
	raw         []uint64          // ascending; index is the dense code
	dense       map[uint64]uint64 // raw -> dense
}

// newKeyTable takes ownership of raw, which must be strictly ascending.
func newKeyTable(kind format.TableKind, fingerprint uint64, zeroSeeded bool, raw []uint64) *KeyTable {
	dense := make(map[uint64]uint64, len(raw))
	for i, r := range raw {
		dense[r] = uint64(i)
	}

	return &KeyTable{
		kind:        kind,
		fingerprint: fingerprint,
		zeroSeeded:  zeroSeeded,
		raw:         raw,
		dense:       dense,
	}
}

// Kind returns the kind of codes in the table.
func (t *KeyTable) Kind() format.TableKind { return t.kind }

// Fingerprint returns the fingerprint of the domain the table was built for.
func (t *KeyTable) Fingerprint() uint64 { return t.fingerprint }

// ZeroSeeded reports whether raw 0 was added by WithZero rather than observed.
func (t *KeyTable) ZeroSeeded() bool { return t.zeroSeeded }

// Len returns the number of entries K.
func (t *KeyTable) Len() int { return len(t.raw) }

// MaxDense returns K-1.
func (t *KeyTable) MaxDense() uint64 { return uint64(len(t.raw) - 1) }

// MaxRaw returns the largest raw code.
func (t *KeyTable) MaxRaw() uint64 { return t.raw[len(t.raw)-1] }

// Dense returns the dense code of a raw code.
func (t *KeyTable) Dense(raw uint64) (uint64, bool) {
	d, ok := t.dense[raw]
	return d, ok
}

// MustDense is like Dense but panics when raw is not in the table.
// Use it only for codes that were part of the compacted set.
func (t *KeyTable) MustDense(raw uint64) uint64 {
	d, ok := t.dense[raw]
	if !ok {
		panic(fmt.Sprintf("dictionary: raw code %d not in %s table", raw, t.kind))
	}

	return d
}

// Raw returns the raw code of a dense code.
func (t *KeyTable) Raw(dense uint64) (uint64, bool) {
	if dense >= uint64(len(t.raw)) {
		return 0, false
	}

	return t.raw[dense], true
}

// RawCodes returns a copy of the raw codes in dense order.
func (t *KeyTable) RawCodes() []uint64 {
	return slices.Clone(t.raw)
}

// Entries yields (dense, raw) pairs in ascending order.
func (t *KeyTable) Entries() iter.Seq2[uint64, uint64] {
	return func(yield func(uint64, uint64) bool) {
		for i, r := range t.raw {
			if !yield(uint64(i), r) {
				return
			}
		}
	}
}

// Equal reports whether both tables have the same kind, fingerprint and mapping.
func (t *KeyTable) Equal(other *KeyTable) bool {
	if t == nil || other == nil {
		return t == other
	}

	return t.kind == other.kind &&
		t.fingerprint == other.fingerprint &&
		slices.Equal(t.raw, other.raw)
}

// VerifyDomain fails with errs.ErrDomainFingerprintMismatch when the table was
// built for a different domain.
func (t *KeyTable) VerifyDomain(fingerprint uint64) error {
	if t.fingerprint != fingerprint {
		return fmt.Errorf("%w: %s table has fingerprint %016x, domain has %016x",
			errs.ErrDomainFingerprintMismatch, t.kind, t.fingerprint, fingerprint)
	}

	return nil
}

// Remap maps a grid of raw codes to dense codes.
func (t *KeyTable) Remap(raw []uint64) ([]uint64, error) {
	out := make([]uint64, len(raw))
	if err := t.RemapInto(out, raw); err != nil {
		return nil, err
	}

	return out, nil
}

// RemapInto maps src to dense codes in dst, which must be at least as long as src.
// An unknown raw code fails with errs.ErrCodeNotFound.
func (t *KeyTable) RemapInto(dst, src []uint64) error {
	_ = dst[:len(src)]
	for i, r := range src {
		d, ok := t.dense[r]
		if !ok {
			return fmt.Errorf("%w: raw %d in %s table", errs.ErrCodeNotFound, r, t.kind)
		}
		dst[i] = d
	}

	return nil
}

// Expand maps dense codes back to raw codes.
func (t *KeyTable) Expand(dense []uint64) ([]uint64, error) {
	out := make([]uint64, len(dense))
	for i, d := range dense {
		if d >= uint64(len(t.raw)) {
			return nil, fmt.Errorf("%w: dense %d beyond %d entries of %s table", errs.ErrCodeNotFound, d, len(t.raw), t.kind)
		}
		out[i] = t.raw[d]
	}

	return out, nil
}
