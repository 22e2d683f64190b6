// Package hash provides the xxHash64 digests used to fingerprint domains and
// to checksum persisted key tables and grids.
package hash

import "github.com/cespare/xxhash/v2"

// Checksum computes the xxHash64 of the concatenated parts.
func Checksum(parts ...[]byte) uint64 {
	if len(parts) == 1 {
		return xxhash.Sum64(parts[0])
	}

	d := xxhash.New()
	for _, p := range parts {
		_, _ = d.Write(p)
	}

	return d.Sum64()
}

// Fingerprint hashes an ordered list of descriptor parts.
// Parts are separated by a 0x1f byte so ("ab", "c") and ("a", "bc") differ.
func Fingerprint(parts ...string) uint64 {
	d := xxhash.New()
	for i, p := range parts {
		if i > 0 {
			_, _ = d.Write([]byte{0x1f})
		}
		_, _ = d.WriteString(p)
	}

	return d.Sum64()
}
