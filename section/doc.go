// Package section defines the binary header shared by persisted key tables and
// packed key grids.
//
// Both artifacts are a fixed 32-byte header followed by one payload:
//
//	┌──────────────────────────────────────────────────────┐
//	│ Header (32 bytes, fixed)                             │
//	│  - Flag (4 bytes): magic, options, kind, codec       │
//	│  - Count (4 bytes): table entries or grid cells      │
//	│  - Fingerprint (8 bytes): domain fingerprint         │
//	│  - PayloadSize (4 bytes): stored payload bytes       │
//	│  - RawSize (4 bytes): payload bytes before compress  │
//	│  - Checksum (8 bytes): xxHash64 of stored payload    │
//	├──────────────────────────────────────────────────────┤
//	│ Payload (variable)                                   │
//	│  - key table: delta-uvarint raw code column          │
//	│  - grid: raw uint64 code column                      │
//	└──────────────────────────────────────────────────────┘
//
// # Flag Format
//
//	Byte 0-1 (Options, 16 bits, always little-endian):
//	  Bit 0: Endianness of the header body and payload (0=little, 1=big)
//	  Bit 1: Zero seeded (key tables only, raw 0 was forced into the table)
//	  Bits 2-3: Reserved (must be 0)
//	  Bits 4-15: Magic number (0xEC10 key table v1, 0xED10 grid v1)
//
//	Byte 2 (Kind): format.TableKind of the codes in the payload
//
//	Byte 3 (Codec, 8 bits):
//	  Bits 0-3: Payload compression (0x1=None, 0x2=Zstd, 0x3=S2, 0x4=LZ4)
//	  Bits 4-7: Numeric width the codes were produced for (0x1=safe53, 0x2=exact64)
//
// The fingerprint binds an artifact to the domain (year range, resolution,
// base, width, dataset version) it was built for. Readers compare it with the
// fingerprint of their own domain before using the artifact.
package section
