package encoding

import "iter"

// ColumnarEncoder encodes a column of values into a pooled buffer.
type ColumnarEncoder[T comparable] interface {
	// Bytes returns the encoded column. It is valid until the next write or Finish.
	Bytes() []byte
	// Len returns the number of encoded values.
	Len() int
	// Size returns the encoded size in bytes.
	Size() int
	// Finish returns the buffer to the pool. The encoder is unusable afterwards.
	Finish()
}

// ColumnarDecoder decodes a column produced by the matching encoder.
type ColumnarDecoder[T comparable] interface {
	// All yields count values in column order. Iteration stops early on malformed data.
	All(data []byte, count int) iter.Seq[T]
	// Decode decodes exactly count values or reports why it could not.
	Decode(data []byte, count int) ([]T, error)
}
