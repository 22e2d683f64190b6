package encoding

import (
	"encoding/binary"
	"fmt"
	"iter"

	"github.com/rrmetrics/eventcode/errs"
	"github.com/rrmetrics/eventcode/internal/pool"
)

// CodeDeltaEncoder stores a strictly ascending column of codes.
//
// The first code is written as a uvarint, every following code as the uvarint
// of its gap to the previous one. Gaps are always positive, so no zigzag step
// is needed.
type CodeDeltaEncoder struct {
	buf   *pool.ByteBuffer
	prev  uint64
	count int
}

var _ ColumnarEncoder[uint64] = (*CodeDeltaEncoder)(nil)

// NewCodeDeltaEncoder creates an encoder for ascending code columns.
func NewCodeDeltaEncoder() *CodeDeltaEncoder {
	return &CodeDeltaEncoder{buf: pool.GetTableBuffer()}
}

// Write appends one code. It must be greater than the previous code.
func (e *CodeDeltaEncoder) Write(code uint64) error {
	if e.count > 0 && code <= e.prev {
		return fmt.Errorf("%w: code %d does not ascend from %d", errs.ErrInvalidPayload, code, e.prev)
	}

	if e.count == 0 {
		e.buf.AppendUvarint(code)
	} else {
		e.buf.AppendUvarint(code - e.prev)
	}
	e.prev = code
	e.count++

	return nil
}

// WriteSlice appends an ascending slice of codes.
func (e *CodeDeltaEncoder) WriteSlice(codes []uint64) error {
	// gaps of dense fire-year tables rarely exceed two varint bytes
	e.buf.Grow(len(codes) * 2)
	for _, c := range codes {
		if err := e.Write(c); err != nil {
			return err
		}
	}

	return nil
}

func (e *CodeDeltaEncoder) Bytes() []byte { return e.buf.Bytes() }
func (e *CodeDeltaEncoder) Len() int      { return e.count }
func (e *CodeDeltaEncoder) Size() int     { return e.buf.Len() }

// Finish returns the buffer to the pool.
func (e *CodeDeltaEncoder) Finish() {
	pool.PutTableBuffer(e.buf)
	e.buf = nil
}

// CodeDeltaDecoder decodes columns written by CodeDeltaEncoder.
type CodeDeltaDecoder struct{}

var _ ColumnarDecoder[uint64] = CodeDeltaDecoder{}

// NewCodeDeltaDecoder creates a decoder for ascending code columns.
func NewCodeDeltaDecoder() CodeDeltaDecoder {
	return CodeDeltaDecoder{}
}

// All yields up to count codes, stopping at the first malformed varint.
func (d CodeDeltaDecoder) All(data []byte, count int) iter.Seq[uint64] {
	return func(yield func(uint64) bool) {
		var prev uint64
		offset := 0
		for i := 0; i < count; i++ {
			v, n := binary.Uvarint(data[offset:])
			if n <= 0 {
				return
			}
			offset += n
			if i > 0 {
				v += prev
			}
			prev = v
			if !yield(v) {
				return
			}
		}
	}
}

// Decode decodes exactly count codes and rejects trailing bytes, zero gaps and overflow.
func (d CodeDeltaDecoder) Decode(data []byte, count int) ([]uint64, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: negative code count %d", errs.ErrInvalidPayload, count)
	}
	// every uvarint takes at least one byte
	if count > len(data) {
		return nil, fmt.Errorf("%w: %d codes in %d bytes", errs.ErrInvalidPayload, count, len(data))
	}

	out := make([]uint64, 0, count)
	var prev uint64
	offset := 0
	for i := 0; i < count; i++ {
		v, n := binary.Uvarint(data[offset:])
		if n <= 0 {
			return nil, fmt.Errorf("%w: truncated code %d at offset %d", errs.ErrInvalidPayload, i, offset)
		}
		offset += n

		if i > 0 {
			if v == 0 || v > ^uint64(0)-prev {
				return nil, fmt.Errorf("%w: invalid gap %d after code %d", errs.ErrInvalidPayload, v, prev)
			}
			v += prev
		}
		prev = v
		out = append(out, v)
	}

	if offset != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes after %d codes", errs.ErrInvalidPayload, len(data)-offset, count)
	}

	return out, nil
}
