package encoding

import (
	"fmt"
	"iter"

	"github.com/rrmetrics/eventcode/endian"
	"github.com/rrmetrics/eventcode/errs"
	"github.com/rrmetrics/eventcode/internal/pool"
)

// CodeRawEncoder stores codes as fixed 8-byte integers.
type CodeRawEncoder struct {
	engine endian.EndianEngine
	buf    *pool.ByteBuffer
	count  int
}

var _ ColumnarEncoder[uint64] = (*CodeRawEncoder)(nil)

// NewCodeRawEncoder creates a raw code encoder using the given byte order.
func NewCodeRawEncoder(engine endian.EndianEngine) *CodeRawEncoder {
	return &CodeRawEncoder{
		engine: engine,
		buf:    pool.GetGridBuffer(),
	}
}

// Write appends one code.
func (e *CodeRawEncoder) Write(code uint64) {
	e.buf.B = e.engine.AppendUint64(e.buf.B, code)
	e.count++
}

// WriteSlice appends codes with a single buffer growth.
func (e *CodeRawEncoder) WriteSlice(codes []uint64) {
	e.buf.Grow(len(codes) * 8)
	for _, c := range codes {
		e.buf.B = e.engine.AppendUint64(e.buf.B, c)
	}
	e.count += len(codes)
}

func (e *CodeRawEncoder) Bytes() []byte { return e.buf.Bytes() }
func (e *CodeRawEncoder) Len() int      { return e.count }
func (e *CodeRawEncoder) Size() int     { return e.buf.Len() }

// Finish returns the buffer to the pool.
func (e *CodeRawEncoder) Finish() {
	pool.PutGridBuffer(e.buf)
	e.buf = nil
}

// CodeRawDecoder decodes columns written by CodeRawEncoder.
type CodeRawDecoder struct {
	engine endian.EndianEngine
}

var _ ColumnarDecoder[uint64] = CodeRawDecoder{}

// NewCodeRawDecoder creates a raw code decoder using the given byte order.
func NewCodeRawDecoder(engine endian.EndianEngine) CodeRawDecoder {
	return CodeRawDecoder{engine: engine}
}

// All yields count codes; it yields nothing if data is shorter than count codes.
func (d CodeRawDecoder) All(data []byte, count int) iter.Seq[uint64] {
	return func(yield func(uint64) bool) {
		if count < 0 || len(data) < count*8 {
			return
		}
		for i := 0; i < count; i++ {
			if !yield(d.engine.Uint64(data[i*8:])) {
				return
			}
		}
	}
}

// At returns the code at index.
func (d CodeRawDecoder) At(data []byte, index int, count int) (uint64, bool) {
	if index < 0 || index >= count || len(data) < (index+1)*8 {
		return 0, false
	}

	return d.engine.Uint64(data[index*8:]), true
}

// Decode decodes exactly count codes.
func (d CodeRawDecoder) Decode(data []byte, count int) ([]uint64, error) {
	if count < 0 || len(data) != count*8 {
		return nil, fmt.Errorf("%w: raw code column has %d bytes, want %d", errs.ErrInvalidPayload, len(data), count*8)
	}

	out := make([]uint64, count)
	for i := range out {
		out[i] = d.engine.Uint64(data[i*8:])
	}

	return out, nil
}
