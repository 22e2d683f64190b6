package pool

import "sync"

// slicePool recycles slices of one element type.
type slicePool[T any] struct {
	pool sync.Pool
}

func newSlicePool[T any]() *slicePool[T] {
	return &slicePool[T]{
		pool: sync.Pool{
			New: func() any { return &[]T{} },
		},
	}
}

// get returns a slice of length size and a cleanup func that gives it back.
// The contents are not cleared.
func (p *slicePool[T]) get(size int) ([]T, func()) {
	ptr, _ := p.pool.Get().(*[]T)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]T, size)
	} else {
		slice = slice[:size]
	}
	*ptr = slice

	return slice, func() { p.pool.Put(ptr) }
}

var uint64SlicePool = newSlicePool[uint64]()

// GetUint64Slice retrieves a uint64 slice of the given length from the pool.
//
// The caller must call the returned cleanup function, typically with defer,
// and must not retain the slice afterwards.
//
// Example:
//
//	codes, cleanup := pool.GetUint64Slice(tileLen)
//	defer cleanup()
func GetUint64Slice(size int) ([]uint64, func()) {
	return uint64SlicePool.get(size)
}

