package pool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetUint64Slice(t *testing.T) {
	s, cleanup := GetUint64Slice(100)
	require.Len(t, s, 100)
	for i := range s {
		s[i] = uint64(i)
	}
	cleanup()

	s2, cleanup2 := GetUint64Slice(10)
	defer cleanup2()
	require.Len(t, s2, 10)

	s3, cleanup3 := GetUint64Slice(0)
	defer cleanup3()
	require.Empty(t, s3)
}

func TestSlicePoolConcurrency(t *testing.T) {
	var wg sync.WaitGroup
	for i := 1; i <= 32; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			s, cleanup := GetUint64Slice(n)
			defer cleanup()
			require.Len(t, s, n)
		}(i)
	}
	wg.Wait()
}
