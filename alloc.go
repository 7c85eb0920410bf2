package growbuf

import (
	"sync/atomic"
	"unsafe"
)

// Largest region the runtime will hand out, mirroring its own limit (1<<48 on 64-bit platforms).
const maxAllocBytes uintptr = 1 << (31 + 17*(^uintptr(0)>>63))

// Allocator is the source of the regions held by a Buffer.
// Allocate must return a zeroed region of exactly n elements. A region is always handed back to
// Free of the allocator that produced it.
type Allocator[T any] interface {
	Allocate(n int) ([]T, error)
	Free(region []T)
}

// HeapAllocator allocates regions on the Go heap.
type HeapAllocator[T any] struct{}

func elemSize[T any]() uintptr {
	var zero T
	return unsafe.Sizeof(zero)
}

func (HeapAllocator[T]) Allocate(n int) ([]T, error) {
	size := elemSize[T]()
	if n < 0 {
		return nil, allocError(n, size, "negative element count")
	}
	if size > 0 && uintptr(n) > maxAllocBytes/size {
		return nil, allocError(n, size, "region exceeds the maximum allocation size")
	}
	return make([]T, n), nil
}

// Free does nothing, the region is collected once the buffer drops it.
func (HeapAllocator[T]) Free([]T) {}

// LimitedAllocator allocates on the Go heap but keeps the total size of outstanding regions
// within a byte budget. A single LimitedAllocator may be shared by buffers owned by different goroutines.
type LimitedAllocator[T any] struct {
	limit int64
	inUse atomic.Int64
	heap  HeapAllocator[T]
}

func NewLimitedAllocator[T any](limit int64) *LimitedAllocator[T] {
	return &LimitedAllocator[T]{
		limit: limit,
	}
}

func (a *LimitedAllocator[T]) Allocate(n int) ([]T, error) {
	size := elemSize[T]()
	if n < 0 {
		return nil, allocError(n, size, "negative element count")
	}
	if size > 0 && int64(n) > a.limit/int64(size) {
		return nil, allocError(n, size, "region exceeds the allocator limit")
	}

	need := int64(n) * int64(size)
	for {
		cur := a.inUse.Load()
		if cur+need > a.limit {
			return nil, allocError(n, size, "allocator limit reached")
		}
		if a.inUse.CompareAndSwap(cur, cur+need) {
			break
		}
	}

	region, err := a.heap.Allocate(n)
	if err != nil {
		a.inUse.Add(-need)
		return nil, err
	}
	return region, nil
}

func (a *LimitedAllocator[T]) Free(region []T) {
	a.inUse.Add(-int64(len(region)) * int64(elemSize[T]()))
}

// InUse returns the number of bytes held by regions that have not been freed yet.
func (a *LimitedAllocator[T]) InUse() int64 {
	return a.inUse.Load()
}

// Limit returns the byte budget.
func (a *LimitedAllocator[T]) Limit() int64 {
	return a.limit
}
