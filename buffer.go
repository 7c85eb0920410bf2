package growbuf

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Buffer owns a single contiguous region with room for Capacity() elements of type T.
// It does not track how many elements are in use; that is up to the owner, which indexes
// the region returned by Elements() directly.
//
// The zero value is an empty buffer using the heap allocator and DefaultPolicy.
// A Buffer is not safe for concurrent use.
type Buffer[T any] struct {
	elements []T

	alloc  Allocator[T]
	policy Policy

	log *logrus.Logger
}

// Capacity returns the number of elements the region can hold.
func (b *Buffer[T]) Capacity() int {
	return len(b.elements)
}

// Elements returns the region. Its length is Capacity(); it is nil when the capacity is 0.
// The slice is only valid until the next call that changes the capacity.
func (b *Buffer[T]) Elements() []T {
	return b.elements
}

// SetAllocator sets the allocator the regions are obtained from. It can only be changed
// while the buffer holds no region.
func (b *Buffer[T]) SetAllocator(a Allocator[T]) error {
	if b.elements != nil {
		return errors.Wrapf(ErrBufferInUse, "capacity %d", len(b.elements))
	}
	b.alloc = a
	return nil
}

// SetPolicy sets the growth policy used by EnsureCapacity.
func (b *Buffer[T]) SetPolicy(p Policy) error {
	if err := p.Validate(); err != nil {
		return err
	}
	b.policy = p
	return nil
}

// SetLogger sets the logger. If not set, nothing is logged.
func (b *Buffer[T]) SetLogger(log *logrus.Logger) {
	b.log = log
}

func (b *Buffer[T]) allocator() Allocator[T] {
	if b.alloc == nil {
		return HeapAllocator[T]{}
	}
	return b.alloc
}

func (b *Buffer[T]) growthPolicy() Policy {
	if b.policy.Den == 0 {
		return DefaultPolicy
	}
	return b.policy
}

// SetCapacity resizes the region to hold exactly n elements, keeping the first min(Capacity(), n)
// of them. A capacity of 0 releases the region. If the new region cannot be allocated the
// buffer is left untouched and an error wrapping ErrAllocation is returned.
func (b *Buffer[T]) SetCapacity(n int) error {
	if n < 0 {
		return errors.Wrapf(ErrInvalidCapacity, "capacity %d", n)
	}

	old := b.elements
	if n == len(old) {
		return nil
	}

	a := b.allocator()
	if n == 0 {
		b.elements = nil
		a.Free(old)
		if b.log != nil {
			b.log.Debugf("Released region of %d elements", len(old))
		}
		return nil
	}

	region, err := a.Allocate(n)
	if err != nil {
		if b.log != nil {
			b.log.Debugf("Could not resize region from %d to %d elements: %v", len(old), n, err)
		}
		return err
	}
	copy(region, old)
	b.elements = region
	if old != nil {
		a.Free(old)
	}

	if b.log != nil {
		b.log.Debugf("Resized region from %d to %d elements", len(old), n)
	}

	return nil
}

// EnsureCapacity makes sure at least minimum elements fit, growing the region according
// to the growth policy if they don't.
func (b *Buffer[T]) EnsureCapacity(minimum int) error {
	if minimum <= len(b.elements) {
		return nil
	}
	n, err := b.growthPolicy().Grow(minimum)
	if err != nil {
		return err
	}
	return b.SetCapacity(n)
}

// ShrinkToAtMost reduces the capacity to maximum if it is currently larger.
func (b *Buffer[T]) ShrinkToAtMost(maximum int) error {
	if maximum < 0 {
		return errors.Wrapf(ErrInvalidCapacity, "capacity %d", maximum)
	}
	if maximum < len(b.elements) {
		return b.SetCapacity(maximum)
	}
	return nil
}

// Release frees the region. It is the same as SetCapacity(0).
func (b *Buffer[T]) Release() {
	_ = b.SetCapacity(0)
}

// Swap exchanges the regions of b and other, together with their allocators, policies
// and loggers. No elements are copied.
func (b *Buffer[T]) Swap(other *Buffer[T]) {
	*b, *other = *other, *b
}
