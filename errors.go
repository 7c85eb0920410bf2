package growbuf

import (
	"github.com/pkg/errors"
)

var (
	// ErrAllocation is returned when memory for a region cannot be obtained.
	// The buffer which returned it is left exactly as it was before the call.
	ErrAllocation = errors.New("growbuf: allocation failed")

	ErrInvalidCapacity = errors.New("growbuf: invalid capacity")
	ErrInvalidPolicy   = errors.New("growbuf: invalid growth policy")

	// ErrBufferInUse is returned by SetAllocator when the buffer still holds a region.
	ErrBufferInUse = errors.New("growbuf: buffer holds an allocated region")
)

func allocError(n int, size uintptr, reason string) error {
	return errors.Wrapf(ErrAllocation, "%s: %d elements of %d bytes", reason, n, size)
}
