package growbuf

import (
	"math"
	"math/bits"

	"github.com/pkg/errors"
)

const (
	DEF_GROWTH_NUM    = 3
	DEF_GROWTH_DEN    = 2
	DEF_GROWTH_MARGIN = 8
	DEF_GROWTH_ALIGN  = 8
)

// Policy decides how much room EnsureCapacity actually allocates for a requested minimum.
// The target is m*Num/Den + Margin, rounded down to a multiple of Alignment, and never less than m.
type Policy struct {
	Num, Den  int
	Margin    int
	Alignment int
}

// DefaultPolicy grows by half the request plus eight elements, in multiples of eight.
var DefaultPolicy = Policy{
	Num:       DEF_GROWTH_NUM,
	Den:       DEF_GROWTH_DEN,
	Margin:    DEF_GROWTH_MARGIN,
	Alignment: DEF_GROWTH_ALIGN,
}

func (p Policy) Validate() error {
	if p.Den <= 0 || p.Num <= p.Den {
		return errors.Wrapf(ErrInvalidPolicy, "growth factor %d/%d must be greater than 1", p.Num, p.Den)
	}
	if p.Margin < 0 {
		return errors.Wrapf(ErrInvalidPolicy, "negative margin %d", p.Margin)
	}
	if p.Alignment <= 0 || bits.OnesCount(uint(p.Alignment)) != 1 {
		return errors.Wrapf(ErrInvalidPolicy, "alignment %d is not a power of two", p.Alignment)
	}
	return nil
}

// Grow returns the capacity to allocate so that at least m elements fit.
func (p Policy) Grow(m int) (int, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	if m <= 0 {
		return 0, nil
	}

	// m*Num/Den without overflowing m*Num.
	q, r := m/p.Den, m%p.Den
	if q > (math.MaxInt-p.Margin-p.Num)/p.Num {
		return 0, allocError(m, 0, "growth target overflows int")
	}
	target := q*p.Num + r*p.Num/p.Den
	target = (target + p.Margin) &^ (p.Alignment - 1)
	if target < m {
		target = m
	}

	return target, nil
}
