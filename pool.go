package growbuf

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Pool is a fixed set of buffers that can be handed between goroutines. Buffers are
// pre-grown on creation and trimmed back when they are returned, so the memory held
// by an idle pool stays bounded.
type Pool[T any] struct {
	ch     chan *Buffer[T]
	retain int

	log *logrus.Logger
}

// NewPool creates a pool of size buffers, each able to hold capacity elements.
// If alloc is nil the buffers use the heap allocator.
func NewPool[T any](size, capacity int, alloc Allocator[T]) (*Pool[T], error) {
	if size <= 0 {
		return nil, errors.Errorf("growbuf: invalid pool size %d", size)
	}
	p := &Pool[T]{
		ch:     make(chan *Buffer[T], size),
		retain: capacity,
	}

	for i := 0; i < size; i++ {
		b := &Buffer[T]{alloc: alloc}
		if err := b.SetCapacity(capacity); err != nil {
			p.releaseIdle()
			return nil, errors.Wrapf(err, "pool buffer %d", i)
		}
		p.ch <- b
	}

	return p, nil
}

// SetRetain sets the capacity buffers are trimmed to when returned. The default is the
// capacity the pool was created with.
func (p *Pool[T]) SetRetain(n int) {
	p.retain = n
}

// SetLogger sets the logger. If not set logrus.StandardLogger() is used.
func (p *Pool[T]) SetLogger(log *logrus.Logger) {
	p.log = log
}

func (p *Pool[T]) logger() *logrus.Logger {
	if p.log == nil {
		return logrus.StandardLogger()
	}
	return p.log
}

// Size returns the number of buffers the pool was created with.
func (p *Pool[T]) Size() int {
	return cap(p.ch)
}

// Get takes a buffer out of the pool, waiting until one is available.
func (p *Pool[T]) Get() *Buffer[T] {
	return <-p.ch
}

// TryGet takes a buffer out of the pool if one is available without waiting.
func (p *Pool[T]) TryGet() (*Buffer[T], bool) {
	select {
	case b := <-p.ch:
		return b, true
	default:
		return nil, false
	}
}

// Put trims the buffer to the retained capacity and returns it to the pool. If the pool
// is already full the buffer is released instead.
func (p *Pool[T]) Put(b *Buffer[T]) {
	if b == nil {
		return
	}
	if err := b.ShrinkToAtMost(p.retain); err != nil {
		p.logger().Warnf("Could not trim pooled buffer of %d elements: %v", b.Capacity(), err)
	}

	select {
	case p.ch <- b:
	default:
		p.logger().Warnln("Buffer returned to a full pool, releasing it")
		b.Release()
	}
}

// Drain waits until every buffer has been returned and releases them all.
// The pool cannot be used afterwards.
func (p *Pool[T]) Drain() {
	n := cap(p.ch)
	for i := 0; i < n; i++ {
		b := <-p.ch
		b.Release()
	}
	p.logger().Debugf("Drained pool of %d buffers", n)
}

func (p *Pool[T]) releaseIdle() {
	for {
		select {
		case b := <-p.ch:
			b.Release()
		default:
			return
		}
	}
}
