// Package pool provides typed object pooling for sorer.
//
// Pool[T] wraps sync.Pool with type safety, an optional reset function and
// allocation statistics:
//
//	bufs := pool.New(
//	    func() *bytes.Buffer { return new(bytes.Buffer) },
//	    func(b *bytes.Buffer) { b.Reset() },
//	)
//	b := bufs.Get()
//	defer bufs.Put(b)
package pool

import (
	"sync"
	"sync/atomic"
)

// Pool represents a generic object pool with type safety. It is safe for
// concurrent use.
type Pool[T any] struct {
	pool  sync.Pool
	reset func(T)
	keep  func(T) bool

	allocated atomic.Int64
	gets      atomic.Int64
	puts      atomic.Int64
	discarded atomic.Int64
}

// Stats describes pool usage
type Stats struct {
	// Allocated is the number of objects created by the factory
	Allocated int64
	// Gets and Puts count calls; Gets - Allocated were served from the pool
	Gets int64
	Puts int64
	// Discarded counts objects rejected by the keep function
	Discarded int64
}

// Option configures a Pool
type Option[T any] func(*Pool[T])

// WithKeep sets a predicate deciding whether a returned object is pooled.
// Oversized buffers are the usual reason to drop one.
func WithKeep[T any](keep func(T) bool) Option[T] {
	return func(p *Pool[T]) { p.keep = keep }
}

// New creates a pool. newFn is called when the pool is empty; reset, if
// non-nil, runs on every object handed back by Put.
func New[T any](newFn func() T, reset func(T), opts ...Option[T]) *Pool[T] {
	p := &Pool[T]{reset: reset}
	p.pool.New = func() interface{} {
		p.allocated.Add(1)
		return newFn()
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Get retrieves an object from the pool, creating one if it is empty
func (p *Pool[T]) Get() T {
	p.gets.Add(1)
	return p.pool.Get().(T)
}

// Put returns an object to the pool for reuse
func (p *Pool[T]) Put(obj T) {
	p.puts.Add(1)
	if p.keep != nil && !p.keep(obj) {
		p.discarded.Add(1)
		return
	}
	if p.reset != nil {
		p.reset(obj)
	}
	p.pool.Put(obj)
}

// Stats returns current pool statistics
func (p *Pool[T]) Stats() Stats {
	return Stats{
		Allocated: p.allocated.Load(),
		Gets:      p.gets.Load(),
		Puts:      p.puts.Load(),
		Discarded: p.discarded.Load(),
	}
}
