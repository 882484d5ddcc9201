package stringqueue

import (
	"github.com/timzifer/string_queue/internal/alloc"
)

// Options configures a Queue.
type Options struct {
	// Allocator accounts for the queue header, every node and every stored
	// value. Nil means alloc.Heap.
	Allocator alloc.Allocator
}

// Option mutates Options before a Queue is created.
type Option func(*Options)

// WithAllocator charges the queue's storage to a.
func WithAllocator(a alloc.Allocator) Option {
	return func(opts *Options) {
		opts.Allocator = a
	}
}

func defaultOptions() Options {
	return Options{
		Allocator: alloc.Heap,
	}
}
