// Copyright 2019-2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package alloccnt

import (
	"github.com/apache/arrow/go/v11/arrow/memory"

	"github.com/intuitivelabs/alloccnt/mem"
)

// Counter is an allocator that counts the allocations, reallocations and
// deallocations made through it, on the calling goroutine's Local
// state. The memory comes from a backing allocator.
// A Counter can be shared by any number of goroutines.
//
// Every goroutine calling a Counter (or its Arrow view) gets a Local
// state that is kept until the goroutine calls Release, even when it
// only runs in Ignore mode. Long lived programs that use a Counter from
// many short goroutines should defer Release in them.
type Counter struct {
	backing mem.Allocator
}

var _ mem.Allocator = (*Counter)(nil)

// NewCounter returns a Counter using backing for the actual memory
// management. See Counter for the per-goroutine state it creates.
func NewCounter(backing mem.Allocator) *Counter {
	return &Counter{backing: backing}
}

// NewHeapCounter returns a Counter backed by the go heap.
func NewHeapCounter() *Counter {
	return NewCounter(mem.NewHeap())
}

// Backing returns the backing allocator.
func (c *Counter) Backing() mem.Allocator {
	return c.backing
}

func count(op allocOp) {
	if Enabled {
		Current().record(op)
	}
}

// Alloc implements mem.Allocator. The call is counted even if the
// backing allocator fails (returns nil).
func (c *Counter) Alloc(l mem.Layout) []byte {
	count(opAlloc)
	return c.backing.Alloc(l)
}

// Realloc implements mem.Allocator.
func (c *Counter) Realloc(b []byte, old mem.Layout, newSize int) []byte {
	count(opRealloc)
	return c.backing.Realloc(b, old, newSize)
}

// Free implements mem.Allocator.
func (c *Counter) Free(b []byte, l mem.Layout) {
	count(opDealloc)
	c.backing.Free(b, l)
}

// Arrow returns c as an arrow memory.Allocator, for use with the arrow
// builders and arrays. All the blocks are ArrowAlignment aligned.
func (c *Counter) Arrow() memory.Allocator {
	return arrowCounter{c: c}
}

type arrowCounter struct {
	c *Counter
}

var _ memory.Allocator = arrowCounter{}

func arrowLayout(sz int) mem.Layout {
	return mem.Layout{Size: sz, Align: mem.ArrowAlignment}
}

func (a arrowCounter) Allocate(size int) []byte {
	return a.c.Alloc(arrowLayout(size))
}

func (a arrowCounter) Reallocate(size int, b []byte) []byte {
	return a.c.Realloc(b, arrowLayout(len(b)), size)
}

func (a arrowCounter) Free(b []byte) {
	a.c.Free(b, arrowLayout(len(b)))
}
