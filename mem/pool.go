// Copyright 2019-2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package mem

import (
	"sync"
	"unsafe"
)

// Pool is an Allocator that recycles freed blocks using an array of
// sync.Pool, one for each size class (sizes rounded up to RoundTo).
// Blocks that are too big or that need an alignment bigger than RoundTo
// come directly from the heap and are not recycled.
//
// The zero value is ready to use. A Pool must not be copied after first
// use.
type Pool struct {
	// Limit is the maximum number of bytes handed out at the same time.
	// Allocations exceeding it fail. 0 means no limit.
	Limit uint64
	// Stats is updated on each call.
	Stats AllocStats

	// array of sync.Pool, each element containing a pool of
	// raw buffers (&buf[0]) of size index * RoundTo
	pools [PoolsNo]sync.Pool
}

// NewPool returns a new Pool allocator with the given byte limit
// (0 for unlimited).
func NewPool(limit uint64) *Pool {
	return &Pool{Limit: limit}
}

func (p *Pool) reserve(sz int) bool {
	if p.Limit == 0 {
		p.Stats.TotalSize.Inc(uint(sz))
		return true
	}
	if p.Stats.TotalSize.Inc(uint(sz)) > p.Limit {
		if sz > 0 {
			p.Stats.TotalSize.Dec(uint(sz))
		}
		return false
	}
	return true
}

func (p *Pool) release(sz int) {
	if sz > 0 {
		p.Stats.TotalSize.Dec(uint(sz))
	}
}

// Alloc implements Allocator.
// It returns nil for invalid layouts or if the limit would be exceeded.
func (p *Pool) Alloc(l Layout) []byte {
	p.Stats.NewCalls.Inc(1)
	b := p.get(l)
	if b == nil {
		p.Stats.Failures.Inc(1)
	}
	return b
}

func (p *Pool) get(l Layout) []byte {
	if !l.Valid() {
		return nil
	}
	if l.Size == 0 {
		return []byte{}
	}
	totalSize := RoundUp(l.Size, RoundTo)
	if !p.reserve(totalSize) {
		return nil
	}
	pNo := totalSize / RoundTo
	if pNo >= len(p.pools) || l.Align > RoundTo {
		// size too big for pools or special alignment, alloc new
		return alignedMake(Layout{Size: totalSize, Align: l.Align})[:l.Size]
	}
	if ptr, _ := p.pools[pNo].Get().(unsafe.Pointer); ptr != nil {
		p.Stats.PoolHits[pNo].Inc(1)
		buf := unsafe.Slice((*byte)(ptr), totalSize)
		clear(buf)
		return buf[:l.Size]
	}
	p.Stats.PoolMiss[pNo].Inc(1)
	// not in pool, alloc new
	return alignedMake(Layout{Size: totalSize, Align: RoundTo})[:l.Size]
}

// Realloc implements Allocator. Shrinking or growing inside the
// rounded-up capacity keeps the same block.
func (p *Pool) Realloc(b []byte, old Layout, newSize int) []byte {
	p.Stats.ReallocCalls.Inc(1)
	nl := old.WithSize(newSize)
	if b != nil && nl.Valid() && newSize <= cap(b) {
		return b[:newSize]
	}
	n := p.get(nl)
	if n == nil {
		p.Stats.Failures.Inc(1)
		return nil
	}
	copy(n, b)
	if b != nil {
		p.put(b)
	}
	return n
}

// Free implements Allocator.
func (p *Pool) Free(b []byte, l Layout) {
	p.Stats.FreeCalls.Inc(1)
	if b == nil {
		BUG("Pool.Free called with a nil buffer (layout %v)\n", l)
		return
	}
	p.put(b)
}

func (p *Pool) put(b []byte) {
	totalSize := cap(b)
	if totalSize == 0 {
		return
	}
	p.release(totalSize)
	pNo := totalSize / RoundTo
	if totalSize%RoundTo == 0 && pNo < len(p.pools) &&
		IsAligned(b, RoundTo) {
		p.pools[pNo].Put(unsafe.Pointer(unsafe.SliceData(b)))
	}
}
