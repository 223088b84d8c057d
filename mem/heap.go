// Copyright 2019-2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package mem

import (
	"unsafe"
)

// Heap is an Allocator using the go heap. Free is a no-op, the memory
// is reclaimed by the garbage collector.
// The zero value is ready to use.
type Heap struct {
	// MaxSize is the maximum block size. Bigger requests fail.
	// 0 means no limit.
	MaxSize int
}

// NewHeap returns a new Heap allocator without size limits.
func NewHeap() *Heap {
	return &Heap{}
}

func (h *Heap) fits(sz int) bool {
	return h.MaxSize <= 0 || sz <= h.MaxSize
}

// Alloc implements Allocator. It returns nil for invalid layouts or
// for sizes above MaxSize.
func (h *Heap) Alloc(l Layout) []byte {
	if !l.Valid() || !h.fits(l.Size) {
		return nil
	}
	return alignedMake(l)
}

// Realloc implements Allocator. It grows in place if the capacity of b
// allows it.
func (h *Heap) Realloc(b []byte, old Layout, newSize int) []byte {
	nl := old.WithSize(newSize)
	if !nl.Valid() || !h.fits(newSize) {
		return nil
	}
	if b != nil && newSize <= cap(b) && IsAligned(b, nl.Align) {
		return b[:newSize]
	}
	n := alignedMake(nl)
	copy(n, b)
	return n
}

// Free implements Allocator.
func (h *Heap) Free(b []byte, l Layout) {}

// alignedMake allocates a go slice of l.Size bytes starting on a l.Align
// boundary (over-allocating by at most l.Align-1 bytes).
func alignedMake(l Layout) []byte {
	if l.Size == 0 {
		return []byte{}
	}
	if l.Align <= 1 {
		return make([]byte, l.Size)
	}
	buf := make([]byte, l.Size+l.Align-1)
	off := alignOffset(unsafe.Pointer(&buf[0]), l.Align)
	return buf[off : off+l.Size : off+l.Size]
}
