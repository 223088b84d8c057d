// Copyright 2019-2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package mem

import (
	"unsafe"
)

// Layout describes a memory request: the size in bytes and the required
// alignment of the first byte. Align must be a power of 2.
type Layout struct {
	Size  int
	Align int
}

// NewLayout returns the layout of a size bytes block with the natural
// machine word alignment.
func NewLayout(size int) Layout {
	return Layout{Size: size, Align: int(unsafe.Alignof(uintptr(0)))}
}

// Valid returns true if the layout can be satisfied (non-negative size and
// power of 2 alignment).
func (l Layout) Valid() bool {
	return l.Size >= 0 && l.Align > 0 && l.Align&(l.Align-1) == 0
}

// WithSize returns a copy of l with the size changed to sz.
func (l Layout) WithSize(sz int) Layout {
	l.Size = sz
	return l
}

// Allocator is the interface implemented by the backing allocators.
// A nil return from Alloc or Realloc signals failure (e.g. a memory
// limit was exceeded); Realloc leaves b untouched on failure.
type Allocator interface {
	// Alloc returns a new block of l.Size bytes aligned to l.Align.
	Alloc(l Layout) []byte
	// Realloc resizes a block previously returned by Alloc or Realloc
	// and described by old. The content is preserved up to the
	// minimum of the old and new size.
	Realloc(b []byte, old Layout, newSize int) []byte
	// Free releases a block previously returned by Alloc or Realloc.
	Free(b []byte, l Layout)
}

// RoundUp rounds sz up to the next multiple of to (power of 2).
func RoundUp(sz, to int) int {
	return (sz + to - 1) &^ (to - 1)
}

// alignOffset returns the offset from p to the next address aligned to a.
func alignOffset(p unsafe.Pointer, a int) int {
	addr := uintptr(p)
	return int((uintptr(a) - addr%uintptr(a)) % uintptr(a))
}

// IsAligned returns true if the first byte of b is aligned to a.
func IsAligned(b []byte, a int) bool {
	if cap(b) == 0 {
		return true
	}
	return alignOffset(unsafe.Pointer(unsafe.SliceData(b)), a) == 0
}
