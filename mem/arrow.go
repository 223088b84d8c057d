// Copyright 2019-2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package mem

import (
	"github.com/apache/arrow/go/v11/arrow/memory"
)

// ArrowAlignment is the alignment of the blocks returned by the arrow
// allocators.
const ArrowAlignment = 64

type arrowBacking struct {
	a memory.Allocator
}

// FromArrow returns an Allocator using the arrow allocator a
// (e.g. memory.NewGoAllocator() or a memory.CheckedAllocator).
// Requests for alignments bigger than ArrowAlignment fail.
func FromArrow(a memory.Allocator) Allocator {
	return arrowBacking{a: a}
}

func (ab arrowBacking) Alloc(l Layout) []byte {
	if !l.Valid() || l.Align > ArrowAlignment {
		return nil
	}
	return ab.a.Allocate(l.Size)
}

func (ab arrowBacking) Realloc(b []byte, old Layout, newSize int) []byte {
	if !old.WithSize(newSize).Valid() || old.Align > ArrowAlignment {
		return nil
	}
	return ab.a.Reallocate(newSize, b)
}

func (ab arrowBacking) Free(b []byte, l Layout) {
	ab.a.Free(b)
}
