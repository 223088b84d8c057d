// Copyright 2019-2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package mem

import (
	"math/rand"
	"testing"
)

func TestHeapAlloc(t *testing.T) {
	h := NewHeap()
	i := 0
	for ; i < 10000; i++ {
		sz := rand.Intn(256)
		align := 1 << uint(rand.Intn(13))
		b := h.Alloc(Layout{Size: sz, Align: align})
		if b == nil {
			t.Fatalf("alloc failed for size %d align %d\n", sz, align)
		}
		if len(b) != sz {
			t.Errorf("wrong buf size %d, expected %d\n", len(b), sz)
		}
		if !IsAligned(b, align) {
			t.Errorf("alignment error for %p: not multiple of %d\n",
				&b[0], align)
		}
		for j := range b {
			b[j] = 0xff
		}
		h.Free(b, Layout{Size: sz, Align: align})
	}
	t.Logf("%d test runs\n", i)
}

func TestHeapInvalid(t *testing.T) {
	h := &Heap{MaxSize: 64}
	tests := [...]Layout{
		{Size: -1, Align: 8},
		{Size: 8, Align: 0},
		{Size: 8, Align: 3},
		{Size: 65, Align: 8},
	}
	for _, l := range tests {
		if b := h.Alloc(l); b != nil {
			t.Errorf("alloc(%v) should have failed\n", l)
		}
	}
	if b := h.Alloc(Layout{Size: 64, Align: 8}); len(b) != 64 {
		t.Errorf("alloc(64) failed: %v\n", b)
	}
	if b := h.Alloc(Layout{Size: 0, Align: 8}); b == nil || len(b) != 0 {
		t.Errorf("zero size alloc failed: %v\n", b)
	}
}

func TestHeapRealloc(t *testing.T) {
	h := &Heap{MaxSize: 1024}
	l := Layout{Size: 10, Align: 16}
	b := h.Alloc(l)
	for i := range b {
		b[i] = byte(i)
	}
	n := h.Realloc(b, l, 100)
	if len(n) != 100 || !IsAligned(n, 16) {
		t.Fatalf("realloc failed: len %d\n", len(n))
	}
	for i := 0; i < 10; i++ {
		if n[i] != byte(i) {
			t.Errorf("content not preserved at %d: %x\n", i, n[i])
		}
	}
	// shrink in place
	s := h.Realloc(n, l.WithSize(100), 5)
	if len(s) != 5 || &s[0] != &n[0] {
		t.Errorf("shrink not in place\n")
	}
	if h.Realloc(s, l.WithSize(5), 2000) != nil {
		t.Errorf("realloc above MaxSize should fail\n")
	}
	if r := h.Realloc(nil, l, 8); len(r) != 8 {
		t.Errorf("realloc of nil failed\n")
	}
}

func TestRoundUp(t *testing.T) {
	tests := [...]struct{ sz, to, r int }{
		{0, 16, 0}, {1, 16, 16}, {16, 16, 16}, {17, 16, 32}, {100, 64, 128},
	}
	for _, tc := range tests {
		if r := RoundUp(tc.sz, tc.to); r != tc.r {
			t.Errorf("RoundUp(%d, %d) = %d, expected %d\n",
				tc.sz, tc.to, r, tc.r)
		}
	}
}
