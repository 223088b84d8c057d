// Copyright 2019-2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package alloccnt

import (
	"sync"

	"github.com/petermattis/goid"
)

// Local is the per-goroutine counting state: the current Mode and the
// Counters. It is only read and modified by the goroutine owning it,
// so it needs no locking.
type Local struct {
	mode   Mode
	counts Counters
	depth  int // open guards
	gid    int64
}

// goroutine id -> *Local
// Each key is only stored and deleted by its own goroutine.
var locals sync.Map

// Current returns the counting state of the calling goroutine, creating
// it (in Count mode, with zeroed counters) on first use.
// The returned value must not be passed to other goroutines.
func Current() *Local {
	id := goid.Get()
	if v, ok := locals.Load(id); ok {
		return v.(*Local)
	}
	l := &Local{mode: Count, gid: id}
	locals.Store(id, l)
	return l
}

// Release forgets the counting state of the calling goroutine.
// Goroutines that used a Counter and are about to exit can call it
// (usually deferred) to avoid keeping the state around.
// It returns false and keeps the state if called from inside a scope.
func Release() bool {
	id := goid.Get()
	v, ok := locals.Load(id)
	if !ok {
		return true
	}
	l := v.(*Local)
	if l.depth > 0 {
		WARN("goroutine %d state released inside %d scope(s) (mode %s)"+
			", ignored\n", l.Goroutine(), l.depth, l.mode)
		return false
	}
	locals.Delete(id)
	if DBGon() {
		DBG("released goroutine %d state: mode %s %s\n",
			l.Goroutine(), l.mode, l.counts)
	}
	return true
}

// Mode returns the current mode.
func (l *Local) Mode() Mode {
	return l.mode
}

// Counters returns the calls counted so far. The values never
// decrease, use Counters.Sub on two snapshots for a delta.
func (l *Local) Counters() Counters {
	return l.counts
}

// Goroutine returns the id of the owning goroutine.
func (l *Local) Goroutine() int64 {
	return l.gid
}

type allocOp uint8

const (
	opAlloc allocOp = iota
	opRealloc
	opDealloc
)

// record counts one allocator call, unless in Ignore mode.
func (l *Local) record(op allocOp) {
	if !Enabled || l.mode == Ignore {
		return
	}
	switch op {
	case opAlloc:
		l.counts.Allocs++
	case opRealloc:
		l.counts.Reallocs++
	case opDealloc:
		l.counts.Deallocs++
	}
}
