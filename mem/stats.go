// Copyright 2019-2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package mem

import (
	"sync/atomic"
)

// RoundTo is the granularity of the pool size classes.
const RoundTo = 16

// PoolsNo is the number of pool size classes. Blocks bigger than
// (PoolsNo-1)*RoundTo are not pooled.
const PoolsNo = 1024

type StatCounter uint64

func (c *StatCounter) Inc(v uint) uint64 {
	return atomic.AddUint64((*uint64)(c), uint64(v))
}

func (c *StatCounter) Dec(v uint) uint64 {
	return atomic.AddUint64((*uint64)(c), ^uint64(v-1))
}

func (c *StatCounter) Get() uint64 {
	return atomic.LoadUint64((*uint64)(c))
}

// AllocStats holds the statistics of a backing allocator.
// TotalSize is the number of bytes currently handed out.
type AllocStats struct {
	TotalSize    StatCounter
	NewCalls     StatCounter
	ReallocCalls StatCounter
	FreeCalls    StatCounter
	Failures     StatCounter
	PoolHits     [PoolsNo]StatCounter
	PoolMiss     [PoolsNo]StatCounter
}

// Hits returns the sum of the pool hits for all the size classes.
func (s *AllocStats) Hits() uint64 {
	var n uint64
	for i := range s.PoolHits {
		n += s.PoolHits[i].Get()
	}
	return n
}

// Misses returns the sum of the pool misses for all the size classes.
func (s *AllocStats) Misses() uint64 {
	var n uint64
	for i := range s.PoolMiss {
		n += s.PoolMiss[i].Get()
	}
	return n
}
