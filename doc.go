// Copyright 2019-2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

// Package alloccnt counts the allocator calls (allocations,
// reallocations and deallocations) made by a goroutine and checks that
// code sections do not allocate.
//
// The calls are made through a Counter, an allocator wrapping a backing
// mem.Allocator (go heap, pools, arrow allocators). Each goroutine has
// its own Mode and Counters (see Current), so no locking is needed and
// goroutines never see each other's calls.
//
// Scopes:
//
//	Measure(fn)  counts the calls made by fn
//	Allow(fn)    fn's calls are not counted (Ignore)
//	Deny(fn)     panics if fn makes calls outside nested Allow scopes
//	Forbid(fn)   panics if fn makes any call, nested Allow scopes included
//
// A failed scope panics with a *ViolationError holding the offending
// counts; Check returns it as an error instead.
//
// The async versions (CountFuture, AllowFuture, DenyFuture,
// ForbidFuture) work on Futures, explicit state machines resumed step by
// step (BlockOn, LocalPool). The mode is set only while a step runs and
// the counts of all the steps are summed, so work done by other futures
// while one is suspended is not attributed to it.
package alloccnt
