// Copyright 2019-2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package alloccnt

import (
	"github.com/intuitivelabs/alloccnt/mem"
)

// ScopeStats holds global scope statistics, indexed by the requested
// Mode. Unlike the counting state they are shared by all the goroutines
// (atomic counters).
type ScopeStats struct {
	Entered    [ModeBad]mem.StatCounter // scopes entered (sync & async)
	Violations [ModeBad]mem.StatCounter // scopes that failed
	Steps      mem.StatCounter          // async resumption steps
	Completed  mem.StatCounter          // async scopes run to completion
}

// Stats are the global scope statistics.
var Stats ScopeStats

// TotalViolations returns the number of violations for all the modes.
func (s *ScopeStats) TotalViolations() uint64 {
	var n uint64
	for i := range s.Violations {
		n += s.Violations[i].Get()
	}
	return n
}
