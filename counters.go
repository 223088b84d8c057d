// Copyright 2019-2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package alloccnt

import (
	"fmt"
)

// Counters holds the number of allocations, reallocations and
// deallocations.
type Counters struct {
	Allocs   uint64
	Reallocs uint64
	Deallocs uint64
}

// Sub returns c - o, for each counter.
func (c Counters) Sub(o Counters) Counters {
	return Counters{
		Allocs:   c.Allocs - o.Allocs,
		Reallocs: c.Reallocs - o.Reallocs,
		Deallocs: c.Deallocs - o.Deallocs,
	}
}

// Add returns c + o, for each counter.
func (c Counters) Add(o Counters) Counters {
	return Counters{
		Allocs:   c.Allocs + o.Allocs,
		Reallocs: c.Reallocs + o.Reallocs,
		Deallocs: c.Deallocs + o.Deallocs,
	}
}

// IsZero returns true if all the counters are 0.
func (c Counters) IsZero() bool {
	return c == Counters{}
}

func (c Counters) String() string {
	return fmt.Sprintf("allocations: %d, reallocations: %d, deallocations: %d",
		c.Allocs, c.Reallocs, c.Deallocs)
}
