// Copyright 2019-2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package alloccnt

import (
	"github.com/cockroachdb/errors"
	"github.com/intuitivelabs/bytescase"
)

// Mode controls how the allocator calls made by a goroutine are counted.
type Mode uint8

// allocation counting modes
const (
	// Ignore: do not count (unless an enclosing scope is in CountAll).
	Ignore Mode = iota
	// Count: count the calls (default for every goroutine).
	Count
	// CountAll: count the calls even if nested code tries to switch
	// to Ignore.
	CountAll
	ModeBad // invalid, keep last
)

var mode2Name = [ModeBad + 1]string{
	Ignore:   "ignore",
	Count:    "count",
	CountAll: "count-all",
	ModeBad:  "invalid",
}

// Name returns the mode name.
func (m Mode) Name() string {
	if m > ModeBad {
		m = ModeBad
	}
	return mode2Name[m]
}

func (m Mode) String() string {
	return m.Name()
}

// Scope returns the name of the scope function installing the mode.
func (m Mode) Scope() string {
	switch m {
	case Ignore:
		return "allow"
	case Count:
		return "deny"
	case CountAll:
		return "forbid"
	}
	return "invalid"
}

// mode names accepted by ParseMode, besides the canonical ones.
var modeAliases = [...]struct {
	n []byte
	m Mode
}{
	{[]byte("ignore"), Ignore},
	{[]byte("allow"), Ignore},
	{[]byte("count"), Count},
	{[]byte("deny"), Count},
	{[]byte("count-all"), CountAll},
	{[]byte("countall"), CountAll},
	{[]byte("forbid"), CountAll},
}

// ParseMode converts a case-insensitive mode name ("ignore", "count",
// "count-all") or scope name ("allow", "deny", "forbid") to a Mode.
func ParseMode(s []byte) (Mode, error) {
	for _, a := range modeAliases {
		if bytescase.CmpEq(a.n, s) {
			return a.m, nil
		}
	}
	return ModeBad, errors.Newf("alloccnt: unknown mode %q", s)
}
