// Copyright 2019-2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package alloccnt

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrViolation matches (errors.Is) every *ViolationError.
var ErrViolation = errors.New("alloccnt: allocation violation")

// ViolationError is the panic value of a Deny or Forbid scope (or its
// async version) in which allocator calls were counted. It is also
// returned by Check.
type ViolationError struct {
	Mode   Mode     // mode requested by the failed scope
	Counts Counters // offending calls
}

func (e *ViolationError) Error() string {
	return fmt.Sprintf("alloccnt: %s scope violated: %s",
		e.Mode.Scope(), e.Counts)
}

// Unwrap makes errors.Is(err, ErrViolation) true.
func (e *ViolationError) Unwrap() error {
	return ErrViolation
}

// AsViolation returns the *ViolationError inside err (or a recovered
// panic value), or nil.
func AsViolation(v interface{}) *ViolationError {
	err, ok := v.(error)
	if !ok {
		return nil
	}
	var ve *ViolationError
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}

func checkMode(m Mode) {
	if m >= ModeBad {
		panic(errors.AssertionFailedf("alloccnt: invalid mode %d", m))
	}
}

// judge returns a *ViolationError if d is not acceptable for a scope
// with mode m, nil otherwise.
func judge(m Mode, d Counters) *ViolationError {
	if m == Ignore || d.IsZero() {
		return nil
	}
	Stats.Violations[m].Inc(1)
	return &ViolationError{Mode: m, Counts: d}
}
