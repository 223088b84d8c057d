// Copyright 2019-2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package alloccnt

import (
	"testing"

	"github.com/intuitivelabs/alloccnt/mem"
)

var l8 = mem.NewLayout(8)

func needCounting(t *testing.T) {
	t.Helper()
	if !Enabled {
		t.Skip("counting compiled out (alloccnt_off)")
	}
}

// catchViolation runs fn and returns the *ViolationError it panicked
// with. The test fails if fn returns normally or panics with something
// else.
func catchViolation(t *testing.T, fn func()) (ve *ViolationError) {
	t.Helper()
	defer func() {
		r := recover()
		ve = AsViolation(r)
		if ve == nil {
			t.Fatalf("expected a violation panic, got %v", r)
		}
	}()
	fn()
	return nil
}

// steps returns a future running fns[i] on the i-th resumption step.
// All the steps but the last one suspend (waking themselves), the last
// one completes with the number of steps.
func steps(fns ...func()) Future[int] {
	i := 0
	return FutureFunc[int](func(w *Waker) Poll[int] {
		fns[i]()
		i++
		if i < len(fns) {
			w.Wake()
			return Pending[int]()
		}
		return Ready(i)
	})
}
