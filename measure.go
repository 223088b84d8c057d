// Copyright 2019-2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package alloccnt

// Measure runs fn and returns the allocator calls counted on the
// calling goroutine while it ran, together with fn's result.
// It does not change the mode: calls made in Ignore mode are not seen.
func Measure[R any](fn func() R) (Counters, R) {
	return measureIn(Current(), fn)
}

// MeasureFunc is Measure for functions without a result.
func MeasureFunc(fn func()) Counters {
	d, _ := measureIn(Current(), func() struct{} {
		fn()
		return struct{}{}
	})
	return d
}

func measureIn[R any](l *Local, fn func() R) (Counters, R) {
	before := l.counts
	r := fn()
	return l.counts.Sub(before), r
}
