// Copyright 2019-2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package alloccnt

// Apply runs fn with the calling goroutine switched to mode m and
// panics with a *ViolationError if m is not Ignore and any allocator
// call was counted meanwhile. The previous mode is restored on return,
// also when fn panics (the panic is propagated and no check is made).
func Apply[R any](m Mode, fn func() R) R {
	r, err := Check(m, fn)
	if err != nil {
		ERR("%s\n", err)
		panic(err)
	}
	return r
}

// Check is like Apply, but it returns the *ViolationError instead of
// panicking. fn's result is returned in both cases.
func Check[R any](m Mode, fn func() R) (R, error) {
	checkMode(m)
	l := Current()
	Stats.Entered[m].Inc(1)
	g := l.Enter(m)
	defer g.Exit()
	d, r := measureIn(l, fn)
	if v := judge(m, d); v != nil {
		return r, v
	}
	return r, nil
}

// Allow runs fn without counting its allocator calls, unless an
// enclosing scope is a Forbid one.
func Allow[R any](fn func() R) R {
	return Apply(Ignore, fn)
}

// Deny runs fn and panics if it made any allocator call outside nested
// Allow scopes.
func Deny[R any](fn func() R) R {
	return Apply(Count, fn)
}

// Forbid runs fn and panics if it made any allocator call, nested Allow
// scopes included.
func Forbid[R any](fn func() R) R {
	return Apply(CountAll, fn)
}

func unit(fn func()) func() struct{} {
	return func() struct{} {
		fn()
		return struct{}{}
	}
}

// AllowFunc is Allow for functions without a result.
func AllowFunc(fn func()) {
	Apply(Ignore, unit(fn))
}

// DenyFunc is Deny for functions without a result.
func DenyFunc(fn func()) {
	Apply(Count, unit(fn))
}

// ForbidFunc is Forbid for functions without a result.
func ForbidFunc(fn func()) {
	Apply(CountAll, unit(fn))
}
