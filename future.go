// Copyright 2019-2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package alloccnt

import (
	"github.com/cockroachdb/errors"
)

// Poll is the outcome of one resumption step of a Future.
type Poll[R any] struct {
	Value R    // valid only if Ready
	Ready bool // false: suspended, resume after the Waker is called
}

// Ready returns a completed Poll with value v.
func Ready[R any](v R) Poll[R] {
	return Poll[R]{Value: v, Ready: true}
}

// Pending returns a suspended Poll.
func Pending[R any]() Poll[R] {
	return Poll[R]{}
}

// Waker is passed to Future.Resume. A future returning Pending must make
// sure Wake is called (from any goroutine) when it can make progress.
type Waker struct {
	wake func()
}

// NewWaker returns a Waker calling f on Wake.
func NewWaker(f func()) *Waker {
	return &Waker{wake: f}
}

// Wake signals the executor that the future should be resumed.
func (w *Waker) Wake() {
	if w != nil && w.wake != nil {
		w.wake()
	}
}

// Future is a suspendable computation, written as an explicit state
// machine. Each call to Resume runs one step: until the next suspension
// point (Pending) or until completion (Ready).
// Resume must not be called again after it returned Ready.
type Future[R any] interface {
	Resume(w *Waker) Poll[R]
}

// FutureFunc adapts a step function to the Future interface.
type FutureFunc[R any] func(w *Waker) Poll[R]

// Resume implements Future.
func (f FutureFunc[R]) Resume(w *Waker) Poll[R] {
	return f(w)
}

// Measured is the result of a counted future.
type Measured[R any] struct {
	Counts Counters // calls made during all the resumption steps
	Value  R
}

// Counted wraps a future and sums the allocator calls made during each
// of its resumption steps. Calls made while it is suspended are not
// included.
type Counted[R any] struct {
	fut   Future[R]
	total Counters
	done  bool
}

// CountFuture returns a future that resolves to f's result and the
// allocator calls counted while f was running.
func CountFuture[R any](f Future[R]) *Counted[R] {
	return &Counted[R]{fut: f}
}

// Resume implements Future.
func (c *Counted[R]) Resume(w *Waker) Poll[Measured[R]] {
	if c.done {
		BUG("counted future %p resumed after completion\n", c)
		panic(errors.AssertionFailedf("alloccnt: future resumed after completion"))
	}
	d, p := Measure(func() Poll[R] { return c.fut.Resume(w) })
	c.total = c.total.Add(d)
	if !p.Ready {
		return Pending[Measured[R]]()
	}
	c.done = true
	return Ready(Measured[R]{Counts: c.total, Value: p.Value})
}

// Total returns the calls counted so far.
func (c *Counted[R]) Total() Counters {
	return c.total
}

// Done returns true if the wrapped future completed.
func (c *Counted[R]) Done() bool {
	return c.done
}

type guardedFuture[R any] struct {
	mode  Mode
	inner *Counted[R]
}

// GuardFuture is the async version of Apply. Each resumption step of
// the returned future runs with the resuming goroutine switched to mode
// m; the mode is restored at the end of the step, so it is not held
// while f is suspended. When f completes the calls summed over all
// the steps are checked like in Apply and a *ViolationError panic is
// raised on failure.
// A future that is never run to completion is not checked.
func GuardFuture[R any](m Mode, f Future[R]) Future[R] {
	checkMode(m)
	Stats.Entered[m].Inc(1)
	return &guardedFuture[R]{mode: m, inner: CountFuture(f)}
}

// Resume implements Future.
func (g *guardedFuture[R]) Resume(w *Waker) Poll[R] {
	Stats.Steps.Inc(1)
	gd := Current().Enter(g.mode)
	defer gd.Exit()
	p := g.inner.Resume(w)
	if !p.Ready {
		return Pending[R]()
	}
	Stats.Completed.Inc(1)
	if v := judge(g.mode, p.Value.Counts); v != nil {
		ERR("%s\n", v)
		panic(v)
	}
	return Ready(p.Value.Value)
}

// AllowFuture is the async version of Allow.
func AllowFuture[R any](f Future[R]) Future[R] {
	return GuardFuture(Ignore, f)
}

// DenyFuture is the async version of Deny.
func DenyFuture[R any](f Future[R]) Future[R] {
	return GuardFuture(Count, f)
}

// ForbidFuture is the async version of Forbid.
func ForbidFuture[R any](f Future[R]) Future[R] {
	return GuardFuture(CountAll, f)
}
