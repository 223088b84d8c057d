// Copyright 2019-2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package alloccnt

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
)

// BlockOn runs f on the calling goroutine until it completes, waiting
// for the Waker between the steps.
// If ctx is done before f completes, f is abandoned and the context
// error is returned (wrapped).
func BlockOn[R any](ctx context.Context, f Future[R]) (R, error) {
	woken := make(chan struct{}, 1)
	w := NewWaker(func() {
		select {
		case woken <- struct{}{}:
		default:
		}
	})
	for n := 1; ; n++ {
		if p := f.Resume(w); p.Ready {
			return p.Value, nil
		}
		select {
		case <-woken:
		case <-ctx.Done():
			var zero R
			return zero, errors.Wrapf(ctx.Err(),
				"alloccnt: future abandoned after %d steps", n)
		}
	}
}

type poolTask struct {
	id     int
	fut    Future[struct{}]
	waker  *Waker
	queued bool // in the ready queue
	done   bool
}

// LocalPool is a cooperative executor: all the spawned futures are
// resumed, in turn, by the goroutine calling Run. While one of them is
// suspended the others run on the same goroutine, so their allocator
// calls do not end up in the suspended future's counts.
// Spawn and the wakers can be used from any goroutine.
type LocalPool struct {
	mu     sync.Mutex
	tasks  []*poolTask
	ready  []*poolTask
	live   int
	notify chan struct{}
}

// NewLocalPool returns an empty LocalPool.
func NewLocalPool() *LocalPool {
	return &LocalPool{notify: make(chan struct{}, 1)}
}

func (p *LocalPool) poke() {
	select {
	case p.notify <- struct{}{}:
	default:
	}
}

// unsafe, must be called with p.mu held.
func (p *LocalPool) enqueue(t *poolTask) {
	if t.done || t.queued {
		return
	}
	t.queued = true
	p.ready = append(p.ready, t)
}

// Spawn adds f to the pool. It will be first resumed by Run.
// It returns the task id (spawn order, starting from 0).
func (p *LocalPool) Spawn(f Future[struct{}]) int {
	p.mu.Lock()
	t := &poolTask{id: len(p.tasks), fut: f}
	t.waker = NewWaker(func() {
		p.mu.Lock()
		p.enqueue(t)
		p.mu.Unlock()
		p.poke()
	})
	p.tasks = append(p.tasks, t)
	p.live++
	p.enqueue(t)
	p.mu.Unlock()
	p.poke()
	return t.id
}

// Pending returns the number of spawned futures that did not complete.
func (p *LocalPool) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.live
}

// Run resumes the woken futures until all of them complete.
// If ctx is done first, the remaining futures are abandoned (they are
// dropped from the pool) and the wrapped context error is returned.
func (p *LocalPool) Run(ctx context.Context) error {
	for {
		p.mu.Lock()
		if p.live == 0 {
			p.mu.Unlock()
			return nil
		}
		// a task woken during its last step is still in the queue
		q := p.ready[:0]
		for _, t := range p.ready {
			t.queued = false
			if !t.done {
				q = append(q, t)
			}
		}
		p.ready = nil
		p.mu.Unlock()

		if len(q) == 0 {
			select {
			case <-p.notify:
				continue
			case <-ctx.Done():
				return p.abandon(ctx.Err())
			}
		}
		for _, t := range q {
			if !t.fut.Resume(t.waker).Ready {
				continue
			}
			p.mu.Lock()
			t.done = true
			p.live--
			p.mu.Unlock()
			if DBGon() {
				DBG("pool %p: task %d completed\n", p, t.id)
			}
		}
	}
}

func (p *LocalPool) abandon(err error) error {
	p.mu.Lock()
	n := p.live
	for _, t := range p.tasks {
		t.done = true
	}
	p.tasks = nil
	p.ready = nil
	p.live = 0
	p.mu.Unlock()
	return errors.Wrapf(err, "alloccnt: %d tasks abandoned", n)
}

// Discard adapts f for LocalPool.Spawn, dropping its result.
func Discard[R any](f Future[R]) Future[struct{}] {
	return FutureFunc[struct{}](func(w *Waker) Poll[struct{}] {
		if f.Resume(w).Ready {
			return Ready(struct{}{})
		}
		return Pending[struct{}]()
	})
}
