// Copyright 2019-2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package alloccnt

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/intuitivelabs/alloccnt/mem"
)

func TestMeasureAllOps(t *testing.T) {
	needCounting(t)
	c := NewHeapCounter()
	d, v := Measure(func() int {
		b := c.Alloc(l8) // alloc
		b = c.Realloc(b, l8, 32)
		b[31] = 8
		v := int(b[31])
		c.Free(b, l8.WithSize(32))
		return v
	})
	if v != 8 {
		t.Errorf("wrong result %d, expected 8\n", v)
	}
	if exp := (Counters{1, 1, 1}); d != exp {
		t.Errorf("wrong counts %v, expected %v\n", d, exp)
	}
}

func TestMeasureExactCounts(t *testing.T) {
	needCounting(t)
	c := NewHeapCounter()
	for a := 0; a < 5; a++ {
		for r := 0; r < 5; r++ {
			for f := 0; f < 5; f++ {
				d := MeasureFunc(func() {
					for i := 0; i < a; i++ {
						c.Alloc(l8)
					}
					for i := 0; i < r; i++ {
						c.Realloc(nil, l8, 16)
					}
					for i := 0; i < f; i++ {
						c.Free(nil, l8)
					}
				})
				exp := Counters{uint64(a), uint64(r), uint64(f)}
				if d != exp {
					t.Errorf("wrong counts %v, expected %v\n", d, exp)
				}
			}
		}
	}
}

func TestCountersNeverDecrease(t *testing.T) {
	needCounting(t)
	c := NewHeapCounter()
	l := Current()
	prev := l.Counters()
	for i := 0; i < 100; i++ {
		switch i % 3 {
		case 0:
			c.Alloc(l8)
		case 1:
			c.Realloc(nil, l8, 8)
		case 2:
			c.Free(nil, l8)
		}
		crt := l.Counters()
		if crt.Allocs < prev.Allocs || crt.Reallocs < prev.Reallocs ||
			crt.Deallocs < prev.Deallocs {
			t.Fatalf("counters decreased: %v -> %v\n", prev, crt)
		}
		prev = crt
	}
}

func TestDenyAlloc(t *testing.T) {
	needCounting(t)
	c := NewHeapCounter()
	ve := catchViolation(t, func() {
		DenyFunc(func() { c.Alloc(l8) })
	})
	require.Equal(t, Counters{1, 0, 0}, ve.Counts)
	require.Equal(t, Count, ve.Mode)
	require.Contains(t, ve.Error(),
		"allocations: 1, reallocations: 0, deallocations: 0")
	require.Equal(t, Count, Current().Mode())
}

func TestDenyDeallocOnly(t *testing.T) {
	needCounting(t)
	c := NewHeapCounter()
	b := c.Alloc(l8)
	ve := catchViolation(t, func() {
		DenyFunc(func() { c.Free(b, l8) })
	})
	require.Equal(t, Counters{0, 0, 1}, ve.Counts)
}

func TestDenyNoAlloc(t *testing.T) {
	c := NewHeapCounter()
	b := c.Alloc(l8)
	v := Deny(func() int {
		b[0] = 42
		return int(b[0])
	})
	require.Equal(t, 42, v)
	require.Equal(t, 7, Forbid(func() int { return 7 }))
}

func TestAllowNeverFails(t *testing.T) {
	c := NewHeapCounter()
	n := Allow(func() int {
		for i := 0; i < 1000; i++ {
			b := c.Alloc(l8)
			b = c.Realloc(b, l8, 64)
			c.Free(b, l8.WithSize(64))
		}
		return 1000
	})
	require.Equal(t, 1000, n)
	// Ignore mode: nothing counted
	d := MeasureFunc(func() { AllowFunc(func() { c.Alloc(l8) }) })
	require.True(t, d.IsZero(), "counted in allow scope: %v", d)
}

func TestDenyNestedAllow(t *testing.T) {
	needCounting(t)
	c := NewHeapCounter()
	d := MeasureFunc(func() {
		DenyFunc(func() {
			AllowFunc(func() { c.Free(c.Alloc(l8), l8) })
		})
	})
	require.True(t, d.IsZero(), "counted in allow scope: %v", d)

	// only the calls outside the allow scope are reported
	ve := catchViolation(t, func() {
		DenyFunc(func() {
			AllowFunc(func() { c.Alloc(l8) })
			c.Realloc(nil, l8, 16)
		})
	})
	require.Equal(t, Counters{0, 1, 0}, ve.Counts)
}

func TestForbidNestedAllow(t *testing.T) {
	needCounting(t)
	c := NewHeapCounter()
	b := c.Alloc(l8)
	ve := catchViolation(t, func() {
		ForbidFunc(func() {
			AllowFunc(func() { c.Free(b, l8) })
		})
	})
	require.Equal(t, CountAll, ve.Mode)
	require.Equal(t, Counters{0, 0, 1}, ve.Counts)

	// deeper nesting, deny inside forbid
	ve = catchViolation(t, func() {
		ForbidFunc(func() {
			DenyFunc(func() {
				AllowFunc(func() {})
			})
			AllowFunc(func() {
				AllowFunc(func() { c.Alloc(l8) })
			})
		})
	})
	require.Equal(t, Counters{1, 0, 0}, ve.Counts)
}

func TestModeRestoredNested(t *testing.T) {
	l := Current()
	type level struct {
		m        Mode
		expected Mode // mode inside the scope
	}
	tests := [...][]level{
		{{Ignore, Ignore}, {Count, Count}, {Ignore, Ignore}},
		{{Count, Count}, {Ignore, Ignore}, {CountAll, CountAll},
			{Ignore, CountAll}, {Count, CountAll}},
		{{CountAll, CountAll}, {Ignore, CountAll}},
		{{Ignore, Ignore}, {Ignore, Ignore}, {Count, Count},
			{Count, Count}, {Ignore, Ignore}},
	}
	var run func(lv []level)
	run = func(lv []level) {
		if len(lv) == 0 {
			return
		}
		before := l.Mode()
		Apply(lv[0].m, func() struct{} {
			if l.Mode() != lv[0].expected {
				t.Errorf("wrong mode %v inside %v scope, expected %v\n",
					l.Mode(), lv[0].m, lv[0].expected)
			}
			run(lv[1:])
			return struct{}{}
		})
		if l.Mode() != before {
			t.Errorf("mode not restored: %v, expected %v\n", l.Mode(), before)
		}
	}
	for _, lv := range tests {
		run(lv)
		if l.Mode() != Count {
			t.Errorf("mode after scopes %v: %v\n", lv, l.Mode())
		}
	}
}

func TestModeRestoredOnPanic(t *testing.T) {
	l := Current()
	boom := errors.New("boom")
	for m := Ignore; m < ModeBad; m++ {
		AllowFunc(func() {
			require.PanicsWithError(t, "boom", func() {
				Apply(m, func() int { panic(boom) })
			})
			require.Equal(t, Ignore, l.Mode())
		})
		require.Equal(t, Count, l.Mode())
	}
	// the violation check is skipped when the body panics
	c := NewHeapCounter()
	func() {
		defer func() {
			r := recover()
			require.Equal(t, boom, r)
			require.Nil(t, AsViolation(r))
		}()
		DenyFunc(func() {
			c.Alloc(l8)
			panic(boom)
		})
	}()
	require.Equal(t, Count, l.Mode())
}

func TestCheck(t *testing.T) {
	needCounting(t)
	c := NewHeapCounter()
	v, err := Check(Count, func() int {
		c.Alloc(l8)
		return 3
	})
	require.Equal(t, 3, v)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrViolation))
	require.Equal(t, Counters{1, 0, 0}, AsViolation(err).Counts)

	v, err = Check(Ignore, func() int {
		c.Alloc(l8)
		return 4
	})
	require.NoError(t, err)
	require.Equal(t, 4, v)
}

func TestCheckStats(t *testing.T) {
	needCounting(t)
	c := NewHeapCounter()
	entered := Stats.Entered[CountAll].Get()
	violations := Stats.Violations[CountAll].Get()
	_, err := Check(CountAll, func() struct{} {
		c.Alloc(l8)
		return struct{}{}
	})
	require.Error(t, err)
	// other tests might run in parallel
	require.GreaterOrEqual(t, Stats.Entered[CountAll].Get(), entered+1)
	require.GreaterOrEqual(t, Stats.Violations[CountAll].Get(), violations+1)
	require.GreaterOrEqual(t, Stats.TotalViolations(), violations+1)
}

func TestInvalidMode(t *testing.T) {
	require.Panics(t, func() { Apply(ModeBad, func() int { return 0 }) })
	require.Equal(t, Count, Current().Mode())
}

func TestFailedAllocCounted(t *testing.T) {
	needCounting(t)
	c := NewCounter(&mem.Heap{MaxSize: 4})
	var b []byte
	d := MeasureFunc(func() {
		b = c.Alloc(l8)
	})
	require.Nil(t, b)
	require.Equal(t, Counters{1, 0, 0}, d)
	ve := catchViolation(t, func() {
		DenyFunc(func() { c.Realloc(nil, l8, 1024) })
	})
	require.Equal(t, Counters{0, 1, 0}, ve.Counts)
}

func TestGuardEnterExit(t *testing.T) {
	l := Current()
	g1 := l.Enter(Ignore)
	require.Equal(t, Count, g1.Restores())
	g2 := l.Enter(CountAll)
	require.Equal(t, Ignore, g2.Restores())
	g3 := l.Enter(Ignore)
	require.Equal(t, CountAll, g3.Restores())
	require.Equal(t, CountAll, l.Mode())
	g3.Exit()
	require.Equal(t, CountAll, l.Mode())
	g2.Exit()
	require.Equal(t, Ignore, l.Mode())
	g1.Exit()
	require.Equal(t, Count, l.Mode())
}

func TestGoroutineIsolation(t *testing.T) {
	needCounting(t)
	c := NewCounter(mem.NewPool(0))
	var g errgroup.Group
	for i := 0; i < 16; i++ {
		i := i
		g.Go(func() error {
			defer Release()
			if Current().Mode() != Count {
				return errors.Newf("goroutine %d: wrong initial mode %v",
					i, Current().Mode())
			}
			if i%2 == 0 {
				// must not see the calls made by the other goroutines
				_, err := Check(Count, func() struct{} {
					for j := 0; j < 1000; j++ {
						_ = j * i
					}
					return struct{}{}
				})
				return err
			}
			d := MeasureFunc(func() {
				for j := 0; j < 100*i; j++ {
					c.Free(c.Alloc(l8), l8)
				}
			})
			if exp := (Counters{uint64(100 * i), 0, uint64(100 * i)}); d != exp {
				return errors.Newf("goroutine %d: counts %v, expected %v",
					i, d, exp)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}

func TestRelease(t *testing.T) {
	needCounting(t)
	c := NewHeapCounter()
	done := make(chan *Local)
	go func() {
		l := Current()
		c.Alloc(l8)
		Release()
		l2 := Current()
		if l2 == l || !l2.Counters().IsZero() || l2.Mode() != Count {
			l2 = nil
		}
		Release()
		done <- l2
	}()
	require.NotNil(t, <-done)
}

func TestReleaseInsideScope(t *testing.T) {
	done := make(chan bool)
	go func() {
		l := Current()
		var inside bool
		DenyFunc(func() {
			inside = Release()
		})
		ok := !inside && Current() == l && l.Goroutine() > 0 && Release()
		done <- ok
	}()
	if !<-done {
		t.Errorf("state released from inside a scope\n")
	}
}
