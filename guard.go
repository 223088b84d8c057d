// Copyright 2019-2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package alloccnt

// Guard restores the mode saved by Local.Enter. It should always be
// released with a deferred Exit so that the mode is restored on every
// return path, panics included:
//
//	g := alloccnt.Current().Enter(alloccnt.Count)
//	defer g.Exit()
type Guard struct {
	l       *Local
	restore Mode
}

// Enter switches l to mode m and returns a Guard for restoring the
// previous mode.
// If l is in CountAll mode it stays in CountAll, whatever m is, and the
// returned Guard will restore CountAll.
func (l *Local) Enter(m Mode) Guard {
	prev := l.mode
	l.depth++
	if prev == CountAll {
		return Guard{l: l, restore: CountAll}
	}
	l.mode = m
	return Guard{l: l, restore: prev}
}

// Exit restores the mode saved when the guard was created.
func (g Guard) Exit() {
	g.l.mode = g.restore
	g.l.depth--
}

// Restores returns the mode that Exit will restore.
func (g Guard) Restores() Mode {
	return g.restore
}
