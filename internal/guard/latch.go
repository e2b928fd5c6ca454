// Package guard provides the single-flight latches that keep a session's grid
// transitions and reveals from overlapping.
package guard

import "sync/atomic"

// Latch is a boolean flag acquired by at most one operation at a time.
// A request that finds it held is dropped, never queued.
type Latch struct {
	held atomic.Bool
}

// TryAcquire takes the latch and reports whether it was free.
func (l *Latch) TryAcquire() bool {
	return l.held.CompareAndSwap(false, true)
}

// Release frees the latch. Releasing a free latch is a no-op.
func (l *Latch) Release() {
	l.held.Store(false)
}

// Held reports whether an operation owns the latch.
func (l *Latch) Held() bool {
	return l.held.Load()
}

// Guards bundles the two latches owned by a session.
type Guards struct {
	Transition Latch
	Reveal     Latch
}

// Busy reports whether either operation is running.
func (g *Guards) Busy() bool {
	return g.Transition.Held() || g.Reveal.Held()
}
