package clock

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/letluck/pkg/ports"
)

// Manual is a virtual clock. Time only moves when Advance is called.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	start  time.Time
	seq    int
	timers []*manualTimer
}

// NewManual creates a Manual clock starting at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start, start: start}
}

type manualTimer struct {
	m       *Manual
	due     time.Time
	seq     int
	fn      func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// Now returns the virtual time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Elapsed returns the virtual time passed since creation.
func (m *Manual) Elapsed() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now.Sub(m.start)
}

// AfterFunc registers fn to run when virtual time reaches now+d.
func (m *Manual) AfterFunc(d time.Duration, fn func()) ports.Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTimer{m: m, due: m.now.Add(d), seq: m.seq, fn: fn}
	m.timers = append(m.timers, t)
	return t
}

// next pops the earliest live timer due at or before target.
func (m *Manual) next(target time.Time) *manualTimer {
	m.mu.Lock()
	defer m.mu.Unlock()

	live := m.timers[:0]
	for _, t := range m.timers {
		if !t.stopped {
			live = append(live, t)
		}
	}
	m.timers = live
	if len(m.timers) == 0 {
		return nil
	}
	sort.SliceStable(m.timers, func(i, j int) bool {
		if m.timers[i].due.Equal(m.timers[j].due) {
			return m.timers[i].seq < m.timers[j].seq
		}
		return m.timers[i].due.Before(m.timers[j].due)
	})
	t := m.timers[0]
	if t.due.After(target) {
		return nil
	}
	m.timers = m.timers[1:]
	t.stopped = true
	if t.due.After(m.now) {
		m.now = t.due
	}
	return t
}

// Advance moves virtual time forward by d, running due callbacks in order.
// Callbacks scheduled by callbacks run too if they fall inside the window.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		t := m.next(target)
		if t == nil {
			break
		}
		t.fn()
	}

	m.mu.Lock()
	if target.After(m.now) {
		m.now = target
	}
	m.mu.Unlock()
}

// RunAll advances until no timer is pending, bounded by limit.
func (m *Manual) RunAll(limit time.Duration) {
	deadline := m.Now().Add(limit)
	for m.Pending() > 0 {
		m.mu.Lock()
		earliest := time.Time{}
		for _, t := range m.timers {
			if !t.stopped && (earliest.IsZero() || t.due.Before(earliest)) {
				earliest = t.due
			}
		}
		now := m.now
		m.mu.Unlock()
		if earliest.IsZero() || earliest.After(deadline) {
			return
		}
		m.Advance(earliest.Sub(now))
	}
}

// Pending returns the number of live timers.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

// Do runs fn inline.
func (m *Manual) Do(ctx context.Context, fn func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fn()
	return nil
}

var (
	_ ports.Scheduler = (*Manual)(nil)
	_ ports.Executor  = (*Manual)(nil)
)
