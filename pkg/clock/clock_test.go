package clock

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManual_RunsInDueOrder(t *testing.T) {
	m := NewManual(time.Unix(0, 0))
	var got []string

	m.AfterFunc(300*time.Millisecond, func() { got = append(got, "c") })
	m.AfterFunc(100*time.Millisecond, func() {
		got = append(got, "a")
		m.AfterFunc(50*time.Millisecond, func() { got = append(got, "b") })
	})
	stopped := m.AfterFunc(200*time.Millisecond, func() { got = append(got, "never") })
	assert.True(t, stopped.Stop())
	assert.False(t, stopped.Stop())

	m.Advance(120 * time.Millisecond)
	assert.Equal(t, []string{"a"}, got)
	assert.Equal(t, 120*time.Millisecond, m.Elapsed())

	m.Advance(time.Second)
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Equal(t, 0, m.Pending())
	assert.Equal(t, 1120*time.Millisecond, m.Elapsed())
}

func TestManual_NowInsideCallback(t *testing.T) {
	m := NewManual(time.Unix(0, 0))
	var at time.Duration
	m.AfterFunc(250*time.Millisecond, func() { at = m.Elapsed() })
	m.Advance(time.Second)
	assert.Equal(t, 250*time.Millisecond, at)
}

func TestManual_RunAll(t *testing.T) {
	m := NewManual(time.Unix(0, 0))
	var ticks int
	var tick func()
	tick = func() {
		ticks++
		if ticks < 5 {
			m.AfterFunc(time.Second, tick)
		}
	}
	m.AfterFunc(time.Second, tick)
	m.RunAll(time.Minute)
	assert.Equal(t, 5, ticks)
	assert.Equal(t, 5*time.Second, m.Elapsed())
}

func TestLoop_SerializesWork(t *testing.T) {
	l := NewLoop()
	defer l.Close()

	counter := 0
	for i := 0; i < 100; i++ {
		l.Post(func() { counter++ })
	}
	var got int
	require.NoError(t, l.Do(context.Background(), func() { got = counter }))
	assert.Equal(t, 100, got)
}

func TestLoop_TimerRunsOnLoop(t *testing.T) {
	l := NewLoop()
	defer l.Close()

	fired := make(chan struct{})
	l.AfterFunc(10*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not fire")
	}
}

func TestLoop_StopPreventsCallback(t *testing.T) {
	l := NewLoop()
	defer l.Close()

	var fired atomic.Bool
	timer := l.AfterFunc(20*time.Millisecond, func() { fired.Store(true) })
	assert.True(t, timer.Stop())

	time.Sleep(60 * time.Millisecond)
	require.NoError(t, l.Do(context.Background(), func() {}))
	assert.False(t, fired.Load())
}

func TestLoop_RecoversPanics(t *testing.T) {
	l := NewLoop()
	defer l.Close()

	l.Post(func() { panic("boom") })
	ran := false
	require.NoError(t, l.Do(context.Background(), func() { ran = true }))
	assert.True(t, ran)
}

func TestLoop_Closed(t *testing.T) {
	l := NewLoop()
	require.NoError(t, l.Close())
	require.NoError(t, l.Close())

	assert.False(t, l.Post(func() {}))
	assert.ErrorIs(t, l.Do(context.Background(), func() {}), ErrClosed)
}
