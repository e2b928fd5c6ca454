package random

import "sync"

// Sequence replays scripted values, clamped into the requested range.
// When the script runs out it keeps returning the lowest value of the range.
type Sequence struct {
	mu     sync.Mutex
	values []int
	pos    int
}

// NewSequence creates a scripted source.
func NewSequence(values ...int) *Sequence {
	return &Sequence{values: values}
}

// Push appends more scripted values.
func (s *Sequence) Push(values ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = append(s.values, values...)
}

// Remaining reports how many scripted values are unused.
func (s *Sequence) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.values) - s.pos
}

func (s *Sequence) next() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pos >= len(s.values) {
		return 0, false
	}
	v := s.values[s.pos]
	s.pos++
	return v, true
}

// Index returns the next scripted value modulo max.
func (s *Sequence) Index(max int) int {
	if max <= 0 {
		return 0
	}
	v, ok := s.next()
	if !ok {
		return 0
	}
	v %= max
	if v < 0 {
		v += max
	}
	return v
}

// InRange returns the next scripted value clamped to [min, max].
func (s *Sequence) InRange(min, max int) int {
	if max < min {
		return min
	}
	v, ok := s.next()
	if !ok || v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

var _ Source = (*Sequence)(nil)
