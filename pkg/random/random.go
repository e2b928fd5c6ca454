/*
Package random provides the uniform integer source used for every selection.

Secure reads from crypto/rand and uses rejection sampling so that each value of
the requested range is equally likely. Sequence replays a fixed script and exists
for deterministic tests.
*/
package random

import (
	"crypto/rand"
	"encoding/binary"
	"io"
	"sync"
)

// Source is the minimal contract consumers depend on.
type Source interface {
	// Index returns a value in [0, max). max <= 0 yields 0.
	Index(max int) int
	// InRange returns a value in [min, max]. max < min yields min.
	InRange(min, max int) int
}

// Secure draws from a cryptographic entropy source.
type Secure struct {
	mu     sync.Mutex
	reader io.Reader
	buf    [8]byte
}

// Option configures Secure.
type Option func(*Secure)

// WithReader replaces crypto/rand.Reader. Tests use it to inject a failing or scripted reader.
func WithReader(r io.Reader) Option {
	return func(s *Secure) {
		s.reader = r
	}
}

// NewSecure creates a Secure source.
func NewSecure(opts ...Option) *Secure {
	s := &Secure{reader: rand.Reader}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Index returns a uniform value in [0, max).
func (s *Secure) Index(max int) int {
	if max <= 0 {
		return 0
	}
	return int(s.uniform(uint64(max)))
}

// InRange returns a uniform value in [min, max].
func (s *Secure) InRange(min, max int) int {
	if max < min {
		return min
	}
	return min + int(s.uniform(uint64(max-min)+1))
}

// uniform returns a value in [0, n) without modulo bias.
// Draws at or above the largest multiple of n are rejected.
func (s *Secure) uniform(n uint64) uint64 {
	if n == 1 {
		return 0
	}
	limit := ^uint64(0) - (^uint64(0) % n)

	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		if _, err := io.ReadFull(s.reader, s.buf[:]); err != nil {
			// The kernel entropy source does not fail in practice; a broken reader is a programming error.
			panic("random: entropy source failed: " + err.Error())
		}
		v := binary.BigEndian.Uint64(s.buf[:])
		if v < limit {
			return v % n
		}
	}
}

var _ Source = (*Secure)(nil)
