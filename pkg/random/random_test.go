package random

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSecure_Bounds(t *testing.T) {
	s := NewSecure()

	assert.Equal(t, 0, s.Index(0))
	assert.Equal(t, 0, s.Index(-3))
	assert.Equal(t, 0, s.Index(1))
	assert.Equal(t, 7, s.InRange(7, 2))
	assert.Equal(t, 4, s.InRange(4, 4))

	for i := 0; i < 1000; i++ {
		v := s.Index(6)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 6)

		r := s.InRange(180, 240)
		assert.GreaterOrEqual(t, r, 180)
		assert.LessOrEqual(t, r, 240)
	}
}

func TestSecure_CoversRange(t *testing.T) {
	s := NewSecure()
	seen := make(map[int]bool)
	for i := 0; i < 2000; i++ {
		seen[s.InRange(3, 10)] = true
	}
	for v := 3; v <= 10; v++ {
		assert.True(t, seen[v], "value %d never drawn", v)
	}
}

func TestSecure_RejectsBiasedDraws(t *testing.T) {
	// For n=3 the largest accepted draw is below MaxUint64 - (MaxUint64 % 3).
	// The first scripted word is the max value and must be rejected.
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.BigEndian, ^uint64(0))
	_ = binary.Write(&buf, binary.BigEndian, uint64(5))

	s := NewSecure(WithReader(&buf))
	assert.Equal(t, 2, s.Index(3))
}

func TestSequence(t *testing.T) {
	s := NewSequence(5, -1, 300, 1)

	assert.Equal(t, 1, s.Index(4))
	assert.Equal(t, 3, s.Index(4))
	assert.Equal(t, 240, s.InRange(180, 240))
	assert.Equal(t, 180, s.InRange(180, 240))
	assert.Equal(t, 0, s.Remaining())
	assert.Equal(t, 0, s.Index(9))
}
