package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vietlabor/lawrag/core"
)

func TestInMemoryStore_GetCreatesLazily(t *testing.T) {
	s := NewInMemoryStore(0)

	buf := s.Get("s1")
	assert.NotNil(t, buf)
	// Same session resolves to the same buffer.
	assert.Same(t, buf, s.Get("s1"))
	// Different sessions are isolated.
	assert.NotSame(t, buf, s.Get("s2"))
}

func TestInMemoryStore_SessionsAreIsolated(t *testing.T) {
	s := NewInMemoryStore(0)
	s.Get("s1").Put(core.Turn{Role: core.RoleUser, Content: "xin chào"})

	assert.Len(t, s.Get("s1").Turns(), 1)
	assert.Empty(t, s.Get("s2").Turns())
}

func TestInMemoryStore_Reset(t *testing.T) {
	s := NewInMemoryStore(0)
	s.Get("s1").Put(core.Turn{Role: core.RoleUser, Content: "xin chào"})

	s.Reset("s1")
	assert.Empty(t, s.Get("s1").Turns())

	// Resetting an unknown session is a no-op.
	s.Reset("unknown")
}
