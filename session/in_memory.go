package session

import (
	"sync"

	"github.com/vietlabor/lawrag/memory"
)

// Store resolves a session id to its memory buffer. Implementations must be
// safe for concurrent access across sessions.
type Store interface {
	// Get returns the buffer for the session, creating it lazily.
	Get(sessionID string) *memory.Buffer
	// Reset discards the conversation of the given session.
	Reset(sessionID string)
}

// InMemoryStore is a volatile Store implementation keeping buffers in a
// process-local map. Best suited for tests and single-process deployments;
// the engine never assumes durability.
type InMemoryStore struct {
	mu         sync.RWMutex
	buffers    map[string]*memory.Buffer
	tokenLimit int
}

var _ Store = (*InMemoryStore)(nil)

// NewInMemoryStore constructs an empty store whose buffers use the given
// token limit.
func NewInMemoryStore(tokenLimit int) *InMemoryStore {
	return &InMemoryStore{
		buffers:    make(map[string]*memory.Buffer),
		tokenLimit: tokenLimit,
	}
}

// Get returns an existing buffer or creates a new one lazily.
func (s *InMemoryStore) Get(sessionID string) *memory.Buffer {
	s.mu.RLock()
	if buf, ok := s.buffers[sessionID]; ok {
		s.mu.RUnlock()
		return buf
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if buf, ok := s.buffers[sessionID]; ok {
		return buf
	}
	buf := memory.NewBuffer(s.tokenLimit)
	s.buffers[sessionID] = buf
	return buf
}

// Reset clears the session's buffer if it exists.
func (s *InMemoryStore) Reset(sessionID string) {
	s.mu.RLock()
	buf, ok := s.buffers[sessionID]
	s.mu.RUnlock()
	if ok {
		buf.Reset()
	}
}
