package memory

import (
	"fmt"
	"strings"
	"sync"

	"github.com/vietlabor/lawrag/core"
)

// DefaultTokenLimit mirrors the production default for the conversation
// window.
const DefaultTokenLimit = 12000

// EstimateTokens returns a deterministic token-count estimate for text. It is
// not required to match any model's tokenizer, only to be monotonic in the
// input length so eviction decisions are stable. Roughly four characters per
// token, never less than one for non-empty text.
func EstimateTokens(text string) int {
	n := len([]rune(text))
	if n == 0 {
		return 0
	}
	return n/4 + 1
}

// Buffer is an ordered, append-only sequence of turns under a token budget.
// It is owned by exactly one session and mutated only after a turn fully
// completes. Safe for concurrent reads while another goroutine commits.
type Buffer struct {
	mu     sync.RWMutex
	turns  []core.Turn
	tokens int
	limit  int
}

// NewBuffer creates a buffer with the given token limit. A non-positive limit
// falls back to DefaultTokenLimit.
func NewBuffer(tokenLimit int) *Buffer {
	if tokenLimit <= 0 {
		tokenLimit = DefaultTokenLimit
	}
	return &Buffer{limit: tokenLimit}
}

// Put appends a turn and evicts from the oldest end until the running token
// estimate fits the limit again. A single turn that alone exceeds the limit
// is kept: the buffer never evicts below one turn.
func (b *Buffer) Put(turn core.Turn) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.turns = append(b.turns, turn)
	b.tokens += EstimateTokens(turn.Content)
	for b.tokens > b.limit && len(b.turns) > 1 {
		b.tokens -= EstimateTokens(b.turns[0].Content)
		b.turns = b.turns[1:]
	}
}

// Turns returns a copy of the buffered turns in order. Mutating the returned
// slice does not affect the buffer.
func (b *Buffer) Turns() []core.Turn {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]core.Turn, len(b.turns))
	copy(out, b.turns)
	return out
}

// TokenCount returns the current running token estimate.
func (b *Buffer) TokenCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tokens
}

// GetRecent renders the last n turns as a history block for prompt
// construction. Each turn's content is truncated to maxChars runes (no
// truncation when maxChars <= 0). Returns "" for an empty buffer.
func (b *Buffer) GetRecent(n, maxChars int) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.turns) == 0 || n <= 0 {
		return ""
	}
	start := len(b.turns) - n
	if start < 0 {
		start = 0
	}
	var sb strings.Builder
	for i, turn := range b.turns[start:] {
		if i > 0 {
			sb.WriteByte('\n')
		}
		label := "Người dùng"
		if turn.Role == core.RoleAssistant {
			label = "Trợ lý"
		}
		content := turn.Content
		if maxChars > 0 {
			if r := []rune(content); len(r) > maxChars {
				content = string(r[:maxChars]) + "..."
			}
		}
		fmt.Fprintf(&sb, "%s: %s", label, content)
	}
	return sb.String()
}

// Reset discards all turns and the running estimate.
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.turns = nil
	b.tokens = 0
}
