// Package memory holds the append-only conversation history for one chat
// session.
package memory

import "sync"

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single utterance. Turns are never mutated after append.
type Turn struct {
	Role    Role
	Content string
}

// Memory is an ordered, append-only log of turns. Append is the only
// mutator; there is no size cap or eviction. Safe for concurrent use.
type Memory struct {
	mu    sync.RWMutex
	turns []Turn
}

// New creates an empty conversation memory.
func New() *Memory {
	return &Memory{}
}

// Append records a turn at the end of the history.
func (m *Memory) Append(turn Turn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = append(m.turns, turn)
}

// Turns returns a copy of the history in chronological order.
func (m *Memory) Turns() []Turn {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Turn, len(m.turns))
	copy(out, m.turns)
	return out
}

// Len returns the number of recorded turns.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.turns)
}
