package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemory_AppendPreservesOrder(t *testing.T) {
	m := New()
	assert.Equal(t, 0, m.Len())

	m.Append(Turn{Role: RoleUser, Content: "What services do you offer?"})
	m.Append(Turn{Role: RoleAssistant, Content: "AI consulting, chatbots and data analysis."})
	m.Append(Turn{Role: RoleUser, Content: "Tell me about the first one."})

	turns := m.Turns()
	assert.Len(t, turns, 3)
	assert.Equal(t, RoleUser, turns[0].Role)
	assert.Equal(t, RoleAssistant, turns[1].Role)
	assert.Equal(t, "Tell me about the first one.", turns[2].Content)
}

func TestMemory_TurnsReturnsCopy(t *testing.T) {
	m := New()
	m.Append(Turn{Role: RoleUser, Content: "hello"})

	turns := m.Turns()
	turns[0].Content = "mutated"

	assert.Equal(t, "hello", m.Turns()[0].Content)
}
