// Package prompt assembles the model prompt from retrieved context and
// conversation history.
//
// The template is deliberately explicit and exported so prompt content is a
// reviewable contract rather than a library default.
package prompt

import (
	"fmt"
	"strings"

	"github.com/bull/docchat/internal/chat"
	"github.com/bull/docchat/internal/memory"
	"github.com/bull/docchat/internal/store"
)

// SystemTemplate is the system instruction. The first placeholder is the
// assistant name, the second the retrieved context block.
const SystemTemplate = `You are the %s assistant. Answer the question using only the context below. If the context does not contain the answer, say that you don't know. Keep answers short and factual.

Context:
%s`

// ContextSeparator joins retrieved chunk texts inside the context block.
const ContextSeparator = "\n\n---\n\n"

// Composer builds the message sequence sent to the chat model.
type Composer struct {
	assistant string
}

// NewComposer creates a Composer branded with the given assistant name.
func NewComposer(assistant string) *Composer {
	if assistant == "" {
		assistant = "support"
	}
	return &Composer{assistant: assistant}
}

// Compose builds the full prompt: one system message carrying the retrieved
// chunks in similarity order, then the conversation history in chronological
// order, then the new question as the final user message.
func (c *Composer) Compose(chunks []store.ScoredChunk, history []memory.Turn, question string) []chat.Message {
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}
	contextBlock := strings.Join(texts, ContextSeparator)

	messages := make([]chat.Message, 0, len(history)+2)
	messages = append(messages, chat.Message{
		Role:    "system",
		Content: fmt.Sprintf(SystemTemplate, c.assistant, contextBlock),
	})
	for _, turn := range history {
		messages = append(messages, chat.Message{
			Role:    string(turn.Role),
			Content: turn.Content,
		})
	}
	messages = append(messages, chat.Message{Role: "user", Content: question})

	return messages
}
