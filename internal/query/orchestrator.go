// Package query runs the retrieval-augmented answer step for one question.
package query

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bull/docchat/internal/chat"
	"github.com/bull/docchat/internal/errs"
	"github.com/bull/docchat/internal/memory"
	"github.com/bull/docchat/internal/prompt"
	"github.com/bull/docchat/internal/store"
)

// DefaultTopK keeps the retrieval window small: two chunks of context
// fit comfortably in the prompt alongside the conversation history.
const DefaultTopK = 2

// Embedder computes the query embedding.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Searcher serves nearest-neighbor search over the ingested index.
type Searcher interface {
	Search(ctx context.Context, embedding []float32, k int) ([]store.ScoredChunk, error)
}

// Model generates the answer from the composed prompt.
type Model interface {
	Complete(ctx context.Context, messages []chat.Message) (string, error)
}

// Session is the per-conversation context passed to Ask. Its lifecycle is
// owned by the serving layer: created on session start, discarded on
// session end. Queries within one session must run sequentially.
type Session struct {
	Memory *memory.Memory
}

// NewSession creates a session with empty conversation memory.
func NewSession() *Session {
	return &Session{Memory: memory.New()}
}

// Result is the answer to one question plus the chunks it was grounded on,
// in similarity order.
type Result struct {
	Answer  string
	Sources []store.Chunk
}

// Orchestrator answers questions over the index. Each call runs the fixed
// sequence embed -> retrieve -> compose -> model call; on success, and only
// then, the user and assistant turns are appended to the session memory, so
// a failed turn leaves the history untouched.
type Orchestrator struct {
	embedder Embedder
	searcher Searcher
	model    Model
	composer *prompt.Composer
	topK     int
	logger   *slog.Logger
}

// NewOrchestrator wires the query pipeline. topK <= 0 selects DefaultTopK.
func NewOrchestrator(embedder Embedder, searcher Searcher, model Model, composer *prompt.Composer, topK int, logger *slog.Logger) *Orchestrator {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		embedder: embedder,
		searcher: searcher,
		model:    model,
		composer: composer,
		topK:     topK,
		logger:   logger,
	}
}

// Ask answers one question within the given session.
func (o *Orchestrator) Ask(ctx context.Context, sess *Session, question string) (*Result, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: question is empty", errs.ErrConfiguration)
	}

	start := time.Now()

	queryEmbedding, err := o.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	hits, err := o.searcher.Search(ctx, queryEmbedding, o.topK)
	if err != nil {
		return nil, fmt.Errorf("retrieve context: %w", err)
	}

	messages := o.composer.Compose(hits, sess.Memory.Turns(), question)

	answer, err := o.model.Complete(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("model call: %w", err)
	}

	// Record the exchange only after a successful answer, user turn first.
	sess.Memory.Append(memory.Turn{Role: memory.RoleUser, Content: question})
	sess.Memory.Append(memory.Turn{Role: memory.RoleAssistant, Content: answer})

	sources := make([]store.Chunk, len(hits))
	for i, hit := range hits {
		sources[i] = hit.Chunk
	}

	o.logger.Debug("Answered question",
		"sources", len(sources),
		"history_turns", sess.Memory.Len(),
		"duration", time.Since(start),
	)

	return &Result{Answer: answer, Sources: sources}, nil
}
