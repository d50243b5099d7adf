// Package embedding maps text to fixed-dimension vectors via the OpenAI
// embeddings API.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/openai/openai-go"

	"github.com/bull/docchat/internal/errs"
)

const (
	// DefaultModel is the embedding model used unless configured otherwise.
	DefaultModel = "text-embedding-3-small"

	// Dimension is the vector size produced by text-embedding-3-small.
	// All embeddings in one index share this dimensionality.
	Dimension = 1536

	// DefaultBatchSize balances requests-per-minute vs tokens-per-minute
	// rate limits. The API accepts up to 2048 texts per request.
	DefaultBatchSize = 500

	// DefaultTimeout bounds a single embeddings request.
	DefaultTimeout = 30 * time.Second
)

// Embedder generates embeddings, batching texts into as few provider calls
// as possible and retrying rate-limited batches with exponential backoff.
type Embedder struct {
	client    *Client
	model     string
	batchSize int
	timeout   time.Duration
}

// NewEmbedder creates an Embedder. Zero values select DefaultModel,
// DefaultBatchSize and DefaultTimeout.
func NewEmbedder(client *Client, model string, batchSize int, timeout time.Duration) *Embedder {
	if model == "" {
		model = DefaultModel
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Embedder{
		client:    client,
		model:     model,
		batchSize: batchSize,
		timeout:   timeout,
	}
}

// EmbedBatch generates one embedding per input text, preserving order.
// Texts are processed in batches; the first failed batch aborts the call.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var all [][]float32

	for i := 0; i < len(texts); i += e.batchSize {
		end := min(i+e.batchSize, len(texts))
		batch := texts[i:end]

		embeddings, err := e.embedWithRetry(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("batch %d-%d: %w", i, end, err)
		}
		all = append(all, embeddings...)
	}

	return all, nil
}

// EmbedQuery generates the embedding for a single query text.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := e.embedWithRetry(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// embedWithRetry runs a single embeddings request under a bounded deadline,
// retrying with exponential backoff on rate limit errors (HTTP 429). Other
// errors are permanent and fail immediately.
func (e *Embedder) embedWithRetry(ctx context.Context, texts []string) ([][]float32, error) {
	var embeddings [][]float32
	rateLimited := false

	operation := func() error {
		callCtx, cancel := context.WithTimeout(ctx, e.timeout)
		defer cancel()

		resp, err := e.client.client.Embeddings.New(callCtx, openai.EmbeddingNewParams{
			Input: openai.EmbeddingNewParamsInputUnion{
				OfArrayOfStrings: texts,
			},
			Model: e.model,
		})
		if err != nil {
			if isRateLimitError(err) {
				rateLimited = true
				return err // retried with backoff
			}
			return backoff.Permanent(err)
		}

		if len(resp.Data) != len(texts) {
			return backoff.Permanent(fmt.Errorf("got %d embeddings for %d texts", len(resp.Data), len(texts)))
		}

		embeddings = make([][]float32, len(resp.Data))
		for i, data := range resp.Data {
			embeddings[i] = toFloat32(data.Embedding)
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return nil, classify(err, rateLimited)
	}
	return embeddings, nil
}

// classify maps a provider failure onto the shared error taxonomy.
func classify(err error, rateLimited bool) error {
	switch {
	case rateLimited && isRateLimitError(err):
		return fmt.Errorf("%w: %v", errs.ErrRateLimited, err)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: embedding call: %v", errs.ErrTimeout, err)
	default:
		return fmt.Errorf("%w: embedding call: %v", errs.ErrProvider, err)
	}
}

// isRateLimitError reports whether err is an HTTP 429 from the provider.
func isRateLimitError(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}

// toFloat32 converts the API's float64 vectors to the float32 layout the
// stores use.
func toFloat32(f64 []float64) []float32 {
	f32 := make([]float32, len(f64))
	for i, v := range f64 {
		f32[i] = float32(v)
	}
	return f32
}
