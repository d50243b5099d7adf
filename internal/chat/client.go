// Package chat calls the hosted chat completion model.
package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go"

	"github.com/bull/docchat/internal/embedding"
	"github.com/bull/docchat/internal/errs"
)

const (
	// DefaultModel is cheap and fast enough for grounded Q&A, where the
	// retrieved context does most of the work.
	DefaultModel = "gpt-3.5-turbo"

	// DefaultTimeout bounds a single completion request.
	DefaultTimeout = 60 * time.Second
)

// Message is one prompt message in provider-neutral form.
type Message struct {
	Role    string // "system", "user" or "assistant"
	Content string
}

// Client generates chat completions with a fixed model and temperature.
type Client struct {
	client      *openai.Client
	model       string
	temperature float64
	timeout     time.Duration
}

// NewClient creates a chat client sharing the embedding package's OpenAI
// client. Zero model and timeout select the defaults; temperature 0 keeps
// answers deterministic-leaning, as the reference does.
func NewClient(shared *embedding.Client, model string, temperature float64, timeout time.Duration) *Client {
	if model == "" {
		model = DefaultModel
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		client:      shared.Client(),
		model:       model,
		temperature: temperature,
		timeout:     timeout,
	}
}

// Complete sends the composed messages to the model and returns its text.
// The call runs under a bounded deadline and is not retried.
func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages:    make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)),
		Model:       c.model,
		Temperature: openai.Float(c.temperature),
	}
	for _, msg := range messages {
		switch msg.Role {
		case "system":
			params.Messages = append(params.Messages, openai.SystemMessage(msg.Content))
		case "assistant":
			params.Messages = append(params.Messages, openai.AssistantMessage(msg.Content))
		default:
			params.Messages = append(params.Messages, openai.UserMessage(msg.Content))
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.Chat.Completions.New(callCtx, params)
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: model returned no choices", errs.ErrProvider)
	}
	return resp.Choices[0].Message.Content, nil
}

// classify maps a completion failure onto the shared error taxonomy.
func classify(err error) error {
	var apiErr *openai.Error
	switch {
	case errors.As(err, &apiErr) && apiErr.StatusCode == 429:
		return fmt.Errorf("%w: %v", errs.ErrRateLimited, err)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: chat call: %v", errs.ErrTimeout, err)
	default:
		return fmt.Errorf("%w: chat call: %v", errs.ErrProvider, err)
	}
}
