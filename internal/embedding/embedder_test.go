package embedding

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"

	"github.com/bull/docchat/internal/errs"
)

func TestClassify(t *testing.T) {
	rateLimit := &openai.Error{StatusCode: 429}

	tests := []struct {
		name        string
		err         error
		rateLimited bool
		want        error
	}{
		{"429 after retries exhausted", rateLimit, true, errs.ErrRateLimited},
		{"deadline exceeded", fmt.Errorf("embed: %w", context.DeadlineExceeded), false, errs.ErrTimeout},
		{"server error", &openai.Error{StatusCode: 503}, false, errs.ErrProvider},
		{"plain error", errors.New("connection reset"), false, errs.ErrProvider},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, errors.Is(classify(tt.err, tt.rateLimited), tt.want))
		})
	}
}

func TestIsRateLimitError(t *testing.T) {
	assert.True(t, isRateLimitError(&openai.Error{StatusCode: 429}))
	assert.True(t, isRateLimitError(fmt.Errorf("wrapped: %w", &openai.Error{StatusCode: 429})))
	assert.False(t, isRateLimitError(&openai.Error{StatusCode: 500}))
	assert.False(t, isRateLimitError(errors.New("not an api error")))
}

func TestToFloat32(t *testing.T) {
	got := toFloat32([]float64{0.5, -1, 0})
	assert.Equal(t, []float32{0.5, -1, 0}, got)
	assert.Empty(t, toFloat32(nil))
}
