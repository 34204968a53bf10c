// internal/llm/client_test.go
package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"search-orchestrator/internal/retrieval"
)

// fakeModel captures the applied call options of the last generation call.
type fakeModel struct {
	opts  llms.CallOptions
	reply string
}

func (m *fakeModel) GenerateContent(_ context.Context, _ []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.opts = llms.CallOptions{}
	for _, opt := range options {
		opt(&m.opts)
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: m.reply}},
	}, nil
}

func (m *fakeModel) Call(context.Context, string, ...llms.CallOption) (string, error) {
	return m.reply, nil
}

func floatPtr(v float64) *float64 { return &v }

func TestClient_Complete_TemperatureHandling(t *testing.T) {
	tests := []struct {
		name     string
		opt      *float64
		expected float64
	}{
		{
			name:     "nil defers to configured default",
			opt:      nil,
			expected: 0.3,
		},
		{
			name:     "explicit zero is honored",
			opt:      floatPtr(0),
			expected: 0,
		},
		{
			name:     "explicit value overrides default",
			opt:      floatPtr(0.7),
			expected: 0.7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := &fakeModel{reply: "ok"}
			client := &Client{model: model, temperature: 0.3}

			reply, err := client.Complete(context.Background(), "prompt", retrieval.CompleteOptions{
				Temperature: tt.opt,
			})

			require.NoError(t, err)
			assert.Equal(t, "ok", reply)
			assert.Equal(t, tt.expected, model.opts.Temperature)
		})
	}
}

func TestClient_Complete_AppliesTokenAndJSONOptions(t *testing.T) {
	model := &fakeModel{reply: `{"answered": true}`}
	client := &Client{model: model, temperature: 0.3}

	_, err := client.Complete(context.Background(), "prompt", retrieval.CompleteOptions{
		MaxTokens: 512,
		JSONMode:  true,
	})

	require.NoError(t, err)
	assert.Equal(t, 512, model.opts.MaxTokens)
	assert.True(t, model.opts.JSONMode)
}
