package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lockin-app/lockin-api/pkg/config"
)

func newOptimizerServer(t *testing.T, status int, body interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		var req anthropicRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "claude-3-7-sonnet-20250219", req.Model)
		require.Len(t, req.Messages, 1)

		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
}

func optimizerConfig(baseURL string) config.OptimizerConfig {
	return config.OptimizerConfig{
		APIKey:    "test-key",
		Model:     "claude-3-7-sonnet-20250219",
		Version:   "2023-06-01",
		BaseURL:   baseURL,
		MaxTokens: 1024,
		Timeout:   5 * time.Second,
	}
}

func TestOptimizerComplete(t *testing.T) {
	server := newOptimizerServer(t, http.StatusOK, map[string]interface{}{
		"content": []map[string]string{
			{"type": "text", "text": `{"meetings": []`},
			{"type": "text", "text": `, "tasks": []}`},
		},
		"usage": map[string]int{"input_tokens": 120, "output_tokens": 40},
	})
	defer server.Close()

	client := NewOptimizerClient(optimizerConfig(server.URL))
	text, usage, err := client.Complete(context.Background(), "system", "prompt")

	require.NoError(t, err)
	assert.Equal(t, `{"meetings": [], "tasks": []}`, text)
	assert.Equal(t, int64(120), usage.InputTokens)
	assert.Equal(t, int64(40), usage.OutputTokens)
}

func TestOptimizerCompleteUpstreamError(t *testing.T) {
	server := newOptimizerServer(t, http.StatusInternalServerError, map[string]string{"error": "overloaded"})
	defer server.Close()

	client := NewOptimizerClient(optimizerConfig(server.URL))
	_, _, err := client.Complete(context.Background(), "system", "prompt")
	require.Error(t, err)
}

func TestOptimizerCompleteEmptyContent(t *testing.T) {
	server := newOptimizerServer(t, http.StatusOK, map[string]interface{}{"content": []map[string]string{}})
	defer server.Close()

	client := NewOptimizerClient(optimizerConfig(server.URL))
	_, _, err := client.Complete(context.Background(), "system", "prompt")
	require.Error(t, err)
}
