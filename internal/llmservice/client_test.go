package llmservice

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"knowledge-rag/internal/config"
	"knowledge-rag/internal/models"
)

const completionJSON = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "deepseek-ai/DeepSeek-V3-0324",
  "choices": [
    {"index": 0, "message": {"role": "assistant", "content": "30 days"}, "finish_reason": "stop"}
  ],
  "usage": {"prompt_tokens": 10, "completion_tokens": 2, "total_tokens": 12}
}`

func TestClient_Generate(t *testing.T) {
	var body string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer hf_test", r.Header.Get("Authorization"))
		b, _ := io.ReadAll(r.Body)
		body = string(b)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(completionJSON))
	}))
	defer server.Close()

	client, err := NewClient(&config.LLMConfig{BaseURL: server.URL, Key: "hf_test"})
	require.NoError(t, err)

	res := client.Generate(context.Background(), "What is the refund window?")
	require.True(t, res.OK(), "unexpected error: %v", res.Err)
	assert.Equal(t, "30 days", res.Text)

	assert.Contains(t, body, models.InferenceModel)
	assert.Contains(t, body, `"role":"user"`)
	assert.Contains(t, body, "What is the refund window?")
	assert.NotContains(t, body, `"role":"system"`)
}

func TestClient_GenerateHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": {"message": "Invalid credentials in Authorization header", "type": "invalid_request_error"}}`))
	}))
	defer server.Close()

	client, err := NewClient(&config.LLMConfig{BaseURL: server.URL, Key: "bad"})
	require.NoError(t, err)

	res := client.Generate(context.Background(), "anything")
	assert.False(t, res.OK())
	assert.Error(t, res.Err)
	assert.Empty(t, res.Text)
}

func TestClient_GenerateUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client, err := NewClient(&config.LLMConfig{BaseURL: url, Key: "hf_test"})
	require.NoError(t, err)

	res := client.Generate(context.Background(), "anything")
	assert.False(t, res.OK())
}

func TestResult(t *testing.T) {
	assert.True(t, Success("ok").OK())

	boom := errors.New("boom")
	r := Failure(boom)
	assert.False(t, r.OK())
	assert.ErrorIs(t, r.Err, boom)
}
