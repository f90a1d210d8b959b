package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/northpole/elf-backend/internal/config"
	"github.com/northpole/elf-backend/internal/entity"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConnectorConfig(baseURL string) config.LLMConnectorConfig {
	return config.LLMConnectorConfig{
		HTTPClientConfig: config.HTTPClientConfig{
			RequestTimeout:        5 * time.Second,
			ConnTimeout:           5 * time.Second,
			KeepAlive:             5 * time.Second,
			IdleConnTimeout:       5 * time.Second,
			ResponseHeaderTimeout: 5 * time.Second,
			Url:                   baseURL,
		},
		Model:               "test-model",
		CompletionsEndpoint: "/chat/completions",
	}
}

func TestConnector_Complete(t *testing.T) {
	var captured chatCompletionRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[
			{"index":0,"message":{"role":"assistant","content":"first"}},
			{"index":1,"message":{"role":"assistant","content":"second"}}
		]}`))
	}))
	defer server.Close()

	c := NewConnector(testConnectorConfig(server.URL), zap.NewNop())

	got, err := c.Complete(context.Background(), &entity.CompletionRequest{
		Messages: []entity.Message{
			{Role: entity.RoleSystem, Content: "sys"},
			{Role: entity.RoleUser, Content: "hello"},
		},
		Temperature: 0.3,
		MaxTokens:   1000,
		N:           2,
	})
	require.NoError(t, err)
	require.Equal(t, []string{"first", "second"}, got)

	require.Equal(t, "test-model", captured.Model)
	require.Equal(t, 2, captured.N)
	require.Equal(t, 0.3, captured.Temperature)
	require.Equal(t, 1000, captured.MaxTokens)
	require.False(t, captured.Stream)
	require.Len(t, captured.Messages, 2)
	require.Equal(t, "system", captured.Messages[0].Role)
}

func TestConnector_Complete_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := NewConnector(testConnectorConfig(server.URL), zap.NewNop())

	_, err := c.Complete(context.Background(), &entity.CompletionRequest{N: 1})
	require.ErrorIs(t, err, entity.ErrRateLimited)
}

func TestConnector_Complete_Unavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down for maintenance", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := NewConnector(testConnectorConfig(server.URL), zap.NewNop())

	_, err := c.Complete(context.Background(), &entity.CompletionRequest{N: 1})
	require.ErrorIs(t, err, entity.ErrProviderUnavailable)
}

func TestConnector_Complete_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	c := NewConnector(testConnectorConfig(server.URL), zap.NewNop())

	_, err := c.Complete(context.Background(), &entity.CompletionRequest{N: 1})
	require.ErrorIs(t, err, entity.ErrProvider)
}
