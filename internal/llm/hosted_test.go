package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrdaebak/voice-order-gateway/internal/config"
)

func TestHostedBackend_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req chatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, RoleSystem, req.Messages[0].Role)

		w.Write([]byte(`{"choices":[{"message":{"content":"네, 주문 도와드리겠습니다."}}]}`))
	}))
	defer server.Close()

	b := NewHostedBackend(config.HostedConfig{APIKey: "sk-test"})
	text, err := b.Generate(context.Background(), []Message{
		{Role: RoleSystem, Content: "system prompt"},
		{Role: RoleUser, Content: "발렌타인 디너 주문할게요"},
	}, GenParams{Model: "gpt-4o-mini", Endpoint: server.URL})

	require.NoError(t, err)
	assert.Equal(t, "네, 주문 도와드리겠습니다.", text)
}

func TestHostedBackend_MissingAPIKey(t *testing.T) {
	b := NewHostedBackend(config.HostedConfig{})
	_, err := b.Generate(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, GenParams{Model: "m", Endpoint: "http://example.invalid"})

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Error(), "api_key")
}

func TestHostedBackend_MissingModel(t *testing.T) {
	b := NewHostedBackend(config.HostedConfig{APIKey: "sk-test"})
	_, err := b.Generate(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, GenParams{Endpoint: "http://example.invalid"})

	var cfgErr *ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestHostedBackend_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limit"}}`))
	}))
	defer server.Close()

	b := NewHostedBackend(config.HostedConfig{APIKey: "sk-test"})
	_, err := b.Generate(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, GenParams{Model: "m", Endpoint: server.URL})

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusTooManyRequests, upstream.Status)
	assert.Contains(t, upstream.Body, "rate limit")
}

func TestHostedBackend_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	b := NewHostedBackend(config.HostedConfig{APIKey: "sk-test"})
	_, err := b.Generate(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, GenParams{Model: "m", Endpoint: server.URL})

	var empty *EmptyResponseError
	require.ErrorAs(t, err, &empty)
	assert.Equal(t, "hosted", empty.Backend)
}

func TestHostedBackend_BlankContentIsEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":""}}]}`))
	}))
	defer server.Close()

	b := NewHostedBackend(config.HostedConfig{APIKey: "sk-test"})
	_, err := b.Generate(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, GenParams{Model: "m", Endpoint: server.URL})

	var empty *EmptyResponseError
	assert.ErrorAs(t, err, &empty)
}

func TestTruncateBody(t *testing.T) {
	long := strings.Repeat("x", maxErrorBodyLen+100)
	got := truncateBody([]byte(long))
	assert.Len(t, got, maxErrorBodyLen+len("... (truncated)"))
	assert.True(t, strings.HasSuffix(got, "... (truncated)"))

	short := "short body"
	assert.Equal(t, short, truncateBody([]byte(short)))
}
