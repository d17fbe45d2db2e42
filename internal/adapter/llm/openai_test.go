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

	"smartq/internal/domain"
	"smartq/internal/schema"
)

const completionBody = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gemma3:27b",
  "choices": [{"index": 0, "message": {"role": "assistant", "content": "{\"question\":\"q\"}"}, "finish_reason": "stop"}]
}`

func TestOpenAITransport_Invoke(t *testing.T) {
	var req map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody))
	}))
	defer srv.Close()

	tr, err := NewOpenAITransport(Options{BaseURL: srv.URL, Model: "gemma3:27b", APIKey: "secret", Temperature: 0.5}, srv.Client())
	require.NoError(t, err)

	out, err := tr.Invoke(context.Background(), "make a question", schema.Quiz, time.Second)
	require.NoError(t, err)
	assert.Equal(t, `{"question":"q"}`, out)

	assert.Equal(t, "gemma3:27b", req["model"])
	format := req["response_format"].(map[string]any)
	assert.Equal(t, "json_schema", format["type"])
	js := format["json_schema"].(map[string]any)
	assert.Equal(t, "quiz_question", js["name"])
	assert.Equal(t, "object", js["schema"].(map[string]any)["type"])

	messages := req["messages"].([]any)
	require.Len(t, messages, 1)
	assert.Equal(t, "make a question", messages[0].(map[string]any)["content"])
}

func TestOpenAITransport_JSONObjectWithoutSchema(t *testing.T) {
	var req map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		_, _ = w.Write([]byte(completionBody))
	}))
	defer srv.Close()

	tr, err := NewOpenAITransport(Options{BaseURL: srv.URL, Model: "m"}, nil)
	require.NoError(t, err)
	_, err = tr.Invoke(context.Background(), "p", nil, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "json_object", req["response_format"].(map[string]any)["type"])
}

func TestOpenAITransport_Errors(t *testing.T) {
	t.Run("api error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":{"message":"model crashed","type":"server_error"}}`))
		}))
		defer srv.Close()

		tr, err := NewOpenAITransport(Options{BaseURL: srv.URL, Model: "m"}, nil)
		require.NoError(t, err)
		_, err = tr.Invoke(context.Background(), "p", nil, time.Second)
		te := requireTransportKind(t, err, domain.TransportProtocol)
		assert.Equal(t, http.StatusInternalServerError, te.StatusCode)
	})

	t.Run("no choices", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[]}`))
		}))
		defer srv.Close()

		tr, err := NewOpenAITransport(Options{BaseURL: srv.URL, Model: "m"}, nil)
		require.NoError(t, err)
		_, err = tr.Invoke(context.Background(), "p", nil, time.Second)
		requireTransportKind(t, err, domain.TransportProtocol)
	})

	t.Run("timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer srv.Close()

		tr, err := NewOpenAITransport(Options{BaseURL: srv.URL, Model: "m"}, nil)
		require.NoError(t, err)
		_, err = tr.Invoke(context.Background(), "p", nil, 50*time.Millisecond)
		requireTransportKind(t, err, domain.TransportTimeout)
	})

	t.Run("missing model", func(t *testing.T) {
		_, err := NewOpenAITransport(Options{BaseURL: "http://localhost:11434/v1"}, nil)
		assert.Error(t, err)
	})
}
