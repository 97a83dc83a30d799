package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/protokoll/internal/core/domain"
	"github.com/custodia-labs/protokoll/internal/core/ports/driven"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *LLMService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewLLMService(LLMConfig{BaseURL: srv.URL + "/"})
}

func TestNewLLMService_Defaults(t *testing.T) {
	svc := NewLLMService(LLMConfig{})

	assert.Equal(t, DefaultBaseURL, svc.baseURL)
	assert.Equal(t, DefaultLLMModel, svc.ModelName())
	assert.Equal(t, DefaultLLMTimeout, svc.client.Timeout)
}

func TestGenerate_PassesSchemaAsFormat(t *testing.T) {
	var got map[string]any
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"response":"{\"summary\":\"s\"}","done":true}`))
	})

	temp := 0.2
	text, err := svc.Generate(context.Background(), driven.GenerateRequest{
		Prompt: "summarise",
		Config: driven.GenerationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   json.RawMessage(`{"type":"object"}`),
			Temperature:      &temp,
		},
	})
	require.NoError(t, err)

	assert.Equal(t, `{"summary":"s"}`, text)
	assert.Equal(t, DefaultLLMModel, got["model"])
	assert.Equal(t, false, got["stream"])
	assert.Equal(t, map[string]any{"type": "object"}, got["format"])
	assert.Equal(t, map[string]any{"temperature": 0.2}, got["options"])
}

func TestFormatFor(t *testing.T) {
	assert.Nil(t, formatFor(driven.GenerationConfig{}))
	assert.JSONEq(t, `"json"`, string(formatFor(driven.GenerationConfig{ResponseMIMEType: "application/json"})))
	assert.JSONEq(t, `{"type":"array"}`,
		string(formatFor(driven.GenerationConfig{ResponseSchema: json.RawMessage(`{"type":"array"}`)})))
}

func TestGenerate_ModelOverride(t *testing.T) {
	var got generateRequest
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"response":"ok","done":true}`))
	})

	_, err := svc.Generate(context.Background(), driven.GenerateRequest{Model: "qwen2.5", Prompt: "x"})
	require.NoError(t, err)
	assert.Equal(t, "qwen2.5", got.Model)
	assert.Nil(t, got.Options)
}

func TestGenerate_ErrorStatus(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model \"llama3.2\" not found"}`))
	})

	_, err := svc.Generate(context.Background(), driven.GenerateRequest{Prompt: "x"})

	var apiErr *domain.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, `model "llama3.2" not found`, apiErr.Message)
}

func TestPing(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		_, _ = w.Write([]byte(`{"models":[]}`))
	})
	assert.NoError(t, svc.Ping(context.Background()))

	down := NewLLMService(LLMConfig{BaseURL: "http://127.0.0.1:1"})
	assert.Error(t, down.Ping(context.Background()))
}
