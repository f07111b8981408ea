package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func messageJSON(blocks ...map[string]interface{}) []byte {
	content := make([]map[string]interface{}, 0, len(blocks))
	content = append(content, blocks...)
	body, _ := json.Marshal(map[string]interface{}{
		"id":            "msg_test",
		"type":          "message",
		"role":          "assistant",
		"model":         DefaultModel,
		"content":       content,
		"stop_reason":   "end_turn",
		"stop_sequence": nil,
		"usage": map[string]interface{}{
			"input_tokens":  10,
			"output_tokens": 20,
		},
	})
	return body
}

func textBlock(text string) map[string]interface{} {
	return map[string]interface{}{"type": "text", "text": text}
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestGateway(serverURL string) *ClaudeGateway {
	return NewClaudeGateway(GatewayOptions{
		APIKey:  "test-key",
		BaseURL: serverURL + "/",
		Logger:  quietLogger(),
	})
}

func TestNewClaudeGatewayDefaults(t *testing.T) {
	gateway := NewClaudeGateway(GatewayOptions{APIKey: "test-key"})

	require.NotNil(t, gateway)
	assert.Equal(t, DefaultModel, gateway.Model())
	assert.EqualValues(t, DefaultMaxTokens, gateway.maxTokens)
}

func TestClaudeGatewayComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/v1/messages"), r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))

		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, DefaultModel, body["model"])

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(messageJSON(textBlock("Hello "), textBlock("world")))
	}))
	defer server.Close()

	text, err := newTestGateway(server.URL).Complete(context.Background(), "Say hello")
	require.NoError(t, err)
	assert.Equal(t, "Hello world", text)
}

func TestClaudeGatewayAPIErrorNotRetried(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"api_error","message":"Internal server error"}}`))
	}))
	defer server.Close()

	_, err := newTestGateway(server.URL).Complete(context.Background(), "prompt")
	require.Error(t, err)

	var modelErr *ModelError
	assert.ErrorAs(t, err, &modelErr)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "errors are not retried")
}

func TestClaudeGatewayNonTextContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(messageJSON(map[string]interface{}{
			"type":  "tool_use",
			"id":    "toolu_1",
			"name":  "lookup",
			"input": map[string]interface{}{},
		}))
	}))
	defer server.Close()

	_, err := newTestGateway(server.URL).Complete(context.Background(), "prompt")

	var modelErr *ModelError
	require.ErrorAs(t, err, &modelErr)
}

func TestClaudeGatewayContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(messageJSON(textBlock("late")))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestGateway(server.URL).Complete(ctx, "prompt")
	assert.Error(t, err)
}
