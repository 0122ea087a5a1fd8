package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llamaedge/llamaedge/anthropic"
	"github.com/llamaedge/llamaedge/api"
)

// parsedSSEEvent ist ein geparstes "event: ...\ndata: ..." Paar
type parsedSSEEvent struct {
	name string
	data string
}

func parseSSE(t *testing.T, body string) []parsedSSEEvent {
	t.Helper()
	var events []parsedSSEEvent
	for _, block := range strings.Split(strings.TrimSpace(body), "\n\n") {
		name, data, ok := strings.Cut(block, "\n")
		require.True(t, ok, block)
		events = append(events, parsedSSEEvent{
			name: strings.TrimPrefix(name, "event: "),
			data: strings.TrimPrefix(data, "data: "),
		})
	}
	return events
}

func TestAnthropicMessagesMiddleware(t *testing.T) {
	var captured api.ChatRequest

	router := gin.New()
	router.POST("/v1/messages", AnthropicMessagesMiddleware(), func(c *gin.Context) {
		require.NoError(t, c.ShouldBindJSON(&captured))
		c.JSON(http.StatusOK, api.ChatResponse{
			Model:      "m",
			Message:    api.Message{Role: "assistant", Content: "Hi there"},
			DoneReason: "length",
			Done:       true,
			Usage:      api.NewUsage("one two three", "Hi there"),
		})
	})

	body := `{"model":"m","max_tokens":16,"system":"Be kind.","messages":[{"role":"user","content":[{"type":"text","text":"Hello"}]}],"stop_sequences":["","END"]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/messages", strings.NewReader(body))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)

	assert.Equal(t, []api.Message{
		{Role: "system", Content: "Be kind."},
		{Role: "user", Content: "Hello"},
	}, captured.Messages)
	assert.EqualValues(t, 16, captured.Options["n-predict"])
	assert.Equal(t, "END", captured.Options["reverse-prompt"])

	var got anthropic.MessagesResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	assert.True(t, strings.HasPrefix(got.ID, "msg_"))
	assert.Equal(t, "message", got.Type)
	assert.Equal(t, "max_tokens", got.StopReason)
	require.Len(t, got.Content, 1)
	assert.Equal(t, "Hi there", *got.Content[0].Text)
	assert.Equal(t, anthropic.Usage{InputTokens: 3, OutputTokens: 2}, got.Usage)
}

func TestAnthropicMessagesStream(t *testing.T) {
	router := gin.New()
	router.POST("/v1/messages", AnthropicMessagesMiddleware(), func(c *gin.Context) {
		writeNDJSON(c,
			api.ChatResponse{Model: "m", Message: api.Message{Role: "assistant", Content: "Hello"}, Usage: api.Usage{PromptTokens: 4}},
			api.ChatResponse{Model: "m", Message: api.Message{Role: "assistant", Content: " world"}, Usage: api.Usage{PromptTokens: 4}},
			api.ChatResponse{Model: "m", Message: api.Message{Role: "assistant"}, DoneReason: "stop", Done: true, Usage: api.Usage{PromptTokens: 4, CompletionTokens: 2, TotalTokens: 6}},
		)
	})

	body := `{"model":"m","max_tokens":16,"stream":true,"messages":[{"role":"user","content":"Hi"}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/messages", strings.NewReader(body))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "text/event-stream", resp.Header().Get("Content-Type"))

	events := parseSSE(t, resp.Body.String())
	var names []string
	for _, e := range events {
		names = append(names, e.name)
	}
	assert.Equal(t, []string{
		"message_start",
		"content_block_start",
		"content_block_delta",
		"content_block_delta",
		"content_block_stop",
		"message_delta",
		"message_stop",
	}, names)

	var start anthropic.MessageStartEvent
	require.NoError(t, json.Unmarshal([]byte(events[0].data), &start))
	assert.Equal(t, 4, start.Message.Usage.InputTokens)
	assert.Equal(t, "m", start.Message.Model)

	var delta anthropic.MessageDeltaEvent
	require.NoError(t, json.Unmarshal([]byte(events[5].data), &delta))
	assert.Equal(t, "end_turn", delta.Delta.StopReason)
	assert.Equal(t, 2, delta.Usage.OutputTokens)
}

func TestAnthropicMessagesStreamError(t *testing.T) {
	router := gin.New()
	router.POST("/v1/messages", AnthropicMessagesMiddleware(), func(c *gin.Context) {
		writeNDJSON(c,
			api.ChatResponse{Model: "m", Message: api.Message{Role: "assistant", Content: "Hel"}},
			gin.H{"error": "inference failed: compute next: boom"},
		)
	})

	body := `{"model":"m","max_tokens":16,"stream":true,"messages":[{"role":"user","content":"Hi"}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/messages", strings.NewReader(body))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	events := parseSSE(t, resp.Body.String())
	last := events[len(events)-1]
	assert.Equal(t, "error", last.name)

	var serr anthropic.StreamErrorEvent
	require.NoError(t, json.Unmarshal([]byte(last.data), &serr))
	assert.Contains(t, serr.Error.Message, "boom")
}

func TestAnthropicMessagesErrors(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"no max tokens", `{"model":"m","messages":[{"role":"user","content":"Hi"}]}`},
		{"no messages", `{"model":"m","max_tokens":4,"messages":[]}`},
		{"system role", `{"model":"m","max_tokens":4,"messages":[{"role":"system","content":"Hi"}]}`},
		{"image block", `{"model":"m","max_tokens":4,"messages":[{"role":"user","content":[{"type":"image"}]}]}`},
		{"bad json", `{"model":`},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.POST("/v1/messages", AnthropicMessagesMiddleware(), func(c *gin.Context) {
				t.Fatal("handler must not run")
			})

			req := httptest.NewRequest(http.MethodPost, "/v1/messages", strings.NewReader(tt.body))
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)

			require.Equal(t, http.StatusBadRequest, resp.Code)

			var got anthropic.ErrorResponse
			require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
			assert.Equal(t, "error", got.Type)
			assert.Equal(t, "invalid_request_error", got.Error.Type)
		})
	}
}

func TestAnthropicHandlerError(t *testing.T) {
	router := gin.New()
	router.POST("/v1/messages", AnthropicMessagesMiddleware(), func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "engine down"})
	})

	body := `{"model":"m","max_tokens":4,"messages":[{"role":"user","content":"Hi"}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/messages", strings.NewReader(body))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusInternalServerError, resp.Code)

	var got anthropic.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	assert.Equal(t, "api_error", got.Error.Type)
	assert.Equal(t, "engine down", got.Error.Message)
}
