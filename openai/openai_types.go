// openai_types.go - Typdefinitionen fuer OpenAI-kompatible API
//
// Enthaelt:
// - Error und ErrorResponse Typen
// - Message, Choice und ChunkChoice Typen
// - Request- und Response-Strukturen (Chat, Completion, Models)
// - Usage
//
// Verwandte Dateien:
// - openai_to.go: Konvertierung Ergebnis -> OpenAI Format
// - openai_from.go: Konvertierung OpenAI -> API Format
package openai

import (
	"net/http"
)

// Error repraesentiert einen OpenAI-kompatiblen Fehler
type Error struct {
	Message string  `json:"message"`
	Type    string  `json:"type"`
	Param   any     `json:"param"`
	Code    *string `json:"code"`
}

// ErrorResponse ist die Wrapper-Struktur fuer Fehlerantworten
type ErrorResponse struct {
	Error Error `json:"error"`
}

// Message repraesentiert eine Chat-Nachricht. Content ist im Request ein
// String oder eine Liste von Text-Teilen, in Antworten immer ein String.
type Message struct {
	Role    string `json:"role,omitempty"`
	Content any    `json:"content"`
	Name    string `json:"name,omitempty"`
}

// Choice repraesentiert eine Antwort-Option bei Chat-Completions
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason *string `json:"finish_reason"`
}

// ChunkChoice repraesentiert eine Antwort-Option beim Streaming
type ChunkChoice struct {
	Index        int     `json:"index"`
	Delta        Message `json:"delta"`
	FinishReason *string `json:"finish_reason"`
}

// CompleteChunkChoice repraesentiert eine Antwort-Option bei Text-Completions
type CompleteChunkChoice struct {
	Text         string  `json:"text"`
	Index        int     `json:"index"`
	FinishReason *string `json:"finish_reason"`
}

// Usage enthaelt Token-Verbrauchsinformationen
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// StreamOptions fuer Streaming-Konfiguration
type StreamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

// ChatCompletionRequest ist ein Request fuer Chat-Completions
type ChatCompletionRequest struct {
	Model         string         `json:"model"`
	Messages      []Message      `json:"messages"`
	Stream        bool           `json:"stream"`
	StreamOptions *StreamOptions `json:"stream_options"`
	MaxTokens     *int           `json:"max_tokens"`
	Stop          any            `json:"stop"`
	Temperature   *float64       `json:"temperature"`
	User          string         `json:"user,omitempty"`
}

// ChatCompletion ist die Antwort fuer Chat-Completions
type ChatCompletion struct {
	Id                string   `json:"id"`
	Object            string   `json:"object"`
	Created           int64    `json:"created"`
	Model             string   `json:"model"`
	SystemFingerprint string   `json:"system_fingerprint"`
	Choices           []Choice `json:"choices"`
	Usage             Usage    `json:"usage,omitempty"`
}

// ChatCompletionChunk ist ein Streaming-Chunk fuer Chat-Completions
type ChatCompletionChunk struct {
	Id                string        `json:"id"`
	Object            string        `json:"object"`
	Created           int64         `json:"created"`
	Model             string        `json:"model"`
	SystemFingerprint string        `json:"system_fingerprint"`
	Choices           []ChunkChoice `json:"choices"`
	Usage             *Usage        `json:"usage,omitempty"`
}

// CompletionRequest ist ein Request fuer Text-Completions. Prompt ist ein
// String oder eine Liste von Strings.
type CompletionRequest struct {
	Model         string         `json:"model"`
	Prompt        any            `json:"prompt"`
	MaxTokens     *int           `json:"max_tokens"`
	Stop          any            `json:"stop"`
	Stream        bool           `json:"stream"`
	StreamOptions *StreamOptions `json:"stream_options"`
	Temperature   *float64       `json:"temperature"`
	User          string         `json:"user,omitempty"`
}

// Completion ist die Antwort fuer Text-Completions
type Completion struct {
	Id                string                `json:"id"`
	Object            string                `json:"object"`
	Created           int64                 `json:"created"`
	Model             string                `json:"model"`
	SystemFingerprint string                `json:"system_fingerprint"`
	Choices           []CompleteChunkChoice `json:"choices"`
	Usage             Usage                 `json:"usage,omitempty"`
}

// CompletionChunk ist ein Streaming-Chunk fuer Text-Completions
type CompletionChunk struct {
	Id                string                `json:"id"`
	Object            string                `json:"object"`
	Created           int64                 `json:"created"`
	Choices           []CompleteChunkChoice `json:"choices"`
	Model             string                `json:"model"`
	SystemFingerprint string                `json:"system_fingerprint"`
	Usage             *Usage                `json:"usage,omitempty"`
}

// Model repraesentiert ein verfuegbares Modell
type Model struct {
	Id      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	OwnedBy string `json:"owned_by"`
}

// ListCompletion ist die Antwort fuer Model-Listen
type ListCompletion struct {
	Object string  `json:"object"`
	Data   []Model `json:"data"`
}

// NewError erstellt eine neue ErrorResponse basierend auf HTTP-Statuscode
func NewError(code int, message string) ErrorResponse {
	var etype string
	switch code {
	case http.StatusBadRequest:
		etype = "invalid_request_error"
	case http.StatusNotFound:
		etype = "not_found_error"
	default:
		etype = "api_error"
	}

	return ErrorResponse{Error{Type: etype, Message: message}}
}
