// converter.go
// Konverter-Modul: Umwandlung zwischen Messages-API und nativen Requests

package anthropic

import (
	"errors"
	"fmt"
	"strings"

	"github.com/llamaedge/llamaedge/api"
)

// FromMessagesRequest konvertiert einen MessagesRequest zu api.ChatRequest.
// Nur Text-Bloecke werden unterstuetzt.
func FromMessagesRequest(r MessagesRequest) (*api.ChatRequest, error) {
	if r.MaxTokens <= 0 {
		return nil, errors.New("max_tokens: must be greater than 0")
	}

	if len(r.Messages) == 0 {
		return nil, errors.New("messages: at least one message is required")
	}

	var messages []api.Message

	if r.System != nil {
		sys, err := textContent(r.System)
		if err != nil {
			return nil, fmt.Errorf("system: %w", err)
		}
		if sys != "" {
			messages = append(messages, api.Message{Role: api.RoleSystem, Content: sys})
		}
	}

	for i, msg := range r.Messages {
		role := strings.ToLower(msg.Role)
		if role != api.RoleUser && role != api.RoleAssistant {
			return nil, fmt.Errorf("messages.%d.role: unexpected role %q", i, msg.Role)
		}

		content, err := textContent(msg.Content)
		if err != nil {
			return nil, fmt.Errorf("messages.%d.content: %w", i, err)
		}
		messages = append(messages, api.Message{Role: role, Content: content})
	}

	options := map[string]any{"n-predict": r.MaxTokens}

	if r.Temperature != nil {
		options["temp"] = *r.Temperature
	}

	// only one stop string is matched
	for _, s := range r.StopSequences {
		if s != "" {
			options["reverse-prompt"] = s
			break
		}
	}

	stream := r.Stream

	return &api.ChatRequest{
		Model:    r.Model,
		Messages: messages,
		Options:  options,
		Stream:   &stream,
	}, nil
}

// textContent liest einen String oder eine Liste von Text-Bloecken
func textContent(content any) (string, error) {
	switch content := content.(type) {
	case string:
		return content, nil
	case []any:
		var sb strings.Builder
		for _, block := range content {
			blockMap, ok := block.(map[string]any)
			if !ok {
				return "", errors.New("invalid content block format")
			}

			if t, _ := blockMap["type"].(string); t != "text" {
				return "", fmt.Errorf("unsupported content block type %q", t)
			}

			text, ok := blockMap["text"].(string)
			if !ok {
				return "", errors.New("text block missing required 'text' field")
			}
			sb.WriteString(text)
		}
		return sb.String(), nil
	default:
		return "", fmt.Errorf("invalid content type: %T", content)
	}
}

// ToMessagesResponse konvertiert eine api.ChatResponse zu MessagesResponse
func ToMessagesResponse(id string, r api.ChatResponse) MessagesResponse {
	content := []ContentBlock{}
	if r.Message.Content != "" {
		content = append(content, ContentBlock{Type: "text", Text: ptr(r.Message.Content)})
	}

	return MessagesResponse{
		ID:         id,
		Type:       "message",
		Role:       api.RoleAssistant,
		Model:      r.Model,
		Content:    content,
		StopReason: mapStopReason(r.DoneReason),
		Usage: Usage{
			InputTokens:  r.Usage.PromptTokens,
			OutputTokens: r.Usage.CompletionTokens,
		},
	}
}

// mapStopReason konvertiert done_reason zu stop_reason
func mapStopReason(reason string) string {
	switch reason {
	case "stop":
		return "end_turn"
	case "length":
		return "max_tokens"
	default:
		return ""
	}
}
