// openai_from.go - Konvertierungsfunktionen von OpenAI-Format zu API-Format
//
// Enthaelt:
// - FromChatRequest: Chat-Completion Request konvertieren
// - FromCompleteRequest: Text-Completion Request konvertieren
// - Hilfsfunktionen: fromContent, fromOptions, fromStop
//
// Verwandte Dateien:
// - openai_types.go: Typdefinitionen
// - openai_to.go: Konvertierung API -> OpenAI Format
package openai

import (
	"errors"
	"fmt"
	"strings"

	"github.com/llamaedge/llamaedge/api"
)

// FromChatRequest konvertiert einen ChatCompletionRequest zu api.ChatRequest
func FromChatRequest(r ChatCompletionRequest) (*api.ChatRequest, error) {
	if len(r.Messages) == 0 {
		return nil, errors.New("[] is too short - 'messages'")
	}

	messages := make([]api.Message, 0, len(r.Messages))
	for _, msg := range r.Messages {
		content, err := fromContent(msg.Content)
		if err != nil {
			return nil, err
		}

		role := strings.ToLower(msg.Role)
		if !api.ValidRole(role) {
			return nil, fmt.Errorf("invalid role %q", msg.Role)
		}

		messages = append(messages, api.Message{Role: role, Content: content, Name: msg.Name})
	}

	options, err := fromOptions(r.MaxTokens, r.Temperature, r.Stop)
	if err != nil {
		return nil, err
	}

	return &api.ChatRequest{
		Model:    r.Model,
		Messages: messages,
		Options:  options,
		Stream:   &r.Stream,
	}, nil
}

// FromCompleteRequest konvertiert einen CompletionRequest zu api.GenerateRequest.
// Eine Prompt-Liste wird mit Leerzeichen verbunden; der Prompt laeuft ohne
// Chat-Template.
func FromCompleteRequest(r CompletionRequest) (api.GenerateRequest, error) {
	var prompt string
	switch p := r.Prompt.(type) {
	case string:
		prompt = p
	case []any:
		parts := make([]string, 0, len(p))
		for _, v := range p {
			s, ok := v.(string)
			if !ok {
				return api.GenerateRequest{}, errors.New("invalid prompt format")
			}
			parts = append(parts, s)
		}
		prompt = strings.Join(parts, " ")
	case nil:
		return api.GenerateRequest{}, errors.New("prompt is required")
	default:
		return api.GenerateRequest{}, fmt.Errorf("invalid prompt type: %T", p)
	}

	options, err := fromOptions(r.MaxTokens, r.Temperature, r.Stop)
	if err != nil {
		return api.GenerateRequest{}, err
	}

	return api.GenerateRequest{
		Model:   r.Model,
		Prompt:  strings.TrimSpace(prompt),
		Raw:     true,
		Options: options,
		Stream:  &r.Stream,
	}, nil
}

func fromContent(content any) (string, error) {
	switch content := content.(type) {
	case string:
		return content, nil
	case []any:
		var sb strings.Builder
		for _, c := range content {
			data, ok := c.(map[string]any)
			if !ok || data["type"] != "text" {
				return "", errors.New("invalid message format")
			}
			text, ok := data["text"].(string)
			if !ok {
				return "", errors.New("invalid message format")
			}
			if sb.Len() > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(text)
		}
		return sb.String(), nil
	default:
		return "", fmt.Errorf("invalid message content type: %T", content)
	}
}

// fromOptions baut die Options-Map mit den JSON-Schluesseln von api.Options
func fromOptions(maxTokens *int, temperature *float64, stop any) (map[string]any, error) {
	options := make(map[string]any)

	if maxTokens != nil {
		if *maxTokens <= 0 {
			return nil, errors.New("max_tokens must be positive")
		}
		options["n-predict"] = *maxTokens
	}

	if temperature != nil {
		options["temp"] = *temperature
	}

	s, err := fromStop(stop)
	if err != nil {
		return nil, err
	}
	if s != "" {
		options["reverse-prompt"] = s
	}

	return options, nil
}

// fromStop liefert den ersten Stop-String; nur eine Stop-Sequenz wird beachtet
func fromStop(stop any) (string, error) {
	switch stop := stop.(type) {
	case nil:
		return "", nil
	case string:
		return stop, nil
	case []any:
		for _, s := range stop {
			str, ok := s.(string)
			if !ok {
				return "", errors.New("invalid stop format")
			}
			if str != "" {
				return str, nil
			}
		}
		return "", nil
	default:
		return "", fmt.Errorf("invalid stop type: %T", stop)
	}
}
