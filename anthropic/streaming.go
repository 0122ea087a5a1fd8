// streaming.go
// Streaming-Modul: StreamConverter und Event-Verarbeitung fuer SSE-Responses

package anthropic

import (
	"github.com/llamaedge/llamaedge/api"
)

// StreamConverter verwaltet den Zustand beim Umwandeln nativer Chat-Chunks in
// Messages-Events
type StreamConverter struct {
	ID           string
	Model        string
	firstWrite   bool
	textStarted  bool
	inputTokens  int
	outputTokens int
}

// NewStreamConverter erstellt einen Converter; Model wird aus der ersten
// Antwort uebernommen
func NewStreamConverter(id string) *StreamConverter {
	return &StreamConverter{
		ID:         id,
		firstWrite: true,
	}
}

// StreamEvent ist ein SSE-Event fuer den Client
type StreamEvent struct {
	Event string
	Data  any
}

// Process wandelt eine api.ChatResponse in Messages-Events um. Die Antwort
// besteht aus genau einem Text-Block mit Index 0.
func (c *StreamConverter) Process(r api.ChatResponse) []StreamEvent {
	var events []StreamEvent

	if c.firstWrite {
		c.firstWrite = false
		c.Model = r.Model
		c.inputTokens = r.Usage.PromptTokens

		events = append(events, StreamEvent{
			Event: "message_start",
			Data: MessageStartEvent{
				Type: "message_start",
				Message: MessagesResponse{
					ID:      c.ID,
					Type:    "message",
					Role:    api.RoleAssistant,
					Model:   c.Model,
					Content: []ContentBlock{},
					Usage:   Usage{InputTokens: c.inputTokens},
				},
			},
		})
	}

	// the text block is opened even for an empty answer
	if !c.textStarted && (r.Message.Content != "" || r.Done) {
		c.textStarted = true
		events = append(events, StreamEvent{
			Event: "content_block_start",
			Data: ContentBlockStartEvent{
				Type:         "content_block_start",
				ContentBlock: ContentBlock{Type: "text", Text: ptr("")},
			},
		})
	}

	if r.Message.Content != "" {
		events = append(events, StreamEvent{
			Event: "content_block_delta",
			Data: ContentBlockDeltaEvent{
				Type:  "content_block_delta",
				Delta: Delta{Type: "text_delta", Text: r.Message.Content},
			},
		})
	}

	if r.Done {
		c.outputTokens = r.Usage.CompletionTokens

		events = append(events,
			StreamEvent{
				Event: "content_block_stop",
				Data:  ContentBlockStopEvent{Type: "content_block_stop"},
			},
			StreamEvent{
				Event: "message_delta",
				Data: MessageDeltaEvent{
					Type:  "message_delta",
					Delta: MessageDelta{StopReason: mapStopReason(r.DoneReason)},
					Usage: DeltaUsage{OutputTokens: c.outputTokens},
				},
			},
			StreamEvent{
				Event: "message_stop",
				Data:  MessageStopEvent{Type: "message_stop"},
			},
		)
	}

	return events
}
