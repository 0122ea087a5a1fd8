// openai_to.go - Konvertierungsfunktionen von API-Format zu OpenAI-Format
//
// Enthaelt:
// - ToUsage: Token-Verbrauch konvertieren
// - ToChatCompletion, ToChunk, ToUsageChunk: Chat-Antworten konvertieren
// - ToCompletion, ToCompleteChunk: Text-Completion konvertieren
// - ToListCompletion, ToModel: Model-Listen konvertieren
// - NewID: Antwort-IDs erzeugen
//
// Verwandte Dateien:
// - openai_types.go: Typdefinitionen
// - openai_from.go: Konvertierung OpenAI -> API Format
package openai

import (
	"time"

	"github.com/google/uuid"

	"github.com/llamaedge/llamaedge/api"
)

const systemFingerprint = "fp_llamaedge"

// ownedBy wird fuer alle gelisteten Modelle gemeldet
const ownedBy = "Not specified"

// NewID erzeugt eine eindeutige Antwort-ID mit Praefix (z.B. "chatcmpl")
func NewID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// ToUsage konvertiert eine api.Usage zu Usage
func ToUsage(u api.Usage) Usage {
	return Usage{
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      u.TotalTokens,
	}
}

func finishReason(reason string) *string {
	if len(reason) > 0 {
		return &reason
	}
	return nil
}

// ToChatCompletion konvertiert eine api.ChatResponse zu ChatCompletion
func ToChatCompletion(id string, r api.ChatResponse) ChatCompletion {
	return ChatCompletion{
		Id:                id,
		Object:            "chat.completion",
		Created:           r.CreatedAt.Unix(),
		Model:             r.Model,
		SystemFingerprint: systemFingerprint,
		Choices: []Choice{{
			Index:        0,
			Message:      Message{Role: r.Message.Role, Content: r.Message.Content},
			FinishReason: finishReason(r.DoneReason),
		}},
		Usage: ToUsage(r.Usage),
	}
}

// ToChunk konvertiert eine api.ChatResponse zu ChatCompletionChunk
func ToChunk(id string, r api.ChatResponse) ChatCompletionChunk {
	return ChatCompletionChunk{
		Id:                id,
		Object:            "chat.completion.chunk",
		Created:           time.Now().Unix(),
		Model:             r.Model,
		SystemFingerprint: systemFingerprint,
		Choices: []ChunkChoice{{
			Index:        0,
			Delta:        Message{Role: api.RoleAssistant, Content: r.Message.Content},
			FinishReason: finishReason(r.DoneReason),
		}},
	}
}

// ToUsageChunk erzeugt den abschliessenden Usage-Chunk (stream_options.include_usage)
func ToUsageChunk(id string, r api.ChatResponse) ChatCompletionChunk {
	u := ToUsage(r.Usage)
	c := ToChunk(id, r)
	c.Choices = []ChunkChoice{}
	c.Usage = &u
	return c
}

// ToCompletion konvertiert eine api.GenerateResponse zu Completion
func ToCompletion(id string, r api.GenerateResponse) Completion {
	return Completion{
		Id:                id,
		Object:            "text_completion",
		Created:           r.CreatedAt.Unix(),
		Model:             r.Model,
		SystemFingerprint: systemFingerprint,
		Choices: []CompleteChunkChoice{{
			Text:         r.Response,
			Index:        0,
			FinishReason: finishReason(r.DoneReason),
		}},
		Usage: ToUsage(r.Usage),
	}
}

// ToCompleteChunk konvertiert eine api.GenerateResponse zu CompletionChunk
func ToCompleteChunk(id string, r api.GenerateResponse) CompletionChunk {
	return CompletionChunk{
		Id:                id,
		Object:            "text_completion",
		Created:           time.Now().Unix(),
		Model:             r.Model,
		SystemFingerprint: systemFingerprint,
		Choices: []CompleteChunkChoice{{
			Text:         r.Response,
			Index:        0,
			FinishReason: finishReason(r.DoneReason),
		}},
	}
}

// ToCompleteUsageChunk erzeugt den abschliessenden Usage-Chunk einer Completion
func ToCompleteUsageChunk(id string, r api.GenerateResponse) CompletionChunk {
	u := ToUsage(r.Usage)
	c := ToCompleteChunk(id, r)
	c.Choices = []CompleteChunkChoice{}
	c.Usage = &u
	return c
}

// ToModel beschreibt ein geladenes Modell; die ID ist "<name>:<template>"
func ToModel(m api.ListModelResponse) Model {
	return Model{
		Id:      m.Name + ":" + m.Template,
		Object:  "model",
		Created: m.LoadedAt.Unix(),
		OwnedBy: ownedBy,
	}
}

// ToListCompletion konvertiert eine api.ListResponse zu ListCompletion
func ToListCompletion(r api.ListResponse) ListCompletion {
	data := make([]Model, 0, len(r.Models))
	for _, m := range r.Models {
		data = append(data, ToModel(m))
	}

	return ListCompletion{
		Object: "list",
		Data:   data,
	}
}
