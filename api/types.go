// types.go - Core API Types (Nachrichten, Rollen, Fehler, Usage)
// Enthaelt: StatusError, Role, Message, Conversation, Usage,
// ChatRequest/ChatResponse, GenerateRequest/GenerateResponse, ListResponse
package api

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// StatusError is an error with an HTTP status code and message.
type StatusError struct {
	StatusCode   int
	Status       string
	ErrorMessage string `json:"error"`
}

func (e StatusError) Error() string {
	switch {
	case e.Status != "" && e.ErrorMessage != "":
		return fmt.Sprintf("%s: %s", e.Status, e.ErrorMessage)
	case e.Status != "":
		return e.Status
	case e.ErrorMessage != "":
		return e.ErrorMessage
	default:
		// this should not happen
		return "something went wrong, please see the server logs for details"
	}
}

// Rollen einer Chat-Nachricht
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleFunction  = "function"
)

// Message ist eine einzelne Nachricht (ein Turn) einer Unterhaltung.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Name    string `json:"name,omitempty"`
}

// ValidRole meldet ob role eine der vier bekannten Rollen ist
func ValidRole(role string) bool {
	switch role {
	case RoleSystem, RoleUser, RoleAssistant, RoleFunction:
		return true
	}
	return false
}

// Conversation ist ein Gespraechsverlauf, der nur durch Anhaengen waechst.
type Conversation struct {
	messages []Message
}

// NewConversation erstellt einen Verlauf mit optionaler System-Nachricht
func NewConversation(system string) *Conversation {
	c := &Conversation{}
	if system != "" {
		c.Append(Message{Role: RoleSystem, Content: system})
	}
	return c
}

// Append haengt eine Nachricht an das Ende des Verlaufs
func (c *Conversation) Append(m Message) {
	c.messages = append(c.messages, m)
}

// Messages gibt eine Kopie des Verlaufs in Gespraechsreihenfolge zurueck
func (c *Conversation) Messages() []Message {
	return slices.Clone(c.messages)
}

// Len gibt die Anzahl der Nachrichten zurueck
func (c *Conversation) Len() int {
	return len(c.messages)
}

// Usage enthaelt die Token-Abrechnung einer Antwort.
//
// Tokens are approximated as whitespace-separated words; these are not the
// model's subword tokens.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// CountTokens zaehlt die durch Leerraum getrennten Woerter in s
func CountTokens(s string) int {
	return len(strings.Fields(s))
}

// NewUsage berechnet die Usage fuer einen Prompt und die zugehoerige Antwort
func NewUsage(prompt, completion string) Usage {
	p, c := CountTokens(prompt), CountTokens(completion)
	return Usage{
		PromptTokens:     p,
		CompletionTokens: c,
		TotalTokens:      p + c,
	}
}

// ChatRequest beschreibt einen Request an den Chat-Endpunkt
type ChatRequest struct {
	// Model ist der Name des Modells; der Server bedient nur sein geladenes Modell
	Model string `json:"model"`

	// Messages ist der Gespraechsverlauf
	Messages []Message `json:"messages"`

	// Stream aktiviert Streaming; Standard ist true
	Stream *bool `json:"stream,omitempty"`

	// Options ueberschreibt Options-Werte mit ihren JSON-Schluesseln
	Options map[string]any `json:"options"`
}

// ChatResponse ist eine (Teil-)Antwort des Chat-Endpunkts. Beim Streaming
// traegt die letzte Antwort Done, DoneReason und Usage.
type ChatResponse struct {
	Model      string    `json:"model"`
	CreatedAt  time.Time `json:"created_at"`
	Message    Message   `json:"message"`
	DoneReason string    `json:"done_reason,omitempty"`
	Done       bool      `json:"done"`
	Usage      Usage     `json:"usage"`
}

// GenerateRequest beschreibt einen Request an den Generate-Endpunkt
type GenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`

	// Stream aktiviert Streaming; Standard ist true
	Stream *bool `json:"stream,omitempty"`

	// Raw uebergibt den Prompt unveraendert ohne Chat-Template und schaltet
	// die Nachbearbeitung der Ausgabe ab
	Raw bool `json:"raw,omitempty"`

	Options map[string]any `json:"options"`
}

// GenerateResponse ist eine (Teil-)Antwort des Generate-Endpunkts
type GenerateResponse struct {
	Model      string    `json:"model"`
	CreatedAt  time.Time `json:"created_at"`
	Response   string    `json:"response"`
	DoneReason string    `json:"done_reason,omitempty"`
	Done       bool      `json:"done"`
	Usage      Usage     `json:"usage"`
}

// ListResponse ist die Antwort des Model-Listings
type ListResponse struct {
	Models []ListModelResponse `json:"models"`
}

// ListModelResponse beschreibt ein geladenes Modell
type ListModelResponse struct {
	Name     string    `json:"name"`
	Template string    `json:"template"`
	LoadedAt time.Time `json:"loaded_at"`
}
