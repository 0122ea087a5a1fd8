// openai.go - OpenAI-kompatible Endpunkte
// Hauptfunktionen: ChatMiddleware, CompletionsMiddleware, ListMiddleware
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/llamaedge/llamaedge/api"
	"github.com/llamaedge/llamaedge/openai"
)

// doneEvent beendet einen OpenAI-Stream
var doneEvent = sseEvent{data: "[DONE]"}

// openaiErrors liefert die OpenAI-Fehlerhuellen
type openaiErrors struct{}

func (openaiErrors) errorBody(code int, msg string) any {
	return openai.NewError(code, msg)
}

func (openaiErrors) failure(msg string) sseEvent {
	return sseEvent{data: openai.NewError(http.StatusInternalServerError, msg)}
}

// chatResponder: api.ChatResponse -> chat.completion(.chunk)
type chatResponder struct {
	openaiErrors
	id           string
	includeUsage bool
}

func (r *chatResponder) reply(line []byte) (any, error) {
	resp, err := decode[api.ChatResponse](line)
	if err != nil {
		return nil, err
	}
	return openai.ToChatCompletion(r.id, resp), nil
}

func (r *chatResponder) events(line []byte) ([]sseEvent, error) {
	resp, err := decode[api.ChatResponse](line)
	if err != nil {
		return nil, err
	}

	events := []sseEvent{{data: openai.ToChunk(r.id, resp)}}
	if resp.Done {
		if r.includeUsage {
			events = append(events, sseEvent{data: openai.ToUsageChunk(r.id, resp)})
		}
		events = append(events, doneEvent)
	}
	return events, nil
}

// completeResponder: api.GenerateResponse -> text_completion
type completeResponder struct {
	openaiErrors
	id           string
	includeUsage bool
}

func (r *completeResponder) reply(line []byte) (any, error) {
	resp, err := decode[api.GenerateResponse](line)
	if err != nil {
		return nil, err
	}
	return openai.ToCompletion(r.id, resp), nil
}

func (r *completeResponder) events(line []byte) ([]sseEvent, error) {
	resp, err := decode[api.GenerateResponse](line)
	if err != nil {
		return nil, err
	}

	events := []sseEvent{{data: openai.ToCompleteChunk(r.id, resp)}}
	if resp.Done {
		if r.includeUsage {
			events = append(events, sseEvent{data: openai.ToCompleteUsageChunk(r.id, resp)})
		}
		events = append(events, doneEvent)
	}
	return events, nil
}

// listResponder: api.ListResponse -> list
type listResponder struct {
	openaiErrors
}

func (listResponder) reply(line []byte) (any, error) {
	resp, err := decode[api.ListResponse](line)
	if err != nil {
		return nil, err
	}
	return openai.ToListCompletion(resp), nil
}

func includeUsage(o *openai.StreamOptions) bool {
	return o != nil && o.IncludeUsage
}

// ChatMiddleware uebersetzt /v1/chat/completions fuer den nativen Chat-Handler
func ChatMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := rewrite(c, openai.NewError, openai.FromChatRequest)
		if !ok {
			return
		}

		c.Writer = newTranslateWriter(c.Writer, &chatResponder{
			id:           openai.NewID("chatcmpl"),
			includeUsage: includeUsage(req.StreamOptions),
		}, req.Stream)
		c.Next()
	}
}

// CompletionsMiddleware uebersetzt /v1/completions fuer den nativen Generate-Handler
func CompletionsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := rewrite(c, openai.NewError, openai.FromCompleteRequest)
		if !ok {
			return
		}

		c.Writer = newTranslateWriter(c.Writer, &completeResponder{
			id:           openai.NewID("cmpl"),
			includeUsage: includeUsage(req.StreamOptions),
		}, req.Stream)
		c.Next()
	}
}

// ListMiddleware uebersetzt die native Modell-Liste fuer /v1/models
func ListMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer = &translateWriter{ResponseWriter: c.Writer, r: listResponder{}}
		c.Next()
	}
}
