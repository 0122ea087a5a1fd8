// anthropic.go - Messages-API Endpunkt
// Uebersetzt /v1/messages Requests in native Chat-Requests
package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/llamaedge/llamaedge/anthropic"
	"github.com/llamaedge/llamaedge/api"
)

// messagesResponder: api.ChatResponse -> message bzw. benannte Stream-Events
type messagesResponder struct {
	id        string
	converter *anthropic.StreamConverter
}

func (r *messagesResponder) errorBody(code int, msg string) any {
	return anthropic.NewError(code, msg)
}

func (r *messagesResponder) failure(msg string) sseEvent {
	return sseEvent{name: "error", data: anthropic.StreamErrorEvent{
		Type:  "error",
		Error: anthropic.Error{Type: "api_error", Message: msg},
	}}
}

func (r *messagesResponder) reply(line []byte) (any, error) {
	resp, err := decode[api.ChatResponse](line)
	if err != nil {
		return nil, err
	}
	return anthropic.ToMessagesResponse(r.id, resp), nil
}

func (r *messagesResponder) events(line []byte) ([]sseEvent, error) {
	resp, err := decode[api.ChatResponse](line)
	if err != nil {
		return nil, err
	}

	var events []sseEvent
	for _, e := range r.converter.Process(resp) {
		events = append(events, sseEvent{name: e.Event, data: e.Data})
	}
	return events, nil
}

// AnthropicMessagesMiddleware uebersetzt /v1/messages fuer den nativen Chat-Handler
func AnthropicMessagesMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := rewrite(c, anthropic.NewError, anthropic.FromMessagesRequest)
		if !ok {
			return
		}

		id := anthropic.GenerateMessageID()
		c.Writer = newTranslateWriter(c.Writer, &messagesResponder{
			id:        id,
			converter: anthropic.NewStreamConverter(id),
		}, req.Stream)
		c.Next()
	}
}
