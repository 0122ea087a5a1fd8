// Package server - Chat Handler fuer /api/chat und /v1/chat/completions
// Beinhaltet: ChatHandler, collectChatResponse
package server

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/llamaedge/llamaedge/api"
	"github.com/llamaedge/llamaedge/llm"
	"github.com/llamaedge/llamaedge/template"
)

// ChatHandler verarbeitet /api/chat Anfragen
func (s *Server) ChatHandler(c *gin.Context) {
	checkpointStart := time.Now()

	var req api.ChatRequest
	if err := c.ShouldBindJSON(&req); errors.Is(err, io.EOF) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing request body"})
		return
	} else if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	opts, err := s.options(req.Options)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	prompt, err := template.Render(s.runner.Kind(), req.Messages)
	if err != nil {
		c.AbortWithStatusJSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	buildPrompt := time.Since(checkpointStart)
	s.logPrompt("chat", prompt)

	ctx := c.Request.Context()
	stream := req.Stream == nil || *req.Stream
	creq := llm.CompletionRequest{Prompt: prompt, Options: &opts}

	// partial responses carry the prompt side of the usage
	partial := api.Usage{PromptTokens: api.CountTokens(prompt)}

	ch := make(chan any)
	go func() {
		defer close(ch)

		var res llm.Result
		var err error
		if stream {
			res, err = s.runner.RunStreaming(ctx, creq, func(chunk string) {
				send(ctx, ch, api.ChatResponse{
					Model:     s.model,
					CreatedAt: time.Now().UTC(),
					Message:   api.Message{Role: api.RoleAssistant, Content: chunk},
					Usage:     partial,
				})
			})
		} else {
			res, err = s.runner.RunNonStreaming(ctx, creq)
		}
		if err != nil {
			send(ctx, ch, errorEvent(err))
			return
		}

		s.logStats("chat", buildPrompt, res)

		final := api.ChatResponse{
			Model:      s.model,
			CreatedAt:  time.Now().UTC(),
			Message:    api.Message{Role: api.RoleAssistant},
			DoneReason: res.DoneReason.String(),
			Done:       true,
			Usage:      res.Usage,
		}
		if !stream {
			final.Message.Content = res.Content
		}
		send(ctx, ch, final)
	}()

	if !stream {
		s.collectChatResponse(c, ch)
		return
	}

	streamResponse(c, ch)
}

// collectChatResponse sammelt nicht-streaming Chat Response
func (s *Server) collectChatResponse(c *gin.Context, ch chan any) {
	var resp api.ChatResponse
	var sbContent strings.Builder
	for rr := range ch {
		switch t := rr.(type) {
		case api.ChatResponse:
			sbContent.WriteString(t.Message.Content)
			resp = t
		case gin.H:
			writeError(c, t)
			return
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "unexpected response"})
			return
		}
	}

	resp.Message.Content = sbContent.String()
	c.JSON(http.StatusOK, resp)
}
