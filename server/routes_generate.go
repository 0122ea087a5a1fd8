// Package server - Generate Handler fuer /api/generate und /v1/completions
// Beinhaltet: GenerateHandler, collectGenerateResponse
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

// GenerateHandler verarbeitet /api/generate Anfragen. Ohne Raw wird der
// Prompt als einzelne User-Nachricht durch das Chat-Template gerendert.
func (s *Server) GenerateHandler(c *gin.Context) {
	checkpointStart := time.Now()

	var req api.GenerateRequest
	if err := c.ShouldBindJSON(&req); errors.Is(err, io.EOF) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing request body"})
		return
	} else if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if strings.TrimSpace(req.Prompt) == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "prompt is required"})
		return
	}

	opts, err := s.options(req.Options)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	prompt := req.Prompt
	if !req.Raw {
		prompt, err = template.Render(s.runner.Kind(), []api.Message{{Role: api.RoleUser, Content: req.Prompt}})
		if err != nil {
			c.AbortWithStatusJSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
	}

	buildPrompt := time.Since(checkpointStart)
	s.logPrompt("generate", prompt)

	ctx := c.Request.Context()
	stream := req.Stream == nil || *req.Stream
	creq := llm.CompletionRequest{Prompt: prompt, Options: &opts, Raw: req.Raw}

	ch := make(chan any)
	go func() {
		defer close(ch)

		var res llm.Result
		var err error
		if stream {
			res, err = s.runner.RunStreaming(ctx, creq, func(chunk string) {
				send(ctx, ch, api.GenerateResponse{
					Model:     s.model,
					CreatedAt: time.Now().UTC(),
					Response:  chunk,
				})
			})
		} else {
			res, err = s.runner.RunNonStreaming(ctx, creq)
		}
		if err != nil {
			send(ctx, ch, errorEvent(err))
			return
		}

		s.logStats("generate", buildPrompt, res)

		final := api.GenerateResponse{
			Model:      s.model,
			CreatedAt:  time.Now().UTC(),
			DoneReason: res.DoneReason.String(),
			Done:       true,
			Usage:      res.Usage,
		}
		if !stream {
			final.Response = res.Content
		}
		send(ctx, ch, final)
	}()

	if !stream {
		collectGenerateResponse(c, ch)
		return
	}

	streamResponse(c, ch)
}

// collectGenerateResponse sammelt nicht-streaming Generate Response
func collectGenerateResponse(c *gin.Context, ch chan any) {
	var resp api.GenerateResponse
	var sb strings.Builder
	for rr := range ch {
		switch t := rr.(type) {
		case api.GenerateResponse:
			sb.WriteString(t.Response)
			resp = t
		case gin.H:
			writeError(c, t)
			return
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "unexpected response"})
			return
		}
	}

	resp.Response = sb.String()
	c.JSON(http.StatusOK, resp)
}
