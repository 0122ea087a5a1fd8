// Package server - Hilfsfunktionen fuer Handler
// Beinhaltet: ListHandler, Optionen, Logging, Streaming, Fehler-Status
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/llamaedge/llamaedge/api"
	"github.com/llamaedge/llamaedge/llm"
	"github.com/llamaedge/llamaedge/logutil"
	"github.com/llamaedge/llamaedge/template"
)

// ListHandler listet das geladene Modell
func (s *Server) ListHandler(c *gin.Context) {
	c.JSON(http.StatusOK, api.ListResponse{Models: []api.ListModelResponse{{
		Name:     s.model,
		Template: s.runner.Kind().String(),
		LoadedAt: s.loadedAt,
	}}})
}

// options legt die Request-Optionen ueber die Server-Optionen
func (s *Server) options(m map[string]any) (api.Options, error) {
	opts := s.runner.Options()
	if err := opts.FromMap(m); err != nil {
		return opts, err
	}
	return opts, nil
}

// logPrompt loggt den Prompt auf INFO bei --log-prompts, sonst auf TRACE
func (s *Server) logPrompt(kind, prompt string) {
	if s.logPrompts {
		slog.Info("prompt", "request", kind, "prompt", prompt)
		return
	}
	logutil.Trace("prompt", "request", kind, "prompt", prompt)
}

// logStats loggt die Zeiten einer Generierung bei --log-stat
func (s *Server) logStats(kind string, buildPrompt time.Duration, res llm.Result) {
	if !s.logStat {
		return
	}

	args := []any{
		"request", kind,
		"build_prompt", buildPrompt,
		"inference", res.Duration,
		"done_reason", res.DoneReason,
		"prompt_tokens", res.Usage.PromptTokens,
		"completion_tokens", res.Usage.CompletionTokens,
	}
	if res.TokenInfo != nil {
		args = append(args, "input_tokens", res.TokenInfo.InputTokens, "output_tokens", res.TokenInfo.OutputTokens)
	}
	slog.Info("statistics", args...)
}

// statusFor bildet Fehler auf HTTP-Status ab
func statusFor(err error) int {
	var perr *template.PromptBuildError
	if errors.As(err, &perr) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// errorEvent verpackt err fuer den Stream
func errorEvent(err error) gin.H {
	return gin.H{"error": err.Error(), "status": statusFor(err)}
}

// send uebergibt v an den Stream, solange der Client noch zuhoert
func send(ctx context.Context, ch chan<- any, v any) {
	select {
	case ch <- v:
	case <-ctx.Done():
	}
}

// streamResponse streamt ndjson Responses
func streamResponse(c *gin.Context, ch chan any) {
	c.Header("Content-Type", "application/x-ndjson")
	c.Stream(func(w io.Writer) bool {
		val, ok := <-ch
		if !ok {
			return false
		}

		if h, ok := val.(gin.H); ok {
			if e, ok := h["error"].(string); ok {
				status, ok := h["status"].(int)
				if !ok {
					status = http.StatusInternalServerError
				}

				if !c.Writer.Written() {
					c.Header("Content-Type", "application/json")
					c.JSON(status, gin.H{"error": e})
				} else {
					if err := json.NewEncoder(c.Writer).Encode(gin.H{"error": e}); err != nil {
						slog.Error("streamResponse failed to encode json error", "error", err)
					}
				}

				return false
			}
		}

		bts, err := json.Marshal(val)
		if err != nil {
			slog.Info(fmt.Sprintf("streamResponse: json.Marshal failed with %s", err))
			return false
		}

		bts = append(bts, '\n')
		if _, err := w.Write(bts); err != nil {
			slog.Info(fmt.Sprintf("streamResponse: w.Write failed with %s", err))
			return false
		}

		return true
	})
}

// writeError schreibt einen Fehler aus der Generierung als JSON-Antwort
func writeError(c *gin.Context, h gin.H) {
	msg, ok := h["error"].(string)
	if !ok {
		msg = "unexpected error format in response"
	}

	status, ok := h["status"].(int)
	if !ok {
		status = http.StatusInternalServerError
	}

	c.JSON(status, gin.H{"error": msg})
}
