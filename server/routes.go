// Package server - Haupt-Router und Server-Setup
// Beinhaltet: Server-Struct, Router-Registrierung, Server-Start
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/llamaedge/llamaedge/envconfig"
	"github.com/llamaedge/llamaedge/llm"
	"github.com/llamaedge/llamaedge/middleware"
	"github.com/llamaedge/llamaedge/version"
)

var mode string = gin.DebugMode

// shutdownTimeout begrenzt das Warten auf laufende Requests beim Beenden
const shutdownTimeout = 5 * time.Second

// Config beschreibt das geladene Modell und das Logging-Verhalten
type Config struct {
	// ModelName ist der Name des Modells, der in /v1/models erscheint
	ModelName string

	// Runner fuehrt die Generierungen aus
	Runner *llm.Runner

	// LogPrompts loggt jeden gerenderten Prompt auf INFO
	LogPrompts bool

	// LogStat loggt Zeiten und Token-Info pro Request
	LogStat bool
}

// Server verwaltet den HTTP-Server und die geteilte Engine
type Server struct {
	runner     *llm.Runner
	model      string
	loadedAt   time.Time
	logPrompts bool
	logStat    bool
}

func init() {
	switch mode {
	case gin.DebugMode:
	case gin.ReleaseMode:
	case gin.TestMode:
	default:
		mode = gin.DebugMode
	}

	gin.SetMode(mode)
}

// New erstellt einen Server fuer cfg
func New(cfg Config) *Server {
	return &Server{
		runner:     cfg.Runner,
		model:      cfg.ModelName,
		loadedAt:   time.Now(),
		logPrompts: cfg.LogPrompts,
		logStat:    cfg.LogStat,
	}
}

// GenerateRoutes erstellt und konfiguriert den HTTP-Router
func (s *Server) GenerateRoutes() http.Handler {
	r := gin.Default()
	r.HandleMethodNotAllowed = true
	r.Use(middleware.CORS())

	// General
	r.HEAD("/", func(c *gin.Context) { c.String(http.StatusOK, "LlamaEdge API Server is running") })
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "LlamaEdge API Server is running") })
	r.GET("/api/version", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"version": version.Version}) })

	// Inference
	r.GET("/api/models", s.ListHandler)
	r.POST("/api/generate", s.GenerateHandler)
	r.POST("/api/chat", s.ChatHandler)

	// Inference (OpenAI compatibility)
	r.POST("/v1/chat/completions", middleware.ChatMiddleware(), s.ChatHandler)
	r.POST("/v1/completions", middleware.CompletionsMiddleware(), s.GenerateHandler)
	r.GET("/v1/models", middleware.ListMiddleware(), s.ListHandler)

	// Inference (Messages API compatibility)
	r.POST("/v1/messages", middleware.AnthropicMessagesMiddleware(), s.ChatHandler)

	// Preflight, answered by the CORS middleware
	for _, path := range []string{"/v1/chat/completions", "/v1/completions", "/v1/models", "/v1/messages"} {
		r.OPTIONS(path, func(c *gin.Context) { c.Status(http.StatusOK) })
	}

	return r
}

// Serve startet den HTTP-Server auf ln und blockiert bis ctx endet oder ein
// SIGINT/SIGTERM eintrifft.
func Serve(ctx context.Context, ln net.Listener, s *Server) error {
	slog.Info("server config", "env", envconfig.Values())

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srvr := &http.Server{
		Handler: s.GenerateRoutes(),
	}

	slog.Info(fmt.Sprintf("Listening on %s (version %s)", ln.Addr(), version.Version),
		"model", s.model, "template", s.runner.Kind())

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srvr.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		slog.Info("shutting down server")

		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srvr.Shutdown(sctx); err != nil {
			slog.Warn("forcing server close", "error", err)
			return srvr.Close()
		}
		return nil
	})

	return g.Wait()
}
