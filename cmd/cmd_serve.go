// cmd_serve.go - Server-Start
// Hauptfunktionen: newServeCmd, RunServer
package cmd

import (
	"log/slog"
	"net"
	"os"

	"github.com/spf13/cobra"

	"github.com/llamaedge/llamaedge/envconfig"
	"github.com/llamaedge/llamaedge/llm"
	"github.com/llamaedge/llamaedge/logutil"
	"github.com/llamaedge/llamaedge/server"
)

// newServeCmd - Erstellt den serve Command
func newServeCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"start"},
		Short:   "Start the OpenAI compatible API server",
		Args:    cobra.ExactArgs(0),
		RunE:    RunServer,
	}

	addRunFlags(serveCmd)
	serveCmd.Flags().String("socket-addr", "", "Listen address (default from LLAMAEDGE_HOST)")

	return serveCmd
}

// RunServer - Startet den API-Server mit dem konfigurierten Runner
func RunServer(cmd *cobra.Command, _ []string) error {
	slog.SetDefault(logutil.NewLogger(os.Stderr, envconfig.LogLevel()))

	ro, err := runOptionsFromFlags(cmd)
	if err != nil {
		return err
	}

	addr := envconfig.Host()
	if s, _ := cmd.Flags().GetString("socket-addr"); s != "" {
		addr = s
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	slog.Info("model loaded",
		"model", ro.Model,
		"template", ro.Kind,
		"runner", ro.Runner,
		"ctx_size", ro.Options.CtxSize,
		"n_predict", ro.Options.NPredict,
		"reverse_prompt", ro.Options.Stop() != nil,
	)

	engine := llm.NewRunnerEngine(cmd.Context(), ro.Runner, nil)
	defer engine.Close()

	s := server.New(server.Config{
		ModelName:  ro.Model,
		Runner:     llm.NewRunner(engine, ro.Kind, ro.Options),
		LogPrompts: ro.LogPrompts,
		LogStat:    ro.LogStat,
	})

	return server.Serve(cmd.Context(), ln, s)
}
