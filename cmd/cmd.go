// cmd.go - Haupt-CLI Setup und Root Command
// Hauptfunktionen: NewCLI, appendEnvDocs
package cmd

import (
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/containerd/console"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/llamaedge/llamaedge/envconfig"
	"github.com/llamaedge/llamaedge/version"
)

// appendEnvDocs - Fuegt Umgebungsvariablen-Dokumentation zum Command hinzu
func appendEnvDocs(cmd *cobra.Command, envs []envconfig.EnvVar) {
	if len(envs) == 0 {
		return
	}

	envUsage := `
Environment Variables:
`
	for _, e := range envs {
		envUsage += fmt.Sprintf("      %-24s   %s\n", e.Name, e.Description)
	}

	cmd.SetUsageTemplate(cmd.UsageTemplate() + envUsage)
}

// NewCLI - Erstellt das Haupt-CLI mit allen Commands
func NewCLI() *cobra.Command {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	cobra.EnableCommandSorting = false

	if runtime.GOOS == "windows" && term.IsTerminal(int(os.Stdout.Fd())) {
		console.ConsoleFromFile(os.Stdin) //nolint:errcheck
	}

	rootCmd := &cobra.Command{
		Use:           "llamaedge",
		Short:         "Chat prompt server for llama.cpp compatible runners",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		Run: func(cmd *cobra.Command, args []string) {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Fprintf(cmd.OutOrStdout(), "llamaedge version is %s\n", version.Version)
				return
			}

			cmd.Print(cmd.UsageString())
		},
	}

	rootCmd.Flags().BoolP("version", "v", false, "Show version information")

	serveCmd := newServeCmd()
	chatCmd := newChatCmd()
	templatesCmd := newTemplatesCmd()
	renderCmd := newRenderCmd()
	sessionsCmd := newSessionsCmd()

	// Environment-Dokumentation hinzufuegen
	envVars := envconfig.AsMap()
	appendEnvDocs(serveCmd, []envconfig.EnvVar{
		envVars["LLAMAEDGE_DEBUG"],
		envVars["LLAMAEDGE_HOST"],
		envVars["LLAMAEDGE_RUNNER"],
		envVars["LLAMAEDGE_CONTEXT_LENGTH"],
	})
	appendEnvDocs(chatCmd, []envconfig.EnvVar{
		envVars["LLAMAEDGE_DEBUG"],
		envVars["LLAMAEDGE_RUNNER"],
		envVars["LLAMAEDGE_CONTEXT_LENGTH"],
		envVars["LLAMAEDGE_DB"],
		envVars["LLAMAEDGE_NOHISTORY"],
	})
	appendEnvDocs(sessionsCmd, []envconfig.EnvVar{envVars["LLAMAEDGE_DB"]})

	rootCmd.AddCommand(
		serveCmd,
		chatCmd,
		templatesCmd,
		renderCmd,
		sessionsCmd,
	)

	return rootCmd
}
