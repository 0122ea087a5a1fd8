// cmd_render.go - Prompt-Rendering ohne Runner
// Hauptfunktionen: newRenderCmd, RenderHandler
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/llamaedge/llamaedge/api"
	"github.com/llamaedge/llamaedge/template"
)

// newRenderCmd - Erstellt den render Command
func newRenderCmd() *cobra.Command {
	renderCmd := &cobra.Command{
		Use:   "render [FILE]",
		Short: "Render a JSON message list into a prompt",
		Long:  "Render a JSON message list into a prompt. Reads stdin when FILE is omitted or \"-\".",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RenderHandler,
	}

	renderCmd.Flags().StringP("prompt-template", "p", template.Llama2Chat.String(), "Prompt template ("+kindList()+")")

	return renderCmd
}

// RenderHandler - Gibt den Prompt fuer die Nachrichten aus FILE aus
func RenderHandler(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("prompt-template")
	kind, err := template.ParseKind(name)
	if err != nil {
		return err
	}

	var r io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	msgs, err := readMessages(r)
	if err != nil {
		return err
	}

	prompt, err := template.Render(kind, msgs)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), prompt)
	return nil
}

// readMessages - Liest eine Nachrichtenliste; Rollen werden normalisiert
func readMessages(r io.Reader) ([]api.Message, error) {
	var msgs []api.Message
	if err := json.NewDecoder(r).Decode(&msgs); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}

	for i := range msgs {
		msgs[i].Role = strings.ToLower(msgs[i].Role)
		if !api.ValidRole(msgs[i].Role) {
			return nil, fmt.Errorf("message %d: invalid role %q", i, msgs[i].Role)
		}
	}
	return msgs, nil
}
