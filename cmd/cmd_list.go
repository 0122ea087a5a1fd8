// cmd_list.go - Tabellen-Ausgaben
// Hauptfunktionen: TemplatesHandler, SessionsHandler
package cmd

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/llamaedge/llamaedge/envconfig"
	"github.com/llamaedge/llamaedge/store"
	"github.com/llamaedge/llamaedge/template"
)

// newTemplatesCmd - Erstellt den templates Command
func newTemplatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List prompt templates",
		Args:  cobra.ExactArgs(0),
		RunE:  TemplatesHandler,
	}
}

// newSessionsCmd - Erstellt den sessions Command
func newSessionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List saved chat sessions",
		Args:  cobra.ExactArgs(0),
		RunE:  SessionsHandler,
	}
}

// TemplatesHandler - Listet alle Dialekte mit ihren Markern auf
func TemplatesHandler(cmd *cobra.Command, _ []string) error {
	var data [][]string
	for _, k := range template.Kinds() {
		s := template.Resolve(k)
		system := "none"
		switch {
		case s.NoSystem:
			system = "unsupported"
		case s.DefaultSystem != "":
			system = "default"
		}
		data = append(data, []string{k.String(), system, quote(s.Prime), quote(s.EndOfTurn)})
	}

	renderTable(cmd.OutOrStdout(), []string{"NAME", "SYSTEM", "PRIME", "END OF TURN"}, data)
	return nil
}

// SessionsHandler - Listet gespeicherte Chat-Sitzungen auf
func SessionsHandler(cmd *cobra.Command, _ []string) error {
	db, err := store.Open(envconfig.DBPath())
	if err != nil {
		return err
	}
	defer db.Close()

	chats, err := db.Chats(cmd.Context())
	if err != nil {
		return err
	}

	var data [][]string
	for _, c := range chats {
		data = append(data, []string{c.ID, c.Model, c.Template, strconv.Itoa(c.MessageCount), humanTime(c.LastUpdated)})
	}

	renderTable(cmd.OutOrStdout(), []string{"SESSION", "MODEL", "TEMPLATE", "MESSAGES", "UPDATED"}, data)
	return nil
}

func renderTable(w io.Writer, header []string, data [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()
}

// quote macht Steuerzeichen in Markern sichtbar
func quote(s string) string {
	if s == "" {
		return "-"
	}
	s = strconv.Quote(s)
	return strings.Trim(s, `"`)
}

func humanTime(t time.Time) string {
	if t.IsZero() {
		return "Never"
	}
	return t.Local().Format("2006-01-02 15:04")
}
