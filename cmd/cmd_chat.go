// cmd_chat.go - Interaktiver Chat im Terminal
// Hauptfunktionen: newChatCmd, ChatHandler, chatSession
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/llamaedge/llamaedge/api"
	"github.com/llamaedge/llamaedge/envconfig"
	"github.com/llamaedge/llamaedge/llm"
	"github.com/llamaedge/llamaedge/logutil"
	"github.com/llamaedge/llamaedge/store"
	"github.com/llamaedge/llamaedge/template"
)

const separator = "----------------------------------------------------"

// newChatCmd - Erstellt den chat Command
func newChatCmd() *cobra.Command {
	chatCmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the model in the terminal",
		Args:  cobra.ExactArgs(0),
		RunE:  ChatHandler,
	}

	addRunFlags(chatCmd)
	chatCmd.Flags().StringP("system-prompt", "s", "", "System prompt message string")
	chatCmd.Flags().Bool("stream-stdout", false, "Print the output token by token")
	chatCmd.Flags().String("session", "", "Resume or start a named session")

	return chatCmd
}

// ChatHandler - Startet die Chat-Schleife
func ChatHandler(cmd *cobra.Command, _ []string) error {
	slog.SetDefault(logutil.NewLogger(os.Stderr, envconfig.LogLevel()))

	ro, err := runOptionsFromFlags(cmd)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	system, _ := flags.GetString("system-prompt")
	ro.Options.StreamStdout, _ = flags.GetBool("stream-stdout")
	sessionID, _ := flags.GetString("session")

	engine := llm.NewRunnerEngine(cmd.Context(), ro.Runner, nil)
	defer engine.Close()

	s := &chatSession{
		runner:     llm.NewRunner(engine, ro.Kind, ro.Options),
		system:     system,
		conv:       api.NewConversation(system),
		logPrompts: ro.LogPrompts,
		logStat:    ro.LogStat,
		out:        cmd.OutOrStdout(),
	}

	if sessionID != "" || !envconfig.NoHistory() {
		db, err := store.Open(envconfig.DBPath())
		if err != nil {
			return err
		}
		defer db.Close()

		if sessionID == "" {
			sessionID = uuid.NewString()
		}
		if err := s.attach(cmd.Context(), db, store.Chat{
			ID:       sessionID,
			Title:    sessionID,
			Model:    ro.Model,
			Template: ro.Kind.String(),
		}); err != nil {
			return err
		}
	}

	printSettings(s.out, ro, system)
	return s.loop(cmd.Context())
}

// printSettings - Gibt die aktiven Einstellungen wie beim Start aus
func printSettings(w io.Writer, ro runOptions, system string) {
	fmt.Fprintf(w, "[INFO] Model alias: %s\n", ro.Model)
	fmt.Fprintf(w, "[INFO] Prompt context size: %d\n", ro.Options.CtxSize)
	fmt.Fprintf(w, "[INFO] Number of tokens to predict: %d\n", ro.Options.NPredict)
	fmt.Fprintf(w, "[INFO] Temperature for sampling: %v\n", ro.Options.Temperature)
	if stop := ro.Options.Stop(); stop != nil {
		fmt.Fprintf(w, "[INFO] Reverse prompt: %s\n", *stop)
	}
	if system == "" {
		fmt.Fprintln(w, "[INFO] Use default system prompt")
	} else {
		fmt.Fprintf(w, "[INFO] Use custom system prompt: %s\n", system)
	}
	fmt.Fprintf(w, "[INFO] Prompt template: %s\n", ro.Kind)
	fmt.Fprintf(w, "[INFO] Stream stdout: %t\n", ro.Options.StreamStdout)
	fmt.Fprintln(w, separator)
}

// chatSession - Zustand einer interaktiven Unterhaltung
type chatSession struct {
	runner *llm.Runner
	system string
	conv   *api.Conversation

	// db ist nil, wenn der Verlauf nicht gespeichert wird
	db     *store.Store
	chatID string

	logPrompts bool
	logStat    bool
	out        io.Writer
}

// attach - Verbindet die Sitzung mit dem Store und laedt den Verlauf
func (s *chatSession) attach(ctx context.Context, db *store.Store, want store.Chat) error {
	chat, err := db.EnsureChat(ctx, want)
	if err != nil {
		return err
	}

	// stored turns were rendered for one dialect and cannot be replayed in another
	if chat.Template != want.Template {
		return fmt.Errorf("session %s uses prompt template %s, not %s; start it with -p %s or pick another session",
			chat.ID, chat.Template, want.Template, chat.Template)
	}

	s.db = db
	s.chatID = chat.ID

	msgs, err := db.Messages(ctx, chat.ID)
	if err != nil {
		return err
	}

	if len(msgs) == 0 {
		return s.persist(ctx, s.conv.Messages()...)
	}

	s.conv = api.NewConversation("")
	for _, m := range msgs {
		s.conv.Append(m)
	}
	fmt.Fprintf(s.out, "Resumed session %s with %d messages.\n", chat.ID, len(msgs))
	return nil
}

func (s *chatSession) persist(ctx context.Context, msgs ...api.Message) error {
	if s.db == nil {
		return nil
	}
	for _, m := range msgs {
		if err := s.db.AppendMessage(ctx, s.chatID, m); err != nil {
			return err
		}
	}
	return nil
}

func (s *chatSession) loop(ctx context.Context) error {
	cfg := &readline.Config{
		Prompt:            "[You]: ",
		InterruptPrompt:   "^C",
		EOFPrompt:         "/bye",
		HistorySearchFold: true,
	}
	if !envconfig.NoHistory() {
		cfg.HistoryFile = filepath.Join(filepath.Dir(envconfig.DBPath()), "chat_history")
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		switch {
		case errors.Is(err, io.EOF):
			fmt.Fprintln(s.out)
			return nil
		case errors.Is(err, readline.ErrInterrupt):
			if line == "" {
				fmt.Fprintln(s.out, "\nUse Ctrl + d or /bye to exit.")
			}
			continue
		case err != nil:
			return err
		}

		done, err := s.handle(ctx, line)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// handle - Verarbeitet eine Eingabezeile; true beendet die Schleife
func (s *chatSession) handle(ctx context.Context, line string) (bool, error) {
	line = strings.TrimSpace(line)

	switch {
	case line == "":
		return false, nil
	case line == "/bye", line == "/exit":
		return true, nil
	case line == "/clear":
		return false, s.clear(ctx)
	case line == "/history":
		s.history()
		return false, nil
	case line == "/?", line == "/help":
		usage(s.out)
		return false, nil
	case strings.HasPrefix(line, "/"):
		fmt.Fprintf(s.out, "Unknown command '%s'. Type /? for help\n", strings.Fields(line)[0])
		return false, nil
	}

	err := s.send(ctx, line)

	// a failed generation ends the turn, not the session
	var ierr *llm.InferenceError
	if errors.As(err, &ierr) {
		fmt.Fprintf(s.out, "\nError: %v\n", err)
		return false, nil
	}
	return false, err
}

// send - Generiert die Antwort auf content. User- und Bot-Nachricht werden erst
// nach einer erfolgreichen Generierung gemeinsam angehaengt.
func (s *chatSession) send(ctx context.Context, content string) error {
	user := api.Message{Role: api.RoleUser, Content: content}

	kind := s.runner.Kind()
	prompt, err := template.Render(kind, append(s.conv.Messages(), user))
	if err != nil {
		return err
	}

	if s.logPrompts {
		fmt.Fprintln(s.out, "\n---------------- [LOG: PROMPT] ---------------------")
		fmt.Fprintln(s.out, prompt)
		fmt.Fprintln(s.out, separator)
	}

	req := llm.CompletionRequest{Prompt: prompt}

	var res llm.Result
	if s.runner.Options().StreamStdout {
		fmt.Fprintln(s.out, "\n[Bot]:")
		res, err = s.runner.RunStreaming(ctx, req, func(chunk string) {
			fmt.Fprint(s.out, chunk)
		})
		fmt.Fprintln(s.out)
	} else {
		res, err = s.runner.RunNonStreaming(ctx, req)
		if err == nil {
			fmt.Fprintf(s.out, "\n[Bot]:\n%s\n", res.Content)
		}
	}
	if err != nil {
		return err
	}

	if s.logStat {
		fmt.Fprintln(s.out, "\n---------------- [LOG: STATISTICS] -----------------")
		if res.TokenInfo != nil {
			fmt.Fprintf(s.out, "input tokens: %d, output tokens: %d\n", res.TokenInfo.InputTokens, res.TokenInfo.OutputTokens)
		}
		fmt.Fprintf(s.out, "words: %d prompt, %d completion\n", res.Usage.PromptTokens, res.Usage.CompletionTokens)
		fmt.Fprintf(s.out, "duration: %s\n", res.Duration)
		fmt.Fprintln(s.out, separator)
	}

	assistant := api.Message{Role: api.RoleAssistant, Content: res.Content}
	s.conv.Append(user)
	s.conv.Append(assistant)
	return s.persist(ctx, user, assistant)
}

// clear - Setzt den Verlauf auf die System-Nachricht zurueck
func (s *chatSession) clear(ctx context.Context) error {
	s.conv = api.NewConversation(s.system)
	if s.db != nil {
		if err := s.db.ClearChat(ctx, s.chatID); err != nil {
			return err
		}
		if err := s.persist(ctx, s.conv.Messages()...); err != nil {
			return err
		}
	}
	fmt.Fprintln(s.out, "Cleared session context.")
	return nil
}

func (s *chatSession) history() {
	for _, m := range s.conv.Messages() {
		fmt.Fprintf(s.out, "[%s]: %s\n", m.Role, m.Content)
	}
}

// usage - Zeigt die verfuegbaren Befehle an
func usage(w io.Writer) {
	fmt.Fprintln(w, "Available Commands:")
	fmt.Fprintln(w, "  /clear          Clear session context")
	fmt.Fprintln(w, "  /history        Show the conversation so far")
	fmt.Fprintln(w, "  /bye            Exit")
	fmt.Fprintln(w, "  /?, /help       Help for a command")
	fmt.Fprintln(w, "")
}
