// Package template - Prompt-Templates fuer Chat-Dialekte
// Modul build: generischer Renderer fuer alle Strategies
package template

import (
	"strings"

	"github.com/llamaedge/llamaedge/api"
)

// Render erzeugt den Prompt fuer msgs im Dialekt k
func Render(k Kind, msgs []api.Message) (string, error) {
	return Build(Resolve(k), msgs)
}

// Build erzeugt den Prompt fuer msgs nach den Regeln von s. Das Ergebnis
// haengt nur von s und msgs ab.
func Build(s *Strategy, msgs []api.Message) (string, error) {
	if err := check(s, msgs); err != nil {
		return "", err
	}

	var system string
	turns := msgs
	if msgs[0].Role == api.RoleSystem {
		system = s.content(msgs[0])
		turns = msgs[1:]
	}

	if s.LastUserOnly {
		turns = lastUser(turns)
	}

	var sb strings.Builder
	if !s.NoSystem {
		if system == "" {
			system = s.DefaultSystem
		}

		if system != "" {
			sb.WriteString(s.System.wrap(system))
		}
	}

	first := true
	for _, m := range turns {
		switch m.Role {
		case api.RoleUser, api.RoleFunction:
			w := s.User
			if first {
				w = s.FirstUser
			}
			sb.WriteString(w.wrap(s.content(m)))
		case api.RoleAssistant:
			sb.WriteString(s.Assistant.wrap(s.content(m)))
		}
		first = false
	}

	sb.WriteString(s.Prime)
	return sb.String(), nil
}

func (s *Strategy) content(m api.Message) string {
	if s.TrimContent {
		return strings.TrimSpace(m.Content)
	}
	return m.Content
}

// check prueft die strukturellen Vorbedingungen der Nachrichtenfolge
func check(s *Strategy, msgs []api.Message) error {
	if len(msgs) == 0 {
		return &PromptBuildError{Kind: s.Kind, Index: -1, Err: ErrNoMessages}
	}

	var user bool
	for i, m := range msgs {
		switch m.Role {
		case api.RoleSystem:
			if i != 0 {
				return &PromptBuildError{Kind: s.Kind, Index: i, Err: ErrSystemNotFirst}
			}
		case api.RoleUser, api.RoleFunction:
			user = true
		case api.RoleAssistant:
		default:
			return &PromptBuildError{Kind: s.Kind, Index: i, Err: ErrUnknownRole}
		}
	}

	if !user {
		return &PromptBuildError{Kind: s.Kind, Index: -1, Err: ErrNoUserMessage}
	}

	return nil
}

func lastUser(msgs []api.Message) []api.Message {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == api.RoleUser || msgs[i].Role == api.RoleFunction {
			return msgs[i : i+1]
		}
	}
	return nil
}
