// Package template - Prompt-Templates fuer Chat-Dialekte
// Modul errors: Fehler beim Erzeugen eines Prompts
package template

import (
	"errors"
	"fmt"
)

var (
	ErrNoMessages     = errors.New("no messages to render")
	ErrSystemNotFirst = errors.New("system message must be the first message")
	ErrNoUserMessage  = errors.New("no user message to answer")
	ErrUnknownRole    = errors.New("unknown message role")
)

// PromptBuildError meldet eine Nachrichtenfolge, die der Dialekt nicht
// rendern kann.
type PromptBuildError struct {
	Kind  Kind
	Index int // -1 wenn die Folge als Ganzes ungueltig ist
	Err   error
}

func (e *PromptBuildError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("build %s prompt: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("build %s prompt: message %d: %v", e.Kind, e.Index, e.Err)
}

func (e *PromptBuildError) Unwrap() error {
	return e.Err
}
