// Package template - Prompt-Templates fuer Chat-Dialekte
// Modul kind: Aufzaehlung der unterstuetzten Dialekte und Namensaufloesung
package template

import (
	"fmt"
	"math"

	"github.com/agnivade/levenshtein"
)

// Kind identifiziert einen Prompt-Dialekt. Die Menge ist geschlossen; jedes
// Mitglied hat genau eine Strategy in der Registry.
type Kind int

const (
	Llama2Chat Kind = iota
	CodeLlama
	MistralInstruct
	MistralLite
	OpenChat
	BelleLlama2Chat
	VicunaChat
	Vicuna11Chat
	ChatML
	Baichuan2
	WizardCoder
	Zephyr
	IntelNeural
	DeepseekChat
	DeepseekCoder

	numKinds
)

var kindNames = [numKinds]string{
	Llama2Chat:      "llama-2-chat",
	CodeLlama:       "codellama-instruct",
	MistralInstruct: "mistral-instruct",
	MistralLite:     "mistrallite",
	OpenChat:        "openchat",
	BelleLlama2Chat: "belle-llama-2-chat",
	VicunaChat:      "vicuna-chat",
	Vicuna11Chat:    "vicuna-1.1-chat",
	ChatML:          "chatml",
	Baichuan2:       "baichuan-2",
	WizardCoder:     "wizard-coder",
	Zephyr:          "zephyr",
	IntelNeural:     "intel-neural",
	DeepseekChat:    "deepseek-chat",
	DeepseekCoder:   "deepseek-coder",
}

// older spellings still accepted on the command line
var kindAliases = map[string]Kind{
	"mistral-instruct-v0.1": MistralInstruct,
}

// Kinds gibt alle Dialekte in Deklarationsreihenfolge zurueck
func Kinds() []Kind {
	kinds := make([]Kind, 0, numKinds)
	for k := range numKinds {
		kinds = append(kinds, k)
	}
	return kinds
}

// Valid meldet ob k ein Mitglied der Aufzaehlung ist
func (k Kind) Valid() bool {
	return k >= 0 && k < numKinds
}

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid prompt template kind %d", int(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// UnknownKindError wird von ParseKind fuer unbekannte Namen zurueckgegeben
type UnknownKindError struct {
	Name       string
	Suggestion string
}

func (e *UnknownKindError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown prompt template %q, did you mean %q?", e.Name, e.Suggestion)
	}
	return fmt.Sprintf("unknown prompt template %q", e.Name)
}

// ParseKind loest einen Dialekt-Namen auf
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}

	if k, ok := kindAliases[name]; ok {
		return k, nil
	}

	return 0, &UnknownKindError{Name: name, Suggestion: closest(name)}
}

// closest findet den naechstgelegenen bekannten Namen
func closest(name string) string {
	var best string
	score := math.MaxInt
	for _, n := range kindNames {
		if d := levenshtein.ComputeDistance(name, n); d < score {
			score = d
			best = n
		}
	}

	if score <= max(2, len(name)/3) {
		return best
	}

	return ""
}
