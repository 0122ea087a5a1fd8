// Package llm - Inferenz-Engine und Generierung
//
// Definiert den Vertrag zur Inferenz-Engine:
// - Engine Interface (SetInput, Compute, ComputeNext, GetOutput, GetOutputSingle)
// - ErrEndOfSequence als regulaeres Ende einer Generierung
// - Slot-Belegung fuer Prompt, Optionen und Token-Info
package llm

import (
	"errors"
)

// Slots der Engine
const (
	// SlotPrompt nimmt den Prompt (Eingabe) bzw. den generierten Text (Ausgabe) auf
	SlotPrompt = 0

	// SlotMetadata nimmt die serialisierten Optionen (Eingabe) bzw. die
	// Token-Info als JSON (Ausgabe) auf
	SlotMetadata = 1
)

// ErrEndOfSequence signalisiert, dass das Modell von selbst aufgehoert hat.
// Es ist kein Fehler.
var ErrEndOfSequence = errors.New("end of sequence")

// Engine ist eine Inferenz-Engine mit einem einzelnen Ausfuehrungskontext.
// Implementierungen sind nicht fuer parallele Aufrufe ausgelegt; der Zugriff
// laeuft ueber einen Guard.
type Engine interface {
	// SetInput setzt den Eingabe-Slot auf data
	SetInput(slot int, data []byte) error

	// Compute fuehrt eine vollstaendige Generierung aus
	Compute() error

	// ComputeNext erzeugt genau ein weiteres Token oder liefert
	// ErrEndOfSequence
	ComputeNext() error

	// GetOutput liest das Ergebnis von Compute
	GetOutput(slot int) ([]byte, error)

	// GetOutputSingle liest das zuletzt von ComputeNext erzeugte Token
	GetOutputSingle(slot int) ([]byte, error)
}

// TokenInfo ist die Token-Statistik der Engine fuer die letzte Generierung
type TokenInfo struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}
