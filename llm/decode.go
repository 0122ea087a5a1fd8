// Package llm - Token-fuer-Token Dekodierung
//
// Decoder treibt die Engine per ComputeNext bis zum Stop-String, zum
// End-of-Sequence oder zu einem Fehler. Akzeptierte Tokens werden als Chunks
// geliefert und zur Gesamtausgabe zusammengesetzt.
package llm

import (
	"errors"
	"iter"
	"strings"
	"unicode"
)

// State ist der Zustand einer Dekodierung
type State int

const (
	Running State = iota
	Stopped
	EndOfSequence
	Failed
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	case EndOfSequence:
		return "end_of_sequence"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Decoder dekodiert eine einzelne Generierung. Die Engine muss bereits mit
// Prompt und Optionen belegt sein.
type Decoder struct {
	engine  Engine
	stop    *string
	state   State
	out     strings.Builder
	err     error
	started bool
}

// NewDecoder erstellt einen Decoder fuer e; stop darf nil sein
func NewDecoder(e Engine, stop *string) *Decoder {
	return &Decoder{engine: e, stop: stop}
}

// Chunks liefert die akzeptierten Chunks in Erzeugungsreihenfolge. Bei einem
// Engine-Fehler wird als letztes Element ein InferenceError geliefert. Die
// Sequenz ist nicht neu startbar: ein zweiter Aufruf liefert nichts.
func (d *Decoder) Chunks() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if d.started {
			return
		}
		d.started = true

		for d.state == Running {
			chunk, err := d.step()
			if err != nil {
				yield("", err)
				return
			}

			if chunk == "" {
				continue
			}

			if !yield(chunk, nil) {
				return
			}
		}
	}
}

// step fordert ein Token an und entscheidet ob es akzeptiert wird
func (d *Decoder) step() (string, error) {
	if err := d.engine.ComputeNext(); err != nil {
		return "", d.fail("compute next", err)
	}

	b, err := d.engine.GetOutputSingle(SlotPrompt)
	if err != nil {
		return "", d.fail("get output", err)
	}

	token := strings.ToValidUTF8(string(b), "�")

	// a lone leading space before any output is dropped
	if d.out.Len() == 0 && token == " " {
		return "", nil
	}

	if ShouldStop(strings.TrimSpace(token), d.stop) {
		d.state = Stopped
		return "", nil
	}

	// only a first token starting with a space is trimmed; "\n" or "\t" stay
	if d.out.Len() == 0 && strings.HasPrefix(token, " ") {
		token = strings.TrimLeftFunc(token, unicode.IsSpace)
	}

	d.out.WriteString(token)
	return token, nil
}

func (d *Decoder) fail(op string, err error) error {
	if errors.Is(err, ErrEndOfSequence) {
		d.state = EndOfSequence
		return nil
	}

	d.state = Failed
	d.err = engineErr(op, err)
	return d.err
}

// Output gibt die bisher akzeptierte Ausgabe zurueck
func (d *Decoder) Output() string {
	return d.out.String()
}

// State gibt den aktuellen Zustand zurueck
func (d *Decoder) State() State {
	return d.state
}

// Err gibt den Engine-Fehler zurueck, falls die Dekodierung fehlgeschlagen ist
func (d *Decoder) Err() error {
	return d.err
}
