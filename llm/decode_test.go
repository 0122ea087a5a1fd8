package llm

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func collect(t *testing.T, d *Decoder) ([]string, error) {
	t.Helper()
	var chunks []string
	for chunk, err := range d.Chunks() {
		if err != nil {
			return chunks, err
		}
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

func TestDecoder(t *testing.T) {
	stop := "User:"

	cases := []struct {
		name   string
		tokens []string
		stop   *string
		chunks []string
		output string
		state  State
	}{
		{
			name:   "leading space dropped",
			tokens: []string{" ", "Hello", " world"},
			chunks: []string{"Hello", " world"},
			output: "Hello world",
			state:  EndOfSequence,
		},
		{
			name:   "leading whitespace trimmed from first token",
			tokens: []string{" Hi", " there"},
			chunks: []string{"Hi", " there"},
			output: "Hi there",
			state:  EndOfSequence,
		},
		{
			name:   "leading newlines kept",
			tokens: []string{"\n", "\n", "Hello"},
			chunks: []string{"\n", "\n", "Hello"},
			output: "\n\nHello",
			state:  EndOfSequence,
		},
		{
			name:   "leading tab kept",
			tokens: []string{"\tcode", "x"},
			chunks: []string{"\tcode", "x"},
			output: "\tcodex",
			state:  EndOfSequence,
		},
		{
			name:   "stop token never appended",
			tokens: []string{"Hi", " there", " User:", " more"},
			stop:   &stop,
			chunks: []string{"Hi", " there"},
			output: "Hi there",
			state:  Stopped,
		},
		{
			name:   "stop only matches whole token",
			tokens: []string{"Hi", " User:x"},
			stop:   &stop,
			chunks: []string{"Hi", " User:x"},
			output: "Hi User:x",
			state:  EndOfSequence,
		},
		{
			name:   "immediate end of sequence",
			tokens: nil,
			output: "",
			state:  EndOfSequence,
		},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDecoder(&scriptedEngine{tokens: tt.tokens}, tt.stop)
			chunks, err := collect(t, d)
			if err != nil {
				t.Fatal(err)
			}

			if diff := cmp.Diff(tt.chunks, chunks); diff != "" {
				t.Errorf("Chunks falsch (-want +got):\n%s", diff)
			}
			if d.Output() != tt.output {
				t.Errorf("Output = %q, erwartet %q", d.Output(), tt.output)
			}
			if d.State() != tt.state {
				t.Errorf("State = %v, erwartet %v", d.State(), tt.state)
			}
		})
	}
}

func TestDecoderEngineFailure(t *testing.T) {
	e := &scriptedEngine{tokens: []string{"a", "b", "c", "d"}, failAt: 3}
	d := NewDecoder(e, nil)

	chunks, err := collect(t, d)

	var ierr *InferenceError
	if !errors.As(err, &ierr) {
		t.Fatalf("erwartet InferenceError, got %v", err)
	}
	if !errors.Is(err, errEngine) {
		t.Errorf("Ursache fehlt: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b"}, chunks); diff != "" {
		t.Errorf("bereits gelieferte Chunks (-want +got):\n%s", diff)
	}
	if d.State() != Failed {
		t.Errorf("State = %v, erwartet failed", d.State())
	}
}

func TestDecoderNotRestartable(t *testing.T) {
	d := NewDecoder(&scriptedEngine{tokens: []string{"x", "y"}}, nil)

	first, _ := collect(t, d)
	second, _ := collect(t, d)

	if len(first) != 2 {
		t.Errorf("erster Durchlauf: %v", first)
	}
	if len(second) != 0 {
		t.Errorf("zweiter Durchlauf sollte leer sein: %v", second)
	}
}
