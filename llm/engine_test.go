package llm

import (
	"errors"
	"sync"
)

// scriptedEngine liefert vorgegebene Tokens und kann bei einem Schritt fehlschlagen
type scriptedEngine struct {
	mu sync.Mutex

	tokens []string
	failAt int // 1-basierter ComputeNext-Aufruf, der fehlschlaegt; 0 = nie
	output string
	info   []byte

	inputs  map[int][]byte
	calls   int
	current string
	closed  int
}

var errEngine = errors.New("engine exploded")

func (e *scriptedEngine) SetInput(slot int, data []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inputs == nil {
		e.inputs = map[int][]byte{}
	}
	e.inputs[slot] = data
	e.calls = 0
	return nil
}

func (e *scriptedEngine) Compute() error {
	return nil
}

func (e *scriptedEngine) ComputeNext() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	if e.failAt > 0 && e.calls == e.failAt {
		return errEngine
	}
	if e.calls > len(e.tokens) {
		return ErrEndOfSequence
	}
	e.current = e.tokens[e.calls-1]
	return nil
}

func (e *scriptedEngine) GetOutput(slot int) ([]byte, error) {
	if slot == SlotMetadata {
		return e.info, nil
	}
	return []byte(e.output), nil
}

func (e *scriptedEngine) GetOutputSingle(int) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return []byte(e.current), nil
}

func (e *scriptedEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed++
	return nil
}
