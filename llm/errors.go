// Package llm - Fehler der Inferenz
package llm

import (
	"errors"
	"fmt"
)

// InferenceError meldet einen Fehler der Engine, der kein End-of-Sequence ist.
// Der Zustand der Engine nach einem solchen Fehler ist undefiniert.
type InferenceError struct {
	Op  string
	Err error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference failed: %s: %v", e.Op, e.Err)
}

func (e *InferenceError) Unwrap() error {
	return e.Err
}

// engineErr verpackt err als InferenceError fuer die Operation op
func engineErr(op string, err error) error {
	var ierr *InferenceError
	if errors.As(err, &ierr) {
		return err
	}
	return &InferenceError{Op: op, Err: err}
}
