// Package template - Prompt-Templates fuer Chat-Dialekte
// Modul strip: Entfernt Dialekt-Marker aus Single-Shot-Ausgaben
package template

import (
	"strings"
)

// Strip entfernt die End-of-Turn-Marker des Dialekts k aus einer
// vollstaendigen Ausgabe und trimmt Leerraum. Strip ist idempotent.
func Strip(output string, k Kind) string {
	s := Resolve(k)
	out := strings.TrimSpace(output)

	cut := len(out)
	for _, marker := range s.CutAt {
		if i := strings.Index(out, marker); i >= 0 && i < cut {
			cut = i
		}
	}
	out = strings.TrimSpace(out[:cut])

	for trimmed := true; trimmed; {
		trimmed = false
		for _, marker := range s.TrimSuffix {
			if rest, ok := strings.CutSuffix(out, marker); ok {
				out = strings.TrimSpace(rest)
				trimmed = true
			}
		}
	}

	return out
}
