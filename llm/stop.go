// Package llm - Stop-Sequenz-Erkennung
package llm

// ShouldStop meldet ob das (bereits getrimmte) Token dem konfigurierten
// Stop-String exakt entspricht. Ohne Stop-String wird nie vorzeitig gestoppt.
func ShouldStop(trimmedToken string, stop *string) bool {
	return stop != nil && trimmedToken == *stop
}
