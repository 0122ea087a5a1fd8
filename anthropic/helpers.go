// helpers.go
// Hilfsfunktionen-Modul: ID-Generierung

package anthropic

import (
	"strings"

	"github.com/google/uuid"
)

// generateID erzeugt eine ID der Form prefix_<32 hex>
func generateID(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// GenerateMessageID erzeugt eine neue Message-ID
func GenerateMessageID() string {
	return generateID("msg")
}

func ptr(s string) *string {
	return &s
}
