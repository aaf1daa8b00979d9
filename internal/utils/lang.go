package utils

import "strings"

// NormalizeLanguage maps a patient language code to one of the supported
// notification languages; anything unknown falls back to English.
func NormalizeLanguage(lang string) string {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "es", "es-es", "es-ar":
		return "es"
	case "it", "it-it":
		return "it"
	default:
		return "en"
	}
}
