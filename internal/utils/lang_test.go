package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLanguage(t *testing.T) {
	assert.Equal(t, "es", NormalizeLanguage("es"))
	assert.Equal(t, "es", NormalizeLanguage(" ES-ar "))
	assert.Equal(t, "it", NormalizeLanguage("it-IT"))
	assert.Equal(t, "en", NormalizeLanguage("en"))
	assert.Equal(t, "en", NormalizeLanguage("fr"))
	assert.Equal(t, "en", NormalizeLanguage(""))
}
