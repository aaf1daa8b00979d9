package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTranslation(t *testing.T) {
	assert.Equal(t, "confirmada", StatusTranslation("approved", "es"))
	assert.Equal(t, "cancelada", StatusTranslation("cancelled", "es-AR"))
	assert.Equal(t, "in attesa", StatusTranslation("pending", "it"))
	assert.Equal(t, "annullato", StatusTranslation("cancelled", "it"))
	assert.Equal(t, "approved", StatusTranslation("approved", "en"))
	assert.Equal(t, "approved", StatusTranslation("approved", "de"))
	// Unknown statuses pass through untranslated.
	assert.Equal(t, "archived", StatusTranslation("archived", "es"))
}
