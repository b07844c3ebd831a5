package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRecipientID(t *testing.T) {
	valid := []string{"123456789", "-1001234567890", "some_user", "relay:abc-1", "user@example"}
	for _, id := range valid {
		assert.NoError(t, ValidateRecipientID(id), id)
	}

	invalid := []string{"", "   ", "has space", "semi;colon", strings.Repeat("a", 65)}
	for _, id := range invalid {
		assert.Error(t, ValidateRecipientID(id), id)
	}
}

func TestValidateFrameType(t *testing.T) {
	assert.NoError(t, ValidateFrameType("status_request", "status_request", "ping"))
	assert.Error(t, ValidateFrameType("", "status_request"))
	assert.Error(t, ValidateFrameType("deliver", "status_request"))
}
