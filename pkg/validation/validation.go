package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const maxRecipientIDLength = 64

// RecipientIDRegex accepts chat identifiers: numeric IDs (including negative group IDs),
// usernames and opaque relay tokens.
var RecipientIDRegex = regexp.MustCompile(`^-?[a-zA-Z0-9_.:@-]+$`)

// ValidateRecipientID validates the recipient identifier of an inbound status request.
func ValidateRecipientID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("recipient_id is required")
	}
	if utf8.RuneCountInString(id) > maxRecipientIDLength {
		return fmt.Errorf("recipient_id is too long (max %d characters)", maxRecipientIDLength)
	}
	if !RecipientIDRegex.MatchString(id) {
		return fmt.Errorf("recipient_id contains invalid characters")
	}
	return nil
}

// ValidateFrameType checks a relay frame type against the accepted set.
func ValidateFrameType(frameType string, allowed ...string) error {
	if frameType == "" {
		return fmt.Errorf("message type is required")
	}
	for _, a := range allowed {
		if frameType == a {
			return nil
		}
	}
	return fmt.Errorf("unsupported message type %q", frameType)
}
