package conversation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"sovereign-chat/internal/utils/idgen"
)

// ===============================================
// Conversation Validation
// ===============================================

// MaxTitleLength is the longest accepted title in characters.
const MaxTitleLength = 256

// ValidateConversationID validates conversation ID format
func ValidateConversationID(id string) error {
	if id == "" {
		return fmt.Errorf("conversation ID cannot be empty")
	}
	if !idgen.ValidateIDFormat(id, idgen.PrefixConversation) {
		return fmt.Errorf("invalid conversation ID format")
	}
	return nil
}

// ValidateShareID validates share ID format
func ValidateShareID(id string) error {
	if !idgen.ValidateIDFormat(id, idgen.PrefixShare) {
		return fmt.Errorf("invalid share ID format")
	}
	return nil
}

func validateTitle(title string) error {
	length := utf8.RuneCountInString(title)
	if length > MaxTitleLength {
		return fmt.Errorf("title cannot exceed %d characters (got %d)", MaxTitleLength, length)
	}
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title cannot be only whitespace")
	}
	// Check for null bytes (security)
	if strings.Contains(title, "\x00") {
		return fmt.Errorf("title cannot contain null bytes")
	}
	return nil
}
