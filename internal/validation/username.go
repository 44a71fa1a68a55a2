// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// ValidateUsername checks if a username meets requirements
func ValidateUsername(username string) error {
	if len(username) < 3 {
		return fmt.Errorf("username must be at least 3 characters long")
	}

	if len(username) > 20 {
		return fmt.Errorf("username must not exceed 20 characters")
	}

	// Only allow alphanumeric and underscores
	if !usernamePattern.MatchString(username) {
		return fmt.Errorf("username can only contain letters, numbers, and underscores")
	}

	return nil
}

// SanitizeText trims surrounding whitespace and escapes HTML metacharacters
// in free-text fields before they are persisted.
func SanitizeText(input string) string {
	return html.EscapeString(strings.TrimSpace(input))
}
