package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"valid simple", "neo", false},
		{"valid with underscore and digits", "agent_007", false},
		{"valid max length", "abcdefghij0123456789", false},
		{"too short", "ab", true},
		{"too long", "abcdefghij01234567890", true},
		{"spaces rejected", "mr anderson", true},
		{"hyphen rejected", "mr-anderson", true},
		{"unicode rejected", "néo", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "hello", SanitizeText("  hello  "))
	assert.Equal(t, "&lt;b&gt;bold&lt;/b&gt;", SanitizeText("<b>bold</b>"))
	assert.Equal(t, "a &amp; b", SanitizeText("a & b"))
}
