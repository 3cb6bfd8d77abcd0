package instrumentation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractUserDomain(t *testing.T) {
	tests := []struct {
		email    string
		expected string
	}{
		{"ana@example.com", "example.com"},
		{"bo@docs.example.org", "docs.example.org"},
		{"", "unknown"},
		{"work", "unknown"},
		{"ana@", "unknown"},
		{"a@b@c", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractUserDomain(tt.email))
		})
	}
}

func TestAccountLabel(t *testing.T) {
	assert.Equal(t, "default", accountLabel("default"))
	assert.Equal(t, "", accountLabel(""))
	assert.Equal(t, "example.com", accountLabel("ana@example.com"))
	assert.Equal(t, "unknown", accountLabel("ana@"))
}
