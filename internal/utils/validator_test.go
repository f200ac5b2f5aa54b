package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateDate(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"2025-03-01", true},
		{"2024-02-29", true},
		{"2025-02-29", false},
		{"2025-3-1", false},
		{"03/01/2025", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidateDate(tt.in), tt.in)
	}
}

func TestToday(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	assert.Equal(t, "2025-02-28", Today(time.Date(2025, 3, 1, 8, 0, 0, 0, loc)))
}

func TestSanitizeEmail(t *testing.T) {
	assert.Equal(t, "A@x.com", SanitizeEmail("  A@x.com "))
}
