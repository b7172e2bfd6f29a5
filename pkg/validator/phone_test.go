package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhoneValidator_Validate(t *testing.T) {
	v := NewPhoneValidator()

	tests := []struct {
		name      string
		input     string
		expected  string
		expectErr error
	}{
		{
			name:     "local 10-digit number",
			input:    "0771234567",
			expected: "0771234567",
		},
		{
			name:     "E.164 with country code",
			input:    "+94771234567",
			expected: "+94771234567",
		},
		{
			name:     "spaces stripped",
			input:    "077 123 4567",
			expected: "0771234567",
		},
		{
			name:     "dashes stripped",
			input:    "077-123-4567",
			expected: "0771234567",
		},
		{
			name:     "parentheses stripped",
			input:    "(077) 1234567",
			expected: "0771234567",
		},
		{
			name:      "empty",
			input:     "",
			expectErr: ErrEmptyPhone,
		},
		{
			name:      "letters rejected",
			input:     "07712345ab",
			expectErr: ErrInvalidFormat,
		},
		{
			name:      "plus in the middle rejected",
			input:     "077+1234567",
			expectErr: ErrInvalidFormat,
		},
		{
			name:      "too short",
			input:     "077123",
			expectErr: ErrInvalidLength,
		},
		{
			name:      "too long",
			input:     "+9477123456789012",
			expectErr: ErrInvalidLength,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.Validate(tt.input)
			if tt.expectErr != nil {
				assert.ErrorIs(t, err, tt.expectErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestPhoneValidator_Sanitize(t *testing.T) {
	v := NewPhoneValidator()

	assert.Equal(t, "0771234567", v.Sanitize(" 077-123 4567 "))
	assert.Equal(t, "+94771234567", v.Sanitize("+94 (77) 123.4567"))
}
