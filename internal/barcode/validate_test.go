package barcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate_EmptyCode(t *testing.T) {
	for _, format := range []Format{FormatEAN13, FormatCode128, FormatQR} {
		ok, msg := Validate("", format)
		assert.False(t, ok, "empty code must be invalid for %s", format)
		assert.Equal(t, "Code cannot be empty.", msg)
	}
}

func TestValidate_EAN13(t *testing.T) {
	tests := []struct {
		name string
		code string
		ok   bool
	}{
		{"12 digits", "123456789012", true},
		{"13 digits", "5901234123457", true},
		{"11 digits", "12345678901", false},
		{"14 digits", "12345678901234", false},
		{"letter in code", "12345A789012", false},
		{"spaces", "1234 6789012", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, msg := Validate(tt.code, FormatEAN13)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Empty(t, msg)
			} else {
				assert.NotEmpty(t, msg)
			}
		})
	}
}

func TestValidate_FreeTextFormats(t *testing.T) {
	for _, format := range []Format{FormatCode128, FormatQR} {
		for _, code := range []string{"ABC-123", "https://example.com", "x"} {
			ok, msg := Validate(code, format)
			assert.True(t, ok, "%q must be valid for %s", code, format)
			assert.Empty(t, msg)
		}
	}
}

func TestValidate_UnknownFormat(t *testing.T) {
	ok, msg := Validate("12345", Format("pdf417"))
	assert.False(t, ok)
	assert.Contains(t, msg, "pdf417")
}
