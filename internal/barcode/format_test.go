package barcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapScannerFormat(t *testing.T) {
	tests := []struct {
		name string
		want Format
	}{
		{"QR_CODE", FormatQR},
		{"QRCODE", FormatQR},
		{"EAN_13", FormatEAN13},
		{"EAN_8", FormatEAN13},
		{"CODE_128", FormatCode128},
		{"CODE_39", FormatCode128},
		{"ITF", FormatCode128}, // unknown symbologies fall back
		{"", FormatCode128},    // so does a missing name
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, MapScannerFormat(tt.name), "scanner name %q", tt.name)
	}
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "EAN-13", Label(FormatEAN13))
	assert.Equal(t, "Code 128", Label(FormatCode128))
	assert.Equal(t, "QR Code", Label(FormatQR))
	assert.Equal(t, "pdf417", Label(Format("pdf417")))
}

func TestIsSupported(t *testing.T) {
	assert.True(t, IsSupported(FormatEAN13))
	assert.True(t, IsSupported(FormatCode128))
	assert.True(t, IsSupported(FormatQR))
	assert.False(t, IsSupported(Format("pdf417")))
}
