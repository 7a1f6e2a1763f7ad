package barcode

// Format is the internal symbology key. It is a wire contract shared by
// the codec, the card index schema and the scanner webapp payloads.
type Format string

const (
	FormatEAN13   Format = "ean13"
	FormatCode128 Format = "code128"
	FormatQR      Format = "qrcode"
)

// SupportedFormats maps internal keys to their user facing labels.
var SupportedFormats = map[Format]string{
	FormatEAN13:   "EAN-13",
	FormatCode128: "Code 128",
	FormatQR:      "QR Code",
}

// scannerFormats maps the symbology names emitted by the webapp camera
// scanner to internal keys. Anything not listed here falls back to
// code128, a displayable answer beats a null.
var scannerFormats = map[string]Format{
	"QR_CODE":  FormatQR,
	"QRCODE":   FormatQR,
	"EAN_13":   FormatEAN13,
	"EAN_8":    FormatEAN13,
	"CODE_128": FormatCode128,
	"CODE_39":  FormatCode128,
}

// MapScannerFormat translates an external scanner symbology name to the
// internal key.
func MapScannerFormat(name string) Format {
	if f, ok := scannerFormats[name]; ok {
		return f
	}
	return FormatCode128
}

// Label returns the user facing label for a format key.
func Label(f Format) string {
	if label, ok := SupportedFormats[f]; ok {
		return label
	}
	return string(f)
}

// IsSupported reports whether f is a member of the supported enumeration.
func IsSupported(f Format) bool {
	_, ok := SupportedFormats[f]
	return ok
}
