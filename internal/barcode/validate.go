package barcode

import "fmt"

// Validate checks code against the rules of format and returns a user
// presentable reason when the code is rejected. Pure function, no side
// effects.
func Validate(code string, format Format) (bool, string) {
	if code == "" {
		return false, "Code cannot be empty."
	}

	switch format {
	case FormatEAN13:
		for _, r := range code {
			if r < '0' || r > '9' {
				return false, "EAN-13 codes must contain only digits."
			}
		}
		// 12 digits are accepted too, the check digit is computed when
		// the barcode is rendered
		if len(code) != 12 && len(code) != 13 {
			return false, "EAN-13 codes must be 12 or 13 digits long."
		}
	case FormatCode128:
		// Code 128 accepts any ASCII string
	case FormatQR:
		// QR codes accept arbitrary data
	default:
		return false, fmt.Sprintf("Unknown format: %s", format)
	}

	return true, ""
}
