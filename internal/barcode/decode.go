package barcode

import (
	"bytes"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/makiuchi-d/gozxing/qrcode"
	log "github.com/sirupsen/logrus"
)

// Reading is a single decoded barcode. Readings are never persisted,
// callers turn one into a card only after the user confirms.
type Reading struct {
	Data     string `json:"data"`
	Format   Format `json:"format"`
	TypeName string `json:"type_name"` // decoder symbology name, display only
}

// decoderFormats maps decoder symbologies to internal keys. Anything the
// decoder reports outside this table falls back to code128.
var decoderFormats = map[gozxing.BarcodeFormat]Format{
	gozxing.BarcodeFormat_EAN_13:   FormatEAN13,
	gozxing.BarcodeFormat_EAN_8:    FormatEAN13,
	gozxing.BarcodeFormat_CODE_128: FormatCode128,
	gozxing.BarcodeFormat_CODE_39:  FormatCode128,
	gozxing.BarcodeFormat_QR_CODE:  FormatQR,
}

// one reader per symbology the scanner flow cares about
func newReaders() []gozxing.Reader {
	return []gozxing.Reader{
		qrcode.NewQRCodeReader(),
		oned.NewEAN13Reader(),
		oned.NewEAN8Reader(),
		oned.NewCode128Reader(),
		oned.NewCode39Reader(),
	}
}

// Decode finds every barcode it can in imageBytes. Failures of any kind
// (corrupt image, unsupported container, decoder error) degrade to an
// empty result and are never returned as errors: the caller is driving
// an interactive flow where a stack trace has no recovery value.
func Decode(imageBytes []byte) []Reading {
	readings := []Reading{}

	img, _, err := image.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		log.Warnf("failed to decode image: %v", err)
		return readings
	}

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		log.Warnf("failed to binarize image: %v", err)
		return readings
	}

	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}

	for _, reader := range newReaders() {
		result, err := reader.Decode(bmp, hints)
		if err != nil {
			continue // symbology not present in this image
		}

		symbology := result.GetBarcodeFormat()
		format, ok := decoderFormats[symbology]
		if !ok {
			format = FormatCode128
		}

		readings = append(readings, Reading{
			Data:     result.GetText(),
			Format:   format,
			TypeName: symbology.String(),
		})
	}

	return readings
}
