package barcode

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"

	bcode "github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/ean"
	qrgen "github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Fixed visual profile shared by every linear format so rendered cards
// look consistent regardless of symbology.
const (
	moduleWidthMM  = 0.4
	moduleHeightMM = 20.0
	fontSize       = 14
	textDistanceMM = 5.0
	quietZoneMM    = 6.5
	dpi            = 300

	qrModuleScale = 10 // pixels per QR module
)

func mmToPx(mm float64) int {
	return int(mm * dpi / 25.4)
}

// Encode renders code as a PNG image of the given format. Unlike Decode
// it propagates failures: a card the user asked for either renders or
// the caller reports that it could not.
func Encode(code string, format Format) ([]byte, error) {
	switch format {
	case FormatQR:
		return encodeQR(code)
	case FormatEAN13, FormatCode128:
		return encodeLinear(code, format)
	default:
		return nil, fmt.Errorf("unsupported barcode format: %s", format)
	}
}

func encodeQR(code string) ([]byte, error) {
	// negative size selects a fixed per-module scale, version and error
	// correction are sized to the payload automatically
	img, err := qrgen.Encode(code, qrgen.Medium, -qrModuleScale)
	if err != nil {
		return nil, fmt.Errorf("failed to generate qr code: %w", err)
	}
	return img, nil
}

func encodeLinear(code string, format Format) ([]byte, error) {
	var (
		bc  bcode.Barcode
		err error
	)
	switch format {
	case FormatEAN13:
		bc, err = ean.Encode(code)
	default:
		bc, err = code128.Encode(code)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s barcode: %w", format, err)
	}

	modulePx := mmToPx(moduleWidthMM)
	barWidth := bc.Bounds().Dx() * modulePx
	barHeight := mmToPx(moduleHeightMM)

	scaled, err := bcode.Scale(bc, barWidth, barHeight)
	if err != nil {
		return nil, fmt.Errorf("failed to scale barcode: %w", err)
	}

	quietPx := mmToPx(quietZoneMM)
	textPx := mmToPx(textDistanceMM)
	face := basicfont.Face7x13 // bitmap stand-in for the 14 pt label

	width := barWidth + 2*quietPx
	height := barHeight + textPx + face.Height

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(canvas, image.Rect(quietPx, 0, quietPx+barWidth, barHeight), scaled, scaled.Bounds().Min, draw.Src)

	// human readable text beneath the bars; for EAN-13 the content holds
	// the full payload including a computed check digit
	drawLabel(canvas, bc.Content(), face, barHeight+textPx)

	buf := &bytes.Buffer{}
	if err := png.Encode(buf, canvas); err != nil {
		return nil, fmt.Errorf("failed to write png: %w", err)
	}

	return buf.Bytes(), nil
}

func drawLabel(dst *image.RGBA, label string, face *basicfont.Face, top int) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.Black,
		Face: face,
	}

	width := d.MeasureString(label).Ceil()
	x := (dst.Bounds().Dx() - width) / 2
	if x < 0 {
		x = 0
	}
	d.Dot = fixed.P(x, top+face.Ascent)
	d.DrawString(label)
}
