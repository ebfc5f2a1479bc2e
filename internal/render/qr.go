package render

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/jung-kurt/gofpdf"
)

const qrPixels = 256

// encodeQR renders payload as an 8-bit grayscale PNG held in memory.
func encodeQR(payload string) ([]byte, error) {
	code, err := qr.Encode(payload, qr.M, qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	size := qrPixels
	if dim := code.Bounds().Dx(); dim > size {
		size = dim
	}
	scaled, err := barcode.Scale(code, size, size)
	if err != nil {
		return nil, fmt.Errorf("scale qr: %w", err)
	}
	// gofpdf only reads 8-bit PNGs; the barcode image is 16-bit gray.
	gray := image.NewGray(scaled.Bounds())
	draw.Draw(gray, gray.Bounds(), scaled, scaled.Bounds().Min, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, gray); err != nil {
		return nil, fmt.Errorf("png encode qr: %w", err)
	}
	return buf.Bytes(), nil
}

func registerQR(pdf *gofpdf.Fpdf, payload string) error {
	data, err := encodeQR(payload)
	if err != nil {
		return err
	}
	pdf.RegisterImageOptionsReader(qrImage, gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(data))
	if pdf.Err() {
		return pdf.Error()
	}
	return nil
}
