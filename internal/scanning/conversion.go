package scanning

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	"image/png"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
)

// ErrUnsupportedFormat is returned for uploads no decoder understands
var ErrUnsupportedFormat = errors.New("unsupported image format (supported: PNG, JPEG, GIF, HEIC, HEIF, PDF)")

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// format identifies how an upload must be decoded
type format int

const (
	formatImage format = iota // anything image.Decode understands
	formatPNG
	formatPDF
	formatHEIC
)

// detectFormat sniffs the data first and falls back to the declared MIME type
func detectFormat(data []byte, contentType string) format {
	mimeType := strings.ToLower(strings.TrimSpace(contentType))

	switch {
	case bytes.HasPrefix(data, pngSignature):
		return formatPNG
	case bytes.HasPrefix(data, []byte("%PDF-")), mimeType == "application/pdf":
		return formatPDF
	case isHEIC(data), strings.Contains(mimeType, "heic"), strings.Contains(mimeType, "heif"):
		return formatHEIC
	}
	return formatImage
}

// isHEIC checks for an ftyp box with a HEIC/HEIF brand at offset 4
func isHEIC(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heix", "heif", "mif1", "msf1":
		return true
	}
	return false
}

// toPNG normalizes a screenshot to PNG so every backend sees one format.
// PDFs are rendered from their first page.
func toPNG(data []byte, contentType string) ([]byte, error) {
	var (
		img image.Image
		err error
	)

	switch detectFormat(data, contentType) {
	case formatPNG:
		return data, nil
	case formatPDF:
		img, err = renderFirstPage(data)
	case formatHEIC:
		img, err = heic.Decode(bytes.NewReader(data))
		if err != nil {
			err = fmt.Errorf("decoding HEIC/HEIF image: %w", err)
		}
	default:
		img, _, err = image.Decode(bytes.NewReader(data))
		if errors.Is(err, image.ErrFormat) {
			return nil, ErrUnsupportedFormat
		}
		if err != nil {
			err = fmt.Errorf("decoding image: %w", err)
		}
	}
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// renderFirstPage renders page one of an exported chat PDF
func renderFirstPage(data []byte) (image.Image, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	img, err := doc.Image(0)
	if err != nil {
		return nil, fmt.Errorf("rendering PDF page: %w", err)
	}
	return img, nil
}
