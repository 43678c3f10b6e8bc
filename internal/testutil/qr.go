package testutil

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	qrgen "github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/require"
)

// DefaultQRSize is the edge length in pixels of generated QR images.
const DefaultQRSize = 256

// GenerateQR renders content as a QR code image with a white quiet zone.
func GenerateQR(content string, size int) (image.Image, error) {
	q, err := qrgen.New(content, qrgen.Medium)
	if err != nil {
		return nil, fmt.Errorf("generate qr for %q: %w", content, err)
	}
	return q.Image(size), nil
}

// ComposeQRs places one QR code per content side by side on a white canvas,
// separated by a gap so each symbol keeps its quiet zone.
func ComposeQRs(size int, contents ...string) (image.Image, error) {
	const gap = 32
	if len(contents) == 0 {
		return BlankImage(size, size), nil
	}
	width := len(contents)*size + (len(contents)+1)*gap
	height := size + 2*gap
	canvas := imaging.New(width, height, color.White)
	for i, c := range contents {
		img, err := GenerateQR(c, size)
		if err != nil {
			return nil, err
		}
		canvas = imaging.Paste(canvas, img, image.Pt(gap+i*(size+gap), gap))
	}
	return canvas, nil
}

// BlankImage returns a plain white image with no symbol in it.
func BlankImage(w, h int) image.Image {
	return imaging.New(w, h, color.White)
}

// WritePNG encodes img as PNG at path.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path) //nolint:gosec // G304: test data path chosen by caller
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// WriteQRFile renders the contents into dir/name and returns the path.
func WriteQRFile(t *testing.T, dir, name string, contents ...string) string {
	t.Helper()

	img, err := ComposeQRs(DefaultQRSize, contents...)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, WritePNG(path, img))
	return path
}

// WriteBlankFile writes an image without any code to dir/name.
func WriteBlankFile(t *testing.T, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, WritePNG(path, BlankImage(DefaultQRSize, DefaultQRSize)))
	return path
}
