package imageio

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/MeKo-Tech/qrlocal/internal/pdf"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// SupportedExtensions lists file extensions picked up when expanding directories.
var SupportedExtensions = []string{".png", ".jpg", ".jpeg", ".webp", ".bmp", ".tif", ".tiff", ".gif", ".pdf"}

// IsSupported reports whether the path has a supported extension.
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range SupportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// IsPDF reports whether the path names a PDF document.
func IsPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

// LoadError wraps a failure in one stage of loading an input.
type LoadError struct {
	Operation string
	Path      string
	Err       error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("image load error in %s for %s: %v", e.Operation, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Options controls how inputs are turned into images.
type Options struct {
	// AutoOrient applies the EXIF orientation tag of raster images.
	AutoOrient bool
	// PDFPage is the 1-based page whose embedded images are decoded.
	PDFPage int
	// PDFPassword opens encrypted documents.
	PDFPassword string
}

// DefaultOptions returns loading defaults: first PDF page, EXIF orientation on.
func DefaultOptions() Options {
	return Options{AutoOrient: true, PDFPage: 1}
}

// Metadata captures lightweight file and pixel information.
type Metadata struct {
	Path      string
	Format    string
	SizeBytes int64
	Width     int
	Height    int
	Images    int
}

// Load decodes path into one or more images. Raster files yield a single
// image; PDFs yield every image embedded in the configured page.
func Load(path string, opts Options) ([]image.Image, Metadata, error) {
	if path == "" {
		return nil, Metadata{}, &LoadError{Operation: "load", Err: errors.New("empty path")}
	}

	fi, err := os.Stat(path)
	if err != nil {
		return nil, Metadata{}, &LoadError{Operation: "stat", Path: path, Err: err}
	}
	if fi.IsDir() {
		return nil, Metadata{}, &LoadError{Operation: "stat", Path: path, Err: errors.New("is a directory")}
	}
	meta := Metadata{Path: path, SizeBytes: fi.Size()}

	var imgs []image.Image
	if IsPDF(path) {
		page := opts.PDFPage
		if page < 1 {
			page = 1
		}
		imgs, err = pdf.PageImages(path, page, opts.PDFPassword)
		if err != nil {
			return nil, meta, &LoadError{Operation: "pdf", Path: path, Err: err}
		}
		meta.Format = "pdf"
	} else {
		img, err := imaging.Open(path, imaging.AutoOrientation(opts.AutoOrient))
		if err != nil {
			return nil, meta, &LoadError{Operation: "decode", Path: path, Err: err}
		}
		imgs = []image.Image{img}
		meta.Format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}

	meta.Images = len(imgs)
	if len(imgs) > 0 {
		b := imgs[0].Bounds()
		meta.Width, meta.Height = b.Dx(), b.Dy()
	}
	return imgs, meta, nil
}
