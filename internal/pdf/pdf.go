package pdf

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	_ "golang.org/x/image/tiff"
)

// ErrNoImages is returned when the requested page carries no raster images.
// Vector-drawn codes are not rendered.
var ErrNoImages = errors.New("pdf: page contains no embedded images")

// PageImages extracts the images embedded in the given 1-based page.
// An empty password opens unencrypted files only.
func PageImages(filename string, page int, password string) ([]image.Image, error) {
	if page < 1 {
		return nil, fmt.Errorf("invalid page number: %d", page)
	}

	if password == "" {
		if err := checkPage(filename, page); err != nil {
			return nil, err
		}
	}

	tempDir, err := os.MkdirTemp("", "qrlocal-pdf-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(tempDir) }()

	conf := model.NewDefaultConfiguration()
	if password != "" {
		conf.UserPW = password
		conf.OwnerPW = password
	}

	if err := api.ExtractImagesFile(filename, tempDir, []string{strconv.Itoa(page)}, conf); err != nil {
		if IsPasswordError(err) {
			return nil, fmt.Errorf("%w: %v", ErrPasswordRequired, err)
		}
		return nil, fmt.Errorf("failed to extract images from PDF: %w", err)
	}

	imgs, err := collectExtractedImages(tempDir)
	if err != nil {
		return nil, fmt.Errorf("failed to process extracted images: %w", err)
	}
	if len(imgs) == 0 {
		return nil, ErrNoImages
	}
	return imgs, nil
}

// collectExtractedImages decodes every image file under dir in name order.
// Files that fail to decode are skipped.
func collectExtractedImages(dir string) ([]image.Image, error) {
	var paths []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	var out []image.Image
	for _, p := range paths {
		img, err := loadImageFile(p)
		if err != nil || img == nil {
			continue
		}
		out = append(out, img)
	}
	return out, nil
}

// loadImageFile loads an image from a file path.
func loadImageFile(path string) (image.Image, error) {
	file, err := os.Open(path) //nolint:gosec // G304: temp files written by pdfcpu
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	img, _, err := image.Decode(file)
	return img, err
}
