package testutil

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
)

// WritePDF creates a PDF with one page per image file.
func WritePDF(pdfPath string, imagePaths ...string) error {
	if err := api.ImportImagesFile(imagePaths, pdfPath, pdfcpu.DefaultImportConfig(), nil); err != nil {
		return fmt.Errorf("failed to import images into %s: %w", pdfPath, err)
	}
	return nil
}
